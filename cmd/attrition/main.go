package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"attrition/internal/amqp"
	"attrition/internal/cli"
	"attrition/internal/core"
	"attrition/internal/dataset"
	apphttp "attrition/internal/http"
	"attrition/internal/log"
	"attrition/internal/report"
)

func main() {
	// Load .env file for local development
	envErr := cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if envErr != nil {
		logger.Warn("Ignoring unreadable .env file", log.FieldError, envErr)
	}

	cfg := cli.LoadAndValidateConfig(logger)

	loader := dataset.NewLoader(core.DataFile, logger)
	builder := report.NewBuilder(loader, report.Options{
		PreviewRows: cfg.PreviewRows,
		CacheSize:   cfg.DashboardCacheSize,
		CacheTTL:    cfg.DashboardCacheTTL,
		Logger:      logger,
	})

	srv := apphttp.NewServer(":"+cfg.Port, loader, builder, apphttp.Options{
		Logger:      logger,
		ReloadLimit: cfg.ReloadRateLimit,
	})
	srv.StartMaintenance(time.Minute)

	// Warm the cache so the first page view does not pay for rendering.
	go func() {
		if _, err := builder.Build(context.Background()); err != nil {
			logger.Warn("Initial dashboard build failed",
				log.FieldOperation, log.OpStartup,
				log.FieldSource, core.DataFile,
				log.FieldError, err)
		}
	}()

	consumeCtx, stopConsuming := context.WithCancel(context.Background())
	defer stopConsuming()

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		go func() {
			err := amqpClient.Consume(consumeCtx, amqp.InvalidateHandler(loader))
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
		}()
		logger.Info("Listening for dataset invalidations",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		stopConsuming()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			amqpClient.Close()
		}
	})

	logger.Info("Starting attrition dashboard",
		"port", cfg.Port,
		log.FieldSource, core.DataFile)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
