// Command attrition-invalidate tells running dashboards to re-read the
// employee dataset by publishing a message on the configured exchange.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"attrition/internal/amqp"
	"attrition/internal/cli"
	"attrition/internal/log"
)

func main() {
	source := flag.String("source", hostname(), "who is asking for the reload")
	reason := flag.String("reason", "dataset updated", "free-text reason recorded in the service logs")
	timeout := flag.Duration("timeout", 10*time.Second, "publish timeout")
	flag.Parse()

	envErr := cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	if envErr != nil {
		logger.Warn("Ignoring unreadable .env file", log.FieldError, envErr)
	}
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required to publish invalidations")
		os.Exit(2)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.PublishInvalidate(ctx, *source, *reason); err != nil {
		logger.Error("Publish failed", log.FieldError, err)
		client.Close()
		os.Exit(1)
	}
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "attrition-invalidate"
}
