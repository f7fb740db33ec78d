package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Component: ComponentDataset, Output: &buf})
	l.Info("Dataset loaded", FieldRows, 3)
	out := buf.String()
	if !strings.Contains(out, "component=dataset") || !strings.Contains(out, "rows=3") {
		t.Fatalf("unexpected log line: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentHTTP).Warn("slow")
	if !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("expected http component: %s", buf.String())
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %#v", l)
	}

	var buf bytes.Buffer
	base := New(Config{Output: &buf})
	ctx := context.WithValue(context.Background(), LoggerContextKey, base)
	ctx = WithRequestID(ctx, "req_1")
	FromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("expected request id in log: %s", buf.String())
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithOperation(OpRender).
		WithDataset("x.csv", 2, 10, 4)
	if f[FieldVersion] != uint64(2) || f[FieldRows] != 10 || f[FieldOperation] != OpRender {
		t.Fatalf("unexpected fields: %v", f)
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("slice length mismatch")
	}
	if _, ok := NewFields().WithError(nil)[FieldError]; ok {
		t.Fatalf("nil error should not be recorded")
	}
}
