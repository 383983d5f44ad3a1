package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"takeoutfix/internal/services"
)

func TestConsoleHandlerPromotesComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("sidecar renamed", String(FieldComponent, "matcher"), String("source", "a.json"))

	line := buf.String()
	if !strings.Contains(line, "INFO matcher: sidecar renamed") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "source=a.json") {
		t.Fatalf("expected source attribute in %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be promoted out of the attr list: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Warn("ambiguous match", String("candidate", "my photo.json"))

	if !strings.Contains(buf.String(), `candidate="my photo.json"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug") != slog.LevelDebug {
		t.Fatal("debug level not parsed")
	}
	if parseLevel("") != slog.LevelInfo {
		t.Fatal("empty level should default to info")
	}
	if parseLevel("banana") != slog.LevelInfo {
		t.Fatal("unknown level should default to info")
	}
}

func TestWithContextAddsRunAndPhase(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithPhase(ctx, "normalize")
	WithContext(ctx, logger).Info("phase started")

	line := buf.String()
	if !strings.Contains(line, "run_id=run-1") || !strings.Contains(line, "phase=normalize") {
		t.Fatalf("expected run and phase attrs, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
