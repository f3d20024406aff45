package telemetry

import (
	"context"
	"log/slog"
	"testing"
)

func TestInit_ReturnsWorkingShutdown(t *testing.T) {
	shutdown, err := Init(context.Background(), ProviderConfig{
		ServiceName: "test-service",
		LogLevel:    slog.LevelDebug,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected a non-nil shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown returned an error: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLogger_IsUsableAsOrchestratorLogger(t *testing.T) {
	l := Logger()
	l.Info("test message", "key", "value")
}
