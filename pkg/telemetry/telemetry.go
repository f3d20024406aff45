// Package telemetry wires the server's structured logging and tracing.
// Metrics are served separately by pkg/metrics via prometheus/client_golang
// directly, so only a TracerProvider is set up here — bridging OTel metrics
// through to Prometheus as well would give the same signal two paths out.
package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const scopeName = "github.com/chicogong/realtime-duplex"

// ProviderConfig configures the telemetry setup.
type ProviderConfig struct {
	// ServiceName is reported on every span. Default: "realtime-duplex".
	ServiceName string

	// ServiceVersion is reported on every span.
	ServiceVersion string

	// TraceExporter is an optional span exporter. When nil, spans are
	// recorded but not exported — fine for local development, where only
	// the slog output matters.
	TraceExporter sdktrace.SpanExporter

	// LogLevel controls the slog handler's minimum level.
	LogLevel slog.Level
}

// Init sets up the global TracerProvider and an slog default logger backed
// by otelslog, so every log record carries the active span's trace id.
// Returns a shutdown func to defer from main().
func Init(ctx context.Context, cfg ProviderConfig) (shutdown func(context.Context) error, err error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "realtime-duplex"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.TraceExporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(cfg.TraceExporter))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)

	slog.SetLogLoggerLevel(cfg.LogLevel)
	slog.SetDefault(logger)

	shutdown = func(ctx context.Context) error {
		var errs []error
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}
	return shutdown, nil
}

// ParseLevel maps a config string ("debug"/"info"/"warn"/"error") onto an
// slog.Level, defaulting to Info for anything unrecognized.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	tracer = otel.Tracer(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

// Logger returns the package's otelslog-backed logger, whose records carry
// the active span's trace id when one is present in the context.
func Logger() *slog.Logger { return logger }

// Tracer returns the package's Tracer. Nothing in cmd/server opens spans
// with it; spans exist only where a caller starts them.
func Tracer() trace.Tracer { return tracer }
