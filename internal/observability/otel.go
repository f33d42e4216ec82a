// Package observability wires OpenTelemetry tracing for the Slate API
// server. Tracing is off unless asked for on the command line; local
// development gets pretty-printed stdout spans, deployments point the
// exporter at an OTLP/HTTP collector.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const defaultServiceName = "slate"

const shutdownGrace = 5 * time.Second

// Config controls tracer setup.
type Config struct {
	Enabled     bool
	ServiceName string // defaults to "slate"
	Endpoint    string // OTLP/HTTP collector host:port; empty means stdout
}

// Setup installs the global tracer provider and W3C trace-context
// propagator. The returned function flushes and shuts the provider down;
// it is a no-op when tracing is disabled.
func Setup(cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	service := cfg.ServiceName
	if service == "" {
		service = defaultServiceName
	}

	ctx := context.Background()
	exporter, err := newExporter(ctx, strings.TrimSpace(cfg.Endpoint))
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(service)))
	if err != nil {
		return nil, fmt.Errorf("create otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
		defer cancel()
		return tp.Shutdown(shutdownCtx)
	}, nil
}

func newExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	if endpoint != "" {
		exporter, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp trace exporter: %w", err)
		}
		slog.Info("trace exporter configured", "type", "otlphttp", "endpoint", endpoint)
		return exporter, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout trace exporter: %w", err)
	}
	slog.Info("trace exporter configured", "type", "stdout")
	return exporter, nil
}
