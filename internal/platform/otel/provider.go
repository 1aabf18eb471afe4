// Package otel configures opt-in OpenTelemetry tracing for storefront services.
package otel

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the tracing switches read from the environment.
type Config struct {
	Endpoint string `env:"STOREFRONT_OTEL_ENDPOINT"`
	Enabled  string `env:"STOREFRONT_OTEL_ENABLED"`
}

// Active reports whether spans should be exported.
func (c Config) Active() bool {
	return strings.TrimSpace(c.Endpoint) != "" && !strings.EqualFold(strings.TrimSpace(c.Enabled), "false")
}

// Setup initialises tracing for the given service.
//
// Tracing is opt-in: without STOREFRONT_OTEL_ENDPOINT, or with
// STOREFRONT_OTEL_ENABLED=false, Setup returns a no-op shutdown function and
// leaves the global provider untouched.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return noopShutdown, err
	}
	return SetupWithConfig(ctx, serviceName, cfg)
}

// SetupWithConfig initialises tracing from an explicit configuration.
func SetupWithConfig(ctx context.Context, serviceName string, cfg Config) (func(context.Context) error, error) {
	if !cfg.Active() {
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(strings.TrimSpace(cfg.Endpoint)))
	if err != nil {
		return noopShutdown, fmt.Errorf("create otlp exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noopShutdown, fmt.Errorf("create otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer("github.com/louisbranch/storefront/" + name)
}

func noopShutdown(context.Context) error { return nil }
