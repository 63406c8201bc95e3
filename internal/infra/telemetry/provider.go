// Package telemetry installs OpenTelemetry tracing for race runs.
package telemetry

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Settings selects the trace exporter.
type Settings struct {
	// Endpoint is the OTLP/HTTP collector URL. Empty disables tracing.
	Endpoint string `env:"RACESIM_OTEL_ENDPOINT"`

	// Enabled set to false disables tracing even with an endpoint.
	Enabled *bool `env:"RACESIM_OTEL_ENABLED"`
}

// SettingsFromEnv reads Settings from the environment.
func SettingsFromEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse telemetry env: %w", err)
	}
	return s, nil
}

// Active reports whether spans will be exported.
func (s Settings) Active() bool {
	if s.Enabled != nil && !*s.Enabled {
		return false
	}
	return s.Endpoint != ""
}

// Setup registers a global tracer provider exporting to s.Endpoint.
// When tracing is inactive it registers nothing and returns a no-op shutdown.
// The returned shutdown flushes pending spans and should be deferred.
func Setup(ctx context.Context, serviceName, version string, s Settings) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if !s.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(s.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("create trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
