// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

// Package tracing sets up OpenTelemetry tracing with an OTLP HTTP exporter.
package tracing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rxcards/rxcards"

// Config configures the tracer. Tracing is off unless Enabled is set.
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g. "localhost:4318").
	Endpoint   string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool    `mapstructure:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

func DefaultConfig() Config {
	return Config{
		Endpoint:   "localhost:4318",
		Insecure:   true,
		SampleRate: 1.0,
	}
}

// Init installs the global tracer provider. The returned function flushes
// and stops it. When tracing is disabled the global no-op provider is kept
// and the shutdown function does nothing.
func Init(ctx context.Context, cfg Config, serviceName, version string, log zerolog.Logger) (shutdown func(context.Context) error, err error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Float64("sample_rate", cfg.SampleRate).
		Msg("Tracing enabled")
	return tp.Shutdown, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the rxcards tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Card attributes attached to run spans.
const (
	AttrCard  = attribute.Key("rxcards.card")
	AttrRunID = attribute.Key("rxcards.run_id")
	AttrItems = attribute.Key("rxcards.items")
)
