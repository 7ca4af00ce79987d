// Package telemetry wires OpenTelemetry tracing for the toolbox.
//
// Tracing is off unless OTEL_ENABLED=true. The exporter honors the standard
// OTLP variables:
//
//	OTEL_SERVICE_NAME               - Service name (default: swmmtoolbox)
//	OTEL_SERVICE_VERSION            - Service version (default: build version)
//	OTEL_EXPORTER_OTLP_ENDPOINT     - OTLP collector endpoint
//	OTEL_EXPORTER_OTLP_PROTOCOL     - grpc or http/protobuf (default: grpc)
//	OTEL_EXPORTER_OTLP_HEADERS      - Headers, e.g. Authorization=Bearer xxx
//	OTEL_EXPORTER_OTLP_INSECURE     - Use an insecure connection
//	OTEL_TRACES_SAMPLER             - Sampler type (default: always_on)
//	OTEL_TRACES_SAMPLER_ARG         - Sampler ratio
//	OTEL_RESOURCE_ATTRIBUTES        - Additional resource attributes
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	apperrors "github.com/swmm-toolbox/pkg/errors"
)

var (
	globalConfig *Config
	configOnce   sync.Once
)

// ShutdownFunc flushes and stops the TracerProvider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(_ context.Context) error {
	return nil
}

type initOptions struct {
	version string
}

// Option configures Init.
type Option func(*initOptions)

// WithServiceVersion sets the version reported when OTEL_SERVICE_VERSION is unset.
func WithServiceVersion(v string) Option {
	return func(o *initOptions) { o.version = v }
}

// Init installs the global TracerProvider when tracing is enabled. When it
// is disabled, Init returns a no-op shutdown and leaves the default no-op
// provider in place.
func Init(ctx context.Context, opts ...Option) (ShutdownFunc, error) {
	cfg := loadConfig()
	if !cfg.Enabled {
		return noopShutdown, nil
	}
	if err := cfg.Validate(); err != nil {
		return noopShutdown, err
	}

	var o initOptions
	for _, opt := range opts {
		opt(&o)
	}

	res, err := buildResource(cfg, o.version)
	if err != nil {
		return noopShutdown, apperrors.Wrap(apperrors.CodeConfigError, "failed to build telemetry resource", err)
	}
	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return noopShutdown, apperrors.Wrap(apperrors.CodeConfigError, "failed to create OTLP exporter", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(createSampler(cfg)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

// Enabled returns whether OpenTelemetry tracing is enabled.
func Enabled() bool {
	return loadConfig().Enabled
}

// GetConfig returns the current telemetry configuration.
func GetConfig() *Config {
	return loadConfig()
}

func loadConfig() *Config {
	configOnce.Do(func() {
		globalConfig = LoadFromEnv()
	})
	return globalConfig
}
