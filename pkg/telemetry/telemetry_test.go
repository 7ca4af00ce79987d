package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

func resetGlobalConfig() {
	globalConfig = nil
	configOnce = sync.Once{}
}

func TestInit_Disabled(t *testing.T) {
	resetGlobalConfig()
	t.Cleanup(resetGlobalConfig)
	t.Setenv("OTEL_ENABLED", "")

	ctx := context.Background()
	shutdown, err := Init(ctx, WithServiceVersion("1.0.0"))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(ctx))
	assert.False(t, Enabled())
}

func TestInit_InvalidConfig(t *testing.T) {
	resetGlobalConfig()
	t.Cleanup(resetGlobalConfig)
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_TRACES_SAMPLER", "sometimes")

	shutdown, err := Init(context.Background())
	require.Error(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestGetConfig(t *testing.T) {
	resetGlobalConfig()
	t.Cleanup(resetGlobalConfig)
	t.Setenv("OTEL_SERVICE_NAME", "test-service")

	assert.Equal(t, "test-service", GetConfig().ServiceName)
}

func TestBuildResource(t *testing.T) {
	cfg := loadFrom(envOf(map[string]string{"OTEL_RESOURCE_ATTRIBUTES": "team=hydro"}))

	res, err := buildResource(cfg, "1.4.0")
	require.NoError(t, err)
	attrs := res.Attributes()
	assert.Contains(t, attrs, semconv.ServiceName(DefaultServiceName))
	assert.Contains(t, attrs, semconv.ServiceVersion("1.4.0"))
	assert.Contains(t, attrs, attribute.String("team", "hydro"))

	cfg.ServiceVersion = "from-env"
	res, err = buildResource(cfg, "1.4.0")
	require.NoError(t, err)
	assert.Contains(t, res.Attributes(), semconv.ServiceVersion("from-env"))
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		sampler string
		arg     string
		want    string
	}{
		{"always_on", "", "AlwaysOnSampler"},
		{"always_off", "", "AlwaysOffSampler"},
		{"traceidratio", "0.5", "TraceIDRatioBased{0.5}"},
		{"parentbased_always_on", "", "ParentBased{root:AlwaysOnSampler"},
		{"parentbased_traceidratio", "0.1", "ParentBased{root:TraceIDRatioBased{0.1}"},
	}

	for _, tt := range tests {
		t.Run(tt.sampler, func(t *testing.T) {
			cfg := &Config{Sampler: tt.sampler, SamplerArg: tt.arg}
			assert.Contains(t, createSampler(cfg).Description(), tt.want)
		})
	}
}

func TestSplitEndpoint(t *testing.T) {
	ep, plain := splitEndpoint("http://collector:4318")
	assert.Equal(t, "collector:4318", ep)
	assert.True(t, plain)

	ep, plain = splitEndpoint("https://collector:4317")
	assert.Equal(t, "collector:4317", ep)
	assert.False(t, plain)
}

func TestCreateExporter(t *testing.T) {
	ctx := context.Background()
	for _, protocol := range []string{ProtocolGRPC, ProtocolHTTP} {
		t.Run(protocol, func(t *testing.T) {
			cfg := &Config{Protocol: protocol, Endpoint: "http://127.0.0.1:4317", Headers: map[string]string{"k": "v"}}
			exp, err := createExporter(ctx, cfg)
			require.NoError(t, err)
			assert.NoError(t, exp.Shutdown(ctx))
		})
	}
}
