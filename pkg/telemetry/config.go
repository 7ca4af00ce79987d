package telemetry

import (
	"os"
	"strconv"
	"strings"

	apperrors "github.com/swmm-toolbox/pkg/errors"
)

// DefaultServiceName is reported when OTEL_SERVICE_NAME is unset.
const DefaultServiceName = "swmmtoolbox"

// Protocols accepted in OTEL_EXPORTER_OTLP_PROTOCOL.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http/protobuf"
)

// Config holds OpenTelemetry configuration loaded from environment variables.
type Config struct {
	// Enabled is OTEL_ENABLED=true. Spans are no-ops otherwise.
	Enabled bool

	ServiceName    string // OTEL_SERVICE_NAME
	ServiceVersion string // OTEL_SERVICE_VERSION, empty means the build version

	// Endpoint is the OTLP collector endpoint. An http:// scheme implies Insecure.
	Endpoint string
	Protocol string
	Headers  map[string]string
	Insecure bool

	// Sampler is one of always_on, always_off, traceidratio,
	// parentbased_always_on, parentbased_always_off or parentbased_traceidratio.
	Sampler    string
	SamplerArg string

	ResourceAttrs map[string]string
}

// LoadFromEnv loads configuration from the process environment.
func LoadFromEnv() *Config {
	return loadFrom(os.Getenv)
}

func loadFrom(getenv func(string) string) *Config {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	isTrue := func(key string) bool {
		b, _ := strconv.ParseBool(get(key, "false"))
		return b
	}

	protocol := strings.ToLower(get("OTEL_EXPORTER_OTLP_PROTOCOL", ProtocolGRPC))
	if protocol == "http" {
		protocol = ProtocolHTTP
	}

	return &Config{
		Enabled:        isTrue("OTEL_ENABLED"),
		ServiceName:    get("OTEL_SERVICE_NAME", DefaultServiceName),
		ServiceVersion: get("OTEL_SERVICE_VERSION", ""),
		Endpoint:       get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Protocol:       protocol,
		Headers:        parseKeyValuePairs(getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		Insecure:       isTrue("OTEL_EXPORTER_OTLP_INSECURE"),
		Sampler:        strings.ToLower(get("OTEL_TRACES_SAMPLER", "always_on")),
		SamplerArg:     get("OTEL_TRACES_SAMPLER_ARG", ""),
		ResourceAttrs:  parseKeyValuePairs(getenv("OTEL_RESOURCE_ATTRIBUTES")),
	}
}

// Validate rejects protocol and sampler settings the exporter cannot honor.
func (c *Config) Validate() error {
	switch c.Protocol {
	case ProtocolGRPC, ProtocolHTTP:
	default:
		return apperrors.Newf(apperrors.CodeConfigError, "unsupported OTLP protocol: %s", c.Protocol)
	}

	switch c.Sampler {
	case "always_on", "always_off", "parentbased_always_on", "parentbased_always_off":
	case "traceidratio", "parentbased_traceidratio":
		if _, err := c.SamplerRatio(); err != nil {
			return err
		}
	default:
		return apperrors.Newf(apperrors.CodeConfigError, "unsupported trace sampler: %s", c.Sampler)
	}
	return nil
}

// SamplerRatio parses SamplerArg. An empty argument means 1.
func (c *Config) SamplerRatio() (float64, error) {
	if c.SamplerArg == "" {
		return 1, nil
	}
	ratio, err := strconv.ParseFloat(c.SamplerArg, 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return 0, apperrors.Newf(apperrors.CodeConfigError, "sampler ratio must be within [0, 1]: %q", c.SamplerArg)
	}
	return ratio, nil
}

// parseKeyValuePairs parses "k1=v1,k2=v2". Values may contain '='.
func parseKeyValuePairs(s string) map[string]string {
	result := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		result[key] = strings.TrimSpace(value)
	}
	return result
}
