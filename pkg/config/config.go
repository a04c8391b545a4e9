// Package config loads gateway configuration from the environment. The
// process has no flags beyond --version; everything tunable comes in through
// DAXFMT_* variables with working defaults, so a bare invocation talks to the
// public formatter service.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Log output formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Trace exporter selections
const (
	TracingExporterOTLPGRPC = "otlp-grpc"
	TracingExporterOTLPHTTP = "otlp-http"
	TracingExporterNoop     = "noop"
)

// Config holds the gateway configuration.
type Config struct {
	// ServiceURL is the base URL of the DAX formatter service.
	ServiceURL string `env:"DAXFMT_SERVICE_URL" envDefault:"https://www.daxformatter.com"`
	// RequestTimeout bounds each remote formatting call.
	RequestTimeout time.Duration `env:"DAXFMT_TIMEOUT" envDefault:"30s"`

	// LogLevel is the minimum level written to stderr (debug/info/warn/error).
	LogLevel string `env:"DAXFMT_LOG_LEVEL" envDefault:"info"`
	// LogFormat selects the stderr log encoding (text/json).
	LogFormat string `env:"DAXFMT_LOG_FORMAT" envDefault:"text"`

	// MetricsEnabled exposes Prometheus metrics on a side listener.
	MetricsEnabled bool `env:"DAXFMT_METRICS_ENABLED" envDefault:"false"`
	// MetricsPort is the metrics listener port.
	MetricsPort int `env:"DAXFMT_METRICS_PORT" envDefault:"9090"`

	// TracingEnabled turns on OpenTelemetry trace export.
	TracingEnabled bool `env:"DAXFMT_TRACING_ENABLED" envDefault:"false"`
	// TracingExporter selects the span exporter (otlp-grpc/otlp-http/noop).
	TracingExporter string `env:"DAXFMT_TRACING_EXPORTER" envDefault:"otlp-http"`
	// TracingEndpoint is the OTLP collector endpoint.
	TracingEndpoint string `env:"DAXFMT_TRACING_ENDPOINT" envDefault:"localhost:4318"`
	// TracingInsecure disables TLS on the exporter connection.
	TracingInsecure bool `env:"DAXFMT_TRACING_INSECURE" envDefault:"true"`
	// TracingSampleRate is the trace sampling ratio in [0, 1].
	TracingSampleRate float64 `env:"DAXFMT_TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load parses configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration a bare environment would produce.
func Default() *Config {
	return &Config{
		ServiceURL:        "https://www.daxformatter.com",
		RequestTimeout:    30 * time.Second,
		LogLevel:          "info",
		LogFormat:         LogFormatText,
		MetricsEnabled:    false,
		MetricsPort:       9090,
		TracingEnabled:    false,
		TracingExporter:   TracingExporterOTLPHTTP,
		TracingEndpoint:   "localhost:4318",
		TracingInsecure:   true,
		TracingSampleRate: 1.0,
	}
}

// Validate checks the configuration for values the gateway cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServiceURL)
	if err != nil {
		return fmt.Errorf("invalid DAXFMT_SERVICE_URL %q: %w", c.ServiceURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid DAXFMT_SERVICE_URL %q: scheme must be http or https", c.ServiceURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid DAXFMT_SERVICE_URL %q: missing host", c.ServiceURL)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("DAXFMT_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("DAXFMT_LOG_LEVEL must be one of debug/info/warn/error, got %q", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("DAXFMT_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	if c.MetricsEnabled && (c.MetricsPort < 1 || c.MetricsPort > 65535) {
		return fmt.Errorf("DAXFMT_METRICS_PORT must be in 1-65535, got %d", c.MetricsPort)
	}

	switch c.TracingExporter {
	case TracingExporterOTLPGRPC, TracingExporterOTLPHTTP, TracingExporterNoop:
	default:
		return fmt.Errorf("DAXFMT_TRACING_EXPORTER must be one of otlp-grpc/otlp-http/noop, got %q", c.TracingExporter)
	}

	if c.TracingEnabled && c.TracingExporter != TracingExporterNoop && c.TracingEndpoint == "" {
		return fmt.Errorf("DAXFMT_TRACING_ENDPOINT must be set when tracing is enabled")
	}

	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("DAXFMT_TRACING_SAMPLE_RATE must be in [0, 1], got %g", c.TracingSampleRate)
	}

	return nil
}
