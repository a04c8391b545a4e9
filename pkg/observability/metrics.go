package observability

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Values for the status label shared by all metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const metricsNamespace = "daxfmt"

// MetricsConfig configures the metrics provider
type MetricsConfig struct {
	// Service identification, attached as constant labels
	ServiceName    string
	ServiceVersion string

	// Scrape endpoint configuration
	MetricsPath string // HTTP path for the scrape endpoint (default: /metrics)
	MetricsPort int    // port for the side listener (default: 9090)

	// Latency buckets in milliseconds
	HistogramBuckets []float64
}

// MetricsProvider records gateway activity. Implementations must never touch
// stdout; the scrape endpoint runs on its own HTTP listener.
type MetricsProvider interface {
	// RecordRequest records one routed inbound message
	RecordRequest(ctx context.Context, method, status string, duration time.Duration)

	// RecordToolCall records one tool invocation
	RecordToolCall(ctx context.Context, tool, status string, duration time.Duration)

	// RecordError records one error response by method and JSON-RPC code
	RecordError(ctx context.Context, method, code string)

	// RecordFormatterCall records one call to the remote formatting service
	RecordFormatterCall(ctx context.Context, endpoint, status string)

	// Management
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// PrometheusMetricsProvider implements MetricsProvider using Prometheus. All
// collectors live in a private registry so the provider never collides with
// other library instrumentation.
type PrometheusMetricsProvider struct {
	config   MetricsConfig
	registry *prometheus.Registry
	listener net.Listener
	server   *http.Server

	requestDuration  *prometheus.HistogramVec
	toolCallDuration *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	errorTotal       *prometheus.CounterVec
	formatterTotal   *prometheus.CounterVec
}

// NewMetricsProvider creates a new Prometheus metrics provider
func NewMetricsProvider(config MetricsConfig) (*PrometheusMetricsProvider, error) {
	// Set defaults. Port zero stays zero so tests can bind ephemerally; the
	// configuration layer supplies the real default.
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.HistogramBuckets == nil {
		// Default buckets for milliseconds
		config.HistogramBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}
	}

	provider := &PrometheusMetricsProvider{
		config:   config,
		registry: prometheus.NewRegistry(),
	}

	provider.initializeMetrics()

	if err := provider.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return provider, nil
}

// initializeMetrics creates all metric collectors
func (p *PrometheusMetricsProvider) initializeMetrics() {
	constLabels := prometheus.Labels{}
	if p.config.ServiceName != "" {
		constLabels["service"] = p.config.ServiceName
	}
	if p.config.ServiceVersion != "" {
		constLabels["version"] = p.config.ServiceVersion
	}

	p.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "request_duration_milliseconds",
			Help:        "Duration of inbound requests in milliseconds",
			Buckets:     p.config.HistogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"method", "status"},
	)

	p.toolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "tool_call_duration_milliseconds",
			Help:        "Duration of tool calls in milliseconds",
			Buckets:     p.config.HistogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"tool", "status"},
	)

	p.requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "request_total",
			Help:        "Total number of inbound requests",
			ConstLabels: constLabels,
		},
		[]string{"method", "status"},
	)

	p.errorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "error_total",
			Help:        "Total number of error responses by JSON-RPC code",
			ConstLabels: constLabels,
		},
		[]string{"method", "code"},
	)

	p.formatterTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "formatter_call_total",
			Help:        "Total number of calls to the remote formatting service",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "status"},
	)
}

// registerMetrics registers all metrics with the private registry
func (p *PrometheusMetricsProvider) registerMetrics() error {
	collectors := []prometheus.Collector{
		p.requestDuration,
		p.toolCallDuration,
		p.requestTotal,
		p.errorTotal,
		p.formatterTotal,
	}

	for _, collector := range collectors {
		if err := p.registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// RecordRequest records one routed inbound message
func (p *PrometheusMetricsProvider) RecordRequest(ctx context.Context, method, status string, duration time.Duration) {
	ms := float64(duration.Milliseconds())
	p.requestDuration.WithLabelValues(method, status).Observe(ms)
	p.requestTotal.WithLabelValues(method, status).Inc()
}

// RecordToolCall records one tool invocation
func (p *PrometheusMetricsProvider) RecordToolCall(ctx context.Context, tool, status string, duration time.Duration) {
	ms := float64(duration.Milliseconds())
	p.toolCallDuration.WithLabelValues(tool, status).Observe(ms)
}

// RecordError records one error response
func (p *PrometheusMetricsProvider) RecordError(ctx context.Context, method, code string) {
	p.errorTotal.WithLabelValues(method, code).Inc()
}

// RecordFormatterCall records one call to the remote formatting service
func (p *PrometheusMetricsProvider) RecordFormatterCall(ctx context.Context, endpoint, status string) {
	p.formatterTotal.WithLabelValues(endpoint, status).Inc()
}

// Start binds the scrape listener and serves it in the background. A bind
// failure is returned so startup can abort instead of running blind.
func (p *PrometheusMetricsProvider) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(p.config.MetricsPath, promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", p.config.MetricsPort))
	if err != nil {
		return fmt.Errorf("failed to bind metrics listener: %w", err)
	}

	p.listener = listener
	p.server = &http.Server{Handler: mux}

	go func() {
		_ = p.server.Serve(listener)
	}()

	return nil
}

// Addr returns the bound scrape address once Start has succeeded.
func (p *PrometheusMetricsProvider) Addr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// Shutdown gracefully shuts down the metrics server
func (p *PrometheusMetricsProvider) Shutdown(ctx context.Context) error {
	if p.server != nil {
		return p.server.Shutdown(ctx)
	}
	return nil
}

// NopMetricsProvider discards every observation. It stands in when metrics
// are disabled so callers never branch on configuration.
type NopMetricsProvider struct{}

// NewNopMetricsProvider creates a metrics provider that records nothing.
func NewNopMetricsProvider() *NopMetricsProvider {
	return &NopMetricsProvider{}
}

func (*NopMetricsProvider) RecordRequest(context.Context, string, string, time.Duration) {}

func (*NopMetricsProvider) RecordToolCall(context.Context, string, string, time.Duration) {}

func (*NopMetricsProvider) RecordError(context.Context, string, string) {}

func (*NopMetricsProvider) RecordFormatterCall(context.Context, string, string) {}

func (*NopMetricsProvider) Start(context.Context) error { return nil }

func (*NopMetricsProvider) Shutdown(context.Context) error { return nil }
