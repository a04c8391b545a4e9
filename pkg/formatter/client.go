// Package formatter implements the HTTP client for the remote DAX formatting
// service. The client speaks the daxformatter.com wire shape: PascalCase JSON
// bodies POSTed to the daxtextformat (single) and daxtextformatmulti (batch)
// endpoints, with unset option fields left off the body so the service applies
// its own defaults.
package formatter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	gwerrors "github.com/tabulartools/daxfmt-mcp/pkg/errors"
	"github.com/tabulartools/daxfmt-mcp/pkg/logging"
)

const (
	defaultBaseURL = "https://www.daxformatter.com"
	defaultTimeout = 30 * time.Second

	singleFormatPath = "/api/daxformatter/daxtextformat"
	multiFormatPath  = "/api/daxformatter/daxtextformatmulti"

	maxErrorBody = 8 * 1024
)

// Status label values reported to the call recorder.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// CallRecorder counts calls to the remote service by endpoint and outcome.
// The observability package's metrics providers satisfy it.
type CallRecorder interface {
	RecordFormatterCall(ctx context.Context, endpoint, status string)
}

type nopRecorder struct{}

func (nopRecorder) RecordFormatterCall(context.Context, string, string) {}

// Line length wire values understood by the service.
const (
	LineLengthLong  = 0
	LineLengthShort = 1
	LineLengthAuto  = 2
)

// Options carries formatting settings for one request. Nil pointers and empty
// strings stay off the wire.
type Options struct {
	// MaxLineLength selects the line style: 0 long, 1 short, 2 auto.
	MaxLineLength *int
	// SkipSpaceAfterFunctionName drops the space between a function name and
	// its opening parenthesis.
	SkipSpaceAfterFunctionName *bool
	// ListSeparator and DecimalSeparator override the regional defaults.
	ListSeparator    string
	DecimalSeparator string
	// ServerName and DatabaseName are opaque telemetry labels.
	ServerName   string
	DatabaseName string
}

// RemoteError is a formatting error reported by the service for one
// expression. Line and column are 1-based; zero means unreported.
type RemoteError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// formatRequest is the wire body shared by both endpoints. Dax holds a string
// for the single endpoint and a []string for the batch endpoint.
type formatRequest struct {
	Dax                        interface{} `json:"Dax"`
	MaxLineLength              *int        `json:"MaxLineLength,omitempty"`
	SkipSpaceAfterFunctionName *bool       `json:"SkipSpaceAfterFunctionName,omitempty"`
	ListSeparator              string      `json:"ListSeparator,omitempty"`
	DecimalSeparator           string      `json:"DecimalSeparator,omitempty"`
	ServerName                 string      `json:"ServerName,omitempty"`
	DatabaseName               string      `json:"DatabaseName,omitempty"`
	CallerApp                  string      `json:"CallerApp"`
	CallerVersion              string      `json:"CallerVersion"`
}

// formatResponse is the wire shape of one formatted result.
type formatResponse struct {
	Formatted string        `json:"formatted"`
	Errors    []RemoteError `json:"errors"`
}

// Config configures a Client.
type Config struct {
	// BaseURL is the service base URL; defaults to the public service.
	BaseURL string
	// Timeout bounds each HTTP call when no HTTPClient is supplied.
	Timeout time.Duration
	// CallerApp and CallerVersion identify this gateway to the service.
	CallerApp     string
	CallerVersion string
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
	// Logger receives client diagnostics; defaults to a nop logger.
	Logger logging.Logger
	// Tracer wraps each service call in a span; defaults to a no-op tracer.
	Tracer trace.Tracer
	// Recorder counts service calls; defaults to a no-op recorder.
	Recorder CallRecorder
}

// Client calls the remote formatting service. Construct it once at startup
// and reuse it; the gateway keeps at most one call in flight at a time.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	callerApp     string
	callerVersion string
	logger        logging.Logger
	tracer        trace.Tracer
	recorder      CallRecorder

	resolveOnce  sync.Once
	resolvedBase string
}

// NewClient creates a formatting service client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid formatter base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid formatter base URL %q: scheme must be http or https", baseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	callerApp := cfg.CallerApp
	if callerApp == "" {
		callerApp = "daxfmt-mcp"
	}
	callerVersion := cfg.CallerVersion
	if callerVersion == "" {
		callerVersion = "dev"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("daxfmt-formatter")
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    httpClient,
		callerApp:     callerApp,
		callerVersion: callerVersion,
		logger:        logger,
		tracer:        tracer,
		recorder:      recorder,
	}, nil
}

// Format formats a single DAX expression. A nil opts sends the expression
// with caller identity only. Remote rejections (syntax errors and the like)
// come back as typed errors carrying the service's message and position.
func (c *Client) Format(ctx context.Context, dax string, opts *Options) (string, error) {
	body := c.buildRequest(dax, opts)

	var result formatResponse
	if err := c.post(ctx, singleFormatPath, 1, body, &result); err != nil {
		return "", err
	}

	if len(result.Errors) > 0 {
		remote := result.Errors[0]
		return "", gwerrors.FormatterRejected(remote.Message, remote.Line, remote.Column)
	}

	return result.Formatted, nil
}

// FormatBatch formats expressions in one round trip. The service answers with
// one result per expression in input order; anything else, including a remote
// error on any single item, fails the whole call so the caller can degrade to
// per-expression requests.
func (c *Client) FormatBatch(ctx context.Context, daxes []string, opts *Options) ([]string, error) {
	if len(daxes) == 0 {
		return nil, fmt.Errorf("no expressions to format")
	}

	body := c.buildRequest(daxes, opts)

	var results []formatResponse
	if err := c.post(ctx, multiFormatPath, len(daxes), body, &results); err != nil {
		return nil, err
	}

	if len(results) != len(daxes) {
		return nil, gwerrors.FormatterUnavailable(
			multiFormatPath,
			fmt.Errorf("batch returned %d results for %d expressions", len(results), len(daxes)),
		)
	}

	formatted := make([]string, len(results))
	for i, result := range results {
		if len(result.Errors) > 0 {
			remote := result.Errors[0]
			return nil, gwerrors.FormatterRejected(remote.Message, remote.Line, remote.Column).
				WithDetail(fmt.Sprintf("batch item %d", i+1))
		}
		formatted[i] = result.Formatted
	}

	return formatted, nil
}

// buildRequest assembles the wire body. Caller identity always rides along;
// option fields appear only when the caller set them.
func (c *Client) buildRequest(dax interface{}, opts *Options) formatRequest {
	req := formatRequest{
		Dax:           dax,
		CallerApp:     c.callerApp,
		CallerVersion: c.callerVersion,
	}
	if opts != nil {
		req.MaxLineLength = opts.MaxLineLength
		req.SkipSpaceAfterFunctionName = opts.SkipSpaceAfterFunctionName
		req.ListSeparator = opts.ListSeparator
		req.DecimalSeparator = opts.DecimalSeparator
		req.ServerName = opts.ServerName
		req.DatabaseName = opts.DatabaseName
	}
	return req
}

// post sends a JSON body to an API path on the resolved service host and
// decodes the JSON response into result. Each call is spanned and counted.
func (c *Client) post(ctx context.Context, path string, expressions int, body interface{}, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return gwerrors.NewInternalError("encode formatter request", err)
	}

	ctx, span := c.tracer.Start(ctx, "formatter.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("daxfmt.endpoint", path),
			attribute.Int("daxfmt.expressions", expressions),
		),
	)
	defer span.End()

	if err := c.send(ctx, path, payload, result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.recorder.RecordFormatterCall(ctx, path, statusError)
		return err
	}

	span.SetStatus(codes.Ok, "")
	c.recorder.RecordFormatterCall(ctx, path, statusSuccess)
	return nil
}

// send does the HTTP round trip.
func (c *Client) send(ctx context.Context, path string, payload []byte, result interface{}) error {
	endpoint := c.resolveBase(ctx) + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return gwerrors.NewInternalError("build formatter request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return gwerrors.ConvertStandardError(ctx.Err())
		}
		return gwerrors.FormatterUnavailable(path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("formatter call completed",
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("formatter error response",
			logging.String("path", path),
			logging.Int("status", resp.StatusCode),
			logging.String("body", string(raw)),
		)
		return gwerrors.FormatterHTTPError(path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return gwerrors.FormatterUnavailable(path, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// resolveBase resolves the service host once per process. The public service
// answers API POSTs from a regional host behind a redirect; following the
// redirect on a throwaway GET up front keeps every later POST on the final
// host. Resolution failure falls back to the configured base.
func (c *Client) resolveBase(ctx context.Context) string {
	c.resolveOnce.Do(func() {
		c.resolvedBase = c.baseURL

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+singleFormatPath, nil)
		if err != nil {
			return
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Debug("service location probe failed, using configured base",
				logging.String("base", c.baseURL),
				logging.ErrorField(err),
			)
			return
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

		final := resp.Request.URL
		resolved := final.Scheme + "://" + final.Host
		if resolved != c.baseURL {
			c.logger.Debug("resolved formatter service location",
				logging.String("base", c.baseURL),
				logging.String("resolved", resolved),
			)
		}
		c.resolvedBase = resolved
	})
	return c.resolvedBase
}
