package server

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	gwerrors "github.com/tabulartools/daxfmt-mcp/pkg/errors"
	"github.com/tabulartools/daxfmt-mcp/pkg/logging"
	"github.com/tabulartools/daxfmt-mcp/pkg/observability"
	"github.com/tabulartools/daxfmt-mcp/pkg/protocol"
)

const (
	defaultName    = "daxfmt-mcp"
	defaultVersion = "dev"
)

// Server routes decoded JSON-RPC messages to their handlers. The method
// surface is closed: every recognized method is a case in route, anything
// else is answered with a method-not-found error. The server never touches
// the wire itself; the transport feeds it one line at a time and writes
// whatever response it returns.
type Server struct {
	name     string
	version  string
	provider ToolProvider
	logger   logging.Logger
	metrics  observability.MetricsProvider
	tracer   trace.Tracer

	// Handshake state, recorded for diagnostics only. Requests are never
	// rejected for arriving before initialize.
	stateLock   sync.RWMutex
	initialized bool
	clientInfo  *protocol.ClientInfo
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithName sets the server name advertised during initialization
func WithName(name string) ServerOption {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the server version advertised during initialization
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics provider
func WithMetrics(metrics observability.MetricsProvider) ServerOption {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithTracer sets the tracer that wraps method handling
func WithTracer(tracer trace.Tracer) ServerOption {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// New creates a server that routes tool traffic to the given provider.
func New(provider ToolProvider, opts ...ServerOption) (*Server, error) {
	if provider == nil {
		return nil, fmt.Errorf("tool provider is required")
	}

	s := &Server{
		name:     defaultName,
		version:  defaultVersion,
		provider: provider,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.metrics == nil {
		s.metrics = observability.NewNopMetricsProvider()
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer(defaultName)
	}

	return s, nil
}

// HandleMessage processes one line read from the transport and returns the
// response it owes, or nil when the message owes none (notifications and
// requests without an id). It never panics and never drops a parse failure
// silently.
func (s *Server) HandleMessage(ctx context.Context, line []byte) *protocol.Response {
	start := time.Now()

	req, err := protocol.ParseRequest(line)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("rejecting unparseable line")
		s.metrics.RecordError(ctx, "unknown", strconv.Itoa(gwerrors.CodeParseError))
		s.metrics.RecordRequest(ctx, "unknown", observability.StatusError, time.Since(start))
		return s.errorResponse(ctx, nil, gwerrors.NewParseError(err))
	}

	if protocol.IsNotificationMethod(req.Method) {
		s.handleNotification(ctx, req)
		return nil
	}

	if !req.HasID() {
		// Request-shaped but with no way to answer it.
		s.logger.WithContext(ctx).Debug("dropping request without id",
			logging.String("method", req.Method))
		return nil
	}

	return s.dispatch(ctx, req)
}

// dispatch runs one identified request to completion. Faults of any kind,
// panics included, come back as error responses carrying the original id.
func (s *Server) dispatch(ctx context.Context, req *protocol.Request) (resp *protocol.Response) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "mcp."+req.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("mcp.method", req.Method)),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.WithContext(ctx).Error("recovered from panic in handler",
				logging.String("method", req.Method),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
			err := gwerrors.NewInternalError(req.Method, fmt.Errorf("panic: %v", r))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.recordOutcome(ctx, req.Method, err, time.Since(start))
			resp = s.errorResponse(ctx, req.ID, err)
		}
	}()

	result, err := s.route(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.recordOutcome(ctx, req.Method, err, time.Since(start))
		s.logger.WithContext(ctx).WithError(err).Warn("request failed",
			logging.String("method", req.Method))
		return s.errorResponse(ctx, req.ID, err)
	}

	span.SetStatus(codes.Ok, "")
	s.recordOutcome(ctx, req.Method, nil, time.Since(start))

	resp, marshalErr := protocol.NewResponse(req.ID, result)
	if marshalErr != nil {
		s.logger.WithContext(ctx).WithError(marshalErr).Error("failed to encode result",
			logging.String("method", req.Method))
		return s.errorResponse(ctx, req.ID, gwerrors.NewInternalError(req.Method, marshalErr))
	}
	return resp
}

// route is the closed dispatch table.
func (s *Server) route(ctx context.Context, req *protocol.Request) (interface{}, error) {
	switch req.Method {
	case protocol.MethodInitialize:
		return s.handleInitialize(ctx, req)
	case protocol.MethodListTools:
		return s.handleListTools(ctx)
	case protocol.MethodCallTool:
		return s.handleCallTool(ctx, req)
	case protocol.MethodListResources:
		// Declared capability, permanently empty collection.
		return &protocol.ListResourcesResult{Resources: []protocol.Resource{}}, nil
	case protocol.MethodListPrompts:
		return &protocol.ListPromptsResult{Prompts: []protocol.Prompt{}}, nil
	default:
		return nil, gwerrors.NewMethodNotFoundError(req.Method)
	}
}

func (s *Server) handleInitialize(ctx context.Context, req *protocol.Request) (interface{}, error) {
	var params protocol.InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, gwerrors.NewInvalidParamsErrorf("malformed initialize params: %s", err)
		}
	}

	s.stateLock.Lock()
	s.initialized = true
	s.clientInfo = params.ClientInfo
	s.stateLock.Unlock()

	fields := []logging.Field{logging.String("client_protocol", params.ProtocolVersion)}
	if params.ClientInfo != nil {
		fields = append(fields,
			logging.String("client_name", params.ClientInfo.Name),
			logging.String("client_version", params.ClientInfo.Version),
		)
	}
	s.logger.WithContext(ctx).Info("client connected", fields...)

	return &protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolRevision,
		Capabilities: protocol.ServerCapabilities{
			Tools:     &protocol.ToolsCapability{},
			Resources: &protocol.ResourcesCapability{},
			Prompts:   &protocol.PromptsCapability{},
		},
		ServerInfo: protocol.ServerInfo{
			Name:    s.name,
			Version: s.version,
		},
	}, nil
}

func (s *Server) handleListTools(ctx context.Context) (interface{}, error) {
	tools := s.provider.Tools()
	if tools == nil {
		tools = []protocol.Tool{}
	}
	s.logger.WithContext(ctx).Debug("listing tools", logging.Int("count", len(tools)))
	return &protocol.ListToolsResult{Tools: tools}, nil
}

func (s *Server) handleCallTool(ctx context.Context, req *protocol.Request) (interface{}, error) {
	if len(req.Params) == 0 {
		return nil, gwerrors.NewInvalidParamsError("params are required")
	}
	var params protocol.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, gwerrors.NewInvalidParamsErrorf("malformed tools/call params: %s", err)
	}
	if params.Name == "" {
		return nil, gwerrors.MissingParameter("name")
	}

	if !s.isInitialized() {
		s.logger.WithContext(ctx).Debug("tool call before initialize",
			logging.String("tool", params.Name))
	}

	ctx, span := s.tracer.Start(ctx, "tool."+params.Name,
		trace.WithAttributes(attribute.String("mcp.tool", params.Name)))
	defer span.End()

	start := time.Now()
	result, err := s.provider.CallTool(ctx, params.Name, params.Arguments)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordToolCall(ctx, params.Name, observability.StatusError, elapsed)
		if mcpErr, ok := gwerrors.AsMCPError(err); ok {
			err = mcpErr.WithContext(&gwerrors.Context{
				RequestID: logging.RequestIDFromContext(ctx),
				Method:    protocol.MethodCallTool,
				Tool:      params.Name,
				Timestamp: time.Now(),
			})
		}
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	s.metrics.RecordToolCall(ctx, params.Name, observability.StatusSuccess, elapsed)
	return result, nil
}

// handleNotification swallows the message whatever its payload looks like.
// Nothing under the notification prefix ever produces a response.
func (s *Server) handleNotification(ctx context.Context, req *protocol.Request) {
	start := time.Now()
	switch req.Method {
	case protocol.NotificationInitialized:
		s.logger.WithContext(ctx).Debug("client ready")
	default:
		s.logger.WithContext(ctx).Debug("ignoring notification",
			logging.String("method", req.Method))
	}
	s.metrics.RecordRequest(ctx, req.Method, observability.StatusSuccess, time.Since(start))
}

// errorResponse converts err into a response carrying id, falling back to a
// bare internal error if the conversion itself cannot encode.
func (s *Server) errorResponse(ctx context.Context, id interface{}, err error) *protocol.Response {
	resp, convErr := gwerrors.ToJSONRPCResponse(err, id)
	if convErr != nil {
		s.logger.WithContext(ctx).WithError(convErr).Error("failed to encode error response")
		resp, _ = protocol.NewErrorResponse(id, protocol.InternalError, "Internal error", nil)
	}
	return resp
}

func (s *Server) recordOutcome(ctx context.Context, method string, err error, elapsed time.Duration) {
	if err == nil {
		s.metrics.RecordRequest(ctx, method, observability.StatusSuccess, elapsed)
		return
	}

	code := gwerrors.CodeInternalError
	if mcpErr, ok := gwerrors.AsMCPError(err); ok {
		code = mcpErr.Code()
	}
	s.metrics.RecordError(ctx, method, strconv.Itoa(code))
	s.metrics.RecordRequest(ctx, method, observability.StatusError, elapsed)
}

func (s *Server) isInitialized() bool {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.initialized
}
