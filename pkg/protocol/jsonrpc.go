package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// JSONRPCVersion is the supported JSON-RPC version
	JSONRPCVersion = "2.0"
)

// ErrorCode represents standard JSON-RPC 2.0 error codes
type ErrorCode int

// Error codes emitted by the gateway. The surface is deliberately closed:
// no code outside this set ever appears on the wire.
const (
	ParseError     ErrorCode = -32700
	MethodNotFound ErrorCode = -32601
	InvalidParams  ErrorCode = -32602
	InternalError  ErrorCode = -32603
)

// NotificationPrefix marks methods that never receive a response.
const NotificationPrefix = "notifications/"

// IsNotificationMethod reports whether the method name falls under the
// reserved fire-and-forget naming convention.
func IsNotificationMethod(method string) bool {
	return strings.HasPrefix(method, NotificationPrefix)
}

// JSONRPCMessage represents a JSON-RPC 2.0 message
type JSONRPCMessage struct {
	JSONRPC string `json:"jsonrpc"`
}

// Request represents a JSON-RPC 2.0 request. ID is a string or float64 when
// present; idPresent distinguishes an absent id (notification) from an
// explicit null, which the gateway also treats as absence.
type Request struct {
	JSONRPCMessage
	ID     interface{}     `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`

	idPresent bool
}

// HasID reports whether the request carried a usable identifier and
// therefore owes a response.
func (r *Request) HasID() bool {
	return r.idPresent && r.ID != nil
}

// NewRequest creates a new JSON-RPC 2.0 request
func NewRequest(id interface{}, method string, params interface{}) (*Request, error) {
	var paramsJSON json.RawMessage
	if params != nil {
		var err error
		paramsJSON, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
	}

	return &Request{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		ID:             id,
		Method:         method,
		Params:         paramsJSON,
		idPresent:      id != nil,
	}, nil
}

// ParseRequest decodes one line into a request envelope. It is strict about
// the required structure: the version tag must equal "2.0", the method must
// be a non-empty string, and the id, when present, must be a string or a
// number. Any violation is a parse failure; the caller still owes a
// null-id parse-error response for it.
func ParseRequest(data []byte) (*Request, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	versionRaw, ok := probe["jsonrpc"]
	if !ok {
		return nil, fmt.Errorf("missing jsonrpc version tag")
	}
	var version string
	if err := json.Unmarshal(versionRaw, &version); err != nil || version != JSONRPCVersion {
		return nil, fmt.Errorf("unsupported jsonrpc version %s", string(versionRaw))
	}

	methodRaw, ok := probe["method"]
	if !ok {
		return nil, fmt.Errorf("missing method")
	}
	var method string
	if err := json.Unmarshal(methodRaw, &method); err != nil {
		return nil, fmt.Errorf("method is not a string")
	}
	if method == "" {
		return nil, fmt.Errorf("empty method")
	}

	req := &Request{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: version},
		Method:         method,
		Params:         probe["params"],
	}

	if idRaw, ok := probe["id"]; ok {
		req.idPresent = true
		id, err := parseID(idRaw)
		if err != nil {
			return nil, err
		}
		req.ID = id
	}

	return req, nil
}

// parseID accepts string and number identifiers. An explicit null yields a
// nil id, which downgrades the message to a notification. Objects, arrays
// and booleans are envelope violations.
func parseID(raw json.RawMessage) (interface{}, error) {
	var id interface{}
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("invalid id: %w", err)
	}
	switch id.(type) {
	case nil, string, float64:
		return id, nil
	default:
		return nil, fmt.Errorf("id must be a string or a number, got %s", string(raw))
	}
}

// Response represents a JSON-RPC 2.0 response. Result and Error are mutually
// exclusive; the constructors below are the only places that populate them.
// ID has no omitempty tag so that parse-error responses encode a literal
// null identifier.
type Response struct {
	JSONRPCMessage
	ID     interface{}     `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// NewResponse creates a new JSON-RPC 2.0 success response
func NewResponse(id interface{}, result interface{}) (*Response, error) {
	var resultJSON json.RawMessage
	if result != nil {
		var err error
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
	}

	return &Response{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		ID:             id,
		Result:         resultJSON,
	}, nil
}

// NewErrorResponse creates a new JSON-RPC 2.0 error response
func NewErrorResponse(id interface{}, code ErrorCode, message string, data interface{}) (*Response, error) {
	var dataJSON interface{}
	if data != nil {
		dataBytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal error data: %w", err)
		}
		dataJSON = json.RawMessage(dataBytes)
	}

	return &Response{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		ID:             id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    dataJSON,
		},
	}, nil
}

// Notification represents a JSON-RPC 2.0 notification
type Notification struct {
	JSONRPCMessage
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// NewNotification creates a new JSON-RPC 2.0 notification
func NewNotification(method string, params interface{}) (*Notification, error) {
	var paramsJSON json.RawMessage
	if params != nil {
		var err error
		paramsJSON, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
	}

	return &Notification{
		JSONRPCMessage: JSONRPCMessage{JSONRPC: JSONRPCVersion},
		Method:         method,
		Params:         paramsJSON,
	}, nil
}

// Error represents a JSON-RPC 2.0 error object
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("rpc error: code = %d desc = %s", e.Code, e.Message)
}
