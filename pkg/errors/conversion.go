package errors

import (
	"encoding/json"
	"fmt"

	"github.com/tabulartools/daxfmt-mcp/pkg/protocol"
)

// ToJSONRPCResponse converts any error to a JSON-RPC error response carrying
// the originating request id. Errors outside the MCPError taxonomy become
// internal errors.
func ToJSONRPCResponse(err error, requestID interface{}) (*protocol.Response, error) {
	if err == nil {
		return nil, fmt.Errorf("cannot create error response from nil error")
	}

	if mcpErr, ok := AsMCPError(err); ok {
		return protocol.NewErrorResponse(requestID, protocol.ErrorCode(mcpErr.Code()), mcpErr.Message(), mcpErr.Data())
	}

	return protocol.NewErrorResponse(requestID, protocol.InternalError, err.Error(), nil)
}

// ToJSONRPCError converts any error to a JSON-RPC error object
func ToJSONRPCError(err error) *protocol.Error {
	if err == nil {
		return nil
	}

	if mcpErr, ok := AsMCPError(err); ok {
		return &protocol.Error{
			Code:    protocol.ErrorCode(mcpErr.Code()),
			Message: mcpErr.Message(),
			Data:    mcpErr.Data(),
		}
	}

	return &protocol.Error{
		Code:    protocol.InternalError,
		Message: err.Error(),
	}
}

// FromJSONRPCError converts a JSON-RPC error object to an MCPError
func FromJSONRPCError(jsonrpcErr *protocol.Error) MCPError {
	if jsonrpcErr == nil {
		return nil
	}

	code := int(jsonrpcErr.Code)
	category := GetErrorCodeCategory(code)
	severity := GetErrorCodeSeverity(code)

	err := NewError(code, jsonrpcErr.Message, category, severity)
	if jsonrpcErr.Data != nil {
		err = err.WithData(jsonrpcErr.Data)
	}

	return err
}

// ConvertStandardError converts common Go errors to appropriate gateway errors
func ConvertStandardError(err error) MCPError {
	if err == nil {
		return nil
	}

	if mcpErr, ok := AsMCPError(err); ok {
		return mcpErr
	}

	errStr := err.Error()

	if errStr == "context canceled" {
		return NewCancelledError("request")
	}

	if errStr == "context deadline exceeded" {
		return NewError(CodeInternalError, "Request timed out", CategoryTimeout, SeverityError)
	}

	if _, ok := err.(*json.SyntaxError); ok {
		return NewParseError(err)
	}

	if _, ok := err.(*json.UnmarshalTypeError); ok {
		return NewInvalidParamsError("invalid parameter type")
	}

	return WrapError(err, CodeInternalError, "Internal error", CategoryInternal, SeverityError)
}
