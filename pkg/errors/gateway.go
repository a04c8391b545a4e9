package errors

import (
	"fmt"
	"time"
)

// MethodErrorData contains structured data for method dispatch errors
type MethodErrorData struct {
	Method string `json:"method"`
}

// OperationErrorData contains structured data for failures inside a
// recognized request
type OperationErrorData struct {
	Operation string `json:"operation,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// NewParseError creates an error for lines that are not well-formed envelopes.
// These are always answered with a null identifier.
func NewParseError(cause error) MCPError {
	message := "Parse error"
	if cause != nil {
		message = fmt.Sprintf("Parse error: %s", cause.Error())
	}

	return WrapError(
		cause,
		CodeParseError,
		message,
		CategoryProtocol,
		SeverityError,
	)
}

// NewMethodNotFoundError creates an error for method names outside the fixed
// dispatch table
func NewMethodNotFoundError(method string) MCPError {
	return NewError(
		CodeMethodNotFound,
		fmt.Sprintf("Method not found: %s", method),
		CategoryProtocol,
		SeverityError,
	).WithData(&MethodErrorData{Method: method})
}

// NewInternalError creates an error for any failure while executing a
// recognized, well-formed request
func NewInternalError(operation string, cause error) MCPError {
	message := "Internal error"
	if operation != "" {
		message = fmt.Sprintf("Internal error during %s", operation)
	}
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, cause.Error())
	}

	err := WrapError(
		cause,
		CodeInternalError,
		message,
		CategoryInternal,
		SeverityError,
	)

	if operation != "" {
		err = err.WithData(&OperationErrorData{Operation: operation})
	}

	return err
}

// NewTimeoutError creates an internal-class error for remote calls that
// exceeded their deadline
func NewTimeoutError(operation string, timeout time.Duration) MCPError {
	return NewError(
		CodeInternalError,
		fmt.Sprintf("Operation '%s' timed out after %s", operation, timeout),
		CategoryTimeout,
		SeverityError,
	).WithData(&OperationErrorData{
		Operation: operation,
		Reason:    fmt.Sprintf("timeout after %s", timeout),
	})
}

// NewCancelledError creates an internal-class error for requests aborted by
// context cancellation
func NewCancelledError(operation string) MCPError {
	return NewError(
		CodeInternalError,
		fmt.Sprintf("Operation '%s' was cancelled", operation),
		CategoryCancelled,
		SeverityInfo,
	).WithData(&OperationErrorData{
		Operation: operation,
		Reason:    "cancelled",
	})
}
