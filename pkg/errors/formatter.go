package errors

import (
	"fmt"
)

// FormatterErrorData contains structured data for failures of the remote
// formatting service
type FormatterErrorData struct {
	Endpoint   string `json:"endpoint,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// FormatterUnavailable creates an error for network-level failures reaching
// the formatting service
func FormatterUnavailable(endpoint string, cause error) MCPError {
	message := "Formatting service unavailable"
	if cause != nil {
		message = fmt.Sprintf("Formatting service unavailable: %s", cause.Error())
	}

	data := &FormatterErrorData{Endpoint: endpoint}
	if cause != nil {
		data.Reason = cause.Error()
	}

	return WrapError(
		cause,
		CodeInternalError,
		message,
		CategoryFormatter,
		SeverityError,
	).WithData(data)
}

// FormatterHTTPError creates an error for non-success HTTP statuses from the
// formatting service
func FormatterHTTPError(endpoint string, statusCode int) MCPError {
	return NewError(
		CodeInternalError,
		fmt.Sprintf("Formatting service returned HTTP %d", statusCode),
		CategoryFormatter,
		SeverityError,
	).WithData(&FormatterErrorData{
		Endpoint:   endpoint,
		StatusCode: statusCode,
	})
}

// FormatterRejected creates an error for expressions the remote service
// refused to format. Line and column are 1-based positions from the remote
// parser; zero means unreported.
func FormatterRejected(message string, line, column int) MCPError {
	full := fmt.Sprintf("DAX formatting failed: %s", message)
	if line > 0 {
		full = fmt.Sprintf("DAX formatting failed at line %d, column %d: %s", line, column, message)
	}

	return NewError(
		CodeInternalError,
		full,
		CategoryFormatter,
		SeverityError,
	).WithData(&FormatterErrorData{
		Line:   line,
		Column: column,
		Reason: message,
	})
}
