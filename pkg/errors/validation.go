package errors

import (
	"fmt"
	"strings"
)

// ValidationErrorData contains structured data for parameter validation errors
type ValidationErrorData struct {
	Field    string      `json:"field,omitempty"`
	Value    interface{} `json:"value,omitempty"`
	Expected string      `json:"expected,omitempty"`
}

// ToolErrorData contains structured data for tool dispatch errors
type ToolErrorData struct {
	Tool  string   `json:"tool"`
	Known []string `json:"known,omitempty"`
}

// NewInvalidParamsError creates an error for missing or structurally wrong
// parameters
func NewInvalidParamsError(detail string) MCPError {
	message := "Invalid params"
	if detail != "" {
		message = fmt.Sprintf("Invalid params: %s", detail)
	}

	return NewError(
		CodeInvalidParams,
		message,
		CategoryValidation,
		SeverityError,
	)
}

// NewInvalidParamsErrorf creates an invalid-params error with a formatted detail
func NewInvalidParamsErrorf(format string, args ...interface{}) MCPError {
	return NewInvalidParamsError(fmt.Sprintf(format, args...))
}

// MissingParameter creates an error for a required parameter that was absent
func MissingParameter(param string) MCPError {
	return NewError(
		CodeInvalidParams,
		fmt.Sprintf("Invalid params: required parameter '%s' is missing", param),
		CategoryValidation,
		SeverityError,
	).WithData(&ValidationErrorData{Field: param, Expected: "present"})
}

// EmptyParameter creates an error for a required parameter that was present
// but empty or blank
func EmptyParameter(param string) MCPError {
	return NewError(
		CodeInvalidParams,
		fmt.Sprintf("Invalid params: parameter '%s' must not be empty", param),
		CategoryValidation,
		SeverityError,
	).WithData(&ValidationErrorData{Field: param, Expected: "non-empty"})
}

// InvalidEnum creates an error for an option value outside its enumeration
func InvalidEnum(field string, value interface{}, validValues []string) MCPError {
	return NewError(
		CodeInvalidParams,
		fmt.Sprintf("Invalid params: '%s' must be one of [%s], got %v", field, strings.Join(validValues, ", "), value),
		CategoryValidation,
		SeverityError,
	).WithData(&ValidationErrorData{
		Field:    field,
		Value:    value,
		Expected: strings.Join(validValues, "|"),
	})
}

// UnknownTool creates an invalid-params-class error naming the unrecognized
// tool
func UnknownTool(tool string, known []string) MCPError {
	return NewError(
		CodeInvalidParams,
		fmt.Sprintf("Unknown tool: %s", tool),
		CategoryValidation,
		SeverityError,
	).WithData(&ToolErrorData{Tool: tool, Known: known})
}
