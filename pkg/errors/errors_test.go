package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/tabulartools/daxfmt-mcp/pkg/protocol"
)

func TestMCPErrorInterface(t *testing.T) {
	tests := []struct {
		name     string
		err      MCPError
		wantCode int
		wantCat  Category
		wantSev  Severity
	}{
		{
			name:     "parse error",
			err:      NewParseError(fmt.Errorf("unexpected end of JSON input")),
			wantCode: CodeParseError,
			wantCat:  CategoryProtocol,
			wantSev:  SeverityError,
		},
		{
			name:     "method not found",
			err:      NewMethodNotFoundError("tools/rename"),
			wantCode: CodeMethodNotFound,
			wantCat:  CategoryProtocol,
			wantSev:  SeverityError,
		},
		{
			name:     "invalid params",
			err:      NewInvalidParamsError("expression is required"),
			wantCode: CodeInvalidParams,
			wantCat:  CategoryValidation,
			wantSev:  SeverityError,
		},
		{
			name:     "internal error",
			err:      NewInternalError("tools/call", fmt.Errorf("boom")),
			wantCode: CodeInternalError,
			wantCat:  CategoryInternal,
			wantSev:  SeverityError,
		},
		{
			name:     "formatter rejection",
			err:      FormatterRejected("syntax error near 'SUM'", 1, 14),
			wantCode: CodeInternalError,
			wantCat:  CategoryFormatter,
			wantSev:  SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Code(); got != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got, tt.wantCode)
			}
			if got := tt.err.Category(); got != tt.wantCat {
				t.Errorf("Category() = %v, want %v", got, tt.wantCat)
			}
			if got := tt.err.Severity(); got != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", got, tt.wantSev)
			}

			// Test that error implements error interface
			_ = error(tt.err)

			// Test Error() method
			if msg := tt.err.Error(); msg == "" {
				t.Error("Error() returned empty string")
			}
		})
	}
}

func TestErrorContext(t *testing.T) {
	err := NewInvalidParamsError("test error")

	// Test without context
	if ctx := err.Context(); ctx == nil {
		t.Error("Context() should never return nil")
	}

	// Test with context
	requestCtx := &Context{
		RequestID: "123",
		Method:    "tools/call",
		Tool:      "format_dax",
	}

	errWithCtx := err.WithContext(requestCtx)
	if got := errWithCtx.Context(); got != requestCtx {
		t.Errorf("WithContext() failed, got %v, want %v", got, requestCtx)
	}

	// Original error should be unchanged
	if err.Context().RequestID != "" {
		t.Error("Original error was modified by WithContext()")
	}
}

func TestErrorChaining(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := WrapError(cause, CodeInternalError, "wrapped error", CategoryInternal, SeverityError)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestErrorData(t *testing.T) {
	validationData := &ValidationErrorData{
		Field:    "max_line_length",
		Value:    "tiny",
		Expected: "long|short|auto",
	}

	err := NewInvalidParamsError("test error").WithData(validationData)

	if got := err.Data(); got != validationData {
		t.Errorf("Data() = %v, want %v", got, validationData)
	}
}

func TestErrorSerialization(t *testing.T) {
	err := UnknownTool("format_sql", []string{"format_dax", "format_dax_batch"}).
		WithContext(&Context{
			RequestID: "123",
			Method:    "tools/call",
		}).
		WithDetail("Additional detail information")

	jsonData := err.ToJSON()
	if jsonData["code"] != CodeInvalidParams {
		t.Errorf("ToJSON() code = %v, want %v", jsonData["code"], CodeInvalidParams)
	}

	jsonBytes, err2 := json.Marshal(err)
	if err2 != nil {
		t.Fatalf("Failed to marshal error: %v", err2)
	}

	var unmarshaled map[string]interface{}
	if err2 := json.Unmarshal(jsonBytes, &unmarshaled); err2 != nil {
		t.Fatalf("Failed to unmarshal error: %v", err2)
	}

	if unmarshaled["code"] != float64(CodeInvalidParams) {
		t.Errorf("Unmarshaled code = %v, want %v", unmarshaled["code"], CodeInvalidParams)
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		err  MCPError
	}{
		{
			name: "missing parameter",
			err:  MissingParameter("expression"),
		},
		{
			name: "empty parameter",
			err:  EmptyParameter("expressions"),
		},
		{
			name: "invalid enum",
			err:  InvalidEnum("max_line_length", "tiny", []string{"long", "short", "auto"}),
		},
		{
			name: "unknown tool",
			err:  UnknownTool("format_sql", nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Category() != CategoryValidation {
				t.Errorf("Category() = %v, want %v", tt.err.Category(), CategoryValidation)
			}

			if tt.err.Code() != CodeInvalidParams {
				t.Errorf("Code() = %v, want %v", tt.err.Code(), CodeInvalidParams)
			}

			if tt.err.Data() == nil {
				t.Error("Data() should not be nil for validation errors")
			}
		})
	}
}

func TestFormatterErrors(t *testing.T) {
	tests := []struct {
		name string
		err  MCPError
	}{
		{
			name: "service unavailable",
			err:  FormatterUnavailable("https://www.daxformatter.com", fmt.Errorf("connection refused")),
		},
		{
			name: "http failure",
			err:  FormatterHTTPError("api/daxformatter/daxtextformat", 503),
		},
		{
			name: "remote rejection",
			err:  FormatterRejected("unexpected token", 2, 7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Category() != CategoryFormatter {
				t.Errorf("Category() = %v, want %v", tt.err.Category(), CategoryFormatter)
			}

			if tt.err.Code() != CodeInternalError {
				t.Errorf("Code() = %v, want %v", tt.err.Code(), CodeInternalError)
			}

			if data := tt.err.Data(); data == nil {
				t.Error("Data() should not be nil for formatter errors")
			}
		})
	}
}

func TestFormatterRejectedMessage(t *testing.T) {
	err := FormatterRejected("unexpected token", 2, 7)
	want := "DAX formatting failed at line 2, column 7: unexpected token"
	if err.Message() != want {
		t.Errorf("Message() = %q, want %q", err.Message(), want)
	}

	// Without position information
	err = FormatterRejected("service rejected the request", 0, 0)
	want = "DAX formatting failed: service rejected the request"
	if err.Message() != want {
		t.Errorf("Message() = %q, want %q", err.Message(), want)
	}
}

func TestErrorConversion(t *testing.T) {
	t.Run("ToJSONRPCResponse", func(t *testing.T) {
		err := NewMethodNotFoundError("tools/rename")
		resp, convErr := ToJSONRPCResponse(err, "123")

		if convErr != nil {
			t.Fatalf("ToJSONRPCResponse() error = %v", convErr)
		}

		if resp.ID != "123" {
			t.Errorf("Response ID = %v, want 123", resp.ID)
		}

		if resp.Error == nil {
			t.Fatal("Response error should not be nil")
		}

		if resp.Error.Code != protocol.MethodNotFound {
			t.Errorf("Response error code = %v, want %v", resp.Error.Code, protocol.MethodNotFound)
		}

		if len(resp.Result) != 0 {
			t.Error("Error response must not carry a result")
		}
	})

	t.Run("ToJSONRPCResponse with plain error", func(t *testing.T) {
		resp, convErr := ToJSONRPCResponse(fmt.Errorf("plain failure"), float64(7))

		if convErr != nil {
			t.Fatalf("ToJSONRPCResponse() error = %v", convErr)
		}

		if resp.Error.Code != protocol.InternalError {
			t.Errorf("Plain errors should map to internal error, got %v", resp.Error.Code)
		}
	})

	t.Run("ToJSONRPCError", func(t *testing.T) {
		jsonrpcErr := ToJSONRPCError(NewInvalidParamsError("missing expression"))

		if jsonrpcErr == nil {
			t.Fatal("ToJSONRPCError() returned nil")
		}

		if jsonrpcErr.Code != protocol.InvalidParams {
			t.Errorf("Error code = %v, want %v", jsonrpcErr.Code, protocol.InvalidParams)
		}
	})

	t.Run("FromJSONRPCError", func(t *testing.T) {
		mcpErr := FromJSONRPCError(&protocol.Error{
			Code:    protocol.ParseError,
			Message: "Parse error",
		})

		if mcpErr.Code() != CodeParseError {
			t.Errorf("Code() = %v, want %v", mcpErr.Code(), CodeParseError)
		}

		if mcpErr.Category() != CategoryProtocol {
			t.Errorf("Category() = %v, want %v", mcpErr.Category(), CategoryProtocol)
		}
	})
}

func TestConvertStandardError(t *testing.T) {
	t.Run("context cancellation", func(t *testing.T) {
		err := ConvertStandardError(context.Canceled)
		if err.Category() != CategoryCancelled {
			t.Errorf("Category() = %v, want %v", err.Category(), CategoryCancelled)
		}
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		err := ConvertStandardError(context.DeadlineExceeded)
		if err.Category() != CategoryTimeout {
			t.Errorf("Category() = %v, want %v", err.Category(), CategoryTimeout)
		}
		if err.Code() != CodeInternalError {
			t.Errorf("Code() = %v, want %v", err.Code(), CodeInternalError)
		}
	})

	t.Run("already an MCPError", func(t *testing.T) {
		orig := NewInvalidParamsError("nope")
		if got := ConvertStandardError(orig); got != orig {
			t.Error("ConvertStandardError should pass MCPErrors through unchanged")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		err := ConvertStandardError(fmt.Errorf("plain"))
		if err.Code() != CodeInternalError {
			t.Errorf("Code() = %v, want %v", err.Code(), CodeInternalError)
		}
	})
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("daxtextformat", 30*time.Second)

	if err.Code() != CodeInternalError {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeInternalError)
	}

	if err.Category() != CategoryTimeout {
		t.Errorf("Category() = %v, want %v", err.Category(), CategoryTimeout)
	}
}

func TestRegistry(t *testing.T) {
	if len(ListErrorCodes()) != 4 {
		t.Errorf("Expected exactly 4 registered codes, got %d", len(ListErrorCodes()))
	}

	if GetErrorCodeName(CodeParseError) != "ParseError" {
		t.Errorf("GetErrorCodeName(%d) = %q", CodeParseError, GetErrorCodeName(CodeParseError))
	}

	if GetErrorCodeName(-1) != "UnknownError" {
		t.Errorf("Unexpected name for unknown code: %q", GetErrorCodeName(-1))
	}

	if !IsTaxonomyCode(CodeInvalidParams) {
		t.Error("Expected CodeInvalidParams to be a taxonomy code")
	}

	if IsTaxonomyCode(-32600) {
		t.Error("Expected -32600 to be outside the closed taxonomy")
	}
}
