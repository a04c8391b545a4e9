package protocol

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRPCMessage(t *testing.T) {
	msg := JSONRPCMessage{
		JSONRPC: JSONRPCVersion,
	}

	if msg.JSONRPC != "2.0" {
		t.Errorf("Expected JSONRPC version to be '2.0', got %q", msg.JSONRPC)
	}
}

func TestNewRequest(t *testing.T) {
	// Test with nil params
	req, err := NewRequest("req-1", "tools/list", nil)
	if err != nil {
		t.Fatalf("Expected NewRequest with nil params to succeed, got error: %v", err)
	}

	if req.JSONRPC != JSONRPCVersion {
		t.Errorf("Expected JSONRPC version to be %q, got %q", JSONRPCVersion, req.JSONRPC)
	}

	if req.ID != "req-1" {
		t.Errorf("Expected ID to be 'req-1', got %v", req.ID)
	}

	if !req.HasID() {
		t.Error("Expected request with id to report HasID")
	}

	if req.Method != "tools/list" {
		t.Errorf("Expected Method to be 'tools/list', got %q", req.Method)
	}

	if len(req.Params) != 0 {
		t.Errorf("Expected Params to be empty, got %s", string(req.Params))
	}

	// Test with params
	params := map[string]interface{}{
		"name": "format_dax",
		"num":  42,
	}

	req, err = NewRequest("req-2", "tools/call", params)
	if err != nil {
		t.Fatalf("Expected NewRequest with params to succeed, got error: %v", err)
	}

	// Verify params were properly encoded
	var decodedParams map[string]interface{}
	err = json.Unmarshal(req.Params, &decodedParams)
	if err != nil {
		t.Fatalf("Failed to decode params: %v", err)
	}

	if decodedParams["name"] != "format_dax" {
		t.Errorf("Expected params['name'] to be 'format_dax', got %v", decodedParams["name"])
	}

	if int(decodedParams["num"].(float64)) != 42 {
		t.Errorf("Expected params['num'] to be 42, got %v", decodedParams["num"])
	}
}

func TestNewResponse(t *testing.T) {
	result := map[string]interface{}{
		"formatted": "SUM ( Sales[Amount] )",
	}

	resp, err := NewResponse("resp-1", result)
	if err != nil {
		t.Fatalf("Expected NewResponse to succeed, got error: %v", err)
	}

	if resp.JSONRPC != JSONRPCVersion {
		t.Errorf("Expected JSONRPC version to be %q, got %q", JSONRPCVersion, resp.JSONRPC)
	}

	if resp.ID != "resp-1" {
		t.Errorf("Expected ID to be 'resp-1', got %v", resp.ID)
	}

	if resp.Error != nil {
		t.Errorf("Expected Error to be nil, got %v", resp.Error)
	}

	// Verify result was properly encoded
	var decodedResult map[string]interface{}
	err = json.Unmarshal(resp.Result, &decodedResult)
	if err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}

	if decodedResult["formatted"] != "SUM ( Sales[Amount] )" {
		t.Errorf("Expected result['formatted'] to round-trip, got %v", decodedResult["formatted"])
	}
}

func TestNewErrorResponse(t *testing.T) {
	// Test with nil data
	resp, err := NewErrorResponse("err-1", InvalidParams, "Invalid params", nil)
	if err != nil {
		t.Fatalf("Expected NewErrorResponse with nil data to succeed, got error: %v", err)
	}

	if resp.JSONRPC != JSONRPCVersion {
		t.Errorf("Expected JSONRPC version to be %q, got %q", JSONRPCVersion, resp.JSONRPC)
	}

	if resp.ID != "err-1" {
		t.Errorf("Expected ID to be 'err-1', got %v", resp.ID)
	}

	if resp.Error == nil {
		t.Fatal("Expected Error to not be nil")
	}

	if resp.Error.Code != InvalidParams {
		t.Errorf("Expected Error.Code to be %d, got %d", InvalidParams, resp.Error.Code)
	}

	if resp.Error.Message != "Invalid params" {
		t.Errorf("Expected Error.Message to be 'Invalid params', got %q", resp.Error.Message)
	}

	if resp.Error.Data != nil {
		t.Errorf("Expected Error.Data to be nil, got %v", resp.Error.Data)
	}

	if len(resp.Result) != 0 {
		t.Errorf("Expected Result to be absent on error response, got %s", string(resp.Result))
	}

	// Test with data
	data := map[string]interface{}{
		"tool": "format_sql",
	}

	resp, err = NewErrorResponse("err-2", MethodNotFound, "Method not found", data)
	if err != nil {
		t.Fatalf("Expected NewErrorResponse with data to succeed, got error: %v", err)
	}

	if resp.Error.Code != MethodNotFound {
		t.Errorf("Expected Error.Code to be %d, got %d", MethodNotFound, resp.Error.Code)
	}

	if resp.Error.Data == nil {
		t.Fatal("Expected Error.Data to not be nil")
	}
}

func TestNewNotification(t *testing.T) {
	notif, err := NewNotification("notifications/initialized", nil)
	if err != nil {
		t.Fatalf("Expected NewNotification with nil params to succeed, got error: %v", err)
	}

	if notif.JSONRPC != JSONRPCVersion {
		t.Errorf("Expected JSONRPC version to be %q, got %q", JSONRPCVersion, notif.JSONRPC)
	}

	if notif.Method != "notifications/initialized" {
		t.Errorf("Expected Method to be 'notifications/initialized', got %q", notif.Method)
	}

	if len(notif.Params) != 0 {
		t.Errorf("Expected Params to be empty, got %s", string(notif.Params))
	}
}

func TestParseRequest(t *testing.T) {
	// String id
	req, err := ParseRequest([]byte(`{"jsonrpc":"2.0","id":"abc","method":"tools/list"}`))
	if err != nil {
		t.Fatalf("Expected valid request to parse, got error: %v", err)
	}

	if req.ID != "abc" {
		t.Errorf("Expected ID to be 'abc', got %v", req.ID)
	}

	if !req.HasID() {
		t.Error("Expected HasID to be true for string id")
	}

	// Numeric id decodes as float64
	req, err = ParseRequest([]byte(`{"jsonrpc":"2.0","id":7,"method":"initialize","params":{}}`))
	if err != nil {
		t.Fatalf("Expected valid request to parse, got error: %v", err)
	}

	if req.ID != float64(7) {
		t.Errorf("Expected ID to be float64(7), got %v (%T)", req.ID, req.ID)
	}

	if string(req.Params) != "{}" {
		t.Errorf("Expected Params to be '{}', got %s", string(req.Params))
	}

	// Absent id is a notification
	req, err = ParseRequest([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	if err != nil {
		t.Fatalf("Expected notification to parse, got error: %v", err)
	}

	if req.HasID() {
		t.Error("Expected HasID to be false when id is absent")
	}

	// Explicit null id is treated like an absent one
	req, err = ParseRequest([]byte(`{"jsonrpc":"2.0","id":null,"method":"tools/list"}`))
	if err != nil {
		t.Fatalf("Expected null-id request to parse, got error: %v", err)
	}

	if req.HasID() {
		t.Error("Expected HasID to be false for explicit null id")
	}
}

func TestParseRequestRejectsMalformedEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "truncated JSON", line: `{"jsonrpc":"2.0","id":1,"method"`},
		{name: "not an object", line: `[1,2,3]`},
		{name: "missing version tag", line: `{"id":1,"method":"tools/list"}`},
		{name: "wrong version tag", line: `{"jsonrpc":"1.0","id":1,"method":"tools/list"}`},
		{name: "version tag not a string", line: `{"jsonrpc":2.0,"id":1,"method":"tools/list"}`},
		{name: "missing method", line: `{"jsonrpc":"2.0","id":1}`},
		{name: "empty method", line: `{"jsonrpc":"2.0","id":1,"method":""}`},
		{name: "method not a string", line: `{"jsonrpc":"2.0","id":1,"method":42}`},
		{name: "object id", line: `{"jsonrpc":"2.0","id":{"a":1},"method":"tools/list"}`},
		{name: "array id", line: `{"jsonrpc":"2.0","id":[1],"method":"tools/list"}`},
		{name: "boolean id", line: `{"jsonrpc":"2.0","id":true,"method":"tools/list"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest([]byte(tt.line))
			assert.Error(t, err)
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	// Success and error responses must keep result and error mutually
	// exclusive across an encode/decode cycle.
	success, err := NewResponse(float64(3), map[string]string{"ok": "yes"})
	require.NoError(t, err)

	data, err := json.Marshal(success)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotNil(t, decoded.Result)
	assert.Nil(t, decoded.Error)

	failure, err := NewErrorResponse(float64(3), InternalError, "boom", nil)
	require.NoError(t, err)

	data, err = json.Marshal(failure)
	require.NoError(t, err)

	decoded = Response{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded.Result)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, InternalError, decoded.Error.Code)
}

func TestErrorResponseEncodesNullID(t *testing.T) {
	resp, err := NewErrorResponse(nil, ParseError, "Parse error", nil)
	if err != nil {
		t.Fatalf("Expected NewErrorResponse to succeed, got error: %v", err)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	idRaw, ok := raw["id"]
	if !ok {
		t.Fatal("Expected id field to be present on a parse-error response")
	}

	if string(idRaw) != "null" {
		t.Errorf("Expected id to encode as null, got %s", string(idRaw))
	}
}

func TestIsNotificationMethod(t *testing.T) {
	if !IsNotificationMethod("notifications/initialized") {
		t.Error("Expected notifications/initialized to be a notification method")
	}

	if !IsNotificationMethod("notifications/progress") {
		t.Error("Expected notifications/progress to be a notification method")
	}

	if IsNotificationMethod("tools/call") {
		t.Error("Expected tools/call to not be a notification method")
	}

	if IsNotificationMethod("notify") {
		t.Error("Expected bare 'notify' to not be a notification method")
	}
}

func TestError_ErrorMethod(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "Typical error",
			err:      &Error{Code: InvalidParams, Message: "Invalid params"},
			expected: fmt.Sprintf("rpc error: code = %d desc = Invalid params", InvalidParams),
		},
		{
			name:     "Error with data",
			err:      &Error{Code: InternalError, Message: "Internal error", Data: "some data"},
			expected: fmt.Sprintf("rpc error: code = %d desc = Internal error", InternalError),
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
