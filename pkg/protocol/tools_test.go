package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewTextResult(t *testing.T) {
	result := NewTextResult("formatted text")

	if len(result.Content) != 1 {
		t.Fatalf("Expected one content item, got %d", len(result.Content))
	}

	if result.Content[0].Type != "text" {
		t.Errorf("Expected content type 'text', got %q", result.Content[0].Type)
	}

	if result.Content[0].Text != "formatted text" {
		t.Errorf("Expected content text to match, got %q", result.Content[0].Text)
	}

	if result.IsError {
		t.Error("Expected IsError to default to false")
	}

	// isError must not appear on the wire for a success result
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Failed to marshal CallToolResult: %v", err)
	}

	if strings.Contains(string(data), "isError") {
		t.Errorf("Expected isError to be omitted on success, got %s", string(data))
	}
}

func TestCallToolParamsDecode(t *testing.T) {
	line := `{"name":"format_dax","arguments":{"expression":"SUM(Sales[Amount])"}}`

	var params CallToolParams
	if err := json.Unmarshal([]byte(line), &params); err != nil {
		t.Fatalf("Failed to decode CallToolParams: %v", err)
	}

	if params.Name != "format_dax" {
		t.Errorf("Expected tool name 'format_dax', got %q", params.Name)
	}

	// Arguments stay raw until the handler decodes them
	var args map[string]interface{}
	if err := json.Unmarshal(params.Arguments, &args); err != nil {
		t.Fatalf("Failed to decode arguments: %v", err)
	}

	if args["expression"] != "SUM(Sales[Amount])" {
		t.Errorf("Expected expression argument to round-trip, got %v", args["expression"])
	}
}
