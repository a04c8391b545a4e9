// Package daxfmt implements the gateway's tool surface: the two DAX
// formatting tools, their argument validation, and the batch fallback
// strategy. Formatting itself is delegated to the remote service client;
// nothing here caches or persists between calls.
package daxfmt

import (
	"context"
	"encoding/json"
	"fmt"

	gwerrors "github.com/tabulartools/daxfmt-mcp/pkg/errors"
	"github.com/tabulartools/daxfmt-mcp/pkg/formatter"
	"github.com/tabulartools/daxfmt-mcp/pkg/logging"
	"github.com/tabulartools/daxfmt-mcp/pkg/protocol"
)

// Tool names advertised by the provider.
const (
	ToolFormatDAX      = "format_dax"
	ToolFormatDAXBatch = "format_dax_batch"
)

// FormattingClient is the remote formatting surface the handlers call.
// *formatter.Client satisfies it; tests substitute fakes.
type FormattingClient interface {
	Format(ctx context.Context, dax string, opts *formatter.Options) (string, error)
	FormatBatch(ctx context.Context, daxes []string, opts *formatter.Options) ([]string, error)
}

// Provider serves the formatting tools.
type Provider struct {
	client FormattingClient
	logger logging.Logger
}

// NewProvider creates a tool provider backed by the given formatting client.
func NewProvider(client FormattingClient, logger logging.Logger) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("formatting client is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Provider{
		client: client,
		logger: logger,
	}, nil
}

// Tools returns the tool descriptors in stable order.
func (p *Provider) Tools() []protocol.Tool {
	return []protocol.Tool{
		{
			Name:        ToolFormatDAX,
			Description: "Format a DAX expression using the remote DAX formatting service.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"expression": map[string]interface{}{
						"type":        "string",
						"description": "The DAX expression to format.",
					},
					"options": optionsSchema(),
				},
				"required": []string{"expression"},
			},
		},
		{
			Name:        ToolFormatDAXBatch,
			Description: "Format multiple DAX expressions in one call, preserving their order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"expressions": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"minItems":    1,
						"description": "The DAX expressions to format, in order.",
					},
					"options": optionsSchema(),
				},
				"required": []string{"expressions"},
			},
		},
	}
}

// CallTool dispatches a tool invocation to its handler. Unknown names and
// undecodable arguments come back as invalid-params errors; the router itself
// never formats anything.
func (p *Provider) CallTool(ctx context.Context, name string, args json.RawMessage) (*protocol.CallToolResult, error) {
	switch name {
	case ToolFormatDAX:
		return p.formatSingle(ctx, args)
	case ToolFormatDAXBatch:
		return p.formatBatch(ctx, args)
	default:
		return nil, gwerrors.UnknownTool(name, []string{ToolFormatDAX, ToolFormatDAXBatch})
	}
}

// optionsSchema describes the shared options bundle. Advertisement only; the
// handlers do their own validation.
func optionsSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional formatting settings; unset fields use the service defaults.",
		"properties": map[string]interface{}{
			"max_line_length": map[string]interface{}{
				"type": "string",
				"enum": []string{LineLengthLong, LineLengthShort, LineLengthAuto},
			},
			"function_spacing": map[string]interface{}{
				"type": "string",
				"enum": []string{SpacingBestPractice, SpacingNoSpaceAfterFunc},
			},
			"list_separator":    map[string]interface{}{"type": "string"},
			"decimal_separator": map[string]interface{}{"type": "string"},
			"database_name":     map[string]interface{}{"type": "string"},
			"server_name":       map[string]interface{}{"type": "string"},
		},
	}
}
