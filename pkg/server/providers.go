package server

import (
	"context"
	"encoding/json"

	"github.com/tabulartools/daxfmt-mcp/pkg/protocol"
)

// ToolProvider defines the interface for providing tools functionality.
// The server routes tools/list and tools/call through it; argument decoding,
// validation and the remote formatting calls all live behind the
// implementation.
type ToolProvider interface {
	// Tools returns the advertised tool descriptors in a stable order.
	Tools() []protocol.Tool

	// CallTool executes the named tool and returns its result. Unknown
	// names and argument faults come back as typed errors, never panics.
	CallTool(ctx context.Context, name string, args json.RawMessage) (*protocol.CallToolResult, error)
}
