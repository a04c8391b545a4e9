package transport

import (
	"context"
	"io"

	"github.com/tabulartools/daxfmt-mcp/pkg/logging"
	"github.com/tabulartools/daxfmt-mcp/pkg/protocol"
)

// Handler consumes one line read from the wire and returns the response it
// owes, or nil when the message owes none. The server's method router is the
// only production implementation.
type Handler interface {
	HandleMessage(ctx context.Context, line []byte) *protocol.Response
}

// Config configures the stdio transport. Zero values select the process
// standard streams and sane defaults; the reader and writer are injectable
// for tests.
type Config struct {
	// Reader supplies inbound lines; defaults to os.Stdin.
	Reader io.Reader

	// Writer receives outbound lines; defaults to os.Stdout.
	Writer io.Writer

	// Logger receives transport diagnostics; defaults to a nop logger.
	// Diagnostics never share a stream with protocol traffic.
	Logger logging.Logger

	// RequestIDs mints the per-line correlation identifiers attached to the
	// handler context; defaults to UUIDs.
	RequestIDs logging.RequestIDGenerator

	// MaxLineBytes caps the size of one inbound line; defaults to 1 MiB.
	MaxLineBytes int
}
