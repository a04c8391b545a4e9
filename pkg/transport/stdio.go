package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tabulartools/daxfmt-mcp/pkg/logging"
	"github.com/tabulartools/daxfmt-mcp/pkg/protocol"
)

const (
	// defaultMaxLineBytes bounds one inbound line. Large enough for measure
	// definitions pasted whole, small enough to fail fast on garbage.
	defaultMaxLineBytes = 1 << 20

	initialScanBuffer = 64 * 1024
)

// StdioTransport reads newline-delimited JSON-RPC messages from a reader,
// hands each line to the handler, and writes back whatever response it owes.
// Handling is inline in the read loop: a line is processed to completion
// before the next one is read, so responses leave in arrival order.
type StdioTransport struct {
	handler      Handler
	reader       io.Reader
	writer       *bufio.Writer
	logger       logging.Logger
	requestIDs   logging.RequestIDGenerator
	maxLineBytes int

	writeMu  sync.Mutex
	done     chan struct{}
	stopOnce sync.Once
}

// NewStdioTransport creates a transport bound to the given handler.
func NewStdioTransport(handler Handler, config Config) (*StdioTransport, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	reader := config.Reader
	if reader == nil {
		reader = os.Stdin
	}
	writer := config.Writer
	if writer == nil {
		writer = os.Stdout
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	requestIDs := config.RequestIDs
	if requestIDs == nil {
		requestIDs = &logging.UUIDGenerator{}
	}
	maxLineBytes := config.MaxLineBytes
	if maxLineBytes <= 0 {
		maxLineBytes = defaultMaxLineBytes
	}

	return &StdioTransport{
		handler:      handler,
		reader:       reader,
		writer:       bufio.NewWriter(writer),
		logger:       logger,
		requestIDs:   requestIDs,
		maxLineBytes: maxLineBytes,
		done:         make(chan struct{}),
	}, nil
}

// Start runs the read loop until EOF, a read error, context cancellation or
// Stop. EOF is a clean end and returns nil; cancellation returns the context
// error so the caller can tell shutdown from stream exhaustion.
func (t *StdioTransport) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	scanner := bufio.NewScanner(t.reader)
	scanner.Buffer(make([]byte, 0, initialScanBuffer), t.maxLineBytes)

	scannerDone := make(chan struct{})

	g.Go(func() error {
		defer close(scannerDone)

		for scanner.Scan() {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-t.done:
				return nil
			default:
			}

			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			// The scanner reuses its buffer on the next Scan.
			data := make([]byte, len(line))
			copy(data, line)

			t.handleLine(gctx, data)
		}

		// A reader closed by the watcher goroutine is a clean shutdown,
		// not a read failure.
		if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
			return fmt.Errorf("read input: %w", err)
		}
		return nil
	})

	// Scanner.Scan cannot be interrupted directly; closing the reader is the
	// only way to unblock it when the context ends first.
	g.Go(func() error {
		select {
		case <-gctx.Done():
			t.closeReader()
			return gctx.Err()
		case <-t.done:
			t.closeReader()
			return nil
		case <-scannerDone:
			return nil
		}
	})

	return g.Wait()
}

// Stop halts the transport and flushes any buffered output.
func (t *StdioTransport) Stop(ctx context.Context) error {
	var flushErr error

	t.stopOnce.Do(func() {
		close(t.done)

		t.writeMu.Lock()
		flushErr = t.writer.Flush()
		t.writeMu.Unlock()
	})

	if flushErr != nil {
		return fmt.Errorf("flush output on stop: %w", flushErr)
	}
	return nil
}

// handleLine runs one line to completion. Every line gets a fresh request
// identifier on its context so log lines on both sides of the call
// correlate. A panic that escapes the handler is contained here: the loop
// must survive anything a single line does.
func (t *StdioTransport) handleLine(ctx context.Context, line []byte) {
	ctx, _ = logging.EnsureRequestID(ctx, t.requestIDs)
	logger := t.logger.WithContext(ctx)

	var resp *protocol.Response

	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic escaped message handling",
					logging.Any("panic", r),
					logging.String("stack", string(debug.Stack())),
				)
			}
		}()
		resp = t.handler.HandleMessage(ctx, line)
	}()

	if resp == nil {
		return
	}

	if err := t.Send(resp); err != nil {
		logger.WithError(err).Error("failed to write response")
	}
}

// Send encodes resp and writes it as one newline-terminated line. A raw
// newline inside the encoded payload would split one message into two, so
// Send refuses rather than corrupt the framing.
func (t *StdioTransport) Send(resp *protocol.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if bytes.ContainsRune(data, '\n') {
		return fmt.Errorf("response payload contains an embedded newline")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (t *StdioTransport) closeReader() {
	if closer, ok := t.reader.(io.Closer); ok {
		_ = closer.Close()
	}
}
