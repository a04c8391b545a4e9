package daxfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gwerrors "github.com/tabulartools/daxfmt-mcp/pkg/errors"
	"github.com/tabulartools/daxfmt-mcp/pkg/formatter"
	"github.com/tabulartools/daxfmt-mcp/pkg/logging"
	"github.com/tabulartools/daxfmt-mcp/pkg/protocol"
)

// formatArgs are the arguments of the format_dax tool.
type formatArgs struct {
	Expression string   `json:"expression"`
	Options    *Options `json:"options"`
}

// batchArgs are the arguments of the format_dax_batch tool. One options
// bundle applies to every expression.
type batchArgs struct {
	Expressions []string `json:"expressions"`
	Options     *Options `json:"options"`
}

// formatSingle handles format_dax. Argument faults are invalid-params;
// anything the collaborator refuses or fails comes back as an internal error
// carrying the collaborator's message.
func (p *Provider) formatSingle(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
	var params formatArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Expression) == "" {
		return nil, gwerrors.EmptyParameter("expression")
	}

	opts, err := params.Options.toWire()
	if err != nil {
		return nil, err
	}

	formatted, err := p.client.Format(ctx, params.Expression, opts)
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Warn("formatting failed",
			logging.String("tool", ToolFormatDAX))
		return nil, err
	}

	return protocol.NewTextResult(codeBlock(formatted)), nil
}

// formatBatch handles format_dax_batch. One batch round trip is the primary
// path; any failure there degrades to sequential per-expression calls that
// keep the original order and report per-position failures inline.
func (p *Provider) formatBatch(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
	var params batchArgs
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if len(params.Expressions) == 0 {
		return nil, gwerrors.EmptyParameter("expressions")
	}
	for i, expr := range params.Expressions {
		if strings.TrimSpace(expr) == "" {
			return nil, gwerrors.NewInvalidParamsErrorf("expression %d must not be empty", i+1)
		}
	}

	opts, err := params.Options.toWire()
	if err != nil {
		return nil, err
	}

	formatted, err := p.client.FormatBatch(ctx, params.Expressions, opts)
	if err == nil {
		blocks := make([]string, len(formatted))
		for i, text := range formatted {
			blocks[i] = labeledBlock(i+1, text)
		}
		return protocol.NewTextResult(strings.Join(blocks, "\n\n")), nil
	}

	p.logger.WithContext(ctx).WithError(err).Warn("batch formatting failed, degrading to per-expression calls",
		logging.String("tool", ToolFormatDAXBatch),
		logging.Int("expressions", len(params.Expressions)),
	)
	return p.formatSequential(ctx, params.Expressions, opts), nil
}

// formatSequential is the batch fallback: one remote call per expression, in
// order, one at a time. Failing positions get a labeled error line and the
// loop continues; completing the loop is a success regardless of the mix.
func (p *Provider) formatSequential(ctx context.Context, exprs []string, opts *formatter.Options) *protocol.CallToolResult {
	blocks := make([]string, len(exprs))
	failures := 0
	for i, expr := range exprs {
		formatted, err := p.client.Format(ctx, expr, opts)
		if err != nil {
			failures++
			blocks[i] = fmt.Sprintf("Expression %d: formatting failed: %s", i+1, errorMessage(err))
			continue
		}
		blocks[i] = labeledBlock(i+1, formatted)
	}

	if failures > 0 {
		p.logger.WithContext(ctx).Warn("per-expression fallback finished with failures",
			logging.String("tool", ToolFormatDAXBatch),
			logging.Int("expressions", len(exprs)),
			logging.Int("failures", failures),
		)
	}
	return protocol.NewTextResult(strings.Join(blocks, "\n\n"))
}

// decodeArgs decodes raw tool arguments, mapping absence and malformed JSON
// to invalid-params errors.
func decodeArgs(args json.RawMessage, target interface{}) error {
	if len(args) == 0 {
		return gwerrors.NewInvalidParamsError("arguments are required")
	}
	if err := json.Unmarshal(args, target); err != nil {
		return gwerrors.NewInvalidParamsErrorf("malformed arguments: %s", err.Error())
	}
	return nil
}

// codeBlock wraps formatted DAX in a fenced block, trimming the trailing
// newlines the service appends.
func codeBlock(formatted string) string {
	return fmt.Sprintf("```dax\n%s\n```", strings.TrimRight(formatted, "\n"))
}

// labeledBlock renders one batch position with its 1-based label.
func labeledBlock(position int, formatted string) string {
	return fmt.Sprintf("Expression %d:\n%s", position, codeBlock(formatted))
}

// errorMessage extracts the human-readable message from a formatting error.
func errorMessage(err error) string {
	if gwErr, ok := gwerrors.AsMCPError(err); ok {
		return gwErr.Message()
	}
	return err.Error()
}
