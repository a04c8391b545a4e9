package daxfmt

import (
	"strings"

	gwerrors "github.com/tabulartools/daxfmt-mcp/pkg/errors"
	"github.com/tabulartools/daxfmt-mcp/pkg/formatter"
)

// Line length enumeration literals accepted by the tools.
const (
	LineLengthLong  = "long"
	LineLengthShort = "short"
	LineLengthAuto  = "auto"
)

// Function spacing enumeration literals accepted by the tools.
const (
	SpacingBestPractice     = "best_practice"
	SpacingNoSpaceAfterFunc = "no_space_after_function"
)

// Options is the optional formatting bundle accepted by both tools. Every
// field is independently optional. Settings the caller leaves out are not
// defaulted here; the remote request omits them so the service applies its
// own defaults.
type Options struct {
	MaxLineLength    string `json:"max_line_length,omitempty"`
	FunctionSpacing  string `json:"function_spacing,omitempty"`
	ListSeparator    string `json:"list_separator,omitempty"`
	DecimalSeparator string `json:"decimal_separator,omitempty"`
	DatabaseName     string `json:"database_name,omitempty"`
	ServerName       string `json:"server_name,omitempty"`
}

// toWire validates the enum fields and converts the bundle to the client's
// wire options. Values blank after trimming count as absent. Returns nil when
// nothing is set so the client sends the simplest possible request.
func (o *Options) toWire() (*formatter.Options, error) {
	if o == nil {
		return nil, nil
	}

	wire := &formatter.Options{}
	set := false

	if v := strings.TrimSpace(o.MaxLineLength); v != "" {
		var lineLength int
		switch v {
		case LineLengthLong:
			lineLength = formatter.LineLengthLong
		case LineLengthShort:
			lineLength = formatter.LineLengthShort
		case LineLengthAuto:
			lineLength = formatter.LineLengthAuto
		default:
			return nil, gwerrors.InvalidEnum("max_line_length", o.MaxLineLength,
				[]string{LineLengthLong, LineLengthShort, LineLengthAuto})
		}
		wire.MaxLineLength = &lineLength
		set = true
	}

	if v := strings.TrimSpace(o.FunctionSpacing); v != "" {
		var skip bool
		switch v {
		case SpacingBestPractice:
			skip = false
		case SpacingNoSpaceAfterFunc:
			skip = true
		default:
			return nil, gwerrors.InvalidEnum("function_spacing", o.FunctionSpacing,
				[]string{SpacingBestPractice, SpacingNoSpaceAfterFunc})
		}
		wire.SkipSpaceAfterFunctionName = &skip
		set = true
	}

	if v := strings.TrimSpace(o.ListSeparator); v != "" {
		wire.ListSeparator = v
		set = true
	}
	if v := strings.TrimSpace(o.DecimalSeparator); v != "" {
		wire.DecimalSeparator = v
		set = true
	}
	if v := strings.TrimSpace(o.DatabaseName); v != "" {
		wire.DatabaseName = v
		set = true
	}
	if v := strings.TrimSpace(o.ServerName); v != "" {
		wire.ServerName = v
		set = true
	}

	if !set {
		return nil, nil
	}
	return wire, nil
}
