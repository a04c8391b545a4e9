package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TextFormatter formats log entries as human-readable text
type TextFormatter struct {
	// TimestampFormat is the format for timestamps
	TimestampFormat string
	// DisableColors disables terminal colors
	DisableColors bool
	// DisableTimestamp disables timestamp output
	DisableTimestamp bool
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
	}
}

// Format formats a log entry as text
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var buf bytes.Buffer

	// Timestamp
	if !f.DisableTimestamp {
		timestampFormat := f.TimestampFormat
		if timestampFormat == "" {
			timestampFormat = time.RFC3339
		}
		buf.WriteString(entry.Timestamp.Format(timestampFormat))
		buf.WriteByte(' ')
	}

	// Level with optional color
	levelText := entry.Level.String()
	if !f.DisableColors {
		levelText = f.colorizeLevel(entry.Level, levelText)
	}
	buf.WriteString(fmt.Sprintf("[%s] ", levelText))

	// Request ID if present
	if entry.RequestID != "" {
		buf.WriteString(fmt.Sprintf("[%s] ", entry.RequestID))
	}

	// Method and tool if present
	if entry.Method != "" {
		buf.WriteString(entry.Method)
		if entry.Tool != "" {
			buf.WriteByte(' ')
			buf.WriteString(entry.Tool)
		}
		buf.WriteString(": ")
	} else if entry.Tool != "" {
		buf.WriteString(entry.Tool)
		buf.WriteString(": ")
	}

	// Message
	buf.WriteString(entry.Message)

	// Fields
	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			// Skip fields already shown in the header
			if k == "request_id" || k == "method" || k == "tool" {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		if len(keys) > 0 {
			buf.WriteString(" |")
			for _, k := range keys {
				buf.WriteString(fmt.Sprintf(" %s=%s", k, f.formatValue(entry.Fields[k])))
			}
		}
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// colorizeLevel adds ANSI color codes to level text
func (f *TextFormatter) colorizeLevel(level Level, text string) string {
	switch level {
	case DebugLevel:
		return fmt.Sprintf("\033[36m%s\033[0m", text) // Cyan
	case InfoLevel:
		return fmt.Sprintf("\033[32m%s\033[0m", text) // Green
	case WarnLevel:
		return fmt.Sprintf("\033[33m%s\033[0m", text) // Yellow
	case ErrorLevel:
		return fmt.Sprintf("\033[31m%s\033[0m", text) // Red
	case FatalLevel:
		return fmt.Sprintf("\033[35m%s\033[0m", text) // Magenta
	default:
		return text
	}
}

// formatValue formats a field value for text output
func (f *TextFormatter) formatValue(value interface{}) string {
	switch v := value.(type) {
	case error:
		return v.Error()
	case string:
		// Quote strings if they contain spaces
		if strings.Contains(v, " ") {
			return fmt.Sprintf("%q", v)
		}
		return v
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// JSONFormatter formats log entries as JSON
type JSONFormatter struct {
	// TimestampFormat is the format for timestamps
	TimestampFormat string
	// PrettyPrint enables indented JSON output
	PrettyPrint bool
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// Format formats a log entry as JSON
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{})

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = time.RFC3339
	}
	data["timestamp"] = entry.Timestamp.Format(timestampFormat)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message

	// Special fields
	if entry.RequestID != "" {
		data["request_id"] = entry.RequestID
	}
	if entry.Method != "" {
		data["method"] = entry.Method
	}
	if entry.Tool != "" {
		data["tool"] = entry.Tool
	}

	// Custom fields
	for k, v := range entry.Fields {
		if k == "request_id" || k == "method" || k == "tool" {
			continue
		}
		if err, ok := v.(error); ok {
			data[k] = err.Error()
		} else {
			data[k] = v
		}
	}

	var output []byte
	var err error
	if f.PrettyPrint {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}

	return append(output, '\n'), nil
}
