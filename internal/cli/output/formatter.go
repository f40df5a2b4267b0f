package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/respkv/pkg/resp"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatRESP Format = "resp"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatRESP, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, resp, json or yaml)", s)
	}
}

// Formatter writes a reply frame.
type Formatter interface {
	Format(w io.Writer, f resp.Frame) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatRESP:
		return &RESPFormatter{}
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// Print writes structured data: encoded for json and yaml, as table
// otherwise.
func Print(w io.Writer, format Format, data any, table *Table) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, data)
	case FormatYAML:
		return writeYAML(w, data)
	default:
		return table.Render(w)
	}
}
