package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/respkv/pkg/resp"
)

// TextFormatter renders replies the way redis-cli does on a terminal.
type TextFormatter struct{}

// Format implements Formatter.
func (f *TextFormatter) Format(w io.Writer, frame resp.Frame) error {
	var sb strings.Builder
	writeText(&sb, frame, "")
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

// writeText appends frame. Lines after the first are prefixed with indent.
func writeText(sb *strings.Builder, frame resp.Frame, indent string) {
	switch v := frame.(type) {
	case nil, resp.Null, resp.NullArray, resp.NullBulkString:
		sb.WriteString("(nil)")
	case resp.SimpleString:
		sb.WriteString(string(v))
	case resp.SimpleError:
		sb.WriteString("(error) ")
		sb.WriteString(string(v))
	case resp.Integer:
		sb.WriteString("(integer) ")
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case resp.BulkString:
		sb.WriteString(Quote(v))
	case resp.Boolean:
		if v {
			sb.WriteString("(true)")
		} else {
			sb.WriteString("(false)")
		}
	case resp.Double:
		sb.WriteString("(double) ")
		sb.WriteString(formatFloat(float64(v)))
	case resp.ApproximateFloat:
		sb.WriteString("(double) ")
		sb.WriteString(formatFloat(float64(v)))
	case resp.Array:
		writeSeq(sb, v, ')', "(empty array)", indent)
	case resp.Set:
		writeSeq(sb, v, '~', "(empty set)", indent)
	case resp.Map:
		writeMap(sb, v, indent)
	default:
		fmt.Fprintf(sb, "(unknown %T)", frame)
	}
}

func writeSeq(sb *strings.Builder, items []resp.Frame, mark byte, empty, indent string) {
	if len(items) == 0 {
		sb.WriteString(empty)
		return
	}
	width := len(strconv.Itoa(len(items)))
	for i, item := range items {
		label := fmt.Sprintf("%*d%c ", width, i+1, mark)
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(indent)
		}
		sb.WriteString(label)
		writeText(sb, item, indent+strings.Repeat(" ", len(label)))
	}
}

func writeMap(sb *strings.Builder, m resp.Map, indent string) {
	if len(m) == 0 {
		sb.WriteString("(empty hash)")
		return
	}
	keys := m.Keys()
	width := len(strconv.Itoa(len(keys)))
	for i, k := range keys {
		label := fmt.Sprintf("%*d# ", width, i+1)
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(indent)
		}
		sb.WriteString(label)
		sb.WriteString(Quote([]byte(k)))
		sb.WriteString(" => ")
		writeText(sb, m[k], indent+strings.Repeat(" ", len(label)))
	}
}

// Quote renders b in double quotes, escaping control and non-ASCII bytes
// as redis-cli does.
func Quote(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 2)
	sb.WriteByte('"')
	for _, c := range b {
		switch c {
		case '\\', '"':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\a':
			sb.WriteString(`\a`)
		case '\b':
			sb.WriteString(`\b`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&sb, `\x%02x`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
