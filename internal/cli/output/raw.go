package output

import (
	"io"

	"github.com/yndnr/respkv/pkg/resp"
)

// RESPFormatter writes the reply in its wire encoding.
type RESPFormatter struct{}

// Format implements Formatter.
func (f *RESPFormatter) Format(w io.Writer, frame resp.Frame) error {
	if frame == nil {
		frame = resp.Null{}
	}
	return resp.WriteFrame(w, frame)
}
