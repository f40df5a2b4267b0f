package output

import (
	"encoding/json"
	"io"
	"math"

	"github.com/yndnr/respkv/pkg/resp"
)

// JSONFormatter formats replies as JSON.
type JSONFormatter struct{}

// Format formats the reply as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, frame resp.Frame) error {
	return writeJSON(w, Value(frame))
}

func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Value converts a frame to plain Go values: strings, int64, float64,
// bool, nil, []any and map[string]any. Error replies become
// {"error": message}. Non-finite floats become their RESP text.
func Value(frame resp.Frame) any {
	switch v := frame.(type) {
	case resp.SimpleString:
		return string(v)
	case resp.BulkString:
		return string(v)
	case resp.SimpleError:
		return map[string]any{"error": string(v)}
	case resp.Integer:
		return int64(v)
	case resp.Boolean:
		return bool(v)
	case resp.Double:
		return floatValue(float64(v))
	case resp.ApproximateFloat:
		return floatValue(float64(v))
	case resp.Array:
		return seqValue(v)
	case resp.Set:
		return seqValue(v)
	case resp.Map:
		out := make(map[string]any, len(v))
		for k, f := range v {
			out[k] = Value(f)
		}
		return out
	default:
		return nil
	}
}

func seqValue(items []resp.Frame) []any {
	out := make([]any, len(items))
	for i, f := range items {
		out[i] = Value(f)
	}
	return out
}

func floatValue(v float64) any {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return v
}
