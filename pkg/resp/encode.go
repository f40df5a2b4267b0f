package resp

import (
	"io"
	"strconv"
)

// Encode returns the wire form of f.
func Encode(f Frame) []byte {
	return AppendFrame(nil, f)
}

// WriteFrame writes the wire form of f to w.
func WriteFrame(w io.Writer, f Frame) error {
	_, err := w.Write(Encode(f))
	return err
}

// AppendFrame appends the wire form of f to dst and returns the extended
// slice. A nil Frame is written as Null.
//
// Encoding cannot fail. SimpleString and SimpleError payloads are written
// verbatim; callers must not put CR or LF in them.
func AppendFrame(dst []byte, f Frame) []byte {
	switch v := f.(type) {
	case nil, Null:
		return append(dst, tokenNull...)
	case NullArray:
		return append(dst, tokenNullArray...)
	case NullBulkString:
		return append(dst, tokenNullBulkString...)
	case SimpleString:
		return appendLine(dst, PrefixSimpleString, string(v))
	case SimpleError:
		return appendLine(dst, PrefixError, string(v))
	case Integer:
		dst = append(dst, PrefixInteger)
		if v >= 0 {
			dst = append(dst, '+')
		}
		dst = strconv.AppendInt(dst, int64(v), 10)
		return append(dst, crlf...)
	case Boolean:
		if v {
			return append(dst, tokenTrue...)
		}
		return append(dst, tokenFalse...)
	case Double:
		dst = append(dst, PrefixDouble)
		dst = appendFloat(dst, float64(v))
		return append(dst, crlf...)
	case ApproximateFloat:
		dst = append(dst, PrefixDouble)
		dst = appendFloat(dst, float64(v))
		return append(dst, crlf...)
	case BulkString:
		dst = appendHeader(dst, PrefixBulkString, len(v))
		dst = append(dst, v...)
		return append(dst, crlf...)
	case Array:
		dst = appendHeader(dst, PrefixArray, len(v))
		for _, item := range v {
			dst = AppendFrame(dst, item)
		}
		return dst
	case Set:
		dst = appendHeader(dst, PrefixSet, len(v))
		for _, item := range v {
			dst = AppendFrame(dst, item)
		}
		return dst
	case Map:
		dst = appendHeader(dst, PrefixMap, len(v))
		for _, k := range v.Keys() {
			dst = appendLine(dst, PrefixSimpleString, k)
			dst = AppendFrame(dst, v[k])
		}
		return dst
	}
	return dst
}

func appendLine(dst []byte, prefix byte, s string) []byte {
	dst = append(dst, prefix)
	dst = append(dst, s...)
	return append(dst, crlf...)
}

func appendHeader(dst []byte, prefix byte, n int) []byte {
	dst = append(dst, prefix)
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, crlf...)
}
