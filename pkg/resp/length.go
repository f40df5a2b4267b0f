package resp

import (
	"bytes"
	"fmt"
)

var crlf = []byte("\r\n")

// Fixed tokens.
var (
	tokenNull           = []byte("_\r\n")
	tokenTrue           = []byte("#t\r\n")
	tokenFalse          = []byte("#f\r\n")
	tokenNullArray      = []byte("*-1\r\n")
	tokenNullBulkString = []byte("$-1\r\n")
)

// FrameLength returns the number of bytes the frame starting at buf[0]
// occupies, using the default limits. It never modifies buf. See
// Decoder.FrameLength.
func FrameLength(buf []byte) (int, error) {
	return defaultDecoder.FrameLength(buf)
}

// FrameLength returns the exact number of bytes the frame starting at
// buf[0] occupies once complete.
//
// The full frame does not have to be present: a bulk string's length is
// known as soon as its header line is. Composite frames are walked child by
// child, so every child header up to the last must be present. When not
// enough bytes are available to determine the length, FrameLength returns
// ErrIncomplete. The result may exceed len(buf).
func (d *Decoder) FrameLength(buf []byte) (int, error) {
	return d.measure(buf, 0)
}

func (d *Decoder) measure(buf []byte, depth int) (int, error) {
	if len(buf) == 0 {
		return 0, ErrIncomplete
	}

	switch buf[0] {
	case PrefixSimpleString, PrefixError, PrefixInteger, PrefixDouble:
		end, err := lineEnd(buf)
		if err != nil {
			return 0, err
		}
		return end + len(crlf), nil
	case PrefixBoolean:
		if _, err := matchToken(buf, tokenTrue); err == nil {
			return len(tokenTrue), nil
		} else if err == ErrIncomplete {
			return 0, err
		}
		if _, err := matchToken(buf, tokenFalse); err != nil {
			return 0, err
		}
		return len(tokenFalse), nil
	case PrefixNull:
		if _, err := matchToken(buf, tokenNull); err != nil {
			return 0, err
		}
		return len(tokenNull), nil
	case PrefixBulkString:
		n, hdr, err := d.parseLength(buf, true)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return hdr, nil
		}
		return hdr + n + len(crlf), nil
	case PrefixArray, PrefixSet:
		n, hdr, err := d.parseLength(buf, buf[0] == PrefixArray)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return hdr, nil
		}
		if err := d.checkComposite(n, depth); err != nil {
			return 0, err
		}
		total := hdr
		for i := 0; i < n; i++ {
			if total >= len(buf) {
				return 0, ErrIncomplete
			}
			l, err := d.measure(buf[total:], depth+1)
			if err != nil {
				return 0, err
			}
			total += l
		}
		return total, nil
	case PrefixMap:
		n, hdr, err := d.parseLength(buf, false)
		if err != nil {
			return 0, err
		}
		if err := d.checkComposite(n, depth); err != nil {
			return 0, err
		}
		total := hdr
		for i := 0; i < n; i++ {
			if total >= len(buf) {
				return 0, ErrIncomplete
			}
			if buf[total] != PrefixSimpleString {
				return 0, fmt.Errorf("%w: map key must be a simple string, got %q", ErrInvalidFrameType, buf[total])
			}
			l, err := d.measure(buf[total:], depth+1)
			if err != nil {
				return 0, err
			}
			total += l

			if total >= len(buf) {
				return 0, ErrIncomplete
			}
			l, err = d.measure(buf[total:], depth+1)
			if err != nil {
				return 0, err
			}
			total += l
		}
		return total, nil
	default:
		return 0, fmt.Errorf("%w: unexpected prefix %q", ErrInvalidFrameType, buf[0])
	}
}

func (d *Decoder) checkComposite(n, depth int) error {
	if depth >= d.limits.MaxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, d.limits.MaxDepth)
	}
	if n > d.limits.MaxElements {
		return fmt.Errorf("%w: %d elements exceeds limit %d", ErrLimitExceeded, n, d.limits.MaxElements)
	}
	return nil
}

// lineEnd returns the index of the CR of the first CRLF after the type
// prefix.
func lineEnd(buf []byte) (int, error) {
	i := bytes.Index(buf[1:], crlf)
	if i < 0 {
		return 0, ErrIncomplete
	}
	return i + 1, nil
}

// matchToken compares buf with a fixed token. A buf that is a strict prefix
// of the token is incomplete; any differing byte is a type mismatch.
func matchToken(buf, token []byte) (int, error) {
	n := min(len(buf), len(token))
	if !bytes.Equal(buf[:n], token[:n]) {
		return 0, fmt.Errorf("%w: expected %q", ErrInvalidFrameType, token)
	}
	if n < len(token) {
		return 0, ErrIncomplete
	}
	return len(token), nil
}

// parseLength reads the decimal length line of a bulk string or composite
// frame. It returns the length, the size of the header including CRLF, and
// an error. When allowNull is set, "-1" is accepted and reported as n == -1.
//
// Bytes are validated as they arrive: a non-digit is fatal even before the
// CRLF shows up, so a stream of garbage is never mistaken for an
// incomplete header.
func (d *Decoder) parseLength(buf []byte, allowNull bool) (n, hdr int, err error) {
	i := 1
	neg := false
	if i < len(buf) && buf[i] == '-' {
		neg = true
		i++
	}

	start := i
	for ; i < len(buf); i++ {
		c := buf[i]
		if c == '\r' {
			break
		}
		if c < '0' || c > '9' {
			return 0, 0, fmt.Errorf("%w: invalid byte %q in length", ErrMalformed, c)
		}
		if i-start >= maxLengthDigits {
			return 0, 0, fmt.Errorf("%w: length field too long", ErrMalformed)
		}
		n = n*10 + int(c-'0')
	}
	if i+1 >= len(buf) {
		return 0, 0, ErrIncomplete
	}
	if buf[i+1] != '\n' {
		return 0, 0, fmt.Errorf("%w: length line not terminated by CRLF", ErrMalformed)
	}
	if i == start {
		return 0, 0, fmt.Errorf("%w: empty length", ErrMalformed)
	}
	hdr = i + len(crlf)

	if neg {
		if !allowNull || n != 1 {
			return 0, 0, fmt.Errorf("%w: negative length -%d", ErrMalformed, n)
		}
		return -1, hdr, nil
	}
	if buf[0] == PrefixBulkString && n > d.limits.MaxBulkLen {
		return 0, 0, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, n, d.limits.MaxBulkLen)
	}
	return n, hdr, nil
}
