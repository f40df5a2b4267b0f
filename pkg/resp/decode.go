package resp

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Decoder turns bytes into frames. A Decoder holds no stream state: every
// call either decodes one whole frame or reports ErrIncomplete and leaves
// the input untouched. It is safe for concurrent use.
type Decoder struct {
	limits      Limits
	approximate bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithLimits sets the protocol limits. Zero fields keep their defaults.
func WithLimits(l Limits) DecoderOption {
	return func(d *Decoder) {
		d.limits = l.withDefaults()
	}
}

// WithApproximateFloats makes the decoder return ApproximateFloat instead of
// Double for ',' frames.
func WithApproximateFloats() DecoderOption {
	return func(d *Decoder) {
		d.approximate = true
	}
}

// NewDecoder creates a Decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{limits: DefaultLimits()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode decodes one frame from buf with the default decoder.
func Decode(buf *bytes.Buffer) (Frame, error) {
	return defaultDecoder.Decode(buf)
}

// Limits returns the limits the decoder enforces.
func (d *Decoder) Limits() Limits {
	return d.limits
}

// Decode decodes the frame at the front of buf. On success exactly the
// frame's bytes are consumed. On any error, including ErrIncomplete, buf is
// left as it was.
func (d *Decoder) Decode(buf *bytes.Buffer) (Frame, error) {
	f, n, err := d.DecodeBytes(buf.Bytes())
	if err != nil {
		return nil, err
	}
	buf.Next(n)
	return f, nil
}

// DecodeBytes decodes the frame at the front of b and returns it with the
// number of bytes it occupied. b is never modified and the returned frame
// does not alias it.
func (d *Decoder) DecodeBytes(b []byte) (Frame, int, error) {
	n, err := d.measure(b, 0)
	if err != nil {
		return nil, 0, err
	}
	if n > len(b) {
		return nil, 0, ErrIncomplete
	}

	f, used, err := d.decode(b[:n])
	if err != nil {
		return nil, 0, err
	}
	if used != n {
		return nil, 0, fmt.Errorf("%w: frame spans %d bytes, decoded %d", ErrMalformed, n, used)
	}
	return f, n, nil
}

// decode decodes the frame at the front of b, which measure has already
// confirmed is complete. It returns the frame and the bytes consumed.
func (d *Decoder) decode(b []byte) (Frame, int, error) {
	if len(b) == 0 {
		return nil, 0, ErrIncomplete
	}

	switch b[0] {
	case PrefixSimpleString:
		s, n, err := decodeText(b)
		if err != nil {
			return nil, 0, err
		}
		return SimpleString(s), n, nil
	case PrefixError:
		s, n, err := decodeText(b)
		if err != nil {
			return nil, 0, err
		}
		return SimpleError(s), n, nil
	case PrefixInteger:
		end, err := lineEnd(b)
		if err != nil {
			return nil, 0, err
		}
		v, err := strconv.ParseInt(string(b[1:end]), 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: integer %q", ErrMalformed, b[1:end])
		}
		return Integer(v), end + len(crlf), nil
	case PrefixDouble:
		end, err := lineEnd(b)
		if err != nil {
			return nil, 0, err
		}
		v, err := parseFloat(b[1:end])
		if err != nil {
			return nil, 0, fmt.Errorf("%w: double %q", ErrMalformed, b[1:end])
		}
		if d.approximate {
			return ApproximateFloat(v), end + len(crlf), nil
		}
		return Double(v), end + len(crlf), nil
	case PrefixBoolean:
		if n, err := matchToken(b, tokenTrue); err == nil {
			return Boolean(true), n, nil
		}
		n, err := matchToken(b, tokenFalse)
		if err != nil {
			return nil, 0, err
		}
		return Boolean(false), n, nil
	case PrefixNull:
		n, err := matchToken(b, tokenNull)
		if err != nil {
			return nil, 0, err
		}
		return Null{}, n, nil
	case PrefixBulkString:
		if n, ok, err := nullToken(b, tokenNullBulkString); ok || err != nil {
			return NullBulkString{}, n, err
		}
		return d.decodeBulk(b)
	case PrefixArray:
		if n, ok, err := nullToken(b, tokenNullArray); ok || err != nil {
			return NullArray{}, n, err
		}
		items, n, err := d.decodeSeq(b)
		if err != nil {
			return nil, 0, err
		}
		return Array(items), n, nil
	case PrefixSet:
		items, n, err := d.decodeSeq(b)
		if err != nil {
			return nil, 0, err
		}
		return Set(items), n, nil
	case PrefixMap:
		return d.decodeMap(b)
	default:
		return nil, 0, fmt.Errorf("%w: unexpected prefix %q", ErrInvalidFrameType, b[0])
	}
}

// nullToken tries the null form of an ambiguous prefix. ok reports a match.
// A definite mismatch is not an error: the caller falls through to the
// general form. Only ErrIncomplete is returned.
func nullToken(b, token []byte) (n int, ok bool, err error) {
	n, err = matchToken(b, token)
	switch {
	case err == nil:
		return n, true, nil
	case err == ErrIncomplete:
		return 0, false, err
	default:
		return 0, false, nil
	}
}

func decodeText(b []byte) (string, int, error) {
	end, err := lineEnd(b)
	if err != nil {
		return "", 0, err
	}
	payload := b[1:end]
	if !utf8.Valid(payload) {
		return "", 0, fmt.Errorf("%w: invalid utf-8 in %q frame", ErrMalformed, b[0])
	}
	return string(payload), end + len(crlf), nil
}

func (d *Decoder) decodeBulk(b []byte) (Frame, int, error) {
	n, hdr, err := d.parseLength(b, false)
	if err != nil {
		return nil, 0, err
	}
	end := hdr + n
	if len(b) < end+len(crlf) {
		return nil, 0, ErrIncomplete
	}
	if !bytes.Equal(b[end:end+len(crlf)], crlf) {
		return nil, 0, fmt.Errorf("%w: bulk string not terminated by CRLF", ErrMalformed)
	}
	payload := make([]byte, n)
	copy(payload, b[hdr:end])
	return BulkString(payload), end + len(crlf), nil
}

func (d *Decoder) decodeSeq(b []byte) ([]Frame, int, error) {
	count, pos, err := d.parseLength(b, false)
	if err != nil {
		return nil, 0, err
	}
	items := make([]Frame, 0, count)
	for range count {
		f, n, err := d.decode(b[pos:])
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
		pos += n
	}
	return items, pos, nil
}

func (d *Decoder) decodeMap(b []byte) (Frame, int, error) {
	count, pos, err := d.parseLength(b, false)
	if err != nil {
		return nil, 0, err
	}
	m := make(Map, count)
	for range count {
		if pos >= len(b) {
			return nil, 0, ErrIncomplete
		}
		if b[pos] != PrefixSimpleString {
			return nil, 0, fmt.Errorf("%w: map key must be a simple string, got %q", ErrInvalidFrameType, b[pos])
		}
		key, n, err := decodeText(b[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		if _, dup := m[key]; dup {
			return nil, 0, fmt.Errorf("%w: duplicate map key %q", ErrMalformed, key)
		}

		v, n, err := d.decode(b[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		m[key] = v
	}
	return m, pos, nil
}
