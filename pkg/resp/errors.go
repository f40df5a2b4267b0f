package resp

import "errors"

var (
	// ErrIncomplete means the buffer does not yet hold a complete frame.
	// It is the only recoverable error: read more bytes and retry.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrInvalidFrameType means a type prefix or a fixed token (null
	// sentinel, boolean) did not match any accepted form.
	ErrInvalidFrameType = errors.New("resp: invalid frame type")

	// ErrMalformed means a length, number, terminator or text payload failed
	// to parse.
	ErrMalformed = errors.New("resp: malformed frame")

	// ErrLimitExceeded means a frame exceeds a configured Limits value.
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// IsFatal reports whether err is a decode error the stream cannot recover
// from.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrIncomplete)
}

// Protocol limits guarding against hostile input.
const (
	// DefaultMaxDepth bounds the nesting of Array, Set and Map frames.
	DefaultMaxDepth = 64

	// DefaultMaxBulkLen bounds a single bulk string payload (512 MiB).
	DefaultMaxBulkLen = 512 * 1024 * 1024

	// DefaultMaxElements bounds the declared element or pair count of one
	// composite frame.
	DefaultMaxElements = 1024 * 1024

	// maxLengthDigits is the longest decimal length field accepted.
	maxLengthDigits = 18
)

// Limits bounds what a Decoder accepts. Zero fields fall back to the
// defaults.
type Limits struct {
	MaxDepth    int
	MaxBulkLen  int
	MaxElements int
}

// DefaultLimits returns the default protocol limits.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:    DefaultMaxDepth,
		MaxBulkLen:  DefaultMaxBulkLen,
		MaxElements: DefaultMaxElements,
	}
}

func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxBulkLen <= 0 {
		l.MaxBulkLen = DefaultMaxBulkLen
	}
	if l.MaxElements <= 0 {
		l.MaxElements = DefaultMaxElements
	}
	return l
}
