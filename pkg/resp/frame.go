package resp

import (
	"maps"
	"slices"
)

// Type prefixes.
const (
	PrefixSimpleString = '+'
	PrefixError        = '-'
	PrefixInteger      = ':'
	PrefixBulkString   = '$'
	PrefixArray        = '*'
	PrefixNull         = '_'
	PrefixBoolean      = '#'
	PrefixDouble       = ','
	PrefixMap          = '%'
	PrefixSet          = '~'
)

// Kind identifies a frame variant. The numeric order of kinds is the order
// used by Compare for frames of different kinds.
type Kind uint8

const (
	KindNull Kind = iota
	KindNullArray
	KindNullBulkString
	KindBoolean
	KindInteger
	KindDouble
	KindApproximateFloat
	KindSimpleString
	KindError
	KindBulkString
	KindArray
	KindSet
	KindMap
)

var kindNames = [...]string{
	KindNull:             "null",
	KindNullArray:        "null-array",
	KindNullBulkString:   "null-bulk-string",
	KindBoolean:          "boolean",
	KindInteger:          "integer",
	KindDouble:           "double",
	KindApproximateFloat: "approximate-float",
	KindSimpleString:     "simple-string",
	KindError:            "error",
	KindBulkString:       "bulk-string",
	KindArray:            "array",
	KindSet:              "set",
	KindMap:              "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Frame is one value on the wire. The set of implementations is closed:
// only the types declared in this package satisfy it.
//
// Frames are treated as immutable once built. The decoder always copies
// payload bytes out of the input buffer, so a decoded frame never aliases
// memory the caller will reuse.
type Frame interface {
	Kind() Kind
	frame()
}

// SimpleString is a short, CRLF-free text frame.
type SimpleString string

// SimpleError carries an error message.
type SimpleError string

// Integer is a signed 64-bit integer.
type Integer int64

// BulkString is a length-prefixed binary-safe string.
type BulkString []byte

// Array is an ordered sequence of frames.
type Array []Frame

// Null is the protocol "no value" marker.
type Null struct{}

// NullArray is the legacy "no array" marker ("*-1").
type NullArray struct{}

// NullBulkString is the legacy "no bulk string" marker ("$-1").
type NullBulkString struct{}

// Boolean is a true/false frame.
type Boolean bool

// Double is a 64-bit float compared exactly.
type Double float64

// ApproximateFloat is a 64-bit float compared with an epsilon of 1e-18.
// It is meant for floats used as set members or map keys.
type ApproximateFloat float64

// Map maps string keys to frames. Keys are unique; encoding and iteration
// through Keys follow sorted key order.
type Map map[string]Frame

// Set is an ordered sequence of frames. The codec does not de-duplicate
// members.
type Set []Frame

func (SimpleString) Kind() Kind     { return KindSimpleString }
func (SimpleError) Kind() Kind      { return KindError }
func (Integer) Kind() Kind          { return KindInteger }
func (BulkString) Kind() Kind       { return KindBulkString }
func (Array) Kind() Kind            { return KindArray }
func (Null) Kind() Kind             { return KindNull }
func (NullArray) Kind() Kind        { return KindNullArray }
func (NullBulkString) Kind() Kind   { return KindNullBulkString }
func (Boolean) Kind() Kind          { return KindBoolean }
func (Double) Kind() Kind           { return KindDouble }
func (ApproximateFloat) Kind() Kind { return KindApproximateFloat }
func (Map) Kind() Kind              { return KindMap }
func (Set) Kind() Kind              { return KindSet }

func (SimpleString) frame()     {}
func (SimpleError) frame()      {}
func (Integer) frame()          {}
func (BulkString) frame()       {}
func (Array) frame()            {}
func (Null) frame()             {}
func (NullArray) frame()        {}
func (NullBulkString) frame()   {}
func (Boolean) frame()          {}
func (Double) frame()           {}
func (ApproximateFloat) frame() {}
func (Map) frame()              {}
func (Set) frame()              {}

// OK is the conventional "+OK" reply.
var OK = SimpleString("OK")

// NewBulkString returns a BulkString holding a copy of s.
func NewBulkString(s string) BulkString {
	return BulkString(s)
}

// NewArray builds an Array from the given frames.
func NewArray(frames ...Frame) Array {
	return Array(frames)
}

// NewSet builds a Set from the given frames, keeping their order.
func NewSet(frames ...Frame) Set {
	return Set(frames)
}

// Keys returns the map keys in sorted order.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// String returns the payload as a string.
func (b BulkString) String() string {
	return string(b)
}

// Text returns the textual payload of a string-like frame (SimpleString,
// SimpleError or BulkString).
func Text(f Frame) (string, bool) {
	switch v := f.(type) {
	case SimpleString:
		return string(v), true
	case SimpleError:
		return string(v), true
	case BulkString:
		return string(v), true
	default:
		return "", false
	}
}

// IsNull reports whether f is one of the null markers (or a nil Frame).
func IsNull(f Frame) bool {
	switch f.(type) {
	case nil, Null, NullArray, NullBulkString:
		return true
	default:
		return false
	}
}
