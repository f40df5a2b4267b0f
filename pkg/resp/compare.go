package resp

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"hash"
	"math"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Equal reports whether a and b are the same frame. Double payloads compare
// exactly (NaN equals NaN); ApproximateFloat payloads compare with an
// epsilon of 1e-18. Frames of different kinds are never equal.
func Equal(a, b Frame) bool {
	return Compare(a, b) == 0
}

// Compare orders frames: first by Kind, then by payload. It is a total
// order, so frames can be sorted and used in ordered containers. A nil
// Frame sorts before everything else.
func Compare(a, b Frame) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}

	switch x := a.(type) {
	case Null, NullArray, NullBulkString:
		return 0
	case Boolean:
		y := b.(Boolean)
		switch {
		case x == y:
			return 0
		case !bool(x):
			return -1
		default:
			return 1
		}
	case Integer:
		return cmp.Compare(x, b.(Integer))
	case Double:
		return cmp.Compare(float64(x), float64(b.(Double)))
	case ApproximateFloat:
		return compareApprox(float64(x), float64(b.(ApproximateFloat)))
	case SimpleString:
		return strings.Compare(string(x), string(b.(SimpleString)))
	case SimpleError:
		return strings.Compare(string(x), string(b.(SimpleError)))
	case BulkString:
		return bytes.Compare(x, b.(BulkString))
	case Array:
		return compareSeq(x, b.(Array))
	case Set:
		return compareSeq(x, b.(Set))
	case Map:
		return compareMap(x, b.(Map))
	}
	return 0
}

func compareSeq(a, b []Frame) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareMap(a, b Map) int {
	ak, bk := a.Keys(), b.Keys()
	for i := 0; i < len(ak) && i < len(bk); i++ {
		if c := strings.Compare(ak[i], bk[i]); c != 0 {
			return c
		}
		if c := Compare(a[ak[i]], b[bk[i]]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ak), len(bk))
}

// Hash returns a 64-bit murmur3 hash of f. Frames that are Equal hash
// identically.
func Hash(f Frame) uint64 {
	h := murmur3.New64()
	writeHash(h, f)
	return h.Sum64()
}

func writeHash(h hash.Hash64, f Frame) {
	var scratch [9]byte
	if f == nil {
		_, _ = h.Write([]byte{0xff})
		return
	}
	scratch[0] = byte(f.Kind())

	switch v := f.(type) {
	case Null, NullArray, NullBulkString:
		_, _ = h.Write(scratch[:1])
	case Boolean:
		if v {
			scratch[1] = 1
		}
		_, _ = h.Write(scratch[:2])
	case Integer:
		binary.BigEndian.PutUint64(scratch[1:], uint64(v))
		_, _ = h.Write(scratch[:])
	case Double:
		binary.BigEndian.PutUint64(scratch[1:], canonicalBits(float64(v)))
		_, _ = h.Write(scratch[:])
	case ApproximateFloat:
		q, exact := approxKey(float64(v))
		if exact {
			scratch[0] |= 0x80
		}
		binary.BigEndian.PutUint64(scratch[1:], canonicalBits(q))
		_, _ = h.Write(scratch[:])
	case SimpleString:
		writeHashBytes(h, scratch[:], []byte(v))
	case SimpleError:
		writeHashBytes(h, scratch[:], []byte(v))
	case BulkString:
		writeHashBytes(h, scratch[:], v)
	case Array:
		writeHashSeq(h, scratch[:], v)
	case Set:
		writeHashSeq(h, scratch[:], v)
	case Map:
		binary.BigEndian.PutUint64(scratch[1:], uint64(len(v)))
		_, _ = h.Write(scratch[:])
		for _, k := range v.Keys() {
			writeHashBytes(h, scratch[:], []byte(k))
			writeHash(h, v[k])
		}
	}
}

func writeHashBytes(h hash.Hash64, scratch []byte, b []byte) {
	binary.BigEndian.PutUint64(scratch[1:], uint64(len(b)))
	_, _ = h.Write(scratch)
	_, _ = h.Write(b)
}

func writeHashSeq(h hash.Hash64, scratch []byte, frames []Frame) {
	binary.BigEndian.PutUint64(scratch[1:], uint64(len(frames)))
	_, _ = h.Write(scratch)
	for _, f := range frames {
		writeHash(h, f)
	}
}

// canonicalBits maps -0 to +0 and every NaN to one bit pattern so that
// values cmp.Compare treats as equal share a representation.
func canonicalBits(v float64) uint64 {
	switch {
	case v == 0:
		return 0
	case math.IsNaN(v):
		return 0x7ff8000000000001
	default:
		return math.Float64bits(v)
	}
}
