package resp

import (
	"cmp"
	"math"
	"strconv"
)

const (
	// approxEpsilon is the ApproximateFloat equality tolerance.
	approxEpsilon = 1e-18
	approxScale   = 1 / approxEpsilon

	// Magnitudes at or above sciHigh, or below sciLow, are written in
	// scientific notation.
	sciHigh = 1e8
	sciLow  = 1e-8
)

// approxKey returns the value ApproximateFloat equality, ordering and
// hashing are based on. For |v| < 1 it is round(v*1e18); two such values
// share a key only if they differ by less than 1e-18. For |v| >= 1 (and
// NaN, ±Inf) adjacent float64 values are already more than 1e-18 apart, so
// the value itself is the key and exact is true.
func approxKey(v float64) (key float64, exact bool) {
	if math.Abs(v) < 1 {
		return math.Round(v * approxScale), false
	}
	return v, true
}

func compareApprox(a, b float64) int {
	ka, ea := approxKey(a)
	kb, eb := approxKey(b)
	if !ea && !eb {
		return cmp.Compare(ka, kb)
	}
	return cmp.Compare(a, b)
}

// appendFloat writes the RESP text form of v: an explicit sign, then either
// a plain decimal or "<mantissa>e<exponent>" for very large or very small
// magnitudes, zero included. The sign of -0 is kept. NaN is written as
// "nan" and infinities as "+inf"/"-inf".
func appendFloat(dst []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, "nan"...)
	case math.IsInf(v, 1):
		return append(dst, "+inf"...)
	case math.IsInf(v, -1):
		return append(dst, "-inf"...)
	}

	if math.Signbit(v) {
		dst = append(dst, '-')
		v = -v
	} else {
		dst = append(dst, '+')
	}

	if v >= sciHigh || v < sciLow {
		return appendScientific(dst, v)
	}
	return strconv.AppendFloat(dst, v, 'f', -1, 64)
}

// appendScientific writes v (non-negative) as "1.5e8" / "1.5e-9", without
// the "+" and zero padding strconv puts in the exponent.
func appendScientific(dst []byte, v float64) []byte {
	var tmp [32]byte
	s := strconv.AppendFloat(tmp[:0], v, 'e', -1, 64)

	i := 0
	for i < len(s) && s[i] != 'e' {
		i++
	}
	dst = append(dst, s[:i+1]...)

	exp := s[i+1:]
	switch exp[0] {
	case '+':
		exp = exp[1:]
	case '-':
		dst = append(dst, '-')
		exp = exp[1:]
	}
	for len(exp) > 1 && exp[0] == '0' {
		exp = exp[1:]
	}
	return append(dst, exp...)
}

func parseFloat(b []byte) (float64, error) {
	return strconv.ParseFloat(string(b), 64)
}
