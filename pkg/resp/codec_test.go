package resp

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wellFormed lists frames that survive an encode/decode cycle with the
// default decoder.
func wellFormed() map[string]Frame {
	return map[string]Frame{
		"simple string":      SimpleString("OK"),
		"empty simple":       SimpleString(""),
		"error":              SimpleError("ERR unknown command"),
		"integer":            Integer(123),
		"negative integer":   Integer(-123),
		"zero":               Integer(0),
		"max integer":        Integer(math.MaxInt64),
		"min integer":        Integer(math.MinInt64),
		"bulk string":        BulkString("hello"),
		"empty bulk":         BulkString(""),
		"binary bulk":        BulkString("a\r\nb\x00\xff"),
		"null":               Null{},
		"null array":         NullArray{},
		"null bulk":          NullBulkString{},
		"true":               Boolean(true),
		"false":              Boolean(false),
		"double":             Double(1.5),
		"negative double":    Double(-0.25),
		"large double":       Double(123456789.5),
		"tiny double":        Double(1.5e-12),
		"zero double":        Double(0),
		"negative zero":      Double(math.Copysign(0, -1)),
		"infinity":           Double(math.Inf(1)),
		"negative infinity":  Double(math.Inf(-1)),
		"nan":                Double(math.NaN()),
		"empty array":        Array{},
		"array":              Array{BulkString("get"), BulkString("hello")},
		"mixed array":        Array{Integer(1), Null{}, SimpleString("x"), Boolean(true)},
		"nested array":       Array{Array{Integer(1)}, Array{}, NullArray{}},
		"set":                Set{Integer(1), Integer(2)},
		"set with duplicate": Set{Integer(1), Integer(1)},
		"empty set":          Set{},
		"map":                Map{"k1": Integer(1), "k2": Integer(2)},
		"empty map":          Map{},
		"nested map": Map{
			"list":  Array{BulkString("a"), BulkString("b")},
			"inner": Map{"x": Double(2.5)},
			"none":  Null{},
		},
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  string
	}{
		{"simple string", SimpleString("OK"), "+OK\r\n"},
		{"error", SimpleError("Error message"), "-Error message\r\n"},
		{"positive integer", Integer(123), ":+123\r\n"},
		{"negative integer", Integer(-123), ":-123\r\n"},
		{"zero integer", Integer(0), ":+0\r\n"},
		{"bulk string", BulkString("hello"), "$5\r\nhello\r\n"},
		{"empty bulk string", BulkString(""), "$0\r\n\r\n"},
		{"null bulk string", NullBulkString{}, "$-1\r\n"},
		{"array", Array{BulkString("get"), BulkString("hello")}, "*2\r\n$3\r\nget\r\n$5\r\nhello\r\n"},
		{"empty array", Array{}, "*0\r\n"},
		{"nil array", Array(nil), "*0\r\n"},
		{"null array", NullArray{}, "*-1\r\n"},
		{"null", Null{}, "_\r\n"},
		{"nil frame", nil, "_\r\n"},
		{"true", Boolean(true), "#t\r\n"},
		{"false", Boolean(false), "#f\r\n"},
		{"double", Double(1.5), ",+1.5\r\n"},
		{"negative double", Double(-2), ",-2\r\n"},
		{"zero double", Double(0), ",+0e0\r\n"},
		{"negative zero double", Double(math.Copysign(0, -1)), ",-0e0\r\n"},
		{"large double", Double(123456789), ",+1.23456789e8\r\n"},
		{"threshold double", Double(1e8), ",+1e8\r\n"},
		{"below threshold", Double(99999999), ",+99999999\r\n"},
		{"tiny double", Double(1e-9), ",+1e-9\r\n"},
		{"small double", Double(1e-8), ",+0.00000001\r\n"},
		{"negative large double", Double(-2.5e10), ",-2.5e10\r\n"},
		{"infinity", Double(math.Inf(1)), ",+inf\r\n"},
		{"negative infinity", Double(math.Inf(-1)), ",-inf\r\n"},
		{"nan", Double(math.NaN()), ",nan\r\n"},
		{"approximate float", ApproximateFloat(0.5), ",+0.5\r\n"},
		{"map", Map{"k2": Integer(2), "k1": Integer(1)}, "%2\r\n+k1\r\n:+1\r\n+k2\r\n:+2\r\n"},
		{"empty map", Map{}, "%0\r\n"},
		{"set", Set{Integer(1), Integer(2)}, "~2\r\n:+1\r\n:+2\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(Encode(tt.frame)))
		})
	}
}

func TestAppendFrame(t *testing.T) {
	dst := []byte("prefix")
	dst = AppendFrame(dst, OK)
	assert.Equal(t, "prefix+OK\r\n", string(dst))
}

func TestWriteFrame(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteFrame(&out, Array{Integer(1), BulkString("x")}))
	assert.Equal(t, "*2\r\n:+1\r\n$1\r\nx\r\n", out.String())
}

func TestRoundTrip(t *testing.T) {
	for name, f := range wellFormed() {
		t.Run(name, func(t *testing.T) {
			buf := bytes.NewBuffer(Encode(f))

			got, err := Decode(buf)
			require.NoError(t, err)
			assert.True(t, Equal(f, got), "decoded %#v, want %#v", got, f)
			assert.Zero(t, buf.Len(), "buffer should be fully consumed")
		})
	}
}

func TestRoundTrip_ApproximateFloat(t *testing.T) {
	dec := NewDecoder(WithApproximateFloats())
	for _, v := range []float64{0, math.Copysign(0, -1), 1, -1, 0.1, 1e-20, 3.14159, 1e300, -7.5e-9} {
		buf := bytes.NewBuffer(Encode(ApproximateFloat(v)))

		got, err := dec.Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, KindApproximateFloat, got.Kind())
		assert.True(t, Equal(ApproximateFloat(v), got), "value %v decoded as %v", v, got)
	}
}

func TestRoundTrip_NegativeZeroKeepsSign(t *testing.T) {
	negZero := math.Copysign(0, -1)
	for _, f := range []Frame{Double(negZero), ApproximateFloat(negZero)} {
		buf := bytes.NewBuffer(Encode(f))

		got, err := NewDecoder(WithApproximateFloats()).Decode(buf)
		require.NoError(t, err, "encoded %q", Encode(f))
		assert.Zero(t, buf.Len())

		var v float64
		switch g := got.(type) {
		case Double:
			v = float64(g)
		case ApproximateFloat:
			v = float64(g)
		default:
			t.Fatalf("decoded %#v, want a float", got)
		}
		assert.True(t, math.Signbit(v), "sign lost for %#v", f)
	}
}

func TestDecode_Exactness(t *testing.T) {
	trailer := []byte("+next\r\n")
	for name, f := range wellFormed() {
		t.Run(name, func(t *testing.T) {
			input := append(Encode(f), trailer...)

			n, err := FrameLength(input)
			require.NoError(t, err)
			assert.Equal(t, len(input)-len(trailer), n)

			buf := bytes.NewBuffer(input)
			_, err = Decode(buf)
			require.NoError(t, err)
			assert.Equal(t, len(input)-n, buf.Len())
			assert.Equal(t, trailer, buf.Bytes())
		})
	}
}

func TestDecode_IncompletePrefixes(t *testing.T) {
	for name, f := range wellFormed() {
		t.Run(name, func(t *testing.T) {
			full := Encode(f)
			for i := 0; i < len(full); i++ {
				prefix := full[:i]

				_, err := FrameLength(prefix)
				if err == nil {
					// FrameLength may know the length before the payload arrives.
					n, _ := FrameLength(prefix)
					require.Equal(t, len(full), n, "prefix %q", prefix)
				} else {
					require.ErrorIs(t, err, ErrIncomplete, "length of prefix %q", prefix)
				}

				buf := bytes.NewBuffer(bytes.Clone(prefix))
				got, err := Decode(buf)
				require.ErrorIs(t, err, ErrIncomplete, "decode prefix %q", prefix)
				require.Nil(t, got)
				require.False(t, IsFatal(err))
				require.Equal(t, prefix, buf.Bytes(), "buffer must be left untouched")
			}
		})
	}
}

func TestDecode_Incremental(t *testing.T) {
	stream := bytes.Join([][]byte{
		Encode(Array{BulkString("SET"), BulkString("k"), BulkString("v")}),
		Encode(Array{BulkString("GET"), BulkString("k")}),
		Encode(Map{"a": Set{Integer(1)}}),
	}, nil)

	var (
		buf    bytes.Buffer
		frames []Frame
	)
	for _, c := range stream {
		buf.WriteByte(c)
		for {
			f, err := Decode(&buf)
			if err != nil {
				require.ErrorIs(t, err, ErrIncomplete)
				break
			}
			frames = append(frames, f)
		}
	}

	require.Len(t, frames, 3)
	assert.True(t, Equal(Array{BulkString("SET"), BulkString("k"), BulkString("v")}, frames[0]))
	assert.True(t, Equal(Array{BulkString("GET"), BulkString("k")}, frames[1]))
	assert.True(t, Equal(Map{"a": Set{Integer(1)}}, frames[2]))
	assert.Zero(t, buf.Len())
}

func TestDecode_Composite(t *testing.T) {
	got, err := Decode(bytes.NewBufferString("*3\r\n:+1\r\n:+2\r\n:+3\r\n"))
	require.NoError(t, err)
	assert.Equal(t, Array{Integer(1), Integer(2), Integer(3)}, got)

	got, err = Decode(bytes.NewBufferString("%1\r\n+a\r\n:+5\r\n"))
	require.NoError(t, err)
	assert.Equal(t, Map{"a": Integer(5)}, got)

	got, err = Decode(bytes.NewBufferString("~2\r\n:+1\r\n:+2\r\n"))
	require.NoError(t, err)
	assert.Equal(t, Set{Integer(1), Integer(2)}, got)
}

func TestDecode_MapWithSeveralPairs(t *testing.T) {
	input := "%2\r\n+k1\r\n:+1\r\n+k2\r\n:+2\r\n"

	n, err := FrameLength([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, len(input), n)

	_, err = FrameLength([]byte("%2\r\n+k1\r\n:+1\r\n"))
	assert.ErrorIs(t, err, ErrIncomplete)

	got, err := Decode(bytes.NewBufferString(input))
	require.NoError(t, err)
	assert.Equal(t, Map{"k1": Integer(1), "k2": Integer(2)}, got)
}

func TestDecode_Scalars(t *testing.T) {
	tests := []struct {
		input string
		want  Frame
	}{
		{":123\r\n", Integer(123)},
		{":+123\r\n", Integer(123)},
		{":-7\r\n", Integer(-7)},
		{",1.5\r\n", Double(1.5)},
		{",-1.23456e2\r\n", Double(-123.456)},
		{",+1.23456e2\r\n", Double(123.456)},
		{",inf\r\n", Double(math.Inf(1))},
		{"+hello world\r\n", SimpleString("hello world")},
		{"-WRONGTYPE bad\r\n", SimpleError("WRONGTYPE bad")},
		{"$-1\r\n", NullBulkString{}},
		{"*-1\r\n", NullArray{}},
		{"*0\r\n", Array{}},
		{"_\r\n", Null{}},
		{"#t\r\n", Boolean(true)},
		{"#f\r\n", Boolean(false)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Decode(bytes.NewBufferString(tt.input))
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %#v, want %#v", got, tt.want)
		})
	}
}

func TestDecode_Fatal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown prefix", "?foo\r\n", ErrInvalidFrameType},
		{"array then garbage", "*2\r\ngarbage", ErrInvalidFrameType},
		{"second child garbage", "*2\r\n:+1\r\n!!", ErrInvalidFrameType},
		{"bad boolean", "#x\r\n", ErrInvalidFrameType},
		{"bad null", "_x\r\n", ErrInvalidFrameType},
		{"map key not simple string", "%1\r\n:+1\r\n:+1\r\n", ErrInvalidFrameType},
		{"non numeric bulk length", "$abc\r\n", ErrMalformed},
		{"non numeric bulk length before crlf", "$1x", ErrMalformed},
		{"negative bulk length", "$-2\r\n", ErrMalformed},
		{"empty bulk length", "$\r\n", ErrMalformed},
		{"cr without lf", "$1\r5", ErrMalformed},
		{"negative array count", "*-5\r\n", ErrMalformed},
		{"null set", "~-1\r\n", ErrMalformed},
		{"null map", "%-1\r\n", ErrMalformed},
		{"length too long", "*1234567890123456789\r\n", ErrMalformed},
		{"bulk terminator missing", "$3\r\nabcde", ErrMalformed},
		{"bad integer", ":abc\r\n", ErrMalformed},
		{"integer overflow", ":99999999999999999999\r\n", ErrMalformed},
		{"bad double", ",x\r\n", ErrMalformed},
		{"invalid utf-8", "+\xff\xfe\r\n", ErrMalformed},
		{"duplicate map key", "%2\r\n+a\r\n:+1\r\n+a\r\n:+2\r\n", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bytes.NewBufferString(tt.input)

			_, err := Decode(buf)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsFatal(err))
			assert.Equal(t, tt.input, buf.String(), "buffer must be left untouched")
		})
	}
}

func TestDecode_Limits(t *testing.T) {
	t.Run("depth", func(t *testing.T) {
		dec := NewDecoder(WithLimits(Limits{MaxDepth: 2}))

		_, err := dec.Decode(bytes.NewBufferString("*1\r\n*1\r\n:+1\r\n"))
		require.NoError(t, err)

		_, err = dec.Decode(bytes.NewBufferString("*1\r\n*1\r\n*1\r\n:+1\r\n"))
		assert.ErrorIs(t, err, ErrLimitExceeded)
		assert.True(t, IsFatal(err))
	})

	t.Run("default depth", func(t *testing.T) {
		input := bytes.Repeat([]byte("*1\r\n"), DefaultMaxDepth+1)
		input = append(input, ":+1\r\n"...)

		_, err := FrameLength(input)
		assert.ErrorIs(t, err, ErrLimitExceeded)
	})

	t.Run("bulk length", func(t *testing.T) {
		dec := NewDecoder(WithLimits(Limits{MaxBulkLen: 4}))

		_, err := dec.Decode(bytes.NewBufferString("$4\r\nabcd\r\n"))
		require.NoError(t, err)

		// Rejected as soon as the header is known.
		_, err = dec.Decode(bytes.NewBufferString("$5\r\n"))
		assert.ErrorIs(t, err, ErrLimitExceeded)
	})

	t.Run("elements", func(t *testing.T) {
		dec := NewDecoder(WithLimits(Limits{MaxElements: 2}))

		_, err := dec.Decode(bytes.NewBufferString("*3\r\n"))
		assert.ErrorIs(t, err, ErrLimitExceeded)

		_, err = dec.Decode(bytes.NewBufferString("%3\r\n"))
		assert.ErrorIs(t, err, ErrLimitExceeded)
	})

	t.Run("zero limits use defaults", func(t *testing.T) {
		dec := NewDecoder(WithLimits(Limits{}))
		assert.Equal(t, DefaultLimits(), dec.Limits())
	})
}

func TestDecode_CommandScenario(t *testing.T) {
	input := []byte("*2\r\n$3\r\nget\r\n$5\r\nhello\r\n")

	f, n, err := NewDecoder().DecodeBytes(input)
	require.NoError(t, err)
	assert.Equal(t, len(input), n)
	assert.Equal(t, Array{BulkString("get"), BulkString("hello")}, f)
	assert.Equal(t, input, Encode(f))
}

func TestDecode_DoesNotAlias(t *testing.T) {
	input := []byte("$5\r\nhello\r\n")

	f, _, err := NewDecoder().DecodeBytes(input)
	require.NoError(t, err)

	copy(input, "xxxxxxxxxxx")
	assert.Equal(t, BulkString("hello"), f)
}

func TestDecode_EmptyBuffer(t *testing.T) {
	_, err := Decode(new(bytes.Buffer))
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.False(t, IsFatal(err))
	assert.False(t, IsFatal(nil))
}

func BenchmarkDecode_Command(b *testing.B) {
	input := Encode(Array{BulkString("SET"), BulkString("key:000001"), BulkString("some value here")})
	dec := NewDecoder()

	b.ReportAllocs()
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		if _, _, err := dec.DecodeBytes(input); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncode_Array(b *testing.B) {
	f := Array{BulkString("SET"), BulkString("key:000001"), Integer(42), Double(3.5)}
	buf := make([]byte, 0, 128)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf = AppendFrame(buf[:0], f)
	}
}
