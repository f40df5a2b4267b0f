// Package resp implements the RESP wire codec used by respkv.
//
// The package is organised around four pieces:
//
//   - Frame: a closed set of wire value types (SimpleString, Integer,
//     BulkString, Array, Map, Set, ...) with structural equality, a total
//     order and a hash that is consistent with equality.
//   - FrameLength: computes how many bytes the next complete frame occupies
//     without consuming anything.
//   - Decoder: consumes exactly one frame from a growable buffer, or reports
//     ErrIncomplete and leaves the buffer untouched.
//   - Encode / AppendFrame: serialise a frame into its canonical bytes.
//
// Decoding is incremental: callers append bytes read from the network to a
// buffer and call Decode until it returns ErrIncomplete. Any other error is
// fatal for the stream; the codec never attempts to resynchronise.
//
// Wire examples:
//
//	+OK\r\n                              SimpleString "OK"
//	-Error message\r\n                   SimpleError
//	:+123\r\n                            Integer (sign always written)
//	$5\r\nhello\r\n                      BulkString
//	$-1\r\n                              NullBulkString
//	*2\r\n$3\r\nget\r\n$5\r\nhello\r\n   Array
//	*0\r\n                               empty Array
//	*-1\r\n                              NullArray
//	_\r\n                                Null
//	#t\r\n                               Boolean
//	,+1.5\r\n                            Double
//	%1\r\n+k\r\n:+1\r\n                  Map (keys are SimpleStrings)
//	~2\r\n:+1\r\n:+2\r\n                 Set
package resp
