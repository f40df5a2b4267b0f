// Package memory provides the in-memory keyspace for respkv.
//
// A single sharded map holds every key. Each key holds exactly one kind of
// value:
//
//   - String: a single frame (GET/SET)
//   - Hash: field -> frame (HSET/HGET/...)
//   - Set: a FrameSet of distinct frames (SADD/SISMEMBER/...)
//
// Operations on a key of the wrong kind fail with ErrWrongType.
//
// Thread Safety:
//
// All operations are thread-safe. Every read and write of a key's value
// happens under that key's shard lock, so concurrent clients touching
// different keys rarely contend and a single key's value is never raced.
package memory
