// Package redisserver serves the respkv keyspace over RESP.
//
// Each connection runs a feed loop: bytes read from the socket are appended
// to a per-connection buffer, every complete frame is decoded and dispatched
// in arrival order, and the replies of one read batch are flushed together.
// Pipelined requests therefore get in-order replies with a single write.
// A fatal decode error gets a best-effort error reply before the connection
// is closed.
//
// Supported commands:
//   - PING, ECHO, QUIT, COMMAND, INFO
//   - GET, SET, DEL, EXISTS, TYPE, KEYS, DBSIZE, FLUSHALL
//   - HSET, HGET, HGETALL, HMGET, HDEL, HLEN
//   - SADD, SISMEMBER, SMEMBERS, SREM, SCARD
//
// Requests are Arrays of BulkStrings. Inline commands ("PING\r\n") are
// accepted for telnet-style clients.
package redisserver
