package redisserver

import (
	"context"

	"github.com/yndnr/respkv/pkg/resp"
)

// GET key
//
// Returns the stored frame, or Null if the key does not exist.
func (h *CommandHandler) handleGet(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	val, ok, err := h.store.Get(ctx, argString(args[1]))
	if err != nil {
		return nil, err
	}
	if !ok {
		return resp.Null{}, nil
	}
	return val, nil
}

// SET key value
//
// The value frame is stored as received and replaces whatever the key held.
func (h *CommandHandler) handleSet(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	h.store.Set(ctx, argString(args[1]), args[2])
	return resp.OK, nil
}

// DEL key [key ...]
func (h *CommandHandler) handleDel(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	return resp.Integer(h.store.Del(ctx, argStrings(args[1:])...)), nil
}

// EXISTS key [key ...]
func (h *CommandHandler) handleExists(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	return resp.Integer(h.store.Exists(ctx, argStrings(args[1:])...)), nil
}

// TYPE key
func (h *CommandHandler) handleType(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	return resp.SimpleString(h.store.Type(ctx, argString(args[1])).String()), nil
}

// KEYS pattern
func (h *CommandHandler) handleKeys(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	pattern := argString(args[1])
	var match func(string) bool
	if pattern != "*" {
		match = func(k string) bool { return matchGlob(pattern, k) }
	}

	keys := h.store.Keys(ctx, match)
	out := make(resp.Array, len(keys))
	for i, k := range keys {
		out[i] = resp.BulkString(k)
	}
	return out, nil
}

// DBSIZE
func (h *CommandHandler) handleDBSize(ctx context.Context, _ *Conn, _ []resp.Frame) (resp.Frame, error) {
	return resp.Integer(h.store.DBSize(ctx)), nil
}

// FLUSHALL [ASYNC|SYNC]
func (h *CommandHandler) handleFlushAll(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	if len(args) > 2 {
		return nil, errSyntax
	}
	if len(args) == 2 {
		switch normalizeCommandName(args[1]) {
		case "ASYNC", "SYNC":
		default:
			return nil, errSyntax
		}
	}
	h.store.FlushAll(ctx)
	return resp.OK, nil
}
