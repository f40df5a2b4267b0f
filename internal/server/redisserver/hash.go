package redisserver

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

// HSET key field value [field value ...]
func (h *CommandHandler) handleHSet(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	rest := args[2:]
	if len(rest)%2 != 0 {
		return nil, errWrongArity("HSET")
	}

	pairs := make([]memory.FieldValue, 0, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		field := argString(rest[i])
		if !validFieldName(field) {
			return nil, errFieldName
		}
		pairs = append(pairs, memory.FieldValue{
			Field: field,
			Value: rest[i+1],
		})
	}

	added, err := h.store.HSet(ctx, argString(args[1]), pairs...)
	if err != nil {
		return nil, err
	}
	return resp.Integer(added), nil
}

// HGET key field
func (h *CommandHandler) handleHGet(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	val, ok, err := h.store.HGet(ctx, argString(args[1]), argString(args[2]))
	if err != nil {
		return nil, err
	}
	if !ok {
		return resp.Null{}, nil
	}
	return val, nil
}

// HGETALL key
func (h *CommandHandler) handleHGetAll(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	m, err := h.store.HGetAll(ctx, argString(args[1]))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// HMGET key field [field ...]
func (h *CommandHandler) handleHMGet(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	vals, err := h.store.HMGet(ctx, argString(args[1]), argStrings(args[2:])...)
	if err != nil {
		return nil, err
	}
	return vals, nil
}

// HDEL key field [field ...]
func (h *CommandHandler) handleHDel(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	n, err := h.store.HDel(ctx, argString(args[1]), argStrings(args[2:])...)
	if err != nil {
		return nil, err
	}
	return resp.Integer(n), nil
}

// HLEN key
func (h *CommandHandler) handleHLen(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	n, err := h.store.HLen(ctx, argString(args[1]))
	if err != nil {
		return nil, err
	}
	return resp.Integer(n), nil
}

// validFieldName reports whether field can be sent back as a Map key.
// HGETALL replies encode keys as simple strings, which cannot carry line
// breaks or invalid UTF-8.
func validFieldName(field string) bool {
	return utf8.ValidString(field) && !strings.ContainsAny(field, "\r\n")
}
