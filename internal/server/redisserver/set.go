package redisserver

import (
	"context"

	"github.com/yndnr/respkv/pkg/resp"
)

// SADD key member [member ...]
func (h *CommandHandler) handleSAdd(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	n, err := h.store.SAdd(ctx, argString(args[1]), args[2:]...)
	if err != nil {
		return nil, err
	}
	return resp.Integer(n), nil
}

// SISMEMBER key member
func (h *CommandHandler) handleSIsMember(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	ok, err := h.store.SIsMember(ctx, argString(args[1]), args[2])
	if err != nil {
		return nil, err
	}
	return resp.Boolean(ok), nil
}

// SMEMBERS key
func (h *CommandHandler) handleSMembers(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	members, err := h.store.SMembers(ctx, argString(args[1]))
	if err != nil {
		return nil, err
	}
	return resp.Array(members), nil
}

// SREM key member [member ...]
func (h *CommandHandler) handleSRem(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	n, err := h.store.SRem(ctx, argString(args[1]), args[2:]...)
	if err != nil {
		return nil, err
	}
	return resp.Integer(n), nil
}

// SCARD key
func (h *CommandHandler) handleSCard(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	n, err := h.store.SCard(ctx, argString(args[1]))
	if err != nil {
		return nil, err
	}
	return resp.Integer(n), nil
}
