package redisserver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/pkg/resp"
)

// PING [message]
func (h *CommandHandler) handlePing(_ context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	switch len(args) {
	case 1:
		return resp.SimpleString("PONG"), nil
	case 2:
		return resp.BulkString(argString(args[1])), nil
	default:
		return nil, errWrongArity("PING")
	}
}

// ECHO message
func (h *CommandHandler) handleEcho(_ context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	return resp.BulkString(argString(args[1])), nil
}

// QUIT replies OK; the connection is closed once the reply is flushed.
func (h *CommandHandler) handleQuit(_ context.Context, c *Conn, _ []resp.Frame) (resp.Frame, error) {
	if c != nil {
		c.quit = true
	}
	return resp.OK, nil
}

// COMMAND [subcommand ...]
//
// Client tools query COMMAND and COMMAND DOCS on startup. Command metadata
// is not served, so every form replies with an empty array.
func (h *CommandHandler) handleCommand(_ context.Context, _ *Conn, _ []resp.Frame) (resp.Frame, error) {
	return resp.Array{}, nil
}

// INFO [section]
//
// Sections: server, clients, keyspace. Without an argument all sections
// are returned.
func (h *CommandHandler) handleInfo(ctx context.Context, _ *Conn, args []resp.Frame) (resp.Frame, error) {
	if len(args) > 2 {
		return nil, errSyntax
	}
	want := "all"
	if len(args) == 2 {
		want = strings.ToLower(argString(args[1]))
	}

	var b strings.Builder
	section := func(name string, write func()) {
		if want != "all" && want != "default" && want != name {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\r\n")
		}
		fmt.Fprintf(&b, "# %s\r\n", strings.ToUpper(name[:1])+name[1:])
		write()
	}

	section("server", func() {
		info := buildinfo.Get()
		fmt.Fprintf(&b, "respkv_version:%s\r\n", info.Version)
		fmt.Fprintf(&b, "respkv_git_sha1:%s\r\n", info.Commit)
		fmt.Fprintf(&b, "go_version:%s\r\n", info.GoVersion)
		if h.srv != nil {
			fmt.Fprintf(&b, "uptime_in_seconds:%d\r\n", int64(h.srv.Uptime().Seconds()))
		}
	})
	section("clients", func() {
		connected := 0
		if h.srv != nil {
			connected = h.srv.ClientCount()
		}
		fmt.Fprintf(&b, "connected_clients:%d\r\n", connected)
	})
	section("keyspace", func() {
		counts := h.store.Stats().ByType()
		types := make([]string, 0, len(counts))
		for t := range counts {
			types = append(types, t)
		}
		slices.Sort(types)
		fmt.Fprintf(&b, "keys:%d\r\n", h.store.DBSize(ctx))
		for _, t := range types {
			fmt.Fprintf(&b, "keys_%s:%d\r\n", t, counts[t])
		}
	})

	return resp.BulkString(b.String()), nil
}
