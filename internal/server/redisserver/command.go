package redisserver

import (
	"context"
	"strings"
	"time"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
	"github.com/yndnr/respkv/pkg/resp"
)

// handlerFunc executes one command. args[0] is the command name.
type handlerFunc func(h *CommandHandler, ctx context.Context, c *Conn, args []resp.Frame) (resp.Frame, error)

// command describes one entry of the dispatch table.
type command struct {
	name string
	// arity counts the name itself. A negative arity is a minimum.
	arity   int
	handler handlerFunc
}

func (cmd *command) checkArity(argc int) bool {
	if cmd.arity >= 0 {
		return argc == cmd.arity
	}
	return argc >= -cmd.arity
}

// commandTable is keyed by upper-case command name.
var commandTable map[string]*command

func init() {
	commands := []*command{
		{"PING", -1, (*CommandHandler).handlePing},
		{"ECHO", 2, (*CommandHandler).handleEcho},
		{"QUIT", -1, (*CommandHandler).handleQuit},
		{"COMMAND", -1, (*CommandHandler).handleCommand},
		{"INFO", -1, (*CommandHandler).handleInfo},

		{"GET", 2, (*CommandHandler).handleGet},
		{"SET", 3, (*CommandHandler).handleSet},
		{"DEL", -2, (*CommandHandler).handleDel},
		{"EXISTS", -2, (*CommandHandler).handleExists},
		{"TYPE", 2, (*CommandHandler).handleType},
		{"KEYS", 2, (*CommandHandler).handleKeys},
		{"DBSIZE", 1, (*CommandHandler).handleDBSize},
		{"FLUSHALL", -1, (*CommandHandler).handleFlushAll},

		{"HSET", -4, (*CommandHandler).handleHSet},
		{"HGET", 3, (*CommandHandler).handleHGet},
		{"HGETALL", 2, (*CommandHandler).handleHGetAll},
		{"HMGET", -3, (*CommandHandler).handleHMGet},
		{"HDEL", -3, (*CommandHandler).handleHDel},
		{"HLEN", 2, (*CommandHandler).handleHLen},

		{"SADD", -3, (*CommandHandler).handleSAdd},
		{"SISMEMBER", 3, (*CommandHandler).handleSIsMember},
		{"SMEMBERS", 2, (*CommandHandler).handleSMembers},
		{"SREM", -3, (*CommandHandler).handleSRem},
		{"SCARD", 2, (*CommandHandler).handleSCard},
	}

	commandTable = make(map[string]*command, len(commands))
	for _, cmd := range commands {
		commandTable[cmd.name] = cmd
	}
}

// CommandNames returns the supported command names in upper case.
func CommandNames() []string {
	names := make([]string, 0, len(commandTable))
	for name := range commandTable {
		names = append(names, name)
	}
	return names
}

// CommandHandler dispatches decoded requests against the keyspace.
type CommandHandler struct {
	store   *memory.Store
	srv     *Server
	metrics *metric.Registry
}

// NewCommandHandler creates a new CommandHandler. srv and metrics may be
// nil.
func NewCommandHandler(store *memory.Store, srv *Server, metrics *metric.Registry) *CommandHandler {
	return &CommandHandler{
		store:   store,
		srv:     srv,
		metrics: metrics,
	}
}

// Handle executes one request frame and returns the reply frame.
func (h *CommandHandler) Handle(ctx context.Context, c *Conn, req resp.Frame) resp.Frame {
	args, err := commandArgs(req)
	if err != nil {
		return errorReply(err)
	}

	name := normalizeCommandName(args[0])
	cmd, ok := commandTable[name]
	if !ok {
		raw, _ := resp.Text(args[0])
		h.observe("unknown", 0, true)
		return errorReply(errUnknownCommand(raw))
	}
	if !cmd.checkArity(len(args)) {
		h.observe(name, 0, true)
		return errorReply(errWrongArity(name))
	}
	if c != nil && c.limiter != nil && !c.limiter.Allow() {
		h.observe(name, 0, true)
		return errorReply(errRateLimited)
	}

	logger.L(ctx).Debug("command", "command", name, "argc", len(args)-1)

	start := time.Now()
	reply, err := cmd.handler(h, ctx, c, args)
	if err != nil {
		reply = errorReply(err)
	}
	_, failed := reply.(resp.SimpleError)
	h.observe(name, time.Since(start), failed)
	return reply
}

func (h *CommandHandler) observe(name string, elapsed time.Duration, failed bool) {
	if h.metrics == nil {
		return
	}
	status := metric.StatusOK
	if failed {
		status = metric.StatusError
	}
	h.metrics.CommandsTotal.WithLabelValues(name, status).Inc()
	if elapsed > 0 {
		h.metrics.CommandDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	}
}

// commandArgs validates that req is a non-empty Array of string frames and
// returns its elements with SimpleStrings turned into BulkStrings, so a
// value is stored the same way whichever form the client used.
func commandArgs(req resp.Frame) ([]resp.Frame, error) {
	arr, ok := req.(resp.Array)
	if !ok {
		return nil, errNotArray
	}
	if len(arr) == 0 {
		return nil, errNoCommand
	}
	args := make([]resp.Frame, len(arr))
	for i, f := range arr {
		switch v := f.(type) {
		case resp.BulkString:
			args[i] = v
		case resp.SimpleString:
			args[i] = resp.BulkString(v)
		default:
			return nil, errNotArray
		}
	}
	return args, nil
}

func normalizeCommandName(f resp.Frame) string {
	s, _ := resp.Text(f)
	return strings.ToUpper(strings.TrimSpace(s))
}

// argString returns the text of a validated argument.
func argString(f resp.Frame) string {
	s, _ := resp.Text(f)
	return s
}

func argStrings(args []resp.Frame) []string {
	out := make([]string, len(args))
	for i, f := range args {
		out[i] = argString(f)
	}
	return out
}
