package redisserver

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

// CommandError is a command failure rendered to the client as an Error
// frame: "<Prefix> <Message>".
type CommandError struct {
	Prefix  string
	Message string
}

func (e *CommandError) Error() string {
	return e.Prefix + " " + e.Message
}

// Frame returns the error as a RESP Error frame.
func (e *CommandError) Frame() resp.SimpleError {
	return resp.SimpleError(e.Error())
}

// Error prefixes.
const (
	PrefixErr       = "ERR"
	PrefixWrongType = "WRONGTYPE"
)

var (
	errNoCommand   = &CommandError{PrefixErr, "no command"}
	errNotArray    = &CommandError{PrefixErr, "Protocol error: expected array of bulk strings"}
	errSyntax      = &CommandError{PrefixErr, "syntax error"}
	errRateLimited = &CommandError{PrefixErr, "rate limit exceeded"}
	errMaxClients  = &CommandError{PrefixErr, "max number of clients reached"}
	errBufferLimit = &CommandError{PrefixErr, "Protocol error: client query buffer exceeds limit"}
	errFieldName   = &CommandError{PrefixErr, "hash field names must be UTF-8 without CR or LF"}
)

func errWrongArity(name string) *CommandError {
	return &CommandError{PrefixErr, "wrong number of arguments for '" + strings.ToLower(name) + "' command"}
}

// maxEchoedName bounds how much of an unknown command name is echoed back.
const maxEchoedName = 128

func errUnknownCommand(name string) *CommandError {
	return &CommandError{PrefixErr, "unknown command '" + replyText(name, maxEchoedName) + "'"}
}

// replyText makes client-supplied text safe to embed in a single-line
// reply: CR and LF become spaces, invalid UTF-8 is replaced and the result
// is cut to at most limit bytes on a rune boundary.
func replyText(s string, limit int) string {
	s = strings.ToValidUTF8(s, "?")
	s = strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, s)
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func errProtocol(err error) *CommandError {
	return &CommandError{PrefixErr, "Protocol error: " + err.Error()}
}

// errorReply converts err to the Error frame sent to the client.
func errorReply(err error) resp.SimpleError {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Frame()
	}
	if errors.Is(err, memory.ErrWrongType) {
		return resp.SimpleError(memory.ErrWrongType.Error())
	}
	return resp.SimpleError(PrefixErr + " " + err.Error())
}

// protocolErrorKind labels a decode error for metrics.
func protocolErrorKind(err error) string {
	switch {
	case errors.Is(err, resp.ErrInvalidFrameType):
		return "invalid_frame_type"
	case errors.Is(err, resp.ErrMalformed):
		return "malformed"
	case errors.Is(err, resp.ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, errBufferLimit):
		return "buffer_limit"
	default:
		return "other"
	}
}
