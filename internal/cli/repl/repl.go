package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/pkg/resp"
)

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	conn      *connection.Manager
	formatter output.Formatter
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a new REPL sending commands through conn.
func New(conn *connection.Manager, formatter output.Formatter, completer *Completer, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		conn:      conn,
		formatter: formatter,
		completer: completer,
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns at EOF, on exit or quit, or when
// ctx ends.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprintf(r.output, "%s> ", r.conn.Addr())

		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		args, splitErr := SplitArgs(line)
		if splitErr != nil {
			fmt.Fprintf(r.output, "%s\n", splitErr)
			continue
		}

		if done := r.execute(ctx, args); done {
			return nil
		}
	}
}

// execute runs one line and reports whether the REPL should stop.
func (r *REPL) execute(ctx context.Context, args []string) bool {
	switch strings.ToUpper(args[0]) {
	case "EXIT":
		return true
	case "QUIT":
		if r.conn.IsConnected() {
			_, _ = r.conn.Do(ctx, "QUIT")
			r.conn.Disconnect()
		}
		return true
	case "HELP":
		r.help(args[1:])
		return false
	case "CONNECT":
		r.connect(ctx, args[1:])
		return false
	}

	reply, err := r.conn.Do(ctx, args...)
	if err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return false
	}
	if err := r.formatter.Format(r.output, reply); err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
	}
	return false
}

func (r *REPL) help(args []string) {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	matches := r.completer.Complete(prefix)
	if len(matches) == 0 {
		fmt.Fprintf(r.output, "no commands match %q\n", prefix)
		return
	}
	fmt.Fprintln(r.output, strings.Join(matches, " "))
}

func (r *REPL) connect(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.output, "usage: connect host:port")
		return
	}
	if err := r.conn.Connect(ctx, args[0]); err != nil {
		fmt.Fprintf(r.output, "Error: %v\n", err)
		return
	}
	_ = r.formatter.Format(r.output, resp.OK)
}
