// Package repl provides the interactive mode of respkv-cli.
//
//   - repl.go: the read-eval-print loop
//   - split.go: redis-cli style argument splitting with quotes
//   - completer.go: command name completion, used by "help <prefix>"
//   - history.go: history persisted across sessions
//
// Lines are sent to the server as commands, except for the local
// commands help, connect, exit and quit.
package repl
