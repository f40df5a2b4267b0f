package repl

import (
	"slices"
	"strings"
)

// localCommands are handled by the REPL itself.
var localCommands = []string{"CONNECT", "EXIT", "HELP", "QUIT"}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given server command names
// plus the REPL's own commands.
func NewCompleter(serverCommands []string) *Completer {
	cmds := make([]string, 0, len(serverCommands)+len(localCommands))
	for _, c := range serverCommands {
		cmds = append(cmds, strings.ToUpper(c))
	}
	cmds = append(cmds, localCommands...)
	slices.Sort(cmds)
	return &Completer{commands: slices.Compact(cmds)}
}

// Complete returns the commands starting with prefix, ignoring case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToUpper(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
