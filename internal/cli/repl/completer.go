package repl

import (
	"sort"
	"strings"
)

// CommandHelp describes a command accepted at the prompt.
type CommandHelp struct {
	Name    string
	Args    string
	Summary string
}

// Completer looks up commands by prefix.
type Completer struct {
	commands []CommandHelp
}

// NewCompleter creates a Completer for the server commands and the REPL's
// own commands.
func NewCompleter() *Completer {
	cmds := []CommandHelp{
		{"PING", "", "Check the connection"},
		{"ECHO", "message", "Return the message"},
		{"GET", "key", "Get the value of a key"},
		{"SET", "key value", "Set the value of a key"},
		{"help", "[prefix]", "List commands"},
		{"exit", "", "Leave interactive mode"},
		{"quit", "", "Leave interactive mode"},
	}
	sort.Slice(cmds, func(i, j int) bool {
		return strings.ToLower(cmds[i].Name) < strings.ToLower(cmds[j].Name)
	})
	return &Completer{commands: cmds}
}

// Complete returns the commands whose names start with prefix, ignoring case.
func (c *Completer) Complete(prefix string) []CommandHelp {
	prefix = strings.ToLower(prefix)
	var suggestions []CommandHelp
	for _, cmd := range c.commands {
		if strings.HasPrefix(strings.ToLower(cmd.Name), prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
