package builtins

import (
	"fmt"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
)

// typeBuiltin reports how each name would resolve, following the
// interpreter's own resolution order: builtin > function > registry.
func typeBuiltin(s *state.State, c *ctx.CommandContext) int {
	code := 0
	for _, name := range c.Args {
		switch {
		case isControlWord(name):
			fmt.Fprintf(c.Stdout, "%s is a shell keyword\n", name)
		case hasBuiltin(s, name):
			fmt.Fprintf(c.Stdout, "%s is a shell builtin\n", name)
		case hasFunction(s, name):
			fmt.Fprintf(c.Stdout, "%s is a function\n", name)
		case hasRegistered(s, name):
			fmt.Fprintf(c.Stdout, "%s is %s\n", name, name)
		default:
			fmt.Fprintf(c.Stderr, "type: %s: not found\n", name)
			code = 1
		}
	}
	return code
}

func isControlWord(name string) bool {
	switch name {
	case "break", "continue", "return", "exit":
		return true
	}
	return false
}

func hasBuiltin(s *state.State, name string) bool {
	_, ok := s.Builtins[name]
	return ok
}

func hasFunction(s *state.State, name string) bool {
	_, ok := s.Functions[name]
	return ok
}

func hasRegistered(s *state.State, name string) bool {
	_, ok := s.Registry.Resolve(name)
	return ok
}
