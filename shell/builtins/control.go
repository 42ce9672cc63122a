package builtins

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
)

func trueBuiltin(s *state.State, c *ctx.CommandContext) int  { return 0 }
func falseBuiltin(s *state.State, c *ctx.CommandContext) int { return 1 }

// shift drops the first N (default 1) positional parameters.
func shift(s *state.State, c *ctx.CommandContext) int {
	n := 1
	if len(c.Args) > 0 {
		v, err := strconv.Atoi(c.Args[0])
		if err != nil || v < 0 {
			fmt.Fprintln(c.Stderr, "shift: bad number")
			return 1
		}
		n = v
	}
	if n > len(s.PositionalParams) {
		s.PositionalParams = nil
		return 0
	}
	s.PositionalParams = s.PositionalParams[n:]
	return 0
}

// set with "--" replaces the positional parameters; with no arguments
// it lists the current environment, NAME=VALUE per line, sorted
// (the read-only subset of real set's behaviour lifo-sh implements:
// option flags like -e/-x have no ShellState field to bind to).
func set(s *state.State, c *ctx.CommandContext) int {
	if len(c.Args) == 0 {
		names := make([]string, 0, len(s.Env))
		for name := range s.Env {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(c.Stdout, "%s=%s\n", name, s.Env[name])
		}
		return 0
	}
	args := c.Args
	if args[0] == "--" {
		args = args[1:]
	}
	s.PositionalParams = append([]string{}, args...)
	return 0
}
