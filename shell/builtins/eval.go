package builtins

import (
	"strings"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/interp"
	"github.com/lifo-sh/lifo-sh/shell/state"
)

// eval re-parses its joined arguments and runs them as a script in a
// sub-interpreter sharing this ShellState, mirroring command
// substitution's "sub-interpreter sharing ShellState" shape
// (spec.md §4.9 step 5) rather than re-threading the parent Interp
// through the builtin call.
func eval(s *state.State, c *ctx.CommandContext) int {
	src := strings.Join(c.Args, " ")
	if src == "" {
		return 0
	}
	sub := interp.New(s, c.VFS, c.Stdout, c.Stderr, c.Stdin)
	sub.Signal = c.Signal
	return sub.Run(src + "\n")
}
