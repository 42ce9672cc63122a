package builtins

import (
	"fmt"
	"strings"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
)

// echo writes its arguments space-joined; -n suppresses the trailing
// newline (the one option real shells agree on without xpg_echo games).
func echo(s *state.State, c *ctx.CommandContext) int {
	args := c.Args
	newline := true
	if len(args) > 0 && args[0] == "-n" {
		newline = false
		args = args[1:]
	}
	fmt.Fprint(c.Stdout, strings.Join(args, " "))
	if newline {
		fmt.Fprint(c.Stdout, "\n")
	}
	return 0
}
