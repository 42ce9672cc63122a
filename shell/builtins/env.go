package builtins

import (
	"fmt"
	"strings"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
)

// export sets ShellState.Env entries. ShellState models a single flat
// env (spec.md §3 ShellState "env"), so export NAME=VALUE is just an
// assignment; bare "export NAME" is a no-op if NAME is already set and
// otherwise sets it to the empty string, POSIX's "marks for export"
// semantics collapsed onto the one map lifo-sh actually has. It always
// returns 0.
func export(s *state.State, c *ctx.CommandContext) int {
	code := 0
	for _, arg := range c.Args {
		if name, val, ok := strings.Cut(arg, "="); ok {
			s.Env[name] = val
			continue
		}
		if _, ok := s.Env[arg]; !ok {
			s.Env[arg] = ""
		}
	}
	return code
}

// unset removes a name from Env, or from Functions with -f.
func unset(s *state.State, c *ctx.CommandContext) int {
	args := c.Args
	fromFunctions := false
	if len(args) > 0 && args[0] == "-f" {
		fromFunctions = true
		args = args[1:]
	}
	for _, name := range args {
		if fromFunctions {
			delete(s.Functions, name)
			continue
		}
		delete(s.Env, name)
	}
	return 0
}

// alias with no arguments lists every alias; "name=value" sets one;
// bare "name" prints that one alias.
func alias(s *state.State, c *ctx.CommandContext) int {
	if len(c.Args) == 0 {
		for name, val := range s.Aliases {
			fmt.Fprintf(c.Stdout, "alias %s='%s'\n", name, val)
		}
		return 0
	}
	code := 0
	for _, arg := range c.Args {
		if name, val, ok := strings.Cut(arg, "="); ok {
			s.Aliases[name] = val
			continue
		}
		val, ok := s.Aliases[arg]
		if !ok {
			fmt.Fprintf(c.Stderr, "alias: %s: not found\n", arg)
			code = 1
			continue
		}
		fmt.Fprintf(c.Stdout, "alias %s='%s'\n", arg, val)
	}
	return code
}

func unalias(s *state.State, c *ctx.CommandContext) int {
	for _, name := range c.Args {
		delete(s.Aliases, name)
	}
	return 0
}
