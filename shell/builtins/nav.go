package builtins

import (
	"fmt"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/vfs"
)

// cd changes ShellState.Cwd, maintaining OLDPWD/PWD the way real shells
// do. No argument goes to $HOME; "-" goes to $OLDPWD and prints it.
func cd(s *state.State, c *ctx.CommandContext) int {
	target := s.Env["HOME"]
	printTarget := false
	switch len(c.Args) {
	case 0:
	case 1:
		if c.Args[0] == "-" {
			old, ok := s.Env["OLDPWD"]
			if !ok {
				fmt.Fprintln(c.Stderr, "cd: OLDPWD not set")
				return 1
			}
			target = old
			printTarget = true
		} else {
			target = c.Args[0]
		}
	default:
		fmt.Fprintln(c.Stderr, "cd: too many arguments")
		return 1
	}

	abs := vfs.Resolve(s.Cwd, target)
	st, err := c.VFS.Stat(abs)
	if err != nil {
		fmt.Fprintf(c.Stderr, "cd: %s: no such directory\n", target)
		return 1
	}
	if st.Kind != vfs.KindDirectory {
		fmt.Fprintf(c.Stderr, "cd: %s: not a directory\n", target)
		return 1
	}

	s.Env["OLDPWD"] = s.Cwd
	s.Cwd = abs
	s.Env["PWD"] = abs
	if printTarget {
		fmt.Fprintln(c.Stdout, abs)
	}
	return 0
}

func pwd(s *state.State, c *ctx.CommandContext) int {
	fmt.Fprintln(c.Stdout, s.Cwd)
	return 0
}
