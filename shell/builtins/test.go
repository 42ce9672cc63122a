package builtins

import (
	"fmt"
	"strconv"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/vfs"
)

// test implements the POSIX conditional command: string/integer
// comparisons and the most common file-type unary operators, the subset
// the interpreter's own `if`/`while` conditions exercise via `[ ... ]`.
func test(s *state.State, c *ctx.CommandContext) int {
	ok, err := evalTest(c.Args, c)
	if err != nil {
		fmt.Fprintf(c.Stderr, "test: %s\n", err)
		return 2
	}
	if ok {
		return 0
	}
	return 1
}

// bracketTest is `[`: identical to test but requires a trailing `]`.
func bracketTest(s *state.State, c *ctx.CommandContext) int {
	if len(c.Args) == 0 || c.Args[len(c.Args)-1] != "]" {
		fmt.Fprintln(c.Stderr, "[: missing closing ]")
		return 2
	}
	stripped := *c
	stripped.Args = c.Args[:len(c.Args)-1]
	return test(s, &stripped)
}

func evalTest(args []string, c *ctx.CommandContext) (bool, error) {
	if len(args) > 0 && args[0] == "!" {
		ok, err := evalTest(args[1:], c)
		return !ok, err
	}
	switch len(args) {
	case 0:
		return false, nil
	case 1:
		return args[0] != "", nil
	case 2:
		return evalUnary(args[0], args[1], c)
	case 3:
		return evalBinary(args[0], args[1], args[2], c)
	}
	return false, fmt.Errorf("unsupported expression")
}

func evalUnary(op, operand string, c *ctx.CommandContext) (bool, error) {
	switch op {
	case "-z":
		return operand == "", nil
	case "-n":
		return operand != "", nil
	case "-f":
		st, err := c.VFS.Stat(resolveArg(c, operand))
		return err == nil && st.Kind == vfs.KindFile, nil
	case "-d":
		st, err := c.VFS.Stat(resolveArg(c, operand))
		return err == nil && st.Kind == vfs.KindDirectory, nil
	case "-e":
		return c.VFS.Exists(resolveArg(c, operand)), nil
	}
	return false, fmt.Errorf("unknown unary operator %q", op)
}

func evalBinary(lhs, op, rhs string, c *ctx.CommandContext) (bool, error) {
	switch op {
	case "=", "==":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	}
	l, lerr := strconv.Atoi(lhs)
	r, rerr := strconv.Atoi(rhs)
	if lerr != nil || rerr != nil {
		return false, fmt.Errorf("integer expression expected: %s %s %s", lhs, op, rhs)
	}
	switch op {
	case "-eq":
		return l == r, nil
	case "-ne":
		return l != r, nil
	case "-lt":
		return l < r, nil
	case "-le":
		return l <= r, nil
	case "-gt":
		return l > r, nil
	case "-ge":
		return l >= r, nil
	}
	return false, fmt.Errorf("unknown binary operator %q", op)
}

func resolveArg(c *ctx.CommandContext, p string) string {
	return vfs.Resolve(c.Cwd, p)
}
