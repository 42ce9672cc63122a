package builtins

import (
	"strings"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
)

// read drains all of stdin, keeps its first line (the rest is
// discarded), and splits it on IFS into the named variables, the last variable
// receiving any remainder. With no names, the line goes to REPLY.
// Returns 1 at EOF (no stdin, or stdin already drained).
func read(s *state.State, c *ctx.CommandContext) int {
	if c.Stdin == nil {
		return 1
	}
	data := c.Stdin.ReadAll()
	if len(data) == 0 {
		return 1
	}
	line := string(data)
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}

	names := c.Args
	if len(names) == 0 {
		names = []string{"REPLY"}
	}
	ifs := s.Env["IFS"]
	if _, ok := s.Env["IFS"]; !ok {
		ifs = " \t\n"
	}
	fields := strings.FieldsFunc(line, func(r rune) bool { return strings.ContainsRune(ifs, r) })

	for idx, name := range names {
		switch {
		case idx >= len(fields):
			s.Env[name] = ""
		case idx == len(names)-1:
			s.Env[name] = strings.Join(fields[idx:], " ")
		default:
			s.Env[name] = fields[idx]
		}
	}
	return 0
}
