package builtins

import (
	"fmt"
	"strconv"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/exec/job"
	"github.com/lifo-sh/lifo-sh/shell/state"
)

// kill cancels the job owning the given pid (spec.md §4.5 "Kill").
func kill(s *state.State, c *ctx.CommandContext) int {
	if len(c.Args) == 0 {
		fmt.Fprintln(c.Stderr, "kill: usage: kill pid")
		return 1
	}
	pid, err := strconv.Atoi(c.Args[len(c.Args)-1])
	if err != nil {
		fmt.Fprintf(c.Stderr, "kill: %s: arguments must be process IDs\n", c.Args[len(c.Args)-1])
		return 1
	}
	if err := s.Jobs.Kill(pid); err != nil {
		fmt.Fprintf(c.Stderr, "kill: %s\n", err)
		return 1
	}
	return 0
}

// jobs lists every tracked job with its id, pid, status, and cmdline.
func jobs(s *state.State, c *ctx.CommandContext) int {
	for _, j := range s.Jobs.List() {
		st := j.Status()
		fmt.Fprintf(c.Stdout, "[%d] %d %s %s\n", j.ID, j.PID, st.State, j.Cmdline)
	}
	return 0
}

// wait blocks until the named job (by pid) or, with no arguments, every
// tracked job reaches a terminal state, returning the last one's exit
// code. Cooperates with cancellation via c.Signal.
func wait(s *state.State, c *ctx.CommandContext) int {
	var targets []*job.Job
	if len(c.Args) == 0 {
		targets = s.Jobs.List()
	} else {
		for _, arg := range c.Args {
			pid, err := strconv.Atoi(arg)
			if err != nil {
				continue
			}
			for _, j := range s.Jobs.List() {
				if j.PID == pid {
					targets = append(targets, j)
				}
			}
		}
	}
	code := 0
	for _, j := range targets {
		select {
		case <-j.Done():
			code = j.Status().Code
		case <-c.Signal.Done():
			return code
		}
	}
	return code
}
