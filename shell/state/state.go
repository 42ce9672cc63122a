// Package state defines ShellState (spec.md §3 "ShellState"), the
// process-wide mutable state of one shell instance, mutated only by the
// interpreter's single thread of control (spec.md §5).
package state

import (
	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/exec/job"
	"github.com/lifo-sh/lifo-sh/exec/registry"
	"github.com/lifo-sh/lifo-sh/shell/ast"
)

// BuiltinFn is a builtin command implementation, given direct access to
// the ShellState it runs against (builtins can mutate env/cwd/aliases/
// functions in ways an external command cannot).
type BuiltinFn func(s *State, c *ctx.CommandContext) int

// State is ShellState (spec.md §3).
type State struct {
	Env              map[string]string
	Aliases          map[string]string
	Functions        map[string]*ast.CompoundCommand
	PositionalParams []string
	LastExitCode     int
	Cwd              string
	Builtins         map[string]BuiltinFn
	Jobs             *job.Table
	Registry         *registry.Registry

	ShellPID     int // $$, conventionally 1 (spec.md §4.5 reserves pid 1 for the shell)
	LastBgPID    int // $!
	ShellName    string // $0
}

// New creates a State with empty maps, ready for a kernel to seed.
func New() *State {
	return &State{
		Env:       make(map[string]string),
		Aliases:   make(map[string]string),
		Functions: make(map[string]*ast.CompoundCommand),
		Builtins:  make(map[string]BuiltinFn),
		Jobs:      job.New(),
		Registry:  registry.New(),
		ShellPID:  1,
		ShellName: "lifosh",
		Cwd:       "/",
	}
}

// EnvSnapshot copies Env, for embedding in a CommandContext
// (spec.md §6.1 "env: snapshot of env at invocation time").
func (s *State) EnvSnapshot() map[string]string {
	out := make(map[string]string, len(s.Env))
	for k, v := range s.Env {
		out[k] = v
	}
	return out
}
