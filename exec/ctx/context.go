// Package ctx defines the narrow interfaces shared across the execution
// substrate (registry, jobs, pipes, terminal stdin) and consumed by every
// command handler: CommandContext (spec.md §6.1), plus the OutputStream /
// InputStream / Handler / RegistryHandle contracts that the interpreter
// wires together. Keeping these here (rather than in vfs, registry, or
// interp) avoids import cycles: packages that implement an interface
// never need to import the package that declares it (spec.md §9
// "tighten to a narrow interface").
package ctx

import (
	"context"
	"io"

	"github.com/lifo-sh/lifo-sh/vfs"
)

// OutputStream is anything a command can write to (spec.md §6.1 stdout/stderr).
type OutputStream = io.Writer

// InputStream is a one-shot readable stream a command can consume as
// stdin (spec.md §6.1 stdin; §4.4 pipe channel; §4.6 terminal stdin).
type InputStream interface {
	// Read returns the next buffered chunk, or (nil, false) at EOF.
	Read() ([]byte, bool)
	// ReadAll accumulates every chunk until EOF.
	ReadAll() []byte
}

// Handler is a registered or builtin command implementation (spec.md §9:
// "a trait-object / interface with a single run(ctx) → exit_code method").
type Handler interface {
	Run(c *CommandContext) int
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(c *CommandContext) int

func (f HandlerFunc) Run(c *CommandContext) int { return f(c) }

// RegistryHandle is the subset of exec/registry.Registry a CommandContext
// exposes to handlers that need to dispatch to other commands
// (spec.md §6.1 "registry: RegistryHandle").
type RegistryHandle interface {
	Resolve(name string) (Handler, bool)
	List() []string
}

// CommandContext is passed to every command handler invocation
// (spec.md §6.1).
type CommandContext struct {
	Args   []string
	Env    map[string]string
	Cwd    string
	VFS    *vfs.VFS
	Stdout OutputStream
	Stderr OutputStream
	Stdin  InputStream // nil if none
	Signal context.Context

	// Optional capability handles, present only if the kernel wires them.
	SetRawMode func(bool)
	Registry   RegistryHandle
}

// Cancelled reports whether c.Signal has tripped.
func (c *CommandContext) Cancelled() bool {
	if c.Signal == nil {
		return false
	}
	select {
	case <-c.Signal.Done():
		return true
	default:
		return false
	}
}
