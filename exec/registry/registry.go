// Package registry implements the command name -> handler table
// (spec.md §4.3 "Registry"). Builtins and interpreter-level functions are
// resolved ahead of the registry (spec.md §6.1 resolution order: builtins
// > functions > registry), so Registry only ever holds host- or
// script-registered external commands.
//
// Grounded on the teacher's runtime/decorators/registry.go global-registry
// pattern (package-level Register calls populating a name-keyed map), but
// reshaped as an instantiable type since spec.md allows multiple
// independent kernels to run in one process (spec.md §1 "embeddable").
package registry

import (
	"sort"
	"sync"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
)

// Registry maps command names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]ctx.Handler
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]ctx.Handler)}
}

// Register binds name to handler, overwriting any previous binding
// (spec.md §4.3 "register overwrites silently").
func (r *Registry) Register(name string, handler ctx.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// RegisterFunc is a convenience wrapper around Register for plain functions.
func (r *Registry) RegisterFunc(name string, fn func(c *ctx.CommandContext) int) {
	r.Register(name, ctx.HandlerFunc(fn))
}

// Unregister removes name, if present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// Resolve looks up name, satisfying ctx.RegistryHandle.
func (r *Registry) Resolve(name string) (ctx.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// List returns every registered name in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ ctx.RegistryHandle = (*Registry)(nil)
