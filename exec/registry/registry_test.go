package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/exec/registry"
)

func TestRegisterResolve(t *testing.T) {
	r := registry.New()
	r.RegisterFunc("echo", func(c *ctx.CommandContext) int { return 0 })

	h, ok := r.Resolve("echo")
	require.True(t, ok)
	assert.Equal(t, 0, h.Run(&ctx.CommandContext{}))
}

func TestResolveMissing(t *testing.T) {
	r := registry.New()
	_, ok := r.Resolve("nope")
	assert.False(t, ok)
}

func TestRegisterOverwritesSilently(t *testing.T) {
	r := registry.New()
	r.RegisterFunc("cmd", func(c *ctx.CommandContext) int { return 1 })
	r.RegisterFunc("cmd", func(c *ctx.CommandContext) int { return 2 })

	h, ok := r.Resolve("cmd")
	require.True(t, ok)
	assert.Equal(t, 2, h.Run(&ctx.CommandContext{}))
}

func TestUnregister(t *testing.T) {
	r := registry.New()
	r.RegisterFunc("cmd", func(c *ctx.CommandContext) int { return 0 })
	r.Unregister("cmd")
	_, ok := r.Resolve("cmd")
	assert.False(t, ok)
}

func TestListIsSorted(t *testing.T) {
	r := registry.New()
	r.RegisterFunc("zeta", func(c *ctx.CommandContext) int { return 0 })
	r.RegisterFunc("alpha", func(c *ctx.CommandContext) int { return 0 })
	r.RegisterFunc("mid", func(c *ctx.CommandContext) int { return 0 })

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.List())
}
