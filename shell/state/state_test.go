package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInitializesMaps(t *testing.T) {
	s := New()
	assert.NotNil(t, s.Env)
	assert.NotNil(t, s.Aliases)
	assert.NotNil(t, s.Functions)
	assert.NotNil(t, s.Builtins)
	assert.NotNil(t, s.Jobs)
	assert.NotNil(t, s.Registry)
	assert.Equal(t, 1, s.ShellPID)
	assert.Equal(t, "lifosh", s.ShellName)
	assert.Equal(t, "/", s.Cwd)
}

func TestEnvSnapshotIsIndependentCopy(t *testing.T) {
	s := New()
	s.Env["FOO"] = "bar"
	snap := s.EnvSnapshot()
	assert.Equal(t, "bar", snap["FOO"])
	snap["FOO"] = "mutated"
	assert.Equal(t, "bar", s.Env["FOO"])
}
