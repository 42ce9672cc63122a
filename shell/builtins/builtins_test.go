package builtins

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/vfs"
)

func newTestState(t *testing.T) (*state.State, *vfs.VFS) {
	t.Helper()
	s := state.New()
	v := vfs.New(nil, nil)
	require.NoError(t, v.Mkdir("/home", false))
	require.NoError(t, v.Mkdir("/home/user", false))
	s.Env["HOME"] = "/home/user"
	s.Cwd = "/home/user"
	Register(s)
	return s, v
}

func newCtx(s *state.State, v *vfs.VFS, args []string, stdin ctx.InputStream) (*ctx.CommandContext, *bytes.Buffer, *bytes.Buffer) {
	var out, errb bytes.Buffer
	return &ctx.CommandContext{
		Args:   args,
		Env:    s.EnvSnapshot(),
		Cwd:    s.Cwd,
		VFS:    v,
		Stdout: &out,
		Stderr: &errb,
		Stdin:  stdin,
		Signal: context.Background(),
	}, &out, &errb
}

func TestCdAndPwd(t *testing.T) {
	s, v := newTestState(t)
	require.NoError(t, v.Mkdir("/home/user/proj", false))
	c, _, _ := newCtx(s, v, []string{"proj"}, nil)
	assert.Equal(t, 0, cd(s, c))
	assert.Equal(t, "/home/user/proj", s.Cwd)
	assert.Equal(t, "/home/user", s.Env["OLDPWD"])

	c2, out, _ := newCtx(s, v, nil, nil)
	assert.Equal(t, 0, pwd(s, c2))
	assert.Equal(t, "/home/user/proj\n", out.String())

	c3, _, errb := newCtx(s, v, []string{"nope"}, nil)
	assert.Equal(t, 1, cd(s, c3))
	assert.Contains(t, errb.String(), "no such directory")
}

func TestCdDash(t *testing.T) {
	s, v := newTestState(t)
	require.NoError(t, v.Mkdir("/home/user/proj", false))
	c, _, _ := newCtx(s, v, []string{"proj"}, nil)
	require.Equal(t, 0, cd(s, c))

	c2, out, _ := newCtx(s, v, []string{"-"}, nil)
	assert.Equal(t, 0, cd(s, c2))
	assert.Equal(t, "/home/user", s.Cwd)
	assert.Equal(t, "/home/user\n", out.String())
}

func TestEcho(t *testing.T) {
	s, v := newTestState(t)
	c, out, _ := newCtx(s, v, []string{"hello", "world"}, nil)
	assert.Equal(t, 0, echo(s, c))
	assert.Equal(t, "hello world\n", out.String())

	c2, out2, _ := newCtx(s, v, []string{"-n", "no", "newline"}, nil)
	assert.Equal(t, 0, echo(s, c2))
	assert.Equal(t, "no newline", out2.String())
}

func TestExportAndUnset(t *testing.T) {
	s, v := newTestState(t)
	c, _, _ := newCtx(s, v, []string{"FOO=bar"}, nil)
	assert.Equal(t, 0, export(s, c))
	assert.Equal(t, "bar", s.Env["FOO"])

	c2, _, _ := newCtx(s, v, []string{"FOO"}, nil)
	assert.Equal(t, 0, unset(s, c2))
	_, ok := s.Env["FOO"]
	assert.False(t, ok)
}

func TestShiftAndSet(t *testing.T) {
	s, v := newTestState(t)
	s.PositionalParams = []string{"a", "b", "c"}
	c, _, _ := newCtx(s, v, nil, nil)
	assert.Equal(t, 0, shift(s, c))
	assert.Equal(t, []string{"b", "c"}, s.PositionalParams)

	c2, _, _ := newCtx(s, v, []string{"--", "x", "y"}, nil)
	assert.Equal(t, 0, set(s, c2))
	assert.Equal(t, []string{"x", "y"}, s.PositionalParams)
}

type stringStdin struct {
	data []byte
	done bool
}

func (r *stringStdin) Read() ([]byte, bool) {
	if r.done {
		return nil, false
	}
	r.done = true
	return r.data, true
}
func (r *stringStdin) ReadAll() []byte {
	if r.done {
		return nil
	}
	r.done = true
	return r.data
}

func TestRead(t *testing.T) {
	s, v := newTestState(t)
	stdin := &stringStdin{data: []byte("hello world\nmore\n")}
	c, _, _ := newCtx(s, v, []string{"a", "b"}, stdin)
	assert.Equal(t, 0, read(s, c))
	assert.Equal(t, "hello", s.Env["a"])
	assert.Equal(t, "world", s.Env["b"])
}

func TestReadEOF(t *testing.T) {
	s, v := newTestState(t)
	c, _, _ := newCtx(s, v, []string{"x"}, nil)
	assert.Equal(t, 1, read(s, c))
}

func TestTestBuiltin(t *testing.T) {
	s, v := newTestState(t)
	c, _, _ := newCtx(s, v, []string{"foo", "=", "foo"}, nil)
	assert.Equal(t, 0, test(s, c))

	c2, _, _ := newCtx(s, v, []string{"3", "-lt", "5"}, nil)
	assert.Equal(t, 0, test(s, c2))

	c3, _, _ := newCtx(s, v, []string{"-z", ""}, nil)
	assert.Equal(t, 0, test(s, c3))

	c4, _, _ := newCtx(s, v, []string{"foo", "=", "bar"}, nil)
	assert.Equal(t, 1, test(s, c4))
}

func TestBracketTestRequiresClosingBracket(t *testing.T) {
	s, v := newTestState(t)
	c, _, _ := newCtx(s, v, []string{"1", "-eq", "1"}, nil)
	assert.Equal(t, 2, bracketTest(s, c))

	c2, _, _ := newCtx(s, v, []string{"1", "-eq", "1", "]"}, nil)
	assert.Equal(t, 0, bracketTest(s, c2))
}

func TestAliasAndUnalias(t *testing.T) {
	s, v := newTestState(t)
	c, _, _ := newCtx(s, v, []string{"ll=ls -la"}, nil)
	assert.Equal(t, 0, alias(s, c))
	assert.Equal(t, "ls -la", s.Aliases["ll"])

	c2, _, _ := newCtx(s, v, []string{"ll"}, nil)
	assert.Equal(t, 0, unalias(s, c2))
	_, ok := s.Aliases["ll"]
	assert.False(t, ok)
}

func TestEvalRunsNestedScript(t *testing.T) {
	s, v := newTestState(t)
	s.Registry.RegisterFunc("echo", func(c *ctx.CommandContext) int {
		c.Stdout.Write([]byte("hi\n"))
		return 0
	})
	c, out, _ := newCtx(s, v, []string{"echo", "hi"}, nil)
	assert.Equal(t, 0, eval(s, c))
	assert.Equal(t, "hi\n", out.String())
}

func TestTypeBuiltin(t *testing.T) {
	s, v := newTestState(t)
	c, out, _ := newCtx(s, v, []string{"cd", "exit"}, nil)
	assert.Equal(t, 0, typeBuiltin(s, c))
	assert.Contains(t, out.String(), "cd is a shell builtin")
	assert.Contains(t, out.String(), "exit is a shell keyword")
}

func TestJobsKillWait(t *testing.T) {
	s, v := newTestState(t)
	j := s.Jobs.Add("sleep")
	c, out, _ := newCtx(s, v, nil, nil)
	assert.Equal(t, 0, jobs(s, c))
	assert.Contains(t, out.String(), "running")

	ck, _, _ := newCtx(s, v, []string{"2"}, nil)
	assert.Equal(t, 0, kill(s, ck))
	j.MarkSignalled()

	cw, _, _ := newCtx(s, v, []string{"2"}, nil)
	assert.Equal(t, 0, wait(s, cw))
}
