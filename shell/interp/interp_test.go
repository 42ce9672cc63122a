package interp

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/vfs"
)

func newTestInterp() (*Interp, *bytes.Buffer, *bytes.Buffer) {
	s := state.New()
	v := vfs.New(nil, nil)
	var out, errb bytes.Buffer
	return New(s, v, &out, &errb, nil), &out, &errb
}

func registerEcho(s *state.State) {
	s.Registry.RegisterFunc("echo", func(c *ctx.CommandContext) int {
		for i, a := range c.Args {
			if i > 0 {
				c.Stdout.Write([]byte(" "))
			}
			c.Stdout.Write([]byte(a))
		}
		c.Stdout.Write([]byte("\n"))
		return 0
	})
}

func TestRunSimpleCommand(t *testing.T) {
	i, out, _ := newTestInterp()
	registerEcho(i.State)
	code := i.Run("echo hi there\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "hi there\n", out.String())
}

func TestRunCommandNotFound(t *testing.T) {
	i, _, errb := newTestInterp()
	code := i.Run("nonexistent-binary\n")
	assert.Equal(t, 127, code)
	assert.Contains(t, errb.String(), "command not found")
}

func TestRunAndOrShortCircuit(t *testing.T) {
	i, _, _ := newTestInterp()
	i.State.Registry.RegisterFunc("true", func(c *ctx.CommandContext) int { return 0 })
	i.State.Registry.RegisterFunc("false", func(c *ctx.CommandContext) int { return 1 })
	registerEcho(i.State)
	out := &bytes.Buffer{}
	i.Stdout = out
	code := i.Run("true && echo yes || echo no\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "yes\n", out.String())

	out.Reset()
	code = i.Run("false && echo yes || echo no\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "no\n", out.String())
}

func TestRunIfElse(t *testing.T) {
	i, out, _ := newTestInterp()
	i.State.Registry.RegisterFunc("true", func(c *ctx.CommandContext) int { return 0 })
	registerEcho(i.State)
	code := i.Run("if true; then echo yes; else echo no; fi\n")
	require.Equal(t, 0, code)
	assert.Equal(t, "yes\n", out.String())
}

func TestRunForLoop(t *testing.T) {
	i, out, _ := newTestInterp()
	registerEcho(i.State)
	code := i.Run("for x in a b c; do echo $x; done\n")
	require.Equal(t, 0, code)
	assert.Equal(t, "a\nb\nc\n", out.String())
}

func TestRunWhileLoopWithBreak(t *testing.T) {
	i, out, _ := newTestInterp()
	registerEcho(i.State)
	i.State.Registry.RegisterFunc("true", func(c *ctx.CommandContext) int { return 0 })
	i.State.Env["N"] = "0"
	src := `
while true; do
  N=$((N + 1))
  echo $N
  if [ "$N" = "3" ]; then
    break
  fi
done
`
	i.State.Builtins["["] = func(s *state.State, c *ctx.CommandContext) int {
		if len(c.Args) >= 3 && c.Args[0] == c.Args[2] {
			return 0
		}
		return 1
	}
	code := i.Run(src)
	require.Equal(t, 0, code)
	assert.Equal(t, "1\n2\n3\n", out.String())
}

func TestRunFunctionDefAndCall(t *testing.T) {
	i, out, _ := newTestInterp()
	registerEcho(i.State)
	code := i.Run("greet() { echo hello $1; }\ngreet world\n")
	require.Equal(t, 0, code)
	assert.Equal(t, "hello world\n", out.String())
}

func TestRunCaseMatch(t *testing.T) {
	i, out, _ := newTestInterp()
	registerEcho(i.State)
	code := i.Run("case hello in h*) echo matched ;; *) echo nomatch ;; esac\n")
	require.Equal(t, 0, code)
	assert.Equal(t, "matched\n", out.String())
}

func TestRunPipeline(t *testing.T) {
	i, out, _ := newTestInterp()
	i.State.Registry.RegisterFunc("produce", func(c *ctx.CommandContext) int {
		c.Stdout.Write([]byte("a\nb\nc\n"))
		return 0
	})
	i.State.Registry.RegisterFunc("countlines", func(c *ctx.CommandContext) int {
		data := c.Stdin.ReadAll()
		n := bytes.Count(data, []byte("\n"))
		c.Stdout.Write([]byte{byte('0' + n)})
		return 0
	})
	code := i.Run("produce | countlines\n")
	require.Equal(t, 0, code)
	assert.Equal(t, "3", out.String())
}

func TestRunRedirectOutWritesToVFS(t *testing.T) {
	i, _, _ := newTestInterp()
	registerEcho(i.State)
	code := i.Run("echo hi > /out.txt\n")
	require.Equal(t, 0, code)
	content, err := i.VFS.ReadFileString("/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", content)
}

func TestRunHeredocFeedsStdin(t *testing.T) {
	i, _, _ := newTestInterp()
	i.State.Registry.RegisterFunc("cat", func(c *ctx.CommandContext) int {
		c.Stdout.Write(c.Stdin.ReadAll())
		return 0
	})
	out := &bytes.Buffer{}
	i.Stdout = out
	code := i.Run("cat <<EOF\nhello\nworld\nEOF\n")
	require.Equal(t, 0, code)
	assert.Equal(t, "hello\nworld\n", out.String())
}

func TestRunBackgroundJobReturnsImmediately(t *testing.T) {
	i, _, _ := newTestInterp()
	i.State.Registry.RegisterFunc("slow", func(c *ctx.CommandContext) int {
		time.Sleep(20 * time.Millisecond)
		return 0
	})
	code := i.Run("slow &\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, 2, i.State.LastBgPID)
}

func TestRunCommandSubstitution(t *testing.T) {
	i, out, _ := newTestInterp()
	i.State.Registry.RegisterFunc("whoami", func(c *ctx.CommandContext) int {
		c.Stdout.Write([]byte("root\n"))
		return 0
	})
	registerEcho(i.State)
	code := i.Run("echo user:$(whoami)\n")
	require.Equal(t, 0, code)
	assert.Equal(t, "user:root\n", out.String())
}

func TestRunAssignmentOnlyMutatesState(t *testing.T) {
	i, _, _ := newTestInterp()
	code := i.Run("FOO=bar\n")
	require.Equal(t, 0, code)
	assert.Equal(t, "bar", i.State.Env["FOO"])
}
