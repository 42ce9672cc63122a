package facade

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/vfs"
)

type fakeTerm struct {
	mu  sync.Mutex
	buf strings.Builder
	cb  func(string)
}

func (t *fakeTerm) Write(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.WriteString(text)
}
func (t *fakeTerm) OnData(cb func(string)) { t.cb = cb }
func (t *fakeTerm) Cols() int              { return 80 }
func (t *fakeTerm) Rows() int              { return 24 }
func (t *fakeTerm) Focus()                 {}
func (t *fakeTerm) Clear()                 { t.mu.Lock(); t.buf.Reset(); t.mu.Unlock() }

func (t *fakeTerm) output() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

func (t *fakeTerm) feed(s string) { t.cb(s) }

func newTestFacade(t *testing.T) (*Facade, *fakeTerm) {
	t.Helper()
	s := state.New()
	v := vfs.New(nil, nil)
	s.Env["HOME"] = "/home/user"
	term := &fakeTerm{}
	f := New(s, v, term)
	return f, term
}

func waitFor(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestStartIssuesPrompt(t *testing.T) {
	f, term := newTestFacade(t)
	f.Start()
	assert.Equal(t, "$ ", term.output())
}

func TestTypingEchoesCharacters(t *testing.T) {
	f, term := newTestFacade(t)
	f.Start()
	term.feed("echo")
	assert.Contains(t, term.output(), "$ echo")
}

func TestSubmitRunsCommand(t *testing.T) {
	f, term := newTestFacade(t)
	f.State.Registry.RegisterFunc("echo", func(c *ctx.CommandContext) int {
		c.Stdout.Write([]byte(strings.Join(c.Args, " ") + "\n"))
		return 0
	})
	f.Start()
	term.feed("echo hi\r")
	waitFor(t, func() bool { return strings.Contains(term.output(), "hi\n") })
	waitFor(t, func() bool { return strings.Count(term.output(), "$ ") >= 2 })
}

func TestBackspaceRemovesLastChar(t *testing.T) {
	f, term := newTestFacade(t)
	f.Start()
	term.feed("ab")
	term.feed(string([]byte{0x7f}))
	assert.Equal(t, []rune("a"), f.line)
	_ = term
}

func TestHistoryBangBang(t *testing.T) {
	f, _ := newTestFacade(t)
	f.History = []string{"echo one", "echo two"}
	out, err := f.expandHistoryRefs("!!")
	require.NoError(t, err)
	assert.Equal(t, "echo two", out)
}

func TestHistoryByIndex(t *testing.T) {
	f, _ := newTestFacade(t)
	f.History = []string{"echo one", "echo two"}
	out, err := f.expandHistoryRefs("!1")
	require.NoError(t, err)
	assert.Equal(t, "echo one", out)
}

func TestHistoryByPrefix(t *testing.T) {
	f, _ := newTestFacade(t)
	f.History = []string{"echo one", "ls /tmp"}
	out, err := f.expandHistoryRefs("!echo")
	require.NoError(t, err)
	assert.Equal(t, "echo one", out)
}

func TestHistoryRefNotFound(t *testing.T) {
	f, _ := newTestFacade(t)
	_, err := f.expandHistoryRefs("!nope")
	require.Error(t, err)
}

func TestCtrlCDiscardsLineAndReprompts(t *testing.T) {
	f, term := newTestFacade(t)
	f.Start()
	term.feed("partial")
	term.feed(string([]byte{0x03}))
	assert.Equal(t, 0, len(f.line))
	assert.Contains(t, term.output(), "^C")
}

func TestCtrlDOnEmptyLineClosesDone(t *testing.T) {
	f, term := newTestFacade(t)
	f.Start()
	term.feed(string([]byte{0x04}))
	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("Done never closed")
	}
}

func TestCompletionReplacesUniqueMatch(t *testing.T) {
	f, term := newTestFacade(t)
	f.State.Registry.RegisterFunc("gloobcommand", func(c *ctx.CommandContext) int { return 0 })
	f.Start()
	term.feed("gloob")
	term.feed("\t")
	assert.Equal(t, "gloobcommand", string(f.line))
}
