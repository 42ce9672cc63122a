// Package facade implements the interactive shell front-end (spec.md
// §4.11): prompt, raw-keystroke line editing, history, and best-effort
// TAB completion, layered over shell/interp and the raw-keystroke
// channel already defined by exec/termio.
package facade

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/lifo-sh/lifo-sh/exec/termio"
	"github.com/lifo-sh/lifo-sh/shell/interp"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/vfs"
)

// Terminal is the host collaborator (spec.md §6.2, "consumed, not
// defined here"): it feeds raw keystrokes in and accepts rendered text
// out. A host attaches a real terminal widget or a test double.
type Terminal interface {
	Write(text string)
	OnData(cb func(data string))
	Cols() int
	Rows() int
	Focus()
	Clear()
}

type mode int

const (
	modeLineEdit mode = iota
	modePassthrough
)

// Facade ties one Terminal to one Interp/ShellState, translating raw
// keystrokes into edited lines and dispatched scripts.
type Facade struct {
	Term   Terminal
	Interp *interp.Interp
	State  *state.State
	VFS    *vfs.VFS

	History []string
	histPos int

	line   []rune
	cursor int
	escBuf []byte

	mode     mode
	fgStdin  *termio.Buffer
	cancelFg context.CancelFunc

	done chan struct{}
}

// New builds a Facade. The returned Interp's Stdout/Stderr write
// straight to term; Stdin is swapped to a fresh termio.Buffer for the
// duration of each foreground command.
func New(s *state.State, v *vfs.VFS, term Terminal) *Facade {
	out := &termWriter{term: term}
	i := interp.New(s, v, out, out, nil)
	f := &Facade{Term: term, Interp: i, State: s, VFS: v, done: make(chan struct{})}
	i.SetRawMode = func(bool) {} // facade already hands raw bytes straight through in passthrough mode
	return f
}

type termWriter struct{ term Terminal }

func (w *termWriter) Write(p []byte) (int, error) {
	w.term.Write(string(p))
	return len(p), nil
}

// Start sources the profile/rc files, issues the first prompt, and
// wires the terminal's keystroke callback. Returns immediately; the
// shell runs until a Ctrl+D at an empty line closes Done().
func (f *Facade) Start() {
	f.sourceStartupFiles()
	f.Term.OnData(f.handleData)
	f.prompt()
}

// Done closes once the interactive session has exited (Ctrl+D at an
// empty prompt).
func (f *Facade) Done() <-chan struct{} { return f.done }

func (f *Facade) sourceStartupFiles() {
	for _, p := range []string{"/etc/profile", f.State.Env["HOME"] + "/.bashrc"} {
		src, err := f.VFS.ReadFileString(p)
		if err != nil {
			continue
		}
		noop := interp.New(f.State, f.VFS, &termWriter{term: f.Term}, &termWriter{term: f.Term}, nil)
		noop.Run(src)
	}
}

func (f *Facade) prompt() {
	ps1 := f.State.Env["PS1"]
	if ps1 == "" {
		ps1 = "$ "
	}
	f.line = nil
	f.cursor = 0
	f.mode = modeLineEdit
	f.Term.Write(ps1)
}

func (f *Facade) redraw() {
	ps1 := f.State.Env["PS1"]
	if ps1 == "" {
		ps1 = "$ "
	}
	f.Term.Write("\r\x1b[K" + ps1 + string(f.line))
	if back := len(f.line) - f.cursor; back > 0 {
		f.Term.Write(fmt.Sprintf("\x1b[%dD", back))
	}
}

func (f *Facade) handleData(data string) {
	if f.mode == modePassthrough {
		switch data {
		case "\x04": // Ctrl+D: EOF to the foreground command's stdin
			f.fgStdin.Close()
			return
		case "\x1a": // Ctrl+Z: cancel the foreground command
			if cancel := f.cancelFg; cancel != nil {
				cancel()
				f.Term.Write("\r\n[stopped]\r\n")
			}
			return
		}
		f.fgStdin.Feed([]byte(data))
		return
	}
	for i := 0; i < len(data); i++ {
		b := data[i]
		if len(f.escBuf) > 0 || b == 0x1b {
			f.escBuf = append(f.escBuf, b)
			if done := f.feedEscape(); done {
				f.escBuf = nil
			}
			continue
		}
		f.handleKey(b)
	}
}

// feedEscape accumulates an ANSI escape sequence; returns true once the
// sequence is complete (consumed) or abandoned.
func (f *Facade) feedEscape() bool {
	if len(f.escBuf) == 1 {
		return false // just ESC so far
	}
	if f.escBuf[1] != '[' {
		return true // not a CSI sequence we understand; drop it
	}
	if len(f.escBuf) < 3 {
		return false
	}
	switch f.escBuf[2] {
	case 'A':
		f.historyPrev()
	case 'B':
		f.historyNext()
	case 'C':
		if f.cursor < len(f.line) {
			f.cursor++
			f.Term.Write("\x1b[C")
		}
	case 'D':
		if f.cursor > 0 {
			f.cursor--
			f.Term.Write("\x1b[D")
		}
	}
	return true
}

func (f *Facade) handleKey(b byte) {
	switch b {
	case 0x03: // Ctrl+C
		f.Term.Write("^C\r\n")
		f.prompt()
	case 0x04: // Ctrl+D
		if len(f.line) == 0 {
			close(f.done)
			return
		}
	case 0x1a: // Ctrl+Z
		if f.cancelFg != nil {
			f.cancelFg()
			f.Term.Write("\r\n[stopped]\r\n")
		}
	case '\r', '\n':
		f.submit()
	case 0x7f, 0x08: // backspace/DEL
		if f.cursor > 0 {
			f.line = append(f.line[:f.cursor-1], f.line[f.cursor:]...)
			f.cursor--
			f.redraw()
		}
	case '\t':
		f.complete()
	default:
		r := rune(b)
		f.line = append(f.line[:f.cursor], append([]rune{r}, f.line[f.cursor:]...)...)
		f.cursor++
		f.redraw()
	}
}

func (f *Facade) historyPrev() {
	if len(f.History) == 0 || f.histPos == 0 {
		return
	}
	f.histPos--
	f.line = []rune(f.History[f.histPos])
	f.cursor = len(f.line)
	f.redraw()
}

func (f *Facade) historyNext() {
	if f.histPos >= len(f.History) {
		return
	}
	f.histPos++
	if f.histPos == len(f.History) {
		f.line = nil
	} else {
		f.line = []rune(f.History[f.histPos])
	}
	f.cursor = len(f.line)
	f.redraw()
}

// complete triggers best-effort prefix completion (spec.md §4.11)
// against command names and the cwd's directory entries, ranked with
// fuzzy matching rather than a plain prefix scan.
func (f *Facade) complete() {
	word, wordStart := f.currentWord()
	if word == "" {
		return
	}
	candidates := f.completionCandidates()
	ranked := fuzzy.RankFindFold(word, candidates)
	sort.Sort(ranked)
	if len(ranked) == 0 {
		return
	}
	if len(ranked) == 1 {
		f.replaceWord(wordStart, ranked[0].Target)
		return
	}
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Target
	}
	f.Term.Write("\r\n" + strings.Join(names, "  ") + "\r\n")
	f.redraw()
}

func (f *Facade) currentWord() (string, int) {
	start := f.cursor
	for start > 0 && f.line[start-1] != ' ' {
		start--
	}
	return string(f.line[start:f.cursor]), start
}

func (f *Facade) replaceWord(start int, word string) {
	f.line = append(append(append([]rune{}, f.line[:start]...), []rune(word)...), f.line[f.cursor:]...)
	f.cursor = start + len(word)
	f.redraw()
}

func (f *Facade) completionCandidates() []string {
	var out []string
	for name := range f.State.Builtins {
		out = append(out, name)
	}
	for name := range f.State.Functions {
		out = append(out, name)
	}
	out = append(out, f.State.Registry.List()...)
	if ents, err := f.VFS.Readdir(f.State.Cwd); err == nil {
		for _, e := range ents {
			out = append(out, e.Name)
		}
	}
	return out
}

// submit expands history references, runs the line as a foreground
// script with raw keystrokes forwarded to its stdin, and re-prompts
// once it finishes.
func (f *Facade) submit() {
	raw := string(f.line)
	f.Term.Write("\r\n")
	trimmed := strings.TrimSpace(raw)
	expanded, err := f.expandHistoryRefs(trimmed)
	if trimmed != "" {
		f.History = append(f.History, trimmed)
	}
	f.histPos = len(f.History)

	if err != nil {
		f.Term.Write(err.Error() + "\r\n")
		f.prompt()
		return
	}
	if expanded == "" {
		f.prompt()
		return
	}

	fgCtx, cancel := context.WithCancel(context.Background())
	f.cancelFg = cancel
	f.fgStdin = termio.New()
	f.mode = modePassthrough
	f.Interp.Signal = fgCtx
	f.Interp.Stdin = f.fgStdin

	go func() {
		code := f.Interp.Run(expanded + "\n")
		f.State.LastExitCode = code
		f.fgStdin.Close()
		f.cancelFg = nil
		f.mode = modeLineEdit
		f.prompt()
	}()
}

// expandHistoryRefs rewrites "!!" (last line), "!N" (history[N], one-
// indexed), and "!prefix" (most recent matching entry) tokens.
func (f *Facade) expandHistoryRefs(line string) (string, error) {
	fields := strings.Fields(line)
	for idx, word := range fields {
		if !strings.HasPrefix(word, "!") || word == "!" {
			continue
		}
		ref := word[1:]
		resolved, err := f.resolveHistoryRef(ref)
		if err != nil {
			return "", err
		}
		fields[idx] = resolved
	}
	return strings.Join(fields, " "), nil
}

func (f *Facade) resolveHistoryRef(ref string) (string, error) {
	if ref == "!" {
		if len(f.History) == 0 {
			return "", fmt.Errorf("!!: event not found")
		}
		return f.History[len(f.History)-1], nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(f.History) {
			return "", fmt.Errorf("!%s: event not found", ref)
		}
		return f.History[n-1], nil
	}
	for i := len(f.History) - 1; i >= 0; i-- {
		if strings.HasPrefix(f.History[i], ref) {
			return f.History[i], nil
		}
	}
	return "", fmt.Errorf("!%s: event not found", ref)
}
