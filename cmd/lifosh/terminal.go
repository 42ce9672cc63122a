package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"
)

// osTerminal adapts the real process stdin/stdout to shell/facade.Terminal
// (spec.md §6.2's "consumed, not defined here" collaborator), putting the
// controlling TTY into raw mode for the lifetime of the interactive
// session so the facade sees one byte per keystroke instead of a
// line-buffered read.
type osTerminal struct {
	in       *os.File
	out      *os.File
	oldState *term.State
	cb       func(string)
}

func newOSTerminal() (*osTerminal, error) {
	t := &osTerminal{in: os.Stdin, out: os.Stdout}
	fd := int(t.in.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("lifosh: enabling raw terminal mode: %w", err)
		}
		t.oldState = old
	}
	return t, nil
}

// restore puts the TTY back into its original (cooked) mode. Safe to
// call even when raw mode was never entered (non-TTY stdin).
func (t *osTerminal) restore() {
	if t.oldState != nil {
		_ = term.Restore(int(t.in.Fd()), t.oldState)
	}
}

func (t *osTerminal) Write(text string) { fmt.Fprint(t.out, text) }

func (t *osTerminal) OnData(cb func(string)) { t.cb = cb }

func (t *osTerminal) Cols() int {
	w, _, err := term.GetSize(int(t.in.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func (t *osTerminal) Rows() int {
	_, h, err := term.GetSize(int(t.in.Fd()))
	if err != nil || h <= 0 {
		return 24
	}
	return h
}

func (t *osTerminal) Focus() {}

func (t *osTerminal) Clear() { fmt.Fprint(t.out, "\x1b[2J\x1b[H") }

// pump reads raw bytes from stdin and forwards them to the facade's
// OnData callback until stdin closes or an error occurs.
func (t *osTerminal) pump() {
	r := bufio.NewReader(t.in)
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 && t.cb != nil {
			t.cb(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}
