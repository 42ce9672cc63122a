package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOSTerminalOnNonTTYSkipsRawMode(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	term := &osTerminal{in: r, out: w}
	assert.Nil(t, term.oldState)
	assert.Equal(t, 80, term.Cols())
	assert.Equal(t, 24, term.Rows())
	term.restore() // no-op, must not panic
}

func TestOSTerminalWriteAndClear(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	term := &osTerminal{in: r, out: w}
	term.Write("hello")
	term.Clear()
	w.Close()

	buf := make([]byte, 64)
	n, _ := r.Read(buf)
	assert.Contains(t, string(buf[:n]), "hello")
}
