// Package termio implements the async terminal-stdin channel described in
// spec.md §4.6: a byte stream fed by the host's raw key reader and
// consumed by at most one reader at a time.
package termio

import "sync"

// Buffer is the terminal stdin channel. The zero value is not usable;
// call New.
type Buffer struct {
	mu     sync.Mutex
	queue  [][]byte
	closed bool
	notify chan struct{}
}

// New creates an open, empty Buffer.
func New() *Buffer {
	return &Buffer{notify: make(chan struct{}, 1)}
}

func (b *Buffer) signal() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Feed appends raw key data for a future Read. No-op once closed
// (spec.md §4.6 "feed(data) is no-op if closed").
func (b *Buffer) Feed(data []byte) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b.queue = append(b.queue, cp)
	b.mu.Unlock()
	b.signal()
}

// Read returns the next buffered chunk immediately, or suspends until
// data arrives or Close is called, in which case it returns (nil, false).
// Only one concurrent Read is permitted (spec.md §4.6).
func (b *Buffer) Read() ([]byte, bool) {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			chunk := b.queue[0]
			b.queue = b.queue[1:]
			b.mu.Unlock()
			return chunk, true
		}
		if b.closed {
			b.mu.Unlock()
			return nil, false
		}
		b.mu.Unlock()
		<-b.notify
	}
}

// ReadAll accumulates buffered chunks until Close (spec.md §4.6).
func (b *Buffer) ReadAll() []byte {
	var out []byte
	for {
		chunk, ok := b.Read()
		if !ok {
			return out
		}
		out = append(out, chunk...)
	}
}

// Close resolves at most one pending Read with ok=false; subsequent Reads
// return (nil, false) immediately (spec.md §4.6). Idempotent.
func (b *Buffer) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()
	b.signal()
}
