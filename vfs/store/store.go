// Package store implements the content-addressed, deduplicating,
// LRU-bounded blob store that backs the VFS's chunked file storage
// (spec.md §3 "ContentStore Entry", §4.1 "Content store").
package store

import (
	"github.com/lifo-sh/lifo-sh/internal/invariant"
)

// DefaultChunkSize is the chunk granularity used by StoreChunked/LoadChunked
// (spec.md §4.1: "default 256 KiB; final chunk may be shorter").
const DefaultChunkSize = 256 * 1024

// DefaultBudget is the default total-size budget for the store
// (spec.md §3: "bounded by a configured budget (default 256 MiB)").
const DefaultBudget = 256 * 1024 * 1024

// ChunkRef identifies one chunk of a chunked file (spec.md §3 "ChunkRef").
type ChunkRef struct {
	Hash string
	Size int64
}

type entry struct {
	data         []byte
	lastAccessed uint64
}

// Store is a deduplicating, LRU-bounded, content-addressed byte store.
// All operations are safe to treat as synchronous under the VFS's
// single-threaded discipline (spec.md §5); Store itself adds no locking
// because callers never share it across concurrent mutators.
type Store struct {
	budget  int64 // 0 means unbounded
	size    int64
	counter uint64
	entries map[string]*entry
}

// New creates a Store with the given byte budget. A budget of 0 means
// unbounded (spec.md §4.1: "zero or unset means unbounded").
func New(budget int64) *Store {
	return &Store{
		budget:  budget,
		entries: make(map[string]*entry),
	}
}

// NewDefault creates a Store with DefaultBudget.
func NewDefault() *Store {
	return New(DefaultBudget)
}

// Count returns the number of distinct entries currently stored.
func (s *Store) Count() int {
	return len(s.entries)
}

// Size returns the total size in bytes of all stored entries.
func (s *Store) Size() int64 {
	return s.size
}

// Put stores data and returns its content hash. Duplicate puts of
// identical bytes return the same hash without growing storage
// (spec.md §4.1, §8 invariant 2).
func (s *Store) Put(data []byte) string {
	h := Hash(data)
	s.counter++
	if e, ok := s.entries[h]; ok {
		e.lastAccessed = s.counter
		return h
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.entries[h] = &entry{data: cp, lastAccessed: s.counter}
	s.size += int64(len(cp))
	s.evict()
	return h
}

// Get returns a defensive copy of the bytes stored under hash, refreshing
// its access timestamp, or (nil, false) if absent.
func (s *Store) Get(hash string) ([]byte, bool) {
	e, ok := s.entries[hash]
	if !ok {
		return nil, false
	}
	s.counter++
	e.lastAccessed = s.counter
	cp := make([]byte, len(e.data))
	copy(cp, e.data)
	return cp, true
}

// Has reports whether hash is present in the store, without affecting LRU order.
func (s *Store) Has(hash string) bool {
	_, ok := s.entries[hash]
	return ok
}

// Delete removes hash from the store, if present.
func (s *Store) Delete(hash string) {
	e, ok := s.entries[hash]
	if !ok {
		return
	}
	s.size -= int64(len(e.data))
	delete(s.entries, hash)
}

// evict removes entries in ascending last-accessed order until the store
// is back under budget (spec.md §4.1 LRU policy, §8 invariant 3).
func (s *Store) evict() {
	if s.budget <= 0 {
		return
	}
	for s.size > s.budget && len(s.entries) > 0 {
		var oldestHash string
		var oldestAccess uint64
		first := true
		for h, e := range s.entries {
			if first || e.lastAccessed < oldestAccess {
				oldestHash = h
				oldestAccess = e.lastAccessed
				first = false
			}
		}
		s.Delete(oldestHash)
	}
}

// StoreChunked splits data into DefaultChunkSize chunks and stores each
// independently, returning the ordered list of ChunkRefs. Identical chunks
// dedup naturally through Put (spec.md §4.1).
func (s *Store) StoreChunked(data []byte) []ChunkRef {
	if len(data) == 0 {
		return nil
	}
	var refs []ChunkRef
	for off := 0; off < len(data); off += DefaultChunkSize {
		end := off + DefaultChunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]
		h := s.Put(chunk)
		refs = append(refs, ChunkRef{Hash: h, Size: int64(len(chunk))})
	}
	invariant.Postcondition(len(refs) > 0, "StoreChunked must produce at least one chunk for non-empty data")
	return refs
}

// LoadChunked concatenates the bytes referenced by refs, or returns
// (nil, false) if any referenced chunk has been evicted (spec.md §4.1:
// "returns none if any referenced chunk has been evicted").
func (s *Store) LoadChunked(refs []ChunkRef) ([]byte, bool) {
	total := int64(0)
	for _, r := range refs {
		total += r.Size
	}
	out := make([]byte, 0, total)
	for _, r := range refs {
		data, ok := s.Get(r.Hash)
		if !ok {
			return nil, false
		}
		out = append(out, data...)
	}
	return out, true
}

// DeleteChunked deletes every chunk referenced by refs.
func (s *Store) DeleteChunked(refs []ChunkRef) {
	for _, r := range refs {
		s.Delete(r.Hash)
	}
}
