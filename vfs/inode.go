package vfs

import (
	"github.com/lifo-sh/lifo-sh/internal/invariant"
	"github.com/lifo-sh/lifo-sh/vfs/store"
)

// Kind distinguishes files from directories (spec.md §3 "Inode.kind").
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// ChunkThreshold is the inline-vs-chunked boundary (spec.md §3, §9: "1 MiB").
const ChunkThreshold = 1 << 20

// Default permission bits (spec.md §3: "defaults 0o644 / 0o755").
const (
	DefaultFileMode = 0o644
	DefaultDirMode  = 0o755
)

// inode is the in-memory representation of one file or directory
// (spec.md §3 "Inode").
type inode struct {
	kind Kind
	name string
	mode uint32

	ctime int64 // ms epoch
	mtime int64 // ms epoch

	// File fields: exactly one of inlineData/chunks is populated.
	inlineData []byte
	chunks     []store.ChunkRef
	storedSize int64

	mime string

	// Directory field.
	children map[string]*inode
}

func newFileInode(name string, now int64) *inode {
	return &inode{kind: KindFile, name: name, mode: DefaultFileMode, ctime: now, mtime: now}
}

func newDirInode(name string, now int64) *inode {
	return &inode{kind: KindDirectory, name: name, mode: DefaultDirMode, ctime: now, mtime: now, children: make(map[string]*inode)}
}

// checkInvariants asserts the file-node exclusivity invariant from spec.md §3.
func (n *inode) checkInvariants() {
	if n.kind != KindFile {
		return
	}
	hasInline := n.inlineData != nil
	hasChunks := n.chunks != nil
	invariant.Invariant(hasInline != hasChunks || (!hasInline && !hasChunks),
		"file inode %q must have exactly one of inline_data/chunks populated", n.name)
}

// Stat is the metadata snapshot returned by VFS.Stat (spec.md §4.2).
type Stat struct {
	Kind  Kind
	Size  int64
	Ctime int64
	Mtime int64
	Mode  uint32
	Mime  string
}

// Dirent is one entry returned by VFS.Readdir (spec.md §4.2).
type Dirent struct {
	Name string
	Kind Kind
}

func (n *inode) stat() Stat {
	s := Stat{Kind: n.kind, Ctime: n.ctime, Mtime: n.mtime, Mode: n.mode, Mime: n.mime}
	switch n.kind {
	case KindDirectory:
		s.Size = int64(len(n.children))
	case KindFile:
		if n.chunks != nil {
			s.Size = n.storedSize
		} else {
			s.Size = int64(len(n.inlineData))
		}
	}
	return s
}
