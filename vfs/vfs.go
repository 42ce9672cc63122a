// Package vfs implements the in-memory, mount-aware virtual filesystem
// described in spec.md §3/§4.2: a tree of inodes with path resolution,
// provider dispatch for mounted subtrees, and change-event pub/sub, backed
// by the content-addressed chunk store in vfs/store for large files.
package vfs

import (
	"path"
	"strings"

	"github.com/lifo-sh/lifo-sh/vfs/store"
)

// VFS is the hierarchical, mount-aware in-memory filesystem. It is not
// safe for concurrent mutation: spec.md §5 places all VFS mutation on a
// single logical thread of control (the interpreter's cooperative
// scheduler); callers coordinate that externally.
type VFS struct {
	root   *inode
	mounts mountTable
	hub    watchHub
	blobs  *store.Store
	clock  func() int64
}

// New creates an empty VFS rooted at "/", using store for chunked file
// bodies. clock supplies millisecond-epoch timestamps for ctime/mtime; pass
// nil to use a monotonically increasing counter (deterministic, handy in
// tests and hosts without a wall clock dependency).
func New(blobs *store.Store, clock func() int64) *VFS {
	if blobs == nil {
		blobs = store.NewDefault()
	}
	v := &VFS{blobs: blobs}
	if clock == nil {
		v.clock = v.monotonicClock()
	} else {
		v.clock = clock
	}
	v.root = newDirInode("", v.clock())
	return v
}

func (v *VFS) monotonicClock() func() int64 {
	var n int64
	return func() int64 {
		n++
		return n
	}
}

func (v *VFS) now() int64 { return v.clock() }

// Resolve normalises path against base, per spec.md §4.2
// ("all operations treat paths as absolute after normalisation via
// resolve(\"/\", path)").
func Resolve(base, p string) string {
	if p == "" {
		p = "."
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join(base, p)
	}
	return path.Clean(p)
}

func segments(absPath string) []string {
	if absPath == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(absPath, "/"), "/")
	out := parts[:0:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Watch registers a global listener (spec.md §4.2).
func (v *VFS) Watch(fn func(WatchEvent)) Unsubscribe { return v.hub.Watch(fn) }

// WatchPath registers a listener scoped to p (spec.md §4.2).
func (v *VFS) WatchPath(p string, fn func(WatchEvent)) Unsubscribe {
	return v.hub.WatchPath(Resolve("/", p), fn)
}

// Mount attaches provider at path (spec.md §4.2 "Mount protocol").
func (v *VFS) Mount(mountPath string, provider MountProvider) {
	v.mounts.add(Mount{Path: Resolve("/", mountPath), Provider: provider})
}

// Unmount removes the mount at path, if any.
func (v *VFS) Unmount(mountPath string) {
	v.mounts.remove(Resolve("/", mountPath))
}

// walk resolves absPath to the inode that owns it, erroring ENOENT/ENOTDIR
// along the way as appropriate. It never crosses a mount boundary: callers
// must check mounts.resolve first.
func (v *VFS) walk(op, absPath string) (*inode, error) {
	n := v.root
	segs := segments(absPath)
	for i, s := range segs {
		if n.kind != KindDirectory {
			return nil, newErr(op, absPath, ENOTDIR, "not a directory")
		}
		child, ok := n.children[s]
		if !ok {
			return nil, newErr(op, absPath, ENOENT, "no such file or directory")
		}
		if i == len(segs)-1 {
			return child, nil
		}
		n = child
	}
	return n, nil
}

// walkParent resolves the parent directory of absPath, returning the
// parent inode and the final segment name.
func (v *VFS) walkParent(op, absPath string) (*inode, string, error) {
	segs := segments(absPath)
	if len(segs) == 0 {
		return nil, "", newErr(op, absPath, EINVAL, "path has no parent")
	}
	parentPath := Resolve("/", strings.Join(segs[:len(segs)-1], "/"))
	parent, err := v.walk(op, parentPath)
	if err != nil {
		return nil, "", err
	}
	if parent.kind != KindDirectory {
		return nil, "", newErr(op, absPath, ENOTDIR, "not a directory")
	}
	return parent, segs[len(segs)-1], nil
}

// Mkdir creates a directory at p; recursive=true creates missing parents
// silently (spec.md §4.2 "mkdir").
func (v *VFS) Mkdir(p string, recursive bool) error {
	absPath := Resolve("/", p)
	if m, sub, ok := v.mounts.resolve(absPath); ok {
		return mountMkdir(m, sub, recursive)
	}
	if absPath == "/" {
		return newErr("mkdir", absPath, EEXIST, "file exists")
	}
	segs := segments(absPath)
	n := v.root
	built := ""
	for i, s := range segs {
		built = Resolve("/", built+"/"+s)
		child, ok := n.children[s]
		if !ok {
			if i < len(segs)-1 && !recursive {
				return newErr("mkdir", absPath, ENOENT, "no such file or directory")
			}
			if i < len(segs)-1 || recursive || i == len(segs)-1 {
				nd := newDirInode(s, v.now())
				n.children[s] = nd
				v.hub.notify(WatchEvent{Kind: EventCreate, Path: built, FileType: KindDirectory})
				n = nd
				continue
			}
		}
		if i == len(segs)-1 {
			return newErr("mkdir", absPath, EEXIST, "file exists")
		}
		if child.kind != KindDirectory {
			return newErr("mkdir", absPath, ENOTDIR, "not a directory")
		}
		n = child
	}
	return nil
}

// Rmdir removes an empty directory (spec.md §4.2 "rmdir").
func (v *VFS) Rmdir(p string) error {
	absPath := Resolve("/", p)
	if m, sub, ok := v.mounts.resolve(absPath); ok {
		return mountRmdir(m, sub)
	}
	n, err := v.walk("rmdir", absPath)
	if err != nil {
		return err
	}
	if n.kind != KindDirectory {
		return newErr("rmdir", absPath, ENOTDIR, "not a directory")
	}
	if len(n.children) > 0 {
		return newErr("rmdir", absPath, ENOTEMPTY, "directory not empty")
	}
	parent, name, err := v.walkParent("rmdir", absPath)
	if err != nil {
		return err
	}
	delete(parent.children, name)
	v.hub.notify(WatchEvent{Kind: EventDelete, Path: absPath, FileType: KindDirectory})
	return nil
}

// RmdirRecursive removes a directory and all descendants, releasing
// chunks and emitting one delete event per removed node in child-first
// order (spec.md §4.2).
func (v *VFS) RmdirRecursive(p string) error {
	absPath := Resolve("/", p)
	n, err := v.walk("rmdir_recursive", absPath)
	if err != nil {
		return err
	}
	if n.kind != KindDirectory {
		return newErr("rmdir_recursive", absPath, ENOTDIR, "not a directory")
	}
	v.removeTree(n, absPath)
	if absPath != "/" {
		parent, name, perr := v.walkParent("rmdir_recursive", absPath)
		if perr != nil {
			return perr
		}
		delete(parent.children, name)
	}
	v.hub.notify(WatchEvent{Kind: EventDelete, Path: absPath, FileType: KindDirectory})
	return nil
}

func (v *VFS) removeTree(n *inode, absPath string) {
	if n.kind == KindDirectory {
		for name, child := range n.children {
			childPath := Resolve("/", absPath+"/"+name)
			v.removeTree(child, childPath)
			if child.kind == KindDirectory {
				v.hub.notify(WatchEvent{Kind: EventDelete, Path: childPath, FileType: KindDirectory})
			}
		}
		return
	}
	if n.chunks != nil {
		v.blobs.DeleteChunked(n.chunks)
	}
	v.hub.notify(WatchEvent{Kind: EventDelete, Path: absPath, FileType: KindFile})
}

// WriteFile creates or replaces a file, promoting to chunked storage if
// size >= ChunkThreshold (spec.md §4.2 "write_file").
func (v *VFS) WriteFile(p string, data []byte) error {
	absPath := Resolve("/", p)
	if m, sub, ok := v.mounts.resolve(absPath); ok {
		return mountWriteFile(m, sub, data)
	}
	parent, name, err := v.walkParent("write_file", absPath)
	if err != nil {
		return err
	}
	existing, hadExisting := parent.children[name]
	if hadExisting && existing.kind == KindDirectory {
		return newErr("write_file", absPath, EISDIR, "is a directory")
	}
	n := existing
	isNew := !hadExisting
	if isNew {
		n = newFileInode(name, v.now())
		parent.children[name] = n
	} else if n.chunks != nil {
		v.blobs.DeleteChunked(n.chunks)
	}
	v.applyContent(n, data)
	n.mtime = v.now()
	parent.mtime = v.now()
	kind := EventModify
	if isNew {
		kind = EventCreate
	}
	v.hub.notify(WatchEvent{Kind: kind, Path: absPath, FileType: KindFile})
	return nil
}

// applyContent stores data inline or chunked per the promotion rule
// (spec.md §4.2 "Chunked storage promotion rule").
func (v *VFS) applyContent(n *inode, data []byte) {
	if int64(len(data)) >= ChunkThreshold {
		n.chunks = v.blobs.StoreChunked(data)
		n.storedSize = int64(len(data))
		n.inlineData = nil
	} else {
		cp := make([]byte, len(data))
		copy(cp, data)
		n.inlineData = cp
		n.chunks = nil
		n.storedSize = 0
	}
	n.checkInvariants()
}

// AppendFile appends data, re-chunking as needed (spec.md §4.2 "append_file").
func (v *VFS) AppendFile(p string, data []byte) error {
	absPath := Resolve("/", p)
	n, err := v.walk("append_file", absPath)
	if err != nil {
		if !IsErrno(err, ENOENT) {
			return err
		}
		return v.WriteFile(p, data)
	}
	if n.kind != KindFile {
		return newErr("append_file", absPath, EISDIR, "is a directory")
	}
	var current []byte
	if n.chunks != nil {
		current, _ = v.blobs.LoadChunked(n.chunks)
		v.blobs.DeleteChunked(n.chunks)
	} else {
		current = n.inlineData
	}
	combined := append(append([]byte{}, current...), data...)
	v.applyContent(n, combined)
	n.mtime = v.now()
	v.hub.notify(WatchEvent{Kind: EventModify, Path: absPath, FileType: KindFile})
	return nil
}

// TruncatedFileError is returned by ReadFile when a chunked file's
// backing chunks were evicted by the content store's LRU policy. This is
// a deliberate divergence from the source behaviour noted in spec.md §9
// open questions: rather than silently returning an empty buffer, lifo-sh
// surfaces a distinct error so callers can report a truncated-file
// condition instead of treating an evicted file as empty.
type TruncatedFileError struct {
	Path string
}

func (e *TruncatedFileError) Error() string {
	return "truncated file (evicted chunks): " + e.Path
}

// ReadFile returns a file's full content, reassembled if chunked
// (spec.md §4.2 "read_file").
func (v *VFS) ReadFile(p string) ([]byte, error) {
	absPath := Resolve("/", p)
	if m, sub, ok := v.mounts.resolve(absPath); ok {
		return m.Provider.ReadFile(sub)
	}
	n, err := v.walk("read_file", absPath)
	if err != nil {
		return nil, err
	}
	if n.kind != KindFile {
		return nil, newErr("read_file", absPath, EISDIR, "is a directory")
	}
	if n.chunks != nil {
		data, ok := v.blobs.LoadChunked(n.chunks)
		if !ok {
			return nil, &TruncatedFileError{Path: absPath}
		}
		return data, nil
	}
	cp := make([]byte, len(n.inlineData))
	copy(cp, n.inlineData)
	return cp, nil
}

// ReadFileString reads a file and decodes it as UTF-8 (spec.md §4.2).
func (v *VFS) ReadFileString(p string) (string, error) {
	data, err := v.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Stat returns file/directory metadata (spec.md §4.2 "stat").
func (v *VFS) Stat(p string) (Stat, error) {
	absPath := Resolve("/", p)
	if m, sub, ok := v.mounts.resolve(absPath); ok {
		return m.Provider.Stat(sub)
	}
	if absPath == "/" {
		return v.root.stat(), nil
	}
	n, err := v.walk("stat", absPath)
	if err != nil {
		return Stat{}, err
	}
	return n.stat(), nil
}

// Unlink removes a file and releases its chunks (spec.md §4.2 "unlink").
func (v *VFS) Unlink(p string) error {
	absPath := Resolve("/", p)
	if m, sub, ok := v.mounts.resolve(absPath); ok {
		return mountUnlink(m, sub)
	}
	parent, name, err := v.walkParent("unlink", absPath)
	if err != nil {
		return err
	}
	n, ok := parent.children[name]
	if !ok {
		return newErr("unlink", absPath, ENOENT, "no such file or directory")
	}
	if n.kind != KindFile {
		return newErr("unlink", absPath, EISDIR, "is a directory")
	}
	if n.chunks != nil {
		v.blobs.DeleteChunked(n.chunks)
	}
	delete(parent.children, name)
	v.hub.notify(WatchEvent{Kind: EventDelete, Path: absPath, FileType: KindFile})
	return nil
}

// Rename moves a to b, within the tree or within one mount; disallowed
// across mount boundaries (spec.md §4.2 "rename").
func (v *VFS) Rename(a, b string) error {
	absA := Resolve("/", a)
	absB := Resolve("/", b)
	mA, subA, okA := v.mounts.resolve(absA)
	mB, subB, okB := v.mounts.resolve(absB)
	if okA || okB {
		if !okA || !okB || mA.Path != mB.Path {
			return newErr("rename", absA, EINVAL, "cannot rename across mount boundary")
		}
		wc, ok := mA.Provider.(WriteCapable)
		if !ok {
			return readOnlyErr("rename", absA)
		}
		return wc.Rename(subA, subB)
	}
	srcParent, srcName, err := v.walkParent("rename", absA)
	if err != nil {
		return err
	}
	n, ok := srcParent.children[srcName]
	if !ok {
		return newErr("rename", absA, ENOENT, "no such file or directory")
	}
	dstParent, dstName, err := v.walkParent("rename", absB)
	if err != nil {
		return err
	}
	delete(srcParent.children, srcName)
	n.name = dstName
	n.mtime = v.now()
	dstParent.children[dstName] = n
	v.hub.notify(WatchEvent{Kind: EventRename, Path: absB, OldPath: absA, FileType: n.kind})
	return nil
}

// CopyFile reads a and writes its bytes to b; works across mounts
// (spec.md §4.2 "copy_file").
func (v *VFS) CopyFile(a, b string) error {
	data, err := v.ReadFile(a)
	if err != nil {
		return err
	}
	return v.WriteFile(b, data)
}

// Touch updates mtime, creating an empty file if missing (spec.md §4.2 "touch").
func (v *VFS) Touch(p string) error {
	absPath := Resolve("/", p)
	n, err := v.walk("touch", absPath)
	if err != nil {
		if IsErrno(err, ENOENT) {
			return v.WriteFile(p, nil)
		}
		return err
	}
	if n.kind == KindFile {
		n.mtime = v.now()
		v.hub.notify(WatchEvent{Kind: EventModify, Path: absPath, FileType: KindFile})
	} else {
		n.mtime = v.now()
	}
	return nil
}

// Readdir lists a directory's entries, injecting synthetic entries for
// any mount whose next path segment lies under p (spec.md §4.2 "readdir").
func (v *VFS) Readdir(p string) ([]Dirent, error) {
	absPath := Resolve("/", p)
	if m, sub, ok := v.mounts.resolve(absPath); ok {
		ents, err := m.Provider.Readdir(sub)
		if err != nil {
			return nil, err
		}
		return ents, nil
	}
	n, err := v.walk("readdir", absPath)
	if err != nil {
		return nil, err
	}
	if n.kind != KindDirectory {
		return nil, newErr("readdir", absPath, ENOTDIR, "not a directory")
	}
	seen := map[string]bool{}
	var out []Dirent
	for name, child := range n.children {
		out = append(out, Dirent{Name: name, Kind: child.kind})
		seen[name] = true
	}
	for _, seg := range v.mounts.childMountSegments(absPath) {
		if seen[seg] {
			continue
		}
		out = append(out, Dirent{Name: seg, Kind: KindDirectory})
	}
	return out, nil
}

// DirentStat pairs a Dirent with its Stat, as returned by ReaddirStat.
type DirentStat struct {
	Dirent
	Stat Stat
}

// ReaddirStat fuses Readdir with Stat for every entry (spec.md §4.2 "readdir_stat").
func (v *VFS) ReaddirStat(p string) ([]DirentStat, error) {
	ents, err := v.Readdir(p)
	if err != nil {
		return nil, err
	}
	absPath := Resolve("/", p)
	out := make([]DirentStat, 0, len(ents))
	for _, e := range ents {
		st, serr := v.Stat(Resolve("/", absPath+"/"+e.Name))
		if serr != nil {
			st = Stat{Kind: e.Kind}
		}
		out = append(out, DirentStat{Dirent: e, Stat: st})
	}
	return out, nil
}

// Exists reports whether p exists, swallowing all errors (spec.md §4.2 "exists").
func (v *VFS) Exists(p string) bool {
	absPath := Resolve("/", p)
	if m, sub, ok := v.mounts.resolve(absPath); ok {
		return m.Provider.Exists(sub)
	}
	_, err := v.walk("exists", absPath)
	return err == nil
}

// SetMime sets the cached content-type hint for a file (spec.md §3 "mime").
func (v *VFS) SetMime(p, mime string) error {
	absPath := Resolve("/", p)
	n, err := v.walk("set_mime", absPath)
	if err != nil {
		return err
	}
	if n.kind != KindFile {
		return newErr("set_mime", absPath, EISDIR, "is a directory")
	}
	n.mime = mime
	return nil
}

