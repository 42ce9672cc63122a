package vfs

import "sort"

// MountProvider is the capability interface a mounted subtree must
// implement (spec.md §6.3). Write operations are optional: a provider
// supports them by also implementing WriteCapable; for one that does
// not, the VFS reports EINVAL "read-only virtual filesystem" to the caller.
type MountProvider interface {
	ReadFile(subpath string) ([]byte, error)
	Exists(subpath string) bool
	Stat(subpath string) (Stat, error)
	Readdir(subpath string) ([]Dirent, error)
}

// WriteCapable is implemented by a MountProvider that also supports
// mutation (spec.md §6.3 "Optional write capabilities").
type WriteCapable interface {
	WriteFile(subpath string, data []byte) error
	Unlink(subpath string) error
	Mkdir(subpath string, recursive bool) error
	Rmdir(subpath string) error
	Rename(oldSubpath, newSubpath string) error
	CopyFile(srcSubpath, dstSubpath string) error
}

// Mount binds an absolute path prefix to a provider (spec.md §3 "Mount").
type Mount struct {
	Path     string
	Provider MountProvider
}

type mountTable struct {
	mounts []Mount // sorted by descending path length
}

// add inserts a mount, keeping the table sorted longest-prefix-first
// (spec.md §3: "sorted by descending path length so the first prefix
// match is the most specific").
func (t *mountTable) add(m Mount) {
	t.mounts = append(t.mounts, m)
	sort.SliceStable(t.mounts, func(i, j int) bool {
		return len(t.mounts[i].Path) > len(t.mounts[j].Path)
	})
}

func (t *mountTable) remove(path string) {
	for i, m := range t.mounts {
		if m.Path == path {
			t.mounts = append(t.mounts[:i], t.mounts[i+1:]...)
			return
		}
	}
}

// resolve finds the most specific mount covering absPath, returning the
// mount and the subpath remainder ("/" when the match is exact).
func (t *mountTable) resolve(absPath string) (Mount, string, bool) {
	for _, m := range t.mounts {
		if absPath == m.Path {
			return m, "/", true
		}
		prefix := m.Path
		if prefix != "/" {
			prefix += "/"
		}
		if len(absPath) > len(prefix) && absPath[:len(prefix)] == prefix {
			sub := absPath[len(prefix)-1:] // keep leading "/"
			if sub == "" {
				sub = "/"
			}
			return m, sub, true
		}
	}
	return Mount{}, "", false
}

// childMountSegments returns the next path segment for every mount whose
// path lies strictly under dir, used by Readdir to synthesise virtual
// entries (spec.md §4.2 "readdir must additionally synthesise...").
func (t *mountTable) childMountSegments(dir string) []string {
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	seen := map[string]bool{}
	var out []string
	for _, m := range t.mounts {
		if len(m.Path) <= len(prefix) || m.Path[:len(prefix)] != prefix {
			continue
		}
		rest := m.Path[len(prefix):]
		seg := rest
		for i, c := range rest {
			if c == '/' {
				seg = rest[:i]
				break
			}
		}
		if seg == "" || seen[seg] {
			continue
		}
		seen[seg] = true
		out = append(out, seg)
	}
	return out
}

// readOnlyErr builds the EINVAL error a read-only mount returns for a
// write operation it doesn't implement (spec.md §4.2 "Mount protocol":
// "If the provider lacks the required capability, the operation returns
// EINVAL with message 'read-only virtual filesystem'").
func readOnlyErr(op, path string) error {
	return newErr(op, path, EINVAL, "read-only virtual filesystem")
}

func mountWriteFile(m Mount, sub string, data []byte) error {
	wc, ok := m.Provider.(WriteCapable)
	if !ok {
		return readOnlyErr("write_file", m.Path+sub)
	}
	return wc.WriteFile(sub, data)
}

func mountUnlink(m Mount, sub string) error {
	wc, ok := m.Provider.(WriteCapable)
	if !ok {
		return readOnlyErr("unlink", m.Path+sub)
	}
	return wc.Unlink(sub)
}

func mountMkdir(m Mount, sub string, recursive bool) error {
	wc, ok := m.Provider.(WriteCapable)
	if !ok {
		return readOnlyErr("mkdir", m.Path+sub)
	}
	return wc.Mkdir(sub, recursive)
}

func mountRmdir(m Mount, sub string) error {
	wc, ok := m.Provider.(WriteCapable)
	if !ok {
		return readOnlyErr("rmdir", m.Path+sub)
	}
	return wc.Rmdir(sub)
}
