// Package snapshot serializes and deserializes a vfs.VFS tree to a
// compact binary form, using github.com/fxamacker/cbor/v2 (present in the
// teacher's runtime and core go.mod files). spec.md §1 treats persistent
// on-disk storage as a non-goal for the VFS itself ("the host may
// serialise/deserialise, but lifecycle is in-memory") — this package is
// exactly that host-side hook, not a change to VFS lifecycle semantics.
package snapshot

import (
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/lifo-sh/lifo-sh/vfs"
)

// Node is the wire representation of one inode, built only from vfs's
// public API (Readdir/Stat/ReadFile) so the codec never needs access to
// VFS internals.
type Node struct {
	Name     string `cbor:"name"`
	Dir      bool   `cbor:"dir"`
	Mode     uint32 `cbor:"mode"`
	Mtime    int64  `cbor:"mtime"`
	Data     []byte `cbor:"data,omitempty"`
	Children []Node `cbor:"children,omitempty"`
}

// Export walks v from root and builds a Node tree.
func Export(v *vfs.VFS) (Node, error) {
	return exportDir(v, "/", "")
}

func exportDir(v *vfs.VFS, path, name string) (Node, error) {
	st, err := v.Stat(path)
	if err != nil {
		return Node{}, err
	}
	n := Node{Name: name, Dir: true, Mode: st.Mode, Mtime: st.Mtime}
	ents, err := v.Readdir(path)
	if err != nil {
		return Node{}, err
	}
	sort.Slice(ents, func(i, j int) bool { return ents[i].Name < ents[j].Name })
	for _, e := range ents {
		childPath := vfs.Resolve(path, e.Name)
		if e.Kind == vfs.KindDirectory {
			child, err := exportDir(v, childPath, e.Name)
			if err != nil {
				return Node{}, err
			}
			n.Children = append(n.Children, child)
			continue
		}
		childSt, err := v.Stat(childPath)
		if err != nil {
			return Node{}, err
		}
		data, err := v.ReadFile(childPath)
		if err != nil {
			return Node{}, err
		}
		n.Children = append(n.Children, Node{Name: e.Name, Mode: childSt.Mode, Mtime: childSt.Mtime, Data: data})
	}
	return n, nil
}

// Encode serializes root to CBOR bytes.
func Encode(root Node) ([]byte, error) {
	return cbor.Marshal(root)
}

// Decode parses CBOR bytes produced by Encode back into a Node tree.
func Decode(data []byte) (Node, error) {
	var n Node
	err := cbor.Unmarshal(data, &n)
	return n, err
}

// Import writes a decoded Node tree into v at the given absolute mount
// path (typically "/"), creating directories and files as needed.
func Import(v *vfs.VFS, mountPath string, root Node) error {
	return importDir(v, mountPath, root)
}

func importDir(v *vfs.VFS, path string, n Node) error {
	for _, child := range n.Children {
		childPath := vfs.Resolve(path, child.Name)
		if child.Dir {
			if err := v.Mkdir(childPath, true); err != nil && !vfs.IsErrno(err, vfs.EEXIST) {
				return err
			}
			if err := importDir(v, childPath, child); err != nil {
				return err
			}
			continue
		}
		if err := v.WriteFile(childPath, child.Data); err != nil {
			return err
		}
	}
	return nil
}
