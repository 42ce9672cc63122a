// Package osmount implements a vfs.MountProvider backed by a real OS
// directory, for hosts that want to expose part of the underlying
// filesystem (e.g. a project checkout) inside the in-process VFS tree
// (spec.md §6.3 "MountProvider"). It uses fsnotify to translate OS-level
// filesystem changes into the VFS's WatchEvent stream, grounded on the
// teacher's runtime module dependency on github.com/fsnotify/fsnotify.
package osmount

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/lifo-sh/lifo-sh/vfs"
)

// Provider mounts root (an OS directory) as a read-write vfs.MountProvider.
type Provider struct {
	root    string
	watcher *fsnotify.Watcher
	notify  func(vfs.WatchEvent)
}

// New creates a Provider rooted at root. notify is called for every OS
// filesystem event translated into a VFS WatchEvent; pass nil to disable
// bridging (the provider still works, just without live watch events).
func New(root string, notify func(vfs.WatchEvent)) (*Provider, error) {
	p := &Provider{root: root, notify: notify}
	if notify == nil {
		return p, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	p.watcher = w
	go p.pump()
	return p, nil
}

// Close stops the underlying fsnotify watcher, if any.
func (p *Provider) Close() error {
	if p.watcher == nil {
		return nil
	}
	return p.watcher.Close()
}

func (p *Provider) pump() {
	for {
		select {
		case ev, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			p.translate(ev)
		case _, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (p *Provider) translate(ev fsnotify.Event) {
	rel, err := filepath.Rel(p.root, ev.Name)
	if err != nil {
		return
	}
	sub := "/" + filepath.ToSlash(rel)

	var kind vfs.EventKind
	switch {
	case ev.Op&fsnotify.Create != 0:
		kind = vfs.EventCreate
	case ev.Op&fsnotify.Write != 0:
		kind = vfs.EventModify
	case ev.Op&fsnotify.Remove != 0:
		kind = vfs.EventDelete
	case ev.Op&fsnotify.Rename != 0:
		kind = vfs.EventDelete // the OS reports the old name disappearing
	default:
		return
	}
	ft := vfs.KindFile
	if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
		ft = vfs.KindDirectory
	}
	p.notify(vfs.WatchEvent{Kind: kind, Path: sub, FileType: ft})
}

func (p *Provider) abs(sub string) string {
	return filepath.Join(p.root, filepath.FromSlash(sub))
}

func (p *Provider) ReadFile(sub string) ([]byte, error) {
	return os.ReadFile(p.abs(sub))
}

func (p *Provider) Exists(sub string) bool {
	_, err := os.Stat(p.abs(sub))
	return err == nil
}

func (p *Provider) Stat(sub string) (vfs.Stat, error) {
	fi, err := os.Stat(p.abs(sub))
	if err != nil {
		return vfs.Stat{}, err
	}
	kind := vfs.KindFile
	if fi.IsDir() {
		kind = vfs.KindDirectory
	}
	return vfs.Stat{
		Kind:  kind,
		Size:  fi.Size(),
		Mtime: fi.ModTime().UnixMilli(),
		Mode:  uint32(fi.Mode().Perm()),
	}, nil
}

func (p *Provider) Readdir(sub string) ([]vfs.Dirent, error) {
	entries, err := os.ReadDir(p.abs(sub))
	if err != nil {
		return nil, err
	}
	out := make([]vfs.Dirent, 0, len(entries))
	for _, e := range entries {
		kind := vfs.KindFile
		if e.IsDir() {
			kind = vfs.KindDirectory
		}
		out = append(out, vfs.Dirent{Name: e.Name(), Kind: kind})
	}
	return out, nil
}

func (p *Provider) WriteFile(sub string, data []byte) error {
	return os.WriteFile(p.abs(sub), data, 0o644)
}

func (p *Provider) Unlink(sub string) error {
	return os.Remove(p.abs(sub))
}

func (p *Provider) Mkdir(sub string, recursive bool) error {
	if recursive {
		return os.MkdirAll(p.abs(sub), 0o755)
	}
	return os.Mkdir(p.abs(sub), 0o755)
}

func (p *Provider) Rmdir(sub string) error {
	return os.Remove(p.abs(sub))
}

func (p *Provider) Rename(oldSub, newSub string) error {
	return os.Rename(p.abs(oldSub), p.abs(newSub))
}

func (p *Provider) CopyFile(srcSub, dstSub string) error {
	data, err := os.ReadFile(p.abs(srcSub))
	if err != nil {
		return err
	}
	return os.WriteFile(p.abs(dstSub), data, 0o644)
}

var _ vfs.MountProvider = (*Provider)(nil)
var _ vfs.WriteCapable = (*Provider)(nil)
