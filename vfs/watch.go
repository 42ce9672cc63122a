package vfs

import "strings"

// EventKind tags the variant of a WatchEvent (spec.md §3 "WatchEvent").
type EventKind int

const (
	EventCreate EventKind = iota
	EventModify
	EventDelete
	EventRename
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WatchEvent describes one mutation observed by a watcher (spec.md §3).
type WatchEvent struct {
	Kind     EventKind
	Path     string
	OldPath  string // only set for EventRename
	FileType Kind
}

// Unsubscribe cancels a previously-registered watch.
type Unsubscribe func()

type watcher struct {
	scope string // "" means global
	fn    func(WatchEvent)
}

type watchHub struct {
	watchers []*watcher
}

// Watch registers a global listener that fires for every event
// (spec.md §4.2 "Global: every notify fires").
func (h *watchHub) Watch(fn func(WatchEvent)) Unsubscribe {
	return h.subscribe("", fn)
}

// WatchPath registers a listener scoped to p: it fires only when the
// event's path equals p, begins with p + "/", or is a rename whose
// OldPath matches those rules (spec.md §4.2 "Scoped-to-path").
func (h *watchHub) WatchPath(p string, fn func(WatchEvent)) Unsubscribe {
	return h.subscribe(p, fn)
}

func (h *watchHub) subscribe(scope string, fn func(WatchEvent)) Unsubscribe {
	w := &watcher{scope: scope, fn: fn}
	h.watchers = append(h.watchers, w)
	return func() {
		for i, existing := range h.watchers {
			if existing == w {
				h.watchers = append(h.watchers[:i], h.watchers[i+1:]...)
				return
			}
		}
	}
}

// notify delivers ev to every matching watcher synchronously, before the
// mutating operation returns (spec.md §5 ordering guarantee). A panicking
// listener is isolated and must not prevent later listeners from seeing
// the event (spec.md §4.2 "Failure semantics").
func (h *watchHub) notify(ev WatchEvent) {
	for _, w := range h.watchers {
		if !scopeMatches(w.scope, ev) {
			continue
		}
		callListener(w.fn, ev)
	}
}

func callListener(fn func(WatchEvent), ev WatchEvent) {
	defer func() { _ = recover() }()
	fn(ev)
}

func scopeMatches(scope string, ev WatchEvent) bool {
	if scope == "" {
		return true
	}
	if pathMatchesScope(scope, ev.Path) {
		return true
	}
	if ev.Kind == EventRename && ev.OldPath != "" && pathMatchesScope(scope, ev.OldPath) {
		return true
	}
	return false
}

func pathMatchesScope(scope, path string) bool {
	if path == scope {
		return true
	}
	prefix := scope
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(path, prefix)
}
