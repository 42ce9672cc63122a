package vfs

import "fmt"

// Errno is the closed set of VFS error kinds (spec.md §3, §4.2).
type Errno int

const (
	ENOENT Errno = iota
	EEXIST
	ENOTDIR
	EISDIR
	ENOTEMPTY
	EINVAL
)

func (e Errno) String() string {
	switch e {
	case ENOENT:
		return "ENOENT"
	case EEXIST:
		return "EEXIST"
	case ENOTDIR:
		return "ENOTDIR"
	case EISDIR:
		return "EISDIR"
	case ENOTEMPTY:
		return "ENOTEMPTY"
	case EINVAL:
		return "EINVAL"
	default:
		return "EUNKNOWN"
	}
}

// PathError is the error type returned by every VFS operation that fails;
// it always carries the failing path as context (spec.md §3: "Every error
// carries the failing path as context").
type PathError struct {
	Op      string
	Path    string
	Errno   Errno
	Message string
}

func (e *PathError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Errno.String()
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
}

func newErr(op, path string, errno Errno, message string) *PathError {
	return &PathError{Op: op, Path: path, Errno: errno, Message: message}
}

// IsErrno reports whether err is a *PathError with the given Errno.
func IsErrno(err error, errno Errno) bool {
	pe, ok := err.(*PathError)
	return ok && pe.Errno == errno
}
