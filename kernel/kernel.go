// Package kernel boots one lifo-sh runtime instance: it wires together
// a VFS, a content store, the shell builtin/function registry, and the
// default environment (spec.md §6.4/§6.5), then hands back a ready-to-run
// shell/state.State and vfs.VFS pair for a host to drive through
// shell/interp or shell/facade.
package kernel

import (
	"os"

	"github.com/lifo-sh/lifo-sh/exec/job"
	"github.com/lifo-sh/lifo-sh/internal/invariant"
	"github.com/lifo-sh/lifo-sh/shell/builtins"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/vfs"
	"github.com/lifo-sh/lifo-sh/vfs/store"
)

// bootDirs is the fixed directory skeleton every kernel instance boots
// with (spec.md §6.5).
var bootDirs = []string{
	"/bin", "/etc", "/home", "/home/user", "/root", "/tmp",
	"/var", "/var/log", "/usr", "/usr/bin", "/usr/lib",
	"/usr/lib/node_modules", "/proc", "/dev", "/mnt",
}

const defaultProfile = `PATH=/usr/local/bin:/usr/bin:/bin
PS1='$ '
`

const defaultMotd = "Welcome to lifo-sh.\n"

const defaultBashrc = "# user shell startup file\n"

// Runtime is one booted lifo-sh instance: the shell state and the VFS it
// operates on, ready to be driven by shell/interp or shell/facade.
type Runtime struct {
	State *state.State
	VFS   *vfs.VFS
}

// Boot constructs a Runtime from cfg, seeding the default environment,
// the bootstrap VFS layout, any config overrides, and the builtin
// command table (spec.md §6.4/§6.5).
func Boot(cfg Config) *Runtime {
	blobs := store.New(cfg.storeBudget())
	v := vfs.New(blobs, nil)
	s := state.New()
	builtins.Register(s)

	seedEnv(s, cfg)
	seedLayout(v, s.Env["HOSTNAME"])

	for path, provider := range cfg.Mounts {
		v.Mount(path, provider)
	}
	for k, val := range cfg.EnvOverrides {
		s.Env[k] = val
	}
	s.Cwd = s.Env["HOME"]

	invariant.Postcondition(s.Env["HOME"] != "", "kernel boot must seed HOME")
	invariant.Postcondition(v.Exists(s.Cwd), "kernel boot cwd %q must exist in the booted VFS", s.Cwd)

	return &Runtime{State: s, VFS: v}
}

func seedEnv(s *state.State, cfg Config) {
	hostname := cfg.Hostname
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	if hostname == "" {
		hostname = "lifosh"
	}
	s.Env["HOME"] = "/home/user"
	s.Env["USER"] = "user"
	s.Env["HOSTNAME"] = hostname
	s.Env["PATH"] = "/usr/local/bin:/usr/bin:/bin"
	s.Env["SHELL"] = "/bin/sh"
	s.Env["PWD"] = s.Env["HOME"]
	s.Env["IFS"] = " \t\n"
	s.Env["LANG"] = "en_US.UTF-8"
	s.Env["TERM"] = "xterm-256color"
}

func seedLayout(v *vfs.VFS, hostname string) {
	for _, d := range bootDirs {
		if err := v.Mkdir(d, true); err != nil {
			invariant.Invariant(false, "bootstrap directory %q must be creatable on a fresh VFS: %v", d, err)
		}
	}
	mustWrite(v, "/etc/profile", defaultProfile)
	mustWrite(v, "/etc/motd", defaultMotd)
	mustWrite(v, "/home/user/.bashrc", defaultBashrc)
	mustWrite(v, "/etc/hostname", hostname+"\n")
}

func mustWrite(v *vfs.VFS, path, content string) {
	if err := v.WriteFile(path, []byte(content)); err != nil {
		invariant.Invariant(false, "bootstrap file %q must be writable on a fresh VFS: %v", path, err)
	}
}

// NewJobTable exposes job.New for hosts that want to run additional
// background job tables outside the booted Runtime's own s.Jobs.
func NewJobTable() *job.Table { return job.New() }
