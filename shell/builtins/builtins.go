// Package builtins implements the POSIX-subset builtin command set
// (spec.md §4.10 "Resolve: builtin > function > registry"). Every
// builtin is a state.BuiltinFn, registered into a ShellState's Builtins
// map by Register, following the teacher's registry.go pattern of
// grouping related handlers behind a single registration entrypoint
// (runtime/decorators/registry.go's RegisterValue/RegisterAction/...).
//
// break/continue/return/exit are NOT here: they are interpreter control
// flow (shell/interp), not commands with an exit code.
package builtins

import (
	"github.com/lifo-sh/lifo-sh/shell/state"
)

// Register wires every builtin in this package into s.Builtins.
func Register(s *state.State) {
	s.Builtins["cd"] = cd
	s.Builtins["pwd"] = pwd
	s.Builtins["echo"] = echo
	s.Builtins["export"] = export
	s.Builtins["unset"] = unset
	s.Builtins["true"] = trueBuiltin
	s.Builtins["false"] = falseBuiltin
	s.Builtins[":"] = trueBuiltin
	s.Builtins["shift"] = shift
	s.Builtins["set"] = set
	s.Builtins["read"] = read
	s.Builtins["test"] = test
	s.Builtins["["] = bracketTest
	s.Builtins["alias"] = alias
	s.Builtins["unalias"] = unalias
	s.Builtins["eval"] = eval
	s.Builtins["type"] = typeBuiltin
	s.Builtins["kill"] = kill
	s.Builtins["jobs"] = jobs
	s.Builtins["wait"] = wait
}
