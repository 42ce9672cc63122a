// Package interp is the tree-walking interpreter (spec.md §4.10): it
// evaluates an ast.Script against a shell state, dispatching simple
// commands through builtins, functions, and the command registry in
// that order, and wiring pipelines through exec/pipe channels.
package interp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/lifo-sh/lifo-sh/exec/ctx"
	"github.com/lifo-sh/lifo-sh/exec/pipe"
	"github.com/lifo-sh/lifo-sh/internal/glob"
	"github.com/lifo-sh/lifo-sh/shell/ast"
	"github.com/lifo-sh/lifo-sh/shell/expand"
	"github.com/lifo-sh/lifo-sh/shell/lexer"
	"github.com/lifo-sh/lifo-sh/shell/parser"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/shell/token"
	"github.com/lifo-sh/lifo-sh/vfs"
)

// Interp ties one ShellState to a VFS and a default set of I/O streams.
// A fresh Interp is spawned per command substitution and per background
// job so each sees its own stdout/stdin without disturbing the parent's.
type Interp struct {
	State  *state.State
	VFS    *vfs.VFS
	Stdout io.Writer
	Stderr io.Writer
	Stdin  ctx.InputStream
	Signal context.Context

	// SetRawMode, if non-nil, is exposed to handlers via
	// CommandContext.SetRawMode (spec.md §6.1 "optional capability
	// handles"). A host embedding an interactive facade wires this to
	// its own raw-mode toggle; headless/script use leaves it nil.
	SetRawMode func(bool)

	// Telemetry gates the optional wall-clock timing of RunWithResult.
	// Debug is carried for hosts and not read by the interpreter. Both
	// default to Off.
	Debug     DebugLevel
	Telemetry TelemetryLevel

	stepsRun int
}

// New constructs an Interp bound to an existing shell state and VFS.
func New(s *state.State, v *vfs.VFS, stdout, stderr io.Writer, stdin ctx.InputStream) *Interp {
	return &Interp{State: s, VFS: v, Stdout: stdout, Stderr: stderr, Stdin: stdin, Signal: context.Background()}
}

type sigKind int

const (
	sigNone sigKind = iota
	sigBreak
	sigContinue
	sigReturn
	sigExit
)

type signal struct {
	kind sigKind
	code int
}

// Run lexes, parses, and executes src against i's state, returning the
// resulting exit code. A lex/parse failure is reported on Stderr and
// yields exit code 2, matching spec.md §7's error taxonomy.
func (i *Interp) Run(src string) int {
	script, err := parser.Parse(src)
	if err != nil {
		fmt.Fprintln(i.Stderr, err)
		return 2
	}
	return i.execScript(script)
}

func (i *Interp) execScript(script *ast.Script) int {
	code := 0
	for _, list := range script.Lists {
		var sig signal
		code, sig = i.execTopList(list)
		i.State.LastExitCode = code
		if sig.kind == sigReturn || sig.kind == sigExit {
			return code
		}
	}
	return code
}

// execTopList handles the top-level '&' background flag (spec.md §4.10
// "List: ... if background=true, register the list as a job and return
// exit 0 immediately").
func (i *Interp) execTopList(list ast.List) (int, signal) {
	if list.Background {
		j := i.State.Jobs.Add("")
		sub := &Interp{State: i.State, VFS: i.VFS, Stdout: i.Stdout, Stderr: i.Stderr, Stdin: i.Stdin, Signal: j.Context()}
		i.State.LastBgPID = j.PID
		go func() {
			code, _ := sub.execEntries(list, sub.Stdin, sub.Stdout, sub.Stderr)
			j.MarkExited(code)
		}()
		return 0, signal{}
	}
	return i.execEntries(list, i.Stdin, i.Stdout, i.Stderr)
}

// execEntries runs a List's pipeline entries left to right, honouring
// the '&&'/'||' short-circuit connector between them.
func (i *Interp) execEntries(list ast.List, stdin ctx.InputStream, stdout, stderr io.Writer) (int, signal) {
	code := 0
	for idx := 0; idx < len(list.Entries); idx++ {
		if idx > 0 {
			conn := list.Entries[idx-1].Connector
			if (conn == ast.ConnAnd && code != 0) || (conn == ast.ConnOr && code == 0) {
				continue
			}
		}
		var sig signal
		code, sig = i.execPipeline(list.Entries[idx].Pipeline, stdin, stdout, stderr)
		i.State.LastExitCode = code
		if sig.kind != sigNone {
			return code, sig
		}
	}
	return code, signal{}
}

type pipeWriter struct{ ch *pipe.Channel }

func (w pipeWriter) Write(p []byte) (int, error) {
	w.ch.Write(p)
	return len(p), nil
}

// execPipeline runs a Pipeline's commands (spec.md §4.10): a single
// command runs inline; N>1 commands each run on their own goroutine,
// connected stdout[k] -> stdin[k+1] through exec/pipe channels.
func (i *Interp) execPipeline(pl ast.Pipeline, stdin ctx.InputStream, stdout, stderr io.Writer) (int, signal) {
	n := len(pl.Commands)
	if n == 0 {
		return 0, signal{}
	}
	if n == 1 {
		code, sig := i.execCompound(pl.Commands[0], stdin, stdout, stderr)
		if pl.Negated {
			code = invert(code)
		}
		return code, sig
	}

	stages := make([]*pipe.Channel, n-1)
	for idx := range stages {
		stages[idx] = pipe.New()
	}
	codes := make([]int, n)
	sigs := make([]signal, n)
	var wg sync.WaitGroup
	for idx, cmd := range pl.Commands {
		var in ctx.InputStream = stdin
		if idx > 0 {
			in = stages[idx-1]
		}
		var out io.Writer = stdout
		var closeOut *pipe.Channel
		if idx < n-1 {
			closeOut = stages[idx]
			out = pipeWriter{ch: closeOut}
		}
		wg.Add(1)
		go func(idx int, cmd *ast.CompoundCommand, in ctx.InputStream, out io.Writer, closeOut *pipe.Channel) {
			defer wg.Done()
			code, sig := i.execCompound(cmd, in, out, stderr)
			if closeOut != nil {
				closeOut.Close()
			}
			codes[idx] = code
			sigs[idx] = sig
		}(idx, cmd, in, out, closeOut)
	}
	wg.Wait()
	code := codes[n-1]
	if pl.Negated {
		code = invert(code)
	}
	return code, sigs[n-1]
}

func invert(code int) int {
	if code == 0 {
		return 1
	}
	return 0
}

func (i *Interp) execCompound(cmd *ast.CompoundCommand, stdin ctx.InputStream, stdout, stderr io.Writer) (int, signal) {
	switch cmd.Kind {
	case ast.KindSimple:
		return i.execSimple(cmd.Simple, cmd.Redirections, stdin, stdout, stderr)
	case ast.KindIf:
		return i.execIf(cmd.If, stdin, stdout, stderr)
	case ast.KindFor:
		return i.execFor(cmd.For, stdin, stdout, stderr)
	case ast.KindLoop:
		return i.execLoop(cmd.Loop, stdin, stdout, stderr)
	case ast.KindCase:
		return i.execCase(cmd.Case, stdin, stdout, stderr)
	case ast.KindFunctionDef:
		i.State.Functions[cmd.FunctionDef.Name] = cmd.FunctionDef.Body
		return 0, signal{}
	case ast.KindGroup:
		return i.execEntries(cmd.Group.Body, stdin, stdout, stderr)
	}
	return 0, signal{}
}

func (i *Interp) execIf(clause *ast.IfClause, stdin ctx.InputStream, stdout, stderr io.Writer) (int, signal) {
	for _, branch := range clause.Branches {
		if branch.Condition == nil {
			return i.execEntries(branch.Body, stdin, stdout, stderr)
		}
		condCode, sig := i.execEntries(*branch.Condition, stdin, stdout, stderr)
		if sig.kind != sigNone {
			return condCode, sig
		}
		if condCode == 0 {
			return i.execEntries(branch.Body, stdin, stdout, stderr)
		}
	}
	return 0, signal{}
}

func (i *Interp) execFor(clause *ast.ForClause, stdin ctx.InputStream, stdout, stderr io.Writer) (int, signal) {
	var words []string
	if clause.HasWordsList {
		expanded, err := expand.Words(clause.Words, i.State, i.VFS, i.commandSub)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1, signal{}
		}
		words = expanded
	} else {
		words = append([]string{}, i.State.PositionalParams...)
	}
	code := 0
	for _, w := range words {
		i.State.Env[clause.Name] = w
		bodyCode, sig := i.execEntries(clause.Body, stdin, stdout, stderr)
		code = bodyCode
		switch sig.kind {
		case sigBreak:
			return code, signal{}
		case sigReturn, sigExit:
			return bodyCode, sig
		}
	}
	return code, signal{}
}

func (i *Interp) execLoop(clause *ast.LoopClause, stdin ctx.InputStream, stdout, stderr io.Writer) (int, signal) {
	code := 0
	for {
		condCode, sig := i.execEntries(clause.Condition, stdin, stdout, stderr)
		if sig.kind == sigReturn || sig.kind == sigExit {
			return condCode, sig
		}
		stop := condCode != 0
		if clause.Kind == ast.LoopUntil {
			stop = condCode == 0
		}
		if stop {
			break
		}
		bodyCode, bsig := i.execEntries(clause.Body, stdin, stdout, stderr)
		code = bodyCode
		if bsig.kind == sigBreak {
			break
		}
		if bsig.kind == sigReturn || bsig.kind == sigExit {
			return bodyCode, bsig
		}
	}
	return code, signal{}
}

func (i *Interp) execCase(clause *ast.CaseClause, stdin ctx.InputStream, stdout, stderr io.Writer) (int, signal) {
	subject, err := expand.AssignmentValue(clause.Subject, i.State, i.commandSub)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1, signal{}
	}
	for _, item := range clause.Items {
		for _, patWord := range item.Patterns {
			pat, err := expand.AssignmentValue(patWord, i.State, i.commandSub)
			if err != nil {
				continue
			}
			if glob.Match(pat, subject) {
				return i.execEntries(item.Body, stdin, stdout, stderr)
			}
		}
	}
	return 0, signal{}
}

// oneShotReader adapts a byte slice (file contents, heredoc body) to
// ctx.InputStream: one Read/ReadAll call returns the data, every call
// after that reports EOF.
type oneShotReader struct {
	data []byte
	used bool
}

func (r *oneShotReader) Read() ([]byte, bool) {
	if r.used {
		return nil, false
	}
	r.used = true
	return r.data, true
}

func (r *oneShotReader) ReadAll() []byte {
	if r.used {
		return nil
	}
	r.used = true
	return r.data
}

// applyRedirections resolves redirection targets and returns the
// overridden stdin/stdout/stderr plus a cleanup that flushes any
// buffered output to the VFS. ok=false means a target failed to open;
// the caller must print nothing further and return the given code
// without invoking the command (spec.md §4.10 step 5).
func (i *Interp) applyRedirections(redirs []ast.Redirection, stdin ctx.InputStream, stdout, stderr io.Writer) (ctx.InputStream, io.Writer, io.Writer, func(), int, bool) {
	var cleanups []func()
	cleanup := func() {
		for _, f := range cleanups {
			f()
		}
	}
	for _, r := range redirs {
		switch r.Operator {
		case ast.RedirOut, ast.RedirAppend, ast.RedirErr, ast.RedirErrAppend, ast.RedirAll:
			path, err := expand.AssignmentValue(r.Target, i.State, i.commandSub)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return stdin, stdout, stderr, cleanup, 1, false
			}
			target := vfs.Resolve(i.State.Cwd, path)
			buf := &bytes.Buffer{}
			isAppend := r.Operator == ast.RedirAppend || r.Operator == ast.RedirErrAppend
			flush := func() {
				if isAppend {
					i.VFS.AppendFile(target, buf.Bytes())
				} else {
					i.VFS.WriteFile(target, buf.Bytes())
				}
			}
			switch r.Operator {
			case ast.RedirOut, ast.RedirAppend:
				stdout = buf
			case ast.RedirErr, ast.RedirErrAppend:
				stderr = buf
			case ast.RedirAll:
				stdout = buf
				stderr = buf
			}
			cleanups = append(cleanups, flush)
		case ast.RedirIn:
			path, err := expand.AssignmentValue(r.Target, i.State, i.commandSub)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return stdin, stdout, stderr, cleanup, 1, false
			}
			target := vfs.Resolve(i.State.Cwd, path)
			data, err := i.VFS.ReadFile(target)
			if err != nil {
				fmt.Fprintf(stderr, "%s: %s\n", path, err)
				return stdin, stdout, stderr, cleanup, 1, false
			}
			stdin = &oneShotReader{data: data}
		case ast.RedirHeredoc, ast.RedirHeredocStrip:
			stdin = &oneShotReader{data: []byte(r.HeredocBody)}
		}
	}
	return stdin, stdout, stderr, cleanup, 0, true
}

// applyAlias performs one-shot alias substitution on argv[0] (spec.md
// §4.10 step 3): recursive aliases (an alias expanding to itself) are
// not re-substituted.
func (i *Interp) applyAlias(argv []string) []string {
	seen := map[string]bool{}
	for len(argv) > 0 {
		name := argv[0]
		rep, ok := i.State.Aliases[name]
		if !ok || seen[name] {
			break
		}
		seen[name] = true
		toks, err := lexer.Lex(rep)
		if err != nil {
			break
		}
		var replaced []string
		for _, t := range toks {
			if t.Kind == token.Word {
				replaced = append(replaced, literalJoin(t.Parts))
			}
		}
		if len(replaced) == 0 {
			break
		}
		argv = append(replaced, argv[1:]...)
	}
	return argv
}

func literalJoin(parts []token.WordPart) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// execSimple implements spec.md §4.10's simple-command steps.
func (i *Interp) execSimple(sc *ast.SimpleCommand, trailing []ast.Redirection, stdin ctx.InputStream, stdout, stderr io.Writer) (int, signal) {
	i.stepsRun++
	overlay := i.State.EnvSnapshot()
	for _, a := range sc.Assignments {
		val, err := expand.AssignmentValue(a.Value, i.State, i.commandSub)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1, signal{}
		}
		overlay[a.Name] = val
	}

	argv, err := expand.Words(sc.Words, i.State, i.VFS, i.commandSub)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1, signal{}
	}

	if len(argv) == 0 {
		for _, a := range sc.Assignments {
			i.State.Env[a.Name] = overlay[a.Name]
		}
		return 0, signal{}
	}

	argv = i.applyAlias(argv)

	redirs := append(append([]ast.Redirection{}, sc.Redirections...), trailing...)
	newStdin, newStdout, newStderr, cleanup, code, ok := i.applyRedirections(redirs, stdin, stdout, stderr)
	if !ok {
		return code, signal{}
	}
	defer cleanup()

	name := argv[0]
	switch name {
	case "break":
		return 0, signal{kind: sigBreak}
	case "continue":
		return 0, signal{kind: sigContinue}
	case "return":
		rc := 0
		if len(argv) > 1 {
			if n, err := strconv.Atoi(argv[1]); err == nil {
				rc = n
			}
		}
		return rc, signal{kind: sigReturn, code: rc}
	case "exit":
		rc := i.State.LastExitCode
		if len(argv) > 1 {
			if n, err := strconv.Atoi(argv[1]); err == nil {
				rc = n
			}
		}
		return rc, signal{kind: sigExit, code: rc}
	}

	if fn, ok := i.State.Builtins[name]; ok {
		cc := i.buildContext(argv, overlay, newStdin, newStdout, newStderr)
		return fn(i.State, cc), signal{}
	}
	if fnDef, ok := i.State.Functions[name]; ok {
		return i.callFunction(fnDef, argv, newStdin, newStdout, newStderr)
	}
	if h, ok := i.State.Registry.Resolve(name); ok {
		cc := i.buildContext(argv, overlay, newStdin, newStdout, newStderr)
		return h.Run(cc), signal{}
	}
	fmt.Fprintf(newStderr, "%s: command not found\n", name)
	return 127, signal{}
}

// callFunction invokes a user-defined function, rebinding positional
// parameters for its duration (spec.md §4.10 FunctionDef) and catching
// a 'return' signal (unmatched break/continue just stop the function,
// mirroring real shells' best-effort behaviour).
func (i *Interp) callFunction(body *ast.CompoundCommand, argv []string, stdin ctx.InputStream, stdout, stderr io.Writer) (int, signal) {
	saved := i.State.PositionalParams
	i.State.PositionalParams = argv[1:]
	code, sig := i.execCompound(body, stdin, stdout, stderr)
	i.State.PositionalParams = saved
	if sig.kind == sigReturn {
		return sig.code, signal{}
	}
	return code, signal{}
}

func (i *Interp) buildContext(argv []string, env map[string]string, stdin ctx.InputStream, stdout, stderr io.Writer) *ctx.CommandContext {
	return &ctx.CommandContext{
		Args:       argv[1:],
		Env:        env,
		Cwd:        i.State.Cwd,
		VFS:        i.VFS,
		Stdout:     stdout,
		Stderr:     stderr,
		Stdin:      stdin,
		Signal:     i.Signal,
		Registry:   i.State.Registry,
		SetRawMode: i.SetRawMode,
	}
}

// commandSub implements expand.Runner: it runs source in a
// sub-interpreter sharing this Interp's ShellState and captures the
// output instead of writing to Stdout (spec.md §4.9 step 5).
func (i *Interp) commandSub(source string) (string, error) {
	script, err := parser.Parse(source)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	sub := &Interp{State: i.State, VFS: i.VFS, Stdout: &buf, Stderr: i.Stderr, Stdin: i.Stdin, Signal: i.Signal}
	code := sub.execScript(script)
	i.State.LastExitCode = code
	return buf.String(), nil
}
