// Package expand implements the eight-step word expansion pipeline
// (spec.md §4.9): brace, tilde, parameter, arithmetic, command
// substitution, word splitting, pathname expansion, quote removal.
package expand

import (
	"strconv"
	"strings"

	"github.com/lifo-sh/lifo-sh/internal/glob"
	"github.com/lifo-sh/lifo-sh/shell/ast"
	"github.com/lifo-sh/lifo-sh/shell/lexer"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/shell/token"
	"github.com/lifo-sh/lifo-sh/vfs"
)

// Runner executes source as a sub-interpreter sharing the caller's
// ShellState and returns its captured stdout (spec.md §4.9 step 5:
// "run the inner source in a sub-interpreter sharing ShellState").
// Defined here rather than depending on shell/interp to avoid an import
// cycle (interp depends on expand, not the reverse).
type Runner func(source string) (string, error)

type segment struct {
	text      string
	quote     token.Quote
	hardBreak bool
}

// Words expands a slice of ast.Word (one simple command's argv words)
// into final argv strings, applying brace expansion, then per-word
// parameter/arithmetic/command-substitution expansion, splitting, and
// globbing.
func Words(words []ast.Word, s *state.State, v *vfs.VFS, run Runner) ([]string, error) {
	var out []string
	for _, w := range words {
		fields, err := expandOneWord(w, s, v, run)
		if err != nil {
			return nil, err
		}
		out = append(out, fields...)
	}
	return out, nil
}

// AssignmentValue expands a NAME=Word assignment's value: subject to
// brace/tilde/parameter/arithmetic/command-substitution, but not to
// splitting or globbing (spec.md §4.9 "Assignments ... bypass splitting
// and globbing").
func AssignmentValue(w ast.Word, s *state.State, run Runner) (string, error) {
	segs, err := expandParts(w.Parts, s, run)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, seg := range segs {
		sb.WriteString(seg.text)
	}
	return sb.String(), nil
}

func expandOneWord(w ast.Word, s *state.State, v *vfs.VFS, run Runner) ([]string, error) {
	variants := braceVariants(w)
	var result []string
	for _, variant := range variants {
		variant = applyTilde(variant, s)
		segs, err := expandParts(variant.Parts, s, run)
		if err != nil {
			return nil, err
		}
		fields := splitFields(segs, s)
		for _, f := range fields {
			result = append(result, globExpand(f, v, s)...)
		}
	}
	return result, nil
}

// braceVariants applies step 1 (brace expansion). Only words consisting
// of a single unquoted literal part are expanded; mixed-part words pass
// through unchanged (documented scope simplification in DESIGN.md).
func braceVariants(w ast.Word) []ast.Word {
	if len(w.Parts) != 1 || w.Parts[0].Kind != token.PartLiteral || w.Parts[0].Quote != token.QuoteNone {
		return []ast.Word{w}
	}
	alts := expandBraceText(w.Parts[0].Text)
	if len(alts) == 1 {
		return []ast.Word{w}
	}
	out := make([]ast.Word, 0, len(alts))
	for _, a := range alts {
		out = append(out, ast.Word{Parts: []token.WordPart{{Kind: token.PartLiteral, Text: a, Quote: token.QuoteNone}}})
	}
	return out
}

func expandBraceText(s string) []string {
	rs := []rune(s)
	depth := 0
	open := -1
	for i, r := range rs {
		if r == '{' {
			if depth == 0 {
				open = i
			}
			depth++
		} else if r == '}' {
			depth--
			if depth == 0 && open >= 0 {
				inner := string(rs[open+1 : i])
				if !containsTopLevelComma(inner) {
					open = -1
					continue
				}
				prefix := string(rs[:open])
				suffix := string(rs[i+1:])
				var out []string
				for _, alt := range splitTopLevelComma(inner) {
					out = append(out, expandBraceText(prefix+alt+suffix)...)
				}
				return out
			}
		}
	}
	return []string{s}
}

func containsTopLevelComma(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

func splitTopLevelComma(s string) []string {
	depth := 0
	var out []string
	var cur strings.Builder
	for _, r := range s {
		switch r {
		case '{':
			depth++
			cur.WriteRune(r)
		case '}':
			depth--
			cur.WriteRune(r)
		case ',':
			if depth == 0 {
				out = append(out, cur.String())
				cur.Reset()
				continue
			}
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	out = append(out, cur.String())
	return out
}

// applyTilde implements step 2: a leading unquoted '~' expands to
// env.HOME; `~user` is unsupported and preserved literally.
func applyTilde(w ast.Word, s *state.State) ast.Word {
	if len(w.Parts) == 0 || w.Parts[0].Kind != token.PartLiteral || w.Parts[0].Quote != token.QuoteNone {
		return w
	}
	text := w.Parts[0].Text
	if !strings.HasPrefix(text, "~") {
		return w
	}
	rest := text[1:]
	if rest != "" && rest[0] != '/' {
		return w // ~user form, preserved literally
	}
	home := s.Env["HOME"]
	newParts := append([]token.WordPart{}, w.Parts...)
	newParts[0] = token.WordPart{Kind: token.PartLiteral, Text: home + rest, Quote: token.QuoteNone}
	return ast.Word{Parts: newParts}
}

// expandParts runs steps 3-5 (parameter, arithmetic, command
// substitution) over a part sequence, producing quote-annotated segments
// ready for splitting.
func expandParts(parts []token.WordPart, s *state.State, run Runner) ([]segment, error) {
	var segs []segment
	for _, part := range parts {
		switch part.Kind {
		case token.PartLiteral:
			segs = append(segs, segment{text: part.Text, quote: part.Quote})
		case token.PartParam:
			val, err := expandParam(part.Text, s, run)
			if err != nil {
				return nil, err
			}
			if val.isAt {
				for i, v := range val.list {
					segs = append(segs, segment{text: v, quote: part.Quote, hardBreak: i < len(val.list)-1})
				}
				continue
			}
			segs = append(segs, segment{text: val.one, quote: part.Quote})
		case token.PartArithmetic:
			v, err := EvalArith(part.Text, s)
			if err != nil {
				return nil, err
			}
			segs = append(segs, segment{text: strconv.FormatInt(v, 10), quote: part.Quote})
		case token.PartCommandSub:
			out, err := run(part.Text)
			if err != nil {
				return nil, err
			}
			out = strings.TrimRight(out, "\n")
			segs = append(segs, segment{text: out, quote: part.Quote})
		}
	}
	return segs, nil
}

// lexWordLiteral re-lexes a plain text fragment (e.g. a ${VAR:-default}
// argument) as a single word, for nested $-expansion support.
func lexWordLiteral(text string) ([]token.WordPart, error) {
	toks, err := lexer.Lex(text)
	if err != nil {
		return nil, err
	}
	for _, t := range toks {
		if t.Kind == token.Word {
			return t.Parts, nil
		}
	}
	return nil, nil
}

// splitFields implements step 6: word splitting on IFS across unquoted
// segment text, with quoted segments and hard breaks (from $@) never
// merged across a split boundary.
func splitFields(segs []segment, s *state.State) []string {
	ifs := s.Env["IFS"]
	if _, ok := s.Env["IFS"]; !ok {
		ifs = " \t\n"
	}
	ifsSet := map[rune]bool{}
	for _, r := range ifs {
		ifsSet[r] = true
	}

	var fields []string
	var cur strings.Builder
	haveContent := false

	flush := func() {
		if haveContent {
			fields = append(fields, cur.String())
			cur.Reset()
			haveContent = false
		}
	}

	for _, seg := range segs {
		if seg.quote != token.QuoteNone {
			cur.WriteString(seg.text)
			haveContent = true
		} else if len(ifsSet) == 0 {
			cur.WriteString(seg.text)
			if seg.text != "" {
				haveContent = true
			}
		} else {
			for _, r := range seg.text {
				if ifsSet[r] {
					flush()
					continue
				}
				cur.WriteRune(r)
				haveContent = true
			}
		}
		if seg.hardBreak {
			flush()
		}
	}
	flush()
	return fields
}

// globExpand implements step 7: pathname expansion against v rooted at
// s.Cwd. Patterns with no match are preserved literally (nullglob OFF).
// Results are rendered in the same absolute/relative style the user
// typed: "*.txt" expands to "a.txt", not "/cwd/a.txt".
func globExpand(field string, v *vfs.VFS, s *state.State) []string {
	if !glob.HasMeta(field) {
		return []string{field}
	}
	isAbs := strings.HasPrefix(field, "/")
	segs := strings.Split(strings.TrimPrefix(field, "/"), "/")

	type candidate struct{ abs, disp string }
	base := candidate{abs: "/", disp: "/"}
	if !isAbs {
		base = candidate{abs: s.Cwd, disp: ""}
	}
	cands := []candidate{base}

	join := func(disp, name string) string {
		if disp == "" {
			return name
		}
		if disp == "/" {
			return "/" + name
		}
		return disp + "/" + name
	}

	for _, seg := range segs {
		if seg == "" {
			continue
		}
		var next []candidate
		for _, c := range cands {
			if !glob.HasMeta(seg) {
				absCandidate := vfs.Resolve(c.abs, seg)
				if v.Exists(absCandidate) {
					next = append(next, candidate{abs: absCandidate, disp: join(c.disp, seg)})
				}
				continue
			}
			ents, err := v.Readdir(c.abs)
			if err != nil {
				continue
			}
			for _, e := range ents {
				if strings.HasPrefix(e.Name, ".") && !strings.HasPrefix(seg, ".") {
					continue
				}
				if glob.Match(seg, e.Name) {
					next = append(next, candidate{abs: vfs.Resolve(c.abs, e.Name), disp: join(c.disp, e.Name)})
				}
			}
		}
		cands = next
	}
	if len(cands) == 0 {
		return []string{field}
	}
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.disp)
	}
	return out
}
