package expand

import (
	"strconv"
	"strings"

	"github.com/lifo-sh/lifo-sh/internal/glob"
	"github.com/lifo-sh/lifo-sh/shell/state"
)

// paramExpr is a parsed ${NAME[OP[ARG]]} or $NAME expansion
// (spec.md §4.9 "Parameter expansion").
type paramExpr struct {
	name     string
	op       string // "", ":-", ":=", ":+", ":?", ":", "#", "##", "%", "%%", "/", "//"
	arg      string
	lengthOf bool
}

func isIdentByte(r rune, first bool) bool {
	if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return true
	}
	if !first && r >= '0' && r <= '9' {
		return true
	}
	return false
}

// splitName splits the leading parameter name (bare identifier, run of
// digits, or single special-parameter character) from the trailing
// operator text.
func splitName(s string) (string, string) {
	rs := []rune(s)
	if len(rs) == 0 {
		return "", ""
	}
	if rs[0] >= '0' && rs[0] <= '9' {
		i := 0
		for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
			i++
		}
		return string(rs[:i]), string(rs[i:])
	}
	switch rs[0] {
	case '?', '@', '*', '$', '!', '-':
		return string(rs[0]), string(rs[1:])
	}
	if isIdentByte(rs[0], true) {
		i := 1
		for i < len(rs) && isIdentByte(rs[i], false) {
			i++
		}
		return string(rs[:i]), string(rs[i:])
	}
	return s, ""
}

func isBareName(s string) bool {
	if s == "" {
		return false
	}
	name, rest := splitName(s)
	return name != "" && rest == ""
}

func parseParam(inner string) paramExpr {
	if strings.HasPrefix(inner, "#") && len(inner) > 1 && isBareName(inner[1:]) {
		return paramExpr{name: inner[1:], lengthOf: true}
	}
	name, rest := splitName(inner)
	if rest == "" {
		return paramExpr{name: name}
	}
	switch {
	case strings.HasPrefix(rest, ":-"):
		return paramExpr{name: name, op: ":-", arg: rest[2:]}
	case strings.HasPrefix(rest, ":="):
		return paramExpr{name: name, op: ":=", arg: rest[2:]}
	case strings.HasPrefix(rest, ":+"):
		return paramExpr{name: name, op: ":+", arg: rest[2:]}
	case strings.HasPrefix(rest, ":?"):
		return paramExpr{name: name, op: ":?", arg: rest[2:]}
	case strings.HasPrefix(rest, "##"):
		return paramExpr{name: name, op: "##", arg: rest[2:]}
	case strings.HasPrefix(rest, "%%"):
		return paramExpr{name: name, op: "%%", arg: rest[2:]}
	case strings.HasPrefix(rest, "//"):
		return paramExpr{name: name, op: "//", arg: rest[2:]}
	case strings.HasPrefix(rest, "#"):
		return paramExpr{name: name, op: "#", arg: rest[1:]}
	case strings.HasPrefix(rest, "%"):
		return paramExpr{name: name, op: "%", arg: rest[1:]}
	case strings.HasPrefix(rest, "/"):
		return paramExpr{name: name, op: "/", arg: rest[1:]}
	case strings.HasPrefix(rest, ":"):
		return paramExpr{name: name, op: ":", arg: rest[1:]}
	}
	return paramExpr{name: name}
}

// paramValue is the resolved value of a parameter before operator
// application; isAt marks $@, whose list elements become independent
// fields rather than one joined string (spec.md §4.9).
type paramValue struct {
	isAt bool
	list []string
	one  string
}

func ifsFirst(s *state.State) string {
	ifs, ok := s.Env["IFS"]
	if !ok {
		ifs = " \t\n"
	}
	if ifs == "" {
		return ""
	}
	return string([]rune(ifs)[0])
}

func lookupParam(name string, s *state.State) paramValue {
	switch name {
	case "@":
		return paramValue{isAt: true, list: append([]string{}, s.PositionalParams...)}
	case "*":
		return paramValue{one: strings.Join(s.PositionalParams, ifsFirst(s))}
	case "#":
		return paramValue{one: strconv.Itoa(len(s.PositionalParams))}
	case "?":
		return paramValue{one: strconv.Itoa(s.LastExitCode)}
	case "$":
		return paramValue{one: strconv.Itoa(s.ShellPID)}
	case "!":
		return paramValue{one: strconv.Itoa(s.LastBgPID)}
	case "0":
		return paramValue{one: s.ShellName}
	case "-":
		return paramValue{one: ""}
	}
	if n, err := strconv.Atoi(name); err == nil {
		if n >= 1 && n <= len(s.PositionalParams) {
			return paramValue{one: s.PositionalParams[n-1]}
		}
		return paramValue{one: ""}
	}
	return paramValue{one: s.Env[name]}
}

func isSet(name string, s *state.State) bool {
	_, ok := s.Env[name]
	if ok {
		return true
	}
	switch name {
	case "@", "*", "#", "?", "$", "!", "0":
		return true
	}
	return false
}

// expandParam resolves one ${...}/$name expansion against s, returning
// either a single value or, for $@, a list of independent field values.
func expandParam(raw string, s *state.State, run Runner) (paramValue, error) {
	pe := parseParam(raw)
	val := lookupParam(pe.name, s)

	if pe.lengthOf {
		if val.isAt {
			return paramValue{one: strconv.Itoa(len(val.list))}, nil
		}
		return paramValue{one: strconv.Itoa(len([]rune(val.one)))}, nil
	}
	if val.isAt || pe.op == "" {
		return val, nil
	}

	set := isSet(pe.name, s)
	empty := !set || val.one == ""
	switch pe.op {
	case ":-":
		if empty {
			arg, err := expandPlainText(pe.arg, s, run)
			return paramValue{one: arg}, err
		}
		return val, nil
	case ":=":
		if empty {
			arg, err := expandPlainText(pe.arg, s, run)
			if err != nil {
				return paramValue{}, err
			}
			s.Env[pe.name] = arg
			return paramValue{one: arg}, nil
		}
		return val, nil
	case ":+":
		if empty {
			return paramValue{one: ""}, nil
		}
		arg, err := expandPlainText(pe.arg, s, run)
		return paramValue{one: arg}, err
	case ":?":
		if empty {
			msg := pe.arg
			if msg == "" {
				msg = "parameter not set"
			}
			return paramValue{}, &ParamError{Name: pe.name, Message: msg}
		}
		return val, nil
	case ":":
		return paramValue{one: substring(val.one, pe.arg)}, nil
	case "#", "##":
		return paramValue{one: stripPrefix(val.one, pe.arg, pe.op == "##")}, nil
	case "%", "%%":
		return paramValue{one: stripSuffix(val.one, pe.arg, pe.op == "%%")}, nil
	case "/", "//":
		return paramValue{one: replacePattern(val.one, pe.arg, pe.op == "//")}, nil
	}
	return val, nil
}

// expandPlainText expands a ${VAR:-default}-style argument, itself
// subject to $ expansions but not to word splitting/globbing.
func expandPlainText(text string, s *state.State, run Runner) (string, error) {
	if !strings.ContainsRune(text, '$') {
		return text, nil
	}
	toks, err := lexWordLiteral(text)
	if err != nil {
		return text, nil
	}
	segs, err := expandParts(toks, s, run)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, seg := range segs {
		sb.WriteString(seg.text)
	}
	return sb.String(), nil
}

func substring(value, arg string) string {
	offStr, lenStr, hasLen := cutFirst(arg, ':')
	off, err := strconv.Atoi(strings.TrimSpace(offStr))
	if err != nil {
		return ""
	}
	rs := []rune(value)
	if off < 0 {
		off += len(rs)
	}
	if off < 0 {
		off = 0
	}
	if off > len(rs) {
		off = len(rs)
	}
	end := len(rs)
	if hasLen {
		n, err := strconv.Atoi(strings.TrimSpace(lenStr))
		if err == nil {
			end = off + n
			if end > len(rs) {
				end = len(rs)
			}
			if end < off {
				end = off
			}
		}
	}
	return string(rs[off:end])
}

func cutFirst(s string, sep byte) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func stripPrefix(value, pattern string, longest bool) string {
	rs := []rune(value)
	if longest {
		for i := len(rs); i >= 0; i-- {
			if glob.Match(pattern, string(rs[:i])) {
				return string(rs[i:])
			}
		}
	} else {
		for i := 0; i <= len(rs); i++ {
			if glob.Match(pattern, string(rs[:i])) {
				return string(rs[i:])
			}
		}
	}
	return value
}

func stripSuffix(value, pattern string, longest bool) string {
	rs := []rune(value)
	if longest {
		for i := 0; i <= len(rs); i++ {
			if glob.Match(pattern, string(rs[i:])) {
				return string(rs[:i])
			}
		}
	} else {
		for i := len(rs); i >= 0; i-- {
			if glob.Match(pattern, string(rs[i:])) {
				return string(rs[:i])
			}
		}
	}
	return value
}

// replacePattern implements ${VAR/pat/rep} / ${VAR//pat/rep}. pat ends
// at the first '/' of arg. A pat without glob metacharacters is matched
// as a literal substring; one with metacharacters is matched by
// replaceGlob (longest glob match at each position).
func replacePattern(value, arg string, all bool) string {
	pat, rep, _ := cutFirst(arg, '/')
	if pat == "" {
		return value
	}
	if !glob.HasMeta(pat) {
		if all {
			return strings.ReplaceAll(value, pat, rep)
		}
		return strings.Replace(value, pat, rep, 1)
	}
	return replaceGlob(value, pat, rep, all)
}

func replaceGlob(value, pat, rep string, all bool) string {
	rs := []rune(value)
	var out strings.Builder
	i := 0
	replaced := false
	for i < len(rs) {
		matched := -1
		for j := len(rs); j > i; j-- {
			if glob.Match(pat, string(rs[i:j])) {
				matched = j
				break
			}
		}
		if matched > i && (all || !replaced) {
			out.WriteString(rep)
			i = matched
			replaced = true
			continue
		}
		out.WriteRune(rs[i])
		i++
	}
	return out.String()
}

// ParamError is returned for ${VAR:?msg} on an unset/empty parameter.
type ParamError struct {
	Name    string
	Message string
}

func (e *ParamError) Error() string { return e.Name + ": " + e.Message }
