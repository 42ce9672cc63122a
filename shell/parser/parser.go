// Package parser implements the recursive-descent grammar from
// spec.md §4.8, turning a lexer token stream into an ast.Script.
package parser

import (
	"fmt"

	"github.com/lifo-sh/lifo-sh/shell/ast"
	"github.com/lifo-sh/lifo-sh/shell/lexer"
	"github.com/lifo-sh/lifo-sh/shell/token"
)

// ParseError reports a grammar violation (spec.md §4.8).
type ParseError struct {
	Pos      token.Position
	Expected string
	Got      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: expected %s, got %s", e.Pos.Line, e.Pos.Col, e.Expected, e.Got)
}

// Parse lexes and parses src into a Script.
func Parse(src string) (*ast.Script, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses an already-lexed token stream.
func ParseTokens(toks []token.Token) (*ast.Script, error) {
	p := &parser{toks: toks}
	return p.parseScript()
}

type parser struct {
	toks []token.Token
	pos  int
}

func (p *parser) peek() token.Token   { return p.toks[p.pos] }
func (p *parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errorf(expected string) error {
	return &ParseError{Pos: p.peek().Pos, Expected: expected, Got: describe(p.peek())}
}

func describe(t token.Token) string {
	if t.Kind == token.Word {
		if txt, ok := literalText(t); ok {
			return fmt.Sprintf("word %q", txt)
		}
		return "word"
	}
	return t.Kind.String()
}

// literalText returns a Word token's text when it consists solely of a
// single unquoted literal part (used to recognise reserved words).
func literalText(t token.Token) (string, bool) {
	if t.Kind != token.Word || len(t.Parts) != 1 {
		return "", false
	}
	part := t.Parts[0]
	if part.Kind != token.PartLiteral || part.Quote != token.QuoteNone {
		return "", false
	}
	return part.Text, true
}

func (p *parser) atKeyword(kw string) bool {
	txt, ok := literalText(p.peek())
	return ok && txt == kw
}

func (p *parser) skipNewlines() {
	for p.peek().Kind == token.Newline {
		p.advance()
	}
}

func (p *parser) skipSeparators() {
	for p.peek().Kind == token.Newline || p.peek().Kind == token.Semi {
		p.advance()
	}
}

// parseScript: Script := { List (';' | '&' | newline) }
func (p *parser) parseScript() (*ast.Script, error) {
	script := &ast.Script{}
	p.skipNewlines()
	for p.peek().Kind != token.EOF {
		list, err := p.parseList()
		if err != nil {
			return nil, err
		}
		switch p.peek().Kind {
		case token.Amp:
			list.Background = true
			p.advance()
		case token.Semi:
			p.advance()
		case token.Newline:
			p.advance()
		}
		script.Lists = append(script.Lists, list)
		p.skipNewlines()
	}
	return script, nil
}

// parseList: List := Pipeline { ('&&' | '||') Pipeline }
func (p *parser) parseList() (ast.List, error) {
	var list ast.List
	pipe, err := p.parsePipeline()
	if err != nil {
		return list, err
	}
	list.Entries = append(list.Entries, ast.ListEntry{Pipeline: pipe})
	for {
		var conn ast.Connector
		switch p.peek().Kind {
		case token.And:
			conn = ast.ConnAnd
		case token.Or:
			conn = ast.ConnOr
		default:
			return list, nil
		}
		p.advance()
		p.skipNewlines()
		next, err := p.parsePipeline()
		if err != nil {
			return list, err
		}
		list.Entries[len(list.Entries)-1].Connector = conn
		list.Entries = append(list.Entries, ast.ListEntry{Pipeline: next})
	}
}

// parsePipeline: Pipeline := ['!'] Command { '|' Command }
func (p *parser) parsePipeline() (ast.Pipeline, error) {
	var pipe ast.Pipeline
	if p.atKeyword("!") {
		pipe.Negated = true
		p.advance()
	}
	cmd, err := p.parseCommand()
	if err != nil {
		return pipe, err
	}
	pipe.Commands = append(pipe.Commands, cmd)
	for p.peek().Kind == token.Pipe {
		p.advance()
		p.skipNewlines()
		cmd, err := p.parseCommand()
		if err != nil {
			return pipe, err
		}
		pipe.Commands = append(pipe.Commands, cmd)
	}
	return pipe, nil
}

// parseCommand dispatches to the compound-command variant indicated by
// the next reserved word, a function definition, or a SimpleCommand.
func (p *parser) parseCommand() (*ast.CompoundCommand, error) {
	var cc *ast.CompoundCommand
	var err error
	switch {
	case p.atKeyword("if"):
		cc, err = p.parseIf()
	case p.atKeyword("for"):
		cc, err = p.parseFor()
	case p.atKeyword("while"):
		cc, err = p.parseLoop(ast.LoopWhile)
	case p.atKeyword("until"):
		cc, err = p.parseLoop(ast.LoopUntil)
	case p.atKeyword("case"):
		cc, err = p.parseCase()
	case p.atKeyword("{"):
		cc, err = p.parseGroup()
	case p.isFunctionDefStart():
		cc, err = p.parseFunctionDef()
	default:
		cc, err = p.parseSimpleCommandNode()
	}
	if err != nil {
		return nil, err
	}
	redirs, err := p.parseTrailingRedirections()
	if err != nil {
		return nil, err
	}
	cc.Redirections = append(cc.Redirections, redirs...)
	return cc, nil
}

func (p *parser) isFunctionDefStart() bool {
	name, ok := literalText(p.peek())
	if !ok || isReserved(name) {
		return false
	}
	return p.peekAt(1).Kind == token.LParen && p.peekAt(2).Kind == token.RParen
}

func isReserved(w string) bool {
	switch w {
	case "if", "then", "elif", "else", "fi", "for", "in", "do", "done",
		"while", "until", "case", "esac", "{", "}", "!":
		return true
	}
	return false
}

func (p *parser) parseFunctionDef() (*ast.CompoundCommand, error) {
	name, _ := literalText(p.advance())
	p.advance() // (
	p.advance() // )
	p.skipNewlines()
	body, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	return &ast.CompoundCommand{Kind: ast.KindFunctionDef, FunctionDef: &ast.FunctionDef{Name: name, Body: body}}, nil
}

func (p *parser) parseGroup() (*ast.CompoundCommand, error) {
	p.advance() // {
	p.skipSeparators()
	body, err := p.parseListUntilKeyword("}")
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("}") {
		return nil, p.errorf("}")
	}
	p.advance()
	return &ast.CompoundCommand{Kind: ast.KindGroup, Group: &ast.Group{Body: body}}, nil
}

// parseListUntilKeyword parses List entries (spec.md §4.8's List
// production) until the upcoming token is the named reserved word,
// separated by ';'/'&'/newline (spec.md §9 simplification: a separator
// is required immediately before a closing/clause keyword).
func (p *parser) parseListUntilKeyword(kw string) (ast.List, error) {
	var out ast.List
	p.skipSeparators()
	for !p.atKeyword(kw) && p.peek().Kind != token.EOF {
		list, err := p.parseList()
		if err != nil {
			return out, err
		}
		if p.peek().Kind == token.Amp {
			list.Background = true
			p.advance()
		}
		out.Entries = append(out.Entries, list.Entries...)
		if p.peek().Kind == token.Semi || p.peek().Kind == token.Newline {
			p.skipSeparators()
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) parseIf() (*ast.CompoundCommand, error) {
	p.advance() // if
	clause := &ast.IfClause{}
	for {
		cond, err := p.parseListUntilKeyword("then")
		if err != nil {
			return nil, err
		}
		if !p.atKeyword("then") {
			return nil, p.errorf("then")
		}
		p.advance()
		p.skipSeparators()
		body, err := p.parseListUntilKeywordAny("elif", "else", "fi")
		if err != nil {
			return nil, err
		}
		condCopy := cond
		clause.Branches = append(clause.Branches, ast.IfBranch{Condition: &condCopy, Body: body})
		if p.atKeyword("elif") {
			p.advance()
			continue
		}
		break
	}
	if p.atKeyword("else") {
		p.advance()
		p.skipSeparators()
		body, err := p.parseListUntilKeyword("fi")
		if err != nil {
			return nil, err
		}
		clause.Branches = append(clause.Branches, ast.IfBranch{Condition: nil, Body: body})
	}
	if !p.atKeyword("fi") {
		return nil, p.errorf("fi")
	}
	p.advance()
	return &ast.CompoundCommand{Kind: ast.KindIf, If: clause}, nil
}

func (p *parser) parseListUntilKeywordAny(kws ...string) (ast.List, error) {
	var out ast.List
	p.skipSeparators()
	for !p.atAnyKeyword(kws...) && p.peek().Kind != token.EOF {
		list, err := p.parseList()
		if err != nil {
			return out, err
		}
		out.Entries = append(out.Entries, list.Entries...)
		if p.peek().Kind == token.Semi || p.peek().Kind == token.Newline {
			p.skipSeparators()
			continue
		}
		break
	}
	return out, nil
}

func (p *parser) atAnyKeyword(kws ...string) bool {
	for _, kw := range kws {
		if p.atKeyword(kw) {
			return true
		}
	}
	return false
}

func (p *parser) parseFor() (*ast.CompoundCommand, error) {
	p.advance() // for
	name, ok := literalText(p.peek())
	if !ok {
		return nil, p.errorf("name")
	}
	p.advance()
	clause := &ast.ForClause{Name: name}
	if p.atKeyword("in") {
		p.advance()
		clause.HasWordsList = true
		for p.peek().Kind == token.Word && !p.atKeyword("do") {
			w, err := p.parseWordToken()
			if err != nil {
				return nil, err
			}
			clause.Words = append(clause.Words, w)
		}
		if p.peek().Kind == token.Semi || p.peek().Kind == token.Newline {
			p.skipSeparators()
		}
	} else {
		p.skipSeparators()
	}
	if !p.atKeyword("do") {
		return nil, p.errorf("do")
	}
	p.advance()
	p.skipSeparators()
	body, err := p.parseListUntilKeyword("done")
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("done") {
		return nil, p.errorf("done")
	}
	p.advance()
	clause.Body = body
	return &ast.CompoundCommand{Kind: ast.KindFor, For: clause}, nil
}

func (p *parser) parseLoop(kind ast.LoopKind) (*ast.CompoundCommand, error) {
	p.advance() // while/until
	cond, err := p.parseListUntilKeyword("do")
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("do") {
		return nil, p.errorf("do")
	}
	p.advance()
	p.skipSeparators()
	body, err := p.parseListUntilKeyword("done")
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("done") {
		return nil, p.errorf("done")
	}
	p.advance()
	return &ast.CompoundCommand{Kind: ast.KindLoop, Loop: &ast.LoopClause{Kind: kind, Condition: cond, Body: body}}, nil
}

func (p *parser) parseCase() (*ast.CompoundCommand, error) {
	p.advance() // case
	subject, err := p.parseWordToken()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("in") {
		return nil, p.errorf("in")
	}
	p.advance()
	p.skipSeparators()
	clause := &ast.CaseClause{Subject: subject}
	for !p.atKeyword("esac") && p.peek().Kind != token.EOF {
		if p.peek().Kind == token.LParen {
			p.advance()
		}
		var item ast.CaseItem
		for {
			w, err := p.parseWordToken()
			if err != nil {
				return nil, err
			}
			item.Patterns = append(item.Patterns, w)
			if p.peek().Kind == token.Pipe {
				p.advance()
				continue
			}
			break
		}
		if p.peek().Kind != token.RParen {
			return nil, p.errorf(")")
		}
		p.advance()
		p.skipSeparators()
		body, err := p.parseListUntilKeywordAny("esac")
		if err != nil {
			return nil, err
		}
		// body parsing above also stops at ';;' boundary via parseList's
		// own terminator checks, since ';;' is not consumed by parseList.
		item.Body = body
		clause.Items = append(clause.Items, item)
		if p.peek().Kind == token.DoubleSemi {
			p.advance()
			p.skipSeparators()
			continue
		}
		break
	}
	if !p.atKeyword("esac") {
		return nil, p.errorf("esac")
	}
	p.advance()
	return &ast.CompoundCommand{Kind: ast.KindCase, Case: clause}, nil
}

func (p *parser) parseSimpleCommandNode() (*ast.CompoundCommand, error) {
	sc, err := p.parseSimpleCommand()
	if err != nil {
		return nil, err
	}
	return &ast.CompoundCommand{Kind: ast.KindSimple, Simple: sc}, nil
}

func (p *parser) parseWordToken() (ast.Word, error) {
	if p.peek().Kind != token.Word {
		return ast.Word{}, p.errorf("word")
	}
	t := p.advance()
	return ast.Word{Parts: t.Parts}, nil
}

// isAssignmentWord reports whether a Word token's first part is a
// literal of the form NAME= (spec.md §4.7 "VAR=value ... lexed as a
// single Word").
func isAssignmentWord(t token.Token) (string, bool) {
	if len(t.Parts) == 0 || t.Parts[0].Kind != token.PartLiteral || t.Parts[0].Quote != token.QuoteNone {
		return "", false
	}
	text := t.Parts[0].Text
	eq := -1
	for i, r := range text {
		if r == '=' {
			eq = i
			break
		}
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9')) {
			return "", false
		}
	}
	if eq <= 0 {
		return "", false
	}
	return text[:eq], true
}

// parseSimpleCommand: SimpleCommand := {Assignment} {Word|Redirection}
func (p *parser) parseSimpleCommand() (*ast.SimpleCommand, error) {
	sc := &ast.SimpleCommand{}
	// leading assignments
	for p.peek().Kind == token.Word {
		name, ok := isAssignmentWord(p.peek())
		if !ok {
			break
		}
		t := p.advance()
		rest := t.Parts[0].Text[len(name)+1:]
		parts := append([]token.WordPart{{Kind: token.PartLiteral, Text: rest, Quote: token.QuoteNone}}, t.Parts[1:]...)
		if rest == "" {
			parts = t.Parts[1:]
		}
		sc.Assignments = append(sc.Assignments, ast.Assignment{Name: name, Value: ast.Word{Parts: parts}})
	}
	for {
		switch p.peek().Kind {
		case token.Word:
			w, err := p.parseWordToken()
			if err != nil {
				return nil, err
			}
			sc.Words = append(sc.Words, w)
		case token.RedirectOut, token.RedirectAppend, token.RedirectIn,
			token.RedirectErr, token.RedirectErrAppend, token.RedirectAll:
			r, err := p.parseRedirection()
			if err != nil {
				return nil, err
			}
			sc.Redirections = append(sc.Redirections, r)
		case token.Heredoc, token.HeredocStrip:
			t := p.advance()
			op := ast.RedirHeredoc
			if t.Kind == token.HeredocStrip {
				op = ast.RedirHeredocStrip
			}
			sc.Redirections = append(sc.Redirections, ast.Redirection{
				Operator:    op,
				Target:      ast.Word{Parts: []token.WordPart{{Kind: token.PartLiteral, Text: t.Raw}}},
				HeredocBody: t.Body,
			})
		default:
			return sc, nil
		}
	}
}

func (p *parser) parseRedirection() (ast.Redirection, error) {
	t := p.advance()
	var op ast.RedirOp
	switch t.Kind {
	case token.RedirectOut:
		op = ast.RedirOut
	case token.RedirectAppend:
		op = ast.RedirAppend
	case token.RedirectIn:
		op = ast.RedirIn
	case token.RedirectErr:
		op = ast.RedirErr
	case token.RedirectErrAppend:
		op = ast.RedirErrAppend
	case token.RedirectAll:
		op = ast.RedirAll
	}
	target, err := p.parseWordToken()
	if err != nil {
		return ast.Redirection{}, err
	}
	return ast.Redirection{Operator: op, Target: target}, nil
}

// parseTrailingRedirections consumes any redirections immediately
// following a compound command (spec.md §4.8).
func (p *parser) parseTrailingRedirections() ([]ast.Redirection, error) {
	var out []ast.Redirection
	for {
		switch p.peek().Kind {
		case token.RedirectOut, token.RedirectAppend, token.RedirectIn,
			token.RedirectErr, token.RedirectErrAppend, token.RedirectAll:
			r, err := p.parseRedirection()
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		default:
			return out, nil
		}
	}
}
