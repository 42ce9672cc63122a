package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifo-sh/lifo-sh/shell/token"
)

func kinds(t []token.Token) []token.Kind {
	out := make([]token.Kind, len(t))
	for i, tok := range t {
		out[i] = tok.Kind
	}
	return out
}

func TestLexSimpleWords(t *testing.T) {
	toks, err := Lex("echo hello world\n")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.Word, token.Word, token.Word, token.Newline, token.EOF}, kinds(toks))
}

func TestLexOperators(t *testing.T) {
	toks, err := Lex("a | b && c || d ; e & f")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Word, token.Pipe, token.Word, token.And, token.Word, token.Or,
		token.Word, token.Semi, token.Word, token.Amp, token.Word, token.EOF,
	}, kinds(toks))
}

func TestLexSingleQuote(t *testing.T) {
	toks, err := Lex(`'a b $x'`)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	require.Len(t, toks[0].Parts, 1)
	assert.Equal(t, "a b $x", toks[0].Parts[0].Text)
	assert.Equal(t, token.QuoteSingle, toks[0].Parts[0].Quote)
}

func TestLexDoubleQuoteWithParam(t *testing.T) {
	toks, err := Lex(`"hi $name!"`)
	require.NoError(t, err)
	parts := toks[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, token.PartLiteral, parts[0].Kind)
	assert.Equal(t, "hi ", parts[0].Text)
	assert.Equal(t, token.PartParam, parts[1].Kind)
	assert.Equal(t, "name", parts[1].Text)
	assert.Equal(t, "!", parts[2].Text)
}

func TestLexUnterminatedSingleQuote(t *testing.T) {
	_, err := Lex(`'unterminated`)
	require.Error(t, err)
	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
}

func TestLexDollarParen(t *testing.T) {
	toks, err := Lex("$(echo hi)")
	require.NoError(t, err)
	require.Len(t, toks[0].Parts, 1)
	assert.Equal(t, token.PartCommandSub, toks[0].Parts[0].Kind)
	assert.Equal(t, "echo hi", toks[0].Parts[0].Text)
}

func TestLexArithmetic(t *testing.T) {
	toks, err := Lex("$((1 + 2))")
	require.NoError(t, err)
	require.Len(t, toks[0].Parts, 1)
	assert.Equal(t, token.PartArithmetic, toks[0].Parts[0].Kind)
	assert.Equal(t, "1 + 2", toks[0].Parts[0].Text)
}

func TestLexHeredocBody(t *testing.T) {
	src := "cat <<EOF\nline one\nline two\nEOF\n"
	toks, err := Lex(src)
	require.NoError(t, err)
	var heredoc *token.Token
	for i := range toks {
		if toks[i].Kind == token.Heredoc {
			heredoc = &toks[i]
		}
	}
	require.NotNil(t, heredoc)
	assert.Equal(t, "EOF", heredoc.Raw)
	assert.Equal(t, "line one\nline two\n", heredoc.Body)
}

func TestLexHeredocStripTabs(t *testing.T) {
	src := "cat <<-EOF\n\t\tindented\nEOF\n"
	toks, err := Lex(src)
	require.NoError(t, err)
	var heredoc *token.Token
	for i := range toks {
		if toks[i].Kind == token.HeredocStrip {
			heredoc = &toks[i]
		}
	}
	require.NotNil(t, heredoc)
	assert.Equal(t, "indented\n", heredoc.Body)
}

func TestLexComment(t *testing.T) {
	toks, err := Lex("echo hi # this is a comment\n")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.Word, token.Word, token.Newline, token.EOF}, kinds(toks))
}

func TestLexANSICEscapes(t *testing.T) {
	toks, err := Lex(`$'a\tb\n'`)
	require.NoError(t, err)
	require.Len(t, toks[0].Parts, 1)
	assert.Equal(t, "a\tb\n", toks[0].Parts[0].Text)
}
