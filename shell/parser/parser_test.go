package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifo-sh/lifo-sh/shell/ast"
)

func TestParseSimpleCommand(t *testing.T) {
	script, err := Parse("echo hi there\n")
	require.NoError(t, err)
	require.Len(t, script.Lists, 1)
	entry := script.Lists[0].Entries[0]
	require.Len(t, entry.Pipeline.Commands, 1)
	cmd := entry.Pipeline.Commands[0]
	require.Equal(t, ast.KindSimple, cmd.Kind)
	require.Len(t, cmd.Simple.Words, 3)
}

func TestParsePipeline(t *testing.T) {
	script, err := Parse("a | b | c\n")
	require.NoError(t, err)
	pipe := script.Lists[0].Entries[0].Pipeline
	assert.Len(t, pipe.Commands, 3)
}

func TestParseAndOrList(t *testing.T) {
	script, err := Parse("a && b || c\n")
	require.NoError(t, err)
	entries := script.Lists[0].Entries
	require.Len(t, entries, 3)
	assert.Equal(t, ast.ConnAnd, entries[0].Connector)
	assert.Equal(t, ast.ConnOr, entries[1].Connector)
}

func TestParseAssignmentWord(t *testing.T) {
	script, err := Parse("FOO=bar echo hi\n")
	require.NoError(t, err)
	sc := script.Lists[0].Entries[0].Pipeline.Commands[0].Simple
	require.Len(t, sc.Assignments, 1)
	assert.Equal(t, "FOO", sc.Assignments[0].Name)
	assert.Len(t, sc.Words, 2)
}

func TestParseIfRequiresSeparatorBeforeThen(t *testing.T) {
	_, err := Parse("if true then echo hi; fi\n")
	require.Error(t, err)
}

func TestParseIfWithSeparator(t *testing.T) {
	script, err := Parse("if true; then echo hi; fi\n")
	require.NoError(t, err)
	cmd := script.Lists[0].Entries[0].Pipeline.Commands[0]
	require.Equal(t, ast.KindIf, cmd.Kind)
	require.Len(t, cmd.If.Branches, 1)
}

func TestParseIfElse(t *testing.T) {
	script, err := Parse("if false; then echo a; else echo b; fi\n")
	require.NoError(t, err)
	cmd := script.Lists[0].Entries[0].Pipeline.Commands[0]
	require.Len(t, cmd.If.Branches, 2)
	assert.Nil(t, cmd.If.Branches[1].Condition)
}

func TestParseForLoop(t *testing.T) {
	script, err := Parse("for x in a b c; do echo $x; done\n")
	require.NoError(t, err)
	cmd := script.Lists[0].Entries[0].Pipeline.Commands[0]
	require.Equal(t, ast.KindFor, cmd.Kind)
	assert.Equal(t, "x", cmd.For.Name)
	assert.True(t, cmd.For.HasWordsList)
	assert.Len(t, cmd.For.Words, 3)
}

func TestParseWhileLoop(t *testing.T) {
	script, err := Parse("while true; do echo hi; done\n")
	require.NoError(t, err)
	cmd := script.Lists[0].Entries[0].Pipeline.Commands[0]
	require.Equal(t, ast.KindLoop, cmd.Kind)
	assert.Equal(t, ast.LoopWhile, cmd.Loop.Kind)
}

func TestParseCase(t *testing.T) {
	script, err := Parse("case $x in a) echo one ;; b|c) echo two ;; esac\n")
	require.NoError(t, err)
	cmd := script.Lists[0].Entries[0].Pipeline.Commands[0]
	require.Equal(t, ast.KindCase, cmd.Kind)
	require.Len(t, cmd.Case.Items, 2)
	assert.Len(t, cmd.Case.Items[1].Patterns, 2)
}

func TestParseFunctionDef(t *testing.T) {
	script, err := Parse("greet() { echo hi; }\n")
	require.NoError(t, err)
	cmd := script.Lists[0].Entries[0].Pipeline.Commands[0]
	require.Equal(t, ast.KindFunctionDef, cmd.Kind)
	assert.Equal(t, "greet", cmd.FunctionDef.Name)
}

func TestParseBackgroundList(t *testing.T) {
	script, err := Parse("sleep 1 &\n")
	require.NoError(t, err)
	assert.True(t, script.Lists[0].Background)
}

func TestParseRedirection(t *testing.T) {
	script, err := Parse("echo hi > out.txt\n")
	require.NoError(t, err)
	sc := script.Lists[0].Entries[0].Pipeline.Commands[0].Simple
	require.Len(t, sc.Redirections, 1)
	assert.Equal(t, ast.RedirOut, sc.Redirections[0].Operator)
}

func TestParseHeredocBodyFlowsIntoRedirection(t *testing.T) {
	src := "cat <<EOF\nhi\nEOF\n"
	script, err := Parse(src)
	require.NoError(t, err)
	sc := script.Lists[0].Entries[0].Pipeline.Commands[0].Simple
	require.Len(t, sc.Redirections, 1)
	assert.Equal(t, "hi\n", sc.Redirections[0].HeredocBody)
}
