package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifo-sh/lifo-sh/shell/ast"
	"github.com/lifo-sh/lifo-sh/shell/parser"
	"github.com/lifo-sh/lifo-sh/shell/state"
	"github.com/lifo-sh/lifo-sh/vfs"
)

func noRun(string) (string, error) { return "", nil }

func wordsOf(t *testing.T, src string) []ast.Word {
	t.Helper()
	script, err := parser.Parse(src + "\n")
	require.NoError(t, err)
	sc := script.Lists[0].Entries[0].Pipeline.Commands[0].Simple
	return sc.Words
}

func TestWordsLiteralPassthrough(t *testing.T) {
	s := state.New()
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, "echo hello"), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "hello"}, out)
}

func TestWordsParamExpansionDefault(t *testing.T) {
	s := state.New()
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, `echo ${MISSING:-fallback}`), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "fallback"}, out)
}

func TestWordsParamExpansionSet(t *testing.T) {
	s := state.New()
	s.Env["NAME"] = "world"
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, `echo hello $NAME`), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "hello", "world"}, out)
}

func TestWordsArithmeticExpansion(t *testing.T) {
	s := state.New()
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, `echo $((2 + 3))`), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "5"}, out)
}

func TestWordsIFSSplitsUnquotedExpansion(t *testing.T) {
	s := state.New()
	s.Env["LIST"] = "a b c"
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, `echo $LIST`), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "a", "b", "c"}, out)
}

func TestWordsQuotedExpansionNotSplit(t *testing.T) {
	s := state.New()
	s.Env["LIST"] = "a b c"
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, `echo "$LIST"`), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "a b c"}, out)
}

func TestWordsAtExpandsToIndependentFields(t *testing.T) {
	s := state.New()
	s.PositionalParams = []string{"one", "two three"}
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, `echo "$@"`), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "one", "two three"}, out)
}

func TestWordsCommandSubstitution(t *testing.T) {
	s := state.New()
	v := vfs.New(nil, nil)
	run := func(src string) (string, error) { return "captured\n", nil }
	out, err := Words(wordsOf(t, "echo $(date)"), s, v, run)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "captured"}, out)
}

func TestWordsBraceExpansion(t *testing.T) {
	s := state.New()
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, "echo a{b,c}d"), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "abd", "acd"}, out)
}

func TestWordsTildeExpansion(t *testing.T) {
	s := state.New()
	s.Env["HOME"] = "/home/lifo"
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, "echo ~/file"), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "/home/lifo/file"}, out)
}

func TestWordsGlobExpandsAgainstVFS(t *testing.T) {
	s := state.New()
	s.Cwd = "/"
	v := vfs.New(nil, nil)
	require.NoError(t, v.WriteFile("/a.txt", []byte("x")))
	require.NoError(t, v.WriteFile("/b.txt", []byte("x")))
	out, err := Words(wordsOf(t, "echo *.txt"), s, v, noRun)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"echo", "a.txt", "b.txt"}, out)
}

func TestWordsGlobNoMatchPreservesLiteral(t *testing.T) {
	s := state.New()
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, "echo *.missing"), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "*.missing"}, out)
}

func TestAssignmentValueBypassesSplitting(t *testing.T) {
	s := state.New()
	s.Env["X"] = "a b"
	words := wordsOf(t, `FOO=$X true`)
	script, err := parser.Parse("FOO=$X true\n")
	require.NoError(t, err)
	_ = words
	sc := script.Lists[0].Entries[0].Pipeline.Commands[0].Simple
	val, err := AssignmentValue(sc.Assignments[0].Value, s, noRun)
	require.NoError(t, err)
	assert.Equal(t, "a b", val)
}

func TestParamLengthOperator(t *testing.T) {
	s := state.New()
	s.Env["X"] = "hello"
	v := vfs.New(nil, nil)
	out, err := Words(wordsOf(t, `echo ${#X}`), s, v, noRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "5"}, out)
}

func TestParamColonQuestionErrorsWhenUnset(t *testing.T) {
	s := state.New()
	v := vfs.New(nil, nil)
	_, err := Words(wordsOf(t, `echo ${MISSING:?required}`), s, v, noRun)
	require.Error(t, err)
	var pe *ParamError
	require.ErrorAs(t, err, &pe)
}
