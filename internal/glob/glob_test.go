package glob_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lifo-sh/lifo-sh/internal/glob"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"*.txt", "a.txt", true},
		{"*.txt", "a.log", false},
		{"a?c", "abc", true},
		{"a?c", "ac", false},
		{"[abc].txt", "b.txt", true},
		{"[!abc].txt", "b.txt", false},
		{"[a-z].txt", "m.txt", true},
		{"*", "a/b", false},
		{"*", "ab", true},
		{"a/*.txt", "a/b.txt", true},
		{"a/*.txt", "a/b/c.txt", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, glob.Match(c.pattern, c.name), "pattern=%q name=%q", c.pattern, c.name)
	}
}

func TestHasMeta(t *testing.T) {
	assert.True(t, glob.HasMeta("*.txt"))
	assert.True(t, glob.HasMeta("a?c"))
	assert.True(t, glob.HasMeta("[ab]"))
	assert.False(t, glob.HasMeta("plain"))
}
