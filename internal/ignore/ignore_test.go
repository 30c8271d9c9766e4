package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, base, rules string) *RuleSet {
	t.Helper()
	rs, err := Parse(base, []byte(rules))
	require.NoError(t, err)
	return rs
}

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	rs := mustParse(t, "", "# comment\n\n*.log\n   \n!keep.log\n")
	assert.Equal(t, 2, rs.Len())
}

func TestParseEmptyRulesAreNeutral(t *testing.T) {
	rs := mustParse(t, "", "# only a comment\n")
	assert.Equal(t, 0, rs.Len())
	assert.Equal(t, Neutral, rs.Match("anything.txt", false))
}

func TestRuleSetMatch(t *testing.T) {
	tests := []struct {
		name    string
		rules   string
		path    string
		isDir   bool
		verdict Verdict
	}{
		{
			name:    "bare name matches at top level",
			rules:   "*.log",
			path:    "debug.log",
			verdict: Ignored,
		},
		{
			name:    "bare name matches at any depth",
			rules:   "*.log",
			path:    "sub/dir/debug.log",
			verdict: Ignored,
		},
		{
			name:    "non-matching path is neutral",
			rules:   "*.log",
			path:    "main.go",
			verdict: Neutral,
		},
		{
			name:    "anchored pattern matches from base",
			rules:   "/build",
			path:    "build",
			isDir:   true,
			verdict: Ignored,
		},
		{
			name:    "anchored pattern does not match nested",
			rules:   "/build",
			path:    "sub/build",
			isDir:   true,
			verdict: Neutral,
		},
		{
			name:    "pattern with internal slash is anchored",
			rules:   "docs/*.md",
			path:    "docs/readme.md",
			verdict: Ignored,
		},
		{
			name:    "pattern with internal slash not matched deeper",
			rules:   "docs/*.md",
			path:    "other/docs/readme.md",
			verdict: Neutral,
		},
		{
			name:    "directory-only pattern matches directory",
			rules:   "vendor/",
			path:    "vendor",
			isDir:   true,
			verdict: Ignored,
		},
		{
			name:    "directory-only pattern skips file",
			rules:   "vendor/",
			path:    "vendor",
			isDir:   false,
			verdict: Neutral,
		},
		{
			name:    "double star spans directories",
			rules:   "a/**/z.txt",
			path:    "a/b/c/z.txt",
			verdict: Ignored,
		},
		{
			name:    "double star matches zero segments",
			rules:   "a/**/z.txt",
			path:    "a/z.txt",
			verdict: Ignored,
		},
		{
			name:    "question mark wildcard",
			rules:   "file?.txt",
			path:    "file1.txt",
			verdict: Ignored,
		},
		{
			name:    "character class",
			rules:   "file[0-9].txt",
			path:    "filex.txt",
			verdict: Neutral,
		},
		{
			name:    "negation wins as last match",
			rules:   "*.log\n!important.log",
			path:    "important.log",
			verdict: Reincluded,
		},
		{
			name:    "later ignore overrides earlier negation",
			rules:   "!debug.log\n*.log",
			path:    "debug.log",
			verdict: Ignored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := mustParse(t, "", tt.rules)
			assert.Equal(t, tt.verdict, rs.Match(tt.path, tt.isDir))
		})
	}
}

func TestRuleSetScopedToBase(t *testing.T) {
	rs := mustParse(t, "sub", "*.tmp")

	assert.Equal(t, Ignored, rs.Match("sub/a.tmp", false))
	assert.Equal(t, Ignored, rs.Match("sub/deep/a.tmp", false))
	assert.Equal(t, Neutral, rs.Match("a.tmp", false), "path outside base must be neutral")
	assert.Equal(t, Neutral, rs.Match("other/a.tmp", false))
}

func TestChainInnermostVerdictWins(t *testing.T) {
	chain := &Chain{}
	chain.Push(mustParse(t, "", "*.log"))
	chain.Push(mustParse(t, "sub", "!special.log"))

	// The ancestor ignores all logs; the nested set re-includes one.
	assert.True(t, chain.Ignored("debug.log", false))
	assert.True(t, chain.Ignored("sub/debug.log", false))
	assert.False(t, chain.Ignored("sub/special.log", false),
		"nested re-include must override ancestor ignore")

	chain.Pop()
	assert.True(t, chain.Ignored("sub/special.log", false),
		"after popping the nested set the ancestor rule applies again")
}

func TestChainNestedIgnoreOverridesAncestorNeutral(t *testing.T) {
	chain := &Chain{}
	chain.Push(mustParse(t, "", "*.log"))
	chain.Push(mustParse(t, "sub", "*.txt"))

	assert.True(t, chain.Ignored("sub/note.txt", false))
	assert.False(t, chain.Ignored("note.txt", false), "nested rules must not leak outside their base")
}

func TestChainDefaultUnignored(t *testing.T) {
	chain := &Chain{}
	assert.False(t, chain.Ignored("anything.txt", false))

	chain.Push(mustParse(t, "", "*.log"))
	assert.False(t, chain.Ignored("anything.txt", false))
}
