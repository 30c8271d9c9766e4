// Package ignore evaluates gitignore-style exclusion rules during
// directory traversal.
//
// Pattern matching is delegated to github.com/woozymasta/pathrules,
// which implements gitignore-like semantics (anchoring, `**` spans,
// trailing-slash directory rules, `!` negation, last-match-wins).
// This package adds the traversal-time structure on top: each compiled
// rule set is scoped to the directory whose ignore file defined it,
// and the sets form a chain from the root down to the current
// directory where the innermost non-neutral verdict wins.
package ignore

import (
	"strings"

	"github.com/woozymasta/pathrules"
)

// Verdict is the outcome of evaluating a path against rules.
type Verdict int

const (
	// Neutral means no rule decided the path.
	Neutral Verdict = iota
	// Ignored means the deciding rule excludes the path.
	Ignored
	// Reincluded means the deciding rule is a negation that
	// re-includes the path.
	Reincluded
)

// RuleSet holds the compiled rules of one ignore file, scoped to the
// directory it was found in.
type RuleSet struct {
	base    string // slash path relative to the scan root, "" for the root
	matcher *pathrules.Matcher
	count   int
}

// Parse compiles ignore rules from data and scopes them to base, a
// slash-separated path relative to the scan root (empty for the root
// itself). Blank lines and comment lines contribute no rules.
func Parse(base string, data []byte) (*RuleSet, error) {
	rules, err := pathrules.ParseRulesString(string(data), pathrules.ParseOptions{})
	if err != nil {
		return nil, err
	}

	rs := &RuleSet{base: base, count: len(rules)}
	if len(rules) == 0 {
		return rs, nil
	}

	matcher, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{})
	if err != nil {
		return nil, err
	}
	rs.matcher = matcher

	return rs, nil
}

// Len returns the number of compiled rules in the set.
func (rs *RuleSet) Len() int {
	return rs.count
}

// Match evaluates the path (slash-separated, relative to the scan root)
// against the rule set. Within one set the last matching rule decides,
// as in gitignore. Paths outside the set's base directory are Neutral.
func (rs *RuleSet) Match(p string, isDir bool) Verdict {
	if rs.matcher == nil {
		return Neutral
	}
	rel, ok := relativeToBase(p, rs.base)
	if !ok {
		return Neutral
	}

	res := rs.matcher.Decide(rel, isDir)
	if !res.Matched {
		return Neutral
	}
	if res.Included {
		return Reincluded
	}
	return Ignored
}

// relativeToBase strips the base prefix from p. Returns false when p is
// not inside base.
func relativeToBase(p, base string) (string, bool) {
	if base == "" {
		return p, p != ""
	}
	if p == base {
		return "", false
	}
	if !strings.HasPrefix(p, base+"/") {
		return "", false
	}
	return p[len(base)+1:], true
}
