package ignore

// Chain is the stack of rule sets that applies at the current point of
// a directory traversal, outermost first. The scanner pushes a set when
// it enters a directory containing an ignore file and pops it when it
// leaves that subtree.
type Chain struct {
	sets []*RuleSet
}

// Push appends a rule set as the new innermost scope.
func (c *Chain) Push(rs *RuleSet) {
	c.sets = append(c.sets, rs)
}

// Pop removes the innermost rule set.
func (c *Chain) Pop() {
	if len(c.sets) > 0 {
		c.sets = c.sets[:len(c.sets)-1]
	}
}

// Ignored reports whether the path (slash-separated, relative to the
// scan root) is excluded. Rule sets are consulted innermost first and
// the first non-neutral verdict wins, so a nested ignore file can
// re-include a path its ancestors ignored. Paths no rule set has an
// opinion about are not ignored.
func (c *Chain) Ignored(path string, isDir bool) bool {
	for i := len(c.sets) - 1; i >= 0; i-- {
		switch c.sets[i].Match(path, isDir) {
		case Ignored:
			return true
		case Reincluded:
			return false
		}
	}
	return false
}
