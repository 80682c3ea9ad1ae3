// Package visibility decides which declared fields are shown for the current
// answers. Each declaration compiles once into a Condition tree covering three
// axes (mode directives, the `Visible If` rule, industry tags) combined with
// logical AND; the tree is then evaluated as a pure function of the answers
// and the session Context.
package visibility

// Context carries session-level inputs that are not answers.
type Context struct {
	// UpdateMode is set when editing a previously submitted response.
	UpdateMode bool
	// FreeMode is set for restricted-tier sessions.
	FreeMode bool
	// LeafSelected reports whether the respondent picked a taxonomy leaf.
	LeafSelected bool
	// LeafTags are the tags of the chosen leaf.
	LeafTags []string
}

// WithLeaf returns a copy of ctx carrying the chosen leaf's tags.
func (c Context) WithLeaf(tags []string) Context {
	c.LeafSelected = true
	c.LeafTags = append([]string(nil), tags...)
	return c
}
