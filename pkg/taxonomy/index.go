package taxonomy

import "sync"

type entry struct {
	leaf      *Node
	ancestors []string
}

// Index memoizes leaf and ancestor lookups for one tree. It is safe for
// concurrent use.
type Index struct {
	tree Tree

	once    sync.Once
	entries map[string]entry
}

// NewIndex wraps tree. The tree must not be mutated afterwards.
func NewIndex(tree Tree) *Index {
	return &Index{tree: tree}
}

// Tree returns the indexed tree.
func (i *Index) Tree() Tree {
	return i.tree
}

func (i *Index) build() {
	i.once.Do(func() {
		i.entries = make(map[string]entry)
		var visit func(nodes []Node, path []string)
		visit = func(nodes []Node, path []string) {
			for idx := range nodes {
				node := &nodes[idx]
				if node.Code != "" {
					if _, exists := i.entries[node.Code]; !exists {
						i.entries[node.Code] = entry{leaf: node, ancestors: append([]string{}, path...)}
					}
					continue
				}
				visit(node.Children, append(path, node.Label))
			}
		}
		visit(i.tree, nil)
	})
}

// Leaf returns the leaf for code.
func (i *Index) Leaf(code string) (*Node, bool) {
	i.build()
	e, ok := i.entries[code]
	return e.leaf, ok
}

// Ancestors returns the branch labels leading to code.
func (i *Index) Ancestors(code string) ([]string, bool) {
	i.build()
	e, ok := i.entries[code]
	if !ok {
		return nil, false
	}
	return append([]string{}, e.ancestors...), true
}

// ExpandedLabels returns the set of branch labels a tree view opens to reveal
// code. A missing code yields an empty set.
func (i *Index) ExpandedLabels(code string) map[string]bool {
	out := make(map[string]bool)
	labels, ok := i.Ancestors(code)
	if !ok {
		return out
	}
	for _, label := range labels {
		out[label] = true
	}
	return out
}

// Tags returns the tags of the leaf for code, and whether the leaf exists.
func (i *Index) Tags(code string) ([]string, bool) {
	leaf, ok := i.Leaf(code)
	if !ok {
		return nil, false
	}
	return append([]string(nil), leaf.Tags...), true
}

// Len returns the number of indexed leaves.
func (i *Index) Len() int {
	i.build()
	return len(i.entries)
}
