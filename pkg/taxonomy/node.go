// Package taxonomy models the industry classification tree: leaves carry the
// selectable code, branches group them under a label that doubles as the
// translation key.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node is one entry of the tree. A node is either a leaf (Code set, no
// children) or a branch (children, no Code).
type Node struct {
	Code     string   `json:"code,omitempty" yaml:"code,omitempty"`
	Label    string   `json:"label" yaml:"label"`
	Children []Node   `json:"children,omitempty" yaml:"children,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// IsLeaf reports whether n is a selectable leaf.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// HasTag reports whether n carries tag.
func (n Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts tags as an array or as a comma separated string.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code     string          `json:"code"`
		Label    string          `json:"label"`
		Children []Node          `json:"children"`
		Tags     json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tags, err := decodeTags(raw.Tags)
	if err != nil {
		return fmt.Errorf("taxonomy: node %q tags: %w", raw.Label, err)
	}
	*n = Node{Code: raw.Code, Label: raw.Label, Children: raw.Children, Tags: tags}
	return nil
}

func decodeTags(data json.RawMessage) ([]string, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		return splitTags(strings.Split(joined, ",")), nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return splitTags(list), nil
}

func splitTags(parts []string) []string {
	var out []string
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Tree is the ordered list of root nodes.
type Tree []Node

// Validate checks the leaf-xor-branch invariant and that leaf codes are
// unique.
func (t Tree) Validate() error {
	seen := make(map[string]struct{})
	return validateNodes(t, nil, seen)
}

func validateNodes(nodes []Node, path []string, seen map[string]struct{}) error {
	for _, node := range nodes {
		where := strings.Join(append(append([]string(nil), path...), node.Label), " > ")
		switch {
		case node.Code != "" && len(node.Children) > 0:
			return fmt.Errorf("%w: %s has both a code and children", ErrInvalidNode, where)
		case node.Code == "" && len(node.Children) == 0:
			return fmt.Errorf("%w: %s has neither a code nor children", ErrInvalidNode, where)
		case node.Code != "":
			if _, dup := seen[node.Code]; dup {
				return fmt.Errorf("%w: duplicate code %q at %s", ErrInvalidNode, node.Code, where)
			}
			seen[node.Code] = struct{}{}
		default:
			if err := validateNodes(node.Children, append(path, node.Label), seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// FindLeafByCode returns the leaf whose code equals code.
func FindLeafByCode(tree Tree, code string) (*Node, bool) {
	if code == "" {
		return nil, false
	}
	for i := range tree {
		node := &tree[i]
		if node.Code == code && node.IsLeaf() {
			return node, true
		}
		if found, ok := FindLeafByCode(node.Children, code); ok {
			return found, true
		}
	}
	return nil, false
}

// AncestorLabels returns the branch labels from the root down to, but not
// including, the leaf with code. The second result is false when the code is
// absent from the tree.
func AncestorLabels(tree Tree, code string) ([]string, bool) {
	if code == "" {
		return nil, false
	}
	return ancestors(tree, code, []string{})
}

func ancestors(nodes []Node, code string, path []string) ([]string, bool) {
	for _, node := range nodes {
		if node.Code == code {
			return path, true
		}
		if len(node.Children) == 0 {
			continue
		}
		next := append(append(make([]string, 0, len(path)+1), path...), node.Label)
		if found, ok := ancestors(node.Children, code, next); ok {
			return found, true
		}
	}
	return nil, false
}

// Walk visits every node depth first, stopping early when fn returns false.
func Walk(tree Tree, fn func(node Node, depth int) bool) {
	walk(tree, 0, fn)
}

func walk(nodes []Node, depth int, fn func(Node, int) bool) bool {
	for _, node := range nodes {
		if !fn(node, depth) {
			return false
		}
		if !walk(node.Children, depth+1, fn) {
			return false
		}
	}
	return true
}
