package render

import "github.com/goliatone/go-formula/pkg/formula"

// Node is one renderable element: its definition, its current value and
// what the host may offer the user for it. Groups and rows carry Children,
// collections carry Rows.
type Node struct {
	Kind        formula.Kind      `json:"kind"`
	Name        string            `json:"name"`
	Path        string            `json:"path"`
	ID          string            `json:"id,omitempty"`
	Label       string            `json:"label,omitempty"`
	Help        string            `json:"help,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	InputType   formula.InputType `json:"inputType,omitempty"`
	Value       any               `json:"value"`
	Options     []string          `json:"options,omitempty"`
	Optional    bool              `json:"optional,omitempty"`
	Disabled    bool              `json:"disabled,omitempty"`
	Visible     bool              `json:"visible"`
	MinItems    *int              `json:"minItems,omitempty"`
	MaxItems    *int              `json:"maxItems,omitempty"`
	CanAdd      bool              `json:"canAdd,omitempty"`
	CanRemove   bool              `json:"canRemove,omitempty"`
	Children    []Node            `json:"children,omitempty"`
	Rows        []Node            `json:"rows,omitempty"`
}

// IsLeaf reports whether the node carries an editable value.
func (n Node) IsLeaf() bool {
	return n.Kind.IsLeaf()
}

// Find returns the descendant (or n itself) at path.
func (n Node) Find(path string) (Node, bool) {
	if n.Path == path {
		return n, true
	}
	for _, child := range n.Children {
		if found, ok := child.Find(path); ok {
			return found, true
		}
	}
	for _, row := range n.Rows {
		if found, ok := row.Find(path); ok {
			return found, true
		}
	}
	return Node{}, false
}

// Walk visits n and its descendants depth first, stopping a branch when fn
// returns false.
func (n Node) Walk(fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
	for _, row := range n.Rows {
		row.Walk(fn)
	}
}
