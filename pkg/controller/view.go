package controller

import (
	"github.com/goliatone/go-formula/pkg/collection"
	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/render"
	"github.com/goliatone/go-formula/pkg/state"
)

// build converts a live element and its state into a render node. snapshot
// is the whole state tree, used to resolve $visibleIf identifiers.
func (c *Controller) build(el *formula.Element, value any, snapshot map[string]any, parentVisible bool) render.Node {
	node := render.Node{
		Kind:        el.Kind,
		Name:        el.Name,
		Path:        el.Path.String(),
		ID:          el.ID,
		Label:       el.Label,
		Help:        el.Help,
		Placeholder: el.Placeholder,
		InputType:   el.InputType,
		Optional:    el.Optional,
		Disabled:    el.Disabled,
		Visible:     parentVisible && c.visible(el, snapshot),
	}

	switch {
	case el.Kind.IsLeaf():
		node.Value = value
		if node.Value == nil {
			node.Value = el.DefaultValue()
		}
		if el.Kind == formula.KindSelect {
			node.Options = append([]string(nil), el.Values...)
		}
	case el.Kind == formula.KindCollection:
		node.MinItems = el.MinItems
		node.MaxItems = el.MaxItems
		node.CanAdd = collection.CanAdd(el)
		node.CanRemove = collection.CanRemove(el)
		list, _ := value.([]any)
		node.Rows = make([]render.Node, 0, len(el.Rows))
		for i, row := range el.Rows {
			var rowValue any
			if i < len(list) {
				rowValue = list[i]
			}
			node.Rows = append(node.Rows, c.build(row, rowValue, snapshot, node.Visible))
		}
	default:
		values, _ := value.(map[string]any)
		node.Children = make([]render.Node, 0, len(el.Children))
		for _, child := range el.Children {
			node.Children = append(node.Children, c.build(child, values[child.Name], snapshot, node.Visible))
		}
	}
	return node
}

// visible evaluates the element's own rule. Identifiers resolve against the
// element's siblings first, then each enclosing scope up to the root, so a
// row field can refer both to its row mates and to top-level fields.
func (c *Controller) visible(el *formula.Element, snapshot map[string]any) bool {
	rule, ok := c.rules[c.form.Canonical(el.Path).String()]
	if !ok {
		return true
	}
	scope := el.Path.Parent()
	return rule.Eval(func(name string) (any, bool) {
		rel := formula.ParsePath(name)
		for s := scope; ; s = s.Parent() {
			if value, ok := state.Lookup(snapshot, append(s.Clone(), rel...)); ok {
				return value, true
			}
			if len(s) == 0 {
				return nil, false
			}
		}
	})
}

// ancestorsVisible reports whether every element above path is visible.
func (c *Controller) ancestorsVisible(path formula.Path, snapshot map[string]any) bool {
	for i := 1; i < len(path); i++ {
		el, err := c.form.Instance(path[:i])
		if err != nil {
			return false
		}
		if !c.visible(el, snapshot) {
			return false
		}
	}
	return true
}
