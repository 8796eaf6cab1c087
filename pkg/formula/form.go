package formula

import "fmt"

// Form is the aggregate of a parsed element tree and an index of every
// template path (prototype paths use Placeholder). The index is built once;
// only collection rows change afterwards, and rows are resolved through
// Instance.
type Form struct {
	Root *Element

	index       map[string]*Element
	initialRows func(*Element) int
}

// NewForm indexes an already built element tree.
func NewForm(root *Element, options ...Option) (*Form, error) {
	return newForm(root, newConfig(options))
}

func newForm(root *Element, cfg config) (*Form, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrInvalidSpec)
	}
	form := &Form{
		Root:        root,
		index:       make(map[string]*Element),
		initialRows: cfg.initialRows,
	}
	var dup error
	root.Walk(func(el *Element) bool {
		key := el.Path.String()
		if _, exists := form.index[key]; exists && dup == nil {
			dup = fmt.Errorf("%w: %s", ErrDuplicatePath, key)
		}
		form.index[key] = el
		return true
	})
	if dup != nil {
		return nil, dup
	}
	return form, nil
}

// Lookup resolves path to its template element. Row indices are mapped onto
// the prototype, so `person.computers.7.brand` resolves to the element at
// `person.computers.$.brand` whether or not row 7 exists.
func (f *Form) Lookup(path Path) (*Element, error) {
	if el, ok := f.index[f.Canonical(path).String()]; ok {
		return el, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPath, path)
}

// Canonical replaces row indices in path with Placeholder.
func (f *Form) Canonical(path Path) Path {
	out := make(Path, 0, len(path))
	for _, segment := range path {
		if parent, ok := f.index[out.String()]; ok && parent.Kind == KindCollection {
			if _, isIndex := ParseIndex(segment); isIndex || segment == Placeholder {
				out = append(out, Placeholder)
				continue
			}
		}
		out = append(out, segment)
	}
	return out
}

// Instance resolves path against the live tree, descending into rows.
func (f *Form) Instance(path Path) (*Element, error) {
	current := f.Root
	for i, segment := range path {
		switch {
		case current.Kind == KindCollection:
			idx, ok := ParseIndex(segment)
			if !ok || idx >= len(current.Rows) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownPath, path)
			}
			current = current.Rows[idx]
		case current.Kind.IsContainer():
			child, ok := current.Child(segment)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownPath, path)
			}
			current = child
		default:
			return nil, fmt.Errorf("%w: %s: %s is a leaf", ErrUnknownPath, path, path[:i])
		}
	}
	return current, nil
}

// InitialRows reports how many rows a fresh collection starts with.
func (f *Form) InitialRows(collection *Element) int {
	policy := f.initialRows
	if policy == nil {
		policy = MinItemsRows
	}
	if n := policy(collection); n > 0 {
		return n
	}
	return 0
}

// Leaves lists every template leaf in declaration order.
func (f *Form) Leaves() []*Element {
	var out []*Element
	f.Root.Walk(func(el *Element) bool {
		if el.Kind.IsLeaf() {
			out = append(out, el)
		}
		return true
	})
	return out
}

// Collections lists every template collection, outermost first.
func (f *Form) Collections() []*Element {
	var out []*Element
	f.Root.Walk(func(el *Element) bool {
		if el.Kind == KindCollection {
			out = append(out, el)
		}
		return true
	})
	return out
}
