// Package state holds the live values of a form, keyed by element path.
//
// The state tree mirrors the element tree: groups become maps, collections
// become lists with one map per row and leaves hold scalars. Reads of paths
// that were never written fall back to the element default without
// allocating state for them.
package state

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formula/pkg/formula"
)

var (
	// ErrPathNotFound is returned when a path addresses no element.
	ErrPathNotFound = errors.New("state: path not found")
	// ErrMissingParent is returned when the container above a path has not
	// been initialised.
	ErrMissingParent = errors.New("state: parent container missing")
	// ErrNotCollection is returned by list operations on non-list entries.
	ErrNotCollection = errors.New("state: not a collection")
	// ErrIndexOutOfRange is returned for row indices outside the list.
	ErrIndexOutOfRange = errors.New("state: index out of range")
	// ErrShapeMismatch is returned when a value does not have the shape of
	// its element: a list for collections, a map for groups and rows, a
	// scalar for leaves.
	ErrShapeMismatch = errors.New("state: value does not match element shape")
)

// Store holds the state tree of one form session. It is not safe for
// concurrent use; hosts drive it from a single event loop.
type Store struct {
	form *formula.Form
	root map[string]any
}

// New seeds a store with the defaults of every element in form.
func New(form *formula.Form) *Store {
	return &Store{
		form: form,
		root: Defaults(form),
	}
}

// Defaults computes the full default state tree of form. Calling it twice on
// an unmodified form yields equal trees.
func Defaults(form *formula.Form) map[string]any {
	out, _ := DefaultsFor(form, form.Root).(map[string]any)
	if out == nil {
		out = make(map[string]any)
	}
	return out
}

// DefaultsFor computes the default state of a single element: a map for
// containers, a list of InitialRows row maps for collections and the
// element default for leaves.
func DefaultsFor(form *formula.Form, el *formula.Element) any {
	switch {
	case el.Kind.IsContainer():
		values := make(map[string]any, len(el.Children))
		for _, child := range el.Children {
			values[child.Name] = DefaultsFor(form, child)
		}
		return values
	case el.Kind == formula.KindCollection:
		n := form.InitialRows(el)
		rows := make([]any, n)
		for i := range rows {
			rows[i] = DefaultsFor(form, el.Prototype)
		}
		return rows
	default:
		return el.DefaultValue()
	}
}

// Get resolves path. Untouched paths report the element default, but only
// for rows that exist: an index past a collection's current length, or the
// prototype placeholder, is ErrPathNotFound. Containers are returned as
// copies; write through Update, Add and Remove.
func (s *Store) Get(path formula.Path) (any, error) {
	el, err := s.resolve(path, ErrPathNotFound)
	if err != nil {
		return nil, err
	}
	if value, ok := dig(s.root, path); ok {
		return deepCopy(value), nil
	}
	return DefaultsFor(s.form, el), nil
}

// Update replaces the value at path. The parent container must exist and
// value must have the element's shape.
func (s *Store) Update(path formula.Path, value any) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: the root cannot be replaced", ErrPathNotFound)
	}
	el, err := s.resolve(path, ErrMissingParent)
	if err != nil {
		return err
	}
	if err := checkShape(el, value); err != nil {
		return err
	}
	return s.replace(path, deepCopy(value))
}

// resolve returns the template element at path after checking that every
// row index along it addresses an existing row; missingRow is returned when
// one does not.
func (s *Store) resolve(path formula.Path, missingRow error) (*formula.Element, error) {
	el, err := s.form.Lookup(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	for i, segment := range path {
		if segment == formula.Placeholder {
			return nil, fmt.Errorf("%w: %s: placeholder segment", ErrPathNotFound, path)
		}
		if i+1 >= len(path) {
			break
		}
		ancestor, err := s.form.Lookup(path[:i+1])
		if err != nil || ancestor.Kind != formula.KindCollection {
			continue
		}
		list, _ := dig(s.root, path[:i+1])
		rows, _ := list.([]any)
		idx, ok := formula.ParseIndex(path[i+1])
		if !ok || idx >= len(rows) {
			return nil, fmt.Errorf("%w: %s: %s has %d rows", missingRow, path, path[:i+1], len(rows))
		}
	}
	return el, nil
}

func checkShape(el *formula.Element, value any) error {
	var ok bool
	switch {
	case el.Kind == formula.KindCollection:
		_, ok = value.([]any)
	case el.Kind.IsContainer():
		_, ok = value.(map[string]any)
	default:
		switch value.(type) {
		case map[string]any, []any:
			ok = false
		default:
			ok = true
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s %s cannot hold %T", ErrShapeMismatch, el.Kind, el.Path, value)
	}
	return nil
}

// Add appends value to the list stored at path.
func (s *Store) Add(path formula.Path, value any) error {
	list, err := s.list(path)
	if err != nil {
		return err
	}
	return s.replace(path, append(list, deepCopy(value)))
}

// Remove deletes the entry at index from the list stored at path; later
// entries shift down by one.
func (s *Store) Remove(path formula.Path, index int) error {
	list, err := s.list(path)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(list) {
		return fmt.Errorf("%w: %s has %d entries, got index %d", ErrIndexOutOfRange, path, len(list), index)
	}
	next := make([]any, 0, len(list)-1)
	next = append(next, list[:index]...)
	next = append(next, list[index+1:]...)
	return s.replace(path, next)
}

// Len reports the number of entries in the list stored at path.
func (s *Store) Len(path formula.Path) (int, error) {
	list, err := s.list(path)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// Snapshot deep-copies the whole state tree.
func (s *Store) Snapshot() map[string]any {
	out, _ := deepCopy(s.root).(map[string]any)
	return out
}

// Values returns every leaf value keyed by its dotted path, for example
// `person.computers.0.brand`.
func (s *Store) Values() map[string]any {
	return Flatten(s.root)
}

// Flatten maps every scalar inside root to its dotted path.
func Flatten(root map[string]any) map[string]any {
	out := make(map[string]any)
	flatten(nil, root, out)
	return out
}

func flatten(prefix formula.Path, value any, out map[string]any) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(prefix.Child(key), val, out)
		}
	case []any:
		for idx, val := range v {
			flatten(prefix.Index(idx), val, out)
		}
	default:
		if len(prefix) > 0 {
			out[prefix.String()] = v
		}
	}
}

func (s *Store) list(path formula.Path) ([]any, error) {
	el, err := s.form.Lookup(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if el.Kind != formula.KindCollection {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotCollection, path, el.Kind)
	}
	value, ok := dig(s.root, path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingParent, path)
	}
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T", ErrNotCollection, path, value)
	}
	return list, nil
}

// replace writes value into the container above path.
func (s *Store) replace(path formula.Path, value any) error {
	parentPath := path.Parent()
	parent, ok := dig(s.root, parentPath)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingParent, parentPath)
	}
	last := path.Last()
	switch node := parent.(type) {
	case map[string]any:
		node[last] = value
		return nil
	case []any:
		idx, ok := formula.ParseIndex(last)
		if !ok || idx >= len(node) {
			return fmt.Errorf("%w: %s has %d entries, got %q", ErrIndexOutOfRange, parentPath, len(node), last)
		}
		node[idx] = value
		return nil
	default:
		return fmt.Errorf("%w: %s holds %T", ErrMissingParent, parentPath, parent)
	}
}

// Lookup resolves path inside a plain state tree such as a Snapshot.
func Lookup(root map[string]any, path formula.Path) (any, bool) {
	return dig(root, path)
}

// Put writes value at path inside a plain state tree. The parent must exist;
// a list parent accepts existing indices and one past its end, which appends.
func Put(root map[string]any, path formula.Path, value any) bool {
	if len(path) == 0 {
		return false
	}
	parent, ok := dig(root, path.Parent())
	if !ok {
		return false
	}
	switch node := parent.(type) {
	case map[string]any:
		node[path.Last()] = value
		return true
	case []any:
		idx, ok := formula.ParseIndex(path.Last())
		switch {
		case !ok || idx > len(node):
			return false
		case idx == len(node):
			return Put(root, path.Parent(), append(node, value))
		default:
			node[idx] = value
			return true
		}
	default:
		return false
	}
}

func dig(root map[string]any, path formula.Path) (any, bool) {
	var current any = root
	for _, segment := range path {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, ok := formula.ParseIndex(segment)
			if !ok || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
