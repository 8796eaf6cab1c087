package collection

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/state"
)

var (
	// ErrMaxItems is returned by AddRow once a collection holds $maxItems rows.
	ErrMaxItems = errors.New("collection: maximum number of rows reached")
	// ErrMinItems is returned by RemoveRow when a collection holds $minItems
	// rows or fewer.
	ErrMinItems = errors.New("collection: minimum number of rows reached")
	// ErrNotCollection is returned when a path does not address an edit-group.
	ErrNotCollection = errors.New("collection: not a collection")
	// ErrIndexOutOfRange is shared with the state store so callers can match
	// either layer with errors.Is.
	ErrIndexOutOfRange = state.ErrIndexOutOfRange
)

// Option configures a Manager.
type Option func(*Manager)

// WithIDGenerator overrides how row identities are minted. Tests use it to
// get deterministic identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// Manager owns the rows of every collection of one form.
type Manager struct {
	form  *formula.Form
	store *state.Store
	newID func() string
}

// New materialises the initial rows of every collection in form. The store
// must have been seeded from the same form so list lengths already match.
func New(form *formula.Form, store *state.Store, options ...Option) *Manager {
	m := &Manager{
		form:  form,
		store: store,
		newID: uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	m.materialize(form.Root, store.Snapshot())
	return m
}

// Duplicate clones prototype into the row at index and assigns it a fresh
// identity. Nested collections come back without rows; AddRow materialises
// them.
func (m *Manager) Duplicate(prototype *formula.Element, index int) *formula.Element {
	row := prototype.Clone()
	reindex(row, len(prototype.Path)-1, index)
	row.ID = m.newID()
	return row
}

// Detached builds the row AddRowWith would append for values without
// attaching it to the collection or touching state. Attach commits it.
func (m *Manager) Detached(col *formula.Element, values map[string]any) *formula.Element {
	row := m.Duplicate(col.Prototype, len(col.Rows))
	m.materialize(row, values)
	return row
}

// Rows returns the live rows of the collection at path.
func (m *Manager) Rows(path formula.Path) ([]*formula.Element, error) {
	col, err := m.collection(path)
	if err != nil {
		return nil, err
	}
	return append([]*formula.Element(nil), col.Rows...), nil
}

// Row returns one live row.
func (m *Manager) Row(path formula.Path, index int) (*formula.Element, error) {
	col, err := m.collection(path)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(col.Rows) {
		return nil, fmt.Errorf("%w: %s has %d rows, got index %d", ErrIndexOutOfRange, path, len(col.Rows), index)
	}
	return col.Rows[index], nil
}

// CanAdd reports whether AddRow would succeed for the collection.
func CanAdd(col *formula.Element) bool {
	return col.MaxItems == nil || len(col.Rows) < *col.MaxItems
}

// CanRemove reports whether RemoveRow would pass the $minItems check.
func CanRemove(col *formula.Element) bool {
	if len(col.Rows) == 0 {
		return false
	}
	return col.MinItems == nil || len(col.Rows) > *col.MinItems
}

// AddRow appends a row built from the prototype defaults and returns it.
func (m *Manager) AddRow(path formula.Path) (*formula.Element, error) {
	return m.AddRowWith(path, nil)
}

// AddRowWith appends a row whose state starts from values instead of the
// prototype defaults. values must have the row's shape.
func (m *Manager) AddRowWith(path formula.Path, values map[string]any) (*formula.Element, error) {
	col, err := m.collection(path)
	if err != nil {
		return nil, err
	}
	if !CanAdd(col) {
		return nil, fmt.Errorf("%w: %s allows %d", ErrMaxItems, path, *col.MaxItems)
	}
	rowState := m.rowState(col, values)
	row := m.Duplicate(col.Prototype, len(col.Rows))
	m.materialize(row, rowState)
	return m.attach(col, row, rowState)
}

// Attach appends a row built by Detached, keeping its identity, with values
// as its state. The row is renumbered if the collection changed since it was
// built.
func (m *Manager) Attach(path formula.Path, row *formula.Element, values map[string]any) (*formula.Element, error) {
	col, err := m.collection(path)
	if err != nil {
		return nil, err
	}
	if row == nil || len(row.Path) != len(col.Path)+1 || !row.Path.HasPrefix(col.Path) {
		return nil, fmt.Errorf("%w: row does not belong to %s", ErrNotCollection, path)
	}
	if !CanAdd(col) {
		return nil, fmt.Errorf("%w: %s allows %d", ErrMaxItems, path, *col.MaxItems)
	}
	reindex(row, len(col.Path), len(col.Rows))
	return m.attach(col, row, m.rowState(col, values))
}

func (m *Manager) rowState(col *formula.Element, values map[string]any) any {
	if values == nil {
		return state.DefaultsFor(m.form, col.Prototype)
	}
	return values
}

func (m *Manager) attach(col *formula.Element, row *formula.Element, rowState any) (*formula.Element, error) {
	if err := m.store.Add(col.Path, rowState); err != nil {
		return nil, err
	}
	col.Rows = append(col.Rows, row)
	return row, nil
}

// RemoveRow deletes the row at index together with its state entry. Rows
// after it move up one position and their paths are rewritten to match; their
// identities are kept.
func (m *Manager) RemoveRow(path formula.Path, index int) error {
	col, err := m.collection(path)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(col.Rows) {
		return fmt.Errorf("%w: %s has %d rows, got index %d", ErrIndexOutOfRange, path, len(col.Rows), index)
	}
	if !CanRemove(col) {
		return fmt.Errorf("%w: %s requires %d", ErrMinItems, path, *col.MinItems)
	}
	if err := m.store.Remove(path, index); err != nil {
		return err
	}

	rows := make([]*formula.Element, 0, len(col.Rows)-1)
	rows = append(rows, col.Rows[:index]...)
	rows = append(rows, col.Rows[index+1:]...)
	position := len(col.Path)
	for i := index; i < len(rows); i++ {
		reindex(rows[i], position, i)
	}
	col.Rows = rows
	return nil
}

func (m *Manager) collection(path formula.Path) (*formula.Element, error) {
	el, err := m.form.Instance(path)
	if err != nil {
		return nil, err
	}
	if el.Kind != formula.KindCollection {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotCollection, path, el.Kind)
	}
	return el, nil
}

// materialize builds the rows of every collection below el, cascading into
// the rows it creates. value is the state of el; collections get one row per
// list entry, or InitialRows rows when no list is known.
func (m *Manager) materialize(el *formula.Element, value any) {
	if el.Kind == formula.KindCollection {
		list, known := value.([]any)
		n := len(list)
		if !known {
			n = m.form.InitialRows(el)
		}
		el.Rows = make([]*formula.Element, 0, n)
		for i := 0; i < n; i++ {
			var rowValue any
			if known {
				rowValue = list[i]
			}
			row := m.Duplicate(el.Prototype, i)
			m.materialize(row, rowValue)
			el.Rows = append(el.Rows, row)
		}
		return
	}
	values, _ := value.(map[string]any)
	for _, child := range el.Children {
		m.materialize(child, values[child.Name])
	}
}

// reindex writes index into segment position of every path below el,
// prototypes and live rows included.
func reindex(el *formula.Element, position, index int) {
	segment := strconv.Itoa(index)
	var visit func(*formula.Element)
	visit = func(node *formula.Element) {
		if node == nil {
			return
		}
		if position < len(node.Path) {
			node.Path[position] = segment
		}
		for _, child := range node.Children {
			visit(child)
		}
		visit(node.Prototype)
		for _, row := range node.Rows {
			visit(row)
		}
	}
	visit(el)
}
