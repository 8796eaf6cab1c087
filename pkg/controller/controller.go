package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formula/pkg/collection"
	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/render"
	"github.com/goliatone/go-formula/pkg/state"
	"github.com/goliatone/go-formula/pkg/visibility"
)

var (
	// ErrNotEditable is returned when an edit targets a group or collection.
	ErrNotEditable = errors.New("controller: path is not an editable field")
	// ErrDisabled is returned when an edit targets a `$disabled` field.
	ErrDisabled = errors.New("controller: field is disabled")
	// ErrEditorOpen is returned for actions other than draft edits, accept
	// and cancel while a row dialog is open.
	ErrEditorOpen = errors.New("controller: a row editor is open")
	// ErrNoEditor is returned by draft actions when no row dialog is open.
	ErrNoEditor = errors.New("controller: no row editor is open")
	// ErrUnknownEvent is returned by Handle for unrecognised event kinds.
	ErrUnknownEvent = errors.New("controller: unknown event")
)

// Controller mediates between a form, its state and the host surface.
type Controller struct {
	form           *formula.Form
	store          *state.Store
	rows           *collection.Manager
	surface        render.Surface
	logger         zerolog.Logger
	rules          map[string]visibility.Rule
	editor         *editor
	collectionOpts []collection.Option
}

// New starts a form session: defaults are computed and the initial rows of
// every collection are materialised.
func New(form *formula.Form, options ...Option) (*Controller, error) {
	if form == nil || form.Root == nil {
		return nil, errors.New("controller: form is required")
	}
	c := &Controller{
		form:   form,
		logger: zerolog.Nop(),
		rules:  make(map[string]visibility.Rule),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}

	var ruleErr error
	form.Root.Walk(func(el *formula.Element) bool {
		if el.VisibleIf == "" || ruleErr != nil {
			return ruleErr == nil
		}
		rule, err := visibility.Compile(el.VisibleIf)
		if err != nil {
			ruleErr = fmt.Errorf("%w: %s: $visibleIf: %v", formula.ErrInvalidSpec, el.Path, err)
			return false
		}
		c.rules[el.Path.String()] = rule
		return true
	})
	if ruleErr != nil {
		return nil, ruleErr
	}

	c.store = state.New(form)
	c.rows = collection.New(form, c.store, c.collectionOpts...)
	c.logger.Debug().
		Int("leaves", len(form.Leaves())).
		Int("collections", len(form.Collections())).
		Msg("form session started")
	return c, nil
}

// Form returns the element tree the session renders.
func (c *Controller) Form() *formula.Form {
	return c.form
}

// Get returns the current value at path.
func (c *Controller) Get(path string) (any, error) {
	return c.store.Get(formula.ParsePath(path))
}

// Values returns a copy of the whole state tree.
func (c *Controller) Values() map[string]any {
	return c.store.Snapshot()
}

// Handle dispatches a host event to the matching action.
func (c *Controller) Handle(ctx context.Context, event Event) error {
	switch event.Kind {
	case EventEdit:
		return c.Update(ctx, event.Path, event.Value)
	case EventAddRow:
		return c.AddRow(ctx, event.Path)
	case EventRemoveRow:
		return c.RemoveRow(ctx, event.Path, event.Index)
	case EventOpenEditor:
		_, err := c.OpenCollectionEditor(ctx, event.Path)
		return err
	case EventEditRow:
		_, err := c.EditRow(ctx, event.Path, event.Index)
		return err
	case EventSetDraft:
		return c.SetDraft(ctx, event.Path, event.Value)
	case EventAccept:
		return c.Accept(ctx)
	case EventCancel:
		return c.Cancel(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event.Kind)
	}
}

// Update coerces value into the field's type and stores it.
func (c *Controller) Update(ctx context.Context, path string, value any) error {
	if c.editor != nil {
		return ErrEditorOpen
	}
	p := formula.ParsePath(path)
	el, err := c.editableField(p)
	if err != nil {
		return c.reject(EventEdit, p, err)
	}
	coerced, err := el.Coerce(value)
	if err != nil {
		return c.reject(EventEdit, p, err)
	}
	if err := c.store.Update(p, coerced); err != nil {
		return c.reject(EventEdit, p, err)
	}
	c.logger.Debug().Str("path", p.String()).Interface("value", coerced).Msg("field updated")
	return c.refresh(ctx)
}

// AddRow appends a default row to the collection at path.
func (c *Controller) AddRow(ctx context.Context, path string) error {
	if c.editor != nil {
		return ErrEditorOpen
	}
	p := formula.ParsePath(path)
	row, err := c.rows.AddRow(p)
	if err != nil {
		return c.reject(EventAddRow, p, err)
	}
	c.logger.Debug().Str("path", row.Path.String()).Str("row", row.ID).Msg("row added")
	return c.refresh(ctx)
}

// RemoveRow deletes the row at index from the collection at path.
func (c *Controller) RemoveRow(ctx context.Context, path string, index int) error {
	if c.editor != nil {
		return ErrEditorOpen
	}
	p := formula.ParsePath(path)
	if err := c.rows.RemoveRow(p, index); err != nil {
		return c.reject(EventRemoveRow, p, err)
	}
	c.logger.Debug().Str("path", p.String()).Int("index", index).Msg("row removed")
	return c.refresh(ctx)
}

// RenderRoot returns the renderable tree of the whole form.
func (c *Controller) RenderRoot() render.Node {
	snapshot := c.store.Snapshot()
	return c.build(c.form.Root, snapshot, snapshot, true)
}

// Render returns the renderable subtree at path.
func (c *Controller) Render(path string) (render.Node, error) {
	p := formula.ParsePath(path)
	el, err := c.form.Instance(p)
	if err != nil {
		return render.Node{}, err
	}
	snapshot := c.store.Snapshot()
	value, _ := state.Lookup(snapshot, p)
	return c.build(el, value, snapshot, c.ancestorsVisible(p, snapshot)), nil
}

// View returns the root tree plus the open dialog, if any.
func (c *Controller) View() render.View {
	view := render.View{Root: c.RenderRoot()}
	if c.editor != nil {
		dialog := c.dialog()
		view.Dialog = &dialog
	}
	return view
}

func (c *Controller) editableField(path formula.Path) (*formula.Element, error) {
	el, err := c.form.Lookup(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", state.ErrPathNotFound, path)
	}
	if !el.Kind.IsLeaf() {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotEditable, path, el.Kind)
	}
	if el.Disabled {
		return nil, fmt.Errorf("%w: %s", ErrDisabled, path)
	}
	return el, nil
}

func (c *Controller) refresh(ctx context.Context) error {
	if c.surface == nil {
		return nil
	}
	if err := c.surface.Refresh(ctx, c.View()); err != nil {
		return fmt.Errorf("controller: refresh: %w", err)
	}
	return nil
}

func (c *Controller) reject(kind EventKind, path formula.Path, err error) error {
	c.logger.Warn().Err(err).Str("event", kind.String()).Str("path", path.String()).Msg("action rejected")
	return err
}
