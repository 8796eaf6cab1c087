package controller

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formula/pkg/collection"
	"github.com/goliatone/go-formula/pkg/formula"
	"github.com/goliatone/go-formula/pkg/render"
	"github.com/goliatone/go-formula/pkg/state"
)

// editor is an open row dialog. index is -1 while drafting a new row.
type editor struct {
	collection *formula.Element
	row        *formula.Element
	index      int
	draft      map[string]any
}

func (e *editor) mode() render.DialogMode {
	if e.index < 0 {
		return render.DialogAddRow
	}
	return render.DialogEditRow
}

// OpenCollectionEditor opens a dialog drafting a new row of the collection at
// path. The draft starts from the prototype defaults; nothing is committed
// until Accept.
func (c *Controller) OpenCollectionEditor(ctx context.Context, path string) (render.Node, error) {
	if c.editor != nil {
		return render.Node{}, ErrEditorOpen
	}
	p := formula.ParsePath(path)
	col, err := c.collectionAt(p)
	if err != nil {
		return render.Node{}, c.reject(EventOpenEditor, p, err)
	}
	if !collection.CanAdd(col) {
		err := fmt.Errorf("%w: %s allows %d", collection.ErrMaxItems, p, *col.MaxItems)
		return render.Node{}, c.reject(EventOpenEditor, p, err)
	}
	draft, _ := state.DefaultsFor(c.form, col.Prototype).(map[string]any)
	c.editor = &editor{
		collection: col,
		row:        c.rows.Detached(col, draft),
		index:      -1,
		draft:      draft,
	}
	c.logger.Debug().Str("path", p.String()).Msg("row editor opened")
	if err := c.refresh(ctx); err != nil {
		return render.Node{}, err
	}
	return c.dialog().Node, nil
}

// EditRow opens a dialog over an existing row. The draft is a copy of the
// row's state.
func (c *Controller) EditRow(ctx context.Context, path string, index int) (render.Node, error) {
	if c.editor != nil {
		return render.Node{}, ErrEditorOpen
	}
	p := formula.ParsePath(path)
	col, err := c.collectionAt(p)
	if err != nil {
		return render.Node{}, c.reject(EventEditRow, p, err)
	}
	row, err := c.rows.Row(p, index)
	if err != nil {
		return render.Node{}, c.reject(EventEditRow, p, err)
	}
	value, err := c.store.Get(row.Path)
	if err != nil {
		return render.Node{}, c.reject(EventEditRow, p, err)
	}
	draft, _ := value.(map[string]any)
	c.editor = &editor{
		collection: col,
		row:        row,
		index:      index,
		draft:      draft,
	}
	c.logger.Debug().Str("path", row.Path.String()).Msg("row editor opened")
	if err := c.refresh(ctx); err != nil {
		return render.Node{}, err
	}
	return c.dialog().Node, nil
}

// SetDraft updates a field of the open draft. path is relative to the row,
// for example `brand` or `disks.0.size`.
func (c *Controller) SetDraft(ctx context.Context, path string, value any) error {
	if c.editor == nil {
		return ErrNoEditor
	}
	rel := formula.ParsePath(path)
	abs := append(c.editor.row.Path.Clone(), rel...)
	el, err := c.editableField(abs)
	if err != nil {
		return c.reject(EventSetDraft, abs, err)
	}
	coerced, err := el.Coerce(value)
	if err != nil {
		return c.reject(EventSetDraft, abs, err)
	}
	if !state.Put(c.editor.draft, rel, coerced) {
		return c.reject(EventSetDraft, abs, fmt.Errorf("%w: %s", state.ErrMissingParent, abs))
	}
	return c.refresh(ctx)
}

// Accept commits the draft: a new row is appended, an edited row is
// replaced. The dialog closes.
func (c *Controller) Accept(ctx context.Context) error {
	if c.editor == nil {
		return ErrNoEditor
	}
	ed := c.editor
	colPath := ed.collection.Path
	if ed.index < 0 {
		row, err := c.rows.Attach(colPath, ed.row, ed.draft)
		if err != nil {
			return c.reject(EventAccept, colPath, err)
		}
		c.logger.Debug().Str("path", row.Path.String()).Str("row", row.ID).Msg("row added")
	} else {
		if err := c.store.Update(ed.row.Path, ed.draft); err != nil {
			return c.reject(EventAccept, ed.row.Path, err)
		}
		c.logger.Debug().Str("path", ed.row.Path.String()).Msg("row updated")
	}
	c.editor = nil
	return c.refresh(ctx)
}

// Cancel closes the dialog and discards the draft.
func (c *Controller) Cancel(ctx context.Context) error {
	if c.editor == nil {
		return ErrNoEditor
	}
	c.editor = nil
	return c.refresh(ctx)
}

// Editing reports whether a row dialog is open.
func (c *Controller) Editing() bool {
	return c.editor != nil
}

func (c *Controller) dialog() render.Dialog {
	ed := c.editor
	snapshot := c.store.Snapshot()
	state.Put(snapshot, ed.row.Path, ed.draft)
	return render.Dialog{
		Mode:       ed.mode(),
		Collection: ed.collection.Path.String(),
		Index:      ed.index,
		Title:      ed.collection.Label,
		Node:       c.build(ed.row, ed.draft, snapshot, true),
	}
}

func (c *Controller) collectionAt(path formula.Path) (*formula.Element, error) {
	el, err := c.form.Instance(path)
	if err != nil {
		return nil, err
	}
	if el.Kind != formula.KindCollection {
		return nil, fmt.Errorf("%w: %s is a %s", collection.ErrNotCollection, path, el.Kind)
	}
	return el, nil
}
