package controller

import "fmt"

// EventKind enumerates the host callbacks a Controller understands.
type EventKind int

const (
	EventEdit EventKind = iota
	EventAddRow
	EventRemoveRow
	EventOpenEditor
	EventEditRow
	EventSetDraft
	EventAccept
	EventCancel
)

func (k EventKind) String() string {
	switch k {
	case EventEdit:
		return "edit"
	case EventAddRow:
		return "add-row"
	case EventRemoveRow:
		return "remove-row"
	case EventOpenEditor:
		return "open-editor"
	case EventEditRow:
		return "edit-row"
	case EventSetDraft:
		return "set-draft"
	case EventAccept:
		return "accept"
	case EventCancel:
		return "cancel"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one user action reported by the host. Path addresses a field or
// collection (for EventSetDraft it is relative to the drafted row); Index
// selects a row; Value carries the edited value.
type Event struct {
	Kind  EventKind
	Path  string
	Index int
	Value any
}

// Edit reports a field edit.
func Edit(path string, value any) Event {
	return Event{Kind: EventEdit, Path: path, Value: value}
}

// AddRow asks for a default row to be appended to a collection.
func AddRow(path string) Event {
	return Event{Kind: EventAddRow, Path: path}
}

// RemoveRow asks for a row to be deleted.
func RemoveRow(path string, index int) Event {
	return Event{Kind: EventRemoveRow, Path: path, Index: index}
}

// OpenEditor opens the "add row" dialog of a collection.
func OpenEditor(path string) Event {
	return Event{Kind: EventOpenEditor, Path: path}
}

// EditRow opens the dialog for an existing row.
func EditRow(path string, index int) Event {
	return Event{Kind: EventEditRow, Path: path, Index: index}
}

// SetDraft edits a field of the open dialog's row.
func SetDraft(path string, value any) Event {
	return Event{Kind: EventSetDraft, Path: path, Value: value}
}

// Accept commits the open dialog.
func Accept() Event {
	return Event{Kind: EventAccept}
}

// Cancel discards the open dialog.
func Cancel() Event {
	return Event{Kind: EventCancel}
}
