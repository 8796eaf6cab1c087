package formula

import "errors"

var (
	// ErrMissingPrototype is returned when an edit-group declares no
	// `$prototype`; a collection cannot be built without a row template.
	ErrMissingPrototype = errors.New("formula: edit-group requires $prototype")
	// ErrInvalidSpec signals a structurally malformed formula document.
	ErrInvalidSpec = errors.New("formula: invalid formula document")
	// ErrDuplicatePath is returned when two elements resolve to one path.
	ErrDuplicatePath = errors.New("formula: duplicate element path")
	// ErrUnknownPath is returned when a path addresses no element.
	ErrUnknownPath = errors.New("formula: unknown path")
	// ErrInvalidValue is returned when a value cannot be coerced into an
	// element's type.
	ErrInvalidValue = errors.New("formula: invalid value")
)
