package formula

import (
	"strconv"
	"strings"
)

// Placeholder marks the row position inside prototype paths. Directive keys
// share the `$` prefix, so no child element can be named Placeholder.
const Placeholder = "$"

// Path addresses an element or state entry from the form root. Segments
// are element names or decimal row indices.
type Path []string

// ParsePath splits a dotted path. A leading dot is tolerated so paths in the
// `.person.name` notation resolve the same way as `person.name`.
func ParsePath(raw string) Path {
	trimmed := strings.Trim(strings.TrimSpace(raw), ".")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ".")
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String renders the dotted form.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Child returns a copy of p extended with segment.
func (p Path) Child(segment string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, segment)
}

// Index returns a copy of p extended with a row index.
func (p Path) Index(i int) Path {
	return p.Child(strconv.Itoa(i))
}

// Parent drops the last segment. The parent of the root is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p.Clone()[:len(p)-1]
}

// Last returns the final segment or "" for the root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Clone returns an independent copy.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Equal reports whether both paths hold the same segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is an ancestor of (or equal to) p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// Relative strips prefix from p. The second result is false when prefix is
// not an ancestor of p.
func (p Path) Relative(prefix Path) (Path, bool) {
	if !p.HasPrefix(prefix) {
		return nil, false
	}
	return p[len(prefix):].Clone(), true
}

// ParseIndex converts a row segment into an index.
func ParseIndex(segment string) (int, bool) {
	if segment == "" {
		return 0, false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	return idx, true
}
