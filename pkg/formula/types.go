package formula

import "fmt"

// Kind enumerates the element variants a formula can describe.
type Kind int

const (
	KindGroup Kind = iota
	KindNamespace
	KindInput
	KindSelect
	KindCollection
	KindRow
)

var kindNames = map[Kind]string{
	KindGroup:      "group",
	KindNamespace:  "namespace",
	KindInput:      "input",
	KindSelect:     "select",
	KindCollection: "collection",
	KindRow:        "row",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText keeps JSON snapshots readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("formula: unknown kind %q", text)
}

// IsContainer reports whether elements of this kind hold named children.
func (k Kind) IsContainer() bool {
	switch k {
	case KindGroup, KindNamespace, KindRow:
		return true
	default:
		return false
	}
}

// IsLeaf reports whether elements of this kind carry a scalar value.
func (k Kind) IsLeaf() bool {
	return k == KindInput || k == KindSelect
}

// InputType is the primitive subtype of an input element.
type InputType string

const (
	InputText   InputType = "text"
	InputEmail  InputType = "email"
	InputNumber InputType = "number"
)

// Element is a node in the parsed form tree. Which fields are meaningful
// depends on Kind: containers use Children, leaves use InputType, Default and
// Values, collections use Prototype, Rows and the item bounds.
type Element struct {
	Kind        Kind       `json:"kind"`
	Name        string     `json:"name"`
	Path        Path       `json:"path"`
	ID          string     `json:"id,omitempty"`
	Label       string     `json:"label,omitempty"`
	Help        string     `json:"help,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Optional    bool       `json:"optional,omitempty"`
	Disabled    bool       `json:"disabled,omitempty"`
	VisibleIf   string     `json:"visibleIf,omitempty"`
	InputType   InputType  `json:"inputType,omitempty"`
	Default     any        `json:"default,omitempty"`
	Values      []string   `json:"values,omitempty"`
	MinItems    *int       `json:"minItems,omitempty"`
	MaxItems    *int       `json:"maxItems,omitempty"`
	Children    []*Element `json:"children,omitempty"`
	Prototype   *Element   `json:"prototype,omitempty"`
	Rows        []*Element `json:"rows,omitempty"`
}

// Child returns the direct child with the given name.
func (e *Element) Child(name string) (*Element, bool) {
	if e == nil {
		return nil, false
	}
	for _, child := range e.Children {
		if child.Name == name {
			return child, true
		}
	}
	return nil, false
}

// DefaultValue returns the declared default or the zero value of the
// element's type: "" for text and email, 0 for numbers and the first
// enumerated value for selects. Containers have no scalar default.
func (e *Element) DefaultValue() any {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KindInput:
		if e.Default != nil {
			return e.Default
		}
		if e.InputType == InputNumber {
			return 0
		}
		return ""
	case KindSelect:
		if e.Default != nil {
			return e.Default
		}
		if len(e.Values) > 0 {
			return e.Values[0]
		}
		return ""
	default:
		return nil
	}
}

// Clone deep-copies the element, including prototypes and live rows.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := *e
	out.Path = e.Path.Clone()
	if e.Values != nil {
		out.Values = append([]string(nil), e.Values...)
	}
	out.MinItems = cloneInt(e.MinItems)
	out.MaxItems = cloneInt(e.MaxItems)
	out.Children = cloneElements(e.Children)
	out.Prototype = e.Prototype.Clone()
	out.Rows = cloneElements(e.Rows)
	return &out
}

// Walk visits e and its descendants depth first. Prototypes are visited,
// live rows are not; returning false from fn skips the subtree.
func (e *Element) Walk(fn func(*Element) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range e.Children {
		child.Walk(fn)
	}
	if e.Prototype != nil {
		e.Prototype.Walk(fn)
	}
}

func cloneElements(in []*Element) []*Element {
	if in == nil {
		return nil
	}
	out := make([]*Element, len(in))
	for i, el := range in {
		out[i] = el.Clone()
	}
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
