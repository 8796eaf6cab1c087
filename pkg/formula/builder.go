package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Builder converts formula documents into element trees. It performs
// no I/O; the same document always yields an equal tree.
type Builder struct {
	cfg config
}

// NewBuilder returns a Builder configured by options.
func NewBuilder(options ...Option) *Builder {
	return &Builder{cfg: newConfig(options)}
}

// Build parses spec into a Form whose root is an unnamed group holding the
// top-level elements in declaration order.
func Build(spec Spec, options ...Option) (*Form, error) {
	return NewBuilder(options...).BuildForm(spec)
}

// BuildForm parses spec and indexes the resulting tree.
func (b *Builder) BuildForm(spec Spec) (*Form, error) {
	root, err := b.Build(spec)
	if err != nil {
		return nil, err
	}
	return newForm(root, b.cfg)
}

// Build parses spec into the root element.
func (b *Builder) Build(spec Spec) (*Element, error) {
	children, err := b.buildChildren(nil, spec)
	if err != nil {
		return nil, err
	}
	return &Element{Kind: KindGroup, Children: children}, nil
}

func (b *Builder) buildChildren(parent Path, spec Spec) ([]*Element, error) {
	var (
		children []*Element
		seen     = make(map[string]struct{}, len(spec))
	)
	for _, entry := range spec {
		if strings.HasPrefix(entry.Key, DirectivePrefix) {
			continue
		}
		if _, dup := seen[entry.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, parent.Child(entry.Key))
		}
		seen[entry.Key] = struct{}{}

		child, err := b.buildElement(parent, entry.Key, entry.Value)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func (b *Builder) buildElement(parent Path, name string, raw any) (*Element, error) {
	path := parent.Child(name)
	spec, ok := asSpec(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected a mapping, got %T", ErrInvalidSpec, path, raw)
	}

	typeName := "text"
	if value, ok := spec.Get(KeyType); ok {
		if s, ok := value.(string); ok {
			typeName = s
		} else {
			b.warn(path, fmt.Sprintf("$type must be a string, got %T; using text", value))
		}
	}
	kind, inputType, known := ParseKind(typeName)
	if !known {
		b.warn(path, fmt.Sprintf("unknown $type %q; using text", typeName))
	}

	el := &Element{
		Kind:  kind,
		Name:  name,
		Path:  path,
		Label: b.cfg.labeler(name),
	}
	if err := applyCommon(el, spec); err != nil {
		return nil, err
	}

	switch kind {
	case KindGroup, KindNamespace:
		children, err := b.buildChildren(path, spec)
		if err != nil {
			return nil, err
		}
		el.Children = children
		return el, nil
	case KindCollection:
		return b.buildCollection(el, spec)
	default:
		return b.buildLeaf(el, spec, inputType)
	}
}

func (b *Builder) buildCollection(el *Element, spec Spec) (*Element, error) {
	minItems, err := intDirective(spec, KeyMinItems, el.Path)
	if err != nil {
		return nil, err
	}
	maxItems, err := intDirective(spec, KeyMaxItems, el.Path)
	if err != nil {
		return nil, err
	}
	if minItems != nil && maxItems != nil && *minItems > *maxItems {
		return nil, fmt.Errorf("%w: %s: $minItems %d exceeds $maxItems %d", ErrInvalidSpec, el.Path, *minItems, *maxItems)
	}
	el.MinItems, el.MaxItems = minItems, maxItems

	raw, ok := spec.Get(KeyPrototype)
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingPrototype, el.Path)
	}
	protoSpec, ok := asSpec(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s: $prototype must be a mapping, got %T", ErrInvalidSpec, el.Path, raw)
	}

	proto := &Element{
		Kind:  KindRow,
		Name:  el.Name,
		Path:  el.Path.Child(Placeholder),
		Label: el.Label,
	}
	children, err := b.buildChildren(proto.Path, protoSpec)
	if err != nil {
		return nil, err
	}
	proto.Children = children
	el.Prototype = proto
	return el, nil
}

func (b *Builder) buildLeaf(el *Element, spec Spec, inputType InputType) (*Element, error) {
	requested := el.Kind
	el.Kind = KindInput
	el.InputType = inputType

	if raw, ok := spec.Get(KeyValues); ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: $values must be a list, got %T", ErrInvalidSpec, el.Path, raw)
		}
		el.Kind = KindSelect
		el.InputType = ""
		el.Values = make([]string, 0, len(list))
		for _, item := range list {
			el.Values = append(el.Values, fmt.Sprint(item))
		}
	} else if requested == KindSelect {
		b.warn(el.Path, "select without $values; using text")
	}

	if raw, ok := spec.Get(KeyDefault); ok && raw != nil {
		value, err := el.Coerce(raw)
		if err != nil {
			b.warn(el.Path, fmt.Sprintf("ignoring $default: %v", err))
		} else {
			el.Default = value
		}
	}
	return el, nil
}

func (b *Builder) warn(path Path, message string) {
	if b.cfg.onWarning != nil {
		b.cfg.onWarning(Warning{Path: path.Clone(), Message: message})
	}
}

// ParseKind resolves a `$type` directive. The boolean is false for
// unrecognised names, which map to a text input.
func ParseKind(typeName string) (Kind, InputType, bool) {
	switch strings.ToLower(strings.TrimSpace(typeName)) {
	case "group":
		return KindGroup, "", true
	case "namespace":
		return KindNamespace, "", true
	case "edit-group":
		return KindCollection, "", true
	case "select":
		return KindSelect, "", true
	case "text", "":
		return KindInput, InputText, true
	case "email":
		return KindInput, InputEmail, true
	case "number":
		return KindInput, InputNumber, true
	default:
		return KindInput, InputText, false
	}
}

func applyCommon(el *Element, spec Spec) error {
	if label, ok := stringDirective(spec, KeyName); ok && label != "" {
		el.Label = label
	}
	el.Help, _ = stringDirective(spec, KeyHelp)
	el.Placeholder, _ = stringDirective(spec, KeyPlaceholder)
	el.VisibleIf, _ = stringDirective(spec, KeyVisibleIf)

	var err error
	if el.Optional, err = boolDirective(spec, KeyOptional, el.Path); err != nil {
		return err
	}
	if el.Disabled, err = boolDirective(spec, KeyDisabled, el.Path); err != nil {
		return err
	}
	return nil
}

func stringDirective(spec Spec, key string) (string, bool) {
	raw, ok := spec.Get(key)
	if !ok || raw == nil {
		return "", false
	}
	if s, ok := raw.(string); ok {
		return s, true
	}
	return fmt.Sprint(raw), true
}

func boolDirective(spec Spec, key string, path Path) (bool, error) {
	raw, ok := spec.Get(key)
	if !ok || raw == nil {
		return false, nil
	}
	switch typed := raw.(type) {
	case bool:
		return typed, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return false, fmt.Errorf("%w: %s: %s must be a boolean, got %q", ErrInvalidSpec, path, key, typed)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("%w: %s: %s must be a boolean, got %T", ErrInvalidSpec, path, key, raw)
	}
}

func intDirective(spec Spec, key string, path Path) (*int, error) {
	raw, ok := spec.Get(key)
	if !ok || raw == nil {
		return nil, nil
	}
	n, ok := toInt(raw)
	if !ok || n < 0 {
		return nil, fmt.Errorf("%w: %s: %s must be a non-negative integer, got %v", ErrInvalidSpec, path, key, raw)
	}
	return &n, nil
}

func toInt(raw any) (int, bool) {
	switch typed := raw.(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case uint64:
		return int(typed), true
	case float64:
		if typed != math.Trunc(typed) {
			return 0, false
		}
		return int(typed), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(typed))
		return n, err == nil
	default:
		return 0, false
	}
}
