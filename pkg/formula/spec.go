package formula

import "sort"

// Reserved directive keys.
const (
	KeyType        = "$type"
	KeyDefault     = "$default"
	KeyValues      = "$values"
	KeyMinItems    = "$minItems"
	KeyMaxItems    = "$maxItems"
	KeyPrototype   = "$prototype"
	KeyName        = "$name"
	KeyHelp        = "$help"
	KeyPlaceholder = "$placeholder"
	KeyOptional    = "$optional"
	KeyDisabled    = "$disabled"
	KeyVisibleIf   = "$visibleIf"
)

// DirectivePrefix marks keys that configure the builder instead of naming a
// child element.
const DirectivePrefix = "$"

// Entry is one key/value pair of a Spec.
type Entry struct {
	Key   string
	Value any
}

// Spec is an ordered mapping. Declaration order drives rendering layout, so
// formulas are kept as entry lists rather than Go maps. Values are scalars,
// []any lists, or nested Spec values.
type Spec []Entry

// Get returns the value stored under key.
func (s Spec) Get(key string) (any, bool) {
	for _, entry := range s {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return nil, false
}

// Keys lists keys in declaration order.
func (s Spec) Keys() []string {
	keys := make([]string, len(s))
	for i, entry := range s {
		keys[i] = entry.Key
	}
	return keys
}

// FromMap converts an unordered map into a Spec. Keys are sorted so the
// result is deterministic; callers that care about layout order should load
// formulas through Parse instead.
func FromMap(m map[string]any) Spec {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(Spec, 0, len(keys))
	for _, key := range keys {
		out = append(out, Entry{Key: key, Value: normalizeValue(m[key])})
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return FromMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return value
	}
}

func asSpec(value any) (Spec, bool) {
	switch typed := value.(type) {
	case Spec:
		return typed, true
	case map[string]any:
		return FromMap(typed), true
	case nil:
		return Spec{}, true
	default:
		return nil, false
	}
}
