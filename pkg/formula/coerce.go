package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func emailValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Coerce converts value into the representation stored for this element:
// strings for text, email and select inputs, int or float64 for numbers.
// Emails must be well formed (the empty string is accepted) and select
// values must be one of the enumerated options.
func (e *Element) Coerce(value any) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil element", ErrInvalidValue)
	}
	switch e.Kind {
	case KindSelect:
		s := scalarString(value)
		for _, option := range e.Values {
			if option == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%w: %s: %q is not one of %v", ErrInvalidValue, e.Path, s, e.Values)
	case KindInput:
		switch e.InputType {
		case InputNumber:
			n, ok := toNumber(value)
			if !ok {
				return nil, fmt.Errorf("%w: %s: %v is not a number", ErrInvalidValue, e.Path, value)
			}
			return n, nil
		case InputEmail:
			s := scalarString(value)
			if s == "" {
				return s, nil
			}
			if err := emailValidator().Var(s, "email"); err != nil {
				return nil, fmt.Errorf("%w: %s: %q is not an email address", ErrInvalidValue, e.Path, s)
			}
			return s, nil
		default:
			return scalarString(value), nil
		}
	default:
		return nil, fmt.Errorf("%w: %s: %s elements hold no scalar value", ErrInvalidValue, e.Path, e.Kind)
	}
}

func scalarString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}

func toNumber(value any) (any, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int32:
		return int(typed), true
	case int64:
		return int(typed), true
	case uint64:
		return int(typed), true
	case float32:
		return normalizeFloat(float64(typed)), true
	case float64:
		return normalizeFloat(typed), true
	case string:
		trimmed := strings.TrimSpace(typed)
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return normalizeFloat(f), true
	default:
		return nil, false
	}
}

// normalizeFloat stores integral floats as int, the representation integer
// defaults decode to.
func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}
