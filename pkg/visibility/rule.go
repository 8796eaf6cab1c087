// Package visibility compiles `$visibleIf` rules.
//
// Supported syntax:
//   - truthiness: `enabled`
//   - comparisons: `brand == "Dell"`, `disks != 0`, `email == null`
//   - composition: `a && !b`, `(a || b) && c`
//
// Identifiers are dotted element paths handed to a Resolver, which decides
// how they are scoped.
package visibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned for rules that fail to compile.
var ErrSyntax = errors.New("visibility: syntax error")

// Resolver looks up the current value of an identifier.
type Resolver func(name string) (any, bool)

// Rule is a compiled visibility expression. The zero Rule is always visible.
type Rule struct {
	source string
	root   node
}

// Compile parses source. An empty source compiles to an always-true rule.
func Compile(source string) (Rule, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return Rule{}, nil
	}
	tokens, err := scan(trimmed)
	if err != nil {
		return Rule{}, err
	}
	p := &parser{tokens: tokens}
	root, err := p.or()
	if err != nil {
		return Rule{}, err
	}
	if p.pos < len(p.tokens) {
		return Rule{}, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.tokens[p.pos].text)
	}
	return Rule{source: trimmed, root: root}, nil
}

// String returns the rule source.
func (r Rule) String() string { return r.source }

// Eval reports whether the rule holds for the values exposed by resolve.
func (r Rule) Eval(resolve Resolver) bool {
	if r.root == nil {
		return true
	}
	if resolve == nil {
		resolve = func(string) (any, bool) { return nil, false }
	}
	return r.root.eval(resolve)
}

// Identifiers lists the names the rule reads, in source order.
func (r Rule) Identifiers() []string {
	var out []string
	collectIdentifiers(r.root, &out)
	return out
}

type node interface {
	eval(Resolver) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(r Resolver) bool { return n.left.eval(r) || n.right.eval(r) }

type andNode struct{ left, right node }

func (n andNode) eval(r Resolver) bool { return n.left.eval(r) && n.right.eval(r) }

type notNode struct{ inner node }

func (n notNode) eval(r Resolver) bool { return !n.inner.eval(r) }

type truthyNode struct{ name string }

func (n truthyNode) eval(r Resolver) bool {
	value, ok := r(n.name)
	return ok && truthy(value)
}

type compareNode struct {
	name    string
	negate  bool
	literal token
}

func (n compareNode) eval(r Resolver) bool {
	value, _ := r(n.name)
	equal := matches(value, n.literal)
	if n.negate {
		return !equal
	}
	return equal
}

func collectIdentifiers(n node, out *[]string) {
	switch typed := n.(type) {
	case orNode:
		collectIdentifiers(typed.left, out)
		collectIdentifiers(typed.right, out)
	case andNode:
		collectIdentifiers(typed.left, out)
		collectIdentifiers(typed.right, out)
	case notNode:
		collectIdentifiers(typed.inner, out)
	case truthyNode:
		*out = append(*out, typed.name)
	case compareNode:
		*out = append(*out, typed.name)
	}
}

func matches(value any, lit token) bool {
	switch lit.kind {
	case tokNull:
		return value == nil || value == ""
	case tokBool:
		want := lit.text == "true"
		switch v := value.(type) {
		case bool:
			return v == want
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(v))
			return err == nil && parsed == want
		default:
			return truthy(value) == want
		}
	case tokNumber:
		want, err := strconv.ParseFloat(lit.text, 64)
		if err != nil {
			return false
		}
		got, ok := number(value)
		return ok && got == want
	default:
		return stringify(value) == lit.text
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		n, ok := number(value)
		return !ok || n != 0
	}
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
