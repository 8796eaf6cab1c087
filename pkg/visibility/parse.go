package visibility

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

type operator struct {
	text string
	kind tokenKind
}

// operators are matched longest first.
var operators = []operator{
	{"==", tokEq},
	{"!=", tokNeq},
	{"&&", tokAnd},
	{"||", tokOr},
	{"!", tokNot},
	{"(", tokLParen},
	{")", tokRParen},
}

func scan(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		if op, ok := matchOperator(input[i:]); ok {
			tokens = append(tokens, token{kind: op.kind, text: op.text})
			i += len(op.text)
			continue
		}

		if ch == '"' || ch == '\'' {
			end := closingQuote(input, i)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string at offset %d", ErrSyntax, i)
			}
			raw := input[i : end+1]
			if ch == '\'' {
				body := strings.ReplaceAll(raw[1:len(raw)-1], `\'`, `'`)
				raw = `"` + strings.ReplaceAll(body, `"`, `\"`) + `"`
			}
			text, err := strconv.Unquote(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid string literal %s", ErrSyntax, input[i:end+1])
			}
			tokens = append(tokens, token{kind: tokString, text: text})
			i = end + 1
			continue
		}

		if ch == '=' || ch == '&' || ch == '|' {
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, ch, i)
		}

		start := i
		for i < len(input) && !isDelimiter(input[i]) {
			i++
		}
		tokens = append(tokens, word(input[start:i]))
	}
	return tokens, nil
}

func matchOperator(rest string) (operator, bool) {
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			return op, true
		}
	}
	return operator{}, false
}

func closingQuote(input string, start int) int {
	quote := input[start]
	for i := start + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return -1
}

func isDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '(', ')', '!', '=', '&', '|', '"', '\'':
		return true
	default:
		return false
	}
}

func word(text string) token {
	switch strings.ToLower(text) {
	case "true", "false":
		return token{kind: tokBool, text: strings.ToLower(text)}
	case "null", "nil":
		return token{kind: tokNull, text: "null"}
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return token{kind: tokNumber, text: text}
	}
	return token{kind: tokIdent, text: text}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) accept(kind tokenKind) bool {
	if p.pos < len(p.tokens) && p.tokens[p.pos].kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept(tokOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) and() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept(tokAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) unary() (node, error) {
	if p.accept(tokNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if p.accept(tokLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokRParen) {
			return nil, fmt.Errorf("%w: missing ')'", ErrSyntax)
		}
		return inner, nil
	}
	if p.pos >= len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected end of rule", ErrSyntax)
	}
	tok := p.tokens[p.pos]
	if tok.kind != tokIdent {
		return nil, fmt.Errorf("%w: expected identifier, got %q", ErrSyntax, tok.text)
	}
	p.pos++

	negate := false
	switch {
	case p.accept(tokEq):
	case p.accept(tokNeq):
		negate = true
	default:
		return truthyNode{name: tok.text}, nil
	}

	if p.pos >= len(p.tokens) {
		return nil, fmt.Errorf("%w: missing value after %s", ErrSyntax, tok.text)
	}
	lit := p.tokens[p.pos]
	switch lit.kind {
	case tokString, tokNumber, tokBool, tokNull:
	case tokIdent:
		// Bare words compare as strings: `brand == Dell`.
		lit = token{kind: tokString, text: lit.text}
	default:
		return nil, fmt.Errorf("%w: expected value, got %q", ErrSyntax, lit.text)
	}
	p.pos++
	return compareNode{name: tok.text, negate: negate, literal: lit}, nil
}
