package astio

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"flintc/internal/ast"
)

// ParseType reads a type in Flint spelling: Int, Wallet, [Int], Int[4],
// [Address: Int], (Int), inout T and Self.
func ParseType(s string) (ast.Type, error) {
	p := &typeParser{src: strings.TrimSpace(s)}
	t, err := p.parse()
	if err != nil {
		return ast.Type{}, fmt.Errorf("type %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return ast.Type{}, fmt.Errorf("type %q: trailing input at %d", s, p.pos)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) eat(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) parse() (ast.Type, error) {
	p.skipSpace()
	var t ast.Type
	switch {
	case strings.HasPrefix(p.src[p.pos:], "inout "):
		p.pos += len("inout ")
		inner, err := p.parse()
		if err != nil {
			return t, err
		}
		return ast.InoutOf(inner), nil
	case p.eat('['):
		first, err := p.parse()
		if err != nil {
			return t, err
		}
		if p.eat(':') {
			value, err := p.parse()
			if err != nil {
				return t, err
			}
			t = ast.DictOf(first, value)
		} else {
			t = ast.ArrayOf(first)
		}
		if !p.eat(']') {
			return t, fmt.Errorf("missing ] at %d", p.pos)
		}
	case p.eat('('):
		inner, err := p.parse()
		if err != nil {
			return t, err
		}
		if !p.eat(')') {
			return t, fmt.Errorf("missing ) at %d", p.pos)
		}
		t = ast.RangeOf(inner)
	default:
		name := p.ident()
		if name == "" {
			return t, fmt.Errorf("expected a type name at %d", p.pos)
		}
		switch {
		case name == "Self":
			t = ast.SelfType()
		case name == "Any":
			t = ast.Type{Kind: ast.TypeAny}
		default:
			if b, ok := ast.ParseBasic(name); ok {
				t = ast.BasicType(b)
			} else {
				t = ast.NamedType(name)
			}
		}
	}
	for p.eat('[') {
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		n, err := strconv.Atoi(p.src[start:p.pos])
		if err != nil {
			return t, fmt.Errorf("bad array size at %d", start)
		}
		if !p.eat(']') {
			return t, fmt.Errorf("missing ] at %d", p.pos)
		}
		t = ast.FixedArrayOf(t, n)
	}
	return t, nil
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}
