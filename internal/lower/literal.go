package lower

import (
	"math/big"
	"strings"

	"flintc/internal/ast"
)

// FixedPointDigits is the scale of decimal literals: 1.5 is 15 * 10^17.
const FixedPointDigits = 18

// LiteralKind is the backend-neutral shape of a literal.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitBool
	LitString
	LitAddress
)

// Literal is a decoded source literal. Decimals arrive as scaled integers.
type Literal struct {
	Kind LiteralKind
	Int  *big.Int
	Bool bool
	Text string
}

// DecodeLiteral maps a source literal to its backend-neutral value.
func DecodeLiteral(lit ast.LiteralData) (Literal, bool) {
	switch lit.Kind {
	case ast.LiteralBool:
		return Literal{Kind: LitBool, Bool: lit.Bool}, true
	case ast.LiteralInt:
		n, ok := new(big.Int).SetString(strings.ReplaceAll(lit.Text, "_", ""), 0)
		if !ok || n.Sign() < 0 {
			return Literal{}, false
		}
		return Literal{Kind: LitInt, Int: n}, true
	case ast.LiteralDecimal:
		n, ok := decodeDecimal(lit.Integer, lit.Fraction)
		if !ok {
			return Literal{}, false
		}
		return Literal{Kind: LitInt, Int: n}, true
	case ast.LiteralString:
		return Literal{Kind: LitString, Text: lit.Text}, true
	case ast.LiteralAddress:
		n, ok := new(big.Int).SetString(strings.TrimPrefix(strings.ToLower(lit.Text), "0x"), 16)
		if !ok {
			return Literal{}, false
		}
		return Literal{Kind: LitAddress, Int: n, Text: lit.Text}, true
	}
	return Literal{}, false
}

func decodeDecimal(integer, fraction string) (*big.Int, bool) {
	if len(fraction) > FixedPointDigits {
		return nil, false
	}
	if integer == "" {
		integer = "0"
	}
	digits := integer + fraction + strings.Repeat("0", FixedPointDigits-len(fraction))
	n, ok := new(big.Int).SetString(digits, 10)
	return n, ok
}

// IntLiteral is a convenience for emitters producing constants.
func IntLiteral(n int64) Literal {
	return Literal{Kind: LitInt, Int: big.NewInt(n)}
}
