package ast

// Op enumerates binary operators.
type Op uint8

const (
	OpDot Op = iota
	OpAssign
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	// Overflowing variants wrap instead of reverting.
	OpOverflowAdd
	OpOverflowSub
	OpOverflowMul
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
	// Compound assignments are desugared during lowering.
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
)

var opText = [...]string{
	OpDot:         ".",
	OpAssign:      "=",
	OpAdd:         "+",
	OpSub:         "-",
	OpMul:         "*",
	OpDiv:         "/",
	OpMod:         "%",
	OpPow:         "**",
	OpOverflowAdd: "&+",
	OpOverflowSub: "&-",
	OpOverflowMul: "&*",
	OpEq:          "==",
	OpNeq:         "!=",
	OpLt:          "<",
	OpLte:         "<=",
	OpGt:          ">",
	OpGte:         ">=",
	OpAnd:         "&&",
	OpOr:          "||",
	OpAddAssign:   "+=",
	OpSubAssign:   "-=",
	OpMulAssign:   "*=",
	OpDivAssign:   "/=",
}

func (op Op) String() string {
	if int(op) < len(opText) {
		return opText[op]
	}
	return "?"
}

// ParseOp maps operator text to an Op.
func ParseOp(s string) (Op, bool) {
	for i, text := range opText {
		if text == s {
			return Op(i), true
		}
	}
	return 0, false
}

// IsAssignment reports whether op writes its left operand.
func (op Op) IsAssignment() bool {
	switch op {
	case OpAssign, OpAddAssign, OpSubAssign, OpMulAssign, OpDivAssign:
		return true
	}
	return false
}

// Compound returns the arithmetic operator behind a compound assignment.
func (op Op) Compound() (Op, bool) {
	switch op {
	case OpAddAssign:
		return OpAdd, true
	case OpSubAssign:
		return OpSub, true
	case OpMulAssign:
		return OpMul, true
	case OpDivAssign:
		return OpDiv, true
	}
	return op, false
}
