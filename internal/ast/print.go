package ast

import (
	"strings"
)

// String renders e in Flint surface syntax. Nested `.` expressions are
// printed with the grouping the tree actually has, so `(a.b).c` and
// `a.(b.c)` render differently even without a bracketed node.
func (e *Expr) String() string {
	var sb strings.Builder
	writeExpr(&sb, e, false)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e *Expr, nested bool) {
	if e == nil {
		sb.WriteString("<nil>")
		return
	}
	switch data := e.Data.(type) {
	case IdentData:
		sb.WriteString(data.Name)
	case SelfData:
		sb.WriteString("self")
	case LiteralData:
		writeLiteral(sb, data)
	case BinaryData:
		if nested {
			sb.WriteByte('(')
		}
		writeExpr(sb, data.Lhs, needsParens(data.Op, data.Lhs))
		if data.Op == OpDot {
			sb.WriteByte('.')
		} else {
			sb.WriteString(" " + data.Op.String() + " ")
		}
		writeExpr(sb, data.Rhs, needsParens(data.Op, data.Rhs))
		if nested {
			sb.WriteByte(')')
		}
	case BracketedData:
		sb.WriteByte('(')
		writeExpr(sb, data.Inner, false)
		sb.WriteByte(')')
	case CallData:
		sb.WriteString(data.Name)
		sb.WriteByte('(')
		for i, a := range data.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			if a.Label != "" {
				sb.WriteString(a.Label + ": ")
			}
			writeExpr(sb, a.Value, false)
		}
		sb.WriteByte(')')
	case SubscriptData:
		writeExpr(sb, data.Base, data.Base.Kind == ExprBinary)
		sb.WriteByte('[')
		writeExpr(sb, data.Index, false)
		sb.WriteByte(']')
	case VarDeclData:
		if data.Constant {
			sb.WriteString("let ")
		} else {
			sb.WriteString("var ")
		}
		sb.WriteString(data.Name + ": " + data.Type.String())
	case RangeData:
		writeExpr(sb, data.Start, true)
		if data.HalfOpen {
			sb.WriteString("..<")
		} else {
			sb.WriteString("...")
		}
		writeExpr(sb, data.End, true)
	case ArrayLitData:
		sb.WriteByte('[')
		for i, el := range data.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, el, false)
		}
		sb.WriteByte(']')
	case DictLitData:
		sb.WriteByte('[')
		if len(data.Entries) == 0 {
			sb.WriteByte(':')
		}
		for i, en := range data.Entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, en.Key, false)
			sb.WriteString(": ")
			writeExpr(sb, en.Value, false)
		}
		sb.WriteByte(']')
	case InoutData:
		sb.WriteByte('&')
		writeExpr(sb, data.Inner, true)
	case NotData:
		sb.WriteByte('!')
		writeExpr(sb, data.Operand, true)
	default:
		sb.WriteString("<" + e.Kind.String() + ">")
	}
}

// needsParens keeps `.` chains readable inside other operators while still
// showing the grouping of nested `.` expressions.
func needsParens(parent Op, child *Expr) bool {
	if child.Kind != ExprBinary {
		return false
	}
	return parent == OpDot || !child.IsDot()
}

func writeLiteral(sb *strings.Builder, lit LiteralData) {
	switch lit.Kind {
	case LiteralBool:
		if lit.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case LiteralDecimal:
		sb.WriteString(lit.Integer + "." + lit.Fraction)
	case LiteralString:
		sb.WriteString(`"` + lit.Text + `"`)
	default:
		sb.WriteString(lit.Text)
	}
}

// String renders a statement on one line; bodies are elided.
func (s *Stmt) String() string {
	switch data := s.Data.(type) {
	case ExprStmtData:
		return data.Expr.String()
	case ReturnData:
		if data.Value == nil {
			return "return"
		}
		return "return " + data.Value.String()
	case IfData:
		return "if " + data.Cond.String() + " { ... }"
	case ForData:
		return "for " + data.Var + " in " + data.Iterable.String() + " { ... }"
	case BecomeData:
		return "become " + data.State
	case EmitData:
		return "emit " + data.Call.String()
	}
	return "<" + s.Kind.String() + ">"
}
