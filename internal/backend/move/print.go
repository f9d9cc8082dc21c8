package move

import (
	"strconv"
	"strings"
)

// Sanitize spells a name in Move identifier characters. The `$` used in
// mangled and runtime names becomes `__`.
func Sanitize(name string) string {
	return strings.ReplaceAll(name, "$", "__")
}

// RenderExpr prints an expression on one line.
func RenderExpr(e Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

// RenderModule prints a module as Move IR text.
func RenderModule(m *Module) string {
	p := &printer{}
	p.open("module " + Sanitize(m.Name))
	for _, imp := range m.Imports {
		p.line("import " + Sanitize(imp) + ";")
	}
	for _, s := range m.Structs {
		p.structDef(s)
	}
	for _, f := range m.Functions {
		p.function(f)
	}
	p.close()
	return p.sb.String()
}

// RenderFunction prints one function, with its locals hoisted.
func RenderFunction(f FuncDef) string {
	p := &printer{}
	p.function(f)
	return p.sb.String()
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) line(s string) {
	for range p.indent {
		p.sb.WriteString("  ")
	}
	p.sb.WriteString(s)
	p.sb.WriteByte('\n')
}

func (p *printer) open(head string) {
	p.line(head + " {")
	p.indent++
}

func (p *printer) close() {
	p.indent--
	p.line("}")
}

func typeParams(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "<" + strings.Join(params, ", ") + ">"
}

func (p *printer) structDef(s StructDef) {
	kind := "struct "
	if s.Resource {
		kind = "resource "
	}
	p.open(kind + Sanitize(s.Name) + typeParams(s.TypeParams))
	for i, f := range s.Fields {
		sep := ","
		if i == len(s.Fields)-1 {
			sep = ""
		}
		p.line(Sanitize(f.Name) + ": " + Sanitize(f.Type) + sep)
	}
	p.close()
}

func (p *printer) function(f FuncDef) {
	var head strings.Builder
	if f.Native {
		head.WriteString("native ")
	}
	if f.Public {
		head.WriteString("public ")
	}
	head.WriteString(Sanitize(f.Name))
	head.WriteString(typeParams(f.TypeParams))
	head.WriteByte('(')
	for i, prm := range f.Params {
		if i > 0 {
			head.WriteString(", ")
		}
		head.WriteString(Sanitize(prm.Name) + ": " + Sanitize(prm.Type))
	}
	head.WriteByte(')')
	if f.Result != "" {
		head.WriteString(": " + Sanitize(f.Result))
	}
	if len(f.Acquires) > 0 {
		head.WriteString(" acquires " + strings.Join(f.Acquires, ", "))
	}
	if f.Native {
		p.line(head.String() + ";")
		return
	}
	p.open(head.String())
	for _, l := range hoist(f.Body) {
		p.line("let " + Sanitize(l.Name) + ": " + Sanitize(l.Type) + ";")
	}
	p.stmts(f.Body)
	p.close()
}

// hoist collects every local declared in body, first declaration wins.
func hoist(body []Stmt) []Let {
	var out []Let
	seen := make(map[string]bool)
	var walk func([]Stmt)
	walk = func(list []Stmt) {
		for _, s := range list {
			switch s := s.(type) {
			case Let:
				if !seen[s.Name] {
					seen[s.Name] = true
					out = append(out, s)
				}
			case Seq:
				walk(s.Stmts)
			case If:
				walk(s.Then)
				walk(s.Else)
			case While:
				walk(s.Body)
			}
		}
	}
	walk(body)
	return out
}

func (p *printer) stmts(list []Stmt) {
	for _, s := range list {
		p.stmt(s)
	}
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case Seq:
		p.stmts(s.Stmts)
	case Let:
		if s.Value == nil {
			return
		}
		if _, ok := s.Value.(Uninit); ok {
			return
		}
		p.line(Sanitize(s.Name) + " = " + RenderExpr(s.Value) + ";")
	case Assign:
		p.line(Sanitize(s.Name) + " = " + RenderExpr(s.Value) + ";")
	case StoreRef:
		p.line("*(" + RenderExpr(s.Ref) + ") = " + RenderExpr(s.Value) + ";")
	case If:
		p.open("if (" + RenderExpr(s.Cond) + ")")
		p.stmts(s.Then)
		if len(s.Else) > 0 {
			p.indent--
			p.line("} else {")
			p.indent++
			p.stmts(s.Else)
		}
		p.close()
	case While:
		p.open("while (" + RenderExpr(s.Cond) + ")")
		p.stmts(s.Body)
		p.close()
	case Return:
		if s.Value == nil {
			p.line("return;")
			return
		}
		p.line("return " + RenderExpr(s.Value) + ";")
	case Abort:
		p.line("abort(" + strconv.FormatUint(s.Code, 10) + ");")
	case Assert:
		p.line("assert(" + RenderExpr(s.Cond) + ", " + strconv.FormatUint(s.Code, 10) + ");")
	case ExprStmt:
		if s.Discard {
			p.line("_ = " + RenderExpr(s.Expr) + ";")
			return
		}
		p.line(RenderExpr(s.Expr) + ";")
	case Comment:
		p.line("// " + s.Text)
	}
}

func writeArgs(sb *strings.Builder, args []Expr) {
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, a)
	}
	sb.WriteByte(')')
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case Ident:
		sb.WriteString(Sanitize(e.Name))
	case Lit:
		sb.WriteString(e.Value)
	case Call:
		sb.WriteString(Sanitize(e.Fn))
		if len(e.TypeArgs) > 0 {
			sb.WriteString(Sanitize(typeParams(e.TypeArgs)))
		}
		writeArgs(sb, e.Args)
	case Binary:
		sb.WriteByte('(')
		writeExpr(sb, e.L)
		sb.WriteString(" " + e.Op + " ")
		writeExpr(sb, e.R)
		sb.WriteByte(')')
	case Not:
		sb.WriteString("!(")
		writeExpr(sb, e.X)
		sb.WriteByte(')')
	case Cast:
		sb.WriteByte('(')
		writeExpr(sb, e.X)
		sb.WriteString(" as " + e.Type + ")")
	case CopyOf:
		sb.WriteString("copy(" + Sanitize(e.Name) + ")")
	case MoveOf:
		sb.WriteString("move(" + Sanitize(e.Name) + ")")
	case Borrow:
		sb.WriteString("&mut " + Sanitize(e.Name))
	case Ref:
		sb.WriteString("copy(" + Sanitize(e.Name) + ")")
	case BorrowField:
		if e.Imm {
			sb.WriteString("&")
		} else {
			sb.WriteString("&mut ")
		}
		switch b := e.Base.(type) {
		case Borrow:
			sb.WriteString(Sanitize(b.Name))
		case Ref:
			sb.WriteString("copy(" + Sanitize(b.Name) + ")")
		default:
			sb.WriteByte('(')
			writeExpr(sb, e.Base)
			sb.WriteByte(')')
		}
		sb.WriteString("." + Sanitize(e.Field))
	case ElemRef:
		sb.WriteString("Vector.borrow_mut<" + Sanitize(e.Elem) + ">")
		writeArgs(sb, []Expr{e.Vec, e.Index})
	case MapEntry:
		sb.WriteString(Sanitize(RuntimeModule) + ".map_borrow_mut<" + Sanitize(e.K) + ", " + Sanitize(e.V) + ">")
		writeArgs(sb, []Expr{e.Map, e.Key})
	case Deref:
		sb.WriteString("*(")
		writeExpr(sb, e.X)
		sb.WriteByte(')')
	case Freeze:
		sb.WriteString("freeze(")
		writeExpr(sb, e.X)
		sb.WriteByte(')')
	case Pack:
		sb.WriteString(Sanitize(e.Type) + " {")
		for i, f := range e.Fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(" " + Sanitize(f.Name) + ": ")
			writeExpr(sb, f.Value)
		}
		sb.WriteString(" }")
	}
}
