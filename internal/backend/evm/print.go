package evm

import (
	"strings"
)

// Render prints a statement as Yul text.
func Render(s Stmt) string {
	p := &printer{}
	p.stmt(s)
	return p.sb.String()
}

// RenderExpr prints an expression on one line.
func RenderExpr(e Expr) string {
	p := &printer{}
	p.expr(e)
	return p.sb.String()
}

// RenderObject prints a Yul object tree.
func RenderObject(o *Object) string {
	p := &printer{}
	p.object(o)
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
	if head == "" {
		p.line("{")
	} else {
		p.line(head + " {")
	}
	p.indent++
}

func (p *printer) close() {
	p.indent--
	p.line("}")
}

func (p *printer) object(o *Object) {
	p.open("object \"" + o.Name + "\"")
	p.open("code")
	p.stmts(o.Code.Stmts)
	p.close()
	for _, sub := range o.Objects {
		p.object(sub)
	}
	p.close()
}

func (p *printer) stmts(list []Stmt) {
	for _, s := range list {
		p.stmt(s)
	}
}

func (p *printer) body(head string, b Block) {
	if len(b.Stmts) == 0 {
		if head == "" {
			p.line("{ }")
		} else {
			p.line(head + " { }")
		}
		return
	}
	p.open(head)
	p.stmts(b.Stmts)
	p.close()
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case Block:
		p.body("", s)
	case FuncDef:
		head := "function " + s.Name + "(" + strings.Join(s.Params, ", ") + ")"
		if len(s.Returns) > 0 {
			head += " -> " + strings.Join(s.Returns, ", ")
		}
		p.body(head, s.Body)
	case Let:
		text := "let " + strings.Join(s.Names, ", ")
		if s.Value != nil {
			text += " := " + RenderExpr(s.Value)
		}
		p.line(text)
	case Assign:
		p.line(strings.Join(s.Names, ", ") + " := " + RenderExpr(s.Value))
	case If:
		p.body("if "+RenderExpr(s.Cond), s.Body)
	case Switch:
		p.line("switch " + RenderExpr(s.Expr))
		for _, c := range s.Cases {
			if c.Value == nil {
				p.body("default", c.Body)
			} else {
				p.body("case "+c.Value.Value, c.Body)
			}
		}
	case For:
		p.line("for " + inlineBlock(s.Init) + " " + RenderExpr(s.Cond) + " " + inlineBlock(s.Post))
		p.body("", s.Body)
	case Break:
		p.line("break")
	case Continue:
		p.line("continue")
	case Leave:
		p.line("leave")
	case ExprStmt:
		p.line(RenderExpr(s.Expr))
	case Comment:
		p.line("// " + s.Text)
	}
}

// inlineBlock prints the short init and post blocks of a for loop.
func inlineBlock(b Block) string {
	if len(b.Stmts) == 0 {
		return "{ }"
	}
	parts := make([]string, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		parts = append(parts, strings.TrimSpace(Render(s)))
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func (p *printer) expr(e Expr) {
	switch e := e.(type) {
	case Ident:
		p.sb.WriteString(e.Name)
	case Lit:
		p.sb.WriteString(e.Value)
	case Call:
		p.sb.WriteString(e.Fn)
		p.sb.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.expr(a)
		}
		p.sb.WriteByte(')')
	}
}
