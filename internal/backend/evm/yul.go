// Package evm lowers contracts to Yul, the intermediate language of the
// EVM toolchain.
package evm

// Expr is a Yul expression.
type Expr interface {
	yulExpr()
}

// Ident references a variable.
type Ident struct {
	Name string
}

// Lit is a literal in Yul spelling: decimal, 0x-hex or a quoted string.
type Lit struct {
	Value string
}

// Call is a builtin or user function call.
type Call struct {
	Fn   string
	Args []Expr
}

func (Ident) yulExpr() {}
func (Lit) yulExpr()   {}
func (Call) yulExpr()  {}

// Stmt is a Yul statement.
type Stmt interface {
	yulStmt()
}

// Block is a braced statement list.
type Block struct {
	Stmts []Stmt
}

// FuncDef defines a function inside a code block.
type FuncDef struct {
	Name    string
	Params  []string
	Returns []string
	Body    Block
}

// Let declares variables, optionally with a value.
type Let struct {
	Names []string
	Value Expr
}

// Assign stores into declared variables.
type Assign struct {
	Names []string
	Value Expr
}

// If runs Body when Cond is non-zero.
type If struct {
	Cond Expr
	Body Block
}

// Case is one arm of a switch; Value is nil for the default arm.
type Case struct {
	Value *Lit
	Body  Block
}

// Switch dispatches on the value of Expr.
type Switch struct {
	Expr  Expr
	Cases []Case
}

// For is Yul's only loop.
type For struct {
	Init Block
	Cond Expr
	Post Block
	Body Block
}

type (
	Break    struct{}
	Continue struct{}
	// Leave returns from the current function.
	Leave struct{}
)

// ExprStmt evaluates a call whose result, if any, was popped.
type ExprStmt struct {
	Expr Expr
}

// Comment is emitted as a // line.
type Comment struct {
	Text string
}

func (Block) yulStmt()    {}
func (FuncDef) yulStmt()  {}
func (Let) yulStmt()      {}
func (Assign) yulStmt()   {}
func (If) yulStmt()       {}
func (Switch) yulStmt()   {}
func (For) yulStmt()      {}
func (Break) yulStmt()    {}
func (Continue) yulStmt() {}
func (Leave) yulStmt()    {}
func (ExprStmt) yulStmt() {}
func (Comment) yulStmt()  {}

// Object is a Yul object: a code block plus nested objects.
type Object struct {
	Name    string
	Code    Block
	Objects []*Object
}

func id(name string) Expr { return Ident{Name: name} }

func lit(v string) Expr { return Lit{Value: v} }

func call(fn string, args ...Expr) Expr { return Call{Fn: fn, Args: args} }

func exprStmt(fn string, args ...Expr) Stmt { return ExprStmt{Expr: call(fn, args...)} }

func block(stmts ...Stmt) Block { return Block{Stmts: stmts} }
