// Package move lowers contracts to Move IR modules. Contracts become a
// resource published under the deployer's account; struct values are
// plain Move structs reached through mutable references.
package move

// Expr is a Move IR expression.
type Expr interface {
	moveExpr()
}

// Ident names a constant or a local used without transfer.
type Ident struct {
	Name string
}

// Lit is a literal in Move spelling.
type Lit struct {
	Value string
}

// Call calls Fn, qualified by its module, with optional type arguments.
type Call struct {
	Fn       string
	TypeArgs []string
	Args     []Expr
}

// Binary applies an infix operator.
type Binary struct {
	Op   string
	L, R Expr
}

// Not negates a bool.
type Not struct {
	X Expr
}

// Cast converts an integer to Type.
type Cast struct {
	X    Expr
	Type string
}

// CopyOf copies a local.
type CopyOf struct {
	Name string
}

// MoveOf moves a local out.
type MoveOf struct {
	Name string
}

// Borrow is a mutable borrow of a local: &mut name.
type Borrow struct {
	Name string
}

// Ref copies a reference held in a local, such as `this` or an aggregate
// parameter.
type Ref struct {
	Name string
}

// BorrowField borrows a field through the reference Base. Imm borrows
// immutably.
type BorrowField struct {
	Base  Expr
	Field string
	Imm   bool
}

// ElemRef borrows element Index of the vector behind Vec.
type ElemRef struct {
	Vec   Expr
	Index Expr
	Elem  string
}

// MapEntry is the entry for Key in the runtime map behind Map. Loads and
// stores through it become map_get and map_put.
type MapEntry struct {
	Map  Expr
	Key  Expr
	K, V string
}

// Deref reads through a reference.
type Deref struct {
	X Expr
}

// Freeze turns a mutable reference into an immutable one.
type Freeze struct {
	X Expr
}

// FieldValue is one field of a Pack.
type FieldValue struct {
	Name  string
	Value Expr
}

// Pack builds a struct or resource value.
type Pack struct {
	Type   string
	Fields []FieldValue
}

// Uninit declares a local without a value.
type Uninit struct{}

func (Ident) moveExpr()       {}
func (Lit) moveExpr()         {}
func (Call) moveExpr()        {}
func (Binary) moveExpr()      {}
func (Not) moveExpr()         {}
func (Cast) moveExpr()        {}
func (CopyOf) moveExpr()      {}
func (MoveOf) moveExpr()      {}
func (Borrow) moveExpr()      {}
func (Ref) moveExpr()         {}
func (BorrowField) moveExpr() {}
func (ElemRef) moveExpr()     {}
func (MapEntry) moveExpr()    {}
func (Deref) moveExpr()       {}
func (Freeze) moveExpr()      {}
func (Pack) moveExpr()        {}
func (Uninit) moveExpr()      {}

// Stmt is a Move IR statement.
type Stmt interface {
	moveStmt()
}

// Seq is a statement list printed without braces.
type Seq struct {
	Stmts []Stmt
}

// Let declares a local. Declarations are hoisted to the top of the
// function when printed; the value becomes an assignment in place.
type Let struct {
	Name  string
	Type  string
	Value Expr
}

// Assign stores into a local.
type Assign struct {
	Name  string
	Value Expr
}

// StoreRef writes through a reference: *ref = value.
type StoreRef struct {
	Ref   Expr
	Value Expr
}

// If branches on Cond; Else may be empty.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While loops while Cond holds.
type While struct {
	Cond Expr
	Body []Stmt
}

// Return leaves the function; Value is nil for none.
type Return struct {
	Value Expr
}

// Abort stops execution with Code.
type Abort struct {
	Code uint64
}

// Assert aborts with Code unless Cond holds.
type Assert struct {
	Cond Expr
	Code uint64
}

// ExprStmt evaluates Expr. Discard drops a produced value.
type ExprStmt struct {
	Expr    Expr
	Discard bool
}

// Comment is emitted as a // line.
type Comment struct {
	Text string
}

func (Seq) moveStmt()      {}
func (Let) moveStmt()      {}
func (Assign) moveStmt()   {}
func (StoreRef) moveStmt() {}
func (If) moveStmt()       {}
func (While) moveStmt()    {}
func (Return) moveStmt()   {}
func (Abort) moveStmt()    {}
func (Assert) moveStmt()   {}
func (ExprStmt) moveStmt() {}
func (Comment) moveStmt()  {}

// Param is a typed function parameter.
type Param struct {
	Name string
	Type string
}

// FuncDef is a module function. Native functions have no body.
type FuncDef struct {
	Name       string
	Public     bool
	Native     bool
	TypeParams []string
	Params     []Param
	Result     string
	Acquires   []string
	Body       []Stmt
}

// Field is a struct field declaration.
type Field struct {
	Name string
	Type string
}

// StructDef declares a struct or, with Resource set, a resource.
type StructDef struct {
	Name       string
	Resource   bool
	TypeParams []string
	Fields     []Field
}

// Module is one Move module.
type Module struct {
	Name      string
	Imports   []string
	Structs   []StructDef
	Functions []FuncDef
}
