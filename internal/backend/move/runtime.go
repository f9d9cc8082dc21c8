package move

// RuntimeModule holds the helpers every generated module imports.
const RuntimeModule = "Flint$Runtime"

// Abort codes raised by generated code and the runtime module.
const (
	CodeFatal     uint64 = 1
	CodeOverflow  uint64 = 2
	CodeUnderflow uint64 = 3
	CodeDivZero   uint64 = 4
	CodeBounds    uint64 = 5
	CodeNoKey     uint64 = 6
	CodeCaller    uint64 = 7
	CodeTypeState uint64 = 8
)

const maxU64 = "18446744073709551615"

func rt(name string) string { return RuntimeModule + "." + name }

func cp(name string) Expr { return CopyOf{Name: name} }

func field(ref, name string, imm bool) Expr {
	return BorrowField{Base: Ref{Name: ref}, Field: name, Imm: imm}
}

func bin(op string, l, r Expr) Expr { return Binary{Op: op, L: l, R: r} }

func u64(v string) Expr { return Lit{Value: v} }

func u64Params(names ...string) []Param {
	out := make([]Param, len(names))
	for i, n := range names {
		out[i] = Param{Name: n, Type: "u64"}
	}
	return out
}

func arith(name string, guard Stmt, op string) FuncDef {
	body := []Stmt{}
	if guard != nil {
		body = append(body, guard)
	}
	body = append(body, Return{Value: bin(op, cp("a"), cp("b"))})
	return FuncDef{Name: name, Public: true, Params: u64Params("a", "b"), Result: "u64", Body: body}
}

// wrapping computes a op b modulo 2^64 through u128.
func wrapping(name, op string) FuncDef {
	wide := bin(op, Cast{X: cp("a"), Type: "u128"}, Cast{X: cp("b"), Type: "u128"})
	if op == "-" {
		// a - b = a + (2^64 - b) modulo 2^64.
		wide = bin("-", bin("+", Cast{X: cp("a"), Type: "u128"}, u64("18446744073709551616")), Cast{X: cp("b"), Type: "u128"})
	}
	return FuncDef{
		Name: name, Public: true, Params: u64Params("a", "b"), Result: "u64",
		Body: []Stmt{Return{Value: Cast{X: bin("%", wide, u64("18446744073709551616")), Type: "u64"}}},
	}
}

var mapParams = []string{"K: copy + drop", "V: store"}

func mapType() string { return "Self.FlintMap<K, V>" }

// Runtime returns the Flint$Runtime module.
func Runtime() *Module {
	return &Module{
		Name:    RuntimeModule,
		Imports: []string{"0x0.Vector"},
		Structs: []StructDef{{
			Name:       "FlintMap",
			TypeParams: mapParams,
			Fields:     []Field{{Name: "keys", Type: "vector<K>"}, {Name: "values", Type: "vector<V>"}},
		}},
		Functions: []FuncDef{
			arith("add", Assert{Cond: bin("<=", cp("a"), bin("-", u64(maxU64), cp("b"))), Code: CodeOverflow}, "+"),
			arith("sub", Assert{Cond: bin(">=", cp("a"), cp("b")), Code: CodeUnderflow}, "-"),
			arith("mul", If{
				Cond: bin("!=", cp("a"), u64("0")),
				Then: []Stmt{Assert{Cond: bin("<=", cp("b"), bin("/", u64(maxU64), cp("a"))), Code: CodeOverflow}},
			}, "*"),
			arith("div", Assert{Cond: bin("!=", cp("b"), u64("0")), Code: CodeDivZero}, "/"),
			arith("mod", Assert{Cond: bin("!=", cp("b"), u64("0")), Code: CodeDivZero}, "%"),
			{
				Name: "power", Public: true, Params: u64Params("b", "e"), Result: "u64",
				Body: []Stmt{
					Let{Name: "r", Type: "u64", Value: u64("1")},
					Let{Name: "i", Type: "u64", Value: u64("0")},
					While{Cond: bin("<", cp("i"), cp("e")), Body: []Stmt{
						Assign{Name: "r", Value: Call{Fn: "Self.mul", Args: []Expr{cp("r"), cp("b")}}},
						Assign{Name: "i", Value: bin("+", cp("i"), u64("1"))},
					}},
					Return{Value: cp("r")},
				},
			},
			wrapping("wrapping_add", "+"),
			wrapping("wrapping_sub", "-"),
			wrapping("wrapping_mul", "*"),
			{
				Name: "check_index", Public: true, Params: u64Params("i", "length"), Result: "u64",
				Body: []Stmt{
					Assert{Cond: bin("<", cp("i"), cp("length")), Code: CodeBounds},
					Return{Value: cp("i")},
				},
			},
			{
				Name: "map_empty", Public: true, TypeParams: mapParams, Result: mapType(),
				Body: []Stmt{Return{Value: Pack{Type: "FlintMap<K, V>", Fields: []FieldValue{
					{Name: "keys", Value: Call{Fn: "Vector.empty", TypeArgs: []string{"K"}}},
					{Name: "values", Value: Call{Fn: "Vector.empty", TypeArgs: []string{"V"}}},
				}}}},
			},
			mapFind(),
			{
				Name: "map_get", Public: true, TypeParams: mapParams,
				Params: []Param{{Name: "m", Type: "&" + mapType()}, {Name: "key", Type: "K"}},
				Result: "V",
				Body: []Stmt{
					Let{Name: "i", Type: "u64", Value: Call{Fn: "Self.map_find", TypeArgs: []string{"K", "V"}, Args: []Expr{cp("m"), cp("key")}}},
					Assert{Cond: bin("<", cp("i"), Call{Fn: "Vector.length", TypeArgs: []string{"K"}, Args: []Expr{field("m", "keys", true)}}), Code: CodeNoKey},
					Return{Value: Deref{X: Call{Fn: "Vector.borrow", TypeArgs: []string{"V"}, Args: []Expr{field("m", "values", true), cp("i")}}}},
				},
			},
			{
				Name: "map_put", Public: true, TypeParams: mapParams,
				Params: []Param{{Name: "m", Type: "&mut " + mapType()}, {Name: "key", Type: "K"}, {Name: "value", Type: "V"}},
				Body: []Stmt{
					Let{Name: "i", Type: "u64", Value: Call{Fn: "Self.map_find", TypeArgs: []string{"K", "V"}, Args: []Expr{Freeze{X: cp("m")}, cp("key")}}},
					If{
						Cond: bin("<", cp("i"), Call{Fn: "Vector.length", TypeArgs: []string{"K"}, Args: []Expr{field("m", "keys", true)}}),
						Then: []Stmt{
							StoreRef{Ref: Call{Fn: "Vector.borrow_mut", TypeArgs: []string{"V"}, Args: []Expr{field("m", "values", false), cp("i")}}, Value: MoveOf{Name: "value"}},
						},
						Else: []Stmt{
							ExprStmt{Expr: Call{Fn: "Vector.push_back", TypeArgs: []string{"K"}, Args: []Expr{field("m", "keys", false), cp("key")}}},
							ExprStmt{Expr: Call{Fn: "Vector.push_back", TypeArgs: []string{"V"}, Args: []Expr{field("m", "values", false), MoveOf{Name: "value"}}}},
						},
					},
					Return{},
				},
			},
			{
				Name: "map_size", Public: true, TypeParams: mapParams,
				Params: []Param{{Name: "m", Type: "&" + mapType()}},
				Result: "u64",
				Body: []Stmt{Return{Value: Call{Fn: "Vector.length", TypeArgs: []string{"K"}, Args: []Expr{field("m", "keys", true)}}}},
			},
			{
				Name: "map_borrow_mut", Public: true, TypeParams: mapParams,
				Params: []Param{{Name: "m", Type: "&mut " + mapType()}, {Name: "key", Type: "K"}},
				Result: "&mut V",
				Body: []Stmt{
					Let{Name: "i", Type: "u64", Value: Call{Fn: "Self.map_find", TypeArgs: []string{"K", "V"}, Args: []Expr{Freeze{X: cp("m")}, cp("key")}}},
					Assert{Cond: bin("<", cp("i"), Call{Fn: "Vector.length", TypeArgs: []string{"K"}, Args: []Expr{field("m", "keys", true)}}), Code: CodeNoKey},
					Return{Value: Call{Fn: "Vector.borrow_mut", TypeArgs: []string{"V"}, Args: []Expr{field("m", "values", false), cp("i")}}},
				},
			},
			{
				Name: "contains_sender", Public: true,
				Params: []Param{{Name: "v", Type: "&vector<address>"}, {Name: "sender", Type: "address"}},
				Result: "bool",
				Body: []Stmt{Return{Value: Call{Fn: "Vector.contains", TypeArgs: []string{"address"}, Args: []Expr{
					cp("v"), Freeze{X: Borrow{Name: "sender"}},
				}}}},
			},
			{Name: "emit", Public: true, Native: true, TypeParams: []string{"E: drop"}, Params: []Param{{Name: "event", Type: "E"}}},
		},
	}
}

// mapFind returns the index of key, or the map length when absent.
func mapFind() FuncDef {
	keys := field("m", "keys", true)
	return FuncDef{
		Name: "map_find", Public: true, TypeParams: mapParams,
		Params: []Param{{Name: "m", Type: "&" + mapType()}, {Name: "key", Type: "K"}},
		Result: "u64",
		Body: []Stmt{
			Let{Name: "i", Type: "u64", Value: u64("0")},
			Let{Name: "n", Type: "u64", Value: Call{Fn: "Vector.length", TypeArgs: []string{"K"}, Args: []Expr{keys}}},
			While{Cond: bin("<", cp("i"), cp("n")), Body: []Stmt{
				If{
					Cond: bin("==", Deref{X: Call{Fn: "Vector.borrow", TypeArgs: []string{"K"}, Args: []Expr{keys, cp("i")}}}, cp("key")),
					Then: []Stmt{Return{Value: cp("i")}},
				},
				Assign{Name: "i", Value: bin("+", cp("i"), u64("1"))},
			}},
			Return{Value: cp("n")},
		},
	}
}

// RuntimeNames lists the functions of the runtime module in order.
func RuntimeNames() []string {
	fns := Runtime().Functions
	out := make([]string, len(fns))
	for i, f := range fns {
		out[i] = f.Name
	}
	return out
}
