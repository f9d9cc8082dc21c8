package evm

import (
	"slices"
)

// RuntimePrefix starts the name of every runtime library function.
const RuntimePrefix = "flint$"

func rt(name string) string { return RuntimePrefix + name }

func revert() Stmt { return exprStmt("revert", lit("0"), lit("0")) }

func fn(name string, params []string, returns []string, body ...Stmt) FuncDef {
	return FuncDef{Name: rt(name), Params: params, Returns: returns, Body: block(body...)}
}

func ps(names ...string) []string { return names }

// regionSwitch branches on a memory flag: non-zero selects memory.
func regionSwitch(flag Expr, memory, storage Block) Stmt {
	return Switch{Expr: call("iszero", flag), Cases: []Case{
		{Value: &Lit{Value: "0"}, Body: memory},
		{Body: storage},
	}}
}

// RuntimeLibrary returns the runtime functions in a fixed order.
func RuntimeLibrary() []FuncDef {
	return []FuncDef{
		fn("selector", nil, ps("ret"),
			Assign{Names: ps("ret"), Value: call("div", call("calldataload", lit("0")),
				lit("0x100000000000000000000000000000000000000000000000000000000"))}),
		fn("decodeAsUInt", ps("offset"), ps("ret"),
			Assign{Names: ps("ret"), Value: call("calldataload",
				call("add", lit("4"), call("mul", id("offset"), lit("0x20"))))}),
		fn("decodeAsAddress", ps("offset"), ps("ret"),
			Assign{Names: ps("ret"), Value: call(rt("decodeAsUInt"), id("offset"))}),
		fn("store", ps("ptr", "val", "mem"), nil,
			regionSwitch(id("mem"),
				block(exprStmt("mstore", id("ptr"), id("val"))),
				block(exprStmt("sstore", id("ptr"), id("val"))))),
		fn("load", ps("ptr", "mem"), ps("ret"),
			regionSwitch(id("mem"),
				block(Assign{Names: ps("ret"), Value: call("mload", id("ptr"))}),
				block(Assign{Names: ps("ret"), Value: call("sload", id("ptr"))}))),
		fn("computeOffset", ps("base", "offset", "mem"), ps("ret"),
			regionSwitch(id("mem"),
				block(Assign{Names: ps("ret"), Value: call("add", id("base"), call("mul", id("offset"), lit("32")))}),
				block(Assign{Names: ps("ret"), Value: call("add", id("base"), id("offset"))}))),
		fn("allocateMemory", ps("size"), ps("ret"),
			Assign{Names: ps("ret"), Value: call("mload", lit("0x40"))},
			exprStmt("mstore", lit("0x40"), call("add", id("ret"), id("size")))),
		fn("isMatchingTypeState", ps("stateValue", "stateVariable"), ps("ret"),
			Assign{Names: ps("ret"), Value: call("eq", id("stateValue"), id("stateVariable"))}),
		fn("isValidCallerProtection", ps("_address"), ps("ret"),
			Assign{Names: ps("ret"), Value: call("eq", id("_address"), call("caller"))}),
		fn("isCallerProtectionInArray", ps("arrayOffset"), ps("ret"),
			Let{Names: ps("size"), Value: call("sload", id("arrayOffset"))},
			For{
				Init: block(Let{Names: ps("i"), Value: lit("0")}),
				Cond: call("and", call("lt", id("i"), id("size")), call("iszero", id("ret"))),
				Post: block(Assign{Names: ps("i"), Value: call("add", id("i"), lit("1"))}),
				Body: block(If{
					Cond: call("eq", call("sload", call(rt("storageDictionaryOffsetForKey"), id("arrayOffset"), id("i"))), call("caller")),
					Body: block(Assign{Names: ps("ret"), Value: lit("1")}),
				}),
			}),
		fn("isCallerProtectionInFixedArray", ps("arrayOffset", "size"), ps("ret"),
			For{
				Init: block(Let{Names: ps("i"), Value: lit("0")}),
				Cond: call("and", call("lt", id("i"), id("size")), call("iszero", id("ret"))),
				Post: block(Assign{Names: ps("i"), Value: call("add", id("i"), lit("1"))}),
				Body: block(If{
					Cond: call("eq", call("sload", call("add", id("arrayOffset"), id("i"))), call("caller")),
					Body: block(Assign{Names: ps("ret"), Value: lit("1")}),
				}),
			}),
		fn("return32Bytes", ps("v"), nil,
			exprStmt("mstore", lit("0"), id("v")),
			exprStmt("return", lit("0"), lit("0x20"))),
		fn("isInvalidSubscriptExpression", ps("index", "arraySize"), ps("ret"),
			Assign{Names: ps("ret"), Value: call("or", call("iszero", id("arraySize")),
				call("or", call("lt", id("index"), lit("0")),
					call("gt", id("index"), call(rt("sub"), id("arraySize"), lit("1")))))}),
		fn("checkIndex", ps("index", "arraySize"), ps("ret"),
			If{Cond: call(rt("isInvalidSubscriptExpression"), id("index"), id("arraySize")),
				Body: block(exprStmt(rt("fatalError")))},
			Assign{Names: ps("ret"), Value: id("index")}),
		fn("storageDictionaryOffsetForKey", ps("dictionaryOffset", "key"), ps("ret"),
			exprStmt("mstore", lit("0"), id("key")),
			exprStmt("mstore", lit("32"), id("dictionaryOffset")),
			Assign{Names: ps("ret"), Value: call("keccak256", lit("0"), lit("64"))}),
		fn("storageArrayOffset", ps("arrayOffset", "index"), ps("ret"),
			Assign{Names: ps("ret"), Value: call(rt("storageDictionaryOffsetForKey"), id("arrayOffset"), id("index"))}),
		fn("dictionaryKeysOffset", ps("dictionaryOffset"), ps("ret"),
			exprStmt("mstore", lit("0"), id("dictionaryOffset")),
			Assign{Names: ps("ret"), Value: call("keccak256", lit("0"), lit("32"))}),
		fn("dictionaryInsert", ps("dictionaryOffset", "key"), ps("ret"),
			Let{Names: ps("seen"), Value: call(rt("storageDictionaryOffsetForKey"),
				call(rt("dictionaryKeysOffset"), id("dictionaryOffset")), id("key"))},
			If{Cond: call("iszero", call("sload", id("seen"))), Body: block(
				exprStmt("sstore", id("seen"), lit("1")),
				exprStmt("sstore", id("dictionaryOffset"), call("add", call("sload", id("dictionaryOffset")), lit("1"))),
			)},
			Assign{Names: ps("ret"), Value: call(rt("storageDictionaryOffsetForKey"), id("dictionaryOffset"), id("key"))}),
		fn("copyDynamicArray", ps("dst", "dstMem", "src", "srcMem", "stride"), nil,
			Let{Names: ps("size"), Value: call(rt("load"), id("src"), id("srcMem"))},
			exprStmt(rt("store"), id("dst"), id("size"), id("dstMem")),
			For{
				Init: block(Let{Names: ps("i"), Value: lit("0")}),
				Cond: call("lt", id("i"), id("size")),
				Post: block(Assign{Names: ps("i"), Value: call("add", id("i"), lit("1"))}),
				Body: block(
					Let{Names: ps("to"), Value: call(rt("dynamicArrayOffset"), id("dst"), id("i"), id("stride"), id("dstMem"))},
					Let{Names: ps("from"), Value: call(rt("dynamicArrayOffset"), id("src"), id("i"), id("stride"), id("srcMem"))},
					For{
						Init: block(Let{Names: ps("w"), Value: lit("0")}),
						Cond: call("lt", id("w"), id("stride")),
						Post: block(Assign{Names: ps("w"), Value: call("add", id("w"), lit("1"))}),
						Body: block(exprStmt(rt("store"),
							call(rt("computeOffset"), id("to"), id("w"), id("dstMem")),
							call(rt("load"), call(rt("computeOffset"), id("from"), id("w"), id("srcMem")), id("srcMem")),
							id("dstMem"))),
					},
				),
			}),
		fn("dynamicArrayOffset", ps("base", "index", "stride", "mem"), ps("ret"),
			regionSwitch(id("mem"),
				block(Assign{Names: ps("ret"), Value: call("add", call("add", id("base"), lit("32")),
					call("mul", call("mul", id("index"), id("stride")), lit("32")))}),
				block(Assign{Names: ps("ret"), Value: call(rt("storageDictionaryOffsetForKey"), id("base"), id("index"))}))),
		fn("send", ps("_value", "_address"), nil,
			Let{Names: ps("ret"), Value: call("call", call("gas"), id("_address"), id("_value"),
				lit("0"), lit("0"), lit("0"), lit("0"))},
			If{Cond: call("iszero", id("ret")), Body: block(revert())}),
		fn("fatalError", nil, nil, revert()),
		fn("add", ps("a", "b"), ps("c"),
			Assign{Names: ps("c"), Value: call("add", id("a"), id("b"))},
			If{Cond: call("lt", id("c"), id("a")), Body: block(revert())}),
		fn("sub", ps("a", "b"), ps("c"),
			If{Cond: call("gt", id("b"), id("a")), Body: block(revert())},
			Assign{Names: ps("c"), Value: call("sub", id("a"), id("b"))}),
		fn("mul", ps("a", "b"), ps("c"),
			Switch{Expr: call("iszero", id("a")), Cases: []Case{
				{Value: &Lit{Value: "0"}, Body: block(
					Assign{Names: ps("c"), Value: call("mul", id("a"), id("b"))},
					If{Cond: call("iszero", call("eq", call("div", id("c"), id("a")), id("b"))), Body: block(revert())},
				)},
				{Body: block(Assign{Names: ps("c"), Value: lit("0")})},
			}}),
		fn("div", ps("a", "b"), ps("c"),
			If{Cond: call("eq", id("b"), lit("0")), Body: block(revert())},
			Assign{Names: ps("c"), Value: call("div", id("a"), id("b"))}),
		fn("mod", ps("a", "b"), ps("c"),
			If{Cond: call("eq", id("b"), lit("0")), Body: block(revert())},
			Assign{Names: ps("c"), Value: call("mod", id("a"), id("b"))}),
		fn("power", ps("b", "e"), ps("ret"),
			Assign{Names: ps("ret"), Value: lit("1")},
			For{
				Init: block(Let{Names: ps("i"), Value: lit("0")}),
				Cond: call("lt", id("i"), id("e")),
				Post: block(Assign{Names: ps("i"), Value: call("add", id("i"), lit("1"))}),
				Body: block(Assign{Names: ps("ret"), Value: call(rt("mul"), id("ret"), id("b"))}),
			}),
	}
}

// RuntimeNames lists the runtime function names, sorted.
func RuntimeNames() []string {
	lib := RuntimeLibrary()
	out := make([]string, 0, len(lib))
	for _, f := range lib {
		out = append(out, f.Name)
	}
	slices.Sort(out)
	return out
}
