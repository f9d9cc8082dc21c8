package evm

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	"flintc/internal/ast"
)

// abiType is the Solidity ABI spelling used in signatures.
func abiType(t ast.Type) string {
	t = t.Deref()
	if t.Kind == ast.TypeBasic {
		switch t.Basic {
		case ast.BasicAddress:
			return "address"
		case ast.BasicBool:
			return "bool"
		case ast.BasicString:
			return "bytes32"
		}
	}
	return "uint256"
}

// Signature is name(type,...) over the ABI types of params.
func Signature(name string, params []*ast.Param) string {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = abiType(p.Type)
	}
	return name + "(" + strings.Join(types, ",") + ")"
}

// Keccak256 hashes data with the legacy Keccak padding used by the EVM.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// Selector is the first four bytes of the Keccak-256 hash of the function
// signature, as a 0x-prefixed literal.
func Selector(fn *ast.FunctionDecl) string {
	sum := Keccak256([]byte(Signature(fn.Name, fn.Params)))
	return "0x" + hex.EncodeToString(sum[:4])
}

// EventTopic is the full Keccak-256 hash of the event signature.
func EventTopic(ev *ast.EventDecl) string {
	return "0x" + hex.EncodeToString(Keccak256([]byte(Signature(ev.Name, ev.Params))))
}
