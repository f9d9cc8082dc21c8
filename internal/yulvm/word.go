package yulvm

import (
	"math/big"
)

// WordBytes is the size of an EVM word.
const WordBytes = 32

var (
	modulus = new(big.Int).Lsh(big.NewInt(1), 256)
	maxWord = new(big.Int).Sub(modulus, big.NewInt(1))
)

// MaxWord returns 2^256 - 1.
func MaxWord() *big.Int { return new(big.Int).Set(maxWord) }

// wrap reduces v into [0, 2^256).
func wrap(v *big.Int) *big.Int {
	return v.Mod(v, modulus)
}

func boolWord(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return big.NewInt(0)
}

// wordBytes encodes v as 32 big-endian bytes.
func wordBytes(v *big.Int) []byte {
	out := make([]byte, WordBytes)
	return new(big.Int).Set(v).FillBytes(out)
}

// Words encodes the arguments as consecutive 32-byte words.
func Words(vals ...*big.Int) []byte {
	out := make([]byte, 0, len(vals)*WordBytes)
	for _, v := range vals {
		out = append(out, wordBytes(wrap(new(big.Int).Set(v)))...)
	}
	return out
}

// ToWord decodes up to 32 big-endian bytes.
func ToWord(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
