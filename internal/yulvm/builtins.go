package yulvm

import (
	"math/big"

	"flintc/internal/backend/evm"
)

type builtinFunc func(m *machine, args []*big.Int) ([]*big.Int, error)

type builtin struct {
	arity int
	fn    builtinFunc
}

func pure(f func(a, b *big.Int) *big.Int) builtin {
	return builtin{arity: 2, fn: func(_ *machine, args []*big.Int) ([]*big.Int, error) {
		return []*big.Int{f(args[0], args[1])}, nil
	}}
}

func effect(arity int, f func(m *machine, args []*big.Int) error) builtin {
	return builtin{arity: arity, fn: func(m *machine, args []*big.Int) ([]*big.Int, error) {
		return nil, f(m, args)
	}}
}

func value(arity int, f func(m *machine, args []*big.Int) *big.Int) builtin {
	return builtin{arity: arity, fn: func(m *machine, args []*big.Int) ([]*big.Int, error) {
		return []*big.Int{f(m, args)}, nil
	}}
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"add": pure(func(a, b *big.Int) *big.Int { return wrap(new(big.Int).Add(a, b)) }),
		"sub": pure(func(a, b *big.Int) *big.Int { return wrap(new(big.Int).Sub(a, b)) }),
		"mul": pure(func(a, b *big.Int) *big.Int { return wrap(new(big.Int).Mul(a, b)) }),
		"div": pure(func(a, b *big.Int) *big.Int {
			if b.Sign() == 0 {
				return new(big.Int)
			}
			return new(big.Int).Quo(a, b)
		}),
		"mod": pure(func(a, b *big.Int) *big.Int {
			if b.Sign() == 0 {
				return new(big.Int)
			}
			return new(big.Int).Rem(a, b)
		}),
		"exp":    pure(func(a, b *big.Int) *big.Int { return new(big.Int).Exp(a, b, modulus) }),
		"lt":     pure(func(a, b *big.Int) *big.Int { return boolWord(a.Cmp(b) < 0) }),
		"gt":     pure(func(a, b *big.Int) *big.Int { return boolWord(a.Cmp(b) > 0) }),
		"eq":     pure(func(a, b *big.Int) *big.Int { return boolWord(a.Cmp(b) == 0) }),
		"and":    pure(func(a, b *big.Int) *big.Int { return new(big.Int).And(a, b) }),
		"or":     pure(func(a, b *big.Int) *big.Int { return new(big.Int).Or(a, b) }),
		"xor":    pure(func(a, b *big.Int) *big.Int { return new(big.Int).Xor(a, b) }),
		"iszero": value(1, func(_ *machine, args []*big.Int) *big.Int { return boolWord(args[0].Sign() == 0) }),
		"not":    value(1, func(_ *machine, args []*big.Int) *big.Int { return new(big.Int).Xor(args[0], maxWord) }),
		"pop":    effect(1, func(*machine, []*big.Int) error { return nil }),

		"mload": value(1, func(m *machine, args []*big.Int) *big.Int { return m.mload(args[0]) }),
		"mstore": effect(2, func(m *machine, args []*big.Int) error {
			m.mstore(args[0], args[1])
			return nil
		}),
		"sload": value(1, func(m *machine, args []*big.Int) *big.Int { return m.contract.Load(args[0]) }),
		"sstore": effect(2, func(m *machine, args []*big.Int) error {
			m.contract.Store(args[0], args[1])
			return nil
		}),
		"keccak256": value(2, func(m *machine, args []*big.Int) *big.Int {
			return ToWord(evm.Keccak256(m.slice(args[0], args[1])))
		}),

		"calldataload": value(1, func(m *machine, args []*big.Int) *big.Int {
			word := make([]byte, WordBytes)
			if args[0].IsUint64() && args[0].Uint64() < uint64(len(m.calldata)) {
				copy(word, m.calldata[args[0].Uint64():])
			}
			return ToWord(word)
		}),
		"calldatasize": value(0, func(m *machine, _ []*big.Int) *big.Int { return big.NewInt(int64(len(m.calldata))) }),
		"codesize":     value(0, func(m *machine, _ []*big.Int) *big.Int { return big.NewInt(int64(len(m.code))) }),
		"codecopy": effect(3, func(m *machine, args []*big.Int) error {
			n := m.offset(args[2])
			if n == 0 {
				return nil
			}
			dst := m.offset(args[0])
			m.grow(dst + n)
			src := make([]byte, n)
			if args[1].IsUint64() && args[1].Uint64() < uint64(len(m.code)) {
				copy(src, m.code[args[1].Uint64():])
			}
			copy(m.memory[dst:], src)
			return nil
		}),
		// The runtime object is kept as IR, so deployment copies nothing.
		"dataoffset": value(1, func(*machine, []*big.Int) *big.Int { return new(big.Int) }),
		"datasize":   value(1, func(*machine, []*big.Int) *big.Int { return new(big.Int) }),
		"datacopy":   effect(3, func(*machine, []*big.Int) error { return nil }),

		"caller":    value(0, func(m *machine, _ []*big.Int) *big.Int { return new(big.Int).Set(m.caller) }),
		"callvalue": value(0, func(m *machine, _ []*big.Int) *big.Int { return new(big.Int).Set(m.value) }),
		"gas":       value(0, func(m *machine, _ []*big.Int) *big.Int { return big.NewInt(int64(m.remaining())) }),
		"call": builtin{arity: 7, fn: func(m *machine, args []*big.Int) ([]*big.Int, error) {
			m.contract.Transfers = append(m.contract.Transfers, Transfer{To: args[1], Value: args[2]})
			return []*big.Int{big.NewInt(1)}, nil
		}},
		"log1": effect(3, func(m *machine, args []*big.Int) error {
			m.logs = append(m.logs, Log{Data: m.slice(args[0], args[1]), Topics: []*big.Int{args[2]}})
			return nil
		}),
		"return": effect(2, func(m *machine, args []*big.Int) error {
			return &halt{data: m.slice(args[0], args[1])}
		}),
		"revert": effect(2, func(m *machine, args []*big.Int) error {
			return &Revert{Data: m.slice(args[0], args[1])}
		}),
	}
}

func (m *machine) remaining() int {
	limit := m.contract.StepLimit
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	return max(limit-m.steps, 0)
}

func (m *machine) builtin(name string, args []*big.Int) ([]*big.Int, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, m.fault(FaultUnknownFunction, "no function %s", name)
	}
	if len(args) != b.arity {
		return nil, m.fault(FaultArity, "%s takes %d arguments, got %d", name, b.arity, len(args))
	}
	return b.fn(m, args)
}

// IsBuiltin reports whether name is a builtin the interpreter implements.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}
