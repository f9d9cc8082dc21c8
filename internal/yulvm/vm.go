// Package yulvm interprets the Yul IR produced by the EVM backend. It
// models storage, memory, calldata and the handful of environment builtins
// the generated code uses, which is enough to observe reverts, overflow
// checks and storage effects without external tooling.
package yulvm

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"fortio.org/safecast"

	"flintc/internal/backend/evm"
)

// DefaultStepLimit bounds the statements one execution may run.
const DefaultStepLimit = 1_000_000

// MemoryLimit bounds the highest memory byte a program may touch.
const MemoryLimit = 1 << 24

// Log is one emitted log record.
type Log struct {
	Data   []byte
	Topics []*big.Int
}

// Transfer records a value-carrying call made by the program.
type Transfer struct {
	To    *big.Int
	Value *big.Int
}

// Result is the outcome of a successful execution.
type Result struct {
	Return []byte
	Logs   []Log
}

// Value returns the first returned word, or zero.
func (r *Result) Value() *big.Int {
	if len(r.Return) < WordBytes {
		return new(big.Int)
	}
	return ToWord(r.Return[:WordBytes])
}

// Contract is a deployed contract: its runtime object and persistent
// storage.
type Contract struct {
	Runtime   *evm.Object
	Storage   map[string]*big.Int
	Transfers []Transfer
	StepLimit int
}

type control uint8

const (
	ctlNext control = iota
	ctlBreak
	ctlContinue
	ctlLeave
)

// halt stops execution successfully with return data.
type halt struct {
	data []byte
}

func (h *halt) Error() string { return "halt" }

type frame struct {
	name string
	vars map[string]*big.Int
}

// machine is the state of one execution.
type machine struct {
	contract *Contract
	funcs    map[string]evm.FuncDef
	memory   []byte
	calldata []byte
	code     []byte
	caller   *big.Int
	value    *big.Int
	logs     []Log
	stack    []*frame
	steps    int
}

// Deploy runs the constructor of obj with args appended to the code, as a
// deployment transaction would, and returns the deployed contract.
func Deploy(obj *evm.Object, caller *big.Int, args ...*big.Int) (*Contract, error) {
	if len(obj.Objects) == 0 {
		return nil, fmt.Errorf("object %s has no runtime object", obj.Name)
	}
	c := &Contract{Runtime: obj.Objects[0], Storage: make(map[string]*big.Int), StepLimit: DefaultStepLimit}
	m := c.machine(obj.Code, caller, nil)
	m.code = Words(args...)
	if _, err := m.run(obj.Code); err != nil {
		return nil, err
	}
	return c, nil
}

// Calldata encodes a call of the function with signature sig.
func Calldata(sig string, args ...*big.Int) []byte {
	return append(evm.Keccak256([]byte(sig))[:4], Words(args...)...)
}

// Call runs the runtime object on calldata sent by caller.
func (c *Contract) Call(caller *big.Int, calldata []byte) (*Result, error) {
	m := c.machine(c.Runtime.Code, caller, calldata)
	return m.run(c.Runtime.Code)
}

// Invoke calls the runtime function name directly, bypassing the
// dispatcher, and returns its results.
func (c *Contract) Invoke(caller *big.Int, name string, args ...*big.Int) ([]*big.Int, error) {
	m := c.machine(c.Runtime.Code, caller, nil)
	snapshot := c.snapshot()
	var out []*big.Int
	err := m.guard(func() error {
		// Initialise the free memory pointer as the runtime preamble does.
		m.mstore(big.NewInt(0x40), big.NewInt(0x60))
		var err error
		out, err = m.callFunction(name, args)
		return err
	})
	if err != nil {
		c.Storage = snapshot
		var h *halt
		if errors.As(err, &h) {
			return nil, fmt.Errorf("function %s halted the call", name)
		}
		return nil, err
	}
	return out, nil
}

// Load reads a storage slot.
func (c *Contract) Load(slot *big.Int) *big.Int {
	if v, ok := c.Storage[slot.String()]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Store writes a storage slot.
func (c *Contract) Store(slot, v *big.Int) {
	c.Storage[slot.String()] = wrap(new(big.Int).Set(v))
}

func (c *Contract) snapshot() map[string]*big.Int {
	out := make(map[string]*big.Int, len(c.Storage))
	for k, v := range c.Storage {
		out[k] = v
	}
	return out
}

func (c *Contract) machine(code evm.Block, caller *big.Int, calldata []byte) *machine {
	if caller == nil {
		caller = new(big.Int)
	}
	m := &machine{
		contract: c,
		funcs:    make(map[string]evm.FuncDef),
		calldata: calldata,
		caller:   caller,
		value:    new(big.Int),
	}
	for _, s := range code.Stmts {
		if f, ok := s.(evm.FuncDef); ok {
			m.funcs[f.Name] = f
		}
	}
	return m
}

// run executes a top-level code block. Storage writes are undone when the
// execution reverts or faults.
func (m *machine) run(code evm.Block) (*Result, error) {
	snapshot := m.contract.snapshot()
	m.stack = []*frame{{name: "<code>", vars: make(map[string]*big.Int)}}
	err := m.guard(func() error {
		_, err := m.block(code)
		return err
	})
	var h *halt
	switch {
	case err == nil:
		return &Result{Logs: m.logs}, nil
	case errors.As(err, &h):
		return &Result{Return: h.data, Logs: m.logs}, nil
	}
	m.contract.Storage = snapshot
	return nil, err
}

// guard turns faults raised by panic in memory helpers into errors.
func (m *machine) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*Fault)
			if !ok {
				panic(r)
			}
			err = f
		}
	}()
	return fn()
}

func (m *machine) fault(code FaultCode, format string, args ...any) *Fault {
	f := &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
	for i := len(m.stack) - 1; i >= 0; i-- {
		f.Backtrace = append(f.Backtrace, m.stack[i].name)
	}
	return f
}

func (m *machine) top() *frame { return m.stack[len(m.stack)-1] }

func (m *machine) step() error {
	m.steps++
	limit := m.contract.StepLimit
	if limit <= 0 {
		limit = DefaultStepLimit
	}
	if m.steps > limit {
		return m.fault(FaultStepLimit, "more than %d steps", limit)
	}
	return nil
}

func (m *machine) block(b evm.Block) (control, error) {
	for _, s := range b.Stmts {
		ctl, err := m.stmt(s)
		if err != nil || ctl != ctlNext {
			return ctl, err
		}
	}
	return ctlNext, nil
}

func (m *machine) stmt(s evm.Stmt) (control, error) {
	if err := m.step(); err != nil {
		return ctlNext, err
	}
	switch s := s.(type) {
	case evm.Block:
		return m.block(s)
	case evm.FuncDef:
		// Functions are hoisted when the code block is loaded.
		m.funcs[s.Name] = s
		return ctlNext, nil
	case evm.Let:
		return ctlNext, m.bind(s.Names, s.Value, true)
	case evm.Assign:
		return ctlNext, m.bind(s.Names, s.Value, false)
	case evm.If:
		v, err := m.expr(s.Cond)
		if err != nil {
			return ctlNext, err
		}
		if v.Sign() != 0 {
			return m.block(s.Body)
		}
		return ctlNext, nil
	case evm.Switch:
		return m.switchStmt(s)
	case evm.For:
		return m.forStmt(s)
	case evm.Break:
		return ctlBreak, nil
	case evm.Continue:
		return ctlContinue, nil
	case evm.Leave:
		return ctlLeave, nil
	case evm.ExprStmt:
		_, err := m.eval(s.Expr)
		return ctlNext, err
	case evm.Comment:
		return ctlNext, nil
	}
	return ctlNext, m.fault(FaultUnknownFunction, "statement %T", s)
}

func (m *machine) bind(names []string, value evm.Expr, declare bool) error {
	vals := make([]*big.Int, len(names))
	for i := range vals {
		vals[i] = new(big.Int)
	}
	if value != nil {
		got, err := m.eval(value)
		if err != nil {
			return err
		}
		if len(got) != len(names) {
			return m.fault(FaultArity, "%d values for %d variables", len(got), len(names))
		}
		vals = got
	}
	vars := m.top().vars
	for i, name := range names {
		if _, ok := vars[name]; !ok && !declare {
			return m.fault(FaultUnknownVariable, "assignment to undeclared %s", name)
		}
		vars[name] = vals[i]
	}
	return nil
}

func (m *machine) switchStmt(s evm.Switch) (control, error) {
	v, err := m.expr(s.Expr)
	if err != nil {
		return ctlNext, err
	}
	for _, c := range s.Cases {
		if c.Value == nil {
			return m.block(c.Body)
		}
		lit, err := m.literal(c.Value.Value)
		if err != nil {
			return ctlNext, err
		}
		if lit.Cmp(v) == 0 {
			return m.block(c.Body)
		}
	}
	return ctlNext, nil
}

func (m *machine) forStmt(s evm.For) (control, error) {
	if _, err := m.block(s.Init); err != nil {
		return ctlNext, err
	}
	for {
		if err := m.step(); err != nil {
			return ctlNext, err
		}
		cond, err := m.expr(s.Cond)
		if err != nil {
			return ctlNext, err
		}
		if cond.Sign() == 0 {
			return ctlNext, nil
		}
		ctl, err := m.block(s.Body)
		if err != nil {
			return ctlNext, err
		}
		switch ctl {
		case ctlBreak:
			return ctlNext, nil
		case ctlLeave:
			return ctlLeave, nil
		}
		if _, err := m.block(s.Post); err != nil {
			return ctlNext, err
		}
	}
}

// expr evaluates an expression that must produce exactly one value.
func (m *machine) expr(e evm.Expr) (*big.Int, error) {
	vals, err := m.eval(e)
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 {
		return nil, m.fault(FaultArity, "%s produces %d values", evm.RenderExpr(e), len(vals))
	}
	return vals[0], nil
}

func (m *machine) eval(e evm.Expr) ([]*big.Int, error) {
	switch e := e.(type) {
	case evm.Ident:
		// Functions only see their own variables.
		if v, ok := m.top().vars[e.Name]; ok {
			return []*big.Int{new(big.Int).Set(v)}, nil
		}
		return nil, m.fault(FaultUnknownVariable, "undeclared %s", e.Name)
	case evm.Lit:
		v, err := m.literal(e.Value)
		if err != nil {
			return nil, err
		}
		return []*big.Int{v}, nil
	case evm.Call:
		args := make([]*big.Int, len(e.Args))
		// Yul evaluates arguments right to left.
		for i := len(e.Args) - 1; i >= 0; i-- {
			v, err := m.expr(e.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		if _, ok := m.funcs[e.Fn]; ok {
			return m.callFunction(e.Fn, args)
		}
		return m.builtin(e.Fn, args)
	}
	return nil, m.fault(FaultUnknownFunction, "expression %T", e)
}

func (m *machine) literal(text string) (*big.Int, error) {
	if strings.HasPrefix(text, "\"") {
		s := strings.Trim(text, "\"")
		b := make([]byte, WordBytes)
		copy(b, s)
		return ToWord(b), nil
	}
	v, ok := new(big.Int).SetString(text, 0)
	if !ok || v.Sign() < 0 || v.Cmp(maxWord) > 0 {
		return nil, m.fault(FaultBadLiteral, "literal %q", text)
	}
	return v, nil
}

func (m *machine) callFunction(name string, args []*big.Int) ([]*big.Int, error) {
	f, ok := m.funcs[name]
	if !ok {
		return nil, m.fault(FaultUnknownFunction, "no function %s", name)
	}
	if len(args) != len(f.Params) {
		return nil, m.fault(FaultArity, "%s takes %d arguments, got %d", name, len(f.Params), len(args))
	}
	fr := &frame{name: name, vars: make(map[string]*big.Int, len(f.Params)+len(f.Returns))}
	for i, p := range f.Params {
		fr.vars[p] = args[i]
	}
	for _, r := range f.Returns {
		fr.vars[r] = new(big.Int)
	}
	m.stack = append(m.stack, fr)
	_, err := m.block(f.Body)
	m.stack = m.stack[:len(m.stack)-1]
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, len(f.Returns))
	for i, r := range f.Returns {
		out[i] = fr.vars[r]
	}
	return out, nil
}

// offset converts a word to a memory index within MemoryLimit.
func (m *machine) offset(v *big.Int) int {
	if !v.IsUint64() || v.Uint64() > MemoryLimit {
		panic(m.fault(FaultMemoryLimit, "memory offset %s", v))
	}
	n, err := safecast.Conv[int](v.Uint64())
	if err != nil {
		panic(m.fault(FaultMemoryLimit, "memory offset %s: %v", v, err))
	}
	return n
}

func (m *machine) grow(end int) {
	if end > MemoryLimit {
		panic(m.fault(FaultMemoryLimit, "memory size %d", end))
	}
	if end > len(m.memory) {
		// Memory grows in whole words.
		words := (end + WordBytes - 1) / WordBytes
		m.memory = append(m.memory, make([]byte, words*WordBytes-len(m.memory))...)
	}
}

func (m *machine) mload(off *big.Int) *big.Int {
	start := m.offset(off)
	m.grow(start + WordBytes)
	return ToWord(m.memory[start : start+WordBytes])
}

func (m *machine) mstore(off, v *big.Int) {
	start := m.offset(off)
	m.grow(start + WordBytes)
	copy(m.memory[start:], wordBytes(v))
}

func (m *machine) slice(off, size *big.Int) []byte {
	n := m.offset(size)
	if n == 0 {
		return nil
	}
	start := m.offset(off)
	m.grow(start + n)
	out := make([]byte, n)
	copy(out, m.memory[start:start+n])
	return out
}
