package yulvm_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"flintc/internal/backend/evm"
	"flintc/internal/buildpipeline"
	"flintc/internal/layout"
	"flintc/internal/testkit"
	"flintc/internal/yulvm"
)

var (
	owner = big.NewInt(0xA11CE)
	other = big.NewInt(0xB0B)
)

type instance struct {
	*yulvm.Contract
	engine *layout.Engine
}

func deployBank(t *testing.T) instance {
	t.Helper()
	return deploy(t, "bank", "Bank")
}

// deploy compiles fixtures/<fixture>.yaml for the EVM and deploys the
// named contract with owner as its initializer argument.
func deploy(t *testing.T, fixture, contract string) instance {
	t.Helper()
	data, err := testkit.Fixture(fixture)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	res, err := buildpipeline.Compile(context.Background(), &buildpipeline.CompileRequest{
		Input: fixture + ".yaml", Data: data, Targets: []string{"evm"},
	})
	if err != nil {
		t.Fatalf("compile: %v (%v)", err, res.Bag.Items())
	}
	out, _ := res.Output("evm")
	obj, ok := out.EVM.Object(contract)
	if !ok {
		t.Fatalf("no %s object", contract)
	}
	c, err := yulvm.Deploy(obj, owner, owner)
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	return instance{Contract: c, engine: res.Engines["evm"]}
}

func (b instance) slot(t *testing.T, property string) *big.Int {
	t.Helper()
	return b.slotOf(t, "Bank", property)
}

func (b instance) slotOf(t *testing.T, contract, property string) *big.Int {
	t.Helper()
	off, err := b.engine.Offset(contract, property)
	if err != nil {
		t.Fatalf("offset %s: %v", property, err)
	}
	return big.NewInt(int64(off))
}

func (b instance) call(t *testing.T, from *big.Int, sig string, args ...*big.Int) *yulvm.Result {
	t.Helper()
	res, err := b.Call(from, yulvm.Calldata(sig, args...))
	if err != nil {
		t.Fatalf("%s: %v", sig, err)
	}
	return res
}

func (b instance) mustRevert(t *testing.T, from *big.Int, sig string, args ...*big.Int) {
	t.Helper()
	_, err := b.Call(from, yulvm.Calldata(sig, args...))
	var rev *yulvm.Revert
	if !errors.As(err, &rev) {
		t.Fatalf("%s: err = %v, want revert", sig, err)
	}
}

func word(n int64) *big.Int { return big.NewInt(n) }

func TestDeployRunsInitializer(t *testing.T) {
	b := deployBank(t)
	if got := b.Load(b.slot(t, "owner")); got.Cmp(owner) != 0 {
		t.Fatalf("owner = %s", got)
	}
	if got := b.Load(b.slot(t, "total")); got.Sign() != 0 {
		t.Fatalf("total = %s", got)
	}
}

func TestDepositUpdatesBalanceAndLogs(t *testing.T) {
	b := deployBank(t)
	res := b.call(t, other, "deposit(uint256,uint256)", word(5), word(0))
	if len(res.Logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(res.Logs))
	}
	if got, want := res.Logs[0].Data, yulvm.Words(other, word(5)); string(got) != string(want) {
		t.Fatalf("log data = %x, want %x", got, want)
	}

	if got := b.call(t, other, "balanceOf(address)", other).Value(); got.Int64() != 5 {
		t.Fatalf("balanceOf = %s", got)
	}
	if got := b.call(t, other, "balanceOf(address)", owner).Value(); got.Sign() != 0 {
		t.Fatalf("untouched balance = %s", got)
	}

	// Dictionary entries live at keccak256(key . base).
	entry := yulvm.ToWord(evm.Keccak256(yulvm.Words(other, b.slot(t, "balances"))))
	if got := b.Load(entry); got.Int64() != 5 {
		t.Fatalf("slot %s = %s", entry, got)
	}
}

func TestPreconditionReverts(t *testing.T) {
	b := deployBank(t)
	b.mustRevert(t, other, "deposit(uint256,uint256)", word(0), word(0))
}

func TestCheckedAdditionRevertsAndRollsBack(t *testing.T) {
	b := deployBank(t)
	b.call(t, other, "deposit(uint256,uint256)", yulvm.MaxWord(), word(0))
	b.mustRevert(t, other, "deposit(uint256,uint256)", word(1), word(0))

	if got := b.Load(b.slot(t, "total")); got.Cmp(yulvm.MaxWord()) != 0 {
		t.Fatalf("total = %s after reverted deposit", got)
	}
}

func TestWrappingAdditionWraps(t *testing.T) {
	b := deployBank(t)
	wallet := b.slot(t, "wallet")
	b.Store(wallet, yulvm.MaxWord())

	if got := b.call(t, owner, "currentLevel()").Value(); got.Sign() != 0 {
		t.Fatalf("max &+ 1 = %s, want 0", got)
	}
	if got := b.Load(b.slot(t, "level")); got.Int64() != 10 {
		t.Fatalf("level = %s, want the hidden value of mid", got)
	}
}

func TestSubscriptBounds(t *testing.T) {
	b := deployBank(t)
	limits := b.slot(t, "limits")
	b.Store(new(big.Int).Add(limits, word(3)), word(42))

	if got := b.call(t, other, "limitAt(uint256)", word(3)).Value(); got.Int64() != 42 {
		t.Fatalf("limitAt(3) = %s", got)
	}
	for _, i := range []*big.Int{word(4), word(100), yulvm.MaxWord()} {
		b.mustRevert(t, other, "limitAt(uint256)", i)
	}
	if got := b.call(t, other, "capacity()").Value(); got.Int64() != 4 {
		t.Fatalf("capacity = %s", got)
	}
	if got := b.call(t, other, "count()").Value(); got.Sign() != 0 {
		t.Fatalf("count = %s", got)
	}
}

func TestCallerProtectionAndTypeStates(t *testing.T) {
	b := deployBank(t)
	b.mustRevert(t, other, "close()")
	b.mustRevert(t, other, "useBump(uint256)", word(1))

	b.call(t, owner, "close()")
	b.mustRevert(t, other, "deposit(uint256,uint256)", word(1), word(0))
	b.mustRevert(t, owner, "close()")
}

func TestLoopsAndDefaultArguments(t *testing.T) {
	b := deployBank(t)
	tests := []struct {
		sig  string
		arg  int64
		want int64
	}{
		{"sumTo(uint256)", 10, 3},
		{"sumTo(uint256)", 2, 2},
		{"useBump(uint256)", 5, 8},
	}
	for _, tt := range tests {
		if got := b.call(t, owner, tt.sig, word(tt.arg)).Value(); got.Int64() != tt.want {
			t.Fatalf("%s(%d) = %s, want %d", tt.sig, tt.arg, got, tt.want)
		}
	}
}

func TestInvokeCallsUserFunction(t *testing.T) {
	b := deployBank(t)
	out, err := b.Invoke(owner, "Bank$bump$Int$Int$Int", word(1), word(2), word(3))
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if len(out) != 1 || out[0].Int64() != 6 {
		t.Fatalf("bump = %v", out)
	}
}

func TestUnknownSelectorReverts(t *testing.T) {
	b := deployBank(t)
	b.mustRevert(t, other, "withdraw(uint256)", word(1))
}

func TestStepLimit(t *testing.T) {
	b := deployBank(t)
	b.StepLimit = 5
	_, err := b.Call(owner, yulvm.Calldata("sumTo(uint256)", word(10)))
	var f *yulvm.Fault
	if !errors.As(err, &f) || f.Code != yulvm.FaultStepLimit {
		t.Fatalf("err = %v, want step limit fault", err)
	}
}

func TestArrayLiteralFillsStorageArray(t *testing.T) {
	b := deploy(t, "box", "Box")
	b.call(t, other, "fill()")

	if got := b.call(t, other, "itemCount()").Value(); got.Int64() != 3 {
		t.Fatalf("itemCount = %s, want 3", got)
	}
	for i, want := range []int64{1, 2, 3} {
		if got := b.call(t, other, "itemAt(uint256)", word(int64(i))).Value(); got.Int64() != want {
			t.Fatalf("itemAt(%d) = %s, want %d", i, got, want)
		}
	}
	b.mustRevert(t, other, "itemAt(uint256)", word(3))

	// Elements live at keccak256(index . base), like dictionary entries.
	second := yulvm.ToWord(evm.Keccak256(yulvm.Words(word(1), b.slotOf(t, "Box", "items"))))
	if got := b.Load(second); got.Int64() != 2 {
		t.Fatalf("slot %s = %s", second, got)
	}
}

func TestFixedArrayLiteralHasNoHeader(t *testing.T) {
	b := deploy(t, "box", "Box")
	for i, want := range []int64{7, 8, 9} {
		if got := b.call(t, other, "pick(uint256)", word(int64(i))).Value(); got.Int64() != want {
			t.Fatalf("pick(%d) = %s, want %d", i, got, want)
		}
	}
	b.mustRevert(t, other, "pick(uint256)", word(3))
}

func TestDictionarySizeCountsDistinctKeys(t *testing.T) {
	b := deploy(t, "box", "Box")
	if got := b.call(t, other, "markCount()").Value(); got.Sign() != 0 {
		t.Fatalf("markCount = %s before any write", got)
	}
	b.call(t, other, "mark(uint256,uint256)", word(5), word(10))
	b.call(t, other, "mark(uint256,uint256)", word(5), word(11))
	b.call(t, other, "mark(uint256,uint256)", word(6), word(0))
	if got := b.call(t, other, "markCount()").Value(); got.Int64() != 2 {
		t.Fatalf("markCount = %s, want 2", got)
	}
}

func TestDepositCountsDepositors(t *testing.T) {
	b := deployBank(t)
	b.call(t, other, "deposit(uint256,uint256)", word(5), word(0))
	b.call(t, other, "deposit(uint256,uint256)", word(1), word(0))
	if got := b.Load(b.slot(t, "balances")); got.Int64() != 1 {
		t.Fatalf("balances header = %s, want 1", got)
	}
}
