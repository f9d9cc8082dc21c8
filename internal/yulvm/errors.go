package yulvm

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FaultCode identifies an interpreter fault.
type FaultCode int

// Stable fault codes - do not change values.
const (
	FaultUnknownFunction FaultCode = 1001 // YVM1001: call to an undefined function
	FaultUnknownVariable FaultCode = 1002 // YVM1002: read of an undeclared variable
	FaultArity           FaultCode = 1003 // YVM1003: wrong number of arguments or results
	FaultBadLiteral      FaultCode = 1004 // YVM1004: malformed literal
	FaultStepLimit       FaultCode = 1005 // YVM1005: execution exceeded the step limit
	FaultMemoryLimit     FaultCode = 1006 // YVM1006: memory access beyond the limit
)

// String returns the code as "YVM1001".
func (c FaultCode) String() string {
	return fmt.Sprintf("YVM%d", c)
}

// Fault is an error in the interpreted program that real EVM tooling would
// reject or run out of gas on.
type Fault struct {
	Code    FaultCode
	Message string
	// Backtrace lists the active functions, innermost first.
	Backtrace []string
}

func (f *Fault) Error() string {
	if len(f.Backtrace) == 0 {
		return fmt.Sprintf("fault %s: %s", f.Code, f.Message)
	}
	return fmt.Sprintf("fault %s: %s (in %s)", f.Code, f.Message, strings.Join(f.Backtrace, " <- "))
}

// Revert is returned when the program executes revert.
type Revert struct {
	Data []byte
}

func (r *Revert) Error() string {
	if len(r.Data) == 0 {
		return "execution reverted"
	}
	return "execution reverted: 0x" + hex.EncodeToString(r.Data)
}
