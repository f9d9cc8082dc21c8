package lower

import (
	"errors"
	"fmt"

	"flintc/internal/source"
)

// InternalError reports a broken upstream invariant found while lowering.
// It is raised as a panic and recovered only by Recover at a backend entry
// point; compilation never continues past it.
type InternalError struct {
	Function string
	Span     source.Span
	Msg      string
	Err      error
}

func (e *InternalError) Error() string {
	if e == nil {
		return "<nil>"
	}
	where := e.Function
	if where == "" {
		where = "<module>"
	}
	msg := fmt.Sprintf("internal error lowering %s: %s", where, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InternalError) Unwrap() error { return e.Err }

// Fatalf panics with an *InternalError.
func Fatalf(function string, span source.Span, format string, args ...any) {
	panic(&InternalError{Function: function, Span: span, Msg: fmt.Sprintf(format, args...)})
}

// Wrap panics with an *InternalError carrying err.
func Wrap(function string, span source.Span, msg string, err error) {
	panic(&InternalError{Function: function, Span: span, Msg: msg, Err: err})
}

// Recover turns a panicking *InternalError into *errp. Other panics are
// re-raised.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	var ie *InternalError
	if err, ok := r.(error); ok && errors.As(err, &ie) {
		*errp = ie
		return
	}
	panic(r)
}
