package diag

import (
	"fmt"

	"flintc/internal/source"
)

// Note points at a secondary location, such as an earlier declaration.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one problem found in contract source.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns d with one more note. The receiver's notes are not shared.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Span: sp, Msg: msg})
	return d
}

// String renders "span: SEVERITY CODE: message" without file names.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Primary, d.Severity, d.Code.ID(), d.Message)
}

// identity is what makes two diagnostics repeats of each other.
type identity struct {
	code Code
	span source.Span
	msg  string
}

func (d Diagnostic) identity() identity {
	return identity{code: d.Code, span: d.Primary, msg: d.Message}
}
