package diagfmt_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"flintc/internal/diag"
	"flintc/internal/diagfmt"
	"flintc/internal/source"
)

func sampleBag(fs *source.FileSet) *diag.Bag {
	id := fs.Add("Bank.flint")
	at := func(line uint32) source.Span {
		return source.Span{File: id, Start: source.Pos{Line: line, Col: 5}, End: source.Pos{Line: line, Col: 9}}
	}
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.PassUnknownLabel, at(7), "no parameter named `amonut`").
		WithNote(at(2), "function declared here"))
	bag.Add(diag.New(diag.SevWarning, diag.PassUnmatchedCall, at(9), "call to `log` matches no declaration"))
	return bag
}

func TestPrettyPlain(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{ShowNotes: true})
	want := "Bank.flint:7:5: ERROR PAS2001: no parameter named `amonut`\n" +
		"  note: Bank.flint:2:5: function declared here\n" +
		"Bank.flint:9:5: WARNING PAS2002: call to `log` matches no declaration\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestPrettyMinSeverity(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{MinSeverity: uint8(diag.SevError)})
	if strings.Contains(buf.String(), "WARNING") {
		t.Fatalf("warnings should be filtered:\n%s", buf.String())
	}
	if got := diagfmt.Summary(bag); got != "1 error(s), 1 warning(s)" {
		t.Fatalf("Summary = %q", got)
	}
}

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)
	var buf bytes.Buffer
	if err := diagfmt.JSON(&buf, bag, fs, diagfmt.JSONOpts{Max: 1, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out diagfmt.JSONReport
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 2 || out.Errors != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("total %d, errors %d, listed %d", out.Total, out.Errors, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Code != "PAS2001" || len(d.Notes) != 1 || d.At.Line != 7 || d.At.File != "Bank.flint" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestJSONSeverityFilter(t *testing.T) {
	fs := source.NewFileSet()
	r := diagfmt.NewJSONReport(sampleBag(fs), fs, diagfmt.JSONOpts{MinSeverity: uint8(diag.SevError)})
	if len(r.Diagnostics) != 1 || r.Diagnostics[0].Severity != "ERROR" || r.Total != 2 {
		t.Fatalf("report = %+v", r)
	}
}
