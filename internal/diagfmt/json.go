package diagfmt

import (
	"encoding/json"
	"io"

	"flintc/internal/diag"
	"flintc/internal/source"
)

// Location is a source range in JSON output. Synthetic spans, produced by
// passes that insert code, have no file or position.
type Location struct {
	File      string `json:"file,omitempty"`
	Synthetic bool   `json:"synthetic,omitempty"`
	Line      uint32 `json:"line,omitempty"`
	Col       uint32 `json:"col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// JSONNote is a secondary location.
type JSONNote struct {
	Message string   `json:"message"`
	At      Location `json:"at"`
}

// JSONDiagnostic is one diagnostic in JSON output.
type JSONDiagnostic struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	Message  string     `json:"message"`
	At       Location   `json:"at"`
	Notes    []JSONNote `json:"notes,omitempty"`
}

// JSONReport is the document written by JSON. Total and Errors count the
// whole bag even when Diagnostics is capped.
type JSONReport struct {
	Total       int              `json:"total"`
	Errors      int              `json:"errors"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
}

func locate(span source.Span, fs *source.FileSet) Location {
	if span.IsSynthetic() {
		return Location{Synthetic: true}
	}
	return Location{
		File:    fs.Path(span.File),
		Line:    span.Start.Line,
		Col:     span.Start.Col,
		EndLine: span.End.Line,
		EndCol:  span.End.Col,
	}
}

// NewJSONReport converts the bag without encoding it. Diagnostics below
// opts.MinSeverity are left out of the list but still counted.
func NewJSONReport(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) JSONReport {
	r := JSONReport{Total: bag.Len(), Errors: bag.Count(diag.SevError), Diagnostics: []JSONDiagnostic{}}
	for _, d := range bag.Items() {
		if opts.Max > 0 && len(r.Diagnostics) == opts.Max {
			break
		}
		if uint8(d.Severity) < opts.MinSeverity {
			continue
		}
		out := JSONDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			At:       locate(d.Primary, fs),
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				out.Notes = append(out.Notes, JSONNote{Message: n.Msg, At: locate(n.Span, fs)})
			}
		}
		r.Diagnostics = append(r.Diagnostics, out)
	}
	return r
}

// JSON writes the bag as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewJSONReport(bag, fs, opts))
}
