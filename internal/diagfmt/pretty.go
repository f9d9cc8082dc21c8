package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"flintc/internal/diag"
	"flintc/internal/source"
)

// Pretty prints bag items as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	  note: <path>:<line>:<col>: <Message>
//
// The bag is expected to be sorted by the caller.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	sevColor := map[diag.Severity]*color.Color{
		diag.SevInfo:    color.New(color.FgCyan),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevError:   color.New(color.FgRed, color.Bold),
	}
	noteColor := color.New(color.FgBlue)
	for _, c := range sevColor {
		c.EnableColor()
		if !opts.Color {
			c.DisableColor()
		}
	}
	noteColor.EnableColor()
	if !opts.Color {
		noteColor.DisableColor()
	}

	for _, d := range bag.Items() {
		if uint8(d.Severity) < opts.MinSeverity {
			continue
		}
		sev := sevColor[d.Severity].Sprint(d.Severity.String())
		fmt.Fprintf(w, "%s: %s %s: %s\n", fs.Format(d.Primary), sev, d.Code.ID(), d.Message)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", noteColor.Sprint("note:"), fs.Format(n.Span), n.Msg)
		}
	}
}

// Summary returns "N error(s), M warning(s)" for the footer line.
func Summary(bag *diag.Bag) string {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	return fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
}
