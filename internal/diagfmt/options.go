package diagfmt

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	// MinSeverity hides diagnostics below the given level; the zero value shows everything.
	MinSeverity uint8
}

// JSONOpts configures JSON output.
type JSONOpts struct {
	Max          int // caps listed diagnostics, not the counts
	IncludeNotes bool
	MinSeverity  uint8
}
