package testkit

import (
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Golden fails t with a line diff when got differs from want.
func Golden(t testing.TB, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	t.Fatalf("output mismatch (-want +got):\n%s", LineDiff(want, got))
}

// LineDiff renders a line-oriented diff with -/+ prefixes.
func LineDiff(want, got string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
