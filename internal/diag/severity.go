package diag

import (
	"fmt"
	"strings"
)

// Severity orders diagnostics; only SevError blocks lowering.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{"INFO", "WARNING", "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the lower-case names used by --min-severity.
func ParseSeverity(s string) (Severity, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARN" {
		return SevWarning, nil
	}
	for i, name := range severityNames {
		if s == name {
			return Severity(i), nil
		}
	}
	return SevInfo, fmt.Errorf("unknown severity %q (want info|warning|error)", strings.ToLower(s))
}
