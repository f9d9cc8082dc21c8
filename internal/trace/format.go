package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Format is the rendering of trace events.
type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
)

// ParseFormat reads a --trace-format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (expected auto|text|ndjson)", s)
}

func formatForPath(path string) Format {
	switch filepath.Ext(path) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	}
	return FormatText
}

type jsonEvent struct {
	Time   string            `json:"time"`
	Seq    uint64            `json:"seq"`
	Kind   string            `json:"kind"`
	Scope  string            `json:"scope"`
	Span   uint64            `json:"span,omitempty"`
	Parent uint64            `json:"parent,omitempty"`
	Target string            `json:"target,omitempty"`
	Name   string            `json:"name"`
	Detail string            `json:"detail,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty"`
}

func render(ev *Event, format Format, elapsed time.Duration, depth int) []byte {
	if format == FormatNDJSON {
		data, err := json.Marshal(jsonEvent{
			Time:   ev.Time.Format(time.RFC3339Nano),
			Seq:    ev.Seq,
			Kind:   ev.Kind.String(),
			Scope:  ev.Scope.String(),
			Span:   ev.Span,
			Parent: ev.Parent,
			Target: ev.Target,
			Name:   ev.Name,
			Detail: ev.Detail,
			Attrs:  ev.Attrs,
		})
		if err != nil {
			return nil
		}
		return append(data, '\n')
	}

	// [   1.234ms] evm   > lower:evm (done) {units=1}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%9.3fms] ", float64(elapsed.Microseconds())/1000)
	if ev.Target != "" {
		fmt.Fprintf(&sb, "%-5s ", ev.Target)
	}
	sb.WriteString(strings.Repeat("  ", depth))
	switch ev.Kind {
	case KindBegin:
		sb.WriteString("> ")
	case KindEnd:
		sb.WriteString("< ")
	default:
		sb.WriteString("* ")
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Attrs) > 0 {
		sb.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(ev.Attrs)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + "=" + ev.Attrs[k])
		}
		sb.WriteString("}")
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
