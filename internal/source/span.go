package source

import (
	"fmt"
	"strconv"
	"strings"
)

// Span is a half-open region of a source file. AST documents carry spans
// computed by the front end; the compiler core only copies them around.
type Span struct {
	File  FileID
	Start Pos // inclusive
	End   Pos // exclusive
}

// Synthetic returns a span for nodes produced by rewrite passes.
func Synthetic() Span {
	return Span{File: NoFile}
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) IsSynthetic() bool {
	return s.File == NoFile
}

func (s Span) String() string {
	if s.IsSynthetic() {
		return "<synthetic>"
	}
	return fmt.Sprintf("%d:%d:%d-%d:%d", s.File, s.Start.Line, s.Start.Col, s.End.Line, s.End.Col)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.IsSynthetic() {
		return other
	}
	if s.File != other.File {
		return s
	}
	if other.Start.Less(s.Start) {
		s.Start = other.Start
	}
	if s.End.Less(other.End) {
		s.End = other.End
	}
	return s
}

// Before orders spans by file, then start, then end.
func (s Span) Before(other Span) bool {
	if s.File != other.File {
		return s.File < other.File
	}
	if s.Start != other.Start {
		return s.Start.Less(other.Start)
	}
	return s.End.Less(other.End)
}

// ParseRange parses "line:col" or "line:col-line:col" as written in AST
// documents. A single position yields an empty span.
func ParseRange(file FileID, text string) (Span, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Span{File: file}, nil
	}
	startText, endText, hasEnd := strings.Cut(text, "-")
	start, err := parsePos(startText)
	if err != nil {
		return Span{}, err
	}
	end := start
	if hasEnd {
		if end, err = parsePos(endText); err != nil {
			return Span{}, err
		}
	}
	if end.Less(start) {
		return Span{}, fmt.Errorf("span %q ends before it starts", text)
	}
	return Span{File: file, Start: start, End: end}, nil
}

func parsePos(text string) (Pos, error) {
	lineText, colText, ok := strings.Cut(text, ":")
	if !ok {
		return Pos{}, fmt.Errorf("position %q: expected line:col", text)
	}
	line, err := strconv.ParseUint(lineText, 10, 32)
	if err != nil {
		return Pos{}, fmt.Errorf("position %q: bad line: %w", text, err)
	}
	col, err := strconv.ParseUint(colText, 10, 32)
	if err != nil {
		return Pos{}, fmt.Errorf("position %q: bad column: %w", text, err)
	}
	return Pos{Line: uint32(line), Col: uint32(col)}, nil
}
