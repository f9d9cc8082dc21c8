package diag_test

import (
	"sync"
	"testing"

	"flintc/internal/diag"
	"flintc/internal/source"
)

func span(line uint32) source.Span {
	return source.Span{File: 0, Start: source.Pos{Line: line, Col: 1}, End: source.Pos{Line: line, Col: 4}}
}

func TestBagLimitAndErrors(t *testing.T) {
	bag := diag.NewBag(2)
	r := diag.BagReporter{Bag: bag}
	diag.ReportWarning(r, diag.PassUnmatchedCall, span(1), "no match").Emit()
	if bag.HasErrors() {
		t.Fatalf("warning counted as error")
	}
	diag.ReportError(r, diag.PassUnknownLabel, span(2), "bad label").WithNote(span(1), "declared here").Emit()
	diag.ReportError(r, diag.PassUnknownLabel, span(3), "dropped").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected limit of 2, got %d", bag.Len())
	}
	if !bag.HasErrors() {
		t.Fatalf("expected errors")
	}
	if got := len(bag.Items()[1].Notes); got != 1 {
		t.Fatalf("expected one note, got %d", got)
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.PassUnknownLabel, span(5), "b"))
	bag.Add(diag.New(diag.SevWarning, diag.PassUnmatchedCall, span(1), "a"))
	bag.Add(diag.NewError(diag.PassUnknownLabel, span(5), "b"))
	bag.Dedup()
	bag.Sort()
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items after dedup, got %d", len(items))
	}
	if items[0].Message != "a" {
		t.Fatalf("expected line 1 first, got %q", items[0].Message)
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	bag := diag.NewBag(10)
	b := diag.ReportError(diag.BagReporter{Bag: bag}, diag.PassMissingArgument, span(1), "x")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("Emit reported %d times", bag.Len())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := diag.NewBag(10)
	r := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	for range 3 {
		r.Report(diag.NewError(diag.PassUnknownEnumCase, span(2), "no case"))
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
}

func TestLockedReporterConcurrent(t *testing.T) {
	bag := diag.NewBag(1000)
	r := diag.NewLockedReporter(diag.BagReporter{Bag: bag})
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(line uint32) {
			defer wg.Done()
			for range 50 {
				r.Report(diag.New(diag.SevWarning, diag.LowerUnreachableCode, span(line), "dead"))
			}
		}(uint32(i + 1))
	}
	wg.Wait()
	if bag.Len() != 400 {
		t.Fatalf("expected 400 diagnostics, got %d", bag.Len())
	}
}

func TestCodeID(t *testing.T) {
	if got := diag.PassUnknownLabel.ID(); got != "PAS2001" {
		t.Fatalf("ID = %q", got)
	}
	if got := diag.EnvDuplicateType.String(); got != "[ENV1001]: Duplicate type declaration" {
		t.Fatalf("String = %q", got)
	}
}

func TestMergeKeepsEverything(t *testing.T) {
	a, b := diag.NewBag(1), diag.NewBag(0)
	a.Add(diag.NewError(diag.EnvDuplicateType, span(1), "x"))
	for i := range 3 {
		b.Add(diag.New(diag.SevWarning, diag.PassUnmatchedCall, span(uint32(i+2)), "y"))
	}
	a.Merge(b)
	if a.Len() != 4 || a.Count(diag.SevWarning) != 4 || a.Count(diag.SevError) != 1 {
		t.Fatalf("merged bag: len %d, warnings+ %d", a.Len(), a.Count(diag.SevWarning))
	}
	if a.Add(diag.NewError(diag.EnvDuplicateType, span(9), "z")) {
		t.Fatalf("bag accepted past its grown limit")
	}
}

func TestWithNoteDoesNotShare(t *testing.T) {
	base := diag.NewError(diag.EnvDuplicateType, span(1), "dup").WithNote(span(2), "first")
	a := base.WithNote(span(3), "a")
	b := base.WithNote(span(4), "b")
	if a.Notes[1].Msg != "a" || b.Notes[1].Msg != "b" || len(base.Notes) != 1 {
		t.Fatalf("notes shared between copies")
	}
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]diag.Severity{"info": diag.SevInfo, "warn": diag.SevWarning, " Error ": diag.SevError} {
		got, err := diag.ParseSeverity(in)
		if err != nil || got != want {
			t.Fatalf("ParseSeverity(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := diag.ParseSeverity("fatal"); err == nil {
		t.Fatalf("fatal accepted")
	}
}
