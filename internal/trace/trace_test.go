package trace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"flintc/internal/trace"
)

func TestStreamNestsAndTagsTargets(t *testing.T) {
	var buf bytes.Buffer
	ctx := trace.WithTracer(context.Background(), trace.NewStream(&buf, trace.LevelStep, trace.FormatText))

	ctx, stage := trace.Start(ctx, trace.ScopeStage, "stage:lower")
	lctx, step := trace.Start(trace.ForTarget(ctx, "evm"), trace.ScopeStep, "lower:evm")
	trace.Note(lctx, trace.ScopeUnit, "unit", "Bank") // finer than step
	step.Set("units", "1").End("done")
	stage.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "evm     > lower:evm") {
		t.Fatalf("step not tagged and nested: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "lower:evm (done) {units=1}") {
		t.Fatalf("end event = %q", lines[2])
	}
	if strings.Contains(lines[3], "evm") {
		t.Fatalf("stage end carries the target: %q", lines[3])
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStream(&buf, trace.LevelStage, trace.FormatNDJSON)
	trace.Begin(tr, trace.ScopeStage, "stage:layout", 0).End("")

	dec := json.NewDecoder(&buf)
	var kinds []string
	for dec.More() {
		var ev map[string]any
		if err := dec.Decode(&ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		kinds = append(kinds, ev["kind"].(string))
	}
	if strings.Join(kinds, ",") != "begin,end" {
		t.Fatalf("kinds = %v", kinds)
	}
}

func TestRingKeepsNewest(t *testing.T) {
	ring := trace.NewRing(3, trace.LevelUnit)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		trace.Point(ring, trace.ScopeUnit, name, "", 0)
	}
	got := ring.Events()
	if len(got) != 3 || got[0].Name != "c" || got[2].Name != "e" {
		t.Fatalf("events = %+v", got)
	}
	if got[0].Seq >= got[2].Seq {
		t.Fatalf("sequence not increasing")
	}
}

func TestRingForTarget(t *testing.T) {
	ring := trace.NewRing(16, trace.LevelUnit)
	ctx := trace.WithTracer(context.Background(), ring)
	for _, target := range []string{"evm", "move", "evm"} {
		trace.Note(trace.ForTarget(ctx, target), trace.ScopeUnit, "unit", target)
	}
	if n := len(ring.ForTarget("evm")); n != 2 {
		t.Fatalf("evm events = %d", n)
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		in    string
		scope trace.Scope
		keeps bool
	}{
		{"off", trace.ScopeBuild, false},
		{"error", trace.ScopeStage, true},
		{"error", trace.ScopeStep, false},
		{"stage", trace.ScopeStep, false},
		{"step", trace.ScopeStep, true},
		{"unit", trace.ScopeUnit, true},
	}
	for _, tt := range tests {
		l, err := trace.ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tt.in, err)
		}
		if got := l.Keeps(tt.scope); got != tt.keeps {
			t.Fatalf("%s keeps %s = %v", l, tt.scope, got)
		}
	}
	if _, err := trace.ParseLevel("debug"); err == nil {
		t.Fatalf("unknown level accepted")
	}
}

func TestOpen(t *testing.T) {
	tr, err := trace.Open(trace.Config{Level: trace.LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr != trace.Nop || trace.Begin(tr, trace.ScopeBuild, "x", 0).ID() != 0 {
		t.Fatalf("off tracer records spans")
	}

	var buf bytes.Buffer
	tr, err = trace.Open(trace.Config{Level: trace.LevelStage, Mode: trace.ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if trace.RingOf(tr) == nil {
		t.Fatalf("no ring behind a both-mode tracer")
	}
	trace.Point(tr, trace.ScopeStage, "cache-unavailable", "", 0)
	if buf.Len() == 0 || len(trace.RingOf(tr).Events()) != 1 {
		t.Fatalf("event did not reach both sinks")
	}
}

func TestContextWithoutTracer(t *testing.T) {
	ctx, span := trace.Start(context.Background(), trace.ScopeStage, "stage:decode")
	if span.ID() != 0 || trace.CurrentSpan(ctx) != 0 {
		t.Fatalf("span recorded without a tracer")
	}
	if span.End("") < 0 {
		t.Fatalf("negative duration")
	}
	if trace.FromContext(ctx) != trace.Nop {
		t.Fatalf("missing tracer should yield Nop")
	}
}
