package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"flintc/internal/buildpipeline"
)

func TestProgressTracksTargets(t *testing.T) {
	m := NewProgressModel("flintc build", []string{"evm", "move"}, nil).(*progressModel)

	steps := []buildpipeline.Event{
		{Stage: buildpipeline.StageDecode, Status: buildpipeline.StatusDone},
		{Stage: buildpipeline.StageLayout, Status: buildpipeline.StatusWorking},
		{Target: "evm", Stage: buildpipeline.StageLower, Status: buildpipeline.StatusWorking},
		{Target: "move", Stage: buildpipeline.StageLower, Status: buildpipeline.StatusCached, Elapsed: 3 * time.Millisecond},
		{Target: "wasm", Stage: buildpipeline.StageLower, Status: buildpipeline.StatusDone},
	}
	for _, ev := range steps {
		m.applyEvent(ev)
	}

	if m.stage != "layout" {
		t.Fatalf("stage = %q", m.stage)
	}
	if m.rows[0].label() != "lowering" || m.rows[1].label() != "cached" {
		t.Fatalf("rows = %+v", m.rows)
	}
	view := m.View()
	for _, want := range []string{"flintc build (layout)", "lowering", "cached", "move", "3ms"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestProgressShowsErrors(t *testing.T) {
	m := NewProgressModel("x", []string{"move"}, nil).(*progressModel)
	m.applyEvent(buildpipeline.Event{Target: "move", Stage: buildpipeline.StageLower, Status: buildpipeline.StatusError, Err: errors.New("fallback unsupported")})
	if view := m.View(); !strings.Contains(view, "fallback unsupported") {
		t.Fatalf("error not shown:\n%s", view)
	}
}

func TestProgressPercent(t *testing.T) {
	m := NewProgressModel("x", []string{"evm"}, nil).(*progressModel)
	if got := m.percent(); got != 0 {
		t.Fatalf("initial percent = %v", got)
	}
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageLayout, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{Target: "evm", Stage: buildpipeline.StageLower, Status: buildpipeline.StatusWorking})
	if got := m.percent(); got != 0.75 {
		t.Fatalf("mid percent = %v", got)
	}
	m.applyEvent(buildpipeline.Event{Target: "evm", Stage: buildpipeline.StageLower, Status: buildpipeline.StatusDone})
	if got := m.percent(); got != 1 {
		t.Fatalf("final percent = %v", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"evm", 10, "evm"},
		{"abcdefghij", 6, "abc..."},
		{"abcdef", 2, "ab"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
