package observ_test

import (
	"strings"
	"sync"
	"testing"

	"flintc/internal/observ"
)

func TestTimerConcurrentLaps(t *testing.T) {
	timer := observ.NewTimer()
	timer.Start("passes").Stop("done")

	var wg sync.WaitGroup
	for _, target := range []string{"lower:evm", "lower:move"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			timer.Start(target).Stop("")
		}()
	}
	wg.Wait()

	report := timer.Report()
	if len(report.Phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "passes" || report.Phases[0].Note != "done" {
		t.Fatalf("first phase = %+v", report.Phases[0])
	}
	if report.WallMS < 0 {
		t.Fatalf("negative wall time")
	}
	s := timer.Summary()
	for _, want := range []string{"passes", "lower:move", "wall", "%"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary lacks %q:\n%s", want, s)
		}
	}
	if _, ok := timer.Slowest(); !ok {
		t.Fatalf("no slowest lap")
	}
}

func TestUnstoppedLapsAreSkipped(t *testing.T) {
	timer := observ.NewTimer()
	open := timer.Start("layout")
	if got := timer.Report(); len(got.Phases) != 0 {
		t.Fatalf("open lap reported: %+v", got)
	}
	open.Stop("first")
	open.Stop("second")
	if got := timer.Report().Phases; len(got) != 1 || got[0].Note != "first" {
		t.Fatalf("phases = %+v", got)
	}
}

func TestNilTimer(t *testing.T) {
	var timer *observ.Timer
	timer.Start("decode").Stop("")
	if timer.Report().Phases != nil {
		t.Fatalf("nil timer reported phases")
	}
	if _, ok := timer.Slowest(); ok {
		t.Fatalf("nil timer has a slowest lap")
	}
}
