package main

import (
	"fmt"
	"io"
	"time"

	"flintc/internal/buildpipeline"
	"flintc/internal/observ"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings, targets []string) {
	for _, stage := range timings.Ordered(targets) {
		fmt.Fprintf(out, "%-12s %8.1f ms\n", stage, toMillis(timings.Duration(stage)))
	}
}

func printTimer(out io.Writer, timer *observ.Timer) {
	if timer == nil {
		return
	}
	fmt.Fprint(out, timer.Summary())
	if p, ok := timer.Slowest(); ok {
		fmt.Fprintf(out, "slowest: %s\n", p.Name)
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
