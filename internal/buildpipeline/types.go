package buildpipeline

import (
	"context"
	"time"
)

// Stage names a pipeline step as reported to progress sinks and timings.
type Stage string

const (
	StageDecode  Stage = "decode"  // read and decode the module document
	StageCollect Stage = "collect" // build the environment
	StagePasses  Stage = "passes"  // run the rewrite passes
	StageLayout  Stage = "layout"  // lay out every contract and struct per target
	StageLower   Stage = "lower"   // lower one target
	StageWrite   Stage = "write"   // write outputs to disk
)

// frontStages run once per compile, before any target is lowered.
var frontStages = []Stage{StageDecode, StageCollect, StagePasses, StageLayout}

// LowerStage is the timing key of lowering for target.
func LowerStage(target string) Stage {
	return StageLower + Stage(":"+target)
}

// Status is where a stage or target stands.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusCached  Status = "cached" // output came from the IR cache
	StatusError   Status = "error"
)

// Finished reports whether no further event follows for the same stage.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusCached || s == StatusError
}

// Event reports progress of one target, or of the whole pipeline when
// Target is empty.
type Event struct {
	Target  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Targets are lowered in parallel,
// so OnEvent may be called from several goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel. With Ctx set, a send gives up
// once Ctx is done instead of blocking a lowering worker.
type ChannelSink struct {
	Ch  chan<- Event
	Ctx context.Context
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	if s.Ctx == nil {
		s.Ch <- evt
		return
	}
	select {
	case s.Ch <- evt:
	case <-s.Ctx.Done():
	}
}

// FuncSink adapts a function to ProgressSink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func emit(sink ProgressSink, target string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink != nil {
		sink.OnEvent(Event{Target: target, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}

// Timings holds how long each stage took. Lowering is keyed per target by
// LowerStage.
type Timings struct {
	d map[Stage]time.Duration
}

func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t.d == nil {
		t.d = make(map[Stage]time.Duration)
	}
	t.d[stage] = dur
}

func (t Timings) Has(stage Stage) bool {
	_, ok := t.d[stage]
	return ok
}

func (t Timings) Duration(stage Stage) time.Duration {
	return t.d[stage]
}

// Ordered returns the recorded stages in pipeline order: the front stages,
// lowering for each of targets, then write.
func (t Timings) Ordered(targets []string) []Stage {
	var out []Stage
	add := func(s Stage) {
		if t.Has(s) {
			out = append(out, s)
		}
	}
	for _, s := range frontStages {
		add(s)
	}
	for _, target := range targets {
		add(LowerStage(target))
	}
	add(StageWrite)
	return out
}
