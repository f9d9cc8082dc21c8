package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events. Implementations must be safe for concurrent use
// since targets are lowered in parallel.
type Tracer interface {
	Emit(ev *Event)
	Level() Level
	Close() error
}

type nop struct{}

func (nop) Emit(*Event)  {}
func (nop) Level() Level { return LevelOff }
func (nop) Close() error { return nil }

// Nop discards everything.
var Nop Tracer = nop{}

func enabled(t Tracer) bool {
	return t != nil && t.Level() > LevelOff
}

// tee hands each event to a stream and a ring.
type tee struct {
	level Level
	sinks []Tracer
}

func (t *tee) Emit(ev *Event) {
	for _, s := range t.sinks {
		cp := *ev
		s.Emit(&cp)
	}
}

func (t *tee) Level() Level { return t.level }

func (t *tee) Close() error {
	var errs []error
	for _, s := range t.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Mode picks where events go.
type Mode uint8

const (
	ModeRing Mode = iota
	ModeStream
	ModeBoth
)

// ParseMode reads a --trace-mode value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "ring":
		return ModeRing, nil
	case "stream":
		return ModeStream, nil
	case "both":
		return ModeBoth, nil
	}
	return ModeRing, fmt.Errorf("invalid trace mode %q (expected ring|stream|both)", s)
}

// Config describes the tracer a build should use.
type Config struct {
	Level    Level
	Mode     Mode
	Format   Format
	Path     string    // stream destination, "-" or empty for stderr
	Output   io.Writer // overrides Path
	RingSize int
}

// Open builds the tracer cfg describes. LevelOff always yields Nop.
func Open(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode == ModeRing {
		return NewRing(cfg.RingSize, cfg.Level), nil
	}
	w := cfg.Output
	if w == nil && cfg.Path != "" && cfg.Path != "-" {
		f, err := os.Create(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open trace output: %w", err)
		}
		w = f
	}
	if w == nil {
		w = os.Stderr
	}
	format := cfg.Format
	if format == FormatAuto {
		format = formatForPath(cfg.Path)
	}
	stream := NewStream(w, cfg.Level, format)
	if cfg.Mode == ModeStream {
		return stream, nil
	}
	return &tee{level: cfg.Level, sinks: []Tracer{stream, NewRing(cfg.RingSize, cfg.Level)}}, nil
}

// RingOf returns the ring behind t, if t keeps one.
func RingOf(t Tracer) *Ring {
	switch tr := t.(type) {
	case *Ring:
		return tr
	case *tee:
		for _, s := range tr.sinks {
			if r := RingOf(s); r != nil {
				return r
			}
		}
	}
	return nil
}
