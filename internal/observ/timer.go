// Package observ collects wall-clock timings of the hint pipeline for
// --timings output and the OBS6001 diagnostic.
package observ

import (
	"sync"
	"time"
)

// Timer records named phases in the order they start. A nil *Timer records
// nothing. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []phase
}

type phase struct {
	name string
	dur  time.Duration
	note string
	open bool
}

func NewTimer() *Timer { return &Timer{} }

// Measure starts a phase and returns the function that ends it with an
// optional note. The end function reports the elapsed time on a nil Timer
// too, so callers measure once and use the result for their own bookkeeping.
// Calls after the first leave the phase as it was.
func (t *Timer) Measure(name string) func(note string) time.Duration {
	start := time.Now()
	if t == nil {
		return func(string) time.Duration { return time.Since(start) }
	}
	t.mu.Lock()
	idx := len(t.phases)
	t.phases = append(t.phases, phase{name: name, open: true})
	t.mu.Unlock()

	return func(note string) time.Duration {
		elapsed := time.Since(start)
		t.mu.Lock()
		if p := &t.phases[idx]; p.open {
			p.dur, p.note, p.open = elapsed, note, false
		}
		t.mu.Unlock()
		return elapsed
	}
}

// PhaseReport is one finished or running phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
	Running    bool    `json:"running,omitempty"`
}

// Report: снимок таймера для вывода и сериализации.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the phases. Running phases count as zero in the total.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	for _, p := range t.phases {
		ms := Millis(p.dur)
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: ms, Note: p.note, Running: p.open})
		r.TotalMS += ms
	}
	return r
}

// Millis converts d to fractional milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
