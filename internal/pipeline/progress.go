package pipeline

import "time"

// Stage is a step of a run. Load, render and cache happen once per session;
// rewrite and write happen per document.
type Stage uint8

const (
	StageLoad    Stage = iota // read and check hints.toml
	StageRender               // hint bodies to HTML fragments
	StageCache                // write hints.json
	StageRewrite              // substitute references in a document
	StageWrite                // store a rewritten document
	stageCount
)

var stageNames = [stageCount]string{"load", "render", "cache", "rewrite", "write"}

func (s Stage) String() string {
	if s < stageCount {
		return stageNames[s]
	}
	return "unknown"
}

// Status is the state of a stage or of one document within it.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "working"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Event reports progress of a document, or of the session when File is
// empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink receives events from several goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink sends events to Ch, blocking when it is full; a nil Ch drops
// them.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(e Event) {
	if s.Ch != nil {
		s.Ch <- e
	}
}

type SinkFunc func(Event)

func (f SinkFunc) OnEvent(e Event) { f(e) }

func emit(sink ProgressSink, e Event) {
	if sink != nil {
		sink.OnEvent(e)
	}
}

// Timings holds the wall time of each stage of a session; rewrite and write
// are totals over all documents.
type Timings struct {
	dur [stageCount]time.Duration
	set [stageCount]bool
}

func (t *Timings) Set(s Stage, d time.Duration) {
	if t == nil || s >= stageCount {
		return
	}
	t.dur[s], t.set[s] = d, true
}

// Has reports whether s ran.
func (t Timings) Has(s Stage) bool {
	return s < stageCount && t.set[s]
}

func (t Timings) Duration(s Stage) time.Duration {
	if !t.Has(s) {
		return 0
	}
	return t.dur[s]
}

// Total sums the recorded stages.
func (t Timings) Total() time.Duration {
	var total time.Duration
	for _, d := range t.dur {
		total += d
	}
	return total
}
