package trace

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

// Kind tells span boundaries from instant events.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
	KindPulse // liveness tick from Pulse
)

var kindNames = [...]string{"", "begin", "end", "point", "pulse"}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is one record of the trace.
type Event struct {
	Time      time.Time
	Seq       uint64 // stamped by the sink that stores the event
	Kind      Kind
	Scope     Scope
	Span      uint64
	Parent    uint64 // 0 for the run span
	Goroutine uint64
	Name      string // "render_hints", "document:intro.md"
	Detail    string
	Attrs     map[string]string
}

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func nextSeq() uint64 { return seqCounter.Add(1) }

// admit reports whether a sink at level keeps ev. Pulses pass at any level
// so a hang is visible even when nothing else is recorded.
func admit(level Level, ev *Event) bool {
	return ev.Kind == KindPulse || level.Admits(ev.Scope)
}

// goroutineID reads the id from the first line of the goroutine's stack,
// "goroutine 17 [running]:". Documents are rewritten in parallel and the id
// keeps their spans on separate rows of the chrome viewer.
func goroutineID() uint64 {
	var buf [40]byte
	line := buf[:runtime.Stack(buf[:], false)]
	line = bytes.TrimPrefix(line, []byte("goroutine "))
	if i := bytes.IndexByte(line, ' '); i > 0 {
		if id, err := strconv.ParseUint(string(line[:i]), 10, 64); err == nil {
			return id
		}
	}
	return 0
}
