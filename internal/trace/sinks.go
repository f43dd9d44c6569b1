package trace

import (
	"errors"
	"io"
	"os"
	"sync"
)

// Stream writes each admitted event to w as soon as it is emitted. Write
// errors are ignored: a broken trace sink must not fail the run.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	sep    []byte // written before the next chrome event
	closed bool
}

// NewStream writes the chrome array header immediately when format is
// FormatChrome.
func NewStream(w io.Writer, level Level, format Format) *Stream {
	s := &Stream{w: w, level: level, format: format}
	if format == FormatChrome {
		_, _ = io.WriteString(w, "{\"traceEvents\":[\n")
	}
	return s
}

func (s *Stream) Emit(ev *Event) {
	if !admit(s.level, ev) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	ev.Seq = nextSeq()
	if s.format == FormatChrome {
		_, _ = s.w.Write(s.sep)
		s.sep = []byte(",\n")
	}
	_, _ = s.w.Write(FormatEvent(ev, s.format))
}

func (s *Stream) Flush() error {
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close terminates the chrome array and closes w unless it is a standard
// stream.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.format == FormatChrome {
		_, _ = io.WriteString(s.w, "\n]}\n")
	}
	s.mu.Unlock()

	if err := s.Flush(); err != nil {
		return err
	}
	if s.w == io.Writer(os.Stderr) || s.w == io.Writer(os.Stdout) {
		return nil
	}
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Stream) Level() Level { return s.level }

// Ring keeps the most recent events in memory.
type Ring struct {
	mu    sync.Mutex
	buf   []Event
	next  int // slot for the next event
	count int
	level Level
}

// NewRing falls back to DefaultRingSize for a non-positive size.
func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{buf: make([]Event, size), level: level}
}

func (r *Ring) Emit(ev *Event) {
	if !admit(r.level, ev) {
		return
	}
	r.mu.Lock()
	r.buf[r.next] = *ev
	r.buf[r.next].Seq = nextSeq()
	r.next = (r.next + 1) % len(r.buf)
	r.count = min(r.count+1, len(r.buf))
	r.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0, r.count)
	first := (r.next - r.count + len(r.buf)) % len(r.buf)
	for i := range r.count {
		out = append(out, r.buf[(first+i)%len(r.buf)])
	}
	return out
}

// Dump writes the snapshot to w. Chrome output is wrapped in its array so
// the result loads on its own.
func (r *Ring) Dump(w io.Writer, format Format) error {
	events := r.Snapshot()
	if format == FormatChrome {
		if _, err := io.WriteString(w, "{\"traceEvents\":[\n"); err != nil {
			return err
		}
	}
	for i := range events {
		if format == FormatChrome && i > 0 {
			if _, err := io.WriteString(w, ",\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	if format == FormatChrome {
		_, err := io.WriteString(w, "\n]}\n")
		return err
	}
	return nil
}

func (r *Ring) Flush() error { return nil }

func (r *Ring) Close() error { return nil }

func (r *Ring) Level() Level { return r.level }

// Fanout passes every event to each of its sinks.
type Fanout struct {
	sinks []Tracer
	level Level
}

func NewFanout(level Level, sinks ...Tracer) *Fanout {
	return &Fanout{sinks: sinks, level: level}
}

func (f *Fanout) Emit(ev *Event) {
	for _, s := range f.sinks {
		// у каждого приёмника своя копия: Seq проставляется при записи
		cp := *ev
		s.Emit(&cp)
	}
}

func (f *Fanout) Flush() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (f *Fanout) Level() Level { return f.level }

// Ring returns the first ring among the sinks, or nil.
func (f *Fanout) Ring() *Ring {
	for _, s := range f.sinks {
		if r, ok := s.(*Ring); ok {
			return r
		}
	}
	return nil
}
