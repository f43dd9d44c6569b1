package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Format is the encoding of written events.
type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
	FormatChrome // chrome://tracing and Perfetto
)

var formatNames = [...]string{"auto", "text", "ndjson", "chrome"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// ParseFormat accepts a format name in any case; empty means auto.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatAuto, nil
	}
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (want %s)", s, strings.Join(formatNames[:], "|"))
}

// epoch anchors the relative timestamps of text and chrome output.
var epoch = time.Now()

// FormatEvent encodes one event. Text and NDJSON records end with a newline;
// chrome records do not, the writer separates them.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return encodeNDJSON(ev)
	case FormatChrome:
		return encodeChrome(ev)
	}
	return encodeText(ev)
}

type ndjsonEvent struct {
	Time      string            `json:"time"`
	Seq       uint64            `json:"seq"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	Span      uint64            `json:"span,omitempty"`
	Parent    uint64            `json:"parent,omitempty"`
	Goroutine uint64            `json:"goroutine,omitempty"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

func encodeNDJSON(ev *Event) []byte {
	data, err := json.Marshal(ndjsonEvent{
		Time:      ev.Time.Format(time.RFC3339Nano),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		Span:      ev.Span,
		Parent:    ev.Parent,
		Goroutine: ev.Goroutine,
		Name:      ev.Name,
		Detail:    ev.Detail,
		Attrs:     ev.Attrs,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

type chromeEvent struct {
	Name  string            `json:"name"`
	Cat   string            `json:"cat"`
	Ph    string            `json:"ph"`
	TS    int64             `json:"ts"`
	PID   int               `json:"pid"`
	TID   uint64            `json:"tid"`
	Scope string            `json:"s,omitempty"`
	Args  map[string]string `json:"args,omitempty"`
}

var chromePhase = map[Kind]string{KindBegin: "B", KindEnd: "E"}

func encodeChrome(ev *Event) []byte {
	c := chromeEvent{
		Name: ev.Name,
		Cat:  ev.Scope.String(),
		Ph:   chromePhase[ev.Kind],
		TS:   ev.Time.Sub(epoch).Microseconds(),
		PID:  1,
		TID:  ev.Goroutine,
		Args: ev.Attrs,
	}
	if c.Ph == "" {
		// мгновенное событие в пределах потока
		c.Ph, c.Scope = "i", "t"
	}
	if ev.Detail != "" {
		c.Args = maps.Clone(c.Args)
		if c.Args == nil {
			c.Args = make(map[string]string, 1)
		}
		c.Args["detail"] = ev.Detail
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	return data
}

var textMarker = map[Kind]string{
	KindBegin: "begin",
	KindEnd:   "end",
	KindPoint: "*",
	KindPulse: "pulse",
}

// encodeText writes "[   1.250ms] end   document:intro.md (ok) refs=3".
// Events below the run are indented by two spaces per scope step.
func encodeText(ev *Event) []byte {
	var b strings.Builder
	ms := float64(ev.Time.Sub(epoch).Microseconds()) / 1000
	fmt.Fprintf(&b, "[%9.3fms] %-5s ", ms, textMarker[ev.Kind])
	if ev.Scope > ScopeRun {
		b.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeRun)))
	}
	b.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&b, " (%s)", ev.Detail)
	}
	for _, k := range slices.Sorted(maps.Keys(ev.Attrs)) {
		fmt.Fprintf(&b, " %s=%s", k, ev.Attrs[k])
	}
	b.WriteByte('\n')
	return []byte(b.String())
}
