package trace

import (
	"fmt"
	"strings"
)

// Level selects how much of a run is recorded.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // run and stage spans, kept in the ring and shown only on failure
	LevelPhase        // run and stage spans
	LevelDetail       // plus one span per document
	LevelDebug        // plus a point per reference
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (want %s)", s, strings.Join(levelNames[:], "|"))
}

// Admits reports whether events of scope are recorded at this level.
func (l Level) Admits(scope Scope) bool {
	switch l {
	case LevelError, LevelPhase:
		return scope <= ScopeStage
	case LevelDetail:
		return scope <= ScopeDocument
	case LevelDebug:
		return true
	}
	return false
}

// Scope is the granularity of an event; smaller values are coarser.
type Scope uint8

const (
	ScopeRun Scope = iota + 1
	ScopeStage
	ScopeDocument
	ScopeReference
)

var scopeNames = [...]string{"", "run", "stage", "document", "reference"}

func (s Scope) String() string {
	if s > 0 && int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return "unknown"
}
