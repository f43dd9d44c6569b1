package diag

import (
	"testing"

	"hintbook/internal/source"
)

func TestBagLimitAndDropped(t *testing.T) {
	bag := NewBag(2)
	for i := range 4 {
		bag.Add(NewWarning(RefMissingHint, source.Span{Start: uint32(i)}, "missing"))
	}
	if bag.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", bag.Len())
	}
	if bag.Dropped() != 2 {
		t.Fatalf("Dropped() = %d, want 2", bag.Dropped())
	}

	unlimited := NewBag(0)
	for range 100 {
		unlimited.Add(NewWarning(RefMissingHint, source.Span{}, "missing"))
	}
	if unlimited.Len() != 100 {
		t.Fatalf("unlimited bag kept %d items", unlimited.Len())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(10)
	bag.Add(NewWarning(RefMissingHint, source.Span{File: 1, Start: 5, End: 9}, "b"))
	bag.Add(NewError(CatMalformed, source.Span{File: 0, Start: 0, End: 1}, "a"))
	bag.Add(NewWarning(RefMissingHint, source.Span{File: 1, Start: 5, End: 9}, "b"))
	bag.Add(NewWarning(RefMissingHint, source.Span{File: 1, Start: 1, End: 3}, "c"))

	bag.Dedup()
	bag.Sort()

	items := bag.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items after dedup, got %d", len(items))
	}
	wantOrder := []string{"a", "c", "b"}
	for i, want := range wantOrder {
		if items[i].Message != want {
			t.Errorf("items[%d].Message = %q, want %q", i, items[i].Message, want)
		}
	}
	if sev, ok := bag.Worst(); !ok || sev != SevError || !bag.HasErrors() {
		t.Errorf("worst severity = %v, %v", sev, ok)
	}
	if got := bag.Count(RefMissingHint); got != 2 {
		t.Errorf("Count(RefMissingHint) = %d, want 2", got)
	}
}

func TestBagPromoteAndFilter(t *testing.T) {
	bag := NewBag(0)
	bag.Add(NewWarning(RefMissingHint, source.Span{}, "missing"))
	bag.Add(NewWarning(CatUnknownField, source.Span{}, "unknown"))

	bag.Promote(RefMissingHint, SevError)
	if !bag.HasErrors() {
		t.Fatal("promoted diagnostic should be an error")
	}

	bag.Filter(func(d Diagnostic) bool { return d.Severity >= SevError })
	if bag.Len() != 1 || bag.Items()[0].Code != RefMissingHint {
		t.Fatalf("unexpected items after filter: %+v", bag.Items())
	}
}

func TestReportersFanOutAndDedup(t *testing.T) {
	a, b := NewBag(0), NewBag(0)
	var seen int
	count := ReporterFunc(func(Diagnostic) { seen++ })
	dedup := NewDedupReporter(MultiReporter{NewBagReporter(a), NewBagReporter(b), nil, count})

	sp := source.Span{File: 2, Start: 4, End: 8}
	ReportWarning(dedup, RefMissingHint, sp, "hint `x` is missing").Emit()
	ReportWarning(dedup, RefMissingHint, sp, "hint `x` is missing").Emit()

	builder := ReportError(dedup, CatMalformed, sp, "broken").WithNote(sp, "here")
	builder.Emit()
	builder.Emit()

	for name, bag := range map[string]*Bag{"a": a, "b": b} {
		if bag.Len() != 2 {
			t.Errorf("bag %s: Len() = %d, want 2", name, bag.Len())
		}
	}
	if seen != 2 {
		t.Errorf("func reporter saw %d diagnostics, want 2", seen)
	}
	if got := dedup.Suppressed(); got != 1 {
		t.Errorf("Suppressed() = %d, want 1", got)
	}
	if got := a.Items()[1].Notes; len(got) != 1 || got[0].Msg != "here" {
		t.Errorf("note not forwarded: %+v", got)
	}
}

func TestBagWorstAndUnbounded(t *testing.T) {
	bag := NewBag(1)
	if _, ok := bag.Worst(); ok {
		t.Fatal("empty bag has no worst severity")
	}
	bag.Add(New(SevInfo, ObsTimings, source.NoSpan, "timings"))
	if !bag.Full() || bag.Add(NewWarning(RefMissingHint, source.NoSpan, "dropped")) {
		t.Fatal("bag with cap 1 should be full")
	}
	bag.AddUnbounded(NewError(CchWriteFailed, source.NoSpan, "kept"))
	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Fatalf("Len() = %d, Dropped() = %d", bag.Len(), bag.Dropped())
	}
	if sev, _ := bag.Worst(); sev != SevError {
		t.Errorf("Worst() = %s, want ERROR", sev)
	}
}

func TestWithNoteDoesNotAlias(t *testing.T) {
	base := NewWarning(RefMissingHint, source.NoSpan, "m").WithNote(source.NoSpan, "first")
	x := base.WithNote(source.NoSpan, "x")
	y := base.WithNote(source.NoSpan, "y")
	if x.Notes[1].Msg != "x" || y.Notes[1].Msg != "y" || len(base.Notes) != 1 {
		t.Fatalf("notes alias: base=%v x=%v y=%v", base.Notes, x.Notes, y.Notes)
	}
}

func TestSeverityNames(t *testing.T) {
	if SevWarning.String() != "WARNING" || SevError.Label() != "error" || Severity(9).String() != "UNKNOWN" {
		t.Error("unexpected severity names")
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		CatMalformed:   "CAT1002",
		RndFailed:      "RND2001",
		CchWriteFailed: "CCH3001",
		RefMissingHint: "REF4001",
		ObsTimings:     "OBS6001",
		UnknownCode:    "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if got := Code(1999).Title(); got != "unknown error" {
		t.Errorf("unknown code title = %q", got)
	}
}
