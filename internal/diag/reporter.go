package diag

import (
	"sync"

	"hintbook/internal/source"
)

// Reporter receives diagnostics from the pipeline stages. Implementations
// used by the parallel directory host must be safe for concurrent use.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// BagReporter adds to a Bag under a lock.
type BagReporter struct {
	mu  sync.Mutex
	bag *Bag
}

func NewBagReporter(bag *Bag) *BagReporter {
	return &BagReporter{bag: bag}
}

func (r *BagReporter) Report(d Diagnostic) {
	if r == nil || r.bag == nil {
		return
	}
	r.mu.Lock()
	r.bag.Add(d)
	r.mu.Unlock()
}

// MultiReporter hands every diagnostic to each non-nil reporter.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

// identity is what makes two diagnostics the same finding.
type identity struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

func identityOf(d Diagnostic) identity {
	return identity{code: d.Code, sev: d.Severity, span: d.Primary, msg: d.Message}
}

// DedupReporter forwards each finding once. A chapter that is rendered
// twice, or a catalog key reported by two checks, yields one diagnostic.
type DedupReporter struct {
	mu         sync.Mutex
	next       Reporter
	seen       map[identity]struct{}
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[identity]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	key := identityOf(d)
	r.mu.Lock()
	_, dup := r.seen[key]
	if dup {
		r.suppressed++
	} else {
		r.seen[key] = struct{}{}
	}
	r.mu.Unlock()
	if !dup && r.next != nil {
		r.next.Report(d)
	}
}

// Suppressed counts the repeats that were dropped.
func (r *DedupReporter) Suppressed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suppressed
}

// ReportBuilder collects notes before a single Emit.
//
//	diag.ReportWarning(r, diag.RefMissingHint, span, msg).WithNote(at, "catalog").Emit()
type ReportBuilder struct {
	r    Reporter
	d    Diagnostic
	sent bool
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{r: r, d: NewError(code, primary, msg)}
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{r: r, d: NewWarning(code, primary, msg)}
}

func ReportInfo(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{r: r, d: New(SevInfo, code, primary, msg)}
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	b.d = b.d.WithNote(sp, msg)
	return b
}

// Emit reports the diagnostic; later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b.sent || b.r == nil {
		return
	}
	b.sent = true
	b.r.Report(b.d)
}
