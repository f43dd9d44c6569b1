package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics up to a limit. Items past the limit are counted
// but dropped.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag keeps at most max diagnostics; max <= 0 means no limit.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add reports false when the limit dropped d.
func (b *Bag) Add(d Diagnostic) bool {
	if b.Full() {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddUnbounded adds d even when the bag is full. Used for output the user
// asked for explicitly, such as timings.
func (b *Bag) AddUnbounded(d Diagnostic) {
	b.items = append(b.items, d)
}

// Full reports whether Add would drop the next diagnostic.
func (b *Bag) Full() bool {
	return b.max > 0 && len(b.items) >= b.max
}

func (b *Bag) Len() int { return len(b.items) }

// Dropped returns how many diagnostics the limit rejected.
func (b *Bag) Dropped() int { return b.dropped }

// Items возвращает внутренний срез: только для чтения.
func (b *Bag) Items() []Diagnostic { return b.items }

// Worst returns the highest severity in the bag and false when it is empty.
func (b *Bag) Worst() (Severity, bool) {
	if len(b.items) == 0 {
		return SevInfo, false
	}
	worst := SevInfo
	for i := range b.items {
		worst = max(worst, b.items[i].Severity)
	}
	return worst, true
}

func (b *Bag) HasErrors() bool {
	sev, ok := b.Worst()
	return ok && sev >= SevError
}

// Count returns the number of diagnostics carrying code.
func (b *Bag) Count(code Code) int {
	n := 0
	for i := range b.items {
		if b.items[i].Code == code {
			n++
		}
	}
	return n
}

// Filter keeps only diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool { return !keep(d) })
}

// Promote raises every diagnostic with code to at least sev. --deny-missing
// uses it to turn missing-hint warnings into errors.
func (b *Bag) Promote(code Code, sev Severity) {
	for i := range b.items {
		if d := &b.items[i]; d.Code == code {
			d.Severity = max(d.Severity, sev)
		}
	}
}

// Sort orders by file and position, then the more severe first, then code.
// Documents are rewritten in parallel; sorting makes the output stable.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup drops later copies of the same finding, keeping the first.
func (b *Bag) Dedup() {
	seen := make(map[identity]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		key := identityOf(d)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		return false
	})
}
