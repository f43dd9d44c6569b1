// Package testkit holds structural checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"hintbook/internal/source"
	"hintbook/internal/subst"
)

// minReferenceLen is len("[](~)").
const minReferenceLen = 5

// CheckReferenceInvariants runs the structural checks on one rewritten document:
// 1) every reference span lies inside the document and is at least "[](~)" long
// 2) spans are ordered and never overlap
// 3) the source text under a span is exactly "[label](~key)"
// 4) every diagnostic belongs to a non-escaped reference with the same key and span
// 5) Changed is set exactly when something matched
func CheckReferenceInvariants(sf *source.File, res subst.Result) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	bySpan := make(map[source.Span]subst.Reference, len(res.References))
	var prevEnd uint32
	for i, ref := range res.References {
		sp := ref.Span
		if sp.File != sf.ID {
			return fmt.Errorf("reference %d points to file %d, want %d", i, sp.File, sf.ID)
		}
		if sp.Len() < minReferenceLen {
			return fmt.Errorf("reference %d span %v is shorter than an empty reference", i, sp)
		}
		if sp.End > lenContent {
			return fmt.Errorf("reference %d span end beyond content: %d > %d", i, sp.End, lenContent)
		}
		// 2) порядок и отсутствие пересечений
		if i > 0 && sp.Start < prevEnd {
			return fmt.Errorf("reference %d span %v overlaps or precedes the previous one ending at %d", i, sp, prevEnd)
		}
		prevEnd = sp.End

		// 3) текст под спаном
		got := string(sf.Content[sp.Start:sp.End])
		want := "[" + ref.Label + "](~" + ref.Key + ")"
		if got != want {
			return fmt.Errorf("reference %d covers %q, want %q", i, got, want)
		}
		bySpan[sp] = ref
	}

	for i, d := range res.Diagnostics {
		ref, ok := bySpan[d.Span]
		if !ok {
			return fmt.Errorf("diagnostic %d (%s) has no matching reference", i, d)
		}
		if ref.Key != d.Key {
			return fmt.Errorf("diagnostic %d key %q, reference key %q", i, d.Key, ref.Key)
		}
		if ref.Escaped() {
			return fmt.Errorf("diagnostic %d reported for escaped key %q", i, d.Key)
		}
	}

	if res.Changed != (len(res.References) > 0) {
		return fmt.Errorf("changed=%v with %d reference(s)", res.Changed, len(res.References))
	}
	if !res.Changed && res.Text != string(sf.Content) {
		return fmt.Errorf("text modified without references")
	}
	return nil
}
