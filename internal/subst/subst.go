// Package subst rewrites inline hint references of the form [label](~key)
// into hint markup.
//
// The pass is single and non-recursive: labels are copied verbatim and
// nothing produced by a substitution is scanned again. A key starting with
// "!" is an escape and renders the bare label without consulting the catalog.
package subst

import (
	"fmt"
	"regexp"
	"strings"

	"hintbook/internal/catalog"
	"hintbook/internal/source"
)

// referencePattern matches one reference. The label ends at the first ']'
// and the key at the first ')', and neither crosses a newline, so a plain
// link earlier on the line is never swallowed into a label.
var referencePattern = regexp.MustCompile(`\[([^\]\n]*)\]\(~([^)\n]*)\)`)

// Lookup answers whether a hint key is defined. *catalog.Catalog implements it.
type Lookup interface {
	Has(key string) bool
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(key string) bool

func (f LookupFunc) Has(key string) bool { return f(key) }

// Reference is one [label](~key) occurrence. Span covers the whole match.
type Reference struct {
	Label string
	Key   string
	Span  source.Span
}

// Escaped reports whether the reference opts out of lookup.
func (r Reference) Escaped() bool {
	return IsEscaped(r.Key)
}

// Diagnostic records a reference whose key is not in the catalog.
type Diagnostic struct {
	Key      string
	Document string
	Span     source.Span
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("hint not found for key: %s", d.Key)
}

// Document is the text handed over by the host.
type Document struct {
	File source.FileID
	Path string
	Text string
}

// Result is the outcome of Rewrite.
type Result struct {
	Text        string
	Changed     bool
	References  []Reference
	Diagnostics []Diagnostic
}

// IsEscaped reports whether key carries the escape prefix.
func IsEscaped(key string) bool {
	return strings.HasPrefix(key, catalog.EscapePrefix)
}

// Markup returns the hint span for a resolved reference. Label and key are
// inserted verbatim.
func Markup(label, key string) string {
	return `<span class="hint" hint="` + key + `">` + label + `</span>`
}

// Resolve decides the replacement for one reference. The escape check comes
// first so an escaped key is never looked up and never reported missing.
func Resolve(label, key string, lookup Lookup) (replacement string, missing bool) {
	if IsEscaped(key) {
		return label, false
	}
	if lookup == nil || !lookup.Has(key) {
		return label, true
	}
	return Markup(label, key), false
}

// Scan lists the references in doc, left to right and non-overlapping,
// without rewriting it.
func Scan(doc Document) []Reference {
	matches := referencePattern.FindAllStringSubmatchIndex(doc.Text, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, len(matches))
	for i, m := range matches {
		refs[i] = Reference{
			Label: doc.Text[m[2]:m[3]],
			Key:   doc.Text[m[4]:m[5]],
			Span:  spanOf(doc.File, m[0], m[1]),
		}
	}
	return refs
}

// Rewrite substitutes every reference found by Scan in a single pass and
// collects a Diagnostic for each unresolved key. Text without references is
// returned unchanged.
func Rewrite(doc Document, lookup Lookup) Result {
	refs := Scan(doc)
	if len(refs) == 0 {
		return Result{Text: doc.Text}
	}
	res := Result{Changed: true, References: refs}
	var b strings.Builder
	b.Grow(len(doc.Text) + len(refs)*32)
	last := uint32(0)
	for _, ref := range refs {
		b.WriteString(doc.Text[last:ref.Span.Start])
		out, missing := Resolve(ref.Label, ref.Key, lookup)
		if missing {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Key: ref.Key, Document: doc.Path, Span: ref.Span})
		}
		b.WriteString(out)
		last = ref.Span.End
	}
	b.WriteString(doc.Text[last:])
	res.Text = b.String()
	return res
}

func spanOf(file source.FileID, start, end int) source.Span {
	span, err := source.SpanOf(file, start, end)
	if err != nil {
		panic(fmt.Errorf("reference offset: %w", err))
	}
	return span
}
