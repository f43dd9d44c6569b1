package testkit

import (
	"strings"
	"testing"

	"hintbook/internal/source"
	"hintbook/internal/subst"
)

func rewrite(text string, keys ...string) (*source.File, subst.Result) {
	fs := source.NewFileSet("")
	id := fs.AddVirtual("doc.md", []byte(text))
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}
	res := subst.Rewrite(subst.Document{File: id, Path: "doc.md", Text: text},
		subst.LookupFunc(func(k string) bool { return known[k] }))
	return fs.Get(id), res
}

func TestCheckReferenceInvariantsAccepts(t *testing.T) {
	inputs := []string{
		"",
		"plain text with [a link](https://example.com)",
		"[a](~k) and [b](~missing) and [c](~!k)",
		"[](~)",
		"[[x](~k)](~other)",
		"line one [a](~k)\nline two [b](~k)",
	}
	for _, in := range inputs {
		sf, res := rewrite(in, "k")
		if err := CheckReferenceInvariants(sf, res); err != nil {
			t.Errorf("%q: %v", in, err)
		}
	}
}

func TestCheckReferenceInvariantsRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*subst.Result)
		want   string
	}{
		{
			name:   "changed flag",
			mutate: func(r *subst.Result) { r.Changed = false },
			want:   "changed=false",
		},
		{
			name:   "label mismatch",
			mutate: func(r *subst.Result) { r.References[0].Label = "other" },
			want:   "covers",
		},
		{
			name: "overlap",
			mutate: func(r *subst.Result) {
				r.References[1].Span.Start = r.References[0].Span.Start
			},
			want: "overlaps",
		},
		{
			name: "orphan diagnostic",
			mutate: func(r *subst.Result) {
				r.Diagnostics = append(r.Diagnostics, subst.Diagnostic{Key: "x", Span: source.Span{Start: 1, End: 2}})
			},
			want: "no matching reference",
		},
		{
			name: "escaped diagnostic",
			mutate: func(r *subst.Result) {
				r.Diagnostics = append(r.Diagnostics, subst.Diagnostic{Key: "!k", Span: r.References[1].Span})
			},
			want: "escaped",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf, res := rewrite("[a](~k) [b](~!k)", "k")
			tt.mutate(&res)
			err := CheckReferenceInvariants(sf, res)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
