package fuzztests

import (
	"errors"
	"reflect"
	"testing"
	"unicode/utf8"

	"hintbook/internal/catalog"
	"hintbook/internal/render"
	"hintbook/internal/source"
	"hintbook/internal/subst"
	"hintbook/internal/testkit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

// knownKeys treats every key of odd length as defined, so both branches of
// Resolve are reached without a catalog.
var knownKeys = subst.LookupFunc(func(key string) bool { return len(key)%2 == 1 })

func FuzzRewriteInvariants(f *testing.F) {
	addDocumentSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet("")
		id := fs.AddVirtual("fuzz.md", input)
		doc := subst.Document{File: id, Path: "fuzz.md", Text: string(input)}

		res := subst.Rewrite(doc, knownKeys)
		if err := testkit.CheckReferenceInvariants(fs.Get(id), res); err != nil {
			t.Fatalf("invariants: %v\ninput: %q", err, input)
		}

		// Повторный прогон того же входа даёт тот же результат
		again := subst.Rewrite(doc, knownKeys)
		if !reflect.DeepEqual(res, again) {
			t.Fatalf("rewrite is not deterministic for %q", input)
		}

		if refs := subst.Scan(doc); !reflect.DeepEqual(refs, res.References) {
			t.Fatalf("Scan and Rewrite disagree: %v vs %v", refs, res.References)
		}
	})
}

func FuzzCatalogParse(f *testing.F) {
	addCatalogSeeds(f)
	r := render.New(render.Options{GFM: true})
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		cat, err := catalog.Parse("fuzz.toml", input)
		if err != nil {
			if !errors.Is(err, catalog.ErrMalformedCatalog) {
				t.Fatalf("unexpected error class: %v", err)
			}
			return
		}

		keys := cat.Keys()
		if len(keys) != cat.Len() {
			t.Fatalf("Keys() has %d entries, Len() = %d", len(keys), cat.Len())
		}
		for _, key := range keys {
			entry, ok := cat.Lookup(key)
			if !ok || entry.Key != key {
				t.Fatalf("lookup of listed key %q failed", key)
			}
			_, _, _ = cat.Locate(key)
			frag, err := r.Fragment(key, entry.Body)
			if err != nil {
				if !utf8.ValidString(entry.Body) && errors.Is(err, render.ErrInvalidUTF8) {
					continue
				}
				t.Fatalf("render %q: %v", key, err)
			}
			if again, _ := r.Fragment(key, entry.Body); again != frag {
				t.Fatalf("render of %q is not deterministic", key)
			}
		}
		_ = cat.Lint()
	})
}
