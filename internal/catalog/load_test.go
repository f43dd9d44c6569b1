package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"hintbook/internal/diag"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeCatalog(t, `
[tip1]
hint = "Use *care*."

[borrow]
hint = """
Moves **ownership**.
"""
auto = ["borrowing", "borrowed"]

["with space"]
hint = "quoted key"

[legacy]
hint = "old style"
_auto = ["legacy"]
`)

	cat, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantKeys := []string{"borrow", "legacy", "tip1", "with space"}
	if got := cat.Keys(); !slices.Equal(got, wantKeys) {
		t.Fatalf("Keys() = %v, want %v", got, wantKeys)
	}

	tip, ok := cat.Lookup("tip1")
	if !ok || tip.Body != "Use *care*." || tip.Key != "tip1" {
		t.Errorf("unexpected tip1 entry: %+v (ok=%v)", tip, ok)
	}
	if tip.AutoTriggers != nil {
		t.Errorf("tip1 should have no auto triggers, got %v", tip.AutoTriggers)
	}

	borrow, _ := cat.Lookup("borrow")
	if borrow.Body != "Moves **ownership**.\n" {
		t.Errorf("multi-line body = %q", borrow.Body)
	}
	if !slices.Equal(borrow.AutoTriggers, []string{"borrowing", "borrowed"}) {
		t.Errorf("auto triggers = %v", borrow.AutoTriggers)
	}

	legacy, _ := cat.Lookup("legacy")
	if !slices.Equal(legacy.AutoTriggers, []string{"legacy"}) {
		t.Errorf("legacy _auto not read: %v", legacy.AutoTriggers)
	}

	if cat.Path() != filepath.Join(dir, DefaultFile) {
		t.Errorf("Path() = %q", cat.Path())
	}
	if issues := cat.Lint(); len(issues) != 0 {
		t.Errorf("expected clean lint, got %+v", issues)
	}
}

func TestLoadIsFreshOnEveryCall(t *testing.T) {
	dir := writeCatalog(t, "[a]\nhint = \"one\"\n")

	first, err := Load(dir, DefaultFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	again, err := Load(dir, DefaultFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(first.Keys(), again.Keys()) {
		t.Fatalf("repeated loads differ: %v vs %v", first.Keys(), again.Keys())
	}

	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte("[a]\nhint = \"one\"\n[b]\nhint = \"two\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	edited, err := Load(dir, DefaultFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if edited.Len() != 2 {
		t.Fatalf("edit not picked up, Len() = %d", edited.Len())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		want    error
	}{
		{name: "missing file", content: nil, want: ErrMissingSource},
		{name: "syntax error", content: ptr("[tip\nhint = 1"), want: ErrMalformedCatalog},
		{name: "missing hint field", content: ptr("[tip]\nauto = [\"x\"]\n"), want: ErrMalformedCatalog},
		{name: "hint is not a string", content: ptr("[tip]\nhint = 42\n"), want: ErrMalformedCatalog},
		{name: "top-level value instead of table", content: ptr("tip = \"x\"\n"), want: ErrMalformedCatalog},
		{name: "duplicate key", content: ptr("[tip]\nhint = \"a\"\n\n[tip]\nhint = \"b\"\n"), want: ErrMalformedCatalog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != nil {
				if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(*tt.content), 0o600); err != nil {
					t.Fatal(err)
				}
			}
			_, err := Load(dir, "")
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadSyntaxErrorOffset(t *testing.T) {
	_, err := Parse("hints.toml", []byte("[ok]\nhint = \"x\"\n[broken\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	start, _, ok := ErrorOffset(err)
	if !ok {
		t.Fatalf("expected a toml.ParseError inside %v", err)
	}
	if start < 0 || start > len("[ok]\nhint = \"x\"\n[broken\n") {
		t.Errorf("offset %d out of range", start)
	}
}

func TestParseEntryErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
		header  string // "" when the entry has no table header
	}{
		{name: "missing hint", content: "[a]\nhint = \"x\"\n[b]\nauto = []\n", key: "b", header: "[b]"},
		{name: "quoted key", content: "[\"b c\"]\nhint = 1\n", key: "b c", header: `["b c"]`},
		{name: "not a table", content: "tip = \"x\"\n", key: "tip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("hints.toml", []byte(tt.content))
			var eerr *EntryError
			if !errors.As(err, &eerr) || !errors.Is(err, ErrMalformedCatalog) {
				t.Fatalf("err = %v, want *EntryError", err)
			}
			if eerr.Key != tt.key {
				t.Errorf("key = %q, want %q", eerr.Key, tt.key)
			}
			start, n, ok := ErrorOffset(err)
			if tt.header == "" {
				if ok {
					t.Errorf("unexpected offset %d+%d", start, n)
				}
				return
			}
			if !ok || tt.content[start:start+n] != tt.header {
				t.Errorf("offset covers %q, want %q", tt.content[start:start+n], tt.header)
			}
		})
	}
}

func TestParseUnknownFields(t *testing.T) {
	cat, err := Parse("hints.toml", []byte("[tip]\nhint = \"x\"\ncolour = \"red\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	issues := cat.Lint()
	if len(issues) != 1 {
		t.Fatalf("expected one issue, got %+v", issues)
	}
	if issues[0].Code != diag.CatUnknownField || issues[0].Key != "tip" {
		t.Errorf("unexpected issue %+v", issues[0])
	}
}

func ptr(s string) *string { return &s }
