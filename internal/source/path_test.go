package source

import (
	"path/filepath"
	"testing"
)

func TestRelativePath(t *testing.T) {
	tmp := t.TempDir()
	base := filepath.Join(tmp, "book")

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"inside stays relative", filepath.Join(base, "src", "chapter.md"), "src/chapter.md"},
		{"base itself", base, "."},
		{"outside falls back to absolute", filepath.Join(tmp, "other", "chapter.md"), filepath.ToSlash(filepath.Join(tmp, "other", "chapter.md"))},
		{"sibling with common prefix", filepath.Join(tmp, "book2", "a.md"), filepath.ToSlash(filepath.Join(tmp, "book2", "a.md"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RelativePath(tt.target, base)
			if err != nil {
				t.Fatalf("RelativePath: %v", err)
			}
			if got != tt.want {
				t.Errorf("RelativePath(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestFormatPathModes(t *testing.T) {
	long := "/very/long/absolute/path/to/some/book/src/chapter_1.md"
	fs := NewFileSet("")
	f := fs.Get(fs.Add(long, nil, 0))

	tests := map[string]string{
		"absolute": filepath.ToSlash(filepath.Clean(long)),
		"basename": "chapter_1.md",
		"auto":     "chapter_1.md",
		"other":    long,
	}
	for mode, want := range tests {
		if got := f.FormatPath(mode, ""); got != want {
			t.Errorf("FormatPath(%q) = %q, want %q", mode, got, want)
		}
	}
	if got := f.FormatPath("relative", "/very/long/absolute/path/to/some/book"); got != "src/chapter_1.md" {
		t.Errorf("relative = %q", got)
	}
}
