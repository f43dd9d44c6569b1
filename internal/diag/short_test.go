package diag

import (
	"testing"

	"hintbook/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet("/book")

	chapter := fs.Add("/book/src/chapter_1.md", []byte("intro\nsee [x](~gone)\n"), 0)
	catalog := fs.Add("/book/hints.toml", []byte("[tip]\nhint = \"a\"\n"), 0)

	diags := []Diagnostic{
		NewWarning(RefMissingHint, source.Span{File: chapter, Start: 10, End: 19}, "hint `gone` is missing\r\nin hints.toml").
			WithNote(source.Span{File: catalog, Start: 0, End: 5}, "catalog loaded from here"),
		NewError(CatMissingHint, source.Span{File: catalog, Start: 0, End: 5}, "entry `tip` has no hint"),
		NewError(CchWriteFailed, source.NoSpan, "left out"),
	}

	tests := []struct {
		name  string
		notes bool
		want  string
	}{
		{
			name:  "with notes",
			notes: true,
			want: "error CAT1003 hints.toml:1:1 entry `tip` has no hint\n" +
				"note REF4001 hints.toml:1:1 catalog loaded from here\n" +
				"warning REF4001 src/chapter_1.md:2:5 hint `gone` is missing in hints.toml",
		},
		{
			name: "without notes",
			want: "error CAT1003 hints.toml:1:1 entry `tip` has no hint\n" +
				"warning REF4001 src/chapter_1.md:2:5 hint `gone` is missing in hints.toml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatShortDiagnostics(diags, fs, tt.notes); got != tt.want {
				t.Fatalf("want:\n%s\n\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestFormatShortDiagnosticsEmpty(t *testing.T) {
	if got := FormatShortDiagnostics(nil, source.NewFileSet(""), true); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
