package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"hintbook/internal/source"
)

// shortLine is one row of the short format.
type shortLine struct {
	sev  string
	code string
	path string
	pos  source.LineCol
	msg  string
}

// FormatShortDiagnostics renders one line per diagnostic:
//
//	warning REF4001 src/intro.md:3:7 hint for `tip` is missing in hints.toml
//
// Paths are relative to the file set base. Lines are sorted by location so
// the output can be compared against golden files. Notes become "note" lines
// when includeNotes is set; diagnostics without a location are left out.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil {
		return ""
	}
	var lines []shortLine
	for _, d := range diags {
		code := d.Code.ID()
		if l, ok := locate(fs, d.Primary); ok {
			l.sev, l.code, l.msg = d.Severity.Label(), code, oneLine(d.Message)
			lines = append(lines, l)
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			if l, ok := locate(fs, n.Span); ok {
				l.sev, l.code, l.msg = "note", code, oneLine(n.Msg)
				lines = append(lines, l)
			}
		}
	}

	slices.SortStableFunc(lines, func(x, y shortLine) int {
		return cmp.Or(
			strings.Compare(x.path, y.path),
			cmp.Compare(x.pos.Line, y.pos.Line),
			cmp.Compare(x.pos.Col, y.pos.Col),
			strings.Compare(x.sev, y.sev),
			strings.Compare(x.code, y.code),
			strings.Compare(x.msg, y.msg),
		)
	})

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%s %s %s:%d:%d %s", l.sev, l.code, l.path, l.pos.Line, l.pos.Col, l.msg)
	}
	return strings.Join(out, "\n")
}

func locate(fs *source.FileSet, sp source.Span) (shortLine, bool) {
	f := fs.Get(sp.File)
	if f == nil {
		return shortLine{}, false
	}
	start, _ := fs.Resolve(sp)
	path := filepath.ToSlash(f.FormatPath("relative", fs.BaseDir()))
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return shortLine{path: path, pos: start}, true
}

// oneLine folds a multi-line message onto a single line.
func oneLine(msg string) string {
	return strings.TrimSpace(strings.Join(strings.FieldsFunc(msg, func(r rune) bool {
		return r == '\n' || r == '\r'
	}), " "))
}
