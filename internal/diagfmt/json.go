package diagfmt

import (
	"encoding/json"
	"io"

	"hintbook/internal/diag"
	"hintbook/internal/source"
)

// Location is a span in a document or the catalog. Line and column fields
// are present only with JSONOpts.IncludePositions.
type Location struct {
	File      string    `json:"file"`
	Span      [2]uint32 `json:"span"` // byte offsets, end exclusive
	Line      uint32    `json:"line,omitempty"`
	Column    uint32    `json:"column,omitempty"`
	EndLine   uint32    `json:"end_line,omitempty"`
	EndColumn uint32    `json:"end_column,omitempty"`
}

type NoteEntry struct {
	Message  string    `json:"message"`
	Location *Location `json:"location,omitempty"`
}

type Entry struct {
	Severity string      `json:"severity"`
	Code     string      `json:"code"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Location *Location   `json:"location,omitempty"`
	Notes    []NoteEntry `json:"notes,omitempty"`
}

// Summary counts the whole bag, including entries cut by JSONOpts.Max.
type Summary struct {
	Errors       int `json:"errors"`
	Warnings     int `json:"warnings"`
	Infos        int `json:"infos"`
	MissingHints int `json:"missing_hints"`
}

// Report is the document written by `hintbook check --format json`.
type Report struct {
	Diagnostics []Entry `json:"diagnostics"`
	Count       int     `json:"count"`
	Dropped     int     `json:"dropped,omitempty"`
	Summary     Summary `json:"summary"`
}

// BuildReport converts the bag without encoding it.
func BuildReport(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Report {
	items := bag.Items()
	shown := items
	if opts.Max > 0 && opts.Max < len(items) {
		shown = items[:opts.Max]
	}

	r := Report{
		Diagnostics: make([]Entry, 0, len(shown)),
		Dropped:     bag.Dropped() + len(items) - len(shown),
	}
	for _, d := range items {
		switch d.Severity {
		case diag.SevError:
			r.Summary.Errors++
		case diag.SevWarning:
			r.Summary.Warnings++
		default:
			r.Summary.Infos++
		}
		if d.Code == diag.RefMissingHint {
			r.Summary.MissingHints++
		}
	}

	loc := func(sp source.Span) *Location { return locationOf(sp, fs, opts) }
	for _, d := range shown {
		e := Entry{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: loc(d.Primary),
		}
		// заметка таймингов и есть полезная нагрузка
		if opts.IncludeNotes || d.Code == diag.ObsTimings {
			for _, n := range d.Notes {
				e.Notes = append(e.Notes, NoteEntry{Message: n.Msg, Location: loc(n.Span)})
			}
		}
		r.Diagnostics = append(r.Diagnostics, e)
	}
	r.Count = len(r.Diagnostics)
	return r
}

func locationOf(sp source.Span, fs *source.FileSet, opts JSONOpts) *Location {
	f := lookupFile(fs, sp)
	if f == nil {
		return nil
	}
	l := &Location{
		File: formatPath(f, opts.PathMode, fs.BaseDir()),
		Span: [2]uint32{sp.Start, sp.End},
	}
	if opts.IncludePositions {
		start, end := fs.Resolve(sp)
		l.Line, l.Column = start.Line, start.Col
		l.EndLine, l.EndColumn = end.Line, end.Col
	}
	return l
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(bag, fs, opts))
}
