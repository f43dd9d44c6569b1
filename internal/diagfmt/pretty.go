package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"hintbook/internal/diag"
	"hintbook/internal/source"
)

type palette struct {
	err, warn, info, code, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, &d, fs, opts, p)
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "... %d more diagnostic(s) not shown\n", dropped)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	sev := p.severity(d.Severity).Sprint(d.Severity.String())
	code := p.code.Sprint(d.Code.ID())

	f := lookupFile(fs, d.Primary)
	if f == nil {
		fmt.Fprintf(w, "%s %s: %s\n", sev, code, d.Message)
	} else {
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			formatPath(f, opts.PathMode, fs.BaseDir()), start.Line, start.Col, sev, code, d.Message)
		writeSnippet(w, f, fs, d.Primary, opts.Context, p)
	}

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := lookupFile(fs, n.Span)
		if nf == nil {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			continue
		}
		pos, _ := fs.Resolve(n.Span)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n",
			p.note.Sprint("note:"), formatPath(nf, opts.PathMode, fs.BaseDir()), pos.Line, pos.Col, n.Msg)
	}
}

func lookupFile(fs *source.FileSet, span source.Span) *source.File {
	if fs == nil {
		return nil
	}
	return fs.Get(span.File)
}

func writeSnippet(w io.Writer, f *source.File, fs *source.FileSet, span source.Span, context int8, p palette) {
	start, end := fs.Resolve(span)
	ctx := uint32(max(context, 0)) //nolint:gosec // non-negative
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	maxLine := uint32(len(f.LineIdx)) + 1 //nolint:gosec // bounded by FileSet.Add

	gutterWidth := len(fmt.Sprint(min(last, maxLine)))
	for ln := first; ln <= last && ln <= maxLine; ln++ {
		text := f.GetLine(ln)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), text)
		if ln != start.Line {
			continue
		}
		// underline stays on the first line of a multi-line span
		colStart := int(start.Col) - 1
		colEnd := len(text)
		if end.Line == start.Line {
			colEnd = int(end.Col) - 1
		}
		colStart = min(max(colStart, 0), len(text))
		colEnd = min(max(colEnd, colStart), len(text))
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""),
			padding(text[:colStart]), p.caret.Sprint(underline(text[colStart:colEnd])))
	}
}

// padding keeps tabs so the caret lines up with the source line.
func padding(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func underline(s string) string {
	n := runewidth.StringWidth(s)
	if n <= 1 {
		return "^"
	}
	return "^" + strings.Repeat("~", n-1)
}
