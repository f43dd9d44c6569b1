// Package render turns hint bodies written in Markdown into inline HTML
// fragments for the hint cache.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

var (
	// ErrRender is returned when a hint body cannot be compiled.
	ErrRender = errors.New("hint body failed to render")
	// ErrInvalidUTF8 is wrapped together with ErrRender for bodies that are not UTF-8.
	ErrInvalidUTF8 = errors.New("body is not valid UTF-8")
)

// KeyError ties a render failure to the hint it came from.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("hint [%s]: %v", e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// Options configures the Markdown dialect.
type Options struct {
	// GFM enables tables, strikethrough, task lists and autolinks.
	GFM bool
}

// Renderer compiles hint bodies. Raw HTML in bodies is passed through so
// authors can use simple tags inside hints.
type Renderer struct {
	md goldmark.Markdown
}

// New builds a Renderer for opts.
func New(opts Options) *Renderer {
	mdOpts := []goldmark.Option{
		goldmark.WithRendererOptions(html.WithUnsafe()),
	}
	if opts.GFM {
		mdOpts = append(mdOpts, goldmark.WithExtensions(extension.GFM))
	}
	return &Renderer{md: goldmark.New(mdOpts...)}
}

// Fragment renders body to HTML. A <p> wrapper enclosing the whole output is
// removed, since hints are shown inline. It may come from a Markdown
// paragraph or from raw HTML in the body. Output with several paragraphs
// keeps its wrappers so the markup stays balanced.
func (r *Renderer) Fragment(key, body string) (string, error) {
	if !utf8.ValidString(body) {
		return "", &KeyError{Key: key, Err: fmt.Errorf("%w: %w", ErrRender, ErrInvalidUTF8)}
	}

	src := []byte(body)
	doc := r.md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return "", &KeyError{Key: key, Err: fmt.Errorf("%w: %w", ErrRender, err)}
	}

	return stripParagraph(strings.TrimSuffix(buf.String(), "\n")), nil
}

func stripParagraph(s string) string {
	const open, closing = "<p>", "</p>"
	inner, ok := strings.CutPrefix(s, open)
	if !ok {
		return s
	}
	inner, ok = strings.CutSuffix(inner, closing)
	if !ok || strings.Contains(inner, open) || strings.Contains(inner, closing) {
		return s
	}
	return inner
}
