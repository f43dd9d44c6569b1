// Package book speaks the mdBook preprocessor protocol: mdBook writes a
// [context, book] JSON array to stdin and expects the book back on stdout.
//
// Only chapter contents are touched. Every other field, including ones a
// newer mdBook adds, is carried through as raw JSON.
package book

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"hintbook/internal/project"
)

// ErrProtocol is returned for input that is not a preprocessor request.
var ErrProtocol = errors.New("invalid mdBook preprocessor input")

// Context is the first element of the request.
type Context struct {
	Root          string `json:"root"`
	Renderer      string `json:"renderer"`
	MdbookVersion string `json:"mdbook_version"`
	Config        struct {
		Book struct {
			Src   string `json:"src"`
			Title string `json:"title"`
		} `json:"book"`
		Preprocessor map[string]json.RawMessage `json:"preprocessor"`
	} `json:"config"`
}

// Src is the configured source directory as written in book.toml, relative
// to Root unless absolute.
func (c *Context) Src() string {
	return cmp.Or(filepath.FromSlash(c.Config.Book.Src), "src")
}

// SourceDir returns the book source directory, resolved against Root.
func (c *Context) SourceDir() string {
	if src := c.Src(); !filepath.IsAbs(src) {
		return filepath.Join(c.Root, src)
	}
	return c.Src()
}

// Hints decodes the [preprocessor.hints] table forwarded by mdBook.
func (c *Context) Hints() (project.Hints, error) {
	var h project.Hints
	raw, ok := c.Config.Preprocessor[project.PreprocessorName]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return h.WithDefaults(), nil
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return h, fmt.Errorf("%w: preprocessor.%s: %w", ErrProtocol, project.PreprocessorName, err)
	}
	if _, err := h.Format(); err != nil {
		return h, fmt.Errorf("preprocessor.%s: %w", project.PreprocessorName, err)
	}
	return h.WithDefaults(), nil
}

// ReadRequest decodes the [context, book] pair.
func ReadRequest(r io.Reader) (*Context, *Book, error) {
	var pair []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&pair); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if len(pair) != 2 {
		return nil, nil, fmt.Errorf("%w: expected [context, book], got %d elements", ErrProtocol, len(pair))
	}

	ctx := &Context{}
	if err := json.Unmarshal(pair[0], ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: context: %w", ErrProtocol, err)
	}
	b := &Book{}
	if err := json.Unmarshal(pair[1], b); err != nil {
		return nil, nil, fmt.Errorf("%w: book: %w", ErrProtocol, err)
	}
	return ctx, b, nil
}

// WriteBook encodes b for mdBook.
func WriteBook(w io.Writer, b *Book) error {
	data, err := marshalNoEscape(b)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// marshalNoEscape keeps '<', '>' and '&' literal: chapter content is HTML-heavy.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
