package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
)

// DefaultFile is the catalog file name looked up in the book root.
const DefaultFile = "hints.toml"

// EscapePrefix marks a reference key that must render as plain text.
const EscapePrefix = "!"

var (
	// ErrMissingSource is returned when the catalog file does not exist or cannot be read.
	ErrMissingSource = errors.New("hint catalog not found")
	// ErrMalformedCatalog is returned when the catalog cannot be parsed into entries.
	ErrMalformedCatalog = errors.New("malformed hint catalog")
)

// Entry is one hint definition.
type Entry struct {
	Key  string
	Body string
	// AutoTriggers is reserved for automatic linking and is not used by
	// the substitution pass.
	AutoTriggers []string
}

// Catalog maps hint keys to entries. It is immutable once built.
type Catalog struct {
	path    string
	source  []byte
	entries map[string]Entry
	keys    []string
	issues  []Issue
}

// New builds a catalog from entries. Duplicate keys are rejected with
// ErrMalformedCatalog, matching what Load does for a TOML file.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if _, dup := c.entries[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrMalformedCatalog, e.Key)
		}
		c.entries[e.Key] = e
	}
	c.finish()
	return c, nil
}

func (c *Catalog) finish() {
	c.keys = slices.Sorted(maps.Keys(c.entries))
	c.issues = append(c.issues, lintKeys(c)...)
}

// Path returns the file the catalog was loaded from, or "" for in-memory catalogs.
func (c *Catalog) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Source returns the raw catalog bytes as read from disk.
func (c *Catalog) Source() []byte {
	if c == nil {
		return nil
	}
	return c.source
}

// Lookup returns the entry for key. A nil catalog behaves as an empty one.
func (c *Catalog) Lookup(key string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.entries[key]
	return e, ok
}

// Has reports whether key is defined.
func (c *Catalog) Has(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Keys returns the defined keys in sorted order.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.keys)
}

// All iterates entries in key order.
func (c *Catalog) All() iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		if c == nil {
			return
		}
		for _, k := range c.keys {
			if !yield(k, c.entries[k]) {
				return
			}
		}
	}
}

// Locate returns the byte range of the table header defining key in the
// catalog source, trying bare and quoted spellings.
func (c *Catalog) Locate(key string) (start, end int, ok bool) {
	if c == nil {
		return 0, 0, false
	}
	start, n := headerOffset(c.source, key)
	return start, start + n, n > 0
}

// headerOffset finds the table header of key in src. n is 0 when absent.
func headerOffset(src []byte, key string) (start, n int) {
	for _, header := range []string{"[" + key + "]", `["` + key + `"]`, "['" + key + "']"} {
		if i := bytes.Index(src, []byte(header)); i >= 0 {
			return i, len(header)
		}
	}
	return 0, 0
}
