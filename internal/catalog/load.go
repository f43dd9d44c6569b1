package catalog

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"hintbook/internal/diag"
)

type rawEntry struct {
	Hint string   `toml:"hint"`
	Auto []string `toml:"auto"`
	// _auto is the spelling used by early catalogs.
	LegacyAuto []string `toml:"_auto"`
}

// Load reads <root>/<name> (name defaults to DefaultFile) and parses it into
// a Catalog. It reads fresh on every call so edits between builds are picked up.
//
// Every top-level table is one hint: the table name is the key, the string
// field "hint" is the body and the optional string array "auto" is kept as
// AutoTriggers. TOML forbids defining a table twice, so duplicate keys fail
// with ErrMalformedCatalog.
func Load(root, name string) (*Catalog, error) {
	if name == "" {
		name = DefaultFile
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, name)
	}

	// #nosec G304 -- path comes from the book configuration
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrMissingSource)
		}
		return nil, fmt.Errorf("%s: %w: %w", path, ErrMissingSource, err)
	}
	return Parse(path, content)
}

// Parse decodes catalog content; path is only used in error messages.
// Entries are decoded one by one so a bad entry fails with an *EntryError
// naming its key.
func Parse(path string, content []byte) (*Catalog, error) {
	var raw map[string]toml.Primitive
	meta, err := toml.Decode(string(content), &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrMalformedCatalog, err)
	}

	c := &Catalog{
		path:    path,
		source:  content,
		entries: make(map[string]Entry, len(raw)),
	}
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		bad := func(reason string) error {
			e := &EntryError{Path: path, Key: key, Reason: reason}
			e.Offset, e.Len = headerOffset(content, key)
			return e
		}
		if typ := meta.Type(key); typ != "Hash" {
			return nil, bad(fmt.Sprintf("has TOML type %s, not a table", typ))
		}
		if !meta.IsDefined(key, "hint") {
			return nil, bad("is missing required field `hint`")
		}
		var r rawEntry
		if err := meta.PrimitiveDecode(raw[key], &r); err != nil {
			return nil, bad(err.Error())
		}
		auto := r.Auto
		if auto == nil {
			auto = r.LegacyAuto
		}
		c.entries[key] = Entry{Key: key, Body: r.Hint, AutoTriggers: auto}
	}

	undecoded := meta.Undecoded()
	sort.Slice(undecoded, func(i, j int) bool { return undecoded[i].String() < undecoded[j].String() })
	for _, k := range undecoded {
		if len(k) < 2 {
			continue
		}
		c.issues = append(c.issues, Issue{
			Code:    diag.CatUnknownField,
			Key:     k[0],
			Message: fmt.Sprintf("unknown field `%s` in hint [%s] is ignored", strings.Join(k[1:], "."), k[0]),
		})
	}

	c.finish()
	return c, nil
}

// EntryError is a catalog that parses as TOML but has an entry that is not
// a valid hint. It wraps ErrMalformedCatalog.
type EntryError struct {
	Path   string
	Key    string
	Reason string
	// Offset and Len locate the entry's table header; Len is 0 when the
	// header was not found in the source.
	Offset int
	Len    int
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %v: [%s] %s", e.Path, ErrMalformedCatalog, e.Key, e.Reason)
}

func (e *EntryError) Unwrap() error { return ErrMalformedCatalog }

// ErrorOffset extracts the byte range of a TOML syntax error or of the
// offending entry's header wrapped in err.
func ErrorOffset(err error) (start, length int, ok bool) {
	var perr toml.ParseError
	if errors.As(err, &perr) {
		return perr.Position.Start, perr.Position.Len, true
	}
	var eerr *EntryError
	if errors.As(err, &eerr) && eerr.Len > 0 {
		return eerr.Offset, eerr.Len, true
	}
	return 0, 0, false
}
