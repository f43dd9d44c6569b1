// Package project locates an mdBook book and reads the hint settings from
// its book.toml.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"hintbook/internal/catalog"
	"hintbook/internal/hintcache"
)

// ManifestName is the mdBook configuration file.
const ManifestName = "book.toml"

// PreprocessorName is the table name under [preprocessor] and the name
// mdBook knows this preprocessor by.
const PreprocessorName = "hints"

// Hints is the [preprocessor.hints] table. The JSON tags match the same table
// as mdBook forwards it in the preprocessor context.
type Hints struct {
	Catalog     string   `toml:"catalog" json:"catalog"`
	Cache       string   `toml:"cache" json:"cache"`
	CacheFormat string   `toml:"cache-format" json:"cache-format"`
	Renderers   []string `toml:"renderers" json:"renderers"`
	GFM         bool     `toml:"gfm" json:"gfm"`
	DenyMissing bool     `toml:"deny-missing" json:"deny-missing"`
}

// WithDefaults fills unset fields.
func (h Hints) WithDefaults() Hints {
	if h.Catalog == "" {
		h.Catalog = catalog.DefaultFile
	}
	if h.CacheFormat == "" {
		h.CacheFormat = string(hintcache.FormatJSON)
	}
	if h.Cache == "" {
		if f, err := hintcache.ParseFormat(h.CacheFormat); err == nil {
			h.Cache = f.DefaultFile()
		}
	}
	if len(h.Renderers) == 0 {
		h.Renderers = []string{"html"}
	}
	return h
}

// Format returns the parsed cache format.
func (h Hints) Format() (hintcache.Format, error) {
	return hintcache.ParseFormat(h.CacheFormat)
}

// Supports reports whether the preprocessor should run for renderer.
func (h Hints) Supports(renderer string) bool {
	return slices.Contains(h.WithDefaults().Renderers, renderer)
}

// Config is the subset of book.toml hintbook reads.
type Config struct {
	Book struct {
		Title string `toml:"title"`
		Src   string `toml:"src"`
	} `toml:"book"`
	Preprocessor struct {
		Hints Hints `toml:"hints"`
	} `toml:"preprocessor"`
}

// Manifest is a located and decoded book.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
	// HasHints reports whether [preprocessor.hints] is present.
	HasHints bool
}

// Src is [book].src relative to Root, "src" when unset.
func (m *Manifest) Src() string {
	if m.Config.Book.Src == "" {
		return "src"
	}
	return filepath.FromSlash(m.Config.Book.Src)
}

// SourceDir returns the book source directory joined with Root.
func (m *Manifest) SourceDir() string {
	if src := m.Src(); !filepath.IsAbs(src) {
		return filepath.Join(m.Root, src)
	}
	return m.Src()
}

// FindManifest walks up from startDir to locate book.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and decodes book.toml starting at startDir.
// ok is false when no book.toml exists up to the filesystem root.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := ReadManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// ReadManifest decodes the book.toml at path.
func ReadManifest(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if _, err := cfg.Preprocessor.Hints.Format(); err != nil {
		return nil, fmt.Errorf("%s: [preprocessor.%s]: %w", path, PreprocessorName, err)
	}
	if strings.TrimSpace(cfg.Book.Src) == "" {
		cfg.Book.Src = "src"
	}
	return &Manifest{
		Path:     path,
		Root:     filepath.Dir(path),
		Config:   cfg,
		HasHints: meta.IsDefined("preprocessor", PreprocessorName),
	}, nil
}

// Standalone returns a manifest for a directory without book.toml, using
// mdBook defaults.
func Standalone(root string) *Manifest {
	m := &Manifest{Root: root}
	m.Config.Book.Src = "src"
	return m
}
