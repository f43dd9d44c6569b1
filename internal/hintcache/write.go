package hintcache

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrIO is returned when the cache file cannot be created or written.
var ErrIO = errors.New("hint cache write failed")

// WriteOptions configures Write.
type WriteOptions struct {
	Name   string // file name inside dir; defaults per Format
	Format Format
}

// Write serialises the whole cache into dir/opts.Name, replacing any previous
// file atomically. The previous content is never read. Returns the written path.
func Write(dir string, c Cache, opts WriteOptions) (string, error) {
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}
	name := opts.Name
	if name == "" {
		name = format.DefaultFile()
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", path, ErrIO, err)
	}
	tmp := f.Name()
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(f)
	if err := Encode(w, c, format); err != nil {
		return "", fmt.Errorf("%s: %w: %w", path, ErrIO, err)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("%s: %w: %w", path, ErrIO, err)
	}
	if err := f.Chmod(0o644); err != nil {
		return "", fmt.Errorf("%s: %w: %w", path, ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%s: %w: %w", path, ErrIO, err)
	}
	// Атомарная замена
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		committed = true
		return "", fmt.Errorf("%s: %w: %w", path, ErrIO, err)
	}
	committed = true
	return path, nil
}
