// Package hintcache builds and persists the key → fragment mapping that the
// runtime display layer uses to show hint tooltips.
package hintcache

import (
	"maps"
	"slices"

	"hintbook/internal/catalog"
)

// Cache maps hint keys to rendered inline fragments.
type Cache map[string]string

// Fragmenter renders one hint body.
type Fragmenter interface {
	Fragment(key, body string) (string, error)
}

// Build renders every catalog entry. The result has exactly the catalog's
// key set; the first render failure aborts the build.
func Build(cat *catalog.Catalog, r Fragmenter) (Cache, error) {
	c := make(Cache, cat.Len())
	for key, entry := range cat.All() {
		frag, err := r.Fragment(key, entry.Body)
		if err != nil {
			return nil, err
		}
		c[key] = frag
	}
	return c, nil
}

// Keys returns the cache keys in sorted order.
func (c Cache) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}
