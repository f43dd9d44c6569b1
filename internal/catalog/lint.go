package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"hintbook/internal/diag"
)

// Issue is a non-fatal finding about the catalog.
type Issue struct {
	Code    diag.Code
	Key     string
	Other   string // second key involved, for collisions
	Message string
}

// Lint returns the non-fatal findings gathered while building the catalog:
// unknown fields first, then key checks, each group in key order.
func (c *Catalog) Lint() []Issue {
	if c == nil {
		return nil
	}
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

func lintKeys(c *Catalog) []Issue {
	var issues []Issue
	byNFC := make(map[string]string, len(c.keys))
	for _, key := range c.keys {
		e := c.entries[key]
		if strings.HasPrefix(key, EscapePrefix) {
			issues = append(issues, Issue{
				Code:    diag.CatEscapedKey,
				Key:     key,
				Message: fmt.Sprintf("hint [%s] starts with %q; references to it always render as plain text", key, EscapePrefix),
			})
		}
		if strings.TrimSpace(e.Body) == "" {
			issues = append(issues, Issue{
				Code:    diag.CatEmptyHint,
				Key:     key,
				Message: fmt.Sprintf("hint [%s] has an empty body", key),
			})
		}
		nfc := norm.NFC.String(key)
		if prev, ok := byNFC[nfc]; ok {
			issues = append(issues, Issue{
				Code:    diag.CatKeyCollision,
				Key:     key,
				Other:   prev,
				Message: fmt.Sprintf("hint keys %q and %q differ only in unicode normalization; references must match byte for byte", prev, key),
			})
			continue
		}
		byNFC[nfc] = key
	}
	return issues
}
