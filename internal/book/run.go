package book

import (
	"context"
	"path/filepath"

	"hintbook/internal/pipeline"
)

// Rewrite runs the session over every non-draft chapter in summary order and
// replaces chapter contents with the rewritten text. It returns the number of
// chapters whose content changed.
func Rewrite(ctx context.Context, c *Context, b *Book, s *pipeline.Session) (int, error) {
	src := c.SourceDir()
	changed := 0
	err := b.Walk(func(ch *Chapter) error {
		if ch.Draft {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := s.Process(ctx, filepath.Join(src, filepath.FromSlash(ch.Path)), ch.Content)
		if doc.Changed {
			ch.Content = doc.Text
			changed++
		}
		return nil
	})
	return changed, err
}
