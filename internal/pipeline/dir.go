package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hintbook/internal/source"
)

// ErrOutput is returned when a rewritten document cannot be stored.
var ErrOutput = errors.New("document write failed")

// DocumentExt is the extension of documents picked up by ListDocuments.
const DocumentExt = ".md"

// DirOptions configures ProcessDir.
type DirOptions struct {
	// OutDir receives rewritten documents, mirroring the source layout.
	OutDir string
	// InPlace overwrites changed documents in the source directory.
	// With neither OutDir nor InPlace nothing is written.
	InPlace bool
	Jobs    int // 0 means GOMAXPROCS
}

// ListDocuments возвращает отсортированный список всех *.md файлов в директории.
// Скрытые директории и skip пропускаются.
func ListDocuments(dir string, skip ...string) ([]string, error) {
	skipAbs := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		if s == "" {
			continue
		}
		if abs, err := filepath.Abs(s); err == nil {
			skipAbs[abs] = struct{}{}
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if abs, absErr := filepath.Abs(path); absErr == nil {
				if _, ok := skipAbs[abs]; ok {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), DocumentExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// ProcessDir rewrites every document under dir. Documents are registered in
// the FileSet in sorted order first, then rewritten in parallel; results are
// returned in the same order. A read or write failure aborts the run.
func (s *Session) ProcessDir(ctx context.Context, dir string, opts DirOptions) ([]Document, error) {
	files, err := ListDocuments(dir, opts.OutDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	end := s.opts.Timer.Measure("rewrite_documents")
	defer func() {
		s.timings.Set(StageRewrite, end(fmt.Sprintf("documents=%d", len(files))))
	}()

	// Загружаем последовательно: FileID и порядок диагностик не зависят от планировщика
	ids := make([]source.FileID, len(files))
	for i, path := range files {
		id, loadErr := s.fs.Load(path)
		if loadErr != nil {
			return nil, fmt.Errorf("%s: %w", path, loadErr)
		}
		ids[i] = id
		emit(s.opts.Progress, Event{File: path, Stage: StageRewrite, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]Document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			begin := time.Now()
			emit(s.opts.Progress, Event{File: path, Stage: StageRewrite, Status: StatusWorking})
			doc := s.rewrite(gctx, ids[i])
			doc.Path = path
			results[i] = doc

			if err := writeDocument(dir, path, s.fs.Get(ids[i]).Restore(doc.Text), doc.Changed, opts); err != nil {
				emit(s.opts.Progress, Event{File: path, Stage: StageWrite, Status: StatusError, Err: err, Elapsed: time.Since(begin)})
				return err
			}
			emit(s.opts.Progress, Event{File: path, Stage: StageRewrite, Status: StatusDone, Elapsed: time.Since(begin)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeDocument stores content, the rewritten document in its on-disk form.
func writeDocument(srcDir, path string, content []byte, changed bool, opts DirOptions) error {
	var dest string
	switch {
	case opts.OutDir != "":
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("%s: %w: %w", path, ErrOutput, err)
		}
		dest = filepath.Join(opts.OutDir, rel)
	case opts.InPlace:
		if !changed {
			return nil
		}
		dest = path
	default:
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%s: %w: %w", dest, ErrOutput, err)
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil { //nolint:gosec // documents are public build output
		return fmt.Errorf("%s: %w: %w", dest, ErrOutput, err)
	}
	return nil
}
