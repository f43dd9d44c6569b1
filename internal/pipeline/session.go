// Package pipeline drives a hint run: load the catalog, render the hint
// cache, then rewrite documents.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"hintbook/internal/catalog"
	"hintbook/internal/diag"
	"hintbook/internal/hintcache"
	"hintbook/internal/observ"
	"hintbook/internal/render"
	"hintbook/internal/source"
	"hintbook/internal/subst"
	"hintbook/internal/trace"
)

// DefaultSourceDir is the mdBook source directory used when none is configured.
const DefaultSourceDir = "src"

// ErrMissingHints is returned by Finish when unresolved references are denied.
var ErrMissingHints = errors.New("unresolved hint references")

// Options configures a Session.
type Options struct {
	Root        string // book root holding the catalog
	CatalogName string // defaults to catalog.DefaultFile
	SourceDir   string // cache directory; a relative path is joined with Root once, in Open
	CacheName   string // defaults per CacheFormat
	CacheFormat hintcache.Format
	SkipCache   bool // load and render, but do not write the cache
	Render      render.Options
	DenyMissing bool

	// FileSet and Bag are created when nil. Passing them in lets the caller
	// print diagnostics even when Open fails.
	FileSet        *source.FileSet
	Bag            *diag.Bag
	MaxDiagnostics int
	Reporter       diag.Reporter // optional extra sink, e.g. for live output

	Timer    *observ.Timer
	Progress ProgressSink
}

// Session holds the state shared by all documents of one run. The catalog
// and cache are immutable after Open, so Process may be called concurrently.
type Session struct {
	opts        Options
	fs          *source.FileSet
	bag         *diag.Bag
	reporter    diag.Reporter
	catalog     *catalog.Catalog
	catalogFile source.FileID
	cache       hintcache.Cache
	cachePath   string
	timings     Timings
	missing     atomic.Int64
}

// Open loads the catalog, reports lint findings, renders every hint and
// writes the cache. Any failure is fatal for the run.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.FileSet == nil {
		opts.FileSet = source.NewFileSet(opts.Root)
	}
	if opts.Bag == nil {
		opts.Bag = diag.NewBag(opts.MaxDiagnostics)
	}
	if opts.CatalogName == "" {
		opts.CatalogName = catalog.DefaultFile
	}
	if opts.SourceDir == "" {
		opts.SourceDir = DefaultSourceDir
	}
	if !filepath.IsAbs(opts.SourceDir) {
		opts.SourceDir = filepath.Join(opts.Root, opts.SourceDir)
	}
	if opts.CacheFormat == "" {
		opts.CacheFormat = hintcache.FormatJSON
	}

	var reporter diag.Reporter = diag.NewBagReporter(opts.Bag)
	if opts.Reporter != nil {
		reporter = diag.MultiReporter{reporter, opts.Reporter}
	}
	s := &Session{
		opts:        opts,
		fs:          opts.FileSet,
		bag:         opts.Bag,
		reporter:    diag.NewDedupReporter(reporter),
		catalogFile: source.NoFile,
	}

	if err := s.stage(ctx, StageLoad, "load_catalog", s.loadCatalog); err != nil {
		return nil, err
	}
	if err := s.stage(ctx, StageRender, "render_hints", s.renderCache); err != nil {
		return nil, err
	}
	if opts.SkipCache {
		return s, nil
	}
	if err := s.stage(ctx, StageCache, "write_cache", s.writeCache); err != nil {
		return nil, err
	}
	return s, nil
}

// stage runs fn wrapped in progress events, a trace span and a timer phase.
func (s *Session) stage(ctx context.Context, st Stage, name string, fn func() (string, error)) error {
	emit(s.opts.Progress, Event{Stage: st, Status: StatusWorking})
	_, span := trace.Start(ctx, trace.ScopeStage, name)
	end := s.opts.Timer.Measure(name)

	note, err := fn()

	elapsed := end(note)
	s.timings.Set(st, elapsed)
	if err != nil {
		span.End(err.Error())
		emit(s.opts.Progress, Event{Stage: st, Status: StatusError, Err: err, Elapsed: elapsed})
		return err
	}
	span.End(note)
	emit(s.opts.Progress, Event{Stage: st, Status: StatusDone, Elapsed: elapsed})
	return nil
}

func (s *Session) loadCatalog() (string, error) {
	cat, err := catalog.Load(s.opts.Root, s.opts.CatalogName)
	if err != nil {
		if errors.Is(err, catalog.ErrMalformedCatalog) {
			s.reportMalformed(err)
		}
		return "", err
	}
	s.catalog = cat
	s.catalogFile = s.fs.Add(cat.Path(), cat.Source(), 0)

	for _, issue := range cat.Lint() {
		b := diag.ReportWarning(s.reporter, issue.Code, s.catalogSpan(issue.Key), issue.Message)
		if issue.Other != "" {
			b.WithNote(s.catalogSpan(issue.Other), fmt.Sprintf("[%s] is defined here", issue.Other))
		}
		b.Emit()
	}
	return fmt.Sprintf("entries=%d", cat.Len()), nil
}

// reportMalformed records err as a CatMalformed error. It points at the
// TOML syntax error or the offending entry when a position is known, at the
// start of the catalog otherwise.
func (s *Session) reportMalformed(err error) {
	span := source.NoSpan
	path := s.catalogPath()
	// #nosec G304 -- same file catalog.Load just read
	if content, readErr := os.ReadFile(path); readErr == nil {
		id := s.fs.Add(path, content, 0)
		span = source.Span{File: id}
		if start, length, ok := catalog.ErrorOffset(err); ok {
			if sp, spanErr := source.SpanOf(id, start, min(start+max(length, 1), len(content))); spanErr == nil {
				span = sp
			}
		}
	}
	diag.ReportError(s.reporter, diag.CatMalformed, span, err.Error()).Emit()
}

func (s *Session) catalogPath() string {
	if filepath.IsAbs(s.opts.CatalogName) {
		return s.opts.CatalogName
	}
	return filepath.Join(s.opts.Root, s.opts.CatalogName)
}

func (s *Session) catalogSpan(key string) source.Span {
	start, end, ok := s.catalog.Locate(key)
	if !ok {
		return source.Span{File: s.catalogFile}
	}
	span, err := source.SpanOf(s.catalogFile, start, end)
	if err != nil {
		return source.Span{File: s.catalogFile}
	}
	return span
}

func (s *Session) renderCache() (string, error) {
	cache, err := hintcache.Build(s.catalog, render.New(s.opts.Render))
	if err != nil {
		if errors.Is(err, render.ErrRender) {
			code := diag.RndFailed
			if errors.Is(err, render.ErrInvalidUTF8) {
				code = diag.RndInvalidUTF
			}
			diag.ReportError(s.reporter, code, s.catalogSpan(renderKey(err)), err.Error()).Emit()
		}
		return "", fmt.Errorf("%s: %w", s.catalog.Path(), err)
	}
	s.cache = cache
	return fmt.Sprintf("fragments=%d", len(cache)), nil
}

func renderKey(err error) string {
	var kerr *render.KeyError
	if errors.As(err, &kerr) {
		return kerr.Key
	}
	return ""
}

func (s *Session) writeCache() (string, error) {
	path, err := hintcache.Write(s.opts.SourceDir, s.cache, hintcache.WriteOptions{
		Name:   s.opts.CacheName,
		Format: s.opts.CacheFormat,
	})
	if err != nil {
		diag.ReportError(s.reporter, diag.CchWriteFailed, source.NoSpan, err.Error()).Emit()
		return "", err
	}
	s.cachePath = path
	return filepath.Base(path), nil
}

// Document is the outcome of processing one document.
type Document struct {
	Path   string
	FileID source.FileID
	subst.Result
}

// Process registers text under path and rewrites it.
func (s *Session) Process(ctx context.Context, path, text string) Document {
	id := s.fs.AddVirtual(path, []byte(text))
	return s.rewrite(ctx, id)
}

// rewrite substitutes references in an already registered document and
// reports unresolved keys.
func (s *Session) rewrite(ctx context.Context, id source.FileID) Document {
	f := s.fs.Get(id)
	ctx, span := trace.Start(ctx, trace.ScopeDocument, "document:"+f.Path)

	res := subst.Rewrite(subst.Document{File: id, Path: f.Path, Text: string(f.Content)}, s.catalog)

	for _, ref := range res.References {
		trace.Mark(ctx, trace.ScopeReference, "reference", ref.Key)
		if ref.Label == "" && !ref.Escaped() {
			diag.ReportInfo(s.reporter, diag.RefEmptyLabel, ref.Span,
				fmt.Sprintf("reference to `%s` has an empty label and renders as nothing", ref.Key)).Emit()
		}
	}
	for _, d := range res.Diagnostics {
		s.missing.Add(1)
		diag.ReportWarning(s.reporter, diag.RefMissingHint, d.Span,
			fmt.Sprintf("hint for `%s` is missing in %s", d.Key, filepath.Base(s.catalog.Path()))).Emit()
	}

	span.Set("refs", strconv.Itoa(len(res.References))).
		Set("missing", strconv.Itoa(len(res.Diagnostics))).
		End("")
	return Document{Path: f.Path, FileID: id, Result: res}
}

// Finish applies the deny-missing policy once every document is processed.
func (s *Session) Finish() error {
	n := s.missing.Load()
	if n == 0 || !s.opts.DenyMissing {
		return nil
	}
	s.bag.Promote(diag.RefMissingHint, diag.SevError)
	return fmt.Errorf("%w: %d reference(s) to undefined hints", ErrMissingHints, n)
}

// FileSet returns the documents and catalog seen by the session.
func (s *Session) FileSet() *source.FileSet { return s.fs }

// Bag returns the collected diagnostics.
func (s *Session) Bag() *diag.Bag { return s.bag }

func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

func (s *Session) Cache() hintcache.Cache { return s.cache }

// CachePath returns the written cache file, or "" when the cache was skipped.
func (s *Session) CachePath() string { return s.cachePath }

// Missing returns how many unresolved references were seen so far.
func (s *Session) Missing() int { return int(s.missing.Load()) }

// Timings returns the stage durations recorded by Open and ProcessDir.
func (s *Session) Timings() Timings { return s.timings }

// ProcessDocument runs the complete flow for a single document: load the
// catalog, render and write the cache, then rewrite text. Every call starts
// from scratch, so catalog edits are picked up immediately.
func ProcessDocument(ctx context.Context, opts Options, path, text string) (Document, error) {
	s, err := Open(ctx, opts)
	if err != nil {
		return Document{Path: path, Result: subst.Result{Text: text}}, err
	}
	doc := s.Process(ctx, path, text)
	return doc, s.Finish()
}
