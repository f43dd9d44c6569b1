package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hintbook/internal/diag"
	"hintbook/internal/diagfmt"
	"hintbook/internal/hintcache"
	"hintbook/internal/observ"
	"hintbook/internal/pipeline"
	"hintbook/internal/project"
	"hintbook/internal/render"
	"hintbook/internal/source"
)

// globalOptions mirrors the persistent flags.
type globalOptions struct {
	color          switchMode
	quiet          bool
	timings        bool
	maxDiagnostics int
	denyMissing    bool
}

func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	flags := cmd.Root().PersistentFlags()
	var g globalOptions
	color, err := flags.GetString("color")
	if err != nil {
		return g, fmt.Errorf("failed to get color flag: %w", err)
	}
	if g.color, err = parseSwitch("color", color); err != nil {
		return g, err
	}
	if g.quiet, err = flags.GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = flags.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return g, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if g.denyMissing, err = flags.GetBool("deny-missing"); err != nil {
		return g, fmt.Errorf("failed to get deny-missing flag: %w", err)
	}
	return g, nil
}

// switchMode is the auto|on|off value shared by --color and --ui.
type switchMode uint8

const (
	switchAuto switchMode = iota
	switchOn
	switchOff
)

func parseSwitch(flag, value string) (switchMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return switchAuto, nil
	case "on", "always":
		return switchOn, nil
	case "off", "never":
		return switchOff, nil
	}
	return switchAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// enabledFor resolves auto by asking whether w is a terminal.
func (m switchMode) enabledFor(w io.Writer) bool {
	if m != switchAuto {
		return m == switchOn
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// bookTarget is a located book with its hint settings.
type bookTarget struct {
	manifest *project.Manifest
	hints    project.Hints
	format   hintcache.Format
}

// resolveBook finds book.toml at or above dir. A directory without one is
// treated as a book root with mdBook defaults.
func resolveBook(dir string) (*bookTarget, error) {
	if dir == "" {
		dir = "."
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", dir)
	}

	m, ok, err := project.LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		abs, absErr := filepath.Abs(dir)
		if absErr != nil {
			return nil, absErr
		}
		m = project.Standalone(abs)
	}
	hints := m.Config.Preprocessor.Hints.WithDefaults()
	format, err := hints.Format()
	if err != nil {
		return nil, err
	}
	return &bookTarget{manifest: m, hints: hints, format: format}, nil
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// sessionOptions builds pipeline options with a fresh FileSet and Bag, so
// diagnostics can be printed even when pipeline.Open fails. src is relative
// to root; the session resolves it once.
func sessionOptions(root, src string, hints project.Hints, format hintcache.Format, g globalOptions) pipeline.Options {
	opts := pipeline.Options{
		Root:           root,
		CatalogName:    hints.Catalog,
		SourceDir:      src,
		CacheName:      hints.Cache,
		CacheFormat:    format,
		Render:         render.Options{GFM: hints.GFM},
		DenyMissing:    hints.DenyMissing || g.denyMissing,
		FileSet:        source.NewFileSet(root),
		Bag:            diag.NewBag(g.maxDiagnostics),
		MaxDiagnostics: g.maxDiagnostics,
	}
	if g.timings {
		opts.Timer = observ.NewTimer()
	}
	return opts
}

func (t *bookTarget) sessionOptions(g globalOptions) pipeline.Options {
	return sessionOptions(t.manifest.Root, t.manifest.Src(), t.hints, t.format, g)
}

// printDiagnostics writes the bag in pretty form. --quiet hides info-level
// diagnostics.
func printDiagnostics(w io.Writer, fs *source.FileSet, bag *diag.Bag, g globalOptions) {
	if g.quiet {
		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= diag.SevWarning })
	}
	bag.Sort()
	diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
		Color:     g.color.enabledFor(w),
		Context:   1,
		PathMode:  diagfmt.PathModeRelative,
		ShowNotes: true,
	})
}
