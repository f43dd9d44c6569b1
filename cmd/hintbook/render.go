package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hintbook/internal/pipeline"
)

var renderCmd = &cobra.Command{
	Use:   "render [dir]",
	Short: "Rewrite hint references in every chapter of a book",
	Long: `Render writes the hint cache and rewrites [label](~key) references in every
*.md file under the book source directory. Results go to --out, mirroring the
source layout, or replace the sources with --in-place. dir defaults to the
current directory; book.toml is searched upwards from it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("out", "", "directory receiving rewritten documents")
	renderCmd.Flags().Bool("in-place", false, "overwrite changed documents in the source directory")
	renderCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	renderCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

func runRender(cmd *cobra.Command, args []string) error {
	g, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	inPlace, err := cmd.Flags().GetBool("in-place")
	if err != nil {
		return fmt.Errorf("failed to get in-place flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	ui, err := parseSwitch("ui", uiFlag)
	if err != nil {
		return err
	}

	switch {
	case outDir == "" && !inPlace:
		return errors.New("render needs --out DIR or --in-place")
	case outDir != "" && inPlace:
		return errors.New("--out and --in-place cannot be used together")
	}

	target, err := resolveBook(dirArg(args))
	if err != nil {
		return err
	}
	srcDir := target.manifest.SourceDir()
	if outDir != "" {
		if outDir, err = filepath.Abs(outDir); err != nil {
			return err
		}
		if filepath.Clean(outDir) == filepath.Clean(srcDir) {
			return fmt.Errorf("--out %s is the source directory (use --in-place)", outDir)
		}
	}

	opts := target.sessionOptions(g)
	dirOpts := pipeline.DirOptions{OutDir: outDir, InPlace: inPlace, Jobs: jobs}

	var outcome renderOutcome
	if ui.enabledFor(os.Stdout) && !g.quiet {
		files, listErr := pipeline.ListDocuments(srcDir, outDir)
		if listErr != nil {
			return listErr
		}
		var uiErr error
		outcome, uiErr = renderDirWithUI(cmd.Context(), "render "+displayPath(".", target.manifest.Root), files, opts, srcDir, dirOpts)
		if uiErr != nil && outcome.err == nil {
			outcome.err = uiErr
		}
	} else {
		outcome = renderDir(cmd.Context(), opts, srcDir, dirOpts)
	}

	errOut := cmd.ErrOrStderr()
	if outcome.session == nil {
		printDiagnostics(errOut, opts.FileSet, opts.Bag, g)
		return outcome.err
	}
	s := outcome.session
	finishErr := s.Finish()
	printDiagnostics(errOut, s.FileSet(), s.Bag(), g)
	if g.timings {
		printStageTimings(errOut, s.Timings())
	}
	if outcome.err != nil {
		return outcome.err
	}
	if finishErr != nil {
		return finishErr
	}

	if !g.quiet {
		changed := 0
		for _, doc := range outcome.docs {
			if doc.Changed {
				changed++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rewrote %d of %d document(s), %d unresolved reference(s)\n",
			changed, len(outcome.docs), s.Missing())
		fmt.Fprintf(cmd.OutOrStdout(), "cache: %s (%d hints)\n", displayPath(target.manifest.Root, s.CachePath()), len(s.Cache()))
	}
	return nil
}
