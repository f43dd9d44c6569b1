package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hintbook/internal/diag"
	"hintbook/internal/diagfmt"
	"hintbook/internal/pipeline"
	"hintbook/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Report unresolved hint references and catalog problems",
	Long: `Check loads and renders the catalog and scans every chapter, without
writing the cache or any document. The exit status is 1 when an error was
reported; with --deny-missing unresolved references count as errors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	g, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	target, err := resolveBook(dirArg(args))
	if err != nil {
		return err
	}
	opts := target.sessionOptions(g)
	opts.SkipCache = true

	out := cmd.OutOrStdout()
	s, err := pipeline.Open(cmd.Context(), opts)
	if err != nil {
		// Ошибки каталога уже лежат в Bag; печатаем их в выбранном формате
		if writeErr := writeCheckReport(out, format, opts.FileSet, opts.Bag, g); writeErr != nil {
			return writeErr
		}
		return err
	}
	if _, err := s.ProcessDir(cmd.Context(), target.manifest.SourceDir(), pipeline.DirOptions{}); err != nil {
		return err
	}
	finishErr := s.Finish()
	if finishErr != nil && !errors.Is(finishErr, pipeline.ErrMissingHints) {
		return finishErr
	}

	if g.timings && format == "json" {
		pipeline.AppendTimingDiagnostic(s.Bag(), "check", target.manifest.Root, opts.Timer.Report())
	}
	if err := writeCheckReport(out, format, s.FileSet(), s.Bag(), g); err != nil {
		return err
	}
	if g.timings && format != "json" {
		printStageTimings(cmd.ErrOrStderr(), s.Timings())
	}
	// под --deny-missing ошибка Finish сама по себе означает неуспех
	if finishErr != nil || s.Bag().HasErrors() {
		return exitCode(1)
	}
	return nil
}

func writeCheckReport(w io.Writer, format string, fs *source.FileSet, bag *diag.Bag, g globalOptions) error {
	switch format {
	case "short":
		if g.quiet {
			bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= diag.SevWarning })
		}
		bag.Sort()
		if output := diag.FormatShortDiagnostics(bag.Items(), fs, true); output != "" {
			fmt.Fprintln(w, output)
		}
	case "json":
		bag.Sort()
		if err := diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			IncludeNotes:     true,
		}); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		printDiagnostics(w, fs, bag, g)
	}
	return nil
}
