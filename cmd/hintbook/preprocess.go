package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hintbook/internal/book"
	"hintbook/internal/pipeline"
	"hintbook/internal/project"
)

var supportsCmd = &cobra.Command{
	Use:   "supports <renderer>",
	Short: "Report whether the preprocessor runs for an mdBook renderer",
	Long: `mdBook calls "hintbook supports <renderer>" before each build. The exit
status is 0 when the renderer is listed in [preprocessor.hints].renderers
(default: html) and 1 otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runSupports,
}

func runSupports(cmd *cobra.Command, args []string) error {
	hints := project.Hints{}.WithDefaults()
	m, ok, err := project.LoadManifest(".")
	if err != nil {
		return err
	}
	if ok {
		hints = m.Config.Preprocessor.Hints.WithDefaults()
	}
	if hints.Supports(args[0]) {
		return nil
	}
	return exitCode(1)
}

// runPreprocess is the mdBook entry point: book JSON in, book JSON out.
func runPreprocess(cmd *cobra.Command, _ []string) error {
	g, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	return preprocess(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), g)
}

// preprocess rewrites every chapter of the book read from in and writes it
// to out. Diagnostics go to errOut, stdout belongs to mdBook.
func preprocess(ctx context.Context, in io.Reader, out, errOut io.Writer, g globalOptions) error {
	bctx, b, err := book.ReadRequest(in)
	if err != nil {
		return err
	}
	hints, err := bctx.Hints()
	if err != nil {
		return err
	}
	if bctx.Renderer != "" && !hints.Supports(bctx.Renderer) {
		return book.WriteBook(out, b)
	}
	format, err := hints.Format()
	if err != nil {
		return err
	}

	opts := sessionOptions(bctx.Root, bctx.Src(), hints, format, g)
	s, err := pipeline.Open(ctx, opts)
	if err != nil {
		printDiagnostics(errOut, opts.FileSet, opts.Bag, g)
		return err
	}

	changed, err := book.Rewrite(ctx, bctx, b, s)
	if err != nil {
		return err
	}
	finishErr := s.Finish()
	printDiagnostics(errOut, s.FileSet(), s.Bag(), g)
	if g.timings {
		printStageTimings(errOut, s.Timings())
	}
	if finishErr != nil {
		return finishErr
	}
	if !g.quiet && changed > 0 {
		fmt.Fprintf(errOut, "hints: %d chapter(s) rewritten, cache %s\n", changed, displayPath(bctx.Root, s.CachePath()))
	}
	return book.WriteBook(out, b)
}
