package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hintbook/internal/hintcache"
	"hintbook/internal/pipeline"
)

var cacheCmd = &cobra.Command{
	Use:   "cache [dir]",
	Short: "Write the rendered hint cache without touching documents",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCache,
}

func init() {
	cacheCmd.Flags().String("format", "", "cache format (json|msgpack); defaults to book.toml")
}

func runCache(cmd *cobra.Command, args []string) error {
	g, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	target, err := resolveBook(dirArg(args))
	if err != nil {
		return err
	}
	if formatFlag != "" {
		format, parseErr := hintcache.ParseFormat(formatFlag)
		if parseErr != nil {
			return parseErr
		}
		// Явный формат без явного имени файла берёт имя по умолчанию для формата
		if format != target.format && target.hints.Cache == target.format.DefaultFile() {
			target.hints.Cache = format.DefaultFile()
		}
		target.format = format
	}

	opts := target.sessionOptions(g)
	s, err := pipeline.Open(cmd.Context(), opts)
	if err != nil {
		printDiagnostics(cmd.ErrOrStderr(), opts.FileSet, opts.Bag, g)
		return err
	}
	printDiagnostics(cmd.ErrOrStderr(), s.FileSet(), s.Bag(), g)
	if g.timings {
		printStageTimings(cmd.ErrOrStderr(), s.Timings())
	}
	if !g.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d hints)\n", displayPath(target.manifest.Root, s.CachePath()), len(s.Cache()))
	}
	return nil
}
