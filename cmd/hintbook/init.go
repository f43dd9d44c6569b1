package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hintbook/internal/catalog"
	"hintbook/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Add hint support to an mdBook book",
	Long: `Init creates a starter hints.toml in the book root and registers the
preprocessor in book.toml. A missing book.toml is created; an existing one
gets a [preprocessor.hints] table appended unless it already has one. Existing
catalogs are never overwritten. dir defaults to the current directory and is
created when it does not exist.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	g, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	res, err := project.Init(dirArg(args))
	if err != nil {
		return err
	}
	if g.quiet {
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized hints in %s\n", displayPath(".", res.Root))
	switch {
	case res.CreatedManifest:
		fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	case res.AddedTable:
		fmt.Fprintf(out, "  - %s ([preprocessor.%s] added)\n", project.ManifestName, project.PreprocessorName)
	default:
		fmt.Fprintf(out, "  - %s (existing)\n", project.ManifestName)
	}
	if res.CreatedCatalog {
		fmt.Fprintf(out, "  - %s\n", catalog.DefaultFile)
	} else {
		fmt.Fprintf(out, "  - %s (existing)\n", catalog.DefaultFile)
	}
	return nil
}
