package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hintbook/internal/catalog"
)

// InitResult lists what Init created or changed.
type InitResult struct {
	Root            string
	CreatedManifest bool
	AddedTable      bool
	CreatedCatalog  bool
}

// Init prepares dir for hints: a starter catalog, and a [preprocessor.hints]
// table in book.toml (creating a minimal book.toml when there is none).
// Existing files are never overwritten.
func Init(dir string) (InitResult, error) {
	res := InitResult{Root: dir}
	if st, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return res, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	} else if !st.IsDir() {
		return res, fmt.Errorf("%q is not a directory", dir)
	}

	manifestPath := filepath.Join(dir, ManifestName)
	switch _, err := os.Stat(manifestPath); {
	case errors.Is(err, os.ErrNotExist):
		if err := os.WriteFile(manifestPath, []byte(defaultManifest(filepath.Base(dir))), 0o600); err != nil {
			return res, fmt.Errorf("failed to write %s: %w", ManifestName, err)
		}
		res.CreatedManifest = true
	case err != nil:
		return res, err
	default:
		m, err := ReadManifest(manifestPath)
		if err != nil {
			return res, err
		}
		if !m.HasHints {
			if err := appendHintsTable(manifestPath); err != nil {
				return res, err
			}
			res.AddedTable = true
		}
	}

	catalogPath := filepath.Join(dir, catalog.DefaultFile)
	if _, err := os.Stat(catalogPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(catalogPath, []byte(starterCatalog), 0o600); err != nil {
			return res, fmt.Errorf("failed to write %s: %w", catalog.DefaultFile, err)
		}
		res.CreatedCatalog = true
	} else if err != nil {
		return res, err
	}
	return res, nil
}

func appendHintsTable(path string) error {
	// #nosec G304 -- path is the located book.toml
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintsTable)
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

const hintsTable = `[preprocessor.hints]
command = "hintbook"
# catalog = "hints.toml"
# cache = "hints.json"
# cache-format = "json"
# gfm = false
# deny-missing = false
`

func defaultManifest(title string) string {
	title = strings.TrimSpace(title)
	if title == "" || title == "." || title == string(filepath.Separator) {
		title = "book"
	}
	return fmt.Sprintf("[book]\ntitle = %q\nsrc = \"src\"\n\n%s", title, hintsTable)
}

const starterCatalog = `# Hint definitions. Reference one from a chapter with [label](~key);
# use [label](~!key) to print the label without a hint.

[hint-example]
hint = "Hints are written in *Markdown*. Raw <kbd>HTML</kbd> works too."
`
