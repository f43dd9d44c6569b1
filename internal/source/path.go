package source

import (
	"os"
	"path/filepath"
	"strings"
)

// cleanPath gives every path one spelling with forward slashes, so output
// and golden files match across platforms.
func cleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// AbsolutePath returns the cleaned absolute form of path.
func AbsolutePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return cleanPath(abs), nil
}

// RelativePath returns path relative to baseDir. A path outside baseDir is
// returned absolute instead of climbing with "..".
func RelativePath(path, baseDir string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return cleanPath(abs), nil
	}
	return cleanPath(rel), nil
}

// FormatPath prints f.Path for diagnostics. mode is one of "absolute",
// "relative" (to baseDir, or the working directory when empty), "basename"
// and "auto", which shortens long absolute paths to their base name. Virtual
// documents with relative names are printed as given in relative mode.
func (f *File) FormatPath(mode, baseDir string) string {
	var (
		out string
		err error
	)
	switch mode {
	case "absolute":
		out, err = AbsolutePath(f.Path)
	case "relative":
		if f.Flags&FileVirtual != 0 && !filepath.IsAbs(f.Path) {
			return f.Path
		}
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		out, err = RelativePath(f.Path, baseDir)
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		if filepath.IsAbs(f.Path) && len(f.Path) >= 40 {
			return filepath.Base(f.Path)
		}
		return f.Path
	default:
		return f.Path
	}
	if err != nil {
		return f.Path
	}
	return out
}
