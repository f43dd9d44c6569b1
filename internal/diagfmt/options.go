package diagfmt

import "hintbook/internal/source"

// PathMode selects how file names are printed.
type PathMode uint8

const (
	PathModeAuto     PathMode = iota // as the file was added
	PathModeAbsolute
	PathModeRelative // to the file set base, usually the book root
	PathModeBasename
)

// PrettyOpts configures Pretty.
type PrettyOpts struct {
	Color     bool
	Context   int8 // строк контекста вокруг строки диагностики
	PathMode  PathMode
	ShowNotes bool
}

// JSONOpts configures JSON.
type JSONOpts struct {
	IncludePositions bool // line and column next to byte offsets
	PathMode         PathMode
	Max              int // entries written; the bag may hold more
	IncludeNotes     bool
}

var pathModeArgs = [...]string{
	PathModeAuto:     "auto",
	PathModeAbsolute: "absolute",
	PathModeRelative: "relative",
	PathModeBasename: "basename",
}

func formatPath(f *source.File, mode PathMode, baseDir string) string {
	if int(mode) >= len(pathModeArgs) {
		mode = PathModeAuto
	}
	if mode != PathModeRelative {
		baseDir = ""
	}
	return f.FormatPath(pathModeArgs[mode], baseDir)
}
