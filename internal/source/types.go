package source

type (
	// FileID uniquely identifies a document within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a document.
	FileFlags uint8
)

const (
	// FileVirtual marks documents handed over by a host (mdBook chapter, test, stdin).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// NoFile marks a span that is not attached to any document; FileSet.Get
// returns nil for it.
const NoFile FileID = ^FileID(0)

// NoSpan is the primary span of diagnostics without a location.
var NoSpan = Span{File: NoFile}

// File captures metadata and content for a single document or catalog file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}

// LineCol represents a human-readable position in a document.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
