package source

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"sync"

	"fortio.org/safecast"
)

// FileSet holds the catalog and the documents of one run and turns spans
// into line and column positions. Safe for concurrent use: the directory
// host rewrites documents in parallel while diagnostics resolve spans.
type FileSet struct {
	mu    sync.RWMutex
	files []*File
	base  string // база для относительных путей в выводе
}

// NewFileSet prints paths relative to base, normally the book root. An
// empty base means the working directory.
func NewFileSet(base string) *FileSet { return &FileSet{base: base} }

// BaseDir falls back to the working directory when no base was set.
func (fs *FileSet) BaseDir() string {
	fs.mu.RLock()
	base := fs.base
	fs.mu.RUnlock()
	if base != "" {
		return base
	}
	wd, _ := os.Getwd()
	return wd
}

// Add stores content as given and returns a fresh FileID, also when path
// was added before. Content longer than a span can address panics.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("%s: %w", path, err))
	}
	f := &File{
		Path:    cleanPath(path),
		Content: content,
		LineIdx: lineIndex(content),
		Flags:   flags,
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	id, err := safecast.Conv[FileID](len(fs.files))
	if err != nil || id == NoFile {
		panic(fmt.Errorf("file set is full: %d files", len(fs.files)))
	}
	f.ID = id
	fs.files = append(fs.files, f)
	return id
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads path from disk. A UTF-8 BOM is dropped, and CRLF line endings
// become LF when every line ends in CRLF. The flags record both so Restore
// can give the original form back.
func (fs *FileSet) Load(path string) (FileID, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- the caller chose the path
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	if rest, ok := bytes.CutPrefix(content, utf8BOM); ok {
		content, flags = rest, flags|FileHadBOM
	}
	// смешанные окончания строк оставляем как есть
	if crlf := bytes.Count(content, []byte("\r\n")); crlf > 0 && crlf == bytes.Count(content, []byte("\n")) {
		content, flags = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")), flags|FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// Restore turns text derived from f's content back into the on-disk form
// Load read: CRLF line endings and the BOM come back when they were there.
func (f *File) Restore(text string) []byte {
	out := []byte(text)
	if f.Flags&FileNormalizedCRLF != 0 {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	}
	if f.Flags&FileHadBOM != 0 {
		out = append(append(make([]byte, 0, len(utf8BOM)+len(out)), utf8BOM...), out...)
	}
	return out
}

// AddVirtual registers text handed over by a host, such as an mdBook
// chapter. It is stored byte for byte: the rewrite must reproduce it exactly.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns nil for an unknown id, NoFile included.
func (fs *FileSet) Get(id FileID) *File {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if int(id) >= len(fs.files) {
		return nil
	}
	return fs.files[id]
}

func (fs *FileSet) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.files)
}

// Resolve converts both ends of span; an unknown file gives zero positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}

// lineIndex records the offset of every '\n'.
func lineIndex(content []byte) []uint32 {
	var idx []uint32
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return idx
		}
		off += i
		idx = append(idx, uint32(off)) //nolint:gosec // Add checked the length
		off++
	}
}

// Position converts a byte offset. A newline belongs to the line it ends.
func (f *File) Position(off uint32) LineCol {
	// число переводов строки строго до off и есть номер строки с нуля
	line, _ := slices.BinarySearch(f.LineIdx, off)
	return LineCol{Line: uint32(line) + 1, Col: off - f.lineStart(line) + 1} //nolint:gosec // line <= len(LineIdx)
}

// lineStart returns the offset of 0-based line n.
func (f *File) lineStart(n int) uint32 {
	if n == 0 {
		return 0
	}
	return f.LineIdx[n-1] + 1
}

// GetLine returns 1-based line n without its newline, or "" when out of range.
func (f *File) GetLine(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	start := f.lineStart(int(n) - 1)
	end := uint32(len(f.Content)) //nolint:gosec // Add checked the length
	if int(n) <= len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	return string(f.Content[start:end])
}
