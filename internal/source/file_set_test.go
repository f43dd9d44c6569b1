package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet("")

	id1 := fs.Add("chapter_1.md", []byte("hello world"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	id2 := fs.Add("chapter_1.md", []byte("hello universe"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	if got := fs.Get(id2).Path; got != "chapter_1.md" {
		t.Errorf("Path = %q", got)
	}

	// старая версия остаётся доступной
	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Errorf("Expected first file content to be 'hello world', got %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", fs.Len())
	}
	if fs.Get(42) != nil || fs.Get(NoFile) != nil {
		t.Error("Get on unknown id should return nil")
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet("")

	id := fs.AddVirtual("intro.md", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet("")
	id := fs.AddVirtual("guide.md", []byte("first line\nsee [x](~k) here\n\nlast"))

	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{name: "start of file", off: 0, want: LineCol{Line: 1, Col: 1}},
		{name: "newline belongs to its line", off: 10, want: LineCol{Line: 1, Col: 11}},
		{name: "start of second line", off: 11, want: LineCol{Line: 2, Col: 1}},
		{name: "reference on second line", off: 15, want: LineCol{Line: 2, Col: 5}},
		{name: "empty third line", off: 28, want: LineCol{Line: 3, Col: 1}},
		{name: "last line", off: 29, want: LineCol{Line: 4, Col: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
			if start != tt.want {
				t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
			}
		})
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet("")
	id := fs.AddVirtual("guide.md", []byte("alpha\nbeta\n\ngamma"))
	f := fs.Get(id)

	cases := map[uint32]string{
		0: "",
		1: "alpha",
		2: "beta",
		3: "",
		4: "gamma",
		5: "",
	}
	for line, want := range cases {
		if got := f.GetLine(line); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", line, got, want)
		}
	}
}

func TestLoadAndRestore(t *testing.T) {
	bom := "\xEF\xBB\xBF"
	tests := []struct {
		name      string
		raw       string
		content   string
		wantFlags FileFlags
	}{
		{name: "plain", raw: "a\nb\n", content: "a\nb\n"},
		{name: "bom and crlf", raw: bom + "[tip]\r\nhint = \"x\"\r\n", content: "[tip]\nhint = \"x\"\n", wantFlags: FileHadBOM | FileNormalizedCRLF},
		{name: "mixed endings kept", raw: "a\r\nb\n", content: "a\r\nb\n"},
		{name: "bom only", raw: bom + "x", content: "x", wantFlags: FileHadBOM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "doc.md")
			if err := os.WriteFile(path, []byte(tt.raw), 0o600); err != nil {
				t.Fatal(err)
			}

			fs := NewFileSet(dir)
			id, err := fs.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			f := fs.Get(id)
			if string(f.Content) != tt.content {
				t.Errorf("content = %q, want %q", f.Content, tt.content)
			}
			if f.Flags != tt.wantFlags {
				t.Errorf("flags = %b, want %b", f.Flags, tt.wantFlags)
			}
			if got := string(f.Restore(string(f.Content))); got != tt.raw {
				t.Errorf("Restore = %q, want %q", got, tt.raw)
			}
			if got := f.FormatPath("relative", fs.BaseDir()); got != "doc.md" {
				t.Errorf("FormatPath(relative) = %q, want doc.md", got)
			}
		})
	}
}

func TestFormatPathVirtualRelative(t *testing.T) {
	fs := NewFileSet("/somewhere/else")
	id := fs.AddVirtual("chapters/intro.md", nil)
	if got := fs.Get(id).FormatPath("relative", fs.BaseDir()); got != "chapters/intro.md" {
		t.Errorf("virtual relative path should stay as given, got %q", got)
	}
	if got := fs.Get(id).FormatPath("basename", ""); got != "intro.md" {
		t.Errorf("basename = %q", got)
	}
}
