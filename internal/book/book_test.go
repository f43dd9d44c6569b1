package book

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hintbook/internal/diag"
	"hintbook/internal/pipeline"
)

const request04 = `[
  {"root": "/book", "renderer": "html", "mdbook_version": "0.4.40",
   "config": {"book": {"src": "src", "title": "T"},
              "preprocessor": {"hints": {"command": "hintbook", "gfm": true}}}},
  {"sections": [
     {"Chapter": {"name": "Intro", "content": "See [here](~tip) & more", "number": [1],
                  "sub_items": [
                     {"Chapter": {"name": "Nested", "content": "[n](~missing)", "number": [1, 1],
                                  "sub_items": [], "path": "nested.md", "source_path": "nested.md",
                                  "parent_names": ["Intro"]}}],
                  "path": "intro.md", "source_path": "intro.md", "parent_names": []}},
     "Separator",
     {"PartTitle": "Part"},
     {"Chapter": {"name": "Draft", "content": "", "number": null, "sub_items": [],
                  "path": null, "source_path": null, "parent_names": []}}
   ],
   "__non_exhaustive": null}
]`

func TestReadRequest(t *testing.T) {
	ctx, b, err := ReadRequest(strings.NewReader(request04))
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if ctx.Root != "/book" || ctx.Renderer != "html" || ctx.SourceDir() != filepath.Join("/book", "src") {
		t.Errorf("context: %+v", ctx)
	}
	h, err := ctx.Hints()
	if err != nil || !h.GFM || h.Catalog != "hints.toml" {
		t.Errorf("hints: %+v %v", h, err)
	}

	var names []string
	_ = b.Walk(func(ch *Chapter) error {
		names = append(names, ch.Name)
		return nil
	})
	if strings.Join(names, ",") != "Intro,Nested,Draft" {
		t.Errorf("walk order: %v", names)
	}
	if len(b.Items) != 4 || b.Items[1].Chapter != nil || !b.Items[3].Chapter.Draft {
		t.Errorf("items: %+v", b.Items)
	}
}

func TestRoundTripPreservesUnknownFields(t *testing.T) {
	_, b, err := ReadRequest(strings.NewReader(request04))
	if err != nil {
		t.Fatal(err)
	}
	b.Items[0].Chapter.Content = "<b>changed</b> & more"

	var buf bytes.Buffer
	if err := WriteBook(&buf, b); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`"__non_exhaustive":null`,
		`"Separator"`,
		`{"PartTitle":"Part"}`,
		`"parent_names":["Intro"]`,
		`"number":[1,1]`,
		`"content":"<b>changed</b> & more"`,
		`"path":null`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}

	var generic map[string]any
	if err := json.Unmarshal(buf.Bytes(), &generic); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if _, ok := generic["sections"]; !ok {
		t.Error("sections key lost")
	}
}

func TestItemsLayout(t *testing.T) {
	req := `[{"root":"/b","config":{"book":{}}},{"items":[{"Chapter":{"name":"A","content":"x","path":"a.md","sub_items":[]}}]}]`
	ctx, b, err := ReadRequest(strings.NewReader(req))
	if err != nil {
		t.Fatal(err)
	}
	if ctx.SourceDir() != filepath.Join("/b", "src") {
		t.Errorf("default src: %s", ctx.SourceDir())
	}
	var buf bytes.Buffer
	if err := WriteBook(&buf, b); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), `{"items":[`) {
		t.Errorf("items layout not kept: %s", buf.String())
	}
}

func TestReadRequestErrors(t *testing.T) {
	for _, in := range []string{"", "{}", "[{}]", `[{}, 3]`} {
		if _, _, err := ReadRequest(strings.NewReader(in)); !errors.Is(err, ErrProtocol) {
			t.Errorf("ReadRequest(%q) = %v, want ErrProtocol", in, err)
		}
	}
}

func TestRewriteChapters(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "hints.toml"), []byte("[tip]\nhint = \"**t**\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}

	c, b, err := ReadRequest(strings.NewReader(strings.Replace(request04, `"/book"`, jsonString(root), 1)))
	if err != nil {
		t.Fatal(err)
	}
	bag := diag.NewBag(0)
	s, err := pipeline.Open(context.Background(), pipeline.Options{Root: c.Root, SourceDir: c.Src(), Bag: bag})
	if err != nil {
		t.Fatal(err)
	}
	changed, err := Rewrite(context.Background(), c, b, s)
	if err != nil {
		t.Fatal(err)
	}
	if changed != 2 {
		t.Errorf("changed = %d", changed)
	}
	intro := b.Items[0].Chapter
	if intro.Content != `See <span class="hint" hint="tip">here</span> & more` {
		t.Errorf("intro: %q", intro.Content)
	}
	if intro.SubItems[0].Chapter.Content != "n" {
		t.Errorf("nested: %q", intro.SubItems[0].Chapter.Content)
	}
	if bag.Count(diag.RefMissingHint) != 1 {
		t.Errorf("diagnostics: %v", bag.Items())
	}
	if _, err := os.Stat(filepath.Join(root, "src", "hints.json")); err != nil {
		t.Errorf("cache not written: %v", err)
	}
}

func jsonString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
