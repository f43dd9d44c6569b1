package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"hintbook/internal/diagfmt"
)

// execute runs sub under a bare root carrying the global flags. Subcommand
// flags are shared between tests, so every test passes the ones it relies on.
func execute(t *testing.T, sub *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := &cobra.Command{Use: "hintbook", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("color", "off", "")
	root.PersistentFlags().Bool("quiet", false, "")
	root.PersistentFlags().Bool("timings", false, "")
	root.PersistentFlags().Int("max-diagnostics", 100, "")
	root.PersistentFlags().Bool("deny-missing", false, "")

	cmd := &cobra.Command{Use: sub.Use, Args: sub.Args, RunE: sub.RunE}
	cmd.Flags().AddFlagSet(sub.Flags())
	root.AddCommand(cmd)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{cmd.Name()}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func writeChapter(t *testing.T, root, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, "src", name), []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestCheckFormats(t *testing.T) {
	root := writeBook(t, "[tip]\nhint = \"x\"\n")
	writeChapter(t, root, "intro.md", "Read [gone](~nope).\n")

	out, _, err := execute(t, checkCmd, "--format", "short", root)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "REF4001") || !strings.Contains(out, "intro.md:1:6") {
		t.Errorf("short output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(root, "src", "hints.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("check must not write the cache: %v", err)
	}

	out, _, err = execute(t, checkCmd, "--format", "json", root)
	if err != nil {
		t.Fatalf("check json: %v", err)
	}
	var report diagfmt.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if report.Summary.MissingHints != 1 || report.Summary.Errors != 0 {
		t.Errorf("summary = %+v", report.Summary)
	}

	if _, _, err := execute(t, checkCmd, "--format", "xml", root); err == nil {
		t.Error("unknown format must fail")
	}
}

func TestCheckMalformedCatalogExitCode(t *testing.T) {
	root := writeBook(t, "[tip]\nbody = \"no hint field\"\n")

	out, _, err := execute(t, checkCmd, "--format", "short", root)
	if err == nil {
		t.Fatal("expected failure for a malformed catalog")
	}
	if !strings.Contains(out, "CAT1002") || !strings.Contains(out, "hints.toml:1:1") {
		t.Errorf("catalog diagnostic not printed:\n%s", out)
	}

	out, _, err = execute(t, checkCmd, "--format", "json", root)
	if err == nil {
		t.Fatal("expected failure for a malformed catalog")
	}
	var report diagfmt.Report
	if jsonErr := json.Unmarshal([]byte(out), &report); jsonErr != nil {
		t.Fatalf("decode: %v\n%s", jsonErr, out)
	}
	if report.Summary.Errors != 1 || len(report.Diagnostics) != 1 || report.Diagnostics[0].Code != "CAT1002" {
		t.Errorf("report = %+v", report)
	}
}

func TestCheckDenyMissingExitCode(t *testing.T) {
	root := writeBook(t, "[tip]\nhint = \"x\"\n")
	writeChapter(t, root, "intro.md", "[gone](~nope)\n")

	out, _, err := execute(t, checkCmd, "--format", "short", "--deny-missing", root)
	var code exitCode
	if !errors.As(err, &code) || code != 1 {
		t.Fatalf("err = %v, want exit status 1", err)
	}
	if !strings.Contains(out, "error REF4001") {
		t.Errorf("missing reference should be reported as an error:\n%s", out)
	}
}

func TestCacheCommandFormats(t *testing.T) {
	root := writeBook(t, "[b]\nhint = \"**B**\"\n\n[a]\nhint = \"A\"\n")

	out, _, err := execute(t, cacheCmd, "--format", "json", root)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	if !strings.Contains(out, "(2 hints)") {
		t.Errorf("stdout = %q", out)
	}
	data, err := os.ReadFile(filepath.Join(root, "src", "hints.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{\"a\":\"A\",\"b\":\"<strong>B</strong>\"}\n" {
		t.Errorf("hints.json = %q", data)
	}

	if _, _, err := execute(t, cacheCmd, "--format", "msgpack", root); err != nil {
		t.Fatalf("cache msgpack: %v", err)
	}
	if st, err := os.Stat(filepath.Join(root, "src", "hints.msgpack")); err != nil || st.Size() == 0 {
		t.Errorf("hints.msgpack not written: %v", err)
	}
}

func TestRenderCommand(t *testing.T) {
	root := writeBook(t, "[tip]\nhint = \"x\"\n")
	writeChapter(t, root, "intro.md", "See [here](~tip).\n")
	writeChapter(t, root, "plain.md", "nothing to do\n")
	outDir := filepath.Join(t.TempDir(), "out")

	out, _, err := execute(t, renderCmd, "--ui", "off", "--in-place=false", "--out", outDir, root)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "rewrote 1 of 2 document(s), 0 unresolved") {
		t.Errorf("summary = %q", out)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "intro.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "See <span class=\"hint\" hint=\"tip\">here</span>.\n" {
		t.Errorf("intro.md = %q", data)
	}
	src, err := os.ReadFile(filepath.Join(root, "src", "intro.md"))
	if err != nil || string(src) != "See [here](~tip).\n" {
		t.Errorf("source changed without --in-place: %q, %v", src, err)
	}
}

func TestRenderFlagConflicts(t *testing.T) {
	root := writeBook(t, "")
	tests := []struct {
		name string
		args []string
	}{
		{"neither", []string{"--ui", "off", "--out", "", "--in-place=false", root}},
		{"both", []string{"--ui", "off", "--out", t.TempDir(), "--in-place", root}},
		{"out is src", []string{"--ui", "off", "--in-place=false", "--out", filepath.Join(root, "src"), root}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := execute(t, renderCmd, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
