package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

var documentSeeds = []string{
	"",
	"Read [this](~tip) first.",
	"[a](~one) [b](~two) [c](~!one)",
	"[](~)",
	"[x](~)",
	"[](~tip)",
	"[[nested](~a)](~b)",
	"[broken\n](~tip)",
	"[label](~key with spaces)",
	"[label](https://example.com) and [hint](~tip)",
	"```\n[code](~tip)\n```",
	"[юникод](~ключ) 表 [x](~y)",
}

var catalogSeeds = []string{
	"",
	"[tip]\nhint = \"a *tip*\"\n",
	"[tip]\nhint = \"x\"\nauto = [\"tips\", \"tip\"]\n",
	"[\"quoted key\"]\nhint = \"**bold**\"\n",
	"[tip]\nhint = 1\n",
	"[tip]\nbody = \"x\"\n",
	"tip = \"not a table\"\n",
	"[a]\nhint = \"x\"\n[a]\nhint = \"y\"\n",
	"[\"caf\u00e9\"]\nhint = \"x\"\n[\"cafe\u0301\"]\nhint = \"y\"\n",
	"[tip]\nhint = \"\"\"\n| a | b |\n|---|---|\n| 1 | 2 |\n\"\"\"\n",
}

func addDocumentSeeds(f *testing.F) {
	for _, s := range documentSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f, ".md")
}

func addCatalogSeeds(f *testing.F) {
	for _, s := range catalogSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f, ".toml")
}

func addTestdataSeeds(f *testing.F, ext string) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все файлы с нужным расширением
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
