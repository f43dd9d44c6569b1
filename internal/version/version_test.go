package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColored_PlainWhenColorDisabled(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = true

	for _, v := range []string{"0.1.0", "1.2.3-rc.1+build.123", "2.0.0-alpha", "dev", "1.2"} {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() with %q = %q", v, got)
		}
	}
}

func TestColored_Highlights(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()
	color.NoColor = false

	Version = "1.2.3-dev"
	got := Colored()
	if got == Version {
		t.Fatal("expected escape codes in colored version")
	}
	if len(got) <= len(Version) || got[len(got)-4:] != "-dev" {
		t.Errorf("suffix lost: %q", got)
	}

	Version = "nightly"
	if Colored() != "nightly" {
		t.Error("non-semver version must be returned unchanged")
	}
}
