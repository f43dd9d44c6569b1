package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"hintbook/internal/version"
)

const versionTagline = "small print for big books"

// versionInfo holds the build fingerprints. Values set by -ldflags win over
// the VCS stamps the Go toolchain embeds.
type versionInfo struct {
	Version    string
	GitCommit  string
	GitMessage string
	BuildDate  string
}

// versionOptions selects the optional lines.
type versionOptions struct {
	color       bool
	showHash    bool
	showMessage bool
	showDate    bool
}

type versionPayload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Tagline    string `json:"tagline"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show hintbook build fingerprints",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	f := versionCmd.Flags()
	f.Bool("hash", false, "include git commit hash")
	f.Bool("message", false, "include git commit message")
	f.Bool("date", false, "include build timestamp")
	f.Bool("full", false, "include every recorded fingerprint")
	f.String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	g, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	full, _ := f.GetBool("full")
	hash, _ := f.GetBool("hash")
	message, _ := f.GetBool("message")
	date, _ := f.GetBool("date")
	format, _ := f.GetString("format")

	opts := versionOptions{
		color:       g.color.enabledFor(cmd.OutOrStdout()),
		showHash:    hash || full,
		showMessage: message || full,
		showDate:    date || full,
	}
	info := collectVersionInfo()
	switch strings.ToLower(format) {
	case "pretty":
		renderVersionPretty(cmd.OutOrStdout(), info, opts)
		return nil
	case "json":
		return renderVersionJSON(cmd.OutOrStdout(), info, opts)
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func collectVersionInfo() versionInfo {
	info := versionInfo{
		Version:    strings.TrimSpace(version.Version),
		GitCommit:  strings.TrimSpace(version.GitCommit),
		GitMessage: strings.TrimSpace(version.GitMessage),
		BuildDate:  strings.TrimSpace(version.BuildDate),
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.GitCommit == "":
				info.GitCommit = s.Value
			case s.Key == "vcs.time" && info.BuildDate == "":
				info.BuildDate = s.Value
			}
		}
	}
	return info
}

// versionFields lists the optional lines in output order.
func versionFields(info versionInfo, opts versionOptions) []struct{ label, value string } {
	var out []struct{ label, value string }
	add := func(on bool, label, value string) {
		if !on {
			return
		}
		if value == "" {
			value = "unknown"
		}
		out = append(out, struct{ label, value string }{label, value})
	}
	add(opts.showHash, "commit", info.GitCommit)
	add(opts.showMessage, "message", info.GitMessage)
	add(opts.showDate, "built", info.BuildDate)
	return out
}

func renderVersionPretty(out io.Writer, info versionInfo, opts versionOptions) {
	shown := info.Version
	if opts.color && shown == version.Version {
		shown = version.Colored()
	}
	fmt.Fprintf(out, "hintbook %s: %s\n", shown, versionTagline)
	for _, f := range versionFields(info, opts) {
		fmt.Fprintf(out, "%-8s %s\n", f.label+":", f.value)
	}
}

func renderVersionJSON(out io.Writer, info versionInfo, opts versionOptions) error {
	payload := versionPayload{Tool: "hintbook", Version: info.Version, Tagline: versionTagline}
	for _, f := range versionFields(info, opts) {
		switch f.label {
		case "commit":
			payload.GitCommit = f.value
		case "message":
			payload.GitMessage = f.value
		case "built":
			payload.BuildDate = f.value
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
