package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"flintc/internal/buildpipeline"
	"flintc/internal/layout"
	"flintc/internal/version"
)

const versionTagline = "contracts with their guards on"

// targetInfo describes one backend the binary can lower to.
type targetInfo struct {
	Name      string `json:"name"`
	WordBytes int    `json:"word_bytes"`
	Extension string `json:"extension"`
}

type versionReport struct {
	Tool       string       `json:"tool"`
	Version    string       `json:"version"`
	Tagline    string       `json:"tagline"`
	Go         string       `json:"go"`
	Targets    []targetInfo `json:"targets"`
	GitCommit  string       `json:"git_commit,omitempty"`
	GitMessage string       `json:"git_message,omitempty"`
	BuildDate  string       `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the compiler version and supported targets",
	RunE:  runVersion,
}

func init() {
	f := versionCmd.Flags()
	f.Bool("hash", false, "include git commit hash")
	f.Bool("message", false, "include git commit message")
	f.Bool("date", false, "include build timestamp")
	f.Bool("full", false, "include all build metadata")
	f.String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	full, _ := flags.GetBool("full")
	show := func(name string) bool {
		v, _ := flags.GetBool(name)
		return v || full
	}
	format, _ := flags.GetString("format")

	info := version.Current()
	r := versionReport{
		Tool:    "flintc",
		Version: info.Version,
		Tagline: versionTagline,
		Go:      runtime.Version(),
	}
	for _, t := range layout.Targets() {
		r.Targets = append(r.Targets, targetInfo{Name: t.Name, WordBytes: t.WordBytes, Extension: buildpipeline.Extension(t.Name)})
	}
	if show("hash") {
		r.GitCommit = orUnknown(info.GitCommit)
	}
	if show("message") {
		r.GitMessage = orUnknown(info.GitMessage)
	}
	if show("date") {
		r.BuildDate = orUnknown(info.BuildDate)
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "pretty":
		printVersion(cmd.OutOrStdout(), r)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func printVersion(out io.Writer, r versionReport) {
	fmt.Fprintf(out, "flintc %s: %s (%s)\n", version.Colored(r.Version), r.Tagline, r.Go)
	for _, t := range r.Targets {
		fmt.Fprintf(out, "  %-5s %2d-byte words, writes *%s\n", t.Name, t.WordBytes, t.Extension)
	}
	for _, row := range [][2]string{{"commit", r.GitCommit}, {"message", r.GitMessage}, {"built", r.BuildDate}} {
		if row[1] != "" {
			fmt.Fprintf(out, "%-8s %s\n", row[0]+":", row[1])
		}
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
