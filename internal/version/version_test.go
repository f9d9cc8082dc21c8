package version_test

import (
	"testing"

	"github.com/fatih/color"

	"flintc/internal/version"
)

func TestCurrentTrimsAndDefaults(t *testing.T) {
	orig := version.Version
	origCommit := version.GitCommit
	t.Cleanup(func() {
		version.Version = orig
		version.GitCommit = origCommit
	})

	version.Version = "  "
	version.GitCommit = " abc123 \n"
	info := version.Current()
	if info.Version != "dev" {
		t.Fatalf("Version = %q, want dev", info.Version)
	}
	if info.GitCommit != "abc123" {
		t.Fatalf("GitCommit = %q", info.GitCommit)
	}
}

func TestColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	tests := []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123", "nightly"}
	for _, v := range tests {
		if got := version.Colored(v); got != v {
			t.Fatalf("Colored(%q) = %q without color", v, got)
		}
	}
}

func BenchmarkCurrent(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = version.Current()
	}
}
