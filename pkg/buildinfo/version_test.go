package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	Version, Commit, Date = "v0.3.0", "abc123", "2026-01-02T03:04:05Z"
	t.Cleanup(func() { Version, Commit, Date = "dev", "none", "unknown" })

	if got := Template(); !strings.HasPrefix(got, "{{.Name}} v0.3.0\n") || !strings.Contains(got, "commit: abc123") {
		t.Errorf("Template() = %q", got)
	}
	if got := String(); got != "version: v0.3.0\ncommit: abc123\nbuilt: 2026-01-02T03:04:05Z" {
		t.Errorf("String() = %q", got)
	}
}
