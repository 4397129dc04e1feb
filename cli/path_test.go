package cli

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestSearchPath(t *testing.T) {
	flagDir := t.TempDir()
	envDir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing")

	t.Setenv(pathEnv, envDir)

	got := searchPath([]string{flagDir, missing})

	for _, dir := range []string{flagDir, envDir} {
		if !slices.Contains(got, dir) {
			t.Errorf("searchPath() = %q, missing %q", got, dir)
		}
	}

	if slices.Contains(got, missing) {
		t.Errorf("searchPath() = %q, includes nonexistent %q", got, missing)
	}

	if i, j := slices.Index(got, flagDir), slices.Index(got, envDir); i > j {
		t.Errorf("searchPath() = %q, want %q before %q", got, flagDir, envDir)
	}
}
