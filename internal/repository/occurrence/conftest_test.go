package occurrence

import (
	"os"
	"path/filepath"
	"testing"
)

// writeSpeciesFile writes content to the per-species path under baseDir.
func writeSpeciesFile(t *testing.T, baseDir, species, suffix, content string) string {
	t.Helper()
	path := SpeciesFilename(baseDir, species, suffix)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
