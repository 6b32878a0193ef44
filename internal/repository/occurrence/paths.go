package occurrence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SpeciesFilename returns <baseDir>/<Genus>/<Species><suffix>. The genus is
// the first word of the species name.
func SpeciesFilename(baseDir, species, suffix string) string {
	genus, _, _ := strings.Cut(species, " ")
	return filepath.Join(baseDir, escapePathPart(genus), escapePathPart(species)+suffix)
}

func escapePathPart(s string) string {
	return strings.ReplaceAll(s, string(filepath.Separator), "_")
}

// ReadSpeciesList reads species names from the second comma-separated
// column of each line, trimming whitespace and quotes.
func ReadSpeciesList(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open species list: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseSpeciesList(f)
}

// ParseSpeciesList is ReadSpeciesList over a reader. Lines without a second
// column are skipped.
func ParseSpeciesList(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ",")
		if len(parts) < 2 {
			continue
		}
		name := strings.Trim(strings.TrimSpace(parts[1]), `"`)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read species list: %w", err)
	}
	return names, nil
}
