package occurrence

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSpeciesFilename(t *testing.T) {
	got := SpeciesFilename("/data", "Quercus robur", "_gbif.csv")
	want := filepath.Join("/data", "Quercus", "Quercus robur_gbif.csv")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSpeciesFilename_EscapesSeparator(t *testing.T) {
	got := SpeciesFilename("/data", "Abies x/y", "_powo.json")
	if strings.Count(got, string(filepath.Separator)) != 3 {
		t.Fatalf("species name must not add path levels: %q", got)
	}
}

func TestParseSpeciesList(t *testing.T) {
	in := strings.Join([]string{
		`1,"Abies alba",Pinaceae`,
		`2, Quercus robur ,Fagaceae`,
		`no-second-column`,
		`3,"",empty`,
		``,
	}, "\n")
	names, err := ParseSpeciesList(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "Abies alba" || names[1] != "Quercus robur" {
		t.Fatalf("unexpected names %q", names)
	}
}

func TestReadSpeciesList_Missing(t *testing.T) {
	if _, err := ReadSpeciesList(filepath.Join(t.TempDir(), "none.csv")); err == nil {
		t.Fatal("expected error")
	}
}
