package occurrence

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/occfilter/internal/domain"
)

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"gbif", "idigbio"} {
		d, err := DialectFor(name)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if d.Name() != name {
			t.Errorf("Name() = %q, want %q", d.Name(), name)
		}
	}
	if _, err := DialectFor("bien"); !errors.Is(err, domain.ErrUnknownSource) {
		t.Fatalf("want ErrUnknownSource, got %v", err)
	}
}

func TestIDigBio_ParseLine(t *testing.T) {
	d, _ := DialectFor("idigbio")
	p, err := d.ParseLine(`Abies alba, 7.25, 46.5, ["geopoint_0_coord","dwc_datasetid_added"]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Species() != "Abies alba" || p.X() != 7.25 || p.Y() != 46.5 {
		t.Fatalf("unexpected point %v %v %v", p.Species(), p.X(), p.Y())
	}
	if len(p.Flags()) != 2 {
		t.Fatalf("Flags() = %v", p.Flags())
	}
}

func TestGBIF_ParseLine_SemicolonFlags(t *testing.T) {
	d, _ := DialectFor("gbif")
	p, err := d.ParseLine(`Abies alba, -3.5, 40.1, ["TAXON_MATCH_FUZZY";"COUNTRY_COORDINATE_MISMATCH"]` + "\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flags := p.Flags()
	if len(flags) != 2 || flags[0] != "COUNTRY_COORDINATE_MISMATCH" || flags[1] != "TAXON_MATCH_FUZZY" {
		t.Fatalf("Flags() = %v", flags)
	}
}

func TestGBIF_ParseLine_EmptyFlags(t *testing.T) {
	d, _ := DialectFor("gbif")
	p, err := d.ParseLine(`Abies alba, 1, 2, []`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Flags() != nil {
		t.Fatalf("Flags() = %v, want nil", p.Flags())
	}
}

func TestParseLine_Malformed(t *testing.T) {
	d, _ := DialectFor("idigbio")
	bad := []string{
		`Abies alba, 1, 2`,
		`Abies alba, east, 2, []`,
		`Abies alba, 1, NaN, []`,
		`Abies alba, 1, 2, {"a":1}`,
		`, 1, 2, []`,
	}
	for _, line := range bad {
		if _, err := d.ParseLine(line); err == nil {
			t.Errorf("ParseLine(%q): expected error", line)
		}
	}
}
