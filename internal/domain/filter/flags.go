package filter

import "github.com/kailas-cloud/occfilter/internal/domain/occurrence"

// GBIFDenyFlags are GBIF issue codes that disqualify a record.
var GBIFDenyFlags = []string{
	"TAXON_MATCH_FUZZY",
	"TAXON_MATCH_HIGHERRANK",
	"TAXON_MATCH_NONE",
}

// IDigBioDenyFlags are iDigBio data-quality flags that disqualify a record.
var IDigBioDenyFlags = []string{
	"geopoint_datum_missing",
	"geopoint_bounds",
	"geopoint_datum_error",
	"geopoint_similar_coord",
	"rev_geocode_mismatch",
	"rev_geocode_failure",
	"geopoint_0_coord",
	"taxon_match_failed",
	"dwc_kingdom_suspect",
	"dwc_taxonrank_invalid",
	"dwc_taxonrank_removed",
}

// DefaultDenyFlags returns the stock deny-list for a known source, or nil.
func DefaultDenyFlags(source string) []string {
	switch source {
	case "gbif":
		return GBIFDenyFlags
	case "idigbio":
		return IDigBioDenyFlags
	default:
		return nil
	}
}

// Flags rejects points carrying any deny-listed flag. When source is set,
// points from other sources pass untouched.
type Flags struct {
	source string
	deny   map[string]struct{}
}

// NewFlags creates a deny-list filter scoped to source ("" for all).
func NewFlags(source string, deny []string) *Flags {
	set := make(map[string]struct{}, len(deny))
	for _, f := range deny {
		set[f] = struct{}{}
	}
	return &Flags{source: source, deny: set}
}

// Name returns "flags" or "flags:<source>".
func (f *Flags) Name() string {
	if f.source == "" {
		return "flags"
	}
	return "flags:" + f.source
}

// Source returns the source this filter is scoped to.
func (f *Flags) Source() string { return f.source }

// Valid reports whether p carries none of the denied flags.
func (f *Flags) Valid(p occurrence.Point) bool {
	if f.source != "" && p.Source() != f.source {
		return true
	}
	return !p.HasAnyFlag(f.deny)
}
