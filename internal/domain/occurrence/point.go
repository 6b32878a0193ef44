package occurrence

import "sort"

// Point is a single occurrence observation of a species.
type Point struct {
	species string
	x, y    float64
	flags   []string
	source  string
}

// NewPoint creates a point. Flags are deduplicated and sorted.
func NewPoint(species string, x, y float64, flags []string) Point {
	return Point{species: species, x: x, y: y, flags: normalizeFlags(flags)}
}

// WithSource returns a copy of the point tagged with the source it came from.
func (p Point) WithSource(source string) Point {
	p.source = source
	return p
}

// Species returns the species name.
func (p Point) Species() string { return p.species }

// X returns the longitude.
func (p Point) X() float64 { return p.x }

// Y returns the latitude.
func (p Point) Y() float64 { return p.y }

// Source returns the data source name, empty if untagged.
func (p Point) Source() string { return p.source }

// Flags returns a copy of the quality flags.
func (p Point) Flags() []string {
	if len(p.flags) == 0 {
		return nil
	}
	out := make([]string, len(p.flags))
	copy(out, p.flags)
	return out
}

// HasAnyFlag reports whether any of the point's flags is in deny.
func (p Point) HasAnyFlag(deny map[string]struct{}) bool {
	for _, f := range p.flags {
		if _, ok := deny[f]; ok {
			return true
		}
	}
	return false
}

// Key is the exact (x, y) identity used for deduplication.
type Key struct {
	X, Y float64
}

// Key returns the coordinate identity of the point.
func (p Point) Key() Key { return Key{X: p.x, Y: p.y} }

func normalizeFlags(flags []string) []string {
	if len(flags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(flags))
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
