package filter

import "github.com/kailas-cloud/occfilter/internal/domain/occurrence"

// Locator answers point-in-region queries.
type Locator interface {
	Contains(x, y float64) bool
}

// RangeMap keeps points inside a species' native distribution.
type RangeMap struct {
	loc Locator
}

// NewRangeMap creates a range-map filter backed by loc.
func NewRangeMap(loc Locator) *RangeMap { return &RangeMap{loc: loc} }

// Name returns "locality".
func (r *RangeMap) Name() string { return "locality" }

// Valid reports whether p falls in any distribution region.
func (r *RangeMap) Valid(p occurrence.Point) bool { return r.loc.Contains(p.X(), p.Y()) }
