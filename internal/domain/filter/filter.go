// Package filter holds point predicates applied by the species pipeline.
package filter

import "github.com/kailas-cloud/occfilter/internal/domain/occurrence"

// Filter decides whether a point is kept.
type Filter interface {
	Name() string
	Valid(p occurrence.Point) bool
}

// Outcome is the result of applying a filter to a point list.
type Outcome struct {
	Kept    []occurrence.Point
	Removed int
}

// Apply runs f over pts in order, preserving the order of kept points.
func Apply(f Filter, pts []occurrence.Point) Outcome {
	kept := make([]occurrence.Point, 0, len(pts))
	for _, p := range pts {
		if f.Valid(p) {
			kept = append(kept, p)
		}
	}
	return Outcome{Kept: kept, Removed: len(pts) - len(kept)}
}
