package filter

import (
	"github.com/kailas-cloud/occfilter/internal/domain/geo"
	"github.com/kailas-cloud/occfilter/internal/domain/occurrence"
)

// BBox keeps points inside an inclusive rectangle.
type BBox struct {
	rect geo.Rect
}

// NewBBox creates a bounding-box filter.
func NewBBox(r geo.Rect) *BBox { return &BBox{rect: r} }

// Name returns "bbox".
func (b *BBox) Name() string { return "bbox" }

// Valid reports whether p lies inside or on the rectangle.
func (b *BBox) Valid(p occurrence.Point) bool { return b.rect.Contains(p.X(), p.Y()) }
