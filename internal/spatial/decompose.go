package spatial

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/kailas-cloud/occfilter/internal/domain"
	"github.com/kailas-cloud/occfilter/internal/domain/geo"
)

// Defaults for DecomposeOptions.
const (
	DefaultMinCellArea = 0.01
	DefaultMaxDepth    = 10
)

// fullTolerance is the relative slack allowed when comparing a clipped area
// with its cell area to classify the cell as Full.
const fullTolerance = 1e-9

// Coverage classifies how a cell relates to its source geometry.
type Coverage int

// Cell coverage kinds.
const (
	// Full cells lie entirely inside the geometry; bbox containment is exact.
	Full Coverage = iota
	// Partial cells straddle the boundary; points need an exact test.
	Partial
)

func (c Coverage) String() string {
	if c == Full {
		return "full"
	}
	return "partial"
}

// GapPolicy controls what happens to boundary regions still unresolved when
// the depth limit is reached.
type GapPolicy string

// Gap policies.
const (
	// GapPartial emits the unresolved region as a Partial cell.
	GapPartial GapPolicy = "partial"
	// GapDrop discards the unresolved region.
	GapDrop GapPolicy = "drop"
)

// DecomposeOptions tunes quadtree decomposition.
type DecomposeOptions struct {
	MinCellArea float64
	MaxDepth    int
	GapPolicy   GapPolicy
}

// DefaultDecomposeOptions returns the stock decomposition settings.
func DefaultDecomposeOptions() DecomposeOptions {
	return DecomposeOptions{
		MinCellArea: DefaultMinCellArea,
		MaxDepth:    DefaultMaxDepth,
		GapPolicy:   GapPartial,
	}
}

// Validate checks option ranges.
func (o DecomposeOptions) Validate() error {
	if math.IsNaN(o.MinCellArea) || o.MinCellArea < 0 {
		return fmt.Errorf("min cell area %g: %w", o.MinCellArea, domain.ErrInvalidConfig)
	}
	if o.MaxDepth < 0 {
		return fmt.Errorf("max depth %d: %w", o.MaxDepth, domain.ErrInvalidConfig)
	}
	switch o.GapPolicy {
	case GapPartial, GapDrop:
	default:
		return fmt.Errorf("gap policy %q: %w", o.GapPolicy, domain.ErrInvalidConfig)
	}
	return nil
}

// Cell is one rectangle of a decomposition.
type Cell struct {
	Bounds   geo.Rect
	Coverage Coverage
	// Geometry is the source geometry clipped to the cell; nil for Full cells.
	Geometry geom.Polygon
}

// Decompose splits g into Full and Partial cells by recursive quadtree
// subdivision of its bounding box. Degenerate or zero-area input yields no cells.
func Decompose(g geom.Polygonal, opts DecomposeOptions) []Cell {
	if g == nil || g.Area() <= 0 {
		return nil
	}
	b := g.Bounds()
	if b == nil {
		return nil
	}
	root := boundsToRect(b)
	if root.Degenerate() {
		return nil
	}
	return decompose(g, root, opts, opts.MaxDepth, nil)
}

func decompose(g geom.Polygonal, box geo.Rect, opts DecomposeOptions, depthLeft int, out []Cell) []Cell {
	ci := g.Intersection(rectToBounds(box))
	clipped, _ := ci.(geom.Polygon)
	if len(clipped) == 0 {
		return out
	}
	env := clipped.Bounds()
	if env == nil {
		return out
	}
	envRect := boundsToRect(env)
	if envRect.Degenerate() {
		return out
	}

	area := clipped.Area()
	if area < opts.MinCellArea {
		return append(out, Cell{Bounds: envRect, Coverage: Partial, Geometry: clipped})
	}
	boxArea := box.Area()
	if math.Abs(area-boxArea) <= fullTolerance*boxArea {
		return append(out, Cell{Bounds: box, Coverage: Full})
	}
	if depthLeft <= 0 {
		if opts.GapPolicy == GapDrop {
			return out
		}
		return append(out, Cell{Bounds: envRect, Coverage: Partial, Geometry: clipped})
	}

	for _, q := range envRect.Quadrants() {
		out = decompose(clipped, q, opts, depthLeft-1, out)
	}
	return out
}

func rectToBounds(r geo.Rect) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: r.MinX, Y: r.MinY},
		Max: geom.Point{X: r.MaxX, Y: r.MaxY},
	}
}

func boundsToRect(b *geom.Bounds) geo.Rect {
	return geo.Rect{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y}
}
