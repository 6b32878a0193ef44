package spatial

import (
	"sync"
	"sync/atomic"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/kailas-cloud/occfilter/internal/domain/geo"
)

// R-tree node fan-out.
const (
	treeMinChildren = 25
	treeMaxChildren = 50
)

// Stats summarizes an index.
type Stats struct {
	Features     int
	FullCells    int
	PartialCells int
	ExactTests   int64
}

// cellEntry is the R-tree payload: the cell rectangle plus a reference to
// the clipped geometry for Partial cells.
type cellEntry struct {
	geom.Polygonal
	rect      geo.Rect
	featureID int
	geometry  int // position in Index.geometries, -1 for Full cells
}

// Index answers "which features contain this point" using decomposed cells
// held in an R-tree. Build with AddFeature, then query concurrently.
type Index struct {
	opts DecomposeOptions

	tree       *rtree.Rtree
	attrs      map[int]any
	geometries []geom.Polygon
	full       int
	partial    int

	exactTests atomic.Int64
	hookMu     sync.RWMutex
	hook       func(featureID int)
}

// NewIndex creates an empty index using opts for every added feature.
func NewIndex(opts DecomposeOptions) *Index {
	return &Index{
		opts:  opts,
		tree:  rtree.NewTree(treeMinChildren, treeMaxChildren),
		attrs: make(map[int]any),
	}
}

// AddFeature decomposes g and registers its cells under id. Zero-area
// geometry is accepted but contributes no cells. Not safe for concurrent use.
func (ix *Index) AddFeature(id int, g geom.Polygonal, attrs any) []Cell {
	ix.attrs[id] = attrs
	cells := Decompose(g, ix.opts)
	for _, c := range cells {
		e := &cellEntry{
			Polygonal: rectToBounds(c.Bounds),
			rect:      c.Bounds,
			featureID: id,
			geometry:  -1,
		}
		if c.Coverage == Partial {
			e.geometry = len(ix.geometries)
			ix.geometries = append(ix.geometries, c.Geometry)
			ix.partial++
		} else {
			ix.full++
		}
		ix.tree.Insert(e)
	}
	return cells
}

// Search returns the attributes of every feature containing (x, y), keyed
// by feature id. Each feature appears at most once.
func (ix *Index) Search(x, y float64) map[int]any {
	hits := make(map[int]any)
	ix.visit(x, y, func(id int) bool {
		hits[id] = ix.attrs[id]
		return true
	})
	return hits
}

// Contains reports whether any feature contains (x, y).
func (ix *Index) Contains(x, y float64) bool {
	found := false
	ix.visit(x, y, func(int) bool {
		found = true
		return false
	})
	return found
}

// Stats returns cell counts and the number of exact tests run so far.
func (ix *Index) Stats() Stats {
	return Stats{
		Features:     len(ix.attrs),
		FullCells:    ix.full,
		PartialCells: ix.partial,
		ExactTests:   ix.exactTests.Load(),
	}
}

// SetExactTestHook registers fn to be called for every exact
// point-in-geometry test. Pass nil to clear.
func (ix *Index) SetExactTestHook(fn func(featureID int)) {
	ix.hookMu.Lock()
	ix.hook = fn
	ix.hookMu.Unlock()
}

func (ix *Index) visit(x, y float64, fn func(featureID int) bool) {
	if ix.full+ix.partial == 0 {
		return
	}
	pt := geom.Point{X: x, Y: y}
	candidates := ix.tree.SearchIntersect(&geom.Bounds{Min: pt, Max: pt})
	if len(candidates) == 0 {
		return
	}
	seen := make(map[int]struct{}, len(candidates))
	for _, c := range candidates {
		e, ok := c.(*cellEntry)
		if !ok {
			continue
		}
		if _, done := seen[e.featureID]; done {
			continue
		}
		if !e.rect.Contains(x, y) {
			continue
		}
		if e.geometry >= 0 && !ix.exactTest(e, pt) {
			continue
		}
		seen[e.featureID] = struct{}{}
		if !fn(e.featureID) {
			return
		}
	}
}

func (ix *Index) exactTest(e *cellEntry, pt geom.Point) bool {
	ix.exactTests.Add(1)
	ix.hookMu.RLock()
	hook := ix.hook
	ix.hookMu.RUnlock()
	if hook != nil {
		hook(e.featureID)
	}
	// Boundary points of a clipped piece count as inside: the clip edges are
	// interior to the source geometry.
	return pt.Within(ix.geometries[e.geometry]) != geom.Outside
}
