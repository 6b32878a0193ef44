package spatial

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func square(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}}
}

func triangle() geom.Polygon {
	return geom.Polygon{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}}
}

func TestDecompose_SquareIsSingleFullCell(t *testing.T) {
	cells := Decompose(square(0, 0, 10, 10), DefaultDecomposeOptions())
	if len(cells) != 1 {
		t.Fatalf("want 1 cell, got %d", len(cells))
	}
	c := cells[0]
	if c.Coverage != Full {
		t.Fatalf("want full cell, got %v", c.Coverage)
	}
	if c.Geometry != nil {
		t.Fatal("full cell must not carry geometry")
	}
	if c.Bounds.MinX != 0 || c.Bounds.MaxX != 10 || c.Bounds.MinY != 0 || c.Bounds.MaxY != 10 {
		t.Fatalf("unexpected bounds %v", c.Bounds)
	}
}

func TestDecompose_TriangleCoverage(t *testing.T) {
	cells := Decompose(triangle(), DefaultDecomposeOptions())
	if len(cells) == 0 {
		t.Fatal("expected cells")
	}
	var covered float64
	var full, partial int
	for _, c := range cells {
		switch c.Coverage {
		case Full:
			full++
			covered += c.Bounds.Area()
			// every corner of a full cell lies inside the triangle
			if c.Bounds.MinX < -1e-9 || c.Bounds.MinY < -1e-9 || c.Bounds.MaxX+c.Bounds.MaxY > 10+1e-9 {
				t.Fatalf("full cell %v escapes the triangle", c.Bounds)
			}
		case Partial:
			partial++
			a := c.Geometry.Area()
			covered += a
			if a > c.Bounds.Area()+1e-9 {
				t.Fatalf("partial geometry area %g exceeds cell %v", a, c.Bounds)
			}
		}
		if c.Bounds.MinX < 0 || c.Bounds.MinY < 0 || c.Bounds.MaxX > 10 || c.Bounds.MaxY > 10 {
			t.Fatalf("cell %v outside source bbox", c.Bounds)
		}
	}
	if full == 0 || partial == 0 {
		t.Fatalf("want both kinds, got full=%d partial=%d", full, partial)
	}
	if math.Abs(covered-50) > 1e-6 {
		t.Fatalf("covered area %g, want 50", covered)
	}
}

func TestDecompose_DepthLimitGapPolicy(t *testing.T) {
	opts := DecomposeOptions{MinCellArea: 0.01, MaxDepth: 0, GapPolicy: GapPartial}
	cells := Decompose(triangle(), opts)
	if len(cells) != 1 || cells[0].Coverage != Partial {
		t.Fatalf("partial policy: want one partial cell, got %+v", cells)
	}

	opts.GapPolicy = GapDrop
	if cells := Decompose(triangle(), opts); len(cells) != 0 {
		t.Fatalf("drop policy: want no cells, got %d", len(cells))
	}
}

func TestDecompose_SmallGeometryIsPartial(t *testing.T) {
	// area below the minimum is never subdivided, even if the cell is full
	cells := Decompose(square(0, 0, 0.05, 0.05), DefaultDecomposeOptions())
	if len(cells) != 1 || cells[0].Coverage != Partial {
		t.Fatalf("want one partial cell, got %+v", cells)
	}
}

func TestDecompose_Degenerate(t *testing.T) {
	cases := map[string]geom.Polygonal{
		"nil":       nil,
		"collinear": geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}},
		"flat":      geom.Polygon{{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 0}, {X: 0, Y: 0}}},
	}
	for name, g := range cases {
		if cells := Decompose(g, DefaultDecomposeOptions()); len(cells) != 0 {
			t.Errorf("%s: want no cells, got %d", name, len(cells))
		}
	}
}

func TestDecomposeOptions_Validate(t *testing.T) {
	if err := DefaultDecomposeOptions().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	bad := []DecomposeOptions{
		{MinCellArea: -1, MaxDepth: 1, GapPolicy: GapPartial},
		{MinCellArea: math.NaN(), MaxDepth: 1, GapPolicy: GapPartial},
		{MinCellArea: 0.1, MaxDepth: -1, GapPolicy: GapPartial},
		{MinCellArea: 0.1, MaxDepth: 1, GapPolicy: "keep"},
	}
	for _, o := range bad {
		if err := o.Validate(); err == nil {
			t.Errorf("expected error for %+v", o)
		}
	}
}
