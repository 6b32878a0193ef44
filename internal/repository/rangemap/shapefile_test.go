package rangemap

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"

	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
	"github.com/kailas-cloud/occfilter/internal/spatial"
)

type level3Region struct {
	geom.Polygon
	Code string `shp:"LEVEL3_COD"`
}

func box(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}, {X: x0, Y: y0},
	}}
}

// writeLevel3 writes <dir>/level3/level3.shp with the given regions.
func writeLevel3(t *testing.T, dir string, regions ...level3Region) {
	t.Helper()
	path := LayerPath(dir, 3)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	enc, err := shp.NewEncoder(path, level3Region{})
	if err != nil {
		t.Fatalf("create shapefile: %v", err)
	}
	for _, r := range regions {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode %q: %v", r.Code, err)
		}
	}
	enc.Close()
}

func TestLayerPath(t *testing.T) {
	got := LayerPath("/data/wgsrpd", 3)
	want := filepath.Join("/data/wgsrpd", "level3", "level3.shp")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestShapefileLayers_MissingLayerMemoized(t *testing.T) {
	s := NewShapefileLayers(t.TempDir())
	loc := domocc.Locality{Level: 2, Code: "13"}

	_, err1 := s.Geometries(context.Background(), loc)
	if err1 == nil {
		t.Fatal("expected error for missing shapefile")
	}
	_, err2 := s.Geometries(context.Background(), domocc.Locality{Level: 2, Code: "14"})
	if err2 != err1 {
		t.Fatalf("level load must be memoized: %v vs %v", err1, err2)
	}
}

func TestShapefileLayers_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewShapefileLayers(t.TempDir())
	if _, err := s.Geometries(ctx, domocc.Locality{Level: 1, Code: "1"}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestShapefileLayers_Check(t *testing.T) {
	dir := t.TempDir()
	if err := NewShapefileLayers(dir).Check(context.Background()); err != nil {
		t.Fatalf("existing dir: unexpected error: %v", err)
	}
	if err := NewShapefileLayers(filepath.Join(dir, "missing")).Check(context.Background()); err == nil {
		t.Fatal("missing dir: expected error")
	}
}

func TestShapefileLayers_Geometries(t *testing.T) {
	dir := t.TempDir()
	writeLevel3(t, dir,
		level3Region{Polygon: box(0, 0, 10, 10), Code: "SPA"},
		level3Region{Polygon: box(10, 0, 20, 10), Code: "FRA"},
		level3Region{Polygon: box(20, 20, 30, 30), Code: "SPA"},
		level3Region{Polygon: box(40, 40, 50, 50), Code: ""},
	)
	s := NewShapefileLayers(dir)

	wkts, err := s.Geometries(context.Background(), domocc.Locality{Level: 3, Code: "SPA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wkts) != 2 {
		t.Fatalf("want 2 SPA geometries, got %d", len(wkts))
	}
	for i, w := range wkts {
		g, err := spatial.ParseWKT(w)
		if err != nil {
			t.Fatalf("geometry %d does not parse: %v (%s)", i, err, w)
		}
		if a := math.Abs(g.Area()); math.Abs(a-100) > 1e-9 {
			t.Fatalf("geometry %d area = %g, want 100", i, a)
		}
	}
	g, _ := spatial.ParseWKT(wkts[1])
	if b := g.Bounds(); b.Min.X != 20 || b.Max.Y != 30 {
		t.Fatalf("second SPA geometry has bounds %+v", b)
	}

	fra, err := s.Geometries(context.Background(), domocc.Locality{Level: 3, Code: "FRA"})
	if err != nil || len(fra) != 1 {
		t.Fatalf("FRA: got %d geometries, err %v", len(fra), err)
	}

	unknown, err := s.Geometries(context.Background(), domocc.Locality{Level: 3, Code: "XXX"})
	if err != nil {
		t.Fatalf("unknown code: unexpected error: %v", err)
	}
	if len(unknown) != 0 {
		t.Fatalf("unknown code: want no geometries, got %v", unknown)
	}
}
