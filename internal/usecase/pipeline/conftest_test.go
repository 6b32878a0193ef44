package pipeline

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/occfilter/internal/domain"
	"github.com/kailas-cloud/occfilter/internal/domain/geo"
	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
	"github.com/kailas-cloud/occfilter/internal/spatial"
)

const squareWKT = "POLYGON((0 0,10 0,10 10,0 10,0 0))"

type mockSource struct {
	name   string
	points map[string][]domocc.Point
	err    error
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Load(_ context.Context, species string) ([]domocc.Point, error) {
	if m.err != nil {
		return nil, m.err
	}
	pts := m.points[species]
	out := make([]domocc.Point, len(pts))
	for i, p := range pts {
		out[i] = p.WithSource(m.name)
	}
	return out, nil
}

type mockDistributions struct {
	locs map[string][]domocc.Locality
	err  error
}

func (m *mockDistributions) Localities(_ context.Context, species string) ([]domocc.Locality, error) {
	if m.err != nil {
		return nil, m.err
	}
	locs, ok := m.locs[species]
	if !ok {
		return nil, fmt.Errorf("%s: %w", species, domain.ErrNotFound)
	}
	return locs, nil
}

type mockGeometries struct {
	byCode map[string][]string
	err    error
	calls  int
}

func (m *mockGeometries) Geometries(_ context.Context, loc domocc.Locality) ([]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.byCode[loc.Code], nil
}

func testOptions(minPoints int) Options {
	return Options{
		BBox:      geo.Rect{MinX: -50, MinY: -50, MaxX: 50, MaxY: 50},
		MinPoints: minPoints,
		Index:     spatial.DefaultDecomposeOptions(),
	}
}

func pts(species string, coords ...[2]float64) []domocc.Point {
	out := make([]domocc.Point, len(coords))
	for i, c := range coords {
		out[i] = domocc.NewPoint(species, c[0], c[1], nil)
	}
	return out
}

func flagged(species string, flag string, coords ...[2]float64) []domocc.Point {
	out := make([]domocc.Point, len(coords))
	for i, c := range coords {
		out[i] = domocc.NewPoint(species, c[0], c[1], []string{flag})
	}
	return out
}

// grid returns n distinct coordinates starting at (x0, y0), stepping along X.
func grid(n int, x0, y0 float64) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		out[i] = [2]float64{x0 + 0.1*float64(i), y0}
	}
	return out
}
