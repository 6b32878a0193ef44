package spatial

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/kailas-cloud/occfilter/internal/domain"
)

// ParseWKT decodes a POLYGON or MULTIPOLYGON into a polygonal geometry.
func ParseWKT(s string) (geom.Polygonal, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("parse wkt: %w: %w", domain.ErrInvalidGeometry, err)
	}
	var poly geom.Polygon
	switch t := g.(type) {
	case orb.Polygon:
		poly = appendRings(poly, t)
	case orb.MultiPolygon:
		for _, p := range t {
			poly = appendRings(poly, p)
		}
	case orb.Bound:
		poly = appendRings(poly, t.ToPolygon())
	default:
		return nil, fmt.Errorf("parse wkt: %s is not polygonal: %w", g.GeoJSONType(), domain.ErrInvalidGeometry)
	}
	if len(poly) == 0 {
		return nil, fmt.Errorf("parse wkt: empty polygon: %w", domain.ErrInvalidGeometry)
	}
	return poly, nil
}

// FormatWKT encodes polygonal geometry as MULTIPOLYGON WKT.
func FormatWKT(g geom.Polygonal) string {
	var mp orb.MultiPolygon
	for _, p := range g.Polygons() {
		op := make(orb.Polygon, 0, len(p))
		for _, path := range p {
			if len(path) == 0 {
				continue
			}
			ring := make(orb.Ring, 0, len(path)+1)
			for _, pt := range path {
				ring = append(ring, orb.Point{pt.X, pt.Y})
			}
			if ring[0] != ring[len(ring)-1] {
				ring = append(ring, ring[0])
			}
			op = append(op, ring)
		}
		if len(op) > 0 {
			mp = append(mp, op)
		}
	}
	return wkt.MarshalString(mp)
}

// appendRings converts orb rings to open geom paths.
func appendRings(dst geom.Polygon, p orb.Polygon) geom.Polygon {
	for _, r := range p {
		n := len(r)
		if n > 1 && r[0] == r[n-1] {
			n--
		}
		if n < 3 {
			continue
		}
		path := make(geom.Path, n)
		for i := 0; i < n; i++ {
			path[i] = geom.Point{X: r[i][0], Y: r[i][1]}
		}
		dst = append(dst, path)
	}
	return dst
}
