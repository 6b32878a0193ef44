// Package rangemap resolves distribution localities to region geometries.
package rangemap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"

	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
	"github.com/kailas-cloud/occfilter/internal/spatial"
)

// ShapefileLayers reads WGSRPD level shapefiles laid out as
// <dir>/level<n>/level<n>.shp. Each level is decoded once and memoized.
type ShapefileLayers struct {
	dir string

	mu     sync.Mutex
	levels map[int]*level
}

type level struct {
	once   sync.Once
	byCode map[string][]string
	err    error
}

// NewShapefileLayers creates a resolver rooted at dir.
func NewShapefileLayers(dir string) *ShapefileLayers {
	return &ShapefileLayers{dir: dir, levels: make(map[int]*level)}
}

// Geometries returns WKT polygons whose LEVEL<n>_COD equals loc.Code.
// An unknown code yields no geometries.
func (s *ShapefileLayers) Geometries(ctx context.Context, loc domocc.Locality) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lv := s.level(loc.Level)
	lv.once.Do(func() {
		lv.byCode, lv.err = s.load(loc.Level)
	})
	if lv.err != nil {
		return nil, lv.err
	}
	return lv.byCode[loc.Code], nil
}

func (s *ShapefileLayers) level(n int) *level {
	s.mu.Lock()
	defer s.mu.Unlock()
	lv, ok := s.levels[n]
	if !ok {
		lv = &level{}
		s.levels[n] = lv
	}
	return lv
}

// Check reports whether the layer directory is readable.
func (s *ShapefileLayers) Check(_ context.Context) error {
	fi, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("range map layers: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("range map layers: %s is not a directory", s.dir)
	}
	return nil
}

// LayerPath returns the shapefile path for a WGSRPD level.
func LayerPath(dir string, n int) string {
	name := fmt.Sprintf("level%d", n)
	return filepath.Join(dir, name, name+".shp")
}

func (s *ShapefileLayers) load(n int) (map[string][]string, error) {
	path := LayerPath(s.dir, n)
	field := fmt.Sprintf("LEVEL%d_COD", n)

	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer dec.Close()

	byCode := make(map[string][]string)
	for {
		g, fields, more := dec.DecodeRowFields(field)
		if !more {
			break
		}
		code := strings.TrimSpace(strings.Trim(fields[field], "\x00"))
		if code == "" {
			continue
		}
		poly, ok := g.(geom.Polygonal)
		if !ok {
			continue
		}
		byCode[code] = append(byCode[code], spatial.FormatWKT(poly))
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return byCode, nil
}
