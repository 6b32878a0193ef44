package occurrence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/occfilter/internal/domain"
	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
	"github.com/kailas-cloud/occfilter/internal/logger"
)

// ParquetSource loads per-species parquet snapshots (GBIF simple download
// columns: species, decimalLongitude, decimalLatitude, issue).
type ParquetSource struct {
	name      string
	baseDir   string
	suffix    string
	malformed *prometheus.CounterVec
}

// NewParquetSource creates a parquet source.
func NewParquetSource(name, baseDir, suffix string, malformed *prometheus.CounterVec) *ParquetSource {
	return &ParquetSource{name: name, baseDir: baseDir, suffix: suffix, malformed: malformed}
}

// Name returns the source name.
func (s *ParquetSource) Name() string { return s.name }

// occurrenceColumns holds leaf-level column indexes, -1 when absent.
type occurrenceColumns struct {
	species int
	x       int
	y       int
	flags   int
}

func resolveOccurrenceColumns(pf *parquet.File) occurrenceColumns {
	cols := occurrenceColumns{species: -1, x: -1, y: -1, flags: -1}
	for i, path := range pf.Schema().Columns() {
		if len(path) == 0 {
			continue
		}
		switch strings.ToLower(path[0]) {
		case "species":
			cols.species = i
		case "decimallongitude", "x":
			cols.x = i
		case "decimallatitude", "y":
			cols.y = i
		case "issue", "flags":
			cols.flags = i
		}
	}
	return cols
}

// Load reads all points for a species. A missing file yields no points.
// Rows with null coordinates are skipped and counted.
func (s *ParquetSource) Load(ctx context.Context, species string) ([]domocc.Point, error) {
	path := SpeciesFilename(s.baseDir, species, s.suffix)
	h, err := openParquet(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer h.Close()

	cols := resolveOccurrenceColumns(h.pf)
	if cols.x < 0 || cols.y < 0 {
		return nil, fmt.Errorf("%s: coordinate columns not found: %w", path, domain.ErrInvalidRecord)
	}

	log := logger.FromContext(ctx)
	var points []domocc.Point
	rowNum := 0
	for _, rg := range h.pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows := parquet.NewRowGroupReader(rg)
		buf := make([]parquet.Row, 1000)
		for {
			n, readErr := rows.ReadRows(buf)
			for i := 0; i < n; i++ {
				rowNum++
				p, ok := rowToPoint(buf[i], cols, species)
				if !ok {
					s.countMalformed()
					log.Debug("Skipping malformed record",
						zap.String("source", s.name),
						zap.String("path", path),
						zap.Error(domain.NewRecordError(rowNum, nil)))
					continue
				}
				points = append(points, p.WithSource(s.name))
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return nil, fmt.Errorf("read rows %s: %w", path, readErr)
			}
		}
	}
	return points, nil
}

// rowToPoint extracts a point from a generic parquet row by column index.
func rowToPoint(row parquet.Row, cols occurrenceColumns, fallbackSpecies string) (domocc.Point, bool) {
	name := fallbackSpecies
	var x, y *float64
	var flags []string
	for _, v := range row {
		switch v.Column() {
		case cols.species:
			if !v.IsNull() && v.String() != "" {
				name = v.String()
			}
		case cols.x:
			if !v.IsNull() {
				f := v.Double()
				x = &f
			}
		case cols.y:
			if !v.IsNull() {
				f := v.Double()
				y = &f
			}
		case cols.flags:
			if !v.IsNull() {
				flags = append(flags, v.String())
			}
		}
	}
	if x == nil || y == nil || !finite(*x) || !finite(*y) {
		return domocc.Point{}, false
	}
	return domocc.NewPoint(name, *x, *y, flags), true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func (s *ParquetSource) countMalformed() {
	if s.malformed != nil {
		s.malformed.WithLabelValues(s.name).Inc()
	}
}

// parquetHandle wraps parquet.File + underlying os.File for proper cleanup.
type parquetHandle struct {
	pf   *parquet.File
	file *os.File
}

func (h *parquetHandle) Close() {
	_ = h.file.Close()
}

func openParquet(path string) (*parquetHandle, error) {
	cleanPath := filepath.Clean(path)
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	return &parquetHandle{pf: pf, file: f}, nil
}
