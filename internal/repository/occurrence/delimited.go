package occurrence

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/occfilter/internal/domain"
	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
	"github.com/kailas-cloud/occfilter/internal/logger"
)

const maxLineBytes = 1 << 20

// DelimitedSource loads per-species delimited files for one data source.
type DelimitedSource struct {
	name      string
	baseDir   string
	suffix    string
	dialect   Dialect
	malformed *prometheus.CounterVec
}

// NewDelimitedSource creates a delimited source.
// malformed is a counter vec with label "source", passed explicitly (may be nil).
func NewDelimitedSource(name, baseDir, suffix string, d Dialect, malformed *prometheus.CounterVec) *DelimitedSource {
	return &DelimitedSource{name: name, baseDir: baseDir, suffix: suffix, dialect: d, malformed: malformed}
}

// Name returns the source name.
func (s *DelimitedSource) Name() string { return s.name }

// Load reads all points for a species. A missing file yields no points.
// Malformed lines are skipped and counted.
func (s *DelimitedSource) Load(ctx context.Context, species string) ([]domocc.Point, error) {
	path := SpeciesFilename(s.baseDir, species, s.suffix)
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	log := logger.FromContext(ctx)
	var points []domocc.Point
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		text := sc.Bytes()
		if len(text) == 0 {
			continue
		}
		p, err := s.dialect.ParseLine(string(text))
		if err != nil {
			s.countMalformed()
			log.Debug("Skipping malformed record",
				zap.String("source", s.name),
				zap.String("path", path),
				zap.Error(domain.NewRecordError(line, err)))
			continue
		}
		points = append(points, p.WithSource(s.name))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return points, nil
}

func (s *DelimitedSource) countMalformed() {
	if s.malformed != nil {
		s.malformed.WithLabelValues(s.name).Inc()
	}
}
