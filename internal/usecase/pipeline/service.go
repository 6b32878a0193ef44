package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/occfilter/internal/domain"
	"github.com/kailas-cloud/occfilter/internal/domain/filter"
	"github.com/kailas-cloud/occfilter/internal/domain/geo"
	domocc "github.com/kailas-cloud/occfilter/internal/domain/occurrence"
	"github.com/kailas-cloud/occfilter/internal/domain/species"
	"github.com/kailas-cloud/occfilter/internal/logger"
	"github.com/kailas-cloud/occfilter/internal/spatial"
)

// Source binds a point source to its flag deny-list.
type Source struct {
	Points    PointSource
	DenyFlags []string
}

// Options configures the filter chain.
type Options struct {
	BBox      geo.Rect
	MinPoints int
	Index     spatial.DecomposeOptions
	// SharedDedup, when set, deduplicates across every species of a run
	// instead of per species.
	SharedDedup *filter.SharedDuplicates
}

// Metrics holds optional collectors, passed explicitly.
type Metrics struct {
	RangeMapFailures *prometheus.CounterVec // label "reason"
	IndexBuild       prometheus.Observer
	IndexCells       *prometheus.CounterVec // label "coverage"
}

// Range-map fail-open reasons.
const (
	reasonDistribution = "distribution"
	reasonLookup       = "geometry_lookup"
	reasonDecode       = "geometry_decode"
	reasonEmpty        = "no_geometry"
)

type boundSource struct {
	points PointSource
	flags  *filter.Flags
}

// Service runs the per-species filter chain.
type Service struct {
	sources []boundSource
	dists   DistributionReader
	geoms   GeometryResolver
	opts    Options
	metrics Metrics
}

// New creates a pipeline service. dists and geoms may be nil to disable
// range-map filtering.
func New(sources []Source, dists DistributionReader, geoms GeometryResolver, opts Options) *Service {
	bound := make([]boundSource, len(sources))
	for i, src := range sources {
		bound[i] = boundSource{
			points: src.Points,
			flags:  filter.NewFlags(src.Points.Name(), src.DenyFlags),
		}
	}
	return &Service{sources: bound, dists: dists, geoms: geoms, opts: opts}
}

// WithMetrics attaches collectors.
func (s *Service) WithMetrics(m Metrics) *Service {
	s.metrics = m
	return s
}

// Process loads and filters one species. Source read errors fail only
// this species; range-map problems fall back to no locality filtering.
func (s *Service) Process(ctx context.Context, name string) species.Result {
	log := logger.FromContext(ctx)

	var (
		merged  []domocc.Point
		initial int
		removed = species.Removals{FlagsBySource: make(map[string]int, len(s.sources))}
	)
	for _, src := range s.sources {
		pts, err := src.points.Load(ctx, name)
		if err != nil {
			return species.NewFailed(name, fmt.Errorf("load %s: %w", src.points.Name(), err))
		}
		initial += len(pts)
		out := filter.Apply(src.flags, pts)
		removed.FlagsBySource[src.points.Name()] = out.Removed
		removed.Flags += out.Removed
		merged = append(merged, out.Kept...)
	}

	out := filter.Apply(filter.NewBBox(s.opts.BBox), merged)
	removed.BBox = out.Removed

	out = filter.Apply(s.dedupFilter(), out.Kept)
	removed.Duplicates = out.Removed

	points := out.Kept
	ix, applied := s.rangeIndex(ctx, name)
	if applied {
		out = filter.Apply(filter.NewRangeMap(ix), points)
		removed.Locality = out.Removed
		points = out.Kept
	}

	log.Debug("Species filtered",
		zap.Int("initial", initial),
		zap.Int("flags", removed.Flags),
		zap.Int("bbox", removed.BBox),
		zap.Int("duplicates", removed.Duplicates),
		zap.Int("locality", removed.Locality),
		zap.Bool("range_map", applied))

	if stage := species.Attribute(initial, s.opts.MinPoints, removed); stage != species.StageNone {
		return species.NewDropped(name, initial, removed, stage).WithRangeMap(applied)
	}
	return species.NewRetained(name, initial, removed, points).WithRangeMap(applied)
}

func (s *Service) dedupFilter() filter.Filter {
	if s.opts.SharedDedup != nil {
		return s.opts.SharedDedup
	}
	return filter.NewDuplicates()
}

// Membership is the range-map verdict for one point.
type Membership struct {
	Point  domocc.Point
	Inside bool
}

// Locate loads every point of a species, unfiltered, and tests each against
// the species' range index. Returns domain.ErrNotFound when no usable range
// map exists.
func (s *Service) Locate(ctx context.Context, name string) ([]Membership, spatial.Stats, error) {
	ix, ok := s.rangeIndex(ctx, name)
	if !ok {
		return nil, spatial.Stats{}, fmt.Errorf("range map for %q: %w", name, domain.ErrNotFound)
	}
	var out []Membership
	for _, src := range s.sources {
		pts, err := src.points.Load(ctx, name)
		if err != nil {
			return nil, spatial.Stats{}, fmt.Errorf("load %s: %w", src.points.Name(), err)
		}
		for _, p := range pts {
			out = append(out, Membership{Point: p, Inside: ix.Contains(p.X(), p.Y())})
		}
	}
	return out, ix.Stats(), nil
}

// rangeIndex builds the range-map index for a species. It reports false
// when the species has no usable distribution data.
func (s *Service) rangeIndex(ctx context.Context, name string) (*spatial.Index, bool) {
	if s.dists == nil || s.geoms == nil {
		return nil, false
	}
	log := logger.FromContext(ctx)

	locs, err := s.dists.Localities(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.failOpen(reasonDistribution)
			log.Warn("Ignoring unreadable distribution", zap.Error(err))
		}
		return nil, false
	}

	start := time.Now()
	ix := spatial.NewIndex(s.opts.Index)
	features := 0
	for _, loc := range locs {
		wkts, err := s.geoms.Geometries(ctx, loc)
		if err != nil {
			s.failOpen(reasonLookup)
			log.Warn("Range map lookup failed, skipping locality filter",
				zap.Stringer("locality", loc), zap.Error(err))
			return nil, false
		}
		for _, w := range wkts {
			g, err := spatial.ParseWKT(w)
			if err != nil {
				s.failOpen(reasonDecode)
				log.Warn("Range map geometry unreadable, skipping locality filter",
					zap.Stringer("locality", loc), zap.Error(err))
				return nil, false
			}
			cells := ix.AddFeature(features, g, loc)
			s.countCells(cells)
			features++
		}
	}
	if features == 0 {
		s.failOpen(reasonEmpty)
		log.Warn("No geometry for any native locality, skipping locality filter",
			zap.Int("localities", len(locs)))
		return nil, false
	}
	if s.metrics.IndexBuild != nil {
		s.metrics.IndexBuild.Observe(time.Since(start).Seconds())
	}
	return ix, true
}

func (s *Service) failOpen(reason string) {
	if s.metrics.RangeMapFailures != nil {
		s.metrics.RangeMapFailures.WithLabelValues(reason).Inc()
	}
}

func (s *Service) countCells(cells []spatial.Cell) {
	if s.metrics.IndexCells == nil {
		return
	}
	for _, c := range cells {
		s.metrics.IndexCells.WithLabelValues(c.Coverage.String()).Inc()
	}
}
