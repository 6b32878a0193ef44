package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/occfilter/internal/config"
	"github.com/kailas-cloud/occfilter/internal/db"
	dbRedis "github.com/kailas-cloud/occfilter/internal/db/redis"
	"github.com/kailas-cloud/occfilter/internal/domain/filter"
	"github.com/kailas-cloud/occfilter/internal/domain/geo"
	"github.com/kailas-cloud/occfilter/internal/metrics"
	distrepo "github.com/kailas-cloud/occfilter/internal/repository/distribution"
	occrepo "github.com/kailas-cloud/occfilter/internal/repository/occurrence"
	"github.com/kailas-cloud/occfilter/internal/repository/rangemap"
	"github.com/kailas-cloud/occfilter/internal/spatial"
	healthuc "github.com/kailas-cloud/occfilter/internal/usecase/health"
	"github.com/kailas-cloud/occfilter/internal/usecase/pipeline"
)

// app is the assembled dependency graph shared by run and locate.
type app struct {
	pipeline *pipeline.Service
	health   *healthuc.Service
	sources  []string
	rangeMap bool
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp is the composition root.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.RegisterFilterMetrics()
	a := &app{}

	sources := make([]pipeline.Source, 0, len(cfg.Data.Sources))
	for _, sc := range cfg.Data.Sources {
		src, err := buildSource(cfg.Data.BaseDir, sc)
		if err != nil {
			return nil, err
		}
		deny := sc.DenyFlags
		if deny == nil {
			deny = filter.DefaultDenyFlags(sc.Name)
		}
		sources = append(sources, pipeline.Source{Points: src, DenyFlags: deny})
		a.sources = append(a.sources, sc.Name)
	}

	// Interface-typed so an unconfigured range map stays a nil interface.
	var (
		dists  pipeline.DistributionReader
		geoms  pipeline.GeometryResolver
		pinger healthuc.CachePinger
		layerC healthuc.LayerChecker
	)
	if cfg.RangeMap.LayerDir != "" {
		layers := rangemap.NewShapefileLayers(cfg.RangeMap.LayerDir)
		dists = distrepo.New(cfg.Data.BaseDir, cfg.Data.DistributionSuffix)
		geoms = layers
		layerC = layers
		a.rangeMap = true

		if cfg.Cache.Driver != "none" {
			rs, err := dbRedis.Open(ctx, dbRedis.Config{
				Addrs:        cfg.Cache.Addrs,
				Username:     cfg.Cache.Username,
				Password:     cfg.Cache.Password,
				DB:           cfg.Cache.DB,
				ReadyTimeout: time.Duration(cfg.Cache.ReadinessTimeout) * time.Second,
			})
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("open range map cache: %w", err)
			}
			var store db.Store = rs
			a.closers = append(a.closers, store.Close)
			logger.Info("Connected to range map cache",
				zap.String("driver", cfg.Cache.Driver),
				zap.Strings("addrs", cfg.Cache.Addrs))

			geoms = rangemap.NewCached(layers, store, cfg.Cache.KeyPrefix, cfg.CacheTTL(),
				metrics.RangeMapCacheTotal, logger)
			pinger = store
		}
	} else {
		logger.Warn("rangemap.layer_dir not set, locality filter disabled")
	}

	bb := cfg.Filters.BoundingBox
	bbox, err := geo.NewRect(bb[0], bb[1], bb[2], bb[3])
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("bounding box: %w", err)
	}

	opts := pipeline.Options{
		BBox:      bbox,
		MinPoints: cfg.Filters.MinPoints,
		Index: spatial.DecomposeOptions{
			MinCellArea: cfg.Index.MinCellArea,
			MaxDepth:    *cfg.Index.MaxDepth,
			GapPolicy:   spatial.GapPolicy(cfg.Index.GapPolicy),
		},
	}
	if err := opts.Index.Validate(); err != nil {
		a.Close()
		return nil, fmt.Errorf("index options: %w", err)
	}
	if cfg.Filters.DedupScope == "run" {
		opts.SharedDedup = filter.NewSharedDuplicates()
	}

	a.pipeline = pipeline.New(sources, dists, geoms, opts).WithMetrics(pipeline.Metrics{
		RangeMapFailures: metrics.RangeMapFailuresTotal,
		IndexBuild:       metrics.IndexBuildDuration,
		IndexCells:       metrics.IndexCellsTotal,
	})
	a.health = healthuc.New(pinger, layerC)
	return a, nil
}

func buildSource(baseDir string, sc config.SourceConfig) (pipeline.PointSource, error) {
	switch sc.Format {
	case "parquet":
		return occrepo.NewParquetSource(sc.Name, baseDir, sc.Suffix, metrics.RecordsMalformedTotal), nil
	default:
		d, err := occrepo.DialectFor(sc.Name)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", sc.Name, err)
		}
		return occrepo.NewDelimitedSource(sc.Name, baseDir, sc.Suffix, d, metrics.RecordsMalformedTotal), nil
	}
}
