package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/stream"
	"go.uber.org/zap"

	"github.com/kailas-cloud/occfilter/internal/domain/species"
	"github.com/kailas-cloud/occfilter/internal/logger"
)

const defaultLogEvery = 100

// Metrics holds optional collectors, passed explicitly.
type Metrics struct {
	Points          prometheus.Counter
	PointsRemoved   *prometheus.CounterVec // label "stage"
	Species         *prometheus.CounterVec // label "status"
	SpeciesDropped  *prometheus.CounterVec // label "stage"
	SpeciesDuration prometheus.Observer
}

// Service fans species out to a bounded worker pool and emits results in
// submission order.
type Service struct {
	proc     Processor
	workers  int
	logEvery int
	logger   *zap.Logger
	report   ResultWriter
	metrics  Metrics
	progress progress
}

// New creates an orchestrator running at most workers species at once.
func New(proc Processor, workers int, logger *zap.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{proc: proc, workers: workers, logEvery: defaultLogEvery, logger: logger}
}

// WithLogEvery sets how many species pass between progress log lines.
func (s *Service) WithLogEvery(n int) *Service {
	if n > 0 {
		s.logEvery = n
	}
	return s
}

// WithReport attaches a writer receiving every species result.
func (s *Service) WithReport(w ResultWriter) *Service {
	s.report = w
	return s
}

// WithMetrics attaches collectors.
func (s *Service) WithMetrics(m Metrics) *Service {
	s.metrics = m
	return s
}

// Progress returns a snapshot of the current or last run.
func (s *Service) Progress() ProgressSnapshot {
	return s.progress.snapshot()
}

type outcome struct {
	result  species.Result
	skipped bool
}

// Run processes every species and writes retained points to sink in the
// order names were given, regardless of completion order. On cancellation
// it stops submitting, drains running work and returns ctx.Err() with the
// partial summary. The first write error stops further output and is
// returned.
func (s *Service) Run(ctx context.Context, names []string, sink RowWriter) (species.Summary, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID))
	summary := species.NewSummary(runID)
	start := time.Now()

	s.progress.begin(runID, len(names))
	defer s.progress.running.Store(false)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info("Run started", zap.Int("species", len(names)), zap.Int("workers", s.workers))

	var writeErr error
	st := stream.New().WithMaxGoroutines(s.workers)
	for _, name := range names {
		if runCtx.Err() != nil {
			break
		}
		st.Go(func() stream.Callback {
			out := s.process(runCtx, log, name)
			return func() {
				if out.skipped || writeErr != nil {
					return
				}
				if err := s.consume(log, &summary, out.result, sink); err != nil {
					writeErr = err
					cancel()
				}
			}
		})
	}
	st.Wait()

	summary.Duration = time.Since(start)
	log.Info("Run finished",
		zap.Int("species", summary.Species),
		zap.Int("retained", summary.Retained),
		zap.Int("dropped", summary.Dropped),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration))

	if writeErr != nil {
		return summary, writeErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// process runs one species, converting a panic into a failed result.
func (s *Service) process(ctx context.Context, log *zap.Logger, name string) (out outcome) {
	if ctx.Err() != nil {
		return outcome{skipped: true}
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("Species panicked", zap.String("species", name), zap.Any("panic", r))
			out = outcome{result: species.NewFailed(name, fmt.Errorf("panic: %v", r))}
		}
	}()

	start := time.Now()
	taskCtx := logger.WithSpecies(logger.ContextWithLogger(ctx, log), name)
	res := s.proc.Process(taskCtx, name)
	if err := ctx.Err(); err != nil && res.Status() == species.StatusFailed && errors.Is(res.Err(), err) {
		// interrupted by the run stopping, not a fault of this species
		log.Debug("Species interrupted", zap.String("species", name), zap.Error(res.Err()))
		return outcome{skipped: true}
	}
	if s.metrics.SpeciesDuration != nil {
		s.metrics.SpeciesDuration.Observe(time.Since(start).Seconds())
	}
	return outcome{result: res}
}

// consume runs on the ordered callback path, one result at a time.
func (s *Service) consume(log *zap.Logger, summary *species.Summary, res species.Result, sink RowWriter) error {
	summary.Add(res)
	s.record(res)

	switch res.Status() {
	case species.StatusRetained:
		if err := sink.WritePoints(res.Points()); err != nil {
			return fmt.Errorf("write species %q: %w", res.Name(), err)
		}
		s.progress.retained.Add(1)
	case species.StatusDropped:
		log.Debug("Species dropped",
			zap.String("species", res.Name()),
			zap.Stringer("stage", res.Stage()),
			zap.Int("initial", res.Initial()))
		s.progress.dropped.Add(1)
	case species.StatusFailed:
		log.Error("Species failed", zap.String("species", res.Name()), zap.Error(res.Err()))
		s.progress.failed.Add(1)
	}

	if s.report != nil {
		if err := s.report.WriteResult(res); err != nil {
			return fmt.Errorf("write report for %q: %w", res.Name(), err)
		}
	}

	done := s.progress.processed.Add(1)
	if done%int64(s.logEvery) == 0 {
		snap := s.progress.snapshot()
		log.Info("Progress",
			zap.Int64("processed", snap.Processed),
			zap.Int64("total", snap.Total),
			zap.String("percent", fmt.Sprintf("%.1f", snap.Percent())),
			zap.Duration("elapsed", time.Since(snap.StartedAt)))
	}
	return nil
}

func (s *Service) record(res species.Result) {
	if s.metrics.Species != nil {
		s.metrics.Species.WithLabelValues(string(res.Status())).Inc()
	}
	if res.Status() == species.StatusFailed {
		return
	}
	if s.metrics.Points != nil {
		s.metrics.Points.Add(float64(res.Initial()))
	}
	if s.metrics.PointsRemoved != nil {
		removed := res.Removed()
		for _, st := range species.Stages()[1:] {
			if n := removed.Stage(st); n > 0 {
				s.metrics.PointsRemoved.WithLabelValues(st.String()).Add(float64(n))
			}
		}
	}
	if res.Status() == species.StatusDropped && s.metrics.SpeciesDropped != nil {
		s.metrics.SpeciesDropped.WithLabelValues(res.Stage().String()).Inc()
	}
}
