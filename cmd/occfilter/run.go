package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/occfilter/internal/domain/species"
	"github.com/kailas-cloud/occfilter/internal/metrics"
	"github.com/kailas-cloud/occfilter/internal/output"
	occrepo "github.com/kailas-cloud/occfilter/internal/repository/occurrence"
	chiTransport "github.com/kailas-cloud/occfilter/internal/transport/chi"
	"github.com/kailas-cloud/occfilter/internal/usecase/orchestrator"
)

var (
	flagOutput      string
	flagSpeciesList string
	flagConcurrency int
	flagReport      string
	flagSummary     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Filter every species in the species list",
	Args:  cobra.NoArgs,
	RunE:  runFilter,
}

func init() {
	runCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file for retained points, - for stdout (overrides run.output)")
	runCmd.Flags().StringVar(&flagSpeciesList, "species-list", "", "species list CSV (overrides data.species_list)")
	runCmd.Flags().IntVarP(&flagConcurrency, "concurrency", "w", 0, "species processed in parallel (overrides run.concurrency)")
	runCmd.Flags().StringVar(&flagReport, "report", "", "per-species report file (overrides run.report)")
	runCmd.Flags().StringVar(&flagSummary, "summary", "", "JSON summary file (overrides run.summary)")
}

func runFilter(cmd *cobra.Command, _ []string) error {
	applyRunFlags()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting occfilter run",
		zap.String("env", env),
		zap.String("species_list", cfg.Data.SpeciesList),
		zap.Int("concurrency", cfg.Run.Concurrency),
		zap.String("output", cfg.Run.Output))

	names, err := occrepo.ReadSpeciesList(cfg.Data.SpeciesList)
	if err != nil {
		return err
	}
	if cfg.Filters.DedupScope == "run" && cfg.Run.Concurrency > 1 {
		logger.Warn("Run-scoped dedup with concurrency > 1: which species keeps a shared coordinate depends on completion order")
	}

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := openOutput(cfg.Run.Output)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	rows := output.NewRows(out)

	orch := orchestrator.New(a.pipeline, cfg.Run.Concurrency, logger).
		WithLogEvery(cfg.Run.LogEvery).
		WithMetrics(orchestrator.Metrics{
			Points:          metrics.PointsTotal,
			PointsRemoved:   metrics.PointsRemovedTotal,
			Species:         metrics.SpeciesTotal,
			SpeciesDropped:  metrics.SpeciesDroppedTotal,
			SpeciesDuration: metrics.SpeciesDuration,
		})

	var report *output.Report
	if cfg.Run.Report != "" {
		f, err := createFile(cfg.Run.Report)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		report = output.NewReport(f, a.sources)
		orch.WithReport(report)
	}

	if cfg.Status.Port > 0 {
		srv := startStatusServer(a, orch)
		defer shutdownStatusServer(srv)
	}

	summary, runErr := orch.Run(ctx, names, rows)

	if err := rows.Flush(); err != nil && runErr == nil {
		runErr = err
	}
	if report != nil {
		if err := report.Flush(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if err := writeSummary(summary); err != nil {
		logger.Error("Failed to write summary", zap.Error(err))
	}

	if errors.Is(runErr, context.Canceled) {
		logger.Warn("Run interrupted, output is partial", zap.Int("species_done", summary.Species))
	}
	if runErr != nil {
		return fmt.Errorf("run: %w", runErr)
	}
	return nil
}

func applyRunFlags() {
	if flagOutput != "" {
		cfg.Run.Output = flagOutput
	}
	if flagSpeciesList != "" {
		cfg.Data.SpeciesList = flagSpeciesList
	}
	if flagConcurrency > 0 {
		cfg.Run.Concurrency = flagConcurrency
	}
	if flagReport != "" {
		cfg.Run.Report = flagReport
	}
	if flagSummary != "" {
		cfg.Run.Summary = flagSummary
	}
}

func writeSummary(s species.Summary) error {
	if cfg.Run.Summary == "" {
		return output.WriteSummaryText(os.Stderr, s)
	}
	f, err := createFile(cfg.Run.Summary)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return output.WriteSummaryJSON(f, s)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return createFile(path)
}

func createFile(path string) (*os.File, error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

func startStatusServer(a *app, orch *orchestrator.Service) *http.Server {
	server := chiTransport.NewServer(a.health, orch, logger)
	addr := fmt.Sprintf(":%d", cfg.Status.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Router(cfg.Status.APIKeys),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Starting status server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Status server error", zap.Error(err))
		}
	}()
	return srv
}

func shutdownStatusServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Status.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Error during status server shutdown", zap.Error(err))
	}
}
