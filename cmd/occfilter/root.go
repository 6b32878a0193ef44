package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/occfilter/internal/config"
	logpkg "github.com/kailas-cloud/occfilter/internal/logger"
	"github.com/kailas-cloud/occfilter/internal/version"
)

// Global flag values.
var (
	flagConfig string
	flagEnv    string
)

// Set by PersistentPreRunE for every command except version.
var (
	cfg    config.Config
	env    string
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "occfilter",
	Short: "Filter species occurrence records against native range maps",
	Long: `occfilter cleans species occurrence points from several data sources.
Each species passes quality-flag, bounding-box, duplicate-locality and
native range-map filters; species left with too few points are dropped
and the stage that dropped them is reported.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "", "environment: local, dev, docker, prod (default: $ENV or local)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(locateCmd)
}

// setup loads config and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	env = flagEnv
	if env == "" {
		env = config.GetEnv()
	}

	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err = logpkg.NewLogger(logpkg.Options{
		Env:    env,
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}
