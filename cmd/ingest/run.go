package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/archive-ingest/internal/app"
	"github.com/riskibarqy/archive-ingest/internal/config"
	"github.com/riskibarqy/archive-ingest/internal/domain/ingestrun"
	"github.com/riskibarqy/archive-ingest/internal/observability"
	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

type runFlags struct {
	dryRun       bool
	parseWorkers int
	rulesFile    string
	primaryClub  string
}

var flags runFlags

func init() {
	runCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Load into memory only; the database is never opened")
	runCmd.Flags().IntVar(&flags.parseWorkers, "parse-workers", 1, "Files of a season parsed ahead concurrently")
	runCmd.Flags().StringVar(&flags.rulesFile, "rules-file", "", "YAML file extending name, team and file rules")
	runCmd.Flags().StringVar(&flags.primaryClub, "primary-club", "", "Canonical name of the archive's own club")

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [archive-root]",
	Short: "Ingest an archive root",
	Long: `Ingest every season directory below archive-root.

The run summary is printed to stdout as JSON. Logs go to stderr.

Examples:
  # Full load
  ingest run /data/archive

  # Check parsing and validation without touching the database
  ingest run --dry-run /data/archive

  # Parse ahead with four workers and extra rules
  ingest run --parse-workers 4 --rules-file rules.yaml /data/archive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg, err = applyFlags(cmd, cfg, flags, args)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Service: cfg.ServiceName})
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}

	telemetry, err := observability.Start(cfg, logger)
	if err != nil {
		return fmt.Errorf("start telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = telemetry.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runtime, err := app.NewRuntime(ctx, cfg, rules, logger)
	if err != nil {
		return fmt.Errorf("build runtime: %w", err)
	}
	defer func() {
		if err := runtime.Close(); err != nil {
			logger.Warn("close runtime failed", "error", err)
		}
	}()

	stats, runErr := runtime.Ingestion.Run(ctx, cfg.ArchiveRoot)
	if err := writeSummary(cmd.OutOrStdout(), stats); err != nil {
		logger.Error("write run summary failed", "error", err)
	}
	if runErr != nil && errors.Is(runErr, context.Canceled) {
		logger.Warn("ingestion cancelled; committed matches are kept", "error", runErr)
	}
	return runErr
}

// applyFlags lays explicitly set flags and the positional root over cfg.
func applyFlags(cmd *cobra.Command, cfg config.Config, f runFlags, args []string) (config.Config, error) {
	if len(args) > 0 {
		cfg.ArchiveRoot = strings.TrimSpace(args[0])
	}
	if cfg.ArchiveRoot == "" {
		return cfg, errors.New("archive root is required (argument or ARCHIVE_ROOT)")
	}

	changed := cmd.Flags().Changed
	if changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if changed("parse-workers") {
		if f.parseWorkers < 1 {
			return cfg, fmt.Errorf("--parse-workers must be >= 1")
		}
		cfg.ParseWorkers = f.parseWorkers
	}
	if changed("rules-file") {
		cfg.RulesFile = strings.TrimSpace(f.rulesFile)
	}
	if changed("primary-club") {
		cfg.PrimaryClub = strings.TrimSpace(f.primaryClub)
	}
	return cfg, nil
}

func writeSummary(w io.Writer, stats ingestrun.Statistics) error {
	stats.Failures = stats.SortedFailures()
	encoded, err := sonic.ConfigStd.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(encoded)); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}
