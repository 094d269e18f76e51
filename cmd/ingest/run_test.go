package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/archive-ingest/internal/config"
	"github.com/riskibarqy/archive-ingest/internal/domain/ingestrun"
)

func newFlagCommand(t *testing.T, args ...string) (*cobra.Command, runFlags) {
	t.Helper()

	var f runFlags
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "")
	cmd.Flags().IntVar(&f.parseWorkers, "parse-workers", 1, "")
	cmd.Flags().StringVar(&f.rulesFile, "rules-file", "", "")
	cmd.Flags().StringVar(&f.primaryClub, "primary-club", "", "")
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd, f
}

func TestApplyFlags_OverridesOnlyChangedFlags(t *testing.T) {
	cmd, f := newFlagCommand(t, "--parse-workers", "4", "--rules-file", " rules.yaml ")
	base := config.Config{DryRun: true, ParseWorkers: 1, PrimaryClub: "FK Pirmasens"}

	cfg, err := applyFlags(cmd, base, f, []string{"/data/archive"})
	if err != nil {
		t.Fatalf("apply flags: %v", err)
	}
	if cfg.ArchiveRoot != "/data/archive" || cfg.ParseWorkers != 4 || cfg.RulesFile != "rules.yaml" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.DryRun || cfg.PrimaryClub != "FK Pirmasens" {
		t.Fatalf("unchanged flags must keep environment values: %+v", cfg)
	}
}

func TestApplyFlags_RequiresRoot(t *testing.T) {
	cmd, f := newFlagCommand(t)
	if _, err := applyFlags(cmd, config.Config{}, f, nil); err == nil {
		t.Fatalf("expected error without archive root")
	}

	cfg, err := applyFlags(cmd, config.Config{ArchiveRoot: "/env/archive"}, f, nil)
	if err != nil || cfg.ArchiveRoot != "/env/archive" {
		t.Fatalf("ARCHIVE_ROOT must be used when no argument is given: %+v %v", cfg, err)
	}
}

func TestApplyFlags_RejectsZeroWorkers(t *testing.T) {
	cmd, f := newFlagCommand(t, "--parse-workers", "0")
	if _, err := applyFlags(cmd, config.Config{}, f, []string{"/data"}); err == nil {
		t.Fatalf("expected error for zero parse workers")
	}
}

func TestWriteSummary(t *testing.T) {
	stats := ingestrun.NewStatistics("run-1", "/data/archive", time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))
	stats.FilesProcessed = 2
	stats.AddFailure(ingestrun.Failure{Path: "1973-74/pokal.html", Stage: ingestrun.StageParse, Reason: "no layout"})
	stats.AddFailure(ingestrun.Failure{Path: "1908-09/liga.html", Block: 2, Stage: ingestrun.StageLoad, Reason: "boom"})

	var buf bytes.Buffer
	if err := writeSummary(&buf, stats); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	var decoded ingestrun.Statistics
	if err := sonic.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if decoded.RunID != "run-1" || decoded.FilesProcessed != 2 {
		t.Fatalf("unexpected summary: %+v", decoded)
	}
	if len(decoded.Failures) != 2 || decoded.Failures[0].Path != "1908-09/liga.html" {
		t.Fatalf("failures must be sorted by path: %+v", decoded.Failures)
	}
}
