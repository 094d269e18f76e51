// Package main implements the ingest CLI that loads a match archive into the
// relational store.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load football match archives into the database",
	Long: `ingest walks a season-by-season HTML match archive and loads teams,
persons, matches and match events into PostgreSQL.

Configuration comes from the environment (DB_URL, INGEST_*, UPTRACE_*,
PYROSCOPE_*, PPROF_*); flags override it per run.`,
	Version:      version,
	SilenceUsage: true,
}
