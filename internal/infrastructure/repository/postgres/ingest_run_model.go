package postgres

import "time"

type ingestRunInsertModel struct {
	RunID       string    `db:"run_id"`
	ArchiveRoot string    `db:"archive_root"`
	DryRun      bool      `db:"dry_run"`
	StartedAt   time.Time `db:"started_at"`
	FinishedAt  time.Time `db:"finished_at"`
	Statistics  string    `db:"statistics"`
}
