package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/archive-ingest/internal/domain/ingestrun"
	qb "github.com/riskibarqy/archive-ingest/internal/platform/querybuilder"
)

type IngestRunRepository struct {
	db *sqlx.DB
}

func NewIngestRunRepository(db *sqlx.DB) *IngestRunRepository {
	return &IngestRunRepository{db: db}
}

func (r *IngestRunRepository) Save(ctx context.Context, stats ingestrun.Statistics) error {
	encoded, err := sonic.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode run statistics: %w", err)
	}

	insertModel := ingestRunInsertModel{
		RunID:       stats.RunID,
		ArchiveRoot: stats.ArchiveRoot,
		DryRun:      stats.DryRun,
		StartedAt:   stats.StartedAt,
		FinishedAt:  stats.FinishedAt,
		Statistics:  string(encoded),
	}

	query, args, err := qb.InsertModel("ingest_runs", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert ingest run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ingest run %s already recorded: %w", stats.RunID, err)
		}
		return fmt.Errorf("insert ingest run: %w", err)
	}
	return nil
}
