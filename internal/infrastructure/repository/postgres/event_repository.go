package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/archive-ingest/internal/domain/event"
	qb "github.com/riskibarqy/archive-ingest/internal/platform/querybuilder"
)

// Rows hitting a natural-key unique index are skipped, not failed.
const insertEventsSuffix = "ON CONFLICT DO NOTHING"

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// LoadMatchBatch writes every event group of one match in a single
// transaction. Any failed group rolls the whole match back.
func (r *EventRepository) LoadMatchBatch(ctx context.Context, matchID int64, batch event.Batch) (event.LoadResult, error) {
	var result event.LoadResult
	if batch.Len() == 0 {
		return result, nil
	}
	if err := checkBatchMatch(matchID, batch); err != nil {
		return result, err
	}

	goals := make([]goalEventInsertModel, 0, len(batch.Goals))
	for _, item := range batch.Goals {
		goals = append(goals, goalEventInsertModel{
			MatchID:   item.MatchID,
			TeamID:    item.TeamID,
			ScorerID:  nullInt64(item.ScorerID),
			AssistID:  nullInt64(item.AssistID),
			Minute:    nullInt(item.Minute),
			Stoppage:  nullInt(item.Stoppage),
			HomeScore: item.HomeScore,
			AwayScore: item.AwayScore,
			Subtype:   string(item.Subtype),
		})
	}
	cards := make([]cardEventInsertModel, 0, len(batch.Cards))
	for _, item := range batch.Cards {
		cards = append(cards, cardEventInsertModel{
			MatchID:  item.MatchID,
			TeamID:   item.TeamID,
			PlayerID: item.PlayerID,
			Minute:   nullInt(item.Minute),
			Stoppage: nullInt(item.Stoppage),
			CardType: string(item.Type),
		})
	}
	substitutions := make([]substitutionInsertModel, 0, len(batch.Substitutions))
	for _, item := range batch.Substitutions {
		substitutions = append(substitutions, substitutionInsertModel{
			MatchID:     item.MatchID,
			TeamID:      item.TeamID,
			Minute:      nullInt(item.Minute),
			Stoppage:    nullInt(item.Stoppage),
			PlayerOnID:  item.PlayerOnID,
			PlayerOffID: item.PlayerOffID,
		})
	}
	lineups := make([]lineupEntryInsertModel, 0, len(batch.Lineups))
	for _, item := range batch.Lineups {
		lineups = append(lineups, lineupEntryInsertModel{
			MatchID:      item.MatchID,
			TeamID:       item.TeamID,
			PlayerID:     item.PlayerID,
			Starter:      item.Starter,
			SubOnMinute:  nullInt(item.SubOnMinute),
			SubOffMinute: nullInt(item.SubOffMinute),
		})
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return event.LoadResult{}, fmt.Errorf("begin tx load match %d: %w", matchID, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	inserted, err := insertGroup(ctx, tx, "lineup_entries", lineups)
	if err != nil {
		return event.LoadResult{}, err
	}
	result.Inserted.Lineups, result.Conflicts.Lineups = inserted, len(lineups)-inserted

	if inserted, err = insertGroup(ctx, tx, "goal_events", goals); err != nil {
		return event.LoadResult{}, err
	}
	result.Inserted.Goals, result.Conflicts.Goals = inserted, len(goals)-inserted

	if inserted, err = insertGroup(ctx, tx, "card_events", cards); err != nil {
		return event.LoadResult{}, err
	}
	result.Inserted.Cards, result.Conflicts.Cards = inserted, len(cards)-inserted

	if inserted, err = insertGroup(ctx, tx, "substitutions", substitutions); err != nil {
		return event.LoadResult{}, err
	}
	result.Inserted.Substitutions, result.Conflicts.Substitutions = inserted, len(substitutions)-inserted

	if err := tx.Commit(); err != nil {
		return event.LoadResult{}, fmt.Errorf("commit load match %d tx: %w", matchID, err)
	}
	return result, nil
}

// insertGroup writes rows in multi-row statements sized under the bind
// parameter limit and returns how many rows were actually inserted.
func insertGroup[T any](ctx context.Context, tx *sqlx.Tx, table string, rows []T) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	size := chunkSize(qb.ColumnCount(rows[0]), qb.MaxBindParameters)
	total := 0
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))

		query, args, err := qb.InsertModels(table, rows[start:end], insertEventsSuffix)
		if err != nil {
			return 0, fmt.Errorf("build insert %s query: %w", table, err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", table, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("read affected rows for %s: %w", table, err)
		}
		total += int(affected)
	}
	return total, nil
}

func checkBatchMatch(matchID int64, batch event.Batch) error {
	check := func(kind event.Kind, id int64) error {
		if id != matchID {
			return fmt.Errorf("%s event belongs to match %d, loading match %d", kind, id, matchID)
		}
		return nil
	}
	for _, item := range batch.Goals {
		if err := check(event.KindGoal, item.MatchID); err != nil {
			return err
		}
	}
	for _, item := range batch.Cards {
		if err := check(event.KindCard, item.MatchID); err != nil {
			return err
		}
	}
	for _, item := range batch.Substitutions {
		if err := check(event.KindSubstitution, item.MatchID); err != nil {
			return err
		}
	}
	for _, item := range batch.Lineups {
		if err := check(event.KindLineup, item.MatchID); err != nil {
			return err
		}
	}
	return nil
}
