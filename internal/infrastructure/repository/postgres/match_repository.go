package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/archive-ingest/internal/domain/match"
	qb "github.com/riskibarqy/archive-ingest/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) EnsureSeason(ctx context.Context, season match.Season) (int64, error) {
	insertModel := seasonInsertModel{Label: season.Label, StartYear: season.StartYear}

	query, args, err := qb.InsertModel("seasons", insertModel, `ON CONFLICT (label)
DO UPDATE SET label = EXCLUDED.label
RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("build ensure season query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("ensure season %s: %w", season.Label, err)
	}
	return id, nil
}

func (r *MatchRepository) EnsureCompetition(ctx context.Context, competition match.Competition) (int64, error) {
	insertModel := competitionInsertModel{Name: competition.Name, Kind: string(competition.Kind)}

	query, args, err := qb.InsertModel("competitions", insertModel, `ON CONFLICT (name)
DO UPDATE SET name = EXCLUDED.name
RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("build ensure competition query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("ensure competition %s: %w", competition.Name, err)
	}
	return id, nil
}

func (r *MatchRepository) EnsureSeasonCompetition(ctx context.Context, seasonID, competitionID int64) (int64, error) {
	insertModel := seasonCompetitionInsertModel{SeasonID: seasonID, CompetitionID: competitionID}

	query, args, err := qb.InsertModel("season_competitions", insertModel, `ON CONFLICT (season_id, competition_id)
DO UPDATE SET season_id = EXCLUDED.season_id
RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("build ensure season competition query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("ensure season competition season=%d competition=%d: %w", seasonID, competitionID, err)
	}
	return id, nil
}

// EnsureMatch inserts the match once per source file. A rerun returns the
// stored row untouched.
func (r *MatchRepository) EnsureMatch(ctx context.Context, item match.Match) (int64, bool, error) {
	if err := item.Validate(); err != nil {
		return 0, false, fmt.Errorf("validate match: %w", err)
	}

	insertModel := matchInsertModel{
		SeasonCompetitionID: item.SeasonCompetitionID,
		Round:               nullString(item.Round),
		MatchDate:           nullDate(item.Date),
		DateApproximate:     item.DateApproximate,
		Venue:               nullString(item.Venue),
		Attendance:          nullInt(item.Attendance),
		HomeTeamID:          item.HomeTeamID,
		AwayTeamID:          item.AwayTeamID,
		RefereeID:           nullInt64(item.RefereeID),
		HomeCoachID:         nullInt64(item.HomeCoachID),
		AwayCoachID:         nullInt64(item.AwayCoachID),
		AfterExtraTime:      item.Result.AfterExtraTime,
		SourceFile:          item.SourceFile,
	}
	insertModel.HomeScore, insertModel.AwayScore = scorePair(item.Result.Final)
	insertModel.HomeHalftime, insertModel.AwayHalftime = scorePair(item.Result.HalfTime)
	insertModel.HomeRegulation, insertModel.AwayRegulation = scorePair(item.Result.Regulation)
	insertModel.HomePenalties, insertModel.AwayPenalties = scorePair(item.Result.Penalties)

	query, args, err := qb.InsertModel("matches", insertModel, `ON CONFLICT (season_competition_id, source_file)
DO UPDATE SET source_file = EXCLUDED.source_file
RETURNING id, (xmax = 0) AS inserted`)
	if err != nil {
		return 0, false, fmt.Errorf("build ensure match query: %w", err)
	}

	var row ensureResultModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return 0, false, fmt.Errorf("ensure match %s: %w", item.SourceFile, err)
	}
	return row.ID, row.Inserted, nil
}

func (r *MatchRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query, args, err := qb.Select("id").From("matches").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build select match by id query: %w", err)
	}

	var found int64
	if err := r.db.GetContext(ctx, &found, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("select match by id: %w", err)
	}
	return true, nil
}

func scorePair(score *match.Score) (sql.NullInt64, sql.NullInt64) {
	if score == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(score.Home), Valid: true}, sql.NullInt64{Int64: int64(score.Away), Valid: true}
}
