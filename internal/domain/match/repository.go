package match

import "context"

// Repository persists the match skeleton. Every Ensure* call is idempotent:
// a rerun returns the existing id with created=false.
type Repository interface {
	EnsureSeason(ctx context.Context, season Season) (int64, error)
	EnsureCompetition(ctx context.Context, competition Competition) (int64, error)
	EnsureSeasonCompetition(ctx context.Context, seasonID, competitionID int64) (int64, error)
	EnsureMatch(ctx context.Context, m Match) (id int64, created bool, err error)
	Exists(ctx context.Context, id int64) (bool, error)
}
