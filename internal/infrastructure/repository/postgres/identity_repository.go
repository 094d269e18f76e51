package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	qb "github.com/riskibarqy/archive-ingest/internal/platform/querybuilder"
)

// The no-op update makes RETURNING yield the existing row; xmax is 0 only
// for a freshly inserted tuple.
const ensureByNormalizedName = `ON CONFLICT (normalized_name)
DO UPDATE SET normalized_name = EXCLUDED.normalized_name
RETURNING id, (xmax = 0) AS inserted`

type IdentityRepository struct {
	db *sqlx.DB
}

func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) EnsureTeam(ctx context.Context, item identity.Team) (int64, bool, error) {
	insertModel := teamInsertModel{
		Name:           item.Name,
		NormalizedName: item.NormalizedName,
		TeamKind:       string(item.Kind),
	}

	query, args, err := qb.InsertModel("teams", insertModel, ensureByNormalizedName)
	if err != nil {
		return 0, false, fmt.Errorf("build ensure team query: %w", err)
	}

	var row ensureResultModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return 0, false, fmt.Errorf("ensure team %q: %w", item.NormalizedName, err)
	}
	return row.ID, row.Inserted, nil
}

func (r *IdentityRepository) EnsurePerson(ctx context.Context, item identity.Person) (int64, bool, error) {
	table, err := personTable(item.Kind)
	if err != nil {
		return 0, false, err
	}

	var insertModel any
	suffix := ensureByNormalizedName
	if item.Kind == identity.KindPlayer {
		insertModel = playerInsertModel{
			Name:           item.Name,
			NormalizedName: item.NormalizedName,
			ProfileURL:     nullString(item.Profile.URL),
			BirthDate:      nullDate(item.Profile.BirthDate),
			BirthPlace:     nullString(item.Profile.BirthPlace),
			HeightCM:       nullInt(item.Profile.HeightCM),
			WeightKG:       nullInt(item.Profile.WeightKG),
			Nationality:    nullString(item.Profile.Nationality),
			Position:       nullString(item.Profile.Position),
		}
		// Later pages may carry profile data the first mention lacked.
		suffix = `ON CONFLICT (normalized_name)
DO UPDATE SET
    profile_url = COALESCE(players.profile_url, EXCLUDED.profile_url),
    birth_date = COALESCE(players.birth_date, EXCLUDED.birth_date),
    birth_place = COALESCE(players.birth_place, EXCLUDED.birth_place),
    height_cm = COALESCE(players.height_cm, EXCLUDED.height_cm),
    weight_kg = COALESCE(players.weight_kg, EXCLUDED.weight_kg),
    nationality = COALESCE(players.nationality, EXCLUDED.nationality),
    position = COALESCE(players.position, EXCLUDED.position)
RETURNING id, (xmax = 0) AS inserted`
	} else {
		insertModel = officialInsertModel{
			Name:           item.Name,
			NormalizedName: item.NormalizedName,
			ProfileURL:     nullString(item.Profile.URL),
			BirthDate:      nullDate(item.Profile.BirthDate),
			Nationality:    nullString(item.Profile.Nationality),
		}
	}

	query, args, err := qb.InsertModel(table, insertModel, suffix)
	if err != nil {
		return 0, false, fmt.Errorf("build ensure %s query: %w", item.Kind, err)
	}

	var row ensureResultModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return 0, false, fmt.Errorf("ensure %s %q: %w", item.Kind, item.NormalizedName, err)
	}
	return row.ID, row.Inserted, nil
}

func (r *IdentityRepository) ExistingIDs(ctx context.Context, kind identity.Kind, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	table, err := identityTable(kind)
	if err != nil {
		return nil, err
	}

	query, args, err := qb.Select("id").From(table).
		Where(qb.InInt64("id", ids)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select existing %s ids query: %w", kind, err)
	}

	var found []int64
	if err := r.db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("select existing %s ids: %w", kind, err)
	}
	for _, id := range found {
		out[id] = true
	}
	return out, nil
}

func identityTable(kind identity.Kind) (string, error) {
	if kind == identity.KindTeam {
		return "teams", nil
	}
	return personTable(kind)
}

func personTable(kind identity.Kind) (string, error) {
	switch kind {
	case identity.KindPlayer:
		return "players", nil
	case identity.KindCoach:
		return "coaches", nil
	case identity.KindReferee:
		return "referees", nil
	default:
		return "", fmt.Errorf("unsupported person kind %q", kind)
	}
}
