package postgres

import "database/sql"

type teamInsertModel struct {
	Name           string `db:"name"`
	NormalizedName string `db:"normalized_name"`
	TeamKind       string `db:"team_kind"`
}

type playerInsertModel struct {
	Name           string         `db:"name"`
	NormalizedName string         `db:"normalized_name"`
	ProfileURL     sql.NullString `db:"profile_url"`
	BirthDate      sql.NullTime   `db:"birth_date"`
	BirthPlace     sql.NullString `db:"birth_place"`
	HeightCM       sql.NullInt64  `db:"height_cm"`
	WeightKG       sql.NullInt64  `db:"weight_kg"`
	Nationality    sql.NullString `db:"nationality"`
	Position       sql.NullString `db:"position"`
}

// officialInsertModel covers coaches and referees.
type officialInsertModel struct {
	Name           string         `db:"name"`
	NormalizedName string         `db:"normalized_name"`
	ProfileURL     sql.NullString `db:"profile_url"`
	BirthDate      sql.NullTime   `db:"birth_date"`
	Nationality    sql.NullString `db:"nationality"`
}

type ensureResultModel struct {
	ID       int64 `db:"id"`
	Inserted bool  `db:"inserted"`
}
