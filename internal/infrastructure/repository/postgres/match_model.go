package postgres

import "database/sql"

type seasonInsertModel struct {
	Label     string `db:"label"`
	StartYear int    `db:"start_year"`
}

type competitionInsertModel struct {
	Name string `db:"name"`
	Kind string `db:"kind"`
}

type seasonCompetitionInsertModel struct {
	SeasonID      int64 `db:"season_id"`
	CompetitionID int64 `db:"competition_id"`
}

type matchInsertModel struct {
	SeasonCompetitionID int64          `db:"season_competition_id"`
	Round               sql.NullString `db:"round"`
	MatchDate           sql.NullTime   `db:"match_date"`
	DateApproximate     bool           `db:"date_approximate"`
	Venue               sql.NullString `db:"venue"`
	Attendance          sql.NullInt64  `db:"attendance"`
	HomeTeamID          int64          `db:"home_team_id"`
	AwayTeamID          int64          `db:"away_team_id"`
	RefereeID           sql.NullInt64  `db:"referee_id"`
	HomeCoachID         sql.NullInt64  `db:"home_coach_id"`
	AwayCoachID         sql.NullInt64  `db:"away_coach_id"`
	HomeScore           sql.NullInt64  `db:"home_score"`
	AwayScore           sql.NullInt64  `db:"away_score"`
	HomeHalftime        sql.NullInt64  `db:"home_halftime"`
	AwayHalftime        sql.NullInt64  `db:"away_halftime"`
	HomeRegulation      sql.NullInt64  `db:"home_regulation"`
	AwayRegulation      sql.NullInt64  `db:"away_regulation"`
	AfterExtraTime      bool           `db:"after_extra_time"`
	HomePenalties       sql.NullInt64  `db:"home_penalties"`
	AwayPenalties       sql.NullInt64  `db:"away_penalties"`
	SourceFile          string         `db:"source_file"`
}
