package postgres

import "database/sql"

type goalEventInsertModel struct {
	MatchID   int64         `db:"match_id"`
	TeamID    int64         `db:"team_id"`
	ScorerID  sql.NullInt64 `db:"scorer_id"`
	AssistID  sql.NullInt64 `db:"assist_id"`
	Minute    sql.NullInt64 `db:"minute"`
	Stoppage  sql.NullInt64 `db:"stoppage"`
	HomeScore int           `db:"home_score"`
	AwayScore int           `db:"away_score"`
	Subtype   string        `db:"subtype"`
}

type cardEventInsertModel struct {
	MatchID  int64         `db:"match_id"`
	TeamID   int64         `db:"team_id"`
	PlayerID int64         `db:"player_id"`
	Minute   sql.NullInt64 `db:"minute"`
	Stoppage sql.NullInt64 `db:"stoppage"`
	CardType string        `db:"card_type"`
}

type substitutionInsertModel struct {
	MatchID     int64         `db:"match_id"`
	TeamID      int64         `db:"team_id"`
	Minute      sql.NullInt64 `db:"minute"`
	Stoppage    sql.NullInt64 `db:"stoppage"`
	PlayerOnID  int64         `db:"player_on_id"`
	PlayerOffID int64         `db:"player_off_id"`
}

type lineupEntryInsertModel struct {
	MatchID      int64         `db:"match_id"`
	TeamID       int64         `db:"team_id"`
	PlayerID     int64         `db:"player_id"`
	Starter      bool          `db:"starter"`
	SubOnMinute  sql.NullInt64 `db:"sub_on_minute"`
	SubOffMinute sql.NullInt64 `db:"sub_off_minute"`
}
