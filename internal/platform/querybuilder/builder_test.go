package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id").
		From("players").
		Where(Eq("normalized_name", "sander"), Eq("position", "Torwart")).
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM players WHERE normalized_name = $1 AND position = $2 LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "sander" || args[1] != "Torwart" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderInInt64(t *testing.T) {
	query, args, err := Select("id").From("teams").Where(InInt64("id", []int64{3, 5})).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM teams WHERE id IN ($1, $2)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 || args[0] != int64(3) || args[1] != int64(5) {
		t.Fatalf("unexpected args: %+v", args)
	}

	query, _, err = Select("id").From("teams").Where(InInt64("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build empty in query: %v", err)
	}
	if query != "SELECT id FROM teams WHERE 1=0" {
		t.Fatalf("unexpected empty in query: %s", query)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("seasons").
		Columns("label", "start_year").
		Values("1905-06", 1905).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO seasons (label, start_year) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "1905-06" || args[1] != 1905 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type cardRow struct {
	MatchID  int64  `db:"match_id"`
	PlayerID int64  `db:"player_id"`
	CardType string `db:"card_type"`
	Ignored  string
}

func TestInsertModels(t *testing.T) {
	rows := []cardRow{
		{MatchID: 1, PlayerID: 10, CardType: "yellow"},
		{MatchID: 1, PlayerID: 11, CardType: "red"},
	}
	query, args, err := InsertModels("card_events", rows, "ON CONFLICT DO NOTHING")
	if err != nil {
		t.Fatalf("build insert models query: %v", err)
	}

	wantQuery := "INSERT INTO card_events (match_id, player_id, card_type) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 || args[4] != int64(11) {
		t.Fatalf("unexpected args: %+v", args)
	}
	if ColumnCount(cardRow{}) != 3 {
		t.Fatalf("unexpected column count")
	}
}

func TestInsertModelsRequiresRows(t *testing.T) {
	if _, _, err := InsertModels[cardRow]("card_events", nil, ""); err == nil {
		t.Fatalf("expected error for empty models")
	}
}
