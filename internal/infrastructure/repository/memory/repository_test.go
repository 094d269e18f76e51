package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/archive-ingest/internal/domain/event"
	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/domain/ingestrun"
	"github.com/riskibarqy/archive-ingest/internal/domain/match"
)

func intPtr(v int) *int { return &v }

func TestIdentityRepository_EnsurePersonFillsProfile(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := NewIdentityRepository()

	first, created, err := repo.EnsurePerson(ctx, identity.Person{
		Kind:           identity.KindPlayer,
		Name:           "SANDER",
		NormalizedName: "sander",
		Profile:        identity.Profile{Position: "Torwart"},
	})
	if err != nil || !created {
		t.Fatalf("first ensure: id=%d created=%v err=%v", first, created, err)
	}

	second, created, err := repo.EnsurePerson(ctx, identity.Person{
		Kind:           identity.KindPlayer,
		Name:           "Sander",
		NormalizedName: "sander",
		Profile:        identity.Profile{Position: "Stürmer", URL: "/spieler/sander.html", HeightCM: intPtr(181)},
	})
	if err != nil || created || second != first {
		t.Fatalf("second ensure: id=%d created=%v err=%v", second, created, err)
	}

	persons := repo.Persons(identity.KindPlayer)
	if len(persons) != 1 {
		t.Fatalf("unexpected persons: %+v", persons)
	}
	p := persons[0]
	if p.Name != "SANDER" || p.Profile.Position != "Torwart" || p.Profile.URL != "/spieler/sander.html" || p.Profile.HeightCM == nil {
		t.Fatalf("profile must be filled, not overwritten: %+v", p)
	}

	if _, _, err := repo.EnsurePerson(ctx, identity.Person{Kind: identity.KindTeam, NormalizedName: "x"}); err == nil {
		t.Fatalf("expected error for non-person kind")
	}

	found, err := repo.ExistingIDs(ctx, identity.KindPlayer, []int64{first, first + 100})
	if err != nil {
		t.Fatalf("existing ids: %v", err)
	}
	if !found[first] || found[first+100] {
		t.Fatalf("unexpected existing ids: %+v", found)
	}
	if found, _ := repo.ExistingIDs(ctx, identity.KindReferee, []int64{first}); found[first] {
		t.Fatalf("player id must not exist as referee")
	}
}

func TestMatchRepository_EnsureIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := NewMatchRepository()

	seasonID, err := repo.EnsureSeason(ctx, match.Season{Label: "1973-74", StartYear: 1973})
	if err != nil {
		t.Fatalf("ensure season: %v", err)
	}
	if again, _ := repo.EnsureSeason(ctx, match.Season{Label: "1973-74"}); again != seasonID {
		t.Fatalf("season id changed: got=%d want=%d", again, seasonID)
	}
	competitionID, err := repo.EnsureCompetition(ctx, match.Competition{Name: "Bundesliga", Kind: match.CompetitionLeague})
	if err != nil {
		t.Fatalf("ensure competition: %v", err)
	}
	scID, err := repo.EnsureSeasonCompetition(ctx, seasonID, competitionID)
	if err != nil {
		t.Fatalf("ensure season competition: %v", err)
	}

	row := match.Match{SeasonCompetitionID: scID, HomeTeamID: 1, AwayTeamID: 2, SourceFile: "1973-74/bundesliga.html"}
	id, created, err := repo.EnsureMatch(ctx, row)
	if err != nil || !created {
		t.Fatalf("ensure match: id=%d created=%v err=%v", id, created, err)
	}
	again, created, err := repo.EnsureMatch(ctx, row)
	if err != nil || created || again != id {
		t.Fatalf("re-ensure match: id=%d created=%v err=%v", again, created, err)
	}

	if ok, _ := repo.Exists(ctx, id); !ok {
		t.Fatalf("expected match %d to exist", id)
	}
	if ok, _ := repo.Exists(ctx, id+1); ok {
		t.Fatalf("unexpected match %d", id+1)
	}

	if _, _, err := repo.EnsureMatch(ctx, match.Match{SeasonCompetitionID: scID, SourceFile: "x.html"}); err == nil {
		t.Fatalf("expected validation error for match without teams")
	}
}

func TestEventRepository_LoadMatchBatch(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := NewEventRepository()

	var batch event.Batch
	batch.Add(event.LineupEntry{MatchID: 1, TeamID: 2, PlayerID: 3, Starter: true})
	batch.Add(event.Goal{MatchID: 1, TeamID: 2, Minute: intPtr(12), HomeScore: 1, Subtype: event.GoalRegular})
	batch.Add(event.Card{MatchID: 1, TeamID: 2, PlayerID: 3, Type: event.CardYellow})

	result, err := repo.LoadMatchBatch(ctx, 1, batch)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Inserted.Total() != 3 || result.Conflicts.Total() != 0 {
		t.Fatalf("unexpected first load: %+v", result)
	}

	result, err = repo.LoadMatchBatch(ctx, 1, batch)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if result.Inserted.Total() != 0 || result.Conflicts != batch.Counts() {
		t.Fatalf("reload must only conflict: %+v", result)
	}
	if repo.Counts().Total() != 3 {
		t.Fatalf("unexpected stored rows: %+v", repo.Counts())
	}
}

func TestEventRepository_FailureCommitsNothing(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := NewEventRepository()
	repo.FailOn = func(_ int64, kind event.Kind) error {
		if kind == event.KindCard {
			return errors.New("card insert failed")
		}
		return nil
	}

	var batch event.Batch
	batch.Add(event.LineupEntry{MatchID: 7, TeamID: 2, PlayerID: 3, Starter: true})
	batch.Add(event.Card{MatchID: 7, TeamID: 2, PlayerID: 3, Type: event.CardRed})

	if _, err := repo.LoadMatchBatch(ctx, 7, batch); err == nil {
		t.Fatalf("expected load failure")
	}
	if repo.Batch(7).Len() != 0 {
		t.Fatalf("failed load must not commit rows: %+v", repo.Batch(7))
	}

	repo.FailOn = nil
	result, err := repo.LoadMatchBatch(ctx, 7, batch)
	if err != nil {
		t.Fatalf("retry load: %v", err)
	}
	if result.Inserted.Total() != 2 {
		t.Fatalf("retry must insert every row: %+v", result)
	}
}

func TestEventRepository_RejectsForeignMatchEvents(t *testing.T) {
	t.Parallel()

	var batch event.Batch
	batch.Add(event.Goal{MatchID: 2, TeamID: 1, Subtype: event.GoalRegular})

	repo := NewEventRepository()
	if _, err := repo.LoadMatchBatch(t.Context(), 1, batch); err == nil {
		t.Fatalf("expected error for event of another match")
	}
	if repo.Counts().Total() != 0 {
		t.Fatalf("nothing must be stored")
	}
}

func TestIngestRunRepository_RejectsDuplicateRunID(t *testing.T) {
	t.Parallel()

	repo := NewIngestRunRepository()
	stats := ingestrun.NewStatistics("run-1", "/archive", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	if err := repo.Save(t.Context(), stats); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Save(t.Context(), stats); err == nil {
		t.Fatalf("expected duplicate run error")
	}
	if len(repo.Runs()) != 1 {
		t.Fatalf("unexpected runs: %d", len(repo.Runs()))
	}
}
