package usecase

import (
	"testing"

	"github.com/riskibarqy/archive-ingest/external/archivehtml"
	"github.com/riskibarqy/archive-ingest/internal/domain/event"
	"github.com/riskibarqy/archive-ingest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
)

func newTestCollector() *EventCollector {
	canon := newTestCanonicalizer(memory.NewIdentityRepository())
	return NewEventCollector(canon, logging.NewNop())
}

var testMatch = MatchContext{MatchID: 1, HomeTeamID: 10, AwayTeamID: 20, PrimarySide: archivehtml.SideHome}

func TestEventCollector_MinutelessCardsAreDuplicates(t *testing.T) {
	t.Parallel()

	block := archivehtml.RawBlock{
		Cards: []archivehtml.RawCard{
			{Side: archivehtml.SideAway, Player: "Paul Breitner", Card: "gelb"},
			{Side: archivehtml.SideAway, Player: "Paul Breitner", Card: "Gelb", Minute: "?"},
			{Side: archivehtml.SideAway, Player: "Paul Breitner", Card: "rot"},
		},
	}

	staged, stats, err := newTestCollector().Collect(t.Context(), testMatch, block)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if stats.Staged.Cards != 2 || stats.Duplicates.Cards != 1 {
		t.Fatalf("unexpected card counts: staged=%+v duplicates=%+v", stats.Staged, stats.Duplicates)
	}
	if len(staged) != 2 {
		t.Fatalf("unexpected staged events: %+v", staged)
	}
	first := staged[0].(event.Card)
	if first.Type != event.CardYellow || first.TeamID != 20 || first.Minute != nil {
		t.Fatalf("unexpected first card: %+v", first)
	}
}

func TestEventCollector_GoalSidesFromRunningScore(t *testing.T) {
	t.Parallel()

	block := archivehtml.RawBlock{
		Lineups: []archivehtml.RawLineupEntry{
			{Side: archivehtml.SideHome, Player: archivehtml.RawPerson{Name: "Fritz Walter"}, Starter: true},
			{Side: archivehtml.SideAway, Player: archivehtml.RawPerson{Name: "Max Morlock"}, Starter: true},
		},
		Goals: []archivehtml.RawGoal{
			{Minute: "12.", Score: "0:1", Scorer: "Max Morlock"},
			{Minute: "30.", Score: "1:1", Scorer: "Fritz Walter", Note: "FE"},
			{Minute: "45.+2", Score: "2:1", Scorer: "Eigentor"},
			{Minute: "70.", Scorer: "Max Morlock"},
			{Minute: "88.", Side: archivehtml.SideHome, Scorer: "Walter an Ottmar Walter"},
		},
	}

	staged, stats, err := newTestCollector().Collect(t.Context(), testMatch, block)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if stats.Staged.Goals != 5 || stats.Duplicates.Goals != 0 {
		t.Fatalf("unexpected goal counts: %+v", stats)
	}

	var goals []event.Goal
	for _, e := range staged {
		if g, ok := e.(event.Goal); ok {
			goals = append(goals, g)
		}
	}

	want := []struct {
		team    int64
		home    int
		away    int
		subtype event.GoalSubtype
	}{
		{team: 20, home: 0, away: 1, subtype: event.GoalRegular},
		{team: 10, home: 1, away: 1, subtype: event.GoalPenalty},
		{team: 10, home: 2, away: 1, subtype: event.GoalOwnGoal},
		{team: 20, home: 2, away: 2, subtype: event.GoalRegular},
		{team: 10, home: 3, away: 2, subtype: event.GoalRegular},
	}
	for i, w := range want {
		g := goals[i]
		if g.TeamID != w.team || g.HomeScore != w.home || g.AwayScore != w.away || g.Subtype != w.subtype {
			t.Fatalf("goal %d: got %+v want %+v", i, g, w)
		}
	}
	if goals[2].ScorerID != nil {
		t.Fatalf("own goal must not carry a scorer: %+v", goals[2])
	}
	if goals[2].Stoppage == nil || *goals[2].Stoppage != 2 {
		t.Fatalf("unexpected stoppage: %+v", goals[2])
	}
	if goals[4].ScorerID == nil || goals[4].AssistID == nil || *goals[4].ScorerID == *goals[4].AssistID {
		t.Fatalf("assist construction must yield scorer and provider: %+v", goals[4])
	}
}

func TestEventCollector_SubstitutionsFillLineup(t *testing.T) {
	t.Parallel()

	block := archivehtml.RawBlock{
		Lineups: []archivehtml.RawLineupEntry{
			{Player: archivehtml.RawPerson{Name: "Lipponer"}, Starter: true},
			{Player: archivehtml.RawPerson{Name: "Klein"}, Starter: true},
		},
		Substitutions: []archivehtml.RawSubstitution{
			{Minute: "46.", On: "Hahn", Off: "Klein"},
		},
	}

	staged, stats, err := newTestCollector().Collect(t.Context(), testMatch, block)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if stats.Staged.Lineups != 3 || stats.Staged.Substitutions != 1 {
		t.Fatalf("unexpected counts: %+v", stats.Staged)
	}

	lineups := make([]event.LineupEntry, 0, 3)
	var sub event.Substitution
	for _, e := range staged {
		switch v := e.(type) {
		case event.LineupEntry:
			lineups = append(lineups, v)
		case event.Substitution:
			sub = v
		}
	}

	klein, hahn := lineups[1], lineups[2]
	if klein.SubOffMinute == nil || *klein.SubOffMinute != 46 || !klein.Starter {
		t.Fatalf("unexpected lineup for substituted player: %+v", klein)
	}
	if hahn.SubOnMinute == nil || *hahn.SubOnMinute != 46 || hahn.Starter || hahn.TeamID != 10 {
		t.Fatalf("unexpected lineup for substitute: %+v", hahn)
	}
	if sub.PlayerOnID != hahn.PlayerID || sub.PlayerOffID != klein.PlayerID || sub.TeamID != 10 {
		t.Fatalf("unexpected substitution: %+v", sub)
	}
}

func TestEventCollector_RejectedNamesDropEvents(t *testing.T) {
	t.Parallel()

	block := archivehtml.RawBlock{
		Lineups: []archivehtml.RawLineupEntry{
			{Player: archivehtml.RawPerson{Name: "Trainer"}, Starter: true},
			{Player: archivehtml.RawPerson{Name: "Becker"}, Starter: true},
			{Player: archivehtml.RawPerson{Name: "Becker"}, Starter: true},
		},
		Cards: []archivehtml.RawCard{
			{Minute: "10.", Player: "?", Card: "gelb"},
		},
		Goals: []archivehtml.RawGoal{
			{Minute: "5.", Score: "1:0", Scorer: "Kopfball"},
		},
	}

	mc := testMatch
	mc.PrimarySide = archivehtml.SideAway
	staged, stats, err := newTestCollector().Collect(t.Context(), mc, block)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if stats.NamesRejected != 3 {
		t.Fatalf("unexpected rejected names: %d", stats.NamesRejected)
	}
	if stats.Staged.Lineups != 1 || stats.Duplicates.Lineups != 1 || stats.Staged.Cards != 0 {
		t.Fatalf("unexpected counts: staged=%+v duplicates=%+v", stats.Staged, stats.Duplicates)
	}
	if stats.Staged.Goals != 1 {
		t.Fatalf("goal with unknown scorer must be kept, got %+v", stats.Staged)
	}
	for _, e := range staged {
		switch v := e.(type) {
		case event.LineupEntry:
			if v.TeamID != 20 {
				t.Fatalf("unlabelled lineup must default to the primary club side: %+v", v)
			}
		case event.Goal:
			if v.ScorerID != nil || v.TeamID != 10 {
				t.Fatalf("unexpected goal: %+v", v)
			}
		}
	}
}

func TestCardType(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]event.CardType{
		"gelb":     event.CardYellow,
		"Y":        event.CardYellow,
		"rot":      event.CardRed,
		"R":        event.CardRed,
		"gelb-rot": event.CardSecondYellow,
		"Gelb/Rot": event.CardSecondYellow,
		"Y/R":      event.CardSecondYellow,
	} {
		if got := cardType(raw); got != want {
			t.Fatalf("cardType(%q): got %q want %q", raw, got, want)
		}
	}
	if got := cardType("blau"); got != "blau" {
		t.Fatalf("unknown card type must pass through for validation, got %q", got)
	}
}
