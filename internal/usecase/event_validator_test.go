package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/archive-ingest/internal/domain/event"
	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/archive-ingest/internal/mocks/domain/match"
)

func intRef(v int) *int { return &v }

func TestEventValidator_MinuteBoundariesUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	identities := memory.NewIdentityRepository()
	teamID, _, err := identities.EnsureTeam(ctx, identity.Team{Name: "Saarland", NormalizedName: "saarland", Kind: identity.TeamKindClub})
	if err != nil {
		t.Fatalf("seed team: %v", err)
	}
	playerID, _, err := identities.EnsurePerson(ctx, identity.Person{Kind: identity.KindPlayer, Name: "Becker", NormalizedName: "becker"})
	if err != nil {
		t.Fatalf("seed player: %v", err)
	}

	matches := matchmock.NewRepository(t)
	matches.On("Exists", mock.Anything, int64(5)).Return(true, nil).Once()

	validator := NewEventValidator(nil, identities, matches)
	card := func(minute, stoppage *int) event.Card {
		return event.Card{MatchID: 5, TeamID: teamID, PlayerID: playerID, Minute: minute, Stoppage: stoppage, Type: event.CardYellow}
	}

	tests := []struct {
		name   string
		event  event.Event
		reason string
	}{
		{name: "minute zero", event: card(intRef(0), nil)},
		{name: "minute 120", event: card(intRef(120), intRef(20))},
		{name: "no minute", event: card(nil, nil)},
		{name: "minute 121", event: card(intRef(121), nil), reason: "minute:max"},
		{name: "stoppage 21", event: card(intRef(90), intRef(21)), reason: "stoppage:max"},
		{name: "negative minute", event: card(intRef(-1), nil), reason: "minute:min"},
		{name: "unknown card", event: event.Card{MatchID: 5, TeamID: teamID, PlayerID: playerID, Type: "blau"}, reason: "type:oneof"},
		{name: "missing player", event: event.Card{MatchID: 5, TeamID: teamID, PlayerID: 999, Type: event.CardRed}, reason: "player_id:exists"},
	}
	for _, tt := range tests {
		err := validator.Validate(ctx, tt.event)
		if tt.reason == "" {
			if err != nil {
				t.Fatalf("%s: expected valid event, got %v", tt.name, err)
			}
			continue
		}

		var verr *event.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tt.name, err)
		}
		if verr.Reason != tt.reason {
			t.Fatalf("%s: got reason %q want %q", tt.name, verr.Reason, tt.reason)
		}
		if !errors.Is(err, event.ErrInvalidEvent) {
			t.Fatalf("%s: expected ErrInvalidEvent", tt.name)
		}
	}
}

func TestEventValidator_UnknownMatchIsRejectedUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	canon := newTestCanonicalizer(memory.NewIdentityRepository())
	teamID, err := canon.ResolveOrCreate(ctx, identity.KindTeam, "Saarland", identity.Profile{})
	if err != nil {
		t.Fatalf("resolve team: %v", err)
	}

	matches := matchmock.NewRepository(t)
	matches.On("Exists", mock.Anything, int64(41)).Return(false, nil).Once()

	validator := NewEventValidator(canon, memory.NewIdentityRepository(), matches)
	goal := event.Goal{MatchID: 41, TeamID: teamID, HomeScore: 1, Subtype: event.GoalRegular}

	var verr *event.ValidationError
	if err := validator.Validate(ctx, goal); !errors.As(err, &verr) || verr.Reason != "match_id:exists" {
		t.Fatalf("expected match_id:exists rejection, got %v", err)
	}

	validator.RememberMatch(42)
	goal.MatchID = 42
	if err := validator.Validate(ctx, goal); err != nil {
		t.Fatalf("remembered match must validate without lookup, got %v", err)
	}
}

func TestEventValidator_StorageErrorIsNotARejectionUsingMockery(t *testing.T) {
	t.Parallel()

	matches := matchmock.NewRepository(t)
	storageErr := errors.New("connection refused")
	matches.On("Exists", mock.Anything, int64(1)).Return(false, storageErr).Once()

	validator := NewEventValidator(nil, memory.NewIdentityRepository(), matches)
	err := validator.Validate(t.Context(), event.Goal{MatchID: 1, TeamID: 2, Subtype: event.GoalRegular})
	if !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if errors.Is(err, event.ErrInvalidEvent) {
		t.Fatalf("storage error must not be reported as a rejected event")
	}
}
