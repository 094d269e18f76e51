package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/infrastructure/repository/memory"
	identitymock "github.com/riskibarqy/archive-ingest/internal/mocks/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
)

func newTestCanonicalizer(repo identity.Repository) *Canonicalizer {
	teams := identity.NewTeamRules(identity.DefaultPrimaryClub(), nil)
	return NewCanonicalizer(repo, teams, identity.DefaultNameRules(), logging.NewNop())
}

func TestCanonicalizer_ResolvePlayer_IdempotentUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	repo := identitymock.NewRepository(t)
	canon := newTestCanonicalizer(repo)

	repo.
		On("EnsurePerson", mock.Anything, mock.MatchedBy(func(p identity.Person) bool {
			return p.Kind == identity.KindPlayer && p.NormalizedName == "sander" && p.Name == "SANDER"
		})).
		Return(int64(7), true, nil).
		Once()

	for _, raw := range []string{"? SANDER", "SANDER", "  Sander ", "Sander (?)"} {
		id, err := canon.ResolveOrCreate(ctx, identity.KindPlayer, raw, identity.Profile{})
		if err != nil {
			t.Fatalf("resolve %q: %v", raw, err)
		}
		if id != 7 {
			t.Fatalf("resolve %q: got id=%d want=7", raw, id)
		}
	}
	if !canon.Known(identity.KindPlayer, 7) {
		t.Fatalf("expected resolved id to be known")
	}
	if got := canon.Created()["player"]; got != 1 {
		t.Fatalf("unexpected created count: %d", got)
	}
}

func TestCanonicalizer_RejectsNonPersonUsingMockery(t *testing.T) {
	t.Parallel()

	repo := identitymock.NewRepository(t)
	canon := newTestCanonicalizer(repo)

	for _, raw := range []string{"FE", "Eigentor", "Schiedsrichter Müller", "N.N.", "?", "12."} {
		_, err := canon.ResolveOrCreate(t.Context(), identity.KindPlayer, raw, identity.Profile{})
		if !errors.Is(err, identity.ErrNotAPerson) {
			t.Fatalf("resolve %q: expected ErrNotAPerson, got %v", raw, err)
		}
	}
	repo.AssertNotCalled(t, "EnsurePerson", mock.Anything, mock.Anything)
}

func TestCanonicalizer_RepositoryErrorIsNotCachedUsingMockery(t *testing.T) {
	t.Parallel()

	repo := identitymock.NewRepository(t)
	canon := newTestCanonicalizer(repo)
	storageErr := errors.New("connection reset")

	repo.On("EnsureTeam", mock.Anything, mock.Anything).Return(int64(0), false, storageErr).Once()
	repo.On("EnsureTeam", mock.Anything, mock.Anything).Return(int64(3), false, nil).Once()

	if _, err := canon.ResolveOrCreate(t.Context(), identity.KindTeam, "Saarland", identity.Profile{}); !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error, got %v", err)
	}
	id, err := canon.ResolveOrCreate(t.Context(), identity.KindTeam, "Saarland", identity.Profile{})
	if err != nil {
		t.Fatalf("retry resolve: %v", err)
	}
	if id != 3 {
		t.Fatalf("unexpected team id: %d", id)
	}
	if got := canon.Created()["team"]; got != 0 {
		t.Fatalf("existing team must not count as created, got %d", got)
	}
}

func TestCanonicalizer_PrimaryClubSpellingsShareOneID(t *testing.T) {
	t.Parallel()

	repo := memory.NewIdentityRepository()
	canon := newTestCanonicalizer(repo)

	spellings := []string{
		"1. FC Kaiserslautern",
		"1.FC Kaiserslautern",
		"FC Kaiserslautern",
		"FV Kaiserslautern",
		"FV 1900 Kaiserslautern",
		"FV Phönix Kaiserslautern",
		"Phönix Kaiserslautern 1900",
		"VfL Kaiserslautern 1900",
		"SpVgg Kaiserslautern 1900",
		"KSG Kaiserslautern 1900",
		"1. FC Kaiserlautern",
		"FCK",
		"Kaiserslautern",
		"1. F.C. Kaiserslautern",
		"F.C. Kaiserslautern",
		"F.V. Kaiserslautern",
		"Spvgg. Kaiserslautern 1900",
	}

	var want int64
	for _, raw := range spellings {
		id, err := canon.ResolveOrCreate(t.Context(), identity.KindTeam, raw, identity.Profile{})
		if err != nil {
			t.Fatalf("resolve %q: %v", raw, err)
		}
		if want == 0 {
			want = id
		}
		if id != want {
			t.Fatalf("resolve %q: got id=%d want=%d", raw, id, want)
		}
	}

	teams := repo.Teams()
	if len(teams) != 1 || teams[0].Kind != identity.TeamKindPrimary || teams[0].Name != "1. FC Kaiserslautern" {
		t.Fatalf("unexpected stored teams: %+v", teams)
	}

	other, err := canon.ResolveOrCreate(t.Context(), identity.KindTeam, "FC Pfalz Ludwigshafen", identity.Profile{})
	if err != nil {
		t.Fatalf("resolve other team: %v", err)
	}
	if other == want {
		t.Fatalf("non-primary club resolved to primary id")
	}

	dotted, err := canon.ResolveOrCreate(t.Context(), identity.KindTeam, "F.C. Pfalz Ludwigshafen", identity.Profile{})
	if err != nil {
		t.Fatalf("resolve dotted team: %v", err)
	}
	if dotted != other {
		t.Fatalf("dotted spelling created a second team: got=%d want=%d", dotted, other)
	}
}

func TestCanonicalizer_CleansArchiveNames(t *testing.T) {
	t.Parallel()

	repo := memory.NewIdentityRepository()
	canon := newTestCanonicalizer(repo)

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "? SANDER", want: "SANDER"},
		{raw: "wdh. FE, Lipponer", want: "Lipponer"},
		{raw: "FE an Becker", want: "Becker"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id, err := canon.ResolveOrCreate(t.Context(), identity.KindPlayer, tt.raw, identity.Profile{})
			if err != nil {
				t.Fatalf("resolve %q: %v", tt.raw, err)
			}
			for _, p := range repo.Persons(identity.KindPlayer) {
				if p.ID == id && p.Name != tt.want {
					t.Fatalf("resolve %q: stored name %q want %q", tt.raw, p.Name, tt.want)
				}
			}
		})
	}

	for _, p := range repo.Persons(identity.KindPlayer) {
		if identity.NormalizeName(p.Name) == "fe an becker" {
			t.Fatalf("assist phrase must never become a player: %+v", p)
		}
	}
	if got := len(repo.Persons(identity.KindPlayer)); got != 3 {
		t.Fatalf("unexpected player count: %d", got)
	}
}

func TestCanonicalizer_KindsAreSeparateRegistries(t *testing.T) {
	t.Parallel()

	repo := memory.NewIdentityRepository()
	canon := newTestCanonicalizer(repo)

	if _, err := canon.ResolveOrCreate(t.Context(), identity.KindReferee, "Hermann Roth", identity.Profile{}); err != nil {
		t.Fatalf("resolve referee: %v", err)
	}
	if _, err := canon.ResolveOrCreate(t.Context(), identity.KindPlayer, "Hermann Roth", identity.Profile{}); err != nil {
		t.Fatalf("resolve player: %v", err)
	}
	if len(repo.Persons(identity.KindReferee)) != 1 || len(repo.Persons(identity.KindPlayer)) != 1 {
		t.Fatalf("expected one referee and one player")
	}

	if _, err := canon.ResolveOrCreate(t.Context(), identity.Kind("stadium"), "Betzenberg", identity.Profile{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
}
