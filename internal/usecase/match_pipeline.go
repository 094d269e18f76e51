package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/archive-ingest/external/archivehtml"
	"github.com/riskibarqy/archive-ingest/internal/domain/event"
	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/domain/ingestrun"
	"github.com/riskibarqy/archive-ingest/internal/domain/match"
	"github.com/riskibarqy/archive-ingest/internal/infrastructure/archive"
	"github.com/riskibarqy/archive-ingest/internal/platform/cache"
	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
)

var defaultCompetitionNames = map[archive.Role]string{
	archive.RoleLeague:   "Meisterschaft",
	archive.RoleCup:      "Pokal",
	archive.RoleFriendly: "Freundschaftsspiele",
}

var competitionKinds = map[archive.Role]match.CompetitionKind{
	archive.RoleLeague:   match.CompetitionLeague,
	archive.RoleCup:      match.CompetitionCup,
	archive.RoleFriendly: match.CompetitionFriendly,
}

type MatchInput struct {
	Season archive.Season
	File   archive.File
	Block  archivehtml.RawBlock
}

// MatchOutcome is what one block contributed to the run.
type MatchOutcome struct {
	MatchID          int64
	Created          bool
	Staged           event.Counts
	Duplicates       event.Counts
	Rejected         event.Counts
	Inserted         event.Counts
	Conflicts        event.Counts
	RejectionReasons map[string]int
	NamesRejected    int
}

// MatchError tags a pipeline failure with the stage it happened in.
type MatchError struct {
	Stage string
	Err   error
}

func (e *MatchError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *MatchError) Unwrap() error {
	return e.Err
}

// MatchPipeline runs one block end-to-end: resolve, create the match row,
// collect, validate and load. It holds run-scoped caches and must not be
// shared across runs.
type MatchPipeline struct {
	matches   match.Repository
	events    event.Repository
	canon     *Canonicalizer
	collector *EventCollector
	validator *EventValidator
	ids       *cache.Store[int64]
	logger    *logging.Logger
}

func NewMatchPipeline(
	matches match.Repository,
	events event.Repository,
	canon *Canonicalizer,
	collector *EventCollector,
	validator *EventValidator,
	logger *logging.Logger,
) *MatchPipeline {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchPipeline{
		matches:   matches,
		events:    events,
		canon:     canon,
		collector: collector,
		validator: validator,
		ids:       cache.NewStore[int64](),
		logger:    logger,
	}
}

func (p *MatchPipeline) Process(ctx context.Context, input MatchInput) (MatchOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchPipeline.Process")
	defer span.End()
	span.SetAttributes(
		attribute.String("archive.file", input.File.RelPath()),
		attribute.Int("archive.block", input.Block.Index),
	)

	outcome := MatchOutcome{RejectionReasons: make(map[string]int)}
	block := input.Block
	logger := p.logger.With("file", input.File.RelPath(), "block", block.Index)

	scID, err := p.ensureSeasonCompetition(ctx, input)
	if err != nil {
		return outcome, spanError(span, &MatchError{Stage: ingestrun.StageMatch, Err: err})
	}

	homeID, err := p.canon.ResolveOrCreate(ctx, identity.KindTeam, block.HomeTeam, identity.Profile{})
	if err != nil {
		return outcome, spanError(span, &MatchError{Stage: ingestrun.StageResolve, Err: fmt.Errorf("resolve home team: %w", err)})
	}
	awayID, err := p.canon.ResolveOrCreate(ctx, identity.KindTeam, block.AwayTeam, identity.Profile{})
	if err != nil {
		return outcome, spanError(span, &MatchError{Stage: ingestrun.StageResolve, Err: fmt.Errorf("resolve away team: %w", err)})
	}

	row := match.Match{
		SeasonCompetitionID: scID,
		Round:               block.Round,
		Venue:               block.Venue,
		Attendance:          block.Attendance,
		HomeTeamID:          homeID,
		AwayTeamID:          awayID,
		Result:              block.Result,
		SourceFile:          input.File.RelPath(),
		Date:                matchDate(block.Date),
		DateApproximate:     block.Date != nil && block.Date.Approximate,
	}

	if block.Referee != "" {
		id, ok, err := p.resolveOfficial(ctx, identity.KindReferee, block.Referee, &outcome)
		if err != nil {
			return outcome, spanError(span, &MatchError{Stage: ingestrun.StageResolve, Err: err})
		}
		if ok {
			row.RefereeID = &id
		}
	}
	for _, coach := range block.Coaches {
		id, ok, err := p.resolveOfficial(ctx, identity.KindCoach, coach.Name, &outcome)
		if err != nil {
			return outcome, spanError(span, &MatchError{Stage: ingestrun.StageResolve, Err: err})
		}
		if !ok {
			continue
		}
		switch coach.Side {
		case archivehtml.SideHome:
			row.HomeCoachID = &id
		case archivehtml.SideAway:
			row.AwayCoachID = &id
		}
	}

	matchID, created, err := p.matches.EnsureMatch(ctx, row)
	if err != nil {
		return outcome, spanError(span, &MatchError{Stage: ingestrun.StageMatch, Err: fmt.Errorf("ensure match: %w", err)})
	}
	outcome.MatchID = matchID
	outcome.Created = created
	p.validator.RememberMatch(matchID)
	span.SetAttributes(attribute.Int64("match.id", matchID))

	mc := MatchContext{MatchID: matchID, HomeTeamID: homeID, AwayTeamID: awayID}
	switch {
	case p.canon.IsPrimaryClub(block.HomeTeam):
		mc.PrimarySide = archivehtml.SideHome
	case p.canon.IsPrimaryClub(block.AwayTeam):
		mc.PrimarySide = archivehtml.SideAway
	}

	staged, stats, err := p.collector.Collect(ctx, mc, block)
	if err != nil {
		return outcome, spanError(span, &MatchError{Stage: ingestrun.StageResolve, Err: fmt.Errorf("collect events: %w", err)})
	}
	outcome.Staged = stats.Staged
	outcome.Duplicates = stats.Duplicates
	outcome.NamesRejected += stats.NamesRejected

	var batch event.Batch
	for _, e := range staged {
		err := p.validator.Validate(ctx, e)
		if err == nil {
			batch.Add(e)
			continue
		}
		if !crerr.Is(err, event.ErrInvalidEvent) {
			return outcome, spanError(span, &MatchError{Stage: ingestrun.StageLoad, Err: fmt.Errorf("validate %s event: %w", e.Kind(), err)})
		}
		reason := "invalid"
		var verr *event.ValidationError
		if crerr.As(err, &verr) {
			reason = verr.Reason
		}
		outcome.Rejected.Add(e.Kind(), 1)
		outcome.RejectionReasons[string(e.Kind())+":"+reason]++
		logger.WarnContext(ctx, "event rejected", "match_id", matchID, "kind", e.Kind(), "reason", reason, "error", err)
	}

	result, err := p.events.LoadMatchBatch(ctx, matchID, batch)
	if err != nil {
		return outcome, spanError(span, &MatchError{Stage: ingestrun.StageLoad, Err: fmt.Errorf("load match %d: %w", matchID, err)})
	}
	outcome.Inserted = result.Inserted
	outcome.Conflicts = result.Conflicts
	if result.Conflicts.Total() > 0 {
		logger.DebugContext(ctx, "storage constraint skipped rows", "match_id", matchID, "conflicts", result.Conflicts.Total())
	}

	logger.InfoContext(ctx, "match loaded",
		"match_id", matchID,
		"created", created,
		"inserted", result.Inserted.Total(),
		"duplicates", outcome.Duplicates.Total(),
		"rejected", outcome.Rejected.Total(),
	)
	return outcome, nil
}

func (p *MatchPipeline) ensureSeasonCompetition(ctx context.Context, input MatchInput) (int64, error) {
	seasonID, err := p.ids.GetOrLoad(ctx, "season|"+input.Season.Label, func(ctx context.Context) (int64, error) {
		return p.matches.EnsureSeason(ctx, match.Season{Label: input.Season.Label, StartYear: input.Season.StartYear})
	})
	if err != nil {
		return 0, fmt.Errorf("ensure season %s: %w", input.Season.Label, err)
	}

	competition := match.Competition{Name: input.Block.Competition, Kind: competitionKinds[input.File.Role]}
	if competition.Name == "" {
		competition.Name = defaultCompetitionNames[input.File.Role]
	}
	if competition.Kind == "" {
		competition.Kind = match.CompetitionLeague
	}
	if competition.Name == "" {
		return 0, fmt.Errorf("%w: no competition for %s", ErrInvalidInput, input.File.RelPath())
	}
	competitionID, err := p.ids.GetOrLoad(ctx, "competition|"+identity.NormalizeName(competition.Name), func(ctx context.Context) (int64, error) {
		return p.matches.EnsureCompetition(ctx, competition)
	})
	if err != nil {
		return 0, fmt.Errorf("ensure competition %s: %w", competition.Name, err)
	}

	key := "season_competition|" + strconv.FormatInt(seasonID, 10) + "|" + strconv.FormatInt(competitionID, 10)
	return p.ids.GetOrLoad(ctx, key, func(ctx context.Context) (int64, error) {
		return p.matches.EnsureSeasonCompetition(ctx, seasonID, competitionID)
	})
}

// resolveOfficial treats a non-person referee or coach as absent.
func (p *MatchPipeline) resolveOfficial(ctx context.Context, kind identity.Kind, raw string, outcome *MatchOutcome) (int64, bool, error) {
	if isBlankName(raw) {
		return 0, false, nil
	}
	id, err := p.canon.ResolveOrCreate(ctx, kind, raw, identity.Profile{})
	if err != nil {
		if crerr.Is(err, identity.ErrNotAPerson) {
			outcome.NamesRejected++
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("resolve %s: %w", kind, err)
	}
	return id, true, nil
}

func matchDate(d *archivehtml.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
