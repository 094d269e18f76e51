package usecase

import (
	"context"
	"regexp"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/archive-ingest/external/archivehtml"
	"github.com/riskibarqy/archive-ingest/internal/domain/event"
	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/domain/match"
	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
)

var (
	penaltyNoteRegex = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:FE|HE|Elfmeter|Foulelfmeter|Handelfmeter|Strafsto(?:ß|ss)|penalty|pen\.?)(?:$|[^\p{L}])`)
	ownGoalNoteRegex = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:ET|Eigentor|Selbsttor|own goal|OG)(?:$|[^\p{L}])`)
)

// MatchContext carries the ids a block's events hang off.
type MatchContext struct {
	MatchID     int64
	HomeTeamID  int64
	AwayTeamID  int64
	PrimarySide archivehtml.Side
}

func (m MatchContext) teamID(side archivehtml.Side) int64 {
	switch side {
	case archivehtml.SideHome:
		return m.HomeTeamID
	case archivehtml.SideAway:
		return m.AwayTeamID
	default:
		return 0
	}
}

// CollectStats counts what one block produced before validation.
type CollectStats struct {
	Staged        event.Counts
	Duplicates    event.Counts
	NamesRejected int
}

// EventCollector turns a block's raw fragments into deduplicated events.
type EventCollector struct {
	canon  *Canonicalizer
	logger *logging.Logger
}

func NewEventCollector(canon *Canonicalizer, logger *logging.Logger) *EventCollector {
	if logger == nil {
		logger = logging.Default()
	}
	return &EventCollector{canon: canon, logger: logger}
}

type lineupKey struct {
	playerID int64
	teamID   int64
}

// blockCollection is the working state for one block.
type blockCollection struct {
	mc           MatchContext
	lineups      []event.LineupEntry
	lineupIndex  map[lineupKey]int
	playerSide   map[int64]archivehtml.Side
	goals        []event.Goal
	cards        []event.Card
	subs         []event.Substitution
	namesRejects int
}

// Collect resolves every name in block and stages the resulting events in
// lineup, goal, card, substitution order. A returned error means a storage
// failure; rejected names only drop the affected event.
func (c *EventCollector) Collect(ctx context.Context, mc MatchContext, block archivehtml.RawBlock) ([]event.Event, CollectStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventCollector.Collect")
	defer span.End()

	bc := &blockCollection{
		mc:          mc,
		lineupIndex: make(map[lineupKey]int),
		playerSide:  make(map[int64]archivehtml.Side),
	}

	steps := []func(context.Context, *blockCollection, archivehtml.RawBlock) error{
		c.collectLineups,
		c.collectGoals,
		c.collectCards,
		c.collectSubstitutions,
	}
	for _, step := range steps {
		if err := step(ctx, bc, block); err != nil {
			return nil, CollectStats{}, err
		}
	}

	deduper := event.NewDeduper()
	stats := CollectStats{NamesRejected: bc.namesRejects}
	staged := make([]event.Event, 0, len(bc.lineups)+len(bc.goals)+len(bc.cards)+len(bc.subs))
	stage := func(e event.Event) {
		if deduper.Stage(e) == event.Duplicate {
			c.logger.DebugContext(ctx, "duplicate event dropped", "match_id", mc.MatchID, "kind", e.Kind(), "key", e.Key())
			return
		}
		stats.Staged.Add(e.Kind(), 1)
		staged = append(staged, e)
	}
	for _, item := range bc.lineups {
		stage(item)
	}
	for _, item := range bc.goals {
		stage(item)
	}
	for _, item := range bc.cards {
		stage(item)
	}
	for _, item := range bc.subs {
		stage(item)
	}
	stats.Duplicates = deduper.Duplicates()
	return staged, stats, nil
}

func (c *EventCollector) collectLineups(ctx context.Context, bc *blockCollection, block archivehtml.RawBlock) error {
	for _, raw := range block.Lineups {
		side := raw.Side
		if side == archivehtml.SideUnknown {
			side = bc.defaultSide()
		}
		playerID, ok, err := c.resolvePlayer(ctx, bc, raw.Player.Name, raw.Player.Profile)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		entry := event.LineupEntry{
			MatchID:  bc.mc.MatchID,
			TeamID:   bc.mc.teamID(side),
			PlayerID: playerID,
			Starter:  raw.Starter,
		}
		entry.SubOnMinute, _ = archivehtml.ParseMinute(raw.SubOn)
		entry.SubOffMinute, _ = archivehtml.ParseMinute(raw.SubOff)
		bc.addLineup(entry, side)
	}
	return nil
}

func (c *EventCollector) collectGoals(ctx context.Context, bc *blockCollection, block archivehtml.RawBlock) error {
	var running match.Score
	for _, raw := range block.Goals {
		minute, stoppage := archivehtml.ParseMinute(raw.Minute)
		descriptor := raw.Note + " " + raw.Scorer

		goal := event.Goal{
			MatchID:  bc.mc.MatchID,
			Minute:   minute,
			Stoppage: stoppage,
			Subtype:  goalSubtype(raw.Note, raw.Scorer),
		}

		scorerText, assistText := raw.Scorer, raw.Assist
		if provider, receiver, ok := identity.SplitAssistConstruction(scorerText); ok {
			scorerText = receiver
			if assistText == "" {
				assistText = provider
			}
		}

		if goal.Subtype != event.GoalOwnGoal && !isBlankName(scorerText) {
			id, ok, err := c.resolvePlayer(ctx, bc, scorerText, identity.Profile{})
			if err != nil {
				return err
			}
			if ok {
				goal.ScorerID = &id
			}
		}
		if !isBlankName(assistText) {
			id, ok, err := c.resolveOptionalPlayer(ctx, assistText)
			if err != nil {
				return err
			}
			if ok && (goal.ScorerID == nil || *goal.ScorerID != id) {
				goal.AssistID = &id
			}
		}

		side := archivehtml.SideUnknown
		score := archivehtml.ParseScore(raw.Score)
		if score != nil {
			side = scoringSide(running, *score)
		}
		if side == archivehtml.SideUnknown {
			side = raw.Side
		}
		if side == archivehtml.SideUnknown && goal.ScorerID != nil {
			side = bc.sideOf(*goal.ScorerID)
			if goal.Subtype == event.GoalOwnGoal {
				side = opposite(side)
			}
		}
		switch {
		case score != nil:
			running = *score
		case side == archivehtml.SideHome:
			running.Home++
		case side == archivehtml.SideAway:
			running.Away++
		}
		if side == archivehtml.SideUnknown {
			c.logger.DebugContext(ctx, "goal side unresolved", "match_id", bc.mc.MatchID, "fragment", strings.TrimSpace(descriptor))
		}

		goal.TeamID = bc.mc.teamID(side)
		goal.HomeScore = running.Home
		goal.AwayScore = running.Away
		bc.goals = append(bc.goals, goal)
	}
	return nil
}

func (c *EventCollector) collectCards(ctx context.Context, bc *blockCollection, block archivehtml.RawBlock) error {
	for _, raw := range block.Cards {
		playerID, ok, err := c.resolvePlayer(ctx, bc, raw.Player, identity.Profile{})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		side := raw.Side
		if side == archivehtml.SideUnknown {
			side = bc.sideOf(playerID)
		}
		if side == archivehtml.SideUnknown {
			side = bc.defaultSide()
		}

		minute, stoppage := archivehtml.ParseMinute(raw.Minute)
		bc.cards = append(bc.cards, event.Card{
			MatchID:  bc.mc.MatchID,
			TeamID:   bc.mc.teamID(side),
			PlayerID: playerID,
			Minute:   minute,
			Stoppage: stoppage,
			Type:     cardType(raw.Card),
		})
	}
	return nil
}

func (c *EventCollector) collectSubstitutions(ctx context.Context, bc *blockCollection, block archivehtml.RawBlock) error {
	for _, raw := range block.Substitutions {
		onID, onOK, err := c.resolvePlayer(ctx, bc, raw.On, identity.Profile{})
		if err != nil {
			return err
		}
		offID, offOK, err := c.resolvePlayer(ctx, bc, raw.Off, identity.Profile{})
		if err != nil {
			return err
		}
		if !onOK || !offOK {
			continue
		}

		side := raw.Side
		if side == archivehtml.SideUnknown {
			side = bc.sideOf(offID)
		}
		if side == archivehtml.SideUnknown {
			side = bc.sideOf(onID)
		}
		if side == archivehtml.SideUnknown {
			side = bc.defaultSide()
		}

		minute, stoppage := archivehtml.ParseMinute(raw.Minute)
		teamID := bc.mc.teamID(side)
		bc.subs = append(bc.subs, event.Substitution{
			MatchID:     bc.mc.MatchID,
			TeamID:      teamID,
			PlayerOnID:  onID,
			PlayerOffID: offID,
			Minute:      minute,
			Stoppage:    stoppage,
		})

		if idx, ok := bc.lineupIndex[lineupKey{playerID: offID, teamID: teamID}]; ok && bc.lineups[idx].SubOffMinute == nil {
			bc.lineups[idx].SubOffMinute = minute
		}
		if idx, ok := bc.lineupIndex[lineupKey{playerID: onID, teamID: teamID}]; ok {
			if bc.lineups[idx].SubOnMinute == nil {
				bc.lineups[idx].SubOnMinute = minute
			}
			continue
		}
		bc.addLineup(event.LineupEntry{
			MatchID:     bc.mc.MatchID,
			TeamID:      teamID,
			PlayerID:    onID,
			Starter:     false,
			SubOnMinute: minute,
		}, side)
	}
	return nil
}

// resolvePlayer returns ok=false when the name is not a person; the
// rejection is counted against the block.
func (c *EventCollector) resolvePlayer(ctx context.Context, bc *blockCollection, raw string, profile identity.Profile) (int64, bool, error) {
	if isBlankName(raw) {
		bc.namesRejects++
		return 0, false, nil
	}
	id, err := c.canon.ResolveOrCreate(ctx, identity.KindPlayer, raw, profile)
	if err != nil {
		if crerr.Is(err, identity.ErrNotAPerson) {
			bc.namesRejects++
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

// resolveOptionalPlayer resolves assist providers. Description words such as
// "FE" in "FE an Becker" are expected and not counted.
func (c *EventCollector) resolveOptionalPlayer(ctx context.Context, raw string) (int64, bool, error) {
	id, err := c.canon.ResolveOrCreate(ctx, identity.KindPlayer, raw, identity.Profile{})
	if err != nil {
		if crerr.Is(err, identity.ErrNotAPerson) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (bc *blockCollection) addLineup(entry event.LineupEntry, side archivehtml.Side) {
	key := lineupKey{playerID: entry.PlayerID, teamID: entry.TeamID}
	if _, ok := bc.lineupIndex[key]; !ok {
		bc.lineupIndex[key] = len(bc.lineups)
	}
	if _, ok := bc.playerSide[entry.PlayerID]; !ok && side != archivehtml.SideUnknown {
		bc.playerSide[entry.PlayerID] = side
	}
	bc.lineups = append(bc.lineups, entry)
}

func (bc *blockCollection) sideOf(playerID int64) archivehtml.Side {
	return bc.playerSide[playerID]
}

// defaultSide is used for text blocks that only list the primary club.
func (bc *blockCollection) defaultSide() archivehtml.Side {
	if bc.mc.PrimarySide != archivehtml.SideUnknown {
		return bc.mc.PrimarySide
	}
	return archivehtml.SideHome
}

func goalSubtype(note, scorer string) event.GoalSubtype {
	for _, text := range []string{note, scorer} {
		if ownGoalNoteRegex.MatchString(text) {
			return event.GoalOwnGoal
		}
	}
	for _, text := range []string{note, scorer} {
		if penaltyNoteRegex.MatchString(text) {
			return event.GoalPenalty
		}
	}
	return event.GoalRegular
}

func cardType(raw string) event.CardType {
	switch identity.NormalizeName(raw) {
	case "gelb", "g", "y", "yellow", "gk", "gelbe karte":
		return event.CardYellow
	case "rot", "r", "red", "rk", "rote karte", "platzverweis", "feldverweis":
		return event.CardRed
	case "gelb rot", "gelbrot", "gr", "y r", "yr", "second yellow", "gelb rote karte", "ampelkarte":
		return event.CardSecondYellow
	default:
		return event.CardType(strings.TrimSpace(raw))
	}
}

// scoringSide is the side whose tally went up by exactly one.
func scoringSide(before, after match.Score) archivehtml.Side {
	switch {
	case after.Home == before.Home+1 && after.Away == before.Away:
		return archivehtml.SideHome
	case after.Away == before.Away+1 && after.Home == before.Home:
		return archivehtml.SideAway
	default:
		return archivehtml.SideUnknown
	}
}

func opposite(side archivehtml.Side) archivehtml.Side {
	switch side {
	case archivehtml.SideHome:
		return archivehtml.SideAway
	case archivehtml.SideAway:
		return archivehtml.SideHome
	default:
		return archivehtml.SideUnknown
	}
}

func isBlankName(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || s == "?" || s == "-"
}
