package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/archive-ingest/internal/domain/match"
)

type seasonCompetitionKey struct {
	seasonID      int64
	competitionID int64
}

type matchSourceKey struct {
	seasonCompetitionID int64
	sourceFile          string
}

type MatchRepository struct {
	mu                 sync.RWMutex
	seasons            map[string]int64
	competitions       map[string]int64
	seasonCompetitions map[seasonCompetitionKey]int64
	matchesBySource    map[matchSourceKey]int64
	matches            map[int64]match.Match
	lastID             int64
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		seasons:            make(map[string]int64),
		competitions:       make(map[string]int64),
		seasonCompetitions: make(map[seasonCompetitionKey]int64),
		matchesBySource:    make(map[matchSourceKey]int64),
		matches:            make(map[int64]match.Match),
	}
}

func (r *MatchRepository) EnsureSeason(_ context.Context, season match.Season) (int64, error) {
	label := strings.TrimSpace(season.Label)
	if label == "" {
		return 0, fmt.Errorf("ensure season: label is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.seasons[label]; ok {
		return id, nil
	}
	r.lastID++
	r.seasons[label] = r.lastID
	return r.lastID, nil
}

func (r *MatchRepository) EnsureCompetition(_ context.Context, competition match.Competition) (int64, error) {
	name := strings.TrimSpace(competition.Name)
	if name == "" {
		return 0, fmt.Errorf("ensure competition: name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.competitions[name]; ok {
		return id, nil
	}
	r.lastID++
	r.competitions[name] = r.lastID
	return r.lastID, nil
}

func (r *MatchRepository) EnsureSeasonCompetition(_ context.Context, seasonID, competitionID int64) (int64, error) {
	key := seasonCompetitionKey{seasonID: seasonID, competitionID: competitionID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.seasonCompetitions[key]; ok {
		return id, nil
	}
	r.lastID++
	r.seasonCompetitions[key] = r.lastID
	return r.lastID, nil
}

func (r *MatchRepository) EnsureMatch(_ context.Context, item match.Match) (int64, bool, error) {
	if err := item.Validate(); err != nil {
		return 0, false, fmt.Errorf("validate match: %w", err)
	}
	key := matchSourceKey{seasonCompetitionID: item.SeasonCompetitionID, sourceFile: item.SourceFile}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.matchesBySource[key]; ok {
		return id, false, nil
	}
	r.lastID++
	item.ID = r.lastID
	r.matchesBySource[key] = item.ID
	r.matches[item.ID] = item
	return item.ID, true, nil
}

func (r *MatchRepository) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.matches[id]
	return ok, nil
}

// Matches returns a snapshot of stored matches.
func (r *MatchRepository) Matches() []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.matches))
	for _, item := range r.matches {
		out = append(out, item)
	}
	return out
}
