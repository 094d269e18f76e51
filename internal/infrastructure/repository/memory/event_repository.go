package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/archive-ingest/internal/domain/event"
)

// EventRepository mirrors the postgres loader: natural-key backstop, one
// all-or-nothing commit per match.
type EventRepository struct {
	mu     sync.RWMutex
	keys   map[event.NaturalKey]struct{}
	events map[int64]event.Batch

	// FailOn, when set, is consulted before each group is written. A non-nil
	// error aborts the whole match.
	FailOn func(matchID int64, kind event.Kind) error
}

func NewEventRepository() *EventRepository {
	return &EventRepository{
		keys:   make(map[event.NaturalKey]struct{}),
		events: make(map[int64]event.Batch),
	}
}

func (r *EventRepository) LoadMatchBatch(_ context.Context, matchID int64, batch event.Batch) (event.LoadResult, error) {
	var result event.LoadResult
	if batch.Len() == 0 {
		return result, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pendingKeys := make(map[event.NaturalKey]struct{}, batch.Len())
	var pending event.Batch

	stage := func(e event.Event, matchOf int64) error {
		if matchOf != matchID {
			return fmt.Errorf("%s event belongs to match %d, loading match %d", e.Kind(), matchOf, matchID)
		}
		key := e.Key()
		_, stored := r.keys[key]
		_, staged := pendingKeys[key]
		if stored || staged {
			result.Conflicts.Add(e.Kind(), 1)
			return nil
		}
		pendingKeys[key] = struct{}{}
		pending.Add(e)
		result.Inserted.Add(e.Kind(), 1)
		return nil
	}

	groups := []struct {
		kind   event.Kind
		events []event.Event
	}{
		{kind: event.KindLineup, events: asEvents(batch.Lineups)},
		{kind: event.KindGoal, events: asEvents(batch.Goals)},
		{kind: event.KindCard, events: asEvents(batch.Cards)},
		{kind: event.KindSubstitution, events: asEvents(batch.Substitutions)},
	}
	for _, group := range groups {
		if len(group.events) == 0 {
			continue
		}
		if r.FailOn != nil {
			if err := r.FailOn(matchID, group.kind); err != nil {
				return event.LoadResult{}, fmt.Errorf("insert %s events: %w", group.kind, err)
			}
		}
		for _, e := range group.events {
			if err := stage(e, matchIDOf(e)); err != nil {
				return event.LoadResult{}, err
			}
		}
	}

	for key := range pendingKeys {
		r.keys[key] = struct{}{}
	}
	stored := r.events[matchID]
	stored.Goals = append(stored.Goals, pending.Goals...)
	stored.Cards = append(stored.Cards, pending.Cards...)
	stored.Substitutions = append(stored.Substitutions, pending.Substitutions...)
	stored.Lineups = append(stored.Lineups, pending.Lineups...)
	r.events[matchID] = stored

	return result, nil
}

// Batch returns what has been committed for a match.
func (r *EventRepository) Batch(matchID int64) event.Batch {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.events[matchID]
}

// Counts totals committed rows across all matches.
func (r *EventRepository) Counts() event.Counts {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total event.Counts
	for _, batch := range r.events {
		total.Merge(batch.Counts())
	}
	return total
}

func asEvents[T event.Event](items []T) []event.Event {
	out := make([]event.Event, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func matchIDOf(e event.Event) int64 {
	for _, ref := range e.References() {
		if ref.Kind == event.RefMatch {
			return ref.ID
		}
	}
	return 0
}
