package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/archive-ingest/internal/domain/event"
	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/domain/match"
)

// EventValidator applies range rules and checks that every referenced id
// exists. Ids seen during the run are trusted; others are looked up once.
type EventValidator struct {
	canon      *Canonicalizer
	identities identity.Repository
	matches    match.Repository

	mu       sync.RWMutex
	verified map[event.Ref]bool
}

func NewEventValidator(canon *Canonicalizer, identities identity.Repository, matches match.Repository) *EventValidator {
	return &EventValidator{
		canon:      canon,
		identities: identities,
		matches:    matches,
		verified:   make(map[event.Ref]bool),
	}
}

// RememberMatch marks a match id as existing.
func (v *EventValidator) RememberMatch(id int64) {
	v.mu.Lock()
	v.verified[event.Ref{Kind: event.RefMatch, ID: id}] = true
	v.mu.Unlock()
}

// Validate returns nil, an *event.ValidationError for a rejected event, or a
// storage error from a reference lookup.
func (v *EventValidator) Validate(ctx context.Context, e event.Event) error {
	if err := event.Validate(e); err != nil {
		return err
	}

	for _, ref := range e.References() {
		ok, err := v.exists(ctx, ref)
		if err != nil {
			return fmt.Errorf("check %s reference: %w", ref.Kind, err)
		}
		if !ok {
			return event.NewReferenceError(e.Kind(), ref)
		}
	}
	return nil
}

func (v *EventValidator) exists(ctx context.Context, ref event.Ref) (bool, error) {
	switch ref.Kind {
	case event.RefTeam:
		if v.canon != nil && v.canon.Known(identity.KindTeam, ref.ID) {
			return true, nil
		}
	case event.RefPlayer:
		if v.canon != nil && v.canon.Known(identity.KindPlayer, ref.ID) {
			return true, nil
		}
	}

	v.mu.RLock()
	ok, cached := v.verified[ref]
	v.mu.RUnlock()
	if cached {
		return ok, nil
	}

	var err error
	switch ref.Kind {
	case event.RefMatch:
		ok, err = v.matches.Exists(ctx, ref.ID)
	case event.RefTeam:
		ok, err = v.identityExists(ctx, identity.KindTeam, ref.ID)
	case event.RefPlayer:
		ok, err = v.identityExists(ctx, identity.KindPlayer, ref.ID)
	default:
		return false, fmt.Errorf("%w: unknown reference kind %q", ErrInvalidInput, ref.Kind)
	}
	if err != nil {
		return false, err
	}
	if ok {
		v.mu.Lock()
		v.verified[ref] = true
		v.mu.Unlock()
	}
	return ok, nil
}

func (v *EventValidator) identityExists(ctx context.Context, kind identity.Kind, id int64) (bool, error) {
	found, err := v.identities.ExistingIDs(ctx, kind, []int64{id})
	if err != nil {
		return false, err
	}
	return found[id], nil
}
