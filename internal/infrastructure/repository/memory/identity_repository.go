package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
)

type IdentityRepository struct {
	mu      sync.RWMutex
	nextID  map[identity.Kind]int64
	byName  map[identity.Kind]map[string]int64
	teams   map[int64]identity.Team
	persons map[identity.Kind]map[int64]identity.Person
}

func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{
		nextID:  make(map[identity.Kind]int64),
		byName:  make(map[identity.Kind]map[string]int64),
		teams:   make(map[int64]identity.Team),
		persons: make(map[identity.Kind]map[int64]identity.Person),
	}
}

func (r *IdentityRepository) EnsureTeam(_ context.Context, item identity.Team) (int64, bool, error) {
	if item.NormalizedName == "" {
		return 0, false, fmt.Errorf("ensure team: normalized name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.lookup(identity.KindTeam, item.NormalizedName); ok {
		return id, false, nil
	}
	id := r.insert(identity.KindTeam, item.NormalizedName)
	item.ID = id
	r.teams[id] = item
	return id, true, nil
}

func (r *IdentityRepository) EnsurePerson(_ context.Context, item identity.Person) (int64, bool, error) {
	if !item.Kind.IsPerson() {
		return 0, false, fmt.Errorf("unsupported person kind %q", item.Kind)
	}
	if item.NormalizedName == "" {
		return 0, false, fmt.Errorf("ensure %s: normalized name is required", item.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.lookup(item.Kind, item.NormalizedName); ok {
		existing := r.persons[item.Kind][id]
		existing.Profile = mergeProfile(existing.Profile, item.Profile)
		r.persons[item.Kind][id] = existing
		return id, false, nil
	}
	id := r.insert(item.Kind, item.NormalizedName)
	item.ID = id
	if r.persons[item.Kind] == nil {
		r.persons[item.Kind] = make(map[int64]identity.Person)
	}
	r.persons[item.Kind][id] = item
	return id, true, nil
}

func (r *IdentityRepository) ExistingIDs(_ context.Context, kind identity.Kind, ids []int64) (map[int64]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if kind == identity.KindTeam {
			if _, ok := r.teams[id]; ok {
				out[id] = true
			}
			continue
		}
		if _, ok := r.persons[kind][id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

// Teams returns a snapshot of stored teams.
func (r *IdentityRepository) Teams() []identity.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]identity.Team, 0, len(r.teams))
	for _, item := range r.teams {
		out = append(out, item)
	}
	return out
}

// Persons returns a snapshot of stored persons of one kind.
func (r *IdentityRepository) Persons(kind identity.Kind) []identity.Person {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]identity.Person, 0, len(r.persons[kind]))
	for _, item := range r.persons[kind] {
		out = append(out, item)
	}
	return out
}

func (r *IdentityRepository) lookup(kind identity.Kind, normalized string) (int64, bool) {
	id, ok := r.byName[kind][normalized]
	return id, ok
}

func (r *IdentityRepository) insert(kind identity.Kind, normalized string) int64 {
	r.nextID[kind]++
	id := r.nextID[kind]
	if r.byName[kind] == nil {
		r.byName[kind] = make(map[string]int64)
	}
	r.byName[kind][normalized] = id
	return id
}

func mergeProfile(existing, incoming identity.Profile) identity.Profile {
	if existing.URL == "" {
		existing.URL = incoming.URL
	}
	if existing.BirthDate == nil {
		existing.BirthDate = incoming.BirthDate
	}
	if existing.BirthPlace == "" {
		existing.BirthPlace = incoming.BirthPlace
	}
	if existing.HeightCM == nil {
		existing.HeightCM = incoming.HeightCM
	}
	if existing.WeightKG == nil {
		existing.WeightKG = incoming.WeightKG
	}
	if existing.Nationality == "" {
		existing.Nationality = incoming.Nationality
	}
	if existing.Position == "" {
		existing.Position = incoming.Position
	}
	return existing
}
