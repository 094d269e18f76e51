package usecase

import (
	"context"
	"fmt"
	"sync"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/platform/cache"
	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
)

// Canonicalizer resolves raw names to canonical ids for the duration of one
// run. It is safe for concurrent use; the underlying repository provides
// atomic insert-if-absent.
type Canonicalizer struct {
	repo   identity.Repository
	teams  identity.TeamRules
	names  identity.NameRules
	ids    *cache.Store[int64]
	logger *logging.Logger

	mu      sync.RWMutex
	known   map[identity.Kind]map[int64]struct{}
	created map[identity.Kind]int
}

func NewCanonicalizer(repo identity.Repository, teams identity.TeamRules, names identity.NameRules, logger *logging.Logger) *Canonicalizer {
	if logger == nil {
		logger = logging.Default()
	}
	if len(names) == 0 {
		names = identity.DefaultNameRules()
	}
	return &Canonicalizer{
		repo:    repo,
		teams:   teams,
		names:   names,
		ids:     cache.NewStore[int64](),
		logger:  logger,
		known:   make(map[identity.Kind]map[int64]struct{}),
		created: make(map[identity.Kind]int),
	}
}

// ResolveOrCreate returns the canonical id for rawName. Person names that
// clean to non-person text fail with identity.ErrNotAPerson.
func (c *Canonicalizer) ResolveOrCreate(ctx context.Context, kind identity.Kind, rawName string, profile identity.Profile) (int64, error) {
	switch {
	case kind == identity.KindTeam:
		return c.resolveTeam(ctx, rawName)
	case kind.IsPerson():
		return c.resolvePerson(ctx, kind, rawName, profile)
	default:
		return 0, fmt.Errorf("%w: unsupported entity kind %q", ErrInvalidInput, kind)
	}
}

// IsPrimaryClub reports whether rawName is a spelling of the primary club.
func (c *Canonicalizer) IsPrimaryClub(rawName string) bool {
	return c.teams.Primary.Matches(rawName)
}

// Known reports whether id was resolved or created during this run.
func (c *Canonicalizer) Known(kind identity.Kind, id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.known[kind][id]
	return ok
}

// Created returns how many rows each kind inserted during this run.
func (c *Canonicalizer) Created() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int, len(c.created))
	for kind, n := range c.created {
		out[string(kind)] = n
	}
	return out
}

func (c *Canonicalizer) resolveTeam(ctx context.Context, rawName string) (int64, error) {
	team, err := c.teams.Canonical(rawName)
	if err != nil {
		return 0, err
	}

	return c.ids.GetOrLoad(ctx, cacheKey(identity.KindTeam, team.NormalizedName), func(ctx context.Context) (int64, error) {
		id, created, err := c.repo.EnsureTeam(ctx, team)
		if err != nil {
			return 0, fmt.Errorf("ensure team %q: %w", team.Name, err)
		}
		c.remember(identity.KindTeam, id, created)
		if created {
			c.logger.DebugContext(ctx, "team created", "team_id", id, "name", team.Name, "kind", team.Kind)
		}
		return id, nil
	})
}

func (c *Canonicalizer) resolvePerson(ctx context.Context, kind identity.Kind, rawName string, profile identity.Profile) (int64, error) {
	name, err := c.names.Clean(rawName)
	if err != nil {
		if crerr.Is(err, identity.ErrNotAPerson) {
			c.logger.DebugContext(ctx, "name rejected", "kind", kind, "raw", rawName, "error", err)
		}
		return 0, err
	}
	normalized := identity.NormalizeName(name)

	return c.ids.GetOrLoad(ctx, cacheKey(kind, normalized), func(ctx context.Context) (int64, error) {
		id, created, err := c.repo.EnsurePerson(ctx, identity.Person{
			Kind:           kind,
			Name:           name,
			NormalizedName: normalized,
			Profile:        profile,
		})
		if err != nil {
			return 0, fmt.Errorf("ensure %s %q: %w", kind, name, err)
		}
		c.remember(kind, id, created)
		if created {
			c.logger.DebugContext(ctx, "person created", "kind", kind, "person_id", id, "name", name)
		}
		return id, nil
	})
}

func (c *Canonicalizer) remember(kind identity.Kind, id int64, created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.known[kind] == nil {
		c.known[kind] = make(map[int64]struct{})
	}
	c.known[kind][id] = struct{}{}
	if created {
		c.created[kind]++
	}
}

func cacheKey(kind identity.Kind, normalized string) string {
	if normalized == "" {
		return ""
	}
	return string(kind) + "|" + normalized
}
