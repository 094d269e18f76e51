package app

import (
	"fmt"

	"github.com/riskibarqy/archive-ingest/internal/config"
	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/infrastructure/archive"
)

// Rules are the resolved name, team and file rules for one run.
type Rules struct {
	Teams identity.TeamRules
	Names identity.NameRules
	Files archive.Patterns
}

// ResolveRules merges the rules file over the built-in defaults. A primary
// club from the rules file wins over INGEST_PRIMARY_CLUB.
func ResolveRules(cfg config.Config, rules config.Rules) (Rules, error) {
	primary := identity.DefaultPrimaryClub()
	switch {
	case rules.PrimaryClub.Name != "":
		club, err := identity.NewPrimaryClub(rules.PrimaryClub.Name, rules.PrimaryClub.Patterns)
		if err != nil {
			return Rules{}, fmt.Errorf("primary club rules: %w", err)
		}
		primary = club
	case cfg.PrimaryClub != "":
		club, err := identity.NewPrimaryClub(cfg.PrimaryClub, nil)
		if err != nil {
			return Rules{}, fmt.Errorf("primary club: %w", err)
		}
		primary = club
	}

	files := archive.DefaultPatterns().Merge(archive.Patterns{
		League:   rules.Files.League,
		Cup:      rules.Files.Cup,
		Friendly: rules.Files.Friendly,
		Excluded: rules.Files.Excluded,
	})
	if err := files.Validate(); err != nil {
		return Rules{}, fmt.Errorf("file rules: %w", err)
	}

	return Rules{
		Teams: identity.NewTeamRules(primary, rules.Nations),
		Names: identity.NewNameRules(rules.NonPersonWords),
		Files: files,
	}, nil
}
