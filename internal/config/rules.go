package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules extends the built-in name and file rules. Every list is appended to
// the defaults; a non-empty primary club name replaces the default club.
type Rules struct {
	PrimaryClub    PrimaryClubRules `yaml:"primary_club"`
	Nations        []string         `yaml:"nations"`
	NonPersonWords []string         `yaml:"non_person_words"`
	Files          FileRules        `yaml:"files"`
}

type PrimaryClubRules struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"` // regular expressions over normalized team names
}

// FileRules are lowercase glob patterns per file role.
type FileRules struct {
	League   []string `yaml:"league"`
	Cup      []string `yaml:"cup"`
	Friendly []string `yaml:"friendly"`
	Excluded []string `yaml:"excluded"`
}

// LoadRules reads a rules file. An empty path yields empty rules.
func LoadRules(path string) (Rules, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Rules{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var rules Rules
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rules); err != nil && !errors.Is(err, io.EOF) {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}

	if rules.PrimaryClub.Name == "" && len(rules.PrimaryClub.Patterns) > 0 {
		return Rules{}, fmt.Errorf("primary_club.name is required when primary_club.patterns is set")
	}
	return rules, nil
}
