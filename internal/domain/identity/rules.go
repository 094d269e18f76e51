package identity

import (
	"fmt"
	"regexp"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrNotAPerson    = crerr.New("name is not a person")
	ErrEmptyTeamName = crerr.New("team name is empty")
)

// NameRule is one pure cleaning step. Rules run in order; the first error
// stops the chain.
type NameRule struct {
	Name  string
	Apply func(string) (string, error)
}

type NameRules []NameRule

var (
	uncertaintyRegex      = regexp.MustCompile(`\(\s*\?\s*\)|\?`)
	correctionPrefixRegex = regexp.MustCompile(`(?i)^(?:wdh\.?|wiederh\.?|wiederholt|repeated|korr\.?|\[[a-z]{1,2}\d{1,2}\]|[a-z]{1,2}\d{1,2}:)\s*[:,]?\s*`)
	correctionSuffixRegex = regexp.MustCompile(`(?i)\s*\((?:wdh\.?|wiederholt|repeated|korr\.?)\)\s*$`)
	goalPrefixRegex       = regexp.MustCompile(`(?i)^(?:FE|HE|ET|Elfmeter|Foulelfmeter|Handelfmeter|Strafsto(?:ß|ss)|Eigentor)\s*[,:]\s*`)
	assistSplitRegex      = regexp.MustCompile(`\s+an\s+`)
	minuteSuffixRegex     = regexp.MustCompile(`\s*\(\s*\d{1,3}\.?(?:\s*\+\s*\d{1,2}\.?)?\s*\)\s*$`)
	minutePrefixRegex     = regexp.MustCompile(`^\d{1,3}\.(?:\s*\+\s*\d{1,2}\.?)?\s+`)
)

// DefaultNonPersonWords lists normalized strings that show up in player slots
// but never name a person.
var DefaultNonPersonWords = []string{
	"fe", "he", "et", "elfmeter", "foulelfmeter", "handelfmeter", "strafstoss",
	"eigentor", "selbsttor", "kopfball", "freistoss", "abstauber", "nachschuss",
	"distanzschuss", "tor", "wdh", "n n", "nn", "unbekannt", "unbek", "unknown",
	"schiedsrichter", "sr", "trainer", "linienrichter", "spielertrainer",
}

var officialPrefixes = map[string]struct{}{
	"schiedsrichter": {},
	"sr":             {},
	"trainer":        {},
	"linienrichter":  {},
	"assistent":      {},
}

func DefaultNameRules() NameRules {
	return NewNameRules(nil)
}

// NewNameRules builds the ordered cleaning chain. extraNonPerson extends
// DefaultNonPersonWords.
func NewNameRules(extraNonPerson []string) NameRules {
	reject := make(map[string]struct{}, len(DefaultNonPersonWords)+len(extraNonPerson))
	for _, w := range DefaultNonPersonWords {
		reject[NormalizeName(w)] = struct{}{}
	}
	for _, w := range extraNonPerson {
		if n := NormalizeName(w); n != "" {
			reject[n] = struct{}{}
		}
	}

	return NameRules{
		{Name: "collapse_whitespace", Apply: pure(CollapseSpaces)},
		{Name: "strip_uncertainty", Apply: pure(func(s string) string {
			return CollapseSpaces(uncertaintyRegex.ReplaceAllString(s, " "))
		})},
		{Name: "strip_corrections", Apply: pure(func(s string) string {
			s = correctionSuffixRegex.ReplaceAllString(s, "")
			return stripRepeated(correctionPrefixRegex, s)
		})},
		{Name: "strip_goal_description", Apply: pure(func(s string) string {
			return stripRepeated(goalPrefixRegex, s)
		})},
		{Name: "split_assist", Apply: pure(func(s string) string {
			if _, receiver, ok := SplitAssistConstruction(s); ok {
				return receiver
			}
			return s
		})},
		{Name: "strip_minute", Apply: pure(func(s string) string {
			s = minuteSuffixRegex.ReplaceAllString(s, "")
			s = minutePrefixRegex.ReplaceAllString(s, "")
			return strings.Trim(s, " ,;:-–")
		})},
		{Name: "reject_non_person", Apply: func(s string) (string, error) {
			return s, rejectNonPerson(s, reject)
		}},
	}
}

// Clean runs every rule in order and returns the display form of a person's
// name, or ErrNotAPerson.
func (r NameRules) Clean(raw string) (string, error) {
	s := raw
	for _, rule := range r {
		out, err := rule.Apply(s)
		if err != nil {
			return "", err
		}
		s = out
	}
	if strings.TrimSpace(s) == "" {
		return "", crerr.Wrapf(ErrNotAPerson, "empty after cleaning %q", raw)
	}
	return s, nil
}

// SplitAssistConstruction splits "X an Y" into the provider X and the
// receiver Y. The split happens on the last standalone lowercase "an".
func SplitAssistConstruction(s string) (provider, receiver string, ok bool) {
	locs := assistSplitRegex.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return "", s, false
	}
	last := locs[len(locs)-1]
	provider = strings.TrimSpace(s[:last[0]])
	receiver = strings.TrimSpace(s[last[1]:])
	if receiver == "" {
		return "", s, false
	}
	return provider, receiver, true
}

func rejectNonPerson(s string, reject map[string]struct{}) error {
	normalized := NormalizeName(s)
	if normalized == "" || !hasLetter(normalized) {
		return crerr.Wrapf(ErrNotAPerson, "%q has no letters", s)
	}
	if len([]rune(normalized)) < 2 {
		return crerr.Wrapf(ErrNotAPerson, "%q is too short", s)
	}
	if _, ok := reject[normalized]; ok {
		return crerr.Wrapf(ErrNotAPerson, "%q is a non-person term", s)
	}
	first, _, _ := strings.Cut(normalized, " ")
	if _, ok := officialPrefixes[first]; ok {
		return crerr.Wrapf(ErrNotAPerson, "%q names an official role", s)
	}
	return nil
}

func stripRepeated(re *regexp.Regexp, s string) string {
	for {
		next := strings.TrimSpace(re.ReplaceAllString(s, ""))
		if next == s {
			return s
		}
		s = next
	}
}

func pure(fn func(string) string) func(string) (string, error) {
	return func(s string) (string, error) { return fn(s), nil }
}

// PrimaryClub resolves every historical spelling of the archive's own club.
type PrimaryClub struct {
	Name     string
	patterns []*regexp.Regexp
}

// DefaultPrimaryClubPatterns match normalized names (see NormalizeName) of the
// club across foundation, merger, wartime and occupation-era names.
var DefaultPrimaryClubPatterns = []string{
	`^(1 )?fc (1900 )?kaisers?lautern( 1900)?$`,
	`^(1 )?fck$`,
	`^fv (1900 )?kaisers?lautern$`,
	`^fv phonix kaisers?lautern$`,
	`^(fc )?phonix kaisers?lautern 1900$`,
	`^(ksg|sg|vfl|spvgg) kaisers?lautern 1900$`,
	`^kaisers?lautern$`,
}

func NewPrimaryClub(name string, patterns []string) (PrimaryClub, error) {
	name = CollapseSpaces(name)
	if name == "" {
		return PrimaryClub{}, ErrEmptyTeamName
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return PrimaryClub{}, fmt.Errorf("compile primary club pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return PrimaryClub{Name: name, patterns: compiled}, nil
}

func DefaultPrimaryClub() PrimaryClub {
	club, err := NewPrimaryClub("1. FC Kaiserslautern", DefaultPrimaryClubPatterns)
	if err != nil {
		panic(err)
	}
	return club
}

func (p PrimaryClub) Matches(raw string) bool {
	normalized := NormalizeName(raw)
	if normalized == "" {
		return false
	}
	if normalized == NormalizeName(p.Name) {
		return true
	}
	for _, re := range p.patterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// TeamRules classifies and canonicalizes team names.
type TeamRules struct {
	Primary PrimaryClub
	nations map[string]struct{}
}

var selectionMarkers = []string{"auswahl", "kombination", "kombiniert", "stadtelf", "xi"}

var DefaultNations = []string{
	"deutschland", "frankreich", "osterreich", "schweiz", "niederlande", "belgien",
	"luxemburg", "danemark", "schweden", "italien", "spanien", "england", "ungarn",
}

func NewTeamRules(primary PrimaryClub, nations []string) TeamRules {
	set := make(map[string]struct{}, len(DefaultNations)+len(nations))
	for _, n := range append(append([]string(nil), DefaultNations...), nations...) {
		if v := NormalizeName(n); v != "" {
			set[v] = struct{}{}
		}
	}
	return TeamRules{Primary: primary, nations: set}
}

// Canonical maps a raw team name to the record that should be stored for it.
// All spellings of the primary club collapse to the primary club's name.
func (r TeamRules) Canonical(raw string) (Team, error) {
	name := CollapseSpaces(uncertaintyRegex.ReplaceAllString(raw, " "))
	name = strings.Trim(name, " ,;:")
	normalized := NormalizeName(name)
	if normalized == "" {
		return Team{}, crerr.Wrapf(ErrEmptyTeamName, "raw=%q", raw)
	}

	if r.Primary.Matches(name) {
		return Team{
			Name:           r.Primary.Name,
			NormalizedName: NormalizeName(r.Primary.Name),
			Kind:           TeamKindPrimary,
		}, nil
	}

	kind := TeamKindClub
	if _, ok := r.nations[normalized]; ok {
		kind = TeamKindNational
	} else {
		for _, token := range strings.Fields(normalized) {
			if containsString(selectionMarkers, token) || strings.HasSuffix(token, "auswahl") {
				kind = TeamKindSelection
				break
			}
		}
	}
	return Team{Name: name, NormalizedName: normalized, Kind: kind}, nil
}

func containsString(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
