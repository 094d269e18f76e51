package archivehtml

import (
	"time"

	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/domain/match"
)

type Side string

const (
	SideUnknown Side = ""
	SideHome    Side = "home"
	SideAway    Side = "away"
)

// Date is a parsed match date. Approximate dates are pinned to the first of
// the month (or of the year when only the year is known).
type Date struct {
	Time        time.Time
	Approximate bool
}

type RawPerson struct {
	Name    string
	Profile identity.Profile
}

type RawLineupEntry struct {
	Side    Side
	Player  RawPerson
	Starter bool
	SubOn   string
	SubOff  string
}

type RawGoal struct {
	Minute string
	Score  string
	Scorer string
	Assist string
	Note   string
	Side   Side
}

type RawCard struct {
	Minute string
	Side   Side
	Player string
	Card   string
}

type RawSubstitution struct {
	Minute string
	Side   Side
	On     string
	Off    string
}

type RawCoach struct {
	Side Side
	Name string
}

// RawBlock is one match as written on the page. Metadata is parsed; event
// fragments stay raw text for the collector.
type RawBlock struct {
	Index       int
	Competition string
	Round       string
	Date        *Date
	Venue       string
	Attendance  *int
	Referee     string
	HomeTeam    string
	AwayTeam    string
	Result      match.Result

	Coaches       []RawCoach
	Lineups       []RawLineupEntry
	Goals         []RawGoal
	Cards         []RawCard
	Substitutions []RawSubstitution
}

func (b RawBlock) HasTeams() bool {
	return b.HomeTeam != "" && b.AwayTeam != ""
}
