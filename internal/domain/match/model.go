package match

import (
	"fmt"
	"time"
)

type CompetitionKind string

const (
	CompetitionLeague   CompetitionKind = "league"
	CompetitionCup      CompetitionKind = "cup"
	CompetitionFriendly CompetitionKind = "friendly"
)

// Season is one archive directory, e.g. "1973-74".
type Season struct {
	ID        int64
	Label     string
	StartYear int
}

type Competition struct {
	ID   int64
	Name string
	Kind CompetitionKind
}

// Score is a home/away pair.
type Score struct {
	Home int
	Away int
}

func (s Score) String() string {
	return fmt.Sprintf("%d:%d", s.Home, s.Away)
}

// Match is one loaded fixture. Optional facts stay nil when the archive does
// not record them.
type Match struct {
	ID                  int64
	SeasonCompetitionID int64
	Round               string
	Date                *time.Time
	DateApproximate     bool
	Venue               string
	Attendance          *int
	HomeTeamID          int64
	AwayTeamID          int64
	RefereeID           *int64
	HomeCoachID         *int64
	AwayCoachID         *int64
	Result              Result
	SourceFile          string
}

// Result is the recorded outcome. Final is the last score of open play, after
// extra time when AfterExtraTime is set; Regulation then holds the 90-minute
// score if the archive gives it.
type Result struct {
	Final          *Score
	HalfTime       *Score
	Regulation     *Score
	AfterExtraTime bool
	Penalties      *Score
}

func (r Result) Known() bool {
	return r.Final != nil
}

func (m Match) Validate() error {
	if m.SeasonCompetitionID <= 0 {
		return fmt.Errorf("season competition id is required")
	}
	if m.HomeTeamID <= 0 || m.AwayTeamID <= 0 {
		return fmt.Errorf("home and away team ids are required")
	}
	if m.SourceFile == "" {
		return fmt.Errorf("source file is required")
	}
	return nil
}
