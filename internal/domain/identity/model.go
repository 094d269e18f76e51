package identity

import "time"

// Kind identifies which canonical registry a name belongs to.
type Kind string

const (
	KindTeam    Kind = "team"
	KindPlayer  Kind = "player"
	KindCoach   Kind = "coach"
	KindReferee Kind = "referee"
)

func (k Kind) Valid() bool {
	switch k {
	case KindTeam, KindPlayer, KindCoach, KindReferee:
		return true
	default:
		return false
	}
}

func (k Kind) IsPerson() bool {
	return k == KindPlayer || k == KindCoach || k == KindReferee
}

type TeamKind string

const (
	TeamKindPrimary   TeamKind = "primary"
	TeamKindClub      TeamKind = "club"
	TeamKindSelection TeamKind = "selection"
	TeamKindNational  TeamKind = "national"
)

// Team is a canonical club, selection or national side.
type Team struct {
	ID             int64
	Name           string
	NormalizedName string
	Kind           TeamKind
}

// Profile carries optional attributes scraped next to a person's name.
type Profile struct {
	URL         string
	BirthDate   *time.Time
	BirthPlace  string
	HeightCM    *int
	WeightKG    *int
	Nationality string
	Position    string
}

// Person is a canonical player, coach or referee.
type Person struct {
	ID             int64
	Kind           Kind
	Name           string
	NormalizedName string
	Profile        Profile
}
