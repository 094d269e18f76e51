package event

type Kind string

const (
	KindGoal         Kind = "goal"
	KindCard         Kind = "card"
	KindSubstitution Kind = "substitution"
	KindLineup       Kind = "lineup"
)

type GoalSubtype string

const (
	GoalRegular GoalSubtype = "none"
	GoalPenalty GoalSubtype = "penalty"
	GoalOwnGoal GoalSubtype = "own_goal"
)

type CardType string

const (
	CardYellow       CardType = "yellow"
	CardRed          CardType = "red"
	CardSecondYellow CardType = "second_yellow"
)

// RefKind names the canonical table an event id points into.
type RefKind string

const (
	RefMatch  RefKind = "match"
	RefTeam   RefKind = "team"
	RefPlayer RefKind = "player"
)

type Ref struct {
	Kind RefKind
	ID   int64
}

// Event is anything the collector stages for a match.
type Event interface {
	Kind() Kind
	Key() NaturalKey
	References() []Ref
}

// Goal minute and stoppage are nil when the archive does not record them.
type Goal struct {
	MatchID   int64       `validate:"gt=0"`
	TeamID    int64       `validate:"gt=0"`
	ScorerID  *int64      `validate:"omitnil,gt=0"`
	AssistID  *int64      `validate:"omitnil,gt=0"`
	Minute    *int        `validate:"omitnil,min=0,max=120"`
	Stoppage  *int        `validate:"omitnil,min=0,max=20"`
	HomeScore int         `validate:"min=0"`
	AwayScore int         `validate:"min=0"`
	Subtype   GoalSubtype `validate:"oneof=none penalty own_goal"`
}

type Card struct {
	MatchID  int64    `validate:"gt=0"`
	TeamID   int64    `validate:"gt=0"`
	PlayerID int64    `validate:"gt=0"`
	Minute   *int     `validate:"omitnil,min=0,max=120"`
	Stoppage *int     `validate:"omitnil,min=0,max=20"`
	Type     CardType `validate:"oneof=yellow red second_yellow"`
}

type Substitution struct {
	MatchID     int64 `validate:"gt=0"`
	TeamID      int64 `validate:"gt=0"`
	PlayerOnID  int64 `validate:"gt=0,nefield=PlayerOffID"`
	PlayerOffID int64 `validate:"gt=0"`
	Minute      *int  `validate:"omitnil,min=0,max=120"`
	Stoppage    *int  `validate:"omitnil,min=0,max=20"`
}

type LineupEntry struct {
	MatchID      int64 `validate:"gt=0"`
	TeamID       int64 `validate:"gt=0"`
	PlayerID     int64 `validate:"gt=0"`
	Starter      bool
	SubOnMinute  *int `validate:"omitnil,min=0,max=120"`
	SubOffMinute *int `validate:"omitnil,min=0,max=120"`
}

func (Goal) Kind() Kind         { return KindGoal }
func (Card) Kind() Kind         { return KindCard }
func (Substitution) Kind() Kind { return KindSubstitution }
func (LineupEntry) Kind() Kind  { return KindLineup }

func (g Goal) References() []Ref {
	refs := []Ref{{Kind: RefMatch, ID: g.MatchID}, {Kind: RefTeam, ID: g.TeamID}}
	if g.ScorerID != nil {
		refs = append(refs, Ref{Kind: RefPlayer, ID: *g.ScorerID})
	}
	if g.AssistID != nil {
		refs = append(refs, Ref{Kind: RefPlayer, ID: *g.AssistID})
	}
	return refs
}

func (c Card) References() []Ref {
	return []Ref{{Kind: RefMatch, ID: c.MatchID}, {Kind: RefTeam, ID: c.TeamID}, {Kind: RefPlayer, ID: c.PlayerID}}
}

func (s Substitution) References() []Ref {
	return []Ref{
		{Kind: RefMatch, ID: s.MatchID},
		{Kind: RefTeam, ID: s.TeamID},
		{Kind: RefPlayer, ID: s.PlayerOnID},
		{Kind: RefPlayer, ID: s.PlayerOffID},
	}
}

func (l LineupEntry) References() []Ref {
	return []Ref{{Kind: RefMatch, ID: l.MatchID}, {Kind: RefTeam, ID: l.TeamID}, {Kind: RefPlayer, ID: l.PlayerID}}
}
