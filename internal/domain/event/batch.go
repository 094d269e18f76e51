package event

// Counts tallies events per kind.
type Counts struct {
	Goals         int `json:"goals"`
	Cards         int `json:"cards"`
	Substitutions int `json:"substitutions"`
	Lineups       int `json:"lineups"`
}

func (c *Counts) Add(kind Kind, n int) {
	switch kind {
	case KindGoal:
		c.Goals += n
	case KindCard:
		c.Cards += n
	case KindSubstitution:
		c.Substitutions += n
	case KindLineup:
		c.Lineups += n
	}
}

func (c *Counts) Merge(other Counts) {
	c.Goals += other.Goals
	c.Cards += other.Cards
	c.Substitutions += other.Substitutions
	c.Lineups += other.Lineups
}

func (c Counts) Total() int {
	return c.Goals + c.Cards + c.Substitutions + c.Lineups
}

// Batch is the set of staged, validated events committed together for one
// match.
type Batch struct {
	Goals         []Goal
	Cards         []Card
	Substitutions []Substitution
	Lineups       []LineupEntry
}

func (b *Batch) Add(e Event) {
	switch v := e.(type) {
	case Goal:
		b.Goals = append(b.Goals, v)
	case Card:
		b.Cards = append(b.Cards, v)
	case Substitution:
		b.Substitutions = append(b.Substitutions, v)
	case LineupEntry:
		b.Lineups = append(b.Lineups, v)
	}
}

func (b Batch) Counts() Counts {
	return Counts{
		Goals:         len(b.Goals),
		Cards:         len(b.Cards),
		Substitutions: len(b.Substitutions),
		Lineups:       len(b.Lineups),
	}
}

func (b Batch) Len() int {
	return b.Counts().Total()
}

// LoadResult reports what one match commit did. Conflicts are rows the
// storage unique indexes swallowed.
type LoadResult struct {
	Inserted  Counts
	Conflicts Counts
}
