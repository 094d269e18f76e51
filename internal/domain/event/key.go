package event

// Sentinels stand in for NULL key components. Storage unique indexes use the
// same values via COALESCE so both dedup layers agree.
const (
	NoPlayer   int64 = 0
	NoMinute         = -1
	NoStoppage       = -1
)

// NaturalKey identifies an event within a match. It is comparable and can be
// used directly as a map key.
type NaturalKey struct {
	Kind     Kind
	MatchID  int64
	First    int64
	Second   int64
	Minute   int
	Stoppage int
	Card     CardType
}

func (g Goal) Key() NaturalKey {
	return NaturalKey{
		Kind:     KindGoal,
		MatchID:  g.MatchID,
		First:    derefID(g.ScorerID),
		Minute:   derefMinute(g.Minute),
		Stoppage: derefMinute(g.Stoppage),
	}
}

func (c Card) Key() NaturalKey {
	return NaturalKey{
		Kind:     KindCard,
		MatchID:  c.MatchID,
		First:    c.PlayerID,
		Minute:   derefMinute(c.Minute),
		Stoppage: derefMinute(c.Stoppage),
		Card:     c.Type,
	}
}

func (s Substitution) Key() NaturalKey {
	return NaturalKey{
		Kind:     KindSubstitution,
		MatchID:  s.MatchID,
		First:    s.PlayerOnID,
		Second:   s.PlayerOffID,
		Minute:   derefMinute(s.Minute),
		Stoppage: derefMinute(s.Stoppage),
	}
}

func (l LineupEntry) Key() NaturalKey {
	return NaturalKey{
		Kind:     KindLineup,
		MatchID:  l.MatchID,
		First:    l.PlayerID,
		Second:   l.TeamID,
		Minute:   NoMinute,
		Stoppage: NoStoppage,
	}
}

func derefID(v *int64) int64 {
	if v == nil {
		return NoPlayer
	}
	return *v
}

func derefMinute(v *int) int {
	if v == nil {
		return NoMinute
	}
	return *v
}

type StageOutcome int

const (
	Staged StageOutcome = iota + 1
	Duplicate
)

func (o StageOutcome) String() string {
	switch o {
	case Staged:
		return "staged"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Deduper holds the natural keys staged for one match. It is not safe for
// concurrent use; each match gets its own.
type Deduper struct {
	seen       map[NaturalKey]struct{}
	duplicates Counts
}

func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[NaturalKey]struct{})}
}

func (d *Deduper) Stage(e Event) StageOutcome {
	key := e.Key()
	if _, ok := d.seen[key]; ok {
		d.duplicates.Add(e.Kind(), 1)
		return Duplicate
	}
	d.seen[key] = struct{}{}
	return Staged
}

func (d *Deduper) Duplicates() Counts {
	return d.duplicates
}
