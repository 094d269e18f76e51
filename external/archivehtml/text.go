package archivehtml

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
)

var (
	keyLineRegex    = regexp.MustCompile(`^([A-Za-zÄÖÜäöüß][^:]{0,60}?)\s*:\s*(.*)$`)
	scoreTokenRegex = regexp.MustCompile(`(?:^|[\s,;])(\d{1,2}\s?:\s?\d{1,2})(?:[\s,;]|$)`)
	leadingMinute   = regexp.MustCompile(`^(\d{1,3}\.?(?:\s?\+\s?\d{1,2}\.?)?'?|\?)\s+`)
	subSeparator    = regexp.MustCompile(`(?i)\s+(?:für|fuer|for|f\.)\s+`)
)

var goalNoteWords = map[string]bool{
	"fe": true, "he": true, "et": true, "elfmeter": true, "foulelfmeter": true,
	"handelfmeter": true, "strafstoss": true, "eigentor": true, "kopfball": true,
	"freistoss": true, "abstauber": true, "penalty": true, "own goal": true, "og": true,
}

var cardKeys = map[string]string{
	"gelb":         "gelb",
	"gelbe":        "gelb",
	"rot":          "rot",
	"rote":         "rot",
	"gelb rot":     "gelb-rot",
	"gelbrot":      "gelb-rot",
	"gelb rote":    "gelb-rot",
	"platzverweis": "rot",
}

var lineupSeparators = []string{",", ";", " - ", " – "}

// parseTextBlock reads one div.spiel report: a heading followed by
// "Key: value" lines. Unkeyed lines continue the previous key.
func parseTextBlock(sel *goquery.Selection) RawBlock {
	var block RawBlock
	if sel == nil || sel.Length() == 0 {
		return block
	}

	lines := textLines(sel)
	heading := cellText(sel.Find("h1, h2, h3, h4, b").First())
	if len(lines) > 0 && (heading == "" || strings.HasPrefix(lines[0], heading)) {
		// a <b> heading may share its line with the halftime score.
		heading = lines[0]
	}
	if home, away, score, label, ok := splitHeading(heading); ok {
		block.HomeTeam, block.AwayTeam = home, away
		if score != "" {
			block.Result, _ = ParseResult(score)
		}
		if label != "" {
			if date := ParseDate(label); date != nil {
				block.Date = date
			} else {
				block.Competition = label
			}
		}
	}

	links := profileLinks(sel)

	type entry struct {
		key   string
		value string
	}
	var entries []entry
	for _, line := range lines {
		if line == heading {
			continue
		}
		if m := keyLineRegex.FindStringSubmatch(line); m != nil {
			entries = append(entries, entry{key: identity.NormalizeName(m[1]), value: strings.TrimSpace(m[2])})
			continue
		}
		if len(entries) > 0 {
			last := &entries[len(entries)-1]
			if last.value == "" {
				last.value = line
			} else {
				last.value += ", " + line
			}
		}
	}

	lineupCount := 0
	for _, e := range entries {
		if e.value == "" || applyInfo(&block, e.key, e.value) {
			continue
		}

		word := firstWord(e.key)
		suffix := strings.TrimSpace(strings.TrimPrefix(e.key, word))
		switch {
		case word == "aufstellung" || word == "lineup" || word == "mannschaft":
			side := sideOf(suffix, block.HomeTeam, block.AwayTeam)
			if suffix == "" && lineupCount > 0 {
				// A second unlabeled lineup belongs to the away side.
				side = SideAway
				if lineupCount == 1 {
					for i := range block.Lineups {
						if block.Lineups[i].Side == SideUnknown {
							block.Lineups[i].Side = SideHome
						}
					}
				}
			}
			lineupCount++
			block.Lineups = append(block.Lineups, textLineup(e.value, side, true, links)...)
		case word == "ersatz" || word == "ersatzbank" || word == "bank":
			block.Lineups = append(block.Lineups, textLineup(e.value, sideOf(suffix, block.HomeTeam, block.AwayTeam), false, links)...)
		case word == "trainer" || word == "coach":
			block.Coaches = append(block.Coaches, textCoaches(e.value, sideOf(suffix, block.HomeTeam, block.AwayTeam))...)
		case word == "tore" || word == "torfolge" || word == "goals":
			block.Goals = append(block.Goals, textGoals(e.value)...)
		case word == "karten" || word == "cards":
			block.Cards = append(block.Cards, textCards(e.value, "")...)
		case cardKeys[e.key] != "":
			block.Cards = append(block.Cards, textCards(e.value, cardKeys[e.key])...)
		case word == "wechsel" || word == "auswechslungen" || word == "substitutions":
			block.Substitutions = append(block.Substitutions, textSubstitutions(e.value)...)
		}
	}

	return block
}

func profileLinks(sel *goquery.Selection) map[string]string {
	links := make(map[string]string)
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		name := identity.NormalizeName(a.Text())
		href, _ := a.Attr("href")
		if name != "" && href != "" {
			links[name] = strings.TrimSpace(href)
		}
	})
	return links
}

func textLineup(value string, side Side, starter bool, links map[string]string) []RawLineupEntry {
	var out []RawLineupEntry
	for _, token := range splitOutsideParens(value, lineupSeparators...) {
		name := strings.TrimSpace(parenRegex.ReplaceAllString(token, ""))
		if name == "" {
			continue
		}
		out = append(out, RawLineupEntry{
			Side:    side,
			Player:  RawPerson{Name: name, Profile: identity.Profile{URL: links[identity.NormalizeName(name)]}},
			Starter: starter,
		})
	}
	return out
}

func textCoaches(value string, side Side) []RawCoach {
	if side != SideUnknown {
		return []RawCoach{{Side: side, Name: stripTrailingParen(value)}}
	}
	parts := splitOutsideParens(value, " - ", " – ", ";")
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return []RawCoach{{Side: SideUnknown, Name: stripTrailingParen(parts[0])}}
	default:
		return []RawCoach{
			{Side: SideHome, Name: stripTrailingParen(parts[0])},
			{Side: SideAway, Name: stripTrailingParen(parts[1])},
		}
	}
}

// textGoals segments "1:0 Walter (12.), 1:1 Meier (30., FE)" by its running
// scores. Without scores, entries are read as "Name (minute)".
func textGoals(value string) []RawGoal {
	matches := scoreTokenRegex.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		var out []RawGoal
		for _, token := range splitOutsideParens(value, ",", ";") {
			if goal, ok := goalFromFragment("", token); ok {
				out = append(out, goal)
			}
		}
		return out
	}

	out := make([]RawGoal, 0, len(matches))
	for i, m := range matches {
		start, end := m[2], m[3]
		next := len(value)
		if i+1 < len(matches) {
			next = matches[i+1][2]
		}
		score := strings.ReplaceAll(value[start:end], " ", "")
		if goal, ok := goalFromFragment(score, value[end:next]); ok {
			out = append(out, goal)
		}
	}
	return out
}

func goalFromFragment(score, fragment string) (RawGoal, bool) {
	goal := RawGoal{Score: score}
	text := strings.Trim(strings.TrimSpace(fragment), ",; ")

	if m := leadingMinute.FindStringSubmatch(text); m != nil {
		goal.Minute = strings.TrimSpace(m[1])
		text = strings.TrimSpace(text[len(m[0]):])
	}

	var notes []string
	for _, paren := range parenRegex.FindAllStringSubmatch(text, -1) {
		for _, part := range strings.Split(paren[1], ",") {
			part = strings.TrimSpace(part)
			switch {
			case part == "":
			case IsMinute(part) && goal.Minute == "":
				goal.Minute = part
			case goalNoteWords[identity.NormalizeName(part)]:
				notes = append(notes, part)
			case goal.Assist == "" && part != "?":
				goal.Assist = part
			}
		}
	}
	text = strings.TrimSpace(parenRegex.ReplaceAllString(text, ""))

	// "FE Walter" or "Eigentor Meier" puts the description first.
	if first, rest, ok := strings.Cut(text, " "); ok && goalNoteWords[identity.NormalizeName(first)] {
		notes = append(notes, strings.TrimRight(first, ","))
		text = strings.TrimSpace(rest)
	}

	goal.Scorer = text
	goal.Note = strings.Join(notes, ", ")
	if goal.Scorer == "" && goal.Score == "" {
		return RawGoal{}, false
	}
	return goal, true
}

// textCards reads "Walter (12.), Meier (80., rot)". defaultCard applies when
// the entry names no card itself.
func textCards(value, defaultCard string) []RawCard {
	var out []RawCard
	for _, token := range splitOutsideParens(value, ",", ";") {
		card := RawCard{Card: defaultCard}
		text := token
		if m := leadingMinute.FindStringSubmatch(text); m != nil {
			card.Minute = strings.TrimSpace(m[1])
			text = text[len(m[0]):]
		}
		for _, paren := range parenRegex.FindAllStringSubmatch(text, -1) {
			for _, part := range strings.Split(paren[1], ",") {
				part = strings.TrimSpace(part)
				switch {
				case part == "":
				case IsMinute(part) && card.Minute == "":
					card.Minute = part
				case card.Card == "" || cardKeys[identity.NormalizeName(part)] != "":
					card.Card = part
				}
			}
		}
		text = strings.TrimSpace(parenRegex.ReplaceAllString(text, ""))
		if first, rest, ok := strings.Cut(text, " "); ok {
			if kind := cardKeys[identity.NormalizeName(first)]; kind != "" {
				card.Card = kind
				text = strings.TrimSpace(rest)
			}
		}
		card.Player = text
		if card.Player != "" {
			out = append(out, card)
		}
	}
	return out
}

// textSubstitutions reads "46. Müller für Becker" and "Müller for Becker (46.)".
func textSubstitutions(value string) []RawSubstitution {
	var out []RawSubstitution
	for _, token := range splitOutsideParens(value, ",", ";") {
		var sub RawSubstitution
		text := token
		if m := leadingMinute.FindStringSubmatch(text); m != nil {
			sub.Minute = strings.TrimSpace(m[1])
			text = text[len(m[0]):]
		}
		for _, paren := range parenRegex.FindAllStringSubmatch(text, -1) {
			if IsMinute(paren[1]) && sub.Minute == "" {
				sub.Minute = strings.TrimSpace(paren[1])
			}
		}
		text = strings.TrimSpace(parenRegex.ReplaceAllString(text, ""))

		parts := subSeparator.Split(text, 2)
		if len(parts) != 2 {
			continue
		}
		sub.On = strings.TrimSpace(parts[0])
		sub.Off = strings.TrimSpace(parts[1])
		if sub.On != "" && sub.Off != "" {
			out = append(out, sub)
		}
	}
	return out
}
