package archivehtml

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
)

// headingRegex matches "Home - Away", "Home - Away 2:1 (1:0)" and an optional
// "Label: " prefix.
var headingRegex = regexp.MustCompile(`^(?:([^:]+):\s+)?(.+?)\s+[-–]\s+(.+?)(?:\s+(\d{1,2}\s*:\s*\d{1,2}.*))?$`)

var digitsRegex = regexp.MustCompile(`\d+`)

func parseModern(root *goquery.Selection) RawBlock {
	var block RawBlock

	root.Find("table.spielinfo tr").Each(func(_ int, row *goquery.Selection) {
		key := identity.NormalizeName(cellText(row.Find("th").First()))
		value := cellText(row.Find("td").First())
		if key == "" || value == "" {
			return
		}
		applyInfo(&block, key, value)
	})

	if heading := cellText(root.Find("h1.begegnung").First()); heading != "" {
		if home, away, score, _, ok := splitHeading(heading); ok {
			block.HomeTeam, block.AwayTeam = home, away
			if !block.Result.Known() && score != "" {
				block.Result, _ = ParseResult(score)
			}
		}
	}
	if block.HomeTeam == "" {
		block.HomeTeam = cellText(root.Find("table.aufstellung.heim caption").First())
	}
	if block.AwayTeam == "" {
		block.AwayTeam = cellText(root.Find("table.aufstellung.gast caption").First())
	}

	parseModernLineup(&block, root.Find("table.aufstellung.heim").First(), SideHome)
	parseModernLineup(&block, root.Find("table.aufstellung.gast").First(), SideAway)

	root.Find("table.tore tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("td").Length() == 0 {
			return
		}
		goal := RawGoal{
			Minute: cellText(row.Find("td.minute")),
			Score:  cellText(row.Find("td.stand")),
			Scorer: cellText(row.Find("td.torschuetze")),
			Assist: cellText(row.Find("td.vorlage")),
			Note:   cellText(row.Find("td.art")),
			Side:   sideOf(cellText(row.Find("td.team")), block.HomeTeam, block.AwayTeam),
		}
		if goal.Scorer == "" && goal.Score == "" {
			return
		}
		block.Goals = append(block.Goals, goal)
	})

	root.Find("table.karten tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("td").Length() == 0 {
			return
		}
		card := RawCard{
			Minute: cellText(row.Find("td.minute")),
			Side:   sideOf(cellText(row.Find("td.team")), block.HomeTeam, block.AwayTeam),
			Player: cellText(row.Find("td.spieler")),
			Card:   cellText(row.Find("td.karte")),
		}
		if card.Player == "" {
			return
		}
		block.Cards = append(block.Cards, card)
	})

	root.Find("table.wechsel tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("td").Length() == 0 {
			return
		}
		sub := RawSubstitution{
			Minute: cellText(row.Find("td.minute")),
			Side:   sideOf(cellText(row.Find("td.team")), block.HomeTeam, block.AwayTeam),
			On:     cellText(row.Find("td.ein")),
			Off:    cellText(row.Find("td.aus")),
		}
		if sub.On == "" && sub.Off == "" {
			return
		}
		block.Substitutions = append(block.Substitutions, sub)
	})

	return block
}

func parseModernLineup(block *RawBlock, table *goquery.Selection, side Side) {
	if table.Length() == 0 {
		return
	}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.HasClass("trainer") {
			if name := cellText(row.Find("td").Last()); name != "" {
				block.Coaches = append(block.Coaches, RawCoach{Side: side, Name: name})
			}
			return
		}

		cell := row.Find("td.spieler").First()
		if cell.Length() == 0 {
			return
		}
		person := RawPerson{Name: cellText(cell), Profile: profileFrom(cell)}
		if person.Name == "" {
			return
		}
		block.Lineups = append(block.Lineups, RawLineupEntry{
			Side:    side,
			Player:  person,
			Starter: !row.HasClass("ersatz"),
			SubOn:   cellText(row.Find("td.ein")),
			SubOff:  cellText(row.Find("td.aus")),
		})
	})
}

// profileFrom reads the profile link and data-* attributes of a player cell.
// Attributes may sit on the cell or on its link.
func profileFrom(cell *goquery.Selection) identity.Profile {
	link := cell.Find("a[href]").First()
	attr := func(name string) string {
		if v, ok := link.Attr(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		v, _ := cell.Attr(name)
		return strings.TrimSpace(v)
	}

	profile := identity.Profile{
		BirthPlace:  attr("data-geburtsort"),
		Nationality: attr("data-nation"),
		Position:    attr("data-position"),
	}
	if href, ok := link.Attr("href"); ok {
		profile.URL = strings.TrimSpace(href)
	}
	if born := ParseDate(attr("data-geboren")); born != nil && !born.Approximate {
		t := born.Time
		profile.BirthDate = &t
	}
	profile.HeightCM = parseMeasure(attr("data-groesse"))
	profile.WeightKG = parseMeasure(attr("data-gewicht"))
	return profile
}

// parseMeasure reads "182", "182 cm" or "1,82 m" as a whole number.
func parseMeasure(raw string) *int {
	if raw == "" {
		return nil
	}
	digits := strings.Join(digitsRegex.FindAllString(raw, -1), "")
	v, err := strconv.Atoi(digits)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// applyInfo stores one "key: value" metadata pair. It reports whether the key
// was recognized.
func applyInfo(block *RawBlock, key, value string) bool {
	switch firstWord(key) {
	case "wettbewerb", "competition", "liga":
		block.Competition = value
	case "runde", "spieltag", "round":
		block.Round = value
	case "datum", "date":
		block.Date = ParseDate(value)
	case "stadion", "ort", "platz", "venue":
		block.Venue = value
	case "zuschauer", "attendance":
		block.Attendance = ParseAttendance(value)
	case "schiedsrichter", "sr", "referee":
		block.Referee = stripTrailingParen(value)
	case "ergebnis", "result", "endstand":
		if result, ok := ParseResult(value); ok {
			block.Result = result
		}
	default:
		return false
	}
	return true
}

func firstWord(key string) string {
	if i := strings.IndexByte(key, ' '); i >= 0 {
		return key[:i]
	}
	return key
}

// splitHeading splits "Label: Home - Away 2:1" into its parts.
func splitHeading(heading string) (home, away, score, label string, ok bool) {
	m := headingRegex.FindStringSubmatch(identity.CollapseSpaces(heading))
	if m == nil {
		return "", "", "", "", false
	}
	return strings.TrimSpace(m[2]), strings.TrimSpace(m[3]), strings.TrimSpace(m[4]), strings.TrimSpace(m[1]), true
}
