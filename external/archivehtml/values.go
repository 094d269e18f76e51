package archivehtml

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/archive-ingest/internal/domain/identity"
	"github.com/riskibarqy/archive-ingest/internal/domain/match"
)

var (
	exactDateRegex  = regexp.MustCompile(`(\d{1,2})\.\s?(\d{1,2})\.\s?(\d{4})`)
	monthYearRegex  = regexp.MustCompile(`([a-zäöü]+)\.?\s+(\d{4})`)
	yearOnlyRegex   = regexp.MustCompile(`^(\d{4})$`)
	approxMarkRegex = regexp.MustCompile(`(?i)\b(?:ca\.?|circa|um|etwa)(?:\s|$)`)
	// a marker directly in front of the date, month or year token.
	approxDateRegex  = regexp.MustCompile(`(?i)(?:^|[\s,(])(?:ca\.?|circa|um|etwa)\s*(?:\d{1,2}\.\s?\d{1,2}\.|[a-zäöü]+\.?\s+\d{4}|\d{4}\b)`)
	scoreRegex       = regexp.MustCompile(`^\s*(\d{1,2})\s*:\s*(\d{1,2})`)
	pairRegex        = regexp.MustCompile(`(\d{1,2})\s*:\s*(\d{1,2})`)
	parenRegex       = regexp.MustCompile(`\(([^)]*)\)`)
	extraTimeRegex   = regexp.MustCompile(`(?i)n\.\s?V\.?|nach verl|a\.e\.t`)
	penaltyRegex     = regexp.MustCompile(`(?i)(?:(\d{1,2})\s*:\s*(\d{1,2})\s*(?:i\.\s?E\.?|n\.\s?E\.?|pen\.?))|(?:(?:i\.\s?E\.?|n\.\s?E\.?|pen\.?)\s*(\d{1,2})\s*:\s*(\d{1,2}))`)
	penaltyMarkRegex = regexp.MustCompile(`(?i)i\.\s?E|n\.\s?E|pen`)
	attendanceRegex  = regexp.MustCompile(`\d{1,3}(?:[.,\s]\d{3})+|\d+`)
	minuteRegex      = regexp.MustCompile(`^(\d{1,3})\.?\s*(?:\+\s*(\d{1,2})\.?)?$`)
	trailingParen    = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "januar": time.January, "jänner": time.January, "january": time.January,
	"feb": time.February, "februar": time.February, "february": time.February,
	"mär": time.March, "märz": time.March, "maerz": time.March, "marz": time.March, "march": time.March, "mar": time.March,
	"apr": time.April, "april": time.April,
	"mai": time.May, "may": time.May,
	"jun": time.June, "juni": time.June, "june": time.June,
	"jul": time.July, "juli": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"okt": time.October, "oktober": time.October, "oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dez": time.December, "dezember": time.December, "dec": time.December, "december": time.December,
}

const (
	minArchiveYear = 1850
	maxArchiveYear = 2100
)

// ParseDate understands "20.10.1973", "ca. Oktober 1908", "ca. May 1910" and
// "ca. 1908". It returns nil when nothing usable is found.
func ParseDate(raw string) *Date {
	s := identity.CollapseSpaces(raw)
	if s == "" {
		return nil
	}
	approx := approxDateRegex.MatchString(s)

	if m := exactDateRegex.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if validYear(year) && month >= 1 && month <= 12 && day >= 1 {
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			// time.Date normalizes 31.02. into March; reject that.
			if t.Day() == day && int(t.Month()) == month {
				return &Date{Time: t, Approximate: approx}
			}
		}
	}

	lower := strings.ToLower(s)
	for _, m := range monthYearRegex.FindAllStringSubmatch(lower, -1) {
		month, ok := monthNames[m[1]]
		if !ok {
			continue
		}
		year, _ := strconv.Atoi(m[2])
		if !validYear(year) {
			continue
		}
		return &Date{Time: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), Approximate: true}
	}

	bare := strings.TrimSpace(approxMarkRegex.ReplaceAllString(s, " "))
	if m := yearOnlyRegex.FindStringSubmatch(bare); m != nil {
		year, _ := strconv.Atoi(m[1])
		if validYear(year) {
			return &Date{Time: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), Approximate: true}
		}
	}
	return nil
}

func validYear(y int) bool {
	return y >= minArchiveYear && y <= maxArchiveYear
}

// ParseResult reads "A:B", "A:B (h:h)", "A:B (h:h, r:r) n.V." and penalty
// suffixes like "5:4 i.E." or "i.E. 5:4".
func ParseResult(raw string) (match.Result, bool) {
	s := identity.CollapseSpaces(raw)
	m := scoreRegex.FindStringSubmatch(s)
	if m == nil {
		return match.Result{}, false
	}

	result := match.Result{Final: pairScore(m[1], m[2])}
	rest := s[len(m[0]):]

	if pm := penaltyRegex.FindStringSubmatch(rest); pm != nil {
		if pm[1] != "" {
			result.Penalties = pairScore(pm[1], pm[2])
		} else {
			result.Penalties = pairScore(pm[3], pm[4])
		}
	}
	result.AfterExtraTime = extraTimeRegex.MatchString(rest)

	for _, paren := range parenRegex.FindAllStringSubmatch(rest, -1) {
		var pairs []*match.Score
		for _, part := range strings.Split(paren[1], ",") {
			if penaltyMarkRegex.MatchString(part) || extraTimeRegex.MatchString(part) {
				continue
			}
			if pm := pairRegex.FindStringSubmatch(part); pm != nil {
				pairs = append(pairs, pairScore(pm[1], pm[2]))
			}
		}
		if len(pairs) > 0 && result.HalfTime == nil {
			result.HalfTime = pairs[0]
		}
		if len(pairs) > 1 && result.Regulation == nil {
			result.Regulation = pairs[1]
			result.AfterExtraTime = true
		}
	}
	return result, true
}

// ParseScore reads a running score such as "2:1". It returns nil for
// anything else.
func ParseScore(raw string) *match.Score {
	m := pairRegex.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	return pairScore(m[1], m[2])
}

func pairScore(home, away string) *match.Score {
	h, _ := strconv.Atoi(home)
	a, _ := strconv.Atoi(away)
	return &match.Score{Home: h, Away: a}
}

// ParseAttendance reads "34.000", "ca. 5 000" or "12000". Text such as
// "ausverkauft" yields nil.
func ParseAttendance(raw string) *int {
	m := attendanceRegex.FindString(raw)
	if m == "" {
		return nil
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m)
	v, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &v
}

// ParseMinute reads "12.", "45.+2", "90+3'" and returns nil pointers for "?"
// or anything unparseable. Range checks are left to validation.
func ParseMinute(raw string) (minute, stoppage *int) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "'")
	s = strings.TrimSuffix(s, "’")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || strings.Contains(s, "?") {
		return nil, nil
	}
	m := minuteRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, nil
	}
	minute = &v
	if m[2] != "" {
		if st, err := strconv.Atoi(m[2]); err == nil {
			stoppage = &st
		}
	}
	return minute, stoppage
}

// IsMinute reports whether raw looks like a minute annotation.
func IsMinute(raw string) bool {
	s := strings.ReplaceAll(strings.TrimSuffix(strings.TrimSpace(raw), "'"), " ", "")
	return s == "?" || minuteRegex.MatchString(s)
}

// stripTrailingParen drops a trailing "(...)" such as a referee's home town.
func stripTrailingParen(s string) string {
	return strings.TrimSpace(trailingParen.ReplaceAllString(s, ""))
}

// sideOf maps a side column ("heim", "gast", a team name) onto home/away.
func sideOf(raw, home, away string) Side {
	v := identity.NormalizeName(raw)
	switch v {
	case "":
		return SideUnknown
	case "heim", "home", "h", "1":
		return SideHome
	case "gast", "away", "auswarts", "g", "a", "2":
		return SideAway
	}
	if h := identity.NormalizeName(home); h != "" && (v == h || strings.Contains(h, v) || strings.Contains(v, h)) {
		return SideHome
	}
	if a := identity.NormalizeName(away); a != "" && (v == a || strings.Contains(a, v) || strings.Contains(v, a)) {
		return SideAway
	}
	return SideUnknown
}

// splitOutsideParens splits s on any of seps that is not inside parentheses.
// Multi-character separators are matched literally.
func splitOutsideParens(s string, seps ...string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 {
			matched := ""
			for _, sep := range seps {
				if strings.HasPrefix(s[i:], sep) {
					matched = sep
					break
				}
			}
			if matched != "" {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					out = append(out, part)
				}
				i += len(matched)
				start = i
				continue
			}
		}
		i++
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		out = append(out, part)
	}
	return out
}
