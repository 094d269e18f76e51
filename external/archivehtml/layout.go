package archivehtml

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Format distinguishes the two single-match page generations.
type Format string

const (
	FormatModern Format = "modern"
	FormatLegacy Format = "legacy"
)

// Layout is the result of inspecting a page. It is one of SingleMatch,
// MultiMatchFriendly or Unrecognized.
type Layout interface {
	layout()
	String() string
}

type SingleMatch struct {
	Format Format
}

type MultiMatchFriendly struct {
	Blocks int
}

type Unrecognized struct {
	Reason string
}

func (SingleMatch) layout()        {}
func (MultiMatchFriendly) layout() {}
func (Unrecognized) layout()       {}

func (l SingleMatch) String() string        { return "single_match/" + string(l.Format) }
func (l MultiMatchFriendly) String() string { return fmt.Sprintf("multi_match_friendly/%d", l.Blocks) }
func (l Unrecognized) String() string       { return "unrecognized: " + l.Reason }

const (
	selectorModernInfo = "table.spielinfo"
	selectorTextBlock  = "div.spiel"
)

// Detect classifies a parsed page by its structural markers.
func Detect(doc *goquery.Document) Layout {
	if doc == nil || doc.Selection == nil {
		return Unrecognized{Reason: "empty document"}
	}
	if doc.Find(selectorModernInfo).Length() > 0 {
		return SingleMatch{Format: FormatModern}
	}

	switch blocks := doc.Find(selectorTextBlock).Length(); {
	case blocks > 1:
		return MultiMatchFriendly{Blocks: blocks}
	case blocks == 1:
		return SingleMatch{Format: FormatLegacy}
	}

	if doc.Find("body").Children().Length() == 0 {
		return Unrecognized{Reason: "empty document"}
	}
	return Unrecognized{Reason: "no match report markers"}
}
