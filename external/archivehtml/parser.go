package archivehtml

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/riskibarqy/archive-ingest/internal/platform/logging"
)

var ErrUnrecognizedLayout = crerr.New("unrecognized layout")

// LayoutParseError reports a file whose markup could not be turned into at
// least one match block.
type LayoutParseError struct {
	Path   string
	Reason string
}

func (e *LayoutParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

func (e *LayoutParseError) Unwrap() error {
	return ErrUnrecognizedLayout
}

type Parser struct {
	logger *logging.Logger
}

func NewParser(logger *logging.Logger) *Parser {
	if logger == nil {
		logger = logging.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile detects the page layout and extracts its match blocks. The
// returned blocks are in page order. Parsing never touches storage.
func (p *Parser) ParseFile(path string, markup []byte) (Layout, []RawBlock, error) {
	if len(bytes.TrimSpace(markup)) == 0 {
		layout := Unrecognized{Reason: "empty document"}
		return layout, nil, &LayoutParseError{Path: path, Reason: layout.Reason}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decodeMarkup(markup)))
	if err != nil {
		layout := Unrecognized{Reason: "malformed markup"}
		return layout, nil, &LayoutParseError{Path: path, Reason: fmt.Sprintf("malformed markup: %v", err)}
	}

	layout := Detect(doc)
	switch l := layout.(type) {
	case SingleMatch:
		var block RawBlock
		if l.Format == FormatModern {
			block = parseModern(doc.Selection)
		} else {
			block = parseTextBlock(doc.Find(selectorTextBlock).First())
		}
		if !block.HasTeams() {
			return layout, nil, &LayoutParseError{Path: path, Reason: "match block has no teams"}
		}
		return layout, []RawBlock{block}, nil

	case MultiMatchFriendly:
		blocks := make([]RawBlock, 0, l.Blocks)
		doc.Find(selectorTextBlock).Each(func(i int, sel *goquery.Selection) {
			block := parseTextBlock(sel)
			block.Index = i
			if !block.HasTeams() {
				p.logger.Debug("skip friendly block without teams", "file", path, "block", i)
				return
			}
			blocks = append(blocks, block)
		})
		if len(blocks) == 0 {
			return layout, nil, &LayoutParseError{Path: path, Reason: "no friendly block has teams"}
		}
		return layout, blocks, nil

	case Unrecognized:
		return layout, nil, &LayoutParseError{Path: path, Reason: l.Reason}
	}

	return layout, nil, &LayoutParseError{Path: path, Reason: "unsupported layout " + layout.String()}
}

// decodeMarkup converts older Windows-1252 pages to UTF-8.
func decodeMarkup(markup []byte) []byte {
	if utf8.Valid(markup) {
		return markup
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(markup)
	if err != nil {
		return markup
	}
	return decoded
}

var lineBreakingElements = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true,
	"table": true, "ul": true, "ol": true,
}

// textLines flattens a selection into visible lines, breaking on <br> and
// block-level elements.
func textLines(sel *goquery.Selection) []string {
	var (
		lines   []string
		current strings.Builder
	)
	flush := func() {
		line := strings.Join(strings.Fields(current.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			switch name := goquery.NodeName(child); {
			case name == "#text":
				current.WriteString(child.Text())
			case name == "br":
				flush()
			case name == "script" || name == "style" || name == "#comment":
			case lineBreakingElements[name]:
				flush()
				walk(child)
				flush()
			default:
				current.WriteByte(' ')
				walk(child)
				current.WriteByte(' ')
			}
		})
	}
	walk(sel)
	flush()
	return lines
}

func cellText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
