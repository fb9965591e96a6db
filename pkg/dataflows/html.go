package dataflows

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML drops tags, decodes entities exactly once and collapses
// whitespace so a provider summary can be shown as plain text. Tags that
// only appear after decoding (feeds that escape their markup) are dropped
// too, but a doubly escaped entity keeps its one remaining level.
func StripHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return stripHTMLTags(html.UnescapeString(raw))
	}

	var parts []string
	collectText(doc.Selection, &parts)
	return collapseSpace(strings.Join(parts, " "))
}

// collectText gathers text nodes depth-first, skipping script and style.
// Text node content is already entity-decoded by the parser.
func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			*parts = append(*parts, htmlTagRegex.ReplaceAllString(c.Text(), " "))
		case "script", "style":
		default:
			collectText(c, parts)
		}
	})
}

func stripHTMLTags(content string) string {
	return collapseSpace(htmlTagRegex.ReplaceAllString(content, " "))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
