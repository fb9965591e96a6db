package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/StockPulse/internal/dashboard"
	"github.com/dyike/StockPulse/internal/display"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	priceStyle = lipgloss.NewStyle().
		Bold(true)

	captionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	cardStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#D1D5DB")).
		Padding(0, 1).
		Width(78)

	headlineStyle = lipgloss.NewStyle().
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(display.ColorDown)).
		Bold(true)
)

func renderBanner() string {
	return titleStyle.Render("StockPulse · US quotes and news")
}

func renderError(msg string) string {
	return errorStyle.Render(msg)
}

// renderResult lays out a lookup for the terminal: price block first, then
// one bordered card per headline.
func renderResult(res *dashboard.Result, now time.Time, loc *time.Location, windowDays int) string {
	q := res.Quote
	var sb strings.Builder

	changeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(display.ChangeColor(q.Change)))

	sb.WriteString(titleStyle.Render(q.Symbol))
	sb.WriteString("\n")
	sb.WriteString(priceStyle.Render(display.Price(q.LastPrice) + " USD"))
	sb.WriteString("  ")
	sb.WriteString(changeStyle.Render(display.ChangeText(q.Change, q.ChangePct)))
	sb.WriteString("\n")
	sb.WriteString(captionStyle.Render(fmt.Sprintf("%s · Prev close: %s USD · %s",
		display.PriceLabel(q.IsMarketOpen), display.Price(q.PrevClose), q.Session.Label)))
	sb.WriteString("\n\n")

	if len(res.News) == 0 {
		sb.WriteString(captionStyle.Render(display.NoNewsMessage(windowDays)))
		return sb.String()
	}

	for _, item := range res.News {
		var card strings.Builder
		card.WriteString(headlineStyle.Render(item.DisplayTitle()))
		if summary := item.DisplaySummary(); summary != "" {
			card.WriteString("\n")
			card.WriteString(summary)
		}

		meta := item.Publisher
		if rel := display.RelativeTime(item.Published, now, loc); rel != "" {
			meta += " · " + rel
		}
		card.WriteString("\n")
		card.WriteString(captionStyle.Render(meta))
		if item.Link != "" {
			card.WriteString("\n")
			card.WriteString(captionStyle.Render(item.Link))
		}

		sb.WriteString(cardStyle.Render(card.String()))
		sb.WriteString("\n")
	}
	return sb.String()
}
