// Package display formats quotes and news for the web page and the terminal.
package display

import (
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ColorUp   = "#00C805"
	ColorDown = "#FF333A"
	ColorFlat = "#666666"
)

var hundred = decimal.NewFromInt(100)

// ChangeColor picks green, red or grey by the sign of change.
func ChangeColor(change decimal.Decimal) string {
	switch change.Sign() {
	case 1:
		return ColorUp
	case -1:
		return ColorDown
	default:
		return ColorFlat
	}
}

// ChangeText renders "+2.00 (+1.35%)". pct is a fraction, not a percentage.
// The plus sign is only shown for strictly positive changes.
func ChangeText(change, pct decimal.Decimal) string {
	sign := ""
	if change.Sign() > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%s (%s%s%%)", sign, change.StringFixed(2), sign, pct.Mul(hundred).StringFixed(2))
}

// ChangeHTML is ChangeText wrapped in a colored bold span.
func ChangeHTML(change, pct decimal.Decimal) template.HTML {
	return template.HTML(fmt.Sprintf(
		`<span style="color:%s;font-weight:700">%s</span>`,
		ChangeColor(change),
		template.HTMLEscapeString(ChangeText(change, pct)),
	))
}

func Price(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// RelativeTime describes how long before now t happened, in whole units.
// Both instants are viewed in loc. A zero t renders as "".
func RelativeTime(t, now time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	delta := now.In(loc).Sub(t.In(loc))

	switch {
	case delta < time.Minute:
		return "just now"
	case delta < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(delta/time.Minute))
	case delta < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(delta/time.Hour))
	default:
		return fmt.Sprintf("%d days ago", int(delta/(24*time.Hour)))
	}
}

func PriceLabel(open bool) string {
	if open {
		return "Intraday price"
	}
	return "After-hours / close"
}

// NoNewsMessage is shown when the news window holds no items.
func NoNewsMessage(windowDays int) string {
	if windowDays == 1 {
		return "No major news in the last day."
	}
	return fmt.Sprintf("No major news in the last %d days.", windowDays)
}
