package web

import (
	"fmt"
	"html/template"
	"time"

	"github.com/dyike/StockPulse/internal/dashboard"
	"github.com/dyike/StockPulse/internal/display"
)

const (
	msgNotFound   = "Stock not found. Check the symbol or your connection."
	msgEmptyInput = "Please enter a stock symbol."
)

type pageView struct {
	Symbol        string
	DefaultSymbol string
	Error         string
	Quote         *quoteView
	News          []newsView
	EmptyNews     string
}

type quoteView struct {
	Symbol  string
	Price   string
	Change  template.HTML
	Caption string
}

type newsView struct {
	Title   string
	Summary string
	Meta    string
	Link    string
}

func buildPage(res *dashboard.Result, now time.Time, loc *time.Location, windowDays int) pageView {
	q := res.Quote
	page := pageView{
		Symbol:    res.Symbol,
		EmptyNews: display.NoNewsMessage(windowDays),
		Quote: &quoteView{
			Symbol: q.Symbol,
			Price:  display.Price(q.LastPrice),
			Change: display.ChangeHTML(q.Change, q.ChangePct),
			Caption: fmt.Sprintf("%s · Prev close: %s USD · %s",
				display.PriceLabel(q.IsMarketOpen), display.Price(q.PrevClose), q.Session.Label),
		},
	}

	for _, item := range res.News {
		meta := item.Publisher
		if rel := display.RelativeTime(item.Published, now, loc); rel != "" {
			meta += " · " + rel
		}
		page.News = append(page.News, newsView{
			Title:   item.DisplayTitle(),
			Summary: item.DisplaySummary(),
			Meta:    meta,
			Link:    item.Link,
		})
	}
	return page
}
