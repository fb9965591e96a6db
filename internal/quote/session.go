package quote

import (
	"time"
	_ "time/tzdata"

	"github.com/dyike/StockPulse/models"
)

const (
	SessionOpenLabel    = "US market hours"
	SessionClosedLabel  = "pre-market / after-hours"
	SessionWeekendLabel = "closed (weekend)"
)

var newYork = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Session reports whether regular US trading hours are in effect at now.
// Exchange holidays are not considered.
func Session(now time.Time) models.MarketSession {
	local := now.In(newYork)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return models.MarketSession{Open: false, Label: SessionWeekendLabel}
	}

	minutes := local.Hour()*60 + local.Minute()
	if minutes >= 9*60+30 && minutes < 16*60 {
		return models.MarketSession{Open: true, Label: SessionOpenLabel}
	}
	return models.MarketSession{Open: false, Label: SessionClosedLabel}
}
