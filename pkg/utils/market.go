package utils

import (
	"time"

	"market-bot/internal/models"
)

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// MarketStatusAt returns the cash-market session status at t.
func MarketStatusAt(t time.Time) models.MarketStatus {
	now := t.In(IndiaLocation)

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return models.MarketClosed
	}

	timeMinutes := now.Hour()*60 + now.Minute()

	// Pre-open: 9:00 - 9:15
	if timeMinutes >= 540 && timeMinutes < 555 {
		return models.MarketPreOpen
	}

	// Market open: 9:15 - 15:30
	if timeMinutes >= 555 && timeMinutes < 930 {
		return models.MarketOpen
	}

	return models.MarketClosed
}

// IsMarketOpen returns true if the market is open at t.
func IsMarketOpen(t time.Time) bool {
	return MarketStatusAt(t) == models.MarketOpen
}

// DayKey returns the calendar date of t in exchange time, e.g. 2025-11-27.
func DayKey(t time.Time) string {
	return t.In(IndiaLocation).Format("2006-01-02")
}

// HeaderTime formats t for message headers, e.g. 27-Nov-2025 15:04.
func HeaderTime(t time.Time) string {
	return t.In(IndiaLocation).Format("02-Jan-2006 15:04")
}
