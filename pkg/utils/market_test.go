package utils

import (
	"testing"
	"time"

	"market-bot/internal/models"
)

func TestMarketStatusAt(t *testing.T) {
	ist := func(day, hour, min int) time.Time {
		// March 2024: the 4th is a Monday.
		return time.Date(2024, 3, day, hour, min, 0, 0, IndiaLocation)
	}
	testCases := []struct {
		name string
		at   time.Time
		want models.MarketStatus
	}{
		{"before pre-open", ist(4, 8, 59), models.MarketClosed},
		{"pre-open", ist(4, 9, 0), models.MarketPreOpen},
		{"open bell", ist(4, 9, 15), models.MarketOpen},
		{"last minute", ist(4, 15, 29), models.MarketOpen},
		{"close", ist(4, 15, 30), models.MarketClosed},
		{"saturday", ist(9, 11, 0), models.MarketClosed},
		{"utc input", time.Date(2024, 3, 4, 5, 0, 0, 0, time.UTC), models.MarketOpen},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MarketStatusAt(tc.at); got != tc.want {
				t.Errorf("MarketStatusAt(%v) = %s, want %s", tc.at, got, tc.want)
			}
		})
	}
}

func TestDayKeyUsesExchangeTime(t *testing.T) {
	// 20:00 UTC on the 4th is 01:30 IST on the 5th.
	at := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)
	if got := DayKey(at); got != "2024-03-05" {
		t.Errorf("DayKey = %s", got)
	}
	if got := HeaderTime(at); got != "05-Mar-2024 01:30" {
		t.Errorf("HeaderTime = %s", got)
	}
}
