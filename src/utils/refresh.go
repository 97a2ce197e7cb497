package utils

import "time"

// -----------------------------------------------------------------------------
// Daily refresh cadence helpers. The observer re-fetches once a day after
// the markets close; non-trading days produce no new rows, so the fetch
// is skipped outright when no tracked exchange had a session.
// -----------------------------------------------------------------------------

// NextRefreshTime returns the next occurrence of hourUTC (00 minutes)
// strictly after now.
func NextRefreshTime(now time.Time, hourUTC int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// -----------------------------------------------------------------------------

// ShouldRefresh reports whether a refresh at refreshTime can produce new
// data: true when any tracked symbol's exchange had a session on the
// preceding day.
func ShouldRefresh(refreshTime time.Time, calendars map[string]*TradingCalendar) bool {
	previousDay := refreshTime.AddDate(0, 0, -1)
	for _, cal := range calendars {
		if cal.IsTradingDay(previousDay) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// CalendarsForSymbols builds one TradingCalendar per symbol.
func CalendarsForSymbols(symbols []string) map[string]*TradingCalendar {
	calendars := make(map[string]*TradingCalendar, len(symbols))
	for _, symbol := range symbols {
		calendars[symbol] = GetCalendar(symbol)
	}
	return calendars
}
