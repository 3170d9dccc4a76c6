package models

import (
	"strings"
	"time"
)

// DateLayout is the wire format of due and start dates.
const DateLayout = "2006-01-02"

// ParseDate parses a stored date and returns its calendar day at UTC
// midnight. Full RFC 3339 timestamps are accepted and truncated to their
// own calendar day. ok is false for blank or unparseable input.
func ParseDate(s string) (day time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return CalendarDay(t), true
	}
	return time.Time{}, false
}

// CalendarDay drops the time of day from t, keeping t's own year/month/day,
// and returns it at UTC midnight so days compare without zone drift.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
