// Package format renders dashboard values for display.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/zulandar/demodash/internal/models"
)

const displayLayout = "Jan 2, 2006"

// Currency abbreviates a dollar amount: $4.5M, $250K, $800.
// NaN and infinities render as $0.
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0"
	}
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("$%.1fM", amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("$%.0fK", amount/1_000)
	default:
		return fmt.Sprintf("$%.0f", amount)
	}
}

// Date renders a stored date as "Mar 25, 2025". Blank input is "N/A" and
// unparseable input is "Invalid Date".
func Date(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	d, ok := models.ParseDate(s)
	if !ok {
		return "Invalid Date"
	}
	return d.Format(displayLayout)
}

// Day renders the calendar day of t as "Mar 25, 2025".
func Day(t time.Time) string {
	return t.Format(displayLayout)
}

// DaysRemaining describes how far a due date is from now's calendar day:
// "Overdue", "Due today", "1 day" or "N days". Missing or unparseable dates
// are "N/A". Time of day is ignored on both sides.
func DaysRemaining(s string, now time.Time) string {
	due, ok := models.ParseDate(s)
	if !ok {
		return "N/A"
	}
	days := DaysBetween(models.CalendarDay(now), due)
	switch {
	case days < 0:
		return "Overdue"
	case days == 0:
		return "Due today"
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

// DaysBetween returns the whole number of calendar days from a to b.
// Both must be calendar days (UTC midnight).
func DaysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
