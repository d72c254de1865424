package services

import (
	"time"

	"fleet-billing-service/internal/models"
)

func parseDate(value string) (time.Time, bool) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// addMonths adds calendar months preserving the day-of-month where valid and
// clamping at month end otherwise (Jan 31 + 1 month = Feb 29 in a leap year,
// not Mar 2).
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, t.Location())
}

// daysUntil returns target minus now in whole days, both truncated to
// midnight. Negative means the target date is in the past.
func daysUntil(target, now time.Time) int {
	truncate := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return int(truncate(target).Sub(truncate(now)).Hours() / 24)
}
