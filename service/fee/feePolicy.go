// Package fee computes late fees and borrow-duration labels from
// date facts. Everything is calendar-day granular.
package fee

import (
	"fmt"
	"time"
)

// LateRate is the per-day penalty as a fraction of the normal daily
// rental rate.
const LateRate = 0.5

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}

// IsLate reports whether today is strictly after the due date.
func IsLate(due, today time.Time) bool {
	return dateOf(today).After(dateOf(due))
}

// DaysLate returns how many whole days today is past the due date,
// clamped at zero.
func DaysLate(due, today time.Time) int {
	d := daysBetween(due, today)
	if d < 0 {
		return 0
	}
	return d
}

// LateFee charges LateRate of the daily price per day late. Linear, no
// cap, no compounding.
func LateFee(pricePerDay float64, daysLate int) float64 {
	if daysLate <= 0 {
		return 0
	}
	return float64(daysLate) * pricePerDay * LateRate
}

// BorrowDurationLabel renders how long a book has been out: "N/A" when
// it was never borrowed, "Today", "1 day", then "<N> days".
func BorrowDurationLabel(borrowedAt *time.Time, now time.Time) string {
	if borrowedAt == nil {
		return "N/A"
	}
	switch days := daysBetween(*borrowedAt, now); days {
	case 0:
		return "Today"
	case 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
