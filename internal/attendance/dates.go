package attendance

import (
	"time"

	"github.com/naveen-b26/ams-back/internal/models"
)

// DateLayout is the ISO calendar date format used as ledger day keys.
const DateLayout = "2006-01-02"

// daysPerWeek is the window size for weekly aggregation.
const daysPerWeek = 7

// ParseDate parses an ISO YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders t as a ledger day key.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DatesBetween enumerates every calendar date from start to end inclusive,
// in ascending order. The caller guarantees start <= end.
func DatesBetween(start, end time.Time) []string {
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(d))
	}
	return dates
}

// MonthDates enumerates every date of the given month.
func MonthDates(month time.Month, year int) []string {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return DatesBetween(start, end)
}

// SplitWeeks partitions dates into consecutive 7-day windows; the last
// window may be shorter.
func SplitWeeks(dates []string) [][]string {
	var weeks [][]string
	for len(dates) > 0 {
		n := daysPerWeek
		if len(dates) < n {
			n = len(dates)
		}
		weeks = append(weeks, dates[:n])
		dates = dates[n:]
	}
	return weeks
}

// ValidPeriod reports whether the 1-based period number is in range.
func ValidPeriod(period int) bool {
	return period >= 1 && period <= models.PeriodsPerDay
}

func emptyDay() []int {
	return make([]int, models.PeriodsPerDay)
}
