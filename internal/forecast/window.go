package forecast

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWorkingDays is used when a time window doesn't match any known
// period pattern. Roughly one average month of weekdays.
const DefaultWorkingDays = 22

var (
	monthYearRe = regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})`)
	quarterRe   = regexp.MustCompile(`(?i)q([1-4])\s+(\d{4})`)
)

var monthIndex = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// ResolveWorkingDays maps a calendar-period expression to a count of working
// days. Recognized, in order: "next month", "this month", a month name with a
// 4-digit year, and "Qn YYYY" (the quarter's three months summed). Anything
// else falls back to DefaultWorkingDays, so the function is total. now anchors
// the relative forms.
func ResolveWorkingDays(window string, now time.Time) int {
	lower := strings.ToLower(window)

	if strings.Contains(lower, "next month") {
		next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		return WorkingDaysInMonth(next.Year(), next.Month())
	}

	if strings.Contains(lower, "this month") {
		return WorkingDaysInMonth(now.Year(), now.Month())
	}

	if m := monthYearRe.FindStringSubmatch(window); m != nil {
		year, _ := strconv.Atoi(m[2])
		return WorkingDaysInMonth(year, monthIndex[strings.ToLower(m[1])])
	}

	if m := quarterRe.FindStringSubmatch(window); m != nil {
		quarter, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return workingDaysInQuarter(year, quarter)
	}

	return DefaultWorkingDays
}

// WindowRange resolves a period expression to its calendar bounds, start
// inclusive and end exclusive. It recognizes the same forms as
// ResolveWorkingDays; anything else covers the 30 days from now.
func WindowRange(window string, now time.Time) (time.Time, time.Time) {
	lower := strings.ToLower(window)

	if strings.Contains(lower, "next month") {
		start := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}

	if strings.Contains(lower, "this month") {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}

	if m := monthYearRe.FindStringSubmatch(window); m != nil {
		year, _ := strconv.Atoi(m[2])
		start := time.Date(year, monthIndex[strings.ToLower(m[1])], 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}

	if m := quarterRe.FindStringSubmatch(window); m != nil {
		quarter, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 3, 0)
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 30)
}

// WorkingDaysInMonth counts the weekdays in a calendar month. No holiday
// calendar is applied.
func WorkingDaysInMonth(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := 0
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

func workingDaysInQuarter(year, quarter int) int {
	start := time.Month((quarter-1)*3 + 1)
	total := 0
	for i := 0; i < 3; i++ {
		total += WorkingDaysInMonth(year, start+time.Month(i))
	}
	return total
}
