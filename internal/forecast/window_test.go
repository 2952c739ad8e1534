package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveWorkingDays_MonthYear(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// October 2025 has 23 weekdays.
	assert.Equal(t, 23, ResolveWorkingDays("October 2025", now))
	assert.Equal(t, 23, ResolveWorkingDays("OCTOBER 2025", now))
	assert.Equal(t, 23, ResolveWorkingDays("planning for october 2025 with 25 staff", now))
}

func TestResolveWorkingDays_Relative(t *testing.T) {
	now := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 23, ResolveWorkingDays("this month", now))
	// November 2025 has 20 weekdays.
	assert.Equal(t, 20, ResolveWorkingDays("next month", now))
}

func TestResolveWorkingDays_RelativeYearRollover(t *testing.T) {
	now := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)

	// January 2026 has 22 weekdays.
	assert.Equal(t, 22, ResolveWorkingDays("next month", now))
}

func TestResolveWorkingDays_QuarterAggregation(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	want := WorkingDaysInMonth(2026, time.January) +
		WorkingDaysInMonth(2026, time.February) +
		WorkingDaysInMonth(2026, time.March)
	assert.Equal(t, want, ResolveWorkingDays("Q1 2026", now))
	assert.Equal(t, 64, want)
}

func TestResolveWorkingDays_FallbackIsTotal(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, DefaultWorkingDays, ResolveWorkingDays("banana", now))
	assert.Equal(t, DefaultWorkingDays, ResolveWorkingDays("", now))
	assert.Equal(t, DefaultWorkingDays, ResolveWorkingDays("sometime soon", now))
}

func TestWindowRange(t *testing.T) {
	now := time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC)

	start, end := WindowRange("October 2025", now)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), end)

	start, end = WindowRange("next month", now)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), end)

	start, end = WindowRange("Q1 2026", now)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), end)

	// unrecognized windows cover the next 30 days
	start, end = WindowRange("whenever works", now)
	assert.Equal(t, time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, start.AddDate(0, 0, 30), end)
}

func TestWorkingDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.October, 23},
		{2025, time.November, 20},
		{2026, time.January, 22},
		{2026, time.February, 20},
		{2026, time.March, 22},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WorkingDaysInMonth(tt.year, tt.month), "%v %d", tt.month, tt.year)
	}
}
