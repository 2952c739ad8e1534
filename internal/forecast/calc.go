package forecast

import (
	"errors"
	"math"
	"time"
)

// HoursPerDay is the nominal working day length.
const HoursPerDay = 8

// ErrInvalidDuration is returned when an average implementation time of zero
// or less reaches the calculator. Slot extraction guarantees positivity, so
// hitting this means a caller bypassed the session machinery.
var ErrInvalidDuration = errors.New("average implementation time must be positive")

// Compute derives a forecast from a complete parameter set and an allocation
// split. It is pure: the same inputs and the same now always produce the same
// result. now only matters for relative time windows ("next month").
//
//	workingDays     = ResolveWorkingDays(timeWindow)
//	totalHours      = workingDays * 8 * staffCount
//	availableHours  = totalHours * availabilityRatio
//	primaryHours    = availableHours * primaryShare
//	secondaryHours  = availableHours * secondaryShare
//	primaryCapacity = floor(primaryHours / avgImplementationTime)
//
// The secondary stream is reported in hours only; it has no per-unit duration
// in this model.
func Compute(params ParameterSet, split AllocationSplit, now time.Time) (ForecastResult, error) {
	if params.AvgImplementationTime <= 0 {
		return ForecastResult{}, ErrInvalidDuration
	}

	workingDays := ResolveWorkingDays(params.TimeWindow, now)
	totalHours := float64(workingDays * HoursPerDay * params.StaffCount)
	availableHours := totalHours * params.AvailabilityRatio
	primaryHours := availableHours * split.PrimaryShare
	secondaryHours := availableHours * split.SecondaryShare

	return ForecastResult{
		WorkingDays:     workingDays,
		TotalHours:      totalHours,
		AvailableHours:  availableHours,
		PrimaryHours:    primaryHours,
		SecondaryHours:  secondaryHours,
		PrimaryCapacity: int(math.Floor(primaryHours / params.AvgImplementationTime)),
	}, nil
}
