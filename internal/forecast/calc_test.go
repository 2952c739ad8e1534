package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseParams() ParameterSet {
	return ParameterSet{
		TimeWindow:            "October 2025",
		StaffCount:            25,
		AvgImplementationTime: 8,
		AvailabilityRatio:     0.85,
	}
}

func TestCompute_FormulaExactness(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	result, err := Compute(baseParams(), DefaultSplit(), now)
	require.NoError(t, err)

	assert.Equal(t, 23, result.WorkingDays)
	assert.Equal(t, 4600.0, result.TotalHours)
	assert.Equal(t, 3910.0, result.AvailableHours)
	assert.InDelta(t, 2541.5, result.PrimaryHours, 1e-9)
	assert.InDelta(t, 1368.5, result.SecondaryHours, 1e-9)
	// floor division uses the unrounded primary hours
	assert.Equal(t, 317, result.PrimaryCapacity)
}

func TestCompute_Deterministic(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	first, err := Compute(baseParams(), DefaultSplit(), now)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Compute(baseParams(), DefaultSplit(), now)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompute_SplitIsExplicit(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	params := baseParams()

	wide, err := Compute(params, AllocationSplit{PrimaryShare: 0.80, SecondaryShare: 0.20}, now)
	require.NoError(t, err)
	standard, err := Compute(params, DefaultSplit(), now)
	require.NoError(t, err)

	assert.Greater(t, wide.PrimaryCapacity, standard.PrimaryCapacity)
	// a hypothetical evaluation never touches the inputs
	assert.Equal(t, baseParams(), params)
}

func TestCompute_ZeroDurationIsFatal(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	params := baseParams()
	params.AvgImplementationTime = 0

	_, err := Compute(params, DefaultSplit(), now)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestCompute_FallbackWindow(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	params := baseParams()
	params.TimeWindow = "whenever"

	result, err := Compute(params, DefaultSplit(), now)
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkingDays, result.WorkingDays)
}
