package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CleanParameters(t *testing.T) {
	res := Validate(baseParams())

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidate_HardErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ParameterSet)
		want   string
	}{
		{"zero staff", func(p *ParameterSet) { p.StaffCount = 0 }, "staff count must be at least 1"},
		{"zero availability", func(p *ParameterSet) { p.AvailabilityRatio = 0 }, "outside (0, 1]"},
		{"availability above one", func(p *ParameterSet) { p.AvailabilityRatio = 1.2 }, "outside (0, 1]"},
		{"zero duration", func(p *ParameterSet) { p.AvgImplementationTime = 0 }, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := baseParams()
			tt.mutate(&params)

			res := Validate(params)

			assert.False(t, res.Valid)
			require.NotEmpty(t, res.Errors)
			assert.Contains(t, res.Errors[0], tt.want)
		})
	}
}

func TestValidate_SoftWarningsKeepValid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ParameterSet)
		want   string
	}{
		{"huge team", func(p *ParameterSet) { p.StaffCount = 150 }, "unusually large"},
		{"low availability", func(p *ParameterSet) { p.AvailabilityRatio = 0.3 }, "unusually low"},
		{"full availability", func(p *ParameterSet) { p.AvailabilityRatio = 1.0 }, "no room for meetings"},
		{"marathon tasks", func(p *ParameterSet) { p.AvgImplementationTime = 120 }, "two working weeks"},
		{"sub-granularity tasks", func(p *ParameterSet) { p.AvgImplementationTime = 0.25 }, "below the model's granularity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := baseParams()
			tt.mutate(&params)

			res := Validate(params)

			assert.True(t, res.Valid)
			assert.Empty(t, res.Errors)
			require.NotEmpty(t, res.Warnings)
			assert.Contains(t, res.Warnings[0], tt.want)
		})
	}
}

func TestValidate_BoundaryValuesAreClean(t *testing.T) {
	params := baseParams()
	params.StaffCount = 100
	params.AvailabilityRatio = 0.95
	params.AvgImplementationTime = 80

	res := Validate(params)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Warnings)
}
