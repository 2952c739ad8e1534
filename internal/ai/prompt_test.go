package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltehb/capr/internal/forecast"
)

func testBundle() forecast.Bundle {
	return forecast.Bundle{
		Params: forecast.ParameterSet{
			TimeWindow:            "October 2025",
			StaffCount:            25,
			AvgImplementationTime: 8,
			AvailabilityRatio:     0.85,
		},
		Split: forecast.DefaultSplit(),
		Forecast: forecast.ForecastResult{
			WorkingDays:     23,
			TotalHours:      4600,
			AvailableHours:  3910,
			PrimaryHours:    2541.5,
			SecondaryHours:  1368.5,
			PrimaryCapacity: 317,
		},
		Target: 400,
		Intent: "target 400 tasks",
	}
}

func TestBuildSystemPrompt_EmbedsSnapshot(t *testing.T) {
	prompt := buildSystemPrompt(testBundle())

	assert.Contains(t, prompt, `"October 2025"`)
	assert.Contains(t, prompt, `"staff_count":25`)
	assert.Contains(t, prompt, `"primary_capacity":317`)
	assert.Contains(t, prompt, `"target_capacity":400`)
	assert.Contains(t, prompt, "Never recompute")
}

func TestBuildUserPrompt(t *testing.T) {
	assert.Contains(t, buildUserPrompt(testBundle()), "target 400 tasks")

	blank := testBundle()
	blank.Intent = ""
	assert.Equal(t, "Review the forecast.", buildUserPrompt(blank))
}

func TestAdviceSchema_IsStrictObject(t *testing.T) {
	data, err := json.Marshal(adviceSchema)
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, "object", schema["type"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "summary")
	assert.Contains(t, props, "recommendations")
	assert.Equal(t, false, schema["additionalProperties"])
}
