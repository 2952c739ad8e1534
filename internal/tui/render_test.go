package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maltehb/capr/internal/ai"
	"github.com/maltehb/capr/internal/forecast"
)

func sampleBundle() *forecast.Bundle {
	return &forecast.Bundle{
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
		Constraints: forecast.ValidationResult{Valid: true},
		Scenarios: []forecast.Scenario{
			{
				Name:        "Add 2 Staff",
				Result:      forecast.ForecastResult{PrimaryCapacity: 343},
				Changes:     []string{"Staff: 25 → 27"},
				Feasibility: forecast.FeasibilityHigh,
			},
		},
		Insights: []forecast.Insight{
			{Category: "allocation", Message: "well balanced", Recommendation: "Maintain the current allocation."},
		},
	}
}

func TestRenderBundle(t *testing.T) {
	out := RenderBundle(sampleBundle())

	assert.Contains(t, out, "October 2025 (23 working days)")
	assert.Contains(t, out, "Capacity: 317 New Implementation tasks")
	assert.Contains(t, out, "3910h")
	// hour quantities round to whole hours in the dashboard
	assert.Contains(t, out, "2542h")
	assert.Contains(t, out, "1369h")
	assert.NotContains(t, out, "2541.5h")
	assert.Contains(t, out, "1. Add 2 Staff — 343 tasks (high feasibility)")
	assert.Contains(t, out, "Staff: 25 → 27")
	assert.Contains(t, out, "apply scenario N")
	assert.Contains(t, out, "Maintain the current allocation.")
}

func TestRenderBundle_TargetGap(t *testing.T) {
	b := sampleBundle()
	b.Target = 400
	assert.Contains(t, RenderBundle(b), "Target 400: 83 tasks short")

	b.Target = 300
	assert.Contains(t, RenderBundle(b), "Target 300: met")
}

func TestRenderBundle_Warnings(t *testing.T) {
	b := sampleBundle()
	b.Constraints.Warnings = []string{"availability of 96% leaves no room for meetings or interruptions"}

	assert.Contains(t, RenderBundle(b), "⚠ availability of 96%")
}

func TestRenderReply(t *testing.T) {
	prompt := forecast.Reply{Prompt: "What time period are you planning for?"}
	assert.Contains(t, RenderReply(prompt), "What time period")

	text := forecast.Reply{Text: "Ready for a new capacity forecast!"}
	assert.Contains(t, RenderReply(text), "Ready for a new")

	bundle := forecast.Reply{Bundle: sampleBundle()}
	assert.Contains(t, RenderReply(bundle), "Capacity: 317")
}

func TestRenderAdvice(t *testing.T) {
	advice := &ai.Advice{
		Summary: "The plan is tight but workable.",
		Risks:   []string{"availability assumes no holidays"},
		Recommendations: []ai.Recommendation{
			{Action: "Protect two focus days per week", Impact: "steadier throughput", Confidence: 0.7},
		},
	}

	out := RenderAdvice(advice)
	assert.Contains(t, out, "The plan is tight but workable.")
	assert.Contains(t, out, "⚠ availability assumes no holidays")
	assert.Contains(t, out, "Protect two focus days per week (70%)")
	assert.Contains(t, out, "steadier throughput")

	clarify := &ai.Advice{Clarification: "double-check the availability ratio"}
	assert.Contains(t, RenderAdvice(clarify), "double-check the availability ratio")

	assert.Empty(t, RenderAdvice(nil))
}

func TestGreeting(t *testing.T) {
	fresh := forecast.ConversationState{}
	assert.Equal(t, forecast.PromptFor(forecast.SlotTimeWindow), greeting(fresh))

	partial := forecast.ConversationState{WaitingFor: forecast.SlotAvailability}
	assert.Equal(t, forecast.PromptFor(forecast.SlotAvailability), greeting(partial))

	// a restored session with filled slots but no waiting cursor resumes at
	// the first missing slot, not the top
	resumed := forecast.ConversationState{
		Params: forecast.ParameterSet{TimeWindow: "October 2025"},
	}
	assert.Equal(t, forecast.PromptFor(forecast.SlotStaffCount), greeting(resumed))

	restored := forecast.ConversationState{
		Params: forecast.ParameterSet{
			TimeWindow:            "October 2025",
			StaffCount:            25,
			AvgImplementationTime: 8,
			AvailabilityRatio:     0.85,
		},
		LastResult: &forecast.ForecastResult{PrimaryCapacity: 317},
	}
	assert.Contains(t, greeting(restored), "Welcome back!")
	assert.Contains(t, greeting(restored), "317 tasks")
}

func TestStatusLine(t *testing.T) {
	incomplete := forecast.ConversationState{}
	assert.Equal(t, "gathering parameters...", statusLine(incomplete))

	complete := forecast.ConversationState{
		Params: forecast.ParameterSet{
			TimeWindow:            "October 2025",
			StaffCount:            25,
			AvgImplementationTime: 8,
			AvailabilityRatio:     0.85,
		},
		Target: 400,
	}
	assert.Equal(t, "October 2025 • 25 staff • 8.0h/task • 85% available • target 400", statusLine(complete))
}
