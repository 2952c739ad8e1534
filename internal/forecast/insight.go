package forecast

import (
	"fmt"
	"math"
	"time"
)

// Insight is one deterministic, template-filled advisory.
type Insight struct {
	Category       string `json:"category"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
}

// GenerateInsights produces the advisory bundle for a computed forecast:
// target feasibility (when a target is active), allocation balance, and
// delivery efficiency. Always the applicable subset, never more than three.
// These are template strings with interpolated numbers; any AI-generated
// enrichment is layered on separately and independently.
func GenerateInsights(params ParameterSet, split AllocationSplit, result ForecastResult, target int, now time.Time) []Insight {
	var insights []Insight

	if target > 0 {
		insights = append(insights, targetInsight(result.PrimaryCapacity, target))
	}
	insights = append(insights, allocationInsight(split))
	insights = append(insights, efficiencyInsight(params, split, result, now))

	if len(insights) > 3 {
		insights = insights[:3]
	}
	return insights
}

// targetInsight grades the gap to the stated goal into fixed tiers.
func targetInsight(current, target int) Insight {
	if current <= 0 {
		return Insight{
			Category: "target",
			Message:  fmt.Sprintf("Current parameters produce no capacity, so a target of %d tasks cannot be assessed.", target),
		}
	}

	gapPct := float64(target-current) / float64(current) * 100

	switch {
	case gapPct <= 0:
		return Insight{
			Category: "target",
			Message:  fmt.Sprintf("Your target of %d tasks is already met — current capacity is %d.", target, current),
		}
	case gapPct <= 15:
		return Insight{
			Category:       "target",
			Message:        fmt.Sprintf("The target of %d tasks is %.0f%% above current capacity (%d) — a realistic stretch.", target, gapPct, current),
			Recommendation: "A single modest lever should close this gap.",
		}
	case gapPct <= 35:
		return Insight{
			Category:       "target",
			Message:        fmt.Sprintf("The target of %d tasks is %.0f%% above current capacity (%d) — ambitious but achievable.", target, gapPct, current),
			Recommendation: "Combine two levers, e.g. allocation shift plus an efficiency gain.",
		}
	case gapPct <= 60:
		milestone := int(math.Round(float64(current) * 1.25))
		return Insight{
			Category:       "target",
			Message:        fmt.Sprintf("The target of %d tasks is %.0f%% above current capacity (%d) — challenging.", target, gapPct, current),
			Recommendation: fmt.Sprintf("Consider an interim milestone of %d tasks (a 25%% increase) first.", milestone),
		}
	default:
		milestone := int(math.Round(float64(current) * 1.40))
		return Insight{
			Category:       "target",
			Message:        fmt.Sprintf("The target of %d tasks is %.0f%% above current capacity (%d) — unrealistic within one planning window.", target, gapPct, current),
			Recommendation: fmt.Sprintf("Aim for %d tasks (a 40%% increase) as a first milestone.", milestone),
		}
	}
}

// allocationInsight grades how much of the pool the secondary stream takes.
func allocationInsight(split AllocationSplit) Insight {
	secondaryPct := split.SecondaryShare * 100

	switch {
	case secondaryPct >= 40:
		return Insight{
			Category:       "allocation",
			Message:        fmt.Sprintf("Update Requests consume %.0f%% of available hours, which limits New Implementation throughput.", secondaryPct),
			Recommendation: "Cut the Update Request share to 25% to free implementation capacity.",
		}
	case secondaryPct >= 30:
		return Insight{
			Category:       "allocation",
			Message:        fmt.Sprintf("Update Requests take a substantial %.0f%% of available hours.", secondaryPct),
			Recommendation: fmt.Sprintf("Reducing the share by 10 points (to %.0f%%) would lift implementation capacity.", secondaryPct-10),
		}
	default:
		return Insight{
			Category:       "allocation",
			Message:        fmt.Sprintf("The %.0f/%.0f split between streams is well balanced.", split.PrimaryShare*100, secondaryPct),
			Recommendation: "Maintain the current allocation.",
		}
	}
}

// efficiencyInsight grades the average implementation time and estimates the
// capacity gain of a tier-appropriate reduction by re-running the
// calculator, the same technique the scenario generator uses.
func efficiencyInsight(params ParameterSet, split AllocationSplit, result ForecastResult, now time.Time) Insight {
	avg := params.AvgImplementationTime

	var grade string
	var reduction float64
	var rangeText string
	switch {
	case avg <= 2:
		return Insight{
			Category: "efficiency",
			Message:  fmt.Sprintf("At %.1fh per task your implementation time is excellent.", avg),
		}
	case avg <= 4:
		grade, reduction, rangeText = "good", 0.75, "0.5–1h"
	case avg <= 8:
		grade, reduction, rangeText = "average", 1.5, "1–2h"
	default:
		grade, reduction, rangeText = "above typical", 3, "2–4h"
	}

	gainPct := 0.0
	improved := params
	improved.AvgImplementationTime = math.Max(minDuration, avg-reduction)
	if r, err := Compute(improved, split, now); err == nil && result.PrimaryCapacity > 0 {
		gainPct = float64(r.PrimaryCapacity-result.PrimaryCapacity) / float64(result.PrimaryCapacity) * 100
	}

	return Insight{
		Category:       "efficiency",
		Message:        fmt.Sprintf("At %.1fh per task your implementation time is %s.", avg, grade),
		Recommendation: fmt.Sprintf("Shaving %s off the average would raise capacity by roughly %.0f%%.", rangeText, gainPct),
	}
}
