package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/maltehb/capr/internal/ai"
	"github.com/maltehb/capr/internal/forecast"
)

func userLine(text string) string {
	return highlightStyle.Render("you ") + text
}

func botLine(text string) string {
	return selectedStyle.Render("capr ") + text
}

// RenderReply turns an engine reply into terminal output. Prompts and plain
// text stay one-line; a bundle becomes the full dashboard.
func RenderReply(r forecast.Reply) string {
	switch {
	case r.Bundle != nil:
		return RenderBundle(r.Bundle)
	case r.Prompt != "":
		return botLine(r.Prompt)
	default:
		return botLine(r.Text)
	}
}

// RenderBundle renders the forecast dashboard: the numbers box, constraint
// findings, ranked scenarios, and insights.
func RenderBundle(b *forecast.Bundle) string {
	var sections []string

	rows := []string{
		fmt.Sprintf("Period        %s (%d working days)", b.Params.TimeWindow, b.Forecast.WorkingDays),
		fmt.Sprintf("Staff         %d", b.Params.StaffCount),
		fmt.Sprintf("Avg time      %.1fh per task", b.Params.AvgImplementationTime),
		fmt.Sprintf("Availability  %.0f%%", b.Params.AvailabilityRatio*100),
		"",
		fmt.Sprintf("Available hours          %s", formatHours(b.Forecast.AvailableHours)),
		fmt.Sprintf("New Implementation (%.0f%%) %s", b.Split.PrimaryShare*100, formatHours(b.Forecast.PrimaryHours)),
		fmt.Sprintf("Update Requests (%.0f%%)    %s", b.Split.SecondaryShare*100, formatHours(b.Forecast.SecondaryHours)),
		"",
		highlightStyle.Render(fmt.Sprintf("Capacity: %d New Implementation tasks", b.Forecast.PrimaryCapacity)),
	}
	if b.Target > 0 {
		if gap := b.Target - b.Forecast.PrimaryCapacity; gap > 0 {
			rows = append(rows, warningStyle.Render(fmt.Sprintf("Target %d: %d tasks short", b.Target, gap)))
		} else {
			rows = append(rows, successStyle.Render(fmt.Sprintf("Target %d: met", b.Target)))
		}
	}
	sections = append(sections, boxStyle.Render(strings.Join(rows, "\n")))

	for _, e := range b.Constraints.Errors {
		sections = append(sections, errorStyle.Render("✗ "+e))
	}
	for _, w := range b.Constraints.Warnings {
		sections = append(sections, warningStyle.Render("⚠ "+w))
	}

	if len(b.Scenarios) > 0 {
		sections = append(sections, renderScenarios(b.Scenarios, b.Target))
	}

	if len(b.Insights) > 0 {
		lines := []string{titleStyle.Render("Insights")}
		for _, in := range b.Insights {
			lines = append(lines, "• "+in.Message)
			if in.Recommendation != "" {
				lines = append(lines, dimStyle.Render("  "+in.Recommendation))
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	return strings.Join(sections, "\n")
}

func renderScenarios(scenarios []forecast.Scenario, target int) string {
	lines := []string{titleStyle.Render("Scenarios")}
	for i, s := range scenarios {
		head := fmt.Sprintf("%d. %s — %d tasks (%s feasibility)",
			i+1, s.Name, s.Result.PrimaryCapacity, strings.ToLower(string(s.Feasibility)))
		if target > 0 && s.TargetAchieved {
			head = successStyle.Render(head)
		}
		lines = append(lines, head)
		for _, c := range s.Changes {
			lines = append(lines, dimStyle.Render("   "+c))
		}
		if s.GapAnalysis != "" {
			lines = append(lines, dimStyle.Render("   "+s.GapAnalysis))
		}
	}
	lines = append(lines, helpStyle.Render("say 'apply scenario N' to adopt one"))
	return strings.Join(lines, "\n")
}

// RenderAdvice renders the advisory block appended after the deterministic
// dashboard.
func RenderAdvice(a *ai.Advice) string {
	if a == nil {
		return ""
	}
	if a.Clarification != "" {
		return dimStyle.Render("Advisor: " + a.Clarification)
	}

	lines := []string{titleStyle.Render("Advisor"), a.Summary}
	for _, r := range a.Risks {
		lines = append(lines, warningStyle.Render("⚠ "+r))
	}
	for _, rec := range a.Recommendations {
		lines = append(lines, fmt.Sprintf("• %s (%.0f%%)", rec.Action, rec.Confidence*100))
		if rec.Impact != "" {
			lines = append(lines, dimStyle.Render("  "+rec.Impact))
		}
	}
	return strings.Join(lines, "\n")
}

// formatHours reports hour quantities rounded to the nearest whole hour;
// fractions exist internally but are never shown.
func formatHours(v float64) string {
	return fmt.Sprintf("%dh", int(math.Round(v)))
}
