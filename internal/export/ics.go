package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/maltehb/capr/internal/forecast"
)

// WriteICS renders the session's current forecast as an iCalendar with a
// single event spanning the planning window, so the plan can sit alongside
// the team's real calendar.
func WriteICS(w io.Writer, state forecast.ConversationState, now time.Time) error {
	if state.LastResult == nil || !state.Params.Complete() {
		return fmt.Errorf("no forecast to export — complete a chat session first")
	}
	result := *state.LastResult
	start, end := forecast.WindowRange(state.Params.TimeWindow, now)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//capr//capacity forecast//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.NewString())
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, end)
	event.Props.SetText(ical.PropSummary,
		fmt.Sprintf("Capacity plan %s: %d New Implementation tasks", state.Params.TimeWindow, result.PrimaryCapacity))
	event.Props.SetText(ical.PropDescription, describeForecast(state, result))
	cal.Children = append(cal.Children, event.Component)

	return ical.NewEncoder(w).Encode(cal)
}

func describeForecast(state forecast.ConversationState, result forecast.ForecastResult) string {
	lines := []string{
		fmt.Sprintf("Staff: %d", state.Params.StaffCount),
		fmt.Sprintf("Avg implementation time: %.1fh", state.Params.AvgImplementationTime),
		fmt.Sprintf("Availability: %.0f%%", state.Params.AvailabilityRatio*100),
		fmt.Sprintf("Working days: %d", result.WorkingDays),
		fmt.Sprintf("Available hours: %.1f", result.AvailableHours),
		fmt.Sprintf("New Implementation hours (%.0f%%): %.1f", state.Split.PrimaryShare*100, result.PrimaryHours),
		fmt.Sprintf("Update Request hours (%.0f%%): %.1f", state.Split.SecondaryShare*100, result.SecondaryHours),
		fmt.Sprintf("Implementation capacity: %d tasks", result.PrimaryCapacity),
	}
	if state.Target > 0 {
		lines = append(lines, fmt.Sprintf("Target: %d tasks", state.Target))
	}
	return strings.Join(lines, "\n")
}
