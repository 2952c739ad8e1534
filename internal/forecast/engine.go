package forecast

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Bot messages that are not slot prompts.
const (
	msgCalculationTrouble = "I had trouble calculating that forecast. Could you try rephrasing your time window?"
	msgReadyForNew        = "Ready for a new capacity forecast! What time period would you like to plan for?"
	msgNoChangeDetected   = "I didn't spot a change in that. You can adjust staffing ('add 2 staff'), availability ('set availability to 85%'), implementation time ('reduce time by 1 hour'), state a goal ('I need 50 more tasks'), or say 'reset' to start over."
)

// Bundle is the structured result of a completed turn, handed to the render
// layer as pure data.
type Bundle struct {
	Params      ParameterSet
	Split       AllocationSplit
	Forecast    ForecastResult
	Constraints ValidationResult
	Scenarios   []Scenario
	Insights    []Insight
	Intent      string
	Target      int
}

// Reply is one bot turn: either a slot-filling prompt, a plain text message,
// or a full forecast bundle (optionally preceded by an acknowledgement text).
type Reply struct {
	Prompt string
	Text   string
	Bundle *Bundle
}

var (
	applyScenarioRe = regexp.MustCompile(`(?i)\b(?:apply|use|choose|pick|go\s+with)\s+(?:scenario|option)\s+(\d+)\b`)
	resetRe         = regexp.MustCompile(`(?i)\b(?:reset|start\s+over|new\s+forecast|another\s+scenario)\b`)
)

// Engine drives one conversation: slot filling while parameters are
// incomplete, adjustment parsing once they are, and the
// calculator → validator → scenarios → insights pipeline after every change.
// It is single-threaded; one turn runs to completion before the next.
type Engine struct {
	state ConversationState
	now   func() time.Time
}

// NewEngine builds an engine around a possibly partial or absent persisted
// state. Missing pieces degrade to a fresh session.
func NewEngine(state *ConversationState) *Engine {
	e := &Engine{now: time.Now}
	if state != nil {
		e.state = *state
	}
	if e.state.SessionID == "" {
		e.state.SessionID = uuid.NewString()
	}
	if e.state.Split.PrimaryShare <= 0 || e.state.Split.SecondaryShare <= 0 {
		e.state.Split = DefaultSplit()
	}
	return e
}

// State returns a snapshot for persistence.
func (e *Engine) State() ConversationState {
	return e.state
}

// Reset clears the slots, target, and scenario list but keeps the session id
// and audit history.
func (e *Engine) Reset() {
	e.state.Params = ParameterSet{}
	e.state.WaitingFor = SlotNone
	e.state.Target = 0
	e.state.LastResult = nil
	e.state.Scenarios = nil
}

// HandleTurn processes one utterance to completion and returns the bot's
// reply. A failure mid-turn still yields a textual reply, and the filled
// slots survive it.
func (e *Engine) HandleTurn(message string) Reply {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{Text: msgReadyForNew}
	}

	if resetRe.MatchString(message) {
		e.Reset()
		return Reply{Text: msgReadyForNew}
	}

	if m := applyScenarioRe.FindStringSubmatch(message); m != nil && len(e.state.Scenarios) > 0 {
		n, _ := strconv.Atoi(m[1])
		if n >= 1 && n <= len(e.state.Scenarios) {
			return e.ApplyScenario(e.state.Scenarios[n-1])
		}
		return Reply{Text: fmt.Sprintf("There are only %d scenarios to choose from.", len(e.state.Scenarios))}
	}

	if !e.state.Params.Complete() {
		return e.collect(message)
	}
	return e.adjust(message)
}

// collect runs the slot-filling state machine for one utterance and computes
// the first forecast once the set completes.
func (e *Engine) collect(message string) Reply {
	session := Session{Params: e.state.Params, WaitingFor: e.state.WaitingFor}
	before := session.Params

	prompt, complete := session.Observe(message)
	e.recordSlotChanges(before, session.Params, "provided in chat")
	e.state.Params = session.Params
	e.state.WaitingFor = session.WaitingFor

	if !complete {
		return Reply{Prompt: prompt}
	}
	return e.forecast("initial forecast")
}

// adjust routes a follow-up utterance against the complete parameter set.
func (e *Engine) adjust(message string) Reply {
	intent := ParseAdjustment(message, e.state.Params, e.state.LastResult)
	if !intent.IsAdjustment {
		return Reply{Text: msgNoChangeDetected}
	}

	params, target := intent.Apply(e.state.Params)
	e.recordSlotChanges(e.state.Params, params, intent.Intent)
	e.state.Params = params
	if target > 0 {
		e.state.Target = target
	}

	reply := e.forecast(intent.Intent)
	if reply.Bundle != nil {
		reply.Bundle.Intent = intent.Intent
	}
	return reply
}

// ApplyScenario adopts a scenario's parameters (and any allocation override)
// as the live session and re-runs the pipeline.
func (e *Engine) ApplyScenario(s Scenario) Reply {
	reason := fmt.Sprintf("applied scenario %q", s.Name)
	e.recordSlotChanges(e.state.Params, s.Parameters, reason)
	e.state.Params = s.Parameters
	e.state.Split = s.Split

	reply := e.forecast(reason)
	if reply.Bundle != nil {
		reply.Bundle.Intent = reason
	}
	return reply
}

// forecast runs the calculator and its downstream consumers, updating the
// session state. Calculator failures leave the slots intact.
func (e *Engine) forecast(reason string) Reply {
	now := e.now()

	result, err := Compute(e.state.Params, e.state.Split, now)
	if err != nil {
		return Reply{Text: msgCalculationTrouble}
	}

	e.state.LastResult = &result
	e.state.WaitingFor = SlotNone

	scenarios := GenerateScenarios(e.state.Params, e.state.Split, e.state.Target, now)
	e.state.Scenarios = scenarios

	return Reply{Bundle: &Bundle{
		Params:      e.state.Params,
		Split:       e.state.Split,
		Forecast:    result,
		Constraints: Validate(e.state.Params),
		Scenarios:   scenarios,
		Insights:    GenerateInsights(e.state.Params, e.state.Split, result, e.state.Target, now),
		Intent:      reason,
		Target:      e.state.Target,
	}}
}

// recordSlotChanges appends one audit entry per slot that actually changed.
func (e *Engine) recordSlotChanges(before, after ParameterSet, reason string) {
	at := e.now()
	record := func(slot Slot, old, new string) {
		e.state.History = append(e.state.History, ParameterChange{
			Timestamp: at,
			Slot:      slot,
			OldValue:  old,
			NewValue:  new,
			Reason:    reason,
		})
	}

	if before.TimeWindow != after.TimeWindow {
		record(SlotTimeWindow, before.TimeWindow, after.TimeWindow)
	}
	if before.StaffCount != after.StaffCount {
		record(SlotStaffCount, strconv.Itoa(before.StaffCount), strconv.Itoa(after.StaffCount))
	}
	if before.AvgImplementationTime != after.AvgImplementationTime {
		record(SlotAvgImplTime, formatHours(before.AvgImplementationTime), formatHours(after.AvgImplementationTime))
	}
	if before.AvailabilityRatio != after.AvailabilityRatio {
		record(SlotAvailability, formatRatio(before.AvailabilityRatio), formatRatio(after.AvailabilityRatio))
	}
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
