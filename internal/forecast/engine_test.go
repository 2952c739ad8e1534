package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(state *ConversationState) *Engine {
	e := NewEngine(state)
	e.now = func() time.Time { return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC) }
	return e
}

func TestEngine_FullConversationFlow(t *testing.T) {
	e := newTestEngine(nil)

	r := e.HandleTurn("I want to plan October 2025")
	assert.Equal(t, slotPrompts[SlotStaffCount], r.Prompt)
	assert.Nil(t, r.Bundle)

	r = e.HandleTurn("we have 25 people")
	assert.Equal(t, slotPrompts[SlotAvgImplTime], r.Prompt)

	r = e.HandleTurn("8 hours each")
	assert.Equal(t, slotPrompts[SlotAvailability], r.Prompt)

	r = e.HandleTurn("85%")
	require.NotNil(t, r.Bundle)
	assert.Empty(t, r.Prompt)
	assert.Equal(t, 317, r.Bundle.Forecast.PrimaryCapacity)
	assert.Equal(t, "initial forecast", r.Bundle.Intent)
	assert.True(t, r.Bundle.Constraints.Valid)
	assert.NotEmpty(t, r.Bundle.Scenarios)
	assert.NotEmpty(t, r.Bundle.Insights)

	// four slots, four audit entries
	assert.Len(t, e.State().History, 4)
}

func TestEngine_AdjustmentTurn(t *testing.T) {
	e := newTestEngine(completeState())

	r := e.HandleTurn("what if we add 2 staff?")
	require.NotNil(t, r.Bundle)
	assert.Equal(t, 27, r.Bundle.Params.StaffCount)
	assert.Greater(t, r.Bundle.Forecast.PrimaryCapacity, 317)

	require.Len(t, e.State().History, 1)
	assert.Equal(t, SlotStaffCount, e.State().History[0].Slot)
	assert.Equal(t, "25", e.State().History[0].OldValue)
	assert.Equal(t, "27", e.State().History[0].NewValue)
}

func TestEngine_TargetTurnProducesTargetedScenarios(t *testing.T) {
	e := newTestEngine(completeState())

	r := e.HandleTurn("we need to reach 400 tasks")
	require.NotNil(t, r.Bundle)
	assert.Equal(t, 400, r.Bundle.Target)
	assert.Equal(t, 400, e.State().Target)

	require.NotEmpty(t, r.Bundle.Scenarios)
	for _, s := range r.Bundle.Scenarios {
		assert.NotEmpty(t, s.GapAnalysis, s.Name)
	}
	assert.Equal(t, "target", r.Bundle.Insights[0].Category)
}

func TestEngine_UnknownFollowUpPreservesState(t *testing.T) {
	e := newTestEngine(completeState())
	before := e.State()

	r := e.HandleTurn("thanks, looks great!")
	assert.Nil(t, r.Bundle)
	assert.Equal(t, msgNoChangeDetected, r.Text)
	assert.Equal(t, before.Params, e.State().Params)
	assert.Empty(t, e.State().History)
}

// Plain dissatisfaction with no concrete lever still gets the analysis
// bundle, not the didn't-understand reply.
func TestEngine_DissatisfactionGetsAnalysisReply(t *testing.T) {
	e := newTestEngine(completeState())

	r := e.HandleTurn("that's too low, not enough")
	require.NotNil(t, r.Bundle)
	assert.Equal(t, AnalyzeIntent, r.Bundle.Intent)
	assert.NotEmpty(t, r.Bundle.Scenarios)
	assert.Empty(t, e.State().History)
}

func TestEngine_ApplyScenarioByNumber(t *testing.T) {
	e := newTestEngine(completeState())

	first := e.HandleTurn("how could we improve this?")
	require.NotNil(t, first.Bundle)
	require.NotEmpty(t, first.Bundle.Scenarios)
	chosen := first.Bundle.Scenarios[0]

	r := e.HandleTurn("apply scenario 1")
	require.NotNil(t, r.Bundle)
	assert.Equal(t, chosen.Parameters, r.Bundle.Params)
	assert.Equal(t, chosen.Result, r.Bundle.Forecast)
	assert.Contains(t, r.Bundle.Intent, chosen.Name)
}

func TestEngine_ApplyScenarioOutOfRange(t *testing.T) {
	e := newTestEngine(completeState())

	first := e.HandleTurn("how could we improve this?")
	require.NotNil(t, first.Bundle)
	n := len(first.Bundle.Scenarios)

	r := e.HandleTurn("apply scenario 9")
	assert.Nil(t, r.Bundle)
	assert.Contains(t, r.Text, "only")
	assert.Len(t, e.State().Scenarios, n)
}

func TestEngine_ResetKeepsSessionAndHistory(t *testing.T) {
	e := newTestEngine(nil)
	e.HandleTurn("next month")
	e.HandleTurn("10 people")
	id := e.State().SessionID
	entries := len(e.State().History)
	require.NotZero(t, entries)

	r := e.HandleTurn("let's start over")
	assert.Equal(t, msgReadyForNew, r.Text)

	state := e.State()
	assert.Equal(t, id, state.SessionID)
	assert.Len(t, state.History, entries)
	assert.Equal(t, ParameterSet{}, state.Params)
	assert.Equal(t, SlotNone, state.WaitingFor)
	assert.Zero(t, state.Target)
	assert.Nil(t, state.LastResult)
}

func TestEngine_VerbatimWindowFallsBackToDefaultDays(t *testing.T) {
	e := newTestEngine(nil)

	r := e.HandleTurn("sometime soon")
	assert.Equal(t, slotPrompts[SlotTimeWindow], r.Prompt)

	// the unrecognized answer is kept verbatim; the resolver falls back
	e.HandleTurn("whenever works")
	e.HandleTurn("10")
	e.HandleTurn("4")
	r = e.HandleTurn("80%")

	require.NotNil(t, r.Bundle)
	assert.Equal(t, "whenever works", r.Bundle.Params.TimeWindow)
	assert.Equal(t, DefaultWorkingDays, r.Bundle.Forecast.WorkingDays)
}

func TestEngine_ZeroAvailabilityReprompts(t *testing.T) {
	e := newTestEngine(nil)

	e.HandleTurn("October 2025")
	e.HandleTurn("10")
	e.HandleTurn("4")
	r := e.HandleTurn("0%")

	// zero never fills a slot, so the question repeats instead of producing
	// a degenerate forecast
	assert.Nil(t, r.Bundle)
	assert.Equal(t, slotPrompts[SlotAvailability], r.Prompt)
}

func TestEngine_CalculationFailurePreservesSlots(t *testing.T) {
	state := completeState()
	state.Params.AvgImplementationTime = -2
	e := newTestEngine(state)

	// force a recomputation through an availability tweak
	r := e.HandleTurn("set availability to 90%")
	assert.Nil(t, r.Bundle)
	assert.Equal(t, msgCalculationTrouble, r.Text)
	assert.Equal(t, "October 2025", e.State().Params.TimeWindow)
	assert.InDelta(t, 0.90, e.State().Params.AvailabilityRatio, 1e-9)
}

func TestEngine_EmptyUtterance(t *testing.T) {
	e := newTestEngine(nil)
	r := e.HandleTurn("   ")
	assert.Equal(t, msgReadyForNew, r.Text)
}

func TestNewEngine_ToleratesPartialState(t *testing.T) {
	e := NewEngine(&ConversationState{Params: ParameterSet{StaffCount: 5}})

	state := e.State()
	assert.NotEmpty(t, state.SessionID)
	assert.Equal(t, DefaultSplit(), state.Split)
	assert.Equal(t, 5, state.Params.StaffCount)
}

func completeState() *ConversationState {
	return &ConversationState{
		SessionID: "test-session",
		Params:    baseParams(),
		Split:     DefaultSplit(),
	}
}
