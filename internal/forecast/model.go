package forecast

import "time"

// ParameterSet is the session's working state: the four inputs a forecast
// needs. A zero value means the slot has not been filled yet — every valid
// value is positive, so zero doubles as the absent marker.
type ParameterSet struct {
	TimeWindow            string  `json:"time_window"`
	StaffCount            int     `json:"staff_count"`
	AvgImplementationTime float64 `json:"avg_implementation_time"`
	AvailabilityRatio     float64 `json:"availability_ratio"`
}

// Complete reports whether all four slots are filled.
func (p ParameterSet) Complete() bool {
	return p.TimeWindow != "" && p.StaffCount > 0 &&
		p.AvgImplementationTime > 0 && p.AvailabilityRatio > 0
}

// AllocationSplit divides available hours between the two work streams.
// The shares sum to 1.0.
type AllocationSplit struct {
	PrimaryShare   float64 `json:"primary_share"`
	SecondaryShare float64 `json:"secondary_share"`
}

// DefaultSplit is the 65/35 New Implementation vs Update Request division.
func DefaultSplit() AllocationSplit {
	return AllocationSplit{PrimaryShare: 0.65, SecondaryShare: 0.35}
}

// ForecastResult is the immutable output of Compute. Hour quantities are kept
// unrounded; rounding happens at presentation time only.
type ForecastResult struct {
	WorkingDays     int     `json:"working_days"`
	TotalHours      float64 `json:"total_hours"`
	AvailableHours  float64 `json:"available_hours"`
	PrimaryHours    float64 `json:"primary_hours"`
	SecondaryHours  float64 `json:"secondary_hours"`
	PrimaryCapacity int     `json:"primary_capacity"`
}

// ParameterChange is one entry in the session's append-only audit trail.
type ParameterChange struct {
	Timestamp time.Time `json:"timestamp"`
	Slot      Slot      `json:"slot"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	Reason    string    `json:"reason"`
}

// ConversationState is everything a session persists between turns.
type ConversationState struct {
	SessionID  string            `json:"session_id"`
	Params     ParameterSet      `json:"params"`
	WaitingFor Slot              `json:"waiting_for,omitempty"`
	Split      AllocationSplit   `json:"split"`
	Target     int               `json:"target,omitempty"`
	LastResult *ForecastResult   `json:"last_result,omitempty"`
	Scenarios  []Scenario        `json:"scenarios,omitempty"`
	History    []ParameterChange `json:"history,omitempty"`
}
