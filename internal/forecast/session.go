package forecast

import (
	"regexp"
	"strconv"
	"strings"
)

// Prompts emitted when the named slot is still missing.
var slotPrompts = map[Slot]string{
	SlotTimeWindow:   "I'd be happy to help with your capacity forecast! What time period are you planning for? (e.g., 'October 2025', 'next month', 'Q1 2026')",
	SlotStaffCount:   "How many staff members are on your team?",
	SlotAvgImplTime:  "What's the average time for New Implementation tasks in hours?",
	SlotAvailability: "What's your expected availability ratio? (e.g., 80% or 0.8)",
}

// slotPriority is the fixed order in which missing slots are prompted for.
var slotPriority = []Slot{SlotTimeWindow, SlotStaffCount, SlotAvgImplTime, SlotAvailability}

// Session is the slot-filling state machine. Exactly one utterance is
// processed at a time; there is no concurrent writer.
type Session struct {
	Params     ParameterSet
	WaitingFor Slot
}

// Observe feeds one utterance into the session. When the session was waiting
// for a specific slot the message is parsed for that slot alone; on a fresh
// turn the full extractor runs. The return value is the next prompt, or
// ("", true) once all four slots are filled.
func (s *Session) Observe(message string) (prompt string, complete bool) {
	if s.WaitingFor != SlotNone {
		s.fillAwaited(message)
	} else {
		s.fillFromExtraction(message)
	}
	return s.next()
}

// PromptFor returns the slot-filling question for a slot.
func PromptFor(slot Slot) string {
	return slotPrompts[slot]
}

// NextMissing returns the first unfilled slot in priority order, or SlotNone
// when the set is complete. Useful for resuming a restored session that was
// not waiting on a specific answer.
func NextMissing(params ParameterSet) Slot {
	s := Session{Params: params}
	for _, slot := range slotPriority {
		if s.missing(slot) {
			return slot
		}
	}
	return SlotNone
}

func (s *Session) fillAwaited(message string) {
	switch s.WaitingFor {
	case SlotTimeWindow:
		// An unrecognized answer is kept verbatim; the resolver's fallback
		// handles it downstream.
		if w := ExtractTimeWindow(message); w != "" {
			s.Params.TimeWindow = w
		} else {
			s.Params.TimeWindow = strings.TrimSpace(message)
		}
	case SlotStaffCount:
		if n := leadingInt(message); n > 0 {
			s.Params.StaffCount = n
		} else {
			s.Params.StaffCount = firstInt(message)
		}
	case SlotAvgImplTime:
		if v := leadingFloat(message); v > 0 {
			s.Params.AvgImplementationTime = v
		} else {
			s.Params.AvgImplementationTime = float64(firstInt(message))
		}
	case SlotAvailability:
		// "80" and "80%" both mean 80 percent when availability was asked
		// for directly; "0.8" is taken as a ratio.
		if n := leadingInt(message); n > 0 {
			s.Params.AvailabilityRatio = float64(n) / 100
		} else {
			s.Params.AvailabilityRatio = leadingFloat(message)
		}
	}
	s.WaitingFor = SlotNone
}

func (s *Session) fillFromExtraction(message string) {
	found := ExtractAll(message)
	if found.TimeWindow != "" {
		s.Params.TimeWindow = found.TimeWindow
	}
	if found.StaffCount > 0 {
		s.Params.StaffCount = found.StaffCount
	}
	if found.AvgImplementationTime > 0 {
		s.Params.AvgImplementationTime = found.AvgImplementationTime
	}
	if found.AvailabilityRatio > 0 {
		s.Params.AvailabilityRatio = found.AvailabilityRatio
	}
}

// next scans the slots in priority order, arming WaitingFor on the first
// missing one.
func (s *Session) next() (string, bool) {
	for _, slot := range slotPriority {
		if s.missing(slot) {
			s.WaitingFor = slot
			return slotPrompts[slot], false
		}
	}
	s.WaitingFor = SlotNone
	return "", true
}

func (s *Session) missing(slot Slot) bool {
	switch slot {
	case SlotTimeWindow:
		return s.Params.TimeWindow == ""
	case SlotStaffCount:
		return s.Params.StaffCount <= 0
	case SlotAvgImplTime:
		return s.Params.AvgImplementationTime <= 0
	case SlotAvailability:
		return s.Params.AvailabilityRatio <= 0
	}
	return false
}

var (
	leadingIntRe   = regexp.MustCompile(`^(\d+)`)
	leadingFloatRe = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)`)
	anyIntRe       = regexp.MustCompile(`\d+`)
)

func leadingInt(s string) int {
	if m := leadingIntRe.FindString(strings.TrimSpace(s)); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}

func leadingFloat(s string) float64 {
	if m := leadingFloatRe.FindString(strings.TrimSpace(s)); m != "" {
		v, _ := strconv.ParseFloat(m, 64)
		return v
	}
	return 0
}

func firstInt(s string) int {
	if m := anyIntRe.FindString(s); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}
