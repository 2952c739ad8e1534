package forecast

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// AnalyzeIntent is the fixed description for analytical follow-ups that
// carry no numeric change.
const AnalyzeIntent = "analyze current forecast"

// AdjustmentIntent is the parsed form of a follow-up utterance against an
// already-complete session. Adjustments maps slot names (including the
// synthetic targetCapacity slot) to new absolute values; only mentioned
// slots appear. The boolean flags come from independent pattern families and
// are not mutually exclusive.
type AdjustmentIntent struct {
	Adjustments map[Slot]float64

	Intent              string
	IsAdjustment        bool
	IsSatisfactionQuery bool
	IsComparisonQuery   bool

	// Target bookkeeping, populated when a capacity goal was detected.
	IsRelativeTarget bool
	AdditionalTasks  int
	CurrentCapacity  int
	GapToTarget      int

	// Coarse signal: 0.8 when a concrete lever or target matched,
	// 0.3 for the analysis catch-all.
	Confidence float64
}

// Lever pattern families, evaluated in fixed order with first-match-wins
// semantics within and across the families.
var (
	staffAddRe    = regexp.MustCompile(`(?i)\b(?:add|hire|recruit)\s+(\d+)\b|\+(\d+)\s*(?:staff|people|members?|engineers?)|\b(\d+)\s+more\s+(?:staff|people|members?|engineers?)\b`)
	staffRemoveRe = regexp.MustCompile(`(?i)\b(?:remove|cut|lose|drop)\s+(\d+)\b|-(\d+)\s*(?:staff|people|members?|engineers?)`)
	staffSetRe    = regexp.MustCompile(`(?i)\b(?:set\s+)?(?:staff|team)(?:\s+(?:size|count))?\s+to\s+(\d+)\b`)

	availSetRe = regexp.MustCompile(`(?i)\b(?:set|boost|increase|raise)\s+(?:the\s+)?availability\s+to\s+(\d+)\s*%?|\bavailability\s+(?:to|at)\s+(\d+)\s*%?|\b(\d+)\s*%\s+availability\b`)

	durationSetRe    = regexp.MustCompile(`(?i)\b(?:set|change)\s+(?:the\s+)?(?:avg|average)?\s*(?:implementation\s+)?time\s+to\s+(\d+(?:\.\d+)?)`)
	durationReduceRe = regexp.MustCompile(`(?i)\b(?:reduce|improve|cut|shave)\s+(?:the\s+)?(?:avg|average)?\s*(?:implementation\s+)?time\s+by\s+(\d+(?:\.\d+)?)`)

	relativeTargetRe = regexp.MustCompile(`(?i)\b(\d+)\s+(?:more|additional|extra)\s+tasks?\b`)
	absoluteTargetRe = regexp.MustCompile(`(?i)\b(?:reach|need|want|deliver|target)\s+(\d+)\s+tasks?\b|\b(\d+)\s+tasks?\s+(?:in\s+)?total\b`)
)

var analysisKeywords = []string{
	"how", "what if", "improve", "increase", "optimize", "recommend",
	"suggestion", "analyze", "analysis", "compare", "feasible", "feasibility",
	"scenario", "option", "budget", "time", "capacity", "better",
}

var satisfactionKeywords = []string{
	"too low", "not enough", "insufficient", "too few", "disappointing", "need more",
}

var comparisonKeywords = []string{
	"what if", "versus", " vs ", "vs.", "compare", "instead", "alternative",
}

// ParseAdjustment interprets a follow-up utterance against a complete
// parameter set. Lever families run in fixed order and stop at the first
// match; target detection runs regardless, since one message can both move a
// lever and state a goal. last supplies the capacity baseline for relative
// targets and gap analysis.
func ParseAdjustment(message string, params ParameterSet, last *ForecastResult) AdjustmentIntent {
	intent := AdjustmentIntent{Adjustments: make(map[Slot]float64)}
	lower := strings.ToLower(message)

	parseLever(message, params, &intent)
	parseTarget(message, last, &intent)
	intent.IsSatisfactionQuery = matchesAny(lower, satisfactionKeywords)
	intent.IsComparisonQuery = matchesAny(lower, comparisonKeywords)

	if len(intent.Adjustments) > 0 {
		intent.IsAdjustment = true
		intent.Confidence = 0.8
	} else if matchesAny(lower, analysisKeywords) || intent.IsSatisfactionQuery || intent.IsComparisonQuery {
		// Deliberate catch-all: vaguely analytical follow-ups trigger the
		// scenario pipeline instead of falling back to slot-filling. A
		// dissatisfied or comparing message that names no concrete change
		// lands here too.
		intent.Intent = AnalyzeIntent
		intent.IsAdjustment = true
		intent.Confidence = 0.3
	}

	return intent
}

// parseLever applies the staff, availability, and duration families in
// order, stopping at the first match.
func parseLever(message string, params ParameterSet, intent *AdjustmentIntent) bool {
	if m := staffAddRe.FindStringSubmatch(message); m != nil {
		delta := submatchInt(m)
		next := params.StaffCount + delta
		intent.Adjustments[SlotStaffCount] = float64(next)
		intent.Intent = fmt.Sprintf("add %d staff (%d → %d)", delta, params.StaffCount, next)
		return true
	}
	if m := staffRemoveRe.FindStringSubmatch(message); m != nil {
		delta := submatchInt(m)
		next := params.StaffCount - delta
		if next < 1 {
			next = 1
		}
		intent.Adjustments[SlotStaffCount] = float64(next)
		intent.Intent = fmt.Sprintf("remove %d staff (%d → %d)", delta, params.StaffCount, next)
		return true
	}
	if m := staffSetRe.FindStringSubmatch(message); m != nil {
		next := submatchInt(m)
		if next < 1 {
			next = 1
		}
		intent.Adjustments[SlotStaffCount] = float64(next)
		intent.Intent = fmt.Sprintf("set staff to %d", next)
		return true
	}

	if m := availSetRe.FindStringSubmatch(message); m != nil {
		ratio := clamp(float64(submatchInt(m))/100, 0.10, 0.95)
		intent.Adjustments[SlotAvailability] = ratio
		intent.Intent = fmt.Sprintf("set availability to %.0f%%", ratio*100)
		return true
	}

	if m := durationSetRe.FindStringSubmatch(message); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		if v < 0.5 {
			v = 0.5
		}
		intent.Adjustments[SlotAvgImplTime] = v
		intent.Intent = fmt.Sprintf("set implementation time to %.1fh", v)
		return true
	}
	if m := durationReduceRe.FindStringSubmatch(message); m != nil {
		delta, _ := strconv.ParseFloat(m[1], 64)
		next := params.AvgImplementationTime - delta
		if next < 0.5 {
			next = 0.5
		}
		intent.Adjustments[SlotAvgImplTime] = next
		intent.Intent = fmt.Sprintf("reduce implementation time by %.1fh (%.1f → %.1f)", delta, params.AvgImplementationTime, next)
		return true
	}

	return false
}

// parseTarget detects a stated capacity goal. The relative family is checked
// strictly before the absolute one; a message matching both is treated as
// relative.
func parseTarget(message string, last *ForecastResult, intent *AdjustmentIntent) {
	current := 0
	if last != nil {
		current = last.PrimaryCapacity
	}

	if m := relativeTargetRe.FindStringSubmatch(message); m != nil {
		more := submatchInt(m)
		target := current + more
		intent.Adjustments[SlotTargetCapacity] = float64(target)
		intent.IsRelativeTarget = true
		intent.AdditionalTasks = more
		intent.CurrentCapacity = current
		intent.GapToTarget = more
		if intent.Intent == "" {
			intent.Intent = fmt.Sprintf("target %d more tasks (%d total)", more, target)
		}
		return
	}

	if m := absoluteTargetRe.FindStringSubmatch(message); m != nil {
		target := submatchInt(m)
		intent.Adjustments[SlotTargetCapacity] = float64(target)
		intent.CurrentCapacity = current
		intent.GapToTarget = target - current
		if intent.Intent == "" {
			intent.Intent = fmt.Sprintf("target %d tasks", target)
		}
	}
}

// submatchInt returns the first non-empty capture group as an integer.
// The lever regexes use alternation, so the hit can land in any group.
func submatchInt(m []string) int {
	for _, g := range m[1:] {
		if g != "" {
			n, _ := strconv.Atoi(g)
			return n
		}
	}
	return 0
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Apply writes the intent's slot adjustments onto a parameter set, leaving
// unmentioned slots untouched. The synthetic target slot is returned
// separately (0 when absent).
func (a AdjustmentIntent) Apply(params ParameterSet) (ParameterSet, int) {
	for slot, v := range a.Adjustments {
		switch slot {
		case SlotStaffCount:
			params.StaffCount = int(v)
		case SlotAvailability:
			params.AvailabilityRatio = v
		case SlotAvgImplTime:
			params.AvgImplementationTime = v
		}
	}
	target := 0
	if t, ok := a.Adjustments[SlotTargetCapacity]; ok {
		target = int(t)
	}
	return params, target
}
