package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Feasibility is a coarse business-realism tag on a scenario.
type Feasibility string

const (
	FeasibilityHigh   Feasibility = "High"
	FeasibilityMedium Feasibility = "Medium"
	FeasibilityLow    Feasibility = "Low"
)

// Scenario is one alternative parameter set with its evaluated forecast.
type Scenario struct {
	Name           string          `json:"name"`
	Parameters     ParameterSet    `json:"parameters"`
	Split          AllocationSplit `json:"split"`
	Result         ForecastResult  `json:"result"`
	Changes        []string        `json:"changes"`
	Feasibility    Feasibility     `json:"feasibility"`
	Priority       int             `json:"priority"`
	TargetAchieved bool            `json:"target_achieved,omitempty"`
	GapAnalysis    string          `json:"gap_analysis,omitempty"`
}

const maxScenarios = 3

// Lever feasibility ceilings for target mode.
const (
	maxPrimaryShare     = 0.85
	minSecondaryShare   = 0.15
	minDuration         = 0.5
	maxDurationCut      = 4.0
	maxAvailability     = 0.90
	maxAvailabilityGain = 0.25
	maxNewHires         = 8
	maxStaffGrowth      = 1.5 // staffing is the lever of last resort
)

// GenerateScenarios enumerates and ranks alternative parameter sets for a
// base forecast. With target == 0 it produces the fixed exploratory list;
// with a target it solves each lever for the minimal change that reaches the
// goal, subject to per-lever feasibility ceilings. At most three scenarios
// are returned, and every evaluation goes through Compute.
func GenerateScenarios(base ParameterSet, split AllocationSplit, target int, now time.Time) []Scenario {
	if target > 0 {
		return generateTargeted(base, split, target, now)
	}
	return generateExploratory(base, split, now)
}

// generateExploratory builds the fixed candidate list in declared priority
// order and truncates to the top three. No re-sorting by capacity here; the
// order is the ranking.
func generateExploratory(base ParameterSet, split AllocationSplit, now time.Time) []Scenario {
	type candidate struct {
		name        string
		mutate      func(*ParameterSet)
		feasibility Feasibility
	}

	candidates := []candidate{
		{"Add 2 Staff", func(p *ParameterSet) {
			p.StaffCount += 2
		}, staffFeasibility(2)},
		{"Streamline Implementation", func(p *ParameterSet) {
			p.AvgImplementationTime = math.Max(minDuration, p.AvgImplementationTime-0.5)
		}, durationFeasibility(base.AvgImplementationTime, math.Max(minDuration, base.AvgImplementationTime-0.5))},
		{"Boost Availability", func(p *ParameterSet) {
			p.AvailabilityRatio = math.Min(0.95, p.AvailabilityRatio+0.10)
		}, availabilityFeasibility(base.AvailabilityRatio, math.Min(0.95, base.AvailabilityRatio+0.10))},
		{"Add Staff + Faster Delivery", func(p *ParameterSet) {
			p.StaffCount++
			p.AvgImplementationTime = math.Max(minDuration, p.AvgImplementationTime-0.5)
		}, FeasibilityMedium},
		{"Add Staff + Higher Availability", func(p *ParameterSet) {
			p.StaffCount++
			p.AvailabilityRatio = math.Min(0.95, p.AvailabilityRatio+0.05)
		}, FeasibilityMedium},
		{"Faster Delivery + Higher Availability", func(p *ParameterSet) {
			p.AvgImplementationTime = math.Max(minDuration, p.AvgImplementationTime*0.85)
			p.AvailabilityRatio = math.Min(0.95, p.AvailabilityRatio+0.05)
		}, FeasibilityMedium},
		{"Combined Improvement Push", func(p *ParameterSet) {
			p.StaffCount++
			p.AvgImplementationTime = math.Max(minDuration, p.AvgImplementationTime*0.90)
			p.AvailabilityRatio = math.Min(0.95, p.AvailabilityRatio+0.03)
		}, FeasibilityMedium},
		{"Conservative Buffer", func(p *ParameterSet) {
			p.AvailabilityRatio = math.Max(0.10, p.AvailabilityRatio-0.05)
			p.AvgImplementationTime += 0.5
		}, FeasibilityHigh},
	}

	var out []Scenario
	for i, c := range candidates {
		params := base
		c.mutate(&params)
		if params == base {
			continue // lever already at its bound, nothing to show
		}
		s, err := buildScenario(c.name, base, params, split, split, c.feasibility, i+1, now)
		if err != nil {
			continue
		}
		out = append(out, s)
		if len(out) == maxScenarios {
			break
		}
	}
	return out
}

// leverCandidate is a solved single-lever scenario in target mode.
type leverCandidate struct {
	scenario Scenario
	kind     string // "allocation", "efficiency", "availability", "staffing"
}

func generateTargeted(base ParameterSet, split AllocationSplit, target int, now time.Time) []Scenario {
	current, err := Compute(base, split, now)
	if err != nil {
		return nil
	}

	if current.PrimaryCapacity >= target {
		return []Scenario{{
			Name:           "Target Already Met",
			Parameters:     base,
			Split:          split,
			Result:         current,
			Feasibility:    FeasibilityHigh,
			Priority:       0,
			TargetAchieved: true,
			GapAnalysis:    fmt.Sprintf("current capacity %d already covers the target of %d tasks", current.PrimaryCapacity, target),
		}}
	}

	levers := solveLevers(base, split, target, current, now)

	var out []Scenario

	// 1. Best single lever among those that reach the target.
	primary := bestReaching(levers, target)
	if primary != nil {
		out = append(out, primary.scenario)
	}

	// 2. Blended allocation-shift + efficiency-gain, weighted by which lever
	// led. Offered even when it does not fully close the gap.
	if s, ok := blendedOptimization(base, split, target, current, primary, now); ok {
		out = append(out, s)
	}

	// 3. Capped efficiency + availability improvement.
	if s, ok := comprehensiveImprovement(base, split, target, current, now); ok {
		out = append(out, s)
	}

	// Backfill from the remaining single-lever candidates, closest to the
	// target first.
	if len(out) < maxScenarios {
		rest := make([]leverCandidate, 0, len(levers))
		for _, lc := range levers {
			if primary != nil && lc.scenario.Name == primary.scenario.Name {
				continue
			}
			rest = append(rest, lc)
		}
		sort.SliceStable(rest, func(i, j int) bool {
			di := abs(rest[i].scenario.Result.PrimaryCapacity - target)
			dj := abs(rest[j].scenario.Result.PrimaryCapacity - target)
			return di < dj
		})
		for _, lc := range rest {
			out = append(out, lc.scenario)
			if len(out) == maxScenarios {
				break
			}
		}
	}

	if len(out) > maxScenarios {
		out = out[:maxScenarios]
	}
	for i := range out {
		out[i].GapAnalysis = gapAnalysis(out[i].Result.PrimaryCapacity, target)
		out[i].TargetAchieved = out[i].Result.PrimaryCapacity >= target
	}
	return out
}

// solveLevers computes the minimal single-variable change per lever that
// reaches the target exactly, dropping levers whose required change exceeds
// its feasibility ceiling. Presentation priority is fixed: allocation >
// efficiency > availability > staffing.
func solveLevers(base ParameterSet, split AllocationSplit, target int, current ForecastResult, now time.Time) []leverCandidate {
	var levers []leverCandidate
	need := float64(target) * base.AvgImplementationTime

	// Allocation: forward-only share shift, never past 85/15.
	if current.AvailableHours > 0 {
		requiredShare := need / current.AvailableHours
		if requiredShare <= maxPrimaryShare && 1-requiredShare >= minSecondaryShare && requiredShare > split.PrimaryShare {
			newSplit := AllocationSplit{PrimaryShare: requiredShare, SecondaryShare: 1 - requiredShare}
			if s, err := buildScenario("Shift Work Allocation", base, base, split, newSplit, allocationFeasibility(split.PrimaryShare, requiredShare), 1, now); err == nil {
				levers = append(levers, leverCandidate{s, "allocation"})
			}
		}
	}

	// Efficiency: shorter implementation time, bounded cut.
	if target > 0 {
		requiredDuration := current.PrimaryHours / float64(target)
		cut := base.AvgImplementationTime - requiredDuration
		if requiredDuration >= minDuration && cut > 0 && cut <= maxDurationCut {
			params := base
			params.AvgImplementationTime = requiredDuration
			if s, err := buildScenario("Improve Delivery Efficiency", base, params, split, split, durationFeasibility(base.AvgImplementationTime, requiredDuration), 2, now); err == nil {
				levers = append(levers, leverCandidate{s, "efficiency"})
			}
		}
	}

	// Availability: bounded ratio increase.
	if current.TotalHours > 0 && split.PrimaryShare > 0 {
		requiredAvail := need / (current.TotalHours * split.PrimaryShare)
		gain := requiredAvail - base.AvailabilityRatio
		if requiredAvail <= maxAvailability && gain > 0 && gain <= maxAvailabilityGain {
			params := base
			params.AvailabilityRatio = requiredAvail
			if s, err := buildScenario("Raise Availability", base, params, split, split, availabilityFeasibility(base.AvailabilityRatio, requiredAvail), 3, now); err == nil {
				levers = append(levers, leverCandidate{s, "availability"})
			}
		}
	}

	// Staffing: the lever of last resort. Hiring is gated both on the hire
	// count and on the relative size of the jump.
	perHead := float64(current.WorkingDays*HoursPerDay) * base.AvailabilityRatio * split.PrimaryShare
	if perHead > 0 && current.PrimaryCapacity > 0 {
		staffNeeded := int(math.Ceil(need / perHead))
		hires := staffNeeded - base.StaffCount
		growthOK := float64(target) <= maxStaffGrowth*float64(current.PrimaryCapacity)
		if hires > 0 && hires <= maxNewHires && growthOK {
			params := base
			params.StaffCount = staffNeeded
			if s, err := buildScenario("Grow the Team", base, params, split, split, staffFeasibility(hires), 4, now); err == nil {
				levers = append(levers, leverCandidate{s, "staffing"})
			}
		}
	}

	return levers
}

// bestReaching picks the candidate with the greatest capacity among those
// that meet or exceed the target, breaking ties by lever priority.
func bestReaching(levers []leverCandidate, target int) *leverCandidate {
	var best *leverCandidate
	for i := range levers {
		lc := &levers[i]
		if lc.scenario.Result.PrimaryCapacity < target {
			continue
		}
		if best == nil || lc.scenario.Result.PrimaryCapacity > best.scenario.Result.PrimaryCapacity {
			best = lc
		}
	}
	return best
}

// blendedOptimization pairs a partial allocation shift with a partial
// efficiency gain. The 70/30 vs 40/60 weighting follows which single lever
// led: an allocation-led plan leans on reallocation, anything else leans on
// efficiency.
func blendedOptimization(base ParameterSet, split AllocationSplit, target int, current ForecastResult, primary *leverCandidate, now time.Time) (Scenario, bool) {
	if current.AvailableHours <= 0 || target <= 0 {
		return Scenario{}, false
	}

	wAlloc, wEff := 0.4, 0.6
	if primary != nil && primary.kind == "allocation" {
		wAlloc, wEff = 0.7, 0.3
	}

	requiredShare := float64(target) * base.AvgImplementationTime / current.AvailableHours
	newShare := split.PrimaryShare + (requiredShare-split.PrimaryShare)*wAlloc
	newShare = clamp(newShare, split.PrimaryShare, maxPrimaryShare)

	requiredDuration := current.PrimaryHours / float64(target)
	newDuration := base.AvgImplementationTime - (base.AvgImplementationTime-requiredDuration)*wEff
	newDuration = math.Max(minDuration, newDuration)

	if newShare == split.PrimaryShare && newDuration == base.AvgImplementationTime {
		return Scenario{}, false
	}

	params := base
	params.AvgImplementationTime = newDuration
	newSplit := AllocationSplit{PrimaryShare: newShare, SecondaryShare: 1 - newShare}
	s, err := buildScenario("Business Process Optimization", base, params, split, newSplit, FeasibilityMedium, 2, now)
	if err != nil {
		return Scenario{}, false
	}
	return s, true
}

// comprehensiveImprovement combines a capped efficiency gain with a capped
// availability gain, regardless of whether the pair closes the whole gap.
func comprehensiveImprovement(base ParameterSet, split AllocationSplit, target int, current ForecastResult, now time.Time) (Scenario, bool) {
	cut := math.Min(base.AvgImplementationTime*0.20, base.AvgImplementationTime-minDuration)
	gain := math.Min(0.08, maxAvailability-base.AvailabilityRatio)
	if cut <= 0 && gain <= 0 {
		return Scenario{}, false
	}

	params := base
	if cut > 0 {
		params.AvgImplementationTime = base.AvgImplementationTime - cut
	}
	if gain > 0 {
		params.AvailabilityRatio = base.AvailabilityRatio + gain
	}
	s, err := buildScenario("Comprehensive Process Improvement", base, params, split, split, FeasibilityMedium, 3, now)
	if err != nil {
		return Scenario{}, false
	}
	return s, true
}

// buildScenario evaluates a mutated parameter set through the calculator and
// records human-readable deltas against the base.
func buildScenario(name string, base, params ParameterSet, baseSplit, split AllocationSplit, feasibility Feasibility, priority int, now time.Time) (Scenario, error) {
	result, err := Compute(params, split, now)
	if err != nil {
		return Scenario{}, err
	}
	return Scenario{
		Name:        name,
		Parameters:  params,
		Split:       split,
		Result:      result,
		Changes:     describeChanges(base, params, baseSplit, split),
		Feasibility: feasibility,
		Priority:    priority,
	}, nil
}

func describeChanges(base, params ParameterSet, baseSplit, split AllocationSplit) []string {
	var changes []string
	if params.StaffCount != base.StaffCount {
		changes = append(changes, fmt.Sprintf("Staff: %d → %d", base.StaffCount, params.StaffCount))
	}
	if params.AvgImplementationTime != base.AvgImplementationTime {
		changes = append(changes, fmt.Sprintf("Avg implementation time: %.1fh → %.1fh", base.AvgImplementationTime, params.AvgImplementationTime))
	}
	if params.AvailabilityRatio != base.AvailabilityRatio {
		changes = append(changes, fmt.Sprintf("Availability: %.0f%% → %.0f%%", base.AvailabilityRatio*100, params.AvailabilityRatio*100))
	}
	if split != baseSplit {
		changes = append(changes, fmt.Sprintf("Allocation: %.0f/%.0f → %.0f/%.0f", baseSplit.PrimaryShare*100, baseSplit.SecondaryShare*100, split.PrimaryShare*100, split.SecondaryShare*100))
	}
	return changes
}

func gapAnalysis(capacity, target int) string {
	if capacity >= target {
		return fmt.Sprintf("reaches %d of the %d-task target", capacity, target)
	}
	return fmt.Sprintf("reaches %d of the %d-task target (%d short)", capacity, target, target-capacity)
}

// Feasibility lookups: fixed magnitude thresholds per lever kind. Combined
// levers always classify as Medium.

func staffFeasibility(hires int) Feasibility {
	switch {
	case hires <= 2:
		return FeasibilityHigh
	case hires <= 5:
		return FeasibilityMedium
	default:
		return FeasibilityLow
	}
}

func durationFeasibility(from, to float64) Feasibility {
	if from <= 0 {
		return FeasibilityLow
	}
	pct := (from - to) / from * 100
	switch {
	case pct <= 15:
		return FeasibilityHigh
	case pct <= 30:
		return FeasibilityMedium
	default:
		return FeasibilityLow
	}
}

func availabilityFeasibility(from, to float64) Feasibility {
	gain := to - from
	switch {
	case gain <= 0.05 && to <= 0.85:
		return FeasibilityHigh
	case gain <= 0.10 && to <= 0.90:
		return FeasibilityMedium
	default:
		return FeasibilityLow
	}
}

// allocationFeasibility mirrors the availability thresholds on share points;
// a shift inside the 85/15 guardrail is never worse than Medium.
func allocationFeasibility(from, to float64) Feasibility {
	if to-from <= 0.05 {
		return FeasibilityHigh
	}
	return FeasibilityMedium
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
