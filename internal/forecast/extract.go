package forecast

import (
	"regexp"
	"strconv"
)

// Slot names one of the four parameters a chat turn can fill.
type Slot string

const (
	SlotTimeWindow   Slot = "timeWindow"
	SlotStaffCount   Slot = "staffCount"
	SlotAvgImplTime  Slot = "avgImplementationTime"
	SlotAvailability Slot = "availabilityRatio"
	SlotNone         Slot = ""

	// SlotTargetCapacity is a synthetic slot used by the adjustment parser
	// when an utterance states a capacity goal rather than a parameter value.
	SlotTargetCapacity Slot = "targetCapacity"
)

// Keyword lists for the numeric slots. First hit wins.
var (
	staffKeywords    = []string{"staff", "people", "team", "members"}
	durationKeywords = []string{"hours", "hour", "implementation", "time"}
)

// timeWindowPatterns are tried in order; the first full match is returned
// verbatim, without normalization.
var timeWindowPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})\b`),
	regexp.MustCompile(`(?i)\b(next|this)\s+(month|quarter|year)\b`),
	regexp.MustCompile(`(?i)\bq[1-4]\s+(\d{4})\b`),
	regexp.MustCompile(`\b(\d{1,2})/(\d{4})\b`),
	regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\s+(\d{4})\b`),
}

var (
	percentRe = regexp.MustCompile(`(\d+)%`)
	ratioRe   = regexp.MustCompile(`0\.(\d+)`)
)

// ExtractTimeWindow returns the first recognized calendar-period expression
// in the message, or "" if none matches.
func ExtractTimeWindow(message string) string {
	for _, p := range timeWindowPatterns {
		if m := p.FindString(message); m != "" {
			return m
		}
	}
	return ""
}

// ExtractNumber finds "<digits> <keyword>" for each keyword in order and
// returns the first match's integer. A zero return means no match; all
// meaningful values are positive.
func ExtractNumber(message string, keywords []string) int {
	for _, kw := range keywords {
		p := regexp.MustCompile(`(?i)(\d+)\s*` + regexp.QuoteMeta(kw))
		if m := p.FindStringSubmatch(message); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	return 0
}

// ExtractAvailability recognizes "N%" or a bare "0.d" decimal. A bare
// integer with no percent sign is deliberately not recognized; broadening
// the match would make numbers like team sizes read as availability.
func ExtractAvailability(message string) float64 {
	if m := percentRe.FindStringSubmatch(message); m != nil {
		n, _ := strconv.Atoi(m[1])
		return float64(n) / 100
	}
	if m := ratioRe.FindStringSubmatch(message); m != nil {
		v, _ := strconv.ParseFloat("0."+m[1], 64)
		return v
	}
	return 0
}

// ExtractAll runs every slot extractor against the message and returns a
// ParameterSet with whatever was found. Missing slots stay zero.
func ExtractAll(message string) ParameterSet {
	return ParameterSet{
		TimeWindow:            ExtractTimeWindow(message),
		StaffCount:            ExtractNumber(message, staffKeywords),
		AvgImplementationTime: float64(ExtractNumber(message, durationKeywords)),
		AvailabilityRatio:     ExtractAvailability(message),
	}
}
