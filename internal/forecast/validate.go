package forecast

import "fmt"

// ValidationResult flags out-of-range or suspicious parameter values. It is
// advisory only: computation proceeds regardless of Valid.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// Validate checks a parameter set against fixed business heuristics. Hard
// errors clear Valid; soft warnings leave it set.
func Validate(params ParameterSet) ValidationResult {
	res := ValidationResult{Valid: true}

	if params.StaffCount < 1 {
		res.Valid = false
		res.Errors = append(res.Errors, "staff count must be at least 1")
	}
	if params.AvailabilityRatio <= 0 || params.AvailabilityRatio > 1 {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf("availability ratio %.2f is outside (0, 1]", params.AvailabilityRatio))
	}
	if params.AvgImplementationTime <= 0 {
		res.Valid = false
		res.Errors = append(res.Errors, "average implementation time must be positive")
	}

	if params.StaffCount > 100 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("a team of %d is unusually large for this model", params.StaffCount))
	}
	if params.AvailabilityRatio > 0 && params.AvailabilityRatio < 0.5 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("availability of %.0f%% is unusually low — double-check the ratio", params.AvailabilityRatio*100))
	}
	if params.AvailabilityRatio > 0.95 && params.AvailabilityRatio <= 1 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("availability of %.0f%% leaves no room for meetings or interruptions", params.AvailabilityRatio*100))
	}
	if params.AvgImplementationTime > 80 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%.1fh per task is more than two working weeks — is that intended?", params.AvgImplementationTime))
	}
	if params.AvgImplementationTime > 0 && params.AvgImplementationTime < 0.5 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%.2fh per task is below the model's granularity", params.AvgImplementationTime))
	}

	return res
}
