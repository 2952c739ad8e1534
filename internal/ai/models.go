package ai

// Advice is the advisory layer's read on a computed forecast. It never feeds
// back into the calculator; the numbers stay deterministic.
type Advice struct {
	Summary         string           `json:"summary" jsonschema_description:"Two or three sentences on the overall health of the forecast"`
	Risks           []string         `json:"risks" jsonschema_description:"Concrete delivery risks visible in the current parameters"`
	Recommendations []Recommendation `json:"recommendations"`
	Clarification   string           `json:"clarification,omitempty" jsonschema_description:"Set when the forecast is too ambiguous to advise on"`
}

type Recommendation struct {
	Action     string  `json:"action" jsonschema_description:"One concrete change the team could make"`
	Impact     string  `json:"impact" jsonschema_description:"Expected effect on implementation capacity"`
	Confidence float64 `json:"confidence" jsonschema_description:"Between 0 and 1"`
}
