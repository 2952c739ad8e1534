package ai

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/maltehb/capr/internal/forecast"
)

// adviceSchema is reflected once from the Advice struct and sent with every
// request as a strict structured-output schema.
var adviceSchema = generateSchema[Advice]()

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

func buildSystemPrompt(bundle forecast.Bundle) string {
	type snapshot struct {
		Params    forecast.ParameterSet    `json:"parameters"`
		Split     forecast.AllocationSplit `json:"allocation_split"`
		Forecast  forecast.ForecastResult  `json:"forecast"`
		Target    int                      `json:"target_capacity,omitempty"`
		Warnings  []string                 `json:"warnings,omitempty"`
		Scenarios []forecast.Scenario      `json:"scenarios,omitempty"`
	}

	snapJSON, _ := json.Marshal(snapshot{
		Params:    bundle.Params,
		Split:     bundle.Split,
		Forecast:  bundle.Forecast,
		Target:    bundle.Target,
		Warnings:  bundle.Constraints.Warnings,
		Scenarios: bundle.Scenarios,
	})

	return fmt.Sprintf(`You are a staffing-capacity advisor. Your job is to review a deterministic capacity forecast for a professional-services team and point out what the numbers alone cannot.

Current forecast:
%s

The model splits available hours between New Implementation work (the primary stream, measured in tasks) and Update Requests (the secondary stream). Working days × 8 hours × staff × availability gives the hour pool.

Rules:
- Never recompute or contradict the forecast numbers; they are exact
- Ground every risk and recommendation in the snapshot above
- Prefer recommendations the listed scenarios do not already cover
- Keep the summary to two or three sentences, written for a team lead
- Set confidence between 0 and 1 based on how directly the data supports the recommendation
- If the parameters look implausible, set clarification to say what to double-check and keep recommendations empty

Return valid JSON matching the required schema.`, string(snapJSON))
}

func buildUserPrompt(bundle forecast.Bundle) string {
	if bundle.Intent != "" {
		return fmt.Sprintf("The team's latest request: %s. Review the forecast.", bundle.Intent)
	}
	return "Review the forecast."
}
