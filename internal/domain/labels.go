package domain

// Labels holds the human-meaning text for positive deviation, negative
// deviation, and no change, for one anomaly direction code.
type Labels struct {
	Positive string `json:"positive"`
	Negative string `json:"negative"`
	Neutral  string `json:"neutral"`
}

// directionLabels covers both catalog schema generations: the current
// anomaly_direction codes and the old risk_direction codes.
var directionLabels = map[string]Labels{
	"positive_bad":     {Positive: "Worse", Negative: "Better", Neutral: "No Change"},
	"positive_good":    {Positive: "Better", Negative: "Worse", Neutral: "No Change"},
	"positive_warming": {Positive: "Warmer", Negative: "Cooler", Neutral: "No Change"},
	"negative_warming": {Positive: "Cooler", Negative: "Warmer", Neutral: "No Change"},
	"higher_worse":     {Positive: "Worse", Negative: "Better", Neutral: "No Change"},
	"lower_worse":      {Positive: "Better", Negative: "Worse", Neutral: "No Change"},
	"neutral":          {Positive: "Increase", Negative: "Decrease", Neutral: "No Change"},
}

// genericLabels is the fallback for unknown direction codes. Unknown codes
// are upstream data-quality issues, not errors.
var genericLabels = Labels{Positive: "Increase", Negative: "Decrease", Neutral: "No Change"}

// InterpretationLabels maps an anomaly/risk direction code to interpretation
// labels. It is a pure lookup with no dependency on color selection.
func InterpretationLabels(direction string) Labels {
	if labels, ok := directionLabels[direction]; ok {
		return labels
	}
	return genericLabels
}
