package types

// BirthInput is the user-supplied birth data a report is generated
// from. It is immutable once submitted: it feeds the idempotency hash
// and prompt building and is never mutated downstream.
type BirthInput struct {
	Name        string  `json:"name"`
	DateOfBirth string  `json:"date_of_birth"`
	TimeOfBirth string  `json:"time_of_birth"`
	Place       string  `json:"place"`
	Gender      string  `json:"gender,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
	// DecisionContext carries the question being weighed for the
	// decision-support report type; empty for all others.
	DecisionContext string `json:"decision_context,omitempty"`
}

// Complete reports whether the fields required for chart computation
// are all present.
func (b BirthInput) Complete() bool {
	return b.DateOfBirth != "" && b.TimeOfBirth != "" && b.Place != ""
}
