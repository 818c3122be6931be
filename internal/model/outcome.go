package model

// OutcomeKind classifies the result of locating one field
type OutcomeKind int

const (
	OutcomeLabelAbsent     OutcomeKind = iota // Label not found at all
	OutcomePresentButEmpty                    // Label found, every value path empty
	OutcomeValue                              // Label found with text
)

// Sentinel strings written in place of missing values. These are
// diagnostic markers and must stay textual in every export.
const (
	SentinelLabelAbsent     = "na"
	SentinelPresentButEmpty = "pm"
)

// Outcome is the tri-state result for a single field
type Outcome struct {
	Kind OutcomeKind
	Text string // Only set for OutcomeValue
}

// Value returns a value outcome
func Value(text string) Outcome {
	return Outcome{Kind: OutcomeValue, Text: text}
}

// PresentButEmpty returns the "label present, value missing" outcome
func PresentButEmpty() Outcome {
	return Outcome{Kind: OutcomePresentButEmpty}
}

// LabelAbsent returns the "label not present" outcome
func LabelAbsent() Outcome {
	return Outcome{Kind: OutcomeLabelAbsent}
}

// String renders the outcome as it appears in output rows
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeValue:
		return o.Text
	case OutcomePresentButEmpty:
		return SentinelPresentButEmpty
	default:
		return SentinelLabelAbsent
	}
}

// IsSentinel reports whether s is one of the diagnostic sentinel strings
func IsSentinel(s string) bool {
	return s == SentinelLabelAbsent || s == SentinelPresentButEmpty
}
