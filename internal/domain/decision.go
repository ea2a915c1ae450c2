package domain

import "fmt"

// Decision is the answer to a fuzzy-match disambiguation question.
type Decision int

const (
	// DecisionAdopt means the values are the same entity and the new spelling
	// becomes the canonical name.
	DecisionAdopt Decision = iota + 1
	// DecisionKeep means the values are the same entity and the existing
	// canonical name stays.
	DecisionKeep
	// DecisionReject means the values are different entities.
	DecisionReject
)

// String returns the option label shown to the operator ("1", "2", "3").
func (d Decision) String() string {
	switch d {
	case DecisionAdopt:
		return "1"
	case DecisionKeep:
		return "2"
	case DecisionReject:
		return "3"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Name returns a human-readable name for logs and config.
func (d Decision) Name() string {
	switch d {
	case DecisionAdopt:
		return "adopt"
	case DecisionKeep:
		return "keep"
	case DecisionReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Valid reports whether d is one of the three decisions.
func (d Decision) Valid() bool {
	return d >= DecisionAdopt && d <= DecisionReject
}

// ParseDecision accepts an option label ("1".."3") or a name ("adopt", "keep", "reject").
func ParseDecision(s string) (Decision, bool) {
	switch s {
	case "1", "adopt":
		return DecisionAdopt, true
	case "2", "keep":
		return DecisionKeep, true
	case "3", "reject":
		return DecisionReject, true
	default:
		return 0, false
	}
}
