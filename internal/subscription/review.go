package subscription

import "fmt"

// Decision is the user's verdict on one candidate during a review.
type Decision int

// Review decisions. Skip leaves the candidate for a later review.
const (
	DecisionSkip Decision = iota
	DecisionConfirm
	DecisionDismiss
)

func (d Decision) String() string {
	switch d {
	case DecisionConfirm:
		return "confirm"
	case DecisionDismiss:
		return "dismiss"
	case DecisionSkip:
		return "skip"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// ReviewSummary counts the outcome of a review.
type ReviewSummary struct {
	Confirmed []string
	Dismissed []string
	Skipped   []string
}

// Record adds vendor to the bucket for d.
func (r *ReviewSummary) Record(vendor string, d Decision) {
	switch d {
	case DecisionConfirm:
		r.Confirmed = append(r.Confirmed, vendor)
	case DecisionDismiss:
		r.Dismissed = append(r.Dismissed, vendor)
	default:
		r.Skipped = append(r.Skipped, vendor)
	}
}

// Total is the number of candidates reviewed.
func (r ReviewSummary) Total() int {
	return len(r.Confirmed) + len(r.Dismissed) + len(r.Skipped)
}
