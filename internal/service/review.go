package service

import (
	"context"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

// DecideFunc asks for a verdict on the candidate at index of total.
type DecideFunc func(ctx context.Context, candidate model.Candidate, index, total int) (subscription.Decision, error)

// ApplyDecision carries out one review decision. Confirming persists the
// subscription; dismissing only updates the session. A nil session records
// nothing, so a dismissal is then a no-op.
func (i *Insights) ApplyDecision(ctx context.Context, ownerID int64, session *subscription.Session, candidate model.Candidate, d subscription.Decision) error {
	switch d {
	case subscription.DecisionConfirm:
		if _, err := i.ConfirmCandidate(ctx, ownerID, candidate); err != nil {
			return err
		}
		session.Confirm(candidate.VendorKey)
	case subscription.DecisionDismiss:
		session.Dismiss(candidate.VendorKey)
	}
	return nil
}

// Review walks the current candidates in order, asking decide for each one.
// It stops at the first error, returning what was decided so far.
func (i *Insights) Review(ctx context.Context, ownerID int64, session *subscription.Session, decide DecideFunc) (subscription.ReviewSummary, error) {
	var summary subscription.ReviewSummary
	if session == nil {
		session = subscription.NewSession()
	}

	candidates, err := i.DetectCandidates(ctx, ownerID, session)
	if err != nil {
		return summary, err
	}

	for idx, c := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		d, err := decide(ctx, c, idx, len(candidates))
		if err != nil {
			return summary, err
		}
		if err := i.ApplyDecision(ctx, ownerID, session, c, d); err != nil {
			return summary, err
		}
		summary.Record(c.DisplayName, d)
	}

	i.logger.Info("Review finished",
		"owner_id", ownerID,
		"confirmed", len(summary.Confirmed),
		"dismissed", len(summary.Dismissed),
		"skipped", len(summary.Skipped))
	return summary, nil
}
