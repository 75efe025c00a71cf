package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

// Insights connects stored history to the detector and the insight engine.
// Each call reads what it needs once and computes over that snapshot.
type Insights struct {
	store    Storage
	engine   *insight.Engine
	detector *subscription.Detector
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures Insights.
type Option func(*Insights)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Insights) {
		i.logger = logger
	}
}

// WithClock sets the clock that anchors "today" and the current month.
func WithClock(now func() time.Time) Option {
	return func(i *Insights) {
		i.now = now
	}
}

// WithEngine replaces the default insight engine.
func WithEngine(engine *insight.Engine) Option {
	return func(i *Insights) {
		i.engine = engine
	}
}

// NewInsights creates the orchestrator over store.
func NewInsights(store Storage, opts ...Option) *Insights {
	i := &Insights{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.engine == nil {
		i.engine = insight.NewEngine(i.logger)
	}
	i.detector = subscription.NewDetector(i.logger)
	i.logger = i.logger.With("component", "insights_service")
	return i
}

// Now returns the current time from the configured clock.
func (i *Insights) Now() time.Time {
	return i.now()
}

// GenerateInsights returns the insights for an owner over window. A failed
// store read is logged and degrades to the no-data placeholder.
func (i *Insights) GenerateInsights(ctx context.Context, ownerID int64, window model.DateRange) []model.Insight {
	txns, err := i.store.GetTransactions(ctx, Comprehensive(ownerID))
	if err != nil {
		i.logger.Error("Failed to load transactions for insights", "owner_id", ownerID, "error", err)
		return []model.Insight{insight.NoData()}
	}

	subs, err := i.store.ListActiveSubscriptions(ctx, ownerID)
	if err != nil {
		i.logger.Warn("Failed to load subscriptions for insights", "owner_id", ownerID, "error", err)
		subs = nil
	}

	return i.engine.Generate(ctx, insight.Request{
		Now:                 i.now(),
		Window:              window,
		Transactions:        txns,
		ActiveSubscriptions: subs,
	})
}

// DetectCandidates runs detection over an owner's full history. Vendors that
// already have a stored subscription are excluded along with anything the
// session excludes. The session is not modified.
func (i *Insights) DetectCandidates(ctx context.Context, ownerID int64, session *subscription.Session) ([]model.Candidate, error) {
	txns, err := i.store.GetTransactions(ctx, Comprehensive(ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	existing, err := i.store.ListSubscriptions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	exclude := subscription.NewSession(session.Keys()...)
	for _, sub := range existing {
		exclude.Confirm(sub.VendorKey)
		exclude.Confirm(sub.Name)
	}

	return i.detector.Detect(txns, exclude), nil
}

// ConfirmCandidate stores a candidate as an active subscription. Storage
// failures wrap common.ErrPersistence.
func (i *Insights) ConfirmCandidate(ctx context.Context, ownerID int64, candidate model.Candidate) (model.Subscription, error) {
	sub := subscription.ToSubscription(candidate, ownerID, i.now())
	if err := i.store.SaveSubscription(ctx, &sub); err != nil {
		return model.Subscription{}, fmt.Errorf("%w: saving subscription %q: %w", common.ErrPersistence, sub.Name, err)
	}

	i.logger.Info("Confirmed subscription",
		"owner_id", ownerID,
		"vendor", candidate.VendorKey,
		"frequency", sub.Frequency,
		"amount", sub.Amount)

	return sub, nil
}

// ConfirmVendor re-runs detection and confirms the candidate for vendor.
// It returns common.ErrUnknownCandidate when vendor is not a current candidate.
// On success the vendor is marked confirmed in the session.
func (i *Insights) ConfirmVendor(ctx context.Context, ownerID int64, vendor string, session *subscription.Session) (model.Subscription, error) {
	candidates, err := i.DetectCandidates(ctx, ownerID, session)
	if err != nil {
		return model.Subscription{}, err
	}

	candidate, ok := subscription.FindCandidate(candidates, vendor)
	if !ok {
		return model.Subscription{}, fmt.Errorf("%w: %s", common.ErrUnknownCandidate, vendor)
	}

	sub, err := i.ConfirmCandidate(ctx, ownerID, candidate)
	if err != nil {
		return model.Subscription{}, err
	}
	if session != nil {
		session.Confirm(candidate.VendorKey)
	}
	return sub, nil
}
