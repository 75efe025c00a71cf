package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

func TestReview(t *testing.T) {
	store := &fakeStore{txns: append(monthly("Netflix", 15.99, 6), monthly("Gym", 40, 6)...)}
	svc := newTestInsights(store)
	session := subscription.NewSession()

	var seen []string
	summary, err := svc.Review(context.Background(), 1, session,
		func(_ context.Context, c model.Candidate, index, total int) (subscription.Decision, error) {
			assert.Equal(t, 2, total)
			seen = append(seen, c.VendorKey)
			if index == 0 {
				return subscription.DecisionDismiss, nil
			}
			return subscription.DecisionConfirm, nil
		})
	require.NoError(t, err)

	assert.Equal(t, []string{"gym", "netflix"}, seen)
	assert.Equal(t, []string{"Gym"}, summary.Dismissed)
	assert.Equal(t, []string{"Netflix"}, summary.Confirmed)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "netflix", store.saved[0].VendorKey)
	assert.Equal(t, []string{"gym"}, session.Dismissed())
	assert.Equal(t, []string{"netflix"}, session.Confirmed())

	// everything has been decided, so a second pass in the same session finds nothing
	again, err := svc.Review(context.Background(), 1, session,
		func(context.Context, model.Candidate, int, int) (subscription.Decision, error) {
			t.Fatal("no candidates expected")
			return subscription.DecisionSkip, nil
		})
	require.NoError(t, err)
	assert.Zero(t, again.Total())
}

func TestReview_StopsOnError(t *testing.T) {
	store := &fakeStore{txns: append(monthly("Netflix", 15.99, 6), monthly("Gym", 40, 6)...)}
	svc := newTestInsights(store)
	quit := errors.New("quit")

	summary, err := svc.Review(context.Background(), 1, nil,
		func(_ context.Context, _ model.Candidate, index, _ int) (subscription.Decision, error) {
			if index == 1 {
				return subscription.DecisionSkip, quit
			}
			return subscription.DecisionSkip, nil
		})
	require.ErrorIs(t, err, quit)
	assert.Equal(t, []string{"Gym"}, summary.Skipped)
	assert.Empty(t, store.saved)
}

func TestApplyDecision_PersistenceFailure(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full")}
	svc := newTestInsights(store)
	session := subscription.NewSession()
	candidate := model.Candidate{VendorKey: "netflix", DisplayName: "Netflix", BillingCycle: model.CycleMonthly}

	err := svc.ApplyDecision(context.Background(), 1, session, candidate, subscription.DecisionConfirm)
	require.ErrorIs(t, err, common.ErrPersistence)
	assert.Empty(t, session.Confirmed())

	require.NoError(t, svc.ApplyDecision(context.Background(), 1, session, candidate, subscription.DecisionSkip))
	assert.False(t, session.Excluded("Netflix"))
}

func TestApplyDecision_NilSession(t *testing.T) {
	store := &fakeStore{}
	svc := newTestInsights(store)
	gym := model.Candidate{VendorKey: "gym", DisplayName: "Gym", BillingCycle: model.CycleMonthly}

	require.NoError(t, svc.ApplyDecision(context.Background(), 1, nil, gym, subscription.DecisionDismiss))
	assert.Empty(t, store.saved)

	require.NoError(t, svc.ApplyDecision(context.Background(), 1, nil, gym, subscription.DecisionConfirm))
	require.Len(t, store.saved, 1)
	assert.Equal(t, "gym", store.saved[0].VendorKey)
}
