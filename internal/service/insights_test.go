package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	readErr error
	saveErr error
	txns    []model.Transaction
	subs    []model.Subscription
	filters []TransactionFilter
	saved   []model.Subscription
}

func (f *fakeStore) SaveTransactions(_ context.Context, txns []model.Transaction) error {
	f.txns = append(f.txns, txns...)
	return nil
}

func (f *fakeStore) GetTransactions(_ context.Context, filter TransactionFilter) ([]model.Transaction, error) {
	f.filters = append(f.filters, filter)
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.txns, nil
}

func (f *fakeStore) GetTransactionCount(_ context.Context, _ int64) (int, error) {
	return len(f.txns), nil
}

func (f *fakeStore) SaveSubscription(_ context.Context, sub *model.Subscription) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *sub)
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeStore) ListSubscriptions(_ context.Context, _ int64) ([]model.Subscription, error) {
	return f.subs, nil
}

func (f *fakeStore) ListActiveSubscriptions(_ context.Context, _ int64) ([]model.Subscription, error) {
	var active []model.Subscription
	for _, s := range f.subs {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

var now = time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC)

func monthly(vendor string, amount float64, n int) []model.Transaction {
	var txns []model.Transaction
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		txns = append(txns, model.Transaction{
			Date:     start.AddDate(0, 0, 30*i),
			Vendor:   vendor,
			Category: "Subscriptions",
			Amount:   -amount,
			Type:     model.TypeExpense,
			OwnerID:  1,
		})
	}
	return txns
}

func newTestInsights(store Storage) *Insights {
	return NewInsights(store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return now }))
}

func TestGenerateInsights_ReadsFullHistory(t *testing.T) {
	store := &fakeStore{txns: monthly("Netflix", 15.99, 6)}
	svc := newTestInsights(store)

	window := model.LastNDays(now, 30)
	insights := svc.GenerateInsights(context.Background(), 1, window)

	require.NotEmpty(t, insights)
	require.Len(t, store.filters, 1)
	assert.Equal(t, Comprehensive(1), store.filters[0])
}

func TestGenerateInsights_DegradesOnReadFailure(t *testing.T) {
	store := &fakeStore{readErr: errors.New("disk on fire")}
	svc := newTestInsights(store)

	insights := svc.GenerateInsights(context.Background(), 1, model.LastNDays(now, 30))
	assert.Equal(t, []model.Insight{insight.NoData()}, insights)
}

func TestDetectCandidates_ExcludesStoredAndSession(t *testing.T) {
	var txns []model.Transaction
	txns = append(txns, monthly("Netflix", 15.99, 5)...)
	txns = append(txns, monthly("Spotify", 9.99, 5)...)
	txns = append(txns, monthly("Hulu", 7.99, 5)...)

	store := &fakeStore{
		txns: txns,
		subs: []model.Subscription{{Name: "Netflix", VendorKey: "netflix", Status: model.StatusActive}},
	}
	svc := newTestInsights(store)

	session := subscription.NewSession("hulu")
	candidates, err := svc.DetectCandidates(context.Background(), 1, session)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "spotify", candidates[0].VendorKey)

	// stored subscriptions do not leak into the caller's session
	assert.Equal(t, []string{"hulu"}, session.Keys())
}

func TestDetectCandidates_ReadFailure(t *testing.T) {
	svc := newTestInsights(&fakeStore{readErr: errors.New("locked")})
	_, err := svc.DetectCandidates(context.Background(), 1, nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrPersistence)
}

func TestConfirmCandidate(t *testing.T) {
	candidate := model.Candidate{
		VendorKey:     "spotify",
		DisplayName:   "Spotify",
		BillingCycle:  model.CycleIrregular,
		AverageAmount: 9.99,
		PredictedNext: time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
		Category:      "Music",
	}

	t.Run("saves an active monthly subscription", func(t *testing.T) {
		store := &fakeStore{}
		sub, err := newTestInsights(store).ConfirmCandidate(context.Background(), 1, candidate)
		require.NoError(t, err)
		require.Len(t, store.saved, 1)
		assert.Equal(t, sub, store.saved[0])
		assert.Equal(t, model.FrequencyMonthly, sub.Frequency)
		assert.Equal(t, model.StatusActive, sub.Status)
		assert.Equal(t, now, sub.CreatedAt)
	})

	t.Run("persistence failure is distinct", func(t *testing.T) {
		store := &fakeStore{saveErr: errors.New("constraint failed")}
		_, err := newTestInsights(store).ConfirmCandidate(context.Background(), 1, candidate)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrPersistence)
	})
}

func TestConfirmVendor(t *testing.T) {
	store := &fakeStore{txns: monthly("Spotify", 9.99, 4)}
	svc := newTestInsights(store)
	session := subscription.NewSession()

	_, err := svc.ConfirmVendor(context.Background(), 1, "Hulu", session)
	assert.ErrorIs(t, err, common.ErrUnknownCandidate)

	sub, err := svc.ConfirmVendor(context.Background(), 1, "SPOTIFY", session)
	require.NoError(t, err)
	assert.Equal(t, "spotify", sub.VendorKey)
	assert.Equal(t, []string{"spotify"}, session.Confirmed())

	// once stored, the vendor is no longer a candidate
	candidates, err := svc.DetectCandidates(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestBounded(t *testing.T) {
	r := model.DateRange{Start: time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)}
	f := Bounded(3, r)
	require.NotNil(t, f.StartDate)
	assert.Nil(t, f.EndDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
	assert.Equal(t, int64(3), f.OwnerID)
}
