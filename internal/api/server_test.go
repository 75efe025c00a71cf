package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/testutil"
)

var (
	testStart = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	testNow   = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
)

type failingSaveStore struct {
	service.Storage
}

func (failingSaveStore) SaveSubscription(context.Context, *model.Subscription) error {
	return errors.New("database is locked")
}

func newTestServer(t *testing.T, wrap func(service.Storage) service.Storage) (*Server, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t, testutil.NewHistory(1).
		Monthly("Netflix", "Streaming", 15.99, testStart, 6).
		Monthly("Gym", "Fitness", 40, testStart, 6).
		Expense("Market", "Groceries", 80, testNow.AddDate(0, 0, -3)).
		Income("Employer", 4000, testNow.AddDate(0, 0, -20)).
		Build())

	var store service.Storage = db.Storage
	if wrap != nil {
		store = wrap(store)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewInsights(store,
		service.WithClock(func() time.Time { return testNow }),
		service.WithLogger(logger))
	return NewServer(svc, store, Config{OwnerID: 1, InsightDays: 30}, logger), db
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestInsights(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/insights", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[InsightsResponse](t, rec)
	assert.Equal(t, model.LastNDays(testNow, 30), resp.Window)
	assert.NotEmpty(t, resp.Insights)

	rec = do(t, s, http.MethodGet, "/api/insights?start=2024-06-01&end=2024-06-30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[InsightsResponse](t, rec)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), resp.Window.Start)

	// identical requests give identical insights
	again := decode[InsightsResponse](t, do(t, s, http.MethodGet, "/api/insights?start=2024-06-01&end=2024-06-30", ""))
	assert.Equal(t, resp, again)
}

func TestInsights_BadWindow(t *testing.T) {
	s, _ := newTestServer(t, nil)
	for _, target := range []string{
		"/api/insights?start=yesterday",
		"/api/insights?start=2024-06-10&end=2024-06-01",
		"/api/insights?days=abc",
		"/api/insights?days=-1",
	} {
		rec := do(t, s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestCandidates(t *testing.T) {
	s, _ := newTestServer(t, nil)

	resp := decode[CandidatesResponse](t, do(t, s, http.MethodGet, "/api/subscriptions/candidates", ""))
	require.Len(t, resp.Candidates, 2)

	resp = decode[CandidatesResponse](t, do(t, s, http.MethodGet, "/api/subscriptions/candidates?exclude=Gym,%20", ""))
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "netflix", resp.Candidates[0].VendorKey)

	rec := do(t, s, http.MethodGet, "/api/subscriptions/candidates?exclude=gym,netflix", "")
	assert.JSONEq(t, `{"candidates":[]}`, rec.Body.String())
}

func TestConfirmAndList(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/subscriptions", `{"vendor":"netflix"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decode[model.Subscription](t, rec)
	assert.Equal(t, "Netflix", sub.Name)
	assert.Equal(t, model.FrequencyMonthly, sub.Frequency)
	assert.Equal(t, model.StatusActive, sub.Status)

	list := decode[SubscriptionsResponse](t, do(t, s, http.MethodGet, "/api/subscriptions", ""))
	require.Len(t, list.Subscriptions, 1)
	assert.InDelta(t, 15.99, list.MonthlyTotal, 1e-9)

	// confirmed vendors drop out of later candidate lists
	cands := decode[CandidatesResponse](t, do(t, s, http.MethodGet, "/api/subscriptions/candidates", ""))
	require.Len(t, cands.Candidates, 1)
	assert.Equal(t, "gym", cands.Candidates[0].VendorKey)

	// and cannot be confirmed twice
	rec = do(t, s, http.MethodPost, "/api/subscriptions", `{"vendor":"Netflix"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirm_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "invalid json", body: `{"vendor":`, want: "invalid JSON body"},
		{name: "missing vendor", body: `{"vendor":"  "}`, want: "vendor is required"},
		{name: "unknown vendor", body: `{"vendor":"Market"}`, want: "no subscription candidate for vendor Market"},
		{name: "excluded vendor", body: `{"vendor":"Gym","exclude":["gym"]}`, want: "no subscription candidate for vendor Gym"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/subscriptions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestConfirm_PersistenceFailure(t *testing.T) {
	s, db := newTestServer(t, func(store service.Storage) service.Storage {
		return failingSaveStore{Storage: store}
	})

	rec := do(t, s, http.MethodPost, "/api/subscriptions", `{"vendor":"netflix"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to save subscription", decode[errorResponse](t, rec).Error)

	subs, err := db.Storage.ListSubscriptions(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestListSubscriptions_Empty(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/subscriptions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"subscriptions":[],"monthly_total":0}`, rec.Body.String())
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.cfg.Addr = "127.0.0.1:0"
	s.cfg.ReadTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b c"}, splitList("a, ,b c,"))
}
