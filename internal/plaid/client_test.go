package plaid

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		ClientID:    "test-client-id",
		Secret:      "test-secret",
		Environment: "sandbox",
		AccessToken: "test-token",
	}

	tests := []struct {
		mutate  func(*Config)
		wantErr error
		name    string
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing client ID",
			mutate:  func(c *Config) { c.ClientID = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid client ID is required",
		},
		{
			name:    "missing secret",
			mutate:  func(c *Config) { c.Secret = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid secret is required",
		},
		{
			name:    "missing access token",
			mutate:  func(c *Config) { c.AccessToken = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid access token is required",
		},
		{
			name:    "missing environment",
			mutate:  func(c *Config) { c.Environment = "" },
			wantErr: common.ErrMissingConfig,
			errMsg:  "plaid environment is required",
		},
		{
			name:    "invalid environment",
			mutate:  func(c *Config) { c.Environment = "development" },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "invalid Plaid environment",
		},
		{
			name:   "valid production environment",
			mutate: func(c *Config) { c.Environment = "production" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(&Config{
		ClientID:    "test-client-id",
		Secret:      "test-secret",
		Environment: "sandbox",
		AccessToken: "test-token",
		OwnerID:     3,
	})
	require.NoError(t, err)
	assert.NotNil(t, client.client)
	assert.Equal(t, "test-token", client.accessToken)
	assert.Equal(t, int64(3), client.ownerID)
	assert.Equal(t, 3, client.retryOpts.MaxAttempts)

	client, err = NewClient(&Config{ClientID: "test-client-id"})
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestClient_GetTransactions_Validation(t *testing.T) {
	client := &Client{
		accessToken: "test-token",
		logger:      slog.Default().With("component", "plaid-test"),
	}

	//nolint:staticcheck // nil context is the case under test
	_, err := client.GetTransactions(nil, time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cannot be nil")

	_, err = client.GetTransactions(context.Background(), time.Now(), time.Now().AddDate(0, -1, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start date must be before end date")
}

func TestRecord_ToModel(t *testing.T) {
	tests := []struct {
		name     string
		errMsg   string
		rec      record
		expected model.Transaction
	}{
		{
			name: "debit becomes a negative expense",
			rec: record{
				id:           "abc",
				date:         "2024-03-05",
				name:         "NETFLIX.COM 866-579-7172",
				merchantName: "Netflix",
				categories:   []string{"Service", "Subscription"},
				amount:       15.99,
			},
			expected: model.Transaction{
				ID:          "plaid-abc",
				OwnerID:     9,
				Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
				Vendor:      "Netflix",
				Description: "NETFLIX.COM 866-579-7172",
				Amount:      -15.99,
				Category:    "Service",
				Type:        model.TypeExpense,
				Source:      model.SourcePlaid,
			},
		},
		{
			name: "credit becomes income and falls back to name",
			rec: record{
				id:     "pay",
				date:   "2024-03-01",
				name:   "ACME PAYROLL 12345678",
				amount: -4000,
			},
			expected: model.Transaction{
				ID:          "plaid-pay",
				OwnerID:     9,
				Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Vendor:      "Acme Payroll",
				Description: "ACME PAYROLL 12345678",
				Amount:      4000,
				Type:        model.TypeIncome,
				Source:      model.SourcePlaid,
			},
		},
		{
			name:   "bad date",
			rec:    record{id: "x", date: "03/05/2024", name: "Shop", amount: 1},
			errMsg: "invalid date",
		},
		{
			name:   "no vendor",
			rec:    record{id: "x", date: "2024-03-05", amount: 1},
			errMsg: model.ErrMissingVendor.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := tt.rec.toModel(9)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tx.Hash)
			tx.Hash = ""
			assert.Equal(t, tt.expected, tx)
		})
	}
}

func TestCleanMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "basic name",
			input:    "Starbucks",
			expected: "Starbucks",
		},
		{
			name:     "lowercase to title case",
			input:    "starbucks coffee",
			expected: "Starbucks Coffee",
		},
		{
			name:     "remove LLC suffix",
			input:    "Amazon LLC",
			expected: "Amazon",
		},
		{
			name:     "remove Inc suffix",
			input:    "Apple Inc",
			expected: "Apple",
		},
		{
			name:     "remove transaction ID",
			input:    "PAYPAL 123456789",
			expected: "Paypal",
		},
		{
			name:     "preserve short numbers",
			input:    "7-ELEVEN 2345",
			expected: "7-Eleven 2345",
		},
		{
			name:     "multiple cleanups",
			input:    "amazon.com llc 987654321",
			expected: "Amazon.Com",
		},
		{
			name:     "extra spaces",
			input:    "  Google   Cloud   ",
			expected: "Google Cloud",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanMerchantName(tt.input))
		})
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"123456", true},
		{"12a456", false},
		{"", true},
		{"12.34", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, isAllDigits(tt.input))
		})
	}
}

type fakeFetcher struct {
	err   error
	calls [][2]time.Time
	txns  []model.Transaction
}

func (f *fakeFetcher) GetTransactions(_ context.Context, start, end time.Time) ([]model.Transaction, error) {
	f.calls = append(f.calls, [2]time.Time{start, end})
	return f.txns, f.err
}

func (f *fakeFetcher) GetAccounts(context.Context) ([]string, error) {
	return []string{"acc1"}, f.err
}

func TestSource_Fetch(t *testing.T) {
	now := time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{txns: []model.Transaction{{ID: "plaid-1"}}}
	source := NewSource(fetcher)
	source.now = func() time.Time { return now }
	assert.Equal(t, "plaid", source.Name())

	txns, err := source.Fetch(context.Background(), model.DateRange{})
	require.NoError(t, err)
	assert.Len(t, txns, 1)
	require.Len(t, fetcher.calls, 1)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), fetcher.calls[0][1])
	assert.Equal(t, time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC), fetcher.calls[0][0])

	r := model.LastNDays(now, 30)
	_, err = source.Fetch(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, r.Start, fetcher.calls[1][0])
	assert.Equal(t, r.End, fetcher.calls[1][1])

	fetcher.err = errors.New("boom")
	_, err = source.Fetch(context.Background(), r)
	assert.Error(t, err)
}
