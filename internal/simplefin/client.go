// Package simplefin imports transactions through a SimpleFIN Bridge access URL.
package simplefin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// DefaultLookback is how far back Fetch reaches when the range has no start.
// SimpleFIN bridges commonly cap history at 90 days.
const DefaultLookback = 90 * 24 * time.Hour

// Client reads accounts and transactions from a SimpleFIN access URL.
type Client struct {
	httpClient *http.Client
	now        func() time.Time
	accessURL  string
	retryOpts  common.RetryOptions
	ownerID    int64
}

// SimpleFIN API response types.
type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// NewClient creates a client for accessURL that assigns transactions to ownerID.
func NewClient(accessURL string, ownerID int64, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		accessURL:  strings.TrimRight(accessURL, "/"),
		ownerID:    ownerID,
		httpClient: httpClient,
		now:        time.Now,
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Name implements service.TransactionSource.
func (c *Client) Name() string { return "simplefin" }

// Fetch implements service.TransactionSource. Pending transactions are skipped.
func (c *Client) Fetch(ctx context.Context, r model.DateRange) ([]model.Transaction, error) {
	end := r.End
	if end.IsZero() {
		end = model.Day(c.now())
	}
	start := r.Start
	if start.IsZero() {
		start = model.Day(end.Add(-DefaultLookback))
	}

	q := url.Values{}
	q.Set("start-date", strconv.FormatInt(start.Unix(), 10))
	// end-date is exclusive
	q.Set("end-date", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))

	set, err := c.accounts(ctx, q)
	if err != nil {
		return nil, err
	}

	window := model.DateRange{Start: start, End: end}
	var txns []model.Transaction
	for _, acct := range set.Accounts {
		for _, tx := range acct.Transactions {
			if tx.Pending {
				continue
			}
			converted, err := tx.toModel(acct.ID, c.ownerID)
			if err != nil {
				slog.Warn("Skipping SimpleFIN transaction", "account", acct.ID, "id", tx.ID, "error", err)
				continue
			}
			if window.Contains(converted.Date) {
				txns = append(txns, converted)
			}
		}
	}

	slog.Info("Fetched SimpleFIN transactions",
		"accounts", len(set.Accounts),
		"transactions", len(txns),
		"start", start.Format(model.DateLayout),
		"end", end.Format(model.DateLayout))
	return txns, nil
}

// GetAccounts returns the list of account IDs.
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	q := url.Values{}
	q.Set("balances-only", "1")
	set, err := c.accounts(ctx, q)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(set.Accounts))
	for _, acct := range set.Accounts {
		ids = append(ids, acct.ID)
	}
	return ids, nil
}

func (c *Client) accounts(ctx context.Context, q url.Values) (*accountSet, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	u.RawQuery = q.Encode()

	slog.Debug("Requesting SimpleFIN accounts", "params", u.RawQuery)

	var set accountSet
	err = common.WithRetry(ctx, func() error {
		set = accountSet{}
		return c.get(ctx, u.String(), &set)
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	for _, msg := range set.Errors {
		slog.Warn("SimpleFIN reported an error", "message", msg)
	}
	return &set, nil
}

// get decodes one response into out. Throttling and server errors are
// retryable; anything else the bridge rejects is not.
func (c *Client) get(ctx context.Context, rawURL string, out *accountSet) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &common.RetryableError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		apiErr := fmt.Errorf("SimpleFIN API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrRateLimit, apiErr), Retryable: true}
		case resp.StatusCode >= http.StatusInternalServerError:
			return &common.RetryableError{Err: apiErr, Retryable: true}
		default:
			return &common.RetryableError{Err: apiErr}
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &common.RetryableError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// toModel converts a SimpleFIN transaction. Amounts are signed decimal
// strings with debits negative, which matches the model.
func (t transaction) toModel(accountID string, ownerID int64) (model.Transaction, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(t.Amount))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse amount %q: %w", t.Amount, err)
	}
	value, _ := amount.Round(2).Float64()

	vendor := normalizeMerchant(t.Payee)
	if vendor == "" {
		vendor = normalizeMerchant(t.Description)
	}

	tx := model.Transaction{
		ID:          fmt.Sprintf("simplefin-%s-%s", accountID, t.ID),
		OwnerID:     ownerID,
		Date:        model.Day(time.Unix(t.Posted, 0).UTC()),
		Vendor:      vendor,
		Description: strings.TrimSpace(t.Description),
		Amount:      value,
		Type:        model.TypeFromAmount(value),
		Source:      model.SourceSimpleFIN,
	}
	if err := tx.Validate(); err != nil {
		return model.Transaction{}, err
	}

	tx.Hash = tx.GenerateHash()
	return tx, nil
}

// normalizeMerchant trims whitespace and common company suffixes.
func normalizeMerchant(raw string) string {
	merchant := strings.Join(strings.Fields(raw), " ")
	for _, suffix := range []string{" LLC", " INC", " CORP", " Inc.", " Inc", " Llc"} {
		merchant = strings.TrimSuffix(merchant, suffix)
	}
	return merchant
}
