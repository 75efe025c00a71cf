// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TransactionType is the income/expense label carried alongside the signed amount.
type TransactionType string

const (
	// TypeIncome marks money flowing in (positive amount).
	TypeIncome TransactionType = "income"
	// TypeExpense marks money flowing out (negative amount).
	TypeExpense TransactionType = "expense"
)

// TransactionSource records where a transaction was imported from.
type TransactionSource string

// Transaction sources.
const (
	SourceManual    TransactionSource = "manual"
	SourceOFX       TransactionSource = "ofx"
	SourcePlaid     TransactionSource = "plaid"
	SourceDatalake  TransactionSource = "datalake"
	SourceSimpleFIN TransactionSource = "simplefin"
)

// DateLayout is the calendar-day format used for storage, flags and JSON.
const DateLayout = "2006-01-02"

// Transaction validation errors.
var (
	ErrTypeSignMismatch = errors.New("transaction type disagrees with amount sign")
	ErrMissingDate      = errors.New("transaction date is required")
	ErrMissingVendor    = errors.New("transaction vendor is required")
)

// Transaction represents a single dated, signed monetary record.
// Amount is negative for expenses and positive for income; the sign is
// authoritative and Type is descriptive metadata.
type Transaction struct {
	Date        time.Time         `json:"date"`
	ID          string            `json:"id"`
	Vendor      string            `json:"vendor"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category"`
	Type        TransactionType   `json:"type"`
	Source      TransactionSource `json:"source,omitempty"`
	Hash        string            `json:"-"`
	OwnerID     int64             `json:"owner_id"`
	Amount      float64           `json:"amount"`
}

// IsExpense reports whether the transaction is money out.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// IsIncome reports whether the transaction is money in.
func (t Transaction) IsIncome() bool {
	return t.Amount > 0
}

// AbsAmount returns the unsigned amount.
func (t Transaction) AbsAmount() float64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}

// TypeFromAmount derives the transaction type from the sign of amount.
func TypeFromAmount(amount float64) TransactionType {
	if amount < 0 {
		return TypeExpense
	}
	return TypeIncome
}

// Validate checks the fields the analysis pipeline relies on.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(t.Vendor) == "" {
		return ErrMissingVendor
	}
	if t.Type != "" && t.Amount != 0 && t.Type != TypeFromAmount(t.Amount) {
		return fmt.Errorf("%w: type %s with amount %.2f", ErrTypeSignMismatch, t.Type, t.Amount)
	}
	return nil
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%d:%s:%.2f:%s:%s",
		t.OwnerID,
		t.Date.Format(DateLayout),
		t.Amount,
		t.Vendor,
		t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Day truncates a timestamp to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// NormalizeVendor produces the grouping key for a vendor name.
func NormalizeVendor(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// DateRange represents a time period with inclusive start and end days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on a day within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	if !r.Start.IsZero() && d.Before(Day(r.Start)) {
		return false
	}
	if !r.End.IsZero() && d.After(Day(r.End)) {
		return false
	}
	return true
}

// IsZero reports whether the range is unbounded on both sides.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// LastNDays returns the n-day range ending on the day of now.
func LastNDays(now time.Time, n int) DateRange {
	end := Day(now)
	return DateRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// ErrInvalidWindow is returned when a date window cannot be parsed.
var ErrInvalidWindow = errors.New("invalid date window")

// ParseWindow builds an inclusive window from optional YYYY-MM-DD bounds.
// With neither bound set it falls back to the last days days ending at now.
// A missing end with a start set runs through now.
func ParseWindow(start, end string, days int, now time.Time) (DateRange, error) {
	if start == "" && end == "" {
		if days <= 0 {
			return DateRange{}, fmt.Errorf("%w: days must be positive, got %d", ErrInvalidWindow, days)
		}
		return LastNDays(now, days), nil
	}

	var r DateRange
	if start != "" {
		t, err := time.Parse(DateLayout, start)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: start %q: %w", ErrInvalidWindow, start, err)
		}
		r.Start = t
	}
	r.End = Day(now)
	if end != "" {
		t, err := time.Parse(DateLayout, end)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: end %q: %w", ErrInvalidWindow, end, err)
		}
		r.End = t
	}
	if !r.Start.IsZero() && r.End.Before(r.Start) {
		return DateRange{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidWindow, end, start)
	}
	return r, nil
}
