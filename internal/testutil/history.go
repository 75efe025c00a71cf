package testutil

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
)

// History builds a transaction history for one owner with a fluent API.
type History struct {
	txns    []model.Transaction
	ownerID int64
}

// NewHistory starts an empty history for ownerID.
func NewHistory(ownerID int64) *History {
	return &History{ownerID: ownerID}
}

// Expense adds a single expense. amount is given as a positive number.
func (h *History) Expense(vendor, category string, amount float64, date time.Time) *History {
	return h.add(vendor, category, -amount, date)
}

// Income adds a single income transaction.
func (h *History) Income(vendor string, amount float64, date time.Time) *History {
	return h.add(vendor, "Income", amount, date)
}

// Every adds n expenses spaced gapDays apart starting at start.
func (h *History) Every(vendor, category string, amount float64, start time.Time, gapDays, n int) *History {
	for i := 0; i < n; i++ {
		h.Expense(vendor, category, amount, start.AddDate(0, 0, i*gapDays))
	}
	return h
}

// Monthly adds n expenses exactly 30 days apart.
func (h *History) Monthly(vendor, category string, amount float64, start time.Time, n int) *History {
	return h.Every(vendor, category, amount, start, 30, n)
}

// Build returns a copy of the accumulated transactions.
func (h *History) Build() []model.Transaction {
	out := make([]model.Transaction, len(h.txns))
	copy(out, h.txns)
	return out
}

func (h *History) add(vendor, category string, amount float64, date time.Time) *History {
	h.txns = append(h.txns, model.Transaction{
		ID:       fmt.Sprintf("test-%d-%04d", h.ownerID, len(h.txns)+1),
		OwnerID:  h.ownerID,
		Date:     model.Day(date),
		Vendor:   vendor,
		Category: category,
		Amount:   amount,
		Type:     model.TypeFromAmount(amount),
		Source:   model.SourceManual,
	})
	return h
}
