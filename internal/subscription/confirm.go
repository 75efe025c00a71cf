package subscription

import (
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/google/uuid"
)

// ToSubscription shapes a candidate into the subscription stored on
// confirmation. Billing cycles other than yearly are stored as monthly.
func ToSubscription(c model.Candidate, ownerID int64, now time.Time) model.Subscription {
	return model.Subscription{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        c.DisplayName,
		VendorKey:   c.VendorKey,
		Amount:      money.Round(c.AverageAmount),
		Frequency:   model.NormalizeFrequency(string(c.BillingCycle)),
		NextBilling: model.Day(c.PredictedNext),
		Category:    c.Category,
		Status:      model.StatusActive,
		CreatedAt:   now,
	}
}

// FindCandidate returns the candidate for a vendor name or key.
func FindCandidate(candidates []model.Candidate, vendor string) (model.Candidate, bool) {
	key := model.NormalizeVendor(vendor)
	for _, c := range candidates {
		if c.VendorKey == key {
			return c, true
		}
	}
	return model.Candidate{}, false
}
