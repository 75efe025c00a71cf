package model

import "time"

// BillingCycle is the inferred recurrence period of a subscription candidate.
type BillingCycle string

// Billing cycles.
const (
	CycleMonthly   BillingCycle = "monthly"
	CycleYearly    BillingCycle = "yearly"
	CycleIrregular BillingCycle = "irregular"
	CycleUnknown   BillingCycle = "unknown"
)

// Regularity labels how consistent a vendor's charge timing is.
type Regularity string

// Regularity labels.
const (
	RegularityHigh   Regularity = "high"
	RegularityMedium Regularity = "medium"
)

// PatternStats summarizes the gaps between a vendor's charges.
type PatternStats struct {
	Regularity     Regularity `json:"regularity"`
	AvgDaysBetween float64    `json:"avg_days_between"`
	VarianceDays   float64    `json:"variance_days"`
}

// Candidate is a vendor that looks like a recurring subscription.
// Candidates are recomputed on every detection and never stored.
type Candidate struct {
	LastSeen             time.Time    `json:"last_seen"`
	PredictedNext        time.Time    `json:"predicted_next"`
	VendorKey            string       `json:"vendor_key"`
	DisplayName          string       `json:"display_name"`
	Category             string       `json:"category"`
	BillingCycle         BillingCycle `json:"billing_cycle"`
	Pattern              PatternStats `json:"pattern"`
	AverageAmount        float64      `json:"average_amount"`
	EstimatedMonthlyCost float64      `json:"estimated_monthly_cost"`
	Confidence           float64      `json:"confidence"`
	TotalSpent           float64      `json:"total_spent"`
	TransactionCount     int          `json:"transaction_count"`
}

// Frequency is the billing frequency of a confirmed subscription.
type Frequency string

// Subscription frequencies.
const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// NormalizeFrequency maps any billing cycle onto a stored frequency.
// Anything that is not yearly is treated as monthly.
func NormalizeFrequency(cycle string) Frequency {
	if BillingCycle(cycle) == CycleYearly {
		return FrequencyYearly
	}
	return FrequencyMonthly
}

// SubscriptionStatus tracks the lifecycle of a confirmed subscription.
type SubscriptionStatus string

// Subscription statuses.
const (
	StatusActive    SubscriptionStatus = "active"
	StatusTrial     SubscriptionStatus = "trial"
	StatusForgotten SubscriptionStatus = "forgotten"
)

// Subscription is a confirmed recurring charge.
type Subscription struct {
	NextBilling time.Time          `json:"next_billing"`
	CreatedAt   time.Time          `json:"created_at"`
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	VendorKey   string             `json:"vendor_key"`
	Category    string             `json:"category"`
	Frequency   Frequency          `json:"frequency"`
	Status      SubscriptionStatus `json:"status"`
	OwnerID     int64              `json:"owner_id"`
	Amount      float64            `json:"amount"`
}

// MonthlyCost returns the subscription cost spread over a month.
func (s Subscription) MonthlyCost() float64 {
	if s.Frequency == FrequencyYearly {
		return s.Amount / 12
	}
	return s.Amount
}

// IsActive reports whether the subscription is still being billed.
func (s Subscription) IsActive() bool {
	return s.Status == StatusActive || s.Status == StatusTrial
}
