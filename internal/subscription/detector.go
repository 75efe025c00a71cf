// Package subscription infers recurring subscription charges from a
// transaction history.
package subscription

import (
	"log/slog"
	"math"
	"sort"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/Veraticus/spice-insights/internal/stats"
)

// Detection thresholds.
const (
	// RegularityToleranceDays is the largest deviation from the average gap
	// that still counts as regular (exclusive).
	RegularityToleranceDays = 7.0

	monthlyTightMaxDays = 35.0
	monthlyLooseMaxDays = 45.0
	yearlyMaxDays       = 400.0

	// MinIrregularCount is the transaction count needed to surface an
	// irregular vendor.
	MinIrregularCount = 3

	// MinConfidence is the exclusive floor a candidate must clear.
	MinConfidence = 0.4
)

// Confidence scores per classification.
const (
	ConfidenceMonthlyTight = 0.9
	ConfidenceMonthlyLoose = 0.7
	ConfidenceYearly       = 0.8
	ConfidenceIrregular    = 0.5
)

// Detector finds subscription candidates in expense history.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a detector logging through logger (slog.Default when nil).
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger.With("component", "subscription_detector")}
}

// Detect runs detection with a default detector.
func Detect(txns []model.Transaction, session *Session) []model.Candidate {
	return NewDetector(nil).Detect(txns, session)
}

// Detect scans the expense transactions (amount < 0) in txns and returns
// candidates sorted by confidence, highest first. Vendors excluded by the
// session are skipped. The result depends only on its inputs.
func (d *Detector) Detect(txns []model.Transaction, session *Session) []model.Candidate {
	expenses := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if !t.IsExpense() || session.Excluded(t.Vendor) {
			continue
		}
		expenses = append(expenses, t)
	}

	groups := stats.GroupBy(expenses, stats.ByVendor).AtLeast(stats.MinSubscriptionGroup)

	candidates := make([]model.Candidate, 0, len(groups))
	for _, g := range groups {
		candidate, ok := analyzeGroup(g)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].VendorKey < candidates[j].VendorKey
	})

	d.logger.Debug("Subscription detection finished",
		"expenses", len(expenses),
		"vendors", len(groups),
		"candidates", len(candidates))

	return candidates
}

// Gaps returns the positive day gaps between consecutive date-sorted transactions.
func Gaps(items []model.Transaction) []float64 {
	gaps := make([]float64, 0, len(items))
	for i := 1; i < len(items); i++ {
		days := model.DaysBetween(items[i-1].Date, items[i].Date)
		if days > 0 {
			gaps = append(gaps, float64(days))
		}
	}
	return gaps
}

// IsRegular reports whether every gap lies strictly within the tolerance of avg.
func IsRegular(gaps []float64, avg float64) bool {
	for _, g := range gaps {
		if math.Abs(g-avg) >= RegularityToleranceDays {
			return false
		}
	}
	return true
}

// Classify maps gap regularity onto a billing cycle and confidence.
// ok is false when the vendor should not surface as a candidate.
func Classify(regular bool, avgGap float64, count int) (model.BillingCycle, float64, bool) {
	var (
		cycle      model.BillingCycle
		confidence float64
	)

	switch {
	case regular && avgGap <= monthlyTightMaxDays:
		cycle, confidence = model.CycleMonthly, ConfidenceMonthlyTight
	case regular && avgGap <= monthlyLooseMaxDays:
		cycle, confidence = model.CycleMonthly, ConfidenceMonthlyLoose
	case regular && avgGap <= yearlyMaxDays:
		cycle, confidence = model.CycleYearly, ConfidenceYearly
	case !regular && count >= MinIrregularCount:
		cycle, confidence = model.CycleIrregular, ConfidenceIrregular
	default:
		return model.CycleUnknown, 0, false
	}

	return cycle, confidence, confidence > MinConfidence
}

func analyzeGroup(g stats.Group) (model.Candidate, bool) {
	gaps := Gaps(g.Items)
	if len(gaps) == 0 {
		return model.Candidate{}, false
	}

	gapStats := stats.Describe(gaps)
	regular := IsRegular(gaps, gapStats.Mean)

	cycle, confidence, ok := Classify(regular, gapStats.Mean, g.Count)
	if !ok {
		return model.Candidate{}, false
	}

	average := g.Total / float64(g.Count)
	monthly := average
	if cycle == model.CycleYearly {
		monthly = average / 12
	}

	regularity := model.RegularityMedium
	if regular {
		regularity = model.RegularityHigh
	}

	latest := g.Items[len(g.Items)-1]
	lastSeen := model.Day(latest.Date)

	return model.Candidate{
		VendorKey:            g.Key,
		DisplayName:          latest.Vendor,
		AverageAmount:        money.Round(average),
		EstimatedMonthlyCost: money.Round(monthly),
		BillingCycle:         cycle,
		Confidence:           confidence,
		Category:             dominantCategory(g.Items),
		LastSeen:             lastSeen,
		PredictedNext:        lastSeen.AddDate(0, 0, int(math.Round(gapStats.Mean))),
		TransactionCount:     g.Count,
		TotalSpent:           money.Round(g.Total),
		Pattern: model.PatternStats{
			AvgDaysBetween: gapStats.Mean,
			Regularity:     regularity,
			VarianceDays:   gapStats.Variance,
		},
	}, true
}

// dominantCategory returns the most frequent category, alphabetically first on ties.
func dominantCategory(items []model.Transaction) string {
	counts := make(map[string]int)
	for _, t := range items {
		if t.Category != "" {
			counts[t.Category]++
		}
	}

	best, bestCount := "", 0
	for category, count := range counts {
		if count > bestCount || (count == bestCount && category < best) {
			best, bestCount = category, count
		}
	}
	return best
}
