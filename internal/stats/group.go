// Package stats groups transactions and computes the summary statistics the
// subscription detector and insight analyzers work from.
package stats

import (
	"sort"
	"time"

	"github.com/Veraticus/spice-insights/internal/model"
	mstats "github.com/montanaflynn/stats"
)

// Minimum group sizes below which a group carries too little data to analyze.
const (
	MinSubscriptionGroup = 2
	MinAnomalyGroup      = 3
)

// KeyFunc extracts a grouping key from a transaction.
type KeyFunc func(model.Transaction) string

// ByVendor groups on the normalized vendor name.
func ByVendor(t model.Transaction) string {
	return model.NormalizeVendor(t.Vendor)
}

// ByCategory groups on the transaction category.
func ByCategory(t model.Transaction) string {
	return t.Category
}

// MonthKey groups on the calendar month of the transaction, e.g. "2024-03".
func MonthKey(t model.Transaction) string {
	return t.Date.Format("2006-01")
}

// Group holds the transactions sharing a key and their statistics.
// Amount statistics are computed over absolute amounts.
type Group struct {
	First    time.Time
	Last     time.Time
	Key      string
	Items    []model.Transaction
	Count    int
	Total    float64
	Mean     float64
	Variance float64
	StdDev   float64
}

// Amounts returns the absolute amounts of the group in date order.
func (g Group) Amounts() []float64 {
	out := make([]float64, len(g.Items))
	for i, t := range g.Items {
		out[i] = t.AbsAmount()
	}
	return out
}

// Groups is a key-ordered list of groups.
type Groups []Group

// AtLeast returns the groups holding at least n transactions.
func (gs Groups) AtLeast(n int) Groups {
	out := make(Groups, 0, len(gs))
	for _, g := range gs {
		if g.Count >= n {
			out = append(out, g)
		}
	}
	return out
}

// Find returns the group with the given key.
func (gs Groups) Find(key string) (Group, bool) {
	for _, g := range gs {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// GroupBy partitions transactions by key. Items within each group are sorted
// by date and groups are returned sorted by key so iteration is deterministic.
// Transactions with an empty key are ignored.
func GroupBy(txns []model.Transaction, key KeyFunc) Groups {
	buckets := make(map[string][]model.Transaction)
	for _, t := range txns {
		k := key(t)
		if k == "" {
			continue
		}
		buckets[k] = append(buckets[k], t)
	}

	groups := make(Groups, 0, len(buckets))
	for k, items := range buckets {
		groups = append(groups, newGroup(k, items))
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})

	return groups
}

func newGroup(key string, items []model.Transaction) Group {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})

	g := Group{
		Key:   key,
		Items: items,
		Count: len(items),
		First: items[0].Date,
		Last:  items[len(items)-1].Date,
	}

	summary := Describe(g.Amounts())
	g.Total = summary.Sum
	g.Mean = summary.Mean
	g.Variance = summary.Variance
	g.StdDev = summary.StdDev

	return g
}

// Summary is the population summary of a sample.
type Summary struct {
	Sum      float64
	Mean     float64
	Variance float64
	StdDev   float64
}

// Describe computes the sum, mean, population variance and standard deviation
// of values. An empty sample yields the zero Summary.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sum, _ := mstats.Sum(values)
	mean, _ := mstats.Mean(values)
	variance, _ := mstats.PopulationVariance(values)
	stdDev, _ := mstats.StandardDeviationPopulation(values)

	return Summary{
		Sum:      sum,
		Mean:     mean,
		Variance: variance,
		StdDev:   stdDev,
	}
}

// Expenses returns only the transactions with a negative amount.
func Expenses(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.IsExpense() {
			out = append(out, t)
		}
	}
	return out
}

// Within returns the transactions dated inside the range.
func Within(txns []model.Transaction, r model.DateRange) []model.Transaction {
	if r.IsZero() {
		return txns
	}
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
