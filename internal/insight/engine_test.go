package insight

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	err      error
	name     string
	insights []model.Insight
	panics   bool
}

func (s stubAnalyzer) Name() string { return s.name }

func (s stubAnalyzer) Analyze(context.Context, *Request) ([]model.Insight, error) {
	if s.panics {
		panic("boom")
	}
	return s.insights, s.err
}

func stubInsight(id string) model.Insight {
	return model.Insight{ID: id, Category: model.InsightBehavior, Impact: model.ImpactLow, Message: id}
}

func TestEngine_NoData(t *testing.T) {
	engine := NewEngine(quietLogger(), stubAnalyzer{name: "never", panics: true})

	tests := []struct {
		name string
		txns []model.Transaction
	}{
		{name: "empty history"},
		{name: "only income", txns: []model.Transaction{income(1000, day(2024, 6, 1))}},
		{name: "expenses outside window", txns: []model.Transaction{expense("Store", "Shopping", 10, day(2024, 5, 1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insights := engine.Generate(context.Background(), Request{Now: day(2024, 6, 30), Window: june, Transactions: tt.txns})
			require.Len(t, insights, 1)
			assert.Equal(t, NoData(), insights[0])
			assert.Equal(t, model.InsightNoData, insights[0].Category)
			assert.Equal(t, model.ImpactLow, insights[0].Impact)
			assert.False(t, insights[0].Actionable)
		})
	}
}

func TestEngine_IsolatesFailingAnalyzers(t *testing.T) {
	engine := NewEngine(quietLogger(),
		stubAnalyzer{name: "first", insights: []model.Insight{stubInsight("a"), stubInsight("b")}},
		stubAnalyzer{name: "broken", err: errors.New("bad data"), insights: []model.Insight{stubInsight("lost")}},
		stubAnalyzer{name: "panicky", panics: true},
		stubAnalyzer{name: "empty"},
		stubAnalyzer{name: "last", insights: []model.Insight{stubInsight("c"), stubInsight("a")}},
	)

	req := Request{Now: day(2024, 6, 30), Window: june, Transactions: []model.Transaction{expense("Store", "Shopping", 10, day(2024, 6, 3))}}
	insights := engine.Generate(context.Background(), req)

	ids := make([]string, len(insights))
	for i, in := range insights {
		ids[i] = in.ID
	}
	// concatenated in analyzer order without dedup
	assert.Equal(t, []string{"a", "b", "c", "a"}, ids)
}

func TestEngine_DefaultOrder(t *testing.T) {
	var names []string
	for _, a := range NewEngine(nil).analyzers {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{
		"anomaly", "forecast", "seasonality", "behavior",
		"savings_rate", "trend", "subscription_cost", "recent_activity",
	}, names)
}

func history() []model.Transaction {
	var txns []model.Transaction
	for m := 1; m <= 6; m++ {
		month := day(2024, 1, 1).AddDate(0, m-1, 0)
		txns = append(txns,
			income(3000, month),
			expense("Landlord", "Rent", 1200, month.AddDate(0, 0, 1)),
			expense("Netflix", "Streaming", 15.99, month.AddDate(0, 0, 4)),
			expense("Bistro", "Dining", float64(50*m), month.AddDate(0, 0, 9)),
		)
		for d := 0; d < 10; d++ {
			txns = append(txns, expense("Starbucks", "Coffee", 5, month.AddDate(0, 0, 10+d)))
		}
	}
	txns = append(txns, expense("Jeweler", "Coffee", 900, day(2024, 6, 29)))
	return txns
}

func TestEngine_Idempotent(t *testing.T) {
	req := Request{
		Now:          day(2024, 6, 30),
		Window:       june,
		Transactions: history(),
		ActiveSubscriptions: []model.Subscription{
			{Name: "Netflix", Amount: 15.99, Frequency: model.FrequencyMonthly, Status: model.StatusActive},
		},
	}

	engine := NewEngine(quietLogger())
	first := engine.Generate(context.Background(), req)
	second := engine.Generate(context.Background(), req)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)

	seen := make(map[string]bool)
	for _, in := range first {
		assert.True(t, in.Impact.Valid(), in.Message)
		assert.False(t, seen[in.ID], "duplicate id for %q", in.Message)
		seen[in.ID] = true
	}
}

func TestEngine_RichHistory(t *testing.T) {
	req := Request{Now: day(2024, 6, 30), Window: june, Transactions: history()}
	insights := NewEngine(quietLogger()).Generate(context.Background(), req)

	categories := make(map[model.InsightCategory]int)
	for _, in := range insights {
		categories[in.Category]++
	}

	assert.Equal(t, 1, categories[model.InsightAnomaly], "jeweler charge stands out in coffee")
	assert.Equal(t, 1, categories[model.InsightForecast], "dining grows every month")
	assert.Equal(t, 1, categories[model.InsightBehavior], "ten coffee runs")
	assert.Equal(t, 1, categories[model.InsightGoal])
	assert.Equal(t, 1, categories[model.InsightSubscriptions], "no active subscriptions supplied")
	assert.Zero(t, categories[model.InsightNoData])
}

func TestID(t *testing.T) {
	assert.Equal(t, ID("trend", "2024-04"), ID("trend", "2024-04"))
	assert.NotEqual(t, ID("trend", "2024-04"), ID("trend", "2024-05"))
	assert.NotEqual(t, ID("trend", "x"), ID("forecast", "x"))
}
