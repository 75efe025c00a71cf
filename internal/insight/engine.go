package insight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// DefaultAnalyzers returns the analyzers in the order their insights are listed.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		AnomalyAnalyzer{},
		ForecastAnalyzer{},
		SeasonalityAnalyzer{},
		BehaviorAnalyzer{},
		SavingsAnalyzer{},
		TrendAnalyzer{},
		SubscriptionCostAnalyzer{},
		ActivityAnalyzer{},
	}
}

// Engine runs a fixed list of analyzers and concatenates their output.
type Engine struct {
	logger    *slog.Logger
	analyzers []Analyzer
}

// NewEngine creates an engine. With no analyzers the defaults are used.
func NewEngine(logger *slog.Logger, analyzers ...Analyzer) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if len(analyzers) == 0 {
		analyzers = DefaultAnalyzers()
	}
	return &Engine{
		logger:    logger.With("component", "insight_engine"),
		analyzers: analyzers,
	}
}

// NoData is the placeholder returned when there is nothing to analyze.
func NoData() model.Insight {
	return model.Insight{
		ID:             ID("engine", "no_data"),
		Category:       model.InsightNoData,
		Impact:         model.ImpactLow,
		Message:        "Not enough transaction data in this period to generate insights.",
		Recommendation: "Import more transactions or widen the date range.",
	}
}

// Generate returns every insight for the request in analyzer order. When the
// window holds no expenses it returns only the NoData placeholder. An analyzer
// that fails or panics is logged and contributes nothing.
func (e *Engine) Generate(ctx context.Context, req Request) []model.Insight {
	if len(req.WindowExpenses()) == 0 {
		e.logger.Debug("No expenses in window", "start", req.Window.Start, "end", req.Window.End)
		return []model.Insight{NoData()}
	}

	insights := make([]model.Insight, 0)
	for _, a := range e.analyzers {
		found, err := e.run(ctx, a, &req)
		if err != nil {
			e.logger.Warn("Insight analyzer failed", "analyzer", a.Name(), "error", err)
			continue
		}
		insights = append(insights, found...)
	}

	e.logger.Debug("Generated insights",
		"transactions", len(req.Transactions),
		"insights", len(insights))

	return insights
}

func (e *Engine) run(ctx context.Context, a Analyzer, req *Request) (found []model.Insight, err error) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = fmt.Errorf("%w: %s panicked: %v", common.ErrAnalyzerFailed, a.Name(), r)
		}
	}()

	found, err = a.Analyze(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrAnalyzerFailed, a.Name(), err)
	}
	return found, nil
}
