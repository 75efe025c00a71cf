package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/Veraticus/spice-insights/internal/service"
)

// RenderInsights renders insights as a titled list, one block per insight.
func RenderInsights(window model.DateRange, insights []model.Insight) string {
	var b strings.Builder
	b.WriteString(FormatTitle("Spending Insights"))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render(WindowLabel(window)))
	b.WriteString("\n\n")

	var total float64
	for _, in := range insights {
		b.WriteString(RenderInsight(in))
		b.WriteString("\n")
		total += in.Savings()
	}

	if total > 0 {
		b.WriteString("\n")
		b.WriteString(BoldStyle.Render(fmt.Sprintf("%s Potential annual savings: %s", ChartIcon, money.Format(total))))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderInsight renders one insight with its recommendation indented below it.
func RenderInsight(in model.Insight) string {
	style := ImpactStyle(in.Impact)
	label := strings.ToUpper(in.Impact.String())
	line := fmt.Sprintf("%s %s %s", ImpactIcon(in.Impact), style.Render(fmt.Sprintf("[%s]", label)), in.Message)
	if in.Recommendation == "" {
		return line
	}

	rec := "  → " + in.Recommendation
	if s := in.Savings(); s > 0 {
		rec += SubtleStyle.Render(fmt.Sprintf(" (saves ~%s/yr)", money.Format(s)))
	}
	return line + "\n" + InfoStyle.Render(rec)
}

// RenderCandidates renders detected subscription candidates as a table.
func RenderCandidates(candidates []model.Candidate) string {
	if len(candidates) == 0 {
		return FormatInfo("No new recurring charges detected.")
	}

	rows := make([][]string, 0, len(candidates))
	var monthly float64
	for _, c := range candidates {
		rows = append(rows, []string{
			c.DisplayName,
			c.Category,
			string(c.BillingCycle),
			money.Format(c.AverageAmount),
			money.Format(c.EstimatedMonthlyCost),
			money.Percent(c.Confidence * 100),
			strconv.Itoa(c.TransactionCount),
			c.PredictedNext.Format("Jan 2, 2006"),
		})
		monthly += c.EstimatedMonthlyCost
	}

	t := newTable("Vendor", "Category", "Cycle", "Amount", "Monthly", "Confidence", "Charges", "Next")
	t.Rows(rows...)

	return lipgloss.JoinVertical(lipgloss.Left,
		FormatTitle(fmt.Sprintf("%d Subscription Candidates", len(candidates))),
		t.String(),
		BoldStyle.Render("Estimated monthly total: "+money.Format(monthly)),
	)
}

// RenderSubscriptions renders confirmed subscriptions as a table.
func RenderSubscriptions(subs []model.Subscription) string {
	if len(subs) == 0 {
		return FormatInfo("No confirmed subscriptions yet. Run 'spice subscriptions review' to add some.")
	}

	rows := make([][]string, 0, len(subs))
	var monthly float64
	for _, s := range subs {
		rows = append(rows, []string{
			s.Name,
			s.Category,
			string(s.Frequency),
			string(s.Status),
			money.Format(s.Amount),
			money.Format(s.MonthlyCost()),
			s.NextBilling.Format("Jan 2, 2006"),
		})
		if s.IsActive() {
			monthly += s.MonthlyCost()
		}
	}

	t := newTable("Name", "Category", "Frequency", "Status", "Amount", "Monthly", "Next Billing")
	t.Rows(rows...)

	return lipgloss.JoinVertical(lipgloss.Left,
		FormatTitle("Subscriptions"),
		t.String(),
		BoldStyle.Render(fmt.Sprintf("Active: %s/month, %s/year", money.Format(monthly), money.Format(monthly*12))),
	)
}

// RenderImportResult summarizes an import run.
func RenderImportResult(r service.ImportResult) string {
	if r.Fetched == 0 {
		return FormatWarning(fmt.Sprintf("No transactions found in %s", r.Source))
	}
	msg := fmt.Sprintf("Imported %d new transactions from %s", r.New, r.Source)
	if d := r.Duplicates(); d > 0 {
		msg += SubtleStyle.Render(fmt.Sprintf(" (%d already stored)", d))
	}
	return FormatSuccess(msg)
}

// WindowLabel describes an insight window.
func WindowLabel(r model.DateRange) string {
	switch {
	case r.IsZero():
		return "All time"
	case r.Start.IsZero():
		return "Through " + r.End.Format("Jan 2, 2006")
	case r.End.IsZero():
		return "Since " + r.Start.Format("Jan 2, 2006")
	default:
		return fmt.Sprintf("%s - %s", r.Start.Format("Jan 2, 2006"), r.End.Format("Jan 2, 2006"))
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}
