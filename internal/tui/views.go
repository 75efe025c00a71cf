package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

const progressWidth = 30

// View renders the current state of the model.
func (m Model) View() string {
	if m.aborted {
		return m.theme.StatusWarning.Render("Review aborted, nothing saved.") + "\n"
	}
	if len(m.candidates) == 0 {
		return m.theme.StatusSuccess.Render("No new recurring charges to review.") + "\n"
	}

	c, ok := m.Current()
	if !ok || m.finished {
		return m.renderDone()
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render(fmt.Sprintf("Review subscriptions (%d of %d)", m.cursor+1, len(m.candidates))),
		m.renderProgress(),
	)

	box := m.theme.BorderedBox.
		Width(min(m.width-4, 76)).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Bold.Render(c.DisplayName),
			"",
			cli.FormatCandidate(c),
		))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		box,
		"",
		m.help.View(m.keymap),
	) + "\n"
}

func (m Model) renderProgress() string {
	filled := 0
	if n := len(m.candidates); n > 0 {
		filled = m.cursor * progressWidth / n
	}
	return m.theme.ProgressFull.Render(strings.Repeat("█", filled)) +
		m.theme.ProgressEmpty.Render(strings.Repeat("░", progressWidth-filled))
}

func (m Model) renderDone() string {
	var summary subscription.ReviewSummary
	for i, d := range m.decisions {
		summary.Record(m.candidates[i].DisplayName, d)
	}
	return m.theme.StatusSuccess.Render(fmt.Sprintf(
		"Reviewed %d of %d: %d confirmed, %d dismissed, %d skipped",
		summary.Total(), len(m.candidates),
		len(summary.Confirmed), len(summary.Dismissed), len(summary.Skipped),
	)) + "\n"
}
