// Package tui provides the full-screen subscription review.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

// Model walks a list of candidates and records a decision for each.
// Decisions are applied by the caller once the program exits.
type Model struct {
	theme      Theme
	help       help.Model
	keymap     KeyMap
	candidates []model.Candidate
	decisions  []subscription.Decision
	cursor     int
	width      int
	height     int
	aborted    bool
	finished   bool
}

// NewModel creates a review model over candidates.
func NewModel(candidates []model.Candidate) Model {
	return Model{
		theme:      DefaultTheme,
		help:       help.New(),
		keymap:     DefaultKeyMap(),
		candidates: candidates,
		decisions:  make([]subscription.Decision, 0, len(candidates)),
		width:      80,
		height:     24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if len(m.candidates) == 0 {
		return tea.Quit
	}
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit):
		m.aborted = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Quit):
		m.finished = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keymap.Back):
		if m.cursor > 0 {
			m.cursor--
			m.decisions = m.decisions[:m.cursor]
		}
		return m, nil
	case key.Matches(msg, m.keymap.Confirm):
		return m.decide(subscription.DecisionConfirm)
	case key.Matches(msg, m.keymap.Dismiss):
		return m.decide(subscription.DecisionDismiss)
	case key.Matches(msg, m.keymap.Skip):
		return m.decide(subscription.DecisionSkip)
	}
	return m, nil
}

func (m Model) decide(d subscription.Decision) (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.candidates) {
		return m, nil
	}
	m.decisions = append(m.decisions, d)
	m.cursor++
	if m.cursor == len(m.candidates) {
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

// Current returns the candidate under review, if any.
func (m Model) Current() (model.Candidate, bool) {
	if m.cursor >= len(m.candidates) {
		return model.Candidate{}, false
	}
	return m.candidates[m.cursor], true
}

// Decisions returns the decisions made so far, in candidate order.
func (m Model) Decisions() []subscription.Decision {
	return m.decisions
}

// Aborted reports whether the user abandoned the review without saving.
func (m Model) Aborted() bool {
	return m.aborted
}
