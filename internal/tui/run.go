package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

// ErrAborted is returned when the review is abandoned with Ctrl+C.
var ErrAborted = errors.New("review aborted")

// Config holds TUI configuration.
type Config struct {
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{AltScreen: true}
}

// WithIO runs the program against the given input and output instead of the terminal.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Config) {
		c.Input = in
		c.Output = out
		c.AltScreen = false
	}
}

// Review detects candidates for ownerID, lets the user decide on each one
// and then applies the decisions. Decisions made before quitting are kept;
// aborting with Ctrl+C discards them.
func Review(ctx context.Context, svc *service.Insights, ownerID int64, session *subscription.Session, opts ...Option) (subscription.ReviewSummary, error) {
	var summary subscription.ReviewSummary
	if session == nil {
		session = subscription.NewSession()
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	candidates, err := svc.DetectCandidates(ctx, ownerID, session)
	if err != nil {
		return summary, err
	}
	if len(candidates) == 0 {
		return summary, nil
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if cfg.Input != nil {
		programOpts = append(programOpts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(cfg.Output))
	}

	final, err := tea.NewProgram(NewModel(candidates), programOpts...).Run()
	if err != nil {
		return summary, fmt.Errorf("TUI error: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return summary, fmt.Errorf("unexpected TUI model %T", final)
	}
	if m.Aborted() {
		return summary, ErrAborted
	}

	for i, d := range m.Decisions() {
		c := candidates[i]
		if err := svc.ApplyDecision(ctx, ownerID, session, c, d); err != nil {
			return summary, err
		}
		summary.Record(c.DisplayName, d)
	}
	return summary, nil
}
