package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/money"
	"github.com/Veraticus/spice-insights/internal/subscription"
)

var (
	// ErrInputCancelled is returned when input is canceled by context.
	ErrInputCancelled = errors.New("input canceled")
	// ErrQuit is returned when the user ends a review early.
	ErrQuit = errors.New("review ended")
)

// Prompter asks about subscription candidates one line at a time. It is the
// fallback for terminals that cannot run the full-screen review.
type Prompter struct {
	writer io.Writer
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewPrompter creates a prompter with the given reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// Decide shows one candidate and reads a decision. It matches service.DecideFunc.
func (p *Prompter) Decide(ctx context.Context, c model.Candidate, index, total int) (subscription.Decision, error) {
	title := fmt.Sprintf("Candidate %d of %d: %s", index+1, total, c.DisplayName)
	if _, err := fmt.Fprintln(p.writer, RenderBox(title, FormatCandidate(c))); err != nil {
		return subscription.DecisionSkip, fmt.Errorf("failed to write candidate: %w", err)
	}
	if _, err := fmt.Fprintln(p.writer, "  [Y] Confirm subscription  [N] Not a subscription  [S] Skip  [Q] Quit"); err != nil {
		return subscription.DecisionSkip, fmt.Errorf("failed to write options: %w", err)
	}

	choice, err := p.promptChoice(ctx, "Choice", []string{"y", "n", "s", "q"})
	if err != nil {
		return subscription.DecisionSkip, err
	}

	switch choice {
	case "y":
		return subscription.DecisionConfirm, nil
	case "n":
		return subscription.DecisionDismiss, nil
	case "q":
		return subscription.DecisionSkip, ErrQuit
	default:
		return subscription.DecisionSkip, nil
	}
}

// FormatCandidate describes a candidate's pattern for review.
func FormatCandidate(c model.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Pattern:\n", InfoIcon)
	fmt.Fprintf(&b, "  Billing: %s, about every %.0f days (%s regularity)\n", c.BillingCycle, c.Pattern.AvgDaysBetween, c.Pattern.Regularity)
	fmt.Fprintf(&b, "  Amount: %s (%s/month)\n", money.Format(c.AverageAmount), money.Format(c.EstimatedMonthlyCost))
	fmt.Fprintf(&b, "  Charges: %d totalling %s\n", c.TransactionCount, money.Format(c.TotalSpent))
	fmt.Fprintf(&b, "  Last seen: %s, next expected %s\n", c.LastSeen.Format("Jan 2, 2006"), c.PredictedNext.Format("Jan 2, 2006"))
	if c.Category != "" {
		fmt.Fprintf(&b, "  Category: %s\n", c.Category)
	}
	fmt.Fprintf(&b, "  Confidence: %s", money.Percent(c.Confidence*100))
	return b.String()
}

// ShowSummary prints the outcome of a review.
func (p *Prompter) ShowSummary(summary subscription.ReviewSummary) error {
	lines := []string{
		fmt.Sprintf("Confirmed: %d", len(summary.Confirmed)),
		fmt.Sprintf("Dismissed: %d", len(summary.Dismissed)),
		fmt.Sprintf("Skipped:   %d", len(summary.Skipped)),
	}
	_, err := fmt.Fprintln(p.writer, RenderBox("Review Complete", strings.Join(lines, "\n")))
	return err
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrQuit
			}
			return "", err
		}

		choice := strings.ToLower(input)
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			return "", fmt.Errorf("failed to write error message: %w", err)
		}
	}
}

// readLine reads one trimmed line, returning early if ctx is canceled.
// A read abandoned on cancellation finishes in the background.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}

	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		value, err := p.reader.ReadString('\n')
		if err != nil && value != "" && errors.Is(err, io.EOF) {
			err = nil
		}
		resultCh <- result{value: strings.TrimSpace(value), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		return res.value, res.err
	}
}
