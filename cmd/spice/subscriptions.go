package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/subscription"
	"github.com/Veraticus/spice-insights/internal/tui"
)

func subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Detect and manage recurring charges",
	}

	cmd.PersistentFlags().StringSlice("exclude", nil, "vendors to treat as already dismissed")

	cmd.AddCommand(subscriptionsDetectCmd())
	cmd.AddCommand(subscriptionsReviewCmd())
	cmd.AddCommand(subscriptionsConfirmCmd())
	cmd.AddCommand(subscriptionsListCmd())

	return cmd
}

func sessionFromFlags(cmd *cobra.Command) *subscription.Session {
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	return subscription.NewSession(exclude...)
}

func subscriptionsDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "List vendors that look like subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			format, _ := cmd.Flags().GetString("format")
			if err := checkFormat(format); err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			candidates, err := a.svc.DetectCandidates(ctx, a.cfg.OwnerID, sessionFromFlags(cmd))
			if err != nil {
				return err
			}

			if format == formatJSON {
				if candidates == nil {
					candidates = []model.Candidate{}
				}
				return writeJSON(cmd.OutOrStdout(), candidates)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCandidates(candidates))
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", formatTable, "output format (table, json)")
	return cmd
}

func subscriptionsReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Confirm or dismiss detected subscriptions",
		Long: `Walk through each detected candidate and decide whether it is a subscription.

Confirmed candidates are saved. Dismissals only last for this review.`,
		Args: cobra.NoArgs,
		RunE: runSubscriptionsReview,
	}

	cmd.Flags().Bool("plain", false, "use line prompts instead of the full-screen review")
	return cmd
}

func runSubscriptionsReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	plain, _ := cmd.Flags().GetBool("plain")

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	session := sessionFromFlags(cmd)
	prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	var summary subscription.ReviewSummary
	if plain {
		summary, err = a.svc.Review(ctx, a.cfg.OwnerID, session, prompter.Decide)
	} else {
		summary, err = tui.Review(ctx, a.svc, a.cfg.OwnerID, session)
	}

	switch {
	case errors.Is(err, cli.ErrQuit):
		// decisions made before quitting are already applied
	case errors.Is(err, tui.ErrAborted):
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Review aborted, nothing saved."))
		return nil
	case err != nil:
		return err
	}

	if summary.Total() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No new recurring charges to review."))
		return nil
	}
	return prompter.ShowSummary(summary)
}

func subscriptionsConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <vendor>",
		Short: "Confirm one detected candidate as a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			sub, err := a.svc.ConfirmVendor(ctx, a.cfg.OwnerID, args[0], sessionFromFlags(cmd))
			switch {
			case errors.Is(err, common.ErrUnknownCandidate):
				return common.NewUserError(fmt.Sprintf("%q is not a detected subscription; run 'spice subscriptions detect' to see candidates", args[0]), err)
			case errors.Is(err, common.ErrPersistence):
				return common.NewUserError("Could not save the subscription", err)
			case err != nil:
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Confirmed %s (%s, next %s)", sub.Name, sub.Frequency, sub.NextBilling.Format("Jan 2, 2006"))))
			return nil
		},
	}
}

func subscriptionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List confirmed subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			format, _ := cmd.Flags().GetString("format")
			if err := checkFormat(format); err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			subs, err := a.store.ListSubscriptions(ctx, a.cfg.OwnerID)
			if err != nil {
				return err
			}

			if format == formatJSON {
				if subs == nil {
					subs = []model.Subscription{}
				}
				return writeJSON(cmd.OutOrStdout(), subs)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSubscriptions(subs))
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", formatTable, "output format (table, json)")
	return cmd
}
