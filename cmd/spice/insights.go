package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/model"
)

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show spending insights",
		Long: `Analyze your transactions and print insights for a window.

Examples:
  # Last 30 days (or insights.window_days)
  spice insights

  # A specific quarter as JSON
  spice insights --start 2024-01-01 --end 2024-03-31 --format json`,
		Args: cobra.NoArgs,
		RunE: runInsights,
	}

	addWindowFlags(cmd)
	cmd.Flags().StringP("format", "f", formatTable, "output format (table, json)")

	return cmd
}

func runInsights(cmd *cobra.Command, _ []string) error {
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

	window, err := windowFromFlags(cmd, a)
	if err != nil {
		return err
	}

	insights := a.svc.GenerateInsights(ctx, a.cfg.OwnerID, window)

	if format == formatJSON {
		return writeJSON(cmd.OutOrStdout(), struct {
			Window   model.DateRange `json:"window"`
			Insights []model.Insight `json:"insights"`
		}{window, insights})
	}

	fmt.Fprint(cmd.OutOrStdout(), cli.RenderInsights(window, insights))
	return nil
}
