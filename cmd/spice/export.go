package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export insights and subscriptions",
	}

	cmd.AddCommand(exportSheetsCmd())
	return cmd
}

func exportSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write insights, candidates and subscriptions to Google Sheets",
		Long: `Export the current insights, subscription candidates and confirmed subscriptions
to a Google Sheets spreadsheet. Existing report tabs are replaced.

Authenticate first with 'spice auth sheets' or configure a service account.`,
		Args: cobra.NoArgs,
		RunE: runExportSheets,
	}

	addWindowFlags(cmd)
	cmd.Flags().String("spreadsheet-id", "", "write to this spreadsheet instead of sheets.spreadsheet_id")
	_ = viper.BindPFlag("sheets.spreadsheet_id", cmd.Flags().Lookup("spreadsheet-id"))

	return cmd
}

func runExportSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	window, err := windowFromFlags(cmd, a)
	if err != nil {
		return err
	}

	v := viper.GetViper()
	if v.GetString("sheets.refresh_token") == "" && v.GetString("sheets.service_account_path") == "" {
		if token, tokenErr := sheets.LoadToken(config.SheetsTokenFile(v)); tokenErr == nil && token.RefreshToken != "" {
			v.Set("sheets.refresh_token", token.RefreshToken)
		}
	}

	sheetsCfg, err := config.LoadSheetsConfig(v)
	if err != nil {
		return fmt.Errorf("google sheets is not configured: %w", err)
	}

	insights := a.svc.GenerateInsights(ctx, a.cfg.OwnerID, window)
	candidates, err := a.svc.DetectCandidates(ctx, a.cfg.OwnerID, nil)
	if err != nil {
		return err
	}
	subs, err := a.store.ListSubscriptions(ctx, a.cfg.OwnerID)
	if err != nil {
		return err
	}

	writer, err := sheets.NewWriter(ctx, *sheetsCfg, slog.Default())
	if err != nil {
		return err
	}

	report := sheets.BuildReport(window, a.svc.Now(), insights, candidates, subs)
	spreadsheetID, err := writer.Write(ctx, report)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
		fmt.Sprintf("Exported to https://docs.google.com/spreadsheets/d/%s", spreadsheetID)))
	return nil
}
