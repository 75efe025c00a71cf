package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/datalake"
	"github.com/Veraticus/spice-insights/internal/ofx"
	"github.com/Veraticus/spice-insights/internal/plaid"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/simplefin"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions",
		Long: `Import transactions from bank statements, Plaid, SimpleFIN or the datalake.

Re-importing the same data is safe: transactions are deduplicated by content.`,
	}

	cmd.PersistentFlags().String("start", "", "only import transactions on or after this date (YYYY-MM-DD)")
	cmd.PersistentFlags().String("end", "", "only import transactions on or before this date (YYYY-MM-DD)")

	cmd.AddCommand(importOFXCmd())
	cmd.AddCommand(importPlaidCmd())
	cmd.AddCommand(importDatalakeCmd())
	cmd.AddCommand(importSimpleFINCmd())

	return cmd
}

func importOFXCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ofx [files or directories...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX (Quicken) files exported from your bank.

Examples:
  # Import single file
  spice import ofx ~/Downloads/chase_jan_2024.qfx

  # Import every statement under a directory
  spice import ofx ~/Downloads/statements

  # Import from multiple globs
  spice import ofx ~/Downloads/Chase/*.qfx ~/Downloads/Ally/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	files, err := collectOFXFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to import")
	}

	r, err := rangeFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	src := ofx.NewFileSource(a.cfg.OwnerID, files...)
	progress := cli.NewProgress(cmd.ErrOrStderr(), len(files), "Parsing statements")
	src.OnFile = func(path string, count int) {
		slog.Debug("Parsed file", "file", filepath.Base(path), "transactions", count)
		progress.Step(filepath.Base(path))
	}

	result, err := service.Import(ctx, a.store, src, a.cfg.OwnerID, r)
	progress.Done()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderImportResult(result))
	return nil
}

// collectOFXFiles expands globs and directories into statement files.
func collectOFXFiles(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			slog.Warn("No files found matching pattern", "pattern", pattern)
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", match, err)
			}
			if !info.IsDir() {
				files = append(files, match)
				continue
			}
			found, err := ofx.FindFiles(match)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		}
	}
	return files, nil
}

func importPlaidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plaid",
		Short: "Import transactions from Plaid",
		Long: `Fetch posted transactions from a linked Plaid item.

Requires plaid.client_id, plaid.secret and plaid.access_token in your config
(or SPICE_PLAID_* environment variables). Without --start the last two years are fetched.`,
		Args: cobra.NoArgs,
		RunE: runImportPlaid,
	}
}

func runImportPlaid(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	r, err := rangeFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	plaidCfg, err := config.LoadPlaidConfig(viper.GetViper(), a.cfg.OwnerID)
	if err != nil {
		return fmt.Errorf("plaid is not configured: %w", err)
	}
	client, err := plaid.NewClient(plaidCfg)
	if err != nil {
		return err
	}

	result, err := service.Import(ctx, a.store, plaid.NewSource(client), a.cfg.OwnerID, r)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderImportResult(result))
	return nil
}

func importDatalakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datalake",
		Short: "Import transactions from the MongoDB datalake",
		Long: `Read transactions loaded into the MongoDB datalake collection.

Requires datalake.uri (or SPICE_DATALAKE_URI).`,
		Args: cobra.NoArgs,
		RunE: runImportDatalake,
	}

	cmd.Flags().String("data-source", "", "only import documents from this loader source")
	_ = viper.BindPFlag("datalake.data_source", cmd.Flags().Lookup("data-source"))

	return cmd
}

func runImportDatalake(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	r, err := rangeFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	lakeCfg, err := config.LoadDatalakeConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("datalake is not configured: %w", err)
	}

	client, err := datalake.Connect(ctx, lakeCfg.URI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			slog.Warn("Failed to disconnect from datalake", "error", err)
		}
	}()

	coll := client.Database(lakeCfg.Database).Collection(lakeCfg.Collection)
	src := datalake.NewSource(coll, a.cfg.OwnerID, lakeCfg.DataSource)

	result, err := service.Import(ctx, a.store, src, a.cfg.OwnerID, r)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderImportResult(result))
	return nil
}

func importSimpleFINCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simplefin",
		Short: "Import transactions from a SimpleFIN Bridge",
		Long: `Fetch posted transactions through SimpleFIN.

On first use set simplefin.token (or SPICE_SIMPLEFIN_TOKEN) to a setup token;
the claimed access URL is saved to simplefin.state_file and reused afterwards.
Without --start the last 90 days are fetched.`,
		Args: cobra.NoArgs,
		RunE: runImportSimpleFIN,
	}
}

func runImportSimpleFIN(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	r, err := rangeFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sfCfg, err := config.LoadSimpleFINConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("simplefin is not configured: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	accessURL := sfCfg.AccessURL
	if accessURL == "" {
		auth, err := simplefin.LoadOrClaimAuth(ctx, httpClient, sfCfg.Token, sfCfg.StateFile)
		if err != nil {
			return err
		}
		accessURL = auth.AccessURL
	}

	src := simplefin.NewClient(accessURL, a.cfg.OwnerID, httpClient)
	result, err := service.Import(ctx, a.store, src, a.cfg.OwnerID, r)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderImportResult(result))
	return nil
}
