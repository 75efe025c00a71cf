package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())
	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets export",
		Long: `Run the Google OAuth2 flow in your browser and save the resulting token.

Requires sheets.client_id and sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID and
GOOGLE_SHEETS_CLIENT_SECRET).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.GetViper()
			oauthCfg := sheets.OAuth2Config{
				ClientID:     firstNonEmpty(v.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID")),
				ClientSecret: firstNonEmpty(v.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")),
				TokenFile:    config.SheetsTokenFile(v),
			}
			oauthCfg.CallbackAddr, _ = cmd.Flags().GetString("callback")
			if oauthCfg.ClientID == "" || oauthCfg.ClientSecret == "" {
				return fmt.Errorf("sheets.client_id and sheets.client_secret must be set")
			}

			token, err := sheets.GetOrCreateToken(cmd.Context(), oauthCfg)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets authorized. Token stored at "+oauthCfg.TokenFile))
			if token.RefreshToken == "" {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No refresh token was returned; you may need to re-run this command later."))
			}
			return nil
		},
	}

	cmd.Flags().String("callback", "localhost:8080", "local address for the OAuth redirect")
	return cmd
}
