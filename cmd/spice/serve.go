package main

import (
	"crypto/tls"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/api"
	"github.com/Veraticus/spice-insights/internal/certs"
	"github.com/Veraticus/spice-insights/internal/config"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve insights and subscription review over HTTP",
		Long: `Start a JSON API:

  GET  /api/health
  GET  /api/insights?start=YYYY-MM-DD&end=YYYY-MM-DD
  GET  /api/subscriptions/candidates?exclude=vendor,vendor
  POST /api/subscriptions        {"vendor": "netflix"}
  GET  /api/subscriptions

With --tls the API is served over HTTPS using a self-signed certificate kept
in server.cert_dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var tlsCfg *tls.Config
			if viper.GetBool("server.tls") {
				store := certs.NewStore(config.ExpandPath(viper.GetString("server.cert_dir")))
				if tlsCfg, err = store.TLSConfig(); err != nil {
					return err
				}
				slog.Info("Serving HTTPS", "certificate", store.CertFile())
			}

			server := api.NewServer(a.svc, a.store, api.Config{
				Addr:        a.cfg.ServerAddr,
				OwnerID:     a.cfg.OwnerID,
				InsightDays: a.cfg.InsightDays,
				ReadTimeout: a.cfg.ReadTimeout,
				TLS:         tlsCfg,
			}, slog.Default())

			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from server.address)")
	_ = viper.BindPFlag("server.address", cmd.Flags().Lookup("addr"))
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed certificate")
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}
