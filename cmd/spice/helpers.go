package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-insights/internal/config"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
	"github.com/Veraticus/spice-insights/internal/storage"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// app bundles what most commands need once config is loaded.
type app struct {
	cfg   *config.Config
	store *storage.SQLiteStorage
	svc   *service.Insights
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// openApp loads config, opens and migrates the database, and builds the service.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := initStorage(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		store: store,
		svc:   service.NewInsights(store),
	}, nil
}

// initStorage initializes the storage service and runs migrations.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// addWindowFlags registers --start, --end and --days on cmd.
func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "window start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "window end date (YYYY-MM-DD), defaults to today")
	cmd.Flags().Int("days", 0, "window length in days ending today (default from insights.window_days)")
}

// windowFromFlags resolves the window flags, falling back to the configured window length.
func windowFromFlags(cmd *cobra.Command, a *app) (model.DateRange, error) {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	days, _ := cmd.Flags().GetInt("days")
	if days == 0 {
		days = a.cfg.InsightDays
	}
	return model.ParseWindow(start, end, days, a.svc.Now())
}

// rangeFromFlags resolves optional --start/--end import bounds. Both may be empty.
func rangeFromFlags(cmd *cobra.Command) (model.DateRange, error) {
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	var r model.DateRange
	for _, f := range []struct {
		dst  *time.Time
		name string
		val  string
	}{
		{name: "start", val: start, dst: &r.Start},
		{name: "end", val: end, dst: &r.End},
	} {
		if f.val == "" {
			continue
		}
		t, err := time.Parse(model.DateLayout, f.val)
		if err != nil {
			return model.DateRange{}, fmt.Errorf("invalid --%s %q: %w", f.name, f.val, err)
		}
		*f.dst = t
	}
	return r, nil
}

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q (use table or json)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
