package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// Rows above the insight table: title, window, savings, subscriptions, blank.
const insightHeaderRows = 5

// Writer exports reports to a Google spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger.With("component", "sheets"),
	}, nil
}

// Write replaces the contents of every report tab and returns the spreadsheet ID.
func (w *Writer) Write(ctx context.Context, report Report) (string, error) {
	w.logger.Info("starting export",
		"insights", len(report.Insights),
		"candidates", len(report.Candidates),
		"subscriptions", len(report.Subscriptions))

	spreadsheetID, sheetIDs, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	tabs := []struct {
		name   string
		values [][]any
	}{
		{InsightsTab, insightValues(report)},
		{CandidatesTab, candidateValues(report.Candidates)},
		{SubscriptionsTab, subscriptionValues(report.Subscriptions)},
	}

	for _, tab := range tabs {
		err := common.WithRetry(ctx, func() error {
			if clearErr := w.clearTab(ctx, spreadsheetID, tab.name); clearErr != nil {
				return clearErr
			}
			return w.writeData(ctx, spreadsheetID, tab.name, tab.values)
		}, retryOpts)
		if err != nil {
			return "", fmt.Errorf("failed to write %s: %w", tab.name, err)
		}
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, sheetIDs)
		}, retryOpts)
		if err != nil {
			// Don't fail the whole export if formatting fails
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("export completed", "spreadsheet_id", spreadsheetID)
	return spreadsheetID, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// getOrCreateSpreadsheet returns the spreadsheet ID and the sheet ID of each
// report tab, adding tabs that are missing.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{
				Title:    w.config.SpreadsheetName,
				TimeZone: w.config.TimeZone,
			},
			Sheets: []*sheets.Sheet{
				{Properties: &sheets.SheetProperties{Title: InsightsTab}},
				{Properties: &sheets.SheetProperties{Title: CandidatesTab}},
				{Properties: &sheets.SheetProperties{Title: SubscriptionsTab}},
			},
		}).Context(ctx).Do()
		if err != nil {
			return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
		}

		w.logger.Info("created new spreadsheet",
			"id", created.SpreadsheetId,
			"url", created.SpreadsheetUrl)
		return created.SpreadsheetId, sheetIDs(created), nil
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	ids := sheetIDs(existing)
	var requests []*sheets.Request
	for _, tab := range []string{InsightsTab, CandidatesTab, SubscriptionsTab} {
		if _, ok := ids[tab]; !ok {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}},
			})
		}
	}
	if len(requests) == 0 {
		return existing.SpreadsheetId, ids, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(existing.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to add report tabs: %w", err)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			ids[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}
	return existing.SpreadsheetId, ids, nil
}

func sheetIDs(s *sheets.Spreadsheet) map[string]int64 {
	ids := make(map[string]int64, len(s.Sheets))
	for _, sh := range s.Sheets {
		if sh.Properties != nil {
			ids[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	return ids
}

func (w *Writer) clearTab(ctx context.Context, spreadsheetID, tab string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, tab+"!A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes values to a tab in batches to stay under API limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		rangeStr := fmt.Sprintf("%s!A%d", tab, i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", len(batch))
	}
	return nil
}

func insightValues(report Report) [][]any {
	values := make([][]any, 0, insightHeaderRows+1+len(report.Insights))
	values = append(values,
		[]any{"Spending Insights", report.GeneratedAt.Format("Jan 2, 2006 15:04")},
		[]any{"Window", windowLabel(report.Window)},
		[]any{"Estimated Annual Savings", report.TotalSavings.InexactFloat64()},
		[]any{"Active Subscriptions / Month", report.SubscriptionMonthly.InexactFloat64()},
		[]any{},
		[]any{"Category", "Impact", "Priority", "Message", "Recommendation", "Annual Savings", "Actionable", "ID"},
	)

	for _, row := range report.Insights {
		values = append(values, []any{
			row.Category,
			row.Impact,
			row.Priority,
			row.Message,
			row.Recommendation,
			row.AnnualSavings.InexactFloat64(),
			row.Actionable,
			row.ID,
		})
	}
	return values
}

func candidateValues(rows []CandidateRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{
		"Vendor", "Category", "Cycle", "Regularity", "Average Amount",
		"Monthly Cost", "Confidence", "Charges", "Last Seen", "Next Expected",
	})
	for _, row := range rows {
		values = append(values, []any{
			row.Vendor,
			row.Category,
			row.Cycle,
			row.Regularity,
			row.AverageAmount.InexactFloat64(),
			row.MonthlyCost.InexactFloat64(),
			row.Confidence,
			row.Count,
			row.LastSeen.Format(model.DateLayout),
			row.PredictedNext.Format(model.DateLayout),
		})
	}
	return values
}

func subscriptionValues(rows []SubscriptionRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, []any{"Name", "Category", "Frequency", "Status", "Amount", "Monthly Cost", "Next Billing"})
	for _, row := range rows {
		values = append(values, []any{
			row.Name,
			row.Category,
			row.Frequency,
			row.Status,
			row.Amount.InexactFloat64(),
			row.MonthlyCost.InexactFloat64(),
			row.NextBilling.Format(model.DateLayout),
		})
	}
	return values
}

func windowLabel(r model.DateRange) string {
	switch {
	case r.IsZero():
		return "All time"
	case r.Start.IsZero():
		return "Through " + r.End.Format("Jan 2, 2006")
	case r.End.IsZero():
		return "Since " + r.Start.Format("Jan 2, 2006")
	default:
		return fmt.Sprintf("%s - %s", r.Start.Format("Jan 2, 2006"), r.End.Format("Jan 2, 2006"))
	}
}

// applyFormatting bolds headers, freezes the table header and formats currency columns.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, ids map[string]int64) error {
	var requests []*sheets.Request

	if id, ok := ids[InsightsTab]; ok {
		requests = append(requests,
			boldRows(id, 0, 1, 16),
			boldRows(id, insightHeaderRows, insightHeaderRows+1, 0),
			currency(id, 2, 4, 1, 2),
			currency(id, insightHeaderRows+1, 0, 5, 6),
			freezeRows(id, insightHeaderRows+1),
			autoResize(id, 8),
		)
	}
	if id, ok := ids[CandidatesTab]; ok {
		requests = append(requests,
			boldRows(id, 0, 1, 0),
			currency(id, 1, 0, 4, 6),
			freezeRows(id, 1),
			autoResize(id, 10),
		)
	}
	if id, ok := ids[SubscriptionsTab]; ok {
		requests = append(requests,
			boldRows(id, 0, 1, 0),
			currency(id, 1, 0, 4, 6),
			freezeRows(id, 1),
			autoResize(id, 7),
		)
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

func boldRows(sheetID, start, end, fontSize int64) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{SheetId: sheetID, StartRowIndex: start, EndRowIndex: end},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true, FontSize: fontSize},
				},
			},
			Fields: "userEnteredFormat.textFormat",
		},
	}
}

// currency formats columns [startCol, endCol) from startRow; endRow 0 means to the bottom.
func currency(sheetID, startRow, endRow, startCol, endCol int64) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    startRow,
				EndRowIndex:      endRow,
				StartColumnIndex: startCol,
				EndColumnIndex:   endCol,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: "$#,##0.00"},
				},
			},
			Fields: "userEnteredFormat.numberFormat",
		},
	}
}

func freezeRows(sheetID, rows int64) *sheets.Request {
	return &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:        sheetID,
				GridProperties: &sheets.GridProperties{FrozenRowCount: rows},
			},
			Fields: "gridProperties.frozenRowCount",
		},
	}
}

func autoResize(sheetID, columns int64) *sheets.Request {
	return &sheets.Request{
		AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "COLUMNS",
				StartIndex: 0,
				EndIndex:   columns,
			},
		},
	}
}
