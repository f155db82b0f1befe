package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"settlecheck/internal/common"
	"settlecheck/internal/model"
)

// Writer pushes reconciliation reports to Google Sheets.
type Writer struct {
	service *sheets.Service
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{service: service, config: config}, nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	jsonKey, err := os.ReadFile(config.ServiceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, jwtConfig.TokenSource(ctx))
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// WriteReconciliation replaces the target sheet's contents with the ledger
// reconciliation findings.
func (w *Writer) WriteReconciliation(ctx context.Context, report *model.ReconciliationReport) error {
	values := [][]any{
		{"Run", report.RunID},
		{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Chargeback residual", report.ChargebackResidual},
		{},
		{"Category", "Transaction", "Magnitude"},
	}
	for _, f := range report.Findings {
		magnitude := ""
		if f.Magnitude != nil {
			magnitude = f.Magnitude.String()
		}
		values = append(values, []any{string(f.Category), f.TransactionID, magnitude})
	}
	return w.replaceSheet(ctx, values)
}

// WriteStatement replaces the target sheet's contents with the statement
// report's monthly totals and join summary.
func (w *Writer) WriteStatement(ctx context.Context, report *model.StatementReport) error {
	values := [][]any{
		{"Run", report.RunID},
		{"Year", report.Year},
		{"Ledger-only rows", len(report.OnlyIn(model.MatchLeftOnly))},
		{"Statement-only rows", len(report.OnlyIn(model.MatchRightOnly))},
		{"Unresolved NSUs", len(report.UnresolvedNSUs)},
		{},
		{"Month", "Gross", "Fee", "Cancellation", "Fee reimbursement", "Late interest", "Total"},
	}
	for _, m := range report.Monthly {
		values = append(values, []any{
			m.Month.Format("2006-01"),
			m.Gross.String(), m.Fee.String(), m.Cancellation.String(),
			m.FeeReimbursement.String(), m.LateInterest.String(), m.Total.String(),
		})
	}
	return w.replaceSheet(ctx, values)
}

func (w *Writer) replaceSheet(ctx context.Context, values [][]any) error {
	clearRange := w.config.SheetName + "!A:Z"
	err := common.WithRetry(ctx, func() error {
		_, err := w.service.Spreadsheets.Values.Clear(w.config.SpreadsheetID, clearRange, &sheets.ClearValuesRequest{}).
			Context(ctx).Do()
		return err
	}, common.RetryOptions{MaxAttempts: w.config.RetryAttempts, InitialDelay: w.config.RetryDelay})
	if err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	// Write in batches to avoid API limits
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]
		valueRange := &sheets.ValueRange{Values: batch}
		rangeStr := fmt.Sprintf("%s!A%d", w.config.SheetName, i+1)

		err := common.WithRetry(ctx, func() error {
			_, err := w.service.Spreadsheets.Values.Update(w.config.SpreadsheetID, rangeStr, valueRange).
				ValueInputOption("RAW").
				Context(ctx).
				Do()
			return err
		}, common.RetryOptions{MaxAttempts: w.config.RetryAttempts, InitialDelay: w.config.RetryDelay})
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		slog.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}
