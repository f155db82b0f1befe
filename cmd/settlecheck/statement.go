package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"settlecheck/internal/config"
	"settlecheck/internal/ingest"
	"settlecheck/internal/model"
	"settlecheck/internal/normalize"
	"settlecheck/internal/ofx"
	"settlecheck/internal/render"
	"settlecheck/internal/sheets"
	"settlecheck/internal/statement"
)

func statementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Reconcile bank statement exports against the sales ledger",
		Long: `Reconcile the bank's daily statement exports against the sales ledger's
cash view for one reporting year.

Statement rows are joined back to transactions through the cached
transaction→nsu lookup, so the cache must have been seeded (by
"settlecheck check --save-cache" or "settlecheck cache seed") before
running this command.

Examples:
  # Daily CSV exports, ledger from the cache
  settlecheck statement --dir ./extrato_diario --year 2023 --from-cache

  # Ledger from a fresh CSV export, plus OFX downloads
  settlecheck statement --dir ./extrato_diario --ofx "~/Downloads/*.ofx" --sales sales.csv`,
		RunE: runStatement,
	}

	cmd.Flags().String("dir", "", "directory tree of daily statement CSV exports")
	cmd.Flags().String("ofx", "", "glob of OFX/QFX statement files")
	cmd.Flags().Int("year", time.Now().Year()-1, "reporting calendar year")
	cmd.Flags().String("sales", "", "sales ledger CSV export")
	cmd.Flags().Bool("from-cache", false, "load the sales ledger from the local cache")
	cmd.Flags().Bool("sheet", false, "export the report to the configured Google Sheet")

	return cmd
}

func runStatement(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dir, _ := cmd.Flags().GetString("dir")
	ofxGlob, _ := cmd.Flags().GetString("ofx")
	year, _ := cmd.Flags().GetInt("year")
	salesPath, _ := cmd.Flags().GetString("sales")
	fromCache, _ := cmd.Flags().GetBool("from-cache")
	toSheet, _ := cmd.Flags().GetBool("sheet")

	if dir == "" && ofxGlob == "" {
		return fmt.Errorf("at least one of --dir or --ofx is required")
	}

	cache, err := openCache(ctx)
	if err != nil {
		return err
	}
	defer cache.Close()

	// The lookup is persisted independently of the current run's tables:
	// statement runs must work even when payables/transactions were never
	// loaded in this invocation.
	nsuIndex, err := cache.NSUIndex(ctx)
	if err != nil {
		return fmt.Errorf("transaction→nsu lookup unavailable (seed the cache first): %w", err)
	}

	var sales []model.SaleRecord
	switch {
	case fromCache:
		if sales, err = cache.Sales(ctx); err != nil {
			return err
		}
	case salesPath != "":
		if sales, err = loadSalesCSV(salesPath); err != nil {
			return err
		}
	default:
		return fmt.Errorf("either --from-cache or --sales is required")
	}

	var entries []model.StatementEntry

	if dir != "" {
		rows, err := ingest.ReadStatementDir(ctx, config.ExpandPath(dir))
		if err != nil {
			return err
		}
		csvEntries, err := normalize.StatementEntries(rows)
		if err != nil {
			return err
		}
		entries = append(entries, csvEntries...)
	}

	if ofxGlob != "" {
		ofxEntries, err := readOFXFiles(cmd, ofxGlob)
		if err != nil {
			return err
		}
		entries = append(entries, ofxEntries...)
	}

	report := statement.Reconcile(sales, entries, nsuIndex, year)
	fmt.Print(render.Statement(report))

	if toSheet {
		sheetConfig, err := config.LoadSheetsConfig()
		if err != nil {
			return err
		}
		writer, err := sheets.NewWriter(ctx, *sheetConfig)
		if err != nil {
			return err
		}
		if err := writer.WriteStatement(ctx, report); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		slog.Info("Exported report to spreadsheet", "spreadsheet_id", sheetConfig.SpreadsheetID)
	}

	return nil
}

func readOFXFiles(cmd *cobra.Command, pattern string) ([]model.StatementEntry, error) {
	matches, err := filepath.Glob(config.ExpandPath(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no OFX files match %s", pattern)
	}

	parser := ofx.NewParser()
	var entries []model.StatementEntry

	for _, path := range matches {
		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open OFX file", "file", path, "error", err)
			continue
		}

		fileEntries, err := parser.ParseFile(cmd.Context(), f)
		f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		slog.Info("Processed OFX file", "file", filepath.Base(path), "entries", len(fileEntries))
		entries = append(entries, fileEntries...)
	}

	return entries, nil
}
