package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"settlecheck/internal/config"
	"settlecheck/internal/model"
	"settlecheck/internal/render"
	"settlecheck/internal/rules"
	"settlecheck/internal/sheets"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Reconcile gateway payables against the sales ledger",
		Long: `Reconcile the gateway's settlement lines (payables) against the internal
sales ledger and report discrepancies per transaction.

Tables come either from CSV exports or from the local cache populated by a
previous run (or by "settlecheck cache seed").

Examples:
  # Reconcile from fresh CSV exports, snapshotting them into the cache
  settlecheck check --payables payables.csv --transactions transactions.csv --sales sales.csv --save-cache

  # Reconcile again from the cached snapshot
  settlecheck check --from-cache

  # Push the findings to the accounting spreadsheet
  settlecheck check --from-cache --sheet`,
		RunE: runCheck,
	}

	cmd.Flags().String("payables", "", "payables CSV export")
	cmd.Flags().String("transactions", "", "transactions CSV export")
	cmd.Flags().String("sales", "", "sales ledger CSV export")
	cmd.Flags().Bool("from-cache", false, "load tables from the local cache instead of CSV exports")
	cmd.Flags().Bool("save-cache", false, "snapshot freshly loaded tables into the local cache")
	cmd.Flags().Bool("sheet", false, "export the report to the configured Google Sheet")

	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fromCache, _ := cmd.Flags().GetBool("from-cache")
	saveCache, _ := cmd.Flags().GetBool("save-cache")
	toSheet, _ := cmd.Flags().GetBool("sheet")

	var (
		payables     []model.PayableEntry
		transactions []model.TransactionRecord
		sales        []model.SaleRecord
	)

	if fromCache {
		cache, err := openCache(ctx)
		if err != nil {
			return err
		}
		defer cache.Close()

		if payables, err = cache.Payables(ctx); err != nil {
			return err
		}
		if transactions, err = cache.Transactions(ctx); err != nil {
			return err
		}
		if sales, err = cache.Sales(ctx); err != nil {
			return err
		}
		slog.Info("Loaded tables from cache",
			"payables", len(payables),
			"transactions", len(transactions),
			"sales", len(sales))
	} else {
		payablesPath, _ := cmd.Flags().GetString("payables")
		transactionsPath, _ := cmd.Flags().GetString("transactions")
		salesPath, _ := cmd.Flags().GetString("sales")
		if payablesPath == "" || transactionsPath == "" || salesPath == "" {
			return fmt.Errorf("either --from-cache or all of --payables, --transactions and --sales are required")
		}

		var err error
		if payables, err = loadPayablesCSV(payablesPath); err != nil {
			return err
		}
		if transactions, err = loadTransactionsCSV(transactionsPath); err != nil {
			return err
		}
		if sales, err = loadSalesCSV(salesPath); err != nil {
			return err
		}

		if saveCache {
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			if err := cache.SavePayables(ctx, payables); err != nil {
				return err
			}
			if err := cache.SaveTransactions(ctx, transactions); err != nil {
				return err
			}
			if err := cache.SaveSales(ctx, sales); err != nil {
				return err
			}
			slog.Info("Snapshotted tables into cache")
		}
	}

	report := rules.Reconcile(payables, transactions, sales)
	fmt.Print(render.Reconciliation(report))

	if toSheet {
		sheetConfig, err := config.LoadSheetsConfig()
		if err != nil {
			return err
		}
		writer, err := sheets.NewWriter(ctx, *sheetConfig)
		if err != nil {
			return err
		}
		if err := writer.WriteReconciliation(ctx, report); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		slog.Info("Exported report to spreadsheet", "spreadsheet_id", sheetConfig.SpreadsheetID)
	}

	return nil
}
