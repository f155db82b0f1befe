package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"settlecheck/internal/config"
	"settlecheck/internal/ingest"
	"settlecheck/internal/model"
	"settlecheck/internal/normalize"
	"settlecheck/internal/storage"
)

// openCache opens the table cache at the configured path and ensures its
// schema is current.
func openCache(ctx context.Context) (*storage.Cache, error) {
	path := config.CachePath(viper.GetString("cache.path"))

	cache, err := storage.NewCache(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table cache: %w", err)
	}
	if err := cache.Migrate(ctx); err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("failed to migrate table cache: %w", err)
	}
	return cache, nil
}

// loadSalesCSV reads and normalizes a sales ledger CSV export.
func loadSalesCSV(path string) ([]model.SaleRecord, error) {
	rows, err := ingest.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return normalize.Sales(rows)
}

// loadPayablesCSV reads and normalizes a gateway payables CSV export.
func loadPayablesCSV(path string) ([]model.PayableEntry, error) {
	rows, err := ingest.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return normalize.Payables(rows)
}

// loadTransactionsCSV reads and normalizes a gateway transactions CSV export.
func loadTransactionsCSV(path string) ([]model.TransactionRecord, error) {
	rows, err := ingest.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	return normalize.Transactions(rows)
}
