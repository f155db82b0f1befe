package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: cached gateway tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS payables (
					transaction_id TEXT NOT NULL,
					installment INTEGER NOT NULL,
					amount TEXT NOT NULL,
					status TEXT NOT NULL,
					competence_date DATETIME
				)`,
				`CREATE INDEX idx_payables_transaction ON payables(transaction_id)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					transaction_id TEXT PRIMARY KEY,
					nsu TEXT,
					status TEXT,
					installment_count INTEGER NOT NULL DEFAULT 1
				)`,

				`CREATE TABLE IF NOT EXISTS sales (
					transaction_id TEXT NOT NULL,
					installment INTEGER NOT NULL,
					gateway_id TEXT,
					status TEXT,
					amount TEXT NOT NULL,
					refund_amount TEXT NOT NULL DEFAULT '0',
					gross_amount TEXT NOT NULL DEFAULT '0',
					fee TEXT NOT NULL DEFAULT '0',
					fee_reimbursement TEXT NOT NULL DEFAULT '0',
					late_interest TEXT NOT NULL DEFAULT '0',
					sale_date DATETIME,
					cash_date DATETIME,
					refund_cash_date DATETIME,
					PRIMARY KEY (transaction_id, installment)
				)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Standalone transaction→nsu lookup",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transaction_nsu (
					transaction_id TEXT PRIMARY KEY,
					nsu TEXT NOT NULL
				)`,
				`CREATE INDEX idx_transaction_nsu_nsu ON transaction_nsu(nsu)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

// Migrate brings the cache schema up to the expected version.
func (c *Cache) Migrate(ctx context.Context) error {
	var currentVersion int
	err := c.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := c.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = c.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("cache schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
