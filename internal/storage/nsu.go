package storage

import (
	"context"
	"database/sql"
	"fmt"

	"settlecheck/internal/common"
	"settlecheck/internal/model"
)

// saveNSUIndex upserts the transaction→nsu lookup from freshly fetched
// transaction records. Rows without an NSU are skipped; existing mappings for
// other transactions are kept, which is what lets the lookup outlive any one
// run's tables.
func (c *Cache) saveNSUIndex(ctx context.Context, records []model.TransactionRecord) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO transaction_nsu (transaction_id, nsu) VALUES (?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare nsu insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.NSU == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, r.TransactionID, r.NSU); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to upsert nsu for %s: %w", r.TransactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit nsu index: %w", err)
	}
	return nil
}

// NSUIndex loads the persisted nsu→transaction_id lookup used to resolve
// statement rows. Returns ErrCacheEmpty when the lookup was never seeded.
func (c *Cache) NSUIndex(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT nsu, transaction_id FROM transaction_nsu`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nsu index: %w", err)
	}
	defer rows.Close()

	index := make(map[string]string)
	for rows.Next() {
		var nsu, transactionID string
		if err := rows.Scan(&nsu, &transactionID); err != nil {
			return nil, fmt.Errorf("failed to scan nsu row: %w", err)
		}
		index[nsu] = transactionID
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(index) == 0 {
		return nil, fmt.Errorf("transaction→nsu lookup: %w", common.ErrCacheEmpty)
	}

	return index, nil
}

// TableCounts reports cached row counts per table, for `cache info`.
func (c *Cache) TableCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, 4)
	for _, table := range []string{"payables", "transactions", "sales", "transaction_nsu"} {
		var n int
		err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
		if err != nil {
			if err == sql.ErrNoRows {
				n = 0
			} else {
				return nil, fmt.Errorf("failed to count %s: %w", table, err)
			}
		}
		counts[table] = n
	}
	return counts, nil
}
