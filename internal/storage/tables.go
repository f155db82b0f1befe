package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"settlecheck/internal/model"
)

// SavePayables replaces the cached payables table with a fresh snapshot.
func (c *Cache) SavePayables(ctx context.Context, entries []model.PayableEntry) error {
	return c.replaceAll(ctx, "payables", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO payables (transaction_id, installment, amount, status, competence_date)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare payables insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx,
				e.TransactionID, e.Installment, e.Amount.String(), string(e.Status), nullTime(e.CompetenceDate)); err != nil {
				return fmt.Errorf("failed to insert payable %s: %w", e.TransactionID, err)
			}
		}
		return nil
	})
}

// Payables loads the cached payables snapshot.
func (c *Cache) Payables(ctx context.Context) ([]model.PayableEntry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT transaction_id, installment, amount, status, competence_date
		 FROM payables ORDER BY transaction_id, installment`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payables: %w", err)
	}
	defer rows.Close()

	var entries []model.PayableEntry
	for rows.Next() {
		var (
			e      model.PayableEntry
			amount string
			status string
			date   sql.NullTime
		)
		if err := rows.Scan(&e.TransactionID, &e.Installment, &amount, &status, &date); err != nil {
			return nil, fmt.Errorf("failed to scan payable: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt payable amount %q: %w", amount, err)
		}
		if e.Status, err = model.ParsePayableStatus(status); err != nil {
			return nil, fmt.Errorf("corrupt payable status: %w", err)
		}
		e.CompetenceDate = date.Time
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveTransactions replaces the cached transactions table and refreshes the
// standalone transaction→nsu lookup in the same call, so the lookup stays
// usable by statement runs that never load the transactions table.
func (c *Cache) SaveTransactions(ctx context.Context, records []model.TransactionRecord) error {
	err := c.replaceAll(ctx, "transactions", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO transactions (transaction_id, nsu, status, installment_count)
			 VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare transactions insert: %w", err)
		}
		defer stmt.Close()

		for _, r := range records {
			if _, err := stmt.ExecContext(ctx, r.TransactionID, r.NSU, r.Status, r.InstallmentCount); err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", r.TransactionID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.saveNSUIndex(ctx, records)
}

// Transactions loads the cached transactions snapshot.
func (c *Cache) Transactions(ctx context.Context) ([]model.TransactionRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT transaction_id, nsu, status, installment_count
		 FROM transactions ORDER BY transaction_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var records []model.TransactionRecord
	for rows.Next() {
		var r model.TransactionRecord
		if err := rows.Scan(&r.TransactionID, &r.NSU, &r.Status, &r.InstallmentCount); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveSales replaces the cached sales table with a fresh snapshot.
func (c *Cache) SaveSales(ctx context.Context, records []model.SaleRecord) error {
	return c.replaceAll(ctx, "sales", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO sales (
				transaction_id, installment, gateway_id, status,
				amount, refund_amount, gross_amount, fee, fee_reimbursement, late_interest,
				sale_date, cash_date, refund_cash_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare sales insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range records {
			if _, err := stmt.ExecContext(ctx,
				s.TransactionID, s.Installment, s.GatewayID, s.Status,
				s.Amount.String(), s.RefundAmount.String(), s.GrossAmount.String(),
				s.Fee.String(), s.FeeReimbursement.String(), s.LateInterest.String(),
				nullTime(s.SaleDate), nullTime(s.CashDate), nullTime(s.RefundCashDate)); err != nil {
				return fmt.Errorf("failed to insert sale %s: %w", s.GatewayID, err)
			}
		}
		return nil
	})
}

// Sales loads the cached sales snapshot.
func (c *Cache) Sales(ctx context.Context) ([]model.SaleRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT transaction_id, installment, gateway_id, status,
			amount, refund_amount, gross_amount, fee, fee_reimbursement, late_interest,
			sale_date, cash_date, refund_cash_date
		 FROM sales ORDER BY transaction_id, installment`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var records []model.SaleRecord
	for rows.Next() {
		var (
			s                              model.SaleRecord
			amounts                        [6]string
			saleDate, cashDate, refundDate sql.NullTime
		)
		if err := rows.Scan(&s.TransactionID, &s.Installment, &s.GatewayID, &s.Status,
			&amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5],
			&saleDate, &cashDate, &refundDate); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}

		for i, dst := range []*decimal.Decimal{
			&s.Amount, &s.RefundAmount, &s.GrossAmount, &s.Fee, &s.FeeReimbursement, &s.LateInterest,
		} {
			if *dst, err = decimal.NewFromString(amounts[i]); err != nil {
				return nil, fmt.Errorf("corrupt sale amount %q: %w", amounts[i], err)
			}
		}

		s.SaleDate = saleDate.Time
		s.CashDate = cashDate.Time
		s.RefundCashDate = refundDate.Time
		records = append(records, s)
	}
	return records, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
