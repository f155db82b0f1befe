package match

import (
	"sort"

	"settlecheck/internal/model"
)

// saleCash projects a windowed ledger row into the comparable cash shape.
func saleCash(sale model.SaleRecord) model.CashSide {
	return model.CashSide{
		SaleAmount:     sale.GrossAmount,
		SaleFee:        sale.Fee,
		RefundAmount:   sale.RefundAmount,
		RefundFee:      sale.FeeReimbursement,
		SaleCashDate:   sale.CashDate,
		RefundCashDate: sale.RefundCashDate,
	}
}

// StatementToSales outer-joins windowed sales-ledger rows against aggregated
// statement rows by (transaction_id, installment). Every row from either
// side survives, tagged with the indicator saying which sides contributed.
// Statement rows whose NSU never resolved to a transaction id can only come
// back RightOnly.
func StatementToSales(sales []model.SaleRecord, statement []model.StatementRow) []model.StatementComparison {
	type joined struct {
		sale *model.SaleRecord
		stmt *model.StatementRow
	}

	rows := make(map[model.SaleKey]*joined, len(sales))
	var order []model.SaleKey

	for i := range sales {
		key := sales[i].Key()
		if _, exists := rows[key]; !exists {
			rows[key] = &joined{}
			order = append(order, key)
		}
		if rows[key].sale == nil {
			rows[key].sale = &sales[i]
		}
	}

	for i := range statement {
		stmt := &statement[i]
		key := model.SaleKey{TransactionID: stmt.TransactionID, Installment: stmt.Installment}
		if stmt.TransactionID == "" {
			// Unresolved NSU: synthesize a right-only key that cannot
			// collide with a ledger key.
			key = model.SaleKey{TransactionID: "nsu:" + stmt.NSU, Installment: stmt.Installment}
		}
		if _, exists := rows[key]; !exists {
			rows[key] = &joined{}
			order = append(order, key)
		}
		if rows[key].stmt == nil {
			rows[key].stmt = stmt
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].TransactionID != order[j].TransactionID {
			return order[i].TransactionID < order[j].TransactionID
		}
		return order[i].Installment < order[j].Installment
	})

	comparisons := make([]model.StatementComparison, 0, len(order))
	for _, key := range order {
		row := rows[key]
		cmp := model.StatementComparison{
			TransactionID: key.TransactionID,
			Installment:   key.Installment,
		}
		switch {
		case row.sale != nil && row.stmt != nil:
			cmp.Indicator = model.MatchBoth
		case row.sale != nil:
			cmp.Indicator = model.MatchLeftOnly
		default:
			cmp.Indicator = model.MatchRightOnly
		}
		if row.sale != nil {
			side := saleCash(*row.sale)
			cmp.Sales = &side
		}
		if row.stmt != nil {
			side := row.stmt.CashSide
			cmp.Statement = &side
			cmp.NSU = row.stmt.NSU
			if row.stmt.TransactionID == "" {
				cmp.TransactionID = ""
			}
		}
		comparisons = append(comparisons, cmp)
	}

	return comparisons
}
