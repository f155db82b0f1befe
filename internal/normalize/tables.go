package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"settlecheck/internal/common"
	"settlecheck/internal/model"
)

// Row is one raw input row keyed by lower-cased column name. Adapters (CSV
// ingestion, the cache) produce rows; the normalizers below turn them into
// typed records or fail with a DataIntegrityError.
type Row map[string]string

// Source column names for the payables table.
const (
	colCompetenceDate = "data_de_competencia"
	colTransactionID  = "transaction_id"
	colInstallment    = "installment"
	colAmount         = "amount"
	colType           = "type"
)

// Source column names for the transactions table.
const (
	colNSU          = "nsu"
	colInstallments = "installments"
	colStatus       = "status"
)

// Source column names for the sales ledger.
const (
	colGatewayID        = "gateway_id"
	colSaleDate         = "data_venda"
	colInstallmentTotal = "valor_parcela_total"
	colCancellation     = "valor_cancelamento"
	colSaleCash         = "recebimento_financiamento"
	colRefundCash       = "efetivacao_cancelamento"
	colGrossTotal       = "valor_total_venda"
	colFeeTotal         = "valor_taxa_total"
	colFeeReimbursement = "reembolso_taxa"
	colLateInterest     = "juros_atraso"
)

// Source column names for the daily bank statement export, lower-cased.
const (
	colStmtNSU     = "id da transação"
	colStmtParcela = "parcela"
	colStmtCredit  = "entrada"
	colStmtDebit   = "saída"
	colStmtFee     = "taxa total da operação"
	colStmtPayDate = "data de pagamento"
)

// Payables normalizes raw gateway payable rows.
func Payables(rows []Row) ([]model.PayableEntry, error) {
	const source = "payables"
	if err := requireColumns(source, rows, colCompetenceDate, colTransactionID, colInstallment, colAmount, colType); err != nil {
		return nil, err
	}

	entries := make([]model.PayableEntry, 0, len(rows))
	for _, row := range rows {
		status, err := model.ParsePayableStatus(strings.TrimSpace(row[colType]))
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colType, err)
		}

		amount, err := requiredDecimal(source, colAmount, row)
		if err != nil {
			return nil, err
		}

		installment, err := strconv.Atoi(strings.TrimSpace(row[colInstallment]))
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colInstallment, err)
		}

		date, err := parseLedgerDate(row[colCompetenceDate])
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colCompetenceDate, err)
		}

		entries = append(entries, model.PayableEntry{
			TransactionID:  strings.TrimSpace(row[colTransactionID]),
			Installment:    installment,
			Amount:         amount,
			Status:         status,
			CompetenceDate: Day(date),
		})
	}

	return entries, nil
}

// Transactions normalizes raw gateway transaction rows. A missing or empty
// installments value defaults to 1 (single installment); the NSU is
// canonicalized so it keys against statement rows.
func Transactions(rows []Row) ([]model.TransactionRecord, error) {
	const source = "transactions"
	if err := requireColumns(source, rows, colTransactionID, colNSU); err != nil {
		return nil, err
	}

	records := make([]model.TransactionRecord, 0, len(rows))
	for _, row := range rows {
		count := 1
		if raw := strings.TrimSpace(row[colInstallments]); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return nil, common.NewDataIntegrityError(source, colInstallments, err)
			}
			count = parsed
		}

		records = append(records, model.TransactionRecord{
			TransactionID:    strings.TrimSpace(row[colTransactionID]),
			NSU:              NormalizeNSU(row[colNSU]),
			Status:           strings.TrimSpace(row[colStatus]),
			InstallmentCount: count,
		})
	}

	return records, nil
}

// Sales normalizes raw sales-ledger rows. The compound gateway id is split
// into (installment, transaction_id); a missing cancellation amount defaults
// to zero rather than propagating a missing-value marker into arithmetic.
func Sales(rows []Row) ([]model.SaleRecord, error) {
	const source = "sales"
	if err := requireColumns(source, rows, colGatewayID, colSaleDate, colInstallmentTotal, colStatus); err != nil {
		return nil, err
	}

	records := make([]model.SaleRecord, 0, len(rows))
	for _, row := range rows {
		installment, transactionID, err := ParseGatewayID(strings.TrimSpace(row[colGatewayID]))
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colGatewayID, err)
		}

		amount, err := requiredDecimal(source, colInstallmentTotal, row)
		if err != nil {
			return nil, err
		}

		saleDate, err := parseLedgerDate(row[colSaleDate])
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colSaleDate, err)
		}

		cashDate, err := parseLedgerDate(row[colSaleCash])
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colSaleCash, err)
		}

		refundCashDate, err := parseLedgerDate(row[colRefundCash])
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colRefundCash, err)
		}

		record := model.SaleRecord{
			TransactionID:  transactionID,
			Installment:    installment,
			GatewayID:      strings.TrimSpace(row[colGatewayID]),
			Status:         strings.TrimSpace(row[colStatus]),
			Amount:         amount,
			SaleDate:       saleDate,
			CashDate:       Day(cashDate),
			RefundCashDate: Day(refundCashDate),
		}

		for col, dst := range map[string]*decimal.Decimal{
			colCancellation:     &record.RefundAmount,
			colGrossTotal:       &record.GrossAmount,
			colFeeTotal:         &record.Fee,
			colFeeReimbursement: &record.FeeReimbursement,
			colLateInterest:     &record.LateInterest,
		} {
			value, err := optionalDecimal(source, col, row)
			if err != nil {
				return nil, err
			}
			*dst = value
		}

		records = append(records, record)
	}

	return records, nil
}

// StatementEntries normalizes raw bank-statement rows. Credits and debits
// arrive in separate locale-formatted columns and collapse into one signed
// amount: positive is a sale, negative a refund. The fee column follows the
// posting's polarity.
func StatementEntries(rows []Row) ([]model.StatementEntry, error) {
	const source = "statement"
	if err := requireColumns(source, rows, colStmtNSU, colStmtParcela, colStmtCredit, colStmtDebit, colStmtFee, colStmtPayDate); err != nil {
		return nil, err
	}

	entries := make([]model.StatementEntry, 0, len(rows))
	for _, row := range rows {
		credit, err := ParseLocaleDecimal(row[colStmtCredit])
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colStmtCredit, err)
		}

		debit, err := ParseLocaleDecimal(row[colStmtDebit])
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colStmtDebit, err)
		}

		fee, err := ParseLocaleDecimal(row[colStmtFee])
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colStmtFee, err)
		}

		date, err := parseStatementDate(row[colStmtPayDate])
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colStmtPayDate, err)
		}

		installment, err := parseParcela(row[colStmtParcela])
		if err != nil {
			return nil, common.NewDataIntegrityError(source, colStmtParcela, err)
		}

		entries = append(entries, model.StatementEntry{
			NSU:           NormalizeNSU(row[colStmtNSU]),
			Installment:   installment,
			Amount:        credit.Add(debit),
			Fee:           fee,
			OperationDate: date,
		})
	}

	return entries, nil
}

// parseParcela reads the statement's installment ordinal. The bank writes
// "-" for single-installment postings; 0 means the same thing.
func parseParcela(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("malformed installment %q", s)
	}
	if n == 0 {
		n = 1
	}
	return n, nil
}

func requireColumns(source string, rows []Row, columns ...string) error {
	if len(rows) == 0 {
		return nil
	}
	for _, col := range columns {
		if _, ok := rows[0][col]; !ok {
			return common.MissingColumn(source, col)
		}
	}
	return nil
}

func requiredDecimal(source, column string, row Row) (decimal.Decimal, error) {
	raw := strings.TrimSpace(row[column])
	if raw == "" {
		return decimal.Decimal{}, common.NewDataIntegrityError(source, column, fmt.Errorf("empty amount"))
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, common.NewDataIntegrityError(source, column, err)
	}
	return d, nil
}

func optionalDecimal(source, column string, row Row) (decimal.Decimal, error) {
	raw := strings.TrimSpace(row[column])
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, common.NewDataIntegrityError(source, column, err)
	}
	return d, nil
}
