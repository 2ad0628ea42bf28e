package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"defi_direct_back/models"
)

// ErrDuplicateReference means a transfer with the same idempotency reference
// was already recorded; the pipeline must not run again for that intent.
var ErrDuplicateReference = errors.New("transaction reference already exists")

type LedgerPostgres struct {
	db *sqlx.DB
}

func NewLedgerPostgres(db *sqlx.DB) *LedgerPostgres {
	return &LedgerPostgres{db: db}
}

// CreateTransaction inserts the pending record right after the escrow
// submission is mined, before any fiat payout is attempted.
func (r *LedgerPostgres) CreateTransaction(tx models.Transaction) (int64, error) {
	var id int64
	query := `
        INSERT INTO transactions
            (tx_id, reference, user_address, token, fiat_amount, amount_spent,
             transaction_fee, recipient_name, fiat_bank, fiat_bank_account_number,
             payout_status, is_completed, is_refunded)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, false)
        RETURNING id
    `
	err := r.db.QueryRow(
		query,
		tx.TxID,
		tx.Reference,
		tx.UserAddress,
		tx.Token,
		tx.FiatAmount.StringFixed(2),
		tx.AmountSpent.StringFixed(2),
		tx.TransactionFee.StringFixed(2),
		tx.RecipientName,
		tx.FiatBank,
		tx.FiatBankAccountNumber,
		models.PayoutStatusNone,
	).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return 0, ErrDuplicateReference
		}
		return 0, errors.Wrap(err, "failed to insert transaction")
	}
	return id, nil
}

// MarkCompleted finalizes the record once the payout and the on-chain
// completion both succeeded.
func (r *LedgerPostgres) MarkCompleted(txID string, amountSpent decimal.Decimal) error {
	res, err := r.db.Exec(
		`UPDATE transactions SET is_completed = true, amount_spent = $1 WHERE tx_id = $2`,
		amountSpent.StringFixed(2), txID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to mark transaction completed")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.Errorf("no transaction with tx_id %s", txID)
	}
	return nil
}

// MarkRefunded is the only writer of is_refunded and always sets
// is_completed with it, so (is_completed=false, is_refunded=true) cannot be
// produced.
func (r *LedgerPostgres) MarkRefunded(txID string) error {
	res, err := r.db.Exec(
		`UPDATE transactions SET is_completed = true, is_refunded = true WHERE tx_id = $1`,
		txID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to mark transaction refunded")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.Errorf("no transaction with tx_id %s", txID)
	}
	return nil
}

func (r *LedgerPostgres) UpdatePayoutStatus(reference, payoutReference, status string) error {
	_, err := r.db.Exec(
		`UPDATE transactions SET payout_reference = NULLIF($1, ''), payout_status = $2 WHERE reference = $3`,
		payoutReference, status, reference,
	)
	return errors.Wrap(err, "failed to update payout status")
}

func (r *LedgerPostgres) GetByReference(reference string) (models.Transaction, error) {
	var tx models.Transaction
	err := r.db.Get(&tx, `SELECT * FROM transactions WHERE reference = $1`, reference)
	return tx, err
}

func (r *LedgerPostgres) GetTransactions(userAddress string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Select(&txs,
		`SELECT * FROM transactions WHERE user_address = $1 ORDER BY created_at DESC`,
		userAddress,
	)
	return txs, err
}

// GetPending lists records stuck before completion, the reconciliation
// surface for payout or completion failures.
func (r *LedgerPostgres) GetPending(userAddress string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Select(&txs,
		`SELECT * FROM transactions
         WHERE user_address = $1 AND is_completed = false
         ORDER BY created_at DESC`,
		userAddress,
	)
	return txs, err
}
