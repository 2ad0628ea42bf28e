package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending    = "pending"
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
)

const (
	PayoutStatusNone    = "none"
	PayoutStatusSuccess = "success"
	PayoutStatusFailed  = "failed"
)

// Transaction is one ledger row per escrow transfer. TxID is the on-chain
// bytes32 identifier and the join key between contract events and this table.
type Transaction struct {
	ID                    int64           `db:"id" json:"id"`
	TxID                  string          `db:"tx_id" json:"tx_id"`
	Reference             string          `db:"reference" json:"reference"`
	UserAddress           string          `db:"user_address" json:"user_address"`
	Token                 string          `db:"token" json:"token"`
	FiatAmount            decimal.Decimal `db:"fiat_amount" json:"fiat_amount"`
	AmountSpent           decimal.Decimal `db:"amount_spent" json:"amount_spent"`
	TransactionFee        decimal.Decimal `db:"transaction_fee" json:"transaction_fee"`
	RecipientName         string          `db:"recipient_name" json:"recipient_name"`
	FiatBank              string          `db:"fiat_bank" json:"fiat_bank"`
	FiatBankAccountNumber string          `db:"fiat_bank_account_number" json:"fiat_bank_account_number"`
	PayoutReference       *string         `db:"payout_reference" json:"payout_reference"`
	PayoutStatus          string          `db:"payout_status" json:"payout_status"`
	IsCompleted           bool            `db:"is_completed" json:"is_completed"`
	IsRefunded            bool            `db:"is_refunded" json:"is_refunded"`
	CreatedAt             time.Time       `db:"created_at" json:"created_at"`
}

// Status derives the user-facing state. is_refunded without is_completed is
// never written by the repository, so that combination does not occur.
func (t Transaction) Status() string {
	switch {
	case t.IsCompleted && t.IsRefunded:
		return StatusFailed
	case t.IsCompleted:
		return StatusSuccessful
	default:
		return StatusPending
	}
}
