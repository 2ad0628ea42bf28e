package models

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// TransferRequest is one recipient's desired payout. AccountName must come
// from a prior account resolution, not free-form user input.
type TransferRequest struct {
	AccountNumber  string `json:"account_number" binding:"required"`
	BankCode       string `json:"bank_code" binding:"required"`
	BankName       string `json:"bank_name" binding:"required"`
	AccountName    string `json:"account_name" binding:"required"`
	FiatAmount     string `json:"fiat_amount" binding:"required"` // Naira, min 100
	TokenSymbol    string `json:"token_symbol" binding:"required"`
	IdempotencyKey string `json:"idempotency_key"`
	Email          string `json:"email"` // optional receipt destination
}

type BatchRecipient struct {
	ID string `json:"id" binding:"required"`
	TransferRequest
}

type BatchRequest struct {
	TokenSymbol string           `json:"token_symbol" binding:"required"`
	Recipients  []BatchRecipient `json:"recipients" binding:"required"`
}

// Quote is a time-boxed conversion estimate. A quote past ExpiresAt must not
// back a transfer submission.
type Quote struct {
	TokenAmount decimal.Decimal `json:"token_amount"`
	Rate        decimal.Decimal `json:"rate"`
	TokenSymbol string          `json:"token_symbol"`
	GeneratedAt time.Time       `json:"generated_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

func (q Quote) Expired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

// ApprovalResult is the outcome of the ERC-20 allowance step. ApprovedUnits
// includes the 1% fee on top of the requested amount.
type ApprovalResult struct {
	ApprovedUnits *big.Int
	TxHash        string
	Confirmed     bool
}

// InitiatedTransfer carries what the TransactionInitiated event confirmed:
// the bytes32 transaction id (hex) and the mined submission hash.
type InitiatedTransfer struct {
	TxID   string
	TxHash string
	Units  *big.Int
}

// TransferResult is the terminal outcome of one pipeline run. Warning is set
// when the payout succeeded but on-chain completion (or the ledger update)
// did not; the transfer still counts as delivered.
type TransferResult struct {
	Status          string `json:"status"`
	TxID            string `json:"tx_id"`
	TxHash          string `json:"tx_hash"`
	Reference       string `json:"reference"`
	PayoutReference string `json:"payout_reference,omitempty"`
	Warning         string `json:"warning,omitempty"`
}

const (
	BatchItemPending = "pending"
	BatchItemSuccess = "success"
	BatchItemFailed  = "failed"
)

// BatchItemResult is one recipient's outcome inside a batch run. It moves
// from pending to exactly one terminal state and is never retried.
type BatchItemResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	TxHash string `json:"tx_hash,omitempty"`
	Error  string `json:"error,omitempty"`
}
