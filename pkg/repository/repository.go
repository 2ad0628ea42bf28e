package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"defi_direct_back/models"
)

type Ledger interface {
	CreateTransaction(tx models.Transaction) (int64, error)
	MarkCompleted(txID string, amountSpent decimal.Decimal) error
	MarkRefunded(txID string) error
	UpdatePayoutStatus(reference, payoutReference, status string) error
	GetByReference(reference string) (models.Transaction, error)
	GetTransactions(userAddress string) ([]models.Transaction, error)
	GetPending(userAddress string) ([]models.Transaction, error)
}

type Repository struct {
	Ledger
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Ledger: NewLedgerPostgres(db),
	}
}
