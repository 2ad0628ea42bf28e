package service

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"defi_direct_back/models"
	"defi_direct_back/pkg/paystack"
	"defi_direct_back/pkg/repository"
)

// Escrow is the on-chain collaborator: ERC-20 allowance, escrow lock,
// completion. All amounts are token smallest units.
type Escrow interface {
	ApproveToken(token common.Address, units *big.Int) (models.ApprovalResult, error)
	InitiateTransfer(token common.Address, units *big.Int, req models.TransferRequest) (models.InitiatedTransfer, error)
	CompleteTransfer(txID string, amountSpent *big.Int) (string, error)
}

// FiatGateway is the payments-provider collaborator.
type FiatGateway interface {
	ListBanks() ([]paystack.Bank, error)
	ResolveAccount(accountNumber, bankCode string) (string, error)
	Payout(name, accountNumber, bankCode string, amountKobo int64, reference string) (string, error)
}

// PriceFeed returns the token price in a fiat currency.
type PriceFeed interface {
	TokenPrice(symbol, fiat string) (decimal.Decimal, error)
}

type Quote interface {
	GenerateQuote(fiatAmount, tokenSymbol string) (models.Quote, error)
}

type Transfer interface {
	ListBanks() ([]paystack.Bank, error)
	ResolveAccount(accountNumber, bankCode string) (string, error)
	Transfer(userAddress string, req models.TransferRequest) (models.TransferResult, error)
	BatchTransfer(userAddress string, req models.BatchRequest, progress func(models.BatchItemResult)) ([]models.BatchItemResult, error)
	HandlePayoutEvent(event, reference string) error
	GetTransactions(userAddress string) ([]models.Transaction, error)
	GetPending(userAddress string) ([]models.Transaction, error)
}

type Service struct {
	Quote
	Transfer
}

func NewService(repos *repository.Repository, esc Escrow, gateway FiatGateway, feed PriceFeed, tokens map[string]common.Address) *Service {
	return &Service{
		Quote:    NewQuoteService(feed),
		Transfer: NewTransferService(repos.Ledger, esc, gateway, feed, tokens),
	}
}
