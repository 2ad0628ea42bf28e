package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"defi_direct_back/models"
	"defi_direct_back/pkg/paystack"
	"defi_direct_back/pkg/repository"
	"defi_direct_back/pkg/utils"
)

// ErrPayoutFailed: tokens are already escrowed on-chain, the ledger record
// stays pending and no completion is attempted. Recovery is operator
// reconciliation over the pending list.
var ErrPayoutFailed = errors.New("could not complete your transfer request")

// CompletionWarning marks a delivered payout whose on-chain completion or
// ledger finalization failed; the record stays pending for reconciliation.
const CompletionWarning = "transfer successful but completion failed"

const minFiatAmount = 100

var accountNumberRe = regexp.MustCompile(`^\d{10}$`)

// ValidateAccountNumber accepts exactly ten digits.
func ValidateAccountNumber(accountNumber string) bool {
	return accountNumberRe.MatchString(accountNumber)
}

// ValidateAmount accepts a decimal Naira amount of at least 100.
func ValidateAmount(amount string) bool {
	parsed, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return false
	}
	return parsed.GreaterThanOrEqual(decimal.NewFromInt(minFiatAmount))
}

type TransferService struct {
	ledger  repository.Ledger
	escrow  Escrow
	gateway FiatGateway
	feed    PriceFeed
	tokens  map[string]common.Address

	// receipt mail hook, replaceable in tests
	sendReceipt func(to, recipientName, bankName, accountNumber, fiatAmount, reference string)
}

func NewTransferService(ledger repository.Ledger, esc Escrow, gateway FiatGateway, feed PriceFeed, tokens map[string]common.Address) *TransferService {
	return &TransferService{
		ledger:      ledger,
		escrow:      esc,
		gateway:     gateway,
		feed:        feed,
		tokens:      tokens,
		sendReceipt: utils.SendReceipt,
	}
}

func (s *TransferService) ListBanks() ([]paystack.Bank, error) {
	return s.gateway.ListBanks()
}

func (s *TransferService) ResolveAccount(accountNumber, bankCode string) (string, error) {
	if !ValidateAccountNumber(accountNumber) {
		return "", errors.New("account number must be exactly 10 digits")
	}
	return s.gateway.ResolveAccount(accountNumber, bankCode)
}

func (s *TransferService) GetTransactions(userAddress string) ([]models.Transaction, error) {
	return s.ledger.GetTransactions(userAddress)
}

func (s *TransferService) GetPending(userAddress string) ([]models.Transaction, error) {
	return s.ledger.GetPending(userAddress)
}

// Transfer runs the single-recipient pipeline:
// approve -> submit -> record -> payout -> complete.
// Every step only starts after the previous one succeeded; nothing retries.
func (s *TransferService) Transfer(userAddress string, req models.TransferRequest) (models.TransferResult, error) {
	token, err := s.validate(req)
	if err != nil {
		return models.TransferResult{}, err
	}

	ref := transferReference(userAddress, req)
	if err := s.checkReference(ref); err != nil {
		return models.TransferResult{}, err
	}

	rate, err := s.feed.TokenPrice(req.TokenSymbol, "ngn")
	if err != nil {
		return models.TransferResult{}, errors.Wrap(err, "failed to fetch token price")
	}

	fiat, _ := decimal.NewFromString(req.FiatAmount)
	units := TokenUnits(fiat, rate)

	approval, err := s.escrow.ApproveToken(token, ApprovalUnits(units))
	if err != nil {
		return models.TransferResult{}, errors.Wrap(err, "token approval failed")
	}
	if !approval.Confirmed {
		return models.TransferResult{}, errors.Errorf("token approval not confirmed: %s", approval.TxHash)
	}
	logrus.Infof("approval confirmed: tx=%s units=%s", approval.TxHash, approval.ApprovedUnits)

	return s.runPipeline(userAddress, req, ref, token, units)
}

// runPipeline covers submit -> record -> payout -> complete for one
// recipient whose allowance is already in place.
func (s *TransferService) runPipeline(userAddress string, req models.TransferRequest, ref string, token common.Address, units *big.Int) (models.TransferResult, error) {
	initiated, err := s.escrow.InitiateTransfer(token, units, req)
	if err != nil {
		return models.TransferResult{}, errors.Wrap(err, "escrow submission failed")
	}

	fiat, _ := decimal.NewFromString(req.FiatAmount)
	fee := unitsToToken(new(big.Int).Sub(ApprovalUnits(units), units))

	// The pending record must exist before the fiat payout so a later
	// failure is auditable instead of silently lost.
	_, err = s.ledger.CreateTransaction(models.Transaction{
		TxID:                  initiated.TxID,
		Reference:             ref,
		UserAddress:           userAddress,
		Token:                 token.Hex(),
		FiatAmount:            fiat,
		AmountSpent:           decimal.Zero,
		TransactionFee:        fee,
		RecipientName:         req.AccountName,
		FiatBank:              req.BankName,
		FiatBankAccountNumber: req.AccountNumber,
	})
	if err != nil {
		return models.TransferResult{}, errors.Wrapf(err, "tokens escrowed (txId %s) but ledger record failed", initiated.TxID)
	}

	kobo := fiat.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	payoutRef, err := s.gateway.Payout(req.AccountName, req.AccountNumber, req.BankCode, kobo, ref)
	if err != nil {
		logrus.Errorf("payout failed for %s: %v", ref, err)
		if uerr := s.ledger.UpdatePayoutStatus(ref, "", models.PayoutStatusFailed); uerr != nil {
			logrus.Errorf("failed to record payout failure for %s: %v", ref, uerr)
		}
		return models.TransferResult{}, errors.WithMessage(ErrPayoutFailed, err.Error())
	}
	if uerr := s.ledger.UpdatePayoutStatus(ref, payoutRef, models.PayoutStatusSuccess); uerr != nil {
		logrus.Errorf("failed to record payout success for %s: %v", ref, uerr)
	}

	result := models.TransferResult{
		Status:          models.StatusSuccessful,
		TxID:            initiated.TxID,
		TxHash:          initiated.TxHash,
		Reference:       ref,
		PayoutReference: payoutRef,
	}

	// Finalize with the amount the TransactionInitiated event confirmed, not
	// the locally computed units.
	if _, err := s.escrow.CompleteTransfer(initiated.TxID, initiated.Units); err != nil {
		logrus.Warnf("completion failed for %s: %v", initiated.TxID, err)
		result.Warning = CompletionWarning
	} else if err := s.ledger.MarkCompleted(initiated.TxID, unitsToToken(initiated.Units)); err != nil {
		logrus.Warnf("ledger completion update failed for %s: %v", initiated.TxID, err)
		result.Warning = CompletionWarning
	}

	if req.Email != "" {
		go s.sendReceipt(req.Email, req.AccountName, req.BankName, req.AccountNumber, req.FiatAmount, ref)
	}

	return result, nil
}

// HandlePayoutEvent applies a provider webhook event to the ledger.
func (s *TransferService) HandlePayoutEvent(event, reference string) error {
	switch event {
	case "transfer.success":
		return s.ledger.UpdatePayoutStatus(reference, reference, models.PayoutStatusSuccess)
	case "transfer.failed", "transfer.reversed":
		return s.ledger.UpdatePayoutStatus(reference, reference, models.PayoutStatusFailed)
	default:
		logrus.Infof("ignoring webhook event %s", event)
		return nil
	}
}

func (s *TransferService) validate(req models.TransferRequest) (common.Address, error) {
	if !ValidateAccountNumber(req.AccountNumber) {
		return common.Address{}, errors.New("account number must be exactly 10 digits")
	}
	if !ValidateAmount(req.FiatAmount) {
		return common.Address{}, errors.Errorf("amount must be at least %d NGN", minFiatAmount)
	}
	if strings.TrimSpace(req.AccountName) == "" {
		return common.Address{}, errors.New("account name must be verified before submission")
	}
	token, ok := s.tokens[normalizeSymbol(req.TokenSymbol)]
	if !ok {
		return common.Address{}, errors.Errorf("unsupported token %q", req.TokenSymbol)
	}
	return token, nil
}

// checkReference refuses to restart a pipeline whose idempotency reference
// is already on the ledger; a retried intent must not double-spend.
func (s *TransferService) checkReference(ref string) error {
	_, err := s.ledger.GetByReference(ref)
	if err == nil {
		return repository.ErrDuplicateReference
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return errors.Wrap(err, "failed to check transfer reference")
}

// transferReference derives the deterministic idempotency key for one user
// intent. It exists before any chain call is made.
func transferReference(userAddress string, req models.TransferRequest) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%s",
		strings.ToLower(userAddress), req.BankCode, req.AccountNumber, req.FiatAmount, req.IdempotencyKey)))
	return hex.EncodeToString(sum[:])
}

func unitsToToken(units *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(units, -6)
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
