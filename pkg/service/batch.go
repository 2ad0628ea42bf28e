package service

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"defi_direct_back/models"
)

// BatchTransfer approves the allowance once for the whole batch, then runs
// each recipient's pipeline strictly sequentially. One recipient's failure
// never stops the rest; every outcome is reported independently.
//
// The single approval covers the token equivalent of the summed fiat
// amounts, converted once, so per-item rounding cannot under-approve. The
// shared allowance is also why recipients run one at a time.
func (s *TransferService) BatchTransfer(userAddress string, req models.BatchRequest, progress func(models.BatchItemResult)) ([]models.BatchItemResult, error) {
	if len(req.Recipients) == 0 {
		return nil, errors.New("batch has no recipients")
	}

	// Validate the whole batch before anything touches the chain. References
	// are also checked against each other: two recipients deriving the same
	// reference would escrow twice but record once, so the collision must be
	// rejected here, not after the ledger insert.
	sum := decimal.Zero
	seen := make(map[string]string, len(req.Recipients))
	for i := range req.Recipients {
		req.Recipients[i].TokenSymbol = req.TokenSymbol
		if _, err := s.validate(req.Recipients[i].TransferRequest); err != nil {
			return nil, errors.Wrapf(err, "recipient %s", req.Recipients[i].ID)
		}
		ref := transferReference(userAddress, req.Recipients[i].TransferRequest)
		if prev, ok := seen[ref]; ok {
			return nil, errors.Errorf(
				"recipients %s and %s derive the same transfer reference; give equal payouts distinct idempotency keys",
				prev, req.Recipients[i].ID)
		}
		seen[ref] = req.Recipients[i].ID
		if err := s.checkReference(ref); err != nil {
			return nil, errors.Wrapf(err, "recipient %s", req.Recipients[i].ID)
		}
		fiat, _ := decimal.NewFromString(req.Recipients[i].FiatAmount)
		sum = sum.Add(fiat)
	}

	token := s.tokens[normalizeSymbol(req.TokenSymbol)]

	rate, err := s.feed.TokenPrice(req.TokenSymbol, "ngn")
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch token price")
	}

	aggregate := TokenUnits(sum, rate)
	approval, err := s.escrow.ApproveToken(token, ApprovalUnits(aggregate))
	if err != nil {
		return nil, errors.Wrap(err, "aggregate token approval failed")
	}
	if !approval.Confirmed {
		return nil, errors.Errorf("aggregate token approval not confirmed: %s", approval.TxHash)
	}
	logrus.Infof("batch approval confirmed: tx=%s units=%s recipients=%d",
		approval.TxHash, approval.ApprovedUnits, len(req.Recipients))

	results := make([]models.BatchItemResult, 0, len(req.Recipients))
	for _, recipient := range req.Recipients {
		item := models.BatchItemResult{ID: recipient.ID, Status: models.BatchItemPending}

		ref := transferReference(userAddress, recipient.TransferRequest)
		fiat, _ := decimal.NewFromString(recipient.FiatAmount)
		units := TokenUnits(fiat, rate)

		res, err := s.runPipeline(userAddress, recipient.TransferRequest, ref, token, units)
		if err != nil {
			logrus.Errorf("batch recipient %s failed: %v", recipient.ID, err)
			item.Status = models.BatchItemFailed
			item.Error = err.Error()
		} else {
			item.Status = models.BatchItemSuccess
			item.TxHash = res.TxHash
		}

		results = append(results, item)
		if progress != nil {
			progress(item)
		}
	}

	return results, nil
}
