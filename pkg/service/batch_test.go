package service

import (
	"math/big"
	"testing"

	"defi_direct_back/models"
)

func batchRequest(accounts ...string) models.BatchRequest {
	req := models.BatchRequest{TokenSymbol: "USDC"}
	for i, acct := range accounts {
		req.Recipients = append(req.Recipients, models.BatchRecipient{
			ID: string(rune('a' + i)),
			TransferRequest: models.TransferRequest{
				AccountNumber:  acct,
				BankCode:       "058",
				BankName:       "GTBank",
				AccountName:    "ADAEZE OKAFOR",
				FiatAmount:     "10000",
				IdempotencyKey: "batch-1",
			},
		})
	}
	return req
}

func TestBatchTransferSingleApproval(t *testing.T) {
	env := newTestEnv()

	results, err := env.svc.BatchTransfer(testUser, batchRequest("1111111111", "2222222222", "3333333333"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(env.escrow.approvals) != 1 {
		t.Fatalf("approvals = %d, want exactly 1 for the whole batch", len(env.escrow.approvals))
	}
	// 30000 NGN at 1500 is 20 tokens: 20000000 units, approved with 1% on top.
	if env.escrow.approvals[0].Cmp(big.NewInt(20200000)) != 0 {
		t.Errorf("aggregate approval = %s, want 20200000", env.escrow.approvals[0])
	}

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for _, item := range results {
		if item.Status != models.BatchItemSuccess {
			t.Errorf("recipient %s: status = %s, want success", item.ID, item.Status)
		}
	}
	if len(env.gw.payouts) != 3 {
		t.Errorf("payouts = %d, want 3", len(env.gw.payouts))
	}
}

// The allowance covers the summed fiat converted once, so per-item rounding
// can exceed the aggregate conversion without under-approving.
func TestBatchTransferAggregateConversion(t *testing.T) {
	env := newTestEnv()

	req := batchRequest("1111111111", "2222222222", "3333333333")
	for i := range req.Recipients {
		req.Recipients[i].FiatAmount = "100"
	}

	if _, err := env.svc.BatchTransfer(testUser, req, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 300 NGN at 1500 is 200000 units aggregate, even though the three
	// per-item conversions round up to 66667 each (200001 total).
	if env.escrow.approvals[0].Cmp(big.NewInt(202000)) != 0 {
		t.Errorf("aggregate approval = %s, want 202000", env.escrow.approvals[0])
	}
	for _, units := range env.escrow.initiated {
		if units.Cmp(big.NewInt(66667)) != 0 {
			t.Errorf("per-item units = %s, want 66667", units)
		}
	}
}

func TestBatchTransferContinuesPastFailure(t *testing.T) {
	env := newTestEnv()
	env.escrow.initiateErrFor["2222222222"] = errBoom

	var seen []models.BatchItemResult
	results, err := env.svc.BatchTransfer(testUser, batchRequest("1111111111", "2222222222", "3333333333"),
		func(item models.BatchItemResult) { seen = append(seen, item) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	wantStatus := []string{models.BatchItemSuccess, models.BatchItemFailed, models.BatchItemSuccess}
	for i, item := range results {
		if item.Status != wantStatus[i] {
			t.Errorf("recipient %s: status = %s, want %s", item.ID, item.Status, wantStatus[i])
		}
	}
	if results[1].Error == "" {
		t.Error("failed item carries no error message")
	}
	if len(seen) != 3 {
		t.Errorf("progress callback fired %d times, want 3", len(seen))
	}
	if len(env.gw.payouts) != 2 {
		t.Errorf("payouts = %d, want 2", len(env.gw.payouts))
	}
}

func TestBatchTransferValidatesUpFront(t *testing.T) {
	env := newTestEnv()

	req := batchRequest("1111111111", "bad", "3333333333")
	if _, err := env.svc.BatchTransfer(testUser, req, nil); err == nil {
		t.Fatal("expected validation error for malformed recipient")
	}
	if len(env.escrow.approvals) != 0 {
		t.Error("invalid batch must not reach the chain")
	}
}

// Two recipients deriving the same reference would escrow twice but record
// once; the batch must be rejected before anything touches the chain.
func TestBatchTransferRejectsCollidingReferences(t *testing.T) {
	env := newTestEnv()

	req := batchRequest("1111111111", "1111111111")
	if _, err := env.svc.BatchTransfer(testUser, req, nil); err == nil {
		t.Fatal("expected error for colliding transfer references")
	}
	if len(env.escrow.approvals) != 0 {
		t.Error("colliding batch must not reach the chain")
	}
	if len(env.escrow.initiated) != 0 {
		t.Error("colliding batch must not escrow anything")
	}
	if len(env.ledger.created) != 0 {
		t.Error("colliding batch must not create ledger records")
	}
}

// Equal payouts to one person are fine when the idempotency keys differ.
func TestBatchTransferEqualPayoutsDistinctKeys(t *testing.T) {
	env := newTestEnv()

	req := batchRequest("1111111111", "1111111111")
	req.Recipients[1].IdempotencyKey = "batch-1-second"

	results, err := env.svc.BatchTransfer(testUser, req, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, item := range results {
		if item.Status != models.BatchItemSuccess {
			t.Errorf("recipient %s: status = %s, want success", item.ID, item.Status)
		}
	}
	if len(env.ledger.created) != 2 {
		t.Errorf("ledger records = %d, want 2", len(env.ledger.created))
	}
}

func TestBatchTransferEmpty(t *testing.T) {
	env := newTestEnv()

	if _, err := env.svc.BatchTransfer(testUser, models.BatchRequest{TokenSymbol: "USDC"}, nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
}
