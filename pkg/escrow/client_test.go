package escrow

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	escrowABI, err := abi.JSON(strings.NewReader(escrowABIJSON))
	if err != nil {
		t.Fatalf("escrow abi: %v", err)
	}
	erc20ABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		t.Fatalf("erc20 abi: %v", err)
	}
	return &Client{escrowABI: escrowABI, erc20ABI: erc20ABI}
}

func initiatedLog(c *Client, txID common.Hash, user common.Address, amount *big.Int) *types.Log {
	return &types.Log{
		Topics: []common.Hash{
			c.escrowABI.Events["TransactionInitiated"].ID,
			txID,
			common.BytesToHash(user.Bytes()),
		},
		Data: common.LeftPadBytes(amount.Bytes(), 32),
	}
}

func TestParseInitiated(t *testing.T) {
	c := testClient(t)
	wantID := common.HexToHash("0x0101010101010101010101010101010101010101010101010101010101010101")
	wantUser := common.HexToAddress("0x52908400098527886E0F7030069857D2E4169EE7")
	wantAmount := big.NewInt(6666667)

	receipt := &types.Receipt{Logs: []*types.Log{
		// Unrelated log with the wrong topic count; must be skipped.
		{Topics: []common.Hash{common.HexToHash("0xdead")}},
		initiatedLog(c, wantID, wantUser, wantAmount),
	}}

	txID, user, amount, err := c.parseInitiated(receipt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txID != wantID {
		t.Errorf("txID = %s, want %s", txID.Hex(), wantID.Hex())
	}
	if user != wantUser {
		t.Errorf("user = %s, want %s", user.Hex(), wantUser.Hex())
	}
	if amount.Cmp(wantAmount) != 0 {
		t.Errorf("amount = %s, want %s", amount, wantAmount)
	}
}

func TestParseInitiatedNotFound(t *testing.T) {
	c := testClient(t)

	receipt := &types.Receipt{Logs: []*types.Log{
		{Topics: []common.Hash{common.HexToHash("0xdead"), {}, {}}},
	}}

	_, _, _, err := c.parseInitiated(receipt)
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("error = %v, want ErrEventNotFound", err)
	}
}

func TestParseInitiatedEmptyReceipt(t *testing.T) {
	c := testClient(t)

	_, _, _, err := c.parseInitiated(&types.Receipt{})
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("error = %v, want ErrEventNotFound", err)
	}
}

func TestFiatToKobo(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"10000", 1000000, false},
		{"100.50", 10050, false},
		{"0.01", 1, false},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := fiatToKobo(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("fiatToKobo(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("fiatToKobo(%q): %v", tt.in, err)
			continue
		}
		if got.Cmp(big.NewInt(tt.want)) != 0 {
			t.Errorf("fiatToKobo(%q) = %s, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEncodeCompleteTransaction(t *testing.T) {
	c := testClient(t)
	id := common.HexToHash("0x0101010101010101010101010101010101010101010101010101010101010101")

	data, err := c.escrowABI.Pack("completeTransaction", [32]byte(id), big.NewInt(6666667))
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	// 4-byte selector plus two 32-byte words.
	if len(data) != 4+64 {
		t.Errorf("encoded length = %d, want 68", len(data))
	}
}
