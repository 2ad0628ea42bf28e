package escrow

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"defi_direct_back/internal/wallet"
	"defi_direct_back/models"
)

// ErrEventNotFound means the submission was mined but no TransactionInitiated
// log was emitted, so the escrowed amount cannot be confirmed. Callers must
// treat this as a failed submission.
var ErrEventNotFound = errors.New("TransactionInitiated event not found in receipt")

const (
	callTimeout = 15 * time.Second
	mineTimeout = 2 * time.Minute
)

// Client submits and finalizes escrow transactions with the treasury signer.
type Client struct {
	eth      *ethclient.Client
	chainID  *big.Int
	contract common.Address
	signer   *wallet.Signer

	escrowABI abi.ABI
	erc20ABI  abi.ABI
}

func NewClient(rpcURL, contractAddr string, signer *wallet.Signer) (*Client, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial rpc")
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query chain id")
	}

	escrowABI, err := abi.JSON(strings.NewReader(escrowABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "invalid escrow abi")
	}
	erc20ABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "invalid erc20 abi")
	}

	return &Client{
		eth:       eth,
		chainID:   chainID,
		contract:  common.HexToAddress(contractAddr),
		signer:    signer,
		escrowABI: escrowABI,
		erc20ABI:  erc20ABI,
	}, nil
}

// fiatToKobo converts a Naira decimal string to kobo (minor units) for the
// on-chain fiatAmount argument.
func fiatToKobo(fiatAmount string) (*big.Int, error) {
	amount, err := decimal.NewFromString(fiatAmount)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid fiat amount %q", fiatAmount)
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).BigInt(), nil
}

// ApproveToken grants the escrow contract an allowance of units (token
// smallest units, fee already included) and waits for one confirmation.
func (c *Client) ApproveToken(token common.Address, units *big.Int) (models.ApprovalResult, error) {
	data, err := c.erc20ABI.Pack("approve", c.contract, units)
	if err != nil {
		return models.ApprovalResult{}, errors.Wrap(err, "failed to encode approve")
	}

	receipt, tx, err := c.sendAndWait(token, data)
	if err != nil {
		return models.ApprovalResult{}, err
	}

	confirmed := receipt.Status == types.ReceiptStatusSuccessful
	if !confirmed {
		logrus.Errorf("approval reverted: tx=%s", tx.Hash().Hex())
	}

	return models.ApprovalResult{
		ApprovedUnits: units,
		TxHash:        tx.Hash().Hex(),
		Confirmed:     confirmed,
	}, nil
}

// InitiateTransfer locks units in escrow and records the recipient's bank
// details on-chain, then extracts the transaction id from the emitted
// TransactionInitiated event.
func (c *Client) InitiateTransfer(token common.Address, units *big.Int, req models.TransferRequest) (models.InitiatedTransfer, error) {
	fiatKobo, err := fiatToKobo(req.FiatAmount)
	if err != nil {
		return models.InitiatedTransfer{}, err
	}

	data, err := c.escrowABI.Pack("initiateFiatTransaction",
		token, units, req.AccountNumber, fiatKobo, req.BankName, req.AccountName)
	if err != nil {
		return models.InitiatedTransfer{}, errors.Wrap(err, "failed to encode initiateFiatTransaction")
	}

	receipt, tx, err := c.sendAndWait(c.contract, data)
	if err != nil {
		return models.InitiatedTransfer{}, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return models.InitiatedTransfer{}, errors.Errorf("escrow transaction reverted: %s", tx.Hash().Hex())
	}

	txID, _, amount, err := c.parseInitiated(receipt)
	if err != nil {
		return models.InitiatedTransfer{}, err
	}

	logrus.Infof("escrow transfer initiated: txId=%s amount=%s", txID.Hex(), amount.String())

	return models.InitiatedTransfer{
		TxID:   txID.Hex(),
		TxHash: tx.Hash().Hex(),
		Units:  amount,
	}, nil
}

// CompleteTransfer finalizes an escrow transaction after the fiat payout
// settled. txID is the bytes32 id from the TransactionInitiated event.
func (c *Client) CompleteTransfer(txID string, amountSpent *big.Int) (string, error) {
	id := common.HexToHash(txID)

	data, err := c.escrowABI.Pack("completeTransaction", [32]byte(id), amountSpent)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode completeTransaction")
	}

	receipt, tx, err := c.sendAndWait(c.contract, data)
	if err != nil {
		return "", err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", errors.Errorf("completion reverted: %s", tx.Hash().Hex())
	}

	return tx.Hash().Hex(), nil
}

// sendAndWait builds, signs and broadcasts a legacy transaction from the
// treasury address, then waits for it to be mined.
func (c *Client) sendAndWait(to common.Address, data []byte) (*types.Receipt, *types.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	nonce, err := c.eth.PendingNonceAt(ctx, c.signer.Address)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to fetch nonce")
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to fetch gas price")
	}

	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From: c.signer.Address,
		To:   &to,
		Data: data,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "gas estimation failed")
	}
	gasLimit = gasLimit * 12 / 10

	tx := types.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, data)
	signedTx, err := c.signer.SignTx(tx, c.chainID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to sign transaction")
	}

	sendCtx, sendCancel := context.WithTimeout(context.Background(), callTimeout)
	defer sendCancel()
	if err := c.eth.SendTransaction(sendCtx, signedTx); err != nil {
		return nil, nil, errors.Wrap(err, "failed to broadcast transaction")
	}

	logrus.Infof("broadcast tx %s to %s", signedTx.Hash().Hex(), to.Hex())

	receipt, err := c.waitMined(signedTx)
	if err != nil {
		return nil, nil, err
	}
	return receipt, signedTx, nil
}

func (c *Client) waitMined(tx *types.Transaction) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mineTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err == nil && receipt != nil {
		return receipt, nil
	}

	// One direct query before giving up; WaitMined can miss a receipt that
	// landed right at the deadline.
	queryCtx, queryCancel := context.WithTimeout(context.Background(), callTimeout)
	defer queryCancel()
	receipt, qerr := c.eth.TransactionReceipt(queryCtx, tx.Hash())
	if qerr == nil && receipt != nil {
		return receipt, nil
	}

	return nil, errors.Wrapf(err, "transaction %s not mined within %s", tx.Hash().Hex(), mineTimeout)
}

// parseInitiated scans receipt logs for the escrow's TransactionInitiated
// event and returns (txId, user, amount).
func (c *Client) parseInitiated(receipt *types.Receipt) (common.Hash, common.Address, *big.Int, error) {
	event := c.escrowABI.Events["TransactionInitiated"]

	for _, entry := range receipt.Logs {
		if len(entry.Topics) != 3 || entry.Topics[0] != event.ID {
			continue
		}

		vals, err := c.escrowABI.Unpack("TransactionInitiated", entry.Data)
		if err != nil {
			return common.Hash{}, common.Address{}, nil, errors.Wrap(err, "failed to decode TransactionInitiated data")
		}
		amount, ok := vals[0].(*big.Int)
		if !ok {
			return common.Hash{}, common.Address{}, nil, errors.New("unexpected TransactionInitiated payload")
		}

		txID := entry.Topics[1]
		user := common.BytesToAddress(entry.Topics[2].Bytes())
		return txID, user, amount, nil
	}

	return common.Hash{}, common.Address{}, nil, ErrEventNotFound
}
