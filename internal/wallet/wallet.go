package wallet

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Signer holds the custodial treasury key. It approves token spends,
// initiates escrow transfers and finalizes them; the contract grants the
// transaction-manager role to its address.
type Signer struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

// LoadSigner parses a hex private key (with or without 0x prefix).
func LoadSigner(privHex string) (*Signer, error) {
	privHex = strings.TrimPrefix(strings.TrimSpace(privHex), "0x")
	if privHex == "" {
		return nil, errors.New("empty treasury private key")
	}

	privKey, err := crypto.HexToECDSA(privHex)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse treasury private key")
	}

	return &Signer{
		PrivateKey: privKey,
		Address:    crypto.PubkeyToAddress(privKey.PublicKey),
	}, nil
}

// SignTx signs with EIP-155 replay protection for the given chain.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.NewEIP155Signer(chainID), s.PrivateKey)
}
