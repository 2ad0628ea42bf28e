package service

import (
	"math/big"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"defi_direct_back/models"
)

// Supported tokens carry 6 on-chain decimals.
const tokenDecimals = 1_000_000

// QuoteTTL is how long a conversion estimate stays valid; clients re-poll on
// this interval and the transfer pipeline rejects anything older.
const QuoteTTL = 10 * time.Second

type QuoteService struct {
	feed PriceFeed
}

func NewQuoteService(feed PriceFeed) *QuoteService {
	return &QuoteService{feed: feed}
}

// GenerateQuote converts a Naira amount into a token estimate at the live
// rate. The result is pure in (amount, rate); only the expiry window depends
// on the wall clock.
func (s *QuoteService) GenerateQuote(fiatAmount, tokenSymbol string) (models.Quote, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(fiatAmount))
	if err != nil || !amount.IsPositive() {
		return models.Quote{}, errors.New("fiat amount must be a positive number")
	}

	rate, err := s.feed.TokenPrice(tokenSymbol, "ngn")
	if err != nil {
		return models.Quote{}, errors.Wrap(err, "failed to generate quote")
	}
	if !rate.IsPositive() {
		return models.Quote{}, errors.New("failed to generate quote: no live price")
	}

	now := time.Now()
	return models.Quote{
		TokenAmount: amount.Div(rate),
		Rate:        rate,
		TokenSymbol: strings.ToUpper(tokenSymbol),
		GeneratedAt: now,
		ExpiresAt:   now.Add(QuoteTTL),
	}, nil
}

// TokenUnits converts a fiat amount at the given rate into token smallest
// units (6 decimals), rounded half away from zero.
func TokenUnits(fiatAmount, rate decimal.Decimal) *big.Int {
	return fiatAmount.Div(rate).Mul(decimal.NewFromInt(tokenDecimals)).Round(0).BigInt()
}

// ApprovalUnits returns round(units * 1.01): the requested amount plus the
// 1% platform fee, computed exactly in integers.
func ApprovalUnits(units *big.Int) *big.Int {
	total := new(big.Int).Mul(units, big.NewInt(101))
	total.Add(total, big.NewInt(50))
	return total.Div(total, big.NewInt(100))
}
