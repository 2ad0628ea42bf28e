package pricefeed

import (
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"defi_direct_back/pkg/cache"
)

const baseURL = "https://api.coingecko.com/api/v3"

type Client struct {
	apiKey string
	http   *resty.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   resty.New(),
	}
}

// TokenPrice returns the token price in the given fiat currency, e.g.
// ("USDC", "ngn"). Results are cached for a minute; a transfer quote expires
// long before the cache does, so staleness is bounded by the quote TTL.
func (c *Client) TokenPrice(symbol, fiat string) (decimal.Decimal, error) {
	fiat = strings.ToLower(fiat)
	id := currencyID(symbol)
	key := id + "_" + fiat

	if rate, found := cache.GetCachedRate(key); found {
		return rate, nil
	}

	resp, err := c.http.R().
		SetHeader("x-cg-demo-api-key", c.apiKey).
		SetHeader("Accept", "application/json").
		SetQueryParam("ids", id).
		SetQueryParam("vs_currencies", fiat).
		SetResult(map[string]map[string]float64{}).
		Get(baseURL + "/simple/price")
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "price request failed")
	}
	if resp.IsError() {
		logrus.Errorf("coingecko responded %d: %s", resp.StatusCode(), resp.String())
		return decimal.Zero, errors.Errorf("price request failed with status %d", resp.StatusCode())
	}

	data := *resp.Result().(*map[string]map[string]float64)
	raw := data[id][fiat]
	if raw <= 0 {
		return decimal.Zero, errors.Errorf("no %s price for %s", fiat, symbol)
	}

	rate := decimal.NewFromFloat(raw)
	cache.SetCachedRate(key, rate)

	return rate, nil
}

func currencyID(symbol string) string {
	switch strings.ToLower(symbol) {
	case "usdc":
		return "usd-coin"
	case "usdt":
		return "tether"
	default:
		return strings.ToLower(symbol)
	}
}
