package cache

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CachedRate struct {
	Rate      decimal.Decimal
	Timestamp time.Time
}

var (
	cachedRates   = make(map[string]CachedRate)
	cacheDuration = 60 * time.Second
	mu            sync.Mutex
)

// GetCachedRate returns a cached rate, or false when missing or stale.
func GetCachedRate(key string) (decimal.Decimal, bool) {
	mu.Lock()
	defer mu.Unlock()

	rateData, ok := cachedRates[key]
	if !ok {
		return decimal.Zero, false
	}

	if time.Since(rateData.Timestamp) > cacheDuration {
		return decimal.Zero, false
	}

	return rateData.Rate, true
}

// SetCachedRate stores a rate under the given key.
func SetCachedRate(key string, rate decimal.Decimal) {
	mu.Lock()
	defer mu.Unlock()

	cachedRates[key] = CachedRate{
		Rate:      rate,
		Timestamp: time.Now(),
	}

	logrus.Infof("cached rate for %s", key)
}
