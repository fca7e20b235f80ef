// Package cache holds the few lookups that are safe to memoize. Account
// state is deliberately absent: sequence numbers must be fetched fresh for
// every build.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/support/log"
	"github.com/stellar/go/txnbuild"
)

const feeKey = "base_fee"

// FeeCache provides the network's current per-operation base fee, cached
// briefly so that building several envelopes in a row does not hit the
// fee stats endpoint each time.
type FeeCache struct {
	*gocache.Cache
	client horizonclient.ClientInterface
	log    *log.Entry
}

func NewFeeCache(client horizonclient.ClientInterface) *FeeCache {
	return &FeeCache{
		Cache:  gocache.New(5*time.Minute, time.Minute),
		client: client,
		log:    log.WithField("service", "fee_cache"),
	}
}

// SetFixed pins the base fee, disabling discovery. Used when the
// configuration names an explicit fee.
func (c *FeeCache) SetFixed(fee int64) {
	c.Cache.Set(feeKey, fee, gocache.NoExpiration)
}

// BaseFee returns the last ledger's base fee in stroops. On any failure it
// falls back to the protocol minimum, which the network accepts whenever
// it is not under surge pricing.
func (c *FeeCache) BaseFee() int64 {
	if found, ok := c.Cache.Get(feeKey); ok {
		return found.(int64)
	}

	stats, err := c.client.FeeStats()
	if err != nil {
		c.log.WithError(err).Warn("fee stats unavailable, using minimum base fee")
		return txnbuild.MinBaseFee
	}

	fee := stats.LastLedgerBaseFee
	if fee < txnbuild.MinBaseFee {
		fee = txnbuild.MinBaseFee
	}
	c.Cache.Set(feeKey, fee, gocache.DefaultExpiration)
	return fee
}
