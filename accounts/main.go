// Package accounts resolves current ledger state for an address. Results
// are never memoized: a sequence number is only usable for the envelope
// built immediately after the fetch, so every build gets a fresh load.
package accounts

import (
	"context"
	"errors"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/support/log"

	"github.com/lumenride/gateway/assets"
)

// ErrAccountNotFound is returned when the network has no record at the
// requested address. Callers typically recover by funding the account.
var ErrAccountNotFound = errors.New("account not found on the ledger")

// LedgerAccount is the read-only state this layer needs from the ledger:
// the current sequence number and the held balances. Presence of a credit
// asset in Balances is the proof that a trustline exists.
type LedgerAccount struct {
	Address  string
	Sequence int64
	Balances []assets.Balance
}

// Balance returns the held amount of the given asset and whether the
// account holds it at all.
func (a *LedgerAccount) Balance(asset assets.Asset) (string, bool) {
	for _, b := range a.Balances {
		if b.Asset.Equals(asset) {
			return b.Amount, true
		}
	}
	return "", false
}

type ResolverInterface interface {
	Resolve(ctx context.Context, address string) (*LedgerAccount, error)
}

// Resolver loads accounts from horizon.
type Resolver struct {
	client horizonclient.ClientInterface
	log    *log.Entry
}

func NewResolver(client horizonclient.ClientInterface) *Resolver {
	return &Resolver{
		client: client,
		log:    log.WithField("service", "account_resolver"),
	}
}

// Resolve fetches the account record at address. A horizon 404 maps to
// ErrAccountNotFound; every other failure is returned as-is.
func (r *Resolver) Resolve(ctx context.Context, address string) (*LedgerAccount, error) {
	record, err := r.client.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			r.log.WithField("address", address).Warn("account not found")
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	account := &LedgerAccount{
		Address:  record.AccountID,
		Sequence: record.Sequence,
		Balances: make([]assets.Balance, 0, len(record.Balances)),
	}
	for _, b := range record.Balances {
		asset := assets.Native()
		if b.Asset.Type != "native" {
			asset = assets.Credit(b.Asset.Code, b.Asset.Issuer)
		}
		account.Balances = append(account.Balances, assets.Balance{
			Asset:  asset,
			Amount: b.Balance,
		})
	}
	return account, nil
}
