// Package trust decides whether an account may receive a credit asset and
// builds the operation that establishes that permission.
package trust

import (
	"fmt"

	"github.com/guregu/null"
	"github.com/stellar/go/support/log"
	"github.com/stellar/go/txnbuild"

	"github.com/lumenride/gateway/accounts"
	"github.com/lumenride/gateway/assets"
)

// Requirement is a pending authorization: account must grant a trustline
// for asset before it can hold more than zero of it. A null limit means
// the ledger maximum.
type Requirement struct {
	Account string
	Asset   assets.Asset
	Limit   null.String
}

type ManagerInterface interface {
	HasTrustline(account *accounts.LedgerAccount, asset assets.Asset) bool
	EstablishOperation(req Requirement) (*txnbuild.ChangeTrust, error)
}

type Manager struct {
	log *log.Entry
}

func NewManager() *Manager {
	return &Manager{log: log.WithField("service", "trustline_manager")}
}

// HasTrustline reports whether account may currently receive asset. The
// native asset is always trusted; a credit asset is trusted iff it appears
// in the account's balance set.
func (m *Manager) HasTrustline(account *accounts.LedgerAccount, asset assets.Asset) bool {
	if asset.IsNative() {
		return true
	}
	_, held := account.Balance(asset)
	return held
}

// EstablishOperation builds the ChangeTrust operation for req. The
// operation's source is the receiving account itself: it is the one
// authorizing its exposure to the asset, not the payer. The limit uses the
// same 7-decimal fixed-point scale as payment amounts.
func (m *Manager) EstablishOperation(req Requirement) (*txnbuild.ChangeTrust, error) {
	if req.Asset.IsNative() {
		return nil, fmt.Errorf("trust: native asset needs no trustline")
	}

	limit := txnbuild.MaxTrustlineLimit
	if req.Limit.Valid {
		// Round-trip through stroops so a malformed limit fails here,
		// not at submission.
		stroops, err := assets.ToStroops(req.Limit.String)
		if err != nil {
			return nil, fmt.Errorf("trust: invalid limit %q: %w", req.Limit.String, err)
		}
		limit = assets.FromStroops(stroops)
	}

	line, err := req.Asset.ToTxnbuild().ToChangeTrustAsset()
	if err != nil {
		return nil, err
	}

	m.log.WithField("account", req.Account).
		WithField("asset", req.Asset.String()).
		Debug("building trustline operation")

	return &txnbuild.ChangeTrust{
		SourceAccount: req.Account,
		Line:          line,
		Limit:         limit,
	}, nil
}
