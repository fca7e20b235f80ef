// Package txbuilder assembles unsigned payment envelopes, inserting the
// receiver's trustline operation when one is required.
//
// Sequence numbers are fetched at build time and advanced by the network
// only on confirmed submission, so two concurrent builds for the same
// source account race: both observe the same sequence and the loser is
// rejected with tx_bad_seq. Callers must serialize build and submission
// per source account; this package documents that precondition rather
// than taking a global lock.
package txbuilder

import (
	"context"

	"github.com/guregu/null"
	"github.com/stellar/go/support/log"
	"github.com/stellar/go/txnbuild"

	"github.com/lumenride/gateway/accounts"
	"github.com/lumenride/gateway/assets"
	"github.com/lumenride/gateway/cache"
	"github.com/lumenride/gateway/trust"
)

// paymentWindowSeconds is how long a payment envelope stays valid. Signing
// may involve an interactive wallet, so the window is generous.
const paymentWindowSeconds = 180

// BuildResult is an unsigned payment envelope together with the accounts
// whose signatures it needs before submission is valid.
type BuildResult struct {
	Tx          *txnbuild.Transaction
	EnvelopeXDR string
	// RequiredSigners lists every distinct account referenced as an
	// operation source. Submission must not proceed until all of them
	// have signed; this is a hard precondition.
	RequiredSigners []string
	// Trustline is non-nil when a ChangeTrust operation was inserted for
	// the receiver.
	Trustline *trust.Requirement
}

type Builder struct {
	resolver          accounts.ResolverInterface
	trust             trust.ManagerInterface
	fees              *cache.FeeCache
	networkPassphrase string
	log               *log.Entry
}

func NewBuilder(resolver accounts.ResolverInterface, manager trust.ManagerInterface, fees *cache.FeeCache, networkPassphrase string) *Builder {
	return &Builder{
		resolver:          resolver,
		trust:             manager,
		fees:              fees,
		networkPassphrase: networkPassphrase,
		log:               log.WithField("service", "payment_builder"),
	}
}

// BuildPayment builds the unsigned envelope paying amount of asset from
// sender to receiver. When the asset is a credit asset, the receiver is
// not its issuer, and the receiver has no trustline yet, a ChangeTrust
// operation sourced from the receiver is placed immediately before the
// payment. The trustline step is never silently dropped: it is either
// proven unnecessary here or inserted.
func (b *Builder) BuildPayment(ctx context.Context, sender, receiver string, asset assets.Asset, amount string) (*BuildResult, error) {
	source, err := b.resolver.Resolve(ctx, sender)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{RequiredSigners: []string{sender}}
	var ops []txnbuild.Operation

	if !asset.IsNative() && receiver != asset.Issuer {
		destination, err := b.resolver.Resolve(ctx, receiver)
		if err != nil {
			return nil, err
		}
		if !b.trust.HasTrustline(destination, asset) {
			requirement := trust.Requirement{
				Account: receiver,
				Asset:   asset,
				Limit:   null.String{},
			}
			changeTrust, err := b.trust.EstablishOperation(requirement)
			if err != nil {
				return nil, err
			}
			ops = append(ops, changeTrust)
			result.Trustline = &requirement
			result.RequiredSigners = append(result.RequiredSigners, receiver)
		}
	}

	ops = append(ops, &txnbuild.Payment{
		SourceAccount: sender,
		Destination:   receiver,
		Asset:         asset.ToTxnbuild(),
		Amount:        amount,
	})

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: source.Address,
			Sequence:  source.Sequence,
		},
		IncrementSequenceNum: true,
		Operations:           ops,
		BaseFee:              b.fees.BaseFee(),
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(paymentWindowSeconds),
		},
	})
	if err != nil {
		return nil, err
	}

	envelope, err := tx.Base64()
	if err != nil {
		return nil, err
	}

	b.log.WithField("sender", sender).
		WithField("receiver", receiver).
		WithField("asset", asset.String()).
		WithField("operations", len(ops)).
		Debug("payment envelope built")

	result.Tx = tx
	result.EnvelopeXDR = envelope
	return result, nil
}

// NetworkPassphrase is the identifier every envelope from this builder is
// bound to.
func (b *Builder) NetworkPassphrase() string {
	return b.networkPassphrase
}
