// Package issuance runs the two-phase flow that creates a new credit asset
// and mints it into a distributor account. The two phases are independent
// envelopes with independent round trips; the ledger offers no
// cross-transaction atomicity, so the flow is modeled as a resumable
// protocol instead of pretending to be one transaction.
package issuance

import (
	"context"
	"fmt"

	"github.com/guregu/null"
	"github.com/stellar/go/support/log"
	"github.com/stellar/go/txnbuild"

	"github.com/lumenride/gateway/accounts"
	"github.com/lumenride/gateway/assets"
	"github.com/lumenride/gateway/cache"
	"github.com/lumenride/gateway/trust"
	"github.com/lumenride/gateway/txsub"
	"github.com/lumenride/gateway/wallet"
)

// trustWindowSeconds bounds the phase 1 envelope. Both signers are
// custodial, so the window can be short.
const trustWindowSeconds = 30

const (
	PhaseTrust = "trust"
	PhaseMint  = "mint"
)

// Request describes the asset to create and mint.
type Request struct {
	// Asset is the new asset; its issuer must match the issuer signer.
	Asset assets.Asset
	// Distributor receives the minted amount.
	Distributor string
	// Amount is the minted amount in whole units.
	Amount string
	// Limit is the distributor's trust limit; null means the ledger
	// maximum.
	Limit null.String
}

// Result reports what each phase did.
type Result struct {
	// TrustSubmitted reports that a phase 1 envelope was submitted,
	// whatever its outcome. It is false when the trustline already
	// existed and phase 1 was skipped as a no-op; TrustResult carries
	// whether the submission actually succeeded.
	TrustSubmitted bool
	// TrustResult is nil when phase 1 was skipped.
	TrustResult *txsub.SubmissionResult
	// MintResult is the phase 2 outcome.
	MintResult txsub.SubmissionResult
}

// PhaseError reports which phase failed and with what outcome. After a
// phase 2 failure the distributor holds the trustline with zero balance;
// calling Issue again detects the trustline, skips phase 1, and retries
// only the mint.
type PhaseError struct {
	Phase  string
	Result txsub.SubmissionResult
}

func (err *PhaseError) Error() string {
	return fmt.Sprintf("issuance: phase %s failed: %v", err.Phase, err.Result.Err())
}

type Coordinator struct {
	resolver          accounts.ResolverInterface
	trust             trust.ManagerInterface
	submitter         txsub.SubmitterInterface
	fees              *cache.FeeCache
	issuerSigner      wallet.Signer
	distributorSigner wallet.Signer
	networkPassphrase string
	log               *log.Entry
}

func NewCoordinator(
	resolver accounts.ResolverInterface,
	manager trust.ManagerInterface,
	submitter txsub.SubmitterInterface,
	fees *cache.FeeCache,
	issuerSigner wallet.Signer,
	distributorSigner wallet.Signer,
	networkPassphrase string,
) *Coordinator {
	return &Coordinator{
		resolver:          resolver,
		trust:             manager,
		submitter:         submitter,
		fees:              fees,
		issuerSigner:      issuerSigner,
		distributorSigner: distributorSigner,
		networkPassphrase: networkPassphrase,
		log:               log.WithField("service", "issuance"),
	}
}

// Issue runs both phases in order. Phase 2 never starts unless phase 1
// either confirmed Success or was proven unnecessary. Issue is safe to
// call again after any failure.
func (c *Coordinator) Issue(ctx context.Context, req Request) (*Result, error) {
	if req.Asset.IsNative() {
		return nil, fmt.Errorf("issuance: cannot issue the native asset")
	}
	if req.Asset.Issuer != c.issuerSigner.Address() {
		return nil, fmt.Errorf("issuance: asset issuer %s does not match issuer signer %s",
			req.Asset.Issuer, c.issuerSigner.Address())
	}

	result := &Result{}

	trustResult, submitted, err := c.ensureTrustline(ctx, req)
	if err != nil {
		return nil, err
	}
	result.TrustSubmitted = submitted
	result.TrustResult = trustResult
	if trustResult != nil && !trustResult.IsSuccess() {
		return result, &PhaseError{Phase: PhaseTrust, Result: *trustResult}
	}

	mintResult, err := c.mint(ctx, req)
	if err != nil {
		return result, err
	}
	result.MintResult = mintResult
	if !mintResult.IsSuccess() {
		return result, &PhaseError{Phase: PhaseMint, Result: mintResult}
	}

	c.log.WithField("asset", req.Asset.String()).
		WithField("distributor", req.Distributor).
		Info("asset issued")
	return result, nil
}

// ensureTrustline is phase 1. When the distributor already trusts the
// asset the phase is a detected no-op: nothing is resubmitted.
func (c *Coordinator) ensureTrustline(ctx context.Context, req Request) (*txsub.SubmissionResult, bool, error) {
	distributor, err := c.resolver.Resolve(ctx, req.Distributor)
	if err != nil {
		return nil, false, err
	}
	if c.trust.HasTrustline(distributor, req.Asset) {
		c.log.WithField("asset", req.Asset.String()).Debug("trustline already exists, skipping phase 1")
		return nil, false, nil
	}

	changeTrust, err := c.trust.EstablishOperation(trust.Requirement{
		Account: req.Distributor,
		Asset:   req.Asset,
		Limit:   req.Limit,
	})
	if err != nil {
		return nil, false, err
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: distributor.Address,
			Sequence:  distributor.Sequence,
		},
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{changeTrust},
		BaseFee:              c.fees.BaseFee(),
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(trustWindowSeconds),
		},
	})
	if err != nil {
		return nil, false, err
	}

	result, err := c.signAndSubmit(ctx, tx, c.distributorSigner)
	if err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

// mint is phase 2: the issuer pays the newly issued amount to the
// distributor. It only runs with the trustline in place.
func (c *Coordinator) mint(ctx context.Context, req Request) (txsub.SubmissionResult, error) {
	issuer, err := c.resolver.Resolve(ctx, req.Asset.Issuer)
	if err != nil {
		return txsub.SubmissionResult{}, err
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: issuer.Address,
			Sequence:  issuer.Sequence,
		},
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				SourceAccount: req.Asset.Issuer,
				Destination:   req.Distributor,
				Asset:         req.Asset.ToTxnbuild(),
				Amount:        req.Amount,
			},
		},
		BaseFee: c.fees.BaseFee(),
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(trustWindowSeconds),
		},
	})
	if err != nil {
		return txsub.SubmissionResult{}, err
	}

	return c.signAndSubmit(ctx, tx, c.issuerSigner)
}

func (c *Coordinator) signAndSubmit(ctx context.Context, tx *txnbuild.Transaction, signer wallet.Signer) (txsub.SubmissionResult, error) {
	unsigned, err := tx.Base64()
	if err != nil {
		return txsub.SubmissionResult{}, err
	}
	signed, err := signer.SignTransaction(ctx, unsigned)
	if err != nil {
		return txsub.SubmissionResult{}, err
	}
	return c.submitter.Submit(ctx, signed), nil
}
