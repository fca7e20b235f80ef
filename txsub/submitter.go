package txsub

import (
	"context"
	"time"

	"github.com/go-errors/errors"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/support/log"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"github.com/lumenride/gateway/txsub/results"
)

// NewDefaultSubmitter returns a Submitter that submits through the given
// horizon client and classifies every outcome.
func NewDefaultSubmitter(client horizonclient.ClientInterface, networkPassphrase string) SubmitterInterface {
	return createSubmitter(client, networkPassphrase)
}

type submitter struct {
	client            horizonclient.ClientInterface
	networkPassphrase string
	metrics           *Metrics
	log               *log.Entry
}

func createSubmitter(client horizonclient.ClientInterface, networkPassphrase string) *submitter {
	return &submitter{
		client:            client,
		networkPassphrase: networkPassphrase,
		metrics:           newMetrics(),
		log:               log.WithField("service", "submitter"),
	}
}

// Metrics exposes the submitter's outcome meters and timer.
func (sub *submitter) Metrics() *Metrics {
	return sub.metrics
}

// Submit sends the signed envelope to the network and classifies the
// response. Envelopes that are undecodable, already expired, or missing a
// required signature are classified locally without a network round trip.
func (sub *submitter) Submit(ctx context.Context, signedEnvelope string) (result SubmissionResult) {
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
		sub.metrics.update(result)
		sub.log.WithField("status", result.Status.String()).
			WithField("duration", result.Duration).
			Info("submission finished")
	}()

	tx, err := decodeEnvelope(signedEnvelope)
	if err != nil {
		return transportFailure(err)
	}

	if expired(tx, time.Now()) {
		// Rejecting locally saves the round trip; the code matches what
		// the network would have answered.
		return rejected(&results.FailedTransactionError{TransactionCode: results.CodeTooLate})
	}

	if missing := missingSigners(tx, sub.networkPassphrase); len(missing) > 0 {
		sub.log.WithField("missing", missing).Warn("envelope lacks required signatures")
		return rejected(&results.FailedTransactionError{TransactionCode: results.CodeBadAuth})
	}

	if err := ctx.Err(); err != nil {
		return transportFailure(err)
	}

	resp, err := sub.client.SubmitTransactionXDR(signedEnvelope)
	if err != nil {
		return sub.classifyError(err)
	}
	return success(resp.Hash)
}

// classifyError separates business rejections, which carry result codes,
// from transport-level failures. The two must never collapse: they demand
// different caller responses.
func (sub *submitter) classifyError(err error) SubmissionResult {
	herr := horizonclient.GetError(err)
	if herr == nil {
		return transportFailure(errors.Wrap(err, 1))
	}

	codes, codesErr := herr.ResultCodes()
	if codesErr != nil {
		// Horizon answered, but without result codes the transaction was
		// never evaluated (rate limit, server error, malformed request).
		return transportFailure(herr)
	}

	return rejected(&results.FailedTransactionError{
		TransactionCode: codes.TransactionCode,
		OperationCodes:  codes.OperationCodes,
	})
}

func decodeEnvelope(signedEnvelope string) (*txnbuild.Transaction, error) {
	generic, err := txnbuild.TransactionFromXDR(signedEnvelope)
	if err != nil {
		return nil, &results.MalformedTransactionError{EnvelopeXDR: signedEnvelope}
	}
	tx, ok := generic.Transaction()
	if !ok {
		// Fee-bump envelopes are not produced by this layer.
		return nil, &results.MalformedTransactionError{EnvelopeXDR: signedEnvelope}
	}
	return tx, nil
}

func expired(tx *txnbuild.Transaction, now time.Time) bool {
	bounds := tx.Timebounds()
	return bounds.MaxTime != 0 && now.Unix() > bounds.MaxTime
}

// missingSigners returns the operation source accounts whose signature is
// absent from the envelope. Every distinct account referenced as an
// operation source must have signed before submission is valid.
func missingSigners(tx *txnbuild.Transaction, networkPassphrase string) []string {
	required := requiredSigners(tx)

	hash, err := tx.Hash(networkPassphrase)
	if err != nil {
		return required
	}

	var missing []string
	for _, address := range required {
		if !hasSignature(tx.Signatures(), hash, address) {
			missing = append(missing, address)
		}
	}
	return missing
}

func requiredSigners(tx *txnbuild.Transaction) []string {
	seen := map[string]bool{}
	var signers []string
	add := func(address string) {
		if address == "" || seen[address] {
			return
		}
		seen[address] = true
		signers = append(signers, address)
	}
	add(tx.SourceAccount().AccountID)
	for _, op := range tx.Operations() {
		add(op.GetSourceAccount())
	}
	return signers
}

func hasSignature(signatures []xdr.DecoratedSignature, hash [32]byte, address string) bool {
	kp, err := keypair.ParseAddress(address)
	if err != nil {
		return false
	}
	hint := xdr.SignatureHint(kp.Hint())
	for _, sig := range signatures {
		if sig.Hint != hint {
			continue
		}
		if kp.Verify(hash[:], sig.Signature) == nil {
			return true
		}
	}
	return false
}
