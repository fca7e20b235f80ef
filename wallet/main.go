// Package wallet is the external signer boundary. The gateway never holds
// private key material for the interactive wallet role; it hands an
// unsigned or partially-signed envelope encoding out and receives a signed
// one back. LocalSigner covers the custodial roles (issuer, distributor)
// whose keys are held server-side.
package wallet

import (
	"context"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/lumenride/gateway/txsub/results"
)

// Signer turns an envelope encoding into one carrying an additional
// signature. Implementations must not submit.
type Signer interface {
	SignTransaction(ctx context.Context, envelopeXDR string) (string, error)
	Address() string
}

// LocalSigner signs with a key held by this process.
type LocalSigner struct {
	kp                *keypair.Full
	networkPassphrase string
}

func NewLocalSigner(seed, networkPassphrase string) (*LocalSigner, error) {
	kp, err := keypair.ParseFull(seed)
	if err != nil {
		return nil, err
	}
	return &LocalSigner{kp: kp, networkPassphrase: networkPassphrase}, nil
}

func (s *LocalSigner) Address() string {
	return s.kp.Address()
}

// SignTransaction appends this signer's signature to the envelope and
// returns the new encoding. Existing signatures are preserved.
func (s *LocalSigner) SignTransaction(ctx context.Context, envelopeXDR string) (string, error) {
	generic, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", &results.MalformedTransactionError{EnvelopeXDR: envelopeXDR}
	}
	tx, ok := generic.Transaction()
	if !ok {
		return "", &results.MalformedTransactionError{EnvelopeXDR: envelopeXDR}
	}

	signed, err := tx.Sign(s.networkPassphrase, s.kp)
	if err != nil {
		return "", err
	}
	return signed.Base64()
}
