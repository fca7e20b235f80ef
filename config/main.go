package config

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// Config is the configuration for the gateway. It gets populated once by
// the embedding application and is provided to NewApp; components never
// read environment state on their own.
type Config struct {
	// NetworkPassphrase identifies the target network. Every envelope
	// built by this process is stamped with it.
	NetworkPassphrase string
	// HorizonURL is the query/submit endpoint for account loads and
	// signed-envelope submission.
	HorizonURL string
	// SorobanRPCURL is the contract RPC endpoint used for simulation and
	// for materializing unsigned contract-call envelopes.
	SorobanRPCURL string
	// ContractAddress is the strkey-encoded (C...) address of the rental
	// contract. Leave empty to run without the contract client.
	ContractAddress string
	// FriendbotURL enables testnet funding when non-empty.
	FriendbotURL string
	// BaseFee is the per-operation fee in stroops. Zero means discover it
	// from the network's fee stats.
	BaseFee int64
	// SubmitTimeout bounds a single submission round trip.
	SubmitTimeout time.Duration
	LogLevel      logrus.Level
}

// Validate checks the fields every component depends on.
func (c *Config) Validate() error {
	if c.NetworkPassphrase == "" {
		return errors.New("config: network passphrase is required")
	}
	if c.HorizonURL == "" {
		return errors.New("config: horizon URL is required")
	}
	return nil
}
