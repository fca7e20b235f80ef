// Package gateway mediates between the application layer and the Stellar
// network: it turns payment, issuance, and contract-invocation intents
// into correctly ordered, correctly authorized envelopes, hands them to an
// external signer, and submits the signed result with a classified
// outcome.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rcrowley/go-metrics"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/support/log"

	"github.com/lumenride/gateway/accounts"
	"github.com/lumenride/gateway/cache"
	"github.com/lumenride/gateway/config"
	"github.com/lumenride/gateway/contract"
	"github.com/lumenride/gateway/friendbot"
	"github.com/lumenride/gateway/helpers"
	"github.com/lumenride/gateway/issuance"
	"github.com/lumenride/gateway/trust"
	"github.com/lumenride/gateway/txbuilder"
	"github.com/lumenride/gateway/txsub"
	"github.com/lumenride/gateway/wallet"
)

// App wires the configuration into every component exactly once. There is
// no process-wide singleton: construct an App per configuration and pass
// it around explicitly.
type App struct {
	config    *config.Config
	horizon   *horizonclient.Client
	accounts  *accounts.Resolver
	trust     *trust.Manager
	fees      *cache.FeeCache
	builder   *txbuilder.Builder
	submitter txsub.SubmitterInterface
	friendbot *friendbot.Bot
}

func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.LogLevel != 0 {
		log.SetLevel(cfg.LogLevel)
	}

	horizon := &horizonclient.Client{
		HorizonURL: cfg.HorizonURL,
		HTTP:       http.DefaultClient,
	}
	horizon.SetHorizonTimeout(cfg.SubmitTimeout)

	app := &App{
		config:  cfg,
		horizon: horizon,
		trust:   trust.NewManager(),
		fees:    cache.NewFeeCache(horizon),
	}
	if cfg.BaseFee > 0 {
		app.fees.SetFixed(cfg.BaseFee)
	}
	app.accounts = accounts.NewResolver(horizon)
	app.builder = txbuilder.NewBuilder(app.accounts, app.trust, app.fees, cfg.NetworkPassphrase)
	app.submitter = txsub.NewDefaultSubmitter(horizon, cfg.NetworkPassphrase)

	if cfg.FriendbotURL != "" {
		app.friendbot = friendbot.New(cfg.FriendbotURL)
	}
	return app, nil
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Accounts() *accounts.Resolver {
	return a.accounts
}

func (a *App) Trust() *trust.Manager {
	return a.trust
}

func (a *App) PaymentBuilder() *txbuilder.Builder {
	return a.builder
}

func (a *App) Submitter() txsub.SubmitterInterface {
	return a.submitter
}

// Friendbot returns the funding bot, or nil when no friendbot URL is
// configured (any network other than a test one).
func (a *App) Friendbot() *friendbot.Bot {
	return a.friendbot
}

// Issuance builds a coordinator bound to the custodial issuer and
// distributor signers.
func (a *App) Issuance(issuerSigner, distributorSigner wallet.Signer) *issuance.Coordinator {
	return issuance.NewCoordinator(
		a.accounts,
		a.trust,
		a.submitter,
		a.fees,
		issuerSigner,
		distributorSigner,
		a.config.NetworkPassphrase,
	)
}

// ContractClient binds a contract invocation client to the configured
// contract for the given invoking account.
func (a *App) ContractClient(ctx context.Context, invoker string) (*contract.Client, error) {
	if a.config.SorobanRPCURL == "" || a.config.ContractAddress == "" {
		return nil, fmt.Errorf("%w: contract RPC URL or address not configured", contract.ErrClientUnavailable)
	}
	return contract.NewClient(
		ctx,
		a.config.SorobanRPCURL,
		a.config.ContractAddress,
		a.config.NetworkPassphrase,
		invoker,
		a.accounts,
	)
}

// Metrics reports submission metrics as a nested map, in the shape the
// embedding application exposes on its info endpoint.
func (a *App) Metrics() map[string]interface{} {
	values := map[string]interface{}{}
	provider, ok := a.submitter.(txsub.MetricsProvider)
	if !ok {
		return values
	}
	m := provider.Metrics()

	values["submission.timer"] = helpers.TimerValues(m.SubmissionTimer)
	for name, meter := range map[string]metrics.Meter{
		"submission.succeeded": m.SuccessfulSubmissionsMeter,
		"submission.rejected":  m.RejectedSubmissionsMeter,
		"submission.failed":    m.FailedSubmissionsMeter,
	} {
		values[name] = helpers.MeterValues(meter)
	}
	return values
}
