// Package contract is a typed facade over the rental contract. Queries run
// as simulation against current contract state and return decoded values;
// state-changing calls return an unsigned envelope for the caller to route
// through the external signer and then the submitter. The client never
// signs or submits on its own.
package contract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	goerrors "github.com/go-errors/errors"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/support/log"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"github.com/lumenride/gateway/accounts"
)

// invocationWindowSeconds bounds state-changing contract envelopes. The
// interactive wallet signs these, so the window matches payments.
const invocationWindowSeconds = 180

// ErrClientUnavailable means the RPC endpoint or the contract address
// could not be resolved at construction time. The requested operation
// cannot proceed.
var ErrClientUnavailable = errors.New("contract client unavailable")

// InvocationRejectedError means the simulated call itself is invalid at
// the contract layer, e.g. an authorization failure. It is distinct from a
// later on-chain submission rejection.
type InvocationRejectedError struct {
	Method string
	Reason string
}

func (err *InvocationRejectedError) Error() string {
	return fmt.Sprintf("contract: %s rejected in simulation: %s", err.Method, err.Reason)
}

// Client is bound at construction to a contract address, an RPC endpoint,
// a network identifier, and the invoking account.
type Client struct {
	rpcURL            string
	contractAddress   xdr.ScAddress
	invoker           string
	networkPassphrase string
	resolver          accounts.ResolverInterface
	http              *http.Client
	log               *log.Entry
}

// NewClient validates the contract address and probes the RPC endpoint.
// Either failing yields ErrClientUnavailable.
func NewClient(ctx context.Context, rpcURL, contractAddress, networkPassphrase, invoker string, resolver accounts.ResolverInterface) (*Client, error) {
	raw, err := strkey.Decode(strkey.VersionByteContract, contractAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: bad contract address %q: %v", ErrClientUnavailable, contractAddress, err)
	}
	var contractID xdr.Hash
	copy(contractID[:], raw)

	c := &Client{
		rpcURL: rpcURL,
		contractAddress: xdr.ScAddress{
			Type:       xdr.ScAddressTypeScAddressTypeContract,
			ContractId: &contractID,
		},
		invoker:           invoker,
		networkPassphrase: networkPassphrase,
		resolver:          resolver,
		http:              http.DefaultClient,
		log:               log.WithField("service", "contract_client"),
	}

	var health healthResponse
	if err := c.doRPC(ctx, "getHealth", nil, &health); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientUnavailable, err)
	}
	return c, nil
}

// RegisterAsset materializes the envelope listing a new rentable asset for
// owner at pricePerUnit stroops.
func (c *Client) RegisterAsset(ctx context.Context, owner string, pricePerUnit int64) (string, error) {
	ownerVal, err := addressVal(owner)
	if err != nil {
		return "", err
	}
	return c.buildEnvelope(ctx, "add_car", ownerVal, i128Val(pricePerUnit))
}

// RemoveAsset materializes the envelope delisting owner's asset.
func (c *Client) RemoveAsset(ctx context.Context, owner string) (string, error) {
	ownerVal, err := addressVal(owner)
	if err != nil {
		return "", err
	}
	return c.buildEnvelope(ctx, "remove_car", ownerVal)
}

// ExecuteRental materializes the envelope renting owner's asset to renter
// for durationUnits at a total of amount stroops.
func (c *Client) ExecuteRental(ctx context.Context, renter, owner string, durationUnits uint32, amount int64) (string, error) {
	renterVal, err := addressVal(renter)
	if err != nil {
		return "", err
	}
	ownerVal, err := addressVal(owner)
	if err != nil {
		return "", err
	}
	return c.buildEnvelope(ctx, "rental", renterVal, ownerVal, u32Val(durationUnits), i128Val(amount))
}

// DisburseToOwner materializes the envelope paying out amount stroops of
// owner's accrued earnings.
func (c *Client) DisburseToOwner(ctx context.Context, owner string, amount int64) (string, error) {
	ownerVal, err := addressVal(owner)
	if err != nil {
		return "", err
	}
	return c.buildEnvelope(ctx, "payout_owner", ownerVal, i128Val(amount))
}

// DisburseToAdmin materializes the envelope paying out amount stroops of
// the admin's accrued commission.
func (c *Client) DisburseToAdmin(ctx context.Context, admin string, amount int64) (string, error) {
	adminVal, err := addressVal(admin)
	if err != nil {
		return "", err
	}
	return c.buildEnvelope(ctx, "payout_admin", adminVal, i128Val(amount))
}

// AvailableBalance returns the amount, in stroops, owner may currently
// withdraw. Zero earned commission returns 0, not an error.
func (c *Client) AvailableBalance(ctx context.Context, owner string) (int64, error) {
	ownerVal, err := addressVal(owner)
	if err != nil {
		return 0, err
	}
	result, err := c.query(ctx, "get_available_withdraw_payowner", ownerVal)
	if err != nil {
		return 0, err
	}
	return i128ToInt64(result)
}

// AdminCommission returns the admin's current accrued commission in
// stroops.
func (c *Client) AdminCommission(ctx context.Context) (int64, error) {
	result, err := c.query(ctx, "get_admin_commission")
	if err != nil {
		return 0, err
	}
	return i128ToInt64(result)
}

// buildEnvelope runs a state-changing call: simulate, then fold the
// simulation's resource footprint, fee, and authorization entries into an
// unsigned envelope.
func (c *Client) buildEnvelope(ctx context.Context, method string, args ...xdr.ScVal) (string, error) {
	source, op, sim, err := c.simulate(ctx, method, args)
	if err != nil {
		return "", err
	}

	var sorobanData xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(sim.TransactionData, &sorobanData); err != nil {
		return "", goerrors.Wrap(err, 1)
	}
	op.Ext = xdr.TransactionExt{V: 1, SorobanData: &sorobanData}

	if len(sim.Results) > 0 {
		auth, err := decodeAuth(sim.Results[0].Auth)
		if err != nil {
			return "", err
		}
		op.Auth = auth
	}

	resourceFee, err := strconv.ParseInt(sim.MinResourceFee, 10, 64)
	if err != nil {
		return "", goerrors.Wrap(err, 1)
	}

	// Single-operation envelope: the resource fee rides on top of the
	// per-operation base fee.
	tx, err := c.buildTx(source, op, txnbuild.MinBaseFee+resourceFee)
	if err != nil {
		return "", err
	}

	c.log.WithField("method", method).Debug("contract envelope materialized")
	return tx.Base64()
}

// query runs a read-only call and decodes the simulated return value. No
// envelope is produced and no signature is required.
func (c *Client) query(ctx context.Context, method string, args ...xdr.ScVal) (xdr.ScVal, error) {
	_, _, sim, err := c.simulate(ctx, method, args)
	if err != nil {
		return xdr.ScVal{}, err
	}
	if len(sim.Results) == 0 {
		return xdr.ScVal{}, goerrors.Errorf("contract: %s simulation returned no value", method)
	}

	var result xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(sim.Results[0].XDR, &result); err != nil {
		return xdr.ScVal{}, goerrors.Wrap(err, 1)
	}
	return result, nil
}

func (c *Client) simulate(ctx context.Context, method string, args []xdr.ScVal) (*accounts.LedgerAccount, *txnbuild.InvokeHostFunction, *simulateResponse, error) {
	source, err := c.resolver.Resolve(ctx, c.invoker)
	if err != nil {
		return nil, nil, nil, err
	}

	op := &txnbuild.InvokeHostFunction{
		SourceAccount: c.invoker,
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: c.contractAddress,
				FunctionName:    xdr.ScSymbol(method),
				Args:            args,
			},
		},
	}

	tx, err := c.buildTx(source, op, txnbuild.MinBaseFee)
	if err != nil {
		return nil, nil, nil, err
	}
	envelope, err := tx.Base64()
	if err != nil {
		return nil, nil, nil, err
	}

	var sim simulateResponse
	if err := c.doRPC(ctx, "simulateTransaction", simulateRequest{Transaction: envelope}, &sim); err != nil {
		return nil, nil, nil, err
	}
	if sim.Error != "" {
		return nil, nil, nil, &InvocationRejectedError{Method: method, Reason: sim.Error}
	}
	return source, op, &sim, nil
}

func (c *Client) buildTx(source *accounts.LedgerAccount, op *txnbuild.InvokeHostFunction, baseFee int64) (*txnbuild.Transaction, error) {
	return txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: source.Address,
			Sequence:  source.Sequence,
		},
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              baseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(invocationWindowSeconds),
		},
	})
}

func decodeAuth(encoded []string) ([]xdr.SorobanAuthorizationEntry, error) {
	auth := make([]xdr.SorobanAuthorizationEntry, 0, len(encoded))
	for _, e := range encoded {
		var entry xdr.SorobanAuthorizationEntry
		if err := xdr.SafeUnmarshalBase64(e, &entry); err != nil {
			return nil, goerrors.Wrap(err, 1)
		}
		auth = append(auth, entry)
	}
	return auth, nil
}
