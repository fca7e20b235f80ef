package contract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lumenride/gateway/accounts"
)

const (
	contractAddress = "CAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABSC4"
	invokerAddress  = "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H"
	ownerAddress    = "GA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ"

	// Base64 XDR fixtures: i128 values 42 and 0, and an empty resource
	// footprint.
	i128FortyTwoXDR   = "AAAACgAAAAAAAAAAAAAAAAAAACo="
	i128ZeroXDR       = "AAAACgAAAAAAAAAAAAAAAAAAAAA="
	emptyFootprintXDR = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="
)

// newRPCServer answers getHealth and returns the given payload for every
// simulateTransaction call, recording the simulated envelopes.
func newRPCServer(t *testing.T, sim simulateResponse, simulated *[]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var result interface{}
		switch req.Method {
		case "getHealth":
			result = healthResponse{Status: "healthy"}
		case "simulateTransaction":
			if simulated != nil {
				var p simulateRequest
				require.NoError(t, json.Unmarshal(req.Params, &p))
				*simulated = append(*simulated, p.Transaction)
			}
			result = sim
		default:
			t.Fatalf("unexpected rpc method %q", req.Method)
		}

		raw, err := json.Marshal(result)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rpcResponse{Result: raw})
	}))
}

func newInvokerResolver() *accounts.ResolverMock {
	resolver := &accounts.ResolverMock{}
	resolver.On("Resolve", mock.Anything, invokerAddress).
		Return(&accounts.LedgerAccount{Address: invokerAddress, Sequence: 100}, nil)
	return resolver
}

func newTestClient(t *testing.T, rpcURL string) *Client {
	client, err := NewClient(context.Background(),
		rpcURL, contractAddress, network.TestNetworkPassphrase, invokerAddress, newInvokerResolver())
	require.NoError(t, err)
	return client
}

func TestNewClientValidatesContractAddress(t *testing.T) {
	_, err := NewClient(context.Background(),
		"http://127.0.0.1:65535", invokerAddress, network.TestNetworkPassphrase, invokerAddress, newInvokerResolver())
	assert.ErrorIs(t, err, ErrClientUnavailable)
}

func TestNewClientProbesEndpoint(t *testing.T) {
	_, err := NewClient(context.Background(),
		"http://127.0.0.1:65535", contractAddress, network.TestNetworkPassphrase, invokerAddress, newInvokerResolver())
	assert.ErrorIs(t, err, ErrClientUnavailable)
}

func TestAvailableBalanceDecodesAmount(t *testing.T) {
	server := newRPCServer(t, simulateResponse{
		TransactionData: emptyFootprintXDR,
		MinResourceFee:  "0",
		Results:         []simulateResult{{XDR: i128FortyTwoXDR}},
	}, nil)
	defer server.Close()

	balance, err := newTestClient(t, server.URL).AvailableBalance(context.Background(), ownerAddress)
	require.NoError(t, err)
	assert.EqualValues(t, 42, balance)
}

func TestAvailableBalanceZeroIsNotAnError(t *testing.T) {
	server := newRPCServer(t, simulateResponse{
		TransactionData: emptyFootprintXDR,
		MinResourceFee:  "0",
		Results:         []simulateResult{{XDR: i128ZeroXDR}},
	}, nil)
	defer server.Close()

	balance, err := newTestClient(t, server.URL).AvailableBalance(context.Background(), ownerAddress)
	require.NoError(t, err)
	assert.EqualValues(t, 0, balance)
}

func TestAdminCommissionDecodesAmount(t *testing.T) {
	server := newRPCServer(t, simulateResponse{
		TransactionData: emptyFootprintXDR,
		MinResourceFee:  "0",
		Results:         []simulateResult{{XDR: i128FortyTwoXDR}},
	}, nil)
	defer server.Close()

	commission, err := newTestClient(t, server.URL).AdminCommission(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 42, commission)
}

func TestSimulationErrorBecomesInvocationRejected(t *testing.T) {
	server := newRPCServer(t, simulateResponse{
		Error: "HostError: Error(Auth, InvalidAction)",
	}, nil)
	defer server.Close()

	_, err := newTestClient(t, server.URL).DisburseToOwner(context.Background(), ownerAddress, 100)

	var rejected *InvocationRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "payout_owner", rejected.Method)
	assert.Contains(t, rejected.Reason, "Auth")
}

func TestRegisterAssetMaterializesUnsignedEnvelope(t *testing.T) {
	var simulated []string
	server := newRPCServer(t, simulateResponse{
		TransactionData: emptyFootprintXDR,
		MinResourceFee:  "1200",
		Results:         []simulateResult{{XDR: i128ZeroXDR}},
	}, &simulated)
	defer server.Close()

	envelope, err := newTestClient(t, server.URL).RegisterAsset(context.Background(), ownerAddress, 5000000)
	require.NoError(t, err)
	require.Len(t, simulated, 1)

	generic, err := txnbuild.TransactionFromXDR(envelope)
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)

	assert.Empty(t, tx.Signatures())
	assert.Equal(t, invokerAddress, tx.SourceAccount().AccountID)
	assert.EqualValues(t, 101, tx.SequenceNumber())
	// Base fee plus the simulated resource fee.
	assert.EqualValues(t, txnbuild.MinBaseFee+1200, tx.MaxFee())

	require.Len(t, tx.Operations(), 1)
	invoke, ok := tx.Operations()[0].(*txnbuild.InvokeHostFunction)
	require.True(t, ok)
	require.NotNil(t, invoke.HostFunction.InvokeContract)
	assert.EqualValues(t, "add_car", invoke.HostFunction.InvokeContract.FunctionName)
	require.Len(t, invoke.HostFunction.InvokeContract.Args, 2)

	amount, err := i128ToInt64(invoke.HostFunction.InvokeContract.Args[1])
	require.NoError(t, err)
	assert.EqualValues(t, 5000000, amount)
}

func TestExecuteRentalEncodesArguments(t *testing.T) {
	var simulated []string
	server := newRPCServer(t, simulateResponse{
		TransactionData: emptyFootprintXDR,
		MinResourceFee:  "900",
		Results:         []simulateResult{{XDR: i128ZeroXDR}},
	}, &simulated)
	defer server.Close()

	envelope, err := newTestClient(t, server.URL).ExecuteRental(
		context.Background(), invokerAddress, ownerAddress, 3, 15000000)
	require.NoError(t, err)

	generic, err := txnbuild.TransactionFromXDR(envelope)
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)

	invoke := tx.Operations()[0].(*txnbuild.InvokeHostFunction)
	args := invoke.HostFunction.InvokeContract.Args
	require.Len(t, args, 4)
	assert.EqualValues(t, "rental", invoke.HostFunction.InvokeContract.FunctionName)

	require.Equal(t, xdr.ScValTypeScvU32, args[2].Type)
	assert.EqualValues(t, 3, *args[2].U32)

	amount, err := i128ToInt64(args[3])
	require.NoError(t, err)
	assert.EqualValues(t, 15000000, amount)
}

func TestClientRejectsBadCounterpartyAddress(t *testing.T) {
	server := newRPCServer(t, simulateResponse{}, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.RegisterAsset(context.Background(), "not-an-address", 1)
	assert.Error(t, err)

	_, err = client.AvailableBalance(context.Background(), "not-an-address")
	assert.Error(t, err)
}

func TestI128Narrowing(t *testing.T) {
	amount, err := i128ToInt64(i128Val(-25))
	require.NoError(t, err)
	assert.EqualValues(t, -25, amount)

	wide := xdr.Int128Parts{Hi: 1, Lo: 0}
	_, err = i128ToInt64(xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &wide})
	assert.Error(t, err)

	_, err = i128ToInt64(u32Val(7))
	assert.Error(t, err)
}
