package accounts

import (
	"context"
	"testing"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/protocols/horizon/base"
	"github.com/stellar/go/support/render/problem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenride/gateway/assets"
)

func assetCAR() assets.Asset {
	return assets.Credit("CAR", issuerAddress)
}

func assetNative() assets.Asset {
	return assets.Native()
}

const (
	senderAddress = "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H"
	issuerAddress = "GA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ"
)

func TestResolveMapsLedgerState(t *testing.T) {
	client := &horizonclient.MockClient{}
	client.On("AccountDetail", horizonclient.AccountRequest{AccountID: senderAddress}).
		Return(hProtocol.Account{
			AccountID: senderAddress,
			Sequence:  4130000000000000,
			Balances: []hProtocol.Balance{
				{Balance: "50.0000000", Asset: base.Asset{Type: "credit_alphanum4", Code: "CAR", Issuer: issuerAddress}},
				{Balance: "100.0000000", Asset: base.Asset{Type: "native"}},
			},
		}, nil)

	resolver := NewResolver(client)
	account, err := resolver.Resolve(context.Background(), senderAddress)
	require.NoError(t, err)

	assert.Equal(t, senderAddress, account.Address)
	assert.EqualValues(t, 4130000000000000, account.Sequence)
	require.Len(t, account.Balances, 2)

	held, ok := account.Balance(assetCAR())
	assert.True(t, ok)
	assert.Equal(t, "50.0000000", held)

	held, ok = account.Balance(assetNative())
	assert.True(t, ok)
	assert.Equal(t, "100.0000000", held)

	client.AssertExpectations(t)
}

func TestResolveNotFound(t *testing.T) {
	client := &horizonclient.MockClient{}
	client.On("AccountDetail", horizonclient.AccountRequest{AccountID: senderAddress}).
		Return(hProtocol.Account{}, &horizonclient.Error{
			Problem: problem.P{
				Type:   "https://stellar.org/horizon-errors/not_found",
				Title:  "Resource Missing",
				Status: 404,
			},
		})

	resolver := NewResolver(client)
	account, err := resolver.Resolve(context.Background(), senderAddress)
	assert.Nil(t, account)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestResolvePropagatesOtherFailures(t *testing.T) {
	client := &horizonclient.MockClient{}
	client.On("AccountDetail", horizonclient.AccountRequest{AccountID: senderAddress}).
		Return(hProtocol.Account{}, &horizonclient.Error{
			Problem: problem.P{
				Type:   "https://stellar.org/horizon-errors/server_error",
				Status: 500,
			},
		})

	resolver := NewResolver(client)
	_, err := resolver.Resolve(context.Background(), senderAddress)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAccountNotFound)
}
