package friendbot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundPassesAddress(t *testing.T) {
	address := keypair.MustRandom().Address()

	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Query().Get("addr")
		w.Write([]byte(`{"hash": "aa"}`))
	}))
	defer server.Close()

	err := New(server.URL).Fund(context.Background(), address)
	require.NoError(t, err)
	assert.Equal(t, address, requested)
}

func TestFundReportsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Friendbot answers 400 when the account already exists.
		w.WriteHeader(400)
	}))
	defer server.Close()

	err := New(server.URL).Fund(context.Background(), keypair.MustRandom().Address())
	assert.Error(t, err)
}

func TestFundReportsTransportFailure(t *testing.T) {
	err := New("http://127.0.0.1:65535").Fund(context.Background(), keypair.MustRandom().Address())
	assert.Error(t, err)
}

func TestCreateKeypair(t *testing.T) {
	address, seed, err := CreateKeypair()
	require.NoError(t, err)

	kp, err := keypair.ParseFull(seed)
	require.NoError(t, err)
	assert.Equal(t, address, kp.Address())
}
