package assets

import (
	"testing"

	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
)

func TestAssetEquality(t *testing.T) {
	issuer := "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H"
	other := "GA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ"

	assert.True(t, Native().Equals(Native()))
	assert.True(t, Credit("CAR", issuer).Equals(Credit("CAR", issuer)))
	assert.False(t, Credit("CAR", issuer).Equals(Credit("CAR", other)))
	assert.False(t, Credit("CAR", issuer).Equals(Credit("TOKEN", issuer)))
	assert.False(t, Credit("CAR", issuer).Equals(Native()))
}

func TestAssetToTxnbuild(t *testing.T) {
	issuer := "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H"

	assert.Equal(t, txnbuild.NativeAsset{}, Native().ToTxnbuild())
	assert.Equal(t, txnbuild.CreditAsset{Code: "CAR", Issuer: issuer}, Credit("CAR", issuer).ToTxnbuild())
}

func TestScaleIsSharedByAmountsAndLimits(t *testing.T) {
	// One whole unit is 1e7 stroops, for every quantity this layer
	// converts.
	stroops, err := ToStroops("1")
	assert.NoError(t, err)
	assert.EqualValues(t, One, stroops)

	stroops, err = ToStroops("30.5")
	assert.NoError(t, err)
	assert.EqualValues(t, 305000000, stroops)

	assert.Equal(t, "30.5000000", FromStroops(305000000))

	_, err = ToStroops("not-a-number")
	assert.Error(t, err)
}

func TestBalanceLookupString(t *testing.T) {
	issuer := "GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H"
	assert.Equal(t, "native", Native().String())
	assert.Equal(t, "CAR:"+issuer, Credit("CAR", issuer).String())
}
