// Package assets holds the asset model shared by every component: the
// native/credit distinction, equality, and the single fixed-point scale
// used for both payment amounts and trust limits.
package assets

import (
	"fmt"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// One is the number of stroops in one whole unit of any asset. The ledger
// uses a 7-decimal fixed point for every amount, trust limits included.
const One = amount.One

// Asset identifies either the native asset (zero value) or a credit asset
// by code and issuing account.
type Asset struct {
	Code   string
	Issuer string
}

// Native returns the network's base asset.
func Native() Asset {
	return Asset{}
}

// Credit returns the issued asset identified by code and issuer.
func Credit(code, issuer string) Asset {
	return Asset{Code: code, Issuer: issuer}
}

func (a Asset) IsNative() bool {
	return a.Code == "" && a.Issuer == ""
}

// Equals reports whether two assets are the same: both native, or both
// credit with matching code and issuer.
func (a Asset) Equals(other Asset) bool {
	return a.Code == other.Code && a.Issuer == other.Issuer
}

func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}
	return fmt.Sprintf("%s:%s", a.Code, a.Issuer)
}

// ToTxnbuild converts the asset into its txnbuild representation.
func (a Asset) ToTxnbuild() txnbuild.Asset {
	if a.IsNative() {
		return txnbuild.NativeAsset{}
	}
	return txnbuild.CreditAsset{Code: a.Code, Issuer: a.Issuer}
}

// Balance is an asset together with the amount of it an account holds,
// in whole units ("30.5000000").
type Balance struct {
	Asset  Asset
	Amount string
}

// ToStroops converts a whole-unit decimal string into stroops using the
// ledger's 7-decimal scale. Trust limits and payment amounts both go
// through this conversion.
func ToStroops(units string) (int64, error) {
	v, err := amount.Parse(units)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

// FromStroops renders stroops as a whole-unit decimal string.
func FromStroops(stroops int64) string {
	return amount.String(xdr.Int64(stroops))
}
