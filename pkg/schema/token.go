package schema

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Token is the once-per-asset metadata record. Symbol, name and decimals are
// resolved from the token contract a single time; the USD price is refreshed
// opportunistically whenever a handler carries a fresh oracle reading.
type Token struct {
	ID       string         `json:"id"`
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Decimals int32          `json:"decimals"`

	// Last known oracle price and the block it was observed at. Zero price
	// with LastPriceBlock == 0 means the oracle has never answered.
	LastPriceUSD   decimal.Decimal `json:"lastPriceUSD"`
	LastPriceBlock uint64          `json:"lastPriceBlockNumber"`
}

// NewToken builds a token record with the unresolved-metadata defaults used
// when every contract read reverts: 18 decimals and placeholder strings.
func NewToken(addr common.Address) *Token {
	return &Token{
		ID:           AddressID(addr),
		Address:      addr,
		Symbol:       "unknown",
		Name:         "unknown",
		Decimals:     18,
		LastPriceUSD: decimal.Zero,
	}
}
