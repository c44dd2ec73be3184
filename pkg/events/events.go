// Package events defines the typed, finalized blockchain events the host
// delivers to the engine, one at a time and in chain order. Every event
// carries the same fixed coordinate set; payload fields are the decoded log
// parameters, still in their raw on-chain scales.
package events

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Meta is the chain coordinate block shared by all events.
type Meta struct {
	BlockNumber uint64      `json:"blockNumber"`
	Timestamp   int64       `json:"timestamp"`
	TxHash      common.Hash `json:"txHash"`
	LogIndex    uint32      `json:"logIndex"`
}

// Event is implemented by every deliverable event type.
type Event interface {
	EventMeta() Meta
}

func (m Meta) EventMeta() Meta { return m }

// ReserveInitialized announces a new market and its token wiring. Markets
// must exist before any other event can reference them.
type ReserveInitialized struct {
	Meta
	Asset             common.Address `json:"asset"`
	OutputToken       common.Address `json:"outputToken"`
	StableDebtToken   common.Address `json:"stableDebtToken"`
	VariableDebtToken common.Address `json:"variableDebtToken"`
}

// ReserveDataUpdated carries the fresh rates and liquidity index emitted on
// every pool interaction. Rates and index are ray-scaled.
type ReserveDataUpdated struct {
	Meta
	Asset              common.Address `json:"asset"`
	LiquidityRate      *big.Int       `json:"liquidityRate"`
	StableBorrowRate   *big.Int       `json:"stableBorrowRate"`
	VariableBorrowRate *big.Int       `json:"variableBorrowRate"`
	LiquidityIndex     *big.Int       `json:"liquidityIndex"`
}

// Deposit is a supply of the underlying asset into a reserve.
type Deposit struct {
	Meta
	Asset   common.Address `json:"asset"`
	Account common.Address `json:"account"`
	Amount  *big.Int       `json:"amount"`
}

// Withdraw redeems underlying from a reserve. Amount is the on-chain
// reported value, already saturated to the account's balance.
type Withdraw struct {
	Meta
	Asset   common.Address `json:"asset"`
	Account common.Address `json:"account"`
	Amount  *big.Int       `json:"amount"`
}

// Borrow draws underlying against collateral.
type Borrow struct {
	Meta
	Asset   common.Address `json:"asset"`
	Account common.Address `json:"account"`
	Amount  *big.Int       `json:"amount"`
}

// Repay pays down outstanding debt. Amount is saturated on-chain.
type Repay struct {
	Meta
	Asset   common.Address `json:"asset"`
	Account common.Address `json:"account"`
	Amount  *big.Int       `json:"amount"`
}

// Liquidate seizes a borrower's collateral in exchange for repaying part of
// their debt. AmountSeized is denominated in collateral-asset units.
type Liquidate struct {
	Meta
	CollateralAsset common.Address `json:"collateralAsset"`
	DebtAsset       common.Address `json:"debtAsset"`
	Liquidator      common.Address `json:"liquidator"`
	Liquidatee      common.Address `json:"liquidatee"`
	AmountSeized    *big.Int       `json:"amountSeized"`
}

// CollateralConfigurationChanged updates a reserve's risk parameters. All
// three values arrive in basis points.
type CollateralConfigurationChanged struct {
	Meta
	Asset                common.Address `json:"asset"`
	LTV                  uint64         `json:"ltv"`
	LiquidationThreshold uint64         `json:"liquidationThreshold"`
	LiquidationBonus     uint64         `json:"liquidationBonus"`
}

// BorrowingChanged enables or disables borrowing from a reserve.
type BorrowingChanged struct {
	Meta
	Asset   common.Address `json:"asset"`
	Enabled bool           `json:"enabled"`
}

// ReserveActivationChanged activates or deactivates a reserve.
type ReserveActivationChanged struct {
	Meta
	Asset  common.Address `json:"asset"`
	Active bool           `json:"active"`
}

// ReserveFactorChanged updates the share of interest routed to the
// protocol, in basis points.
type ReserveFactorChanged struct {
	Meta
	Asset         common.Address `json:"asset"`
	ReserveFactor uint64         `json:"reserveFactor"`
}

// CollateralUsageChanged toggles one account's use of a reserve as
// collateral.
type CollateralUsageChanged struct {
	Meta
	Asset   common.Address `json:"asset"`
	Account common.Address `json:"account"`
	Enabled bool           `json:"enabled"`
}

// Paused zeroes every reserve's availability flags pool-wide.
type Paused struct {
	Meta
}

// Unpaused restores the flag state captured by the matching Paused event.
type Unpaused struct {
	Meta
}

// PriceOracleUpdated points the deployment at a new price oracle contract.
type PriceOracleUpdated struct {
	Meta
	Oracle common.Address `json:"oracle"`
}
