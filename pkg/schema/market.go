package schema

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// InterestRateSide distinguishes rates earned by suppliers from rates paid
// by borrowers.
type InterestRateSide string

// InterestRateType distinguishes fixed (stable) from variable rates.
type InterestRateType string

const (
	RateSideLender   InterestRateSide = "LENDER"
	RateSideBorrower InterestRateSide = "BORROWER"

	RateTypeStable   InterestRateType = "STABLE"
	RateTypeVariable InterestRateType = "VARIABLE"
)

// InterestRate is an independent, replaceable record of one market rate.
// Reserve-data updates replace the live records with fresh ones, and
// snapshots freeze bucket-suffixed copies, so historical rows never change
// underneath a reader.
type InterestRate struct {
	ID   string           `json:"id"`
	Side InterestRateSide `json:"side"`
	Type InterestRateType `json:"type"`

	// Annualized rate in percentage points, e.g. 3.1 for 3.1% APY.
	Rate decimal.Decimal `json:"rate"`
}

// InterestRateID builds the live-rate id for a market and rate kind.
func InterestRateID(side InterestRateSide, rateType InterestRateType, marketID string) string {
	return fmt.Sprintf("%s-%s-%s", side, rateType, marketID)
}

// Market is the per-underlying-asset reserve ledger. It owns the running
// balances, cumulative volumes, the revenue split, and the last-applied
// liquidity index the accrual algorithm advances.
type Market struct {
	ID string `json:"id"`

	// Token wiring established at reserve initialization.
	InputToken        common.Address `json:"inputToken"`
	OutputToken       common.Address `json:"outputToken"`
	StableDebtToken   common.Address `json:"stableDebtToken"`
	VariableDebtToken common.Address `json:"variableDebtToken"`

	// Configuration flags toggled by the lending-pool configurator.
	IsActive           bool `json:"isActive"`
	CanUseAsCollateral bool `json:"canUseAsCollateral"`
	CanBorrowFrom      bool `json:"canBorrowFrom"`

	// Risk parameters as fractions/percentage points, already converted
	// from the raw on-chain basis points.
	MaximumLTV           decimal.Decimal `json:"maximumLTV"`
	LiquidationThreshold decimal.Decimal `json:"liquidationThreshold"`
	LiquidationPenalty   decimal.Decimal `json:"liquidationPenalty"`

	// ReserveFactor is the canonical fraction (0.10 for 10%) of accrued
	// interest routed to protocol-side revenue. Stored divided exactly
	// once; the accrual path multiplies and never divides again.
	ReserveFactor decimal.Decimal `json:"reserveFactor"`

	// Running balances.
	InputTokenBalance      *big.Int        `json:"inputTokenBalance"`
	OutputTokenSupply      *big.Int        `json:"outputTokenSupply"`
	InputTokenPriceUSD     decimal.Decimal `json:"inputTokenPriceUSD"`
	OutputTokenPriceUSD    decimal.Decimal `json:"outputTokenPriceUSD"`
	ExchangeRate           decimal.Decimal `json:"exchangeRate"`
	TotalValueLockedUSD    decimal.Decimal `json:"totalValueLockedUSD"`
	TotalDepositBalanceUSD decimal.Decimal `json:"totalDepositBalanceUSD"`
	TotalBorrowBalanceUSD  decimal.Decimal `json:"totalBorrowBalanceUSD"`

	// Cumulative, monotonically non-decreasing counters.
	CumulativeDepositUSD   decimal.Decimal `json:"cumulativeDepositUSD"`
	CumulativeBorrowUSD    decimal.Decimal `json:"cumulativeBorrowUSD"`
	CumulativeLiquidateUSD decimal.Decimal `json:"cumulativeLiquidateUSD"`

	// Revenue split. CumulativeTotalRevenueUSD must equal the sum of the
	// two sides at all times.
	CumulativeSupplySideRevenueUSD   decimal.Decimal `json:"cumulativeSupplySideRevenueUSD"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `json:"cumulativeProtocolSideRevenueUSD"`
	CumulativeTotalRevenueUSD        decimal.Decimal `json:"cumulativeTotalRevenueUSD"`

	// LiquidityIndex is the last-applied interest index (ray). It never
	// decreases, even when on-chain data is noisy.
	LiquidityIndex *big.Int `json:"liquidityIndex"`

	// Live interest-rate record ids in render order: lender-variable,
	// borrower-stable, borrower-variable.
	RateIDs []string `json:"rates"`

	// Position bookkeeping.
	PositionCount          int64 `json:"positionCount"`
	OpenPositionCount      int64 `json:"openPositionCount"`
	ClosedPositionCount    int64 `json:"closedPositionCount"`
	LendingPositionCount   int64 `json:"lendingPositionCount"`
	BorrowingPositionCount int64 `json:"borrowingPositionCount"`

	// Pre-pause flag state captured by Paused and restored verbatim by
	// Unpaused: [isActive, canUseAsCollateral, canBorrowFrom].
	PrePauseState [3]bool `json:"prePauseState"`

	CreatedBlockNumber uint64 `json:"createdBlockNumber"`
	CreatedTimestamp   int64  `json:"createdTimestamp"`
}

// NewMarket builds an empty reserve ledger for an underlying asset. The
// liquidity index starts at zero; the first reserve-data update seeds it.
func NewMarket(underlying common.Address, blockNumber uint64, timestamp int64) *Market {
	return &Market{
		ID:                 AddressID(underlying),
		InputToken:         underlying,
		InputTokenBalance:  new(big.Int),
		OutputTokenSupply:  new(big.Int),
		LiquidityIndex:     new(big.Int),
		ExchangeRate:       decimal.NewFromInt(1),
		CreatedBlockNumber: blockNumber,
		CreatedTimestamp:   timestamp,
	}
}

// TotalRevenueConsistent reports whether the revenue-conservation invariant
// holds within the given absolute tolerance.
func (m *Market) TotalRevenueConsistent(tolerance decimal.Decimal) bool {
	sum := m.CumulativeSupplySideRevenueUSD.Add(m.CumulativeProtocolSideRevenueUSD)
	return m.CumulativeTotalRevenueUSD.Sub(sum).Abs().LessThanOrEqual(tolerance)
}
