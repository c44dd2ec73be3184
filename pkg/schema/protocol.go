package schema

import (
	"github.com/shopspring/decimal"
)

// Protocol is the singleton aggregate for one deployment. It mirrors the
// market-level revenue and volume fields pool-wide. Totals that drift under
// incremental updates (TVL, deposit and borrow balances) are recomputed by
// full re-summation over all markets instead.
type Protocol struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	SchemaVersion string `json:"schemaVersion"`
	Network       string `json:"network"`

	TotalValueLockedUSD    decimal.Decimal `json:"totalValueLockedUSD"`
	TotalDepositBalanceUSD decimal.Decimal `json:"totalDepositBalanceUSD"`
	TotalBorrowBalanceUSD  decimal.Decimal `json:"totalBorrowBalanceUSD"`

	CumulativeDepositUSD   decimal.Decimal `json:"cumulativeDepositUSD"`
	CumulativeBorrowUSD    decimal.Decimal `json:"cumulativeBorrowUSD"`
	CumulativeLiquidateUSD decimal.Decimal `json:"cumulativeLiquidateUSD"`

	CumulativeSupplySideRevenueUSD   decimal.Decimal `json:"cumulativeSupplySideRevenueUSD"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `json:"cumulativeProtocolSideRevenueUSD"`
	CumulativeTotalRevenueUSD        decimal.Decimal `json:"cumulativeTotalRevenueUSD"`

	TotalPoolCount              int32 `json:"totalPoolCount"`
	CumulativeUniqueUsers       int64 `json:"cumulativeUniqueUsers"`
	CumulativeUniqueLiquidators int64 `json:"cumulativeUniqueLiquidators"`

	// Transaction counters rolled into usage snapshots.
	TransactionCount int64 `json:"transactionCount"`
	DepositCount     int64 `json:"depositCount"`
	WithdrawCount    int64 `json:"withdrawCount"`
	BorrowCount      int64 `json:"borrowCount"`
	RepayCount       int64 `json:"repayCount"`
	LiquidationCount int64 `json:"liquidationCount"`

	// Position bookkeeping across every market.
	OpenPositionCount       int64 `json:"openPositionCount"`
	CumulativePositionCount int64 `json:"cumulativePositionCount"`

	// MarketIDs keeps the registration order of markets so re-summation is
	// deterministic.
	MarketIDs []string `json:"markets"`

	// PriceOracle is the currently configured oracle address id, updated by
	// price-oracle-update events.
	PriceOracle string `json:"priceOracle"`
}

// NewProtocol builds the deployment-wide aggregate with all totals zeroed.
func NewProtocol(id, name, slug, schemaVersion, network string) *Protocol {
	return &Protocol{
		ID:            id,
		Name:          name,
		Slug:          slug,
		SchemaVersion: schemaVersion,
		Network:       network,
	}
}

// RevenueConsistent reports whether protocol-wide revenue conservation holds
// within the given absolute tolerance.
func (p *Protocol) RevenueConsistent(tolerance decimal.Decimal) bool {
	sum := p.CumulativeSupplySideRevenueUSD.Add(p.CumulativeProtocolSideRevenueUSD)
	return p.CumulativeTotalRevenueUSD.Sub(sum).Abs().LessThanOrEqual(tolerance)
}
