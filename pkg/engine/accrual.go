package engine

import (
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/messari/subgraphs-sub011/pkg/schema"
	"github.com/messari/subgraphs-sub011/pkg/store"
	"github.com/messari/subgraphs-sub011/pkg/utils"
)

// revenueSplit is one tick's accrued revenue, already divided between the
// protocol and the liquidity suppliers.
type revenueSplit struct {
	GrossUSD    decimal.Decimal
	ProtocolUSD decimal.Decimal
	SupplyUSD   decimal.Decimal
}

// accrueRevenue translates an interest-index delta into USD revenue and
// advances the market's stored index.
//
// The index advances to newIndex unconditionally: noisy on-chain data may
// deliver a lower index, and a missing price zeroes the tick's revenue, but
// the stored index never moves backward and is never re-derived. A zero
// stored index means the market has not seen an index yet; that first
// observation seeds the index without accruing.
func (e *Engine) accrueRevenue(market *schema.Market, protocol *schema.Protocol, newIndex, scaledSupply *big.Int, decimals int32, priceUSD decimal.Decimal, priced bool) revenueSplit {
	var split revenueSplit
	if newIndex == nil {
		return split
	}

	prev := utils.BigIntOrZero(market.LiquidityIndex)
	seeding := prev.Sign() == 0

	// Clamp the growth factor at zero; the index itself still advances.
	delta := new(big.Int).Sub(newIndex, prev)
	if delta.Sign() < 0 {
		delta.SetInt64(0)
	}

	if newIndex.Cmp(prev) > 0 {
		market.LiquidityIndex = new(big.Int).Set(newIndex)
	}

	if seeding || delta.Sign() == 0 {
		return split
	}
	if !priced {
		e.log.Warn("price unavailable, skipping revenue for this tick",
			zap.String("market", market.ID))
		return split
	}

	indexDelta := utils.FromRay(delta)
	split.GrossUSD = utils.ToUnits(scaledSupply, decimals).Mul(indexDelta).Mul(priceUSD)
	split.ProtocolUSD = split.GrossUSD.Mul(market.ReserveFactor)
	split.SupplyUSD = split.GrossUSD.Sub(split.ProtocolUSD)

	market.CumulativeProtocolSideRevenueUSD = market.CumulativeProtocolSideRevenueUSD.Add(split.ProtocolUSD)
	market.CumulativeSupplySideRevenueUSD = market.CumulativeSupplySideRevenueUSD.Add(split.SupplyUSD)
	market.CumulativeTotalRevenueUSD = market.CumulativeTotalRevenueUSD.Add(split.GrossUSD)

	protocol.CumulativeProtocolSideRevenueUSD = protocol.CumulativeProtocolSideRevenueUSD.Add(split.ProtocolUSD)
	protocol.CumulativeSupplySideRevenueUSD = protocol.CumulativeSupplySideRevenueUSD.Add(split.SupplyUSD)
	protocol.CumulativeTotalRevenueUSD = protocol.CumulativeTotalRevenueUSD.Add(split.GrossUSD)

	return split
}

// SumMarketBalances recomputes pool-wide totals from scratch. Protocol TVL,
// deposit and borrow balances are always re-derived by full summation so
// per-event rounding can never compound into drift.
func SumMarketBalances(markets []*schema.Market) (tvl, deposits, borrows decimal.Decimal) {
	for _, m := range markets {
		tvl = tvl.Add(m.TotalValueLockedUSD)
		deposits = deposits.Add(m.TotalDepositBalanceUSD)
		borrows = borrows.Add(m.TotalBorrowBalanceUSD)
	}
	return tvl, deposits, borrows
}

// refreshProtocolTotals applies SumMarketBalances over every registered
// market and stores the result on the aggregate.
func (e *Engine) refreshProtocolTotals(protocol *schema.Protocol) {
	markets := make([]*schema.Market, 0, len(protocol.MarketIDs))
	for _, id := range protocol.MarketIDs {
		if m, ok := store.Get[*schema.Market](e.db, store.Markets, id); ok {
			markets = append(markets, m)
		}
	}
	protocol.TotalValueLockedUSD, protocol.TotalDepositBalanceUSD, protocol.TotalBorrowBalanceUSD = SumMarketBalances(markets)
}
