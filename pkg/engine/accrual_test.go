package engine_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/messari/subgraphs-sub011/pkg/engine"
	"github.com/messari/subgraphs-sub011/pkg/events"
	"github.com/messari/subgraphs-sub011/pkg/schema"
	"github.com/messari/subgraphs-sub011/pkg/utils"
)

// indexTimes builds the ray index 1.0 scaled by num/den, e.g. 101/100 for a
// 1% grown index.
func indexTimes(num, den int64) *big.Int {
	return rayFraction(num, den)
}

func TestRevenueAccrualSplitsByReserveFactor(t *testing.T) {
	f := newFixture(t)
	f.initReserve(100, 1_600_000_000)
	f.oracle.prices[asset] = decimal.NewFromInt(2)

	// 10% of interest goes to the protocol.
	require.NoError(t, f.eng.HandleEvent(f.ctx, events.ReserveFactorChanged{
		Meta:          f.meta(100, 1_600_000_000),
		Asset:         asset,
		ReserveFactor: 1000,
	}))

	// First update seeds the index without accruing.
	f.reader.scaled[aToken] = wad(1000)
	f.reader.supply[aToken] = wad(1000)
	require.NoError(t, f.updateReserve(101, 1_600_000_100, utils.Ray))

	market := f.market()
	require.True(t, market.CumulativeTotalRevenueUSD.IsZero())
	require.Equal(t, 0, market.LiquidityIndex.Cmp(utils.Ray))

	// 1% index growth over 1000 scaled tokens at $2: gross $20, protocol
	// $2, suppliers $18.
	require.NoError(t, f.updateReserve(102, 1_600_000_200, indexTimes(101, 100)))

	market = f.market()
	require.True(t, decimal.NewFromInt(20).Equal(market.CumulativeTotalRevenueUSD), "got %s", market.CumulativeTotalRevenueUSD)
	require.True(t, decimal.NewFromInt(2).Equal(market.CumulativeProtocolSideRevenueUSD))
	require.True(t, decimal.NewFromInt(18).Equal(market.CumulativeSupplySideRevenueUSD))
	require.True(t, market.TotalRevenueConsistent(decimal.New(1, -9)))

	proto := f.protocol()
	require.True(t, decimal.NewFromInt(20).Equal(proto.CumulativeTotalRevenueUSD))
	require.True(t, proto.RevenueConsistent(decimal.New(1, -9)))
}

func TestLiquidityIndexNeverDecreases(t *testing.T) {
	f := newFixture(t)
	f.initReserve(100, 1_600_000_000)
	f.oracle.prices[asset] = decimal.NewFromInt(1)
	f.reader.scaled[aToken] = wad(100)
	f.reader.supply[aToken] = wad(100)

	require.NoError(t, f.updateReserve(101, 1_600_000_100, indexTimes(102, 100)))

	// A lower index later is noise: no negative revenue, stored index
	// stays put.
	require.NoError(t, f.updateReserve(102, 1_600_000_200, indexTimes(101, 100)))

	market := f.market()
	require.Equal(t, 0, market.LiquidityIndex.Cmp(indexTimes(102, 100)))
	require.True(t, market.CumulativeTotalRevenueUSD.IsZero())
	require.True(t, market.CumulativeSupplySideRevenueUSD.GreaterThanOrEqual(decimal.Zero))
}

func TestUnpricedTickAdvancesIndexWithoutRevenue(t *testing.T) {
	f := newFixture(t)
	f.initReserve(100, 1_600_000_000)
	f.oracle.prices[asset] = decimal.NewFromInt(1)
	f.reader.scaled[aToken] = wad(100)
	f.reader.supply[aToken] = wad(100)
	require.NoError(t, f.updateReserve(101, 1_600_000_100, utils.Ray))

	// Oracle goes dark for one tick.
	delete(f.oracle.prices, asset)
	require.NoError(t, f.updateReserve(102, 1_600_000_200, indexTimes(103, 100)))

	market := f.market()
	require.Equal(t, 0, market.LiquidityIndex.Cmp(indexTimes(103, 100)))
	require.True(t, market.CumulativeTotalRevenueUSD.IsZero())

	// The skipped growth stays skipped: the next priced tick only accrues
	// its own delta.
	f.oracle.prices[asset] = decimal.NewFromInt(1)
	require.NoError(t, f.updateReserve(103, 1_600_000_300, indexTimes(104, 100)))
	market = f.market()
	require.True(t, decimal.NewFromInt(1).Equal(market.CumulativeTotalRevenueUSD), "got %s", market.CumulativeTotalRevenueUSD)
}

func TestReserveUpdateFatalWhenBothDebtSuppliesRevert(t *testing.T) {
	f := newFixture(t)
	f.initReserve(100, 1_600_000_000)
	f.oracle.prices[asset] = decimal.NewFromInt(1)
	require.NoError(t, f.updateReserve(101, 1_600_000_100, utils.Ray))
	beforeIndex := new(big.Int).Set(f.market().LiquidityIndex)
	beforeDeposit := f.market().TotalDepositBalanceUSD

	delete(f.reader.supply, sToken)
	delete(f.reader.supply, vToken)

	err := f.updateReserve(102, 1_600_000_200, indexTimes(101, 100))
	require.ErrorIs(t, err, engine.ErrDebtSuppliesUnavailable)

	// The aborted event left the ledger exactly as it was.
	after := f.market()
	require.Equal(t, 0, after.LiquidityIndex.Cmp(beforeIndex))
	require.True(t, beforeDeposit.Equal(after.TotalDepositBalanceUSD))
}

func TestReserveUpdateWithRevertedPriceKeepsLastPrice(t *testing.T) {
	f := newFixture(t)
	f.initReserve(100, 1_600_000_000)
	f.oracle.prices[asset] = decimal.NewFromInt(3)
	f.reader.scaled[aToken] = wad(10)
	f.reader.supply[aToken] = wad(10)
	require.NoError(t, f.updateReserve(101, 1_600_000_100, utils.Ray))
	require.True(t, decimal.NewFromInt(3).Equal(f.market().InputTokenPriceUSD))

	delete(f.oracle.prices, asset)
	require.NoError(t, f.updateReserve(102, 1_600_000_200, utils.Ray))

	// Balances still price at the last known value.
	market := f.market()
	require.True(t, decimal.NewFromInt(3).Equal(market.InputTokenPriceUSD))
	require.True(t, decimal.NewFromInt(30).Equal(market.TotalDepositBalanceUSD))
}

func TestProtocolTotalsAreResummedAcrossMarkets(t *testing.T) {
	f := newFixture(t)
	f.initReserve(100, 1_600_000_000)
	f.oracle.prices[asset] = decimal.NewFromInt(1)
	f.reader.scaled[aToken] = wad(100)
	f.reader.supply[aToken] = wad(100)
	require.NoError(t, f.updateReserve(101, 1_600_000_100, utils.Ray))

	// Second market with its own token wiring.
	asset2 := common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	aToken2 := common.HexToAddress("0x030ba81f1c18d280636f32af80b9aad02cf0854e")
	sToken2 := common.HexToAddress("0x4e977830ba4bd783c0bb7f15d3e243f73ff57121")
	vToken2 := common.HexToAddress("0xf63b34710400cad3e044cffdcab00a0f32e33ecf")
	f.reader.supply[sToken2] = big.NewInt(0)
	f.reader.supply[vToken2] = big.NewInt(0)
	f.reader.supply[aToken2] = wad(5)
	f.reader.scaled[aToken2] = wad(5)
	f.oracle.prices[asset2] = decimal.NewFromInt(2000)
	require.NoError(t, f.eng.HandleEvent(f.ctx, events.ReserveInitialized{
		Meta:              f.meta(102, 1_600_000_200),
		Asset:             asset2,
		OutputToken:       aToken2,
		StableDebtToken:   sToken2,
		VariableDebtToken: vToken2,
	}))
	require.NoError(t, f.eng.HandleEvent(f.ctx, events.ReserveDataUpdated{
		Meta:           f.meta(103, 1_600_000_300),
		Asset:          asset2,
		LiquidityIndex: utils.Ray,
	}))

	proto := f.protocol()
	require.Equal(t, int32(2), proto.TotalPoolCount)
	// 100 DAI at $1 plus 5 WETH at $2000.
	require.True(t, decimal.NewFromInt(10100).Equal(proto.TotalValueLockedUSD), "got %s", proto.TotalValueLockedUSD)
	require.True(t, decimal.NewFromInt(10100).Equal(proto.TotalDepositBalanceUSD))
}

func TestSumMarketBalances(t *testing.T) {
	markets := []*schema.Market{
		{
			TotalValueLockedUSD:    decimal.NewFromInt(300),
			TotalDepositBalanceUSD: decimal.NewFromInt(300),
			TotalBorrowBalanceUSD:  decimal.NewFromInt(120),
		},
		{
			TotalValueLockedUSD:    decimal.NewFromInt(700),
			TotalDepositBalanceUSD: decimal.NewFromInt(700),
			TotalBorrowBalanceUSD:  decimal.NewFromInt(50),
		},
	}

	tvl, deposits, borrows := engine.SumMarketBalances(markets)
	require.True(t, decimal.NewFromInt(1000).Equal(tvl))
	require.True(t, decimal.NewFromInt(1000).Equal(deposits))
	require.True(t, decimal.NewFromInt(170).Equal(borrows))

	// Summing twice gives the same answer; nothing mutates.
	tvl2, _, _ := engine.SumMarketBalances(markets)
	require.True(t, tvl.Equal(tvl2))
}
