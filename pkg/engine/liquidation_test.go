package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/messari/subgraphs-sub011/pkg/engine"
	"github.com/messari/subgraphs-sub011/pkg/events"
	"github.com/messari/subgraphs-sub011/pkg/schema"
	"github.com/messari/subgraphs-sub011/pkg/store"
	"github.com/messari/subgraphs-sub011/pkg/utils"
)

// seedCollateral gives bob a priced lender position to liquidate against.
func seedCollateral(t *testing.T, f *fixture) {
	f.initReserve(100, 1_600_000_000)
	f.oracle.prices[asset] = decimal.NewFromInt(10)
	require.NoError(t, f.updateReserve(101, 1_600_000_100, utils.Ray))

	// Penalty: bonus 10500 bps is a 5 point premium.
	require.NoError(t, f.eng.HandleEvent(f.ctx, events.CollateralConfigurationChanged{
		Meta:                 f.meta(101, 1_600_000_100),
		Asset:                asset,
		LTV:                  7500,
		LiquidationThreshold: 8000,
		LiquidationBonus:     10500,
	}))

	require.NoError(t, f.eng.HandleEvent(f.ctx, events.Deposit{
		Meta:    f.meta(102, 1_600_000_200),
		Asset:   asset,
		Account: bob,
		Amount:  wad(200),
	}))
}

func TestLiquidationProfitIsPenaltyShareOfSeizedValue(t *testing.T) {
	f := newFixture(t)
	seedCollateral(t, f)

	// Seize 100 tokens at $10: value $1000, profit $50 at a 5 point
	// penalty.
	require.NoError(t, f.eng.HandleEvent(f.ctx, events.Liquidate{
		Meta:            f.meta(103, 1_600_000_300),
		CollateralAsset: asset,
		DebtAsset:       asset,
		Liquidator:      alice,
		Liquidatee:      bob,
		AmountSeized:    wad(100),
	}))

	var rec *schema.Liquidate
	f.db.ForEach(store.Liquidates, func(_ string, entity any) bool {
		rec = entity.(*schema.Liquidate)
		return false
	})
	require.NotNil(t, rec)
	require.True(t, decimal.NewFromInt(1000).Equal(rec.AmountUSD), "got %s", rec.AmountUSD)
	require.True(t, decimal.NewFromInt(50).Equal(rec.ProfitUSD), "got %s", rec.ProfitUSD)
	require.Equal(t, schema.AddressID(alice), rec.Liquidator)
	require.Equal(t, schema.AddressID(bob), rec.Liquidatee)

	market := f.market()
	require.True(t, decimal.NewFromInt(1000).Equal(market.CumulativeLiquidateUSD))

	// The seizure reduced but did not close the 200 token position.
	pos, ok := store.Get[*schema.Position](f.db, store.Positions, rec.Position)
	require.True(t, ok)
	require.True(t, pos.IsOpen)
	require.Equal(t, 0, pos.Balance.Cmp(wad(100)))
}

func TestLiquidationClosesFullySeizedPosition(t *testing.T) {
	f := newFixture(t)
	seedCollateral(t, f)

	require.NoError(t, f.eng.HandleEvent(f.ctx, events.Liquidate{
		Meta:            f.meta(103, 1_600_000_300),
		CollateralAsset: asset,
		DebtAsset:       asset,
		Liquidator:      alice,
		Liquidatee:      bob,
		AmountSeized:    wad(200),
	}))

	accountID := schema.AddressID(bob)
	pos, ok := store.Get[*schema.Position](f.db, store.Positions, schema.PositionID(accountID, f.market().ID, schema.SideLender, 0))
	require.True(t, ok)
	require.False(t, pos.IsOpen)
}

func TestLiquidationCountsActorsOnBothSides(t *testing.T) {
	f := newFixture(t)
	seedCollateral(t, f)

	for i := 0; i < 2; i++ {
		require.NoError(t, f.eng.HandleEvent(f.ctx, events.Liquidate{
			Meta:            f.meta(103+uint64(i), 1_600_000_300),
			CollateralAsset: asset,
			DebtAsset:       asset,
			Liquidator:      alice,
			Liquidatee:      bob,
			AmountSeized:    wad(10),
		}))
	}

	liquidator, ok := store.Get[*schema.Account](f.db, store.Accounts, schema.AddressID(alice))
	require.True(t, ok)
	require.Equal(t, int64(2), liquidator.LiquidateCount)

	liquidatee, ok := store.Get[*schema.Account](f.db, store.Accounts, schema.AddressID(bob))
	require.True(t, ok)
	require.Equal(t, int64(2), liquidatee.LiquidationCount)

	// Repeat liquidators count once.
	proto := f.protocol()
	require.Equal(t, int64(1), proto.CumulativeUniqueLiquidators)
	require.Equal(t, int64(2), proto.LiquidationCount)
}

func TestLiquidationWithoutCollateralPositionAborts(t *testing.T) {
	f := newFixture(t)
	f.initReserve(100, 1_600_000_000)

	err := f.eng.HandleEvent(f.ctx, events.Liquidate{
		Meta:            f.meta(101, 1_600_000_100),
		CollateralAsset: asset,
		DebtAsset:       asset,
		Liquidator:      alice,
		Liquidatee:      bob,
		AmountSeized:    wad(10),
	})
	require.ErrorIs(t, err, engine.ErrNoOpenPosition)
	require.Equal(t, 0, f.db.Len(store.Liquidates))
}
