package schema_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/messari/subgraphs-sub011/pkg/schema"
)

func TestBuckets(t *testing.T) {
	// 2020-09-13T12:26:40Z.
	ts := int64(1_600_000_000)
	assert.Equal(t, int64(18518), schema.DayBucket(ts))
	assert.Equal(t, int64(444444), schema.HourBucket(ts))

	// Same bucket just before the boundary, next bucket exactly at it.
	assert.Equal(t, schema.DayBucket(ts), schema.DayBucket(18519*schema.SecondsPerDay-1))
	assert.Equal(t, schema.DayBucket(ts)+1, schema.DayBucket(18519*schema.SecondsPerDay))
}

func TestIDs(t *testing.T) {
	addr := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	assert.Equal(t, "0x6b175474e89094c44da98b954eedeac495271d0f", schema.AddressID(addr))

	tx := common.HexToHash("0xABCD")
	assert.Equal(t, tx.Hex()+"-7", schema.EventID(tx, 7))

	assert.Equal(t, "owner-42", schema.SnapshotID("owner", 42))

	pid := schema.PositionID("acc", "mkt", schema.SideLender, 3)
	assert.Equal(t, "acc-mkt-LENDER-3", pid)
}

func TestAccountCollateralSet(t *testing.T) {
	acc := schema.NewAccount(common.HexToAddress("0x1"))

	acc.EnableCollateral("m1")
	acc.EnableCollateral("m2")
	acc.EnableCollateral("m1")
	require.Equal(t, []string{"m1", "m2"}, acc.EnabledCollateral)

	acc.DisableCollateral("m1")
	require.Equal(t, []string{"m2"}, acc.EnabledCollateral)

	// Disabling an absent market is a no-op.
	acc.DisableCollateral("m9")
	require.Equal(t, []string{"m2"}, acc.EnabledCollateral)
}

func TestRevenueConsistency(t *testing.T) {
	m := schema.NewMarket(common.HexToAddress("0x1"), 1, 1)
	m.CumulativeSupplySideRevenueUSD = decimal.NewFromFloat(18)
	m.CumulativeProtocolSideRevenueUSD = decimal.NewFromFloat(2)
	m.CumulativeTotalRevenueUSD = decimal.NewFromFloat(20)
	assert.True(t, m.TotalRevenueConsistent(decimal.New(1, -9)))

	m.CumulativeTotalRevenueUSD = decimal.NewFromFloat(21)
	assert.False(t, m.TotalRevenueConsistent(decimal.New(1, -9)))

	p := schema.NewProtocol("p", "n", "s", "v", "net")
	p.CumulativeSupplySideRevenueUSD = decimal.NewFromFloat(18)
	p.CumulativeProtocolSideRevenueUSD = decimal.NewFromFloat(2)
	p.CumulativeTotalRevenueUSD = decimal.NewFromFloat(20)
	assert.True(t, p.RevenueConsistent(decimal.New(1, -9)))
}

func TestNewMarketDefaults(t *testing.T) {
	m := schema.NewMarket(common.HexToAddress("0x2"), 55, 1_600_000_000)
	require.Equal(t, 0, m.LiquidityIndex.Sign())
	require.True(t, decimal.NewFromInt(1).Equal(m.ExchangeRate))
	require.Equal(t, uint64(55), m.CreatedBlockNumber)
}
