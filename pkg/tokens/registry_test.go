package tokens_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/messari/subgraphs-sub011/pkg/onchain"
	"github.com/messari/subgraphs-sub011/pkg/store"
	"github.com/messari/subgraphs-sub011/pkg/tokens"
)

// metadataReader serves only the metadata surface; supply reads revert.
type metadataReader struct {
	symbols  map[common.Address]string
	names    map[common.Address]string
	decimals map[common.Address]uint8

	resolveCalls int
}

func (m *metadataReader) TotalSupply(context.Context, common.Address) onchain.CallResult[*big.Int] {
	return onchain.Revert[*big.Int]()
}

func (m *metadataReader) ScaledTotalSupply(context.Context, common.Address) onchain.CallResult[*big.Int] {
	return onchain.Revert[*big.Int]()
}

func (m *metadataReader) BalanceOf(context.Context, common.Address, common.Address) onchain.CallResult[*big.Int] {
	return onchain.Revert[*big.Int]()
}

func (m *metadataReader) Symbol(_ context.Context, token common.Address) onchain.CallResult[string] {
	m.resolveCalls++
	if s, ok := m.symbols[token]; ok {
		return onchain.Value(s)
	}
	return onchain.Revert[string]()
}

func (m *metadataReader) Name(_ context.Context, token common.Address) onchain.CallResult[string] {
	if s, ok := m.names[token]; ok {
		return onchain.Value(s)
	}
	return onchain.Revert[string]()
}

func (m *metadataReader) Decimals(_ context.Context, token common.Address) onchain.CallResult[uint8] {
	if d, ok := m.decimals[token]; ok {
		return onchain.Value(d)
	}
	return onchain.Revert[uint8]()
}

var dai = common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f")

func newRegistry(t *testing.T, reader *metadataReader) (*tokens.Registry, *store.Memory) {
	db := store.NewMemory()
	return tokens.NewRegistry(zaptest.NewLogger(t), db, reader), db
}

func TestGetOrCreateResolvesMetadata(t *testing.T) {
	reader := &metadataReader{
		symbols:  map[common.Address]string{dai: "DAI"},
		names:    map[common.Address]string{dai: "Dai Stablecoin"},
		decimals: map[common.Address]uint8{dai: 18},
	}
	reg, db := newRegistry(t, reader)

	tok := reg.GetOrCreate(context.Background(), dai)
	require.Equal(t, "DAI", tok.Symbol)
	require.Equal(t, "Dai Stablecoin", tok.Name)
	require.Equal(t, int32(18), tok.Decimals)
	require.Equal(t, 1, db.Len(store.Tokens))
}

func TestGetOrCreateDefaultsOnRevert(t *testing.T) {
	reg, _ := newRegistry(t, &metadataReader{})

	tok := reg.GetOrCreate(context.Background(), dai)
	require.Equal(t, "unknown", tok.Symbol)
	require.Equal(t, "unknown", tok.Name)
	require.Equal(t, int32(18), tok.Decimals)
}

func TestGetOrCreateMemoizes(t *testing.T) {
	reader := &metadataReader{symbols: map[common.Address]string{dai: "DAI"}}
	reg, _ := newRegistry(t, reader)

	first := reg.GetOrCreate(context.Background(), dai)
	second := reg.GetOrCreate(context.Background(), dai)
	require.Same(t, first, second)
	require.Equal(t, 1, reader.resolveCalls)
}

func TestRefreshPriceIgnoresOlderBlocks(t *testing.T) {
	reg, _ := newRegistry(t, &metadataReader{})
	tok := reg.GetOrCreate(context.Background(), dai)

	reg.RefreshPrice(tok, decimal.NewFromInt(2), 100)
	require.True(t, decimal.NewFromInt(2).Equal(tok.LastPriceUSD))
	require.Equal(t, uint64(100), tok.LastPriceBlock)

	// A stale reading from an earlier block never overwrites.
	reg.RefreshPrice(tok, decimal.NewFromInt(1), 99)
	require.True(t, decimal.NewFromInt(2).Equal(tok.LastPriceUSD))

	reg.RefreshPrice(tok, decimal.NewFromInt(3), 101)
	require.True(t, decimal.NewFromInt(3).Equal(tok.LastPriceUSD))
}
