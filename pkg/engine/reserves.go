package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/messari/subgraphs-sub011/pkg/events"
	"github.com/messari/subgraphs-sub011/pkg/schema"
	"github.com/messari/subgraphs-sub011/pkg/store"
	"github.com/messari/subgraphs-sub011/pkg/utils"
)

// handleReserveInitialized creates the market for a freshly listed reserve
// and registers its token wiring. Re-initialization of a known reserve is a
// no-op on creation-time fields.
func (e *Engine) handleReserveInitialized(ctx context.Context, ev events.ReserveInitialized) error {
	protocol := e.protocol()
	e.tokens.GetOrCreate(ctx, ev.Asset)
	e.tokens.GetOrCreate(ctx, ev.OutputToken)

	id := schema.AddressID(ev.Asset)
	market, created := store.GetOrCreate(e.db, store.Markets, id, func() *schema.Market {
		m := schema.NewMarket(ev.Asset, ev.BlockNumber, ev.Timestamp)
		m.OutputToken = ev.OutputToken
		m.StableDebtToken = ev.StableDebtToken
		m.VariableDebtToken = ev.VariableDebtToken
		m.IsActive = true
		return m
	})
	if !created {
		return nil
	}

	protocol.MarketIDs = append(protocol.MarketIDs, market.ID)
	protocol.TotalPoolCount++
	e.db.Put(store.Protocols, protocol.ID, protocol)

	e.log.Info("market initialized",
		zap.String("market", market.ID),
		zap.String("outputToken", schema.AddressID(ev.OutputToken)),
		zap.Uint64("block", ev.BlockNumber),
	)
	return nil
}

// handleReserveDataUpdated recomputes a market's balances from the debt and
// output token contracts, accrues revenue from the liquidity-index delta,
// replaces the live interest-rate records, and re-sums the protocol totals.
//
// All contract reads happen before the first write so an abort commits
// nothing.
func (e *Engine) handleReserveDataUpdated(ctx context.Context, ev events.ReserveDataUpdated) error {
	market, err := e.market(ev.Asset, ev.Meta)
	if err != nil {
		return err
	}
	// Without either debt supply there is no trustworthy borrow total;
	// abort before touching any state.
	stableRes := e.reader.TotalSupply(ctx, market.StableDebtToken)
	variableRes := e.reader.TotalSupply(ctx, market.VariableDebtToken)
	if stableRes.Reverted() && variableRes.Reverted() {
		return fmt.Errorf("%w: market %s block %d", ErrDebtSuppliesUnavailable, market.ID, ev.BlockNumber)
	}

	protocol := e.protocol()
	token := e.tokens.GetOrCreate(ctx, ev.Asset)

	priceRes := e.oracle.PriceUSD(ctx, ev.Asset)
	priced := !priceRes.Reverted()
	priceUSD := priceRes.UnwrapOr(market.InputTokenPriceUSD)
	totalDebt := new(big.Int).Add(
		stableRes.UnwrapOr(utils.BigIntZero()),
		variableRes.UnwrapOr(utils.BigIntZero()),
	)

	outputSupply := e.reader.TotalSupply(ctx, market.OutputToken).UnwrapOr(utils.BigIntZero())
	scaledSupply := e.reader.ScaledTotalSupply(ctx, market.OutputToken).UnwrapOr(utils.BigIntZero())

	// Reads done; mutate.
	if priced {
		e.tokens.RefreshPrice(token, priceUSD, ev.BlockNumber)
		market.InputTokenPriceUSD = priceUSD
		market.OutputTokenPriceUSD = priceUSD
	}

	market.TotalBorrowBalanceUSD = utils.ToUnits(totalDebt, token.Decimals).Mul(market.InputTokenPriceUSD)
	market.InputTokenBalance = outputSupply
	market.OutputTokenSupply = outputSupply
	market.TotalDepositBalanceUSD = utils.ToUnits(outputSupply, token.Decimals).Mul(market.InputTokenPriceUSD)
	market.TotalValueLockedUSD = market.TotalDepositBalanceUSD
	if scaledSupply.Sign() > 0 {
		market.ExchangeRate = decimal.NewFromBigInt(outputSupply, 0).
			Div(decimal.NewFromBigInt(scaledSupply, 0))
	}

	split := e.accrueRevenue(market, protocol, ev.LiquidityIndex, scaledSupply, token.Decimals, market.InputTokenPriceUSD, priced)

	e.replaceRates(market, ev)

	e.db.Put(store.Markets, market.ID, market)
	e.refreshProtocolTotals(protocol)
	e.db.Put(store.Protocols, protocol.ID, protocol)

	deltas := marketDeltas{
		SupplySideRevenueUSD:   split.SupplyUSD,
		ProtocolSideRevenueUSD: split.ProtocolUSD,
		TotalRevenueUSD:        split.GrossUSD,
	}
	e.snapshotMarket(ev.Meta, market, protocol, deltas)
	e.snapshotFinancials(ev.Meta, protocol, deltas)
	return nil
}

// replaceRates swaps in fresh interest-rate records converted from ray to
// percentage points. The previous records are left behind for any snapshot
// that froze them; the live ids simply point at new values.
func (e *Engine) replaceRates(market *schema.Market, ev events.ReserveDataUpdated) {
	rates := []*schema.InterestRate{
		{
			ID:   schema.InterestRateID(schema.RateSideLender, schema.RateTypeVariable, market.ID),
			Side: schema.RateSideLender,
			Type: schema.RateTypeVariable,
			Rate: utils.RayToPercent(ev.LiquidityRate),
		},
		{
			ID:   schema.InterestRateID(schema.RateSideBorrower, schema.RateTypeStable, market.ID),
			Side: schema.RateSideBorrower,
			Type: schema.RateTypeStable,
			Rate: utils.RayToPercent(ev.StableBorrowRate),
		},
		{
			ID:   schema.InterestRateID(schema.RateSideBorrower, schema.RateTypeVariable, market.ID),
			Side: schema.RateSideBorrower,
			Type: schema.RateTypeVariable,
			Rate: utils.RayToPercent(ev.VariableBorrowRate),
		},
	}

	ids := make([]string, 0, len(rates))
	for _, rate := range rates {
		e.db.Put(store.InterestRates, rate.ID, rate)
		ids = append(ids, rate.ID)
	}
	market.RateIDs = ids
}
