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

// handleLiquidate books a collateral seizure against the liquidatee's
// lender position in the collateral market. The liquidator's profit is the
// penalty share of the seized value, priced at the collateral asset's
// current USD price.
func (e *Engine) handleLiquidate(ctx context.Context, ev events.Liquidate) error {
	market, err := e.market(ev.CollateralAsset, ev.Meta)
	if err != nil {
		return err
	}
	liquidateeID := schema.AddressID(ev.Liquidatee)
	if _, ok := e.openPosition(liquidateeID, market.ID, schema.SideLender); !ok {
		e.log.Warn("liquidation without open collateral position",
			zap.String("liquidatee", liquidateeID),
			zap.String("market", market.ID),
			zap.String("tx", ev.TxHash.Hex()),
		)
		return fmt.Errorf("%w: %s %s %s", ErrNoOpenPosition, liquidateeID, market.ID, schema.SideLender)
	}

	protocol := e.protocol()
	token := e.tokens.GetOrCreate(ctx, ev.CollateralAsset)
	liquidator := e.account(ev.Liquidator, protocol)
	liquidatee := e.account(ev.Liquidatee, protocol)

	// Unique liquidators are counted apart from unique users: an address
	// may already be a depositor when it first liquidates.
	actorID := schema.ActorAccountID(ev.Liquidator)
	if _, created := store.GetOrCreate(e.db, store.ActorAccounts, actorID, func() *schema.ActorAccount {
		return &schema.ActorAccount{ID: actorID}
	}); created {
		protocol.CumulativeUniqueLiquidators++
	}

	amountUSD := utils.ToUnits(ev.AmountSeized, token.Decimals).Mul(market.InputTokenPriceUSD)
	profitUSD := amountUSD.Mul(market.LiquidationPenalty).Div(decimal.NewFromInt(100))

	pos, err := e.applyBalanceChange(ev.Meta, liquidatee, market, protocol, schema.SideLender, new(big.Int).Neg(ev.AmountSeized), true)
	if err != nil {
		return err
	}

	rec := &schema.Liquidate{
		EventMeta:  eventMeta(ev.Meta, protocol.ID),
		Liquidator: liquidator.ID,
		Liquidatee: liquidatee.ID,
		Market:     market.ID,
		Position:   pos.ID,
		Asset:      token.ID,
		Amount:     ev.AmountSeized,
		AmountUSD:  amountUSD,
		ProfitUSD:  profitUSD,
	}
	e.db.Put(store.Liquidates, rec.ID, rec)

	liquidator.LiquidateCount++
	liquidatee.LiquidationCount++
	// Seized collateral leaves the deposit side right away; the next
	// reserve-data update re-derives the balances from contract reads.
	market.InputTokenBalance = new(big.Int).Sub(market.InputTokenBalance, ev.AmountSeized)
	market.TotalDepositBalanceUSD = market.TotalDepositBalanceUSD.Sub(amountUSD)
	market.TotalValueLockedUSD = market.TotalDepositBalanceUSD
	market.CumulativeLiquidateUSD = market.CumulativeLiquidateUSD.Add(amountUSD)
	protocol.CumulativeLiquidateUSD = protocol.CumulativeLiquidateUSD.Add(amountUSD)
	protocol.LiquidationCount++
	protocol.TransactionCount++

	e.db.Put(store.Accounts, liquidator.ID, liquidator)
	e.db.Put(store.Accounts, liquidatee.ID, liquidatee)
	e.db.Put(store.Markets, market.ID, market)
	e.refreshProtocolTotals(protocol)
	e.db.Put(store.Protocols, protocol.ID, protocol)

	e.snapshotUsage(ev.Meta, protocol, ev.Liquidator, txLiquidate)
	deltas := marketDeltas{LiquidateUSD: amountUSD}
	e.snapshotMarket(ev.Meta, market, protocol, deltas)
	e.snapshotFinancials(ev.Meta, protocol, deltas)
	return nil
}
