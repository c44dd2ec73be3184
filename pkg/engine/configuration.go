package engine

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/messari/subgraphs-sub011/pkg/events"
	"github.com/messari/subgraphs-sub011/pkg/schema"
	"github.com/messari/subgraphs-sub011/pkg/store"
)

var bpsPerPercent = decimal.NewFromInt(100)

var bpsDenominator = decimal.NewFromInt(10000)

// handleCollateralConfiguration converts the raw basis-point risk
// parameters into their stored units. LTV and liquidation threshold become
// percentage points. The liquidation bonus arrives as 10000 plus the
// penalty in basis points, so the stored penalty is the excess over 10000;
// a bonus below that floor clamps to zero rather than going negative.
func (e *Engine) handleCollateralConfiguration(ev events.CollateralConfigurationChanged) error {
	market, err := e.market(ev.Asset, ev.Meta)
	if err != nil {
		return err
	}

	market.MaximumLTV = decimal.NewFromUint64(ev.LTV).Div(bpsPerPercent)
	market.LiquidationThreshold = decimal.NewFromUint64(ev.LiquidationThreshold).Div(bpsPerPercent)
	if ev.LiquidationBonus > 10000 {
		market.LiquidationPenalty = decimal.NewFromUint64(ev.LiquidationBonus - 10000).Div(bpsPerPercent)
	} else {
		market.LiquidationPenalty = decimal.Zero
	}
	market.CanUseAsCollateral = ev.LiquidationThreshold > 0

	e.db.Put(store.Markets, market.ID, market)
	return nil
}

func (e *Engine) handleBorrowingChanged(ev events.BorrowingChanged) error {
	market, err := e.market(ev.Asset, ev.Meta)
	if err != nil {
		return err
	}
	market.CanBorrowFrom = ev.Enabled
	e.db.Put(store.Markets, market.ID, market)
	return nil
}

func (e *Engine) handleReserveActivation(ev events.ReserveActivationChanged) error {
	market, err := e.market(ev.Asset, ev.Meta)
	if err != nil {
		return err
	}
	market.IsActive = ev.Active
	e.db.Put(store.Markets, market.ID, market)
	return nil
}

// handleReserveFactorChanged stores the protocol's interest share as a
// canonical fraction. The basis points are divided here, exactly once; the
// accrual path only ever multiplies by the stored value.
func (e *Engine) handleReserveFactorChanged(ev events.ReserveFactorChanged) error {
	market, err := e.market(ev.Asset, ev.Meta)
	if err != nil {
		return err
	}
	market.ReserveFactor = decimal.NewFromUint64(ev.ReserveFactor).Div(bpsDenominator)
	e.db.Put(store.Markets, market.ID, market)
	return nil
}

// handleCollateralUsageChanged toggles one market in an account's
// enabled-collateral set. The account is created if needed but does not
// count toward unique users; only balance-changing transactions do.
func (e *Engine) handleCollateralUsageChanged(ev events.CollateralUsageChanged) error {
	market, err := e.market(ev.Asset, ev.Meta)
	if err != nil {
		return err
	}
	account, _ := store.GetOrCreate(e.db, store.Accounts, schema.AddressID(ev.Account), func() *schema.Account {
		return schema.NewAccount(ev.Account)
	})
	if ev.Enabled {
		account.EnableCollateral(market.ID)
	} else {
		account.DisableCollateral(market.ID)
	}
	e.db.Put(store.Accounts, account.ID, account)
	return nil
}

// handlePaused captures every market's availability flags and then zeroes
// them. The capture makes the matching unpause a verbatim restore instead of
// a guess at prior state.
func (e *Engine) handlePaused(ev events.Paused) error {
	protocol := e.protocol()
	for _, id := range protocol.MarketIDs {
		market, ok := store.Get[*schema.Market](e.db, store.Markets, id)
		if !ok {
			e.log.Warn("registered market missing during pause", zap.String("market", id))
			continue
		}
		market.PrePauseState = [3]bool{market.IsActive, market.CanUseAsCollateral, market.CanBorrowFrom}
		market.IsActive = false
		market.CanUseAsCollateral = false
		market.CanBorrowFrom = false
		e.db.Put(store.Markets, market.ID, market)
	}
	return nil
}

// handleUnpaused restores the flag state captured at pause time.
func (e *Engine) handleUnpaused(ev events.Unpaused) error {
	protocol := e.protocol()
	for _, id := range protocol.MarketIDs {
		market, ok := store.Get[*schema.Market](e.db, store.Markets, id)
		if !ok {
			e.log.Warn("registered market missing during unpause", zap.String("market", id))
			continue
		}
		market.IsActive = market.PrePauseState[0]
		market.CanUseAsCollateral = market.PrePauseState[1]
		market.CanBorrowFrom = market.PrePauseState[2]
		e.db.Put(store.Markets, market.ID, market)
	}
	return nil
}

func (e *Engine) handlePriceOracleUpdated(ev events.PriceOracleUpdated) error {
	protocol := e.protocol()
	protocol.PriceOracle = schema.AddressID(ev.Oracle)
	e.db.Put(store.Protocols, protocol.ID, protocol)
	return nil
}
