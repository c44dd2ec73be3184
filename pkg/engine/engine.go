// Package engine is the accounting core: it turns finalized lending-pool
// events into consistent market ledgers, protocol aggregates, account
// positions and time-bucketed snapshots.
//
// Execution is single-threaded by contract with the host: one event is in
// flight at a time, handlers perform their reads before any write, and a
// guarded early return commits nothing. There are no retries; a failed
// event is terminal and visible only through the logs and the returned
// error.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/messari/subgraphs-sub011/pkg/config"
	"github.com/messari/subgraphs-sub011/pkg/events"
	"github.com/messari/subgraphs-sub011/pkg/logging"
	"github.com/messari/subgraphs-sub011/pkg/onchain"
	"github.com/messari/subgraphs-sub011/pkg/schema"
	"github.com/messari/subgraphs-sub011/pkg/store"
	"github.com/messari/subgraphs-sub011/pkg/tokens"
)

var (
	// ErrUnhandledEvent is returned for event types the engine does not
	// know; the host decides whether that is a wiring bug or ignorable.
	ErrUnhandledEvent = errors.New("engine: unhandled event type")

	// ErrMarketNotFound is the missing-entity abort: a market must be
	// initialized before any event can reference it.
	ErrMarketNotFound = errors.New("engine: market not found")

	// ErrNoOpenPosition aborts withdraw and repay handlers that reference
	// a (account, market, side) triple with no open position.
	ErrNoOpenPosition = errors.New("engine: no open position")

	// ErrDebtSuppliesUnavailable is the fatal-for-this-event condition of a
	// reserve-data update whose stable and variable debt supplies both
	// reverted: no trustworthy borrow total exists.
	ErrDebtSuppliesUnavailable = errors.New("engine: both debt token supply reads reverted")
)

// Engine holds the collaborator handles one deployment's handlers share.
// All mutable state lives in the store; the engine itself is stateless
// between events.
type Engine struct {
	log    *zap.Logger
	db     store.Store
	reader onchain.TokenReader
	oracle onchain.PriceProvider
	tokens *tokens.Registry
	cfg    config.Deployment
}

// New wires an engine for one deployment.
func New(log *zap.Logger, db store.Store, reader onchain.TokenReader, oracle onchain.PriceProvider, cfg config.Deployment) *Engine {
	log = logging.ForDeployment(log, cfg.ProtocolSlug, cfg.Network)
	return &Engine{
		log:    log,
		db:     db,
		reader: reader,
		oracle: oracle,
		tokens: tokens.NewRegistry(log, db, reader),
		cfg:    cfg,
	}
}

// HandleEvent dispatches one finalized event to its handler. Handler errors
// are logged with the event coordinates before being returned; the same
// event is never redelivered.
func (e *Engine) HandleEvent(ctx context.Context, ev events.Event) error {
	var err error
	switch ev := ev.(type) {
	case events.ReserveInitialized:
		err = e.handleReserveInitialized(ctx, ev)
	case events.ReserveDataUpdated:
		err = e.handleReserveDataUpdated(ctx, ev)
	case events.Deposit:
		err = e.handleDeposit(ctx, ev)
	case events.Withdraw:
		err = e.handleWithdraw(ctx, ev)
	case events.Borrow:
		err = e.handleBorrow(ctx, ev)
	case events.Repay:
		err = e.handleRepay(ctx, ev)
	case events.Liquidate:
		err = e.handleLiquidate(ctx, ev)
	case events.CollateralConfigurationChanged:
		err = e.handleCollateralConfiguration(ev)
	case events.BorrowingChanged:
		err = e.handleBorrowingChanged(ev)
	case events.ReserveActivationChanged:
		err = e.handleReserveActivation(ev)
	case events.ReserveFactorChanged:
		err = e.handleReserveFactorChanged(ev)
	case events.CollateralUsageChanged:
		err = e.handleCollateralUsageChanged(ev)
	case events.Paused:
		err = e.handlePaused(ev)
	case events.Unpaused:
		err = e.handleUnpaused(ev)
	case events.PriceOracleUpdated:
		err = e.handlePriceOracleUpdated(ev)
	default:
		err = fmt.Errorf("%w: %T", ErrUnhandledEvent, ev)
	}
	if err != nil {
		meta := ev.EventMeta()
		e.log.Error("event handler failed",
			zap.Uint64("block", meta.BlockNumber),
			zap.String("tx", meta.TxHash.Hex()),
			zap.Uint32("logIndex", meta.LogIndex),
			zap.Error(err),
		)
	}
	return err
}

// protocol loads or creates the singleton aggregate for this deployment.
func (e *Engine) protocol() *schema.Protocol {
	id := schema.AddressID(e.cfg.LendingPool)
	p, created := store.GetOrCreate(e.db, store.Protocols, id, func() *schema.Protocol {
		proto := schema.NewProtocol(id, e.cfg.ProtocolName, e.cfg.ProtocolSlug, e.cfg.SchemaVersion, e.cfg.Network)
		proto.PriceOracle = schema.AddressID(e.cfg.PriceOracle)
		return proto
	})
	if created {
		e.log.Info("protocol aggregate created", zap.String("protocol", id))
	}
	return p
}

// market resolves an existing market by underlying asset. Absence is a
// warning-level abort for the calling handler.
func (e *Engine) market(asset common.Address, meta events.Meta) (*schema.Market, error) {
	id := schema.AddressID(asset)
	m, ok := store.Get[*schema.Market](e.db, store.Markets, id)
	if !ok {
		e.log.Warn("market not found",
			zap.String("market", id),
			zap.Uint64("block", meta.BlockNumber),
			zap.String("tx", meta.TxHash.Hex()),
		)
		return nil, fmt.Errorf("%w: %s", ErrMarketNotFound, id)
	}
	return m, nil
}

// account loads or creates an account, counting first-time addresses toward
// the protocol's unique-user total.
func (e *Engine) account(addr common.Address, protocol *schema.Protocol) *schema.Account {
	acc, created := store.GetOrCreate(e.db, store.Accounts, schema.AddressID(addr), func() *schema.Account {
		return schema.NewAccount(addr)
	})
	if created {
		protocol.CumulativeUniqueUsers++
	}
	return acc
}
