package engine

import (
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/messari/subgraphs-sub011/pkg/events"
	"github.com/messari/subgraphs-sub011/pkg/schema"
	"github.com/messari/subgraphs-sub011/pkg/store"
)

// openPosition returns the currently open position for a triple, if any.
// The latest minted sequence number is counter.NextCount-1; anything older
// is closed history.
func (e *Engine) openPosition(accountID, marketID string, side schema.PositionSide) (*schema.Position, bool) {
	counterID := schema.PositionCounterID(accountID, marketID, side)
	counter, ok := store.Get[*schema.PositionCounter](e.db, store.PositionCounters, counterID)
	if !ok || counter.NextCount == 0 {
		return nil, false
	}
	id := schema.PositionID(accountID, marketID, side, counter.NextCount-1)
	pos, ok := store.Get[*schema.Position](e.db, store.Positions, id)
	if !ok || !pos.IsOpen {
		return nil, false
	}
	return pos, true
}

// applyBalanceChange is the position-ledger state transition. It opens a
// position on first nonzero balance, applies the signed delta, and closes
// the position when the balance lands on exactly zero. Negative balances are
// not a modeled state: callers pass on-chain saturated amounts, and the
// ledger only watches for the zero crossing.
//
// requireOpen aborts (rather than opens) when the triple has no open
// position, which is how withdraw and repay detect phantom references.
func (e *Engine) applyBalanceChange(meta events.Meta, account *schema.Account, market *schema.Market, protocol *schema.Protocol, side schema.PositionSide, delta *big.Int, requireOpen bool) (*schema.Position, error) {
	pos, ok := e.openPosition(account.ID, market.ID, side)
	if !ok {
		if requireOpen {
			e.log.Warn("no open position for balance change",
				zap.String("account", account.ID),
				zap.String("market", market.ID),
				zap.String("side", string(side)),
				zap.String("tx", meta.TxHash.Hex()),
			)
			return nil, fmt.Errorf("%w: %s %s %s", ErrNoOpenPosition, account.ID, market.ID, side)
		}
		pos = e.mintPosition(meta, account, market, protocol, side)
	}

	pos.Balance = new(big.Int).Add(pos.Balance, delta)

	if pos.Balance.Sign() == 0 {
		pos.IsOpen = false
		pos.CloseBlockNumber = meta.BlockNumber
		pos.CloseTimestamp = meta.Timestamp
		pos.CloseTxHash = meta.TxHash

		account.OpenPositionCount--
		account.ClosedPositionCount++
		market.OpenPositionCount--
		market.ClosedPositionCount++
		protocol.OpenPositionCount--
	}

	e.db.Put(store.Positions, pos.ID, pos)
	return pos, nil
}

// mintPosition creates the next position for a triple under a strictly
// increasing sequence number and bumps the lifetime counters.
func (e *Engine) mintPosition(meta events.Meta, account *schema.Account, market *schema.Market, protocol *schema.Protocol, side schema.PositionSide) *schema.Position {
	counterID := schema.PositionCounterID(account.ID, market.ID, side)
	counter, _ := store.GetOrCreate(e.db, store.PositionCounters, counterID, func() *schema.PositionCounter {
		return &schema.PositionCounter{ID: counterID}
	})

	id := schema.PositionID(account.ID, market.ID, side, counter.NextCount)
	counter.NextCount++
	e.db.Put(store.PositionCounters, counter.ID, counter)

	pos := schema.NewPosition(id, account.ID, market.ID, side, meta.BlockNumber, meta.Timestamp, meta.TxHash)

	account.PositionCount++
	account.OpenPositionCount++
	market.PositionCount++
	market.OpenPositionCount++
	if side == schema.SideLender {
		market.LendingPositionCount++
	} else {
		market.BorrowingPositionCount++
	}
	protocol.CumulativePositionCount++
	protocol.OpenPositionCount++

	return pos
}
