package engine

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/messari/subgraphs-sub011/pkg/events"
	"github.com/messari/subgraphs-sub011/pkg/schema"
	"github.com/messari/subgraphs-sub011/pkg/store"
	"github.com/messari/subgraphs-sub011/pkg/utils"
)

// eventMeta stamps an immutable event record with its log coordinates.
func eventMeta(meta events.Meta, protocolID string) schema.EventMeta {
	return schema.EventMeta{
		ID:          schema.EventID(meta.TxHash, meta.LogIndex),
		TxHash:      meta.TxHash,
		LogIndex:    meta.LogIndex,
		BlockNumber: meta.BlockNumber,
		Timestamp:   meta.Timestamp,
		Protocol:    protocolID,
	}
}

// handleDeposit applies a supply event: lender position, immutable record,
// cumulative deposit volume, and the usage and market snapshots.
func (e *Engine) handleDeposit(ctx context.Context, ev events.Deposit) error {
	market, err := e.market(ev.Asset, ev.Meta)
	if err != nil {
		return err
	}
	protocol := e.protocol()
	token := e.tokens.GetOrCreate(ctx, ev.Asset)
	account := e.account(ev.Account, protocol)
	amountUSD := utils.ToUnits(ev.Amount, token.Decimals).Mul(market.InputTokenPriceUSD)

	pos, err := e.applyBalanceChange(ev.Meta, account, market, protocol, schema.SideLender, ev.Amount, false)
	if err != nil {
		return err
	}
	pos.DepositCount++
	e.db.Put(store.Positions, pos.ID, pos)
	account.DepositCount++

	rec := &schema.Deposit{
		EventMeta: eventMeta(ev.Meta, protocol.ID),
		Account:   account.ID,
		Market:    market.ID,
		Position:  pos.ID,
		Asset:     token.ID,
		Amount:    ev.Amount,
		AmountUSD: amountUSD,
	}
	e.db.Put(store.Deposits, rec.ID, rec)

	// Move the running balances immediately; the next reserve-data update
	// re-derives them from contract reads and is authoritative.
	market.InputTokenBalance = new(big.Int).Add(market.InputTokenBalance, ev.Amount)
	market.TotalDepositBalanceUSD = market.TotalDepositBalanceUSD.Add(amountUSD)
	market.TotalValueLockedUSD = market.TotalDepositBalanceUSD
	market.CumulativeDepositUSD = market.CumulativeDepositUSD.Add(amountUSD)
	protocol.CumulativeDepositUSD = protocol.CumulativeDepositUSD.Add(amountUSD)
	protocol.DepositCount++
	protocol.TransactionCount++

	e.db.Put(store.Accounts, account.ID, account)
	e.db.Put(store.Markets, market.ID, market)
	e.refreshProtocolTotals(protocol)
	e.db.Put(store.Protocols, protocol.ID, protocol)

	e.snapshotUsage(ev.Meta, protocol, ev.Account, txDeposit)
	deltas := marketDeltas{DepositUSD: amountUSD}
	e.snapshotMarket(ev.Meta, market, protocol, deltas)
	e.snapshotFinancials(ev.Meta, protocol, deltas)
	return nil
}

// handleWithdraw applies a redemption. A withdraw against a triple with no
// open lender position is a phantom reference and aborts before any entity
// is created or mutated. Withdraw volume shows up only in the snapshot
// deltas; cumulative deposit volume is deposits-only.
func (e *Engine) handleWithdraw(ctx context.Context, ev events.Withdraw) error {
	market, err := e.market(ev.Asset, ev.Meta)
	if err != nil {
		return err
	}
	accountID := schema.AddressID(ev.Account)
	if _, ok := e.openPosition(accountID, market.ID, schema.SideLender); !ok {
		e.log.Warn("withdraw without open lender position",
			zap.String("account", accountID),
			zap.String("market", market.ID),
			zap.String("tx", ev.TxHash.Hex()),
		)
		return fmt.Errorf("%w: %s %s %s", ErrNoOpenPosition, accountID, market.ID, schema.SideLender)
	}

	protocol := e.protocol()
	token := e.tokens.GetOrCreate(ctx, ev.Asset)
	account := e.account(ev.Account, protocol)
	amountUSD := utils.ToUnits(ev.Amount, token.Decimals).Mul(market.InputTokenPriceUSD)

	pos, err := e.applyBalanceChange(ev.Meta, account, market, protocol, schema.SideLender, new(big.Int).Neg(ev.Amount), true)
	if err != nil {
		return err
	}
	pos.WithdrawCount++
	e.db.Put(store.Positions, pos.ID, pos)
	account.WithdrawCount++

	rec := &schema.Withdraw{
		EventMeta: eventMeta(ev.Meta, protocol.ID),
		Account:   account.ID,
		Market:    market.ID,
		Position:  pos.ID,
		Asset:     token.ID,
		Amount:    ev.Amount,
		AmountUSD: amountUSD,
	}
	e.db.Put(store.Withdraws, rec.ID, rec)

	market.InputTokenBalance = new(big.Int).Sub(market.InputTokenBalance, ev.Amount)
	market.TotalDepositBalanceUSD = market.TotalDepositBalanceUSD.Sub(amountUSD)
	market.TotalValueLockedUSD = market.TotalDepositBalanceUSD
	protocol.WithdrawCount++
	protocol.TransactionCount++

	e.db.Put(store.Accounts, account.ID, account)
	e.db.Put(store.Markets, market.ID, market)
	e.refreshProtocolTotals(protocol)
	e.db.Put(store.Protocols, protocol.ID, protocol)

	e.snapshotUsage(ev.Meta, protocol, ev.Account, txWithdraw)
	deltas := marketDeltas{WithdrawUSD: amountUSD}
	e.snapshotMarket(ev.Meta, market, protocol, deltas)
	e.snapshotFinancials(ev.Meta, protocol, deltas)
	return nil
}

// handleBorrow applies a debt drawdown against the borrower side.
func (e *Engine) handleBorrow(ctx context.Context, ev events.Borrow) error {
	market, err := e.market(ev.Asset, ev.Meta)
	if err != nil {
		return err
	}
	protocol := e.protocol()
	token := e.tokens.GetOrCreate(ctx, ev.Asset)
	account := e.account(ev.Account, protocol)
	amountUSD := utils.ToUnits(ev.Amount, token.Decimals).Mul(market.InputTokenPriceUSD)

	pos, err := e.applyBalanceChange(ev.Meta, account, market, protocol, schema.SideBorrower, ev.Amount, false)
	if err != nil {
		return err
	}
	pos.BorrowCount++
	e.db.Put(store.Positions, pos.ID, pos)
	account.BorrowCount++

	rec := &schema.Borrow{
		EventMeta: eventMeta(ev.Meta, protocol.ID),
		Account:   account.ID,
		Market:    market.ID,
		Position:  pos.ID,
		Asset:     token.ID,
		Amount:    ev.Amount,
		AmountUSD: amountUSD,
	}
	e.db.Put(store.Borrows, rec.ID, rec)

	// Debt balance moves now; the input-token balance tracks the interest
	// bearing supply and is untouched by drawdowns.
	market.TotalBorrowBalanceUSD = market.TotalBorrowBalanceUSD.Add(amountUSD)
	market.CumulativeBorrowUSD = market.CumulativeBorrowUSD.Add(amountUSD)
	protocol.CumulativeBorrowUSD = protocol.CumulativeBorrowUSD.Add(amountUSD)
	protocol.BorrowCount++
	protocol.TransactionCount++

	e.db.Put(store.Accounts, account.ID, account)
	e.db.Put(store.Markets, market.ID, market)
	e.refreshProtocolTotals(protocol)
	e.db.Put(store.Protocols, protocol.ID, protocol)

	e.snapshotUsage(ev.Meta, protocol, ev.Account, txBorrow)
	deltas := marketDeltas{BorrowUSD: amountUSD}
	e.snapshotMarket(ev.Meta, market, protocol, deltas)
	e.snapshotFinancials(ev.Meta, protocol, deltas)
	return nil
}

// handleRepay applies a debt paydown. Like withdraw it aborts on a phantom
// position reference before any write.
func (e *Engine) handleRepay(ctx context.Context, ev events.Repay) error {
	market, err := e.market(ev.Asset, ev.Meta)
	if err != nil {
		return err
	}
	accountID := schema.AddressID(ev.Account)
	if _, ok := e.openPosition(accountID, market.ID, schema.SideBorrower); !ok {
		e.log.Warn("repay without open borrower position",
			zap.String("account", accountID),
			zap.String("market", market.ID),
			zap.String("tx", ev.TxHash.Hex()),
		)
		return fmt.Errorf("%w: %s %s %s", ErrNoOpenPosition, accountID, market.ID, schema.SideBorrower)
	}

	protocol := e.protocol()
	token := e.tokens.GetOrCreate(ctx, ev.Asset)
	account := e.account(ev.Account, protocol)
	amountUSD := utils.ToUnits(ev.Amount, token.Decimals).Mul(market.InputTokenPriceUSD)

	pos, err := e.applyBalanceChange(ev.Meta, account, market, protocol, schema.SideBorrower, new(big.Int).Neg(ev.Amount), true)
	if err != nil {
		return err
	}
	pos.RepayCount++
	e.db.Put(store.Positions, pos.ID, pos)
	account.RepayCount++

	rec := &schema.Repay{
		EventMeta: eventMeta(ev.Meta, protocol.ID),
		Account:   account.ID,
		Market:    market.ID,
		Position:  pos.ID,
		Asset:     token.ID,
		Amount:    ev.Amount,
		AmountUSD: amountUSD,
	}
	e.db.Put(store.Repays, rec.ID, rec)

	market.TotalBorrowBalanceUSD = market.TotalBorrowBalanceUSD.Sub(amountUSD)
	protocol.RepayCount++
	protocol.TransactionCount++

	e.db.Put(store.Accounts, account.ID, account)
	e.db.Put(store.Markets, market.ID, market)
	e.refreshProtocolTotals(protocol)
	e.db.Put(store.Protocols, protocol.ID, protocol)

	e.snapshotUsage(ev.Meta, protocol, ev.Account, txRepay)
	deltas := marketDeltas{RepayUSD: amountUSD}
	e.snapshotMarket(ev.Meta, market, protocol, deltas)
	e.snapshotFinancials(ev.Meta, protocol, deltas)
	return nil
}
