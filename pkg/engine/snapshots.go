package engine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/messari/subgraphs-sub011/pkg/events"
	"github.com/messari/subgraphs-sub011/pkg/schema"
	"github.com/messari/subgraphs-sub011/pkg/store"
)

// marketDeltas is one event's contribution to the current snapshot buckets.
// Cumulative state is copied from the live entities; only these deltas are
// bucket-local.
type marketDeltas struct {
	DepositUSD             decimal.Decimal
	WithdrawUSD            decimal.Decimal
	BorrowUSD              decimal.Decimal
	RepayUSD               decimal.Decimal
	LiquidateUSD           decimal.Decimal
	SupplySideRevenueUSD   decimal.Decimal
	ProtocolSideRevenueUSD decimal.Decimal
	TotalRevenueUSD        decimal.Decimal
}

// txKind selects which usage counters an event bumps.
type txKind int

const (
	txDeposit txKind = iota
	txWithdraw
	txBorrow
	txRepay
	txLiquidate
)

// snapshotMarket lazily creates the market's daily and hourly buckets,
// refreshes their carried-forward cumulative fields from the live market,
// and accumulates the event's deltas. Bucket rollover is implicit: a new
// bucket id simply creates a fresh record with zeroed deltas.
func (e *Engine) snapshotMarket(meta events.Meta, market *schema.Market, protocol *schema.Protocol, d marketDeltas) {
	day := schema.DayBucket(meta.Timestamp)
	daily, _ := store.GetOrCreate(e.db, store.MarketDailySnapshots, schema.SnapshotID(market.ID, day), func() *schema.MarketDailySnapshot {
		return &schema.MarketDailySnapshot{
			ID:       schema.SnapshotID(market.ID, day),
			Market:   market.ID,
			Protocol: protocol.ID,
			Day:      day,
		}
	})
	daily.BlockNumber = meta.BlockNumber
	daily.Timestamp = meta.Timestamp
	daily.TotalValueLockedUSD = market.TotalValueLockedUSD
	daily.TotalDepositBalanceUSD = market.TotalDepositBalanceUSD
	daily.TotalBorrowBalanceUSD = market.TotalBorrowBalanceUSD
	daily.InputTokenBalance = market.InputTokenBalance
	daily.InputTokenPriceUSD = market.InputTokenPriceUSD
	daily.OutputTokenSupply = market.OutputTokenSupply
	daily.ExchangeRate = market.ExchangeRate
	daily.CumulativeDepositUSD = market.CumulativeDepositUSD
	daily.CumulativeBorrowUSD = market.CumulativeBorrowUSD
	daily.CumulativeLiquidateUSD = market.CumulativeLiquidateUSD
	daily.CumulativeSupplySideRevenueUSD = market.CumulativeSupplySideRevenueUSD
	daily.CumulativeProtocolSideRevenueUSD = market.CumulativeProtocolSideRevenueUSD
	daily.CumulativeTotalRevenueUSD = market.CumulativeTotalRevenueUSD
	daily.DailyDepositUSD = daily.DailyDepositUSD.Add(d.DepositUSD)
	daily.DailyWithdrawUSD = daily.DailyWithdrawUSD.Add(d.WithdrawUSD)
	daily.DailyBorrowUSD = daily.DailyBorrowUSD.Add(d.BorrowUSD)
	daily.DailyRepayUSD = daily.DailyRepayUSD.Add(d.RepayUSD)
	daily.DailyLiquidateUSD = daily.DailyLiquidateUSD.Add(d.LiquidateUSD)
	daily.DailySupplySideRevenueUSD = daily.DailySupplySideRevenueUSD.Add(d.SupplySideRevenueUSD)
	daily.DailyProtocolSideRevenueUSD = daily.DailyProtocolSideRevenueUSD.Add(d.ProtocolSideRevenueUSD)
	daily.DailyTotalRevenueUSD = daily.DailyTotalRevenueUSD.Add(d.TotalRevenueUSD)
	daily.RateIDs = e.freezeRates(market, day)
	e.db.Put(store.MarketDailySnapshots, daily.ID, daily)

	hour := schema.HourBucket(meta.Timestamp)
	hourly, _ := store.GetOrCreate(e.db, store.MarketHourlySnapshots, schema.SnapshotID(market.ID, hour), func() *schema.MarketHourlySnapshot {
		return &schema.MarketHourlySnapshot{
			ID:       schema.SnapshotID(market.ID, hour),
			Market:   market.ID,
			Protocol: protocol.ID,
			Hour:     hour,
		}
	})
	hourly.BlockNumber = meta.BlockNumber
	hourly.Timestamp = meta.Timestamp
	hourly.TotalValueLockedUSD = market.TotalValueLockedUSD
	hourly.TotalDepositBalanceUSD = market.TotalDepositBalanceUSD
	hourly.TotalBorrowBalanceUSD = market.TotalBorrowBalanceUSD
	hourly.InputTokenBalance = market.InputTokenBalance
	hourly.InputTokenPriceUSD = market.InputTokenPriceUSD
	hourly.OutputTokenSupply = market.OutputTokenSupply
	hourly.ExchangeRate = market.ExchangeRate
	hourly.CumulativeDepositUSD = market.CumulativeDepositUSD
	hourly.CumulativeBorrowUSD = market.CumulativeBorrowUSD
	hourly.CumulativeLiquidateUSD = market.CumulativeLiquidateUSD
	hourly.CumulativeSupplySideRevenueUSD = market.CumulativeSupplySideRevenueUSD
	hourly.CumulativeProtocolSideRevenueUSD = market.CumulativeProtocolSideRevenueUSD
	hourly.CumulativeTotalRevenueUSD = market.CumulativeTotalRevenueUSD
	hourly.HourlyDepositUSD = hourly.HourlyDepositUSD.Add(d.DepositUSD)
	hourly.HourlyWithdrawUSD = hourly.HourlyWithdrawUSD.Add(d.WithdrawUSD)
	hourly.HourlyBorrowUSD = hourly.HourlyBorrowUSD.Add(d.BorrowUSD)
	hourly.HourlyRepayUSD = hourly.HourlyRepayUSD.Add(d.RepayUSD)
	hourly.HourlyLiquidateUSD = hourly.HourlyLiquidateUSD.Add(d.LiquidateUSD)
	hourly.HourlySupplySideRevenueUSD = hourly.HourlySupplySideRevenueUSD.Add(d.SupplySideRevenueUSD)
	hourly.HourlyProtocolSideRevenueUSD = hourly.HourlyProtocolSideRevenueUSD.Add(d.ProtocolSideRevenueUSD)
	hourly.HourlyTotalRevenueUSD = hourly.HourlyTotalRevenueUSD.Add(d.TotalRevenueUSD)
	hourly.RateIDs = e.freezeRates(market, hour)
	e.db.Put(store.MarketHourlySnapshots, hourly.ID, hourly)
}

// freezeRates copies the market's live interest-rate records under
// bucket-suffixed ids so later rate replacements cannot rewrite history.
func (e *Engine) freezeRates(market *schema.Market, bucket int64) []string {
	ids := make([]string, 0, len(market.RateIDs))
	for _, liveID := range market.RateIDs {
		live, ok := store.Get[*schema.InterestRate](e.db, store.InterestRates, liveID)
		if !ok {
			continue
		}
		frozen := &schema.InterestRate{
			ID:   fmt.Sprintf("%s-%d", live.ID, bucket),
			Side: live.Side,
			Type: live.Type,
			Rate: live.Rate,
		}
		e.db.Put(store.InterestRates, frozen.ID, frozen)
		ids = append(ids, frozen.ID)
	}
	return ids
}

// snapshotFinancials maintains the protocol-wide daily financial bucket.
func (e *Engine) snapshotFinancials(meta events.Meta, protocol *schema.Protocol, d marketDeltas) {
	day := schema.DayBucket(meta.Timestamp)
	snap, _ := store.GetOrCreate(e.db, store.FinancialsDailySnapshots, schema.SnapshotID(protocol.ID, day), func() *schema.FinancialsDailySnapshot {
		return &schema.FinancialsDailySnapshot{
			ID:       schema.SnapshotID(protocol.ID, day),
			Protocol: protocol.ID,
			Day:      day,
		}
	})
	snap.BlockNumber = meta.BlockNumber
	snap.Timestamp = meta.Timestamp
	snap.TotalValueLockedUSD = protocol.TotalValueLockedUSD
	snap.TotalDepositBalanceUSD = protocol.TotalDepositBalanceUSD
	snap.TotalBorrowBalanceUSD = protocol.TotalBorrowBalanceUSD
	snap.CumulativeDepositUSD = protocol.CumulativeDepositUSD
	snap.CumulativeBorrowUSD = protocol.CumulativeBorrowUSD
	snap.CumulativeLiquidateUSD = protocol.CumulativeLiquidateUSD
	snap.CumulativeSupplySideRevenueUSD = protocol.CumulativeSupplySideRevenueUSD
	snap.CumulativeProtocolSideRevenueUSD = protocol.CumulativeProtocolSideRevenueUSD
	snap.CumulativeTotalRevenueUSD = protocol.CumulativeTotalRevenueUSD
	snap.DailyDepositUSD = snap.DailyDepositUSD.Add(d.DepositUSD)
	snap.DailyWithdrawUSD = snap.DailyWithdrawUSD.Add(d.WithdrawUSD)
	snap.DailyBorrowUSD = snap.DailyBorrowUSD.Add(d.BorrowUSD)
	snap.DailyRepayUSD = snap.DailyRepayUSD.Add(d.RepayUSD)
	snap.DailyLiquidateUSD = snap.DailyLiquidateUSD.Add(d.LiquidateUSD)
	snap.DailySupplySideRevenueUSD = snap.DailySupplySideRevenueUSD.Add(d.SupplySideRevenueUSD)
	snap.DailyProtocolSideRevenueUSD = snap.DailyProtocolSideRevenueUSD.Add(d.ProtocolSideRevenueUSD)
	snap.DailyTotalRevenueUSD = snap.DailyTotalRevenueUSD.Add(d.TotalRevenueUSD)
	e.db.Put(store.FinancialsDailySnapshots, snap.ID, snap)
}

// snapshotUsage bumps the transaction and active-user counters in the
// current daily and hourly usage buckets. Active users are deduplicated by
// bucket-scoped marker entities: the first event a user sends inside a
// bucket creates the marker and counts them, every later event finds it.
func (e *Engine) snapshotUsage(meta events.Meta, protocol *schema.Protocol, user common.Address, kind txKind) {
	day := schema.DayBucket(meta.Timestamp)
	daily, _ := store.GetOrCreate(e.db, store.UsageMetricsDailySnapshots, schema.SnapshotID(protocol.ID, day), func() *schema.UsageMetricsDailySnapshot {
		return &schema.UsageMetricsDailySnapshot{
			ID:       schema.SnapshotID(protocol.ID, day),
			Protocol: protocol.ID,
			Day:      day,
		}
	})
	daily.BlockNumber = meta.BlockNumber
	daily.Timestamp = meta.Timestamp
	daily.CumulativeUniqueUsers = protocol.CumulativeUniqueUsers
	daily.TotalPoolCount = protocol.TotalPoolCount
	daily.DailyTransactionCount++
	switch kind {
	case txDeposit:
		daily.DailyDepositCount++
	case txWithdraw:
		daily.DailyWithdrawCount++
	case txBorrow:
		daily.DailyBorrowCount++
	case txRepay:
		daily.DailyRepayCount++
	case txLiquidate:
		daily.DailyLiquidateCount++
	}
	dailyMarkerID := schema.ActiveAccountID("daily", user, day)
	if _, created := store.GetOrCreate(e.db, store.ActiveAccounts, dailyMarkerID, func() *schema.ActiveAccount {
		return &schema.ActiveAccount{ID: dailyMarkerID}
	}); created {
		daily.DailyActiveUsers++
	}
	e.db.Put(store.UsageMetricsDailySnapshots, daily.ID, daily)

	hour := schema.HourBucket(meta.Timestamp)
	hourly, _ := store.GetOrCreate(e.db, store.UsageMetricsHourlySnapshots, schema.SnapshotID(protocol.ID, hour), func() *schema.UsageMetricsHourlySnapshot {
		return &schema.UsageMetricsHourlySnapshot{
			ID:       schema.SnapshotID(protocol.ID, hour),
			Protocol: protocol.ID,
			Hour:     hour,
		}
	})
	hourly.BlockNumber = meta.BlockNumber
	hourly.Timestamp = meta.Timestamp
	hourly.CumulativeUniqueUsers = protocol.CumulativeUniqueUsers
	hourly.HourlyTransactionCount++
	switch kind {
	case txDeposit:
		hourly.HourlyDepositCount++
	case txWithdraw:
		hourly.HourlyWithdrawCount++
	case txBorrow:
		hourly.HourlyBorrowCount++
	case txRepay:
		hourly.HourlyRepayCount++
	case txLiquidate:
		hourly.HourlyLiquidateCount++
	}
	hourlyMarkerID := schema.ActiveAccountID("hourly", user, hour)
	if _, created := store.GetOrCreate(e.db, store.ActiveAccounts, hourlyMarkerID, func() *schema.ActiveAccount {
		return &schema.ActiveAccount{ID: hourlyMarkerID}
	}); created {
		hourly.HourlyActiveUsers++
	}
	e.db.Put(store.UsageMetricsHourlySnapshots, hourly.ID, hourly)
}
