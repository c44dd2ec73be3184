// Package store defines the host-facing entity persistence boundary. The
// engine only ever loads and saves whole entities through the Store
// interface; storage layout, batching and durability belong to the host.
//
// Kind is the single source of truth for entity-collection names. Adding an
// entity is a one-line change here plus an entry in allKinds; the package
// panics at init when the two drift apart.
package store

import (
	"fmt"
	"strings"
)

// Kind names one entity collection. Treat values as immutable constants and
// use the package-level constants rather than constructing Kinds directly.
type Kind string

const (
	Tokens           Kind = "tokens"
	Markets          Kind = "markets"
	InterestRates    Kind = "interest_rates"
	Protocols        Kind = "protocols"
	Accounts         Kind = "accounts"
	ActorAccounts    Kind = "actor_accounts"
	ActiveAccounts   Kind = "active_accounts"
	Positions        Kind = "positions"
	PositionCounters Kind = "position_counters"

	Deposits   Kind = "deposits"
	Withdraws  Kind = "withdraws"
	Borrows    Kind = "borrows"
	Repays     Kind = "repays"
	Liquidates Kind = "liquidates"

	MarketDailySnapshots        Kind = "market_daily_snapshots"
	MarketHourlySnapshots       Kind = "market_hourly_snapshots"
	FinancialsDailySnapshots    Kind = "financials_daily_snapshots"
	UsageMetricsDailySnapshots  Kind = "usage_metrics_daily_snapshots"
	UsageMetricsHourlySnapshots Kind = "usage_metrics_hourly_snapshots"
)

var allKinds = []Kind{
	Tokens,
	Markets,
	InterestRates,
	Protocols,
	Accounts,
	ActorAccounts,
	ActiveAccounts,
	Positions,
	PositionCounters,
	Deposits,
	Withdraws,
	Borrows,
	Repays,
	Liquidates,
	MarketDailySnapshots,
	MarketHourlySnapshots,
	FinancialsDailySnapshots,
	UsageMetricsDailySnapshots,
	UsageMetricsHourlySnapshots,
}

var kindSet map[Kind]bool

func init() {
	kindSet = make(map[Kind]bool, len(allKinds))
	for _, k := range allKinds {
		if k == "" {
			panic("store: empty kind name in allKinds")
		}
		if strings.Contains(string(k), " ") {
			panic(fmt.Sprintf("store: kind name %q contains whitespace", k))
		}
		kindSet[k] = true
	}
}

// All returns every registered kind in declaration order.
func All() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is a registered kind.
func Valid(k Kind) bool { return kindSet[k] }

// FromString validates a raw collection name coming from a host boundary.
func FromString(s string) (Kind, error) {
	k := Kind(s)
	if !Valid(k) {
		return "", fmt.Errorf("store: unknown kind %q", s)
	}
	return k, nil
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }
