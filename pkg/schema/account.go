package schema

import (
	"github.com/ethereum/go-ethereum/common"
)

// Account tracks one address's lifetime interaction counters and the set of
// markets it currently has enabled as collateral.
type Account struct {
	ID      string         `json:"id"`
	Address common.Address `json:"address"`

	DepositCount     int64 `json:"depositCount"`
	WithdrawCount    int64 `json:"withdrawCount"`
	BorrowCount      int64 `json:"borrowCount"`
	RepayCount       int64 `json:"repayCount"`
	LiquidateCount   int64 `json:"liquidateCount"`   // as liquidator
	LiquidationCount int64 `json:"liquidationCount"` // as liquidatee

	PositionCount       int64 `json:"positionCount"`
	OpenPositionCount   int64 `json:"openPositionCount"`
	ClosedPositionCount int64 `json:"closedPositionCount"`

	// EnabledCollateral holds market ids toggled on via
	// reserve-used-as-collateral events, in enable order.
	EnabledCollateral []string `json:"enabledCollateral"`
}

// NewAccount builds a fresh account record with zeroed counters.
func NewAccount(addr common.Address) *Account {
	return &Account{
		ID:      AddressID(addr),
		Address: addr,
	}
}

// EnableCollateral records a market as usable collateral for this account.
// Re-enabling an already-enabled market is a no-op.
func (a *Account) EnableCollateral(marketID string) {
	for _, id := range a.EnabledCollateral {
		if id == marketID {
			return
		}
	}
	a.EnabledCollateral = append(a.EnabledCollateral, marketID)
}

// DisableCollateral removes a market from the enabled-collateral set.
func (a *Account) DisableCollateral(marketID string) {
	for i, id := range a.EnabledCollateral {
		if id == marketID {
			a.EnabledCollateral = append(a.EnabledCollateral[:i], a.EnabledCollateral[i+1:]...)
			return
		}
	}
}

// ActorAccount counts unique liquidators separately from the protocol's
// unique-user counter. One record exists per address that has ever
// liquidated, regardless of any other activity.
type ActorAccount struct {
	ID string `json:"id"`
}

// ActorAccountID namespaces liquidator-actor records away from Account ids.
func ActorAccountID(addr common.Address) string {
	return "liquidator-" + AddressID(addr)
}

// ActiveAccount marks an address as active inside one usage-snapshot bucket.
// Its existence is the deduplication: the first event in a bucket creates it
// and increments the bucket's active-user counter, later events find it.
type ActiveAccount struct {
	ID string `json:"id"`
}

// ActiveAccountID builds the bucket-scoped activity marker id.
func ActiveAccountID(granularity string, addr common.Address, bucket int64) string {
	return SnapshotID(granularity+"-"+AddressID(addr), bucket)
}
