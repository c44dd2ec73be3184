// Package schema defines the derived-accounting entities maintained by the
// engine: tokens, markets, the protocol aggregate, accounts, positions,
// immutable event records, and time-bucketed snapshots.
//
// Conventions:
//   - Raw on-chain integers (token amounts, total supplies, ray-scaled
//     indices) are *big.Int and never rescaled in place.
//   - USD-denominated values, prices, fractions and percentages are
//     decimal.Decimal.
//   - Entity IDs are lower-case hex strings derived from addresses, tx
//     hashes and bucket numbers, so they round-trip unchanged through any
//     host store.
package schema

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// SecondsPerDay and SecondsPerHour convert block timestamps into snapshot
// bucket numbers. Buckets are identified by integer division, so a new
// bucket starts implicitly at the first event past the boundary.
const (
	SecondsPerDay  = 86400
	SecondsPerHour = 3600
)

// DayBucket returns the daily snapshot bucket for a block timestamp.
func DayBucket(timestamp int64) int64 { return timestamp / SecondsPerDay }

// HourBucket returns the hourly snapshot bucket for a block timestamp.
func HourBucket(timestamp int64) int64 { return timestamp / SecondsPerHour }

// AddressID normalizes an address into the canonical entity-id form.
func AddressID(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// EventID identifies an immutable event record by its log coordinates.
func EventID(txHash common.Hash, logIndex uint32) string {
	return fmt.Sprintf("%s-%d", strings.ToLower(txHash.Hex()), logIndex)
}

// SnapshotID suffixes an owner entity id with a bucket number.
func SnapshotID(ownerID string, bucket int64) string {
	return fmt.Sprintf("%s-%d", ownerID, bucket)
}
