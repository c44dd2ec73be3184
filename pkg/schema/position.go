package schema

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PositionSide is the side of the balance sheet a position sits on.
type PositionSide string

const (
	SideLender   PositionSide = "LENDER"
	SideBorrower PositionSide = "BORROWER"
)

// Position is one account's ongoing stake in one market on one side. At most
// one position per (account, market, side) is open at any time. A position
// closes when its balance returns to exactly zero; closed positions are
// immutable history and a re-entry creates a brand-new record under the next
// sequence number.
type Position struct {
	ID      string       `json:"id"`
	Account string       `json:"account"`
	Market  string       `json:"market"`
	Side    PositionSide `json:"side"`

	Balance *big.Int `json:"balance"`

	DepositCount  int64 `json:"depositCount"`
	WithdrawCount int64 `json:"withdrawCount"`
	BorrowCount   int64 `json:"borrowCount"`
	RepayCount    int64 `json:"repayCount"`

	OpenBlockNumber uint64      `json:"blockNumberOpened"`
	OpenTimestamp   int64       `json:"timestampOpened"`
	OpenTxHash      common.Hash `json:"hashOpened"`

	// Closing stamps; IsOpen distinguishes an open position from one closed
	// in the same block it opened.
	IsOpen           bool        `json:"isOpen"`
	CloseBlockNumber uint64      `json:"blockNumberClosed"`
	CloseTimestamp   int64       `json:"timestampClosed"`
	CloseTxHash      common.Hash `json:"hashClosed"`
}

// PositionCounter persists the per-triple sequence number used to mint
// position ids. It only ever increments, so reopened positions always get a
// strictly larger sequence.
type PositionCounter struct {
	ID        string `json:"id"`
	NextCount int64  `json:"nextCount"`
}

// PositionCounterID identifies the sequence counter for a triple.
func PositionCounterID(accountID, marketID string, side PositionSide) string {
	return fmt.Sprintf("%s-%s-%s", accountID, marketID, side)
}

// PositionID appends the sequence number to the triple id.
func PositionID(accountID, marketID string, side PositionSide, count int64) string {
	return fmt.Sprintf("%s-%d", PositionCounterID(accountID, marketID, side), count)
}

// NewPosition opens a position at the given chain coordinates.
func NewPosition(id, accountID, marketID string, side PositionSide, blockNumber uint64, timestamp int64, txHash common.Hash) *Position {
	return &Position{
		ID:              id,
		Account:         accountID,
		Market:          marketID,
		Side:            side,
		Balance:         new(big.Int),
		IsOpen:          true,
		OpenBlockNumber: blockNumber,
		OpenTimestamp:   timestamp,
		OpenTxHash:      txHash,
	}
}
