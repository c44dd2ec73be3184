package schema

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// EventMeta carries the chain coordinates shared by every immutable event
// record.
type EventMeta struct {
	ID          string      `json:"id"`
	TxHash      common.Hash `json:"hash"`
	LogIndex    uint32      `json:"logIndex"`
	BlockNumber uint64      `json:"blockNumber"`
	Timestamp   int64       `json:"timestamp"`
	Protocol    string      `json:"protocol"`
}

// Deposit is the immutable record of one supply event.
type Deposit struct {
	EventMeta
	Account   string          `json:"account"`
	Market    string          `json:"market"`
	Position  string          `json:"position"`
	Asset     string          `json:"asset"`
	Amount    *big.Int        `json:"amount"`
	AmountUSD decimal.Decimal `json:"amountUSD"`
}

// Withdraw is the immutable record of one withdraw event.
type Withdraw struct {
	EventMeta
	Account   string          `json:"account"`
	Market    string          `json:"market"`
	Position  string          `json:"position"`
	Asset     string          `json:"asset"`
	Amount    *big.Int        `json:"amount"`
	AmountUSD decimal.Decimal `json:"amountUSD"`
}

// Borrow is the immutable record of one borrow event.
type Borrow struct {
	EventMeta
	Account   string          `json:"account"`
	Market    string          `json:"market"`
	Position  string          `json:"position"`
	Asset     string          `json:"asset"`
	Amount    *big.Int        `json:"amount"`
	AmountUSD decimal.Decimal `json:"amountUSD"`
}

// Repay is the immutable record of one repay event.
type Repay struct {
	EventMeta
	Account   string          `json:"account"`
	Market    string          `json:"market"`
	Position  string          `json:"position"`
	Asset     string          `json:"asset"`
	Amount    *big.Int        `json:"amount"`
	AmountUSD decimal.Decimal `json:"amountUSD"`
}

// Liquidate is the immutable record of one liquidation, linking both sides
// of the event and the liquidator's computed profit.
type Liquidate struct {
	EventMeta
	Liquidator string          `json:"liquidator"`
	Liquidatee string          `json:"liquidatee"`
	Market     string          `json:"market"` // collateral market
	Position   string          `json:"position"`
	Asset      string          `json:"asset"`
	Amount     *big.Int        `json:"amount"`
	AmountUSD  decimal.Decimal `json:"amountUSD"`
	ProfitUSD  decimal.Decimal `json:"profitUSD"`
}
