package onchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// TokenReader reads ERC20-shaped state from underlying, interest-bearing and
// debt token contracts. Implementations are host-supplied bindings; the
// engine never constructs calldata itself.
type TokenReader interface {
	TotalSupply(ctx context.Context, token common.Address) CallResult[*big.Int]

	// ScaledTotalSupply is the supply expressed independent of the current
	// interest index, used to compute economic growth between index updates.
	ScaledTotalSupply(ctx context.Context, token common.Address) CallResult[*big.Int]

	BalanceOf(ctx context.Context, token, account common.Address) CallResult[*big.Int]

	Symbol(ctx context.Context, token common.Address) CallResult[string]
	Name(ctx context.Context, token common.Address) CallResult[string]
	Decimals(ctx context.Context, token common.Address) CallResult[uint8]
}

// PriceProvider returns the current USD price for an asset, or unavailable.
// Price discovery (oracle fallback chains, DEX TWAPs) is the host's problem;
// the engine only distinguishes "priced" from "unpriced this tick".
type PriceProvider interface {
	PriceUSD(ctx context.Context, asset common.Address) CallResult[decimal.Decimal]
}
