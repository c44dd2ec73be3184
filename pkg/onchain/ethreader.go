package onchain

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/messari/subgraphs-sub011/pkg/retry"
)

// tokenABIJSON covers the read surface shared by underlying, interest-bearing
// and debt tokens. scaledTotalSupply only exists on the interest-bearing
// variants; calling it elsewhere reverts, which the caller already handles.
const tokenABIJSON = `[
  {"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"constant":true,"inputs":[],"name":"scaledTotalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
  {"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
  {"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

const oracleABIJSON = `[
  {"constant":true,"inputs":[{"name":"asset","type":"address"}],"name":"getAssetPrice","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

var (
	tokenABI  abi.ABI
	oracleABI abi.ABI
)

func init() {
	var err error
	if tokenABI, err = abi.JSON(strings.NewReader(tokenABIJSON)); err != nil {
		panic("onchain: token ABI: " + err.Error())
	}
	if oracleABI, err = abi.JSON(strings.NewReader(oracleABIJSON)); err != nil {
		panic("onchain: oracle ABI: " + err.Error())
	}
}

// EthReader implements TokenReader over an eth_call connection. Transient
// node failures are retried with backoff; a revert or an exhausted retry
// budget both surface as a reverted CallResult, since either way no
// trustworthy value exists for this event.
type EthReader struct {
	log     *zap.Logger
	client  *ethclient.Client
	backoff retry.Config
}

// NewEthReader wires a reader against a dialed client.
func NewEthReader(log *zap.Logger, client *ethclient.Client) *EthReader {
	return &EthReader{
		log:     log,
		client:  client,
		backoff: retry.ReadConfig(),
	}
}

// call packs, executes and returns the raw returndata of one view call.
func (r *EthReader) call(ctx context.Context, contract abi.ABI, to common.Address, method string, args ...any) ([]byte, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	msg := ethereum.CallMsg{To: &to, Data: data}

	var out []byte
	err = retry.Do(ctx, r.backoff, r.log, method, func() error {
		var callErr error
		out, callErr = r.client.CallContract(ctx, msg, nil)
		if callErr != nil && strings.Contains(callErr.Error(), "execution reverted") {
			return retry.Permanent(callErr)
		}
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// bigIntCall runs a uint256-returning method and maps failure to a revert.
func (r *EthReader) bigIntCall(ctx context.Context, to common.Address, method string, args ...any) CallResult[*big.Int] {
	out, err := r.call(ctx, tokenABI, to, method, args...)
	if err != nil || len(out) == 0 {
		return Revert[*big.Int]()
	}
	vals, err := tokenABI.Unpack(method, out)
	if err != nil || len(vals) != 1 {
		return Revert[*big.Int]()
	}
	v, ok := vals[0].(*big.Int)
	if !ok {
		return Revert[*big.Int]()
	}
	return Value(v)
}

func (r *EthReader) TotalSupply(ctx context.Context, token common.Address) CallResult[*big.Int] {
	return r.bigIntCall(ctx, token, "totalSupply")
}

func (r *EthReader) ScaledTotalSupply(ctx context.Context, token common.Address) CallResult[*big.Int] {
	return r.bigIntCall(ctx, token, "scaledTotalSupply")
}

func (r *EthReader) BalanceOf(ctx context.Context, token, account common.Address) CallResult[*big.Int] {
	return r.bigIntCall(ctx, token, "balanceOf", account)
}

func (r *EthReader) Symbol(ctx context.Context, token common.Address) CallResult[string] {
	return r.stringCall(ctx, token, "symbol")
}

func (r *EthReader) Name(ctx context.Context, token common.Address) CallResult[string] {
	return r.stringCall(ctx, token, "name")
}

// stringCall tolerates the pre-standard tokens that declare symbol and name
// as bytes32: unpacking fails, the result reads as reverted, and the token
// registry substitutes its placeholder metadata.
func (r *EthReader) stringCall(ctx context.Context, to common.Address, method string) CallResult[string] {
	out, err := r.call(ctx, tokenABI, to, method)
	if err != nil || len(out) == 0 {
		return Revert[string]()
	}
	vals, err := tokenABI.Unpack(method, out)
	if err != nil || len(vals) != 1 {
		return Revert[string]()
	}
	s, ok := vals[0].(string)
	if !ok {
		return Revert[string]()
	}
	return Value(s)
}

func (r *EthReader) Decimals(ctx context.Context, token common.Address) CallResult[uint8] {
	out, err := r.call(ctx, tokenABI, token, "decimals")
	if err != nil || len(out) == 0 {
		return Revert[uint8]()
	}
	vals, err := tokenABI.Unpack("decimals", out)
	if err != nil || len(vals) != 1 {
		return Revert[uint8]()
	}
	d, ok := vals[0].(uint8)
	if !ok {
		return Revert[uint8]()
	}
	return Value(d)
}

// EthOracle implements PriceProvider against a price-oracle contract's
// getAssetPrice view. Prices arrive as integers in the oracle's base unit;
// baseDecimals converts them to USD.
type EthOracle struct {
	log          *zap.Logger
	client       *ethclient.Client
	oracle       common.Address
	baseDecimals int32
	backoff      retry.Config
}

// NewEthOracle wires a price provider against one oracle contract.
func NewEthOracle(log *zap.Logger, client *ethclient.Client, oracle common.Address, baseDecimals int32) *EthOracle {
	return &EthOracle{
		log:          log,
		client:       client,
		oracle:       oracle,
		baseDecimals: baseDecimals,
		backoff:      retry.ReadConfig(),
	}
}

func (o *EthOracle) PriceUSD(ctx context.Context, asset common.Address) CallResult[decimal.Decimal] {
	data, err := oracleABI.Pack("getAssetPrice", asset)
	if err != nil {
		return Revert[decimal.Decimal]()
	}
	msg := ethereum.CallMsg{To: &o.oracle, Data: data}

	var out []byte
	err = retry.Do(ctx, o.backoff, o.log, "getAssetPrice", func() error {
		var callErr error
		out, callErr = o.client.CallContract(ctx, msg, nil)
		if callErr != nil && strings.Contains(callErr.Error(), "execution reverted") {
			return retry.Permanent(callErr)
		}
		return callErr
	})
	if err != nil || len(out) == 0 {
		return Revert[decimal.Decimal]()
	}

	vals, err := oracleABI.Unpack("getAssetPrice", out)
	if err != nil || len(vals) != 1 {
		return Revert[decimal.Decimal]()
	}
	raw, ok := vals[0].(*big.Int)
	if !ok || raw.Sign() == 0 {
		// A zero price is the oracle's own "unknown asset" sentinel.
		return Revert[decimal.Decimal]()
	}
	return Value(decimal.NewFromBigInt(raw, -o.baseDecimals))
}
