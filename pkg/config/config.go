// Package config carries the per-deployment identity and address wiring.
// Forks of the same protocol differ only in this data, never in handler
// logic, so one binary can index any fork.
package config

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/messari/subgraphs-sub011/pkg/utils"
)

// Deployment identifies one protocol fork on one network and the addresses
// the engine needs to key its singleton records.
type Deployment struct {
	// Protocol identity, e.g. "Aave v2" / "aave-v2" / "ethereum".
	ProtocolName  string `json:"protocolName"`
	ProtocolSlug  string `json:"protocolSlug"`
	Network       string `json:"network"`
	SchemaVersion string `json:"schemaVersion"`

	// LendingPool is the pool contract address; its id keys the singleton
	// Protocol aggregate.
	LendingPool common.Address `json:"lendingPool"`

	// PriceOracle is the initial oracle address; price-oracle-update events
	// replace it at runtime.
	PriceOracle common.Address `json:"priceOracle"`

	// OracleDecimals is the fixed-point scale of getAssetPrice readings.
	OracleDecimals int32 `json:"oracleDecimals"`

	// RPCURL points at the archive node serving contract reads.
	RPCURL string `json:"rpcUrl"`
}

// FromEnv builds a deployment from environment variables, host-style.
// Addresses are hex-decoded leniently; an unset address stays zero.
func FromEnv() Deployment {
	return Deployment{
		ProtocolName:  utils.Env("PROTOCOL_NAME", "Aave v2"),
		ProtocolSlug:  utils.Env("PROTOCOL_SLUG", "aave-v2"),
		Network:       utils.Env("NETWORK", "mainnet"),
		SchemaVersion: utils.Env("SCHEMA_VERSION", "2.0.1"),
		LendingPool:   common.HexToAddress(utils.Env("LENDING_POOL_ADDRESS", "")),
		PriceOracle:   common.HexToAddress(utils.Env("PRICE_ORACLE_ADDRESS", "")),

		OracleDecimals: int32(utils.EnvInt("ORACLE_DECIMALS", 8)),
		RPCURL:         utils.Env("RPC_URL", "http://localhost:8545"),
	}
}
