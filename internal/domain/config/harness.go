package config

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// StorageDialect selects the JSON-RPC namespace of the dev node cheat methods
type StorageDialect string

const (
	DialectHardhat StorageDialect = "hardhat"
	DialectAnvil   StorageDialect = "anvil"
)

// HarnessConfig is the content of chefkit.toml
type HarnessConfig struct {
	RPCEndpoints map[string]string `toml:"rpc_endpoints"`
	Chain        ChainConfig       `toml:"chain"`
	Contracts    ContractsConfig   `toml:"contracts"`
	Fixtures     FixturesConfig    `toml:"fixtures"`
	Signers      SignersConfig     `toml:"signers"`
	Fork         ForkConfig        `toml:"fork"`
}

// ChainConfig holds dev node interaction settings
type ChainConfig struct {
	Dialect    StorageDialect `toml:"dialect" default:"hardhat" validate:"oneof=hardhat anvil"`
	GasPrice   int64          `toml:"gas_price" default:"100000000" validate:"gt=0"`
	ProbeBound uint64         `toml:"probe_bound" default:"100" validate:"gt=0"`
	// FundingAmount is the human-readable underlying amount given to the test adapter
	FundingAmount string `toml:"funding_amount" default:"200" validate:"numeric"`
}

// GasPriceWei returns the legacy gas price override
func (c ChainConfig) GasPriceWei() *big.Int {
	return big.NewInt(c.GasPrice)
}

// ContractsConfig holds the protocol addresses and artifact location
type ContractsConfig struct {
	MasterChef  string `toml:"masterchef" default:"0x99fa011E33A8c6196869DeC7Bc407E896BA67fE3" validate:"eth_addr"`
	Router      string `toml:"router" default:"0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F" validate:"eth_addr"`
	RewardToken string `toml:"reward_token" default:"0x6B3595068778DD592e39A122f4f5a5cF09C90fE2" validate:"eth_addr"`

	ArtifactsDir string `toml:"artifacts_dir" default:"artifacts" validate:"required"`

	OraclePriceTimeout     uint64 `toml:"oracle_price_timeout" default:"86400"`
	OracleChainlinkTimeout uint64 `toml:"oracle_chainlink_timeout" default:"86400"`

	// ExtraRewardTokens maps a pool id to the extra reward token used instead of rewarder.rewardToken()
	ExtraRewardTokens map[string]string `toml:"extra_reward_tokens" default:"{\"0\":\"0xdBdb4d16EdA451D0503b854CF79D55697F90c8DF\"}" validate:"dive,eth_addr"`
}

// MasterChefAddress returns the MasterChefV2 address
func (c ContractsConfig) MasterChefAddress() common.Address {
	return common.HexToAddress(c.MasterChef)
}

// RouterAddress returns the swap router address
func (c ContractsConfig) RouterAddress() common.Address {
	return common.HexToAddress(c.Router)
}

// RewardTokenAddress returns the primary reward token address
func (c ContractsConfig) RewardTokenAddress() common.Address {
	return common.HexToAddress(c.RewardToken)
}

// ExtraRewardTokenAddresses converts the overrides to addresses
func (c ContractsConfig) ExtraRewardTokenAddresses() map[string]common.Address {
	out := make(map[string]common.Address, len(c.ExtraRewardTokens))
	for pid, addr := range c.ExtraRewardTokens {
		out[pid] = common.HexToAddress(addr)
	}
	return out
}

// FixturesConfig locates the pool and token fixture files
type FixturesConfig struct {
	Pools  string `toml:"pools" default:"helpers/poolsV2.json" validate:"required"`
	Tokens string `toml:"tokens" default:"helpers/tokens.json"`
}

// SignersConfig holds the harness account keys.
// The defaults are the first well-known anvil/hardhat development keys.
type SignersConfig struct {
	Admin    string `toml:"admin" default:"0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80" validate:"required"`
	Owner    string `toml:"owner" default:"0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d" validate:"required"`
	Deployer string `toml:"deployer" default:"0x5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a" validate:"required"`
	Alice    string `toml:"alice" default:"0x7c852118294e51e653712a81e05800f419141751be58f605c371e15141b007a6" validate:"required"`

	// Operator is impersonated rather than signed for
	Operator string `toml:"operator" default:"0x6bd60f089B6E8BA75c409a54CDea34AA511277f6" validate:"eth_addr"`
}

// ForkConfig describes the network a local anvil should fork
type ForkConfig struct {
	URL         string `toml:"url"`
	BlockNumber uint64 `toml:"block_number"`
	Port        string `toml:"port" default:"8545"`
}
