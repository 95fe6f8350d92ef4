package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Contract names of the compiled artifacts the harness deploys
const (
	AdapterContractName     = "SushiswapMasterChefV2AdapterEthereum"
	OracleContractName      = "OptyFiOracle"
	TestAdapterContractName = "TestDeFiAdapter"
)

// SignerRole names an account used by the harness
type SignerRole string

const (
	SignerAdmin    SignerRole = "admin"
	SignerOwner    SignerRole = "owner"
	SignerDeployer SignerRole = "deployer"
	SignerAlice    SignerRole = "alice"
	SignerOperator SignerRole = "operator"
)

// Signers holds the addresses of the harness accounts
type Signers struct {
	Admin    common.Address `json:"admin"`
	Owner    common.Address `json:"owner"`
	Deployer common.Address `json:"deployer"`
	Alice    common.Address `json:"alice"`
	Operator common.Address `json:"operator"`
}

// HarnessContext is the state shared by every scenario of one harness run.
// It is created by bootstrapping and discarded on teardown.
type HarnessContext struct {
	ChainID     *big.Int       `json:"chainId"`
	Signers     Signers        `json:"signers"`
	Router      common.Address `json:"router"`
	MasterChef  common.Address `json:"masterChef"`
	RewardToken common.Address `json:"rewardToken"`
	Oracle      common.Address `json:"oracle"`
	Adapter     common.Address `json:"adapter"`
	TestAdapter common.Address `json:"testAdapter"`

	// ExtraRewardTokens overrides rewarder.rewardToken() per pool id
	ExtraRewardTokens map[string]common.Address `json:"extraRewardTokens,omitempty"`

	// VaultUnderlyingTokens gates the harvest step
	VaultUnderlyingTokens TokenList `json:"vaultUnderlyingTokens,omitempty"`

	BaselineSnapshot string `json:"baselineSnapshot"`
}

// Deployment records a contract deployed through chefkit
type Deployment struct {
	Name       string            `json:"name"`
	Address    common.Address    `json:"address"`
	TxHash     common.Hash       `json:"txHash"`
	ChainID    uint64            `json:"chainId"`
	Network    string            `json:"network"`
	Deployer   common.Address    `json:"deployer"`
	Args       map[string]string `json:"args,omitempty"`
	DeployedAt time.Time         `json:"deployedAt"`
}

// DeployedContract is the raw result of a contract creation
type DeployedContract struct {
	Name    string
	Address common.Address
	TxHash  common.Hash
	From    common.Address
}
