package domain

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// PoolItem is a MasterChef pool fixture entry
type PoolItem struct {
	Pool         common.Address   `json:"pool" yaml:"pool"`
	LPToken      common.Address   `json:"lpToken" yaml:"lpToken"`
	StakingVault *common.Address  `json:"stakingVault,omitempty" yaml:"stakingVault,omitempty"`
	RewardTokens []common.Address `json:"rewardTokens,omitempty" yaml:"rewardTokens,omitempty"`
	Tokens       []common.Address `json:"tokens" yaml:"tokens"`
	Swap         *common.Address  `json:"swap,omitempty" yaml:"swap,omitempty"`
	Deprecated   bool             `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	PID          string           `json:"pid,omitempty" yaml:"pid,omitempty"`
}

// UnderlyingToken returns the token deposited into the pool
func (p *PoolItem) UnderlyingToken() (common.Address, error) {
	if len(p.Tokens) == 0 {
		return common.Address{}, fmt.Errorf("pool %s has no tokens", p.Pool.Hex())
	}
	return p.Tokens[0], nil
}

// PoolID parses the MasterChef pool id. A missing pid means pool 0.
func (p *PoolItem) PoolID() (*big.Int, error) {
	if p.PID == "" {
		return new(big.Int), nil
	}
	pid, ok := new(big.Int).SetString(p.PID, 0)
	if !ok || pid.Sign() < 0 {
		return nil, fmt.Errorf("invalid pid %q", p.PID)
	}
	return pid, nil
}

// LiquidityPools maps a fixture name to its pool
type LiquidityPools map[string]*PoolItem

// Names returns the fixture names in sorted order
func (l LiquidityPools) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TokenList maps a token symbol to its address
type TokenList map[string]common.Address

// Contains reports whether addr is one of the listed tokens
func (t TokenList) Contains(addr common.Address) bool {
	for _, a := range t {
		if a == addr {
			return true
		}
	}
	return false
}
