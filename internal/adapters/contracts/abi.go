package contracts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	erc20AbiString string = `[{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},{"inputs":[],"name":"symbol","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"}]`

	masterChefV2AbiString string = `[{"inputs":[{"internalType":"uint256","name":"","type":"uint256"},{"internalType":"address","name":"","type":"address"}],"name":"userInfo","outputs":[{"internalType":"uint256","name":"amount","type":"uint256"},{"internalType":"int256","name":"rewardDebt","type":"int256"}],"stateMutability":"view","type":"function"},{"inputs":[{"internalType":"uint256","name":"_pid","type":"uint256"},{"internalType":"address","name":"_user","type":"address"}],"name":"pendingSushi","outputs":[{"internalType":"uint256","name":"pending","type":"uint256"}],"stateMutability":"view","type":"function"},{"inputs":[{"internalType":"uint256","name":"","type":"uint256"}],"name":"rewarder","outputs":[{"internalType":"contract IRewarder","name":"","type":"address"}],"stateMutability":"view","type":"function"},{"inputs":[{"internalType":"uint256","name":"","type":"uint256"}],"name":"lpToken","outputs":[{"internalType":"contract IERC20","name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

	rewarderAbiString string = `[{"inputs":[],"name":"rewardToken","outputs":[{"internalType":"contract IERC20","name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

	adapterAbiString string = `[{"inputs":[{"internalType":"address payable","name":"_vault","type":"address"},{"internalType":"address","name":"_underlyingToken","type":"address"},{"internalType":"address","name":"_liquidityPool","type":"address"}],"name":"getLiquidityPoolTokenBalance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},{"inputs":[{"internalType":"address payable","name":"_vault","type":"address"},{"internalType":"address","name":"_underlyingToken","type":"address"},{"internalType":"address","name":"_liquidityPool","type":"address"}],"name":"getAllAmountInToken","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},{"inputs":[{"internalType":"address","name":"_liquidityPool","type":"address"}],"name":"getRewardToken","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},{"inputs":[{"internalType":"address payable","name":"_vault","type":"address"},{"internalType":"address","name":"_liquidityPool","type":"address"},{"internalType":"address","name":"_underlyingToken","type":"address"}],"name":"getUnclaimedRewardTokenAmount","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

	testDeFiAdapterAbiString string = `[{"inputs":[{"internalType":"address","name":"_underlyingToken","type":"address"}],"name":"setUnderlyingToken","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"components":[{"internalType":"address","name":"pool","type":"address"},{"internalType":"address","name":"outputToken","type":"address"},{"internalType":"bool","name":"isBorrow","type":"bool"}],"internalType":"struct DataTypes.StrategyStep","name":"_strategyStep","type":"tuple"}],"name":"setInvestStrategySteps","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"internalType":"address","name":"_underlyingToken","type":"address"},{"internalType":"address","name":"_liquidityPool","type":"address"},{"internalType":"address","name":"_adapter","type":"address"}],"name":"testGetDepositAllCodes","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"internalType":"address","name":"_liquidityPool","type":"address"},{"internalType":"address","name":"_adapter","type":"address"}],"name":"testClaimRewardTokenCode","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"internalType":"address","name":"_liquidityPool","type":"address"},{"internalType":"address","name":"_underlyingToken","type":"address"},{"internalType":"address","name":"_adapter","type":"address"}],"name":"testGetHarvestAllCodes","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"internalType":"address","name":"_underlyingToken","type":"address"},{"internalType":"address","name":"_liquidityPool","type":"address"},{"internalType":"address","name":"_adapter","type":"address"}],"name":"testGetWithdrawAllCodes","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"internalType":"address","name":"_token","type":"address"},{"internalType":"address","name":"_account","type":"address"}],"name":"getERC20TokenBalance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`
)

// parsedABI parses an ABI string once
type parsedABI struct {
	name   string
	source string
	once   sync.Once
	abi    abi.ABI
	err    error
}

func (p *parsedABI) get() (abi.ABI, error) {
	p.once.Do(func() {
		p.abi, p.err = abi.JSON(strings.NewReader(p.source))
		if p.err != nil {
			p.err = fmt.Errorf("error parsing %s ABI: %w", p.name, p.err)
		}
	})
	return p.abi, p.err
}

func (p *parsedABI) mustGet() abi.ABI {
	parsed, err := p.get()
	if err != nil {
		panic(err)
	}
	return parsed
}

// ABI cache
var (
	erc20ABI           = &parsedABI{name: "ERC20", source: erc20AbiString}
	masterChefV2ABI    = &parsedABI{name: "MasterChefV2", source: masterChefV2AbiString}
	rewarderABI        = &parsedABI{name: "IRewarder", source: rewarderAbiString}
	adapterABI         = &parsedABI{name: "SushiswapMasterChefV2Adapter", source: adapterAbiString}
	testDeFiAdapterABI = &parsedABI{name: "TestDeFiAdapter", source: testDeFiAdapterAbiString}
)

// ERC20ABI returns the parsed ERC20 subset used by chefkit
func ERC20ABI() (abi.ABI, error) {
	return erc20ABI.get()
}
