package usecase_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

var testSigners = domain.Signers{
	Admin:    common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
	Owner:    common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
	Deployer: common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
	Alice:    common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906"),
	Operator: common.HexToAddress("0x6bd60f089B6E8BA75c409a54CDea34AA511277f6"),
}

func harnessConfig(rewardToken common.Address) *config.RuntimeConfig {
	return &config.RuntimeConfig{
		Harness: &config.HarnessConfig{
			Chain: config.ChainConfig{
				Dialect:       config.DialectHardhat,
				GasPrice:      100000000,
				ProbeBound:    100,
				FundingAmount: "200",
			},
			Contracts: config.ContractsConfig{
				MasterChef:             testMasterChef.Hex(),
				Router:                 "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F",
				RewardToken:            rewardToken.Hex(),
				OraclePriceTimeout:     86400,
				OracleChainlinkTimeout: 3600,
				ExtraRewardTokens:      map[string]string{"0": "0xdBdb4d16EdA451D0503b854CF79D55697F90c8DF"},
			},
		},
	}
}

func newSignerMock() *MockSignerDirectory {
	signers := new(MockSignerDirectory)
	signers.On("Signers").Return(testSigners, nil)
	return signers
}

func TestBootstrapHarness(t *testing.T) {
	ctx := context.Background()
	reward := common.HexToAddress("0x6B3595068778DD592e39A122f4f5a5cF09C90fE2")
	tokens := domain.TokenList{"USDC": common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")}

	l := newSimulated(t)
	deployer := &fakeDeployer{}
	fixtures := new(MockPoolFixtures)
	fixtures.On("LoadTokens", ctx).Return(tokens, nil)
	progress := &MockProgressSink{}

	uc := usecase.NewBootstrapHarness(harnessConfig(reward), l, newSignerMock(), deployer, fixtures, progress, testLogger())
	hc, err := uc.Execute(ctx)
	require.NoError(t, err)

	require.Len(t, deployer.deployed, 3)
	oracle := deployer.deployed[0]
	assert.Equal(t, domain.OracleContractName, oracle.Name)
	assert.Equal(t, domain.SignerOwner, oracle.Signer)
	assert.Equal(t, []interface{}{big.NewInt(86400), big.NewInt(3600)}, oracle.Args)

	adapter := deployer.deployed[1]
	assert.Equal(t, domain.AdapterContractName, adapter.Name)
	assert.Equal(t, domain.SignerDeployer, adapter.Signer)
	assert.Equal(t, []interface{}{testMasterChef, hc.Oracle}, adapter.Args)

	testAdapter := deployer.deployed[2]
	assert.Equal(t, domain.TestAdapterContractName, testAdapter.Name)
	assert.Empty(t, testAdapter.Args)

	assert.Equal(t, int64(1337), hc.ChainID.Int64())
	assert.Equal(t, testSigners, hc.Signers)
	assert.Equal(t, testMasterChef, hc.MasterChef)
	assert.Equal(t, reward, hc.RewardToken)
	assert.Equal(t, common.HexToAddress("0xdBdb4d16EdA451D0503b854CF79D55697F90c8DF"), hc.ExtraRewardTokens["0"])
	assert.Equal(t, tokens, hc.VaultUnderlyingTokens)
	assert.NotEmpty(t, hc.BaselineSnapshot)
	assert.NotEqual(t, hc.Adapter, hc.TestAdapter)

	// one start and one done event per deployment
	assert.Len(t, progress.events, 6)
	fixtures.AssertExpectations(t)
}

func TestBootstrapHarness_TeardownRevertsToBaseline(t *testing.T) {
	ctx := context.Background()
	l := newSimulated(t)
	token := deployToken(t, l, 0, domain.ConventionKeyFirst, 18)

	fixtures := new(MockPoolFixtures)
	fixtures.On("LoadTokens", ctx).Return(domain.TokenList{}, nil)

	uc := usecase.NewBootstrapHarness(harnessConfig(token), l, newSignerMock(), &fakeDeployer{}, fixtures, &MockProgressSink{}, testLogger())
	hc, err := uc.Execute(ctx)
	require.NoError(t, err)

	holder := common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	require.NoError(t, l.Mint(ctx, token, holder, big.NewInt(500)))

	require.NoError(t, uc.Teardown(ctx, hc))

	balance, err := l.BalanceOf(ctx, token, holder)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Int64())

	// nothing to revert without a context
	assert.NoError(t, uc.Teardown(ctx, nil))
}

func TestBootstrapHarness_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no harness config", func(t *testing.T) {
		uc := usecase.NewBootstrapHarness(&config.RuntimeConfig{}, newSimulated(t), newSignerMock(), &fakeDeployer{}, new(MockPoolFixtures), &MockProgressSink{}, testLogger())
		_, err := uc.Execute(ctx)
		assert.Error(t, err)
	})

	t.Run("signer keys invalid", func(t *testing.T) {
		signers := new(MockSignerDirectory)
		signers.On("Signers").Return(domain.Signers{}, errors.New("signer admin: invalid private key"))

		uc := usecase.NewBootstrapHarness(harnessConfig(common.Address{}), newSimulated(t), signers, &fakeDeployer{}, new(MockPoolFixtures), &MockProgressSink{}, testLogger())
		_, err := uc.Execute(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "signer admin")
	})

	t.Run("deployment fails", func(t *testing.T) {
		deployer := &fakeDeployer{failOn: domain.AdapterContractName}
		uc := usecase.NewBootstrapHarness(harnessConfig(common.Address{}), newSimulated(t), newSignerMock(), deployer, new(MockPoolFixtures), &MockProgressSink{}, testLogger())

		_, err := uc.Execute(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTransactionReverted)
		assert.Contains(t, err.Error(), "failed to deploy "+domain.AdapterContractName)
		assert.Len(t, deployer.deployed, 1)
	})
}
