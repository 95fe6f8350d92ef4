package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

// operatorFunding is the ether given to the impersonated operator for gas
var operatorFunding = new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))

// BootstrapHarness prepares a dev node for adapter scenarios: it deploys the
// oracle, the adapter and the test vault and takes a baseline snapshot
type BootstrapHarness struct {
	config   *config.RuntimeConfig
	chain    ChainController
	signers  SignerDirectory
	deployer ContractDeployer
	fixtures PoolFixtureLoader
	progress ProgressSink
	log      *slog.Logger
}

// NewBootstrapHarness creates a new harness bootstrapper
func NewBootstrapHarness(
	cfg *config.RuntimeConfig,
	chain ChainController,
	signers SignerDirectory,
	deployer ContractDeployer,
	fixtures PoolFixtureLoader,
	progress ProgressSink,
	log *slog.Logger,
) *BootstrapHarness {
	return &BootstrapHarness{
		config:   cfg,
		chain:    chain,
		signers:  signers,
		deployer: deployer,
		fixtures: fixtures,
		progress: progress,
		log:      log.With("component", "BootstrapHarness"),
	}
}

// Execute builds the harness context
func (uc *BootstrapHarness) Execute(ctx context.Context) (*domain.HarnessContext, error) {
	if uc.config.Harness == nil {
		return nil, fmt.Errorf("no harness configuration loaded")
	}
	contracts := uc.config.Harness.Contracts

	chainID, err := uc.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	signers, err := uc.signers.Signers()
	if err != nil {
		return nil, err
	}

	if err := uc.chain.Impersonate(ctx, signers.Operator); err != nil {
		return nil, fmt.Errorf("failed to impersonate operator: %w", err)
	}
	if err := uc.chain.SetNativeBalance(ctx, signers.Operator, operatorFunding); err != nil {
		return nil, fmt.Errorf("failed to fund operator: %w", err)
	}

	hc := &domain.HarnessContext{
		ChainID:           chainID,
		Signers:           signers,
		Router:            contracts.RouterAddress(),
		MasterChef:        contracts.MasterChefAddress(),
		RewardToken:       contracts.RewardTokenAddress(),
		ExtraRewardTokens: contracts.ExtraRewardTokenAddresses(),
	}

	oracle, err := uc.deploy(ctx, 1, domain.OracleContractName, domain.SignerOwner,
		new(big.Int).SetUint64(contracts.OraclePriceTimeout),
		new(big.Int).SetUint64(contracts.OracleChainlinkTimeout))
	if err != nil {
		return nil, err
	}
	hc.Oracle = oracle.Address

	adapter, err := uc.deploy(ctx, 2, domain.AdapterContractName, domain.SignerDeployer, hc.MasterChef, hc.Oracle)
	if err != nil {
		return nil, err
	}
	hc.Adapter = adapter.Address

	testAdapter, err := uc.deploy(ctx, 3, domain.TestAdapterContractName, domain.SignerDeployer)
	if err != nil {
		return nil, err
	}
	hc.TestAdapter = testAdapter.Address

	tokens, err := uc.fixtures.LoadTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load vault underlying tokens: %w", err)
	}
	hc.VaultUnderlyingTokens = tokens

	hc.BaselineSnapshot, err = uc.chain.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to take baseline snapshot: %w", err)
	}

	uc.log.Info("harness ready",
		"chain", chainID.String(), "adapter", hc.Adapter.Hex(), "testAdapter", hc.TestAdapter.Hex(), "snapshot", hc.BaselineSnapshot)
	return hc, nil
}

func (uc *BootstrapHarness) deploy(ctx context.Context, step int, name string, signer domain.SignerRole, args ...interface{}) (*domain.DeployedContract, error) {
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "bootstrap",
		Current: step,
		Total:   3,
		Message: fmt.Sprintf("Deploying %s", name),
		Spinner: true,
	})

	deployed, err := uc.deployer.Deploy(ctx, name, signer, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", name, err)
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "bootstrap",
		Current: step,
		Total:   3,
		Message: fmt.Sprintf("%s deployed at %s", name, deployed.Address.Hex()),
	})
	return deployed, nil
}

// Teardown reverts the chain to the baseline snapshot
func (uc *BootstrapHarness) Teardown(ctx context.Context, hc *domain.HarnessContext) error {
	if hc == nil || hc.BaselineSnapshot == "" {
		return nil
	}
	if err := uc.chain.Revert(ctx, hc.BaselineSnapshot); err != nil {
		return fmt.Errorf("failed to revert to baseline snapshot: %w", err)
	}
	return nil
}
