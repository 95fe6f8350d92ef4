package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

// DeployAdapter deploys the MasterChefV2 adapter and records it
type DeployAdapter struct {
	config   *config.RuntimeConfig
	chain    ChainController
	deployer ContractDeployer
	store    DeploymentStore
	progress ProgressSink
	log      *slog.Logger
}

// NewDeployAdapter creates a new adapter deployment use case
func NewDeployAdapter(cfg *config.RuntimeConfig, chain ChainController, deployer ContractDeployer, store DeploymentStore, progress ProgressSink, log *slog.Logger) *DeployAdapter {
	return &DeployAdapter{
		config:   cfg,
		chain:    chain,
		deployer: deployer,
		store:    store,
		progress: progress,
		log:      log.With("component", "DeployAdapter"),
	}
}

// DeployAdapterParams contains the constructor arguments and signer
type DeployAdapterParams struct {
	MasterChef common.Address
	Oracle     common.Address
	Signer     domain.SignerRole
}

// DeployAdapterResult contains the recorded deployment
type DeployAdapterResult struct {
	Deployment *domain.Deployment
}

// Execute deploys the adapter with (masterChef, oracle)
func (uc *DeployAdapter) Execute(ctx context.Context, params DeployAdapterParams) (*DeployAdapterResult, error) {
	if params.MasterChef == (common.Address{}) {
		return nil, fmt.Errorf("%w: masterchef", domain.ErrInvalidAddress)
	}
	if params.Oracle == (common.Address{}) {
		return nil, fmt.Errorf("%w: oracle", domain.ErrInvalidAddress)
	}
	if params.Signer == "" {
		params.Signer = domain.SignerDeployer
	}

	chainID, err := uc.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "deploy",
		Message: fmt.Sprintf("Deploying %s", domain.AdapterContractName),
		Spinner: true,
	})

	deployed, err := uc.deployer.Deploy(ctx, domain.AdapterContractName, params.Signer, params.MasterChef, params.Oracle)
	if err != nil {
		return nil, err
	}

	deployment := &domain.Deployment{
		Name:     deployed.Name,
		Address:  deployed.Address,
		TxHash:   deployed.TxHash,
		ChainID:  chainID.Uint64(),
		Deployer: deployed.From,
		Args: map[string]string{
			"masterChef": params.MasterChef.Hex(),
			"oracle":     params.Oracle.Hex(),
		},
		DeployedAt: time.Now().UTC(),
	}
	if uc.config.Network != nil {
		deployment.Network = uc.config.Network.Name
	}

	if err := uc.store.SaveDeployment(ctx, deployment); err != nil {
		return nil, fmt.Errorf("failed to record deployment: %w", err)
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "deploy",
		Message: fmt.Sprintf("Deployed %s", deployed.Name),
	})

	return &DeployAdapterResult{Deployment: deployment}, nil
}
