package usecase

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

// ListDeploymentsParams contains parameters for listing deployments
type ListDeploymentsParams struct {
	ContractName string
	// AllChains lists records from every chain instead of the current network's
	AllChains bool
}

// DeploymentListResult contains the filtered records
type DeploymentListResult struct {
	Deployments []*domain.Deployment
	ByChain     map[uint64]int
}

// ListDeployments is the use case for listing recorded deployments
type ListDeployments struct {
	config *config.RuntimeConfig
	store  DeploymentStore
	sink   ProgressSink
}

// NewListDeployments creates a new ListDeployments use case
func NewListDeployments(cfg *config.RuntimeConfig, store DeploymentStore, sink ProgressSink) *ListDeployments {
	return &ListDeployments{
		config: cfg,
		store:  store,
		sink:   sink,
	}
}

// Run executes the list deployments use case
func (uc *ListDeployments) Run(ctx context.Context, params ListDeploymentsParams) (*DeploymentListResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "loading",
		Message: "Loading deployments",
		Spinner: true,
	})

	deployments, err := uc.store.ListDeployments(ctx)
	if err != nil {
		return nil, err
	}

	chainID := uint64(0)
	if !params.AllChains && uc.config.Network != nil {
		chainID = uc.config.Network.ChainID
	}

	filtered := lo.Filter(deployments, func(d *domain.Deployment, _ int) bool {
		if chainID != 0 && d.ChainID != chainID {
			return false
		}
		if params.ContractName != "" && !strings.EqualFold(d.Name, params.ContractName) {
			return false
		}
		return true
	})

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(filtered),
		Total:   len(deployments),
	})

	return &DeploymentListResult{
		Deployments: filtered,
		ByChain: lo.CountValuesBy(filtered, func(d *domain.Deployment) uint64 {
			return d.ChainID
		}),
	}, nil
}
