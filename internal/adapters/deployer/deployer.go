package deployer

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/chefkit/internal/adapters/artifacts"
	"github.com/trebuchet-org/chefkit/internal/adapters/rpcclient"
	"github.com/trebuchet-org/chefkit/internal/adapters/signers"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// Deployer deploys hardhat artifacts with a harness signer
type Deployer struct {
	client   *rpcclient.Client
	keyring  *signers.Keyring
	loader   *artifacts.Loader
	gasPrice *big.Int
	log      *slog.Logger
}

// NewDeployer creates a new artifact deployer
func NewDeployer(client *rpcclient.Client, keyring *signers.Keyring, loader *artifacts.Loader, cfg *config.RuntimeConfig, log *slog.Logger) *Deployer {
	d := &Deployer{
		client:  client,
		keyring: keyring,
		loader:  loader,
		log:     log.With("component", "deployer"),
	}
	if cfg.Harness != nil {
		d.gasPrice = cfg.Harness.Chain.GasPriceWei()
	}
	return d
}

// Deploy deploys the named artifact and waits for it to be mined
func (d *Deployer) Deploy(ctx context.Context, name string, signer domain.SignerRole, args ...interface{}) (*domain.DeployedContract, error) {
	artifact, err := d.loader.Load(name)
	if err != nil {
		return nil, err
	}
	if len(artifact.Bytecode) == 0 {
		return nil, fmt.Errorf("artifact %s has no creation bytecode (abstract or interface?)", artifact.ContractName)
	}

	eth, err := d.client.Eth()
	if err != nil {
		return nil, err
	}
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	opts, err := d.keyring.TransactOpts(ctx, signer, chainID)
	if err != nil {
		return nil, err
	}
	opts.GasPrice = d.gasPrice

	d.log.Debug("deploying", "contract", artifact.ContractName, "signer", signer, "from", opts.From.Hex())

	_, tx, _, err := bind.DeployContract(opts, artifact.ABI, artifact.Bytecode, eth, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", artifact.ContractName, err)
	}

	receipt, err := bind.WaitMined(ctx, eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s deployment: %w", artifact.ContractName, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("deployment of %s (tx %s): %w", artifact.ContractName, tx.Hash().Hex(), domain.ErrTransactionReverted)
	}

	d.log.Info("deployed", "contract", artifact.ContractName, "address", receipt.ContractAddress.Hex())

	return &domain.DeployedContract{
		Name:    artifact.ContractName,
		Address: receipt.ContractAddress,
		TxHash:  tx.Hash(),
		From:    opts.From,
	}, nil
}

var _ usecase.ContractDeployer = (*Deployer)(nil)
