package signers

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

func devConfig() *config.RuntimeConfig {
	return &config.RuntimeConfig{
		Harness: &config.HarnessConfig{
			Signers: config.SignersConfig{
				Admin:    "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
				Owner:    "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
				Deployer: "5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
				Alice:    "0x7c852118294e51e653712a81e05800f419141751be58f605c371e15141b007a6",
				Operator: "0x6bd60f089B6E8BA75c409a54CDea34AA511277f6",
			},
		},
	}
}

func TestKeyring_Addresses(t *testing.T) {
	k, err := NewKeyring(devConfig())
	require.NoError(t, err)

	signers, err := k.Signers()
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), signers.Admin)
	assert.Equal(t, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), signers.Owner)
	assert.Equal(t, common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"), signers.Deployer)
	assert.Equal(t, common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906"), signers.Alice)
	assert.Equal(t, common.HexToAddress("0x6bd60f089B6E8BA75c409a54CDea34AA511277f6"), signers.Operator)
}

func TestKeyring_TransactOpts(t *testing.T) {
	k, err := NewKeyring(devConfig())
	require.NoError(t, err)

	opts, err := k.TransactOpts(context.Background(), domain.SignerDeployer, big.NewInt(31337))
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"), opts.From)
	assert.NotNil(t, opts.Signer)

	_, err = k.TransactOpts(context.Background(), domain.SignerOperator, big.NewInt(31337))
	assert.ErrorIs(t, err, domain.ErrUnknownSigner)
}

func TestKeyring_InvalidKey(t *testing.T) {
	cfg := devConfig()
	cfg.Harness.Signers.Alice = "0xnothex"

	_, err := NewKeyring(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signer alice")
}

func TestKeyring_MissingRole(t *testing.T) {
	cfg := devConfig()
	cfg.Harness.Signers.Owner = ""

	k, err := NewKeyring(cfg)
	require.NoError(t, err)

	_, err = k.Address(domain.SignerOwner)
	assert.ErrorIs(t, err, domain.ErrUnknownSigner)

	_, err = k.Signers()
	assert.ErrorIs(t, err, domain.ErrUnknownSigner)
}
