package signers

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// Keyring holds the private keys of the harness signers. The operator has
// no key: it is impersonated on the dev node.
type Keyring struct {
	keys     map[domain.SignerRole]*ecdsa.PrivateKey
	operator common.Address
}

// NewKeyring parses the signer keys from chefkit.toml
func NewKeyring(cfg *config.RuntimeConfig) (*Keyring, error) {
	k := &Keyring{keys: make(map[domain.SignerRole]*ecdsa.PrivateKey)}
	if cfg == nil || cfg.Harness == nil {
		return k, nil
	}

	s := cfg.Harness.Signers
	raw := map[domain.SignerRole]string{
		domain.SignerAdmin:    s.Admin,
		domain.SignerOwner:    s.Owner,
		domain.SignerDeployer: s.Deployer,
		domain.SignerAlice:    s.Alice,
	}
	for role, hexKey := range raw {
		if hexKey == "" {
			continue
		}
		key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key for signer %s: %w", role, err)
		}
		k.keys[role] = key
	}
	k.operator = common.HexToAddress(s.Operator)

	return k, nil
}

// Address returns the account of a role
func (k *Keyring) Address(role domain.SignerRole) (common.Address, error) {
	if role == domain.SignerOperator {
		if k.operator == (common.Address{}) {
			return common.Address{}, fmt.Errorf("%w: %s", domain.ErrUnknownSigner, role)
		}
		return k.operator, nil
	}
	key, ok := k.keys[role]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s", domain.ErrUnknownSigner, role)
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// TransactOpts returns signing options for a role on the given chain
func (k *Keyring) TransactOpts(ctx context.Context, role domain.SignerRole, chainID *big.Int) (*bind.TransactOpts, error) {
	key, ok := k.keys[role]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no private key", domain.ErrUnknownSigner, role)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor for %s: %w", role, err)
	}
	opts.Context = ctx
	return opts, nil
}

// Signers resolves every role to its address
func (k *Keyring) Signers() (domain.Signers, error) {
	var s domain.Signers
	targets := map[domain.SignerRole]*common.Address{
		domain.SignerAdmin:    &s.Admin,
		domain.SignerOwner:    &s.Owner,
		domain.SignerDeployer: &s.Deployer,
		domain.SignerAlice:    &s.Alice,
		domain.SignerOperator: &s.Operator,
	}
	for role, dst := range targets {
		addr, err := k.Address(role)
		if err != nil {
			return domain.Signers{}, err
		}
		*dst = addr
	}
	return s, nil
}

var _ usecase.SignerDirectory = (*Keyring)(nil)
