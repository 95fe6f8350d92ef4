package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"github.com/trebuchet-org/chefkit/internal/usecase"
	"gopkg.in/yaml.v3"
)

// PoolFixtureLoader reads pool and token fixtures from the project
type PoolFixtureLoader struct {
	poolsPath  string
	tokensPath string
}

// NewPoolFixtureLoader creates a loader for the configured fixture paths
func NewPoolFixtureLoader(cfg *config.RuntimeConfig) *PoolFixtureLoader {
	l := &PoolFixtureLoader{}
	if cfg.Harness == nil {
		return l
	}
	l.poolsPath = resolvePath(cfg.ProjectRoot, cfg.Harness.Fixtures.Pools)
	l.tokensPath = resolvePath(cfg.ProjectRoot, cfg.Harness.Fixtures.Tokens)
	return l
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// LoadPools reads the pool fixtures. YAML files are recognised by extension.
func (l *PoolFixtureLoader) LoadPools(ctx context.Context) (domain.LiquidityPools, error) {
	if l.poolsPath == "" {
		return nil, fmt.Errorf("no pool fixture configured")
	}

	var pools domain.LiquidityPools
	if err := decodeFixture(l.poolsPath, &pools); err != nil {
		return nil, err
	}
	for name, pool := range pools {
		if pool == nil {
			return nil, fmt.Errorf("pool %s in %s is empty", name, l.poolsPath)
		}
		if _, err := pool.PoolID(); err != nil {
			return nil, fmt.Errorf("pool %s: %w", name, err)
		}
	}
	return pools, nil
}

// LoadTokens reads the vault-underlying token list. A missing file means no tokens.
func (l *PoolFixtureLoader) LoadTokens(ctx context.Context) (domain.TokenList, error) {
	if l.tokensPath == "" {
		return domain.TokenList{}, nil
	}
	if _, err := os.Stat(l.tokensPath); os.IsNotExist(err) {
		return domain.TokenList{}, nil
	}

	tokens := domain.TokenList{}
	if err := decodeFixture(l.tokensPath, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func decodeFixture(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, out)
	default:
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return nil
}

var _ usecase.PoolFixtureLoader = (*PoolFixtureLoader)(nil)
