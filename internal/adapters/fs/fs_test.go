package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDeploymentStore_SaveAndList(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), ".chefkit")
	store := NewDeploymentStore(&config.RuntimeConfig{DataDir: dataDir})
	ctx := context.Background()

	records, err := store.ListDeployments(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	first := &domain.Deployment{
		Name:       domain.AdapterContractName,
		Address:    common.HexToAddress("0x1000"),
		ChainID:    31337,
		Network:    "localhost",
		Args:       map[string]string{"masterChef": "0x99fa011E33A8c6196869DeC7Bc407E896BA67fE3"},
		DeployedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	oracle := &domain.Deployment{
		Name:       domain.OracleContractName,
		Address:    common.HexToAddress("0x2000"),
		ChainID:    31337,
		DeployedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveDeployment(ctx, first))
	require.NoError(t, store.SaveDeployment(ctx, oracle))

	assert.FileExists(t, filepath.Join(dataDir, DeploymentsFileName))

	records, err = store.ListDeployments(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.OracleContractName, records[0].Name)
	assert.Equal(t, first.Args, records[1].Args)

	// redeploying on the same chain replaces the record
	redeploy := *first
	redeploy.Address = common.HexToAddress("0x3000")
	redeploy.DeployedAt = time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveDeployment(ctx, &redeploy))

	records, err = store.ListDeployments(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, common.HexToAddress("0x3000"), records[0].Address)
}

func TestDeploymentStore_CorruptFile(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, DeploymentsFileName), []byte("{"), 0644))

	_, err := NewDeploymentStore(&config.RuntimeConfig{DataDir: dataDir}).ListDeployments(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse deployments file")
}

const poolsJSON = `{
  "SUSHI-WETH": {
    "pool": "0x99fa011E33A8c6196869DeC7Bc407E896BA67fE3",
    "lpToken": "0x795065dCc9f64b5614C407a6EFDC400DA6221FB0",
    "tokens": ["0x795065dCc9f64b5614C407a6EFDC400DA6221FB0"],
    "pid": "0"
  },
  "ALCX-WETH": {
    "pool": "0x99fa011E33A8c6196869DeC7Bc407E896BA67fE3",
    "lpToken": "0xC3f279090a47e80990Fe3a9c30d24Cb117EF91a8",
    "tokens": ["0xC3f279090a47e80990Fe3a9c30d24Cb117EF91a8"],
    "deprecated": true,
    "pid": "9"
  }
}`

const poolsYAML = `
SUSHI-WETH:
  pool: "0x99fa011E33A8c6196869DeC7Bc407E896BA67fE3"
  lpToken: "0x795065dCc9f64b5614C407a6EFDC400DA6221FB0"
  tokens:
    - "0x795065dCc9f64b5614C407a6EFDC400DA6221FB0"
  pid: "0"
`

func fixtureConfig(root, pools, tokens string) *config.RuntimeConfig {
	return &config.RuntimeConfig{
		ProjectRoot: root,
		Harness: &config.HarnessConfig{
			Fixtures: config.FixturesConfig{Pools: pools, Tokens: tokens},
		},
	}
}

func TestPoolFixtureLoader_JSON(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "helpers"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "helpers", "poolsV2.json"), []byte(poolsJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "helpers", "tokens.json"),
		[]byte(`{"SLP_SUSHI_WETH":"0x795065dCc9f64b5614C407a6EFDC400DA6221FB0"}`), 0644))

	loader := NewPoolFixtureLoader(fixtureConfig(root, "helpers/poolsV2.json", "helpers/tokens.json"))
	ctx := context.Background()

	pools, err := loader.LoadPools(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALCX-WETH", "SUSHI-WETH"}, pools.Names())
	assert.True(t, pools["ALCX-WETH"].Deprecated)

	pid, err := pools["ALCX-WETH"].PoolID()
	require.NoError(t, err)
	assert.Equal(t, int64(9), pid.Int64())

	tokens, err := loader.LoadTokens(ctx)
	require.NoError(t, err)
	assert.True(t, tokens.Contains(common.HexToAddress("0x795065dCc9f64b5614C407a6EFDC400DA6221FB0")))
}

func TestPoolFixtureLoader_YAML(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pools.yaml"), []byte(poolsYAML), 0644))

	loader := NewPoolFixtureLoader(fixtureConfig(root, "pools.yaml", ""))
	pools, err := loader.LoadPools(context.Background())
	require.NoError(t, err)
	require.Contains(t, pools, "SUSHI-WETH")

	underlying, err := pools["SUSHI-WETH"].UnderlyingToken()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x795065dCc9f64b5614C407a6EFDC400DA6221FB0"), underlying)

	tokens, err := loader.LoadTokens(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestPoolFixtureLoader_Errors(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	_, err := NewPoolFixtureLoader(fixtureConfig(root, "missing.json", "")).LoadPools(ctx)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.json"),
		[]byte(`{"X":{"pool":"0x99fa011E33A8c6196869DeC7Bc407E896BA67fE3","tokens":[],"pid":"abc"}}`), 0644))
	_, err = NewPoolFixtureLoader(fixtureConfig(root, "bad.json", "")).LoadPools(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pid")
}
