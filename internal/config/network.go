package config

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

// DefaultLocalRPC is used for the "localhost" network when chefkit.toml doesn't override it
const DefaultLocalRPC = "http://127.0.0.1:8545"

// ChainIDFetcher looks up the chain id served at an RPC URL
type ChainIDFetcher func(ctx context.Context, rpcURL string) (uint64, error)

// NetworkResolver resolves network names to RPC endpoints
type NetworkResolver struct {
	endpoints map[string]string
	fetch     ChainIDFetcher
	timeout   time.Duration
}

// NewNetworkResolver creates a resolver over the [rpc_endpoints] table
func NewNetworkResolver(harness *config.HarnessConfig) *NetworkResolver {
	endpoints := map[string]string{"localhost": DefaultLocalRPC}
	if harness != nil {
		for name, url := range harness.RPCEndpoints {
			endpoints[name] = url
		}
	}
	return &NetworkResolver{
		endpoints: endpoints,
		fetch:     fetchChainID,
		timeout:   10 * time.Second,
	}
}

// Names returns the configured network names in sorted order
func (r *NetworkResolver) Names() []string {
	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve resolves a network name, or a raw http(s) URL, to its configuration
func (r *NetworkResolver) Resolve(ctx context.Context, networkName string) (*config.Network, error) {
	rpcURL, exists := r.endpoints[networkName]
	if !exists {
		if !strings.HasPrefix(networkName, "http://") && !strings.HasPrefix(networkName, "https://") {
			return nil, fmt.Errorf("network '%s' not found in %s [rpc_endpoints]", networkName, HarnessFileName)
		}
		rpcURL = networkName
	}
	if rpcURL == "" {
		return nil, fmt.Errorf("network '%s' has an empty RPC URL (is its environment variable set?)", networkName)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	chainID, err := r.fetch(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chain ID for network %s: %w", networkName, err)
	}

	return &config.Network{
		Name:    networkName,
		RPCURL:  rpcURL,
		ChainID: chainID,
	}, nil
}

func fetchChainID(ctx context.Context, rpcURL string) (uint64, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return chainID.Uint64(), nil
}
