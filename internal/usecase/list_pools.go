package usecase

import (
	"context"
	"sort"

	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/chefkit/internal/domain"
)

// ListPools loads the pool fixtures, optionally fuzzy filtered by name
type ListPools struct {
	fixtures PoolFixtureLoader
}

// NewListPools creates a new pool listing use case
func NewListPools(fixtures PoolFixtureLoader) *ListPools {
	return &ListPools{fixtures: fixtures}
}

// ListPoolsParams contains the optional name filter
type ListPoolsParams struct {
	Filter string
}

// PoolEntry is a named pool with its harvest eligibility
type PoolEntry struct {
	Name            string
	Pool            *domain.PoolItem
	HarvestEligible bool
}

// ListPoolsResult contains the matching pools in name order
type ListPoolsResult struct {
	Pools []PoolEntry
	Total int
}

// Execute lists pool fixtures
func (uc *ListPools) Execute(ctx context.Context, params ListPoolsParams) (*ListPoolsResult, error) {
	pools, err := uc.fixtures.LoadPools(ctx)
	if err != nil {
		return nil, err
	}
	tokens, err := uc.fixtures.LoadTokens(ctx)
	if err != nil {
		return nil, err
	}

	result := &ListPoolsResult{Total: len(pools)}
	for _, name := range FilterPoolNames(pools.Names(), params.Filter) {
		pool := pools[name]
		underlying, _ := pool.UnderlyingToken()
		result.Pools = append(result.Pools, PoolEntry{
			Name:            name,
			Pool:            pool,
			HarvestEligible: tokens.Contains(underlying),
		})
	}
	return result, nil
}

// FilterPoolNames returns the names fuzzy matching filter, in name order.
// An empty filter matches every name.
func FilterPoolNames(names []string, filter string) []string {
	if filter == "" {
		return names
	}
	matches := fuzzy.Find(filter, names)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	sort.Strings(out)
	return out
}
