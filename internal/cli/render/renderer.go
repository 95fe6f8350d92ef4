package render

import (
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// Renderer writes a use case result to its output
type Renderer[T any] interface {
	Render(result T) error
}

var (
	_ Renderer[*usecase.ListPoolsResult]     = (*PoolsRenderer)(nil)
	_ Renderer[*usecase.DeployAdapterResult] = (*DeployRenderer)(nil)
	_ Renderer[*usecase.ManageAnvilResult]   = (*AnvilRenderer)(nil)
	_ Renderer[*domain.SuiteReport]          = (*ScenarioRenderer)(nil)
)
