package progress

import (
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// NewSink picks the spinner for interactive terminals and a silent sink
// for JSON or non-interactive runs
func NewSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.JSON || cfg.NonInteractive {
		return usecase.NopProgress{}
	}
	return NewSpinnerSink()
}
