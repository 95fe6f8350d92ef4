package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

// AnvilOperation is a dev node management command
type AnvilOperation string

const (
	AnvilStart   AnvilOperation = "start"
	AnvilStop    AnvilOperation = "stop"
	AnvilRestart AnvilOperation = "restart"
	AnvilStatus  AnvilOperation = "status"
	AnvilLogs    AnvilOperation = "logs"
)

// ManageAnvil handles the local anvil node the harness runs against
type ManageAnvil struct {
	config       *config.RuntimeConfig
	anvilManager AnvilManager
	progress     ProgressSink
}

// NewManageAnvil creates a new anvil management use case
func NewManageAnvil(cfg *config.RuntimeConfig, anvilManager AnvilManager, progress ProgressSink) *ManageAnvil {
	return &ManageAnvil{
		config:       cfg,
		anvilManager: anvilManager,
		progress:     progress,
	}
}

// ManageAnvilParams contains parameters for anvil operations. Empty fork
// settings fall back to the [fork] section of chefkit.toml.
type ManageAnvilParams struct {
	Operation       AnvilOperation
	Name            string
	Port            string
	ForkURL         string
	ForkBlockNumber uint64
	// LogWriter receives the log stream for the logs operation
	LogWriter io.Writer
}

// ManageAnvilResult contains the result of anvil operations
type ManageAnvilResult struct {
	Operation AnvilOperation
	Instance  *domain.AnvilInstance
	Status    *domain.AnvilStatus
	Message   string
}

// Execute performs the anvil management operation
func (m *ManageAnvil) Execute(ctx context.Context, params ManageAnvilParams) (*ManageAnvilResult, error) {
	instance := m.instance(params)

	switch params.Operation {
	case AnvilStart:
		return m.start(ctx, instance)
	case AnvilStop:
		return m.stop(ctx, instance)
	case AnvilRestart:
		return m.restart(ctx, instance)
	case AnvilStatus:
		return m.status(ctx, instance)
	case AnvilLogs:
		return m.logs(ctx, instance, params.LogWriter)
	default:
		return nil, fmt.Errorf("unknown operation: %s", params.Operation)
	}
}

func (m *ManageAnvil) instance(params ManageAnvilParams) *domain.AnvilInstance {
	instance := &domain.AnvilInstance{
		Name:            params.Name,
		Port:            params.Port,
		ForkURL:         params.ForkURL,
		ForkBlockNumber: params.ForkBlockNumber,
	}

	if m.config.Harness != nil {
		fork := m.config.Harness.Fork
		if instance.Port == "" {
			instance.Port = fork.Port
		}
		if instance.ForkURL == "" {
			instance.ForkURL = fork.URL
		}
		if instance.ForkBlockNumber == 0 {
			instance.ForkBlockNumber = fork.BlockNumber
		}
	}
	return instance
}

func (m *ManageAnvil) describe(instance *domain.AnvilInstance) string {
	if instance.IsFork() {
		if instance.ForkBlockNumber > 0 {
			return fmt.Sprintf("'%s' on port %s forking at block %d", instance.Name, instance.Port, instance.ForkBlockNumber)
		}
		return fmt.Sprintf("'%s' on port %s forking latest", instance.Name, instance.Port)
	}
	return fmt.Sprintf("'%s' on port %s", instance.Name, instance.Port)
}

func (m *ManageAnvil) start(ctx context.Context, instance *domain.AnvilInstance) (*ManageAnvilResult, error) {
	m.progress.Info(fmt.Sprintf("Starting anvil %s...", m.describe(instance)))

	status, err := m.anvilManager.GetStatus(ctx, instance)
	if err == nil && status.Running {
		return nil, fmt.Errorf("anvil '%s' is already running (PID %d)", instance.Name, status.PID)
	}

	if err := m.anvilManager.Start(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to start anvil: %w", err)
	}

	status, err = m.anvilManager.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status after start: %w", err)
	}

	return &ManageAnvilResult{
		Operation: AnvilStart,
		Instance:  instance,
		Status:    status,
		Message:   fmt.Sprintf("Anvil '%s' started with PID %d", instance.Name, status.PID),
	}, nil
}

func (m *ManageAnvil) stop(ctx context.Context, instance *domain.AnvilInstance) (*ManageAnvilResult, error) {
	m.progress.Info(fmt.Sprintf("Stopping anvil '%s'...", instance.Name))

	status, err := m.anvilManager.GetStatus(ctx, instance)
	if err != nil || !status.Running {
		return &ManageAnvilResult{
			Operation: AnvilStop,
			Instance:  instance,
			Message:   fmt.Sprintf("Anvil '%s' is not running", instance.Name),
		}, nil
	}

	if err := m.anvilManager.Stop(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to stop anvil: %w", err)
	}

	return &ManageAnvilResult{
		Operation: AnvilStop,
		Instance:  instance,
		Message:   fmt.Sprintf("Anvil '%s' stopped", instance.Name),
	}, nil
}

func (m *ManageAnvil) restart(ctx context.Context, instance *domain.AnvilInstance) (*ManageAnvilResult, error) {
	m.progress.Info(fmt.Sprintf("Restarting anvil %s...", m.describe(instance)))

	status, err := m.anvilManager.GetStatus(ctx, instance)
	if err == nil && status.Running {
		if err := m.anvilManager.Stop(ctx, instance); err != nil {
			return nil, fmt.Errorf("failed to stop anvil: %w", err)
		}
	}

	if err := m.anvilManager.Start(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to start anvil: %w", err)
	}

	status, err = m.anvilManager.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status after restart: %w", err)
	}

	return &ManageAnvilResult{
		Operation: AnvilRestart,
		Instance:  instance,
		Status:    status,
		Message:   fmt.Sprintf("Anvil '%s' restarted with PID %d", instance.Name, status.PID),
	}, nil
}

func (m *ManageAnvil) status(ctx context.Context, instance *domain.AnvilInstance) (*ManageAnvilResult, error) {
	status, err := m.anvilManager.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	return &ManageAnvilResult{
		Operation: AnvilStatus,
		Instance:  instance,
		Status:    status,
	}, nil
}

// logs follows the node's log file until ctx is cancelled
func (m *ManageAnvil) logs(ctx context.Context, instance *domain.AnvilInstance, w io.Writer) (*ManageAnvilResult, error) {
	status, err := m.anvilManager.GetStatus(ctx, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	result := &ManageAnvilResult{
		Operation: AnvilLogs,
		Instance:  instance,
		Status:    status,
	}
	if w == nil {
		return result, nil
	}

	if err := m.anvilManager.StreamLogs(ctx, instance, w); err != nil {
		return nil, fmt.Errorf("failed to stream logs: %w", err)
	}
	return result, nil
}
