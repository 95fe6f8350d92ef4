package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// DeploymentsFileName is the deployment record file inside the data dir
const DeploymentsFileName = "deployments.json"

// DeploymentStore persists deployment records as a JSON file
type DeploymentStore struct {
	path string
	mu   sync.Mutex
}

// NewDeploymentStore creates a store under the project data dir
func NewDeploymentStore(cfg *config.RuntimeConfig) *DeploymentStore {
	return &DeploymentStore{
		path: filepath.Join(cfg.DataDir, DeploymentsFileName),
	}
}

// Path returns the location of the deployments file
func (s *DeploymentStore) Path() string {
	return s.path
}

// SaveDeployment appends a record, replacing an earlier one with the same
// name on the same chain
func (s *DeploymentStore) SaveDeployment(ctx context.Context, deployment *domain.Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range records {
		if existing.Name == deployment.Name && existing.ChainID == deployment.ChainID {
			records[i] = deployment
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, deployment)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal deployments: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write deployments file: %w", err)
	}
	return nil
}

// ListDeployments returns every record, newest first
func (s *DeploymentStore) ListDeployments(ctx context.Context) ([]*domain.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DeployedAt.After(records[j].DeployedAt)
	})
	return records, nil
}

func (s *DeploymentStore) load() ([]*domain.Deployment, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read deployments file: %w", err)
	}

	var records []*domain.Deployment
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse deployments file: %w", err)
	}
	return records, nil
}

var _ usecase.DeploymentStore = (*DeploymentStore)(nil)
