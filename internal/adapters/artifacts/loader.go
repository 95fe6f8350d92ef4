package artifacts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

// Artifact is a compiled hardhat contract
type Artifact struct {
	ContractName string
	SourceName   string
	Path         string
	ABI          abi.ABI
	Bytecode     []byte
}

// FullyQualifiedName returns "sourceName:contractName"
func (a *Artifact) FullyQualifiedName() string {
	return a.SourceName + ":" + a.ContractName
}

// hardhatArtifact is the on-disk artifact format
type hardhatArtifact struct {
	Format       string          `json:"_format"`
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// Loader finds compiled artifacts by contract name
type Loader struct {
	root string

	once  sync.Once
	index map[string][]string
	err   error
}

// NewLoader creates a loader for the configured artifacts directory
func NewLoader(cfg *config.RuntimeConfig) *Loader {
	dir := "artifacts"
	if cfg.Harness != nil && cfg.Harness.Contracts.ArtifactsDir != "" {
		dir = cfg.Harness.Contracts.ArtifactsDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.ProjectRoot, dir)
	}
	return &Loader{root: dir}
}

// Root returns the directory the loader searches
func (l *Loader) Root() string {
	return l.root
}

// Load returns the artifact for a contract name or a fully qualified
// "path/To.sol:Name" reference
func (l *Loader) Load(name string) (*Artifact, error) {
	if err := l.buildIndex(); err != nil {
		return nil, err
	}

	contractName, source := name, ""
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		source, contractName = name[:idx], name[idx+1:]
	}

	var matches []string
	for _, path := range l.index[contractName] {
		if source != "" && !strings.HasSuffix(filepath.ToSlash(filepath.Dir(path)), source) {
			continue
		}
		matches = append(matches, path)
	}

	switch len(matches) {
	case 0:
		return nil, domain.ArtifactNotFoundErr{Name: name, SearchPath: l.root}
	case 1:
		return readArtifact(matches[0])
	default:
		refs := make([]string, 0, len(matches))
		for _, m := range matches {
			a, err := readArtifact(m)
			if err != nil {
				return nil, err
			}
			refs = append(refs, a.FullyQualifiedName())
		}
		return nil, domain.AmbiguousArtifactErr{Name: name, Matches: refs}
	}
}

// buildIndex maps contract names to artifact files. Hardhat names an
// artifact after its contract, so the file name is the key.
func (l *Loader) buildIndex() error {
	l.once.Do(func() {
		l.index = make(map[string][]string)
		if _, err := os.Stat(l.root); err != nil {
			l.err = fmt.Errorf("artifacts directory %s: %w", l.root, err)
			return
		}
		l.err = filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "build-info" {
					return filepath.SkipDir
				}
				return nil
			}
			base := d.Name()
			if !strings.HasSuffix(base, ".json") || strings.HasSuffix(base, ".dbg.json") {
				return nil
			}
			name := strings.TrimSuffix(base, ".json")
			l.index[name] = append(l.index[name], path)
			return nil
		})
	})
	return l.err
}

func readArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var raw hardhatArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	if raw.ContractName == "" {
		return nil, fmt.Errorf("artifact %s has no contractName", path)
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", raw.ContractName, err)
	}

	var bytecode []byte
	if raw.Bytecode != "" && raw.Bytecode != "0x" {
		bytecode, err = hexutil.Decode(raw.Bytecode)
		if err != nil {
			return nil, fmt.Errorf("invalid bytecode in %s: %w", path, err)
		}
	}

	return &Artifact{
		ContractName: raw.ContractName,
		SourceName:   raw.SourceName,
		Path:         path,
		ABI:          parsed,
		Bytecode:     bytecode,
	}, nil
}
