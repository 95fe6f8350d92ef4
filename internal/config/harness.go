package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

// HarnessFileName is the project configuration file that also marks the project root
const HarnessFileName = "chefkit.toml"

var validate = validator.New(validator.WithRequiredStructEnabled())

// loadHarnessConfig loads chefkit.toml from the project root.
// A missing file yields the built-in defaults.
func loadHarnessConfig(projectRoot string) (*config.HarnessConfig, error) {
	cfg := &config.HarnessConfig{}

	path := filepath.Join(projectRoot, HarnessFileName)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", HarnessFileName, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat %s: %w", HarnessFileName, err)
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	expandHarnessEnv(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", HarnessFileName, describeValidation(err))
	}

	return cfg, nil
}

// expandHarnessEnv expands ${VAR} references in values that usually hold secrets or URLs
func expandHarnessEnv(cfg *config.HarnessConfig) {
	for name, url := range cfg.RPCEndpoints {
		cfg.RPCEndpoints[name] = os.ExpandEnv(url)
	}
	cfg.Fork.URL = os.ExpandEnv(cfg.Fork.URL)
	cfg.Signers.Admin = os.ExpandEnv(cfg.Signers.Admin)
	cfg.Signers.Owner = os.ExpandEnv(cfg.Signers.Owner)
	cfg.Signers.Deployer = os.ExpandEnv(cfg.Signers.Deployer)
	cfg.Signers.Alice = os.ExpandEnv(cfg.Signers.Alice)
	cfg.Signers.Operator = os.ExpandEnv(cfg.Signers.Operator)
}

// describeValidation flattens validator errors into field paths
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "HarnessConfig.")
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", field, fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// loadDotEnv loads .env from the project root without overriding the process environment
func loadDotEnv(projectRoot string) error {
	path := filepath.Join(projectRoot, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}
