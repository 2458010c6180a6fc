// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the agent configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Paths
	SpecPath     string `json:"spec,omitempty"`          // Path to build spec JSON file
	WorkspaceDir string `json:"workspace_dir,omitempty"` // Root directory holding generated projects

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	Model       string `json:"model,omitempty"`        // Gemini model name
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL (optional)

	// Repair tunables. Heuristic values; the defaults are observed working
	// points, not derived constants.
	StuckToleranceBytes int `json:"stuck_tolerance_bytes,omitempty" validate:"omitempty,min=0,max=1024"` // Size window treated as "no progress" between fix attempts
	ThinWrapperChars    int `json:"thin_wrapper_chars,omitempty" validate:"omitempty,min=0,max=4096"`    // Exported bodies below this trigger the helper rescue
	MinComponentBytes   int `json:"min_component_bytes,omitempty" validate:"omitempty,min=0,max=8192"`   // Files below this are swept on attempt exhaustion
	MaxFixAttempts      int `json:"max_fix_attempts,omitempty" validate:"omitempty,min=1,max=20"`        // Outer verify/repair cycle cap

	// Dev server and toolchain
	DevPort           int `json:"dev_port,omitempty" validate:"omitempty,min=1024,max=65535"`     // Vite dev server port
	InstallTimeoutSec int `json:"install_timeout_sec,omitempty" validate:"omitempty,min=30"`      // npm install timeout
	BuildTimeoutSec   int `json:"build_timeout_sec,omitempty" validate:"omitempty,min=10"`        // npm run build timeout
	VerifyTimeoutSec  int `json:"verify_timeout_sec,omitempty" validate:"omitempty,min=5,max=600"` // Browser verification timeout
}

// Defaults returns the baseline configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		WorkspaceDir:        "generated_projects",
		Model:               "gemini-2.0-flash",
		StuckToleranceBytes: 30,
		ThinWrapperChars:    350,
		MinComponentBytes:   400,
		MaxFixAttempts:      4,
		DevPort:             5173,
		InstallTimeoutSec:   420,
		BuildTimeoutSec:     120,
		VerifyTimeoutSec:    60,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. Range checks are
// declared as struct tags; field presence is handled by CLI flag validation
// after merging.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: field %s failed %s check (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.SpecPath != "" {
		if _, err := os.Stat(c.SpecPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: spec file not found: %s", c.SpecPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.SpecPath == "" {
		result.SpecPath = defaults.SpecPath
	}
	if result.WorkspaceDir == "" {
		result.WorkspaceDir = defaults.WorkspaceDir
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.StuckToleranceBytes == 0 {
		result.StuckToleranceBytes = defaults.StuckToleranceBytes
	}
	if result.ThinWrapperChars == 0 {
		result.ThinWrapperChars = defaults.ThinWrapperChars
	}
	if result.MinComponentBytes == 0 {
		result.MinComponentBytes = defaults.MinComponentBytes
	}
	if result.MaxFixAttempts == 0 {
		result.MaxFixAttempts = defaults.MaxFixAttempts
	}
	if result.DevPort == 0 {
		result.DevPort = defaults.DevPort
	}
	if result.InstallTimeoutSec == 0 {
		result.InstallTimeoutSec = defaults.InstallTimeoutSec
	}
	if result.BuildTimeoutSec == 0 {
		result.BuildTimeoutSec = defaults.BuildTimeoutSec
	}
	if result.VerifyTimeoutSec == 0 {
		result.VerifyTimeoutSec = defaults.VerifyTimeoutSec
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// InstallTimeout returns the npm install timeout as a duration.
func (c *Config) InstallTimeout() time.Duration {
	return time.Duration(c.InstallTimeoutSec) * time.Second
}

// BuildTimeout returns the compile-probe timeout as a duration.
func (c *Config) BuildTimeout() time.Duration {
	return time.Duration(c.BuildTimeoutSec) * time.Second
}

// VerifyTimeout returns the browser verification timeout as a duration.
func (c *Config) VerifyTimeout() time.Duration {
	return time.Duration(c.VerifyTimeoutSec) * time.Second
}
