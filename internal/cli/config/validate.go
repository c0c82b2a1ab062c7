package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/adapter"
)

// ApplyDefaults applies default values to a TargetConfig based on the target type.
func (t *TargetConfig) ApplyDefaults() {
	if t == nil {
		return
	}
	if t.Schema == "" && strings.EqualFold(t.Type, "snowflake") {
		t.Schema = "PUBLIC"
	}
}

// Validate checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	// Use adapter registry as single source of truth
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ConfigsDir == "" {
		return fmt.Errorf("configs_dir is required")
	}

	// Only validate directory existence if we're running a command that needs it
	// This allows help commands to work without a valid directory
	return nil
}

// ValidateDirectories checks if required directories exist.
func (c *Config) ValidateDirectories() error {
	if _, err := os.Stat(c.ConfigsDir); os.IsNotExist(err) {
		return fmt.Errorf("configs directory does not exist: %s\nHint: Create the directory or use --configs-dir to specify a different path", c.ConfigsDir)
	}
	return nil
}
