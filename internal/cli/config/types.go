// Package config provides configuration management for the wright CLI.
//
// Configuration is layered: defaults, then wright.yaml, then WRIGHT_*
// environment variables, then explicit CLI flags. Targets are named
// warehouse connections; a shared base target merges with the selected
// named target so credentials live in one place.
package config

// TargetConfig holds a warehouse connection target.
type TargetConfig struct {
	Type string `koanf:"type"` // snowflake

	// Snowflake account locator, e.g. xy12345 or xy12345.eu-west-1
	Account string `koanf:"account"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Common
	Database string `koanf:"database"`
	Schema   string `koanf:"schema"`

	// Snowflake-specific
	Warehouse string `koanf:"warehouse"`
	Role      string `koanf:"role"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// GenerateConfig holds render-time defaults for generated dynamic tables.
type GenerateConfig struct {
	Warehouse string `koanf:"warehouse"`
	TargetLag string `koanf:"target_lag"`
}

// Config holds all CLI configuration options.
type Config struct {
	ConfigsDir    string `koanf:"configs_dir"`
	OutputDir     string `koanf:"output_dir"`
	StatePath     string `koanf:"state_path"`
	DefaultTarget string `koanf:"default_target"`
	Verbose       bool   `koanf:"verbose"`
	OutputFormat  string `koanf:"output"`

	Generate GenerateConfig `koanf:"generate"`

	// Target is the shared connection base; Targets holds named overrides
	// selected via --target or default_target.
	Target  *TargetConfig            `koanf:"target"`
	Targets map[string]*TargetConfig `koanf:"targets"`

	// ProjectRoot is the directory all relative paths resolve against.
	// Set during load, never read from the config file.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultConfigsDir = "marts"
	DefaultOutputDir  = "build"
	DefaultStateFile  = ".wright/state.db"
	DefaultTargetName = "dev"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
