package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/config"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/output"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/engine"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/adapter"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that never open the state store or a warehouse.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	configsDir := getEnvOrDefault("WRIGHT_CONFIGS_DIR", config.DefaultConfigsDir)
	outputDir := getEnvOrDefault("WRIGHT_OUTPUT_DIR", config.DefaultOutputDir)
	statePath := getEnvOrDefault("WRIGHT_STATE_PATH", config.DefaultStateFile)
	verbose := os.Getenv("WRIGHT_VERBOSE") == "true"
	outputFormat := os.Getenv("WRIGHT_OUTPUT")

	return &config.Config{
		ConfigsDir:   configsDir,
		OutputDir:    outputDir,
		StatePath:    statePath,
		Verbose:      verbose,
		OutputFormat: outputFormat,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	// Ensure state directory exists
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, err
		}
	}

	// Build adapter config from the selected target. A nil target keeps
	// the engine offline; generate and validate work without one.
	var target *adapter.Config
	if cfg.Target != nil {
		target = &adapter.Config{
			Type:      cfg.Target.Type,
			Account:   cfg.Target.Account,
			Host:      cfg.Target.Host,
			Port:      cfg.Target.Port,
			Database:  cfg.Target.Database,
			Schema:    cfg.Target.Schema,
			Username:  cfg.Target.User,
			Password:  cfg.Target.Password,
			Warehouse: cfg.Target.Warehouse,
			Role:      cfg.Target.Role,
			Options:   cfg.Target.Options,
		}
	}

	engineCfg := engine.Config{
		ConfigsDir: cfg.ConfigsDir,
		OutputDir:  cfg.OutputDir,
		StatePath:  cfg.StatePath,
		Warehouse:  cfg.Generate.Warehouse,
		TargetLag:  cfg.Generate.TargetLag,
		Target:     target,
		Logger:     logger,
	}

	return engine.New(engineCfg)
}
