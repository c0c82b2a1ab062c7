package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/config"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "wright", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage, "errors should not dump usage")

	// Global persistent flags
	flags := []string{"config", "target", "configs-dir", "output-dir", "state", "project-dir", "verbose", "output"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "persistent flag %q should exist", flag)
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	expected := []string{
		"version", "generate", "validate", "deploy", "diff",
		"discover", "list", "export", "runs", "init", "completion",
	}
	for _, name := range expected {
		assert.True(t, names[name], "subcommand %q should be registered", name)
	}
}

func TestGetConfigFallback(t *testing.T) {
	cfg := GetConfig(context.Background())

	require.NotNil(t, cfg)
	assert.Equal(t, config.DefaultConfigsDir, cfg.ConfigsDir)
	assert.Equal(t, config.DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, config.DefaultStateFile, cfg.StatePath)
	assert.Equal(t, config.DefaultOutput, cfg.OutputFormat)
}

func TestGetRendererFallback(t *testing.T) {
	r := GetRenderer(context.Background())
	require.NotNil(t, r)
}

func TestCompletionCommandMetadata(t *testing.T) {
	cmd := NewCompletionCommand()

	assert.Equal(t, "completion [bash|zsh|fish|powershell]", cmd.Use)
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, cmd.ValidArgs)
}
