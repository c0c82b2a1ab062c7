package adapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/adapter"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/tghanchidnx/Databridge-AI-sub003/internal/adapter/snowflake"
)

func TestSnowflakeSelfRegistration(t *testing.T) {
	// Snowflake should be auto-registered via init()
	assert.True(t, adapter.IsRegistered("snowflake"), "snowflake adapter should be auto-registered")
}

func TestListAdapters(t *testing.T) {
	adapters := adapter.ListAdapters()

	assert.Contains(t, adapters, "snowflake", "snowflake should be in adapter list")
}

func TestIsRegistered(t *testing.T) {
	tests := []struct {
		name        string
		adapterName string
		expected    bool
	}{
		{"snowflake registered", "snowflake", true},
		{"unknown not registered", "unknown_db", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.IsRegistered(tt.adapterName)
			assert.Equal(t, tt.expected, got, "IsRegistered(%q)", tt.adapterName)
		})
	}
}

func TestGet(t *testing.T) {
	// Get existing adapter
	factory, ok := adapter.Get("snowflake")
	require.True(t, ok, "Get(snowflake) should return true")
	require.NotNil(t, factory, "Get(snowflake) should return non-nil factory")

	// Get non-existing adapter
	_, ok = adapter.Get("nonexistent")
	assert.False(t, ok, "Get(nonexistent) should return false")
}

func TestNewAdapter_UnknownType(t *testing.T) {
	cfg := adapter.Config{
		Type: "unknown_adapter",
	}

	_, err := adapter.NewAdapter(cfg, nil)
	require.Error(t, err, "NewAdapter(unknown_adapter) should fail")

	// Check error type
	var unknownErr *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)

	assert.Equal(t, "unknown_adapter", unknownErr.Type, "error type")

	// Available should include snowflake
	assert.Contains(t, unknownErr.Available, "snowflake", "Available adapters should include snowflake")
}
