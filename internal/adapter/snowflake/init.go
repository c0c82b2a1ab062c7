// Package snowflake provides the Snowflake deployment adapter.
//
// This file registers the adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/tghanchidnx/Databridge-AI-sub003/internal/adapter/snowflake"
package snowflake

import (
	"log/slog"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/adapter"
)

func init() {
	adapter.Register("snowflake", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
