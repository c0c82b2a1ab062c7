// Package adapter defines the contract between wright and the warehouses
// it deploys generated pipelines to.
//
// This package contains the public interface all deployment adapters must
// implement plus a name-keyed registry. Concrete implementations live in
// internal/adapter/ subdirectories and register themselves in their init()
// functions.
package adapter

import (
	"context"
	"database/sql"
)

// Config carries the connection settings for a deployment target.
type Config struct {
	// Type selects the registered adapter, e.g. "snowflake".
	Type string

	// Account is the warehouse account locator (Snowflake style).
	Account string

	// Host and Port address targets that connect by hostname.
	Host string
	Port int

	Database string
	Schema   string
	Username string
	Password string

	// Warehouse and Role are Snowflake session settings.
	Warehouse string
	Role      string

	// Options holds adapter-specific connection parameters.
	Options map[string]string
}

// Rows wraps sql.Rows so callers do not import database/sql directly.
type Rows struct {
	*sql.Rows
}

// Adapter is the surface the engine needs from a warehouse connection.
// Deploy executes rendered DDL through Exec; diff and discovery read
// back through Query.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Exec executes a SQL statement that doesn't return rows (DDL, DML).
	Exec(ctx context.Context, sql string) error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// Dialect returns the SQL dialect name for this adapter.
	Dialect() string
}

// DDLFetcher is an optional capability for adapters that can read back the
// stored DDL of a deployed object. The diff path type-asserts for it.
type DDLFetcher interface {
	FetchDDL(ctx context.Context, objectType, name string) (string, error)
}
