// Package snowflake provides the Snowflake deployment adapter.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/snowflakedb/gosnowflake" // snowflake driver

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/adapter"
)

// Adapter implements the adapter.Adapter interface for Snowflake.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new Snowflake adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the SQL dialect for this adapter.
func (a *Adapter) Dialect() string {
	return "snowflake"
}

// Connect establishes a connection to Snowflake.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to snowflake",
		slog.String("account", cfg.Account),
		slog.String("database", cfg.Database),
		slog.String("warehouse", cfg.Warehouse))

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return fmt.Errorf("failed to open snowflake connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping snowflake: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildDSN constructs a gosnowflake connection string in the
// user:pass@account/database/schema?warehouse=WH&role=R form.
func buildDSN(cfg adapter.Config) (string, error) {
	if cfg.Account == "" {
		return "", fmt.Errorf("snowflake target requires an account")
	}
	if cfg.Username == "" {
		return "", fmt.Errorf("snowflake target requires a username")
	}

	dsn := fmt.Sprintf("%s:%s@%s", cfg.Username, cfg.Password, cfg.Account)
	if cfg.Database != "" {
		dsn += "/" + cfg.Database
		if cfg.Schema != "" {
			dsn += "/" + cfg.Schema
		}
	}

	params := url.Values{}
	if cfg.Warehouse != "" {
		params.Set("warehouse", cfg.Warehouse)
	}
	if cfg.Role != "" {
		params.Set("role", cfg.Role)
	}
	for k, v := range cfg.Options {
		params.Set(k, v)
	}
	if len(params) > 0 {
		dsn += "?" + params.Encode()
	}

	return dsn, nil
}

// FetchDDL returns the stored DDL text for a deployed object via GET_DDL.
// objectType is a Snowflake object class such as VIEW or TABLE; name must
// be fully qualified.
func (a *Adapter) FetchDDL(ctx context.Context, objectType, name string) (string, error) {
	if a.DB == nil {
		return "", fmt.Errorf("database connection not established")
	}

	query := fmt.Sprintf("SELECT GET_DDL('%s', '%s')", objectType, name)
	var ddl string
	if err := a.DB.QueryRowContext(ctx, query).Scan(&ddl); err != nil {
		return "", fmt.Errorf("failed to fetch DDL for %s: %w", name, err)
	}
	return ddl, nil
}

// Ensure Adapter implements the adapter interfaces
var (
	_ adapter.Adapter    = (*Adapter)(nil)
	_ adapter.DDLFetcher = (*Adapter)(nil)
)
