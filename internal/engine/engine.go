// Package engine orchestrates mart pipeline work: loading definitions,
// rendering the four-object chain, deploying to a target warehouse, diffing
// against deployed DDL and recording run history.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/loader"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/pipeline"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/state"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/adapter"
)

// Engine orchestrates rendering and deployment of mart pipelines.
type Engine struct {
	// Warehouse adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	hasTarget   bool
	dbConnected bool
	dbMu        sync.Mutex

	// Structured logger
	logger *slog.Logger

	store      *state.Store
	assembler  *pipeline.Assembler
	configsDir string
	outputDir  string
}

// Config holds engine configuration.
type Config struct {
	// ConfigsDir is the directory holding mart definition files
	ConfigsDir string
	// OutputDir is the default directory generated DDL files are written to
	OutputDir string
	// StatePath is the path to the SQLite state database
	StatePath string
	// Warehouse is the refresh warehouse rendered into dynamic tables
	Warehouse string
	// TargetLag is the refresh lag rendered into the terminal mart table
	TargetLag string
	// Target is the warehouse connection; nil keeps the engine offline
	Target *adapter.Config
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine with lazy warehouse connection.
// The adapter is only connected when Deploy, Diff or a live Discover runs.
func New(cfg Config) (*Engine, error) {
	// Initialize logger (use discard handler if nil)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "configs_dir", cfg.ConfigsDir, "output_dir", cfg.OutputDir)

	// Create state store (always needed)
	store := state.NewStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state store: %w", err)
	}

	e := &Engine{
		logger: logger,
		store:  store,
		assembler: pipeline.New(&pipeline.Config{
			Warehouse: cfg.Warehouse,
			TargetLag: cfg.TargetLag,
			Logger:    logger,
		}),
		configsDir: cfg.ConfigsDir,
		outputDir:  cfg.OutputDir,
	}

	if cfg.Target != nil {
		e.dbConfig = *cfg.Target
		e.hasTarget = true
	}

	return e, nil
}

// ensureDBConnected lazily connects to the target warehouse.
func (e *Engine) ensureDBConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	if !e.hasTarget {
		return fmt.Errorf("no target configured: add a target to wright.yaml or pass --target")
	}

	e.logger.Debug("connecting to warehouse", "adapter_type", e.dbConfig.Type)

	// Use adapter registry to create the appropriate adapter
	db, err := adapter.NewAdapter(e.dbConfig, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create warehouse adapter: %w", err)
	}

	if err := db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	e.db = db
	e.dbConnected = true

	e.logger.Debug("warehouse connected", "dialect", db.Dialect())

	return nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	var errs []error
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing engine: %v", errs)
	}
	return nil
}

// StateStore returns the state store for read access by commands.
func (e *Engine) StateStore() *state.Store {
	return e.store
}

// TargetType returns the configured target adapter type, or "" when offline.
func (e *Engine) TargetType() string {
	if !e.hasTarget {
		return ""
	}
	return e.dbConfig.Type
}

// loadMarts reads mart definitions from the configs directory, sorted by
// file name. When names is non-empty only those marts load, and a name
// without a matching definition is an error.
func (e *Engine) loadMarts(names []string) ([]*loader.MartFile, error) {
	patterns := []string{"*.yaml", "*.yml"}
	var paths []string
	for _, p := range patterns {
		matched, err := filepath.Glob(filepath.Join(e.configsDir, p))
		if err != nil {
			return nil, fmt.Errorf("failed to list mart definitions: %w", err)
		}
		paths = append(paths, matched...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no mart definitions found in %s", e.configsDir)
	}
	sort.Strings(paths)

	var files []*loader.MartFile
	for _, path := range paths {
		f, err := loader.LoadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	if len(names) == 0 {
		return files, nil
	}

	byName := make(map[string]*loader.MartFile, len(files))
	for _, f := range files {
		byName[strings.ToLower(f.Config.Name)] = f
	}

	selected := make([]*loader.MartFile, 0, len(names))
	for _, name := range names {
		f, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("mart %q not found in %s", name, e.configsDir)
		}
		selected = append(selected, f)
	}
	return selected, nil
}
