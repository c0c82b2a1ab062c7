package state

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/normalizer"
)

// UpsertLearnedAlias records a fuzzy correction, incrementing its seen
// count when the raw identifier was learned before. Raw identifiers are
// stored upper-cased to match the normalizer's lookup convention.
func (s *Store) UpsertLearnedAlias(raw, canonical string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO learned_aliases (raw, canonical, seen_count, created_at, updated_at)
		 VALUES (?, ?, 1, ?, ?)
		 ON CONFLICT (raw) DO UPDATE SET
		   canonical = excluded.canonical,
		   seen_count = seen_count + 1,
		   updated_at = excluded.updated_at`,
		strings.ToUpper(raw), canonical, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert learned alias: %w", err)
	}

	return nil
}

// ListLearnedAliases retrieves all learned aliases ordered by raw identifier.
func (s *Store) ListLearnedAliases() ([]*LearnedAlias, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT raw, canonical, seen_count, created_at, updated_at FROM learned_aliases ORDER BY raw`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list learned aliases: %w", err)
	}
	defer rows.Close()

	var aliases []*LearnedAlias
	for rows.Next() {
		a := &LearnedAlias{}
		if err := rows.Scan(&a.Raw, &a.Canonical, &a.SeenCount, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan learned alias: %w", err)
		}
		aliases = append(aliases, a)
	}

	return aliases, rows.Err()
}

// AliasCache adapts the store to the normalizer's learning cache contract.
// Lookups are served from an in-memory snapshot loaded at construction;
// Learn writes through to the database.
type AliasCache struct {
	store  *Store
	logger *slog.Logger

	mu    sync.RWMutex
	known map[string]string
}

// NewAliasCache loads the learned aliases into memory and returns a cache
// the normalizer can be configured with.
func NewAliasCache(store *Store, logger *slog.Logger) (*AliasCache, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	aliases, err := store.ListLearnedAliases()
	if err != nil {
		return nil, fmt.Errorf("failed to seed alias cache: %w", err)
	}

	known := make(map[string]string, len(aliases))
	for _, a := range aliases {
		known[a.Raw] = a.Canonical
	}

	return &AliasCache{store: store, logger: logger, known: known}, nil
}

// Lookup returns a previously learned correction.
func (c *AliasCache) Lookup(raw string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.known[strings.ToUpper(raw)]
	return v, ok
}

// Learn records a correction in memory and writes it through to the store.
// Persistence failures are logged, not returned; the in-memory entry still
// serves the rest of the run.
func (c *AliasCache) Learn(raw, canonical string) {
	c.mu.Lock()
	c.known[strings.ToUpper(raw)] = canonical
	c.mu.Unlock()

	if err := c.store.UpsertLearnedAlias(raw, canonical); err != nil {
		c.logger.Warn("failed to persist learned alias",
			slog.String("raw", raw),
			slog.String("canonical", canonical),
			slog.String("error", err.Error()))
	}
}

// Len reports the number of aliases the cache currently holds.
func (c *AliasCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.known)
}

var _ normalizer.Cache = (*AliasCache)(nil)
