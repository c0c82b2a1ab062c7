// Package normalizer corrects identifier strings against a canonical set.
//
// Upstream mapping tables are spreadsheet-driven and carry human-entered
// typos; a mis-typed identifier that fails to match would otherwise resolve
// to NULL in generated SQL. Normalizing at the boundary keeps that data loss
// visible instead of silent.
package normalizer

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultThreshold is the minimum similarity for an auto-detected match.
const DefaultThreshold = 0.85

// Result is the outcome of normalizing one identifier.
type Result struct {
	// Original is the input as given.
	Original string `json:"original"`
	// Normalized is the canonical form, or the input unchanged when
	// unrecognized.
	Normalized string `json:"normalized"`
	// WasAliased is true when the result came from the alias table, the
	// learned cache, or fuzzy detection rather than an exact match.
	WasAliased bool `json:"was_aliased"`
	// Confidence is 1.0 for exact/alias hits, the similarity for fuzzy
	// hits, and 0.0 for unrecognized identifiers.
	Confidence float64 `json:"confidence"`
	// Suggestion is set for unrecognized identifiers.
	Suggestion string `json:"suggestion,omitempty"`
}

// Cache stores learned typo corrections so repeated lookups of the same
// unrecognized identifier resolve without re-scanning the canonical set.
// Implementations are not required to be safe for concurrent use; the
// normalizer itself is single-threaded by contract.
type Cache interface {
	Lookup(raw string) (canonical string, ok bool)
	Learn(raw, canonical string)
}

// MapCache is the plain in-process Cache.
type MapCache struct {
	entries map[string]string
}

// NewMapCache creates an empty learning cache.
func NewMapCache() *MapCache {
	return &MapCache{entries: make(map[string]string)}
}

// Lookup returns a previously learned correction.
func (c *MapCache) Lookup(raw string) (string, bool) {
	v, ok := c.entries[strings.ToUpper(raw)]
	return v, ok
}

// Learn records a correction for future exact lookup.
func (c *MapCache) Learn(raw, canonical string) {
	c.entries[strings.ToUpper(raw)] = canonical
}

// Len reports the number of learned corrections.
func (c *MapCache) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the learned corrections, keyed by the
// upper-cased raw identifier.
func (c *MapCache) Entries() map[string]string {
	out := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Config configures a Normalizer. The zero value is usable: no aliases,
// DefaultThreshold, a fresh MapCache, and a discarding logger.
type Config struct {
	// Aliases maps known typo forms to canonical forms.
	Aliases map[string]string
	// Threshold is the minimum similarity for auto-detection (0 means
	// DefaultThreshold).
	Threshold float64
	// Cache receives learned corrections. Injectable so callers can seed
	// it from persisted state and assert on its contents in tests.
	Cache Cache
	// Logger receives debug events for fuzzy matches.
	Logger *slog.Logger
}

// Normalizer matches identifiers against a canonical set with an explicit
// alias table, a learned-correction cache, and edit-distance fallback.
type Normalizer struct {
	canonical []string          // original casing, declaration order
	canonIdx  map[string]string // upper -> canonical casing
	aliases   map[string]string // upper raw -> canonical casing
	threshold float64
	cache     Cache
	logger    *slog.Logger
}

// New creates a Normalizer over the given canonical set.
func New(canonical []string, cfg Config) *Normalizer {
	n := &Normalizer{
		canonical: make([]string, 0, len(canonical)),
		canonIdx:  make(map[string]string, len(canonical)),
		aliases:   make(map[string]string, len(cfg.Aliases)),
		threshold: cfg.Threshold,
		cache:     cfg.Cache,
		logger:    cfg.Logger,
	}
	if n.threshold <= 0 {
		n.threshold = DefaultThreshold
	}
	if n.cache == nil {
		n.cache = NewMapCache()
	}
	if n.logger == nil {
		n.logger = slog.New(slog.DiscardHandler)
	}
	for _, c := range canonical {
		upper := strings.ToUpper(c)
		if _, seen := n.canonIdx[upper]; seen {
			continue
		}
		n.canonical = append(n.canonical, c)
		n.canonIdx[upper] = c
	}
	for raw, canon := range cfg.Aliases {
		if resolved, ok := n.canonIdx[strings.ToUpper(canon)]; ok {
			n.aliases[strings.ToUpper(raw)] = resolved
		} else {
			n.aliases[strings.ToUpper(raw)] = canon
		}
	}
	return n
}

// Canonical returns the canonical set in declaration order.
func (n *Normalizer) Canonical() []string {
	return append([]string(nil), n.canonical...)
}

// Normalize resolves an identifier with fuzzy auto-detection enabled.
func (n *Normalizer) Normalize(id string) Result {
	return n.normalize(id, true)
}

// NormalizeStrict resolves an identifier without fuzzy auto-detection:
// only exact, alias-table, and previously learned matches apply.
func (n *Normalizer) NormalizeStrict(id string) Result {
	return n.normalize(id, false)
}

func (n *Normalizer) normalize(id string, autoDetect bool) Result {
	trimmed := strings.TrimSpace(id)
	upper := strings.ToUpper(trimmed)

	if canon, ok := n.canonIdx[upper]; ok {
		return Result{Original: id, Normalized: canon, WasAliased: false, Confidence: 1.0}
	}
	if canon, ok := n.aliases[upper]; ok {
		return Result{Original: id, Normalized: canon, WasAliased: true, Confidence: 1.0}
	}
	if canon, ok := n.cache.Lookup(upper); ok {
		return Result{Original: id, Normalized: canon, WasAliased: true, Confidence: 1.0}
	}

	if autoDetect {
		if canon, sim := n.bestMatch(upper); sim >= n.threshold {
			n.cache.Learn(upper, canon)
			n.logger.Debug("learned identifier correction",
				"raw", trimmed, "canonical", canon, "similarity", sim)
			return Result{Original: id, Normalized: canon, WasAliased: true, Confidence: sim}
		}
	}

	return Result{
		Original:   id,
		Normalized: id,
		WasAliased: false,
		Confidence: 0.0,
		Suggestion: fmt.Sprintf("identifier %q is not recognized; add it to the canonical set or map it explicitly", trimmed),
	}
}

// BestMatch returns the closest canonical value and its similarity without
// learning anything. Discovery uses it to flag close-but-not-exact typos.
func (n *Normalizer) BestMatch(id string) (string, float64) {
	return n.bestMatch(strings.ToUpper(strings.TrimSpace(id)))
}

func (n *Normalizer) bestMatch(upper string) (string, float64) {
	best := ""
	bestSim := 0.0
	for _, canon := range n.canonical {
		sim := Ratio(upper, strings.ToUpper(canon))
		if sim > bestSim {
			best = canon
			bestSim = sim
		}
	}
	return best, bestSim
}
