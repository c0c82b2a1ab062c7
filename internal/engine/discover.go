package engine

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/discovery"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/normalizer"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/state"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// DiscoverOptions control one discovery run. Either File or MappingTable
// must be set.
type DiscoverOptions struct {
	// File is a saved observation: a YAML histogram document or a
	// two-column id_source,count CSV extract.
	File string
	// MappingTable drives a live observation against the target.
	MappingTable string
	// HierarchyTable, when set, contributes the node count to a live
	// observation.
	HierarchyTable string
	// Name names the suggested mart. Defaults to "discovered".
	Name string
}

// DiscoveryIssue is one advisory finding from the heuristics.
type DiscoveryIssue struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Subject  string `json:"subject,omitempty"`
}

// DiscoverResult carries the suggested configuration and the evidence
// behind it.
type DiscoverResult struct {
	HierarchyType string           `json:"hierarchy_type"`
	Confidence    float64          `json:"confidence"`
	Patterns      int              `json:"patterns"`
	Mappings      int              `json:"mappings"`
	Issues        []DiscoveryIssue `json:"issues,omitempty"`
	// Definition is the suggested mart definition, ready to write into
	// the configs directory and edit.
	Definition string `json:"definition"`
}

// Summary returns a one-line description of the run.
func (r *DiscoverResult) Summary() string {
	return fmt.Sprintf("detected %s at %.0f%% confidence: %d pattern(s), %d mapping(s), %d issue(s)",
		r.HierarchyType, r.Confidence*100, r.Patterns, r.Mappings, len(r.Issues))
}

// Discover runs the configuration heuristics over an observation and
// proposes a mart definition. The observation comes from a saved extract
// file or, when none is given, from live GROUP BY queries against the
// target's mapping table. Fuzzy identifier matches made here are learned
// into the state store so later runs resolve them directly.
func (e *Engine) Discover(ctx context.Context, opts DiscoverOptions) (*DiscoverResult, error) {
	var obs discovery.Observation
	var err error
	switch {
	case opts.File != "":
		obs, err = loadObservation(opts.File)
	case opts.MappingTable != "":
		obs, err = e.observeLive(ctx, opts.MappingTable, opts.HierarchyTable)
	default:
		return nil, fmt.Errorf("nothing to observe: pass an observation file or a mapping table")
	}
	if err != nil {
		return nil, err
	}

	cache, err := state.NewAliasCache(e.store, e.logger)
	if err != nil {
		return nil, err
	}
	norm := normalizer.New(discovery.CanonicalIDs(), normalizer.Config{
		Cache:  cache,
		Logger: e.logger,
	})
	disc := discovery.New(&discovery.Config{Normalizer: norm, Logger: e.logger})
	res := disc.Discover(obs)

	name := opts.Name
	if name == "" {
		name = "discovered"
	}
	cfg := mart.MartConfig{
		Name:             name,
		JoinPatterns:     res.Patterns,
		DynamicColumnMap: res.Mappings,
		MappingTable:     opts.MappingTable,
		HierarchyTable:   opts.HierarchyTable,
	}
	if res.HierarchyType != discovery.TypeUnknown {
		cfg.ReportType = res.HierarchyType
	}
	def, err := cfg.ExportYAML()
	if err != nil {
		return nil, fmt.Errorf("failed to render suggested definition: %w", err)
	}

	result := &DiscoverResult{
		HierarchyType: res.HierarchyType,
		Confidence:    res.Confidence,
		Patterns:      len(res.Patterns),
		Mappings:      len(res.Mappings),
		Definition:    string(def),
	}
	for _, issue := range res.Issues {
		result.Issues = append(result.Issues, DiscoveryIssue{
			Code:     issue.Code,
			Severity: issue.Severity.String(),
			Message:  issue.Message,
			Subject:  issue.Subject,
		})
	}
	return result, nil
}

// observationYAML is the saved-extract document shape.
type observationYAML struct {
	IDCounts    map[string]int `yaml:"id_counts"`
	TableCounts map[string]int `yaml:"table_counts"`
	NodeCount   int            `yaml:"node_count"`
}

// loadObservation reads a saved observation. A .csv extension selects the
// two-column extract form, anything else parses as YAML.
func loadObservation(path string) (discovery.Observation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return discovery.Observation{}, fmt.Errorf("failed to read observation: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return parseObservationCSV(data)
	}

	var doc observationYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return discovery.Observation{}, fmt.Errorf("failed to parse observation %s: %w", path, err)
	}
	return discovery.Observation{
		IDCounts:    doc.IDCounts,
		TableCounts: doc.TableCounts,
		NodeCount:   doc.NodeCount,
	}, nil
}

// parseObservationCSV reads an id_source,count extract. A non-numeric
// count in the first record is treated as a header row.
func parseObservationCSV(data []byte) (discovery.Observation, error) {
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		return discovery.Observation{}, fmt.Errorf("failed to parse observation CSV: %w", err)
	}

	obs := discovery.Observation{IDCounts: make(map[string]int, len(records))}
	for i, rec := range records {
		if len(rec) < 2 {
			return discovery.Observation{}, fmt.Errorf("observation CSV record %d has %d field(s), want 2", i+1, len(rec))
		}
		count, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			if i == 0 {
				continue
			}
			return discovery.Observation{}, fmt.Errorf("observation CSV record %d: count %q is not a number", i+1, rec[1])
		}
		obs.IDCounts[strings.TrimSpace(rec[0])] += count
	}
	if len(obs.IDCounts) == 0 {
		return discovery.Observation{}, fmt.Errorf("observation CSV has no data rows")
	}
	return obs, nil
}

// observeLive builds an observation from GROUP BY queries against the
// target. The configured table names join the observation so type
// detection can score their keywords too.
func (e *Engine) observeLive(ctx context.Context, mappingTable, hierarchyTable string) (discovery.Observation, error) {
	obs := discovery.Observation{
		IDCounts:    make(map[string]int),
		TableCounts: map[string]int{mappingTable: 1},
	}

	if err := e.ensureDBConnected(ctx); err != nil {
		return obs, err
	}

	rows, err := e.db.Query(ctx, fmt.Sprintf(
		"SELECT ID_SOURCE, COUNT(*) FROM %s GROUP BY ID_SOURCE", mappingTable))
	if err != nil {
		return obs, fmt.Errorf("failed to observe %s: %w", mappingTable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return obs, fmt.Errorf("failed to scan observation row: %w", err)
		}
		obs.IDCounts[id] = count
	}
	if err := rows.Err(); err != nil {
		return obs, fmt.Errorf("failed to observe %s: %w", mappingTable, err)
	}

	if hierarchyTable != "" {
		obs.TableCounts[hierarchyTable] = 1
		nodes, err := e.db.Query(ctx, fmt.Sprintf(
			"SELECT COUNT(DISTINCT HIERARCHY_KEY) FROM %s", hierarchyTable))
		if err != nil {
			return obs, fmt.Errorf("failed to observe %s: %w", hierarchyTable, err)
		}
		defer nodes.Close()
		if nodes.Next() {
			if err := nodes.Scan(&obs.NodeCount); err != nil {
				return obs, fmt.Errorf("failed to scan node count: %w", err)
			}
		}
		if err := nodes.Err(); err != nil {
			return obs, fmt.Errorf("failed to observe %s: %w", hierarchyTable, err)
		}
	}

	e.logger.Debug("live observation collected",
		"identifiers", len(obs.IDCounts),
		"nodes", obs.NodeCount)
	return obs, nil
}
