package mart

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// exportDoc fixes the field order of the YAML interchange form.
type exportDoc struct {
	Name                     string            `yaml:"name"`
	ReportType               string            `yaml:"report_type"`
	AccountSegment           string            `yaml:"account_segment"`
	HierarchyTable           string            `yaml:"hierarchy_table"`
	MappingTable             string            `yaml:"mapping_table"`
	FactTable                string            `yaml:"fact_table"`
	Database                 string            `yaml:"database,omitempty"`
	Schema                   string            `yaml:"schema,omitempty"`
	MeasurePrefix            string            `yaml:"measure_prefix,omitempty"`
	HasSignChange            bool              `yaml:"has_sign_change"`
	HasExclusions            bool              `yaml:"has_exclusions"`
	HasGroupFilterPrecedence bool              `yaml:"has_group_filter_precedence"`
	JoinPatterns             []JoinPattern     `yaml:"join_patterns"`
	DynamicColumnMap         map[string]string `yaml:"dynamic_column_map"`
}

// ExportMap returns the configuration as the stable interchange mapping:
// primitive fields, join_patterns as {name, join_keys, fact_keys, filter}
// records, and dynamic_column_map collapsed to a flat
// {id_source: physical_column} map. The first declaration of a duplicated
// id_source wins, matching Mapping's lookup order.
func (c *MartConfig) ExportMap() map[string]any {
	patterns := make([]map[string]any, 0, len(c.JoinPatterns))
	for _, p := range c.JoinPatterns {
		rec := map[string]any{
			"name":      p.Name,
			"join_keys": append([]string(nil), p.JoinKeys...),
			"fact_keys": append([]string(nil), p.FactKeys...),
		}
		if p.Filter != "" {
			rec["filter"] = p.Filter
		}
		patterns = append(patterns, rec)
	}

	return map[string]any{
		"name":                        c.Name,
		"report_type":                 c.ReportType,
		"account_segment":             c.AccountSegment,
		"hierarchy_table":             c.HierarchyTable,
		"mapping_table":               c.MappingTable,
		"fact_table":                  c.FactTable,
		"database":                    c.Database,
		"schema":                      c.Schema,
		"measure_prefix":              c.MeasurePrefix,
		"has_sign_change":             c.HasSignChange,
		"has_exclusions":              c.HasExclusions,
		"has_group_filter_precedence": c.HasGroupFilterPrecedence,
		"join_patterns":               patterns,
		"dynamic_column_map":          c.flatColumnMap(),
	}
}

// ExportYAML renders the interchange form as YAML with a stable field order.
func (c *MartConfig) ExportYAML() ([]byte, error) {
	doc := exportDoc{
		Name:                     c.Name,
		ReportType:               c.ReportType,
		AccountSegment:           c.AccountSegment,
		HierarchyTable:           c.HierarchyTable,
		MappingTable:             c.MappingTable,
		FactTable:                c.FactTable,
		Database:                 c.Database,
		Schema:                   c.Schema,
		MeasurePrefix:            c.MeasurePrefix,
		HasSignChange:            c.HasSignChange,
		HasExclusions:            c.HasExclusions,
		HasGroupFilterPrecedence: c.HasGroupFilterPrecedence,
		JoinPatterns:             c.JoinPatterns,
		DynamicColumnMap:         c.flatColumnMap(),
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to export mart config: %w", err)
	}
	return out, nil
}

func (c *MartConfig) flatColumnMap() map[string]string {
	flat := make(map[string]string, len(c.DynamicColumnMap))
	seen := make(map[string]bool, len(c.DynamicColumnMap))
	for _, m := range c.DynamicColumnMap {
		key := strings.ToUpper(m.IDSource)
		if seen[key] {
			continue
		}
		seen[key] = true
		flat[m.IDSource] = m.PhysicalColumn
	}
	return flat
}
