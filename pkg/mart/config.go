package mart

import (
	"fmt"
	"strings"
)

// JoinPattern describes one UNION-ALL branch of the pre-aggregation: one way
// a hierarchy node's granularity row joins to the fact table. JoinKeys and
// FactKeys are positional pairs and must have equal length.
type JoinPattern struct {
	// Name is unique within a configuration.
	Name string `yaml:"name" json:"name"`
	// JoinKeys are the granularity-table columns, in join order.
	JoinKeys []string `yaml:"join_keys" json:"join_keys"`
	// FactKeys are the fact-table columns paired with JoinKeys.
	FactKeys []string `yaml:"fact_keys" json:"fact_keys"`
	// Filter is an optional extra predicate applied to the branch.
	Filter string `yaml:"filter,omitempty" json:"filter,omitempty"`
}

// Validate checks the pattern's structural invariants.
func (p JoinPattern) Validate() []Diagnostic {
	var ds []Diagnostic
	if strings.TrimSpace(p.Name) == "" {
		ds = append(ds, Errorf("CF05", "join pattern has no name"))
	}
	if len(p.JoinKeys) == 0 {
		ds = append(ds, Errorf("CF05", "join pattern %q has no join keys", p.Name))
	}
	if len(p.JoinKeys) != len(p.FactKeys) {
		ds = append(ds, Errorf("CF03",
			"join pattern %q has %d join keys but %d fact keys",
			p.Name, len(p.JoinKeys), len(p.FactKeys)).
			With("pattern", p.Name))
	}
	return ds
}

// DynamicColumnMapping maps an abstract identifier to the physical dimension
// column its values resolve against.
type DynamicColumnMapping struct {
	// IDSource is the abstract identifier, unique per configuration.
	IDSource string `yaml:"id_source" json:"id_source"`
	// PhysicalColumn is the concrete column reference.
	PhysicalColumn string `yaml:"physical_column" json:"physical_column"`
	// IsAlias marks a corrected/typo entry rather than a canonical one.
	IsAlias bool `yaml:"is_alias,omitempty" json:"is_alias,omitempty"`
}

// MartConfig is the declarative description of one pipeline instance.
// It is created once (by hand or by discovery), grown by adding patterns and
// mappings, and treated as immutable for the duration of one render.
type MartConfig struct {
	// Name identifies the mart; object names derive from it.
	Name string
	// ReportType classifies the report (e.g. PNL, BALANCE).
	ReportType string
	// AccountSegment filters fact rows in the pre-aggregation.
	AccountSegment string

	// HierarchyTable holds the hierarchy rows the translation view reads.
	HierarchyTable string
	// MappingTable holds the id_source mapping rows.
	MappingTable string
	// FactTable holds the measures joined in the pre-aggregation.
	FactTable string

	// Database and Schema qualify generated object names when set.
	Database string
	Schema   string

	// MeasurePrefix overrides the default measure column prefix.
	MeasurePrefix string

	// HasSignChange applies a -1 multiplier to branch measures.
	HasSignChange bool
	// HasExclusions anti-joins away rows marked for exclusion.
	HasExclusions bool
	// HasGroupFilterPrecedence carries the group-filter column through DT_2.
	HasGroupFilterPrecedence bool

	// JoinPatterns are the UNION-ALL branches, in declaration order.
	JoinPatterns []JoinPattern
	// DynamicColumnMap are the identifier mappings, in declaration order.
	DynamicColumnMap []DynamicColumnMapping
}

// AddJoinPattern appends a pattern. Duplicate names and malformed key pairs
// are rejected here so a hand-built config fails at assembly time, not at
// render time.
func (c *MartConfig) AddJoinPattern(p JoinPattern) error {
	for _, d := range p.Validate() {
		if d.Severity == SeverityError {
			return fmt.Errorf("invalid join pattern %q: %s", p.Name, d.Message)
		}
	}
	for _, existing := range c.JoinPatterns {
		if strings.EqualFold(existing.Name, p.Name) {
			return fmt.Errorf("join pattern %q already exists", p.Name)
		}
	}
	c.JoinPatterns = append(c.JoinPatterns, p)
	return nil
}

// AddMapping appends a mapping. A duplicate id_source is accepted but
// reported as a warning diagnostic; nil means the mapping was clean.
func (c *MartConfig) AddMapping(m DynamicColumnMapping) *Diagnostic {
	var dup *Diagnostic
	for _, existing := range c.DynamicColumnMap {
		if strings.EqualFold(existing.IDSource, m.IDSource) {
			d := Warnf("CF06", "duplicate id_source %q (already mapped to %q)",
				m.IDSource, existing.PhysicalColumn).
				With("id_source", m.IDSource)
			dup = &d
			break
		}
	}
	c.DynamicColumnMap = append(c.DynamicColumnMap, m)
	return dup
}

// Mapping returns the physical column for an id_source, case-insensitively.
// The first declaration wins when duplicates exist.
func (c *MartConfig) Mapping(idSource string) (string, bool) {
	for _, m := range c.DynamicColumnMap {
		if strings.EqualFold(m.IDSource, idSource) {
			return m.PhysicalColumn, true
		}
	}
	return "", false
}

// Validate checks the configuration's structural invariants. Problems are
// returned as a structured result, never as a Go error: warnings never block
// and callers gate rendering on Valid().
func (c *MartConfig) Validate() ValidationResult {
	var res ValidationResult

	if strings.TrimSpace(c.Name) == "" {
		res.Add(Errorf("CF01", "mart has no name"))
	}
	required := []struct{ field, value string }{
		{"hierarchy_table", c.HierarchyTable},
		{"mapping_table", c.MappingTable},
		{"fact_table", c.FactTable},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			res.Add(Errorf("CF02", "missing required field %s", r.field).With("field", r.field))
		}
	}
	if strings.TrimSpace(c.AccountSegment) == "" {
		res.Add(Warnf("CF09", "no account_segment configured; pre-aggregation renders without a segment filter"))
	}

	seenPatterns := make(map[string]bool, len(c.JoinPatterns))
	for _, p := range c.JoinPatterns {
		for _, d := range p.Validate() {
			res.Add(d)
		}
		key := strings.ToLower(p.Name)
		if seenPatterns[key] {
			res.Add(Errorf("CF04", "duplicate join pattern name %q", p.Name).With("pattern", p.Name))
		}
		seenPatterns[key] = true
	}

	seenSources := make(map[string]bool, len(c.DynamicColumnMap))
	for _, m := range c.DynamicColumnMap {
		key := strings.ToLower(m.IDSource)
		if seenSources[key] {
			res.Add(Warnf("CF06", "duplicate id_source %q", m.IDSource).With("id_source", m.IDSource))
		}
		seenSources[key] = true
	}

	if len(c.DynamicColumnMap) == 0 {
		res.Add(Warnf("CF07", "no dynamic column mappings; translation view resolves every identifier to NULL"))
	}
	if len(c.JoinPatterns) == 0 {
		res.Add(Infof("CF08", "no join patterns; pre-aggregation emits a zero-valued passthrough branch"))
	}

	return res
}
