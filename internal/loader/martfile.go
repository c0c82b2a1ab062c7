// Package loader parses mart definition files. Parsing is strict: unknown
// top-level fields, unparseable operations and dangling alias targets are
// errors, so a misspelled key fails at load time instead of silently
// rendering a wrong pipeline.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// MartFile is one parsed definition file.
type MartFile struct {
	Config   mart.MartConfig
	Formulas []mart.Formula
	// Aliases holds the typo -> canonical table from the aliases block,
	// in document order of first appearance, for seeding a normalizer.
	Aliases map[string]string
	// Path is the file the definition came from, empty for Load.
	Path string
}

// martFileYAML is an internal type for YAML unmarshaling. The two mapping
// blocks stay as raw nodes so document order survives: the CASE arms of the
// translation view render in this order, and rendering must be stable.
type martFileYAML struct {
	Name                     string             `yaml:"name"`
	ReportType               string             `yaml:"report_type"`
	AccountSegment           string             `yaml:"account_segment"`
	HierarchyTable           string             `yaml:"hierarchy_table"`
	MappingTable             string             `yaml:"mapping_table"`
	FactTable                string             `yaml:"fact_table"`
	Database                 string             `yaml:"database"`
	Schema                   string             `yaml:"schema"`
	MeasurePrefix            string             `yaml:"measure_prefix"`
	HasSignChange            bool               `yaml:"has_sign_change"`
	HasExclusions            bool               `yaml:"has_exclusions"`
	HasGroupFilterPrecedence bool               `yaml:"has_group_filter_precedence"`
	JoinPatterns             []mart.JoinPattern `yaml:"join_patterns"`
	DynamicColumnMap         yaml.Node          `yaml:"dynamic_column_map"`
	Aliases                  yaml.Node          `yaml:"aliases"`
	Formulas                 []formulaYAML      `yaml:"formulas"`
}

// formulaYAML is an internal type for YAML unmarshaling.
type formulaYAML struct {
	Group      string   `yaml:"group"`
	Precedence int      `yaml:"precedence"`
	Logic      string   `yaml:"logic"`
	ParamRef   string   `yaml:"param_ref"`
	Param2Ref  string   `yaml:"param2_ref"`
	ExtraRefs  []string `yaml:"extra_refs"`
}

// knownFields are the accepted top-level keys.
var knownFields = map[string]bool{
	"name":                        true,
	"report_type":                 true,
	"account_segment":             true,
	"hierarchy_table":             true,
	"mapping_table":               true,
	"fact_table":                  true,
	"database":                    true,
	"schema":                      true,
	"measure_prefix":              true,
	"has_sign_change":             true,
	"has_exclusions":              true,
	"has_group_filter_precedence": true,
	"join_patterns":               true,
	"dynamic_column_map":          true,
	"aliases":                     true,
	"formulas":                    true,
}

// Load parses one mart definition document.
func Load(data []byte) (*MartFile, error) {
	// First pass: reject unknown fields before typed decoding.
	var rawMap map[string]any
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, &ConfigParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	for field := range rawMap {
		if !knownFields[field] {
			return nil, &UnknownFieldError{Field: field}
		}
	}

	var doc martFileYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigParseError{Message: fmt.Sprintf("failed to parse mart definition: %v", err)}
	}

	file := &MartFile{
		Config: mart.MartConfig{
			Name:                     doc.Name,
			ReportType:               doc.ReportType,
			AccountSegment:           doc.AccountSegment,
			HierarchyTable:           doc.HierarchyTable,
			MappingTable:             doc.MappingTable,
			FactTable:                doc.FactTable,
			Database:                 doc.Database,
			Schema:                   doc.Schema,
			MeasurePrefix:            doc.MeasurePrefix,
			HasSignChange:            doc.HasSignChange,
			HasExclusions:            doc.HasExclusions,
			HasGroupFilterPrecedence: doc.HasGroupFilterPrecedence,
			JoinPatterns:             doc.JoinPatterns,
		},
		Aliases: make(map[string]string),
	}

	columns, err := mappingPairs(&doc.DynamicColumnMap, "dynamic_column_map")
	if err != nil {
		return nil, err
	}
	for _, pair := range columns {
		file.Config.DynamicColumnMap = append(file.Config.DynamicColumnMap, mart.DynamicColumnMapping{
			IDSource:       pair.key,
			PhysicalColumn: pair.value,
		})
	}

	aliases, err := mappingPairs(&doc.Aliases, "aliases")
	if err != nil {
		return nil, err
	}
	for _, pair := range aliases {
		physical, ok := file.Config.Mapping(pair.value)
		if !ok {
			return nil, &ConfigParseError{Message: fmt.Sprintf(
				"alias %q points at %q, which has no dynamic_column_map entry", pair.key, pair.value)}
		}
		file.Aliases[pair.key] = pair.value
		file.Config.DynamicColumnMap = append(file.Config.DynamicColumnMap, mart.DynamicColumnMapping{
			IDSource:       pair.key,
			PhysicalColumn: physical,
			IsAlias:        true,
		})
	}

	for i, f := range doc.Formulas {
		parsed, err := parseFormula(i, f)
		if err != nil {
			return nil, err
		}
		file.Formulas = append(file.Formulas, parsed)
	}

	return file, nil
}

// LoadFile parses a mart definition from disk, stamping the file name into
// any parse error.
func LoadFile(path string) (*MartFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mart definition: %w", err)
	}
	file, err := Load(data)
	if err != nil {
		switch e := err.(type) {
		case *ConfigParseError:
			e.File = path
		case *UnknownFieldError:
			e.File = path
		}
		return nil, err
	}
	file.ApplyDefaults(filepath.Base(path))
	file.Path = path
	return file, nil
}

// ApplyDefaults fills fields derivable from file context: a missing name
// falls back to the file stem.
func (f *MartFile) ApplyDefaults(filename string) {
	if f.Config.Name == "" {
		stem := strings.TrimSuffix(filename, filepath.Ext(filename))
		f.Config.Name = stem
	}
}

// parseFormula validates one formula entry. The file path is strict on
// purpose: tolerant coercion belongs to the row extractor, not to curated
// definition files.
func parseFormula(index int, f formulaYAML) (mart.Formula, error) {
	if strings.TrimSpace(f.Group) == "" {
		return mart.Formula{}, &ConfigParseError{Message: fmt.Sprintf("formulas[%d] has no group", index)}
	}
	if f.Precedence < mart.MinPrecedence || f.Precedence > mart.MaxPrecedence {
		return mart.Formula{}, &ConfigParseError{Message: fmt.Sprintf(
			"formula %q has precedence %d, want %d..%d", f.Group, f.Precedence, mart.MinPrecedence, mart.MaxPrecedence)}
	}
	logic, ok := mart.ParseOperation(f.Logic)
	if !ok {
		return mart.Formula{}, &ConfigParseError{Message: fmt.Sprintf("formula %q has unknown logic %q", f.Group, f.Logic)}
	}
	if strings.TrimSpace(f.ParamRef) == "" {
		return mart.Formula{}, &ConfigParseError{Message: fmt.Sprintf("formula %q has no param_ref", f.Group)}
	}
	return mart.Formula{
		Group:      f.Group,
		Precedence: f.Precedence,
		Logic:      logic,
		ParamRef:   f.ParamRef,
		Param2Ref:  f.Param2Ref,
		ExtraRefs:  f.ExtraRefs,
	}, nil
}

type pair struct {
	key   string
	value string
}

// mappingPairs walks a YAML mapping node in document order. An absent node
// yields no pairs; any other kind is a parse error.
func mappingPairs(node *yaml.Node, field string) ([]pair, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ConfigParseError{Message: fmt.Sprintf("%s must be a mapping of strings", field)}
	}
	pairs := make([]pair, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return nil, &ConfigParseError{Message: fmt.Sprintf("%s entries must be scalar string pairs", field)}
		}
		pairs = append(pairs, pair{key: key.Value, value: value.Value})
	}
	return pairs, nil
}

// ConfigParseError represents a mart definition parsing error.
type ConfigParseError struct {
	File    string
	Message string
}

func (e *ConfigParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// UnknownFieldError flags a top-level key the schema does not define.
type UnknownFieldError struct {
	File  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	msg := fmt.Sprintf("unknown field %q in mart definition", e.Field)
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, msg)
	}
	return msg
}
