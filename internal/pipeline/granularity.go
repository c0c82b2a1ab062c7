package pipeline

import (
	"fmt"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// renderGranularity builds the DT_2 table. It pivots the translation rows
// into one derived key column per distinct join-pattern key, so each
// hierarchy node becomes a single row carrying every value the
// pre-aggregation branches can join on. Exclusion-flagged nodes are removed
// with a NOT EXISTS anti-join when the config enables exclusions.
func (a *Assembler) renderGranularity(cfg mart.MartConfig) mart.PipelineObject {
	name := ObjectName(mart.LayerGranularity, cfg.Name)
	upstream := ObjectName(mart.LayerTranslation, cfg.Name)

	groupCols := []string{colHierarchyKey}
	groupCols = append(groupCols, levelColumns()...)
	groupCols = append(groupCols, colFormulaGroup)
	if cfg.HasGroupFilterPrecedence {
		groupCols = append(groupCols, colGroupFilter)
	}

	var b strings.Builder
	b.WriteString(a.header(cfg))
	fmt.Fprintf(&b, "CREATE OR REPLACE DYNAMIC TABLE %s\n", Qualify(cfg, name))
	b.WriteString("    TARGET_LAG = 'DOWNSTREAM'\n")
	fmt.Fprintf(&b, "    WAREHOUSE = %s\n", a.warehouse)
	b.WriteString("AS\n")
	b.WriteString("SELECT\n")
	selects := make([]string, 0, len(groupCols)+len(cfg.JoinPatterns))
	for _, col := range groupCols {
		selects = append(selects, "T."+col)
	}
	for _, key := range derivedKeys(cfg) {
		selects = append(selects, fmt.Sprintf("MAX(CASE WHEN UPPER(T.%s) = %s THEN T.%s END) AS %s",
			colPhysical, sqlLiteral(strings.ToUpper(key)), colMapValue, key))
	}
	b.WriteString("    " + strings.Join(selects, ",\n    ") + "\n")
	fmt.Fprintf(&b, "FROM %s T\n", Qualify(cfg, upstream))
	if cfg.HasExclusions {
		b.WriteString("WHERE NOT EXISTS (\n")
		b.WriteString("    SELECT 1\n")
		fmt.Fprintf(&b, "    FROM %s X\n", Qualify(cfg, upstream))
		fmt.Fprintf(&b, "    WHERE X.%s = T.%s\n", colHierarchyKey, colHierarchyKey)
		fmt.Fprintf(&b, "        AND X.%s = TRUE\n", colIsExcluded)
		b.WriteString(")\n")
	}
	b.WriteString("GROUP BY\n")
	groupBy := make([]string, len(groupCols))
	for i, col := range groupCols {
		groupBy[i] = "T." + col
	}
	b.WriteString("    " + strings.Join(groupBy, ",\n    ") + ";\n")

	return mart.PipelineObject{
		Layer:        mart.LayerGranularity,
		Name:         name,
		DDL:          b.String(),
		Dependencies: []string{upstream},
	}
}

// derivedKeys collects every join key across the configured patterns, in
// declaration order, deduplicated case-insensitively. Two patterns naming
// the same key share one derived column.
func derivedKeys(cfg mart.MartConfig) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, p := range cfg.JoinPatterns {
		for _, k := range p.JoinKeys {
			lower := strings.ToLower(k)
			if seen[lower] {
				continue
			}
			seen[lower] = true
			keys = append(keys, k)
		}
	}
	return keys
}
