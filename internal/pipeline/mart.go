package pipeline

import (
	"fmt"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// renderMart builds the DT_3 table: the pre-aggregation's base rows unioned
// with the formula cascade's final level, hierarchy levels backfilled so
// shallow nodes repeat their deepest label through LEVEL_9, and a dense-rank
// surrogate key over the filled level combination. An empty cascade renders
// the base rows alone.
//
// The cascade branch keeps only rows labeled with a declared formula group.
// The cascade's passthrough rows are already present as base rows; filtering
// by group label is what prevents the union from double counting them.
func (a *Assembler) renderMart(cfg mart.MartConfig, formulas []mart.Formula, cascade string) mart.PipelineObject {
	name := ObjectName(mart.LayerMart, cfg.Name)
	upstream := ObjectName(mart.LayerPreAggregation, cfg.Name)

	baseCols := []string{colHierarchyKey}
	baseCols = append(baseCols, levelColumns()...)
	baseCols = append(baseCols, colFormulaGroup)
	if cfg.HasGroupFilterPrecedence {
		baseCols = append(baseCols, colGroupFilter)
	}
	baseCols = append(baseCols, colAmount)

	var b strings.Builder
	b.WriteString(a.header(cfg))
	fmt.Fprintf(&b, "CREATE OR REPLACE DYNAMIC TABLE %s\n", Qualify(cfg, name))
	fmt.Fprintf(&b, "    TARGET_LAG = %s\n", sqlLiteral(a.targetLag))
	fmt.Fprintf(&b, "    WAREHOUSE = %s\n", a.warehouse)
	b.WriteString("AS\n")
	b.WriteString("WITH RESULTS AS (\n")
	b.WriteString("    SELECT\n")
	for i, col := range baseCols {
		sep := ","
		if i == len(baseCols)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "        B.%s%s\n", col, sep)
	}
	fmt.Fprintf(&b, "    FROM %s B\n", Qualify(cfg, upstream))
	if cascade != "" {
		b.WriteString("    UNION ALL\n")
		b.WriteString("    SELECT\n")
		fmt.Fprintf(&b, "        NULL AS %s,\n", colHierarchyKey)
		fmt.Fprintf(&b, "        C.%s AS %s,\n", colFormulaGroup, levelColumn(1))
		for n := 2; n <= numLevels; n++ {
			fmt.Fprintf(&b, "        NULL AS %s,\n", levelColumn(n))
		}
		fmt.Fprintf(&b, "        C.%s,\n", colFormulaGroup)
		if cfg.HasGroupFilterPrecedence {
			fmt.Fprintf(&b, "        NULL AS %s,\n", colGroupFilter)
		}
		fmt.Fprintf(&b, "        C.%s\n", colAmount)
		b.WriteString("    FROM (\n")
		b.WriteString(indentBlock(cascade, "        "))
		b.WriteString("    ) C\n")
		fmt.Fprintf(&b, "    WHERE C.%s IN (%s)\n", colFormulaGroup, groupList(formulas))
	}
	b.WriteString("),\n")
	b.WriteString("FILLED AS (\n")
	b.WriteString("    SELECT\n")
	fmt.Fprintf(&b, "        %s,\n", colHierarchyKey)
	fmt.Fprintf(&b, "        %s,\n", levelColumn(1))
	for n := 2; n <= numLevels; n++ {
		fallback := make([]string, 0, n)
		for m := n; m >= 1; m-- {
			fallback = append(fallback, levelColumn(m))
		}
		fmt.Fprintf(&b, "        COALESCE(%s) AS %s,\n", strings.Join(fallback, ", "), levelColumn(n))
	}
	fmt.Fprintf(&b, "        %s,\n", colFormulaGroup)
	if cfg.HasGroupFilterPrecedence {
		fmt.Fprintf(&b, "        %s,\n", colGroupFilter)
	}
	fmt.Fprintf(&b, "        %s\n", colAmount)
	b.WriteString("    FROM RESULTS\n")
	b.WriteString(")\n")
	b.WriteString("SELECT\n")
	fmt.Fprintf(&b, "    DENSE_RANK() OVER (ORDER BY %s) AS %s,\n",
		strings.Join(levelColumns(), ", "), colReportKey)
	fmt.Fprintf(&b, "    %s,\n", colHierarchyKey)
	fmt.Fprintf(&b, "    %s,\n", strings.Join(levelColumns(), ",\n    "))
	fmt.Fprintf(&b, "    %s,\n", colFormulaGroup)
	if cfg.HasGroupFilterPrecedence {
		fmt.Fprintf(&b, "    %s,\n", colGroupFilter)
	}
	fmt.Fprintf(&b, "    %s\n", colAmount)
	b.WriteString("FROM FILLED;\n")

	return mart.PipelineObject{
		Layer:        mart.LayerMart,
		Name:         name,
		DDL:          b.String(),
		Dependencies: []string{upstream},
	}
}

// groupList renders the declared formula groups as a literal list, in
// declaration order, first occurrence winning on duplicates.
func groupList(formulas []mart.Formula) string {
	var groups []string
	seen := make(map[string]bool)
	for _, f := range formulas {
		if seen[f.Group] {
			continue
		}
		seen[f.Group] = true
		groups = append(groups, sqlLiteral(f.Group))
	}
	return strings.Join(groups, ", ")
}

// indentBlock prefixes every line of a rendered block, keeping the trailing
// newline exactly one.
func indentBlock(block, prefix string) string {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
