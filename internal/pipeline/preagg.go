package pipeline

import (
	"fmt"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// renderPreAggregation builds the DT_3A table. Each join pattern becomes one
// UNION ALL branch joining the granularity table to the fact table on the
// pattern's key pairs. The branches are then re-aggregated by hierarchy key,
// so a node reached through several patterns accumulates the sum of every
// branch's contribution. A config with no patterns renders a zero-valued
// passthrough branch so the downstream mart still materializes.
func (a *Assembler) renderPreAggregation(cfg mart.MartConfig) mart.PipelineObject {
	name := ObjectName(mart.LayerPreAggregation, cfg.Name)
	upstream := ObjectName(mart.LayerGranularity, cfg.Name)

	dimCols := []string{colHierarchyKey}
	dimCols = append(dimCols, levelColumns()...)
	dimCols = append(dimCols, colFormulaGroup)
	if cfg.HasGroupFilterPrecedence {
		dimCols = append(dimCols, colGroupFilter)
	}

	var b strings.Builder
	b.WriteString(a.header(cfg))
	fmt.Fprintf(&b, "CREATE OR REPLACE DYNAMIC TABLE %s\n", Qualify(cfg, name))
	b.WriteString("    TARGET_LAG = 'DOWNSTREAM'\n")
	fmt.Fprintf(&b, "    WAREHOUSE = %s\n", a.warehouse)
	b.WriteString("AS\n")
	b.WriteString("WITH BRANCHES AS (\n")
	if len(cfg.JoinPatterns) == 0 {
		a.writePassthroughBranch(&b, cfg, upstream, dimCols)
	} else {
		for i, p := range cfg.JoinPatterns {
			if i > 0 {
				b.WriteString("    UNION ALL\n")
			}
			a.writePatternBranch(&b, cfg, upstream, dimCols, p)
		}
	}
	b.WriteString(")\n")
	b.WriteString("SELECT\n")
	fmt.Fprintf(&b, "    %s,\n", strings.Join(dimCols, ",\n    "))
	fmt.Fprintf(&b, "    SUM(%s) AS %s\n", colAmount, colAmount)
	b.WriteString("FROM BRANCHES\n")
	b.WriteString("GROUP BY\n")
	fmt.Fprintf(&b, "    %s;\n", strings.Join(dimCols, ",\n    "))

	return mart.PipelineObject{
		Layer:        mart.LayerPreAggregation,
		Name:         name,
		DDL:          b.String(),
		Dependencies: []string{upstream, cfg.FactTable},
	}
}

// writePatternBranch renders one join pattern as a UNION ALL branch.
func (a *Assembler) writePatternBranch(b *strings.Builder, cfg mart.MartConfig, upstream string, dimCols []string, p mart.JoinPattern) {
	b.WriteString("    SELECT\n")
	for _, col := range dimCols {
		fmt.Fprintf(b, "        G.%s,\n", col)
	}
	fmt.Fprintf(b, "        %s AS %s\n", a.measureExpr(cfg), colAmount)
	fmt.Fprintf(b, "    FROM %s G\n", Qualify(cfg, upstream))
	fmt.Fprintf(b, "    INNER JOIN %s F\n", qualifySource(cfg, cfg.FactTable))
	for i := range p.JoinKeys {
		lead := "        ON"
		if i > 0 {
			lead = "        AND"
		}
		fmt.Fprintf(b, "%s G.%s = F.%s\n", lead, p.JoinKeys[i], p.FactKeys[i])
	}
	conds := a.branchFilters(cfg, p)
	for i, cond := range conds {
		lead := "    WHERE"
		if i > 0 {
			lead = "        AND"
		}
		fmt.Fprintf(b, "%s %s\n", lead, cond)
	}
}

// writePassthroughBranch renders the zero-pattern fallback: every
// granularity row carried through with a zero measure and no fact join.
func (a *Assembler) writePassthroughBranch(b *strings.Builder, cfg mart.MartConfig, upstream string, dimCols []string) {
	b.WriteString("    SELECT\n")
	for _, col := range dimCols {
		fmt.Fprintf(b, "        G.%s,\n", col)
	}
	fmt.Fprintf(b, "        0 AS %s\n", colAmount)
	fmt.Fprintf(b, "    FROM %s G\n", Qualify(cfg, upstream))
}

// measureExpr renders the fact measure read, applying the configured sign
// flip and measure-column prefix.
func (a *Assembler) measureExpr(cfg mart.MartConfig) string {
	measure := "F." + cfg.MeasurePrefix + measureSuffix
	if cfg.HasSignChange {
		return "-1 * " + measure
	}
	return measure
}

// branchFilters assembles the WHERE conditions for one branch: the
// account-segment filter when configured, then the pattern's own filter.
func (a *Assembler) branchFilters(cfg mart.MartConfig, p mart.JoinPattern) []string {
	var conds []string
	if strings.TrimSpace(cfg.AccountSegment) != "" {
		conds = append(conds, fmt.Sprintf("F.%s = %s", colAccountSegment, sqlLiteral(cfg.AccountSegment)))
	}
	if strings.TrimSpace(p.Filter) != "" {
		conds = append(conds, "("+p.Filter+")")
	}
	return conds
}
