package pipeline

import (
	"fmt"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// renderTranslation builds the VW_1 view. It joins the hierarchy to its
// mapping rows and resolves each abstract ID_SOURCE to the configured
// physical column through a single CASE expression. Identifiers with no
// configured mapping resolve to NULL rather than failing the view.
func (a *Assembler) renderTranslation(cfg mart.MartConfig) mart.PipelineObject {
	name := ObjectName(mart.LayerTranslation, cfg.Name)

	var b strings.Builder
	b.WriteString(a.header(cfg))
	fmt.Fprintf(&b, "CREATE OR REPLACE VIEW %s AS\n", Qualify(cfg, name))
	b.WriteString("SELECT\n")
	fmt.Fprintf(&b, "    H.%s,\n", colHierarchyKey)
	for _, lvl := range levelColumns() {
		fmt.Fprintf(&b, "    H.%s,\n", lvl)
	}
	fmt.Fprintf(&b, "    H.%s,\n", colFormulaGroup)
	if cfg.HasGroupFilterPrecedence {
		fmt.Fprintf(&b, "    H.%s,\n", colGroupFilter)
	}
	if cfg.HasExclusions {
		fmt.Fprintf(&b, "    H.%s,\n", colIsExcluded)
	}
	fmt.Fprintf(&b, "    M.%s,\n", colIDSource)
	fmt.Fprintf(&b, "    M.%s,\n", colMapValue)
	fmt.Fprintf(&b, "    CASE UPPER(M.%s)\n", colIDSource)
	for _, m := range cfg.DynamicColumnMap {
		fmt.Fprintf(&b, "        WHEN %s THEN %s\n",
			sqlLiteral(strings.ToUpper(m.IDSource)), sqlLiteral(m.PhysicalColumn))
	}
	b.WriteString("        ELSE NULL\n")
	fmt.Fprintf(&b, "    END AS %s\n", colPhysical)
	fmt.Fprintf(&b, "FROM %s H\n", qualifySource(cfg, cfg.HierarchyTable))
	fmt.Fprintf(&b, "LEFT JOIN %s M\n", qualifySource(cfg, cfg.MappingTable))
	fmt.Fprintf(&b, "    ON M.%s = H.%s;\n", colFKReportKey, colHierarchyKey)

	return mart.PipelineObject{
		Layer:        mart.LayerTranslation,
		Name:         name,
		DDL:          b.String(),
		Dependencies: []string{cfg.HierarchyTable, cfg.MappingTable},
	}
}
