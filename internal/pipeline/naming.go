package pipeline

import (
	"strconv"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// Column conventions shared by the four generated objects. The hierarchy
// side is modeled as nine reporting levels; deeper levels are NULL for
// shallow nodes until the mart backfills them.
const (
	colHierarchyKey   = "HIERARCHY_KEY"
	colFormulaGroup   = "FORMULA_GROUP"
	colGroupFilter    = "GROUP_FILTER_PRECEDENCE"
	colIsExcluded     = "IS_EXCLUDED"
	colIDSource       = "ID_SOURCE"
	colMapValue       = "MAP_VALUE"
	colPhysical       = "PHYSICAL_COLUMN"
	colFKReportKey    = "FK_REPORT_KEY"
	colAccountSegment = "ACCOUNT_SEGMENT"
	colAmount         = "AMOUNT"
	colReportKey      = "REPORT_KEY"

	numLevels     = 9
	measureSuffix = "AMOUNT"
)

// levelColumns returns LEVEL_1 through LEVEL_9 in order.
func levelColumns() []string {
	cols := make([]string, numLevels)
	for i := range cols {
		cols[i] = levelColumn(i + 1)
	}
	return cols
}

func levelColumn(n int) string {
	return "LEVEL_" + strconv.Itoa(n)
}

// objectBase normalizes a mart name into the object-name fragment: upper
// snake case with runs of non-alphanumerics collapsed to single underscores.
func objectBase(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// layerSuffix returns the object-name suffix for a layer.
func layerSuffix(l mart.Layer) string {
	switch l {
	case mart.LayerTranslation:
		return "TRANSLATION"
	case mart.LayerGranularity:
		return "GRANULARITY"
	case mart.LayerPreAggregation:
		return "PREAGG"
	case mart.LayerMart:
		return "MART"
	default:
		return ""
	}
}

// ObjectName derives the generated object's name for a layer, for example
// VW_1_GROSS_SALES_TRANSLATION for layer translation of mart "gross_sales".
func ObjectName(l mart.Layer, martName string) string {
	return l.ObjectPrefix() + "_" + objectBase(martName) + "_" + layerSuffix(l)
}

// Qualify prefixes an object name with the configured database and schema.
func Qualify(cfg mart.MartConfig, object string) string {
	switch {
	case cfg.Database != "" && cfg.Schema != "":
		return cfg.Database + "." + cfg.Schema + "." + object
	case cfg.Schema != "":
		return cfg.Schema + "." + object
	default:
		return object
	}
}

// qualifySource qualifies a configured source table unless the user already
// wrote a qualified reference.
func qualifySource(cfg mart.MartConfig, table string) string {
	if strings.Contains(table, ".") {
		return table
	}
	return Qualify(cfg, table)
}

// sqlLiteral renders a single-quoted SQL string literal.
func sqlLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
