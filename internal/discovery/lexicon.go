package discovery

import (
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// TypeUnknown labels observations that match no hierarchy type.
const TypeUnknown = "UNKNOWN"

// hierarchyLexicon drives type detection. Scoring is a plain substring-count
// heuristic: one point per observed name containing a keyword. Order matters:
// the first entry reaching the highest score wins ties, so do not reorder.
var hierarchyLexicon = []struct {
	label    string
	keywords []string
}{
	{"ACCOUNT", []string{"account", "acct", "gl", "ledger", "coa"}},
	{"PRODUCT", []string{"product", "prod", "sku", "item", "brand"}},
	{"REGION", []string{"region", "geo", "country", "territory", "market"}},
	{"ENTITY", []string{"entity", "legal", "company", "subsidiary"}},
}

// knownMappings is the canonical identifier set and the physical column each
// one resolves against. Fuzzy matching in suggestion runs against these
// id_source values.
var knownMappings = []mart.DynamicColumnMapping{
	{IDSource: "ACCOUNT_CODE", PhysicalColumn: "ACCT_CD"},
	{IDSource: "PRODUCT_CODE", PhysicalColumn: "PROD_CD"},
	{IDSource: "REGION_CODE", PhysicalColumn: "REGION_CD"},
	{IDSource: "ENTITY_CODE", PhysicalColumn: "ENTITY_CD"},
	{IDSource: "DEDUCT_CODE", PhysicalColumn: "DEDUCT_CD"},
	{IDSource: "COST_CENTER", PhysicalColumn: "CC_CD"},
	{IDSource: "CUSTOMER_CODE", PhysicalColumn: "CUST_CD"},
	{IDSource: "CHANNEL_CODE", PhysicalColumn: "CHNL_CD"},
}

// CanonicalIDs returns the canonical identifier set in declaration order.
// Callers that normalize user-supplied identifiers build their matcher over
// this set.
func CanonicalIDs() []string {
	ids := make([]string, len(knownMappings))
	for i, m := range knownMappings {
		ids[i] = m.IDSource
	}
	return ids
}

// patternRule suggests one join pattern when the observed table names hit
// every keyword group in tables.
type patternRule struct {
	pattern mart.JoinPattern
	tables  [][]string
}

// patternRules in suggestion order. Single-dimension rules first, then the
// combined product/deduct branch used by revenue marts that net deductions
// against product lines. Join keys name the physical columns the known
// mappings pivot into, so a suggested pattern joins against columns the
// suggested mappings actually populate.
var patternRules = []patternRule{
	{
		pattern: mart.JoinPattern{Name: "account", JoinKeys: []string{"ACCT_CD"}, FactKeys: []string{"FK_ACCOUNT_KEY"}},
		tables:  [][]string{{"account", "acct", "gl"}},
	},
	{
		pattern: mart.JoinPattern{Name: "product", JoinKeys: []string{"PROD_CD"}, FactKeys: []string{"FK_PRODUCT_KEY"}},
		tables:  [][]string{{"product", "prod", "sku", "item"}},
	},
	{
		pattern: mart.JoinPattern{Name: "region", JoinKeys: []string{"REGION_CD"}, FactKeys: []string{"FK_REGION_KEY"}},
		tables:  [][]string{{"region", "geo", "territory"}},
	},
	{
		pattern: mart.JoinPattern{Name: "entity", JoinKeys: []string{"ENTITY_CD"}, FactKeys: []string{"FK_ENTITY_KEY"}},
		tables:  [][]string{{"entity", "legal", "company"}},
	},
	{
		pattern: mart.JoinPattern{
			Name:     "product_deduct",
			JoinKeys: []string{"PROD_CD", "DEDUCT_CD"},
			FactKeys: []string{"FK_PRODUCT_KEY", "FK_DEDUCT_KEY"},
		},
		tables: [][]string{{"product", "prod", "sku", "item"}, {"deduct", "rebate", "allowance"}},
	},
}

// matchesAny reports whether any name contains any of the keywords.
func matchesAny(names []string, keywords []string) bool {
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
