package discovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/normalizer"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name      string
		obs       Observation
		wantType  string
		wantScore int
	}{
		{
			name: "account heavy",
			obs: Observation{
				IDCounts:    map[string]int{"ACCOUNT_CODE": 40, "GL_SEGMENT": 12},
				TableCounts: map[string]int{"GL_ACCOUNT_MASTER": 3},
			},
			wantType: "ACCOUNT",
			// "account" twice, "gl" twice across the three names.
			wantScore: 4,
		},
		{
			name: "product heavy",
			obs: Observation{
				IDCounts:    map[string]int{"SKU": 10, "PRODUCT_CODE": 5},
				TableCounts: map[string]int{"ITEM_MASTER": 1},
			},
			wantType: "PRODUCT",
			// PRODUCT_CODE hits both "product" and "prod", SKU and
			// ITEM_MASTER one keyword each.
			wantScore: 4,
		},
		{
			name: "tie goes to lexicon order",
			obs: Observation{
				IDCounts: map[string]int{"ACCT_CD": 1, "SKU": 1},
			},
			wantType:  "ACCOUNT",
			wantScore: 1,
		},
		{
			name:      "no hits",
			obs:       Observation{IDCounts: map[string]int{"XYZ": 9}},
			wantType:  TypeUnknown,
			wantScore: 0,
		},
	}

	d := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotScore := d.detectType(tt.obs)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantScore, gotScore)
		})
	}
}

func TestSuggestPatterns(t *testing.T) {
	d := New(nil)

	res := d.Discover(Observation{
		TableCounts: map[string]int{"DIM_ACCOUNT": 1},
	})
	require.Len(t, res.Patterns, 1)
	assert.Equal(t, "account", res.Patterns[0].Name)
	assert.Equal(t, []string{"ACCT_CD"}, res.Patterns[0].JoinKeys)
	assert.Equal(t, []string{"FK_ACCOUNT_KEY"}, res.Patterns[0].FactKeys)

	// Product plus deduct tables trigger both the single product branch and
	// the combined branch.
	res = d.Discover(Observation{
		TableCounts: map[string]int{"DIM_PRODUCT": 1, "DEDUCT_RULES": 1},
	})
	var names []string
	for _, p := range res.Patterns {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"product", "product_deduct"}, names)

	res = d.Discover(Observation{})
	assert.Empty(t, res.Patterns)
}

func TestSuggestMappings(t *testing.T) {
	d := New(nil)

	res := d.Discover(Observation{
		IDCounts: map[string]int{
			"ACCOUNT_CODE": 30, // exact
			"product_code": 10, // exact modulo case
			"ACOUNT_CODE":  4,  // typo, similarity ~0.92
			"ZZZZZZ":       1,  // unrecognized
		},
	})

	require.Len(t, res.Mappings, 3)
	// Sorted observation order: ACCOUNT_CODE, ACOUNT_CODE, ZZZZZZ, product_code.
	assert.Equal(t, mart.DynamicColumnMapping{IDSource: "ACCOUNT_CODE", PhysicalColumn: "ACCT_CD"}, res.Mappings[0])
	assert.Equal(t, mart.DynamicColumnMapping{IDSource: "ACOUNT_CODE", PhysicalColumn: "ACCT_CD", IsAlias: true}, res.Mappings[1])
	assert.Equal(t, mart.DynamicColumnMapping{IDSource: "PRODUCT_CODE", PhysicalColumn: "PROD_CD"}, res.Mappings[2])

	require.Len(t, res.Issues, 1)
	issue := res.Issues[0]
	assert.Equal(t, CodeTypo, issue.Code)
	assert.Equal(t, SeverityHigh, issue.Severity)
	assert.Equal(t, "ACOUNT_CODE", issue.Subject)
	assert.Contains(t, issue.Message, `"ACCOUNT_CODE"`)
	assert.Contains(t, issue.Message, "0.92")
}

func TestTypoBandEdges(t *testing.T) {
	d := New(nil)

	// Exact matches are never typo candidates.
	res := d.Discover(Observation{IDCounts: map[string]int{"ACCOUNT_CODE": 1}})
	assert.Empty(t, res.Issues)

	// Two edits from ACCOUNT_CODE: similarity 0.83, flagged but below the
	// auto-correct threshold, so no mapping is suggested.
	res = d.Discover(Observation{IDCounts: map[string]int{"ACONT_CODE": 1}})
	require.Len(t, res.Issues, 1)
	assert.Equal(t, CodeTypo, res.Issues[0].Code)
	assert.Empty(t, res.Mappings)

	// Far-off values are neither flagged nor mapped.
	res = d.Discover(Observation{IDCounts: map[string]int{"WAREHOUSE_BIN": 1}})
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Mappings)
}

func TestCoverageIssue(t *testing.T) {
	d := New(nil)

	res := d.Discover(Observation{
		IDCounts:  map[string]int{"ACCOUNT_CODE": 10},
		NodeCount: 10,
	})
	found := false
	for _, issue := range res.Issues {
		if issue.Code == CodeCoverage {
			found = true
			assert.Equal(t, SeverityMedium, issue.Severity)
			assert.Contains(t, issue.Message, "1.00")
		}
	}
	assert.True(t, found, "expected a coverage issue at 1.0 avg")

	res = d.Discover(Observation{
		IDCounts:  map[string]int{"ACCOUNT_CODE": 15},
		NodeCount: 10,
	})
	for _, issue := range res.Issues {
		assert.NotEqual(t, CodeCoverage, issue.Code)
	}

	// Without a node count there is nothing to grade.
	res = d.Discover(Observation{IDCounts: map[string]int{"ACCOUNT_CODE": 1}})
	for _, issue := range res.Issues {
		assert.NotEqual(t, CodeCoverage, issue.Code)
	}
}

func TestConfidence(t *testing.T) {
	d := New(nil)

	// Everything detected, no issues: all four signals at full weight.
	res := d.Discover(Observation{
		IDCounts:    map[string]int{"ACCOUNT_CODE": 20},
		TableCounts: map[string]int{"DIM_ACCOUNT": 2},
		NodeCount:   10,
	})
	assert.InDelta(t, 1.0, res.Confidence, 0.0001)

	// Empty observation: only the low-issue grade contributes.
	res = d.Discover(Observation{})
	assert.InDelta(t, 0.15, res.Confidence, 0.0001)

	// One issue shaves a tenth off the issue grade.
	res = d.Discover(Observation{
		IDCounts:    map[string]int{"ACOUNT_CODE": 20},
		TableCounts: map[string]int{"DIM_ACCOUNT": 2},
		NodeCount:   10,
	})
	assert.InDelta(t, 0.985, res.Confidence, 0.0001)
}

func TestDiscover_InjectedNormalizer(t *testing.T) {
	cache := normalizer.NewMapCache()
	norm := normalizer.New([]string{"ACCOUNT_CODE"}, normalizer.Config{Cache: cache})
	d := New(&Config{Normalizer: norm})

	res := d.Discover(Observation{IDCounts: map[string]int{"ACOUNT_CODE": 2}})
	require.Len(t, res.Mappings, 1)
	assert.True(t, res.Mappings[0].IsAlias)

	// The correction was learned through the injected cache.
	assert.Equal(t, 1, cache.Len())
}

func TestIssueSeverityString(t *testing.T) {
	assert.Equal(t, "low", SeverityLow.String())
	assert.Equal(t, "medium", SeverityMedium.String())
	assert.Equal(t, "high", SeverityHigh.String())
}

func TestDiscover_Deterministic(t *testing.T) {
	obs := Observation{
		IDCounts: map[string]int{
			"ACCOUNT_CODE": 3, "PRODUCT_CODE": 2, "REGION_CODE": 1, "ENTITY_CODE": 1,
		},
		TableCounts: map[string]int{"DIM_ACCOUNT": 1, "DIM_PRODUCT": 1},
	}
	d := New(nil)
	first := d.Discover(obs)
	for i := 0; i < 10; i++ {
		again := d.Discover(obs)
		assert.Equal(t, first.Mappings, again.Mappings)
		assert.Equal(t, first.Patterns, again.Patterns)
		assert.Equal(t, first.HierarchyType, again.HierarchyType)
	}
}

func TestDiscover_MessageTexture(t *testing.T) {
	d := New(nil)
	res := d.Discover(Observation{IDCounts: map[string]int{"ACOUNT_CODE": 1}})
	require.Len(t, res.Issues, 1)
	assert.True(t, strings.HasPrefix(res.Issues[0].Message, `identifier "ACOUNT_CODE" looks like a typo of`))
}
