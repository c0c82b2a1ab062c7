package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

const fullDocument = `
name: gross_sales
report_type: PNL
account_segment: "400"
hierarchy_table: HIERARCHY
mapping_table: HIERARCHY_MAPPING
fact_table: FACT_GL
database: ANALYTICS
schema: FINANCE
has_sign_change: true
join_patterns:
  - name: account
    join_keys: [ACCOUNT_KEY]
    fact_keys: [FK_ACCOUNT_KEY]
  - name: product
    join_keys: [PRODUCT_KEY]
    fact_keys: [FK_PRODUCT_KEY]
    filter: "F.SOURCE = 'POS'"
dynamic_column_map:
  PRODUCT_CODE: PROD_CD
  ACCOUNT_CODE: ACCT_CD
aliases:
  ACOUNT_CODE: ACCOUNT_CODE
formulas:
  - group: Revenue
    precedence: 1
    logic: SUM
    param_ref: RevSrc
  - group: Profit
    precedence: 3
    logic: SUBTRACT
    param_ref: Revenue
    param2_ref: Costs
`

func TestLoad_FullDocument(t *testing.T) {
	file, err := Load([]byte(fullDocument))
	require.NoError(t, err)

	cfg := file.Config
	assert.Equal(t, "gross_sales", cfg.Name)
	assert.Equal(t, "PNL", cfg.ReportType)
	assert.Equal(t, "400", cfg.AccountSegment)
	assert.Equal(t, "FACT_GL", cfg.FactTable)
	assert.True(t, cfg.HasSignChange)
	assert.False(t, cfg.HasExclusions)

	require.Len(t, cfg.JoinPatterns, 2)
	assert.Equal(t, "F.SOURCE = 'POS'", cfg.JoinPatterns[1].Filter)

	// Mappings keep document order, alias entries appended after.
	require.Len(t, cfg.DynamicColumnMap, 3)
	assert.Equal(t, mart.DynamicColumnMapping{IDSource: "PRODUCT_CODE", PhysicalColumn: "PROD_CD"}, cfg.DynamicColumnMap[0])
	assert.Equal(t, mart.DynamicColumnMapping{IDSource: "ACCOUNT_CODE", PhysicalColumn: "ACCT_CD"}, cfg.DynamicColumnMap[1])
	assert.Equal(t, mart.DynamicColumnMapping{IDSource: "ACOUNT_CODE", PhysicalColumn: "ACCT_CD", IsAlias: true}, cfg.DynamicColumnMap[2])

	assert.Equal(t, map[string]string{"ACOUNT_CODE": "ACCOUNT_CODE"}, file.Aliases)

	require.Len(t, file.Formulas, 2)
	assert.Equal(t, mart.OpSum, file.Formulas[0].Logic)
	assert.Equal(t, 1, file.Formulas[0].Precedence)
	assert.Equal(t, mart.OpSubtract, file.Formulas[1].Logic)
	assert.Equal(t, "Costs", file.Formulas[1].Param2Ref)
}

func TestLoad_MinimalDocument(t *testing.T) {
	file, err := Load([]byte("name: tiny\nhierarchy_table: H\nmapping_table: M\nfact_table: F\n"))
	require.NoError(t, err)
	assert.Equal(t, "tiny", file.Config.Name)
	assert.Empty(t, file.Config.DynamicColumnMap)
	assert.Empty(t, file.Formulas)
	assert.Empty(t, file.Aliases)
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load([]byte("name: x\nmaterialized: table\n"))
	require.Error(t, err)

	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "materialized", unknown.Field)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load([]byte("name: [unclosed"))
	require.Error(t, err)

	var parseErr *ConfigParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Message, "invalid YAML")
}

func TestLoad_ShorthandLogic(t *testing.T) {
	doc := `
name: x
formulas:
  - group: Margin
    precedence: 2
    logic: MINUS
    param_ref: Revenue
    param2_ref: Costs
`
	file, err := Load([]byte(doc))
	require.NoError(t, err)
	require.Len(t, file.Formulas, 1)
	assert.Equal(t, mart.OpSubtract, file.Formulas[0].Logic)
}

func TestLoad_FormulaErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{
			name:    "missing group",
			doc:     "formulas:\n  - precedence: 1\n    logic: SUM\n    param_ref: X\n",
			wantMsg: "has no group",
		},
		{
			name:    "precedence out of range",
			doc:     "formulas:\n  - group: A\n    precedence: 7\n    logic: SUM\n    param_ref: X\n",
			wantMsg: "want 1..5",
		},
		{
			name:    "unknown logic",
			doc:     "formulas:\n  - group: A\n    precedence: 1\n    logic: EXPONENT\n    param_ref: X\n",
			wantMsg: `unknown logic "EXPONENT"`,
		},
		{
			name:    "missing param_ref",
			doc:     "formulas:\n  - group: A\n    precedence: 1\n    logic: SUM\n",
			wantMsg: "has no param_ref",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_AliasWithoutMapping(t *testing.T) {
	doc := "name: x\naliases:\n  ACOUNT_CODE: ACCOUNT_CODE\n"
	_, err := Load([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dynamic_column_map entry")
}

func TestLoad_ColumnMapMustBeMapping(t *testing.T) {
	doc := "name: x\ndynamic_column_map:\n  - ACCOUNT_CODE\n"
	_, err := Load([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a mapping")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "net_revenue.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hierarchy_table: H\nmapping_table: M\nfact_table: F\n"), 0o644))

	file, err := LoadFile(path)
	require.NoError(t, err)
	// Name defaults to the file stem.
	assert.Equal(t, "net_revenue", file.Config.Name)
}

func TestLoadFile_ErrorCarriesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nonsense_key: 1\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
