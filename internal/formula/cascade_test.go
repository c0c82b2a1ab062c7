package formula

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

func TestGenerateCascadePassthrough(t *testing.T) {
	// Conservation: with zero formulas the cascade is the base unchanged.
	sql, err := GenerateCascade(nil, "DT_3A_SALES_PREAGG")
	require.NoError(t, err)
	assert.Equal(t, "SELECT FORMULA_GROUP, AMOUNT\nFROM DT_3A_SALES_PREAGG", sql)
}

func TestGenerateCascadeRequiresBase(t *testing.T) {
	_, err := GenerateCascade(nil, "  ")
	require.Error(t, err)
}

func TestGenerateCascadeStagesChain(t *testing.T) {
	fs := []mart.Formula{
		{Group: "Revenue", Precedence: 1, Logic: mart.OpSum, ParamRef: "RevSrc"},
		{Group: "Profit", Precedence: 3, Logic: mart.OpSubtract, ParamRef: "Revenue", Param2Ref: "Costs"},
	}

	sql, err := GenerateCascade(fs, "BASE")
	require.NoError(t, err)

	// All five stages exist and feed each other in order.
	for level := 1; level <= 5; level++ {
		assert.Contains(t, sql, stageName(level))
	}
	assert.Less(t, strings.Index(sql, "CASCADE_P1"), strings.Index(sql, "CASCADE_P2"))
	assert.Contains(t, sql, "FROM BASE")
	assert.Contains(t, sql, "FROM CASCADE_P4")
	assert.True(t, strings.HasSuffix(sql, "FROM CASCADE_P5"))

	// Level 1 computes Revenue from the base; level 3 computes Profit from P2.
	assert.Contains(t, sql, "'Revenue' AS FORMULA_GROUP")
	assert.Contains(t, sql, "'Profit' AS FORMULA_GROUP")
	profitIdx := strings.Index(sql, "'Profit'")
	p2Idx := strings.Index(sql, "CASCADE_P2 AS")
	assert.Greater(t, profitIdx, p2Idx, "Profit is computed after stage P2 exists")
}

func TestGenerateCascadeDeterministic(t *testing.T) {
	fs := []mart.Formula{
		{Group: "A", Precedence: 1, Logic: mart.OpSum, ParamRef: "X"},
		{Group: "B", Precedence: 1, Logic: mart.OpAverage, ParamRef: "Y"},
		{Group: "C", Precedence: 2, Logic: mart.OpDivide, ParamRef: "A", Param2Ref: "B"},
	}

	first, err := GenerateCascade(fs, "BASE")
	require.NoError(t, err)
	second, err := GenerateCascade(fs, "BASE")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Same-level formulas render in declaration order.
	assert.Less(t, strings.Index(first, "'A'"), strings.Index(first, "'B'"))
}

func TestMeasureExprTable(t *testing.T) {
	tests := []struct {
		name string
		f    mart.Formula
		want string
	}{
		{
			name: "sum",
			f:    mart.Formula{Logic: mart.OpSum, ParamRef: "Rev"},
			want: "SUM(CASE WHEN FORMULA_GROUP = 'Rev' THEN AMOUNT ELSE 0 END)",
		},
		{
			name: "sum with extras adds them",
			f:    mart.Formula{Logic: mart.OpSum, ParamRef: "Rev", Param2Ref: "Other"},
			want: "(SUM(CASE WHEN FORMULA_GROUP = 'Rev' THEN AMOUNT ELSE 0 END) + SUM(CASE WHEN FORMULA_GROUP = 'Other' THEN AMOUNT ELSE 0 END))",
		},
		{
			name: "subtract with missing secondary treats it as zero",
			f:    mart.Formula{Logic: mart.OpSubtract, ParamRef: "Rev"},
			want: "(SUM(CASE WHEN FORMULA_GROUP = 'Rev' THEN AMOUNT ELSE 0 END) - 0)",
		},
		{
			name: "subtract chains every secondary operand",
			f:    mart.Formula{Logic: mart.OpSubtract, ParamRef: "Rev", Param2Ref: "Costs", ExtraRefs: []string{"Freight"}},
			want: "(SUM(CASE WHEN FORMULA_GROUP = 'Rev' THEN AMOUNT ELSE 0 END) - SUM(CASE WHEN FORMULA_GROUP = 'Costs' THEN AMOUNT ELSE 0 END) - SUM(CASE WHEN FORMULA_GROUP = 'Freight' THEN AMOUNT ELSE 0 END))",
		},
		{
			name: "multiply with missing secondary is identity",
			f:    mart.Formula{Logic: mart.OpMultiply, ParamRef: "Qty"},
			want: "(SUM(CASE WHEN FORMULA_GROUP = 'Qty' THEN AMOUNT ELSE 0 END) * 1)",
		},
		{
			name: "multiply with secondary",
			f:    mart.Formula{Logic: mart.OpMultiply, ParamRef: "Qty", Param2Ref: "Price"},
			want: "(SUM(CASE WHEN FORMULA_GROUP = 'Qty' THEN AMOUNT ELSE 0 END) * SUM(CASE WHEN FORMULA_GROUP = 'Price' THEN AMOUNT ELSE 0 END))",
		},
		{
			name: "divide masks zero divisor",
			f:    mart.Formula{Logic: mart.OpDivide, ParamRef: "Profit", Param2Ref: "Revenue"},
			want: "DIV0(SUM(CASE WHEN FORMULA_GROUP = 'Profit' THEN AMOUNT ELSE 0 END), SUM(CASE WHEN FORMULA_GROUP = 'Revenue' THEN AMOUNT ELSE 0 END))",
		},
		{
			name: "divide with missing secondary divides by zero safely",
			f:    mart.Formula{Logic: mart.OpDivide, ParamRef: "Profit"},
			want: "DIV0(SUM(CASE WHEN FORMULA_GROUP = 'Profit' THEN AMOUNT ELSE 0 END), 0)",
		},
		{
			name: "average keeps non-group rows out of the mean",
			f:    mart.Formula{Logic: mart.OpAverage, ParamRef: "Daily"},
			want: "AVG(CASE WHEN FORMULA_GROUP = 'Daily' THEN AMOUNT END)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := measureExpr(tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMeasureExprEscapesQuotes(t *testing.T) {
	got, err := measureExpr(mart.Formula{Logic: mart.OpSum, ParamRef: "O'Brien"})
	require.NoError(t, err)
	assert.Contains(t, got, "'O''Brien'")
}

func TestGenerateCascadeSkipsOutOfRangeLevels(t *testing.T) {
	fs := []mart.Formula{
		{Group: "Good", Precedence: 2, Logic: mart.OpSum, ParamRef: "X"},
		{Group: "Bad", Precedence: 9, Logic: mart.OpSum, ParamRef: "Y"},
	}

	sql, err := GenerateCascade(fs, "BASE")
	require.NoError(t, err)
	assert.Contains(t, sql, "'Good'")
	assert.NotContains(t, sql, "'Bad'")
}
