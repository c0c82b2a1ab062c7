package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

func TestValidateUnknownReferenceIsWarning(t *testing.T) {
	// Costs is undefined: Profit gets a warning, not an error, because the
	// reference may resolve against the base dataset.
	fs := []mart.Formula{
		{Group: "Revenue", Precedence: 1, Logic: mart.OpSum, ParamRef: "RevSrc"},
		{Group: "Profit", Precedence: 3, Logic: mart.OpSubtract, ParamRef: "Revenue", Param2Ref: "Costs"},
	}

	res := ValidateDependencies(fs)

	assert.True(t, res.Valid())
	assert.Empty(t, res.Errors)

	// RevSrc and Costs are both unknown groups.
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, "FM01", res.Warnings[1].Code)
	assert.Contains(t, res.Warnings[1].Message, "Profit")
	assert.Contains(t, res.Warnings[1].Message, `"Costs"`)
}

func TestValidateSameLevelCycleIsTwoErrors(t *testing.T) {
	fs := []mart.Formula{
		{Group: "A", Precedence: 2, ParamRef: "B"},
		{Group: "B", Precedence: 2, ParamRef: "A"},
	}

	res := ValidateDependencies(fs)

	assert.False(t, res.Valid())
	require.Len(t, res.Errors, 2)
	for _, e := range res.Errors {
		assert.Equal(t, "FM02", e.Code)
		assert.Contains(t, e.Message, "lower precedence")
	}
}

func TestValidateForwardReferenceIsError(t *testing.T) {
	fs := []mart.Formula{
		{Group: "Early", Precedence: 1, ParamRef: "Late"},
		{Group: "Late", Precedence: 4, ParamRef: "Early"},
	}

	res := ValidateDependencies(fs)

	assert.False(t, res.Valid())
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "P1 references")
	assert.Contains(t, res.Errors[0].Message, "P4")
	assert.Equal(t, "Early", res.Errors[0].Context["group"])
}

func TestValidateSelfReference(t *testing.T) {
	fs := []mart.Formula{
		{Group: "Loop", Precedence: 3, ParamRef: "Loop"},
	}

	res := ValidateDependencies(fs)

	assert.False(t, res.Valid())
	require.Len(t, res.Errors, 1)
}

func TestValidateExtraReferences(t *testing.T) {
	// Extras parsed off the secondary field follow the same layering rule.
	fs := []mart.Formula{
		{Group: "Gross", Precedence: 1, ParamRef: "TradeSales"},
		{Group: "Peer", Precedence: 2, ParamRef: "Gross"},
		{Group: "Net", Precedence: 2, ParamRef: "Gross", Param2Ref: "Rebates", ExtraRefs: []string{"Peer"}},
	}

	res := ValidateDependencies(fs)

	assert.False(t, res.Valid())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "FM02", res.Errors[0].Code)
	assert.Equal(t, "Peer", res.Errors[0].Context["ref"])
}

func TestValidateDuplicateGroupAcrossLevels(t *testing.T) {
	fs := []mart.Formula{
		{Group: "Margin", Precedence: 2, ParamRef: "X"},
		{Group: "Margin", Precedence: 4, ParamRef: "Y"},
	}

	res := ValidateDependencies(fs)

	assert.True(t, res.Valid())
	found := false
	for _, w := range res.Warnings {
		if w.Code == "FM03" {
			found = true
			assert.Contains(t, w.Message, "P2")
			assert.Contains(t, w.Message, "P4")
		}
	}
	assert.True(t, found, "expected FM03 duplicate-group warning, got %+v", res.Warnings)
}

func TestValidateDuplicateAtSameLevelIsQuiet(t *testing.T) {
	fs := []mart.Formula{
		{Group: "Margin", Precedence: 2, ParamRef: "X"},
		{Group: "margin", Precedence: 2, ParamRef: "Y"},
	}

	res := ValidateDependencies(fs)

	for _, w := range res.Warnings {
		assert.NotEqual(t, "FM03", w.Code, "same-level duplicates are not level-ambiguous")
	}
}

// Precedence monotonicity: valid is true exactly when every reference that
// matches a known group sits at a strictly lower level.
func TestValidateMonotonicityProperty(t *testing.T) {
	tests := []struct {
		name      string
		fs        []mart.Formula
		wantValid bool
	}{
		{
			name: "strictly descending chain",
			fs: []mart.Formula{
				{Group: "L1", Precedence: 1, ParamRef: "Base"},
				{Group: "L2", Precedence: 2, ParamRef: "L1"},
				{Group: "L3", Precedence: 3, ParamRef: "L2", Param2Ref: "L1"},
				{Group: "L5", Precedence: 5, ParamRef: "L3"},
			},
			wantValid: true,
		},
		{
			name: "equal level reference",
			fs: []mart.Formula{
				{Group: "L1", Precedence: 1, ParamRef: "Base"},
				{Group: "Peer", Precedence: 1, ParamRef: "L1"},
			},
			wantValid: false,
		},
		{
			name: "secondary reference violates",
			fs: []mart.Formula{
				{Group: "Low", Precedence: 2, ParamRef: "Base"},
				{Group: "High", Precedence: 4, ParamRef: "Base"},
				{Group: "Mixed", Precedence: 3, ParamRef: "Low", Param2Ref: "High"},
			},
			wantValid: false,
		},
		{
			name: "only unknown references",
			fs: []mart.Formula{
				{Group: "Solo", Precedence: 5, ParamRef: "Mystery", Param2Ref: "Enigma"},
			},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateDependencies(tt.fs)
			assert.Equal(t, tt.wantValid, res.Valid(), "errors: %+v", res.Errors)

			// Cross-check against the rule stated directly.
			levels := map[string]int{}
			for _, f := range tt.fs {
				if _, ok := levels[f.Group]; !ok {
					levels[f.Group] = f.Precedence
				}
			}
			expect := true
			for _, f := range tt.fs {
				for _, ref := range []string{f.ParamRef, f.Param2Ref} {
					if ref == "" {
						continue
					}
					if lvl, ok := levels[ref]; ok && lvl >= f.Precedence {
						expect = false
					}
				}
			}
			assert.Equal(t, expect, res.Valid())
		})
	}
}
