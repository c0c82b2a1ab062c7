package formula

import (
	"strconv"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// Chain buckets formulas by precedence level. Every level from
// mart.MinPrecedence to mart.MaxPrecedence is present, possibly empty.
type Chain map[int][]mart.Formula

// BuildPrecedenceChain groups formulas into their levels. Formulas whose
// level falls outside the valid range are dropped with a warning and appear
// in no bucket.
func BuildPrecedenceChain(fs []mart.Formula) (Chain, []mart.Diagnostic) {
	chain := make(Chain, mart.MaxPrecedence)
	for level := mart.MinPrecedence; level <= mart.MaxPrecedence; level++ {
		chain[level] = nil
	}

	var warnings []mart.Diagnostic
	for _, f := range fs {
		if f.Precedence < mart.MinPrecedence || f.Precedence > mart.MaxPrecedence {
			warnings = append(warnings, mart.Warnf("FM04",
				"formula %q has precedence %d outside [%d,%d] and was dropped",
				f.Group, f.Precedence, mart.MinPrecedence, mart.MaxPrecedence).
				With("group", f.Group))
			continue
		}
		chain[f.Precedence] = append(chain[f.Precedence], f)
	}

	return chain, warnings
}

// ValidateDependencies enforces the strict layering rule: every operand
// reference that names another formula group must resolve to a strictly
// lower precedence level. References that match no group are warnings only
// (they may resolve against the base dataset).
// Duplicate group labels at different levels are warnings. The result is
// valid when there are no errors; warnings never block generation.
func ValidateDependencies(fs []mart.Formula) mart.ValidationResult {
	var res mart.ValidationResult

	// First declaration wins for lookup, matching cascade rendering order.
	levels := make(map[string]int, len(fs))
	for _, f := range fs {
		key := strings.ToUpper(f.Group)
		if existing, seen := levels[key]; seen {
			if existing != f.Precedence {
				res.Add(mart.Warnf("FM03",
					"formula group %q is defined at both P%d and P%d; the P%d definition is authoritative",
					f.Group, existing, f.Precedence, existing).
					With("group", f.Group))
			}
			continue
		}
		levels[key] = f.Precedence
	}

	for _, f := range fs {
		for _, ref := range f.Refs() {
			refLevel, known := levels[strings.ToUpper(ref)]
			if !known {
				res.Add(mart.Warnf("FM01",
					"%s references unknown group %q", f.Group, ref).
					With("group", f.Group).
					With("ref", ref))
				continue
			}
			if refLevel >= f.Precedence {
				res.Add(mart.Errorf("FM02",
					"formula at P%d references %q at P%d: dependency must have lower precedence",
					f.Precedence, ref, refLevel).
					With("group", f.Group).
					With("ref", ref).
					With("level", strconv.Itoa(f.Precedence)).
					With("ref_level", strconv.Itoa(refLevel)))
			}
		}
	}

	return res
}
