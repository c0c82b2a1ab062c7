package formula

import (
	"fmt"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// Cascade columns. Computed rows carry the formula's group label; the
// measure is the operation applied to the referenced groups' sums.
const (
	colGroup  = "FORMULA_GROUP"
	colAmount = "AMOUNT"
)

// GenerateCascade renders the level-by-level calculation cascade as a CTE
// chain. Level 1 reads baseSource; each later level reads the previous
// stage, so level 5's output is the final result. Every stage is the
// previous stage's rows UNION ALL the rows computed at that level. A set
// with no formulas renders as a plain passthrough over baseSource.
//
// Callers are expected to gate on ValidateDependencies before rendering;
// out-of-range levels are excluded here the same way BuildPrecedenceChain
// excludes them.
func GenerateCascade(fs []mart.Formula, baseSource string) (string, error) {
	if strings.TrimSpace(baseSource) == "" {
		return "", fmt.Errorf("cascade requires a base source")
	}

	chain, _ := BuildPrecedenceChain(fs)
	total := 0
	for _, bucket := range chain {
		total += len(bucket)
	}
	if total == 0 {
		return fmt.Sprintf("SELECT %s, %s\nFROM %s", colGroup, colAmount, baseSource), nil
	}

	var b strings.Builder
	b.WriteString("WITH ")
	source := baseSource
	for level := mart.MinPrecedence; level <= mart.MaxPrecedence; level++ {
		stage := stageName(level)
		if level > mart.MinPrecedence {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s AS (\n", stage)
		fmt.Fprintf(&b, "    SELECT %s, %s\n    FROM %s\n", colGroup, colAmount, source)
		for _, f := range chain[level] {
			expr, err := measureExpr(f)
			if err != nil {
				return "", err
			}
			b.WriteString("    UNION ALL\n")
			fmt.Fprintf(&b, "    SELECT %s AS %s,\n        %s AS %s\n    FROM %s\n",
				quoteLiteral(f.Group), colGroup, expr, colAmount, source)
		}
		b.WriteString(")")
		source = stage
	}
	fmt.Fprintf(&b, "\nSELECT %s, %s\nFROM %s", colGroup, colAmount, source)

	return b.String(), nil
}

// stageName names the CTE for one precedence level.
func stageName(level int) string {
	return fmt.Sprintf("CASCADE_P%d", level)
}

// measureExpr renders the formula's measure. The switch is exhaustive over
// the closed Operation set; an unknown value is a programming error
// surfaced as an error, not a silent SUM.
func measureExpr(f mart.Formula) (string, error) {
	switch f.Logic {
	case mart.OpSum:
		terms := []string{groupSum(f.ParamRef)}
		for _, r := range f.SecondaryRefs() {
			terms = append(terms, groupSum(r))
		}
		if len(terms) == 1 {
			return terms[0], nil
		}
		return "(" + strings.Join(terms, " + ") + ")", nil

	case mart.OpSubtract:
		secondary := f.SecondaryRefs()
		if len(secondary) == 0 {
			// A missing subtrahend contributes nothing.
			return "(" + groupSum(f.ParamRef) + " - 0)", nil
		}
		terms := make([]string, 0, len(secondary))
		for _, r := range secondary {
			terms = append(terms, groupSum(r))
		}
		return "(" + groupSum(f.ParamRef) + " - " + strings.Join(terms, " - ") + ")", nil

	case mart.OpMultiply:
		secondary := f.SecondaryRefs()
		if len(secondary) == 0 {
			// A missing factor is the identity.
			return "(" + groupSum(f.ParamRef) + " * 1)", nil
		}
		terms := make([]string, 0, len(secondary))
		for _, r := range secondary {
			terms = append(terms, groupSum(r))
		}
		return "(" + groupSum(f.ParamRef) + " * " + strings.Join(terms, " * ") + ")", nil

	case mart.OpDivide:
		// DIV0 masks a zero divisor to 0: these values feed a report, so a
		// zero-division degrades instead of propagating.
		if f.Param2Ref == "" {
			return fmt.Sprintf("DIV0(%s, 0)", groupSum(f.ParamRef)), nil
		}
		return fmt.Sprintf("DIV0(%s, %s)", groupSum(f.ParamRef), groupSum(f.Param2Ref)), nil

	case mart.OpAverage:
		// No ELSE arm: rows outside the group stay NULL and drop out of AVG.
		return fmt.Sprintf("AVG(CASE WHEN %s = %s THEN %s END)",
			colGroup, quoteLiteral(f.ParamRef), colAmount), nil
	}

	return "", fmt.Errorf("unhandled formula operation %v", f.Logic)
}

// groupSum renders the aggregate sum of one referenced group's measure.
func groupSum(ref string) string {
	return fmt.Sprintf("SUM(CASE WHEN %s = %s THEN %s ELSE 0 END)",
		colGroup, quoteLiteral(ref), colAmount)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
