// Package formula implements the five-level calculation cascade: extraction
// of formula definitions from hierarchy rows, precedence grouping, strict
// lower-level dependency validation, and staged SQL generation.
package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// Row is one mapping-like input record. Key lookup is case-insensitive.
type Row = map[string]any

// Field names recognized on input rows.
const (
	FieldGroup      = "FORMULA_GROUP"
	FieldPrecedence = "FORMULA_PRECEDENCE"
	FieldLogic      = "FORMULA_LOGIC"
	FieldParamRef   = "FORMULA_PARAM_REF"
	FieldParam2Ref  = "FORMULA_PARAM2_REF"
)

// DroppedRow records one input row that did not become a formula, so callers
// can surface data-quality problems without extraction failing.
type DroppedRow struct {
	// Index is the row's position in the input.
	Index int
	// Group is the row's formula group label, when present.
	Group string
	// Reason describes why the row was dropped or defaulted.
	Reason string
}

// ExtractResult is the outcome of one extraction pass. Rows without a
// formula group are not calculation rows and are skipped without record;
// rows that carry a group but cannot be parsed land in Dropped, and rows
// whose logic label was not recognized land in Defaulted (they still
// produce a formula, with SUM).
type ExtractResult struct {
	Formulas  []mart.Formula
	Dropped   []DroppedRow
	Defaulted []DroppedRow
}

// Extract filters input rows to calculation rows and parses them into
// formulas. Extraction never fails: malformed rows degrade by omission and
// are reported in the result.
func Extract(rows []Row) ExtractResult {
	var res ExtractResult

	for i, row := range rows {
		group := strings.TrimSpace(lookupString(row, FieldGroup))
		if group == "" {
			continue
		}

		level, ok := coercePrecedence(lookup(row, FieldPrecedence))
		if !ok {
			res.Dropped = append(res.Dropped, DroppedRow{
				Index:  i,
				Group:  group,
				Reason: fmt.Sprintf("precedence %v does not coerce to an integer in [%d,%d]", lookup(row, FieldPrecedence), mart.MinPrecedence, mart.MaxPrecedence),
			})
			continue
		}

		paramRef := strings.TrimSpace(lookupString(row, FieldParamRef))
		if paramRef == "" {
			res.Dropped = append(res.Dropped, DroppedRow{
				Index:  i,
				Group:  group,
				Reason: "missing primary parameter reference",
			})
			continue
		}

		logicLabel := lookupString(row, FieldLogic)
		logic, recognized := mart.ParseOperation(logicLabel)
		if !recognized && strings.TrimSpace(logicLabel) != "" {
			res.Defaulted = append(res.Defaulted, DroppedRow{
				Index:  i,
				Group:  group,
				Reason: fmt.Sprintf("unrecognized logic label %q defaulted to SUM", logicLabel),
			})
		}

		param2, extras := splitSecondaryRefs(lookupString(row, FieldParam2Ref))

		res.Formulas = append(res.Formulas, mart.Formula{
			Group:      group,
			Precedence: level,
			Logic:      logic,
			ParamRef:   paramRef,
			Param2Ref:  param2,
			ExtraRefs:  extras,
		})
	}

	return res
}

// splitSecondaryRefs splits the secondary reference field, which may carry
// further comma-separated operands ("Costs, Freight" -> "Costs" + extras).
func splitSecondaryRefs(raw string) (string, []string) {
	parts := strings.Split(raw, ",")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return "", nil
	}
	return cleaned[0], cleaned[1:]
}

// coercePrecedence accepts the numeric shapes upstream rows arrive in.
func coercePrecedence(v any) (int, bool) {
	var level int
	switch n := v.(type) {
	case int:
		level = n
	case int64:
		level = int(n)
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		level = int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		level = parsed
	default:
		return 0, false
	}
	if level < mart.MinPrecedence || level > mart.MaxPrecedence {
		return 0, false
	}
	return level, true
}

func lookup(row Row, key string) any {
	if v, ok := row[key]; ok {
		return v
	}
	for k, v := range row {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func lookupString(row Row, key string) string {
	v := lookup(row, key)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
