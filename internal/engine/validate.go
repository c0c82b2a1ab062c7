package engine

import (
	"fmt"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/discovery"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/formula"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/loader"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/normalizer"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// Check statuses.
const (
	CheckPass    = "pass"
	CheckWarning = "warning"
	CheckError   = "error"
)

// Check groups, in report order.
const (
	GroupConfiguration = "configuration"
	GroupFormulas      = "formulas"
	GroupIdentifiers   = "identifiers"
)

// Check is one validation finding, or a pass marker for a clean group.
type Check struct {
	Code    string `json:"code,omitempty"`
	Group   string `json:"group"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ValidateReport is the full validation outcome for one mart.
type ValidateReport struct {
	Mart            string   `json:"mart"`
	Checks          []Check  `json:"checks"`
	Errors          int      `json:"errors"`
	Warnings        int      `json:"warnings"`
	Score           int      `json:"score"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Valid reports whether the mart would render.
func (r *ValidateReport) Valid() bool {
	return r.Errors == 0
}

// Validate checks the selected mart definitions without rendering or
// touching the target. Each report carries the grouped findings, a health
// score and remediation hints.
func (e *Engine) Validate(names []string) ([]*ValidateReport, error) {
	files, err := e.loadMarts(names)
	if err != nil {
		return nil, err
	}

	reports := make([]*ValidateReport, 0, len(files))
	for _, f := range files {
		reports = append(reports, e.validateMart(f))
	}
	return reports, nil
}

func (e *Engine) validateMart(f *loader.MartFile) *ValidateReport {
	report := &ValidateReport{Mart: f.Config.Name}

	cfgRes := f.Config.Validate()
	report.Checks = appendGroupChecks(report.Checks, GroupConfiguration,
		"configuration is structurally valid", cfgRes)

	fmRes := formula.ValidateDependencies(f.Formulas)
	_, dropped := formula.BuildPrecedenceChain(f.Formulas)
	for _, d := range dropped {
		fmRes.Add(d)
	}
	report.Checks = appendGroupChecks(report.Checks, GroupFormulas,
		formulaPassMessage(len(f.Formulas)), fmRes)

	dqRes := e.checkIdentifiers(f)
	report.Checks = appendGroupChecks(report.Checks, GroupIdentifiers,
		"all id_source values match known identifiers", dqRes)

	for _, c := range report.Checks {
		switch c.Status {
		case CheckError:
			report.Errors++
		case CheckWarning:
			report.Warnings++
		}
	}
	report.Score = healthScore(report.Errors, report.Warnings)
	report.Recommendations = recommendations(report.Checks)

	e.logger.Debug("validated mart",
		"mart", f.Config.Name,
		"errors", report.Errors,
		"warnings", report.Warnings,
		"score", report.Score)
	return report
}

// checkIdentifiers dry-runs the normalizer over the mapping table. Entries
// already marked is_alias are intentional corrections and are skipped.
func (e *Engine) checkIdentifiers(f *loader.MartFile) mart.ValidationResult {
	var res mart.ValidationResult
	norm := normalizer.New(discovery.CanonicalIDs(), normalizer.Config{
		Aliases: f.Aliases,
		Logger:  e.logger,
	})
	for _, m := range f.Config.DynamicColumnMap {
		if m.IsAlias {
			continue
		}
		r := norm.Normalize(m.IDSource)
		switch {
		case r.Confidence == 0:
			d := mart.Warnf("DQ03", "id_source %q matches no known identifier", m.IDSource)
			if r.Suggestion != "" {
				d = mart.Warnf("DQ03", "id_source %q matches no known identifier (closest: %s)",
					m.IDSource, r.Suggestion)
			}
			res.Add(d.With("id_source", m.IDSource))
		case r.WasAliased:
			res.Add(mart.Warnf("DQ01",
				"id_source %q resolves to %q at confidence %.2f; use the canonical name or mark it is_alias",
				m.IDSource, r.Normalized, r.Confidence).With("id_source", m.IDSource))
		}
	}
	return res
}

// appendGroupChecks converts one group's diagnostics to checks. A group with
// no findings contributes a single pass row so clean groups stay visible.
func appendGroupChecks(checks []Check, group, passMsg string, res mart.ValidationResult) []Check {
	if len(res.Errors) == 0 && len(res.Warnings) == 0 {
		return append(checks, Check{Group: group, Status: CheckPass, Message: passMsg})
	}
	for _, d := range res.Errors {
		checks = append(checks, Check{Code: d.Code, Group: group, Status: CheckError, Message: d.Message})
	}
	for _, d := range res.Warnings {
		checks = append(checks, Check{Code: d.Code, Group: group, Status: CheckWarning, Message: d.Message})
	}
	return checks
}

func formulaPassMessage(count int) string {
	if count == 0 {
		return "no formulas defined"
	}
	return fmt.Sprintf("%d formula(s), dependencies respect precedence order", count)
}

// healthScore starts at 100 and subtracts 10 per error and 3 per warning,
// clamped to [0, 100].
func healthScore(errors, warnings int) int {
	score := 100 - errors*10 - warnings*3
	if score < 0 {
		return 0
	}
	return score
}

// recommendationTexts maps diagnostic codes to remediation hints.
var recommendationTexts = map[string]string{
	"CF01": "Set a name in the mart definition; object names derive from it",
	"CF02": "Fill in hierarchy_table, mapping_table and fact_table",
	"CF03": "Pair every join key with exactly one fact key",
	"CF04": "Rename duplicate join patterns; branch names must be unique",
	"CF05": "Give every join pattern a name and at least one join key",
	"CF06": "Remove duplicate id_source entries; the first mapping wins",
	"CF07": "Add dynamic column mappings so the translation view resolves identifiers",
	"CF09": "Set account_segment to filter fact rows in the pre-aggregation",
	"FM01": "Point formula references at defined groups or base measures",
	"FM02": "Move dependent formulas to a higher precedence than their references",
	"FM03": "Define each formula group at a single precedence level",
	"FM04": "Use precedence levels 1 through 5",
	"DQ01": "Replace near-miss id_source values with their canonical names or mark them is_alias",
	"DQ03": "Check unknown id_source values against the mapping table extract",
}

// recommendations derives deduplicated remediation hints from the failing
// checks, capped at five.
func recommendations(checks []Check) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range checks {
		if c.Status == CheckPass || c.Code == "" {
			continue
		}
		text, ok := recommendationTexts[c.Code]
		if !ok || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
		if len(out) == 5 {
			break
		}
	}
	return out
}
