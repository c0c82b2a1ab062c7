// Package discovery proposes a starting mart configuration from observed
// identifier and table-name histograms. Everything it produces is a
// suggestion: issues are advisory data-quality flags, never blocking errors,
// and the caller reviews the proposed config before rendering anything.
package discovery

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/normalizer"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// Issue codes.
const (
	// CodeTypo flags an identifier that is close to, but not exactly, a
	// known canonical value.
	CodeTypo = "DQ01"
	// CodeCoverage flags thin mapping coverage per hierarchy node.
	CodeCoverage = "DQ02"
)

// typoFloor is the similarity at which a near-miss is worth flagging, below
// the normalizer's accept threshold on purpose: an 0.82 match is not safe to
// auto-correct but is very likely a typo someone should look at.
const typoFloor = 0.8

// coverageFloor is the minimum average mappings-per-node before coverage is
// flagged.
const coverageFloor = 1.5

// IssueSeverity grades discovery issues.
type IssueSeverity int

const (
	SeverityLow IssueSeverity = iota
	SeverityMedium
	SeverityHigh
)

// String returns the lowercase severity label.
func (s IssueSeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Issue is one advisory data-quality flag.
type Issue struct {
	Code     string
	Severity IssueSeverity
	Message  string
	// Subject is the identifier or metric the issue is about.
	Subject string
}

// Observation is the input the heuristics run over: frequency histograms
// gathered from a mapping extract or a live query.
type Observation struct {
	// IDCounts maps each observed ID_SOURCE value to its row count.
	IDCounts map[string]int
	// TableCounts maps each observed table name to its reference count.
	TableCounts map[string]int
	// NodeCount is the number of distinct hierarchy nodes observed.
	NodeCount int
}

// Result is a proposed configuration starting point.
type Result struct {
	// HierarchyType is the detected type label, or UNKNOWN.
	HierarchyType string
	// TypeScore is the raw keyword-hit count behind the label.
	TypeScore int
	// Patterns are the suggested join patterns, in rule order.
	Patterns []mart.JoinPattern
	// Mappings are the suggested column mappings, alphabetical by source.
	Mappings []mart.DynamicColumnMapping
	// Issues are advisory flags, typo candidates first.
	Issues []Issue
	// Confidence is the weighted heuristic confidence in [0, 1].
	Confidence float64
	// IDHistogram echoes the observed identifier counts.
	IDHistogram map[string]int
}

// Config holds the discoverer's collaborators. All fields are optional.
type Config struct {
	// Normalizer matches observed identifiers against the canonical set.
	// Defaults to one built over the known mapping identifiers.
	Normalizer *normalizer.Normalizer

	// Logger receives per-suggestion debug lines.
	Logger *slog.Logger
}

// Discoverer runs the suggestion heuristics.
type Discoverer struct {
	norm   *normalizer.Normalizer
	logger *slog.Logger
}

// New creates a Discoverer. A nil config selects all defaults.
func New(config *Config) *Discoverer {
	if config == nil {
		config = &Config{}
	}
	d := &Discoverer{
		norm:   config.Normalizer,
		logger: config.Logger,
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	if d.norm == nil {
		d.norm = normalizer.New(CanonicalIDs(), normalizer.Config{Logger: d.logger})
	}
	return d
}

// Discover proposes a configuration from one observation.
func (d *Discoverer) Discover(obs Observation) Result {
	res := Result{
		IDHistogram: obs.IDCounts,
	}
	res.HierarchyType, res.TypeScore = d.detectType(obs)
	res.Patterns = d.suggestPatterns(obs)
	res.Mappings, res.Issues = d.suggestMappings(obs)
	if issue, flagged := coverageIssue(obs); flagged {
		res.Issues = append(res.Issues, issue)
	}
	res.Confidence = confidence(res)

	d.logger.Debug("discovery finished",
		"type", res.HierarchyType,
		"patterns", len(res.Patterns),
		"mappings", len(res.Mappings),
		"issues", len(res.Issues),
		"confidence", res.Confidence)
	return res
}

// detectType scores every lexicon entry against the observed names and
// returns the first highest scorer. No hits at all means UNKNOWN.
func (d *Discoverer) detectType(obs Observation) (string, int) {
	names := observedNames(obs)

	bestLabel, bestScore := TypeUnknown, 0
	for _, entry := range hierarchyLexicon {
		score := 0
		for _, name := range names {
			lower := strings.ToLower(name)
			for _, kw := range entry.keywords {
				if strings.Contains(lower, kw) {
					score++
				}
			}
		}
		if score > bestScore {
			bestLabel, bestScore = entry.label, score
		}
	}
	return bestLabel, bestScore
}

// suggestPatterns applies the rule table against the observed table names.
func (d *Discoverer) suggestPatterns(obs Observation) []mart.JoinPattern {
	tables := sortedKeys(obs.TableCounts)

	var patterns []mart.JoinPattern
	for _, rule := range patternRules {
		hit := true
		for _, group := range rule.tables {
			if !matchesAny(tables, group) {
				hit = false
				break
			}
		}
		if hit {
			patterns = append(patterns, rule.pattern)
			d.logger.Debug("suggested join pattern", "pattern", rule.pattern.Name)
		}
	}
	return patterns
}

// suggestMappings resolves each observed identifier against the known set:
// exact matches map to their canonical entry, near matches become alias
// entries carrying the observed spelling, and near-but-not-exact similarity
// is flagged as a typo candidate whether or not it was safe to auto-correct.
func (d *Discoverer) suggestMappings(obs Observation) ([]mart.DynamicColumnMapping, []Issue) {
	var mappings []mart.DynamicColumnMapping
	var issues []Issue
	seen := make(map[string]bool)

	for _, id := range sortedKeys(obs.IDCounts) {
		best, ratio := d.norm.BestMatch(id)
		if ratio >= typoFloor && ratio < 1.0 {
			issues = append(issues, Issue{
				Code:     CodeTypo,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("identifier %q looks like a typo of %q (similarity %.2f)", id, best, ratio),
				Subject:  id,
			})
		}

		norm := d.norm.Normalize(id)
		if norm.Confidence == 0 {
			continue
		}
		physical, ok := knownPhysical(norm.Normalized)
		if !ok {
			continue
		}
		source := norm.Normalized
		if norm.WasAliased {
			source = id
		}
		key := strings.ToUpper(source)
		if seen[key] {
			continue
		}
		seen[key] = true
		mappings = append(mappings, mart.DynamicColumnMapping{
			IDSource:       source,
			PhysicalColumn: physical,
			IsAlias:        norm.WasAliased,
		})
	}
	return mappings, issues
}

// coverageIssue checks the average mapping rows per hierarchy node.
func coverageIssue(obs Observation) (Issue, bool) {
	if obs.NodeCount <= 0 {
		return Issue{}, false
	}
	total := 0
	for _, count := range obs.IDCounts {
		total += count
	}
	avg := float64(total) / float64(obs.NodeCount)
	if avg >= coverageFloor {
		return Issue{}, false
	}
	return Issue{
		Code:     CodeCoverage,
		Severity: SeverityMedium,
		Message:  fmt.Sprintf("average mapping coverage is %.2f per hierarchy node (below %.1f)", avg, coverageFloor),
		Subject:  "coverage",
	}, true
}

// confidence is the weighted sum of the four signals: type detected 0.30,
// patterns found 0.30, mappings found 0.25 and a low-issue grade worth up to
// 0.15, falling by a tenth per issue. Capped at 1.0.
func confidence(res Result) float64 {
	score := 0.0
	if res.HierarchyType != TypeUnknown {
		score += 0.30
	}
	if len(res.Patterns) > 0 {
		score += 0.30
	}
	if len(res.Mappings) > 0 {
		score += 0.25
	}
	grade := 1.0 - float64(len(res.Issues))/10.0
	if grade < 0 {
		grade = 0
	}
	score += 0.15 * grade
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// knownPhysical returns the physical column for a canonical identifier.
func knownPhysical(idSource string) (string, bool) {
	for _, m := range knownMappings {
		if strings.EqualFold(m.IDSource, idSource) {
			return m.PhysicalColumn, true
		}
	}
	return "", false
}

// observedNames merges identifier and table names for type scoring.
func observedNames(obs Observation) []string {
	names := make([]string, 0, len(obs.IDCounts)+len(obs.TableCounts))
	names = append(names, sortedKeys(obs.IDCounts)...)
	names = append(names, sortedKeys(obs.TableCounts)...)
	return names
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
