package mart

import (
	"fmt"
	"strings"
)

// Severity indicates the weight of a validation diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError indicates a problem that blocks pipeline generation.
	SeverityError Severity = iota
	// SeverityWarning indicates a problem that should be reviewed but never blocks.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// Diagnostic describes one validation finding. Validation problems are
// reported as values, never raised: callers inspect ValidationResult.Valid
// before rendering.
type Diagnostic struct {
	// Code is the stable identifier of the check, e.g. "CF03" or "FM02".
	Code string `json:"code" yaml:"code"`
	// Severity is the weight of the finding.
	Severity Severity `json:"severity" yaml:"severity"`
	// Message is the human-readable description.
	Message string `json:"message" yaml:"message"`
	// Context carries structured detail (group names, levels, columns).
	Context map[string]string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Errorf builds an error-severity diagnostic.
func Errorf(code, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning-severity diagnostic.
func Warnf(code, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// Infof builds an info-severity diagnostic.
func Infof(code, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

// With returns a copy of the diagnostic with one context entry added.
func (d Diagnostic) With(key, value string) Diagnostic {
	ctx := make(map[string]string, len(d.Context)+1)
	for k, v := range d.Context {
		ctx[k] = v
	}
	ctx[key] = value
	d.Context = ctx
	return d
}

// ValidationResult collects the findings of one validation pass.
// Warnings never block; only Errors make the result invalid.
type ValidationResult struct {
	Errors   []Diagnostic `json:"errors" yaml:"errors"`
	Warnings []Diagnostic `json:"warnings" yaml:"warnings"`
}

// Valid reports whether the validated subject can proceed to rendering.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Add routes a diagnostic to the bucket matching its severity.
// Info diagnostics are kept with the warnings so they surface in reports.
func (r *ValidationResult) Add(d Diagnostic) {
	if d.Severity == SeverityError {
		r.Errors = append(r.Errors, d)
		return
	}
	r.Warnings = append(r.Warnings, d)
}

// Merge appends another result's findings to this one.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Summary returns a one-line description of the result.
func (r ValidationResult) Summary() string {
	if r.Valid() && len(r.Warnings) == 0 {
		return "valid, no findings"
	}
	return fmt.Sprintf("%d error(s), %d warning(s)", len(r.Errors), len(r.Warnings))
}
