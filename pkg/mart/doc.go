// Package mart defines the shared language of the Wright pipeline generator.
//
// This package contains:
//   - Configuration entities (MartConfig, JoinPattern, DynamicColumnMapping)
//   - Formula definitions (Formula, Operation)
//   - Generated artifacts (PipelineObject, Layer)
//   - Validation vocabulary (Severity, Diagnostic, ValidationResult)
//
// The Golden Rule: pkg/mart imports only the stdlib and yaml.
// All other packages depend on mart, not the reverse.
package mart
