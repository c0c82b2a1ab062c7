// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// projectConfig is the wright.yaml written into test projects. The state
// database lands inside the temp directory so tests never touch the
// developer's own state.
const projectConfig = `configs_dir: marts
output_dir: build
state_path: .wright/state.db

generate:
  warehouse: TEST_WH
  target_lag: "1 hour"
`

// grossSalesDef is a minimal clean mart definition.
const grossSalesDef = `name: gross_sales
report_type: PNL
account_segment: REVENUE

hierarchy_table: FIN_HIERARCHY
mapping_table: FIN_MAPPING
fact_table: FIN_FACTS

join_patterns:
  - name: account
    join_keys: [ACCT_CD]
    fact_keys: [GL_ACCT]

dynamic_column_map:
  ACCOUNT_CODE: ACCT_CD
`

// SetupTestProject creates a temporary project with a config file and one
// clean mart definition, returning the project root.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	martsDir := filepath.Join(tmpDir, "marts")
	if err := os.MkdirAll(martsDir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", martsDir, err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "wright.yaml"),
		[]byte(projectConfig), 0644); err != nil {
		t.Fatalf("failed to create wright.yaml: %v", err)
	}

	if err := os.WriteFile(filepath.Join(martsDir, "gross_sales.yaml"),
		[]byte(grossSalesDef), 0644); err != nil {
		t.Fatalf("failed to create gross_sales.yaml: %v", err)
	}

	return tmpDir
}

// AddMart writes an extra mart definition into an existing test project.
func AddMart(t *testing.T, projectDir, name, definition string) string {
	t.Helper()

	path := filepath.Join(projectDir, "marts", name+".yaml")
	if err := os.WriteFile(path, []byte(definition), 0644); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	return path
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertContains checks that the string contains the expected substring.
func AssertContains(t *testing.T, s, expected string) {
	t.Helper()
	if !strings.Contains(s, expected) {
		t.Errorf("string %q does not contain expected %q", s, expected)
	}
}

// AssertNotContains checks that the string does not contain the substring.
func AssertNotContains(t *testing.T, s, unexpected string) {
	t.Helper()
	if strings.Contains(s, unexpected) {
		t.Errorf("string %q unexpectedly contains %q", s, unexpected)
	}
}
