package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/discovery"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/state"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/testutil"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/adapter"
)

const cleanMartDef = `name: gross_sales
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

const brokenMartDef = `name: broken
hierarchy_table: FIN_HIERARCHY
mapping_table: FIN_MAPPING
dynamic_column_map:
  ACCOUNT_CODE: ACCT_CD
`

const typoMartDef = `name: typo_mart
report_type: PNL
account_segment: COGS
hierarchy_table: FIN_HIERARCHY
mapping_table: FIN_MAPPING
fact_table: FIN_FACTS
join_patterns:
  - name: account
    join_keys: [ACCT_CD]
    fact_keys: [GL_ACCT]
dynamic_column_map:
  ACCOUN_CODE: ACCT_CD
  WIDGET_THING: W_CD
`

var grossSalesObjects = []string{
	"VW_1_GROSS_SALES_TRANSLATION",
	"DT_2_GROSS_SALES_GRANULARITY",
	"DT_3A_GROSS_SALES_PREAGG",
	"DT_3_GROSS_SALES_MART",
}

// fakeAdapter records executed statements and serves scripted DDL. The
// registry factory hands out nextFake, set by each test before connecting.
type fakeAdapter struct {
	mu       sync.Mutex
	executed []string
	failOn   string
	ddl      map[string]string
}

var nextFake *fakeAdapter

func init() {
	adapter.Register("fake", func(*slog.Logger) adapter.Adapter { return nextFake })
}

func (f *fakeAdapter) Connect(ctx context.Context, cfg adapter.Config) error { return nil }
func (f *fakeAdapter) Close() error                                          { return nil }
func (f *fakeAdapter) Ping(ctx context.Context) error                        { return nil }
func (f *fakeAdapter) Dialect() string                                       { return "fake" }

func (f *fakeAdapter) Exec(ctx context.Context, sql string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return errors.New("exec refused")
	}
	f.executed = append(f.executed, sql)
	return nil
}

func (f *fakeAdapter) Query(ctx context.Context, sql string) (*adapter.Rows, error) {
	return nil, errors.New("query not supported")
}

func (f *fakeAdapter) FetchDDL(ctx context.Context, objectType, name string) (string, error) {
	if ddl, ok := f.ddl[name]; ok {
		return ddl, nil
	}
	return "", fmt.Errorf("object %s does not exist", name)
}

func writeDef(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func newTestEngine(t *testing.T, configsDir string, target *adapter.Config) *Engine {
	t.Helper()
	e, err := New(Config{
		ConfigsDir: configsDir,
		OutputDir:  filepath.Join(t.TempDir(), "build"),
		StatePath:  filepath.Join(t.TempDir(), "state.db"),
		Target:     target,
		Logger:     testutil.NewTestLogger(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestNew_OpensStateStore(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	if e.StateStore() == nil {
		t.Fatal("expected a state store")
	}
	if _, err := os.Stat(e.StateStore().Path()); err != nil {
		t.Fatalf("state database missing: %v", err)
	}
	if got := e.TargetType(); got != "" {
		t.Fatalf("TargetType() = %q, want empty for offline engine", got)
	}
}

func TestLoadMarts_SelectsByName(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	writeDef(t, dir, "broken.yaml", brokenMartDef)
	e := newTestEngine(t, dir, nil)

	all, err := e.loadMarts(nil)
	if err != nil {
		t.Fatalf("loadMarts(nil): %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("loadMarts(nil) returned %d marts, want 2", len(all))
	}
	if all[0].Config.Name != "broken" || all[1].Config.Name != "gross_sales" {
		t.Fatalf("marts not sorted by file name: %s, %s", all[0].Config.Name, all[1].Config.Name)
	}

	one, err := e.loadMarts([]string{"GROSS_SALES"})
	if err != nil {
		t.Fatalf("loadMarts by name: %v", err)
	}
	if len(one) != 1 || one[0].Config.Name != "gross_sales" {
		t.Fatalf("expected gross_sales, got %+v", one)
	}

	if _, err := e.loadMarts([]string{"nope"}); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestLoadMarts_EmptyDir(t *testing.T) {
	e := newTestEngine(t, t.TempDir(), nil)
	if _, err := e.loadMarts(nil); err == nil || !strings.Contains(err.Error(), "no mart definitions") {
		t.Fatalf("expected no-definitions error, got %v", err)
	}
}

func TestGenerate_WritesObjectsAndArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	res, err := e.Generate(context.Background(), GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Rendered != 1 || res.Failed != 0 || res.Files != 4 {
		t.Fatalf("unexpected result: rendered=%d failed=%d files=%d", res.Rendered, res.Failed, res.Files)
	}

	for _, name := range grossSalesObjects {
		path := filepath.Join(e.outputDir, "gross_sales", name+".sql")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
		if !strings.Contains(string(data), name) {
			t.Errorf("%s does not mention its object name", path)
		}
		if !strings.HasSuffix(string(data), "\n") {
			t.Errorf("%s is missing a trailing newline", path)
		}
	}

	run, err := e.StateStore().GetRun(res.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != state.RunStatusCompleted {
		t.Fatalf("run status = %s, want completed", run.Status)
	}
	arts, err := e.StateStore().ListArtifacts(res.RunID)
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if len(arts) != 4 {
		t.Fatalf("recorded %d artifacts, want 4", len(arts))
	}
	for _, a := range arts {
		if a.Status != state.ArtifactRendered {
			t.Errorf("artifact %s status = %s, want rendered", a.Object, a.Status)
		}
	}
}

func TestGenerate_FailedMartDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "broken.yaml", brokenMartDef)
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	res, err := e.Generate(context.Background(), GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Rendered != 1 || res.Failed != 1 {
		t.Fatalf("rendered=%d failed=%d, want 1 and 1", res.Rendered, res.Failed)
	}

	byMart := make(map[string]MartOutcome, len(res.Marts))
	for _, out := range res.Marts {
		byMart[out.Mart] = out
	}
	if got := byMart["broken"]; got.Status != StatusFailed || !strings.Contains(got.Error, "failed validation") {
		t.Fatalf("broken outcome = %+v", got)
	}
	if got := byMart["gross_sales"]; got.Status != StatusRendered || len(got.Files) != 4 {
		t.Fatalf("gross_sales outcome = %+v", got)
	}

	run, err := e.StateStore().GetRun(res.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != state.RunStatusFailed {
		t.Fatalf("run status = %s, want failed", run.Status)
	}
	if !strings.Contains(run.Error, "1 mart(s) failed") {
		t.Fatalf("run error = %q", run.Error)
	}
}

func TestGenerate_SkipState(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	res, err := e.Generate(context.Background(), GenerateOptions{SkipState: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.RunID != "" {
		t.Fatalf("RunID = %q, want empty with SkipState", res.RunID)
	}
	runs, err := e.StateStore().ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("recorded %d runs, want 0", len(runs))
	}
}

func TestGenerate_OutputDirOverride(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	override := filepath.Join(t.TempDir(), "elsewhere")
	res, err := e.Generate(context.Background(), GenerateOptions{OutputDir: override, SkipState: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, out := range res.Marts {
		for _, f := range out.Files {
			if !strings.HasPrefix(f, override) {
				t.Fatalf("file %s written outside override dir", f)
			}
		}
	}
}

func TestGenerate_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Generate(ctx, GenerateOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidate_CleanMart(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	reports, err := e.Validate(nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	r := reports[0]
	if !r.Valid() || r.Errors != 0 || r.Warnings != 0 {
		t.Fatalf("clean mart reported errors=%d warnings=%d", r.Errors, r.Warnings)
	}
	if r.Score != 100 {
		t.Fatalf("score = %d, want 100", r.Score)
	}
	if len(r.Checks) != 3 {
		t.Fatalf("got %d checks, want one pass per group", len(r.Checks))
	}
	for _, c := range r.Checks {
		if c.Status != CheckPass {
			t.Errorf("check %s/%s = %s, want pass", c.Group, c.Code, c.Status)
		}
	}
	if len(r.Recommendations) != 0 {
		t.Fatalf("unexpected recommendations: %v", r.Recommendations)
	}
}

func TestValidate_StructuralFindings(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "broken.yaml", brokenMartDef)
	e := newTestEngine(t, dir, nil)

	reports, err := e.Validate(nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	r := reports[0]
	if r.Valid() {
		t.Fatal("broken mart reported valid")
	}
	if r.Errors != 1 || r.Warnings != 2 {
		t.Fatalf("errors=%d warnings=%d, want 1 and 2", r.Errors, r.Warnings)
	}
	if r.Score != 84 {
		t.Fatalf("score = %d, want 84", r.Score)
	}

	codes := make(map[string]string, len(r.Checks))
	for _, c := range r.Checks {
		codes[c.Code] = c.Status
	}
	if codes["CF02"] != CheckError {
		t.Fatalf("CF02 = %q, want error", codes["CF02"])
	}
	if codes["CF09"] != CheckWarning {
		t.Fatalf("CF09 = %q, want warning", codes["CF09"])
	}

	found := false
	for _, rec := range r.Recommendations {
		if strings.Contains(rec, "fact_table") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no fact_table recommendation in %v", r.Recommendations)
	}
}

func TestValidate_IdentifierDryRun(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "typo_mart.yaml", typoMartDef)
	e := newTestEngine(t, dir, nil)

	reports, err := e.Validate(nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	r := reports[0]
	if r.Errors != 0 || r.Warnings != 2 {
		t.Fatalf("errors=%d warnings=%d, want 0 and 2", r.Errors, r.Warnings)
	}

	var sawTypo, sawUnknown bool
	for _, c := range r.Checks {
		switch c.Code {
		case "DQ01":
			sawTypo = true
			if !strings.Contains(c.Message, "ACCOUNT_CODE") {
				t.Errorf("DQ01 message %q does not name the canonical identifier", c.Message)
			}
		case "DQ03":
			sawUnknown = true
			if !strings.Contains(c.Message, "WIDGET_THING") {
				t.Errorf("DQ03 message %q does not name the identifier", c.Message)
			}
		}
	}
	if !sawTypo || !sawUnknown {
		t.Fatalf("missing identifier findings: typo=%v unknown=%v", sawTypo, sawUnknown)
	}
}

func TestDeploy_DryRunOrdersChain(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	res, err := e.Deploy(context.Background(), DeployOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Deploy dry run: %v", err)
	}
	if !res.DryRun || len(res.Steps) != 4 {
		t.Fatalf("dry_run=%v steps=%d, want true and 4", res.DryRun, len(res.Steps))
	}
	for i, step := range res.Steps {
		if step.Object != grossSalesObjects[i] {
			t.Fatalf("step %d = %s, want %s", i, step.Object, grossSalesObjects[i])
		}
		if step.Status != StatusPlanned || step.DDL == "" {
			t.Fatalf("step %s: status=%s ddl_len=%d", step.Object, step.Status, len(step.DDL))
		}
	}
	if res.RunID != "" {
		t.Fatalf("dry run recorded run %s", res.RunID)
	}
}

func TestDeploy_ExecutesInDependencyOrder(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	nextFake = &fakeAdapter{}
	e := newTestEngine(t, dir, &adapter.Config{Type: "fake"})

	res, err := e.Deploy(context.Background(), DeployOptions{})
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if res.Executed != 4 || res.Failed != 0 || res.Skipped != 0 {
		t.Fatalf("executed=%d failed=%d skipped=%d", res.Executed, res.Failed, res.Skipped)
	}
	if len(nextFake.executed) != 4 {
		t.Fatalf("adapter saw %d statements, want 4", len(nextFake.executed))
	}
	for i, name := range grossSalesObjects {
		if !strings.Contains(nextFake.executed[i], name) {
			t.Fatalf("statement %d does not create %s", i, name)
		}
	}

	run, err := e.StateStore().GetRun(res.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != state.RunStatusCompleted {
		t.Fatalf("run status = %s, want completed", run.Status)
	}
}

func TestDeploy_FailureSkipsDownstream(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	nextFake = &fakeAdapter{failOn: "DT_2_GROSS_SALES_GRANULARITY"}
	e := newTestEngine(t, dir, &adapter.Config{Type: "fake"})

	res, err := e.Deploy(context.Background(), DeployOptions{})
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if res.Executed != 1 || res.Failed != 1 || res.Skipped != 2 {
		t.Fatalf("executed=%d failed=%d skipped=%d", res.Executed, res.Failed, res.Skipped)
	}
	wantStatus := []string{StatusExecuted, StatusFailed, StatusSkipped, StatusSkipped}
	for i, step := range res.Steps {
		if step.Status != wantStatus[i] {
			t.Fatalf("step %d (%s) = %s, want %s", i, step.Object, step.Status, wantStatus[i])
		}
	}
	if !strings.Contains(res.Steps[2].Error, "DT_2_GROSS_SALES_GRANULARITY") {
		t.Fatalf("skip reason %q does not name the failed object", res.Steps[2].Error)
	}

	run, err := e.StateStore().GetRun(res.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != state.RunStatusFailed {
		t.Fatalf("run status = %s, want failed", run.Status)
	}
	arts, err := e.StateStore().ListArtifacts(res.RunID)
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	counts := make(map[state.ArtifactStatus]int)
	for _, a := range arts {
		counts[a.Status]++
	}
	if counts[state.ArtifactExecuted] != 1 || counts[state.ArtifactFailed] != 1 || counts[state.ArtifactSkipped] != 2 {
		t.Fatalf("artifact counts = %v", counts)
	}
}

func TestDeploy_ValidationFailureAbortsBeforeTarget(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "broken.yaml", brokenMartDef)
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	nextFake = &fakeAdapter{}
	e := newTestEngine(t, dir, &adapter.Config{Type: "fake"})

	_, err := e.Deploy(context.Background(), DeployOptions{})
	if err == nil || !strings.Contains(err.Error(), "failed validation") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(nextFake.executed) != 0 {
		t.Fatalf("adapter saw %d statements before validation finished", len(nextFake.executed))
	}
}

func TestDeploy_NoTarget(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	_, err := e.Deploy(context.Background(), DeployOptions{})
	if err == nil || !strings.Contains(err.Error(), "no target configured") {
		t.Fatalf("expected no-target error, got %v", err)
	}
}

func TestDiff_ClassifiesObjects(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	nextFake = &fakeAdapter{ddl: make(map[string]string)}
	e := newTestEngine(t, dir, &adapter.Config{Type: "fake"})

	files, err := e.loadMarts(nil)
	if err != nil {
		t.Fatalf("loadMarts: %v", err)
	}
	rendered, err := e.assembler.Render(files[0].Config, files[0].Formulas)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	// Deployed translation matches, granularity drifted, the rest missing.
	nextFake.ddl["VW_1_GROSS_SALES_TRANSLATION"] = rendered.Objects[0].DDL
	nextFake.ddl["DT_2_GROSS_SALES_GRANULARITY"] = strings.Replace(
		rendered.Objects[1].DDL, "LEVEL_9", "LEVEL_8", 1)

	res, err := e.Diff(context.Background(), DiffOptions{})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if res.Unchanged != 1 || res.Changed != 1 || res.New != 2 {
		t.Fatalf("unchanged=%d changed=%d new=%d", res.Unchanged, res.Changed, res.New)
	}

	byObject := make(map[string]ObjectDiff, len(res.Objects))
	for _, d := range res.Objects {
		byObject[d.Object] = d
	}
	changed := byObject["DT_2_GROSS_SALES_GRANULARITY"]
	if changed.Status != DiffChanged || changed.Added == 0 || changed.Removed == 0 {
		t.Fatalf("granularity diff = %+v", changed)
	}
	if len(changed.Lines) == 0 {
		t.Fatal("changed object has no diff lines")
	}
	if got := byObject["VW_1_GROSS_SALES_TRANSLATION"].Status; got != DiffUnchanged {
		t.Fatalf("translation status = %s, want unchanged", got)
	}
	if got := byObject["DT_3_GROSS_SALES_MART"].Status; got != DiffNew {
		t.Fatalf("mart status = %s, want new", got)
	}
}

func TestDiff_IgnoresGeneratedComments(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	nextFake = &fakeAdapter{ddl: make(map[string]string)}
	e := newTestEngine(t, dir, &adapter.Config{Type: "fake"})

	files, err := e.loadMarts(nil)
	if err != nil {
		t.Fatalf("loadMarts: %v", err)
	}
	rendered, err := e.assembler.Render(files[0].Config, files[0].Formulas)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, obj := range rendered.Objects {
		stale := "-- Generated by wright at 2001-01-01T00:00:00Z\n" + obj.DDL
		nextFake.ddl[obj.Name] = stale
	}

	res, err := e.Diff(context.Background(), DiffOptions{})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if res.Unchanged != 4 {
		t.Fatalf("unchanged=%d, want 4 when only comments differ", res.Unchanged)
	}
}

func TestDiscover_FromCSV(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	obsPath := filepath.Join(t.TempDir(), "mapping_extract.csv")
	csvData := "id_source,count\nACCOUN_CODE,3\nACCOUNT_CODE,120\nPRODUCT_CODE,45\n"
	if err := os.WriteFile(obsPath, []byte(csvData), 0o644); err != nil {
		t.Fatalf("writing observation: %v", err)
	}

	res, err := e.Discover(context.Background(), DiscoverOptions{File: obsPath, Name: "pnl_suggest"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if res.Mappings != 3 {
		t.Fatalf("mappings = %d, want 3", res.Mappings)
	}
	var sawTypo bool
	for _, issue := range res.Issues {
		if issue.Code == discovery.CodeTypo && issue.Subject == "ACCOUN_CODE" {
			sawTypo = true
		}
	}
	if !sawTypo {
		t.Fatalf("no typo issue for ACCOUN_CODE in %+v", res.Issues)
	}
	if !strings.Contains(res.Definition, "name: pnl_suggest") {
		t.Fatalf("definition does not carry the mart name:\n%s", res.Definition)
	}
	if !strings.Contains(res.Definition, "ACCOUNT_CODE") {
		t.Fatalf("definition does not carry the canonical mapping:\n%s", res.Definition)
	}

	// The fuzzy correction is learned into the state store.
	aliases, err := e.StateStore().ListLearnedAliases()
	if err != nil {
		t.Fatalf("ListLearnedAliases: %v", err)
	}
	if len(aliases) != 1 || aliases[0].Raw != "ACCOUN_CODE" || aliases[0].Canonical != "ACCOUNT_CODE" {
		t.Fatalf("learned aliases = %+v", aliases)
	}
}

func TestDiscover_FromYAML(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	obsPath := filepath.Join(t.TempDir(), "observation.yaml")
	obs := `id_counts:
  ACCOUNT_CODE: 120
  COST_CENTER: 40
table_counts:
  GL_BALANCES: 3
node_count: 10
`
	if err := os.WriteFile(obsPath, []byte(obs), 0o644); err != nil {
		t.Fatalf("writing observation: %v", err)
	}

	res, err := e.Discover(context.Background(), DiscoverOptions{File: obsPath})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if res.HierarchyType != "ACCOUNT" {
		t.Fatalf("hierarchy type = %s, want ACCOUNT", res.HierarchyType)
	}
	if res.Confidence <= 0 {
		t.Fatalf("confidence = %f, want > 0", res.Confidence)
	}
	if !strings.Contains(res.Definition, "name: discovered") {
		t.Fatalf("definition missing default name:\n%s", res.Definition)
	}
}

func TestDiscover_RequiresInput(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	if _, err := e.Discover(context.Background(), DiscoverOptions{}); err == nil ||
		!strings.Contains(err.Error(), "nothing to observe") {
		t.Fatalf("expected nothing-to-observe error, got %v", err)
	}
}

func TestList_SummarizesDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "broken.yaml", brokenMartDef)
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	infos, err := e.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d marts, want 2", len(infos))
	}
	gs := infos[1]
	if gs.Mart != "gross_sales" || gs.Patterns != 1 || gs.Mappings != 1 || gs.Formulas != 0 {
		t.Fatalf("gross_sales info = %+v", gs)
	}
	if len(gs.Objects) != 4 || gs.Objects[0] != "VW_1_GROSS_SALES_TRANSLATION" {
		t.Fatalf("objects = %v", gs.Objects)
	}
	if gs.Path == "" {
		t.Fatal("mart info missing source path")
	}
}

func TestExport_InterchangeForm(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "gross_sales.yaml", cleanMartDef)
	e := newTestEngine(t, dir, nil)

	exports, err := e.Export([]string{"gross_sales"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(exports) != 1 || exports[0].Mart != "gross_sales" {
		t.Fatalf("exports = %+v", exports)
	}
	for _, want := range []string{"name: gross_sales", "dynamic_column_map:", "ACCOUNT_CODE: ACCT_CD"} {
		if !strings.Contains(exports[0].YAML, want) {
			t.Fatalf("export missing %q:\n%s", want, exports[0].YAML)
		}
	}
}
