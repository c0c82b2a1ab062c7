package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/pipeline"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/adapter"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// Per-object diff statuses.
const (
	DiffNew       = "new"
	DiffChanged   = "changed"
	DiffUnchanged = "unchanged"
)

// DiffOptions control one diff run.
type DiffOptions struct {
	// Marts filters the diff to the named marts. Empty means all.
	Marts []string
}

// ObjectDiff compares one rendered object against its deployed DDL.
type ObjectDiff struct {
	Mart    string `json:"mart"`
	Object  string `json:"object"`
	Layer   string `json:"layer"`
	Status  string `json:"status"`
	Added   int    `json:"added,omitempty"`
	Removed int    `json:"removed,omitempty"`
	// Lines is the line diff, deployed against rendered, prefixed with
	// "  ", "- " and "+ ". Empty unless Status is "changed".
	Lines []string `json:"lines,omitempty"`
}

// DiffResult aggregates a diff run.
type DiffResult struct {
	Objects   []ObjectDiff `json:"objects"`
	New       int          `json:"new"`
	Changed   int          `json:"changed"`
	Unchanged int          `json:"unchanged"`
}

// Summary returns a one-line description of the run.
func (r *DiffResult) Summary() string {
	return fmt.Sprintf("%d changed, %d new, %d unchanged", r.Changed, r.New, r.Unchanged)
}

// Diff renders the selected marts and compares each object's DDL against
// what the target has deployed. Objects the target cannot return DDL for
// count as new. Comparison is textual over normalized DDL: generated
// comments, blank lines and trailing whitespace are ignored.
func (e *Engine) Diff(ctx context.Context, opts DiffOptions) (*DiffResult, error) {
	files, err := e.loadMarts(opts.Marts)
	if err != nil {
		return nil, err
	}

	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}
	fetcher, ok := e.db.(adapter.DDLFetcher)
	if !ok {
		return nil, fmt.Errorf("target adapter %s does not support DDL fetch", e.TargetType())
	}

	result := &DiffResult{}
	for _, f := range files {
		res, err := e.assembler.Render(f.Config, f.Formulas)
		if err != nil {
			return nil, err
		}
		for _, obj := range res.Objects {
			d := e.diffObject(ctx, fetcher, f.Config, obj)
			result.Objects = append(result.Objects, d)
			switch d.Status {
			case DiffNew:
				result.New++
			case DiffChanged:
				result.Changed++
			default:
				result.Unchanged++
			}
		}
	}

	e.logger.Info("diff finished",
		"objects", len(result.Objects),
		"changed", result.Changed,
		"new", result.New,
		"unchanged", result.Unchanged)
	return result, nil
}

func (e *Engine) diffObject(ctx context.Context, fetcher adapter.DDLFetcher, cfg mart.MartConfig, obj mart.PipelineObject) ObjectDiff {
	d := ObjectDiff{Mart: cfg.Name, Object: obj.Name, Layer: obj.Layer.String()}

	objectType := "TABLE"
	if obj.Layer == mart.LayerTranslation {
		objectType = "VIEW"
	}

	deployed, err := fetcher.FetchDDL(ctx, objectType, pipeline.Qualify(cfg, obj.Name))
	if err != nil {
		e.logger.Debug("DDL fetch failed, treating object as new", "object", obj.Name, "error", err)
		d.Status = DiffNew
		return d
	}

	local := normalizeDDL(obj.DDL)
	remote := normalizeDDL(deployed)
	if equalLines(remote, local) {
		d.Status = DiffUnchanged
		return d
	}

	d.Status = DiffChanged
	d.Lines, d.Added, d.Removed = diffLines(remote, local)
	return d
}

// normalizeDDL splits DDL into comparable lines: comment-only lines and
// blank lines are dropped, trailing whitespace is trimmed.
func normalizeDDL(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// diffLines computes a line diff from a to b over a longest common
// subsequence. Common lines carry a two-space prefix, removals "- " and
// additions "+ ".
func diffLines(a, b []string) (lines []string, added, removed int) {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			lines = append(lines, "  "+a[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			lines = append(lines, "- "+a[i])
			removed++
			i++
		default:
			lines = append(lines, "+ "+b[j])
			added++
			j++
		}
	}
	for ; i < n; i++ {
		lines = append(lines, "- "+a[i])
		removed++
	}
	for ; j < m; j++ {
		lines = append(lines, "+ "+b[j])
		added++
	}
	return lines, added, removed
}
