package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/loader"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/pipeline"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/state"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// renderConcurrency bounds how many marts render at once.
const renderConcurrency = 4

// Per-mart outcome statuses.
const (
	StatusRendered = "rendered"
	StatusFailed   = "failed"
)

// GenerateOptions control one generation run.
type GenerateOptions struct {
	// Marts filters generation to the named marts. Empty means all.
	Marts []string
	// OutputDir overrides the configured output directory.
	OutputDir string
	// SkipState suppresses run and artifact recording.
	SkipState bool
}

// MartOutcome is the generation result for a single mart.
type MartOutcome struct {
	Mart       string            `json:"mart"`
	Status     string            `json:"status"`
	Files      []string          `json:"files,omitempty"`
	Warnings   []mart.Diagnostic `json:"warnings,omitempty"`
	Errors     []mart.Diagnostic `json:"errors,omitempty"`
	Error      string            `json:"error,omitempty"`
	DurationMS int64             `json:"duration_ms"`
}

// GenerateResult aggregates a generation run across marts.
type GenerateResult struct {
	RunID      string        `json:"run_id,omitempty"`
	Rendered   int           `json:"rendered"`
	Failed     int           `json:"failed"`
	Files      int           `json:"files"`
	Marts      []MartOutcome `json:"marts"`
	DurationMS int64         `json:"duration_ms"`
}

// Summary returns a one-line description of the run.
func (r *GenerateResult) Summary() string {
	dur := (time.Duration(r.DurationMS) * time.Millisecond).String()
	if r.Failed == 0 {
		return fmt.Sprintf("Rendered %d mart(s), wrote %d file(s) in %s", r.Rendered, r.Files, dur)
	}
	return fmt.Sprintf("Rendered %d mart(s), %d failed, wrote %d file(s) in %s",
		r.Rendered, r.Failed, r.Files, dur)
}

// Generate renders the four-object pipeline for each selected mart and
// writes the DDL under the output directory, one subdirectory per mart.
// A mart that fails validation is reported in its outcome and does not
// stop the others; the returned error covers infrastructure problems only
// (unreadable definitions, context cancellation, state store failures).
func (e *Engine) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	start := time.Now()

	files, err := e.loadMarts(opts.Marts)
	if err != nil {
		return nil, err
	}

	outDir := e.outputDir
	if opts.OutputDir != "" {
		outDir = opts.OutputDir
	}

	result := &GenerateResult{}
	var runID string
	if !opts.SkipState {
		run, err := e.store.CreateRun("generate", e.TargetType())
		if err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		runID = run.ID
		result.RunID = run.ID
	}

	e.logger.Info("generating pipelines", "marts", len(files), "output_dir", outDir)

	outcomes := make([]MartOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(renderConcurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.renderMart(f, outDir, runID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if runID != "" {
			_ = e.store.CompleteRun(runID, state.RunStatusFailed, err.Error())
		}
		return nil, err
	}

	result.Marts = outcomes
	for _, out := range outcomes {
		result.Files += len(out.Files)
		if out.Status == StatusFailed {
			result.Failed++
		} else {
			result.Rendered++
		}
	}
	result.DurationMS = time.Since(start).Milliseconds()

	if runID != "" {
		status, msg := state.RunStatusCompleted, ""
		if result.Failed > 0 {
			status = state.RunStatusFailed
			msg = fmt.Sprintf("%d mart(s) failed to render", result.Failed)
		}
		if err := e.store.CompleteRun(runID, status, msg); err != nil {
			e.logger.Warn("failed to complete run record", "run_id", runID, "error", err)
		}
	}

	e.logger.Info("generation finished",
		"rendered", result.Rendered,
		"failed", result.Failed,
		"files", result.Files,
		"duration_ms", result.DurationMS)
	return result, nil
}

// renderMart renders one mart and writes its objects to disk.
func (e *Engine) renderMart(f *loader.MartFile, outDir, runID string) MartOutcome {
	start := time.Now()
	out := MartOutcome{Mart: f.Config.Name, Status: StatusRendered}

	res, err := e.assembler.Render(f.Config, f.Formulas)
	out.Warnings = res.Validation.Warnings
	out.Errors = res.Validation.Errors
	if err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		out.DurationMS = time.Since(start).Milliseconds()
		for _, l := range mart.Layers() {
			e.recordArtifact(runID, f.Config.Name, pipeline.ObjectName(l, f.Config.Name),
				l.String(), state.ArtifactFailed, err.Error(), 0)
		}
		e.logger.Error("mart failed to render", "mart", f.Config.Name, "error", err)
		return out
	}

	martDir := filepath.Join(outDir, strings.ToLower(f.Config.Name))
	if err := os.MkdirAll(martDir, 0o755); err != nil {
		out.Status = StatusFailed
		out.Error = fmt.Sprintf("failed to create output directory: %v", err)
		out.DurationMS = time.Since(start).Milliseconds()
		return out
	}

	for _, obj := range res.Objects {
		path := filepath.Join(martDir, obj.Name+".sql")
		ddl := obj.DDL
		if !strings.HasSuffix(ddl, "\n") {
			ddl += "\n"
		}
		if err := os.WriteFile(path, []byte(ddl), 0o644); err != nil {
			out.Status = StatusFailed
			out.Error = fmt.Sprintf("failed to write %s: %v", path, err)
			out.DurationMS = time.Since(start).Milliseconds()
			e.recordArtifact(runID, f.Config.Name, obj.Name, obj.Layer.String(),
				state.ArtifactFailed, out.Error, 0)
			return out
		}
		out.Files = append(out.Files, path)
		e.recordArtifact(runID, f.Config.Name, obj.Name, obj.Layer.String(),
			state.ArtifactRendered, "", 0)
	}

	out.DurationMS = time.Since(start).Milliseconds()
	e.logger.Info("mart rendered",
		"mart", f.Config.Name,
		"objects", len(res.Objects),
		"mappings", res.Mappings,
		"aliased", res.Aliased,
		"warnings", len(out.Warnings))
	return out
}

// recordArtifact persists one pipeline object outcome. An empty runID means
// state recording is off for this run. Store failures are logged and do not
// abort the run.
func (e *Engine) recordArtifact(runID, martName, object, layer string, status state.ArtifactStatus, errMsg string, durMS int64) {
	if runID == "" {
		return
	}
	a := &state.Artifact{
		RunID:      runID,
		Mart:       martName,
		Object:     object,
		Layer:      layer,
		Status:     status,
		DurationMS: durMS,
		Error:      errMsg,
	}
	if err := e.store.RecordArtifact(a); err != nil {
		e.logger.Warn("failed to record artifact", "object", object, "error", err)
	}
}
