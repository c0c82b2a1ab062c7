package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/dag"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/state"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// Per-step deployment statuses.
const (
	StatusPlanned  = "planned"
	StatusExecuted = "executed"
	StatusSkipped  = "skipped"
)

// DeployOptions control one deployment run.
type DeployOptions struct {
	// Marts filters deployment to the named marts. Empty means all.
	Marts []string
	// DryRun renders and orders the statements without connecting.
	DryRun bool
}

// DeployStep is the outcome for one pipeline object.
type DeployStep struct {
	Mart       string `json:"mart"`
	Object     string `json:"object"`
	Layer      string `json:"layer"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	// DDL is populated on dry runs only.
	DDL string `json:"ddl,omitempty"`
}

// DeployResult aggregates a deployment run.
type DeployResult struct {
	RunID      string       `json:"run_id,omitempty"`
	DryRun     bool         `json:"dry_run,omitempty"`
	Executed   int          `json:"executed"`
	Failed     int          `json:"failed"`
	Skipped    int          `json:"skipped"`
	Steps      []DeployStep `json:"steps"`
	DurationMS int64        `json:"duration_ms"`
}

// Summary returns a one-line description of the run.
func (r *DeployResult) Summary() string {
	if r.DryRun {
		return fmt.Sprintf("Dry run: %d statement(s) planned", len(r.Steps))
	}
	dur := (time.Duration(r.DurationMS) * time.Millisecond).String()
	if r.Failed == 0 {
		return fmt.Sprintf("Executed %d statement(s) in %s", r.Executed, dur)
	}
	return fmt.Sprintf("Executed %d statement(s), %d failed, %d skipped in %s",
		r.Executed, r.Failed, r.Skipped, dur)
}

// renderedObject pairs a pipeline object with the mart that produced it.
type renderedObject struct {
	mart string
	obj  mart.PipelineObject
}

// Deploy renders the selected marts and executes their DDL against the
// target in dependency order. Rendering happens first for every mart; a
// validation failure aborts before anything touches the warehouse. During
// execution a failed statement skips everything after it. Statement
// failures are reported in the steps, not as a Go error, so callers see
// partial progress; the returned error covers validation, connection,
// ordering and state store problems.
func (e *Engine) Deploy(ctx context.Context, opts DeployOptions) (*DeployResult, error) {
	start := time.Now()

	files, err := e.loadMarts(opts.Marts)
	if err != nil {
		return nil, err
	}

	objects := make(map[string]renderedObject)
	var names []string
	g := dag.New()
	for _, f := range files {
		res, err := e.assembler.Render(f.Config, f.Formulas)
		if err != nil {
			return nil, err
		}
		for _, obj := range res.Objects {
			g.AddNode(obj.Name)
			objects[obj.Name] = renderedObject{mart: f.Config.Name, obj: obj}
			names = append(names, obj.Name)
		}
	}
	// Edges only between generated objects. Source tables stay out of the
	// graph; they are inputs, not deployables.
	for _, name := range names {
		for _, dep := range objects[name].obj.Dependencies {
			if !g.Has(dep) {
				continue
			}
			if err := g.AddEdge(dep, name); err != nil {
				return nil, fmt.Errorf("failed to order pipeline objects: %w", err)
			}
		}
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("failed to order pipeline objects: %w", err)
	}

	result := &DeployResult{DryRun: opts.DryRun}

	if opts.DryRun {
		for _, name := range order {
			ro := objects[name]
			result.Steps = append(result.Steps, DeployStep{
				Mart:   ro.mart,
				Object: name,
				Layer:  ro.obj.Layer.String(),
				Status: StatusPlanned,
				DDL:    ro.obj.DDL,
			})
		}
		result.DurationMS = time.Since(start).Milliseconds()
		e.logger.Info("deploy dry run", "statements", len(result.Steps))
		return result, nil
	}

	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	run, err := e.store.CreateRun("deploy", e.TargetType())
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	result.RunID = run.ID

	e.logger.Info("deploying pipelines",
		"marts", len(files),
		"statements", len(order),
		"target", e.TargetType())

	failedAt := ""
	for _, name := range order {
		ro := objects[name]
		step := DeployStep{Mart: ro.mart, Object: name, Layer: ro.obj.Layer.String()}

		if failedAt != "" {
			step.Status = StatusSkipped
			step.Error = fmt.Sprintf("skipped after %s failed", failedAt)
			result.Skipped++
			result.Steps = append(result.Steps, step)
			e.recordArtifact(run.ID, ro.mart, name, step.Layer, state.ArtifactSkipped, step.Error, 0)
			continue
		}

		stepStart := time.Now()
		execErr := e.db.Exec(ctx, ro.obj.DDL)
		step.DurationMS = time.Since(stepStart).Milliseconds()

		if execErr != nil {
			step.Status = StatusFailed
			step.Error = execErr.Error()
			result.Failed++
			failedAt = name
			e.recordArtifact(run.ID, ro.mart, name, step.Layer, state.ArtifactFailed, step.Error, step.DurationMS)
			e.logger.Error("statement failed", "object", name, "error", execErr)
		} else {
			step.Status = StatusExecuted
			result.Executed++
			e.recordArtifact(run.ID, ro.mart, name, step.Layer, state.ArtifactExecuted, "", step.DurationMS)
			e.logger.Debug("statement executed", "object", name, "duration_ms", step.DurationMS)
		}
		result.Steps = append(result.Steps, step)
	}

	result.DurationMS = time.Since(start).Milliseconds()

	status, msg := state.RunStatusCompleted, ""
	if result.Failed > 0 {
		status = state.RunStatusFailed
		msg = fmt.Sprintf("deployment failed at %s", failedAt)
	}
	if err := e.store.CompleteRun(run.ID, status, msg); err != nil {
		e.logger.Warn("failed to complete run record", "run_id", run.ID, "error", err)
	}

	e.logger.Info("deployment finished",
		"executed", result.Executed,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration_ms", result.DurationMS)
	return result, nil
}
