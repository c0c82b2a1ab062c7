package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/output"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/state"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show run history from the state database",
		Long: `Show recent generate and deploy runs recorded in the state database.

Without arguments, lists the most recent runs. Pass a run ID to see the
per-object artifacts of that run.`,
		Example: `  # Show the last 10 runs
  wright runs

  # Show more history
  wright runs --limit 50

  # Inspect one run's artifacts
  wright runs 01J8ZD1R7M`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, opts, args)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "Maximum number of runs to list")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	store := cmdCtx.Engine.StateStore()
	r := cmdCtx.Renderer

	if len(args) == 1 {
		return showRun(cmd.OutOrStdout(), r, store, args[0])
	}

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(runs)
	case output.ModeMarkdown:
		renderRunsMarkdown(r, runs)
	default:
		renderRunsTable(cmd.OutOrStdout(), runs)
	}
	return nil
}

// showRun prints one run with its per-object artifacts.
func showRun(w io.Writer, r *output.Renderer, store *state.Store, runID string) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	artifacts, err := store.ListArtifacts(runID)
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(struct {
			Run       *state.Run        `json:"run"`
			Artifacts []*state.Artifact `json:"artifacts"`
		}{Run: run, Artifacts: artifacts})
	case output.ModeMarkdown:
		renderRunMarkdown(r, run, artifacts)
		return nil
	}

	r.Header(1, fmt.Sprintf("Run %s", run.ID))
	r.Printf("  Command: %s\n", run.Command)
	if run.Target != "" {
		r.Printf("  Target:  %s\n", run.Target)
	}
	r.Printf("  Status:  %s\n", run.Status)
	r.Printf("  Started: %s\n", run.StartedAt.Format(time.RFC3339))
	if run.CompletedAt != nil {
		r.Printf("  Took:    %s\n", run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	if run.Error != "" {
		r.Printf("  Error:   %s\n", run.Error)
	}
	r.Println("")

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Mart", "Object", "Layer", "Status", "Duration", "Error"})
	for _, a := range artifacts {
		dur := ""
		if a.DurationMS > 0 {
			dur = (time.Duration(a.DurationMS) * time.Millisecond).String()
		}
		t.AppendRow(table.Row{a.Mart, a.Object, a.Layer, string(a.Status), dur, a.Error})
	}
	t.Render()
	return nil
}

func renderRunMarkdown(r *output.Renderer, run *state.Run, artifacts []*state.Artifact) {
	r.Println(output.FormatHeader(1, "Run "+run.ID))
	r.Println("")
	r.Println(output.FormatKeyValue("Command", run.Command))
	if run.Target != "" {
		r.Println(output.FormatKeyValue("Target", run.Target))
	}
	r.Println(output.FormatKeyValue("Status", string(run.Status)))
	r.Println(output.FormatKeyValue("Started", run.StartedAt.Format(time.RFC3339)))
	if run.Error != "" {
		r.Println(output.FormatKeyValue("Error", run.Error))
	}
	r.Println("")
	r.Println("| Mart | Object | Layer | Status | Error |")
	r.Println("| ---- | ------ | ----- | ------ | ----- |")
	for _, a := range artifacts {
		r.Printf("| %s | %s | %s | %s | %s |\n", a.Mart, a.Object, a.Layer, a.Status, a.Error)
	}
}

// renderRunsTable prints the run list as a table.
func renderRunsTable(w io.Writer, runs []*state.Run) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No runs recorded yet")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Command", "Target", "Status", "Started", "Duration"})
	for _, run := range runs {
		dur := ""
		if run.CompletedAt != nil {
			dur = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{
			run.ID,
			run.Command,
			run.Target,
			string(run.Status),
			run.StartedAt.Format("2006-01-02 15:04:05"),
			dur,
		})
	}
	t.Render()
}

func renderRunsMarkdown(r *output.Renderer, runs []*state.Run) {
	r.Println(output.FormatHeader(1, "Runs"))
	r.Println("")
	if len(runs) == 0 {
		r.Println("No runs recorded yet")
		return
	}

	r.Println("| Run | Command | Target | Status | Started |")
	r.Println("| --- | ------- | ------ | ------ | ------- |")
	for _, run := range runs {
		r.Printf("| %s | %s | %s | %s | %s |\n",
			run.ID, run.Command, run.Target, run.Status, run.StartedAt.Format(time.RFC3339))
	}
}
