package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/output"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/engine"
)

// DeployOptions holds options for the deploy command.
type DeployOptions struct {
	DryRun bool
}

// NewDeployCommand creates the deploy command.
func NewDeployCommand() *cobra.Command {
	opts := &DeployOptions{}

	cmd := &cobra.Command{
		Use:   "deploy [mart...]",
		Short: "Execute rendered DDL against the target warehouse",
		Long: `Render the selected marts and execute their DDL in dependency order.

Every mart renders before anything executes, so a broken definition aborts
the deployment without touching the warehouse. Within the run, a failed
statement skips every object downstream of it.

Use --dry-run to see the ordered statement plan without connecting.`,
		Example: `  # Deploy all marts to the default target
  wright deploy

  # Deploy one mart to staging
  wright deploy gross_sales --target staging

  # Show the ordered plan without executing
  wright deploy --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Plan the deployment without executing")

	return cmd
}

func runDeploy(cmd *cobra.Command, opts *DeployOptions, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := cmdCtx.Engine.Deploy(cmd.Context(), engine.DeployOptions{
		Marts:  args,
		DryRun: opts.DryRun,
	})
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(result); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderDeployMarkdown(r, result)
	default:
		renderDeployText(r, result)
	}

	if result.Failed > 0 {
		return fmt.Errorf("deployment failed: %d statement(s) failed, %d skipped", result.Failed, result.Skipped)
	}
	return nil
}

func renderDeployText(r *output.Renderer, result *engine.DeployResult) {
	styles := r.Styles()

	if result.DryRun {
		r.Header(1, fmt.Sprintf("Deployment plan (%d statements)", len(result.Steps)))
		for i, step := range result.Steps {
			r.Printf("  %2d. %s %s\n", i+1,
				styles.ObjectName.Render(step.Object), styles.Muted.Render("["+step.Layer+"]"))
		}
		r.Println("")
		r.Println(result.Summary())
		return
	}

	for _, step := range result.Steps {
		status := "success"
		detail := (time.Duration(step.DurationMS) * time.Millisecond).String()
		switch step.Status {
		case engine.StatusFailed:
			status = "failed"
			detail = step.Error
		case engine.StatusSkipped:
			status = "skipped"
			detail = step.Error
		}
		r.StatusLine(step.Object, status, detail)
	}

	r.Println("")
	if result.Failed > 0 {
		r.Error(result.Summary())
		return
	}
	r.Success(result.Summary())
}

func renderDeployMarkdown(r *output.Renderer, result *engine.DeployResult) {
	if result.DryRun {
		r.Println(output.FormatHeader(1, "Deployment plan"))
		r.Println("")
		for i, step := range result.Steps {
			r.Printf("%d. `%s` (%s, %s)\n", i+1, step.Object, step.Mart, step.Layer)
		}
		r.Println("")
		for _, step := range result.Steps {
			r.Println(output.FormatHeader(2, step.Object))
			r.Println("")
			r.Println(output.FormatCodeBlock(step.DDL, "sql"))
			r.Println("")
		}
		r.Println(result.Summary())
		return
	}

	r.Println(output.FormatHeader(1, "Deploy"))
	r.Println("")
	for _, step := range result.Steps {
		r.Printf("- **%s**: %s", step.Object, step.Status)
		if step.Error != "" {
			r.Printf(" (%s)", step.Error)
		}
		r.Println("")
	}
	r.Println("")
	r.Println(result.Summary())
}
