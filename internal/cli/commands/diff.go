package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/output"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/engine"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [mart...]",
		Short: "Compare rendered DDL against the deployed objects",
		Long: `Render the selected marts and compare each object against the DDL
currently deployed on the target.

Objects are classified as new (not deployed yet), changed or unchanged.
Generated header comments are ignored, so a re-render alone never shows
as a change.`,
		Example: `  # Diff all marts against the default target
  wright diff

  # Diff one mart against prod
  wright diff gross_sales --target prod`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args)
		},
	}

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := cmdCtx.Engine.Diff(cmd.Context(), engine.DiffOptions{Marts: args})
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(result)
	case output.ModeMarkdown:
		renderDiffMarkdown(r, result)
	default:
		renderDiffText(r, result)
	}
	return nil
}

func renderDiffText(r *output.Renderer, result *engine.DiffResult) {
	styles := r.Styles()

	for _, obj := range result.Objects {
		switch obj.Status {
		case engine.DiffNew:
			r.Println("  " + styles.Success.Render("+ "+obj.Object) + " " + styles.Muted.Render("new"))
		case engine.DiffChanged:
			r.Printf("  %s %s\n", styles.Warning.Render("~ "+obj.Object),
				styles.Muted.Render(formatDiffCounts(obj)))
			for _, line := range obj.Lines {
				switch {
				case strings.HasPrefix(line, "+ "):
					r.Println("      " + styles.Success.Render(line))
				case strings.HasPrefix(line, "- "):
					r.Println("      " + styles.Error.Render(line))
				default:
					r.Println("      " + styles.Muted.Render(line))
				}
			}
		default:
			r.Println("  " + styles.Muted.Render("= "+obj.Object+" unchanged"))
		}
	}

	r.Println("")
	r.Println(result.Summary())
}

func renderDiffMarkdown(r *output.Renderer, result *engine.DiffResult) {
	r.Println(output.FormatHeader(1, "Diff"))
	r.Println("")

	for _, obj := range result.Objects {
		switch obj.Status {
		case engine.DiffNew:
			r.Printf("- `%s`: new\n", obj.Object)
		case engine.DiffChanged:
			r.Printf("- `%s`: changed (%s)\n", obj.Object, formatDiffCounts(obj))
		default:
			r.Printf("- `%s`: unchanged\n", obj.Object)
		}
	}
	r.Println("")

	for _, obj := range result.Objects {
		if obj.Status != engine.DiffChanged {
			continue
		}
		r.Println(output.FormatHeader(2, obj.Object))
		r.Println("")
		r.Println(output.FormatCodeBlock(strings.Join(obj.Lines, "\n"), "diff"))
		r.Println("")
	}

	r.Println(result.Summary())
}

func formatDiffCounts(obj engine.ObjectDiff) string {
	return fmt.Sprintf("+%d -%d", obj.Added, obj.Removed)
}
