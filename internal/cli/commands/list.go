package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/output"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/engine"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mart definitions and their pipeline objects",
		Long: `List every mart definition under the configs directory with its report
type, pattern and mapping counts, and the pipeline objects it renders to.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List all marts (auto-detect output format)
  wright list

  # List marts as JSON
  wright list --output json

  # List marts as Markdown (for agents/scripts)
  wright list --output markdown`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	return cmd
}

func runList(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	infos, err := cmdCtx.Engine.List()
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(infos)
	case output.ModeMarkdown:
		listMarkdown(r, infos)
	default:
		listText(r, infos)
	}
	return nil
}

// listText outputs marts in styled text format.
func listText(r *output.Renderer, infos []engine.MartInfo) {
	styles := r.Styles()

	r.Header(1, fmt.Sprintf("Marts (%d total)", len(infos)))

	for i, info := range infos {
		r.Printf("  %2d. %s %s\n", i+1,
			styles.Bold.Render(info.Mart),
			styles.Muted.Render(fmt.Sprintf("[%s] %d pattern(s), %d mapping(s), %d formula(s)",
				info.ReportType, info.Patterns, info.Mappings, info.Formulas)))
		r.Printf("      %s\n", styles.ObjectName.Render(strings.Join(info.Objects, " -> ")))
	}
}

// listMarkdown outputs marts in markdown format.
func listMarkdown(r *output.Renderer, infos []engine.MartInfo) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Marts (%d total)", len(infos))))
	r.Println("")

	for _, info := range infos {
		r.Println(output.FormatHeader(2, info.Mart))
		r.Println("")
		r.Println(output.FormatKeyValue("Report type", info.ReportType))
		r.Println(output.FormatKeyValue("Definition", info.Path))
		r.Println(output.FormatKeyValue("Patterns", info.Patterns))
		r.Println(output.FormatKeyValue("Mappings", info.Mappings))
		r.Println(output.FormatKeyValue("Formulas", info.Formulas))
		r.Println(output.FormatKeyValue("Objects", strings.Join(info.Objects, ", ")))
		r.Println("")
	}
}
