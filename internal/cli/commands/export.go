package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/output"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [mart...]",
		Short: "Print mart configurations in interchange form",
		Long: `Print mart configurations in the stable interchange form consumed by
other tooling.

The interchange form flattens the dynamic column map to a plain
id_source-to-physical-column mapping and orders keys stably, so exports
diff cleanly between revisions. Multiple marts print as a multi-document
YAML stream.`,
		Example: `  # Export all marts as a YAML stream
  wright export

  # Export one mart
  wright export gross_sales

  # Export as JSON
  wright export --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args)
		},
	}

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	exports, err := cmdCtx.Engine.Export(args)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(exports)
	}

	// Every other mode prints the YAML stream itself.
	for i, exp := range exports {
		if i > 0 {
			r.Println("---")
		}
		r.Println(strings.TrimRight(exp.YAML, "\n"))
	}
	return nil
}
