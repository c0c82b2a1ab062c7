package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/output"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/engine"
)

// DiscoverOptions holds options for the discover command.
type DiscoverOptions struct {
	File           string
	MappingTable   string
	HierarchyTable string
	Name           string
	Write          bool
}

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand() *cobra.Command {
	opts := &DiscoverOptions{}

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Propose a mart definition from observed identifiers",
		Long: `Analyze an identifier observation and propose a mart definition.

The observation comes from a saved extract (--file, YAML histogram or a
two-column id_source,count CSV) or from live GROUP BY queries against the
target's mapping table (--mapping-table). The heuristics classify the
hierarchy shape, suggest join patterns and column mappings, and flag
probable typos. Fuzzy matches accepted during discovery are learned into
the state database, so later runs resolve the same misspelling directly.

The proposed definition prints to stdout; --write saves it into the
configs directory instead.`,
		Example: `  # Propose a definition from a saved extract
  wright discover --file extract.csv --name pnl_actuals

  # Observe the live mapping table on the default target
  wright discover --mapping-table FIN_MAPPING --hierarchy-table FIN_HIERARCHY

  # Write the proposal into the configs directory
  wright discover --file extract.csv --name pnl_actuals --write`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiscover(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Observation file (.yaml histogram or .csv extract)")
	cmd.Flags().StringVar(&opts.MappingTable, "mapping-table", "", "Mapping table to observe on the target")
	cmd.Flags().StringVar(&opts.HierarchyTable, "hierarchy-table", "", "Hierarchy table for node counts (live observation)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Name for the suggested mart (default: discovered)")
	cmd.Flags().BoolVar(&opts.Write, "write", false, "Write the definition into the configs directory")

	return cmd
}

func runDiscover(cmd *cobra.Command, opts *DiscoverOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := cmdCtx.Engine.Discover(cmd.Context(), engine.DiscoverOptions{
		File:           opts.File,
		MappingTable:   opts.MappingTable,
		HierarchyTable: opts.HierarchyTable,
		Name:           opts.Name,
	})
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer

	if opts.Write {
		path, err := writeDiscovered(cmdCtx.Cfg.ConfigsDir, opts.Name, result.Definition)
		if err != nil {
			return err
		}
		r.StatusLine(path, "success", "")
		r.Success(result.Summary())
		return nil
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(result)
	case output.ModeMarkdown:
		renderDiscoverMarkdown(r, result)
	default:
		renderDiscoverText(r, result)
	}
	return nil
}

// writeDiscovered saves the proposed definition under the configs
// directory. An existing file is never overwritten; discovery output is a
// starting point, not a source of truth.
func writeDiscovered(configsDir, name, definition string) (string, error) {
	if name == "" {
		name = "discovered"
	}
	if err := os.MkdirAll(configsDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create configs directory: %w", err)
	}

	path := filepath.Join(configsDir, name+".yaml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists; pass a different --name or remove the file", path)
	}

	if err := os.WriteFile(path, []byte(definition), 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func renderDiscoverText(r *output.Renderer, result *engine.DiscoverResult) {
	styles := r.Styles()

	r.Header(1, "Discovery report")
	r.Printf("   Hierarchy: %s (%.0f%% confidence)\n", result.HierarchyType, result.Confidence*100)
	r.Printf("   Suggested: %d pattern(s), %d mapping(s)\n", result.Patterns, result.Mappings)

	if len(result.Issues) > 0 {
		r.Println("")
		r.Println(styles.Header2.Render("Issues"))
		for _, issue := range result.Issues {
			r.Printf("   %s %s: %s\n", styles.Warning.Render("!"), issue.Code, issue.Message)
		}
	}

	r.Println("")
	r.Println(styles.Header2.Render("Suggested definition"))
	r.Println(result.Definition)
}

func renderDiscoverMarkdown(r *output.Renderer, result *engine.DiscoverResult) {
	r.Println(output.FormatHeader(1, "Discovery report"))
	r.Println("")
	r.Println(output.FormatKeyValue("Hierarchy", result.HierarchyType))
	r.Println(output.FormatKeyValue("Confidence", fmt.Sprintf("%.0f%%", result.Confidence*100)))
	r.Println(output.FormatKeyValue("Patterns", result.Patterns))
	r.Println(output.FormatKeyValue("Mappings", result.Mappings))
	r.Println("")

	if len(result.Issues) > 0 {
		r.Println(output.FormatHeader(2, "Issues"))
		r.Println("")
		for _, issue := range result.Issues {
			r.Printf("- **%s** (%s): %s\n", issue.Code, issue.Severity, issue.Message)
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Suggested definition"))
	r.Println("")
	r.Println(output.FormatCodeBlock(result.Definition, "yaml"))
}
