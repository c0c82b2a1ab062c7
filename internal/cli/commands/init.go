package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Wright project",
		Long: `Initialize a new Wright project with default directory structure and configuration.

This creates:
  - marts/ directory for mart definitions
  - wright.yaml configuration file
  - .gitignore covering rendered SQL and run state

Use --example to create a working demo project with two mart definitions
and a saved mapping-table extract for the discover command.`,
		Example: `  # Initialize in current directory
  wright init

  # Initialize with a working example
  wright init --example

  # Initialize in a new directory
  wright init finance-marts --example

  # Force overwrite existing config
  wright init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			r := NewCommandContextWithoutEngine(cmd).Renderer

			if example {
				return runInitExample(r, dir, force)
			}
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Create an example project with marts and a discovery extract")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := prepareProjectDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("Wright project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Describe your marts in marts/*.yaml")
	r.Println("  2. Run 'wright validate' to check the definitions")
	r.Println("  3. Run 'wright generate' to render the pipeline SQL")
	r.Println("  4. Configure a target and run 'wright deploy'")

	return nil
}

func runInitExample(r *output.Renderer, dir string, force bool) error {
	if err := prepareProjectDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Marts")
	for _, f := range groups["marts"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Extracts")
	for _, f := range groups["extracts"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("Wright project initialized with example marts!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  wright list        View marts and their pipeline objects")
	r.Println("  wright validate    Check definitions and identifier health")
	r.Println("  wright generate    Render the four-object pipeline SQL")
	r.Println("  wright discover --file extracts/pnl_extract.csv")

	return nil
}

// prepareProjectDir creates the target directory and refuses to touch a
// directory that already holds a wright.yaml unless forced.
func prepareProjectDir(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "wright.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("wright.yaml already exists. Use --force to overwrite")
	}

	return nil
}
