package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli"
)

var flagHeaders = []string{"Option", "Short", "Default", "Description"}

// generateCLIDocs walks the Cobra command tree and writes one page per
// command plus an index page.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rootCmd := cli.NewRootCmd()

	if err := writeDoc(outDir, "index", indexPage(rootCmd)); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	log.Printf("  Generated index.md")

	for _, cmd := range visibleCommands(rootCmd) {
		if err := writeDoc(outDir, cmd.Name(), commandPage(cmd)); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.Name(), err)
		}
		log.Printf("  Generated %s.md", cmd.Name())
	}

	return nil
}

// visibleCommands filters out hidden commands and Cobra's internals.
func visibleCommands(parent *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range parent.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func writeDoc(outDir, name string, w *MarkdownWriter) error {
	return os.WriteFile(filepath.Join(outDir, name+".md"), w.Bytes(), 0600)
}

// indexPage builds the CLI overview: command table, global flags,
// environment variables, and exit codes.
func indexPage(rootCmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()

	w.Frontmatter("CLI Reference", "Command-line interface reference for Wright")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("Wright provides a command-line interface for validating mart definitions, rendering Snowflake pipelines, and deploying the generated objects.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/tghanchidnx/Databridge-AI-sub003/cmd/wright@latest")

	w.Header(2, "Basic Usage")
	w.CodeBlock("bash", "wright <command> [options]")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range visibleCommands(rootCmd) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	w.Table(flagHeaders, flagRows(rootCmd.PersistentFlags()))

	w.Header(2, "Environment Variables")
	w.Paragraph("Wright respects these environment variables:")
	w.Table([]string{"Variable", "Description"}, [][]string{
		{InlineCode("WRIGHT_CONFIGS_DIR"), "Default mart definitions directory"},
		{InlineCode("WRIGHT_OUTPUT_DIR"), "Default directory for rendered DDL"},
		{InlineCode("WRIGHT_STATE_PATH"), "Default state database path"},
		{InlineCode("WRIGHT_DEFAULT_TARGET"), "Default deploy target name"},
		{InlineCode("WRIGHT_OUTPUT"), "Default output format"},
		{InlineCode("WRIGHT_VERBOSE"), "Enable verbose output"},
	})
	w.Paragraph("Command-line flags take precedence over environment variables.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error (check stderr for details)"},
	})

	w.Header(2, "Getting Help")
	w.CodeBlock("bash", `# General help
wright help
wright --help

# Command-specific help
wright generate --help`)

	return w
}

// commandPage builds the reference page for a single command.
func commandPage(cmd *cobra.Command) *MarkdownWriter {
	w := NewMarkdownWriter()

	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	useLine := cmd.UseLine()
	if cmd.HasSubCommands() {
		useLine = fmt.Sprintf("wright %s <subcommand> [options]", cmd.Name())
	} else if !strings.HasPrefix(useLine, "wright") {
		useLine = "wright " + useLine
	}
	w.CodeBlock("bash", useLine)

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		var aliases []string
		for _, alias := range cmd.Aliases {
			aliases = append(aliases, InlineCode(alias))
		}
		w.BulletList(aliases)
	}

	if cmd.HasSubCommands() {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range visibleCommands(cmd) {
			rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		w.Table(flagHeaders, flagRows(cmd.LocalFlags()))
	}

	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		w.Table(flagHeaders, flagRows(cmd.InheritedFlags()))
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	return w
}

// flagRows converts a flag set to table rows, skipping hidden flags.
func flagRows(flags *pflag.FlagSet) [][]string {
	var rows [][]string

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}

		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}

		defVal := f.DefValue
		if f.Value.Type() == "string" && defVal != "" {
			defVal = InlineCode(defVal)
		}

		rows = append(rows, []string{
			InlineCode("--" + f.Name),
			short,
			defVal,
			cleanDescription(f.Usage),
		})
	})

	return rows
}

// dedent strips the common leading whitespace Cobra examples carry
// from source indentation.
func dedent(text string) string {
	lines := strings.Split(text, "\n")

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	if minIndent <= 0 {
		return strings.TrimSpace(text)
	}

	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
