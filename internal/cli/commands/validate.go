package commands

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spf13/cobra"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/output"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/engine"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [mart...]",
		Short: "Check mart definitions without rendering",
		Long: `Analyze mart definitions for configuration problems.

Each mart gets a report with findings grouped by category (configuration,
formulas, identifiers), a health score (0-100) and remediation hints.
Identifier checks dry-run the alias normalizer, so typos surface here
before they silently match at render time.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Validate all marts
  wright validate

  # Validate one mart
  wright validate gross_sales

  # Output as JSON
  wright validate --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args)
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	reports, err := cmdCtx.Engine.Validate(args)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(reports); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderValidateMarkdown(r, reports)
	default:
		renderValidateText(r, reports)
	}

	invalid := 0
	for _, rep := range reports {
		if !rep.Valid() {
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("validation failed for %d of %d mart(s)", invalid, len(reports))
	}
	return nil
}

func renderValidateText(r *output.Renderer, reports []*engine.ValidateReport) {
	styles := r.Styles()
	titleCaser := cases.Title(language.English)

	for _, rep := range reports {
		r.Println("")
		r.Println(styles.Header1.Render("Mart: " + rep.Mart))
		r.Println(styles.Muted.Render(strings.Repeat("=", 55)))

		currentGroup := ""
		for _, check := range rep.Checks {
			if check.Group != currentGroup {
				currentGroup = check.Group
				r.Println("")
				r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
				r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
			}

			icon := styles.StatusSuccess.String()
			switch check.Status {
			case engine.CheckWarning:
				icon = styles.Warning.Render("!")
			case engine.CheckError:
				icon = styles.StatusFailed.String()
			}

			line := icon + " "
			if check.Code != "" {
				line += check.Code + ": "
			}
			line += check.Message
			r.Println("   " + line)
		}

		r.Println("")
		r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
		scoreStyle := styles.Success
		if rep.Score < 70 {
			scoreStyle = styles.Warning
		}
		if rep.Score < 50 {
			scoreStyle = styles.Error
		}
		r.Printf("   Health Score: %s (%d error(s), %d warning(s))\n",
			scoreStyle.Render(fmt.Sprintf("%d/100", rep.Score)), rep.Errors, rep.Warnings)

		if len(rep.Recommendations) > 0 {
			r.Println("")
			r.Println(styles.Header2.Render("Recommendations"))
			for i, rec := range rep.Recommendations {
				r.Printf("   %d. %s\n", i+1, rec)
			}
		}
		r.Println("")
	}
}

func renderValidateMarkdown(r *output.Renderer, reports []*engine.ValidateReport) {
	titleCaser := cases.Title(language.English)

	for _, rep := range reports {
		r.Println(output.FormatHeader(1, "Mart: "+rep.Mart))
		r.Println("")

		currentGroup := ""
		for _, check := range rep.Checks {
			if check.Group != currentGroup {
				currentGroup = check.Group
				r.Println(output.FormatHeader(2, titleCaser.String(currentGroup)))
				r.Println("")
			}

			status := "PASS"
			switch check.Status {
			case engine.CheckWarning:
				status = "WARN"
			case engine.CheckError:
				status = "ERROR"
			}

			if check.Code != "" {
				r.Printf("- **[%s]** %s: %s\n", status, check.Code, check.Message)
			} else {
				r.Printf("- **[%s]** %s\n", status, check.Message)
			}
		}

		r.Println("")
		r.Println(output.FormatKeyValue("Score", fmt.Sprintf("%d/100", rep.Score)))
		r.Println(output.FormatKeyValue("Errors", rep.Errors))
		r.Println(output.FormatKeyValue("Warnings", rep.Warnings))

		if len(rep.Recommendations) > 0 {
			r.Println("")
			r.Println(output.FormatHeader(2, "Recommendations"))
			r.Println("")
			for i, rec := range rep.Recommendations {
				r.Printf("%d. %s\n", i+1, rec)
			}
		}
		r.Println("")
	}
}
