package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli/output"
	"github.com/tghanchidnx/Databridge-AI-sub003/internal/engine"
)

// watchDebounce coalesces bursts of filesystem events into one render.
const watchDebounce = 250 * time.Millisecond

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	Out        string
	SkipState  bool
	JSONOutput bool
	Watch      bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [mart...]",
		Short: "Render mart definitions into DDL files",
		Long: `Render mart definitions into their four-object DDL chains.

By default, renders every definition under the configs directory. Pass mart
names to render specific definitions. Each mart writes one SQL file per
pipeline object under the output directory.`,
		Example: `  # Render all marts
  wright generate

  # Render specific marts
  wright generate gross_sales opex_detail

  # Render into a different directory
  wright generate --out /tmp/ddl

  # Emit JSON lines for CI pipelines
  wright generate --json

  # Re-render whenever a definition changes
  wright generate --watch`,
		Aliases: []string{"gen"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Directory to write DDL files to (defaults to output_dir)")
	cmd.Flags().BoolVar(&opts.SkipState, "skip-state", false, "Do not record the run in the state database")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output as JSON lines for progress tracking")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Watch the configs directory and re-render on change")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.Watch {
		return watchGenerate(cmd, cmdCtx, opts, args)
	}

	result, err := cmdCtx.Engine.Generate(cmd.Context(), engine.GenerateOptions{
		Marts:     args,
		OutputDir: opts.Out,
		SkipState: opts.SkipState,
	})
	if err != nil {
		return err
	}

	if opts.JSONOutput {
		emitGenerateEvents(cmd.OutOrStdout(), result)
	} else {
		renderGenerateResult(cmdCtx.Renderer, result)
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d mart(s) failed to render", result.Failed, len(result.Marts))
	}
	return nil
}

// watchGenerate renders once, then re-renders whenever a definition under
// the configs directory changes. Render failures are reported and the
// watch keeps running.
func watchGenerate(cmd *cobra.Command, cmdCtx *CommandContext, opts *GenerateOptions, args []string) error {
	r := cmdCtx.Renderer

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cmdCtx.Cfg.ConfigsDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cmdCtx.Cfg.ConfigsDir, err)
	}

	render := func() {
		result, err := cmdCtx.Engine.Generate(cmd.Context(), engine.GenerateOptions{
			Marts:     args,
			OutputDir: opts.Out,
			SkipState: opts.SkipState,
		})
		if err != nil {
			r.Error(err.Error())
			return
		}
		if opts.JSONOutput {
			emitGenerateEvents(cmd.OutOrStdout(), result)
		} else {
			renderGenerateResult(r, result)
		}
	}

	render()
	if !opts.JSONOutput {
		r.Printf("Watching %s for changes (Ctrl+C to stop)\n", cmdCtx.Cfg.ConfigsDir)
	}

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(ev.Name))
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(watchDebounce)
		case <-timer.C:
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Error(fmt.Sprintf("watch error: %v", err))
		case <-cmd.Context().Done():
			return nil
		}
	}
}

// emitGenerateEvents writes the run as JSON lines: one run_start, one
// mart_complete per mart, one run_complete.
func emitGenerateEvents(w io.Writer, result *engine.GenerateResult) {
	enc := json.NewEncoder(w)

	marts := make([]string, 0, len(result.Marts))
	for _, m := range result.Marts {
		marts = append(marts, m.Mart)
	}
	_ = enc.Encode(output.RunEvent{Event: "run_start", RunID: result.RunID, Marts: marts})

	for _, m := range result.Marts {
		event := output.RunEvent{
			Event:   "mart_complete",
			RunID:   result.RunID,
			Mart:    m.Mart,
			Status:  m.Status,
			Objects: len(m.Files),
		}
		if m.Error != "" {
			event.Error = m.Error
		}
		_ = enc.Encode(event)
	}

	status := "completed"
	if result.Failed > 0 {
		status = "failed"
	}
	_ = enc.Encode(output.RunEvent{
		Event:      "run_complete",
		RunID:      result.RunID,
		Status:     status,
		TotalMarts: len(result.Marts),
		Rendered:   result.Rendered,
		Failed:     result.Failed,
		TotalMS:    result.DurationMS,
	})
}

func renderGenerateResult(r *output.Renderer, result *engine.GenerateResult) {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		_ = r.JSON(result)
	case output.ModeMarkdown:
		renderGenerateMarkdown(r, result)
	default:
		renderGenerateText(r, result)
	}
}

func renderGenerateText(r *output.Renderer, result *engine.GenerateResult) {
	styles := r.Styles()

	for _, m := range result.Marts {
		status := "success"
		detail := fmt.Sprintf("%d file(s)", len(m.Files))
		if m.Status == engine.StatusFailed {
			status = "failed"
			detail = m.Error
		}
		r.StatusLine(m.Mart, status, detail)
		for _, d := range m.Errors {
			r.Println("      " + styles.Error.Render(d.Code+" "+d.Message))
		}
		for _, d := range m.Warnings {
			r.Println("      " + styles.Warning.Render(d.Code+" "+d.Message))
		}
	}

	r.Println("")
	if result.Failed > 0 {
		r.Error(result.Summary())
		return
	}
	r.Success(result.Summary())
}

func renderGenerateMarkdown(r *output.Renderer, result *engine.GenerateResult) {
	r.Println(output.FormatHeader(1, "Generate"))
	r.Println("")

	for _, m := range result.Marts {
		r.Printf("- **%s**: %s (%d file(s))\n", m.Mart, m.Status, len(m.Files))
		if m.Error != "" {
			r.Printf("  - error: %s\n", m.Error)
		}
		for _, d := range m.Errors {
			r.Printf("  - %s: %s\n", d.Code, d.Message)
		}
		for _, d := range m.Warnings {
			r.Printf("  - %s: %s\n", d.Code, d.Message)
		}
	}

	r.Println("")
	r.Println(result.Summary())
}
