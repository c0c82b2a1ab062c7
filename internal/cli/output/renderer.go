// Package output renders command results in text, markdown or JSON form.
//
// Commands pick the effective mode once and branch on it: interactive
// terminals get styled text, pipes get markdown, and --output json gets
// machine-readable output for CI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Mode selects the output rendering mode.
type Mode string

// Rendering modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a Renderer. An empty or unknown mode behaves as ModeAuto.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: DefaultStyles(),
	}
}

// EffectiveMode resolves ModeAuto against the output destination:
// a terminal renders text, anything else renders markdown.
func (r *Renderer) EffectiveMode() Mode {
	switch r.mode {
	case ModeText, ModeMarkdown, ModeJSON:
		return r.mode
	}
	if isTerminal(r.out) {
		return ModeText
	}
	return ModeMarkdown
}

// Styles returns the style set for direct use by commands.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Println writes a line to the output stream.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted output to the output stream.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// JSON writes v as indented JSON to the output stream.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Success writes a success line with a check mark in text mode.
func (r *Renderer) Success(msg string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintf(r.out, "%s %s\n", r.styles.StatusSuccess.String(), r.styles.Success.Render(msg))
		return
	}
	_, _ = fmt.Fprintln(r.out, msg)
}

// Warning writes a warning line to the error stream.
func (r *Renderer) Warning(msg string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintf(r.errOut, "%s %s\n", r.styles.Warning.Render("!"), msg)
		return
	}
	_, _ = fmt.Fprintf(r.errOut, "Warning: %s\n", msg)
}

// Error writes an error line to the error stream.
func (r *Renderer) Error(msg string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintf(r.errOut, "%s %s\n", r.styles.StatusFailed.String(), r.styles.Error.Render(msg))
		return
	}
	_, _ = fmt.Fprintf(r.errOut, "Error: %s\n", msg)
}

// StatusLine writes a name with a status glyph and an optional detail.
// Status is one of "success", "failed" or "skipped".
func (r *Renderer) StatusLine(name, status, detail string) {
	var icon string
	switch status {
	case "failed":
		icon = r.styles.StatusFailed.String()
	case "skipped":
		icon = r.styles.Muted.Render("-")
	default:
		icon = r.styles.StatusSuccess.String()
	}
	line := fmt.Sprintf("  %s %s", icon, name)
	if detail != "" {
		line += " " + r.styles.Muted.Render(detail)
	}
	_, _ = fmt.Fprintln(r.out, line)
}

// Header writes a section header appropriate for the effective mode.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		_, _ = fmt.Fprintln(r.out, FormatHeader(level, text))
		return
	}
	style := r.styles.Header1
	if level > 1 {
		style = r.styles.Header2
	}
	_, _ = fmt.Fprintln(r.out, style.Render(text))
}

// NewSpinner creates a spinner bound to the renderer's error stream.
// Progress output stays off stdout.
func (r *Renderer) NewSpinner(msg string) *Spinner {
	return newSpinner(r.errOut, msg, r.styles)
}

// isTerminal reports whether the writer is an interactive color terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return termenv.NewOutput(f).ColorProfile() != termenv.Ascii
}
