package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used for terminal rendering.
type Styles struct {
	Header1    lipgloss.Style
	Header2    lipgloss.Style
	Bold       lipgloss.Style
	Muted      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Info       lipgloss.Style
	ObjectName lipgloss.Style

	// StatusSuccess and StatusFailed carry their glyphs; render with String().
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// DefaultStyles returns the default style set. Colors adapt to the
// terminal's background; lipgloss degrades them automatically when the
// output is not a color terminal.
func DefaultStyles() *Styles {
	return &Styles{
		Header1: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "39"}),
		Header2: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "29", Dark: "42"}),
		Bold:  lipgloss.NewStyle().Bold(true),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "245", Dark: "240"}),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"}),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"}),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"}),
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "31", Dark: "45"}),
		ObjectName: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "54", Dark: "141"}),
		StatusSuccess: lipgloss.NewStyle().
			SetString("✓").
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"}),
		StatusFailed: lipgloss.NewStyle().
			SetString("✗").
			Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"}),
	}
}
