package output

import (
	"fmt"
	"strings"
)

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item with a bold key.
func FormatKeyValue(key string, value any) string {
	return fmt.Sprintf("- **%s**: %v", key, value)
}

// FormatCodeBlock returns a fenced markdown code block.
func FormatCodeBlock(code, lang string) string {
	return fmt.Sprintf("```%s\n%s\n```", lang, strings.TrimRight(code, "\n"))
}

// RunEvent is a JSON-lines progress event emitted by generate --json.
// Events arrive in order: one run_start, one mart_complete per mart,
// one run_complete.
type RunEvent struct {
	Event string `json:"event"` // run_start, mart_complete, run_complete
	RunID string `json:"run_id,omitempty"`

	// run_start
	Marts []string `json:"marts,omitempty"`

	// mart_complete
	Mart    string `json:"mart,omitempty"`
	Status  string `json:"status,omitempty"`
	Objects int    `json:"objects,omitempty"`
	Error   string `json:"error,omitempty"`

	// run_complete
	TotalMarts int   `json:"total_marts,omitempty"`
	Rendered   int   `json:"rendered,omitempty"`
	Failed     int   `json:"failed,omitempty"`
	TotalMS    int64 `json:"total_ms,omitempty"`
}
