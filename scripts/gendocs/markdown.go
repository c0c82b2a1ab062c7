package main

import (
	"fmt"
	"strings"
	"unicode"
)

// MarkdownWriter accumulates a markdown document in memory.
type MarkdownWriter struct {
	sb strings.Builder
}

// NewMarkdownWriter creates an empty document.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// Frontmatter writes the YAML frontmatter block for the docs site.
func (w *MarkdownWriter) Frontmatter(title, description string) {
	w.sb.WriteString("---\n")
	fmt.Fprintf(&w.sb, "title: %s\n", title)
	if description != "" {
		fmt.Fprintf(&w.sb, "description: %s\n", cleanDescription(description))
	}
	w.sb.WriteString("---\n\n")
}

// GeneratedMarker notes that the file is machine-written.
func (w *MarkdownWriter) GeneratedMarker() {
	w.sb.WriteString("<!-- Generated by scripts/gendocs. Do not edit by hand. -->\n\n")
}

// Header writes a heading at the given level.
func (w *MarkdownWriter) Header(level int, text string) {
	w.sb.WriteString(strings.Repeat("#", level))
	w.sb.WriteString(" ")
	w.sb.WriteString(text)
	w.sb.WriteString("\n\n")
}

// Paragraph writes a block of prose followed by a blank line.
func (w *MarkdownWriter) Paragraph(text string) {
	w.sb.WriteString(text)
	w.sb.WriteString("\n\n")
}

// CodeBlock writes a fenced code block.
func (w *MarkdownWriter) CodeBlock(lang, code string) {
	fmt.Fprintf(&w.sb, "```%s\n%s\n```\n\n", lang, strings.TrimRight(code, "\n"))
}

// BulletList writes one bullet per item.
func (w *MarkdownWriter) BulletList(items []string) {
	for _, item := range items {
		w.sb.WriteString("- ")
		w.sb.WriteString(item)
		w.sb.WriteString("\n")
	}
	w.sb.WriteString("\n")
}

// Table writes a pipe table. Cell text is escaped so embedded pipes
// and newlines do not break the row.
func (w *MarkdownWriter) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	w.sb.WriteString("| " + strings.Join(escapeCells(headers), " | ") + " |\n")

	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	w.sb.WriteString("| " + strings.Join(seps, " | ") + " |\n")

	for _, row := range rows {
		w.sb.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
	w.sb.WriteString("\n")
}

// Bytes returns the document rendered so far.
func (w *MarkdownWriter) Bytes() []byte {
	return []byte(w.sb.String())
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", "\\|")
		c = strings.ReplaceAll(c, "\n", " ")
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// InlineCode wraps text in backticks.
func InlineCode(text string) string {
	return "`" + text + "`"
}

// cleanDescription normalizes a one-line description for table cells
// and frontmatter: single line, leading capital, no trailing period.
func cleanDescription(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = strings.TrimSuffix(text, ".")
	if text == "" {
		return text
	}

	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
