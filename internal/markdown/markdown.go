// Package markdown holds small string builders for the generated pages.
package markdown

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Title renders a heading of the given level.
func Title(level int, text string) string {
	level = max(1, min(level, 6))
	return strings.Repeat("#", level) + " " + strings.TrimSpace(text)
}

// Anchor renders a link to the heading of ref.
func Anchor(ref, text string) string {
	return "[" + text + "](#" + Slug(ref) + ")"
}

// Link renders a link to another page.
func Link(text, href string) string {
	return "[" + text + "](" + href + ")"
}

// Slug returns the heading anchor for the text the way GitHub computes it:
// lower case, letters, digits, '-' and '_' kept, spaces turned into '-'.
func Slug(text string) string {
	trimmed := strings.ToLower(strings.TrimSpace(text))

	var out strings.Builder
	out.Grow(len(trimmed))
	for _, r := range trimmed {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			out.WriteRune(r)
		case unicode.IsSpace(r):
			out.WriteByte('-')
		}
	}
	return out.String()
}

// RequiredName marks required property names.
func RequiredName(name string, required bool) string {
	if required {
		return name + "*"
	}
	return name
}

// Code wraps text in an inline code span.
func Code(text string) string {
	return "`" + strings.ReplaceAll(text, "`", "\\`") + "`"
}

// Bold wraps text in strong emphasis.
func Bold(text string) string {
	return "**" + text + "**"
}

// CodeBlock renders a fenced code block.
func CodeBlock(lang, body string) string {
	return "```" + lang + "\n" + strings.TrimRight(body, "\n") + "\n```"
}

// Paragraphs joins non-empty blocks with blank lines.
func Paragraphs(blocks ...string) string {
	res := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			res = append(res, b)
		}
	}
	return strings.Join(res, "\n\n")
}

// Table renders rows as a pipe table, the first row being the header.
// Cells are escaped and columns padded to the same display width.
func Table(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}

	cells := make([][]string, len(rows))
	widths := make([]int, cols)
	for i, row := range rows {
		cells[i] = make([]string, cols)
		for j := 0; j < cols; j++ {
			if j < len(row) {
				cells[i][j] = escapeCell(row[j])
			}
			widths[j] = max(widths[j], runewidth.StringWidth(cells[i][j]), 3)
		}
	}

	var out strings.Builder
	writeRow := func(row []string) {
		out.WriteString("|")
		for j, cell := range row {
			out.WriteString(" ")
			out.WriteString(runewidth.FillRight(cell, widths[j]))
			out.WriteString(" |")
		}
		out.WriteString("\n")
	}

	writeRow(cells[0])
	sep := make([]string, cols)
	for j := range sep {
		sep[j] = strings.Repeat("-", widths[j])
	}
	writeRow(sep)
	for _, row := range cells[1:] {
		writeRow(row)
	}

	return strings.TrimRight(out.String(), "\n")
}

func escapeCell(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "|", "\\|")
	return strings.ReplaceAll(value, "\n", "<br>")
}
