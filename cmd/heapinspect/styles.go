package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7C3AED"}
	secondaryColor = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#06B6D4"}
	successColor   = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"}
	errorColor     = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}
	mutedColor     = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}
	fgColor        = lipgloss.AdaptiveColor{Light: "#1E1E2E", Dark: "#CDD6F4"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(secondaryColor).
				Bold(true).
				Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Padding(0, 1)

	usedSlotStyle = lipgloss.NewStyle().Foreground(successColor)
	freeSlotStyle = lipgloss.NewStyle().Foreground(mutedColor)

	messageStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true).
			Padding(1, 2)
)

func renderTitle(icon, title string) string {
	return titleStyle.Render(icon + "  " + title)
}

func renderHeaderWithCount(text string, count int) string {
	if count >= 0 {
		return headerStyle.Render(fmt.Sprintf(" %s (%d) ", text, count))
	}
	return headerStyle.Render(" " + text + " ")
}

func renderError(err error) string {
	return errorStyle.Render("Error: " + err.Error())
}

// renderTable lays out rows under headers, each column as wide as its widest
// cell up to maxCellWidth.
func renderTable(headers []string, rows [][]string) string {
	widths := columnWidths(headers, rows)

	var b strings.Builder
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = tableHeaderStyle.Render(padString(h, widths[i]))
	}
	b.WriteString(strings.Join(cells, " ") + "\n")

	separator := make([]string, len(widths))
	for i, w := range widths {
		separator[i] = strings.Repeat("─", w+2)
	}
	b.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render(strings.Join(separator, "┼")) + "\n")

	for _, row := range rows {
		cells = cells[:0]
		for i := range headers {
			value := ""
			if i < len(row) {
				value = truncateString(row[i], widths[i])
			}
			cells = append(cells, cellStyle.Render(padString(value, widths[i])))
		}
		b.WriteString(strings.Join(cells, " ") + "\n")
	}
	return b.String()
}

const maxCellWidth = 32

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxCellWidth)
	}
	return widths
}

func padString(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func truncateString(s string, maxWidth int) string {
	if len(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return s[:maxWidth]
	}
	return s[:maxWidth-3] + "..."
}
