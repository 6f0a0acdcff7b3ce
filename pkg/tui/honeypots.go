package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fredr0ck/honey-potter/pkg/api"
)

// HoneypotRow is a single row in the Honeypots dashboard table.
type HoneypotRow struct {
	Name    string
	Type    string // "ssh", "postgres", "http"
	Status  string // "running", "stopped", "error"
	Address string // listen address:port
}

// honeypotRows converts the API honeypot list into display rows.
func honeypotRows(honeypots []api.Honeypot) []HoneypotRow {
	rows := make([]HoneypotRow, 0, len(honeypots))
	for _, hp := range honeypots {
		rows = append(rows, HoneypotRow{
			Name:    hp.Name,
			Type:    hp.Type,
			Status:  hp.Status,
			Address: fmt.Sprintf("%s:%d", hp.Address, hp.Port),
		})
	}
	return rows
}

// honeypotStatusColor returns a lipgloss foreground colour for a honeypot
// status string.
func honeypotStatusColor(status string) lipgloss.Color {
	switch strings.ToLower(status) {
	case "running":
		return lipgloss.Color("2") // green
	case "stopped":
		return lipgloss.Color("3") // yellow
	case "error":
		return lipgloss.Color("1") // red
	default:
		return lipgloss.Color("8") // grey
	}
}

// renderHoneypots renders the Honeypots tab content as a lipgloss-styled
// table and returns it as a string. width constrains the overall layout.
func renderHoneypots(honeypots []HoneypotRow, width int) string {
	if len(honeypots) == 0 {
		return dimStyle.Render("  No honeypots deployed.")
	}

	// Column widths — scale with terminal width but cap sensibly.
	colName := colWidth(width, 0.28)
	colType := colWidth(width, 0.14)
	colStatus := colWidth(width, 0.14)
	colAddr := colWidth(width, 0.30)

	header := strings.Join([]string{
		headerCellStyle.Width(colName).Render("NAME"),
		headerCellStyle.Width(colType).Render("TYPE"),
		headerCellStyle.Width(colStatus).Render("STATUS"),
		headerCellStyle.Width(colAddr).Render("ADDRESS"),
	}, "")

	var rows []string
	rows = append(rows, header)
	for i, hp := range honeypots {
		style := rowStyle
		if i%2 == 0 {
			style = altRowStyle
		}
		statusCell := lipgloss.NewStyle().
			Width(colStatus).
			Foreground(honeypotStatusColor(hp.Status)).
			Render(truncate(hp.Status, colStatus-1))

		row := strings.Join([]string{
			style.Width(colName).Render(truncate(hp.Name, colName-1)),
			style.Width(colType).Render(truncate(hp.Type, colType-1)),
			statusCell,
			style.Width(colAddr).Render(truncate(hp.Address, colAddr-1)),
		}, "")
		rows = append(rows, row)
	}

	return strings.Join(rows, "\n")
}

// colWidth converts a fractional width into an integer column width, leaving
// a small gutter between columns.
func colWidth(totalWidth int, fraction float64) int {
	w := int(float64(totalWidth) * fraction)
	if w < 8 {
		w = 8
	}
	return w
}

// truncate shortens s to maxLen runes, appending "…" if truncation occurred.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return fmt.Sprintf("%s…", string(runes[:maxLen-1]))
}
