package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fredr0ck/honey-potter/pkg/api"
)

// IncidentRow is a single row in the Incidents dashboard table.
type IncidentRow struct {
	ID       string
	SourceIP string
	Threat   string
	Level    int
	Status   string
	Events   int
	LastSeen string
}

// incidentRows converts the API incident list into display rows.
func incidentRows(incidents []api.Incident) []IncidentRow {
	rows := make([]IncidentRow, 0, len(incidents))
	for _, inc := range incidents {
		rows = append(rows, IncidentRow{
			ID:       inc.ID,
			SourceIP: inc.SourceIP,
			Threat:   api.LevelName(inc.ThreatLevel),
			Level:    inc.ThreatLevel,
			Status:   inc.Status,
			Events:   inc.EventCount,
			LastSeen: inc.LastSeen.Format("15:04:05"),
		})
	}
	return rows
}

// levelColor returns a lipgloss foreground colour for a threat level.
func levelColor(level int) lipgloss.Color {
	switch level {
	case api.LevelCompromise:
		return lipgloss.Color("1") // red
	case api.LevelBruteForce:
		return lipgloss.Color("3") // yellow
	case api.LevelRecon:
		return lipgloss.Color("6") // cyan
	default:
		return lipgloss.Color("8") // grey
	}
}

// renderIncidents renders the Incidents tab with a movable cursor and a
// marker on the selected incident.
func renderIncidents(incidents []IncidentRow, cursor int, selected string, width int) string {
	if len(incidents) == 0 {
		return dimStyle.Render("  No incidents recorded.")
	}

	colMark := 2
	colID := colWidth(width, 0.22)
	colSource := colWidth(width, 0.16)
	colThreat := colWidth(width, 0.16)
	colStatus := colWidth(width, 0.12)
	colEvents := colWidth(width, 0.08)
	colSeen := colWidth(width, 0.10)

	header := strings.Join([]string{
		strings.Repeat(" ", colMark),
		headerCellStyle.Width(colID).Render("INCIDENT"),
		headerCellStyle.Width(colSource).Render("SOURCE"),
		headerCellStyle.Width(colThreat).Render("THREAT"),
		headerCellStyle.Width(colStatus).Render("STATUS"),
		headerCellStyle.Width(colEvents).Render("EVENTS"),
		headerCellStyle.Width(colSeen).Render("LAST SEEN"),
	}, "")

	var rows []string
	rows = append(rows, header)
	for i, inc := range incidents {
		style := rowStyle
		if i%2 == 0 {
			style = altRowStyle
		}
		if i == cursor {
			style = cursorRowStyle
		}

		mark := "  "
		if inc.ID == selected {
			mark = "» "
		}
		threatCell := lipgloss.NewStyle().
			Width(colThreat).
			Foreground(levelColor(inc.Level)).
			Render(truncate(inc.Threat, colThreat-1))

		row := strings.Join([]string{
			mark,
			style.Width(colID).Render(truncate(inc.ID, colID-1)),
			style.Width(colSource).Render(truncate(inc.SourceIP, colSource-1)),
			threatCell,
			style.Width(colStatus).Render(truncate(inc.Status, colStatus-1)),
			style.Width(colEvents).Render(fmt.Sprintf("%d", inc.Events)),
			style.Width(colSeen).Render(inc.LastSeen),
		}, "")
		rows = append(rows, row)
	}

	return strings.Join(rows, "\n")
}
