package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fredr0ck/honey-potter/pkg/api"
)

// EventRow is a single row in the Events dashboard table.
type EventRow struct {
	Time     string
	Type     string
	Level    int
	Threat   string
	SourceIP string
	Token    bool // event carries a triggered honeytoken
}

// eventRows converts an API event list into display rows. timeline selects
// the longer timestamp format used for ordered incident timelines.
func eventRows(events []api.Event, timeline bool) []EventRow {
	layout := "15:04:05"
	if timeline {
		layout = "01-02 15:04:05"
	}
	rows := make([]EventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, EventRow{
			Time:     e.Timestamp.Format(layout),
			Type:     e.EventType,
			Level:    e.Level,
			Threat:   api.LevelName(e.Level),
			SourceIP: e.SourceIP,
			Token:    e.HoneytokenID != "",
		})
	}
	return rows
}

// renderEvents renders an event table, newest data as fetched.
func renderEvents(events []EventRow, width int) string {
	if len(events) == 0 {
		return dimStyle.Render("  No events recorded.")
	}

	colTime := colWidth(width, 0.16)
	colType := colWidth(width, 0.24)
	colThreat := colWidth(width, 0.16)
	colSource := colWidth(width, 0.18)
	colToken := colWidth(width, 0.12)

	header := strings.Join([]string{
		headerCellStyle.Width(colTime).Render("TIME"),
		headerCellStyle.Width(colType).Render("TYPE"),
		headerCellStyle.Width(colThreat).Render("THREAT"),
		headerCellStyle.Width(colSource).Render("SOURCE"),
		headerCellStyle.Width(colToken).Render("TOKEN"),
	}, "")

	var rows []string
	rows = append(rows, header)
	for i, e := range events {
		style := rowStyle
		if i%2 == 0 {
			style = altRowStyle
		}
		threatCell := lipgloss.NewStyle().
			Width(colThreat).
			Foreground(levelColor(e.Level)).
			Render(truncate(e.Threat, colThreat-1))

		token := ""
		if e.Token {
			token = "TRIGGERED"
		}
		tokenCell := lipgloss.NewStyle().
			Width(colToken).
			Foreground(lipgloss.Color("1")).
			Bold(e.Token).
			Render(token)

		row := strings.Join([]string{
			style.Width(colTime).Render(e.Time),
			style.Width(colType).Render(truncate(e.Type, colType-1)),
			threatCell,
			style.Width(colSource).Render(truncate(e.SourceIP, colSource-1)),
			tokenCell,
		}, "")
		rows = append(rows, row)
	}

	return strings.Join(rows, "\n")
}
