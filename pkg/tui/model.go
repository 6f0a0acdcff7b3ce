// Package tui provides the interactive terminal dashboard for potterctl.
// It is built on the bubbletea/lipgloss stack and renders three tabs:
// Honeypots, Incidents, and Events. Data is refreshed every 5 seconds
// through the honey-potter API client, and an incident selected on the
// Incidents tab narrows the Events tab to that incident's timeline.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fredr0ck/honey-potter/pkg/api"
)

// ---------------------------------------------------------------------------
// Shared styles
// ---------------------------------------------------------------------------

var (
	// titleStyle renders the application title bar.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("130")).
			Padding(0, 1)

	// activeTabStyle renders the currently selected tab label.
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("130")).
			Padding(0, 2)

	// inactiveTabStyle renders unselected tab labels.
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	// headerCellStyle is used for table column headers.
	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("11")).
			PaddingRight(1)

	// rowStyle is used for odd-numbered table rows.
	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingRight(1)

	// altRowStyle is used for even-numbered table rows (zebra striping).
	altRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Background(lipgloss.Color("236")).
			PaddingRight(1)

	// cursorRowStyle highlights the row under the cursor.
	cursorRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("130")).
			PaddingRight(1)

	// dimStyle is used for "no data" messages.
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	// statusBarStyle renders the bottom status bar.
	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(1)

	// errorStyle renders error messages.
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true).
			PaddingLeft(1)
)

// ---------------------------------------------------------------------------
// Tab type
// ---------------------------------------------------------------------------

// tab identifies the currently active dashboard tab.
type tab int

const (
	tabHoneypots tab = iota
	tabIncidents
	tabEvents
	tabCount // sentinel — must stay last
)

// ---------------------------------------------------------------------------
// Tea messages
// ---------------------------------------------------------------------------

// tickMsg is sent every refreshInterval to trigger a data refresh.
type tickMsg time.Time

// dataMsg carries a freshly fetched dataset. timeline is non-nil only when
// an incident was selected at fetch time.
type dataMsg struct {
	honeypots []HoneypotRow
	incidents []IncidentRow
	events    []EventRow
	timeline  []EventRow
}

// errMsg carries a fetch error to display in the status bar.
type errMsg error

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

const (
	refreshInterval = 5 * time.Second
	fetchTimeout    = 10 * time.Second
	eventFetchLimit = 50
)

// Model is the top-level bubbletea model for the dashboard.
type Model struct {
	client    api.Client
	tabs      []string
	activeTab tab
	honeypots []HoneypotRow
	incidents []IncidentRow
	events    []EventRow
	timeline  []EventRow
	cursor    int    // row cursor on the Incidents tab
	selected  string // selected incident id, "" when none
	width     int
	height    int
	err       error
	loading   bool
	lastFetch time.Time
}

// New returns a Model reading through client.
func New(client api.Client) Model {
	return Model{
		client:  client,
		tabs:    []string{"Honeypots", "Incidents", "Events"},
		loading: true,
	}
}

// Init starts the periodic tick and issues the first data fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), fetchData(m.client, m.selected))
}

// tick schedules a tickMsg after refreshInterval.
func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update processes messages and returns an updated model plus any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "left", "h":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1":
			m.activeTab = tabHoneypots
		case "2":
			m.activeTab = tabIncidents
		case "3":
			m.activeTab = tabEvents
		case "up", "k":
			if m.activeTab == tabIncidents && m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.activeTab == tabIncidents && m.cursor < len(m.incidents)-1 {
				m.cursor++
			}
		case "enter", " ":
			if m.activeTab == tabIncidents && m.cursor < len(m.incidents) {
				// Selecting the selected incident again deselects it.
				id := m.incidents[m.cursor].ID
				if m.selected == id {
					m.selected = ""
					m.timeline = nil
				} else {
					m.selected = id
					m.activeTab = tabEvents
				}
				m.loading = true
				return m, fetchData(m.client, m.selected)
			}
		case "r":
			// Manual refresh
			m.loading = true
			m.err = nil
			return m, fetchData(m.client, m.selected)
		}
		return m, nil

	case tickMsg:
		m.loading = true
		m.err = nil
		return m, tea.Batch(tick(), fetchData(m.client, m.selected))

	case dataMsg:
		m.loading = false
		m.err = nil
		m.honeypots = msg.honeypots
		m.incidents = msg.incidents
		m.events = msg.events
		m.timeline = msg.timeline
		if m.cursor >= len(m.incidents) {
			m.cursor = 0
		}
		m.lastFetch = time.Now()
		return m, nil

	case errMsg:
		m.loading = false
		m.err = msg
		return m, nil
	}

	return m, nil
}

// View renders the entire dashboard to a string.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading…"
	}

	var sb strings.Builder

	// --- Title bar ---
	title := titleStyle.Render("  Honey-Potter Dashboard  ")
	sb.WriteString(title)
	sb.WriteString("\n")

	// --- Tab bar ---
	var tabParts []string
	for i, name := range m.tabs {
		label := fmt.Sprintf(" %d: %s ", i+1, name)
		if tab(i) == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
	}
	sb.WriteString(strings.Join(tabParts, ""))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", m.width))
	sb.WriteString("\n")

	// --- Content area ---
	contentHeight := m.height - 5 // title(1) + tabs(1) + divider(1) + status(2)
	if contentHeight < 1 {
		contentHeight = 1
	}
	content := m.renderActiveTab()
	// Clip content to available height by trimming lines.
	content = clipLines(content, contentHeight)
	sb.WriteString(content)
	sb.WriteString("\n")

	// --- Status bar ---
	sb.WriteString(strings.Repeat("─", m.width))
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())

	return sb.String()
}

// renderActiveTab renders the content of the currently selected tab.
func (m Model) renderActiveTab() string {
	w := m.width - 2 // leave a small margin
	switch m.activeTab {
	case tabHoneypots:
		return renderHoneypots(m.honeypots, w)
	case tabIncidents:
		return renderIncidents(m.incidents, m.cursor, m.selected, w)
	case tabEvents:
		if m.selected != "" {
			header := dimStyle.Render(fmt.Sprintf("  Timeline for incident %s (enter on the incident again to clear)", m.selected))
			return header + "\n" + renderEvents(m.timeline, w)
		}
		return renderEvents(m.events, w)
	default:
		return ""
	}
}

// renderStatus renders the bottom status bar line.
func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	var parts []string
	if !m.lastFetch.IsZero() {
		parts = append(parts, fmt.Sprintf("last refresh: %s", m.lastFetch.Format("15:04:05")))
	}
	if m.loading {
		parts = append(parts, "refreshing…")
	}
	parts = append(parts, "q: quit  tab: next tab  enter: select incident  r: refresh")

	return statusBarStyle.Render(strings.Join(parts, "  |  "))
}

// clipLines limits the string s to at most maxLines newline-delimited lines.
func clipLines(s string, maxLines int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}
	return strings.Join(lines[:maxLines], "\n")
}

// ---------------------------------------------------------------------------
// Data fetching
// ---------------------------------------------------------------------------

// fetchData loads every tab's dataset plus, when selectedIncident is
// non-empty, that incident's timeline. A single failed call fails the whole
// refresh; the previous view stays on screen with the error in the status
// bar.
func fetchData(client api.Client, selectedIncident string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		honeypots, err := client.ListHoneypots(ctx)
		if err != nil {
			return errMsg(fmt.Errorf("honeypots: %w", err))
		}
		incidents, err := client.ListIncidents(ctx)
		if err != nil {
			return errMsg(fmt.Errorf("incidents: %w", err))
		}
		events, err := client.ListEvents(ctx, api.EventFilter{Limit: eventFetchLimit})
		if err != nil {
			return errMsg(fmt.Errorf("events: %w", err))
		}

		msg := dataMsg{
			honeypots: honeypotRows(honeypots),
			incidents: incidentRows(incidents),
			events:    eventRows(events, false),
		}

		if selectedIncident != "" {
			timeline, err := client.ListEvents(ctx, api.EventFilter{IncidentID: selectedIncident, Limit: eventFetchLimit})
			if err != nil {
				return errMsg(fmt.Errorf("timeline: %w", err))
			}
			sort.SliceStable(timeline, func(i, j int) bool {
				return timeline[i].Timestamp.Before(timeline[j].Timestamp)
			})
			msg.timeline = eventRows(timeline, true)
		}

		return msg
	}
}
