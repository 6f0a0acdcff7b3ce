package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fredr0ck/honey-potter/pkg/tui"
)

// dashboardCmd launches the interactive TUI dashboard.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Launch the interactive TUI dashboard",
	Long: `Launch an interactive terminal dashboard showing live honeypots,
incidents, and events. Data is refreshed every 5 seconds from the
honey-potter API server.

Key bindings:
  Tab / Shift+Tab  Navigate between tabs
  1 / 2 / 3        Jump directly to Honeypots / Incidents / Events
  Up / Down        Move the incident cursor
  Enter            Select an incident and show its timeline (again to clear)
  r                Force an immediate data refresh
  q / Ctrl+C       Quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := tea.NewProgram(tui.New(client), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
