package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/incident"
	"github.com/fredr0ck/honey-potter/pkg/store"
)

var incidentCmd = &cobra.Command{
	Use:     "incident",
	Aliases: []string{"inc"},
	Short:   "Review correlated attack incidents",
	Long:    "Incidents group events that share a source address into a single attack narrative.",
}

var incidentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents with per-incident summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		incidents, err := store.Lookup[[]api.Incident](cmd.Context(), entities, store.KeyIncidents)
		if err != nil {
			return fmt.Errorf("failed to list incidents: %w", err)
		}
		summaries := make([]incident.Summary, 0, len(incidents))
		for _, inc := range incidents {
			summaries = append(summaries, correlator.Summarize(inc))
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.Format(summaries))
		return nil
	},
}

var incidentTimelineCmd = &cobra.Command{
	Use:   "timeline <incident-id>",
	Short: "Show an incident's events oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if err := api.ValidateID(id); err != nil {
			return fmt.Errorf("invalid incident-id: %w", err)
		}
		events, err := correlator.Timeline(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to load timeline: %w", err)
		}
		if len(events) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No events recorded for incident %s\n", id)
			return nil
		}
		for _, e := range events {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  [%d %s]  %-22s %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"),
				e.Level, api.LevelName(e.Level), e.EventType, e.SourceIP)
		}
		return nil
	},
}

func init() {
	incidentCmd.AddCommand(incidentListCmd)
	incidentCmd.AddCommand(incidentTimelineCmd)
	rootCmd.AddCommand(incidentCmd)
}
