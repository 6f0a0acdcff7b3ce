package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/classify"
	"github.com/fredr0ck/honey-potter/pkg/store"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Inspect the recorded event stream",
	Long:  "List raw security events and inspect a single event's interpreted details.",
}

var (
	eventListIncident string
	eventListLimit    int
)

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent events",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			events []api.Event
			err    error
		)
		if eventListIncident != "" {
			events, err = correlator.Timeline(cmd.Context(), eventListIncident)
		} else if eventListLimit > 0 && eventListLimit != 100 {
			events, err = client.ListEvents(cmd.Context(), api.EventFilter{Limit: eventListLimit})
		} else {
			events, err = store.Lookup[[]api.Event](cmd.Context(), entities, store.KeyEvents)
		}
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.Format(events))
		return nil
	},
}

var eventInspectCmd = &cobra.Command{
	Use:   "inspect <event-id>",
	Short: "Show the interpreted details of one event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if err := api.ValidateID(id); err != nil {
			return fmt.Errorf("invalid event-id: %w", err)
		}
		events, err := store.Lookup[[]api.Event](cmd.Context(), entities, store.KeyEvents)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		for _, e := range events {
			if e.ID == id {
				renderEvent(cmd.OutOrStdout(), e)
				return nil
			}
		}
		return fmt.Errorf("event %q not found in the last %d events", id, 100)
	},
}

// renderEvent prints one classified event in a readable block form.
func renderEvent(w io.Writer, e api.Event) {
	c := classify.Classify(e)

	fmt.Fprintf(w, "Event %s\n", e.ID)
	fmt.Fprintf(w, "  Type:      %s\n", e.EventType)
	fmt.Fprintf(w, "  Level:     %d (%s)\n", e.Level, api.LevelName(e.Level))
	fmt.Fprintf(w, "  Source:    %s\n", e.SourceIP)
	fmt.Fprintf(w, "  Honeypot:  %s\n", e.HoneypotID)
	if e.IncidentID != "" {
		fmt.Fprintf(w, "  Incident:  %s\n", e.IncidentID)
	}
	fmt.Fprintf(w, "  Time:      %s\n", e.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  Schema:    %s\n", c.Schema)

	fmt.Fprintln(w, "  Details:")
	for _, f := range c.Fields {
		fmt.Fprintf(w, "    %-14s %s\n", f.Name+":", f.Display())
	}
	if c.Body != nil {
		if c.Body.Captured {
			fmt.Fprintf(w, "    %-14s %s\n", "body:", c.Body.Content)
		} else {
			fmt.Fprintf(w, "    %-14s [content not captured, %d bytes]\n", "body:", c.Body.Length)
		}
	}
	if c.Honeytoken != nil {
		fmt.Fprintln(w, "  HONEYTOKEN TRIGGERED")
		fmt.Fprintf(w, "    %-14s %s\n", "token id:", c.Honeytoken.ID)
		fmt.Fprintf(w, "    %-14s %s\n", "username:", c.Honeytoken.Username.Display())
	}
}

func init() {
	eventListCmd.Flags().StringVar(&eventListIncident, "incident", "", "only events belonging to this incident, in timeline order")
	eventListCmd.Flags().IntVar(&eventListLimit, "limit", 100, "maximum number of events")

	eventCmd.AddCommand(eventListCmd)
	eventCmd.AddCommand(eventInspectCmd)
	rootCmd.AddCommand(eventCmd)
}
