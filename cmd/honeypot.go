package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/mutate"
	"github.com/fredr0ck/honey-potter/pkg/selection"
	"github.com/fredr0ck/honey-potter/pkg/store"
)

var honeypotCmd = &cobra.Command{
	Use:     "honeypot",
	Aliases: []string{"hp"},
	Short:   "Manage honeypot sensors",
	Long:    "List, create, start, stop, and delete honeypot sensors in the deception network.",
}

var honeypotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all honeypot sensors",
	RunE: func(cmd *cobra.Command, args []string) error {
		hps, err := store.Lookup[[]api.Honeypot](cmd.Context(), entities, store.KeyHoneypots)
		if err != nil {
			return fmt.Errorf("failed to list honeypots: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.Format(hps))
		return nil
	},
}

var (
	honeypotCreateName        string
	honeypotCreateDescription string
	honeypotCreateType        string
	honeypotCreatePort        int
	honeypotCreateAddress     string
)

var honeypotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new honeypot sensor",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.HoneypotCreate{
			Name:        strings.TrimSpace(honeypotCreateName),
			Description: honeypotCreateDescription,
			Type:        honeypotCreateType,
			Port:        honeypotCreatePort,
			Address:     honeypotCreateAddress,
			Config:      map[string]any{},
			// Reconnaissance noise stays quiet by default.
			NotificationLevels: map[string]bool{"1": false, "2": true, "3": true},
		}
		if err := api.ValidateRequest(req); err != nil {
			return err
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "(dry-run) would create %s honeypot %q on %s:%d\n",
				req.Type, req.Name, req.Address, req.Port)
			return nil
		}

		var created *api.Honeypot
		err := coordinator.Do(cmd.Context(), mutate.Command{
			Name:    "create honeypot",
			Affects: []store.Key{store.KeyHoneypots},
			Run: func(ctx context.Context) error {
				var err error
				created, err = client.CreateHoneypot(ctx, req)
				return err
			},
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Honeypot %q created (id %s).\n", created.Name, created.ID)
		return nil
	},
}

// honeypotStatusPatch predicts the status transition of one sensor in the
// cached collection without mutating the cached slice.
func honeypotStatusPatch(id, status string) func(any) any {
	return func(old any) any {
		hps, ok := old.([]api.Honeypot)
		if !ok {
			return old
		}
		next := make([]api.Honeypot, len(hps))
		copy(next, hps)
		for i := range next {
			if next[i].ID == id {
				next[i].Status = status
			}
		}
		return next
	}
}

// honeypotRemovePatch predicts the removal of a set of sensors.
func honeypotRemovePatch(ids []string) func(any) any {
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	return func(old any) any {
		hps, ok := old.([]api.Honeypot)
		if !ok {
			return old
		}
		next := make([]api.Honeypot, 0, len(hps))
		for _, hp := range hps {
			if _, removed := gone[hp.ID]; !removed {
				next = append(next, hp)
			}
		}
		return next
	}
}

var honeypotStartCmd = &cobra.Command{
	Use:   "start <honeypot-id>",
	Short: "Start a honeypot sensor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if err := api.ValidateID(id); err != nil {
			return fmt.Errorf("invalid honeypot-id: %w", err)
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "(dry-run) would start honeypot %q\n", id)
			return nil
		}
		err := coordinator.Do(cmd.Context(), mutate.Command{
			Name:    "start honeypot",
			Affects: []store.Key{store.KeyHoneypots},
			Run: func(ctx context.Context) error {
				return client.StartHoneypot(ctx, id)
			},
		}, mutate.Patch{Key: store.KeyHoneypots, Apply: honeypotStatusPatch(id, "running")})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Honeypot %q started.\n", id)
		return nil
	},
}

var honeypotStopCmd = &cobra.Command{
	Use:   "stop <honeypot-id>",
	Short: "Stop a honeypot sensor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if err := api.ValidateID(id); err != nil {
			return fmt.Errorf("invalid honeypot-id: %w", err)
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "(dry-run) would stop honeypot %q\n", id)
			return nil
		}
		err := coordinator.Do(cmd.Context(), mutate.Command{
			Name:    "stop honeypot",
			Affects: []store.Key{store.KeyHoneypots},
			Run: func(ctx context.Context) error {
				return client.StopHoneypot(ctx, id)
			},
		}, mutate.Patch{Key: store.KeyHoneypots, Apply: honeypotStatusPatch(id, "stopped")})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Honeypot %q stopped.\n", id)
		return nil
	},
}

// confirm asks the operator for a y/N answer unless --yes was given.
func confirm(cmd *cobra.Command, prompt string) bool {
	if yesFlag {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
	return strings.ToLower(strings.TrimSpace(scanner.Text())) == "y"
}

var honeypotDeleteCmd = &cobra.Command{
	Use:   "delete <honeypot-id>",
	Short: "Delete a honeypot sensor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if err := api.ValidateID(id); err != nil {
			return fmt.Errorf("invalid honeypot-id: %w", err)
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "(dry-run) would delete honeypot %q\n", id)
			return nil
		}
		if !confirm(cmd, fmt.Sprintf("Delete honeypot %q? This cannot be undone.", id)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		err := coordinator.Do(cmd.Context(), mutate.Command{
			Name:    "delete honeypot",
			Affects: []store.Key{store.KeyHoneypots, store.KeyEvents, store.KeyIncidents},
			Run: func(ctx context.Context) error {
				return client.DeleteHoneypot(ctx, id)
			},
		}, mutate.Patch{Key: store.KeyHoneypots, Apply: honeypotRemovePatch([]string{id})})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Honeypot %q deleted.\n", id)
		return nil
	},
}

var honeypotBulkDeleteAll bool

var honeypotBulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete [honeypot-id...]",
	Short: "Delete several honeypot sensors in one command",
	Long: `Delete the selected honeypot sensors as one atomic batch. Pass ids as
arguments, or --all to select every sensor in the current collection. The
batch either succeeds or fails as a whole; on failure the selection is kept
for retry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel := selection.New()
		sel.SetMode(true)
		if honeypotBulkDeleteAll {
			hps, err := store.Lookup[[]api.Honeypot](cmd.Context(), entities, store.KeyHoneypots)
			if err != nil {
				return fmt.Errorf("failed to list honeypots: %w", err)
			}
			ids := make([]string, 0, len(hps))
			for _, hp := range hps {
				ids = append(ids, hp.ID)
			}
			sel.SelectAll(ids)
		} else {
			for _, id := range args {
				if err := api.ValidateID(id); err != nil {
					return fmt.Errorf("invalid honeypot-id: %w", err)
				}
				sel.Toggle(id)
			}
		}

		ids, err := sel.BatchIDs()
		if err != nil {
			return err
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "(dry-run) would delete %d honeypot(s): %s\n",
				len(ids), strings.Join(ids, ", "))
			return nil
		}
		if !confirm(cmd, fmt.Sprintf("Delete %d selected honeypot(s)?", len(ids))) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		err = coordinator.Do(cmd.Context(), mutate.Command{
			Name:    "bulk-delete honeypots",
			Affects: []store.Key{store.KeyHoneypots, store.KeyEvents, store.KeyIncidents},
			Run: func(ctx context.Context) error {
				return client.BulkDeleteHoneypots(ctx, ids)
			},
		}, mutate.Patch{Key: store.KeyHoneypots, Apply: honeypotRemovePatch(ids)})
		if err != nil {
			// Selection survives for retry; it clears only on success.
			return err
		}
		sel.SetMode(false)
		fmt.Fprintf(cmd.OutOrStdout(), "%d honeypot(s) deleted.\n", len(ids))
		return nil
	},
}

func init() {
	honeypotCreateCmd.Flags().StringVar(&honeypotCreateName, "name", "", "sensor name (required)")
	honeypotCreateCmd.Flags().StringVar(&honeypotCreateDescription, "description", "", "free-form description")
	honeypotCreateCmd.Flags().StringVar(&honeypotCreateType, "type", "http", "protocol type: ssh, postgres, http")
	honeypotCreateCmd.Flags().IntVar(&honeypotCreatePort, "port", 8080, "listen port")
	honeypotCreateCmd.Flags().StringVar(&honeypotCreateAddress, "address", "0.0.0.0", "bind address")
	_ = honeypotCreateCmd.MarkFlagRequired("name")

	honeypotBulkDeleteCmd.Flags().BoolVar(&honeypotBulkDeleteAll, "all", false, "select every sensor in the collection")

	honeypotCmd.AddCommand(honeypotListCmd)
	honeypotCmd.AddCommand(honeypotCreateCmd)
	honeypotCmd.AddCommand(honeypotStartCmd)
	honeypotCmd.AddCommand(honeypotStopCmd)
	honeypotCmd.AddCommand(honeypotDeleteCmd)
	honeypotCmd.AddCommand(honeypotBulkDeleteCmd)
	rootCmd.AddCommand(honeypotCmd)
}
