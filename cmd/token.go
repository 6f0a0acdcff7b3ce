package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/mutate"
	"github.com/fredr0ck/honey-potter/pkg/selection"
	"github.com/fredr0ck/honey-potter/pkg/store"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage planted honeytokens",
	Long: `List, generate, and delete honeytokens — fake credentials planted on
honeypots whose use is itself a compromise signal. A token with a set
used_at has been triggered and should be treated as an active incident.`,
}

var (
	tokenListServiceType string
	tokenListServiceID   string
	tokenListUsedOnly    bool
)

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List honeytokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The unfiltered listing reads through the cache; filtered views go
		// straight to the API, since the cache is keyed per collection.
		var (
			toks []api.Honeytoken
			err  error
		)
		if tokenListServiceType == "" && tokenListServiceID == "" && !tokenListUsedOnly {
			toks, err = store.Lookup[[]api.Honeytoken](cmd.Context(), entities, store.KeyHoneytokens)
		} else {
			toks, err = client.ListHoneytokens(cmd.Context(), api.HoneytokenFilter{
				ServiceType: tokenListServiceType,
				ServiceID:   tokenListServiceID,
				UsedOnly:    tokenListUsedOnly,
			})
		}
		if err != nil {
			return fmt.Errorf("failed to list honeytokens: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.Format(toks))
		return nil
	},
}

var (
	tokenGenerateServiceType string
	tokenGenerateCount       int
	tokenGenerateServiceID   string
	tokenGenerateUsers       []string
)

var tokenGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of honeytokens",
	Long: `Generate honeytokens either as a random batch (--count) or from an
explicit list of usernames (--user, repeatable; "username=note" attaches
metadata). Passwords are always generated server-side.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.HoneytokenGenerate{
			ServiceType: tokenGenerateServiceType,
			ServiceID:   tokenGenerateServiceID,
		}
		if len(tokenGenerateUsers) > 0 {
			for _, u := range tokenGenerateUsers {
				item := api.HoneytokenItem{Username: u}
				if name, meta, ok := strings.Cut(u, "="); ok {
					item.Username = name
					item.MetaData = meta
				}
				if strings.TrimSpace(item.Username) == "" {
					return fmt.Errorf("%w: --user entries need a username", api.ErrValidation)
				}
				req.Items = append(req.Items, item)
			}
		} else {
			req.Count = tokenGenerateCount
		}
		if err := api.ValidateRequest(req); err != nil {
			return err
		}
		if dryRun {
			n := req.Count
			if len(req.Items) > 0 {
				n = len(req.Items)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "(dry-run) would generate %d %s honeytoken(s)\n",
				n, req.ServiceType)
			return nil
		}

		var generated []api.Honeytoken
		err := coordinator.Do(cmd.Context(), mutate.Command{
			Name:    "generate honeytokens",
			Affects: []store.Key{store.KeyHoneytokens},
			Run: func(ctx context.Context) error {
				var err error
				generated, err = client.GenerateHoneytokens(ctx, req)
				return err
			},
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d honeytoken(s) generated.\n", len(generated))
		fmt.Fprint(cmd.OutOrStdout(), formatter.Format(generated))
		return nil
	},
}

// tokenRemovePatch predicts removal of a set of tokens from the cache.
func tokenRemovePatch(ids []string) func(any) any {
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	return func(old any) any {
		toks, ok := old.([]api.Honeytoken)
		if !ok {
			return old
		}
		next := make([]api.Honeytoken, 0, len(toks))
		for _, t := range toks {
			if _, removed := gone[t.ID]; !removed {
				next = append(next, t)
			}
		}
		return next
	}
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete <token-id>",
	Short: "Delete a honeytoken",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if err := api.ValidateID(id); err != nil {
			return fmt.Errorf("invalid token-id: %w", err)
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "(dry-run) would delete honeytoken %q\n", id)
			return nil
		}
		if !confirm(cmd, fmt.Sprintf("Delete honeytoken %q?", id)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
		err := coordinator.Do(cmd.Context(), mutate.Command{
			Name:    "delete honeytoken",
			Affects: []store.Key{store.KeyHoneytokens},
			Run: func(ctx context.Context) error {
				return client.DeleteHoneytoken(ctx, id)
			},
		}, mutate.Patch{Key: store.KeyHoneytokens, Apply: tokenRemovePatch([]string{id})})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Honeytoken %q deleted.\n", id)
		return nil
	},
}

var tokenBulkDeleteAll bool

var tokenBulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete [token-id...]",
	Short: "Delete several honeytokens in one command",
	RunE: func(cmd *cobra.Command, args []string) error {
		sel := selection.New()
		sel.SetMode(true)
		if tokenBulkDeleteAll {
			toks, err := store.Lookup[[]api.Honeytoken](cmd.Context(), entities, store.KeyHoneytokens)
			if err != nil {
				return fmt.Errorf("failed to list honeytokens: %w", err)
			}
			ids := make([]string, 0, len(toks))
			for _, t := range toks {
				ids = append(ids, t.ID)
			}
			sel.SelectAll(ids)
		} else {
			for _, id := range args {
				if err := api.ValidateID(id); err != nil {
					return fmt.Errorf("invalid token-id: %w", err)
				}
				sel.Toggle(id)
			}
		}

		ids, err := sel.BatchIDs()
		if err != nil {
			return err
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "(dry-run) would delete %d honeytoken(s)\n", len(ids))
			return nil
		}
		if !confirm(cmd, fmt.Sprintf("Delete %d selected honeytoken(s)?", len(ids))) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}

		err = coordinator.Do(cmd.Context(), mutate.Command{
			Name:    "bulk-delete honeytokens",
			Affects: []store.Key{store.KeyHoneytokens},
			Run: func(ctx context.Context) error {
				return client.BulkDeleteHoneytokens(ctx, ids)
			},
		}, mutate.Patch{Key: store.KeyHoneytokens, Apply: tokenRemovePatch(ids)})
		if err != nil {
			return err
		}
		sel.SetMode(false)
		fmt.Fprintf(cmd.OutOrStdout(), "%d honeytoken(s) deleted.\n", len(ids))
		return nil
	},
}

func init() {
	tokenListCmd.Flags().StringVar(&tokenListServiceType, "service-type", "", "filter by service type")
	tokenListCmd.Flags().StringVar(&tokenListServiceID, "service-id", "", "filter by owning sensor id")
	tokenListCmd.Flags().BoolVar(&tokenListUsedOnly, "used", false, "only show triggered tokens")

	tokenGenerateCmd.Flags().StringVar(&tokenGenerateServiceType, "service-type", "ssh", "service type: ssh, postgres, http")
	tokenGenerateCmd.Flags().IntVar(&tokenGenerateCount, "count", 1, "number of random tokens to generate (1-100)")
	tokenGenerateCmd.Flags().StringVar(&tokenGenerateServiceID, "service-id", "", "sensor to associate the tokens with")
	tokenGenerateCmd.Flags().StringArrayVar(&tokenGenerateUsers, "user", nil, "explicit username (repeatable; \"name=note\" adds metadata)")

	tokenBulkDeleteCmd.Flags().BoolVar(&tokenBulkDeleteAll, "all", false, "select every honeytoken")

	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenGenerateCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
	tokenCmd.AddCommand(tokenBulkDeleteCmd)
	rootCmd.AddCommand(tokenCmd)
}
