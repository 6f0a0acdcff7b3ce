package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/config"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the API session",
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the authenticated operator",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := client.Me(cmd.Context())
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not authenticated. Run \"potterctl auth set-token <token>\".")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to check session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Authenticated as %s", user.Username)
		if user.Email != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " <%s>", user.Email)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token <token>",
	Short: "Store the API token in the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		cfg.AuthToken = args[0]
		if err := config.Save(path, cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", path)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored token and all local drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		cfg.AuthToken = ""
		if err := config.Save(path, cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		// In-progress edits belong to the session that made them.
		if err := drafts.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear drafts: %w", err)
		}
		entities.InvalidateAll()
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authSetTokenCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}
