package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/draft"
	"github.com/fredr0ck/honey-potter/pkg/mutate"
	"github.com/fredr0ck/honey-potter/pkg/store"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Edit notification settings",
	Long: `Notification settings are edited as a draft: "set" changes the local
draft, "save" submits it to the server, and "discard" throws it away. A draft
survives restarts until it is saved or discarded.`,
}

// loadSettingsDraft returns the current draft, seeding it from the
// authoritative server copy when no draft exists yet.
func loadSettingsDraft(cmd *cobra.Command) (*api.NotificationSettings, error) {
	settings, err := store.Lookup[*api.NotificationSettings](cmd.Context(), entities, store.KeySettings)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification settings: %w", err)
	}
	if _, err := drafts.Seed(draft.SettingsKey, settings); err != nil {
		return nil, err
	}
	var d api.NotificationSettings
	if _, err := drafts.Load(draft.SettingsKey, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show notification settings (including unsaved edits)",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadSettingsDraft(cmd)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.Format(d))
		if saved, _, _ := entities.Snapshot(store.KeySettings); saved != nil {
			if s, ok := saved.(*api.NotificationSettings); ok && *s != *d {
				fmt.Fprintln(cmd.OutOrStdout(), "\nUnsaved edits pending; run \"potterctl settings save\" to submit them.")
			}
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Change one field of the draft",
	Long: `Fields: telegram-enabled, telegram-bot-token, telegram-chat-id,
email-enabled, email-address, level-1, level-2, level-3.
Boolean fields take true/false.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, value := args[0], args[1]
		d, err := loadSettingsDraft(cmd)
		if err != nil {
			return err
		}
		if err := applySettingsField(d, field, value); err != nil {
			return err
		}
		if err := drafts.Save(draft.SettingsKey, d); err != nil {
			return fmt.Errorf("failed to store draft: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Draft updated: %s = %s\n", field, value)
		return nil
	},
}

func applySettingsField(d *api.NotificationSettings, field, value string) error {
	boolField := func(dst *bool) error {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false, got %q", field, value)
		}
		*dst = v
		return nil
	}
	switch field {
	case "telegram-enabled":
		return boolField(&d.TelegramEnabled)
	case "telegram-bot-token":
		d.TelegramBotToken = value
	case "telegram-chat-id":
		d.TelegramChatID = value
	case "email-enabled":
		return boolField(&d.EmailEnabled)
	case "email-address":
		d.EmailAddress = value
	case "level-1":
		return boolField(&d.Level1Enabled)
	case "level-2":
		return boolField(&d.Level2Enabled)
	case "level-3":
		return boolField(&d.Level3Enabled)
	default:
		return fmt.Errorf("unknown field %q (see \"potterctl settings set --help\")", field)
	}
	return nil
}

var settingsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Submit the draft to the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		var d api.NotificationSettings
		ok, err := drafts.Load(draft.SettingsKey, &d)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "No draft to save.")
			return nil
		}
		if dryRun {
			fmt.Fprintln(cmd.OutOrStdout(), "[dry-run] Would save notification settings")
			return nil
		}

		req := api.NotificationSettingsUpdate{
			TelegramEnabled:  &d.TelegramEnabled,
			TelegramBotToken: &d.TelegramBotToken,
			TelegramChatID:   &d.TelegramChatID,
			EmailEnabled:     &d.EmailEnabled,
			EmailAddress:     &d.EmailAddress,
			Level1Enabled:    &d.Level1Enabled,
			Level2Enabled:    &d.Level2Enabled,
			Level3Enabled:    &d.Level3Enabled,
		}

		var saved *api.NotificationSettings
		err = coordinator.Do(cmd.Context(), mutate.Command{
			Name: "save settings",
			Run: func(ctx context.Context) error {
				var err error
				saved, err = client.UpdateNotificationSettings(ctx, req)
				return err
			},
		})
		if err != nil {
			return err
		}
		// The server response is authoritative; the draft has served its
		// purpose.
		entities.Set(store.KeySettings, saved)
		if err := drafts.Clear(draft.SettingsKey); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Notification settings saved")
		return nil
	},
}

var settingsDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Throw away the draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := drafts.Clear(draft.SettingsKey); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Draft discarded")
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSaveCmd)
	settingsCmd.AddCommand(settingsDiscardCmd)
	rootCmd.AddCommand(settingsCmd)
}
