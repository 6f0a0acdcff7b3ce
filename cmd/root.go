package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fredr0ck/honey-potter/pkg/api"
	"github.com/fredr0ck/honey-potter/pkg/config"
	"github.com/fredr0ck/honey-potter/pkg/draft"
	"github.com/fredr0ck/honey-potter/pkg/incident"
	"github.com/fredr0ck/honey-potter/pkg/logging"
	"github.com/fredr0ck/honey-potter/pkg/mutate"
	"github.com/fredr0ck/honey-potter/pkg/output"
	"github.com/fredr0ck/honey-potter/pkg/store"
)

var (
	// Global flags
	cfgFile      string
	outputFormat string
	serverURL    string
	verbose      bool
	dryRun       bool // --dry-run: print actions without executing them
	yesFlag      bool // --yes: skip confirmation prompts for destructive operations

	// Shared state set during PersistentPreRun
	cfg         *config.Config
	client      api.Client
	formatter   output.Formatter
	entities    *store.Store
	coordinator *mutate.Coordinator
	correlator  *incident.Correlator
	drafts      *draft.Store
	logger      *slog.Logger

	// Test injection points; when set they survive PersistentPreRun.
	clientOverride    api.Client
	formatterOverride output.Formatter
	draftsOverride    *draft.Store
)

// rootCmd is the base command for potterctl.
var rootCmd = &cobra.Command{
	Use:   "potterctl",
	Short: "Honey-potter CLI — manage honeypots, honeytokens, events, and incidents",
	Long: `Potterctl is the operator-facing console for a honey-potter deception
network. It manages honeypot sensors and planted honeytokens, inspects the
recorded event stream, and walks correlated incidents — all against the
remote honey-potter API, with an optimistic local cache that reconciles to
server truth.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags
		if serverURL != "" {
			cfg.ServerURL = serverURL
		}
		if outputFormat != "" {
			cfg.OutputFormat = outputFormat
		}

		logger = logging.Init(verbose)

		if clientOverride != nil {
			client = clientOverride
		} else {
			client = api.NewHTTPClient(cfg.ServerURL, cfg.AuthToken)
		}

		if formatterOverride != nil {
			formatter = formatterOverride
		} else {
			formatter = output.NewFormatter(cfg.OutputFormat)
		}

		if draftsOverride != nil {
			drafts = draftsOverride
		} else {
			drafts = draft.New(draft.DefaultDir())
		}

		wireStore()
		return nil
	},
}

// wireStore builds the entity cache and registers a fetcher per collection.
func wireStore() {
	entities = store.New()
	entities.Register(store.KeyHoneypots, func(ctx context.Context) (any, error) {
		return client.ListHoneypots(ctx)
	})
	entities.Register(store.KeyHoneytokens, func(ctx context.Context) (any, error) {
		return client.ListHoneytokens(ctx, api.HoneytokenFilter{})
	})
	entities.Register(store.KeyEvents, func(ctx context.Context) (any, error) {
		return client.ListEvents(ctx, api.EventFilter{Limit: 100})
	})
	entities.Register(store.KeyIncidents, func(ctx context.Context) (any, error) {
		return client.ListIncidents(ctx)
	})
	entities.Register(store.KeySettings, func(ctx context.Context) (any, error) {
		return client.GetNotificationSettings(ctx)
	})
	coordinator = mutate.New(entities, logger)
	correlator = incident.New(entities, client)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetClient allows tests to inject a mock client.
func SetClient(c api.Client) {
	clientOverride = c
}

// SetFormatter allows tests to inject a formatter.
func SetFormatter(f output.Formatter) {
	formatterOverride = f
}

// SetDraftStore allows tests to point drafts at a temporary directory.
func SetDraftStore(s *draft.Store) {
	draftsOverride = s
}

// RootCmd returns the root cobra.Command for testing purposes.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.honeypotter/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json, yaml (default \"table\")")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "honey-potter API server URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print actions that would be taken without executing them")
	rootCmd.PersistentFlags().BoolVar(&yesFlag, "yes", false, "skip confirmation prompts for destructive operations")
}
