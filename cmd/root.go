// Package cmd wires the CLI: scrape, list, and serve.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/clock"
	"github.com/dazdaz/app-gcp-changelog/internal/config"
	"github.com/dazdaz/app-gcp-changelog/internal/fetch"
	"github.com/dazdaz/app-gcp-changelog/internal/logging"
	"github.com/dazdaz/app-gcp-changelog/internal/metrics"
	"github.com/dazdaz/app-gcp-changelog/internal/pipeline"
	"github.com/dazdaz/app-gcp-changelog/internal/release"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App bundles the services commands need. Building it behind an
// interface-shaped factory lets tests swap in a stub.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Clock    clock.Clock
	Pipeline *pipeline.Pipeline
}

// Close flushes buffered log output.
func (a *App) Close() {
	_ = a.Logger.Sync()
}

// newApp is the application factory. It's a variable so tests can
// replace it with a factory returning stubbed services.
var newApp = func(_ context.Context) (*App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics.Init()

	clk := clock.System{}
	client := fetch.NewCollyClient(cfg.HTTP.UserAgent, cfg.HTTPTimeout(), logger)
	controller := fetch.NewController(client, logger)
	normalizer := release.NewNormalizer(clk)
	extractors := pipeline.NewSet(client, normalizer, cfg, logger)

	return &App{
		Config: cfg,
		Logger: logger,
		Clock:  clk,
		Pipeline: pipeline.New(
			controller, extractors, clk, cfg.Scrape.Concurrency, logger),
	}, nil
}

// appFromContext retrieves the App injected by the root command.
func appFromContext(ctx context.Context) (*App, error) {
	app, ok := ctx.Value(appKey).(*App)
	if !ok || app == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return app, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Scrape and classify Google Cloud release notes.",
		Long: `changelog collects release notes across Google Cloud, Workspace,
Firebase, and the developer blogs, normalizes their dates, classifies
each note, and renders the result as text, Markdown, JSON, or HTML.`,

		// Runs after flag parsing but before the subcommand's RunE:
		// the place to build and inject the application services.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, ok := cmd.Context().Value(appKey).(*App); ok && app != nil {
				app.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
