// Package command implements the elakbay CLI: a terminal front end over
// the same session, catalog and weather plumbing the gateway serves.
package command

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elakbay/elakbay/internal/analytics"
	"github.com/elakbay/elakbay/internal/catalog"
	"github.com/elakbay/elakbay/internal/config"
	"github.com/elakbay/elakbay/internal/session"
	"github.com/elakbay/elakbay/internal/supabase"
	"github.com/elakbay/elakbay/internal/weather"
	"github.com/elakbay/elakbay/pkg/observability"
	"github.com/elakbay/elakbay/pkg/storage"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "elakbay",
	Short: "E-Lakbay - Ilocos Sur travel companion",
	Long: `E-Lakbay is a travel companion for Ilocos Sur: browse destinations
and local products, check municipality weather, and manage your
account from the terminal or through the local HTTP gateway.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading env file %s: %v\n", envFile, err)
				os.Exit(1)
			}
		} else {
			// Best effort; a missing .env is fine.
			_ = godotenv.Load()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to an env file to load before running")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(destinationsCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(municipalitiesCmd)
	rootCmd.AddCommand(weatherCmd)
}

// environment is the CLI-side runtime: the same building blocks the
// gateway wires, minus the HTTP server.
type environment struct {
	config      *config.Config
	logger      *zap.Logger
	store       storage.Store
	supabase    *supabase.Client
	weather     *weather.Client
	coordinator *session.Coordinator
	catalog     *catalog.Service
	reporter    *analytics.Reporter
}

func newEnvironment(ctx context.Context) (*environment, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFileStore(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	client := supabase.NewClient(cfg.Supabase, store, logger)
	coordinator := session.NewCoordinator(
		client,
		client,
		&printNotifier{},
		logger,
		session.Options{
			FetchAttempts:  cfg.Profile.FetchAttempts,
			FetchDelay:     cfg.Profile.FetchDelay.Duration,
			RedirectOrigin: cfg.Supabase.RedirectOrigin,
		},
	)

	return &environment{
		config:      cfg,
		logger:      logger,
		store:       store,
		supabase:    client,
		weather:     weather.NewClient(cfg.Weather, logger),
		coordinator: coordinator,
		catalog:     catalog.NewService(client),
		reporter:    analytics.NewReporter(client, store, logger, cfg.Analytics.PrivatePrefixes),
	}, nil
}

// printNotifier writes notifications to stdout, the CLI's toast surface.
type printNotifier struct{}

func (printNotifier) Success(message string) {
	fmt.Println(message)
}

func (printNotifier) Error(message string) {
	fmt.Fprintln(os.Stderr, message)
}
