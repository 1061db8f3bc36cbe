package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexivanou/findfun-api/internal/catalog"
	"github.com/alexivanou/findfun-api/internal/completion"
	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/alexivanou/findfun-api/internal/database"
	"github.com/alexivanou/findfun-api/internal/foursquare"
	"github.com/alexivanou/findfun-api/internal/geocode"
	"github.com/alexivanou/findfun-api/internal/repository"
	"github.com/alexivanou/findfun-api/internal/service"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions holds the global flags
type rootOptions struct {
	dbType string
	dbPath string
	format string
	quiet  bool
}

// env is what a command needs to talk to the cache
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	repos  *repository.Container
}

func (e *env) Close() {
	e.db.Close()
	_ = e.logger.Sync()
}

// NewRootCmd creates the findfun command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "findfun",
		Short: "Operate the FindFun place cache",
		Long: `Operate the FindFun place cache.

Manage the schema, import saved place searches, run discoveries against
the places API and edit itineraries without going through the HTTP API.
Settings come from the environment (and .env); the flags below override
the database selection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.dbType, "db-type", "", "Database type: sqlite, memory or postgres (default from DB_TYPE)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db-path", "", "SQLite database file (default from DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress log output")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newDiscoverCmd(opts))
	cmd.AddCommand(newPlacesCmd(opts))
	cmd.AddCommand(newScopeCmd(opts))
	cmd.AddCommand(newItineraryCmd(opts))

	return cmd
}

// openEnv loads the config, applies flag overrides and connects
func openEnv(ctx context.Context, opts *rootOptions) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.dbType != "" {
		cfg.DB.Type = config.DBType(opts.dbType)
	}
	if opts.dbPath != "" {
		cfg.DB.Path = opts.dbPath
	}

	logger := zap.NewNop()
	if !opts.quiet {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, fmt.Errorf("initializing logger: %w", err)
		}
	}

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &env{
		cfg:    cfg,
		logger: logger,
		db:     db,
		repos:  repository.NewRepositories(db),
	}, nil
}

// newService wires the remote clients that have credentials configured
func (e *env) newService() (*service.Service, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	var clients service.Clients
	if e.cfg.Foursquare.APIKey != "" {
		clients.Places = foursquare.NewClient(e.cfg.Foursquare, e.logger)
	}
	if e.cfg.Geocoding.APIKey != "" {
		clients.Geocoder = geocode.NewClient(e.cfg.Geocoding, e.logger)
	}
	if e.cfg.Completion.APIKey != "" {
		clients.Describer = completion.NewClient(e.cfg.Completion, e.logger)
	}

	return service.NewService(e.repos.Place, e.repos.Itinerary, cat, clients, service.Options{
		Radius:            e.cfg.Foursquare.Radius,
		Limit:             e.cfg.Foursquare.Limit,
		FetchDetails:      e.cfg.Foursquare.FetchDetails,
		DetailConcurrency: e.cfg.Foursquare.DetailConcurrency,
	}, e.logger), nil
}

// printJSON writes v indented, the way every --format json output looks
func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
