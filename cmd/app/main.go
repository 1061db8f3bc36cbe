package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/findfun-api/internal/api"
	"github.com/alexivanou/findfun-api/internal/catalog"
	"github.com/alexivanou/findfun-api/internal/completion"
	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/alexivanou/findfun-api/internal/database"
	"github.com/alexivanou/findfun-api/internal/foursquare"
	"github.com/alexivanou/findfun-api/internal/geocode"
	"github.com/alexivanou/findfun-api/internal/importer"
	"github.com/alexivanou/findfun-api/internal/migrations"
	"github.com/alexivanou/findfun-api/internal/repository"
	"github.com/alexivanou/findfun-api/internal/service"
	"github.com/alexivanou/findfun-api/internal/stats"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := migrations.Up(db, cfg.DB.Type); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db)

	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Warn("Failed to check if database is empty", zap.Error(err))
	} else if isEmpty {
		autoImport(ctx, repos, cfg.Importer, logger)
	}

	cat, err := catalog.Default()
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	svc := service.NewService(repos.Place, repos.Itinerary, cat, remoteClients(cfg, logger), service.Options{
		Radius:            cfg.Foursquare.Radius,
		Limit:             cfg.Foursquare.Limit,
		FetchDetails:      cfg.Foursquare.FetchDetails,
		DetailConcurrency: cfg.Foursquare.DetailConcurrency,
	}, logger)
	statsCollector := stats.NewCollector(db, cfg.DB)
	router := api.NewRouter(svc, statsCollector, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// remoteClients builds the clients whose API keys are set. Missing keys
// leave the client nil and the service serves the cache and catalog only.
func remoteClients(cfg *config.Config, logger *zap.Logger) service.Clients {
	var clients service.Clients
	if cfg.Foursquare.APIKey != "" {
		clients.Places = foursquare.NewClient(cfg.Foursquare, logger)
	} else {
		logger.Warn("FOURSQUARE_API_KEY is not set, discovery will only serve cached places")
	}
	if cfg.Geocoding.APIKey != "" {
		clients.Geocoder = geocode.NewClient(cfg.Geocoding, logger)
	}
	if cfg.Completion.APIKey != "" {
		clients.Describer = completion.NewClient(cfg.Completion, logger)
	}
	return clients
}

// autoImport seeds an empty cache from the configured import file, if any
func autoImport(ctx context.Context, repos *repository.Container, cfg config.ImporterConfig, logger *zap.Logger) {
	if _, err := os.Stat(cfg.File); err != nil {
		logger.Info("Database is empty and no import file found", zap.String("file", cfg.File))
		return
	}

	logger.Info("Database is empty, importing places...", zap.String("file", cfg.File))
	res, err := importer.New(repos.Place, cfg, logger).ImportFile(ctx, cfg.File)
	if err != nil {
		logger.Fatal("Failed to import places", zap.Error(err))
	}
	logger.Info("Places imported", zap.Int("saved", res.Saved), zap.Int("batches", res.Batches))
}
