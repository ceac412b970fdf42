package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"furnace_tempo/internal/handlers"
	"furnace_tempo/internal/logger"
	"furnace_tempo/internal/repository"
	"furnace_tempo/internal/server"
	"furnace_tempo/internal/service"

	"github.com/spf13/viper"
)

const defaultTick = 1 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, log, service.Config{
		AdminPassword: viper.GetString("admin.password"),
		SigningKey:    viper.GetString("auth.signing_key"),
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// seed the configured fleet before serving or ticking
	if err := services.Control.EnsureFleet(ctx, fleetSeeds()); err != nil {
		log.Fatalw("failed to seed furnace fleet", "err", err)
	}

	// start the countdown/alarm loop (via composed service)
	go services.Ticker.Run(ctx, defaultTick)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// fleetSeeds reads the furnace list from config, falling back to the
// three reheating furnaces of the rolling line.
func fleetSeeds() []service.FurnaceSeed {
	var cfg []struct {
		ID    string `mapstructure:"id"`
		Label string `mapstructure:"label"`
	}
	if err := viper.UnmarshalKey("furnaces", &cfg); err == nil && len(cfg) > 0 {
		seeds := make([]service.FurnaceSeed, 0, len(cfg))
		for _, f := range cfg {
			seeds = append(seeds, service.FurnaceSeed{ID: f.ID, Label: f.Label})
		}
		return seeds
	}
	return []service.FurnaceSeed{
		{ID: "rp2", Label: "РП-2"},
		{ID: "rp3", Label: "РП-3"},
		{ID: "rp4", Label: "РП-4"},
	}
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "furnaces.db")
		dbPath = "furnaces.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
