package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/drive-sharing/internal"
	"github.com/frahmantamala/drive-sharing/internal/auth"
	"github.com/frahmantamala/drive-sharing/internal/core/events"
	"github.com/frahmantamala/drive-sharing/internal/directory"
	directoryPostgres "github.com/frahmantamala/drive-sharing/internal/directory/postgres"
	"github.com/frahmantamala/drive-sharing/internal/sharing"
	"github.com/frahmantamala/drive-sharing/internal/sharing/memory"
	sharingPostgres "github.com/frahmantamala/drive-sharing/internal/sharing/postgres"
	"github.com/frahmantamala/drive-sharing/internal/transport/rest"
	"github.com/frahmantamala/drive-sharing/internal/transport/swagger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *Database
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "store", deps.Config.Sharing.Store)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := setupLogger(config)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if config.Database.AutoMigrate || config.Database.Driver == internal.DriverSQLite {
		if err := autoMigrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	eventBus := events.NewEventBus(lg)
	sharing.NewAuditHandler(lg).RegisterEventHandlers(eventBus)

	directoryService := directory.NewService(directoryPostgres.NewUserRepository(db.SQLX), lg)

	var ledger sharing.RepositoryAPI
	switch config.Sharing.Store {
	case internal.StoreMemory:
		ledger = memory.NewLedger()
	default:
		ledger = sharingPostgres.NewGrantRepository(db.Gorm)
	}
	sharingService := sharing.NewService(ledger, directoryService, eventBus, lg, config.Sharing.SimulatedLatency)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(directoryService, tokenGen, config.Security.BCryptCost)

	openAPI, err := swagger.LoadDocument(ctx, config.Server.OpenAPIPath)
	if err != nil {
		// The API still serves without its document; only validation and Swagger UI are lost.
		lg.Warn("openapi document unavailable", "path", config.Server.OpenAPIPath, "error", err)
		openAPI = nil
	}

	health := rest.NewHealthHandler().WithComponent("database", db.SQLX, map[string]any{
		"driver": config.Database.Driver,
	})

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health:    health,
		Auth:      auth.NewHandler(authService),
		Directory: directory.NewHandler(directoryService),
		Sharing:   sharing.NewHandler(sharingService),
		OpenAPI:   openAPI,
	}, config.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config:   config,
		DB:       db,
		EventBus: eventBus,
		Router:   router,
		Logger:   lg,
	}, nil
}
