package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bamboofin/bamboo_portal/internal/cache"
	"github.com/bamboofin/bamboo_portal/internal/comparator"
	"github.com/bamboofin/bamboo_portal/internal/config"
	"github.com/bamboofin/bamboo_portal/internal/database"
	"github.com/bamboofin/bamboo_portal/internal/handler"
	"github.com/bamboofin/bamboo_portal/internal/middleware"
	"github.com/bamboofin/bamboo_portal/internal/models"
	"github.com/bamboofin/bamboo_portal/internal/notify"
	"github.com/bamboofin/bamboo_portal/internal/repository"
	"github.com/bamboofin/bamboo_portal/internal/service"
	"github.com/bamboofin/bamboo_portal/internal/session"
	"github.com/bamboofin/bamboo_portal/internal/worker"
	"github.com/bamboofin/bamboo_portal/pkg/bamboo"
)

// main is the entrypoint of the Bamboo portal backend.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting bamboo portal")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect database
	db, err := database.Connect(ctx, &cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Bamboo API client and notifications
	api := bamboo.NewClient(bamboo.Config{
		BaseURL: cfg.Bamboo.BaseURL,
		Timeout: cfg.Bamboo.Timeout,
		Debug:   !cfg.IsProduction(),
	})
	bus := notify.NewBus(16)
	notifier := notify.NewBusNotifier(bus)

	// 5. Initialize repositories and caches
	analyticsRepo := repository.NewAnalyticsRepository(db)
	savedRepo := repository.NewSavedComparisonRepository(db)
	sessionCache := cache.NewSessionCache(redisClient)
	bankCache := cache.NewBankCache(redisClient, api, 2*cfg.Worker.BankSyncInterval)

	// 6. Initialize services
	sessions := session.NewManager(sessionCache, api, notifier, cfg.JWTSecret, cfg.Session.TTL)
	registry := comparator.NewRegistry(cfg.Comparator.WorkspaceTTL)
	registry.SetLimit(cfg.Comparator.MaxWorkspaces)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo)
	comparisonSvc := service.NewComparisonService(
		comparator.NewBuilder(),
		comparator.NewClient(api, cfg.Comparator.CompareTimeout),
		registry,
		bankCache,
		savedRepo,
		analyticsSvc,
		notifier,
	)

	// A 401 from any endpoint ends the session that sent the token.
	api.OnUnauthorized(sessions.Invalidate)
	sessions.OnTeardown(func(_ context.Context, s *models.Session) {
		comparisonSvc.DropWorkspace(s.WorkspaceID)
	})

	limiter := middleware.NewLoginLimiter(redisClient, cfg.Session.LoginMaxFailures, cfg.Session.LoginWindow)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": handler.PingFunc(db.PingContext),
			"redis":    redisClient,
			"bamboo": handler.PingFunc(func(ctx context.Context) error {
				_, err := bankCache.Banks(ctx)
				return err
			}),
		}),
		Comparator:   handler.NewComparatorHandler(comparisonSvc, notifier),
		Auth:         handler.NewAuthHandler(sessions, api, limiter, notifier, cfg.Session.CookieSecure, cfg.Session.TTL),
		Account:      handler.NewAccountHandler(api, notifier),
		Admin:        handler.NewAdminHandler(api, comparisonSvc, notifier),
		Management:   handler.NewManagementHandler(api, notifier),
		Analytics:    handler.NewAnalyticsHandler(analyticsSvc),
		Notification: handler.NewNotificationHandler(bus),
	}

	// 8. Initialize middleware
	mw := &Middlewares{
		Auth:      middleware.NewAuthMiddleware(sessions),
		Workspace: middleware.NewWorkspaceMiddleware(registry, cfg.JWTSecret, cfg.Session.CookieSecure, int(cfg.Comparator.WorkspaceTTL.Seconds())),
		Login:     limiter,
	}

	// 9. Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, mw)

	// 10. Start workers
	go worker.NewBankSyncWorker(comparisonSvc, cfg.Worker.BankSyncInterval).Start(ctx)
	go worker.NewSessionCheckWorker(sessions, cfg.Worker.SessionCheckInterval).Start(ctx)
	go worker.NewWorkspaceSweepWorker(registry, cfg.Worker.WorkspaceSweepInterval).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers and in-flight comparisons
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
