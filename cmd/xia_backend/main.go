package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/xero_import_app/internal/adapters/archive"
	"github.com/SscSPs/xero_import_app/internal/adapters/llm"
	"github.com/SscSPs/xero_import_app/internal/adapters/xero"
	"github.com/SscSPs/xero_import_app/internal/core/services"
	"github.com/SscSPs/xero_import_app/internal/dto"
	"github.com/SscSPs/xero_import_app/internal/handlers"
	"github.com/SscSPs/xero_import_app/internal/middleware"
	"github.com/SscSPs/xero_import_app/internal/platform/config"
	"github.com/SscSPs/xero_import_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/xero_import_app/internal/utils"
	"github.com/SscSPs/xero_import_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Xero Import API
// @version 1.0
// @description Bank statement import, coding and push to Xero.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{Ping: cfg.EnableDBCheck})
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := dto.RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sealer, err := utils.NewSecretSealer(cfg.SecretsKey)
	if err != nil {
		logger.Error("Failed to initialize secret sealer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Rate limiting, shared through redis when configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis not reachable, rate limit checks will fail until it is", slog.String("error", err.Error()))
		}
	}
	rateLimiter, err := middleware.NewLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		logger.Error("Failed to create rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	gateways, err := buildGateways(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize gateways", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool, sealer)
	serviceContainer := services.NewServiceContainer(cfg, repos, gateways)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, cors)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, rateLimiter, posthogClient)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildGateways creates the Xero clients plus the optional advisor and archive.
func buildGateways(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.Gateways, error) {
	api := xero.NewClient(cfg.XeroAPIBaseURL, xero.WithTimeout(cfg.XeroHTTPTimeout))
	gw := services.Gateways{
		Accounting: xero.NewAccountingClient(api),
		Payroll:    xero.NewPayrollClient(api),
		OAuth: xero.NewOAuthClient(xero.OAuthEndpoints{
			AuthURL:        cfg.XeroAuthURL,
			TokenURL:       cfg.XeroTokenURL,
			ConnectionsURL: cfg.XeroConnectionsURL,
			RedirectURL:    cfg.XeroRedirectURL,
		}, api),
	}

	if cfg.GeminiAPIKey != "" {
		advisor, err := llm.NewGeminiAdvisor(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return gw, err
		}
		gw.Advisor = advisor
		logger.Info("Reconciliation advisor enabled", slog.String("model", cfg.LLMModel))
	}

	if cfg.ArchiveEnabled() {
		store, err := archive.NewS3Archive(ctx, archive.S3Config{
			Bucket:       cfg.ArchiveBucket,
			Endpoint:     cfg.ArchiveEndpoint,
			Region:       cfg.ArchiveRegion,
			AccessKey:    cfg.ArchiveAccessKey,
			SecretKey:    cfg.ArchiveSecretKey,
			UsePathStyle: cfg.ArchiveUsePathStyle,
		})
		if err != nil {
			return gw, err
		}
		gw.Archive = store
		logger.Info("Statement archive enabled", slog.String("bucket", cfg.ArchiveBucket))
	}
	return gw, nil
}

// runMigrations applies every pending migration from ./migrations.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// Open a temporary standard sql.DB connection for migrations
	// Using pgx/v5/stdlib driver to be compatible with the main pool
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
