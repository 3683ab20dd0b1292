package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/ecom-auditor/backend/internal/application/audit"
	catalogapp "github.com/ecom-auditor/backend/internal/application/catalog"
	financeapp "github.com/ecom-auditor/backend/internal/application/finance"
	"github.com/ecom-auditor/backend/internal/domain/audit"
	"github.com/ecom-auditor/backend/internal/domain/catalog"
	"github.com/ecom-auditor/backend/internal/domain/compliance"
	"github.com/ecom-auditor/backend/internal/domain/finance"
	"github.com/ecom-auditor/backend/internal/domain/marketplace"
	"github.com/ecom-auditor/backend/internal/infrastructure/auth"
	"github.com/ecom-auditor/backend/internal/infrastructure/cache"
	"github.com/ecom-auditor/backend/internal/infrastructure/config"
	"github.com/ecom-auditor/backend/internal/infrastructure/ecommerce"
	"github.com/ecom-auditor/backend/internal/infrastructure/logger"
	"github.com/ecom-auditor/backend/internal/infrastructure/persistence"
	"github.com/ecom-auditor/backend/internal/infrastructure/registry"
	"github.com/ecom-auditor/backend/internal/interfaces/http/handler"
	"github.com/ecom-auditor/backend/internal/interfaces/http/middleware"
	"github.com/ecom-auditor/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// version is the API version reported by the system endpoints
const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Marketplace Auditor",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Sqlite is a development convenience without migration tooling, so the
	// schema comes from gorm there. Postgres schemas come from cmd/migrate.
	if cfg.Database.Driver == "sqlite" {
		if err := db.DB.AutoMigrate(&catalog.Listing{}, &audit.Report{}); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	// Redis backs the audit run guard and the token blacklist. When it is
	// unreachable both fall back to in-process implementations, which is
	// fine for a single instance.
	var (
		redisClient *redis.Client
		runGuard    audit.RunGuard
		blacklist   auth.TokenBlacklist
	)
	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = redisClient.Ping(pingCtx).Err()
	cancelPing()
	if err != nil {
		log.Warn("Redis unavailable, using in-memory run guard and token blacklist", zap.Error(err))
		_ = redisClient.Close()
		redisClient = nil
		runGuard = cache.NewInMemoryRunGuard()
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		log.Info("Redis connected successfully")
		runGuard = cache.NewRedisRunGuardWithClient(redisClient, "")
		blacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
	}

	// Initialize repositories
	listingRepo := persistence.NewGormListingRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)

	// Marketplace catalog providers
	wbAdapter, err := ecommerce.NewWildberriesAdapter(&ecommerce.WildberriesConfig{
		APIBaseURL:     cfg.Wildberries.APIBaseURL,
		PageSize:       cfg.Wildberries.PageSize,
		MaxPages:       cfg.Wildberries.MaxPages,
		TimeoutSeconds: cfg.Wildberries.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to create Wildberries adapter", zap.Error(err))
	}
	ozonAdapter, err := ecommerce.NewOzonAdapter(&ecommerce.OzonConfig{
		APIBaseURL:     cfg.Ozon.APIBaseURL,
		PageSize:       cfg.Ozon.PageSize,
		MaxPages:       cfg.Ozon.MaxPages,
		TimeoutSeconds: cfg.Ozon.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to create Ozon adapter", zap.Error(err))
	}
	providers := ecommerce.NewRegistry(wbAdapter, ozonAdapter)

	// Seller credentials are statically configured for now. The resolver
	// interface leaves room for a per-user key store later.
	credsResolver := ecommerce.NewStaticCredentialsResolver(map[marketplace.Marketplace]marketplace.Credentials{
		marketplace.Wildberries: {APIKey: cfg.Wildberries.APIKey},
		marketplace.Ozon:        {APIKey: cfg.Ozon.APIKey, ClientID: cfg.Ozon.ClientID},
	})

	// External compliance registry clients
	fsaClient, err := registry.NewFSAClient(&registry.FSAConfig{
		APIBaseURL:     cfg.FSA.APIBaseURL,
		SearchLimit:    cfg.FSA.SearchLimit,
		TimeoutSeconds: cfg.FSA.TimeoutSeconds,
		RetryAttempts:  cfg.FSA.RetryAttempts,
	})
	if err != nil {
		log.Fatal("Failed to create accreditation registry client", zap.Error(err))
	}
	crptClient, err := registry.NewCRPTClient(&registry.CRPTConfig{
		APIBaseURL:     cfg.CRPT.APIBaseURL,
		TimeoutSeconds: cfg.CRPT.TimeoutSeconds,
		RetryAttempts:  cfg.CRPT.RetryAttempts,
	})
	if err != nil {
		log.Fatal("Failed to create marking registry client", zap.Error(err))
	}

	// Audit checkers with thresholds from config
	checkers := auditapp.NewCheckers(fsaClient, crptClient, compliance.DefaultProductGroupTable(), auditapp.CheckConfig{
		MinPhotos:             cfg.Audit.MinPhotos,
		MinDescriptionLength:  cfg.Audit.MinDescriptionLength,
		MinRating:             cfg.Audit.MinRating,
		MinReviews:            cfg.Audit.MinReviews,
		MinSEOKeywords:        cfg.Audit.MinSEOKeywords,
		MaxLogisticsShare:     decimal.NewFromFloat(cfg.Audit.MaxLogisticsShare),
		ThinMarginPercent:     decimal.NewFromFloat(cfg.Audit.ThinMarginPercent),
		CertExpiryWarningDays: cfg.Audit.CertExpiryWarningDays,
		ShadowBan: auditapp.ShadowBanThresholds{
			MinSamples:             cfg.Audit.ShadowBanMinSamples,
			PositionDropRatio:      cfg.Audit.ShadowBanPositionDrop,
			ImpressionExcessFactor: cfg.Audit.ShadowBanImpressFactor,
		},
	}, log)

	// Financial core
	calculator := finance.NewCalculator()
	commissions := finance.DefaultCommissionTable()

	// Initialize application services
	listingService := catalogapp.NewListingService(listingRepo, providers, credsResolver, log)
	importService := catalogapp.NewImportService(listingRepo, providers, credsResolver, log)
	financeService := financeapp.NewService(calculator, commissions)
	orchestrator := auditapp.NewOrchestrator(
		listingRepo, reportRepo, providers, checkers, calculator, commissions, runGuard, credsResolver, log,
	)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	listingHandler := handler.NewListingHandler(listingService, importService)
	auditHandler := handler.NewAuditHandler(orchestrator)
	financeHandler := handler.NewFinanceHandler(financeService)
	systemHandler := handler.NewSystemHandler(version, db, redisUniversal(redisClient))

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint outside API versioning, for load balancers
	engine.GET("/health", systemHandler.Health)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/health",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	r.Register(listingHandler).
		Register(auditHandler).
		Register(financeHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// redisUniversal widens the possibly-nil concrete client for the health
// handler. A plain conversion of a nil *redis.Client would produce a
// non-nil interface value.
func redisUniversal(client *redis.Client) redis.UniversalClient {
	if client == nil {
		return nil
	}
	return client
}
