package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apporder "github.com/supplytrace/backend/internal/application/order"
	apptrace "github.com/supplytrace/backend/internal/application/trace"
	"github.com/supplytrace/backend/internal/infrastructure/audit"
	"github.com/supplytrace/backend/internal/infrastructure/cache"
	"github.com/supplytrace/backend/internal/infrastructure/config"
	"github.com/supplytrace/backend/internal/infrastructure/logger"
	"github.com/supplytrace/backend/internal/infrastructure/notify"
	"github.com/supplytrace/backend/internal/infrastructure/persistence"
	"github.com/supplytrace/backend/internal/interfaces/http/handler"
	"github.com/supplytrace/backend/internal/interfaces/http/middleware"
	"github.com/supplytrace/backend/internal/interfaces/http/router"
)

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

	log.Info("Starting SupplyTrace backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logging
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

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

	// Repositories
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	allocationRepo := persistence.NewGormAllocationRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	relationshipRepo := persistence.NewGormRelationshipRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	graphSource := persistence.NewGormGraphSource(db.DB, orderRepo)

	txManager := persistence.NewGormTransactionManager(db.DB)
	auditRecorder := audit.NewGormRecorder(db.DB)
	notifier := notify.NewLogNotifier(log)

	// Transparency score cache: Redis when configured, in-process otherwise
	var scoreCache apptrace.ScoreCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisScoreCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		scoreCache = redisCache
		log.Info("Redis score cache connected")
	} else {
		scoreCache = cache.NewMemoryScoreCache()
	}

	// Application services
	orderService := apporder.NewPurchaseOrderService(
		orderRepo, companyRepo, productRepo, txManager, auditRecorder, notifier, log)
	confirmationService := apporder.NewConfirmationService(
		orderRepo, allocationRepo, batchRepo, companyRepo, productRepo, relationshipRepo,
		txManager, auditRecorder, notifier, log)
	traceService := apptrace.NewTraceabilityService(orderRepo, graphSource,
		apptrace.TraceabilityConfig{
			DefaultMaxDepth:      cfg.Traceability.DefaultMaxDepth,
			AllowDiamondRevisits: cfg.Traceability.AllowDiamondRevisits,
		}, log)
	transparencyService := apptrace.NewTransparencyService(
		orderRepo, graphSource, scoreCache, txManager,
		apptrace.TransparencyConfig{
			ScoreTTL: cfg.Transparency.ScoreTTL,
			MaxDepth: cfg.Transparency.MaxDepth,
			HopDecay: cfg.Transparency.HopDecay,
		}, log)

	// HTTP wiring
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	r := router.NewRouter(engine)
	r.Register(handler.NewPurchaseOrderHandler(orderService, confirmationService))
	r.Register(handler.NewTraceHandler(traceService, transparencyService))
	r.Setup()

	engine.GET("/health/db", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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
