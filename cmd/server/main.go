package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/depot/backend/internal/application/catalog"
	"github.com/depot/backend/internal/application/gateout"
	"github.com/depot/backend/internal/domain/depot"
	"github.com/depot/backend/internal/infrastructure/cache"
	"github.com/depot/backend/internal/infrastructure/config"
	"github.com/depot/backend/internal/infrastructure/erp"
	"github.com/depot/backend/internal/infrastructure/logger"
	"github.com/depot/backend/internal/infrastructure/persistence"
	"github.com/depot/backend/internal/interfaces/http/handler"
	"github.com/depot/backend/internal/interfaces/http/middleware"
	"github.com/depot/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting depot backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Upstream ERP client: token broker + dispatcher
	erpConfig := &erp.Config{
		BaseURL:             cfg.ERP.BaseURL,
		AID:                 cfg.ERP.AID,
		Pwd:                 cfg.ERP.Pwd,
		TokenTimeoutSeconds: cfg.ERP.TokenTimeoutSeconds,
		DataTimeoutSeconds:  cfg.ERP.DataTimeoutSeconds,
		Privileged:          cfg.ERP.Privileged,
	}
	broker, err := erp.NewTokenBroker(erpConfig, log)
	if err != nil {
		log.Fatal("Failed to create token broker", zap.Error(err))
	}
	erpClient, err := erp.NewClient(erpConfig, broker, log)
	if err != nil {
		log.Fatal("Failed to create ERP client", zap.Error(err))
	}

	// Collection cache: memory by default, redis when configured
	cacheFactory := cache.NewStoreFactory(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cache.WithLogger(log))
	collectionStore, err := cacheFactory.CreateStore(cfg.Cache.Backend)
	if err != nil {
		log.Fatal("Failed to create collection cache", zap.Error(err))
	}
	defer func() {
		if err := collectionStore.Close(); err != nil {
			log.Error("Error closing collection cache", zap.Error(err))
		}
	}()

	// Registration store: in-memory unless a database driver is configured
	regStore, db := newRegistrationStore(cfg, log)
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
	}

	// Application services
	catalogService := catalog.NewService(erpClient, collectionStore, catalog.TTLs{
		Depot:         cfg.Cache.DepotTTL,
		Container:     cfg.Cache.ContainerTTL,
		ShippingLine:  cfg.Cache.ShippingLineTTL,
		Goods:         cfg.Cache.GoodsTTL,
		ContainerType: cfg.Cache.ContainerTypeTTL,
		Company:       cfg.Cache.CompanyTTL,
	}, log)
	gateoutService := gateout.NewService(erpClient, regStore, log)

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewHealthHandler(cfg.App.Name, version))
	r.Register(handler.NewCatalogHandler(catalogService))
	r.Register(handler.NewGateOutHandler(gateoutService))
	r.Setup()

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

// newRegistrationStore selects the registration store from config. A store
// failure at startup degrades to the in-memory store rather than refusing to
// serve: registrations are best-effort local records.
func newRegistrationStore(cfg *config.Config, log *zap.Logger) (depot.RegistrationStore, *persistence.Database) {
	if cfg.Database.Driver == "" {
		log.Info("Using in-memory registration store")
		return persistence.NewMemoryRegistrationStore(), nil
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Warn("Database unavailable, falling back to in-memory registration store", zap.Error(err))
		return persistence.NewMemoryRegistrationStore(), nil
	}

	store, err := persistence.NewGormRegistrationStore(db.DB)
	if err != nil {
		log.Warn("Registration schema migration failed, falling back to in-memory store", zap.Error(err))
		_ = db.Close()
		return persistence.NewMemoryRegistrationStore(), nil
	}

	log.Info("Using database registration store", zap.String("driver", cfg.Database.Driver))
	return store, db
}
