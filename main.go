// Package main provides the entry point for the billboard playlist engine
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/billboard-engine/app/handlers"
	"github.com/amirphl/billboard-engine/app/middleware"
	"github.com/amirphl/billboard-engine/app/router"
	"github.com/amirphl/billboard-engine/app/scheduler"
	"github.com/amirphl/billboard-engine/app/services"
	businessflow "github.com/amirphl/billboard-engine/business_flow"
	"github.com/amirphl/billboard-engine/config"
	"github.com/amirphl/billboard-engine/models"
	"github.com/amirphl/billboard-engine/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting billboard engine...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logCloser := initializeLogging(cfg.Logging)
	if logCloser != nil {
		defer logCloser.Close()
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	// Stop background workers after in-flight requests drain
	for i := len(app.stopFuncs) - 1; i >= 0; i-- {
		app.stopFuncs[i]()
	}

	log.Println("Server stopped")
}

// initializeLogging points the standard logger at stdout, a rotated file, or both
func initializeLogging(cfg config.LoggingConfig) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.LUTC)
	if cfg.Output != "file" && cfg.Output != "both" {
		return nil
	}

	rotated := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotated))
	} else {
		log.SetOutput(rotated)
	}
	return rotated
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	gormConfig := &gorm.Config{}
	if cfg.SlowQueryLog {
		gormConfig.Logger = gormlogger.New(log.Default(), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(models.AllModels()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Println("Database schema migrated")
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity.
// A nil client means the cache is disabled.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis to surface connectivity issues.
// The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

func initializePublisher(cfg config.BrokerConfig) services.EventPublisher {
	if !cfg.Enabled {
		log.Println("Event broker disabled, playlist.generated events are dropped")
		return services.NewNoopPublisher()
	}
	return services.NewRabbitMQPublisher(cfg)
}

// initializeApplication wires storage, flows, handlers and background workers
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 30*time.Second))
		stopFuncs = append(stopFuncs, func() { _ = rc.Close() })
	}

	publisher := initializePublisher(cfg.Broker)
	stopFuncs = append(stopFuncs, func() {
		if err := publisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	})

	// Initialize repositories
	videoRepo := repository.NewVideoRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)

	// Initialize business flows
	generationMetrics := middleware.NewGenerationMetrics(prometheus.DefaultRegisterer)
	registry := businessflow.NewVehicleRegistry(vehicleRepo)
	playlistFlow := businessflow.NewPlaylistFlow(
		businessflow.NewScopeResolver(registry),
		businessflow.NewCatalogAccessor(videoRepo),
		businessflow.NewPlaylistStore(playlistRepo, rc, cfg.Cache),
		publisher,
		generationMetrics,
		cfg.Playlist,
		cfg.Media,
		log.Default(),
	)

	// Initialize handlers
	playlistHandler := handlers.NewPlaylistHandler(playlistFlow)
	playlistAdminHandler := handlers.NewPlaylistAdminHandler(playlistFlow)

	appRouter := router.NewFiberRouter(cfg, playlistHandler, playlistAdminHandler)

	if cfg.Playlist.ExpiryMonitorEnabled {
		monitor := scheduler.NewExpiryMonitor(playlistRepo, generationMetrics, cfg.Playlist, cfg.Logging)
		stopFuncs = append(stopFuncs, monitor.Start(context.Background()))
	}

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
