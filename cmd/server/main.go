package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecommerce_api/internal/api"
	"ecommerce_api/internal/api/handler"
	"ecommerce_api/internal/app/service"
	"ecommerce_api/internal/app/worker"
	"ecommerce_api/internal/common/security"
	"ecommerce_api/internal/domain/repository"
	"ecommerce_api/internal/platform/config"
	"ecommerce_api/internal/platform/database"
	"ecommerce_api/internal/platform/logger"
	"ecommerce_api/internal/platform/metrics"
	"ecommerce_api/internal/platform/queue"

	"go.uber.org/zap"
)

const (
	serviceName = "ecommerce-api"
	version     = "1.0.0"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Logger and metrics
	logg := logger.New(cfg.Env, cfg.LogLevel, serviceName)
	defer logg.Sync()
	for _, w := range cfg.Warnings {
		logg.Warn(w)
	}
	m := metrics.New("ecommerce")

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Token service
	tokens, err := security.NewTokenService(security.TokenServiceConfig{
		SessionSecret: cfg.SessionSecret,
		ResetSecret:   cfg.ResetSecret,
		SessionTTL:    cfg.SessionTTL,
		ResetTTL:      cfg.ResetTTL,
	})
	if err != nil {
		logg.Fatal("failed to initialize token service", zap.Error(err))
	}

	// 4. Storage
	var (
		userRepo    repository.UserRepository
		productRepo repository.ProductRepository
		storage     handler.Pinger
	)
	switch cfg.StorageBackend {
	case config.StorageMemory:
		logg.Warn("using in-memory storage, data is lost on restart")
		userRepo = repository.NewMemoryUserRepository()
		productRepo = repository.NewMemoryProductRepository()
	default:
		db, err := database.Connect(rootCtx, cfg.DBConnStr)
		if err != nil {
			logg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer closeDB(db, logg)
		if err := database.Migrate(rootCtx, db); err != nil {
			logg.Fatal("failed to apply schema", zap.Error(err))
		}
		logg.Info("database connected", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))
		userRepo = repository.NewPgUserRepository(db)
		productRepo = repository.NewPgProductRepository(db)
		storage = db
	}

	// 5. Reset notifications: Redis queue plus worker, or log only
	var notifier service.ResetNotifier = queue.NewLogResetNotifier(logg)
	workerCtx, workerCancel := context.WithCancel(rootCtx)
	defer workerCancel()
	workerDone := make(chan struct{})
	if cfg.RedisAddr != "" {
		rdb, err := queue.ConnectRedis(rootCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logg.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		notifier = queue.NewRedisResetQueue(rdb, cfg.ResetQueueName)

		notificationWorker := worker.NewNotificationWorker(rdb, cfg.ResetQueueName, worker.NewLogMailer(logg), logg)
		go func() {
			defer close(workerDone)
			notificationWorker.Start(workerCtx)
		}()
	} else {
		logg.Info("REDIS_ADDR not set, reset tokens are only logged")
		close(workerDone)
	}

	// 6. Services
	identity := service.NewIdentityResolver(tokens, userRepo, logg, m)
	services := api.Services{
		Auth:     service.NewAuthService(userRepo, security.NewPBKDF2Hasher(), tokens, notifier, logg, m),
		Identity: identity,
		Product:  service.NewProductService(productRepo, logg),
		Admin:    service.NewAdminService(userRepo, productRepo, logg),
	}

	// 7. Router & HTTP Server
	router := api.NewRouter(services, api.RouterConfig{
		Version:        version,
		RequestTimeout: cfg.RequestTimeout,
		Storage:        storage,
	}, m, logg)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logg.Info("server starting", zap.String("port", cfg.APIPort), zap.String("storage", cfg.StorageBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("could not listen", zap.String("port", cfg.APIPort), zap.Error(err))
		}
	}()

	// 8. Graceful Shutdown
	<-rootCtx.Done()
	logg.Info("shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("server shutdown failed", zap.Error(err))
	}
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logg.Warn("notification worker did not stop in time")
	}
	logg.Info("server and worker stopped gracefully")
}

func closeDB(db *sql.DB, logg *zap.Logger) {
	if err := db.Close(); err != nil {
		logg.Error("failed to close database", zap.Error(err))
		return
	}
	logg.Info("database connection closed")
}
