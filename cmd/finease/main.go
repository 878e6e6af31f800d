package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finease/internal/api"
	"finease/internal/api/handlers"
	"finease/internal/repository"
	"finease/internal/service"
	"finease/pkg/auth"
	"finease/pkg/config"
	"finease/pkg/logger"
	"finease/pkg/metrics"
	"finease/pkg/mongodb"
	"finease/pkg/postgres"
	"finease/pkg/store"

	"go.uber.org/zap"
)

// @title FinEase API
// @version 1.0
// @description Ownership-scoped transaction records for the FinEase personal finance tracker

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a Firebase ID token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting FinEase server",
		zap.String("store", cfg.Store.Driver),
		zap.String("identity", cfg.Identity.Provider),
	)

	ctx := context.Background()

	// Store gateway and repository
	gateway, txRepo := newStore(cfg, appLogger)
	if cfg.Store.EagerConnect {
		if err := gateway.Connect(ctx); err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
	}

	// Identity verifier
	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize identity verifier", zap.Error(err))
	}

	// Services and handlers
	txService := service.NewTransactionService(txRepo, logger.Named("transactions"))
	txHandler := handlers.NewTransactionHandler(txService, cfg.Store.OpTimeout, appLogger)
	authHandler := handlers.NewAuthHandler()
	healthHandler := handlers.NewHealthHandler(gateway, cfg.Store.ConnectTimeout, appLogger)

	// Setup router
	app := api.SetupRouter(
		txHandler,
		authHandler,
		healthHandler,
		verifier,
		gateway,
		metrics.New(),
		&cfg.Server,
		cfg.Identity.VerifyTimeout,
		appLogger,
	)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gateway.Close(closeCtx); err != nil {
		appLogger.Error("Database close error", zap.Error(err))
	}
}

func newStore(cfg *config.Config, appLogger *zap.Logger) (store.Gateway, repository.TransactionRepository) {
	repoLogger := logger.Named("repository")
	if cfg.Store.Driver == config.StoreDriverPostgres {
		gw := postgres.NewGateway(&cfg.Postgres, &cfg.Store, appLogger)
		return gw, repository.NewPostgresTransactionRepository(gw, repoLogger)
	}
	gw := mongodb.NewGateway(&cfg.Mongo, &cfg.Store, appLogger)
	return gw, repository.NewMongoTransactionRepository(gw, repoLogger)
}

func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	if cfg.Identity.Provider == config.IdentityProviderJWT {
		return auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Expiration), nil
	}
	return auth.NewFirebaseVerifier(ctx, cfg.Identity.FirebaseProjectID, cfg.Identity.FirebaseServiceAccountB64)
}
