package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"otlobha/menuhub/internal/config"
	"otlobha/menuhub/internal/handler"
	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
	"otlobha/menuhub/internal/service"
	jwtpkg "otlobha/menuhub/pkg/jwt"
	"otlobha/menuhub/pkg/metrics"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Initialize state store (Redis or in-memory)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 6. Initialize repositories
	userRepo := repository.NewPGUserRepository(db)
	tenantRepo := repository.NewPGTenantRepository(db)
	membershipRepo := repository.NewPGMembershipRepository(db)
	subscriptionRepo := repository.NewPGSubscriptionRepository(db)
	qrCodeRepo := repository.NewPGQrCodeRepository(db)
	analyticsRepo := repository.NewPGAnalyticsRepository(db)
	menuRepo := repository.NewPGMenuRepository(db)

	// 7. JWT manager and metrics
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.SigningKey,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.SetupTokenTTL,
	)
	reg := metrics.New()

	// 8. Initialize services
	authService := service.NewAuthService(userRepo, stateStore, jwtManager, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	accessService := service.NewAccessService(membershipRepo)
	subscriptionService := service.NewSubscriptionService(
		subscriptionRepo,
		cfg.Billing.WebhookSecret,
		cfg.Subscription.DefaultMonths,
		logger,
		reg,
	)
	tenantService := service.NewTenantService(tenantRepo, membershipRepo, userRepo, cfg.Subscription.TrialDays, logger)
	qrCodeService := service.NewQrCodeService(qrCodeRepo, analyticsRepo, service.NewNoopStorage(), cfg.QR.BaseURL, logger, reg)
	analyticsService := service.NewAnalyticsService(analyticsRepo, logger, reg)
	menuService := service.NewMenuService(menuRepo)

	// 9. Initialize handlers
	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Tenant:       handler.NewTenantHandler(tenantService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService),
		Webhook:      handler.NewWebhookHandler(subscriptionService),
		QrCode:       handler.NewQrCodeHandler(qrCodeService),
		PublicMenu:   handler.NewPublicMenuHandler(tenantService, subscriptionService, menuService, analyticsService, reg),
		Analytics:    handler.NewAnalyticsHandler(analyticsService),
	}

	// 10. Setup router
	router := handler.SetupRouter(cfg, logger, jwtManager, tenantRepo, accessService, subscriptionService, reg, handlers)

	// 11. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 12. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
