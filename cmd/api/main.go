package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/holuwadafe/maglo-finance/api/swagger" // swagger docs
	"github.com/holuwadafe/maglo-finance/internal/config"
	"github.com/holuwadafe/maglo-finance/internal/database"
	"github.com/holuwadafe/maglo-finance/internal/handler"
	"github.com/holuwadafe/maglo-finance/internal/logger"
	"github.com/holuwadafe/maglo-finance/internal/middleware"
	"github.com/holuwadafe/maglo-finance/internal/repository"
	"github.com/holuwadafe/maglo-finance/internal/service"
	"github.com/holuwadafe/maglo-finance/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Maglo Finance API
// @version         1.0
// @description     Invoices, payment status and dashboard statistics for small businesses.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("configs/.env", ".env")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	appLog, err := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid logging configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLog); err != nil {
		appLog.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, appLog zerolog.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	db, err := database.NewConnection(connectCtx, cfg.DSN())
	cancel()
	if err != nil {
		return err
	}
	appLog.Info().Msg("connected to PostgreSQL")

	if cfg.MigrationsEnabled {
		if err := database.RunMigrations(cfg.DSN(), appLog); err != nil {
			return err
		}
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(cfg.CORSAllowedOrigins, appLog)
	go wsHub.Run(ctx)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	ledgers, err := service.NewLedgerStore(invoiceRepo, cfg.LedgerCacheSize)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(userRepo, sessionRepo, txManager, cfg.JWTSecret, cfg.AccessTokenTTL, appLog)
	invoiceService := service.NewInvoiceService(invoiceRepo, auditRepo, txManager, ledgers, wsHub, appLog)
	statisticsService := service.NewStatisticsService(ledgers, nil, appLog)
	auditService := service.NewAuditService(auditRepo)

	cookie := middleware.CookieOptions{Secure: cfg.CookieSecure || cfg.IsRelease(), TTL: cfg.AccessTokenTTL}

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(appLog))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", wsHub.Handler(authService))

	requireAuth := middleware.RequireAuth(authService)
	handler.NewAuthHandler(authService, cookie).RegisterRoutes(router.Group(""), requireAuth)

	protected := router.Group("", requireAuth)
	handler.NewInvoiceHandler(invoiceService).RegisterRoutes(protected)
	handler.NewStatisticsHandler(statisticsService).RegisterRoutes(protected)
	handler.NewAuditHandler(auditService).RegisterRoutes(protected)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLog.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
