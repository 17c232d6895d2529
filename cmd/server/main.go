package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/VoHoang203/VibeMelodyBE/internal/ai"
	"github.com/VoHoang203/VibeMelodyBE/internal/config"
	"github.com/VoHoang203/VibeMelodyBE/internal/database"
	"github.com/VoHoang203/VibeMelodyBE/internal/handlers"
	"github.com/VoHoang203/VibeMelodyBE/internal/logging"
	"github.com/VoHoang203/VibeMelodyBE/internal/middleware"
	"github.com/VoHoang203/VibeMelodyBE/internal/payos"
	"github.com/VoHoang203/VibeMelodyBE/internal/realtime"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/VoHoang203/VibeMelodyBE/internal/routes"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/VoHoang203/VibeMelodyBE/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout, optional rotating file)
	stdoutHandler := logging.Setup(cfg.LogFile)

	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		slog.Error("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET environment variables are required")
		os.Exit(1)
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		slog.Error("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, pgLogHandler)))

	// Log cleanup (30-day retention)
	done := make(chan struct{})
	logging.StartCleanup(database.DB, logging.DefaultRetention, done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Object storage is optional; without it only media URLs are accepted.
	var uploader storage.Uploader
	if minioStore, err := storage.NewMinioStore(cfg); err == nil {
		if err := minioStore.EnsureBucket(ctx); err != nil {
			slog.Error("object storage unavailable", "bucket", cfg.MinioBucket, "error", err)
		} else {
			uploader = minioStore
		}
	} else if !errors.Is(err, storage.ErrDisabled) {
		slog.Error("object storage init failed", "error", err)
	}

	// Realtime broker is optional; without it delivery is process-local.
	var broker realtime.Broker
	if cfg.RedisAddr != "" {
		redisBroker, err := realtime.NewRedisBroker(ctx, cfg)
		if err != nil {
			slog.Error("redis broker unavailable, using local delivery", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer redisBroker.Close()
			broker = redisBroker
		}
	}

	// Services
	store := repository.NewStore(database.DB)
	textGen := ai.NewOpenAIClient(cfg)
	authService := services.NewAuthService(store, cfg)
	contentFilter := services.NewContentFilter()
	chatService := services.NewChatService(store, contentFilter)
	hub := realtime.NewHub(authService, chatService, broker, cfg.CORSOrigins)
	notificationService := services.NewNotificationService(store, hub)
	subscriptionService := services.NewSubscriptionService(store, payos.NewClient(cfg))
	socialService := services.NewSocialService(store, notificationService)
	catalogService := services.NewCatalogService(store, notificationService)
	commentService := services.NewCommentService(store, notificationService, contentFilter)
	assistantService := services.NewAssistantService(store, services.NewRecommender(store, textGen), textGen)

	go hub.Run(ctx)
	subscriptionService.StartExpirySweeper(24*time.Hour, done)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    50 * 1024 * 1024, // audio uploads
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, authService, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Health:       handlers.NewHealthHandler(database.Ping, hub),
		Artist:       handlers.NewArtistHandler(catalogService, socialService, subscriptionService),
		Song:         handlers.NewSongHandler(catalogService, socialService, uploader),
		Album:        handlers.NewAlbumHandler(catalogService, socialService, uploader),
		Comment:      handlers.NewCommentHandler(commentService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Chat:         handlers.NewChatHandler(assistantService, chatService),
		Payment:      handlers.NewPaymentHandler(subscriptionService),
	})

	// Realtime websocket server
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	wsServer := &http.Server{
		Addr:              ":" + cfg.RealtimePort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()
	go func() {
		slog.Info("realtime server starting", "port", cfg.RealtimePort, "broker", broker != nil)
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("realtime server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(done)
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("realtime server shutdown error", "error", err)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
