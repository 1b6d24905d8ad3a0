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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/ticket-relay/internal/adapters/primary/http"
	mw "github.com/lorrc/ticket-relay/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/lorrc/ticket-relay/internal/adapters/primary/websocket"
	"github.com/lorrc/ticket-relay/internal/adapters/secondary/postgres"
	"github.com/lorrc/ticket-relay/internal/adapters/secondary/sms"
	"github.com/lorrc/ticket-relay/internal/auth"
	"github.com/lorrc/ticket-relay/internal/config"
	"github.com/lorrc/ticket-relay/internal/core/ports"
	"github.com/lorrc/ticket-relay/internal/core/presence"
	"github.com/lorrc/ticket-relay/internal/core/services"
	"github.com/lorrc/ticket-relay/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting relay",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize Database Pool
	ctx := context.Background()
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// 4. Presence Layer and Real-time Hub
	registry := presence.NewRegistry(logger)
	rooms := presence.NewRooms(registry, logger)
	hub := wsAdapter.NewHub(registry, rooms, logger)
	router := presence.NewRouter(registry, rooms, hub, logger)

	// 5. Optional token auth for the websocket endpoint
	var tokenManager *auth.TokenManager
	if cfg.WebSocket.AuthSecret != "" {
		tokenManager = auth.NewTokenManager(cfg.WebSocket.AuthSecret)
		logger.Info("websocket token auth enabled")
	}

	// 6. Dependency Injection (Wiring the Hexagon)

	// Repositories (Secondary Adapters)
	messageRepo := postgres.NewMessageRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)

	// SMS gateway (Secondary Adapter)
	var smsGateway ports.SMSGateway
	if cfg.SMSEnabled() {
		smsGateway = sms.NewClient(sms.Config{
			GatewayURL: cfg.SMS.GatewayURL,
			AccountSID: cfg.SMS.AccountSID,
			AuthToken:  cfg.SMS.AuthToken,
			From:       cfg.SMS.From,
		}, logger)
	} else {
		smsGateway = sms.NewDisabled(logger)
	}

	// Pipelines (Core)
	messageService := services.NewMessageService(messageRepo, ticketRepo, router, logger)
	statusService := services.NewStatusService(ticketRepo, router, logger)

	// Handlers (Primary Adapters)
	errorHandler := httpAdapter.NewErrorHandler(logger)
	messageHandler := httpAdapter.NewMessageHandler(messageService, errorHandler, logger)
	statusHandler := httpAdapter.NewStatusHandler(statusService, errorHandler, logger)
	smsHandler := httpAdapter.NewSMSHandler(ticketRepo, smsGateway, errorHandler, logger)
	healthHandler := httpAdapter.NewHealthHandler(pool, registry, cfg.App.Version)
	wsHandler := httpAdapter.NewWebSocketHandler(
		hub, registry, rooms, router, messageService, statusService,
		tokenManager, cfg, logger,
	)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints (standard probe paths)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// WebSocket endpoint, outside the REST rate limiter
	r.Get("/ws", wsHandler.ServeHTTP)

	// REST routes
	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit.Enabled {
			limiter := mw.NewRateLimiter(mw.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstSize:         cfg.RateLimit.BurstSize,
				CleanupInterval:   time.Minute,
				TTL:               3 * time.Minute,
			})
			r.Use(limiter.Middleware)
		}

		r.Route("/messages", messageHandler.RegisterRoutes)
		r.Post("/broadcast-status-update", statusHandler.HandleBroadcast)
		r.Post("/tickets/{ticketId}/sms", smsHandler.HandleSend)
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	// Close websocket clients after the HTTP listener stops accepting.
	hub.Shutdown()

	logger.Info("server shutdown complete")
}
