package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/iamEzaz/baribhara/internal/events"
	"github.com/iamEzaz/baribhara/internal/handler"
	"github.com/iamEzaz/baribhara/internal/infrastructure/logger"
	"github.com/iamEzaz/baribhara/internal/infrastructure/redis"
	"github.com/iamEzaz/baribhara/internal/observability/metrics"
	"github.com/iamEzaz/baribhara/internal/observability/tracing"
	"github.com/iamEzaz/baribhara/internal/repository"
	"github.com/iamEzaz/baribhara/internal/rescache"
	"github.com/iamEzaz/baribhara/internal/security/audit"
	"github.com/iamEzaz/baribhara/internal/security/auth"
	"github.com/iamEzaz/baribhara/internal/security/middleware"
	"github.com/iamEzaz/baribhara/internal/security/ratelimit"
	"github.com/iamEzaz/baribhara/internal/service"
	"github.com/iamEzaz/baribhara/internal/worker"
	"github.com/iamEzaz/baribhara/pkg/config"
	"github.com/iamEzaz/baribhara/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting Baribhara server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing
	shutdownTracing, err := tracing.Init(ctx, log, cfg.ServiceName, cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to Postgres
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	// 5. Connect to Redis (cache backend and event bus)
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 6. Initialize repositories
	userRepo := repository.NewPostgresUserRepository(db, log)
	propertyRepo := repository.NewPostgresPropertyRepository(db, log)
	tenantRepo := repository.NewPostgresTenantRepository(db, log)
	caretakerRepo := repository.NewPostgresCaretakerRepository(db, log)

	// 7. Initialize the event dispatcher and resource caches
	publisher := events.NewStreamPublisher(redisClient, cfg.ServiceName)
	dispatcher := events.NewDispatcher(publisher, log, cfg.EventQueueSize)
	go dispatcher.Start(ctx)

	userCache := rescache.New[service.UserResponse](redisClient, "user", cfg.CacheTTL)
	propertyCache := rescache.New[service.PropertyResponse](redisClient, "property", cfg.CacheTTL)
	tenantCache := rescache.New[service.TenantResponse](redisClient, "tenant", cfg.CacheTTL)
	caretakerCache := rescache.New[service.CaretakerResponse](redisClient, "caretaker", cfg.CacheTTL)

	// 8. Initialize services
	userService := service.NewUserService(userRepo, userCache, dispatcher, log)
	propertyService := service.NewPropertyService(propertyRepo, propertyCache, dispatcher, log)
	tenantService := service.NewTenantService(tenantRepo, tenantCache, dispatcher, log)
	caretakerService := service.NewCaretakerService(caretakerRepo, caretakerCache, dispatcher, log)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	authService := service.NewAuthService(userService, userRepo, tokenManager, redisClient, log)

	// 9. Start the websocket notifier
	hub := worker.NewHub(log)
	notifier := worker.NewNotifier(redisClient, hub, log)
	go notifier.Start(ctx)

	// 10. Initialize handlers and routes
	mux := http.NewServeMux()
	handler.NewAuthHandler(authService, log).Register(mux)
	handler.NewUserHandler(userService, log).Register(mux)
	handler.NewPropertyHandler(propertyService, log).Register(mux)
	handler.NewTenantHandler(tenantService, log).Register(mux)
	handler.NewCaretakerHandler(caretakerService, log).Register(mux)

	healthHandler := handler.NewHealthHandler(db, redisClient, log)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	notificationsHandler := handler.NewNotificationsHandler(hub, log, cfg.CORSAllowedOrigins)
	mux.Handle("GET /ws/notifications", notificationsHandler)

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// 11. Security components
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	auditLogger := audit.NewLogger(log)

	// Chain middleware: request ID -> metrics -> JWT -> rate limit -> audit -> content type -> CORS
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, log)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.AuditMiddleware(auditLogger)(
						middleware.ValidateJSONContentType(log)(handlerWithCORS),
					),
				),
			),
		),
		log,
	)

	// 12. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "http.server"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitRequests),
		slog.Duration("rate_limit_window", cfg.RateLimitWindow),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop dispatcher and notifier
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
