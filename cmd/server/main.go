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
	"github.com/yourorg/phonebook/internal/handler"
	"github.com/yourorg/phonebook/internal/infrastructure/logger"
	"github.com/yourorg/phonebook/internal/observability/metrics"
	"github.com/yourorg/phonebook/internal/observability/tracing"
	"github.com/yourorg/phonebook/internal/repository"
	"github.com/yourorg/phonebook/internal/security"
	"github.com/yourorg/phonebook/internal/security/auth"
	"github.com/yourorg/phonebook/internal/security/middleware"
	"github.com/yourorg/phonebook/internal/security/ratelimit"
	"github.com/yourorg/phonebook/internal/service"
	"github.com/yourorg/phonebook/pkg/config"
	"github.com/yourorg/phonebook/pkg/database"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
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
	log.Info("starting phonebook server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "phonebook", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to PostgreSQL and ensure the schema exists
	pool, err := database.NewConnectionPool(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		log.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Initialize repositories
	db := pool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	orgRepo := repository.NewPostgresOrganizationRepository(db, log)
	workerRepo := repository.NewPostgresWorkerRepository(db, log)
	rightRepo := repository.NewPostgresEditingRightRepository(db, log)

	// 6. Initialize authorization engine and services
	authz := security.NewEngine(orgRepo, rightRepo, !cfg.AuthenticatedRead, log)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "phonebook")

	authService := service.NewAuthService(userRepo, tokenManager, cfg.TokenTTL, log)
	orgService := service.NewOrganizationService(orgRepo, authz, log)
	workerService := service.NewWorkerService(workerRepo, orgRepo, authz, log)
	rightService := service.NewEditingRightService(rightRepo, orgRepo, userRepo, authz, log)

	// 7. Initialize handlers
	registrationHandler := handler.NewRegistrationHandler(authService, log)
	tokenHandler := handler.NewTokenHandler(authService, log)
	orgHandler := handler.NewOrganizationHandler(orgService, log)
	workerHandler := handler.NewWorkerHandler(workerService, log)
	rightHandler := handler.NewEditingRightHandler(rightService, log)

	// 8. Setup HTTP routes. The trailing-slash paths are a contract with
	// existing clients.
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/registration/{$}", registrationHandler.Create)
	mux.HandleFunc("POST /api/v1/api-token-auth/{$}", tokenHandler.Create)

	mux.HandleFunc("GET /api/v1/organizations/{$}", orgHandler.List)
	mux.HandleFunc("POST /api/v1/organizations/{$}", orgHandler.Create)
	mux.HandleFunc("GET /api/v1/organizations/{id}/{$}", orgHandler.Get)
	mux.HandleFunc("PUT /api/v1/organizations/{id}/{$}", orgHandler.Update)
	mux.HandleFunc("PATCH /api/v1/organizations/{id}/{$}", orgHandler.Patch)
	mux.HandleFunc("DELETE /api/v1/organizations/{id}/{$}", orgHandler.Delete)

	mux.HandleFunc("GET /api/v1/organizations/{organization_id}/workers/{$}", workerHandler.List)
	mux.HandleFunc("POST /api/v1/organizations/{organization_id}/workers/{$}", workerHandler.Create)
	mux.HandleFunc("GET /api/v1/organizations/{organization_id}/workers/{id}/{$}", workerHandler.Get)
	mux.HandleFunc("PUT /api/v1/organizations/{organization_id}/workers/{id}/{$}", workerHandler.Update)
	mux.HandleFunc("PATCH /api/v1/organizations/{organization_id}/workers/{id}/{$}", workerHandler.Patch)
	mux.HandleFunc("DELETE /api/v1/organizations/{organization_id}/workers/{id}/{$}", workerHandler.Delete)

	mux.HandleFunc("GET /api/v1/edit_access/{$}", rightHandler.List)
	mux.HandleFunc("POST /api/v1/edit_access/{$}", rightHandler.Create)
	mux.HandleFunc("DELETE /api/v1/edit_access/{id}/{$}", rightHandler.Delete)

	mux.Handle("/metrics", promhttp.Handler())

	// Health and readiness endpoints (no auth required)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Health(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)

	// Chain middleware: request ID -> metrics -> identity -> rate limit ->
	// content type -> CORS/routes
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.Identity(tokenManager, userRepo, log)(
				middleware.RateLimit(rateLimiter, log)(
					middleware.ValidateJSONContentType(log)(handlerWithCORS),
				),
			),
		),
		log,
	)

	// 9. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "phonebook"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "bearer"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.Bool("authenticated_read", cfg.AuthenticatedRead),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	rateLimiter.Stop()
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
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
