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

	"github.com/yourorg/toolshare/internal/domain"
	"github.com/yourorg/toolshare/internal/handler"
	"github.com/yourorg/toolshare/internal/infrastructure/logger"
	"github.com/yourorg/toolshare/internal/infrastructure/redis"
	"github.com/yourorg/toolshare/internal/observability/metrics"
	"github.com/yourorg/toolshare/internal/observability/tracing"
	"github.com/yourorg/toolshare/internal/repository"
	"github.com/yourorg/toolshare/internal/security/audit"
	"github.com/yourorg/toolshare/internal/security/middleware"
	"github.com/yourorg/toolshare/internal/security/ratelimit"
	"github.com/yourorg/toolshare/internal/service"
	"github.com/yourorg/toolshare/internal/worker"
	"github.com/yourorg/toolshare/pkg/cache"
	"github.com/yourorg/toolshare/pkg/config"
	"github.com/yourorg/toolshare/pkg/database"
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
	log.Info("starting ToolShare server",
		slog.String("environment", cfg.Environment),
		slog.String("store_backend", cfg.StoreBackend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing
	shutdownTracing, err := tracing.Init(ctx, log, "toolshare", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize the record stores for the configured backend
	var (
		users        domain.RecordStore[*domain.UserProfile]
		tools        domain.RecordStore[*domain.ToolListing]
		transactions domain.RecordStore[*domain.BorrowingTransaction]
		ready        func(context.Context) error
	)

	switch cfg.StoreBackend {
	case config.BackendRedis:
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()

		users = repository.NewRedisStore[*domain.UserProfile](redisClient, "user", log)
		tools = repository.NewRedisStore[*domain.ToolListing](redisClient, "tool", log)
		transactions = repository.NewRedisStore[*domain.BorrowingTransaction](redisClient, "transaction", log)
		ready = redisClient.Ping

	case config.BackendPostgres:
		pool, err := database.NewConnectionPool(ctx, &database.Config{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSLMode,
		}, log)
		if err != nil {
			log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		if err := repository.EnsureSchema(pool.GetDB()); err != nil {
			log.Error("failed to prepare schema", slog.String("error", err.Error()))
			os.Exit(1)
		}

		users = repository.NewPostgresStore[*domain.UserProfile](pool.GetDB(), "user", log)
		tools = repository.NewPostgresStore[*domain.ToolListing](pool.GetDB(), "tool", log)
		transactions = repository.NewPostgresStore[*domain.BorrowingTransaction](pool.GetDB(), "transaction", log)
		ready = pool.Health

	default:
		users = repository.NewMemoryStore[*domain.UserProfile]()
		tools = repository.NewMemoryStore[*domain.ToolListing]()
		transactions = repository.NewMemoryStore[*domain.BorrowingTransaction]()
		ready = func(context.Context) error { return nil }
	}

	// 5. Initialize the activity feed and the lending core
	activityHub := handler.NewActivityHub(log, cfg.CORSAllowedOrigins)
	lending := service.NewLendingService(users, tools, transactions, activityHub, cache.New(), log)

	// 6. Initialize security components
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	auditLogger := audit.NewLogger(log)

	// 7. Initialize handlers
	usersHandler := handler.NewUsersHandler(lending, auditLogger, log)
	toolsHandler := handler.NewToolsHandler(lending, auditLogger, log)
	transactionsHandler := handler.NewTransactionsHandler(lending, auditLogger, log)

	// 8. Setup HTTP routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users", usersHandler.Create)
	mux.HandleFunc("GET /api/users", usersHandler.List)
	mux.HandleFunc("GET /api/users/{id}", usersHandler.Get)
	mux.HandleFunc("PUT /api/users/{id}", usersHandler.Update)
	mux.HandleFunc("DELETE /api/users/{id}", usersHandler.Delete)

	mux.HandleFunc("POST /api/tools", toolsHandler.Create)
	mux.HandleFunc("GET /api/tools", toolsHandler.List)
	mux.HandleFunc("GET /api/tools/available", toolsHandler.Available)
	mux.HandleFunc("GET /api/tools/{id}", toolsHandler.Get)
	mux.HandleFunc("PUT /api/tools/{id}", toolsHandler.Update)
	mux.HandleFunc("DELETE /api/tools/{id}", toolsHandler.Delete)

	mux.HandleFunc("POST /api/transactions", transactionsHandler.Create)
	mux.HandleFunc("GET /api/transactions", transactionsHandler.List)
	mux.HandleFunc("GET /api/transactions/{id}", transactionsHandler.Get)
	mux.HandleFunc("PUT /api/transactions/{id}", transactionsHandler.Update)
	mux.HandleFunc("DELETE /api/transactions/{id}", transactionsHandler.Delete)
	mux.HandleFunc("POST /api/transactions/{id}/return", transactionsHandler.Return)

	mux.Handle("GET /ws/activity", activityHub)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, checkCancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer checkCancel()
		if err := ready(checkCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("store not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// CORS wrapper honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> audit -> rate limit -> content type -> CORS
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.AuditMiddleware(auditLogger)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.ValidateJSONContentType(log)(handlerWithCORS),
				),
			),
		),
		log,
	)

	// 9. Start stats worker in background
	statsWorker := worker.NewStatsWorker(tools, transactions, log, cfg.StatsInterval)
	go statsWorker.Start(ctx)

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "toolshare"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
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

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop stats worker
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
