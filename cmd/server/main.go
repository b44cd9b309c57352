package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/calculadrink/platform/internal/domain"
	"github.com/calculadrink/platform/internal/events"
	"github.com/calculadrink/platform/internal/featureflags"
	"github.com/calculadrink/platform/internal/handler"
	"github.com/calculadrink/platform/internal/infrastructure/logger"
	"github.com/calculadrink/platform/internal/infrastructure/redis"
	"github.com/calculadrink/platform/internal/observability/metrics"
	"github.com/calculadrink/platform/internal/observability/tracing"
	"github.com/calculadrink/platform/internal/repository"
	"github.com/calculadrink/platform/internal/repository/localstore"
	"github.com/calculadrink/platform/internal/security/audit"
	"github.com/calculadrink/platform/internal/security/auth"
	"github.com/calculadrink/platform/internal/security/middleware"
	"github.com/calculadrink/platform/internal/security/ratelimit"
	"github.com/calculadrink/platform/internal/service"
	"github.com/calculadrink/platform/internal/worker"
	"github.com/calculadrink/platform/pkg/cache"
	"github.com/calculadrink/platform/pkg/config"
	"github.com/calculadrink/platform/pkg/database"
)

func main() {
	task := flag.String("task", "", "run a one-off task instead of the server (seed-master)")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting CalculaDrink platform server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing
	shutdownTracing, err := tracing.Init(ctx, log, "calculadrink-platform", cfg.Environment)
	if err != nil {
		log.Warn("tracing disabled", slog.String("error", err.Error()))
	}

	// 4. Initialize storage: Postgres + Redis online, local file store offline
	var (
		companyRepo  domain.CompanyRepository
		teamRepo     domain.TeamRepository
		settingsRepo domain.SettingsRepository

		pool        *database.ConnectionPool
		redisClient *redis.Client

		sessionVerifier middleware.SessionVerifier
		sessionManager  service.SessionManager
	)

	if cfg.DatabaseEnabled {
		pool, err = database.NewConnectionPool(ctx, &database.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Database: cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		}, log)
		if err != nil {
			log.Error("failed to connect to Postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Migrate(); err != nil {
			log.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}

		companyRepo = repository.NewPostgresCompanyRepository(pool.GetDB(), log)
		teamRepo = repository.NewPostgresTeamRepository(pool.GetDB(), log)
		settingsRepo = repository.NewPostgresSettingsRepository(pool.GetDB(), log)

		if cfg.RedisURL != "" {
			redisClient, err = redis.NewClient(cfg.RedisURL)
			if err != nil {
				log.Error("failed to connect to Redis", slog.String("error", err.Error()))
				os.Exit(1)
			}
			defer redisClient.Close()

			sessions := repository.NewSessionStore(redisClient)
			sessionVerifier = sessions
			sessionManager = sessions
		} else {
			log.Warn("REDIS_URL not set, session revocation disabled")
		}
	} else {
		store, err := localstore.Open(cfg.LocalStorePath, log)
		if err != nil {
			log.Error("failed to open local store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		companyRepo = store.Companies()
		teamRepo = store.Team()
		settingsRepo = store.Settings()
		log.Info("running in offline mode", slog.String("path", cfg.LocalStorePath))
	}

	if *task != "" {
		if err := runTask(ctx, *task, cfg, companyRepo, log); err != nil {
			log.Error("task failed", slog.String("task", *task), slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	// 5. Initialize the event fan-out
	hub := events.NewHub(log)
	go hub.Run()

	var queue events.QueuePublisher
	if cfg.RabbitURL != "" && featureflags.Enabled("event_queue") {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Error("failed to connect to RabbitMQ", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rabbit.Close()
		queue = rabbit
	}
	bus := events.NewBus(hub, queue, log)

	// 6. Initialize services
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "calculadrink")
	auditLogger := audit.NewLogger(log)
	settingsCache := cache.New()

	authService := service.NewAuthService(companyRepo, tokenManager, sessionManager, bus, log,
		cfg.MasterEmail, cfg.TokenTTL, cfg.DatabaseEnabled)
	adminService := service.NewAdminService(companyRepo, settingsRepo, sessionManager, bus,
		settingsCache, auditLogger, log, cfg.AppURL)
	teamService := service.NewTeamService(teamRepo, bus, log)

	// 7. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	companiesHandler := handler.NewCompaniesHandler(adminService, log)
	settingsHandler := handler.NewSettingsHandler(adminService, log)
	teamHandler := handler.NewTeamHandler(teamService, log)
	exportHandler := handler.NewExportHandler(adminService, log)
	eventsHandler := handler.NewEventsHandler(hub, log, cfg.CORSAllowedOrigins)

	healthHandler := handler.NewHealthHandler(poolDB(pool), redisClient, log)

	// 8. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/recovery", authHandler.Recovery)

	mux.HandleFunc("GET /api/admin/companies", companiesHandler.List)
	mux.HandleFunc("GET /api/admin/companies/export", exportHandler.Companies)
	mux.HandleFunc("GET /api/admin/companies/{id}", companiesHandler.Get)
	mux.HandleFunc("PATCH /api/admin/companies/{id}/status", companiesHandler.UpdateStatus)
	mux.HandleFunc("PATCH /api/admin/companies/{id}/role", companiesHandler.UpdateRole)
	mux.HandleFunc("POST /api/admin/companies/{id}/password", companiesHandler.ResetPassword)
	mux.HandleFunc("GET /api/admin/settings", settingsHandler.Get)
	mux.HandleFunc("PUT /api/admin/settings", settingsHandler.Put)

	mux.HandleFunc("GET /api/companies/{id}/team", teamHandler.List)
	mux.HandleFunc("POST /api/companies/{id}/team", teamHandler.Add)
	mux.HandleFunc("DELETE /api/team/{id}", teamHandler.Remove)

	mux.Handle("GET /ws/events", eventsHandler)

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Healthz)
	mux.HandleFunc("GET /readyz", healthHandler.Readyz)

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

	// 8a. Security components
	rateLimiter := ratelimit.NewLimiter(100, time.Minute)

	// Chain middleware: request ID -> metrics -> JWT -> audit -> rate limit -> master gate -> CORS.
	// JWT runs before the audit and rate-limit layers so both can key on the
	// session claims (operator id, per-company bucket).
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, sessionVerifier, log)(
				middleware.AuditMiddleware(auditLogger)(
					middleware.RateLimitMiddleware(rateLimiter, log)(
						middleware.MasterOnlyMiddleware(auditLogger)(
							middleware.ValidateJSONContentType(log)(handlerWithCORS),
						),
					),
				),
			),
		),
		log,
	)

	// 9. Start the billing sweep in background
	if cfg.DatabaseEnabled && featureflags.Enabled("billing_sweep") {
		billingWorker := worker.NewBillingWorker(companyRepo, adminService, log,
			cfg.BillingSweepInterval, cfg.BillingGraceDays)
		go billingWorker.Start(ctx)
	}

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "http.server"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("database", cfg.DatabaseEnabled),
		slog.Bool("session_revocation", sessionVerifier != nil),
	)

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

	cancel()
	hub.Stop()
	rateLimiter.Stop()
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}
	log.Info("server stopped")
}

// runTask executes a one-off maintenance task and exits.
func runTask(ctx context.Context, name string, cfg *config.Config, companies domain.CompanyRepository, log *slog.Logger) error {
	switch name {
	case "seed-master":
		return seedMaster(ctx, cfg, companies, log)
	default:
		return fmt.Errorf("unknown task %q", name)
	}
}

// seedMaster creates the platform master account when it does not exist yet.
// The password comes from MASTER_PASSWORD, or is generated and printed once.
func seedMaster(ctx context.Context, cfg *config.Config, companies domain.CompanyRepository, log *slog.Logger) error {
	if _, err := companies.GetByEmail(ctx, domain.NormalizeEmail(cfg.MasterEmail)); err == nil {
		log.Info("master account already exists", slog.String("email", cfg.MasterEmail))
		return nil
	}

	password := os.Getenv("MASTER_PASSWORD")
	generated := false
	if password == "" {
		password = service.SuggestPassword()
		generated = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	master := &domain.Company{
		ID:              domain.NewID(),
		Name:            "CalculaDrink",
		ResponsibleName: "Platform Master",
		Document:        "00000000000000",
		Email:           domain.NormalizeEmail(cfg.MasterEmail),
		Type:            domain.TypePJ,
		Status:          domain.StatusActive,
		Role:            domain.RoleAdmin,
		PasswordHash:    string(hash),
	}
	if err := companies.Create(ctx, master); err != nil {
		return err
	}

	log.Info("master account created", slog.String("email", master.Email))
	if generated {
		// printed once, never logged
		fmt.Printf("master password: %s\n", password)
	}
	return nil
}

func poolDB(pool *database.ConnectionPool) *sql.DB {
	if pool == nil {
		return nil
	}
	return pool.GetDB()
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
