package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/employee"
	"hrms/internal/domain/holiday"
	"hrms/internal/domain/leave"
	"hrms/internal/domain/payroll"
	"hrms/internal/domain/policy"
	"hrms/internal/domain/salary"
	"hrms/internal/platform/config"
	"hrms/internal/platform/crypto"
	"hrms/internal/platform/db"
	"hrms/internal/platform/jobs"
	"hrms/internal/platform/metrics"
	audithandler "hrms/internal/transport/http/handlers/audit"
	authhandler "hrms/internal/transport/http/handlers/auth"
	employeeshandler "hrms/internal/transport/http/handlers/employees"
	holidayshandler "hrms/internal/transport/http/handlers/holidays"
	leavehandler "hrms/internal/transport/http/handlers/leave"
	payrollhandler "hrms/internal/transport/http/handlers/payroll"
	settingshandler "hrms/internal/transport/http/handlers/settings"
	"hrms/internal/transport/http/middleware"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Payroll *payroll.Service
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// New connects to the database, applies migrations and seed data when
// enabled, and wires every handler.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	box, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	app := &App{
		Config:  cfg,
		DB:      pool,
		Jobs:    jobs.New(pool),
		Payroll: NewPayrollService(pool),
		Metrics: metrics.New(),
		Logger:  logger,
	}
	app.Payroll.Recorder = app.Metrics
	app.Router = app.routes(box)
	return app, nil
}

// NewPayrollService wires the payroll engine to its pgx-backed stores.
func NewPayrollService(pool *pgxpool.Pool) *payroll.Service {
	return payroll.NewService(
		payroll.NewStore(pool),
		employee.NewStore(pool),
		salary.NewStore(pool),
		policy.NewService(policy.NewStore(pool)),
	)
}

func (a *App) routes(box *crypto.Box) http.Handler {
	cfg := a.Config
	authStore := auth.NewStore(a.DB)
	perms := middleware.NewPermissionCache(authStore, cfg.PermissionCacheTTL)
	employeeStore := employee.NewStore(a.DB)
	holidayStore := holiday.NewStore(a.DB)
	auditSvc := audit.New(a.DB)

	router := chi.NewRouter()
	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		a.Logger.Warn("ignoring trusted proxies", "err", err)
		trusted = nil
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.TrustProxies(trusted))
	router.Use(middleware.RequestLogger(a.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.CleanPath)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.Metrics(a.Metrics))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))

	mountOps(router, a.DB, a.Metrics, cfg.MetricsEnabled)

	authHandler := authhandler.NewHandler(auth.NewService(authStore, cfg.JWTSecret, box))
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
		authHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			authHandler.RegisterRoutes(r)

			employeeshandler.NewHandler(employeeStore, salary.NewStore(a.DB), perms, auditSvc).RegisterRoutes(r)
			settingshandler.NewHandler(policy.NewService(policy.NewStore(a.DB)), perms, auditSvc).RegisterRoutes(r)
			holidayshandler.NewHandler(holidayStore, employeeStore, perms, auditSvc).RegisterRoutes(r)
			leavehandler.NewHandler(leave.NewCalculator(holidayStore), leave.NewStore(a.DB), employeeStore, perms).RegisterRoutes(r)
			payrollhandler.NewHandler(a.Payroll, a.Jobs, employeeStore, perms, auditSvc).RegisterRoutes(r)
			audithandler.NewHandler(auditSvc, perms).RegisterRoutes(r)
		})
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	return router
}

// Run serves HTTP and the background job worker until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.Jobs.Start(ctx, a.Config.PayrollRunInterval, func(ctx context.Context, month, year int) (any, error) {
		return a.Payroll.Run(ctx, month, year)
	})

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.Logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
