package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carepoint/hms/internal/config"
	"github.com/carepoint/hms/internal/domain/billing"
	"github.com/carepoint/hms/internal/domain/discharge"
	"github.com/carepoint/hms/internal/domain/identity"
	"github.com/carepoint/hms/internal/domain/medrecord"
	"github.com/carepoint/hms/internal/domain/pharmacy"
	"github.com/carepoint/hms/internal/domain/ward"
	"github.com/carepoint/hms/internal/platform/auth"
	"github.com/carepoint/hms/internal/platform/db"
	"github.com/carepoint/hms/internal/platform/messaging"
	"github.com/carepoint/hms/internal/platform/middleware"
	"github.com/carepoint/hms/internal/platform/telemetry"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital management API server",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				fmt.Println("---------- ---------------------------------------- ---------- --------------------")
				for _, s := range statuses {
					status, appliedAt := "pending", ""
					if s.Applied {
						status = "applied"
						if s.AppliedAt != nil {
							appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
				}
				return nil
			})
		},
	}

	for _, c := range []*cobra.Command{upCmd, statusCmd} {
		c.Flags().String("schema", "public", "Target schema for migrations")
		c.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
		cmd.AddCommand(c)
	}
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(ctx context.Context, m *db.Migrator) error) error {
	schema, _ := cmd.Flags().GetString("schema")
	dir, _ := cmd.Flags().GetString("dir")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.MigrationsDir
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, dir).WithSchema(schema))
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// services holds every domain service; each is built once and shared by
// the handlers that need it.
type services struct {
	records    *medrecord.Service
	pharmacies *pharmacy.Service
	bills      *billing.Service
	rooms      *ward.Service
	people     *identity.Service
	discharges *discharge.Service
}

func newServices(pool *pgxpool.Pool, tx db.TxRunner, events messaging.Publisher, metrics *telemetry.Metrics) *services {
	recordRepo := medrecord.NewRepoPG(pool)
	patientRepo := identity.NewPatientRepoPG(pool)

	s := &services{
		records:    medrecord.NewService(recordRepo, tx),
		pharmacies: pharmacy.NewService(pharmacy.NewRepoPG(pool), recordRepo, tx),
		bills:      billing.NewService(billing.NewRepoPG(pool), tx),
		rooms:      ward.NewService(ward.NewRepoPG(pool), tx),
		people:     identity.NewService(patientRepo, identity.NewDoctorRepoPG(pool), identity.NewNurseRepoPG(pool), tx),
	}
	s.discharges = discharge.NewService(discharge.NewRepoPG(pool), patientRepo, s.bills, s.rooms, tx)

	s.pharmacies.SetPublisher(events)
	s.pharmacies.SetMetrics(metrics)
	s.bills.SetPublisher(events)
	s.bills.SetMetrics(metrics)
	s.discharges.SetPublisher(events)
	s.discharges.SetMetrics(metrics)
	return s
}

func authMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	if cfg.IsDev() && cfg.AuthSigningKey == "" && cfg.AuthJWKSURL == "" {
		return auth.DevAuthMiddleware()
	}
	jwtCfg := auth.JWTConfig{
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
		JWKSURL:  cfg.AuthJWKSURL,
	}
	if cfg.AuthSigningKey != "" {
		jwtCfg.SigningKey = []byte(cfg.AuthSigningKey)
	}
	return auth.JWTMiddleware(jwtCfg)
}

func newPublisher(cfg *config.Config, logger zerolog.Logger) messaging.Publisher {
	if cfg.RabbitMQURL == "" {
		logger.Info().Msg("RABBITMQ_URL not set, domain events disabled")
		return messaging.NopPublisher{}
	}
	p, err := messaging.NewRabbitPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("event publisher unavailable, domain events disabled")
		return messaging.NopPublisher{}
	}
	return p
}

// newEcho builds the server with global middleware, health routes and the
// authenticated /api/v1 group. pool may be nil when the database routes
// are not needed.
func newEcho(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool, metrics *telemetry.Metrics) (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(telemetry.HTTPMetrics(metrics))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": version})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		logger.Warn().Str("value", cfg.RequestTimeout).Msg("invalid REQUEST_TIMEOUT, timeouts disabled")
		timeout = 0
	}

	api := e.Group("/api/v1", authMiddleware(cfg), middleware.RequestTimeout(timeout))
	return e, api
}

func registerRoutes(api *echo.Group, s *services) {
	medrecord.NewHandler(s.records).RegisterRoutes(api)
	pharmacy.NewHandler(s.pharmacies).RegisterRoutes(api)
	billing.NewHandler(s.bills).RegisterRoutes(api)
	ward.NewHandler(s.rooms).RegisterRoutes(api)
	identity.NewHandler(s.people).RegisterRoutes(api)
	discharge.NewHandler(s.discharges).RegisterRoutes(api)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	tp, err := telemetry.InitProvider(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	events := newPublisher(cfg, logger)
	defer events.Close()

	e, api := newEcho(cfg, logger, pool, metrics)
	registerRoutes(api, newServices(pool, db.NewTxRunner(pool), events, metrics))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("telemetry shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
