package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/flourish/riskassess/internal/config"
	"github.com/flourish/riskassess/internal/domain/access"
	"github.com/flourish/riskassess/internal/domain/assessment"
	"github.com/flourish/riskassess/internal/domain/catalog"
	"github.com/flourish/riskassess/internal/domain/dashboard"
	"github.com/flourish/riskassess/internal/domain/notification"
	"github.com/flourish/riskassess/internal/domain/study"
	"github.com/flourish/riskassess/internal/platform/auth"
	"github.com/flourish/riskassess/internal/platform/db"
	"github.com/flourish/riskassess/internal/platform/middleware"
	"github.com/flourish/riskassess/internal/platform/poller"
	"github.com/flourish/riskassess/internal/platform/report"
	"github.com/flourish/riskassess/internal/platform/upstream"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "riskassess-server",
		Short: "Clinical trial risk assessment API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the risk assessment API server",
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
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%3d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Upstream study source session. A static token from config keeps the
	// session valid; without one the sync stays in the waiting state until
	// a token arrives.
	session := auth.NewSession()
	if cfg.StudySourceToken != "" {
		session.Set(cfg.StudySourceToken, time.Now().Add(365*24*time.Hour))
	}
	source := upstream.NewClient(cfg.StudySourceURL, session, logger)

	// Repositories
	catalogRepo := catalog.NewRepoPG(pool)
	studyRepo := study.NewRepoPG(pool)
	assessmentRepo := assessment.NewRepoPG(pool)
	auditRepo := assessment.NewAuditRepoPG(pool)
	timelineRepo := assessment.NewTimelineRepoPG(pool)
	dashboardRepo := dashboard.NewRepoPG(pool)
	notificationRepo := notification.NewRepoPG(pool)

	// Services
	catalogSvc := catalog.NewService(catalogRepo, logger)
	studySvc := study.NewService(studyRepo, logger)
	studySvc.SetSource(source)
	notificationSvc := notification.NewService(notificationRepo, logger)
	assessmentSvc := assessment.NewService(assessmentRepo, auditRepo, timelineRepo, studyRepo, catalogSvc, logger)
	assessmentSvc.SetPool(pool)
	assessmentSvc.SetNotifier(notificationSvc)
	accessSvc := access.NewService(studyRepo, logger)
	accessSvc.SetRoster(source)
	dashboardSvc := dashboard.NewService(dashboardRepo, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	e.Use(middleware.Audit(logger))

	e.GET("/health", db.HealthHandler(pool))

	api := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Handlers
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)
	study.NewHandler(studySvc).RegisterRoutes(api)
	assessmentHandler := assessment.NewHandler(assessmentSvc)
	assessmentHandler.SetRenderer(report.NewRenderer())
	assessmentHandler.RegisterRoutes(api)
	access.NewHandler(accessSvc).RegisterRoutes(api)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(api)
	notification.NewHandler(notificationSvc).RegisterRoutes(api)

	// Background sync of studies from the site management system.
	var studyPoller *poller.Poller
	if source.Configured() {
		studyPoller = poller.New("study-sync", cfg.NotifyPollInterval, func(ctx context.Context) error {
			count, err := studySvc.SyncFromSource(ctx)
			if err != nil {
				return err
			}
			logger.Debug().Int("studies", count).Msg("study sync complete")
			return nil
		}, logger)
		studyPoller.Start(ctx)
	}

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("version", version).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	if studyPoller != nil {
		studyPoller.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
