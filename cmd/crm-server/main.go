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

	"github.com/dermocrm/crm/internal/config"
	"github.com/dermocrm/crm/internal/domain/campaign"
	"github.com/dermocrm/crm/internal/domain/dashboard"
	"github.com/dermocrm/crm/internal/domain/enrollment"
	"github.com/dermocrm/crm/internal/domain/pharmacy"
	"github.com/dermocrm/crm/internal/domain/product"
	"github.com/dermocrm/crm/internal/domain/referent"
	"github.com/dermocrm/crm/internal/domain/reminder"
	"github.com/dermocrm/crm/internal/domain/visit"
	"github.com/dermocrm/crm/internal/platform/auth"
	"github.com/dermocrm/crm/internal/platform/db"
	"github.com/dermocrm/crm/internal/platform/geo"
	"github.com/dermocrm/crm/internal/platform/mail"
	"github.com/dermocrm/crm/internal/platform/middleware"
	"github.com/dermocrm/crm/internal/platform/reporting"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "crm-server",
		Short: "Dermo-CRM API server",
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
		Short: "Start the CRM API server",
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
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
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
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	txRunner := db.NewTxRunner(pool)

	// External collaborators
	var sender mail.Sender
	switch {
	case cfg.MailgunDomain != "":
		sender = mail.NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom,
			mail.WithMailgunTimeout(cfg.MailSendTimeout()))
		logger.Info().Str("domain", cfg.MailgunDomain).Msg("mail: using Mailgun")
	case cfg.SMTPHost != "":
		sender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
		logger.Info().Str("host", cfg.SMTPHost).Msg("mail: using SMTP")
	default:
		sender = mail.NopSender{}
		logger.Warn().Msg("mail: no transport configured, emails are discarded")
	}
	templates := mail.NewTemplateEngine()

	geocoder := geo.NewNominatimClient(
		geo.WithBaseURL(cfg.GeocodeURL),
		geo.WithRegion(cfg.GeocodeRegion),
	)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthHMACKey),
		}))
	}

	e.GET("/health", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	// Referents
	refSvc := referent.NewService(referent.NewRepo(pool))
	referent.NewHandler(refSvc).RegisterRoutes(apiV1)

	// Products
	prodSvc := product.NewService(product.NewRepo(pool))
	product.NewHandler(prodSvc).RegisterRoutes(apiV1)

	// Pharmacies
	phSvc := pharmacy.NewService(pharmacy.NewRepo(pool), geocoder, logger)
	pharmacy.NewHandler(phSvc).RegisterRoutes(apiV1)

	// Campaigns
	campSvc := campaign.NewService(campaign.NewRepo(pool), txRunner)
	campaign.NewHandler(campSvc).RegisterRoutes(apiV1)

	// Enrollments
	enrSvc := enrollment.NewService(enrollment.NewRepo(pool), txRunner)
	enrollment.NewHandler(enrSvc).RegisterRoutes(apiV1)

	// Reminders
	remRepo := reminder.NewRepo(pool)
	remSvc := reminder.NewService(remRepo, remRepo, sender, templates, cfg.MailSendTimeout(), logger)
	reminder.NewHandler(remSvc).RegisterRoutes(apiV1)

	// Visits
	visitSvc := visit.NewService(visit.NewRepo(pool), txRunner)
	visit.NewHandler(visitSvc).RegisterRoutes(apiV1)

	// Dashboard and PDF reports
	dashSvc := dashboard.NewService(dashboard.NewRepo(pool))
	dashboard.NewHandler(dashSvc).RegisterRoutes(apiV1)
	reporting.NewHandler(dashSvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
