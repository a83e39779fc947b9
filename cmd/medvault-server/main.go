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

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medvault/medvault/internal/config"
	"github.com/medvault/medvault/internal/domain/account"
	"github.com/medvault/medvault/internal/domain/admin"
	"github.com/medvault/medvault/internal/domain/patient"
	"github.com/medvault/medvault/internal/domain/photo"
	"github.com/medvault/medvault/internal/domain/record"
	"github.com/medvault/medvault/internal/platform/auth"
	"github.com/medvault/medvault/internal/platform/db"
	"github.com/medvault/medvault/internal/platform/identity"
	"github.com/medvault/medvault/internal/platform/middleware"
	"github.com/medvault/medvault/internal/platform/storage"
)

func main() {
	root := &cobra.Command{
		Use:   "medvault-server",
		Short: "Patient records service",
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, newLogger(cfg))
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	var store storage.ObjectStore
	if cfg.S3Bucket != "" && (cfg.S3Region != "" || cfg.S3Endpoint != "") {
		s3store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			return err
		}
		store = s3store
	} else if cfg.IsDev() {
		logger.Warn().Msg("no object store configured, using in-memory store")
		store = storage.NewMemoryStore()
	} else {
		return fmt.Errorf("object storage is required outside development")
	}

	var provider identity.Provider
	if cfg.IdentityBaseURL != "" {
		provider = identity.NewHTTPProvider(cfg.IdentityBaseURL, cfg.IdentityServiceKey)
	} else {
		logger.Warn().Msg("no identity provider configured, using in-memory provider")
		mem := identity.NewMemoryProvider()
		mem.Seed("dev@localhost", "devpass", "Dev Doctor", identity.RoleDoctor)
		provider = mem
	}

	patientRepo := patient.NewPatientRepoPG(pool)
	photoRepo := photo.NewPhotoRepoPG(pool)
	recordRepo := record.NewRecordRepoPG(pool)

	recordSvc := record.NewService(recordRepo, logger)
	patientSvc := patient.NewService(patientRepo, photoRepo, recordSvc, store, logger)
	photoSvc := photo.NewService(photoRepo, store, &patientLookupAdapter{svc: patientSvc},
		cfg.SignedURLTTL(), logger)
	adminSvc := admin.NewService(provider, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	e.GET("/health", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	if cfg.SessionSecret != "" {
		api.Use(auth.SessionMiddleware(cfg.SessionSecret))
	} else {
		logger.Warn().Msg("no session secret configured, using dev sessions")
		api.Use(auth.DevSessionMiddleware())
	}

	account.NewHandler(provider, logger).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	photo.NewHandler(photoSvc).RegisterRoutes(api)
	record.NewHandler(recordSvc).RegisterRoutes(api)
	admin.NewHandler(adminSvc).RegisterRoutes(api)

	migrator := db.NewMigrator(pool, cfg.MigrationsDir)
	api.POST("/migrate", func(c echo.Context) error {
		count, err := migrator.Up(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"message": fmt.Sprintf("applied %d migrations", count),
		})
	}, auth.RequireRole(identity.RoleDoctor))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// patientLookupAdapter bridges the patient service into the narrow lookup
// the photo workflow depends on.
type patientLookupAdapter struct {
	svc *patient.Service
}

func (a *patientLookupAdapter) Lookup(ctx context.Context, id uuid.UUID) (*photo.PatientInfo, error) {
	p, err := a.svc.GetPatient(ctx, id)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, photo.ErrPatientNotFound
		}
		return nil, err
	}
	return &photo.PatientInfo{ID: p.ID, FileNumber: p.FileNumber}, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	withMigrator := func(fn func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			pool, err := db.NewPool(cmd.Context(), db.PoolConfig{
				URL:      cfg.DatabaseURL,
				MaxConns: 2,
				MinConns: 1,
			})
			if err != nil {
				return err
			}
			defer pool.Close()

			return fn(cmd.Context(), db.NewMigrator(pool, cfg.MigrationsDir), logger)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error {
			count, err := m.Up(ctx)
			if err != nil {
				return err
			}
			logger.Info().Int("applied", count).Msg("migrations complete")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%3d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		}),
	})

	return cmd
}
