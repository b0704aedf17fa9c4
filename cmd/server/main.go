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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/report-tracker-api/internal/config"
	"github.com/yukikurage/report-tracker-api/internal/database"
	"github.com/yukikurage/report-tracker-api/internal/handlers"
	"github.com/yukikurage/report-tracker-api/internal/identity"
	"github.com/yukikurage/report-tracker-api/internal/logging"
	"github.com/yukikurage/report-tracker-api/internal/repository"
	"github.com/yukikurage/report-tracker-api/internal/services"
	"github.com/yukikurage/report-tracker-api/internal/storage"
	"github.com/yukikurage/report-tracker-api/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Report and issue tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, log *zap.Logger, db *gorm.DB) error {
				return nil
			})
		},
	})

	var adminName, adminEmail, adminPassword string
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, log *zap.Logger, db *gorm.DB) error {
				users := services.NewUserService(repository.NewUserRepository(db))
				admin, err := users.Bootstrap(cmd.Context(), adminName, adminEmail, adminPassword)
				if err != nil {
					return fmt.Errorf("create admin: %w", err)
				}
				log.Info("Admin created", zap.Uint64("user_id", admin.ID), zap.String("email", admin.Email))
				return nil
			})
		},
	}
	createAdmin.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	createAdmin.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdmin.Flags().StringVar(&adminPassword, "password", "", "login password")
	_ = createAdmin.MarkFlagRequired("email")
	_ = createAdmin.MarkFlagRequired("password")
	root.AddCommand(createAdmin)

	return root
}

// withDatabase loads config, opens and migrates the database, runs fn and
// closes everything again.
func withDatabase(fn func(cfg *config.Config, log *zap.Logger, db *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.GinMode)
	defer log.Sync() //nolint:errcheck

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db, log); err != nil {
		return err
	}
	return fn(cfg, log, db)
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withDatabase(func(cfg *config.Config, log *zap.Logger, db *gorm.DB) error {
		gin.SetMode(cfg.GinMode)

		shutdownTracing, err := telemetry.Setup(cfg.TraceExporter)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Warn("Failed to flush traces", zap.Error(err))
			}
		}()

		store, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		sessionStore, err := handlers.NewSessionStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to create session store: %w", err)
		}

		// Only a configured key enables suggestions; a nil interface keeps them off.
		var suggester services.IssueSuggester
		if cfg.OpenAIAPIKey != "" {
			suggester = services.NewAIService(cfg.OpenAIAPIKey)
		}

		loc := cfg.Location()
		userRepo := repository.NewUserRepository(db)
		tokens := identity.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
		router := handlers.NewRouter(cfg, log, sessionStore, handlers.Services{
			Auth:      services.NewAuthService(userRepo, tokens),
			Users:     services.NewUserService(userRepo),
			Reports:   services.NewReportService(repository.NewReportRepository(db), loc, suggester),
			Issues:    services.NewIssueService(repository.NewIssueRepository(db)),
			Dashboard: services.NewDashboardService(repository.NewDashboardRepository(db), loc),
			Documents: services.NewDocumentService(repository.NewDocumentRepository(db), store, log),
		})

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("Server starting", zap.String("addr", cfg.ListenAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}

		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.UploadBackend {
	case "gcs":
		gs, err := storage.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			return nil, nil, err
		}
		return gs, func() { gs.Close() }, nil
	default:
		ls, err := storage.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			return nil, nil, err
		}
		return ls, func() {}, nil
	}
}
