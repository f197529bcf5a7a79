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
	"github.com/rs/zerolog"
	"github.com/sangkips/clinic-api/internal/config"
	"github.com/sangkips/clinic-api/internal/infrastructure/database"
	"github.com/sangkips/clinic-api/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic-api",
		Short:        "Multi-clinic practice management API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(remindersCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run migrations and seed roles before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := bootstrap()
			db, err := database.NewPostgresDB(&cfg.Database, log)
			if err != nil {
				return err
			}
			return database.AutoMigrate(db, log)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed roles, permissions and the super admin from ADMIN_EMAIL/ADMIN_PASSWORD",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := bootstrap()
			db, err := database.NewPostgresDB(&cfg.Database, log)
			if err != nil {
				return err
			}
			return database.SeedDefaultData(db, adminSeed(), log)
		},
	}
}

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Appointment reminder tools",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run one reminder sweep now and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := bootstrap()
			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			summary, err := a.reminders.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "clinics=%d sent=%d failed=%d skipped=%d\n",
				summary.Clinics, summary.Sent, summary.Failed, summary.Skipped)
			return nil
		},
	})
	return cmd
}

func bootstrap() (*config.Config, zerolog.Logger) {
	cfg := config.Load()
	log := logger.New(cfg.App.Env, cfg.Log.Level)
	return cfg, log
}

func adminSeed() database.AdminSeed {
	return database.AdminSeed{
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
		Name:     os.Getenv("ADMIN_NAME"),
	}
}

func runServer(migrate bool) error {
	cfg, log := bootstrap()

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if migrate {
		if err := database.AutoMigrate(a.db, log); err != nil {
			return err
		}
		if err := database.SeedDefaultData(a.db, adminSeed(), log); err != nil {
			log.Warn().Err(err).Msg("failed to seed default data")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go a.rateLimiter.Run(done)
	defer close(done)

	if cfg.Reminder.Enabled {
		scheduler, err := a.reminders.Schedule(ctx, cfg.Reminder.Schedule)
		if err != nil {
			return err
		}
		defer func() {
			<-scheduler.Stop().Done()
		}()
	}

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Env).Msgf("starting %s", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
