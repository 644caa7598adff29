//go:build !test

// Code coverage for main is ignored; the server package carries the tests.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jbweber/homelab/tripdesk/internal/config"
	"github.com/jbweber/homelab/tripdesk/internal/logging"
	"github.com/jbweber/homelab/tripdesk/internal/migrations"
	"github.com/jbweber/homelab/tripdesk/internal/server"
	"github.com/jbweber/homelab/tripdesk/internal/telemetry"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:          "tripdesk",
		Short:        "Hypermedia REST service for customers and trips",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./tripdesk.yaml)")
	root.PersistentFlags().String("db", "", "database DSN")
	_ = v.BindPFlag("database.dsn", root.PersistentFlags().Lookup("db"))

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v, configFile)
		},
	}
	serve.Flags().Int("port", 0, "listen port")
	_ = v.BindPFlag("server.port", serve.Flags().Lookup("port"))

	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newMigrateCmd(v, &configFile))
	return root
}

func runServe(ctx context.Context, v *viper.Viper, configFile string) error {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	ds, err := cfg.Database.InitializeDatabase(ctx)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		return err
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	logger.Info("database ready", "driver", cfg.Database.Driver)

	return server.New(ctx, cfg, ds, logger).Run(ctx)
}

func newMigrateCmd(v *viper.Viper, configFile *string) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withMigrator := func(fn func(context.Context, *migrations.Migrator, *slog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, *configFile)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.Log)
			ds, err := cfg.Database.OpenDatastore()
			if err != nil {
				return err
			}
			defer ds.Close()
			return fn(cmd.Context(), migrations.NewDefaultMigrator(ds), logger)
		}
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withMigrator(func(ctx context.Context, m *migrations.Migrator, logger *slog.Logger) error {
				if err := m.RunMigrations(ctx); err != nil {
					return err
				}
				version, err := m.GetCurrentVersion(ctx)
				if err != nil {
					return err
				}
				logger.Info("migrations applied", "version", version)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withMigrator(func(ctx context.Context, m *migrations.Migrator, logger *slog.Logger) error {
				if err := m.Rollback(ctx); err != nil {
					return err
				}
				logger.Info("rolled back one migration")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: withMigrator(func(ctx context.Context, m *migrations.Migrator, _ *slog.Logger) error {
				version, err := m.GetCurrentVersion(ctx)
				if err != nil {
					return fmt.Errorf("failed to read schema version: %w", err)
				}
				fmt.Println(version)
				return nil
			}),
		},
	)
	return migrate
}
