package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jbweber/homelab/tripdesk/internal/datastore"
	"github.com/jbweber/homelab/tripdesk/internal/migrations"
)

// OpenDatastore opens the configured datastore without touching the schema.
func (c DatabaseConfig) OpenDatastore() (*datastore.Datastore, error) {
	dsn := c.DSN
	dialect, err := datastore.DialectFor(c.Driver)
	if err != nil {
		return nil, err
	}

	if dialect == datastore.SQLite && !datastore.IsMemoryDSN(dsn) {
		dsn = expandPath(dsn)
		// Ensure database directory exists
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var opts []datastore.Option
	if c.Tracing {
		opts = append(opts, datastore.WithTracing())
	}
	ds, err := datastore.Open(c.Driver, dsn, opts...)
	if err != nil {
		return nil, err
	}
	ds.OptimizeConnection()
	return ds, nil
}

// InitializeDatabase opens the configured datastore and brings the schema up to date
func (c DatabaseConfig) InitializeDatabase(ctx context.Context) (*datastore.Datastore, error) {
	ds, err := c.OpenDatastore()
	if err != nil {
		return nil, err
	}

	if err := ds.Ping(ctx); err != nil {
		_ = ds.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if err := migrations.NewDefaultMigrator(ds).RunMigrations(ctx); err != nil {
		_ = ds.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return ds, nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Return original path if we can't get home dir
		return path
	}

	return filepath.Join(homeDir, path[2:])
}
