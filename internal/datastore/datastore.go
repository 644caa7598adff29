package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"
)

// Datastore wraps the database handle together with the SQL dialect it speaks.
type Datastore struct {
	DB      *sql.DB
	Dialect Dialect
}

type options struct {
	tracing bool
}

// Option configures Open.
type Option func(*options)

// WithTracing wraps the driver with OpenTelemetry instrumentation.
func WithTracing() Option {
	return func(o *options) {
		o.tracing = true
	}
}

// Open opens a datastore for the named driver ("sqlite" or "pgx").
// Migrations are not applied here; see the migrations package.
func Open(driver, dsn string, opts ...Option) (*Datastore, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if o.tracing {
		db, err = otelsql.Open(dialect.DriverName(), dsn,
			otelsql.WithAttributes(attribute.String("db.system", dialect.System())),
		)
	} else {
		db, err = sql.Open(dialect.DriverName(), dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ds := &Datastore{DB: db, Dialect: dialect}
	if dialect == SQLite {
		if err := ds.applySQLitePragmas(dsn); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return ds, nil
}

// New opens an SQLite datastore at path.
func New(path string) (*Datastore, error) {
	return Open("sqlite", path)
}

// Ping verifies the database is reachable.
func (ds *Datastore) Ping(ctx context.Context) error {
	return ds.DB.PingContext(ctx)
}

// Close closes the underlying database handle.
func (ds *Datastore) Close() error {
	return ds.DB.Close()
}

// OptimizeConnection applies connection pool settings
func (ds *Datastore) OptimizeConnection() {
	ds.DB.SetMaxOpenConns(10)                 // Limit concurrent connections
	ds.DB.SetMaxIdleConns(5)                  // Keep some connections alive
	ds.DB.SetConnMaxLifetime(5 * time.Minute) // Recycle connections periodically
	ds.DB.SetConnMaxIdleTime(1 * time.Minute) // Close idle connections after 1 minute
}

func (ds *Datastore) applySQLitePragmas(dsn string) error {
	if _, err := ds.DB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL", // Balance between safety and performance
		"PRAGMA cache_size = 10000",   // Increase cache size (10MB)
		"PRAGMA temp_store = MEMORY",  // Store temporary tables in memory
	}
	// WAL needs a file on disk
	if !IsMemoryDSN(dsn) {
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}

	for _, pragma := range pragmas {
		if _, err := ds.DB.Exec(pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return nil
}

// IsMemoryDSN reports whether dsn names an in-memory SQLite database.
func IsMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}
