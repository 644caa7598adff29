package migrations

import (
	"context"
	"database/sql"

	"github.com/jbweber/homelab/tripdesk/internal/datastore"
)

// GetPerformanceMigrations returns performance optimization migrations
func GetPerformanceMigrations() []Migration {
	return []Migration{
		{
			Version: 2,
			Name:    "add_finder_indices",
			Up: func(ctx context.Context, tx *sql.Tx, _ datastore.Dialect) error {
				// Back the derived finders exposed under /search
				indices := []string{
					"CREATE INDEX IF NOT EXISTS idx_customers_last_name ON customers(last_name)",
					"CREATE INDEX IF NOT EXISTS idx_trips_destination ON trips(destination)",
				}

				for _, indexSQL := range indices {
					if _, err := tx.ExecContext(ctx, indexSQL); err != nil {
						return err
					}
				}

				return nil
			},
			Down: func(ctx context.Context, tx *sql.Tx, _ datastore.Dialect) error {
				indices := []string{
					"DROP INDEX IF EXISTS idx_customers_last_name",
					"DROP INDEX IF EXISTS idx_trips_destination",
				}

				for _, dropSQL := range indices {
					if _, err := tx.ExecContext(ctx, dropSQL); err != nil {
						return err
					}
				}

				return nil
			},
		},
	}
}
