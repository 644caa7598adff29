package migrations

import (
	"context"
	"database/sql"

	"github.com/jbweber/homelab/tripdesk/internal/datastore"
)

// GetInitialMigrations returns all initial migrations
func GetInitialMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_customers_and_trips",
			Up: func(ctx context.Context, tx *sql.Tx, dialect datastore.Dialect) error {
				// customers.trip is a free-text label; there is deliberately no foreign key to trips
				_, err := tx.ExecContext(ctx, `
					CREATE TABLE IF NOT EXISTS customers (
						`+dialect.IdentityColumn("id")+`,
						first_name TEXT,
						last_name TEXT,
						address TEXT,
						trip TEXT
					)
				`)
				if err != nil {
					return err
				}

				_, err = tx.ExecContext(ctx, `
					CREATE TABLE IF NOT EXISTS trips (
						`+dialect.IdentityColumn("id")+`,
						destination TEXT,
						start_date TEXT,
						end_date TEXT
					)
				`)
				return err
			},
			Down: func(ctx context.Context, tx *sql.Tx, dialect datastore.Dialect) error {
				if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS trips`); err != nil {
					return err
				}
				_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS customers`)
				return err
			},
		},
	}
}
